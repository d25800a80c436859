package kvstore

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

// Una cookie admite ~4KB; por encima de eso el navegador la descarta en
// silencio, así que lo tratamos como fallo de escritura (análogo a quota
// exceeded en localStorage).
const maxCookieValue = 4000

var ErrValueTooLarge = errors.New("kvstore: value exceeds cookie size limit")

// CookieStore implementa domain.KVStore sobre cookies firmadas con
// HMAC-SHA256. El valor viajero es base64url(firma) + "." +
// base64url(payload); una firma inválida se lee como clave ausente.
// El store vive lo que dura un request: las escrituras quedan en un overlay
// para que un Get posterior dentro del mismo request las vea.
type CookieStore struct {
	w      http.ResponseWriter
	r      *http.Request
	secret []byte
	dirty  map[string][]byte // nil = borrado en este request
}

func NewCookieStore(w http.ResponseWriter, r *http.Request, secret []byte) *CookieStore {
	return &CookieStore{w: w, r: r, secret: secret, dirty: map[string][]byte{}}
}

func (s *CookieStore) Get(key string) ([]byte, bool) {
	if v, ok := s.dirty[key]; ok {
		if v == nil {
			return nil, false
		}
		return v, true
	}
	c, err := s.r.Cookie(key)
	if err != nil || c.Value == "" {
		return nil, false
	}
	parts := strings.SplitN(c.Value, ".", 2)
	if len(parts) != 2 {
		return nil, false
	}
	sig, _ := base64.RawURLEncoding.DecodeString(parts[0])
	payload, _ := base64.RawURLEncoding.DecodeString(parts[1])
	h := hmac.New(sha256.New, s.secret)
	h.Write(payload)
	if !hmac.Equal(sig, h.Sum(nil)) {
		return nil, false
	}
	return payload, true
}

func (s *CookieStore) Set(key string, value []byte) error {
	h := hmac.New(sha256.New, s.secret)
	h.Write(value)
	sig := base64.RawURLEncoding.EncodeToString(h.Sum(nil))
	val := sig + "." + base64.RawURLEncoding.EncodeToString(value)
	if len(val) > maxCookieValue {
		return ErrValueTooLarge
	}
	http.SetCookie(s.w, &http.Cookie{Name: key, Value: val, Path: "/", MaxAge: 60 * 60 * 24 * 7, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	cp := make([]byte, len(value))
	copy(cp, value)
	s.dirty[key] = cp
	return nil
}

func (s *CookieStore) Delete(key string) {
	http.SetCookie(s.w, &http.Cookie{Name: key, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	s.dirty[key] = nil
}
