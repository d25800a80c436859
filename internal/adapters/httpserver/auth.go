package httpserver

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lmaidana/superfood/internal/domain"
)

var emailRe = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	data, _, session := s.pageData(w, r)
	data["Email"] = ""
	if r.Method == http.MethodGet {
		if r.URL.Query().Get("registered") == "1" {
			data["Registered"] = 1
		}
		s.render(w, "login.html", data)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method", http.StatusMethodNotAllowed)
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	contrasena := r.FormValue("contrasena")
	if email == "" || contrasena == "" {
		data["Error"] = "Completá email y contraseña."
		data["Email"] = email
		s.render(w, "login.html", data)
		return
	}

	user, err := s.auth.Login(r.Context(), email, contrasena)
	if err != nil {
		log.Warn().Err(err).Str("email", email).Msg("login rechazado")
		data["Error"] = err.Error()
		data["Email"] = email
		s.render(w, "login.html", data)
		return
	}
	if err := session.SetUser(user); err != nil {
		log.Error().Err(err).Msg("no se pudo guardar la sesión")
		data["Error"] = "No se pudo iniciar la sesión, probá de nuevo."
		s.render(w, "login.html", data)
		return
	}

	// El rol decide el destino; cualquier cosa rara entra como usuario común.
	if user.IsAdmin() {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	data, _, _ := s.pageData(w, r)
	if r.Method == http.MethodGet {
		s.render(w, "register.html", data)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method", http.StatusMethodNotAllowed)
		return
	}

	form := domain.User{
		Nombre:     strings.TrimSpace(r.FormValue("nombre")),
		Apellido:   strings.TrimSpace(r.FormValue("apellido")),
		Email:      strings.TrimSpace(r.FormValue("email")),
		Contrasena: r.FormValue("contrasena"),
		Rol:        domain.RoleUser,
	}
	celular, _ := strconv.ParseInt(digits(r.FormValue("celular")), 10, 64)
	form.Celular = celular

	retry := func(msg string) {
		data["Error"] = msg
		data["Form"] = form
		s.render(w, "register.html", data)
	}
	if form.Nombre == "" || form.Apellido == "" || form.Email == "" || form.Contrasena == "" {
		retry("Completá todos los campos obligatorios.")
		return
	}
	if !emailRe.MatchString(form.Email) {
		retry("Ingresá un email válido.")
		return
	}
	if len(form.Contrasena) < 6 {
		retry("La contraseña debe tener al menos 6 caracteres.")
		return
	}

	if _, err := s.auth.Register(r.Context(), form); err != nil {
		log.Warn().Err(err).Str("email", form.Email).Msg("registro rechazado")
		retry(err.Error())
		return
	}
	http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
}

// handleLogout borra la sesión y el hand-off pendiente. El carrito queda.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	_, session := s.stores(w, r)
	session.Clear()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
