package usecase

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/lmaidana/superfood/internal/domain"
)

const (
	// UserStorageKey guarda el registro de usuario que devolvió el backend.
	UserStorageKey = "userData"
	// ProductDetailStorageKey es la entrada efímera con la que la grilla le
	// pasa un producto a la página de detalle; se lee una sola vez.
	ProductDetailStorageKey = "selectedProductDetail"
)

// SessionUC lee y escribe el estado local que no es carrito: la sesión de
// usuario y el hand-off de producto seleccionado. La sesión es un dato
// opaco y confiado; acá no hay autorización real.
type SessionUC struct {
	Store domain.KVStore
}

func NewSession(store domain.KVStore) *SessionUC { return &SessionUC{Store: store} }

// User devuelve el usuario logueado o nil. Una sesión guardada que no
// parsea se borra y se lee como deslogueado.
func (uc *SessionUC) User() *domain.User {
	raw, ok := uc.Store.Get(UserStorageKey)
	if !ok {
		return nil
	}
	var u domain.User
	if err := json.Unmarshal(raw, &u); err != nil {
		log.Warn().Err(err).Msg("sesión almacenada ilegible, se descarta")
		uc.Store.Delete(UserStorageKey)
		return nil
	}
	return &u
}

func (uc *SessionUC) SetUser(u *domain.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return uc.Store.Set(UserStorageKey, b)
}

// Clear cierra la sesión: borra el usuario y cualquier hand-off pendiente.
// El carrito sobrevive al logout.
func (uc *SessionUC) Clear() {
	uc.Store.Delete(UserStorageKey)
	uc.Store.Delete(ProductDetailStorageKey)
}

// RememberProduct deja el producto elegido para que lo levante la página de
// detalle. Un fallo de escritura no es fatal: el detalle re-consulta al
// backend si no encuentra nada.
func (uc *SessionUC) RememberProduct(p *domain.Product) {
	b, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := uc.Store.Set(ProductDetailStorageKey, b); err != nil {
		log.Warn().Err(err).Msg("no se pudo guardar el producto seleccionado")
	}
}

// TakeProduct devuelve el producto del hand-off y borra la entrada; la
// segunda lectura siempre da nil.
func (uc *SessionUC) TakeProduct() *domain.Product {
	raw, ok := uc.Store.Get(ProductDetailStorageKey)
	if !ok {
		return nil
	}
	uc.Store.Delete(ProductDetailStorageKey)
	var p domain.Product
	if err := json.Unmarshal(raw, &p); err != nil || p.ID == 0 {
		return nil
	}
	return &p
}
