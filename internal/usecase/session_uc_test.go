package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmaidana/superfood/internal/adapters/kvstore"
	"github.com/lmaidana/superfood/internal/domain"
)

func TestSessionRoundTrip(t *testing.T) {
	session := NewSession(kvstore.NewMemStore())

	u := &domain.User{ID: 5, Nombre: "ana", Apellido: "garcía", Email: "ana@example.com", Rol: domain.RoleAdmin}
	require.NoError(t, session.SetUser(u))

	got := session.User()
	require.NotNil(t, got)
	assert.Equal(t, int64(5), got.ID)
	assert.True(t, got.IsAdmin())
	assert.Equal(t, "Ana García", got.FullName())
}

func TestSessionAbsentIsNil(t *testing.T) {
	session := NewSession(kvstore.NewMemStore())
	assert.Nil(t, session.User())
}

func TestSessionCorruptedIsDiscarded(t *testing.T) {
	store := kvstore.NewMemStore()
	require.NoError(t, store.Set(UserStorageKey, []byte("no-json")))

	session := NewSession(store)
	assert.Nil(t, session.User())
	_, ok := store.Get(UserStorageKey)
	assert.False(t, ok)
}

func TestSessionClearKeepsCart(t *testing.T) {
	store := kvstore.NewMemStore()
	session := NewSession(store)
	cart := NewCart(store)

	require.NoError(t, session.SetUser(&domain.User{ID: 1, Email: "a@b.com"}))
	require.True(t, cart.Add(domain.CartItem{ID: "7", Nombre: "Galletitas", Precio: 1200, Stock: 3}, 1))
	session.RememberProduct(&domain.Product{ID: 7, Nombre: "Galletitas"})

	session.Clear()

	assert.Nil(t, session.User())
	assert.Nil(t, session.TakeProduct())
	assert.Len(t, cart.Items(), 1, "el carrito sobrevive al logout")
}

func TestTakeProductReadsOnce(t *testing.T) {
	session := NewSession(kvstore.NewMemStore())
	session.RememberProduct(&domain.Product{ID: 7, Nombre: "Galletitas", Precio: 1200})

	first := session.TakeProduct()
	require.NotNil(t, first)
	assert.Equal(t, int64(7), first.ID)

	assert.Nil(t, session.TakeProduct(), "la segunda lectura da nil")
}

func TestTakeProductIgnoresCorrupted(t *testing.T) {
	store := kvstore.NewMemStore()
	require.NoError(t, store.Set(ProductDetailStorageKey, []byte("{broken")))

	session := NewSession(store)
	assert.Nil(t, session.TakeProduct())
	_, ok := store.Get(ProductDetailStorageKey)
	assert.False(t, ok, "la entrada se consume aunque esté rota")
}

func TestRememberProductToleratesWriteFailure(t *testing.T) {
	store := kvstore.NewMemStore()
	store.FailWrites(true)

	session := NewSession(store)
	session.RememberProduct(&domain.Product{ID: 7, Nombre: "Galletitas"})
	assert.Nil(t, session.TakeProduct())
}
