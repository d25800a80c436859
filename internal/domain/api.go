package domain

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// CatalogAPI cubre los endpoints de categorías y productos del backend.
type CatalogAPI interface {
	Categories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, p CategoryPayload) error
	UpdateCategory(ctx context.Context, id int64, p CategoryPayload) error
	DeleteCategory(ctx context.Context, id int64) error

	Products(ctx context.Context) ([]Product, error)
	Product(ctx context.Context, id int64) (*Product, error)
	CreateProduct(ctx context.Context, p ProductPayload) error
	UpdateProduct(ctx context.Context, id int64, p ProductPayload) error
	DeleteProduct(ctx context.Context, id int64) error
}

// OrderAPI cubre los endpoints de pedidos.
type OrderAPI interface {
	CreateOrder(ctx context.Context, req OrderCreateRequest) (*Order, error)
	Orders(ctx context.Context) ([]Order, error)
	OrdersByUser(ctx context.Context, userID int64) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, upd OrderStatusUpdate) error
	DeleteOrder(ctx context.Context, id int64) error
}

// AuthAPI cubre login y registro. El backend es quien valida credenciales;
// acá sólo se transportan.
type AuthAPI interface {
	Login(ctx context.Context, email, contrasena string) (*User, error)
	Register(ctx context.Context, u User) (*User, error)
}
