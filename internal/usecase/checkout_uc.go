package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/lmaidana/superfood/internal/domain"
)

// Errores de validación del checkout; el handler los muestra tal cual como
// mensaje bloqueante. Ninguno llega a disparar una llamada de red.
var (
	ErrNoSession      = errors.New("no hay una sesión activa, volvé a iniciar sesión")
	ErrInvalidUser    = errors.New("no se pudo identificar el usuario, volvé a iniciar sesión")
	ErrMissingFields  = errors.New("completá todos los campos obligatorios")
	ErrInvalidPhone   = errors.New("ingresá un teléfono válido")
	ErrInvalidPayment = errors.New("elegí un método de pago válido")
	ErrEmptyCart      = errors.New("el carrito está vacío")
)

type CheckoutInput struct {
	Telefono   string
	Direccion  string
	MetodoPago domain.PaymentMethod
}

// CheckoutUC convierte el carrito más los datos de entrega en un único
// pedido contra el backend. El carrito se vacía sólo después de que el
// backend confirma; ante cualquier error queda intacto para reintentar.
type CheckoutUC struct {
	Cart   *CartUC
	Orders domain.OrderAPI
}

func (uc *CheckoutUC) Submit(ctx context.Context, user *domain.User, in CheckoutInput) (*domain.Order, error) {
	if user == nil {
		return nil, ErrNoSession
	}
	if user.ID <= 0 {
		return nil, ErrInvalidUser
	}
	direccion := strings.TrimSpace(in.Direccion)
	if strings.TrimSpace(in.Telefono) == "" || direccion == "" || in.MetodoPago == "" {
		return nil, ErrMissingFields
	}
	telefono, err := strconv.ParseInt(digitsOnly(in.Telefono), 10, 64)
	if err != nil || telefono <= 0 {
		return nil, ErrInvalidPhone
	}
	if !domain.ValidPaymentMethod(in.MetodoPago) {
		return nil, ErrInvalidPayment
	}
	items := uc.Cart.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	detalles := make([]domain.OrderDetailRequest, 0, len(items))
	for _, it := range items {
		// Sin precios: el backend vuelve a cotizar cada línea.
		pid, _ := strconv.ParseInt(it.ID, 10, 64)
		detalles = append(detalles, domain.OrderDetailRequest{IDProducto: pid, Cantidad: it.Quantity})
	}
	req := domain.OrderCreateRequest{
		IDUsuario:  user.ID,
		Telefono:   telefono,
		Direccion:  direccion,
		MetodoPago: in.MetodoPago,
		Detalles:   detalles,
	}
	order, err := uc.Orders.CreateOrder(ctx, req)
	if err != nil {
		return nil, err
	}
	uc.Cart.Clear()
	return order, nil
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
