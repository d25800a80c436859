package domain

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pendiente"
	OrderStatusConfirmed OrderStatus = "confirmado"
	OrderStatusCancelled OrderStatus = "cancelado"
	OrderStatusFinished  OrderStatus = "terminado"
)

var orderStatuses = map[OrderStatus]struct{}{
	OrderStatusPending:   {},
	OrderStatusConfirmed: {},
	OrderStatusCancelled: {},
	OrderStatusFinished:  {},
}

// NormalizeStatus devuelve el estado en minúsculas o "pendiente" si no es
// uno de los cuatro conocidos.
func NormalizeStatus(raw string) OrderStatus {
	s := OrderStatus(raw)
	if _, ok := orderStatuses[s]; ok {
		return s
	}
	return OrderStatusPending
}

func OrderStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusPending, OrderStatusConfirmed, OrderStatusCancelled, OrderStatusFinished}
}

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "efectivo"
	PaymentCard     PaymentMethod = "tarjeta"
	PaymentTransfer PaymentMethod = "transferencia"
)

func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return true
	}
	return false
}

type OrderDetail struct {
	IDProducto int64   `json:"idProducto,omitempty"`
	Cantidad   int     `json:"cantidad"`
	Producto   string  `json:"producto,omitempty"`
	Nombre     string  `json:"nombre,omitempty"`
	Precio     float64 `json:"precio,omitempty"`
	Subtotal   float64 `json:"subtotal,omitempty"`
}

// Title prefiere el campo producto del backend y cae a nombre.
func (d OrderDetail) Title() string {
	if d.Producto != "" {
		return d.Producto
	}
	return d.Nombre
}

type Order struct {
	ID         int64         `json:"id"`
	IDUsuario  int64         `json:"idUsuario,omitempty"`
	Telefono   int64         `json:"telefono,omitempty"`
	Direccion  string        `json:"direccion,omitempty"`
	MetodoPago string        `json:"metodoPago,omitempty"`
	Estado     OrderStatus   `json:"estado"`
	Total      float64       `json:"total"`
	Fecha      string        `json:"fecha,omitempty"`
	Detalles   []OrderDetail `json:"detalles"`
}

// OrderDetailRequest es una línea de /order/create: sólo producto y cantidad,
// el backend vuelve a calcular precios.
type OrderDetailRequest struct {
	IDProducto int64 `json:"idProducto"`
	Cantidad   int   `json:"cantidad"`
}

type OrderCreateRequest struct {
	IDUsuario  int64                `json:"idUsuario"`
	Telefono   int64                `json:"telefono"`
	Direccion  string               `json:"direccion"`
	MetodoPago PaymentMethod        `json:"metodoPago"`
	Detalles   []OrderDetailRequest `json:"detalles"`
}

// OrderStatusUpdate es el cuerpo de PATCH /order/status.
type OrderStatusUpdate struct {
	ID     int64       `json:"id"`
	Estado OrderStatus `json:"estado"`
}
