package domain

// CartItem es una línea del carrito local. El id se normaliza a su forma
// canónica de string en el borde del store: el backend lo codifica a veces
// como número y a veces como string.
type CartItem struct {
	ID          string  `json:"id"`
	Nombre      string  `json:"nombre"`
	Descripcion string  `json:"descripcion,omitempty"`
	Precio      float64 `json:"precio"`
	Stock       float64 `json:"stock"`
	ImagenURL   string  `json:"imagenUrl,omitempty"`
	Quantity    int     `json:"quantity"`
}

func (c CartItem) Subtotal() float64 {
	return c.Precio * float64(c.Quantity)
}

// KVStore abstrae el almacenamiento local del navegador (una clave, un
// valor serializado). Get devuelve false si la clave no existe o el valor
// guardado no es recuperable.
type KVStore interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
	Delete(key string)
}
