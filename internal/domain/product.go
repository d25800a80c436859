package domain

type Category struct {
	ID          int64  `json:"id"`
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion,omitempty"`
	ImagenURL   string `json:"imagenUrl,omitempty"`
}

type Product struct {
	ID          int64     `json:"id"`
	Nombre      string    `json:"nombre"`
	Precio      float64   `json:"precio"`
	Stock       float64   `json:"stock"`
	Descripcion string    `json:"descripcion,omitempty"`
	ImagenURL   string    `json:"imagenUrl,omitempty"`
	Categoria   *Category `json:"categoria,omitempty"`
}

// ProductPayload es el cuerpo de /product/create y /product/{id}/edit.
type ProductPayload struct {
	Nombre      string  `json:"nombre"`
	Precio      float64 `json:"precio"`
	Stock       float64 `json:"stock"`
	Descripcion string  `json:"descripcion,omitempty"`
	URL         string  `json:"url,omitempty"`
	IDCategoria int64   `json:"idCategoria,omitempty"`
}

// CategoryPayload es el cuerpo de /category/create y /category/{id}/edit.
type CategoryPayload struct {
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion"`
	ImagenURL   string `json:"imagenUrl,omitempty"`
}
