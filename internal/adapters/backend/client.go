package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lmaidana/superfood/internal/domain"
)

const defaultBaseURL = "http://localhost:8080"

// Client habla con el backend REST que es dueño de toda la lógica de
// negocio: catálogo, precios, stock, pedidos y autenticación. Acá sólo se
// transportan requests y se normalizan respuestas.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{baseURL: baseURL, httpClient: &http.Client{Timeout: 10 * time.Second}}
}

// APIError es una respuesta no-2xx del backend, con el mensaje extraído del
// cuerpo para mostrárselo al usuario.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

func apiError(res *http.Response, fallback string) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	msg := fallback
	ct := res.Header.Get("Content-Type")
	if strings.Contains(ct, "application/json") {
		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal(body, &payload); err == nil {
			switch {
			case payload.Message != "":
				msg = payload.Message
			case payload.Error != "":
				msg = payload.Error
			case len(bytes.TrimSpace(body)) > 0:
				msg = string(bytes.TrimSpace(body))
			}
		}
	} else if t := strings.TrimSpace(string(body)); t != "" {
		msg = t
	}
	return &APIError{Status: res.StatusCode, Message: msg}
}

// do arma el request, maneja el ciclo de vida de la respuesta y decodifica
// el cuerpo en out si se pidió. Un out nil descarta el cuerpo.
func (c *Client) do(ctx context.Context, method, path string, body any, out any, fallback string) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error de conexión con el backend: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		if res.StatusCode == http.StatusNotFound {
			return domain.ErrNotFound
		}
		return apiError(res, fallback)
	}
	if out == nil {
		return nil
	}
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		// Varios endpoints responden 200 sin cuerpo.
		return nil
	}
	return json.Unmarshal(data, out)
}

// flexNumber acepta número, string numérico o null, con la misma coerción
// laxa del backend (lo que no parsea vale 0).
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case float64:
		*n = flexNumber(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			*n = 0
			return nil
		}
		*n = flexNumber(f)
	default:
		*n = 0
	}
	return nil
}

type categoryDTO struct {
	ID          flexNumber `json:"id"`
	Nombre      string     `json:"nombre"`
	Descripcion string     `json:"descripcion"`
	ImagenURL   string     `json:"imagenUrl"`
}

// productDTO es la forma con la que el backend sirve productos: ids y
// cantidades a veces como string, y la imagen bajo el campo url.
type productDTO struct {
	ID          flexNumber   `json:"id"`
	Nombre      string       `json:"nombre"`
	Precio      flexNumber   `json:"precio"`
	Stock       flexNumber   `json:"stock"`
	URL         string       `json:"url"`
	Descripcion string       `json:"descripcion"`
	Categoria   *categoryDTO `json:"categoria"`
}

func (d productDTO) toDomain() domain.Product {
	stock := float64(d.Stock)
	if !(stock >= 0) {
		stock = 0
	}
	p := domain.Product{
		ID:          int64(d.ID),
		Nombre:      d.Nombre,
		Precio:      float64(d.Precio),
		Stock:       math.Floor(stock),
		Descripcion: strings.TrimSpace(d.Descripcion),
		ImagenURL:   strings.TrimSpace(d.URL),
	}
	if d.Categoria != nil {
		p.Categoria = &domain.Category{
			ID:          int64(d.Categoria.ID),
			Nombre:      d.Categoria.Nombre,
			Descripcion: d.Categoria.Descripcion,
			ImagenURL:   d.Categoria.ImagenURL,
		}
	}
	return p
}

func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var dtos []categoryDTO
	if err := c.do(ctx, http.MethodGet, "/category/", nil, &dtos, "no se pudieron cargar las categorías"); err != nil {
		return nil, err
	}
	cats := make([]domain.Category, 0, len(dtos))
	for _, d := range dtos {
		if strings.TrimSpace(d.Nombre) == "" {
			continue
		}
		cats = append(cats, domain.Category{ID: int64(d.ID), Nombre: d.Nombre, Descripcion: d.Descripcion, ImagenURL: d.ImagenURL})
	}
	return cats, nil
}

func (c *Client) CreateCategory(ctx context.Context, p domain.CategoryPayload) error {
	return c.do(ctx, http.MethodPost, "/category/create", p, nil, "no se pudo crear la categoría")
}

func (c *Client) UpdateCategory(ctx context.Context, id int64, p domain.CategoryPayload) error {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/category/%d/edit", id), p, nil, "no se pudo actualizar la categoría")
}

func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/category/%d/delete", id), nil, nil, "no se pudo eliminar la categoría")
}

func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	var dtos []productDTO
	if err := c.do(ctx, http.MethodGet, "/product/", nil, &dtos, "no se pudieron cargar los productos"); err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(dtos))
	for _, d := range dtos {
		products = append(products, d.toDomain())
	}
	return products, nil
}

func (c *Client) Product(ctx context.Context, id int64) (*domain.Product, error) {
	var dto productDTO
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/product/%d", id), nil, &dto, "no se pudo cargar el producto"); err != nil {
		return nil, err
	}
	p := dto.toDomain()
	return &p, nil
}

func (c *Client) CreateProduct(ctx context.Context, p domain.ProductPayload) error {
	return c.do(ctx, http.MethodPost, "/product/create", p, nil, "no se pudo crear el producto")
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, p domain.ProductPayload) error {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/product/%d/edit", id), p, nil, "no se pudo actualizar el producto")
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/product/%d/delete", id), nil, nil, "no se pudo eliminar el producto")
}

type orderDTO struct {
	ID         flexNumber       `json:"id"`
	IDUsuario  flexNumber       `json:"idUsuario"`
	Telefono   flexNumber       `json:"telefono"`
	Direccion  string           `json:"direccion"`
	MetodoPago string           `json:"metodoPago"`
	Estado     string           `json:"estado"`
	Total      flexNumber       `json:"total"`
	Fecha      string           `json:"fecha"`
	Detalles   []orderDetailDTO `json:"detalles"`
}

type orderDetailDTO struct {
	IDProducto flexNumber `json:"idProducto"`
	Cantidad   flexNumber `json:"cantidad"`
	Producto   string     `json:"producto"`
	Nombre     string     `json:"nombre"`
	Precio     flexNumber `json:"precio"`
	Subtotal   flexNumber `json:"subtotal"`
}

func (d orderDTO) toDomain() domain.Order {
	o := domain.Order{
		ID:         int64(d.ID),
		IDUsuario:  int64(d.IDUsuario),
		Telefono:   int64(d.Telefono),
		Direccion:  d.Direccion,
		MetodoPago: d.MetodoPago,
		Estado:     domain.NormalizeStatus(strings.ToLower(d.Estado)),
		Total:      float64(d.Total),
		Fecha:      d.Fecha,
	}
	for _, det := range d.Detalles {
		o.Detalles = append(o.Detalles, domain.OrderDetail{
			IDProducto: int64(det.IDProducto),
			Cantidad:   int(det.Cantidad),
			Producto:   det.Producto,
			Nombre:     det.Nombre,
			Precio:     float64(det.Precio),
			Subtotal:   float64(det.Subtotal),
		})
	}
	return o
}

func (c *Client) CreateOrder(ctx context.Context, req domain.OrderCreateRequest) (*domain.Order, error) {
	var dto orderDTO
	if err := c.do(ctx, http.MethodPost, "/order/create", req, &dto, "no se pudo crear el pedido"); err != nil {
		return nil, err
	}
	o := dto.toDomain()
	return &o, nil
}

func (c *Client) Orders(ctx context.Context) ([]domain.Order, error) {
	return c.listOrders(ctx, "/order/")
}

func (c *Client) OrdersByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	return c.listOrders(ctx, fmt.Sprintf("/order/%d/", userID))
}

func (c *Client) listOrders(ctx context.Context, path string) ([]domain.Order, error) {
	var dtos []orderDTO
	if err := c.do(ctx, http.MethodGet, path, nil, &dtos, "no se pudieron cargar los pedidos"); err != nil {
		return nil, err
	}
	orders := make([]domain.Order, 0, len(dtos))
	for _, d := range dtos {
		orders = append(orders, d.toDomain())
	}
	return orders, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, upd domain.OrderStatusUpdate) error {
	return c.do(ctx, http.MethodPatch, "/order/status", upd, nil, "no se pudo actualizar el estado del pedido")
}

func (c *Client) DeleteOrder(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/order/%d/delete", id), nil, nil, "no se pudo eliminar el pedido")
}

func (c *Client) Login(ctx context.Context, email, contrasena string) (*domain.User, error) {
	body := map[string]string{"email": email, "contrasena": contrasena}
	u := domain.User{}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &u, "credenciales inválidas"); err != nil {
		return nil, err
	}
	if u.Email == "" {
		// Respuesta 200 sin cuerpo: se guarda al menos el email.
		u.Email = email
	}
	return &u, nil
}

func (c *Client) Register(ctx context.Context, user domain.User) (*domain.User, error) {
	u := domain.User{}
	if err := c.do(ctx, http.MethodPost, "/auth/register", user, &u, "no se pudo registrar el usuario"); err != nil {
		return nil, err
	}
	return &u, nil
}
