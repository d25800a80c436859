package httpserver

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmaidana/superfood/internal/adapters/scraper"
	"github.com/lmaidana/superfood/internal/domain"
	"github.com/lmaidana/superfood/internal/views"
)

// fakeAPI implementa las tres interfaces del backend en memoria.
type fakeAPI struct {
	products []domain.Product
	orders   []domain.Order
	users    map[string]*domain.User

	createdOrders []domain.OrderCreateRequest
}

func (f *fakeAPI) Categories(ctx context.Context) ([]domain.Category, error) {
	return []domain.Category{{ID: 1, Nombre: "Almacén"}}, nil
}
func (f *fakeAPI) CreateCategory(ctx context.Context, p domain.CategoryPayload) error { return nil }
func (f *fakeAPI) UpdateCategory(ctx context.Context, id int64, p domain.CategoryPayload) error {
	return nil
}
func (f *fakeAPI) DeleteCategory(ctx context.Context, id int64) error { return nil }

func (f *fakeAPI) Products(ctx context.Context) ([]domain.Product, error) { return f.products, nil }
func (f *fakeAPI) Product(ctx context.Context, id int64) (*domain.Product, error) {
	for i := range f.products {
		if f.products[i].ID == id {
			p := f.products[i]
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}
func (f *fakeAPI) CreateProduct(ctx context.Context, p domain.ProductPayload) error { return nil }
func (f *fakeAPI) UpdateProduct(ctx context.Context, id int64, p domain.ProductPayload) error {
	return nil
}
func (f *fakeAPI) DeleteProduct(ctx context.Context, id int64) error { return nil }

func (f *fakeAPI) CreateOrder(ctx context.Context, req domain.OrderCreateRequest) (*domain.Order, error) {
	f.createdOrders = append(f.createdOrders, req)
	return &domain.Order{ID: 42, IDUsuario: req.IDUsuario, Estado: domain.OrderStatusPending}, nil
}
func (f *fakeAPI) Orders(ctx context.Context) ([]domain.Order, error) { return f.orders, nil }
func (f *fakeAPI) OrdersByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	return f.orders, nil
}
func (f *fakeAPI) UpdateOrderStatus(ctx context.Context, upd domain.OrderStatusUpdate) error {
	return nil
}
func (f *fakeAPI) DeleteOrder(ctx context.Context, id int64) error { return nil }

func (f *fakeAPI) Login(ctx context.Context, email, contrasena string) (*domain.User, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return nil, errors.New("credenciales inválidas")
}
func (f *fakeAPI) Register(ctx context.Context, user domain.User) (*domain.User, error) {
	return &user, nil
}

func newTestServer(t *testing.T, api *fakeAPI) http.Handler {
	t.Helper()
	funcMap := template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"mul": func(a, b float64) float64 { return a * b },
		"ars": func(v float64) string { return "ARS" },
		"img": func(u string) string { return u },
	}
	tmpl, err := template.New("layout").Funcs(funcMap).ParseFS(views.FS, "*.html")
	require.NoError(t, err)
	return New(tmpl, api, api, api, scraper.NewImageScraper(), []byte("test-secret"))
}

func defaultAPI() *fakeAPI {
	return &fakeAPI{
		products: []domain.Product{
			{ID: 7, Nombre: "Galletitas de avena", Precio: 1200, Stock: 3},
			{ID: 8, Nombre: "Yerba orgánica", Precio: 4500, Stock: 10},
		},
		users: map[string]*domain.User{
			"ana@example.com":   {ID: 5, Nombre: "ana", Email: "ana@example.com", Rol: domain.RoleUser},
			"admin@example.com": {ID: 1, Nombre: "root", Email: "admin@example.com", Rol: domain.RoleAdmin},
		},
	}
}

// carry pasa las cookies de una respuesta al request siguiente.
func carry(req *http.Request, recs ...*httptest.ResponseRecorder) *http.Request {
	jar := map[string]*http.Cookie{}
	for _, rec := range recs {
		for _, c := range rec.Result().Cookies() {
			jar[c.Name] = c
		}
	}
	for _, c := range jar {
		if c.MaxAge >= 0 && c.Value != "" {
			req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
		}
	}
	return req
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestHomeListsProducts(t *testing.T) {
	srv := newTestServer(t, defaultAPI())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Galletitas de avena")
	assert.Contains(t, rec.Body.String(), "Yerba orgánica")
}

func TestHomeFiltersByQuery(t *testing.T) {
	srv := newTestServer(t, defaultAPI())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?q=yerba", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Galletitas de avena")
	assert.Contains(t, rec.Body.String(), "Yerba orgánica")
}

func TestCartAddAndView(t *testing.T) {
	srv := newTestServer(t, defaultAPI())

	add := httptest.NewRecorder()
	srv.ServeHTTP(add, postForm("/cart/add", url.Values{"id": {"7"}, "quantity": {"2"}}))
	require.Equal(t, http.StatusSeeOther, add.Code)

	view := httptest.NewRecorder()
	srv.ServeHTTP(view, carry(httptest.NewRequest(http.MethodGet, "/cart", nil), add))
	require.Equal(t, http.StatusOK, view.Code)
	assert.Contains(t, view.Body.String(), "Galletitas de avena")
	assert.Contains(t, view.Body.String(), `value="2"`)
}

func TestCartAddClampsToBackendStock(t *testing.T) {
	srv := newTestServer(t, defaultAPI())

	add := httptest.NewRecorder()
	srv.ServeHTTP(add, postForm("/cart/add", url.Values{"id": {"7"}, "quantity": {"50"}}))

	view := httptest.NewRecorder()
	srv.ServeHTTP(view, carry(httptest.NewRequest(http.MethodGet, "/cart", nil), add))
	assert.Contains(t, view.Body.String(), `value="3"`, "la cantidad queda en el stock disponible")
}

func TestCartAddUnknownProductIs404(t *testing.T) {
	srv := newTestServer(t, defaultAPI())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, postForm("/cart/add", url.Values{"id": {"999"}}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckoutWithoutSessionRedirectsToLogin(t *testing.T) {
	srv := newTestServer(t, defaultAPI())

	add := httptest.NewRecorder()
	srv.ServeHTTP(add, postForm("/cart/add", url.Values{"id": {"7"}}))

	rec := httptest.NewRecorder()
	form := url.Values{"telefono": {"1123456789"}, "direccion": {"Calle 1"}, "metodoPago": {"efectivo"}}
	srv.ServeHTTP(rec, carry(postForm("/cart/checkout", form), add))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestCheckoutFlowCreatesOrderAndClearsCart(t *testing.T) {
	api := defaultAPI()
	srv := newTestServer(t, api)

	login := httptest.NewRecorder()
	srv.ServeHTTP(login, postForm("/login", url.Values{"email": {"ana@example.com"}, "contrasena": {"x"}}))
	require.Equal(t, http.StatusSeeOther, login.Code)
	assert.Equal(t, "/", login.Header().Get("Location"))

	add := httptest.NewRecorder()
	srv.ServeHTTP(add, carry(postForm("/cart/add", url.Values{"id": {"7"}, "quantity": {"2"}}), login))

	checkout := httptest.NewRecorder()
	form := url.Values{"telefono": {"11 2345-6789"}, "direccion": {"Av. Siempre Viva 742"}, "metodoPago": {"efectivo"}}
	srv.ServeHTTP(checkout, carry(postForm("/cart/checkout", form), login, add))

	require.Equal(t, http.StatusSeeOther, checkout.Code)
	assert.Equal(t, "/orders?created=1", checkout.Header().Get("Location"))

	require.Len(t, api.createdOrders, 1)
	req := api.createdOrders[0]
	assert.Equal(t, int64(5), req.IDUsuario)
	require.Len(t, req.Detalles, 1)
	assert.Equal(t, int64(7), req.Detalles[0].IDProducto)
	assert.Equal(t, 2, req.Detalles[0].Cantidad)

	// El carrito quedó vacío después del pedido.
	view := httptest.NewRecorder()
	srv.ServeHTTP(view, carry(httptest.NewRequest(http.MethodGet, "/cart", nil), login, add, checkout))
	assert.Contains(t, view.Body.String(), "Tu carrito está vacío")
}

func TestCheckoutValidationErrorKeepsCart(t *testing.T) {
	api := defaultAPI()
	srv := newTestServer(t, api)

	login := httptest.NewRecorder()
	srv.ServeHTTP(login, postForm("/login", url.Values{"email": {"ana@example.com"}, "contrasena": {"x"}}))

	add := httptest.NewRecorder()
	srv.ServeHTTP(add, carry(postForm("/cart/add", url.Values{"id": {"7"}}), login))

	checkout := httptest.NewRecorder()
	form := url.Values{"telefono": {"sin-numeros"}, "direccion": {"Calle 1"}, "metodoPago": {"efectivo"}}
	srv.ServeHTTP(checkout, carry(postForm("/cart/checkout", form), login, add))

	require.Equal(t, http.StatusSeeOther, checkout.Code)
	assert.Contains(t, checkout.Header().Get("Location"), "/cart?error=")
	assert.Empty(t, api.createdOrders)
}

func TestOrdersRequiresSession(t *testing.T) {
	srv := newTestServer(t, defaultAPI())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestAdminRequiresAdminRole(t *testing.T) {
	srv := newTestServer(t, defaultAPI())

	// Sin sesión: al login.
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	// Usuario común: a la tienda.
	login := httptest.NewRecorder()
	srv.ServeHTTP(login, postForm("/login", url.Values{"email": {"ana@example.com"}, "contrasena": {"x"}}))
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, carry(httptest.NewRequest(http.MethodGet, "/admin", nil), login))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestAdminLoginLandsOnPanel(t *testing.T) {
	srv := newTestServer(t, defaultAPI())

	login := httptest.NewRecorder()
	srv.ServeHTTP(login, postForm("/login", url.Values{"email": {"admin@example.com"}, "contrasena": {"x"}}))
	require.Equal(t, http.StatusSeeOther, login.Code)
	assert.Equal(t, "/admin", login.Header().Get("Location"))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, carry(httptest.NewRequest(http.MethodGet, "/admin", nil), login))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Panel de administración")
}

func TestLogoutKeepsCart(t *testing.T) {
	srv := newTestServer(t, defaultAPI())

	login := httptest.NewRecorder()
	srv.ServeHTTP(login, postForm("/login", url.Values{"email": {"ana@example.com"}, "contrasena": {"x"}}))

	add := httptest.NewRecorder()
	srv.ServeHTTP(add, carry(postForm("/cart/add", url.Values{"id": {"7"}}), login))

	logout := httptest.NewRecorder()
	srv.ServeHTTP(logout, carry(httptest.NewRequest(http.MethodGet, "/logout", nil), login, add))

	view := httptest.NewRecorder()
	srv.ServeHTTP(view, carry(httptest.NewRequest(http.MethodGet, "/cart", nil), login, add, logout))
	require.Equal(t, http.StatusOK, view.Code)
	assert.Contains(t, view.Body.String(), "Galletitas de avena")
	// Sin sesión, el checkout pide loguearse.
	assert.Contains(t, view.Body.String(), "iniciar sesión")
}

func TestProductDetailFallsBackToBackend(t *testing.T) {
	srv := newTestServer(t, defaultAPI())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/product/7", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Galletitas de avena")
}

func TestProductDetailUnknownIs404(t *testing.T) {
	srv := newTestServer(t, defaultAPI())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/product/999", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductViewHandsOffAndRedirects(t *testing.T) {
	srv := newTestServer(t, defaultAPI())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, postForm("/product/view", url.Values{"id": {"7"}}))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/product/7", rec.Header().Get("Location"))

	detail := httptest.NewRecorder()
	srv.ServeHTTP(detail, carry(httptest.NewRequest(http.MethodGet, "/product/7", nil), rec))
	require.Equal(t, http.StatusOK, detail.Code)
	assert.Contains(t, detail.Body.String(), "Galletitas de avena")
}
