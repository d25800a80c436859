package httpserver

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lmaidana/superfood/internal/adapters/kvstore"
	"github.com/lmaidana/superfood/internal/adapters/scraper"
	"github.com/lmaidana/superfood/internal/domain"
	"github.com/lmaidana/superfood/internal/usecase"
)

type Server struct {
	mux     *http.ServeMux
	tmpl    *template.Template
	catalog domain.CatalogAPI
	orders  domain.OrderAPI
	auth    domain.AuthAPI
	images  *scraper.ImageScraper
	secret  []byte
}

func New(t *template.Template, catalog domain.CatalogAPI, orders domain.OrderAPI, auth domain.AuthAPI, images *scraper.ImageScraper, secret []byte) http.Handler {
	s := &Server{
		mux:     http.NewServeMux(),
		tmpl:    t,
		catalog: catalog,
		orders:  orders,
		auth:    auth,
		images:  images,
		secret:  secret,
	}
	s.routes()
	return Chain(s.mux,
		RequestID,
		Recovery,
		Logging,
	)
}

func (s *Server) routes() {
	s.mux.Handle("/public/", http.StripPrefix("/public/", http.FileServer(http.Dir("public"))))

	s.mux.HandleFunc("/", s.handleHome)
	s.mux.HandleFunc("/product/", s.handleProduct)
	s.mux.HandleFunc("/product/view", s.handleProductView)

	s.mux.HandleFunc("/cart", s.handleCart)
	s.mux.HandleFunc("/cart/add", s.handleCartAdd)
	s.mux.HandleFunc("/cart/update", s.handleCartUpdate)
	s.mux.HandleFunc("/cart/clear", s.handleCartClear)
	s.mux.HandleFunc("/cart/checkout", s.handleCartCheckout)

	s.mux.HandleFunc("/orders", s.handleOrders)

	s.mux.HandleFunc("/login", s.handleLogin)
	s.mux.HandleFunc("/register", s.handleRegister)
	s.mux.HandleFunc("/logout", s.handleLogout)

	s.mux.HandleFunc("/admin", s.handleAdminHome)
	s.mux.HandleFunc("/admin/categories", s.handleAdminCategories)
	s.mux.HandleFunc("/admin/products", s.handleAdminProducts)
	s.mux.HandleFunc("/admin/orders", s.handleAdminOrders)
	s.mux.HandleFunc("/admin/products/image-search", s.handleAdminImageSearch)
	s.mux.HandleFunc("/admin/export/products.xlsx", s.handleExportProducts)
	s.mux.HandleFunc("/admin/export/orders.xlsx", s.handleExportOrders)
}

// stores arma el storage firmado por cookies del request actual y los
// usecases que viven sobre él. Cada request tiene su propio overlay de
// escrituras.
func (s *Server) stores(w http.ResponseWriter, r *http.Request) (*usecase.CartUC, *usecase.SessionUC) {
	kv := kvstore.NewCookieStore(w, r, s.secret)
	return usecase.NewCart(kv), usecase.NewSession(kv)
}

// pageData arma el mapa base de toda página: usuario logueado y cantidad de
// líneas del carrito para el badge del nav.
func (s *Server) pageData(w http.ResponseWriter, r *http.Request) (map[string]any, *usecase.CartUC, *usecase.SessionUC) {
	cart, session := s.stores(w, r)
	data := map[string]any{}
	if u := session.User(); u != nil {
		data["User"] = u
	}
	data["CartCount"] = len(cart.Items())
	return data, cart, session
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	if m, ok := data.(map[string]any); ok {
		if _, exists := m["Year"]; !exists {
			m["Year"] = time.Now().Year()
		}
		data = m
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Error().Err(err).Str("tpl", name).Msg("render")
		http.Error(w, "tpl", 500)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// redirectWithError vuelve a la página con el mensaje en la query para que
// el GET lo muestre.
func redirectWithError(w http.ResponseWriter, r *http.Request, path string, err error) {
	http.Redirect(w, r, path+"?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
}

func parseID(s string) int64 {
	id, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return id
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data, _, _ := s.pageData(w, r)
	data["Query"], data["Category"], data["Sort"] = "", int64(0), ""

	products, err := s.catalog.Products(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("no se pudo cargar el catálogo")
		data["Error"] = "No pudimos cargar los productos, probá de nuevo en un rato."
		data["Products"], data["Categories"] = []domain.Product{}, []domain.Category{}
		s.render(w, "home.html", data)
		return
	}
	cats, err := s.catalog.Categories(r.Context())
	if err != nil {
		log.Warn().Err(err).Msg("no se pudieron cargar las categorías")
	}

	qv := r.URL.Query()
	query := strings.TrimSpace(qv.Get("q"))
	category := parseID(qv.Get("category"))
	sortBy := qv.Get("sort")
	products = filterProducts(products, query, category)
	sortProducts(products, sortBy)

	data["Products"] = products
	data["Categories"] = cats
	data["Query"] = query
	data["Category"] = category
	data["Sort"] = sortBy
	s.render(w, "home.html", data)
}

// filterProducts aplica búsqueda por texto y filtro de categoría sobre el
// listado completo; el backend no pagina ni filtra.
func filterProducts(products []domain.Product, query string, category int64) []domain.Product {
	if query == "" && category == 0 {
		return products
	}
	q := strings.ToLower(query)
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if category != 0 && (p.Categoria == nil || p.Categoria.ID != category) {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(p.Nombre), q) &&
			!strings.Contains(strings.ToLower(p.Descripcion), q) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func sortProducts(products []domain.Product, by string) {
	switch by {
	case "precio-asc":
		sort.SliceStable(products, func(i, j int) bool { return products[i].Precio < products[j].Precio })
	case "precio-desc":
		sort.SliceStable(products, func(i, j int) bool { return products[i].Precio > products[j].Precio })
	case "nombre":
		sort.SliceStable(products, func(i, j int) bool {
			return strings.ToLower(products[i].Nombre) < strings.ToLower(products[j].Nombre)
		})
	}
}

// handleProductView recibe el producto elegido en la grilla, lo deja en el
// storage efímero y manda al detalle. Si la escritura falla no importa: el
// detalle re-consulta al backend.
func (s *Server) handleProductView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", http.StatusMethodNotAllowed)
		return
	}
	id := parseID(r.FormValue("id"))
	if id <= 0 {
		http.NotFound(w, r)
		return
	}
	_, session := s.stores(w, r)
	if p, err := s.catalog.Product(r.Context(), id); err == nil {
		session.RememberProduct(p)
	}
	http.Redirect(w, r, "/product/"+strconv.FormatInt(id, 10), http.StatusSeeOther)
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/product/")
	id := parseID(idStr)
	if id <= 0 {
		http.NotFound(w, r)
		return
	}
	data, _, session := s.pageData(w, r)

	// Primero el hand-off de la grilla; si no está o no coincide, se pide
	// al backend.
	p := session.TakeProduct()
	if p == nil || p.ID != id {
		var err error
		p, err = s.catalog.Product(r.Context(), id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			log.Error().Err(err).Int64("id", id).Msg("no se pudo cargar el producto")
			http.Error(w, "err", 500)
			return
		}
	}
	data["Product"] = p
	if r.URL.Query().Get("added") == "1" {
		data["Added"] = 1
	}
	s.render(w, "product.html", data)
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	data, _, session := s.pageData(w, r)
	user := session.User()
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	orders, err := s.orders.OrdersByUser(r.Context(), user.ID)
	if err != nil {
		log.Error().Err(err).Int64("user", user.ID).Msg("no se pudieron cargar los pedidos")
		data["Error"] = "No pudimos cargar tus pedidos."
	}
	data["Orders"] = orders
	if r.URL.Query().Get("created") == "1" {
		data["Created"] = 1
	}
	s.render(w, "orders.html", data)
}
