package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lmaidana/superfood/internal/domain"
)

// requireAdmin corta el request si no hay sesión de administrador: sin
// sesión va al login, con sesión de usuario común va a la tienda.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	_, session := s.stores(w, r)
	user := session.User()
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return nil, false
	}
	if !user.IsAdmin() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil, false
	}
	return user, true
}

func (s *Server) handleAdminHome(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireAdmin(w, r)
	if !ok {
		return
	}
	data := map[string]any{
		"User":          user,
		"ProductCount":  0,
		"CategoryCount": 0,
		"OrderCount":    0,
		"PendingCount":  0,
	}
	if products, err := s.catalog.Products(r.Context()); err == nil {
		data["ProductCount"] = len(products)
	}
	if cats, err := s.catalog.Categories(r.Context()); err == nil {
		data["CategoryCount"] = len(cats)
	}
	if orders, err := s.orders.Orders(r.Context()); err == nil {
		data["OrderCount"] = len(orders)
		pending := 0
		for _, o := range orders {
			if o.Estado == domain.OrderStatusPending {
				pending++
			}
		}
		data["PendingCount"] = pending
	}
	s.render(w, "admin_home.html", data)
}

func (s *Server) handleAdminCategories(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireAdmin(w, r)
	if !ok {
		return
	}
	if r.Method == http.MethodPost {
		payload := domain.CategoryPayload{
			Nombre:      strings.TrimSpace(r.FormValue("nombre")),
			Descripcion: strings.TrimSpace(r.FormValue("descripcion")),
			ImagenURL:   strings.TrimSpace(r.FormValue("imagenUrl")),
		}
		id := parseID(r.FormValue("id"))
		var err error
		switch r.FormValue("action") {
		case "create":
			err = s.catalog.CreateCategory(r.Context(), payload)
		case "update":
			err = s.catalog.UpdateCategory(r.Context(), id, payload)
		case "delete":
			err = s.catalog.DeleteCategory(r.Context(), id)
		default:
			http.Error(w, "action", http.StatusBadRequest)
			return
		}
		if err != nil {
			log.Error().Err(err).Str("action", r.FormValue("action")).Msg("operación de categoría falló")
			redirectWithError(w, r, "/admin/categories", err)
			return
		}
		http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
		return
	}

	data := map[string]any{"User": user}
	cats, err := s.catalog.Categories(r.Context())
	if err != nil {
		data["Error"] = err.Error()
	}
	data["Categories"] = cats
	if msg := r.URL.Query().Get("error"); msg != "" {
		data["Error"] = msg
	}
	s.render(w, "admin_categories.html", data)
}

func (s *Server) handleAdminProducts(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireAdmin(w, r)
	if !ok {
		return
	}
	if r.Method == http.MethodPost {
		precio, _ := strconv.ParseFloat(strings.TrimSpace(r.FormValue("precio")), 64)
		stock, _ := strconv.ParseFloat(strings.TrimSpace(r.FormValue("stock")), 64)
		payload := domain.ProductPayload{
			Nombre:      strings.TrimSpace(r.FormValue("nombre")),
			Descripcion: strings.TrimSpace(r.FormValue("descripcion")),
			Precio:      precio,
			Stock:       stock,
			URL:         strings.TrimSpace(r.FormValue("url")),
			IDCategoria: parseID(r.FormValue("idCategoria")),
		}
		id := parseID(r.FormValue("id"))
		var err error
		switch r.FormValue("action") {
		case "create":
			err = s.catalog.CreateProduct(r.Context(), payload)
		case "update":
			err = s.catalog.UpdateProduct(r.Context(), id, payload)
		case "delete":
			err = s.catalog.DeleteProduct(r.Context(), id)
		default:
			http.Error(w, "action", http.StatusBadRequest)
			return
		}
		if err != nil {
			log.Error().Err(err).Str("action", r.FormValue("action")).Msg("operación de producto falló")
			redirectWithError(w, r, "/admin/products", err)
			return
		}
		http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
		return
	}

	data := map[string]any{"User": user}
	products, err := s.catalog.Products(r.Context())
	if err != nil {
		data["Error"] = err.Error()
	}
	cats, _ := s.catalog.Categories(r.Context())
	data["Products"] = products
	data["Categories"] = cats
	if msg := r.URL.Query().Get("error"); msg != "" {
		data["Error"] = msg
	}
	s.render(w, "admin_products.html", data)
}

func (s *Server) handleAdminOrders(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireAdmin(w, r)
	if !ok {
		return
	}
	if r.Method == http.MethodPost {
		id := parseID(r.FormValue("id"))
		var err error
		switch r.FormValue("action") {
		case "status":
			upd := domain.OrderStatusUpdate{ID: id, Estado: domain.NormalizeStatus(r.FormValue("estado"))}
			err = s.orders.UpdateOrderStatus(r.Context(), upd)
		case "delete":
			err = s.orders.DeleteOrder(r.Context(), id)
		default:
			http.Error(w, "action", http.StatusBadRequest)
			return
		}
		if err != nil {
			log.Error().Err(err).Int64("order", id).Msg("operación de pedido falló")
			redirectWithError(w, r, "/admin/orders", err)
			return
		}
		http.Redirect(w, r, "/admin/orders", http.StatusSeeOther)
		return
	}

	data := map[string]any{"User": user, "Estado": ""}
	orders, err := s.orders.Orders(r.Context())
	if err != nil {
		data["Error"] = err.Error()
	}
	// Filtro opcional por estado para la bandeja.
	if estado := r.URL.Query().Get("estado"); estado != "" {
		want := domain.NormalizeStatus(estado)
		filtered := orders[:0]
		for _, o := range orders {
			if o.Estado == want {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
		data["Estado"] = string(want)
	}
	data["Orders"] = orders
	data["Statuses"] = domain.OrderStatuses()
	if msg := r.URL.Query().Get("error"); msg != "" {
		data["Error"] = msg
	}
	s.render(w, "admin_orders.html", data)
}

// handleAdminImageSearch busca imágenes candidatas para un producto y
// devuelve las URLs en JSON para el formulario de alta.
func (s *Server) handleAdminImageSearch(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "falta el parámetro q"})
		return
	}
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	max, _ := strconv.Atoi(r.URL.Query().Get("max"))
	images, err := s.images.SearchImages(r.Context(), q, category, max)
	if err != nil {
		log.Warn().Err(err).Str("q", q).Msg("búsqueda de imágenes sin resultados")
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": "no se encontraron imágenes"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"images": images})
}
