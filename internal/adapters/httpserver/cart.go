package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lmaidana/superfood/internal/domain"
	"github.com/lmaidana/superfood/internal/usecase"
)

func (s *Server) handleCart(w http.ResponseWriter, r *http.Request) {
	data, cart, _ := s.pageData(w, r)
	items := cart.Items()
	data["Items"] = items
	data["Totals"] = cart.Totals(items)
	data["PaymentMethods"] = []domain.PaymentMethod{
		domain.PaymentCash,
		domain.PaymentCard,
		domain.PaymentTransfer,
	}
	if msg := r.URL.Query().Get("error"); msg != "" {
		data["Error"] = msg
	}
	s.render(w, "cart.html", data)
}

// handleCartAdd agrega un producto al carrito. El precio y el stock salen
// del backend en este momento, nunca del form: el form sólo trae id y
// cantidad.
func (s *Server) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", http.StatusMethodNotAllowed)
		return
	}
	id := parseID(r.FormValue("id"))
	if id <= 0 {
		http.NotFound(w, r)
		return
	}
	quantity, err := strconv.Atoi(strings.TrimSpace(r.FormValue("quantity")))
	if err != nil || quantity < 1 {
		quantity = 1
	}
	p, err := s.catalog.Product(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Error().Err(err).Int64("id", id).Msg("no se pudo cargar el producto para el carrito")
		http.Error(w, "err", 500)
		return
	}
	cart, _ := s.stores(w, r)
	cart.Add(domain.CartItem{
		ID:          strconv.FormatInt(p.ID, 10),
		Nombre:      p.Nombre,
		Descripcion: p.Descripcion,
		Precio:      p.Precio,
		Stock:       p.Stock,
		ImagenURL:   p.ImagenURL,
	}, quantity)

	back := r.FormValue("back")
	if back == "detail" {
		http.Redirect(w, r, "/product/"+strconv.FormatInt(id, 10)+"?added=1", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (s *Server) handleCartUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimSpace(r.FormValue("id"))
	quantity, _ := strconv.Atoi(strings.TrimSpace(r.FormValue("quantity")))
	cart, _ := s.stores(w, r)
	cart.UpdateQuantity(id, quantity)
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (s *Server) handleCartClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", http.StatusMethodNotAllowed)
		return
	}
	cart, _ := s.stores(w, r)
	cart.Clear()
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

// handleCartCheckout valida y envía el pedido. Los errores de validación
// vuelven al carrito con el mensaje; el carrito sólo se vacía cuando el
// backend confirmó.
func (s *Server) handleCartCheckout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", http.StatusMethodNotAllowed)
		return
	}
	cart, session := s.stores(w, r)
	checkout := &usecase.CheckoutUC{Cart: cart, Orders: s.orders}

	in := usecase.CheckoutInput{
		Telefono:   r.FormValue("telefono"),
		Direccion:  r.FormValue("direccion"),
		MetodoPago: domain.PaymentMethod(r.FormValue("metodoPago")),
	}
	order, err := checkout.Submit(r.Context(), session.User(), in)
	if err != nil {
		if errors.Is(err, usecase.ErrNoSession) || errors.Is(err, usecase.ErrInvalidUser) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		redirectWithError(w, r, "/cart", err)
		return
	}
	log.Info().Int64("order", order.ID).Msg("pedido creado")
	http.Redirect(w, r, "/orders?created=1", http.StatusSeeOther)
}
