package usecase

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lmaidana/superfood/internal/domain"
)

// CartStorageKey es la clave fija bajo la que se persiste el carrito.
const CartStorageKey = "cartItems"

// ShippingFee es el costo de envío plano en ARS; se suma una sola vez y
// sólo cuando el subtotal es mayor a cero.
const ShippingFee = 500.0

// CartUC es el dueño del carrito local: toda lectura pasa por una ronda de
// saneo y toda mutación termina en una escritura completa del valor. Las
// entradas guardadas que no se pueden sanear se descartan sin error; la
// recuperación es siempre best-effort.
type CartUC struct {
	Store domain.KVStore
}

func NewCart(store domain.KVStore) *CartUC { return &CartUC{Store: store} }

// Items lee y sanea el carrito persistido. Un valor ilegible (no-JSON o
// JSON que no es una lista) borra la clave y devuelve vacío: la corrupción
// se autorrepara, nunca se propaga.
func (uc *CartUC) Items() []domain.CartItem {
	raw, ok := uc.Store.Get(CartStorageKey)
	if !ok {
		return []domain.CartItem{}
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil || entries == nil {
		log.Warn().Msg("carrito almacenado ilegible, se descarta")
		uc.Store.Delete(CartStorageKey)
		return []domain.CartItem{}
	}
	items := make([]domain.CartItem, 0, len(entries))
	for _, e := range entries {
		if it, ok := toCartItem(e); ok {
			items = append(items, it)
		}
	}
	return items
}

// Add agrega quantity unidades al carrito, acotadas por el stock informado.
// Si el id ya existe se incrementa esa línea y se vuelve a acotar contra su
// stock registrado; si el recorte da 0 la cantidad existente queda como
// estaba. Devuelve false cuando la operación fue un no-op (sin stock).
func (uc *CartUC) Add(item domain.CartItem, quantity int) bool {
	items := uc.Items()
	qtyToAdd := clampQuantity(float64(quantity), item.Stock)
	if qtyToAdd <= 0 {
		log.Warn().Str("id", item.ID).Msg("intento de agregar un producto sin stock al carrito")
		return false
	}
	for i := range items {
		if items[i].ID == item.ID {
			if next := clampQuantity(float64(items[i].Quantity+qtyToAdd), items[i].Stock); next > 0 {
				items[i].Quantity = next
			}
			uc.persist(items)
			return true
		}
	}
	item.Quantity = qtyToAdd
	uc.persist(append(items, item))
	return true
}

// UpdateQuantity reemplaza la cantidad de una línea. Una cantidad saneada
// menor o igual a cero elimina la línea: ése es el camino normal para
// decrementar a cero. Devuelve false si el id no está en el carrito.
func (uc *CartUC) UpdateQuantity(id string, next int) bool {
	items := uc.Items()
	idx := -1
	for i := range items {
		if items[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false
	}
	if q := clampQuantity(float64(next), items[idx].Stock); q <= 0 {
		items = append(items[:idx], items[idx+1:]...)
	} else {
		items[idx].Quantity = q
	}
	uc.persist(items)
	return true
}

// Clear borra el carrito persistido. Es idempotente.
func (uc *CartUC) Clear() {
	uc.Store.Delete(CartStorageKey)
}

type Totals struct {
	Subtotal float64
	Shipping float64
	Total    float64
}

func (uc *CartUC) Totals(items []domain.CartItem) Totals {
	var t Totals
	for _, it := range items {
		t.Subtotal += it.Subtotal()
	}
	if t.Subtotal > 0 {
		t.Shipping = ShippingFee
	}
	t.Total = t.Subtotal + t.Shipping
	return t
}

func (uc *CartUC) persist(items []domain.CartItem) {
	b, err := json.Marshal(items)
	if err != nil {
		log.Error().Err(err).Msg("no se pudo serializar el carrito")
		return
	}
	// Un fallo de escritura se loguea y nada más: el estado en memoria del
	// caller no se revierte (desincronización aceptada, ver DESIGN.md).
	if err := uc.Store.Set(CartStorageKey, b); err != nil {
		log.Error().Err(err).Msg("no se pudo guardar el carrito")
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// coerceNumber reproduce la coerción laxa del productor original: acepta
// números y strings numéricos, con el string vacío valiendo 0.
func coerceNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		t := strings.TrimSpace(n)
		if t == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(t, 64)
		if err != nil || !isFinite(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// sanitizeStock devuelve el stock como número finito, o false si el campo
// está ausente o no se puede interpretar.
func sanitizeStock(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if isFinite(n) {
			return n, true
		}
	case string:
		t := strings.TrimSpace(n)
		if t == "" {
			break
		}
		if f, err := strconv.ParseFloat(t, 64); err == nil && isFinite(f) {
			return f, true
		}
	}
	return 0, false
}

// clampQuantity baja la cantidad pedida a un entero positivo dentro de
// [1, stock]. Stock cero o negativo anula la cantidad: no se mantienen
// líneas sin stock.
func clampQuantity(value float64, stock float64) int {
	if !isFinite(value) {
		return 0
	}
	q := int(math.Floor(value))
	if q <= 0 {
		return 0
	}
	if !isFinite(stock) || stock <= 0 {
		return 0
	}
	if max := int(math.Floor(stock)); q > max {
		q = max
	}
	return q
}

// normalizeID calcula la forma canónica de string del id una sola vez en el
// borde del store; el backend lo manda a veces como número y a veces como
// string.
func normalizeID(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		return id, true
	case float64:
		if !isFinite(id) {
			return "", false
		}
		return strconv.FormatFloat(id, 'f', -1, 64), true
	}
	return "", false
}

// toCartItem valida y normaliza una entrada cruda del storage, o la
// descarta. Cada regla replica al productor original: id string o número,
// nombre no vacío, precio finito, stock saneado con ausente = 0, cantidad
// entera positiva acotada por el stock.
func toCartItem(raw json.RawMessage) (domain.CartItem, bool) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil || m == nil {
		return domain.CartItem{}, false
	}
	id, ok := normalizeID(m["id"])
	if !ok {
		return domain.CartItem{}, false
	}
	nombre, ok := m["nombre"].(string)
	if !ok || strings.TrimSpace(nombre) == "" {
		return domain.CartItem{}, false
	}
	precio, ok := coerceNumber(m["precio"])
	if !ok || !isFinite(precio) {
		return domain.CartItem{}, false
	}
	stock, _ := sanitizeStock(m["stock"])
	qRaw, ok := coerceNumber(m["quantity"])
	if !ok {
		return domain.CartItem{}, false
	}
	quantity := clampQuantity(qRaw, stock)
	if quantity == 0 {
		return domain.CartItem{}, false
	}
	descripcion, _ := m["descripcion"].(string)
	imagen, _ := m["imagenUrl"].(string)
	return domain.CartItem{
		ID:          id,
		Nombre:      nombre,
		Descripcion: descripcion,
		Precio:      precio,
		Stock:       stock,
		ImagenURL:   strings.TrimSpace(imagen),
		Quantity:    quantity,
	}, true
}
