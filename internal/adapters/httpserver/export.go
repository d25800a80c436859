package httpserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// handleExportProducts baja el catálogo completo como planilla, para control
// de stock fuera del sistema.
func (s *Server) handleExportProducts(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	products, err := s.catalog.Products(r.Context())
	if err != nil {
		http.Error(w, "err", 500)
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Productos"
	f.SetSheetName("Sheet1", sheet)
	_ = f.SetSheetRow(sheet, "A1", &[]any{"ID", "Nombre", "Categoría", "Precio", "Stock", "Descripción", "Imagen"})
	for i, p := range products {
		categoria := ""
		if p.Categoria != nil {
			categoria = p.Categoria.Nombre
		}
		cell := fmt.Sprintf("A%d", i+2)
		_ = f.SetSheetRow(sheet, cell, &[]any{p.ID, p.Nombre, categoria, p.Precio, p.Stock, p.Descripcion, p.ImagenURL})
	}
	writeXLSX(w, f, "productos")
}

func (s *Server) handleExportOrders(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	orders, err := s.orders.Orders(r.Context())
	if err != nil {
		http.Error(w, "err", 500)
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Pedidos"
	f.SetSheetName("Sheet1", sheet)
	_ = f.SetSheetRow(sheet, "A1", &[]any{"ID", "Usuario", "Teléfono", "Dirección", "Pago", "Estado", "Total", "Fecha", "Líneas"})
	for i, o := range orders {
		cell := fmt.Sprintf("A%d", i+2)
		_ = f.SetSheetRow(sheet, cell, &[]any{o.ID, o.IDUsuario, o.Telefono, o.Direccion, o.MetodoPago, string(o.Estado), o.Total, o.Fecha, len(o.Detalles)})
	}
	writeXLSX(w, f, "pedidos")
}

func writeXLSX(w http.ResponseWriter, f *excelize.File, name string) {
	filename := fmt.Sprintf("%s-%s.xlsx", name, time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	if err := f.Write(w); err != nil {
		log.Error().Err(err).Msg("no se pudo escribir la planilla")
	}
}
