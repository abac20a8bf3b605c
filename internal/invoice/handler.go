package invoice

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/invoice"
	"github.com/coloradoleasecheck/leasecheck/internal/transport"
	"github.com/coloradoleasecheck/leasecheck/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	GetByNumber(number string) (*invoice.Invoice, error)
	RenderPDF(inv *invoice.Invoice) error
}

type Handler struct {
	*transport.BaseHandler
	Service    ServiceAPI
	invoiceDir string
}

func NewHandler(service ServiceAPI, invoiceDir string) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
		invoiceDir:  invoiceDir,
	}
}

func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	inv, err := h.Service.GetByNumber(number)
	if err != nil {
		h.Logger.Warn("GetInvoice: lookup failed", "invoice_number", number, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, inv)
}

// DownloadInvoice streams the rendered PDF as an attachment, rendering it on
// demand if the earlier attempt failed.
func (h *Handler) DownloadInvoice(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	inv, err := h.Service.GetByNumber(number)
	if err != nil {
		h.Logger.Warn("DownloadInvoice: lookup failed", "invoice_number", number, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	if inv.PDFPath == "" {
		if err := h.Service.RenderPDF(inv); err != nil {
			h.Logger.Error("DownloadInvoice: on-demand render failed", "invoice_number", number, "error", err)
			h.WriteError(w, http.StatusInternalServerError, "error generating invoice PDF")
			return
		}
	}

	fullPath := filepath.Join(h.invoiceDir, inv.PDFPath)
	if _, err := os.Stat(fullPath); err != nil {
		h.Logger.Error("DownloadInvoice: pdf file missing", "invoice_number", number, "path", fullPath)
		h.WriteError(w, http.StatusNotFound, "invoice PDF file not found")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="invoice_`+inv.InvoiceNumber+`.pdf"`)
	http.ServeFile(w, r, fullPath)
}
