package admin

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/invoice"
	paymentmodel "github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/payment"
	ticketmodel "github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/ticket"
	ticketpkg "github.com/coloradoleasecheck/leasecheck/internal/ticket"
	"github.com/coloradoleasecheck/leasecheck/internal/transport"
	"github.com/coloradoleasecheck/leasecheck/pkg/logger"
)

type ServiceAPI interface {
	Dashboard() (*DashboardStats, error)
	ListPayments(limit, offset int) ([]*paymentmodel.Payment, error)
	OverridePaymentStatus(id int64, status string) (*paymentmodel.Payment, error)
	RerunInvoice(paymentID int64) (*invoice.Invoice, error)
}

// TicketAPI is the admin slice of the ticket service.
type TicketAPI interface {
	ListAll(status string, limit, offset int) ([]*ticketmodel.SupportTicket, error)
	UpdateStatus(id int64, dto *ticketpkg.UpdateStatusDTO) (*ticketmodel.SupportTicket, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Tickets TicketAPI
}

func NewHandler(service ServiceAPI, tickets TicketAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
		Tickets:     tickets,
	}
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Dashboard()
	if err != nil {
		h.Logger.Error("GetDashboard: aggregation failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	payments, err := h.Service.ListPayments(limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"payments": payments,
		"count":    len(payments),
	})
}

func (h *Handler) OverridePaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid payment id")
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.Service.OverridePaymentStatus(id, body.Status)
	if err != nil {
		h.Logger.Warn("OverridePaymentStatus: rejected", "error", err, "payment_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) RerunInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid payment id")
		return
	}

	inv, err := h.Service.RerunInvoice(id)
	if err != nil {
		h.Logger.Warn("RerunInvoice: rejected", "error", err, "payment_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, inv)
}

func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	tickets, err := h.Tickets.ListAll(r.URL.Query().Get("status"), limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"tickets": tickets,
		"count":   len(tickets),
	})
}

func (h *Handler) UpdateTicketStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid ticket id")
		return
	}

	var dto ticketpkg.UpdateStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.Tickets.UpdateStatus(id, &dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, t)
}
