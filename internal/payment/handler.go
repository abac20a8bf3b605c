package payment

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/payment"
	"github.com/coloradoleasecheck/leasecheck/internal/transport"
	"github.com/coloradoleasecheck/leasecheck/pkg/logger"
)

type ServiceAPI interface {
	CreateCheckout(dto *CreatePaymentDTO) (*CheckoutResponse, error)
	GetByStripeID(stripeID string) (*payment.Payment, error)
	GetByID(id int64) (*payment.Payment, error)
	List(limit, offset int) ([]*payment.Payment, error)
	ApplyStatus(stripeID, newStatus string, meta *StatusMetadata) (*payment.Payment, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var dto CreatePaymentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreatePayment: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Service.CreateCheckout(&dto)
	if err != nil {
		h.Logger.Error("CreatePayment: service error", "error", err, "plan_id", dto.PlanID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreatePayment: checkout created",
		"payment_id", resp.PaymentID,
		"stripe_payment_id", resp.StripePaymentID,
		"plan", resp.PlanName)

	h.WriteJSON(w, http.StatusCreated, resp)
}

// GetPaymentStatus lets the payment-status screen poll for the outcome of a
// checkout by intent id.
func (h *Handler) GetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	stripeID := r.URL.Query().Get("payment_intent")
	if stripeID == "" {
		h.WriteError(w, http.StatusBadRequest, "payment_intent is required")
		return
	}

	record, err := h.Service.GetByStripeID(stripeID)
	if err != nil {
		h.Logger.Warn("GetPaymentStatus: payment not found", "stripe_payment_id", stripeID)
		h.WriteError(w, http.StatusNotFound, "payment not found")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"stripe_payment_id": record.StripePaymentID,
		"status":            record.Status,
		"plan_name":         record.PlanName,
		"amount_cents":      record.AmountCents,
		"currency":          record.Currency,
	})
}
