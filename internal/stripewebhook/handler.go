package stripewebhook

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/invoice"
	paymentmodel "github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/payment"
	"github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/webhookevent"
	"github.com/coloradoleasecheck/leasecheck/internal/core/events"
	paymentpkg "github.com/coloradoleasecheck/leasecheck/internal/payment"
	"github.com/coloradoleasecheck/leasecheck/internal/transport"
	"github.com/coloradoleasecheck/leasecheck/pkg/logger"

	stripe "github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/webhook"
	"gorm.io/gorm"
)

// maxBodyBytes caps webhook payloads; Stripe events are small.
const maxBodyBytes = 65536

// EventRepositoryAPI records verified events for idempotent processing.
type EventRepositoryAPI interface {
	Insert(ev *webhookevent.WebhookEvent) error
	GetByStripeID(stripeEventID string) (*webhookevent.WebhookEvent, error)
	MarkProcessed(id int64, processingError *string) error
}

// InvoiceAPI is the slice of the invoice service the webhook needs.
type InvoiceAPI interface {
	EnsureForPayment(p *paymentmodel.Payment) (*invoice.Invoice, error)
}

type Handler struct {
	*transport.BaseHandler
	paymentService paymentpkg.ServiceAPI
	invoiceService InvoiceAPI
	eventRepo      EventRepositoryAPI
	eventBus       *events.EventBus
	webhookSecret  string
}

func NewHandler(paymentService paymentpkg.ServiceAPI, invoiceService InvoiceAPI, eventRepo EventRepositoryAPI, eventBus *events.EventBus, webhookSecret string) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler:    transport.NewBaseHandler(lg),
		paymentService: paymentService,
		invoiceService: invoiceService,
		eventRepo:      eventRepo,
		eventBus:       eventBus,
		webhookSecret:  webhookSecret,
	}
}

// HandleStripeEvent receives signed events at POST /stripe/events. The caller
// is Stripe's servers, not a browser, so the route lives outside any session
// or CSRF machinery. Nothing mutates until the signature verifies.
func (h *Handler) HandleStripeEvent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.Logger.Error("failed to read webhook body", "error", err)
		h.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "error reading request body"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		r.Header.Get("Stripe-Signature"),
		h.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		h.Logger.Warn("webhook signature verification failed", "error", err)
		h.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "signature verification failed"})
		return
	}

	// Record the event id first; a replayed delivery hits the unique index.
	// Only replays whose first delivery finished cleanly are acknowledged
	// without reprocessing. A retry of a failed delivery dispatches again,
	// otherwise Stripe's retry schedule can never recover the event.
	eventRow := &webhookevent.WebhookEvent{
		StripeEventID: string(event.ID),
		EventType:     string(event.Type),
	}
	if err := h.eventRepo.Insert(eventRow); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, getErr := h.eventRepo.GetByStripeID(string(event.ID))
			if getErr != nil {
				h.Logger.Error("failed to load replayed webhook event", "error", getErr, "event_id", event.ID)
				h.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load event"})
				return
			}
			if existing.ProcessedAt != nil && existing.ProcessingError == nil {
				h.Logger.Info("duplicate webhook delivery acknowledged",
					"event_id", event.ID,
					"event_type", event.Type)
				h.writeEventOK(w, &event)
				return
			}
			h.Logger.Info("redelivery of unprocessed webhook event",
				"event_id", event.ID,
				"event_type", event.Type)
			eventRow = existing
		} else {
			h.Logger.Error("failed to record webhook event", "error", err, "event_id", event.ID)
			h.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to record event"})
			return
		}
	}

	if err := h.dispatch(r.Context(), &event); err != nil {
		msg := err.Error()
		if markErr := h.eventRepo.MarkProcessed(eventRow.ID, &msg); markErr != nil {
			h.Logger.Error("failed to mark webhook event failed", "error", markErr, "event_id", event.ID)
		}
		h.Logger.Error("webhook processing failed",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err)
		h.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": msg})
		return
	}

	if err := h.eventRepo.MarkProcessed(eventRow.ID, nil); err != nil {
		h.Logger.Error("failed to mark webhook event processed", "error", err, "event_id", event.ID)
	}

	h.writeEventOK(w, &event)
}

func (h *Handler) writeEventOK(w http.ResponseWriter, event *stripe.Event) {
	h.WriteJSON(w, http.StatusOK, map[string]string{
		"status":     "success",
		"event_type": string(event.Type),
		"event_id":   string(event.ID),
	})
}
