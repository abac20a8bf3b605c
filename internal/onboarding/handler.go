package onboarding

import (
	"log/slog"
	"net/http"

	"github.com/coloradoleasecheck/leasecheck/internal/plans"
	"github.com/coloradoleasecheck/leasecheck/internal/transport"
	"github.com/coloradoleasecheck/leasecheck/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	catalog        *plans.Catalog
	publishableKey string
	maxUploadBytes int64
}

func NewHandler(catalog *plans.Catalog, publishableKey string, maxUploadBytes int64) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler:    transport.NewBaseHandler(lg),
		catalog:        catalog,
		publishableKey: publishableKey,
		maxUploadBytes: maxUploadBytes,
	}
}

// Home is the landing screen; it points straight into the wizard.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, newScreen("/", "LeaseCheck", map[string]interface{}{
		"tagline": "Know what your Colorado lease really says before you sign.",
		"start":   "/onboarding",
	}))
}

func (h *Handler) Onboarding(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, newScreen("/onboarding", "Welcome to LeaseCheck", map[string]interface{}{
		"features": featureItems,
		"cta":      "/select-plan",
	}))
}

func (h *Handler) SelectPlan(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, newScreen("/select-plan", "Choose your plan", map[string]interface{}{
		"plans": h.catalog.All(),
	}))
}

// Checkout requires a known plan id; anything else sends the wizard back to
// plan selection.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	planID := r.URL.Query().Get("plan")
	plan, ok := h.catalog.Get(planID)
	if !ok {
		h.Logger.Warn("Checkout: unknown plan requested", "plan_id", planID)
		h.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error":    "a valid plan is required",
			"redirect": "/select-plan",
		})
		return
	}

	h.WriteJSON(w, http.StatusOK, newScreen("/checkout", "Checkout", map[string]interface{}{
		"plan":            plan,
		"publishable_key": h.publishableKey,
	}))
}

func (h *Handler) AccountSetup(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, newScreen("/account-setup", "Set up your account", map[string]interface{}{
		"fields": []string{"email", "customer_name", "billing_address"},
	}))
}

func (h *Handler) LegalStuff(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, newScreen("/legal-stuff", "The legal stuff", map[string]interface{}{
		"documents": []map[string]string{
			{"title": "Terms of Service", "path": "/terms-of-service"},
			{"title": "Refund Policy", "path": "/refund-policy"},
		},
		"accept_endpoint": "/api/v1/terms/accept",
	}))
}

func (h *Handler) TermsOfService(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, newScreen("/terms-of-service", "Terms of Service", map[string]interface{}{
		"summary": "LeaseCheck provides an informational lease review, not legal advice.",
		"back":    "/legal-stuff",
	}))
}

func (h *Handler) RefundPolicy(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, newScreen("/refund-policy", "Refund Policy", map[string]interface{}{
		"summary": "Full refund within 7 days if your analysis has not started.",
		"back":    "/legal-stuff",
	}))
}

func (h *Handler) TermsDeclined(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, newScreen("/terms-declined", "Terms declined", map[string]interface{}{
		"message": "You need to accept the terms to use LeaseCheck.",
		"retry":   "/legal-stuff",
	}))
}

func (h *Handler) LeaseUpload(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, newScreen("/lease-upload", "Upload your lease", map[string]interface{}{
		"accepted_types":   []string{".pdf", ".doc", ".docx"},
		"max_upload_bytes": h.maxUploadBytes,
		"upload_endpoint":  "/api/v1/leases/upload",
	}))
}

func (h *Handler) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, newScreen("/payment-status", "Confirming your payment", map[string]interface{}{
		"poll_endpoint": "/api/v1/payments/status",
		"poll_param":    "payment_intent",
	}))
}

func (h *Handler) ThankYou(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, newScreen("/thank-you", "You're all set", map[string]interface{}{
		"message": "Your payment is confirmed and your invoice is ready.",
	}))
}
