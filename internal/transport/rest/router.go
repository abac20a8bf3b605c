package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/coloradoleasecheck/leasecheck/internal/admin"
	"github.com/coloradoleasecheck/leasecheck/internal/auth"
	"github.com/coloradoleasecheck/leasecheck/internal/document"
	"github.com/coloradoleasecheck/leasecheck/internal/invoice"
	"github.com/coloradoleasecheck/leasecheck/internal/onboarding"
	"github.com/coloradoleasecheck/leasecheck/internal/payment"
	"github.com/coloradoleasecheck/leasecheck/internal/plans"
	"github.com/coloradoleasecheck/leasecheck/internal/stripewebhook"
	"github.com/coloradoleasecheck/leasecheck/internal/terms"
	"github.com/coloradoleasecheck/leasecheck/internal/ticket"
	"github.com/coloradoleasecheck/leasecheck/internal/transport"
	"github.com/coloradoleasecheck/leasecheck/internal/transport/middleware"
	"github.com/coloradoleasecheck/leasecheck/internal/transport/swagger"
)

// Handlers collects everything the router wires up. Nil entries are skipped
// so partial wiring in tests stays possible.
type Handlers struct {
	Onboarding *onboarding.Handler
	Plans      *plans.Handler
	Payment    *payment.Handler
	Webhook    *stripewebhook.Handler
	Invoice    *invoice.Handler
	Document   *document.Handler
	Ticket     *ticket.Handler
	Terms      *terms.Handler
	Auth       *auth.Handler
	Admin      *admin.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, authService auth.AuthService, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	// Stripe posts here directly; the route stays outside /api/v1 and outside
	// any auth or CORS assumptions made for browser traffic.
	if h.Webhook != nil {
		router.Post("/stripe/events", h.Webhook.HandleStripeEvent)
	}

	// Wizard screens served as JSON state at their original paths.
	if h.Onboarding != nil {
		router.Get("/", h.Onboarding.Home)
		router.Get("/onboarding", h.Onboarding.Onboarding)
		router.Get("/select-plan", h.Onboarding.SelectPlan)
		router.Get("/checkout", h.Onboarding.Checkout)
		router.Get("/account-setup", h.Onboarding.AccountSetup)
		router.Get("/legal-stuff", h.Onboarding.LegalStuff)
		router.Get("/terms-of-service", h.Onboarding.TermsOfService)
		router.Get("/refund-policy", h.Onboarding.RefundPolicy)
		router.Get("/terms-declined", h.Onboarding.TermsDeclined)
		router.Get("/lease-upload", h.Onboarding.LeaseUpload)
		router.Get("/payment-status", h.Onboarding.PaymentStatus)
		router.Get("/thank-you", h.Onboarding.ThankYou)
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Plans != nil {
			r.Get("/plans", h.Plans.GetPlans)
		}

		if h.Payment != nil {
			r.Post("/payments", h.Payment.CreatePayment)
			r.Get("/payments/status", h.Payment.GetPaymentStatus)
		}

		if h.Invoice != nil {
			r.Get("/invoices/{number}", h.Invoice.GetInvoice)
			r.Get("/invoices/{number}/download", h.Invoice.DownloadInvoice)
		}

		if h.Document != nil {
			r.Post("/leases/upload", h.Document.UploadLease)
			r.Get("/leases", h.Document.ListLeases)
			r.Get("/leases/{id}", h.Document.GetLease)
			r.Get("/leases/{id}/download", h.Document.DownloadLease)
		}

		if h.Ticket != nil {
			r.Post("/support-tickets", h.Ticket.CreateTicket)
			r.Get("/support-tickets", h.Ticket.ListTickets)
			r.Get("/support-tickets/{id}", h.Ticket.GetTicket)
		}

		if h.Terms != nil {
			r.Post("/terms/accept", h.Terms.AcceptTerms)
			r.Get("/terms/status", h.Terms.TermsStatus)
		}

		if h.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", h.Auth.Login)
				sr.Post("/refresh", h.Auth.Refresh)
			})
		}

		if h.Admin != nil && authService != nil {
			r.Route("/admin", func(ar chi.Router) {
				ar.Use(auth.RequireAdmin(authService, transport.NewBaseHandler(logger)))

				ar.Get("/dashboard", h.Admin.GetDashboard)
				ar.Get("/payments", h.Admin.ListPayments)
				ar.Patch("/payments/{id}/status", h.Admin.OverridePaymentStatus)
				ar.Post("/payments/{id}/invoice", h.Admin.RerunInvoice)
				ar.Get("/tickets", h.Admin.ListTickets)
				ar.Patch("/tickets/{id}/status", h.Admin.UpdateTicketStatus)
			})
		}
	})
}
