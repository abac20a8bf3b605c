package invoice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/coloradoleasecheck/leasecheck/internal"
	"github.com/coloradoleasecheck/leasecheck/internal/core/database"
	"github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/invoice"
	"github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/payment"
	"gorm.io/gorm"
)

type RepositoryAPI interface {
	Create(inv *invoice.Invoice) error
	GetByNumber(number string) (*invoice.Invoice, error)
	GetByPaymentID(paymentID int64) (*invoice.Invoice, error)
	LatestNumberForPrefix(prefix string) (string, error)
	MarkPaid(id int64, pdfPath string) error
	ListPending(limit int) ([]*invoice.Invoice, error)
}

// Renderer turns an invoice row into a PDF on disk and returns the stored
// path.
type Renderer interface {
	Render(inv *invoice.Invoice) (string, error)
}

type InvoiceService struct {
	repository RepositoryAPI
	renderer   Renderer
	logger     *slog.Logger
	now        func() time.Time
}

func NewInvoiceService(repository RepositoryAPI, renderer Renderer, logger *slog.Logger) *InvoiceService {
	return &InvoiceService{
		repository: repository,
		renderer:   renderer,
		logger:     logger,
		now:        time.Now,
	}
}

// dueDays is how long customers have to settle an invoice. The service is
// prepaid so this is informational only.
const dueDays = 30

// EnsureForPayment creates the invoice for a succeeded payment exactly once.
// A second call, or a concurrent duplicate webhook delivery, lands on the
// existing row: first via the existence check, and failing that via the
// unique constraint on payment_id.
func (s *InvoiceService) EnsureForPayment(p *payment.Payment) (*invoice.Invoice, error) {
	if p.Status != payment.StatusSucceeded {
		return nil, apperrors.ErrPaymentNotSucceeded
	}
	if p.UserEmail == "" || p.AmountCents <= 0 || p.PlanName == "" {
		s.logger.Error("missing required payment data for invoice creation", "payment_id", p.ID)
		return nil, apperrors.NewValidationError("payment record is missing invoice data", apperrors.ErrCodeValidationFailed)
	}

	if existing, err := s.repository.GetByPaymentID(p.ID); err == nil && existing != nil {
		s.logger.Info("invoice already exists for payment",
			"payment_id", p.ID,
			"invoice_number", existing.InvoiceNumber)
		return existing, nil
	}

	inv, created, err := s.createRow(p)
	if err != nil {
		return nil, err
	}
	if !created {
		// A concurrent delivery inserted the row first and owns the render;
		// if it crashed mid-render the worker sweep picks the row up.
		return inv, nil
	}

	// PDF rendering failure is recoverable: the row stays pending and the
	// worker sweep retries it.
	if renderErr := s.RenderPDF(inv); renderErr != nil {
		s.logger.Error("failed to render invoice PDF, leaving pending",
			"invoice_number", inv.InvoiceNumber,
			"error", renderErr)
	}

	return inv, nil
}

// createRow inserts the invoice row and reports whether this call created it.
// A false result means a concurrent delivery won the payment_id constraint and
// the returned row is theirs.
func (s *InvoiceService) createRow(p *payment.Payment) (*invoice.Invoice, bool, error) {
	items := []invoice.LineItem{{
		Description: fmt.Sprintf("%s - Lease Analysis Service", p.PlanName),
		Quantity:    1,
		UnitPrice:   p.AmountCents,
		Amount:      p.AmountCents,
	}}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode invoice items: %w", err)
	}

	currency := p.Currency
	if currency == "" {
		currency = "USD"
	}

	// Number allocation can collide under concurrent creation; the unique
	// index on invoice_number rejects the loser and we reallocate.
	for attempt := 0; attempt < 3; attempt++ {
		number, err := s.nextInvoiceNumber()
		if err != nil {
			return nil, false, err
		}

		inv := &invoice.Invoice{
			InvoiceNumber:  number,
			PaymentID:      p.ID,
			UserEmail:      p.UserEmail,
			CustomerName:   p.CustomerName,
			BillingAddress: p.BillingAddress,
			Items:          itemsJSON,
			TotalCents:     p.AmountCents,
			Currency:       currency,
			Status:         invoice.StatusPending,
			DueDate:        s.now().UTC().AddDate(0, 0, dueDays),
		}

		createErr := s.repository.Create(inv)
		if createErr == nil {
			s.logger.Info("invoice created", "invoice_number", number, "payment_id", p.ID)
			return inv, true, nil
		}

		if errors.Is(createErr, gorm.ErrDuplicatedKey) {
			// Either a concurrent delivery won the payment_id constraint or
			// another invoice took this number.
			if existing, err := s.repository.GetByPaymentID(p.ID); err == nil && existing != nil {
				s.logger.Info("concurrent invoice creation detected, using existing row",
					"payment_id", p.ID,
					"invoice_number", existing.InvoiceNumber)
				return existing, false, nil
			}
			s.logger.Warn("invoice number collision, reallocating", "invoice_number", number)
			continue
		}

		s.logger.Error("failed to persist invoice", "error", createErr, "payment_id", p.ID)
		return nil, false, fmt.Errorf("failed to persist invoice: %w", createErr)
	}

	return nil, false, apperrors.NewInternalError("could not allocate a unique invoice number", nil)
}

// nextInvoiceNumber allocates the next INV-YYYYMM-NNNN number within the
// current calendar month.
func (s *InvoiceService) nextInvoiceNumber() (string, error) {
	prefix := fmt.Sprintf("INV-%s-", s.now().UTC().Format("200601"))

	latest, err := s.repository.LatestNumberForPrefix(prefix)
	if err != nil {
		return "", fmt.Errorf("failed to query latest invoice number: %w", err)
	}

	seq := 1
	if latest != "" {
		var current int
		if _, err := fmt.Sscanf(latest[len(prefix):], "%d", &current); err != nil {
			return "", fmt.Errorf("malformed invoice number %q: %w", latest, err)
		}
		seq = current + 1
	}

	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

// RenderPDF renders the invoice and flips it to paid with the stored path.
func (s *InvoiceService) RenderPDF(inv *invoice.Invoice) error {
	pdfPath, err := s.renderer.Render(inv)
	if err != nil {
		return err
	}

	if err := s.repository.MarkPaid(inv.ID, pdfPath); err != nil {
		return fmt.Errorf("failed to record invoice pdf path: %w", err)
	}

	inv.PDFPath = pdfPath
	inv.Status = invoice.StatusPaid
	s.logger.Info("invoice PDF rendered", "invoice_number", inv.InvoiceNumber, "pdf_path", pdfPath)
	return nil
}

func (s *InvoiceService) GetByNumber(number string) (*invoice.Invoice, error) {
	inv, err := s.repository.GetByNumber(number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvoiceNotFound
		}
		return nil, err
	}
	return inv, nil
}

// RetryPending re-renders PDFs for invoices stuck in pending, with backoff on
// transient database failures. Used by the worker subcommand.
func (s *InvoiceService) RetryPending(ctx context.Context, limit int) (int, error) {
	var pending []*invoice.Invoice
	err := database.WithRetry(ctx, s.logger, "list pending invoices", func() error {
		var listErr error
		pending, listErr = s.repository.ListPending(limit)
		return listErr
	})
	if err != nil {
		return 0, err
	}

	rendered := 0
	for _, inv := range pending {
		if ctx.Err() != nil {
			return rendered, ctx.Err()
		}
		if err := s.RenderPDF(inv); err != nil {
			s.logger.Error("retry render failed", "invoice_number", inv.InvoiceNumber, "error", err)
			continue
		}
		rendered++
	}
	return rendered, nil
}
