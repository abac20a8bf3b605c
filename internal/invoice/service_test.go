package invoice_test

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"gorm.io/gorm"

	internal "github.com/coloradoleasecheck/leasecheck/internal"
	invoicemodel "github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/invoice"
	paymentmodel "github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/payment"
	invoicepkg "github.com/coloradoleasecheck/leasecheck/internal/invoice"
)

func TestInvoice(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Invoice Suite")
}

type mockInvoiceRepo struct {
	byPayment map[int64]*invoicemodel.Invoice
	byNumber  map[string]*invoicemodel.Invoice
	nextID    int64
	paidPaths map[int64]string

	// hideFromGet makes GetByPaymentID miss until Create has been attempted,
	// simulating a concurrent delivery that wins the insert race.
	hideFromGet bool
}

func newMockInvoiceRepo() *mockInvoiceRepo {
	return &mockInvoiceRepo{
		byPayment: make(map[int64]*invoicemodel.Invoice),
		byNumber:  make(map[string]*invoicemodel.Invoice),
		paidPaths: make(map[int64]string),
		nextID:    1,
	}
}

func (m *mockInvoiceRepo) Create(inv *invoicemodel.Invoice) error {
	if _, exists := m.byPayment[inv.PaymentID]; exists {
		return gorm.ErrDuplicatedKey
	}
	if _, exists := m.byNumber[inv.InvoiceNumber]; exists {
		return gorm.ErrDuplicatedKey
	}
	inv.ID = m.nextID
	m.nextID++
	m.byPayment[inv.PaymentID] = inv
	m.byNumber[inv.InvoiceNumber] = inv
	return nil
}

func (m *mockInvoiceRepo) GetByNumber(number string) (*invoicemodel.Invoice, error) {
	if inv, ok := m.byNumber[number]; ok {
		return inv, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInvoiceRepo) GetByPaymentID(paymentID int64) (*invoicemodel.Invoice, error) {
	if m.hideFromGet {
		m.hideFromGet = false
		return nil, gorm.ErrRecordNotFound
	}
	if inv, ok := m.byPayment[paymentID]; ok {
		return inv, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInvoiceRepo) LatestNumberForPrefix(prefix string) (string, error) {
	latest := ""
	for number := range m.byNumber {
		if strings.HasPrefix(number, prefix) && number > latest {
			latest = number
		}
	}
	return latest, nil
}

func (m *mockInvoiceRepo) MarkPaid(id int64, pdfPath string) error {
	m.paidPaths[id] = pdfPath
	for _, inv := range m.byPayment {
		if inv.ID == id {
			inv.Status = invoicemodel.StatusPaid
			inv.PDFPath = pdfPath
		}
	}
	return nil
}

func (m *mockInvoiceRepo) ListPending(limit int) ([]*invoicemodel.Invoice, error) {
	var pending []*invoicemodel.Invoice
	for _, inv := range m.byPayment {
		if inv.Status == invoicemodel.StatusPending && len(pending) < limit {
			pending = append(pending, inv)
		}
	}
	return pending, nil
}

type mockRenderer struct {
	renderCalls int
	renderErr   error
}

func (m *mockRenderer) Render(inv *invoicemodel.Invoice) (string, error) {
	m.renderCalls++
	if m.renderErr != nil {
		return "", m.renderErr
	}
	return fmt.Sprintf("static/invoices/%s.pdf", inv.InvoiceNumber), nil
}

var _ = ginkgo.Describe("InvoiceService", func() {
	var (
		repo     *mockInvoiceRepo
		renderer *mockRenderer
		service  *invoicepkg.InvoiceService
	)

	succeededPayment := func() *paymentmodel.Payment {
		return &paymentmodel.Payment{
			ID:              42,
			StripePaymentID: "pi_test_123",
			UserEmail:       "tenant@example.com",
			CustomerName:    "Test Tenant",
			AmountCents:     1995,
			Currency:        "USD",
			Status:          paymentmodel.StatusSucceeded,
			PlanName:        "Standard Plan",
		}
	}

	ginkgo.BeforeEach(func() {
		repo = newMockInvoiceRepo()
		renderer = &mockRenderer{}
		service = invoicepkg.NewInvoiceService(repo, renderer, slog.Default())
	})

	ginkgo.Describe("EnsureForPayment", func() {
		ginkgo.Context("for a succeeded payment", func() {
			ginkgo.It("should create the invoice, render the PDF, and mark it paid", func() {
				inv, err := service.EnsureForPayment(succeededPayment())

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				expectedPrefix := fmt.Sprintf("INV-%s-", time.Now().UTC().Format("200601"))
				gomega.Expect(inv.InvoiceNumber).To(gomega.Equal(expectedPrefix + "0001"))
				gomega.Expect(inv.TotalCents).To(gomega.Equal(int64(1995)))
				gomega.Expect(inv.Status).To(gomega.Equal(invoicemodel.StatusPaid))
				gomega.Expect(inv.PDFPath).To(gomega.ContainSubstring(inv.InvoiceNumber))
				gomega.Expect(renderer.renderCalls).To(gomega.Equal(1))

				items, err := inv.ParsedItems()
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(items).To(gomega.HaveLen(1))
				gomega.Expect(items[0].Amount).To(gomega.Equal(int64(1995)))
			})

			ginkgo.It("should allocate sequential numbers within the month", func() {
				first := succeededPayment()
				second := succeededPayment()
				second.ID = 43
				second.StripePaymentID = "pi_test_456"

				inv1, err := service.EnsureForPayment(first)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				inv2, err := service.EnsureForPayment(second)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				gomega.Expect(inv1.InvoiceNumber).To(gomega.HaveSuffix("0001"))
				gomega.Expect(inv2.InvoiceNumber).To(gomega.HaveSuffix("0002"))
			})
		})

		ginkgo.Context("when a concurrent delivery wins the insert race", func() {
			ginkgo.It("should map the unique-constraint violation to the existing invoice", func() {
				winner, err := service.EnsureForPayment(succeededPayment())
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				// The loser's existence check misses, its insert hits the
				// payment_id constraint, and it re-reads the winner's row.
				repo.hideFromGet = true
				loser, err := service.EnsureForPayment(succeededPayment())

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(loser.InvoiceNumber).To(gomega.Equal(winner.InvoiceNumber))
				gomega.Expect(renderer.renderCalls).To(gomega.Equal(1))
			})
		})

		ginkgo.Context("when called twice for the same payment", func() {
			ginkgo.It("should return the existing invoice without re-rendering", func() {
				first, err := service.EnsureForPayment(succeededPayment())
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				second, err := service.EnsureForPayment(succeededPayment())

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(second.InvoiceNumber).To(gomega.Equal(first.InvoiceNumber))
				gomega.Expect(renderer.renderCalls).To(gomega.Equal(1))
			})
		})

		ginkgo.Context("for a payment that has not succeeded", func() {
			ginkgo.It("should refuse to create an invoice", func() {
				p := succeededPayment()
				p.Status = paymentmodel.StatusFailed

				inv, err := service.EnsureForPayment(p)

				gomega.Expect(err).To(gomega.MatchError(internal.ErrPaymentNotSucceeded))
				gomega.Expect(inv).To(gomega.BeNil())
			})
		})

		ginkgo.Context("when the payment record is missing billing data", func() {
			ginkgo.It("should return a validation error", func() {
				p := succeededPayment()
				p.UserEmail = ""

				_, err := service.EnsureForPayment(p)

				appErr, ok := err.(*internal.AppError)
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeValidation))
			})
		})

		ginkgo.Context("when PDF rendering fails", func() {
			ginkgo.It("should still return the invoice, left pending for the retry sweep", func() {
				renderer.renderErr = fmt.Errorf("disk full")

				inv, err := service.EnsureForPayment(succeededPayment())

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(inv.Status).To(gomega.Equal(invoicemodel.StatusPending))
				gomega.Expect(inv.PDFPath).To(gomega.BeEmpty())
			})
		})
	})

	ginkgo.Describe("GetByNumber", func() {
		ginkgo.It("should map a missing invoice to invoice not found", func() {
			_, err := service.GetByNumber("INV-202401-9999")

			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvoiceNotFound))
		})
	})

	ginkgo.Describe("RetryPending", func() {
		ginkgo.BeforeEach(func() {
			renderer.renderErr = fmt.Errorf("disk full")
			_, err := service.EnsureForPayment(succeededPayment())
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			renderer.renderErr = nil
		})

		ginkgo.It("should render pending invoices and report the count", func() {
			rendered, err := service.RetryPending(context.Background(), 10)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(rendered).To(gomega.Equal(1))

			inv, err := repo.GetByPaymentID(42)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(inv.Status).To(gomega.Equal(invoicemodel.StatusPaid))
		})

		ginkgo.It("should do nothing when no invoices are pending", func() {
			_, err := service.RetryPending(context.Background(), 10)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			rendered, err := service.RetryPending(context.Background(), 10)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(rendered).To(gomega.Equal(0))
		})
	})
})
