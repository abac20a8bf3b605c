package admin_test

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	adminpkg "github.com/coloradoleasecheck/leasecheck/internal/admin"
	"github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/invoice"
	paymentmodel "github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/payment"
)

func TestAdmin(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Admin Suite")
}

type mockStatsRepo struct {
	byStatus    map[string]int64
	byPlan      []adminpkg.PlanRevenue
	recent      []*paymentmodel.Payment
	openTickets int64
}

func (m *mockStatsRepo) CountByStatus() (map[string]int64, error) { return m.byStatus, nil }
func (m *mockStatsRepo) RevenueByPlan() ([]adminpkg.PlanRevenue, error) {
	return m.byPlan, nil
}
func (m *mockStatsRepo) SucceededSince(since time.Time) ([]*paymentmodel.Payment, error) {
	return m.recent, nil
}
func (m *mockStatsRepo) CountOpenTickets() (int64, error) { return m.openTickets, nil }

type mockPaymentAPI struct {
	payment       *paymentmodel.Payment
	getError      error
	overrideError error
}

func (m *mockPaymentAPI) GetByID(id int64) (*paymentmodel.Payment, error) {
	return m.payment, m.getError
}
func (m *mockPaymentAPI) List(limit, offset int) ([]*paymentmodel.Payment, error) {
	return []*paymentmodel.Payment{m.payment}, nil
}
func (m *mockPaymentAPI) OverrideStatus(id int64, newStatus string) (*paymentmodel.Payment, error) {
	if m.overrideError != nil {
		return nil, m.overrideError
	}
	m.payment.Status = newStatus
	return m.payment, nil
}

type mockInvoiceAPI struct {
	ensureError error
	ensureCalls int
}

func (m *mockInvoiceAPI) EnsureForPayment(p *paymentmodel.Payment) (*invoice.Invoice, error) {
	m.ensureCalls++
	if m.ensureError != nil {
		return nil, m.ensureError
	}
	return &invoice.Invoice{ID: 9, PaymentID: p.ID, InvoiceNumber: "INV-202608-0009"}, nil
}

var _ = ginkgo.Describe("AdminService", func() {
	var (
		service  *adminpkg.AdminService
		stats    *mockStatsRepo
		payments *mockPaymentAPI
		invoices *mockInvoiceAPI
	)

	ginkgo.BeforeEach(func() {
		stats = &mockStatsRepo{byStatus: map[string]int64{}}
		payments = &mockPaymentAPI{payment: &paymentmodel.Payment{
			ID:          1,
			Status:      paymentmodel.StatusSucceeded,
			AmountCents: 1995,
			PlanName:    "Standard Plan",
		}}
		invoices = &mockInvoiceAPI{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = adminpkg.NewService(stats, payments, invoices, logger)
	})

	ginkgo.Context("Dashboard", func() {
		ginkgo.It("reports a zero success rate with no payments", func() {
			dashboard, err := service.Dashboard()

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(dashboard.TotalPayments).To(gomega.Equal(int64(0)))
			gomega.Expect(dashboard.SuccessRate).To(gomega.Equal(0.0))
			gomega.Expect(dashboard.RevenueByDay).To(gomega.HaveLen(7))
			gomega.Expect(dashboard.RevenueByWeek).To(gomega.HaveLen(4))
		})

		ginkgo.It("computes the success rate from status counts", func() {
			stats.byStatus = map[string]int64{
				paymentmodel.StatusSucceeded: 3,
				paymentmodel.StatusFailed:    1,
			}

			dashboard, err := service.Dashboard()

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(dashboard.TotalPayments).To(gomega.Equal(int64(4)))
			gomega.Expect(dashboard.SucceededPayments).To(gomega.Equal(int64(3)))
			gomega.Expect(dashboard.SuccessRate).To(gomega.BeNumerically("~", 0.75, 1e-9))
		})

		ginkgo.It("sums revenue across plans", func() {
			stats.byPlan = []adminpkg.PlanRevenue{
				{PlanName: "Basic Plan", Count: 2, RevenueCents: 1990},
				{PlanName: "Premium Plan", Count: 1, RevenueCents: 2995},
			}

			dashboard, err := service.Dashboard()

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(dashboard.TotalRevenueCents).To(gomega.Equal(int64(4985)))
		})

		ginkgo.It("buckets recent payments into trailing days", func() {
			now := time.Now().UTC()
			stats.recent = []*paymentmodel.Payment{
				{AmountCents: 995, CreatedAt: now},
				{AmountCents: 1995, CreatedAt: now},
				{AmountCents: 2995, CreatedAt: now.AddDate(0, 0, -1)},
				{AmountCents: 995, CreatedAt: now.AddDate(0, 0, -30)},
			}

			dashboard, err := service.Dashboard()

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			today := dashboard.RevenueByDay[len(dashboard.RevenueByDay)-1]
			gomega.Expect(today.Period).To(gomega.Equal(now.Format("2006-01-02")))
			gomega.Expect(today.Count).To(gomega.Equal(int64(2)))
			gomega.Expect(today.RevenueCents).To(gomega.Equal(int64(2990)))

			yesterday := dashboard.RevenueByDay[len(dashboard.RevenueByDay)-2]
			gomega.Expect(yesterday.RevenueCents).To(gomega.Equal(int64(2995)))

			var total int64
			for _, day := range dashboard.RevenueByDay {
				total += day.RevenueCents
			}
			gomega.Expect(total).To(gomega.Equal(int64(5985)))
		})
	})

	ginkgo.Context("RerunInvoice", func() {
		ginkgo.It("regenerates an invoice for a succeeded payment", func() {
			inv, err := service.RerunInvoice(1)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(inv.InvoiceNumber).To(gomega.Equal("INV-202608-0009"))
			gomega.Expect(invoices.ensureCalls).To(gomega.Equal(1))
		})

		ginkgo.It("refuses a payment that has not succeeded", func() {
			payments.payment.Status = paymentmodel.StatusFailed

			_, err := service.RerunInvoice(1)

			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(invoices.ensureCalls).To(gomega.Equal(0))
		})
	})
})
