package admin

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	errors "github.com/coloradoleasecheck/leasecheck/internal"
	"github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/invoice"
	paymentmodel "github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/payment"
)

// StatsRepositoryAPI supplies the raw numbers the dashboard aggregates.
type StatsRepositoryAPI interface {
	CountByStatus() (map[string]int64, error)
	RevenueByPlan() ([]PlanRevenue, error)
	SucceededSince(since time.Time) ([]*paymentmodel.Payment, error)
	CountOpenTickets() (int64, error)
}

// PaymentAPI is the slice of the payment service the admin surface uses.
type PaymentAPI interface {
	GetByID(id int64) (*paymentmodel.Payment, error)
	List(limit, offset int) ([]*paymentmodel.Payment, error)
	OverrideStatus(id int64, newStatus string) (*paymentmodel.Payment, error)
}

// InvoiceAPI lets an operator re-run invoice generation for a payment.
type InvoiceAPI interface {
	EnsureForPayment(p *paymentmodel.Payment) (*invoice.Invoice, error)
}

type AdminService struct {
	stats    StatsRepositoryAPI
	payments PaymentAPI
	invoices InvoiceAPI
	now      func() time.Time
	logger   *slog.Logger
}

func NewService(stats StatsRepositoryAPI, payments PaymentAPI, invoices InvoiceAPI, logger *slog.Logger) *AdminService {
	return &AdminService{
		stats:    stats,
		payments: payments,
		invoices: invoices,
		now:      time.Now,
		logger:   logger,
	}
}

// Dashboard recomputes the full aggregation. Success rate divides succeeded
// by total and is 0 when there are no payments at all.
func (s *AdminService) Dashboard() (*DashboardStats, error) {
	byStatus, err := s.stats.CountByStatus()
	if err != nil {
		return nil, fmt.Errorf("failed to count payments: %w", err)
	}

	var total, succeeded int64
	for status, count := range byStatus {
		total += count
		if status == paymentmodel.StatusSucceeded {
			succeeded = count
		}
	}

	successRate := 0.0
	if total > 0 {
		successRate = float64(succeeded) / float64(total)
	}

	byPlan, err := s.stats.RevenueByPlan()
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue by plan: %w", err)
	}

	var totalRevenue int64
	for _, plan := range byPlan {
		totalRevenue += plan.RevenueCents
	}

	now := s.now().UTC()
	recent, err := s.stats.SucceededSince(now.AddDate(0, 0, -28))
	if err != nil {
		return nil, fmt.Errorf("failed to load recent payments: %w", err)
	}

	openTickets, err := s.stats.CountOpenTickets()
	if err != nil {
		return nil, fmt.Errorf("failed to count open tickets: %w", err)
	}

	return &DashboardStats{
		TotalPayments:     total,
		SucceededPayments: succeeded,
		SuccessRate:       successRate,
		TotalRevenueCents: totalRevenue,
		RevenueByPlan:     byPlan,
		RevenueByDay:      bucketByDay(recent, now, 7),
		RevenueByWeek:     bucketByWeek(recent, now, 4),
		PaymentsByStatus:  byStatus,
		OpenTickets:       openTickets,
	}, nil
}

func (s *AdminService) ListPayments(limit, offset int) ([]*paymentmodel.Payment, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.payments.List(limit, offset)
}

func (s *AdminService) OverridePaymentStatus(id int64, status string) (*paymentmodel.Payment, error) {
	return s.payments.OverrideStatus(id, status)
}

// RerunInvoice regenerates the invoice for a succeeded payment. It is the
// manual recovery path when the automatic generation failed.
func (s *AdminService) RerunInvoice(paymentID int64) (*invoice.Invoice, error) {
	record, err := s.payments.GetByID(paymentID)
	if err != nil {
		return nil, err
	}
	if record.Status != paymentmodel.StatusSucceeded {
		return nil, errors.NewValidationError(
			fmt.Sprintf("cannot generate an invoice for a payment in status %s", record.Status),
			errors.ErrCodeInvalidStatusChange,
		)
	}

	inv, err := s.invoices.EnsureForPayment(record)
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice re-run by admin",
		"payment_id", paymentID,
		"invoice_number", inv.InvoiceNumber)
	return inv, nil
}

// bucketByDay rolls succeeded payments into the trailing N calendar days,
// oldest first, including empty buckets.
func bucketByDay(payments []*paymentmodel.Payment, now time.Time, days int) []PeriodRevenue {
	buckets := make(map[string]*PeriodRevenue, days)
	order := make([]string, 0, days)
	for i := days - 1; i >= 0; i-- {
		key := now.AddDate(0, 0, -i).Format("2006-01-02")
		buckets[key] = &PeriodRevenue{Period: key}
		order = append(order, key)
	}

	for _, p := range payments {
		key := p.CreatedAt.UTC().Format("2006-01-02")
		if bucket, ok := buckets[key]; ok {
			bucket.Count++
			bucket.RevenueCents += p.AmountCents
		}
	}

	out := make([]PeriodRevenue, 0, days)
	for _, key := range order {
		out = append(out, *buckets[key])
	}
	return out
}

// bucketByWeek rolls succeeded payments into the trailing N ISO weeks.
func bucketByWeek(payments []*paymentmodel.Payment, now time.Time, weeks int) []PeriodRevenue {
	buckets := make(map[string]*PeriodRevenue, weeks)
	order := make([]string, 0, weeks)
	for i := weeks - 1; i >= 0; i-- {
		key := isoWeekKey(now.AddDate(0, 0, -7*i))
		if _, ok := buckets[key]; !ok {
			buckets[key] = &PeriodRevenue{Period: key}
			order = append(order, key)
		}
	}

	for _, p := range payments {
		key := isoWeekKey(p.CreatedAt.UTC())
		if bucket, ok := buckets[key]; ok {
			bucket.Count++
			bucket.RevenueCents += p.AmountCents
		}
	}

	sort.Strings(order)
	out := make([]PeriodRevenue, 0, weeks)
	for _, key := range order {
		out = append(out, *buckets[key])
	}
	return out
}

func isoWeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
