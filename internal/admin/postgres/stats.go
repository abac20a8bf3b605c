package postgres

import (
	"time"

	"gorm.io/gorm"

	"github.com/coloradoleasecheck/leasecheck/internal/admin"
	paymentmodel "github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/payment"
	ticketmodel "github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/ticket"
)

type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) CountByStatus() (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.Model(&paymentmodel.Payment{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

func (r *StatsRepository) RevenueByPlan() ([]admin.PlanRevenue, error) {
	var rows []admin.PlanRevenue
	err := r.db.Model(&paymentmodel.Payment{}).
		Select("plan_name, count(*) as count, sum(amount_cents) as revenue_cents").
		Where("status = ?", paymentmodel.StatusSucceeded).
		Group("plan_name").
		Order("plan_name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *StatsRepository) SucceededSince(since time.Time) ([]*paymentmodel.Payment, error) {
	var payments []*paymentmodel.Payment
	err := r.db.Where("status = ? AND created_at >= ?", paymentmodel.StatusSucceeded, since).
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *StatsRepository) CountOpenTickets() (int64, error) {
	var count int64
	err := r.db.Model(&ticketmodel.SupportTicket{}).
		Where("status = ?", ticketmodel.StatusOpen).
		Count(&count).Error
	return count, err
}
