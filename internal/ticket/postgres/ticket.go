package postgres

import (
	"time"

	"gorm.io/gorm"

	ticketmodel "github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/ticket"
)

type TicketRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

func (r *TicketRepository) Create(t *ticketmodel.SupportTicket) error {
	return r.db.Create(t).Error
}

func (r *TicketRepository) GetByID(id int64) (*ticketmodel.SupportTicket, error) {
	var t ticketmodel.SupportTicket
	if err := r.db.First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TicketRepository) ListByEmail(email string, limit, offset int) ([]*ticketmodel.SupportTicket, error) {
	var tickets []*ticketmodel.SupportTicket
	err := r.db.Where("user_email = ?", email).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *TicketRepository) ListAll(status string, limit, offset int) ([]*ticketmodel.SupportTicket, error) {
	query := r.db.Order("created_at DESC").Limit(limit).Offset(offset)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var tickets []*ticketmodel.SupportTicket
	if err := query.Find(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *TicketRepository) UpdateStatus(id int64, status string) error {
	return r.db.Model(&ticketmodel.SupportTicket{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
}
