package postgres

import (
	"time"

	"github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/webhookevent"

	"gorm.io/gorm"
)

type WebhookEventRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

// Insert returns gorm.ErrDuplicatedKey when the event id was already
// recorded, which the handler treats as an acknowledged replay.
func (r *WebhookEventRepository) Insert(ev *webhookevent.WebhookEvent) error {
	return r.db.Create(ev).Error
}

func (r *WebhookEventRepository) GetByStripeID(stripeEventID string) (*webhookevent.WebhookEvent, error) {
	var ev webhookevent.WebhookEvent
	if err := r.db.Where("stripe_event_id = ?", stripeEventID).First(&ev).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

func (r *WebhookEventRepository) MarkProcessed(id int64, processingError *string) error {
	now := time.Now().UTC()
	return r.db.Model(&webhookevent.WebhookEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"processed_at":     &now,
			"processing_error": processingError,
		}).Error
}
