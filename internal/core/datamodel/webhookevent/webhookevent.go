package webhookevent

import "time"

// WebhookEvent records each verified Stripe event for idempotent processing.
// The unique index on stripe_event_id detects replayed deliveries; only
// events with a clean processed_at are skipped on replay.
type WebhookEvent struct {
	ID              int64      `json:"id" gorm:"primaryKey"`
	StripeEventID   string     `json:"stripe_event_id" gorm:"column:stripe_event_id;not null;uniqueIndex"`
	EventType       string     `json:"event_type" gorm:"column:event_type;not null;index"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty" gorm:"column:processed_at"`
	ProcessingError *string    `json:"processing_error,omitempty" gorm:"column:processing_error"`
	CreatedAt       time.Time  `json:"created_at" gorm:"column:created_at;default:now()"`
}

func (WebhookEvent) TableName() string {
	return "webhook_events"
}
