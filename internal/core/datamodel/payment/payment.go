package payment

import (
	"encoding/json"
	"time"
)

// Status values mirror the Stripe payment-intent lifecycle as this service
// tracks it. A succeeded payment can still move to refunded, disputed or
// charge_failed, since Stripe reports those only after the charge clears.
// Nothing ever goes back to created.
const (
	StatusCreated        = "created"
	StatusSucceeded      = "succeeded"
	StatusFailed         = "failed"
	StatusCanceled       = "canceled"
	StatusRequiresAction = "requires_action"
	StatusChargeFailed   = "charge_failed"
	StatusDisputed       = "disputed"
	StatusRefunded       = "refunded"
)

type Payment struct {
	ID              int64           `json:"id" gorm:"primaryKey"`
	StripePaymentID string          `json:"stripe_payment_id" gorm:"column:stripe_payment_id;not null;uniqueIndex"`
	UserEmail       string          `json:"user_email" gorm:"column:user_email;not null;index"`
	CustomerName    string          `json:"customer_name" gorm:"column:customer_name"`
	AmountCents     int64           `json:"amount_cents" gorm:"column:amount_cents;not null"`
	Currency        string          `json:"currency" gorm:"column:currency;default:USD"`
	Status          string          `json:"status" gorm:"column:status;default:created;index"`
	PlanName        string          `json:"plan_name" gorm:"column:plan_name;not null"`
	BillingAddress  json.RawMessage `json:"billing_address,omitempty" gorm:"column:billing_address;type:jsonb"`
	PaymentMethod   json.RawMessage `json:"payment_method,omitempty" gorm:"column:payment_method;type:jsonb"`
	ErrorDetails    json.RawMessage `json:"error_details,omitempty" gorm:"column:error_details;type:jsonb"`
	RefundDetails   json.RawMessage `json:"refund_details,omitempty" gorm:"column:refund_details;type:jsonb"`
	DisputeDetails  json.RawMessage `json:"dispute_details,omitempty" gorm:"column:dispute_details;type:jsonb"`
	ProcessedAt     *time.Time      `json:"processed_at,omitempty" gorm:"column:processed_at"`
	CreatedAt       time.Time       `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt       time.Time       `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Payment) TableName() string {
	return "payments"
}

// ValidStatus reports whether s is one of the known payment statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusCreated, StatusSucceeded, StatusFailed, StatusCanceled,
		StatusRequiresAction, StatusChargeFailed, StatusDisputed, StatusRefunded:
		return true
	default:
		return false
	}
}

// CanTransition reports whether a status change is allowed. Webhook replays
// of the same status are treated as allowed so retried deliveries stay
// idempotent.
func CanTransition(from, to string) bool {
	if to == StatusCreated {
		return false
	}
	if from == to {
		return true
	}
	switch from {
	case StatusCreated, StatusRequiresAction:
		return true
	case StatusSucceeded:
		switch to {
		case StatusRefunded, StatusDisputed, StatusChargeFailed:
			return true
		}
		return false
	default:
		// terminal
		return false
	}
}

// IsTerminal reports whether no further webhook-driven transition is expected.
func IsTerminal(status string) bool {
	switch status {
	case StatusCreated, StatusRequiresAction, StatusSucceeded:
		return false
	default:
		return true
	}
}
