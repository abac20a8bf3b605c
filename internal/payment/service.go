package payment

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	errors "github.com/coloradoleasecheck/leasecheck/internal"
	"github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/payment"
	"github.com/coloradoleasecheck/leasecheck/internal/plans"
	"github.com/coloradoleasecheck/leasecheck/internal/stripegateway"

	"gorm.io/gorm"
)

// RepositoryAPI covers payment persistence. Status writes happen only through
// UpdateStatus so the transition rules in the datamodel stay enforceable.
type RepositoryAPI interface {
	Create(p *payment.Payment) error
	GetByID(id int64) (*payment.Payment, error)
	GetByStripeID(stripeID string) (*payment.Payment, error)
	List(limit, offset int) ([]*payment.Payment, error)
	UpdateStatus(id int64, status string, meta *StatusMetadata) error
}

// StatusMetadata carries the auxiliary JSON blobs a webhook event may attach
// to a payment. Nil fields are left untouched.
type StatusMetadata struct {
	PaymentMethod  json.RawMessage
	ErrorDetails   json.RawMessage
	RefundDetails  json.RawMessage
	DisputeDetails json.RawMessage
}

type PaymentService struct {
	gateway        stripegateway.Gateway
	catalog        *plans.Catalog
	publishableKey string
	logger         *slog.Logger
	repository     RepositoryAPI
}

func NewPaymentService(gateway stripegateway.Gateway, catalog *plans.Catalog, publishableKey string, logger *slog.Logger, repository RepositoryAPI) *PaymentService {
	return &PaymentService{
		gateway:        gateway,
		catalog:        catalog,
		publishableKey: publishableKey,
		logger:         logger,
		repository:     repository,
	}
}

// CreateCheckout creates a Stripe payment intent for the selected plan and
// records the Payment row in status created. The intent ID is the unique
// gateway transaction id webhooks key on later.
func (s *PaymentService) CreateCheckout(dto *CreatePaymentDTO) (*CheckoutResponse, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("checkout validation failed", "error", err)
		return nil, err
	}

	plan, ok := s.catalog.Get(dto.PlanID)
	if !ok {
		s.logger.Error("checkout for unknown plan", "plan_id", dto.PlanID)
		return nil, errors.ErrInvalidPlan
	}

	intent, err := s.gateway.CreateIntent(stripegateway.CreateIntentParams{
		AmountCents:  plan.PriceCents,
		Currency:     plan.Currency,
		ReceiptEmail: dto.Email,
		PlanID:       plan.ID,
		PlanName:     plan.Name,
	})
	if err != nil {
		return nil, err
	}

	paymentEntity := &payment.Payment{
		StripePaymentID: intent.ID,
		UserEmail:       dto.Email,
		CustomerName:    dto.CustomerName,
		AmountCents:     plan.PriceCents,
		Currency:        plan.Currency,
		Status:          payment.StatusCreated,
		PlanName:        plan.Name,
		BillingAddress:  dto.BillingAddressJSON(),
	}

	if err := s.repository.Create(paymentEntity); err != nil {
		s.logger.Error("failed to create payment record", "error", err, "intent_id", intent.ID)
		return nil, fmt.Errorf("failed to create payment record: %w", err)
	}

	s.logger.Info("payment record created",
		"payment_id", paymentEntity.ID,
		"intent_id", intent.ID,
		"plan", plan.ID,
		"amount_cents", plan.PriceCents)

	return &CheckoutResponse{
		PaymentID:       paymentEntity.ID,
		StripePaymentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		PublishableKey:  s.publishableKey,
		AmountCents:     plan.PriceCents,
		Currency:        plan.Currency,
		PlanName:        plan.Name,
	}, nil
}

func (s *PaymentService) GetByStripeID(stripeID string) (*payment.Payment, error) {
	record, err := s.repository.GetByStripeID(stripeID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrPaymentNotFound
		}
		return nil, err
	}
	return record, nil
}

func (s *PaymentService) GetByID(id int64) (*payment.Payment, error) {
	record, err := s.repository.GetByID(id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrPaymentNotFound
		}
		return nil, err
	}
	return record, nil
}

func (s *PaymentService) List(limit, offset int) ([]*payment.Payment, error) {
	return s.repository.List(limit, offset)
}

// ApplyStatus is the single writer for webhook-driven transitions. Illegal
// transitions (anything out of a terminal state, or back to created) are
// rejected; same-status replays are no-ops that still report success.
func (s *PaymentService) ApplyStatus(stripeID, newStatus string, meta *StatusMetadata) (*payment.Payment, error) {
	record, err := s.GetByStripeID(stripeID)
	if err != nil {
		return nil, err
	}

	if !payment.CanTransition(record.Status, newStatus) {
		s.logger.Warn("rejected payment status transition",
			"stripe_payment_id", stripeID,
			"from", record.Status,
			"to", newStatus)
		return nil, errors.NewConflictError(
			fmt.Sprintf("cannot transition payment from %s to %s", record.Status, newStatus),
			errors.ErrCodeInvalidStatusChange,
		)
	}

	if record.Status == newStatus {
		s.logger.Info("payment already in target status, skipping update",
			"stripe_payment_id", stripeID,
			"status", newStatus)
		return record, nil
	}

	if err := s.repository.UpdateStatus(record.ID, newStatus, meta); err != nil {
		s.logger.Error("failed to update payment status", "error", err, "payment_id", record.ID)
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}

	s.logger.Info("payment status updated",
		"payment_id", record.ID,
		"stripe_payment_id", stripeID,
		"old_status", record.Status,
		"new_status", newStatus)

	record.Status = newStatus
	now := time.Now().UTC()
	record.ProcessedAt = &now
	return record, nil
}

// OverrideStatus is the explicit admin writer. It skips the webhook
// transition rules so an operator can correct a stuck record, but a payment
// can still never return to created.
func (s *PaymentService) OverrideStatus(id int64, newStatus string) (*payment.Payment, error) {
	if !payment.ValidStatus(newStatus) || newStatus == payment.StatusCreated {
		return nil, errors.NewValidationError(
			fmt.Sprintf("cannot override payment status to %s", newStatus),
			errors.ErrCodeInvalidStatusChange,
		)
	}

	record, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if record.Status == newStatus {
		return record, nil
	}

	if err := s.repository.UpdateStatus(record.ID, newStatus, nil); err != nil {
		return nil, fmt.Errorf("failed to override payment status: %w", err)
	}

	s.logger.Warn("payment status overridden by admin",
		"payment_id", record.ID,
		"old_status", record.Status,
		"new_status", newStatus)

	record.Status = newStatus
	return record, nil
}
