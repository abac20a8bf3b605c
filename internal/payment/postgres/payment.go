package postgres

import (
	"time"

	"github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/payment"
	paymentpkg "github.com/coloradoleasecheck/leasecheck/internal/payment"
	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{
		db: db,
	}
}

func (r *PaymentRepository) Create(p *payment.Payment) error {
	return r.db.Create(p).Error
}

func (r *PaymentRepository) GetByID(id int64) (*payment.Payment, error) {
	var p payment.Payment
	err := r.db.First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetByStripeID(stripeID string) (*payment.Payment, error) {
	var p payment.Payment
	err := r.db.Where("stripe_payment_id = ?", stripeID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) List(limit, offset int) ([]*payment.Payment, error) {
	var payments []*payment.Payment
	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&payments).Error
	return payments, err
}

func (r *PaymentRepository) UpdateStatus(id int64, status string, meta *paymentpkg.StatusMetadata) error {
	updates := map[string]interface{}{
		"status":       status,
		"processed_at": time.Now(),
		"updated_at":   time.Now(),
	}

	if meta != nil {
		if meta.PaymentMethod != nil {
			updates["payment_method"] = meta.PaymentMethod
		}
		if meta.ErrorDetails != nil {
			updates["error_details"] = meta.ErrorDetails
		}
		if meta.RefundDetails != nil {
			updates["refund_details"] = meta.RefundDetails
		}
		if meta.DisputeDetails != nil {
			updates["dispute_details"] = meta.DisputeDetails
		}
	}

	return r.db.Model(&payment.Payment{}).Where("id = ?", id).Updates(updates).Error
}
