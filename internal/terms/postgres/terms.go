package postgres

import (
	stderrors "errors"

	"gorm.io/gorm"

	termsmodel "github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/terms"
)

type TermsRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *TermsRepository {
	return &TermsRepository{db: db}
}

func (r *TermsRepository) Create(t *termsmodel.TermsAcceptance) error {
	return r.db.Create(t).Error
}

func (r *TermsRepository) LatestByEmail(email string) (*termsmodel.TermsAcceptance, error) {
	var t termsmodel.TermsAcceptance
	err := r.db.Where("user_email = ?", email).
		Order("accepted_at DESC").
		First(&t).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}
