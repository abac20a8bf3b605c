package postgres

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/document"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(doc *document.Document) error {
	return r.db.Create(doc).Error
}

func (r *DocumentRepository) GetByID(id int64) (*document.Document, error) {
	var doc document.Document
	if err := r.db.First(&doc, id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepository) ListByEmail(email string, limit, offset int) ([]*document.Document, error) {
	var docs []*document.Document
	err := r.db.Where("user_email = ?", email).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *DocumentRepository) UpdateStatus(id int64, status string, processingError *string) error {
	return r.db.Model(&document.Document{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":           status,
			"processing_error": processingError,
			"updated_at":       time.Now().UTC(),
		}).Error
}

func (r *DocumentRepository) UpdateAnalysis(id int64, status string, riskLevel string, riskFactors, annotations []byte) error {
	return r.db.Model(&document.Document{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       status,
			"risk_level":   riskLevel,
			"risk_factors": json.RawMessage(riskFactors),
			"annotations":  json.RawMessage(annotations),
			"updated_at":   time.Now().UTC(),
		}).Error
}
