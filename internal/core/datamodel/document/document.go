package document

import (
	"encoding/json"
	"time"
)

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusProcessed  = "processed"
	StatusError      = "error"
)

type Document struct {
	ID               int64           `json:"id" gorm:"primaryKey"`
	UserEmail        string          `json:"user_email" gorm:"column:user_email;not null;index"`
	StoredFilename   string          `json:"stored_filename" gorm:"column:stored_filename;not null;uniqueIndex"`
	OriginalFilename string          `json:"original_filename" gorm:"column:original_filename;not null"`
	MimeType         string          `json:"mime_type" gorm:"column:mime_type"`
	SizeBytes        int64           `json:"size_bytes" gorm:"column:size_bytes;not null"`
	Status           string          `json:"status" gorm:"column:status;default:pending;index"`
	RiskLevel        *string         `json:"risk_level,omitempty" gorm:"column:risk_level"`
	RiskFactors      json.RawMessage `json:"risk_factors,omitempty" gorm:"column:risk_factors;type:jsonb"`
	Annotations      json.RawMessage `json:"annotations,omitempty" gorm:"column:annotations;type:jsonb"`
	ProcessingError  *string         `json:"processing_error,omitempty" gorm:"column:processing_error"`
	CreatedAt        time.Time       `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt        time.Time       `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Document) TableName() string {
	return "documents"
}
