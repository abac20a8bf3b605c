package terms

import "time"

// TermsAcceptance is an append-only audit record. Rows are never updated or
// deleted.
type TermsAcceptance struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	UserEmail    string    `json:"user_email" gorm:"column:user_email;not null;index"`
	AcceptedAt   time.Time `json:"accepted_at" gorm:"column:accepted_at;not null;default:now()"`
	IPAddress    string    `json:"ip_address,omitempty" gorm:"column:ip_address"`
	TermsVersion string    `json:"terms_version" gorm:"column:terms_version;not null"`
}

func (TermsAcceptance) TableName() string {
	return "terms_acceptances"
}
