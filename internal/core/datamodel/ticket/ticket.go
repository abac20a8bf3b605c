package ticket

import "time"

const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
)

// IssueTypes accepted by the support form.
var IssueTypes = []string{"upload_problem", "analysis_question", "billing", "other"}

type SupportTicket struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	DocumentID  int64     `json:"document_id" gorm:"column:document_id;not null;index"`
	UserEmail   string    `json:"user_email" gorm:"column:user_email;not null"`
	IssueType   string    `json:"issue_type" gorm:"column:issue_type;not null"`
	Description string    `json:"description" gorm:"column:description;not null"`
	Status      string    `json:"status" gorm:"column:status;default:open;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (SupportTicket) TableName() string {
	return "support_tickets"
}

func ValidStatus(s string) bool {
	return s == StatusOpen || s == StatusInProgress || s == StatusResolved
}

func ValidIssueType(t string) bool {
	for _, it := range IssueTypes {
		if it == t {
			return true
		}
	}
	return false
}
