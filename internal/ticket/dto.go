package ticket

import (
	"github.com/coloradoleasecheck/leasecheck/internal"
	"github.com/coloradoleasecheck/leasecheck/internal/core/common/validation"
	ticketmodel "github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/ticket"
)

type CreateTicketDTO struct {
	DocumentID  int64  `json:"document_id"`
	Email       string `json:"email"`
	IssueType   string `json:"issue_type"`
	Description string `json:"description"`
}

func (d *CreateTicketDTO) Validate() error {
	validator := validation.NewValidator()

	validator.Field("document_id", d.DocumentID).MinInt(1, internal.ErrCodeValidationFailed)
	validator.Field("email", d.Email).Required().Email()
	validator.Field("issue_type", d.IssueType).Required().OneOf(ticketmodel.IssueTypes, internal.ErrCodeValidationFailed)
	validator.Field("description", d.Description).Required().MinLength(10).MaxLength(5000)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type UpdateStatusDTO struct {
	Status string `json:"status"`
}

func (d *UpdateStatusDTO) Validate() error {
	validator := validation.NewValidator()

	validator.Field("status", d.Status).Required().OneOf(
		[]string{ticketmodel.StatusOpen, ticketmodel.StatusInProgress, ticketmodel.StatusResolved},
		internal.ErrCodeValidationFailed,
	)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
