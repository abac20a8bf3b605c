package ticket

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	errors "github.com/coloradoleasecheck/leasecheck/internal"
	ticketmodel "github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/ticket"
)

type RepositoryAPI interface {
	Create(t *ticketmodel.SupportTicket) error
	GetByID(id int64) (*ticketmodel.SupportTicket, error)
	ListByEmail(email string, limit, offset int) ([]*ticketmodel.SupportTicket, error)
	ListAll(status string, limit, offset int) ([]*ticketmodel.SupportTicket, error)
	UpdateStatus(id int64, status string) error
}

// DocumentChecker verifies the document a ticket references exists and
// belongs to the reporter.
type DocumentChecker interface {
	OwnedBy(documentID int64, email string) (bool, error)
}

type TicketService struct {
	repository RepositoryAPI
	documents  DocumentChecker
	logger     *slog.Logger
}

func NewService(repository RepositoryAPI, documents DocumentChecker, logger *slog.Logger) *TicketService {
	return &TicketService{
		repository: repository,
		documents:  documents,
		logger:     logger,
	}
}

func (s *TicketService) Create(dto *CreateTicketDTO) (*ticketmodel.SupportTicket, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(dto.Email))
	owned, err := s.documents.OwnedBy(dto.DocumentID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check document ownership: %w", err)
	}
	if !owned {
		return nil, errors.ErrDocumentNotFound
	}

	t := &ticketmodel.SupportTicket{
		DocumentID:  dto.DocumentID,
		UserEmail:   email,
		IssueType:   dto.IssueType,
		Description: strings.TrimSpace(dto.Description),
		Status:      ticketmodel.StatusOpen,
	}
	if err := s.repository.Create(t); err != nil {
		return nil, fmt.Errorf("failed to create support ticket: %w", err)
	}

	s.logger.Info("support ticket created",
		"ticket_id", t.ID,
		"document_id", t.DocumentID,
		"issue_type", t.IssueType)
	return t, nil
}

func (s *TicketService) GetByID(id int64) (*ticketmodel.SupportTicket, error) {
	t, err := s.repository.GetByID(id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrTicketNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *TicketService) ListByEmail(email string, limit, offset int) ([]*ticketmodel.SupportTicket, error) {
	limit, offset = clampPage(limit, offset)
	return s.repository.ListByEmail(strings.ToLower(strings.TrimSpace(email)), limit, offset)
}

// ListAll is the admin view; status filters when non-empty.
func (s *TicketService) ListAll(status string, limit, offset int) ([]*ticketmodel.SupportTicket, error) {
	if status != "" && !ticketmodel.ValidStatus(status) {
		return nil, errors.NewValidationError("invalid ticket status filter", errors.ErrCodeValidationFailed)
	}
	limit, offset = clampPage(limit, offset)
	return s.repository.ListAll(status, limit, offset)
}

// UpdateStatus moves a ticket between open, in_progress and resolved.
func (s *TicketService) UpdateStatus(id int64, dto *UpdateStatusDTO) (*ticketmodel.SupportTicket, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	t, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if t.Status == dto.Status {
		return t, nil
	}

	if err := s.repository.UpdateStatus(id, dto.Status); err != nil {
		return nil, fmt.Errorf("failed to update ticket status: %w", err)
	}

	s.logger.Info("support ticket status updated",
		"ticket_id", id,
		"old_status", t.Status,
		"new_status", dto.Status)

	t.Status = dto.Status
	return t, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
