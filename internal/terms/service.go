package terms

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/coloradoleasecheck/leasecheck/internal/core/common/validation"
	termsmodel "github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/terms"
)

// CurrentVersion is stamped on acceptances that omit a version.
const CurrentVersion = "2024-01"

type AcceptTermsDTO struct {
	Email    string `json:"email"`
	Accepted bool   `json:"accepted"`
	Version  string `json:"version"`
}

func (d *AcceptTermsDTO) Validate() error {
	validator := validation.NewValidator()

	validator.Field("email", d.Email).Required().Email()
	validator.Field("accepted", d.Accepted).Required()

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type RepositoryAPI interface {
	Create(t *termsmodel.TermsAcceptance) error
	LatestByEmail(email string) (*termsmodel.TermsAcceptance, error)
}

type TermsService struct {
	repository RepositoryAPI
	logger     *slog.Logger
}

func NewService(repository RepositoryAPI, logger *slog.Logger) *TermsService {
	return &TermsService{repository: repository, logger: logger}
}

// Accept appends an acceptance record. Declining never writes a row; the
// validation error carries the terms-declined redirect hint for the wizard.
func (s *TermsService) Accept(dto *AcceptTermsDTO, clientIP string) (*termsmodel.TermsAcceptance, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	version := strings.TrimSpace(dto.Version)
	if version == "" {
		version = CurrentVersion
	}

	record := &termsmodel.TermsAcceptance{
		UserEmail:    strings.ToLower(strings.TrimSpace(dto.Email)),
		IPAddress:    clientIP,
		TermsVersion: version,
	}
	if err := s.repository.Create(record); err != nil {
		return nil, fmt.Errorf("failed to record terms acceptance: %w", err)
	}

	s.logger.Info("terms accepted",
		"user_email", record.UserEmail,
		"terms_version", record.TermsVersion,
		"ip_address", record.IPAddress)
	return record, nil
}

// HasAccepted reports whether the email ever accepted the given version.
func (s *TermsService) HasAccepted(email, version string) (bool, error) {
	latest, err := s.repository.LatestByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return false, err
	}
	if latest == nil {
		return false, nil
	}
	if version == "" {
		return true, nil
	}
	return latest.TermsVersion == version, nil
}
