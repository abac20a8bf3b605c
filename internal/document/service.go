package document

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"gorm.io/gorm"

	errors "github.com/coloradoleasecheck/leasecheck/internal"
	"github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/document"
	"github.com/coloradoleasecheck/leasecheck/internal/core/events"
)

// allowedExtensions is the lease upload allow-list. Extension and sniffed
// content type must both pass before anything touches disk.
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

// sniffSize is how much of the upload the MIME detector reads.
const sniffSize = 3072

type RepositoryAPI interface {
	Create(doc *document.Document) error
	GetByID(id int64) (*document.Document, error)
	ListByEmail(email string, limit, offset int) ([]*document.Document, error)
	UpdateStatus(id int64, status string, processingError *string) error
	UpdateAnalysis(id int64, status string, riskLevel string, riskFactors, annotations []byte) error
}

type DocumentService struct {
	repository     RepositoryAPI
	storage        *Storage
	eventBus       *events.EventBus
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewService(repository RepositoryAPI, storage *Storage, eventBus *events.EventBus, maxUploadBytes int64, logger *slog.Logger) *DocumentService {
	return &DocumentService{
		repository:     repository,
		storage:        storage,
		eventBus:       eventBus,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Upload validates and stores a lease document, inserts the pending row and
// publishes document.uploaded for the async processor. declaredSize is the
// multipart part size; the stream is still capped while copying in case the
// declaration lies.
func (s *DocumentService) Upload(ctx context.Context, email, originalFilename string, declaredSize int64, src io.Reader) (*document.Document, error) {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	if !allowedExtensions[ext] {
		return nil, errors.ErrUnsupportedFileType
	}
	if declaredSize > s.maxUploadBytes {
		return nil, errors.ErrFileTooLarge
	}

	head := make([]byte, sniffSize)
	n, err := io.ReadFull(src, head)
	if err != nil && !stderrors.Is(err, io.EOF) && !stderrors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]

	mime := mimetype.Detect(head)
	if !mimeAllowed(mime, ext) {
		s.logger.Warn("upload content type does not match extension",
			"extension", ext,
			"detected", mime.String())
		return nil, errors.ErrUnsupportedFileType
	}

	// Cap the copy one byte past the limit so oversize streams are caught
	// even when the declared size was wrong.
	limited := io.LimitReader(io.MultiReader(bytes.NewReader(head), src), s.maxUploadBytes+1)
	storedName, written, err := s.storage.Save(email, ext, limited)
	if err != nil {
		return nil, err
	}
	if written > s.maxUploadBytes {
		if removeErr := s.storage.Remove(storedName); removeErr != nil {
			s.logger.Error("failed to remove oversize upload", "error", removeErr, "stored_filename", storedName)
		}
		return nil, errors.ErrFileTooLarge
	}

	doc := &document.Document{
		UserEmail:        strings.ToLower(strings.TrimSpace(email)),
		StoredFilename:   storedName,
		OriginalFilename: filepath.Base(originalFilename),
		MimeType:         mime.String(),
		SizeBytes:        written,
		Status:           document.StatusPending,
	}
	if err := s.repository.Create(doc); err != nil {
		if removeErr := s.storage.Remove(storedName); removeErr != nil {
			s.logger.Error("failed to remove orphaned upload", "error", removeErr, "stored_filename", storedName)
		}
		return nil, fmt.Errorf("failed to save document record: %w", err)
	}

	s.logger.Info("lease document uploaded",
		"document_id", doc.ID,
		"user_email", doc.UserEmail,
		"size_bytes", written,
		"mime_type", doc.MimeType)

	if s.eventBus != nil {
		_ = s.eventBus.Publish(ctx, events.NewDocumentUploadedEvent(doc.ID, doc.UserEmail, storedName))
	}

	return doc, nil
}

func (s *DocumentService) GetByID(id int64) (*document.Document, error) {
	doc, err := s.repository.GetByID(id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrDocumentNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *DocumentService) ListByEmail(email string, limit, offset int) ([]*document.Document, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repository.ListByEmail(strings.ToLower(strings.TrimSpace(email)), limit, offset)
}

// OwnedBy reports whether the document exists and belongs to the email.
// Support tickets use it so tickets can only reference the reporter's own
// uploads.
func (s *DocumentService) OwnedBy(documentID int64, email string) (bool, error) {
	doc, err := s.repository.GetByID(documentID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return doc.UserEmail == strings.ToLower(strings.TrimSpace(email)), nil
}

// FilePath resolves the on-disk path of a stored document for streaming.
func (s *DocumentService) FilePath(doc *document.Document) (string, error) {
	return s.storage.Path(doc.StoredFilename)
}

func mimeAllowed(mime *mimetype.MIME, ext string) bool {
	switch ext {
	case ".pdf":
		return mime.Is("application/pdf")
	case ".docx":
		return mime.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document") ||
			mime.Is("application/zip")
	case ".doc":
		return mime.Is("application/msword") ||
			mime.Is("application/x-ole-storage")
	default:
		return false
	}
}
