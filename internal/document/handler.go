package document

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/mail"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/document"
	"github.com/coloradoleasecheck/leasecheck/internal/transport"
	"github.com/coloradoleasecheck/leasecheck/pkg/logger"
)

type ServiceAPI interface {
	Upload(ctx context.Context, email, originalFilename string, declaredSize int64, src io.Reader) (*document.Document, error)
	GetByID(id int64) (*document.Document, error)
	ListByEmail(email string, limit, offset int) ([]*document.Document, error)
	FilePath(doc *document.Document) (string, error)
}

type Handler struct {
	*transport.BaseHandler
	Service        ServiceAPI
	maxUploadBytes int64
}

func NewHandler(service ServiceAPI, maxUploadBytes int64) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler:    transport.NewBaseHandler(lg),
		Service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

// UploadLease accepts a multipart lease upload. The request body is capped a
// little above the file limit to leave room for multipart framing.
func (h *Handler) UploadLease(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+(64<<10))

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.Logger.Warn("UploadLease: failed to parse multipart form", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	email := r.FormValue("email")
	if _, err := mail.ParseAddress(email); err != nil {
		h.WriteError(w, http.StatusBadRequest, "a valid email is required")
		return
	}

	file, header, err := r.FormFile("lease_document")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "lease_document file is required")
		return
	}
	defer file.Close()

	doc, err := h.Service.Upload(r.Context(), email, header.Filename, header.Size, file)
	if err != nil {
		h.Logger.Warn("UploadLease: upload rejected", "error", err, "filename", header.Filename)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, doc)
}

func (h *Handler) GetLease(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	doc, err := h.Service.GetByID(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, doc)
}

// DownloadLease streams the stored file back with its original filename.
func (h *Handler) DownloadLease(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	doc, err := h.Service.GetByID(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	path, err := h.Service.FilePath(doc)
	if err != nil {
		h.Logger.Error("DownloadLease: bad stored filename", "error", err, "document_id", doc.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to locate document")
		return
	}

	w.Header().Set("Content-Type", doc.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.OriginalFilename))
	http.ServeFile(w, r, path)
}

func (h *Handler) ListLeases(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if _, err := mail.ParseAddress(email); err != nil {
		h.WriteError(w, http.StatusBadRequest, "a valid email is required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	docs, err := h.Service.ListByEmail(email, limit, offset)
	if err != nil {
		h.Logger.Error("ListLeases: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"documents": docs,
		"count":     len(docs),
	})
}
