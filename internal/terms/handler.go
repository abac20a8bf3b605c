package terms

import (
	"encoding/json"
	"log/slog"
	"net/http"

	termsmodel "github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/terms"
	"github.com/coloradoleasecheck/leasecheck/internal/transport"
	"github.com/coloradoleasecheck/leasecheck/pkg/logger"
)

type ServiceAPI interface {
	Accept(dto *AcceptTermsDTO, clientIP string) (*termsmodel.TermsAcceptance, error)
	HasAccepted(email, version string) (bool, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) AcceptTerms(w http.ResponseWriter, r *http.Request) {
	var dto AcceptTermsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// A decline is not an error in the flow, but nothing is recorded; the
	// wizard sends the user to the declined screen.
	if !dto.Accepted {
		h.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error":    "terms must be accepted to continue",
			"redirect": "/terms-declined",
		})
		return
	}

	record, err := h.Service.Accept(&dto, h.ClientIP(r))
	if err != nil {
		h.Logger.Warn("AcceptTerms: rejected", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, record)
}

// TermsStatus lets the wizard skip the terms screen for a returning customer.
func (h *Handler) TermsStatus(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		h.WriteError(w, http.StatusBadRequest, "email query parameter is required")
		return
	}
	version := r.URL.Query().Get("version")

	accepted, err := h.Service.HasAccepted(email, version)
	if err != nil {
		h.Logger.Error("TermsStatus: lookup failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"email":    email,
		"accepted": accepted,
	})
}
