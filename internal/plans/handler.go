package plans

import (
	"log/slog"
	"net/http"

	"github.com/coloradoleasecheck/leasecheck/internal/transport"
	"github.com/coloradoleasecheck/leasecheck/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Catalog *Catalog
}

func NewHandler(catalog *Catalog) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Catalog:     catalog,
	}
}

func (h *Handler) GetPlans(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"plans": h.Catalog.All(),
	})
}
