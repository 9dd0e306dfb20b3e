package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/messagely/internal/server/apierr"
	"github.com/iudanet/messagely/pkg/api"
)

// Pinger checks that a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler обрабатывает health check запросы
type HealthHandler struct {
	logger    *slog.Logger
	db        Pinger
	responder *apierr.Responder
	version   string
}

// NewHealthHandler создает новый handler для health check
func NewHealthHandler(logger *slog.Logger, db Pinger, responder *apierr.Responder, version string) *HealthHandler {
	return &HealthHandler{
		logger:    logger,
		db:        db,
		responder: responder,
		version:   version,
	}
}

// Health обрабатывает GET /health
// Health check endpoint для мониторинга, проверяет доступность базы данных
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.ErrorContext(ctx, "health check failed", slog.Any("error", err))
		h.responder.JSON(w, http.StatusServiceUnavailable, api.HealthResponse{
			Status:  "unavailable",
			Version: h.version,
		})
		return
	}

	h.responder.JSON(w, http.StatusOK, api.HealthResponse{
		Status:  "ok",
		Version: h.version,
	})
}
