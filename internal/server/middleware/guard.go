package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/messagely/internal/server/apierr"
	"github.com/iudanet/messagely/internal/server/auth"
	"github.com/iudanet/messagely/internal/server/metrics"
)

// routeParams are the path wildcards passed to guards.
var routeParams = []string{auth.ParamUsername, auth.ParamMessageID}

// Guards adapts auth.Guard predicates to HTTP handlers.
type Guards struct {
	responder *apierr.Responder
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewGuards создает адаптер guard'ов
func NewGuards(responder *apierr.Responder, m *metrics.Metrics, logger *slog.Logger) *Guards {
	return &Guards{
		responder: responder,
		metrics:   m,
		logger:    logger,
	}
}

// Require runs guard before next. A rejection or a failed lookup is passed to
// the responder; errors of next are never touched.
func (g *Guards) Require(guard auth.Guard, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params := make(map[string]string, len(routeParams))
		for _, name := range routeParams {
			if v := r.PathValue(name); v != "" {
				params[name] = v
			}
		}

		err := guard.Check(r.Context(), auth.NewRequest(r.Context(), params))
		if err == nil {
			g.metrics.RecordGuardDecision(guard.Name(), metrics.OutcomeAllow)
			next.ServeHTTP(w, r)
			return
		}

		if errors.Is(err, apierr.ErrUnauthorized) || errors.Is(err, apierr.ErrNotFound) {
			g.metrics.RecordGuardDecision(guard.Name(), metrics.OutcomeReject)
			g.logger.InfoContext(r.Context(), "Access denied",
				"guard", guard.Name(),
				"method", r.Method,
				"path", r.URL.Path,
				"reason", apierr.Reason(err),
			)
		} else {
			g.metrics.RecordGuardDecision(guard.Name(), metrics.OutcomeError)
		}

		g.responder.Error(w, r, err)
	})
}

// RequireFunc is Require for a plain handler function.
func (g *Guards) RequireFunc(guard auth.Guard, next http.HandlerFunc) http.Handler {
	return g.Require(guard, next)
}
