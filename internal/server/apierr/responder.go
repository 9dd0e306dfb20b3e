package apierr

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/messagely/internal/logging"
	"github.com/iudanet/messagely/pkg/api"
)

// Responder renders errors and JSON bodies. It is the only component that
// decides status codes for errors.
type Responder struct {
	logger *slog.Logger
	// NotFoundAsUnauthorized renders NotFound as 401 so that callers cannot
	// probe which ids exist. The error kind itself is unchanged.
	NotFoundAsUnauthorized bool
}

// NewResponder создает новый responder
func NewResponder(logger *slog.Logger, notFoundAsUnauthorized bool) *Responder {
	return &Responder{
		logger:                 logger,
		NotFoundAsUnauthorized: notFoundAsUnauthorized,
	}
}

// Status maps an error to an HTTP status code.
func (rs *Responder) Status(err error) int {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		if rs.NotFoundAsUnauthorized {
			return http.StatusUnauthorized
		}
		return http.StatusNotFound
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error отправляет JSON ответ с ошибкой
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	status := rs.Status(err)

	message := Reason(err)
	if status == http.StatusInternalServerError {
		logging.LogError(rs.logger.With("method", r.Method, "path", r.URL.Path), "request failed", err)
		message = "internal server error"
	} else if status == http.StatusUnauthorized && errors.Is(err, ErrNotFound) {
		// collapsed NotFound must look like any other 401
		message = "unauthorized"
	}

	rs.JSON(w, status, api.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

// JSON отправляет JSON ответ
func (rs *Responder) JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		rs.logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}
