package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/iudanet/messagely/internal/server/apierr"
)

// RecoveryMiddleware создает middleware для восстановления после паники
// Перехватывает panic, логирует стек вызовов и отдает 500 через responder
func RecoveryMiddleware(logger *slog.Logger, responder *apierr.Responder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tw := &startTracker{ResponseWriter: w}
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.ErrorContext(r.Context(), "Panic recovered",
					"error", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"stack", string(debug.Stack()),
					"response_started", tw.started,
				)

				// ответ уже начат: второй статус и JSON испортили бы тело
				if tw.started {
					return
				}

				// клиенту уходит generic ошибка, детали только в логе
				responder.Error(w, r, fmt.Errorf("panic: %v", rec))
			}()

			next.ServeHTTP(tw, r)
		})
	}
}

// startTracker отмечает, что обработчик уже начал писать ответ
type startTracker struct {
	http.ResponseWriter
	started bool
}

func (t *startTracker) WriteHeader(code int) {
	t.started = true
	t.ResponseWriter.WriteHeader(code)
}

func (t *startTracker) Write(b []byte) (int, error) {
	t.started = true
	return t.ResponseWriter.Write(b)
}

// Unwrap gives http.ResponseController access to the underlying writer.
func (t *startTracker) Unwrap() http.ResponseWriter {
	return t.ResponseWriter
}
