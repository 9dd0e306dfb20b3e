package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"

	"github.com/iudanet/messagely/internal/server/auth"
	"github.com/iudanet/messagely/internal/server/metrics"
	"github.com/iudanet/messagely/internal/server/token"
	"github.com/iudanet/messagely/pkg/api"
)

// maxTokenBodyBytes limits how much of a body is buffered to look for _token.
const maxTokenBodyBytes = 1 << 20

// TokenVerifier verifies a raw token and returns the identity it proves.
type TokenVerifier interface {
	Verify(tokenString string) (token.Identity, error)
}

// Authenticate создает middleware, определяющий identity запроса.
// Токен берется из query параметра _token, иначе из поля _token в теле
// (JSON или form). Middleware никогда не отклоняет запрос: при отсутствии
// или невалидности токена identity просто не устанавливается.
func Authenticate(logger *slog.Logger, verifier TokenVerifier, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := tokenFromRequest(r)
			if raw == "" {
				m.RecordTokenVerification(metrics.ResultAbsent)
				next.ServeHTTP(w, r)
				return
			}

			id, err := verifier.Verify(raw)
			if err != nil {
				kind := token.KindOf(err)
				m.RecordTokenVerification(kind.String())
				// сам токен не логируем
				logger.DebugContext(r.Context(), "Token rejected",
					"reason", kind.String(),
					"method", r.Method,
					"path", r.URL.Path,
				)
				next.ServeHTTP(w, r)
				return
			}

			m.RecordTokenVerification(metrics.ResultValid)
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// tokenFromRequest returns the query _token if present, otherwise the body
// _token. The body is always left readable for the next handler.
func tokenFromRequest(r *http.Request) string {
	if t := r.URL.Query().Get(api.TokenField); t != "" {
		return t
	}
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	if mediaType != "application/json" && mediaType != "application/x-www-form-urlencoded" {
		return ""
	}

	buf, err := io.ReadAll(io.LimitReader(r.Body, maxTokenBodyBytes+1))
	// остаток тела (если он больше лимита) остается доступен обработчику
	r.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(buf), r.Body), Closer: r.Body}
	if err != nil || len(buf) > maxTokenBodyBytes {
		return ""
	}

	switch mediaType {
	case "application/json":
		var body struct {
			Token string `json:"_token"`
		}
		if err := json.Unmarshal(buf, &body); err != nil {
			return ""
		}
		return body.Token
	default:
		values, err := url.ParseQuery(string(buf))
		if err != nil {
			return ""
		}
		return values.Get(api.TokenField)
	}
}

type readCloser struct {
	io.Reader
	io.Closer
}
