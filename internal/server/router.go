// Package server wires the HTTP routes, their guards and the server lifecycle.
package server

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iudanet/messagely/internal/server/apierr"
	"github.com/iudanet/messagely/internal/server/auth"
	"github.com/iudanet/messagely/internal/server/handlers"
	"github.com/iudanet/messagely/internal/server/metrics"
	"github.com/iudanet/messagely/internal/server/middleware"
	"github.com/iudanet/messagely/internal/server/storage"
	"github.com/iudanet/messagely/internal/server/token"
	"github.com/iudanet/messagely/internal/server/users"
)

// Deps are the collaborators of the router.
type Deps struct {
	Logger      *slog.Logger
	Tokens      *token.Service
	Users       *users.Service
	Messages    storage.MessageStorage
	DB          handlers.Pinger
	Responder   *apierr.Responder
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	AuthLimiter *middleware.RateLimiter
	Version     string
}

// NewRouter builds the handler chain:
// recovery -> request logging -> identity resolver -> mux -> route guards -> handler.
func NewRouter(d Deps) http.Handler {
	authHandler := handlers.NewAuthHandler(d.Logger, d.Users, d.Tokens, d.Responder)
	userHandler := handlers.NewUserHandler(d.Logger, d.Users, d.Messages, d.Responder)
	messageHandler := handlers.NewMessageHandler(d.Logger, d.Messages, d.Responder)
	healthHandler := handlers.NewHealthHandler(d.Logger, d.DB, d.Responder, d.Version)

	guards := middleware.NewGuards(d.Responder, d.Metrics, d.Logger)
	messageAccess := auth.EnsureCorrectMessageAccess(d.Messages)
	recipientAccess := auth.EnsureRecipientAccess(d.Messages)

	mux := http.NewServeMux()

	// Auth routes (public, rate limited)
	limit := func(h http.HandlerFunc) http.Handler { return h }
	if d.AuthLimiter != nil {
		limit = func(h http.HandlerFunc) http.Handler { return d.AuthLimiter.Middleware(d.Responder)(h) }
	}
	mux.Handle("POST /auth/register", limit(authHandler.Register))
	mux.Handle("POST /auth/login", limit(authHandler.Login))

	// Users
	mux.Handle("GET /users", guards.RequireFunc(auth.EnsureLoggedIn, userHandler.List))
	mux.Handle("GET /users/{username}", guards.RequireFunc(auth.EnsureCorrectUser, userHandler.Get))
	mux.Handle("GET /users/{username}/to", guards.RequireFunc(auth.EnsureCorrectUser, userHandler.To))
	mux.Handle("GET /users/{username}/from", guards.RequireFunc(auth.EnsureCorrectUser, userHandler.From))

	// Messages
	mux.Handle("POST /messages", guards.RequireFunc(auth.EnsureLoggedIn, messageHandler.Create))
	mux.Handle("GET /messages/{id}", guards.RequireFunc(messageAccess, messageHandler.Get))
	mux.Handle("POST /messages/{id}", guards.RequireFunc(recipientAccess, messageHandler.MarkRead))
	mux.Handle("POST /messages/{id}/read", guards.RequireFunc(recipientAccess, messageHandler.MarkRead))

	// Service
	mux.HandleFunc("GET /health", healthHandler.Health)
	if d.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	var h http.Handler = mux
	h = middleware.Authenticate(d.Logger, d.Tokens, d.Metrics)(h)
	h = middleware.LoggingWithSkip(d.Logger, d.Metrics, []string{"/health", "/metrics"})(h)
	h = middleware.RecoveryMiddleware(d.Logger, d.Responder)(h)
	return h
}
