package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/messagely/internal/models"
	"github.com/iudanet/messagely/internal/server/apierr"
	"github.com/iudanet/messagely/internal/server/storage"
	"github.com/iudanet/messagely/internal/server/token"
	"github.com/iudanet/messagely/internal/server/users"
	"github.com/iudanet/messagely/pkg/api"
)

// CredentialStore registers users and checks their passwords.
type CredentialStore interface {
	Register(ctx context.Context, in users.RegisterInput) (*models.User, error)
	VerifyCredentials(ctx context.Context, username, plaintext string) (bool, error)
	RecordLogin(ctx context.Context, username string) (*models.LoginRecord, error)
}

// TokenIssuer issues tokens for verified identities.
type TokenIssuer interface {
	Issue(id token.Identity) (string, error)
}

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	logger    *slog.Logger
	users     CredentialStore
	tokens    TokenIssuer
	responder *apierr.Responder
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, credentials CredentialStore, tokens TokenIssuer, responder *apierr.Responder) *AuthHandler {
	return &AuthHandler{
		logger:    logger,
		users:     credentials,
		tokens:    tokens,
		responder: responder,
	}
}

// Register обрабатывает POST /auth/register
// Регистрация нового пользователя, в ответ сразу выдается токен
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.responder.Error(w, r, err)
		return
	}

	user, err := h.users.Register(ctx, users.RegisterInput{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			h.logger.WarnContext(ctx, "user already exists", slog.String("username", req.Username))
			h.responder.Error(w, r, apierr.Conflict("username already taken"))
			return
		}
		if errors.Is(err, users.ErrInvalidInput) {
			h.responder.Error(w, r, apierr.BadRequest(err.Error()))
			return
		}
		h.responder.Error(w, r, err)
		return
	}

	tok, err := h.tokens.Issue(token.Identity{Username: user.Username})
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "user registered successfully", slog.String("username", user.Username))

	h.responder.JSON(w, http.StatusCreated, api.TokenResponse{Token: tok})
}

// Login обрабатывает POST /auth/login
// Проверяет пароль, обновляет last_login_at и выдает токен
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.responder.Error(w, r, err)
		return
	}

	ok, err := h.users.VerifyCredentials(ctx, req.Username, req.Password)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	if !ok {
		h.logger.WarnContext(ctx, "login failed: invalid credentials", slog.String("username", req.Username))
		h.responder.Error(w, r, apierr.Unauthorized("invalid username/password"))
		return
	}

	if _, err := h.users.RecordLogin(ctx, req.Username); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			// пользователь удален между проверкой пароля и записью входа
			h.responder.Error(w, r, apierr.Unauthorized("invalid username/password"))
			return
		}
		h.responder.Error(w, r, err)
		return
	}

	tok, err := h.tokens.Issue(token.Identity{Username: req.Username})
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "user logged in", slog.String("username", req.Username))

	h.responder.JSON(w, http.StatusOK, api.TokenResponse{Token: tok})
}
