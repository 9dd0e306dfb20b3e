package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/samber/lo"

	"github.com/iudanet/messagely/internal/models"
	"github.com/iudanet/messagely/internal/server/apierr"
	"github.com/iudanet/messagely/internal/server/auth"
	"github.com/iudanet/messagely/internal/server/storage"
	"github.com/iudanet/messagely/pkg/api"
)

// UserReader reads user profiles.
type UserReader interface {
	Get(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.UserSummary, error)
}

// MessageLister lists messages of one user.
type MessageLister interface {
	MessagesFrom(ctx context.Context, username string) ([]models.MessageWithPeer, error)
	MessagesTo(ctx context.Context, username string) ([]models.MessageWithPeer, error)
}

// UserHandler обрабатывает запросы к /users
type UserHandler struct {
	logger    *slog.Logger
	users     UserReader
	messages  MessageLister
	responder *apierr.Responder
}

// NewUserHandler создает новый handler пользователей
func NewUserHandler(logger *slog.Logger, users UserReader, messages MessageLister, responder *apierr.Responder) *UserHandler {
	return &UserHandler{
		logger:    logger,
		users:     users,
		messages:  messages,
		responder: responder,
	}
}

// List обрабатывает GET /users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.users.List(r.Context())
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	h.responder.JSON(w, http.StatusOK, api.UsersResponse{
		Users: lo.Map(list, func(u models.UserSummary, _ int) api.UserSummary {
			return api.UserSummary{Username: u.Username, FirstName: u.FirstName, LastName: u.LastName}
		}),
	})
}

// Get обрабатывает GET /users/{username}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue(auth.ParamUsername)

	user, err := h.users.Get(r.Context(), username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.responder.Error(w, r, apierr.NotFound("user", username))
			return
		}
		h.responder.Error(w, r, err)
		return
	}

	h.responder.JSON(w, http.StatusOK, api.UserResponse{User: api.UserDetail{
		Username:    user.Username,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Phone:       user.Phone,
		JoinAt:      user.JoinAt,
		LastLoginAt: user.LastLoginAt,
	}})
}

// To обрабатывает GET /users/{username}/to: входящие сообщения
func (h *UserHandler) To(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.messages.MessagesTo(r.Context(), r.PathValue(auth.ParamUsername))
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, api.InboxResponse{Messages: toInbox(msgs)})
}

// From обрабатывает GET /users/{username}/from: отправленные сообщения
func (h *UserHandler) From(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.messages.MessagesFrom(r.Context(), r.PathValue(auth.ParamUsername))
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.responder.JSON(w, http.StatusOK, api.OutboxResponse{Messages: toOutbox(msgs)})
}
