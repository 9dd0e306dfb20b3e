package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/iudanet/messagely/internal/models"
	"github.com/iudanet/messagely/internal/server/apierr"
	"github.com/iudanet/messagely/internal/server/auth"
	"github.com/iudanet/messagely/internal/server/storage"
	"github.com/iudanet/messagely/pkg/api"
)

// MessageStore is the part of storage.MessageStorage used by MessageHandler.
type MessageStore interface {
	CreateMessage(ctx context.Context, msg *models.Message) error
	GetMessage(ctx context.Context, id int64) (*models.MessageDetail, error)
	MarkRead(ctx context.Context, id int64, readAt time.Time) (*models.ReadReceipt, error)
}

// MessageHandler обрабатывает запросы к /messages.
// Доступ к конкретному сообщению проверяется guard'ами до вызова handler'а.
type MessageHandler struct {
	logger    *slog.Logger
	messages  MessageStore
	responder *apierr.Responder
	now       func() time.Time
}

// NewMessageHandler создает новый handler сообщений
func NewMessageHandler(logger *slog.Logger, messages MessageStore, responder *apierr.Responder) *MessageHandler {
	return &MessageHandler{
		logger:    logger,
		messages:  messages,
		responder: responder,
		now:       time.Now,
	}
}

// Get обрабатывает GET /messages/{id}
func (h *MessageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := messageID(r)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	msg, err := h.messages.GetMessage(r.Context(), id)
	if err != nil {
		h.responder.Error(w, r, notFoundOr(err, r))
		return
	}

	h.responder.JSON(w, http.StatusOK, api.MessageDetailResponse{Message: api.MessageDetail{
		ID:       msg.ID,
		Body:     msg.Body,
		SentAt:   msg.SentAt,
		ReadAt:   msg.ReadAt,
		FromUser: toContact(msg.FromUser),
		ToUser:   toContact(msg.ToUser),
	}})
}

// Create обрабатывает POST /messages.
// Отправитель всегда берется из identity запроса.
func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	from, ok := auth.IdentityFrom(ctx)
	if !ok {
		h.responder.Error(w, r, apierr.Unauthorized("authentication required"))
		return
	}

	var req api.SendMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.responder.Error(w, r, err)
		return
	}

	msg := &models.Message{
		FromUsername: from.Username,
		ToUsername:   req.ToUsername,
		Body:         req.Body,
		SentAt:       h.now(),
	}
	if err := h.messages.CreateMessage(ctx, msg); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.responder.Error(w, r, apierr.NotFound("user", req.ToUsername))
			return
		}
		h.responder.Error(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "message sent",
		slog.Int64("id", msg.ID),
		slog.String("from", msg.FromUsername),
		slog.String("to", msg.ToUsername))

	h.responder.JSON(w, http.StatusCreated, api.SentMessageResponse{Message: api.SentMessage{
		ID:           msg.ID,
		FromUsername: msg.FromUsername,
		ToUsername:   msg.ToUsername,
		Body:         msg.Body,
		SentAt:       msg.SentAt,
	}})
}

// MarkRead обрабатывает POST /messages/{id} и POST /messages/{id}/read
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := messageID(r)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}

	receipt, err := h.messages.MarkRead(r.Context(), id, h.now())
	if err != nil {
		h.responder.Error(w, r, notFoundOr(err, r))
		return
	}

	h.responder.JSON(w, http.StatusOK, api.ReadReceiptResponse{Message: api.ReadReceipt{
		ID:     receipt.ID,
		ReadAt: receipt.ReadAt,
	}})
}

func messageID(r *http.Request) (int64, error) {
	raw := r.PathValue(auth.ParamMessageID)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apierr.NotFound("message", raw)
	}
	return id, nil
}

func notFoundOr(err error, r *http.Request) error {
	if errors.Is(err, storage.ErrMessageNotFound) {
		return apierr.NotFound("message", r.PathValue(auth.ParamMessageID))
	}
	return err
}
