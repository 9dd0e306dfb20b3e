package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/samber/lo"

	"github.com/iudanet/messagely/internal/models"
	"github.com/iudanet/messagely/internal/server/apierr"
	"github.com/iudanet/messagely/internal/validation"
	"github.com/iudanet/messagely/pkg/api"
)

// maxBodyBytes ограничивает размер JSON тела запроса
const maxBodyBytes = 1 << 20

// decodeJSON декодирует тело запроса в dst и валидирует его по тегам validate.
// Любая ошибка возвращается как BadRequest.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apierr.BadRequest("request body is empty")
		}
		return apierr.BadRequest("invalid request body")
	}
	if err := validation.Struct(dst); err != nil {
		return apierr.BadRequest(err.Error())
	}
	return nil
}

func toContact(u models.UserSummary) api.UserContact {
	return api.UserContact{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
	}
}

func toInbox(msgs []models.MessageWithPeer) []api.InboxMessage {
	return lo.Map(msgs, func(m models.MessageWithPeer, _ int) api.InboxMessage {
		return api.InboxMessage{
			ID:       m.ID,
			Body:     m.Body,
			SentAt:   m.SentAt,
			ReadAt:   m.ReadAt,
			FromUser: toContact(m.Peer),
		}
	})
}

func toOutbox(msgs []models.MessageWithPeer) []api.OutboxMessage {
	return lo.Map(msgs, func(m models.MessageWithPeer, _ int) api.OutboxMessage {
		return api.OutboxMessage{
			ID:     m.ID,
			Body:   m.Body,
			SentAt: m.SentAt,
			ReadAt: m.ReadAt,
			ToUser: toContact(m.Peer),
		}
	})
}
