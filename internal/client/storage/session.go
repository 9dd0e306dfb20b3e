package storage

import (
	"context"
	"time"
)

// SessionStorage хранит сессию пользователя между запусками клиента.
type SessionStorage interface {
	// SaveSession перезаписывает текущую сессию
	SaveSession(ctx context.Context, s *Session) error

	// GetSession возвращает ErrSessionNotFound, если сессии нет
	GetSession(ctx context.Context) (*Session, error)

	// DeleteSession удаляет сессию (logout)
	DeleteSession(ctx context.Context) error
}

// Session is a saved login: the token is sent as-is on every call.
type Session struct {
	SavedAt   time.Time `json:"saved_at"`
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	ServerURL string    `json:"server_url"`
}
