package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iudanet/messagely/internal/models"
	"github.com/iudanet/messagely/internal/server/apierr"
	"github.com/iudanet/messagely/internal/server/storage"
	"github.com/iudanet/messagely/internal/server/token"
	"github.com/iudanet/messagely/internal/server/users"
	"github.com/iudanet/messagely/pkg/api"
)

var errDB = errors.New("database is locked")

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestResponder() *apierr.Responder {
	return apierr.NewResponder(setupTestLogger(), false)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var resp api.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

// mockCredentials is a mock implementation of CredentialStore for testing
type mockCredentials struct {
	users       map[string]string // username -> password
	registerErr error
	verifyErr   error
	recordErr   error
	logins      []string
}

func newMockCredentials() *mockCredentials {
	return &mockCredentials{users: make(map[string]string)}
}

func (m *mockCredentials) Register(_ context.Context, in users.RegisterInput) (*models.User, error) {
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	if _, exists := m.users[in.Username]; exists {
		return nil, storage.ErrUserAlreadyExists
	}
	m.users[in.Username] = in.Password
	return &models.User{Username: in.Username, FirstName: in.FirstName, LastName: in.LastName, Phone: in.Phone}, nil
}

func (m *mockCredentials) VerifyCredentials(_ context.Context, username, plaintext string) (bool, error) {
	if m.verifyErr != nil {
		return false, m.verifyErr
	}
	password, ok := m.users[username]
	return ok && password == plaintext, nil
}

func (m *mockCredentials) RecordLogin(_ context.Context, username string) (*models.LoginRecord, error) {
	if m.recordErr != nil {
		return nil, m.recordErr
	}
	if _, ok := m.users[username]; !ok {
		return nil, storage.ErrUserNotFound
	}
	m.logins = append(m.logins, username)
	return &models.LoginRecord{Username: username, LastLoginAt: time.Now()}, nil
}

// mockTokens issues predictable tokens
type mockTokens struct {
	err error
}

func (m *mockTokens) Issue(id token.Identity) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "token-for-" + id.Username, nil
}

// mockUsers is a mock implementation of UserReader for testing
type mockUsers struct {
	users map[string]*models.User
	err   error
}

func (m *mockUsers) Get(_ context.Context, username string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[username]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUsers) List(_ context.Context) ([]models.UserSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.UserSummary, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, models.UserSummary{Username: u.Username, FirstName: u.FirstName, LastName: u.LastName, Phone: u.Phone})
	}
	return out, nil
}

// mockMessages is a mock implementation of MessageStore and MessageLister for testing
type mockMessages struct {
	messages map[int64]*models.Message
	users    map[string]models.UserSummary
	nextID   int64
	err      error
}

func newMockMessages(usernames ...string) *mockMessages {
	m := &mockMessages{
		messages: make(map[int64]*models.Message),
		users:    make(map[string]models.UserSummary),
	}
	for _, u := range usernames {
		m.users[u] = models.UserSummary{Username: u, FirstName: u + "-first", LastName: u + "-last", Phone: "555"}
	}
	return m
}

func (m *mockMessages) CreateMessage(_ context.Context, msg *models.Message) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.users[msg.ToUsername]; !ok {
		return storage.ErrUserNotFound
	}
	m.nextID++
	msg.ID = m.nextID
	stored := *msg
	m.messages[msg.ID] = &stored
	return nil
}

func (m *mockMessages) GetMessage(_ context.Context, id int64) (*models.MessageDetail, error) {
	if m.err != nil {
		return nil, m.err
	}
	msg, ok := m.messages[id]
	if !ok {
		return nil, storage.ErrMessageNotFound
	}
	return &models.MessageDetail{
		ID:       msg.ID,
		Body:     msg.Body,
		SentAt:   msg.SentAt,
		ReadAt:   msg.ReadAt,
		FromUser: m.users[msg.FromUsername],
		ToUser:   m.users[msg.ToUsername],
	}, nil
}

func (m *mockMessages) MarkRead(_ context.Context, id int64, readAt time.Time) (*models.ReadReceipt, error) {
	if m.err != nil {
		return nil, m.err
	}
	msg, ok := m.messages[id]
	if !ok {
		return nil, storage.ErrMessageNotFound
	}
	if msg.ReadAt == nil {
		msg.ReadAt = &readAt
	}
	return &models.ReadReceipt{ID: id, ReadAt: *msg.ReadAt}, nil
}

func (m *mockMessages) list(match func(*models.Message) bool, peer func(*models.Message) string) ([]models.MessageWithPeer, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.MessageWithPeer
	for id := int64(1); id <= m.nextID; id++ {
		msg, ok := m.messages[id]
		if !ok || !match(msg) {
			continue
		}
		out = append(out, models.MessageWithPeer{
			ID: msg.ID, Body: msg.Body, SentAt: msg.SentAt, ReadAt: msg.ReadAt,
			Peer: m.users[peer(msg)],
		})
	}
	return out, nil
}

func (m *mockMessages) MessagesFrom(_ context.Context, username string) ([]models.MessageWithPeer, error) {
	return m.list(
		func(msg *models.Message) bool { return msg.FromUsername == username },
		func(msg *models.Message) string { return msg.ToUsername },
	)
}

func (m *mockMessages) MessagesTo(_ context.Context, username string) ([]models.MessageWithPeer, error) {
	return m.list(
		func(msg *models.Message) bool { return msg.ToUsername == username },
		func(msg *models.Message) string { return msg.FromUsername },
	)
}
