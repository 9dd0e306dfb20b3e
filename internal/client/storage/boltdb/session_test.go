package boltdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/messagely/internal/client/storage"
)

func TestStorage_SaveGetDeleteSession(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	// До сохранения сессии нет
	_, err := store.GetSession(ctx)
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)

	session := &storage.Session{
		Username:  "alice",
		Token:     "token-1",
		ServerURL: "http://localhost:8080",
		SavedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, store.SaveSession(ctx, session))

	got, err := store.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.Username, got.Username)
	assert.Equal(t, session.Token, got.Token)
	assert.Equal(t, session.ServerURL, got.ServerURL)
	assert.True(t, session.SavedAt.Equal(got.SavedAt))

	// Повторное сохранение перезаписывает сессию
	session.Username = "bob"
	session.Token = "token-2"
	require.NoError(t, store.SaveSession(ctx, session))

	got, err = store.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Username)
	assert.Equal(t, "token-2", got.Token)

	require.NoError(t, store.DeleteSession(ctx))

	_, err = store.GetSession(ctx)
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)

	// Удаление отсутствующей сессии
	assert.ErrorIs(t, store.DeleteSession(ctx), storage.ErrSessionNotFound)
}

func TestStorage_SessionSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "client.db")

	store, err := New(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.SaveSession(ctx, &storage.Session{Username: "alice", Token: "t"}))
	require.NoError(t, store.Close())

	store, err = New(ctx, dbPath)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, store.Close())
	}()

	got, err := store.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "t", got.Token)
}
