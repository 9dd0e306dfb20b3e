package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/messagely/internal/models"
	"github.com/iudanet/messagely/internal/server/storage"
)

func TestUserStorage_CreateUser(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	tests := []struct {
		wantError error
		user      *models.User
		name      string
	}{
		{
			name: "create new user successfully",
			user: &models.User{
				Username:     "testuser1",
				PasswordHash: "hash123",
				FirstName:    "Test",
				LastName:     "User",
				Phone:        "+14155550000",
				JoinAt:       time.Now(),
			},
			wantError: nil,
		},
		{
			name: "create user with last login",
			user: &models.User{
				Username:     "testuser2",
				PasswordHash: "hash456",
				FirstName:    "Test",
				LastName:     "User2",
				Phone:        "+14155550001",
				JoinAt:       time.Now(),
				LastLoginAt:  timePtr(time.Now()),
			},
			wantError: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.CreateUser(ctx, tt.user)
			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)

			// Verify user was created
			retrieved, err := s.GetUserByUsername(ctx, tt.user.Username)
			require.NoError(t, err)
			assert.Equal(t, tt.user.Username, retrieved.Username)
			assert.Equal(t, tt.user.PasswordHash, retrieved.PasswordHash)
			assert.Equal(t, tt.user.FirstName, retrieved.FirstName)
			assert.Equal(t, tt.user.LastName, retrieved.LastName)
			assert.Equal(t, tt.user.Phone, retrieved.Phone)
			assert.WithinDuration(t, tt.user.JoinAt, retrieved.JoinAt, time.Second)
			if tt.user.LastLoginAt == nil {
				assert.Nil(t, retrieved.LastLoginAt)
			} else {
				require.NotNil(t, retrieved.LastLoginAt)
				assert.WithinDuration(t, *tt.user.LastLoginAt, *retrieved.LastLoginAt, time.Second)
			}
		})
	}
}

func TestUserStorage_CreateUser_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	createTestUser(t, ctx, s, "duplicate")

	err := s.CreateUser(ctx, &models.User{
		Username:     "duplicate", // Same username
		PasswordHash: "hash2",
		JoinAt:       time.Now(),
	})
	assert.ErrorIs(t, err, storage.ErrUserAlreadyExists)
}

func TestUserStorage_GetUserByUsername_NotFound(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	createTestUser(t, ctx, s, "findme")

	_, err := s.GetUserByUsername(ctx, "FindMe")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)

	_, err = s.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestUserStorage_ListUsers(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	createTestUser(t, ctx, s, "carol")
	createTestUser(t, ctx, s, "alice")
	createTestUser(t, ctx, s, "bob")

	users, err = s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, []string{"alice", "bob", "carol"}, []string{users[0].Username, users[1].Username, users[2].Username})
	assert.Equal(t, "Firstalice", users[0].FirstName)
	assert.Empty(t, users[0].Phone)
}

func TestUserStorage_UpdateLastLogin(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	createTestUser(t, ctx, s, "alice")

	loginAt := time.Now().Add(time.Hour)
	record, err := s.UpdateLastLogin(ctx, "alice", loginAt)
	require.NoError(t, err)
	assert.Equal(t, "alice", record.Username)
	assert.Equal(t, loginAt, record.LastLoginAt)

	retrieved, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, retrieved.LastLoginAt)
	assert.WithinDuration(t, loginAt, *retrieved.LastLoginAt, time.Second)

	_, err = s.UpdateLastLogin(ctx, "ghost", loginAt)
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}
