package storage

import (
	"context"
	"time"

	"github.com/iudanet/messagely/internal/models"
)

// UserStorage defines interface for user data persistence
type UserStorage interface {
	// CreateUser creates a new user in the storage
	// Returns ErrUserAlreadyExists if username already exists
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByUsername retrieves user by username, including the password hash
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// ListUsers returns basic info on all users ordered by username
	ListUsers(ctx context.Context) ([]models.UserSummary, error)

	// UpdateLastLogin updates the last login timestamp
	// Returns ErrUserNotFound if user doesn't exist
	UpdateLastLogin(ctx context.Context, username string, lastLogin time.Time) (*models.LoginRecord, error)
}
