// Package users is the credential store: registration, password checks and
// login bookkeeping on top of storage.UserStorage.
package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/messagely/internal/models"
	"github.com/iudanet/messagely/internal/server/storage"
	"github.com/iudanet/messagely/internal/validation"
)

// ErrInvalidInput is returned by Register for an unacceptable username or password.
var ErrInvalidInput = errors.New("invalid input")

// RegisterInput holds the fields of a new user.
type RegisterInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// Service implements the credential store.
type Service struct {
	users storage.UserStorage
	now   func() time.Time
	cost  int
}

// NewService creates a new credential store with the given bcrypt cost.
func NewService(users storage.UserStorage, cost int) (*Service, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be in [%d, %d], got %d", bcrypt.MinCost, bcrypt.MaxCost, cost)
	}
	return &Service{
		users: users,
		cost:  cost,
		now:   time.Now,
	}, nil
}

// Register hashes the password and stores the user. A new user counts as
// logged in at registration time.
// Returns storage.ErrUserAlreadyExists for a taken username.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &models.User{
		Username:     in.Username,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		JoinAt:       now,
		LastLoginAt:  &now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// VerifyCredentials reports whether plaintext is the password of username.
// Unknown users and wrong passwords both yield false; only store failures are
// returned as errors.
func (s *Service) VerifyCredentials(ctx context.Context, username, plaintext string) (bool, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get user: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("failed to compare password: %w", err)
	}
}

// RecordLogin updates last_login_at of username.
// Returns storage.ErrUserNotFound if the user doesn't exist.
func (s *Service) RecordLogin(ctx context.Context, username string) (*models.LoginRecord, error) {
	return s.users.UpdateLastLogin(ctx, username, s.now())
}

// Get returns the user with the given username.
func (s *Service) Get(ctx context.Context, username string) (*models.User, error) {
	return s.users.GetUserByUsername(ctx, username)
}

// List returns basic info on all users.
func (s *Service) List(ctx context.Context) ([]models.UserSummary, error) {
	return s.users.ListUsers(ctx)
}
