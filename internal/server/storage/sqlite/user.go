package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/messagely/internal/models"
	"github.com/iudanet/messagely/internal/server/storage"
)

// CreateUser creates a new user in the storage
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, password, first_name, last_name, phone, join_at, last_login_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.Username,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.JoinAt,
		user.LastLoginAt,
	)

	if err != nil {
		// Проверяем на duplicate username
		if isUniqueViolation(err) {
			return storage.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetUserByUsername retrieves user by username
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT username, password, first_name, last_name, phone, join_at, last_login_at
		FROM users
		WHERE username = ?
	`

	user := &models.User{}
	var lastLogin sql.NullTime

	err := s.db.QueryRowContext(ctx, query, username).Scan(
		&user.Username,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Phone,
		&user.JoinAt,
		&lastLogin,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if lastLogin.Valid {
		user.LastLoginAt = &lastLogin.Time
	}

	return user, nil
}

// ListUsers returns basic info on all users
func (s *Storage) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	query := `
		SELECT username, first_name, last_name
		FROM users
		ORDER BY username
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	users := make([]models.UserSummary, 0)

	for rows.Next() {
		var u models.UserSummary
		if err := rows.Scan(&u.Username, &u.FirstName, &u.LastName); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return users, nil
}

// UpdateLastLogin updates the last login timestamp
func (s *Storage) UpdateLastLogin(ctx context.Context, username string, lastLogin time.Time) (*models.LoginRecord, error) {
	query := `UPDATE users SET last_login_at = ? WHERE username = ?`

	result, err := s.db.ExecContext(ctx, query, lastLogin, username)
	if err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return nil, storage.ErrUserNotFound
	}

	return &models.LoginRecord{Username: username, LastLoginAt: lastLogin}, nil
}
