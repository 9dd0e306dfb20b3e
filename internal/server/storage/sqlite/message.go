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

// CreateMessage stores a new message and fills in its ID
func (s *Storage) CreateMessage(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT INTO messages (from_username, to_username, body, sent_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		msg.FromUsername,
		msg.ToUsername,
		msg.Body,
		msg.SentAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return storage.ErrUserNotFound
		}
		return fmt.Errorf("failed to insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get message id: %w", err)
	}
	msg.ID = id

	return nil
}

// GetMessage retrieves a message with both participants
func (s *Storage) GetMessage(ctx context.Context, id int64) (*models.MessageDetail, error) {
	query := `
		SELECT m.id, m.body, m.sent_at, m.read_at,
		       f.username, f.first_name, f.last_name, f.phone,
		       t.username, t.first_name, t.last_name, t.phone
		FROM messages AS m
		JOIN users AS f ON f.username = m.from_username
		JOIN users AS t ON t.username = m.to_username
		WHERE m.id = ?
	`

	msg := &models.MessageDetail{}
	var readAt sql.NullTime

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&msg.ID,
		&msg.Body,
		&msg.SentAt,
		&readAt,
		&msg.FromUser.Username,
		&msg.FromUser.FirstName,
		&msg.FromUser.LastName,
		&msg.FromUser.Phone,
		&msg.ToUser.Username,
		&msg.ToUser.FirstName,
		&msg.ToUser.LastName,
		&msg.ToUser.Phone,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	if readAt.Valid {
		msg.ReadAt = &readAt.Time
	}

	return msg, nil
}

// GetMessageRef retrieves only sender and recipient of a message
func (s *Storage) GetMessageRef(ctx context.Context, id int64) (*models.MessageRef, error) {
	query := `SELECT id, from_username, to_username FROM messages WHERE id = ?`

	ref := &models.MessageRef{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(&ref.ID, &ref.FromUsername, &ref.ToUsername)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to get message ref: %w", err)
	}

	return ref, nil
}

// MarkRead sets read_at of a message. The first read time is kept.
func (s *Storage) MarkRead(ctx context.Context, id int64, readAt time.Time) (*models.ReadReceipt, error) {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE messages SET read_at = COALESCE(read_at, ?) WHERE id = ?`, readAt, id); err != nil {
		return nil, fmt.Errorf("failed to mark message read: %w", err)
	}

	receipt := &models.ReadReceipt{}
	var stored sql.NullTime

	err := s.db.QueryRowContext(ctx, `SELECT id, read_at FROM messages WHERE id = ?`, id).Scan(&receipt.ID, &stored)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to read receipt: %w", err)
	}
	receipt.ReadAt = stored.Time

	return receipt, nil
}

// MessagesFrom returns messages sent by username
func (s *Storage) MessagesFrom(ctx context.Context, username string) ([]models.MessageWithPeer, error) {
	query := `
		SELECT m.id, m.body, m.sent_at, m.read_at,
		       u.username, u.first_name, u.last_name, u.phone
		FROM messages AS m
		JOIN users AS u ON u.username = m.to_username
		WHERE m.from_username = ?
		ORDER BY m.id
	`
	return s.queryMessages(ctx, query, username)
}

// MessagesTo returns messages received by username
func (s *Storage) MessagesTo(ctx context.Context, username string) ([]models.MessageWithPeer, error) {
	query := `
		SELECT m.id, m.body, m.sent_at, m.read_at,
		       u.username, u.first_name, u.last_name, u.phone
		FROM messages AS m
		JOIN users AS u ON u.username = m.from_username
		WHERE m.to_username = ?
		ORDER BY m.id
	`
	return s.queryMessages(ctx, query, username)
}

func (s *Storage) queryMessages(ctx context.Context, query, username string) ([]models.MessageWithPeer, error) {
	rows, err := s.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	messages := make([]models.MessageWithPeer, 0)

	for rows.Next() {
		var (
			m      models.MessageWithPeer
			readAt sql.NullTime
		)
		if err := rows.Scan(
			&m.ID,
			&m.Body,
			&m.SentAt,
			&readAt,
			&m.Peer.Username,
			&m.Peer.FirstName,
			&m.Peer.LastName,
			&m.Peer.Phone,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		if readAt.Valid {
			m.ReadAt = &readAt.Time
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return messages, nil
}
