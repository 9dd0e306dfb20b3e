package storage

import (
	"context"
	"time"

	"github.com/iudanet/messagely/internal/models"
)

// MessageStorage defines interface for direct message persistence
type MessageStorage interface {
	// CreateMessage stores a new message and fills in its ID
	// Returns ErrUserNotFound if either participant doesn't exist
	CreateMessage(ctx context.Context, msg *models.Message) error

	// GetMessage retrieves a message with both participants
	// Returns ErrMessageNotFound if message doesn't exist
	GetMessage(ctx context.Context, id int64) (*models.MessageDetail, error)

	// GetMessageRef retrieves only sender and recipient of a message
	// Returns ErrMessageNotFound if message doesn't exist
	GetMessageRef(ctx context.Context, id int64) (*models.MessageRef, error)

	// MarkRead sets read_at of a message
	// Returns ErrMessageNotFound if message doesn't exist
	MarkRead(ctx context.Context, id int64, readAt time.Time) (*models.ReadReceipt, error)

	// MessagesFrom returns messages sent by username; Peer is the recipient
	MessagesFrom(ctx context.Context, username string) ([]models.MessageWithPeer, error)

	// MessagesTo returns messages received by username; Peer is the sender
	MessagesTo(ctx context.Context, username string) ([]models.MessageWithPeer, error)
}
