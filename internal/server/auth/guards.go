package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/iudanet/messagely/internal/models"
	"github.com/iudanet/messagely/internal/server/apierr"
	"github.com/iudanet/messagely/internal/server/storage"
)

// Route parameter names used by the guards.
const (
	ParamUsername  = "username"
	ParamMessageID = "id"
)

// Guard decides whether a request may proceed. A nil error means continue;
// any other error rejects the request and is propagated unchanged.
type Guard interface {
	Name() string
	Check(ctx context.Context, req Request) error
}

// GuardFunc adapts a named function to Guard.
type GuardFunc struct {
	fn   func(ctx context.Context, req Request) error
	name string
}

// NewGuard creates a named Guard from fn.
func NewGuard(name string, fn func(ctx context.Context, req Request) error) GuardFunc {
	return GuardFunc{name: name, fn: fn}
}

// Name returns the guard name used in logs and metrics.
func (g GuardFunc) Name() string { return g.name }

// Check runs the guard.
func (g GuardFunc) Check(ctx context.Context, req Request) error { return g.fn(ctx, req) }

// MessageRefGetter loads the access-control view of a message.
type MessageRefGetter interface {
	// GetMessageRef returns storage.ErrMessageNotFound if the message doesn't exist
	GetMessageRef(ctx context.Context, id int64) (*models.MessageRef, error)
}

// RequireIdentity rejects requests without a verified identity.
func RequireIdentity(req Request) error {
	if req.Identity == nil {
		return apierr.Unauthorized("authentication required")
	}
	return nil
}

// RequireUser accepts only when the identity is exactly the user named by the
// route. The comparison is case-sensitive and does not trim.
func RequireUser(req Request) error {
	if err := RequireIdentity(req); err != nil {
		return err
	}
	if req.Identity.Username != req.Param(ParamUsername) {
		return apierr.Unauthorized("not allowed to access this user")
	}
	return nil
}

// RequireReadAccess accepts the sender and the recipient of msg.
func RequireReadAccess(req Request, msg models.MessageRef) error {
	if err := RequireIdentity(req); err != nil {
		return err
	}
	if !CanRead(*req.Identity, msg) {
		return apierr.Unauthorized("not a participant of this message")
	}
	return nil
}

// RequireRecipient accepts only the recipient of msg.
func RequireRecipient(req Request, msg models.MessageRef) error {
	if err := RequireIdentity(req); err != nil {
		return err
	}
	if !CanMarkRead(*req.Identity, msg) {
		return apierr.Unauthorized("only the recipient can mark a message as read")
	}
	return nil
}

// EnsureLoggedIn is the baseline authentication gate.
var EnsureLoggedIn = NewGuard("ensure_logged_in", func(_ context.Context, req Request) error {
	return RequireIdentity(req)
})

// EnsureCorrectUser requires the identity to match the {username} route parameter.
var EnsureCorrectUser = NewGuard("ensure_correct_user", func(_ context.Context, req Request) error {
	return RequireUser(req)
})

// EnsureCorrectMessageAccess guards message reads.
func EnsureCorrectMessageAccess(messages MessageRefGetter) Guard {
	return NewGuard("ensure_correct_message_access", func(ctx context.Context, req Request) error {
		msg, err := loadMessageRef(ctx, messages, req)
		if err != nil {
			return err
		}
		return RequireReadAccess(req, *msg)
	})
}

// EnsureRecipientAccess guards the mark-as-read action.
func EnsureRecipientAccess(messages MessageRefGetter) Guard {
	return NewGuard("ensure_recipient_access", func(ctx context.Context, req Request) error {
		msg, err := loadMessageRef(ctx, messages, req)
		if err != nil {
			return err
		}
		return RequireRecipient(req, *msg)
	})
}

// loadMessageRef checks identity first so anonymous callers never learn
// whether an id exists. Unknown and non-numeric ids are NotFound; any other
// store failure is returned as is.
func loadMessageRef(ctx context.Context, messages MessageRefGetter, req Request) (*models.MessageRef, error) {
	if err := RequireIdentity(req); err != nil {
		return nil, err
	}

	raw := req.Param(ParamMessageID)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, apierr.NotFound("message", raw)
	}

	msg, err := messages.GetMessageRef(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrMessageNotFound) {
			return nil, apierr.NotFound("message", raw)
		}
		return nil, fmt.Errorf("failed to load message %d: %w", id, err)
	}

	return msg, nil
}
