package auth

import "github.com/iudanet/messagely/internal/models"

// CanRead reports whether id participates in the message as sender or recipient.
func CanRead(id Identity, msg models.MessageRef) bool {
	return id.Username == msg.FromUsername || id.Username == msg.ToUsername
}

// CanMarkRead reports whether id is the recipient of the message.
func CanMarkRead(id Identity, msg models.MessageRef) bool {
	return id.Username == msg.ToUsername
}
