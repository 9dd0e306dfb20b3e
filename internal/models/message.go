package models

import "time"

// Message is a direct message between two users.
type Message struct {
	ID           int64      `json:"id"`
	FromUsername string     `json:"from_username"`
	ToUsername   string     `json:"to_username"`
	Body         string     `json:"body"`
	SentAt       time.Time  `json:"sent_at"`
	ReadAt       *time.Time `json:"read_at"`
}

// MessageRef is the minimal view of a message needed for access decisions.
type MessageRef struct {
	ID           int64
	FromUsername string
	ToUsername   string
}

// Ref returns the access-control view of the message.
func (m *Message) Ref() MessageRef {
	return MessageRef{ID: m.ID, FromUsername: m.FromUsername, ToUsername: m.ToUsername}
}

// MessageDetail is a message with both participants resolved.
type MessageDetail struct {
	ID       int64
	Body     string
	SentAt   time.Time
	ReadAt   *time.Time
	FromUser UserSummary
	ToUser   UserSummary
}

// ReadReceipt is the result of marking a message as read.
type ReadReceipt struct {
	ID     int64     `json:"id"`
	ReadAt time.Time `json:"read_at"`
}

// MessageWithPeer is a message listed from one participant's point of view;
// Peer is the other side of the conversation.
type MessageWithPeer struct {
	ID     int64
	Body   string
	SentAt time.Time
	ReadAt *time.Time
	Peer   UserSummary
}
