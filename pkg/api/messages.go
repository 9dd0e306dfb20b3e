package api

import "time"

// SendMessageRequest is the body of POST /messages.
type SendMessageRequest struct {
	ToUsername string `json:"to_username" validate:"required"`
	Body       string `json:"body" validate:"required,max=4096"`
}

// SentMessage is a freshly created message.
type SentMessage struct {
	ID           int64     `json:"id"`
	FromUsername string    `json:"from_username"`
	ToUsername   string    `json:"to_username"`
	Body         string    `json:"body"`
	SentAt       time.Time `json:"sent_at"`
}

// SentMessageResponse is returned by POST /messages.
type SentMessageResponse struct {
	Message SentMessage `json:"message"`
}

// MessageDetail is a message with both participants.
type MessageDetail struct {
	ID       int64       `json:"id"`
	Body     string      `json:"body"`
	SentAt   time.Time   `json:"sent_at"`
	ReadAt   *time.Time  `json:"read_at"`
	FromUser UserContact `json:"from_user"`
	ToUser   UserContact `json:"to_user"`
}

// MessageDetailResponse is returned by GET /messages/{id}.
type MessageDetailResponse struct {
	Message MessageDetail `json:"message"`
}

// InboxMessage is a message received by the user.
type InboxMessage struct {
	ID       int64       `json:"id"`
	Body     string      `json:"body"`
	SentAt   time.Time   `json:"sent_at"`
	ReadAt   *time.Time  `json:"read_at"`
	FromUser UserContact `json:"from_user"`
}

// InboxResponse is returned by GET /users/{username}/to.
type InboxResponse struct {
	Messages []InboxMessage `json:"messages"`
}

// OutboxMessage is a message sent by the user.
type OutboxMessage struct {
	ID     int64       `json:"id"`
	Body   string      `json:"body"`
	SentAt time.Time   `json:"sent_at"`
	ReadAt *time.Time  `json:"read_at"`
	ToUser UserContact `json:"to_user"`
}

// OutboxResponse is returned by GET /users/{username}/from.
type OutboxResponse struct {
	Messages []OutboxMessage `json:"messages"`
}

// ReadReceipt is the result of marking a message as read.
type ReadReceipt struct {
	ID     int64     `json:"id"`
	ReadAt time.Time `json:"read_at"`
}

// ReadReceiptResponse is returned by POST /messages/{id}.
type ReadReceiptResponse struct {
	Message ReadReceipt `json:"message"`
}
