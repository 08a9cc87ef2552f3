// Package notifications creates durable notification records, pushes them
// to the recipient's notify group, and keeps the cached unread summary
// consistent with the store. Messaging is one producer among several; the
// contract is create + push + invalidate.
package notifications

import (
	"context"
	"time"
)

// Category values produced by the messaging core. Other subsystems add
// their own.
const (
	CategoryMessage         = "message"
	CategoryMessageRequest  = "message_request"
	CategoryRequestAccepted = "message_request_accepted"
)

// Notification is one durable record addressed to a user.
type Notification struct {
	ID          string     `db:"id"`
	RecipientID string     `db:"recipient_id"`
	SenderID    *string    `db:"sender_id"`
	Category    string     `db:"category"`
	Message     string     `db:"body"`
	TargetRef   string     `db:"target_ref"`
	IsRead      bool       `db:"is_read"`
	ReadAt      *time.Time `db:"read_at"`
	CreatedAt   time.Time  `db:"created_at"`
}

// Store persists notification rows. IDs and creation times are assigned by
// the store.
type Store interface {
	Create(ctx context.Context, n Notification) (*Notification, error)
	ListRecent(ctx context.Context, recipientID string, limit int) ([]Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int, error)
	MarkRead(ctx context.Context, id, recipientID string) error
	MarkAllRead(ctx context.Context, recipientID string) error
	Delete(ctx context.Context, id, recipientID string) error
}
