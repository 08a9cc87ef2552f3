package domain

import (
	"strings"
	"time"
)

// DeletedPlaceholder is the only rendering of a soft-deleted message's
// content exposed to any party.
const DeletedPlaceholder = "message removed"

// Message is one entry in a conversation's log. Creation time and ID are
// assigned by the store, never by the client; IDs are ULIDs so lexical
// order matches creation order and breaks timestamp ties.
type Message struct {
	ID             string     `db:"id"`
	ConversationID string     `db:"conversation_id"`
	SenderID       string     `db:"sender_id"`
	Content        string     `db:"content"`
	AttachmentURL  *string    `db:"attachment_url"`
	IsRead         bool       `db:"is_read"`
	ReadAt         *time.Time `db:"read_at"`
	IsDeleted      bool       `db:"is_deleted"`
	DeletedAt      *time.Time `db:"deleted_at"`
	EditedAt       *time.Time `db:"edited_at"`
	CreatedAt      time.Time  `db:"created_at"`
}

// DisplayContent returns the content as any party may see it. Deleted
// messages render only as a placeholder, regardless of who asks.
func (m *Message) DisplayContent() string {
	if m.IsDeleted {
		return DeletedPlaceholder
	}
	return m.Content
}

// ValidateContent enforces the content bounds for new and edited message
// text. maxLength is measured in runes so multibyte text is not penalized.
func ValidateContent(content string, maxLength int) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return &ValidationError{Reason: "message cannot be empty"}
	}
	if len([]rune(content)) > maxLength {
		return &ValidationError{Reason: "message too long"}
	}
	return nil
}
