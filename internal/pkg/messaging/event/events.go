// Package event defines the broadcast group namespace and the outbound
// event envelopes published into it. HTTP-originated senders and socket
// sessions publish the same envelopes into the same groups, so this package
// is a contract shared across subsystems.
package event

import (
	"encoding/json"
	"time"
)

// Group naming convention. The hub's namespace is relied upon by every
// publisher, in-socket or not.
func ChatGroup(conversationID string) string { return "chat:" + conversationID }
func NotifyGroup(userID string) string       { return "notify:" + userID }
func StatusGroup(userID string) string       { return "status:" + userID }

// UnreadSummaryKey is the cache key contract for a user's unread summary.
// Any component that changes message or notification state for a user must
// delete this key.
func UnreadSummaryKey(userID string) string { return "unread_summary:" + userID }

// Outbound envelope types.
const (
	TypeConnectionEstablished = "connection_established"
	TypeMessage               = "message"
	TypeTyping                = "typing"
	TypeRead                  = "read"
	TypeMessageEdited         = "message_edited"
	TypeMessageDeleted        = "message_deleted"
	TypeUserStatus            = "user_status"
	TypeNotification          = "notification"
	TypeHeartbeatAck          = "heartbeat_ack"
	TypeError                 = "error"
)

// Sender is the hydrated display view of a message's author.
type Sender struct {
	ID         string  `json:"id"`
	Username   string  `json:"username"`
	FullName   string  `json:"full_name"`
	AvatarURL  *string `json:"profile_picture,omitempty"`
	IsVerified bool    `json:"is_verified"`
	UserType   string  `json:"user_type"`
}

// ChatMessage is the fully-hydrated message event fanned out to a chat
// group. Every joined session receives it, including the sender's other
// open sessions; clients de-duplicate by ID.
type ChatMessage struct {
	Type    string         `json:"type"`
	Message MessagePayload `json:"message"`
}

type MessagePayload struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Content        string    `json:"content"`
	Sender         Sender    `json:"sender"`
	AttachmentURL  *string   `json:"attachment_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	IsRead         bool      `json:"is_read"`
	Advisory       *Advisory `json:"advisory,omitempty"`
}

// Advisory is the non-blocking sentiment warning attached to the sender's
// local echo only. It is never broadcast to other participants.
type Advisory struct {
	Sentiment string  `json:"sentiment"`
	Score     float64 `json:"score"`
	Warning   string  `json:"warning"`
}

// Typing is ephemeral and never persisted. The hub must not deliver it back
// to the originating session.
type Typing struct {
	Type     string `json:"type"`
	User     Sender `json:"user"`
	IsTyping bool   `json:"is_typing"`
}

// ReadReceipt reports messages marked read by a participant.
type ReadReceipt struct {
	Type       string   `json:"type"`
	MessageIDs []string `json:"message_ids"`
	UserID     string   `json:"user_id"`
}

// MessageEdited carries the new content of an edited message.
type MessageEdited struct {
	Type    string               `json:"type"`
	Message EditedMessagePayload `json:"message"`
}

type EditedMessagePayload struct {
	ID         string    `json:"id"`
	NewContent string    `json:"new_content"`
	EditedAt   time.Time `json:"edited_at"`
}

// MessageDeleted announces a soft delete. It must not include the prior
// content.
type MessageDeleted struct {
	Type      string `json:"type"`
	MessageID string `json:"message_id"`
	DeletedBy string `json:"deleted_by"`
}

// UserStatus announces an online/offline transition.
type UserStatus struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
	Status string `json:"status"` // "online" or "offline"
}

// Notification is the realtime push of a durable notification record.
type Notification struct {
	Type         string              `json:"type"`
	Notification NotificationPayload `json:"notification"`
}

type NotificationPayload struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Sender    *Sender   `json:"sender,omitempty"`
	TargetRef string    `json:"target_ref,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// Error is delivered to the originating session only.
type Error struct {
	Type       string   `json:"type"`
	Message    string   `json:"message"`
	Code       string   `json:"code,omitempty"`
	ToxicTerms []string `json:"toxic_terms,omitempty"`
	Retryable  bool     `json:"retryable,omitempty"`
}

// Marshal encodes an envelope, panicking on failure: every envelope in this
// package is a plain data struct, so a marshal error is a programming bug.
func Marshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic("event: marshal: " + err.Error())
	}
	return data
}
