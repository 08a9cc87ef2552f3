package port

import (
	"context"
	"time"

	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/domain"
)

// ConversationStore is the only component touching durable messaging
// storage. Implementations assign message IDs and creation times
// themselves; clients never supply either.
type ConversationStore interface {
	// CreateConversation persists a conversation and its participant set,
	// returning the assigned id.
	CreateConversation(ctx context.Context, c domain.Conversation) (string, error)

	// GetConversation returns the conversation with its participant ids
	// hydrated, or a NotFoundError.
	GetConversation(ctx context.Context, id string) (*domain.Conversation, error)

	// FindDirectConversation returns the direct conversation between two
	// users, or a NotFoundError if none exists.
	FindDirectConversation(ctx context.Context, userA, userB string) (*domain.Conversation, error)

	// SaveMessage persists a new message with a store-assigned ULID and
	// timestamp, and advances the conversation's last_activity_at.
	SaveMessage(ctx context.Context, conversationID, senderID, content string, attachmentURL *string) (*domain.Message, error)

	// GetMessage returns a message regardless of deletion state; callers
	// decide how deleted messages are surfaced.
	GetMessage(ctx context.Context, messageID string) (*domain.Message, error)

	// ListMessages returns non-deleted messages of a conversation in
	// creation order (oldest first).
	ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]domain.Message, error)

	// MarkMessagesRead marks as read any of the given messages that belong
	// to the conversation and were not sent by readerID. Already-read
	// messages keep their original read_at. Returns the ids affected by
	// this call.
	MarkMessagesRead(ctx context.Context, conversationID, readerID string, messageIDs []string) ([]string, error)

	// EditMessage replaces the content of a sender-owned, non-deleted
	// message in the given conversation and sets edited_at. A missing,
	// deleted, foreign-owned, or other-conversation message yields a
	// NotFoundError and changes nothing.
	EditMessage(ctx context.Context, conversationID, messageID, senderID, newContent string) (*domain.Message, error)

	// DeleteMessage soft-deletes a sender-owned message. Same NotFoundError
	// rules as EditMessage.
	DeleteMessage(ctx context.Context, conversationID, messageID, senderID string) error

	// CountUnreadMessages counts unread, non-deleted messages addressed to
	// the user across active conversations they participate in.
	CountUnreadMessages(ctx context.Context, userID string) (int, error)

	// Message requests.
	CreateMessageRequest(ctx context.Context, r domain.MessageRequest) (string, error)
	GetMessageRequest(ctx context.Context, id string) (*domain.MessageRequest, error)
	FindRequestBetween(ctx context.Context, fromUserID, toUserID string) (*domain.MessageRequest, error)
	SetRequestStatus(ctx context.Context, id string, status domain.RequestStatus, at time.Time) error
	CountPendingRequests(ctx context.Context, userID string) (int, error)
}

// SocialGraph reads follow edges and user display/preference fields owned
// by the accounts subsystem.
type SocialGraph interface {
	Follows(ctx context.Context, followerID, followingID string) (bool, error)

	// FriendIDs returns the union of who the user follows and who follows
	// them, deduplicated.
	FriendIDs(ctx context.Context, userID string) ([]string, error)

	GetProfile(ctx context.Context, userID string) (domain.UserProfile, error)

	// MessagingPreference returns one of domain.PrefAnyone, PrefMutual,
	// PrefNobody.
	MessagingPreference(ctx context.Context, userID string) (string, error)
}

// PresenceStore mutates the two persisted presence fields the tracker is
// allowed to own.
type PresenceStore interface {
	SetOnline(ctx context.Context, userID string, online bool, at time.Time) error
	TouchLastSeen(ctx context.Context, userID string, at time.Time) error
}
