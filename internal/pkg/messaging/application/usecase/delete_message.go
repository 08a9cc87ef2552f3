package usecase

import (
	"context"

	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/domain"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/event"
	repository "github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/persistence/repository/port"
)

// DeleteMessageInput identifies the message to soft-delete.
type DeleteMessageInput struct {
	ConversationID string
	MessageID      string
	SenderID       string
}

// DeleteMessageUseCase soft-deletes a sender-owned message and announces
// the deletion without leaking the prior content. Deletion is idempotent
// at the store level but a second delete reports NotFoundError, matching
// the edit path so deleted messages are uniformly invisible to mutation.
type DeleteMessageUseCase struct {
	Store repository.ConversationStore
	Hub   EventPublisher
}

func NewDeleteMessageUseCase(store repository.ConversationStore, hub EventPublisher) *DeleteMessageUseCase {
	return &DeleteMessageUseCase{Store: store, Hub: hub}
}

func (uc *DeleteMessageUseCase) Execute(ctx context.Context, in DeleteMessageInput) error {
	if in.ConversationID == "" || in.MessageID == "" || in.SenderID == "" {
		return &domain.ValidationError{Reason: "conversation_id, message_id and sender_id are required"}
	}

	if err := uc.Store.DeleteMessage(ctx, in.ConversationID, in.MessageID, in.SenderID); err != nil {
		return storeErr("delete message", err)
	}

	uc.Hub.Publish(event.ChatGroup(in.ConversationID), event.Marshal(event.MessageDeleted{
		Type:      event.TypeMessageDeleted,
		MessageID: in.MessageID,
		DeletedBy: in.SenderID,
	}))
	return nil
}
