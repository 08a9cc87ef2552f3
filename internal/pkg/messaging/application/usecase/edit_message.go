package usecase

import (
	"context"

	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/domain"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/event"
	repository "github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/persistence/repository/port"
)

// EditMessageInput identifies the message and its replacement content.
type EditMessageInput struct {
	ConversationID string
	MessageID      string
	SenderID       string
	NewContent     string
}

// EditMessageUseCase replaces a message's content. Only the sender may
// edit, the message must live in the conversation the caller is acting
// on, and a deleted message is invisible to the edit path: every miss
// surfaces as NotFoundError so callers cannot probe foreign messages.
type EditMessageUseCase struct {
	Store repository.ConversationStore
	Hub   EventPublisher

	MaxContentLength int
}

func NewEditMessageUseCase(store repository.ConversationStore, hub EventPublisher) *EditMessageUseCase {
	return &EditMessageUseCase{Store: store, Hub: hub, MaxContentLength: 1000}
}

func (uc *EditMessageUseCase) Execute(ctx context.Context, in EditMessageInput) (*domain.Message, error) {
	if in.ConversationID == "" || in.MessageID == "" || in.SenderID == "" {
		return nil, &domain.ValidationError{Reason: "conversation_id, message_id and sender_id are required"}
	}
	if err := domain.ValidateContent(in.NewContent, uc.MaxContentLength); err != nil {
		return nil, err
	}

	// The store predicate scopes the update to the conversation, so an id
	// from another conversation misses cleanly instead of mutating there.
	msg, err := uc.Store.EditMessage(ctx, in.ConversationID, in.MessageID, in.SenderID, in.NewContent)
	if err != nil {
		return nil, storeErr("edit message", err)
	}

	uc.Hub.Publish(event.ChatGroup(msg.ConversationID), event.Marshal(event.MessageEdited{
		Type: event.TypeMessageEdited,
		Message: event.EditedMessagePayload{
			ID:         msg.ID,
			NewContent: msg.Content,
			EditedAt:   *msg.EditedAt,
		},
	}))
	return msg, nil
}
