package usecase

import (
	"context"

	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/domain"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/policy"
	repository "github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/persistence/repository/port"
)

const defaultPageSize = 50

// ListMessagesInput pages through a conversation's history.
type ListMessagesInput struct {
	ConversationID string
	UserID         string
	Limit          int
	Offset         int
}

// ListMessagesUseCase returns a conversation's messages, oldest first, to
// any participant. Deleted messages are filtered by the store; content of
// what remains is returned as stored.
type ListMessagesUseCase struct {
	Store repository.ConversationStore
}

func NewListMessagesUseCase(store repository.ConversationStore) *ListMessagesUseCase {
	return &ListMessagesUseCase{Store: store}
}

func (uc *ListMessagesUseCase) Execute(ctx context.Context, in ListMessagesInput) ([]domain.Message, error) {
	if in.ConversationID == "" || in.UserID == "" {
		return nil, &domain.ValidationError{Reason: "conversation_id and user_id are required"}
	}
	if in.Limit <= 0 {
		in.Limit = defaultPageSize
	}
	if in.Offset < 0 {
		in.Offset = 0
	}

	conv, err := uc.Store.GetConversation(ctx, in.ConversationID)
	if err != nil {
		return nil, storeErr("load conversation", err)
	}
	if err := policy.CanJoin(in.UserID, conv); err != nil {
		return nil, err
	}

	msgs, err := uc.Store.ListMessages(ctx, in.ConversationID, in.Limit, in.Offset)
	if err != nil {
		return nil, storeErr("list messages", err)
	}
	return msgs, nil
}
