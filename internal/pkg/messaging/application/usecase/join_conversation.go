package usecase

import (
	"context"

	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/domain"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/policy"
	repository "github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/persistence/repository/port"
)

// JoinConversationUseCase decides whether a user may attach to a
// conversation's broadcast group and hands back the hydrated conversation
// for the session's opening frame. Joining requires participancy only;
// posting rules are applied per message, not here.
type JoinConversationUseCase struct {
	Store repository.ConversationStore
}

func NewJoinConversationUseCase(store repository.ConversationStore) *JoinConversationUseCase {
	return &JoinConversationUseCase{Store: store}
}

func (uc *JoinConversationUseCase) Execute(ctx context.Context, conversationID, userID string) (*domain.Conversation, error) {
	if conversationID == "" || userID == "" {
		return nil, &domain.ValidationError{Reason: "conversation_id and user_id are required"}
	}
	conv, err := uc.Store.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, storeErr("load conversation", err)
	}
	if err := policy.CanJoin(userID, conv); err != nil {
		return nil, err
	}
	return conv, nil
}
