package usecase

import (
	"context"

	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/domain"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/event"
	repository "github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/persistence/repository/port"
)

// MarkReadInput names the messages a reader claims to have seen.
type MarkReadInput struct {
	ConversationID string
	ReaderID       string
	MessageIDs     []string
}

// MarkReadUseCase marks messages read for a participant. The reader's own
// messages are silently skipped and already-read messages keep their
// original read_at, so replaying the same frame is a no-op: nothing
// changes and no receipt is published.
type MarkReadUseCase struct {
	Store       repository.ConversationStore
	Hub         EventPublisher
	Invalidator SummaryInvalidator
}

func NewMarkReadUseCase(store repository.ConversationStore, hub EventPublisher, inv SummaryInvalidator) *MarkReadUseCase {
	return &MarkReadUseCase{Store: store, Hub: hub, Invalidator: inv}
}

// Execute returns the ids actually transitioned to read by this call.
func (uc *MarkReadUseCase) Execute(ctx context.Context, in MarkReadInput) ([]string, error) {
	if in.ConversationID == "" || in.ReaderID == "" {
		return nil, &domain.ValidationError{Reason: "conversation_id and reader_id are required"}
	}
	if len(in.MessageIDs) == 0 {
		return nil, nil
	}

	affected, err := uc.Store.MarkMessagesRead(ctx, in.ConversationID, in.ReaderID, in.MessageIDs)
	if err != nil {
		return nil, storeErr("mark messages read", err)
	}
	if len(affected) == 0 {
		return nil, nil
	}

	uc.Hub.Publish(event.ChatGroup(in.ConversationID), event.Marshal(event.ReadReceipt{
		Type:       event.TypeRead,
		MessageIDs: affected,
		UserID:     in.ReaderID,
	}))
	uc.Invalidator.Invalidate(ctx, in.ReaderID)
	return affected, nil
}
