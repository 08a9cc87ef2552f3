package usecase

import (
	"context"

	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/domain"
	repository "github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/persistence/repository/port"
)

// CreateConversationInput describes a conversation to create. Direct
// conversations name exactly one peer; group and fan-club conversations
// list two or more participants besides the creator.
type CreateConversationInput struct {
	CreatorID      string
	ParticipantIDs []string
	Title          string
	ImageURL       *string
	IsGroup        bool
	Fanclub        bool // creator becomes the sole poster
}

// CreateConversationUseCase creates conversations. Direct conversations are
// get-or-create: a second request for the same pair returns the existing
// conversation instead of a duplicate. The recipient's messaging preference
// gates direct creation the same way it gates posting, so a user who
// accepts nobody never gains an empty conversation shell.
type CreateConversationUseCase struct {
	Store repository.ConversationStore
	Graph repository.SocialGraph
}

func NewCreateConversationUseCase(store repository.ConversationStore, graph repository.SocialGraph) *CreateConversationUseCase {
	return &CreateConversationUseCase{Store: store, Graph: graph}
}

func (uc *CreateConversationUseCase) Execute(ctx context.Context, in CreateConversationInput) (*domain.Conversation, error) {
	if in.CreatorID == "" {
		return nil, &domain.ValidationError{Reason: "creator_id is required"}
	}
	participants := dedupeWith(in.CreatorID, in.ParticipantIDs)
	if len(participants) < 2 {
		return nil, &domain.ValidationError{Reason: "a conversation needs at least one other participant"}
	}

	if !in.IsGroup && !in.Fanclub {
		if len(participants) != 2 {
			return nil, &domain.ValidationError{Reason: "a direct conversation has exactly two participants"}
		}
		return uc.direct(ctx, in.CreatorID, otherOf(participants, in.CreatorID), in.Title)
	}

	conv := domain.Conversation{
		Title:          in.Title,
		ImageURL:       in.ImageURL,
		IsGroup:        true,
		IsActive:       true,
		ParticipantIDs: participants,
	}
	if in.Fanclub {
		owner := in.CreatorID
		conv.FanclubOwnerID = &owner
	}

	id, err := uc.Store.CreateConversation(ctx, conv)
	if err != nil {
		return nil, storeErr("create conversation", err)
	}
	conv.ID = id
	return &conv, nil
}

func (uc *CreateConversationUseCase) direct(ctx context.Context, creatorID, otherID, title string) (*domain.Conversation, error) {
	existing, err := uc.Store.FindDirectConversation(ctx, creatorID, otherID)
	if err == nil {
		return existing, nil
	}
	if _, ok := err.(*domain.NotFoundError); !ok {
		return nil, storeErr("find direct conversation", err)
	}

	if err := uc.gateDirect(ctx, creatorID, otherID); err != nil {
		return nil, err
	}

	conv := domain.Conversation{
		Title:          title,
		IsActive:       true,
		ParticipantIDs: []string{creatorID, otherID},
	}
	id, err := uc.Store.CreateConversation(ctx, conv)
	if err != nil {
		return nil, storeErr("create conversation", err)
	}
	conv.ID = id
	return &conv, nil
}

// gateDirect applies the recipient's messaging preference at creation
// time, mirroring the posting gate: nobody blocks outright, mutual
// requires both follow edges unless the creator is a verified celebrity.
func (uc *CreateConversationUseCase) gateDirect(ctx context.Context, creatorID, otherID string) error {
	pref, err := uc.Graph.MessagingPreference(ctx, otherID)
	if err != nil {
		return storeErr("load messaging preference", err)
	}
	switch pref {
	case domain.PrefNobody:
		return &domain.AuthorizationError{Reason: domain.ReasonAcceptsNobody}
	case domain.PrefMutual:
		creator, err := uc.Graph.GetProfile(ctx, creatorID)
		if err != nil {
			return storeErr("load creator profile", err)
		}
		if creator.IsCelebrity() {
			return nil
		}
		creatorFollows, err := uc.Graph.Follows(ctx, creatorID, otherID)
		if err != nil {
			return storeErr("load follow edge", err)
		}
		otherFollows, err := uc.Graph.Follows(ctx, otherID, creatorID)
		if err != nil {
			return storeErr("load follow edge", err)
		}
		if !creatorFollows || !otherFollows {
			return &domain.AuthorizationError{Reason: domain.ReasonNotMutual}
		}
	}
	return nil
}

// dedupeWith returns the participant list with the creator included and
// duplicates removed, preserving first-seen order.
func dedupeWith(creatorID string, ids []string) []string {
	seen := map[string]struct{}{creatorID: {}}
	out := []string{creatorID}
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func otherOf(participants []string, creatorID string) string {
	for _, id := range participants {
		if id != creatorID {
			return id
		}
	}
	return ""
}
