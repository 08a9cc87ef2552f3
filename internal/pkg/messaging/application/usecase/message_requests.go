package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/domain"
	repository "github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/persistence/repository/port"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/notifications"
)

// SendRequestInput proposes a conversation with a user the sender cannot
// message directly.
type SendRequestInput struct {
	FromUserID string
	ToUserID   string
	Body       string
}

// MessageRequestUseCase covers the request lifecycle: send, accept,
// reject. At most one request exists per (from, to) pair; accepting one
// synthesizes the direct conversation the requester was gated out of
// creating. The recipient's unread summary is invalidated on every
// lifecycle transition so pending_requests stays fresh.
type MessageRequestUseCase struct {
	Store       repository.ConversationStore
	Graph       repository.SocialGraph
	Notifier    Notifier
	Invalidator SummaryInvalidator
	Logger      zerolog.Logger

	now func() time.Time
}

func NewMessageRequestUseCase(
	store repository.ConversationStore,
	graph repository.SocialGraph,
	notifier Notifier,
	inv SummaryInvalidator,
	logger zerolog.Logger,
) *MessageRequestUseCase {
	return &MessageRequestUseCase{
		Store:       store,
		Graph:       graph,
		Notifier:    notifier,
		Invalidator: inv,
		Logger:      logger,
		now:         time.Now,
	}
}

func (uc *MessageRequestUseCase) Send(ctx context.Context, in SendRequestInput) (*domain.MessageRequest, error) {
	if in.FromUserID == "" || in.ToUserID == "" {
		return nil, &domain.ValidationError{Reason: "from_user_id and to_user_id are required"}
	}
	if in.FromUserID == in.ToUserID {
		return nil, &domain.ValidationError{Reason: "cannot send a message request to yourself"}
	}
	if len([]rune(in.Body)) > domain.MaxRequestBodyLength {
		return nil, &domain.ValidationError{Reason: "request body too long"}
	}

	// One request per pair, regardless of its state: a rejected requester
	// does not get to ask again.
	if existing, err := uc.Store.FindRequestBetween(ctx, in.FromUserID, in.ToUserID); err == nil {
		if existing.Status == domain.RequestPending {
			return existing, nil
		}
		return nil, &domain.ValidationError{Reason: "a request between these users already exists"}
	} else if _, ok := err.(*domain.NotFoundError); !ok {
		return nil, storeErr("find message request", err)
	}

	// An existing direct conversation makes a request pointless.
	if _, err := uc.Store.FindDirectConversation(ctx, in.FromUserID, in.ToUserID); err == nil {
		return nil, &domain.ValidationError{Reason: "a conversation between these users already exists"}
	} else if _, ok := err.(*domain.NotFoundError); !ok {
		return nil, storeErr("find direct conversation", err)
	}

	req := domain.MessageRequest{
		FromUserID: in.FromUserID,
		ToUserID:   in.ToUserID,
		Body:       in.Body,
		Status:     domain.RequestPending,
	}
	id, err := uc.Store.CreateMessageRequest(ctx, req)
	if err != nil {
		return nil, storeErr("create message request", err)
	}
	req.ID = id

	sender, err := uc.Graph.GetProfile(ctx, in.FromUserID)
	if err != nil {
		uc.Logger.Warn().Err(err).Str("user_id", in.FromUserID).Msg("requester profile lookup failed")
		sender = domain.UserProfile{ID: in.FromUserID, Username: "someone"}
	}
	uc.notify(ctx, notifications.NotifyInput{
		RecipientID: in.ToUserID,
		SenderID:    in.FromUserID,
		Category:    notifications.CategoryMessageRequest,
		Message:     fmt.Sprintf("%s wants to send you a message", sender.Username),
		TargetRef:   req.ID,
	})
	uc.Invalidator.Invalidate(ctx, in.ToUserID)
	return &req, nil
}

// Respond accepts or rejects a pending request. Only the recipient may
// respond; a non-pending request reports a validation error so double
// responses are visible to the caller. Accepting returns the synthesized
// direct conversation.
func (uc *MessageRequestUseCase) Respond(ctx context.Context, requestID, responderID string, accept bool) (*domain.Conversation, error) {
	if requestID == "" || responderID == "" {
		return nil, &domain.ValidationError{Reason: "request_id and responder_id are required"}
	}

	req, err := uc.Store.GetMessageRequest(ctx, requestID)
	if err != nil {
		return nil, storeErr("load message request", err)
	}
	if req.ToUserID != responderID {
		return nil, &domain.AuthorizationError{Reason: domain.ReasonNotParticipant}
	}
	if req.Status != domain.RequestPending {
		return nil, &domain.ValidationError{Reason: "request already responded to"}
	}

	status := domain.RequestRejected
	if accept {
		status = domain.RequestAccepted
	}
	if err := uc.Store.SetRequestStatus(ctx, requestID, status, uc.now()); err != nil {
		return nil, storeErr("update request status", err)
	}
	uc.Invalidator.Invalidate(ctx, responderID)

	if !accept {
		return nil, nil
	}

	conv, err := uc.acceptedConversation(ctx, req)
	if err != nil {
		return nil, err
	}

	responder, perr := uc.Graph.GetProfile(ctx, responderID)
	if perr != nil {
		uc.Logger.Warn().Err(perr).Str("user_id", responderID).Msg("responder profile lookup failed")
		responder = domain.UserProfile{ID: responderID, Username: "someone"}
	}
	uc.notify(ctx, notifications.NotifyInput{
		RecipientID: req.FromUserID,
		SenderID:    responderID,
		Category:    notifications.CategoryRequestAccepted,
		Message:     fmt.Sprintf("%s accepted your message request", responder.Username),
		TargetRef:   conv.ID,
	})
	return conv, nil
}

// acceptedConversation reuses an existing direct conversation if one
// appeared since the request was sent, otherwise creates it.
func (uc *MessageRequestUseCase) acceptedConversation(ctx context.Context, req *domain.MessageRequest) (*domain.Conversation, error) {
	if existing, err := uc.Store.FindDirectConversation(ctx, req.FromUserID, req.ToUserID); err == nil {
		return existing, nil
	} else if _, ok := err.(*domain.NotFoundError); !ok {
		return nil, storeErr("find direct conversation", err)
	}

	conv := domain.Conversation{
		IsActive:       true,
		ParticipantIDs: []string{req.FromUserID, req.ToUserID},
	}
	id, err := uc.Store.CreateConversation(ctx, conv)
	if err != nil {
		return nil, storeErr("create conversation", err)
	}
	conv.ID = id
	return &conv, nil
}

func (uc *MessageRequestUseCase) notify(ctx context.Context, in notifications.NotifyInput) {
	if err := uc.Notifier.Notify(ctx, in); err != nil {
		uc.Logger.Warn().Err(err).Str("recipient_id", in.RecipientID).Msg("request notification failed")
	}
}
