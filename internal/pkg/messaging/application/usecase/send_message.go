package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/SanjayNepali/MANTRA-sub001/internal/metrics"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/domain"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/event"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/moderation"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/policy"
	repository "github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/persistence/repository/port"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/notifications"
)

// SendMessageInput carries the data needed to send a new message.
type SendMessageInput struct {
	ConversationID string
	SenderID       string
	Content        string
	AttachmentURL  *string
}

// SendMessageResult is the outcome of a successful send. Advisory, when
// set, belongs on the sender's local echo only; the broadcast that already
// went out to the group does not carry it.
type SendMessageResult struct {
	Message  *domain.Message
	Payload  event.MessagePayload
	Advisory *event.Advisory
}

// SendMessageUseCase runs the message pipeline in strict order: validate,
// authorize, moderate, persist, broadcast, notify offline participants.
// Nothing is persisted or published for a rejected send, and nothing is
// published if persistence fails.
type SendMessageUseCase struct {
	Store    repository.ConversationStore
	Graph    repository.SocialGraph
	Analyzer moderation.Analyzer
	Hub      EventPublisher
	Notifier Notifier
	Logger   zerolog.Logger

	MaxContentLength  int
	ModerationTimeout time.Duration
}

func NewSendMessageUseCase(
	store repository.ConversationStore,
	graph repository.SocialGraph,
	analyzer moderation.Analyzer,
	hub EventPublisher,
	notifier Notifier,
	logger zerolog.Logger,
) *SendMessageUseCase {
	return &SendMessageUseCase{
		Store:             store,
		Graph:             graph,
		Analyzer:          analyzer,
		Hub:               hub,
		Notifier:          notifier,
		Logger:            logger,
		MaxContentLength:  1000,
		ModerationTimeout: 3 * time.Second,
	}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*SendMessageResult, error) {
	if in.ConversationID == "" || in.SenderID == "" {
		return nil, &domain.ValidationError{Reason: "conversation_id and sender_id are required"}
	}

	// 1. Content bounds.
	if err := domain.ValidateContent(in.Content, uc.MaxContentLength); err != nil {
		return nil, err
	}

	// 2. Access policy.
	conv, err := uc.Store.GetConversation(ctx, in.ConversationID)
	if err != nil {
		return nil, storeErr("load conversation", err)
	}
	senderProfile, err := uc.Graph.GetProfile(ctx, in.SenderID)
	if err != nil {
		return nil, storeErr("load sender profile", err)
	}
	rel, err := uc.resolveRelationship(ctx, conv, in.SenderID, senderProfile)
	if err != nil {
		return nil, err
	}
	if err := policy.CanPost(in.SenderID, conv, rel); err != nil {
		return nil, err
	}

	// 3. Moderation gate.
	verdict, err := uc.moderate(ctx, in.Content)
	if err != nil {
		return nil, err
	}
	if verdict.Toxic {
		metrics.ModerationRejections.Inc()
		return nil, &domain.ModerationError{ToxicTerms: verdict.ToxicTerms}
	}
	var advisory *event.Advisory
	if verdict.Sentiment.IsNegative() {
		advisory = &event.Advisory{
			Sentiment: string(verdict.Sentiment),
			Score:     verdict.SentimentScore,
			Warning:   "This message has negative sentiment",
		}
	}

	// 4. Persist (store assigns id, timestamp, and last_activity_at bump).
	msg, err := uc.Store.SaveMessage(ctx, in.ConversationID, in.SenderID, in.Content, in.AttachmentURL)
	if err != nil {
		return nil, storeErr("save message", err)
	}
	metrics.MessagesPersisted.Inc()

	// 5. Broadcast the hydrated message to every joined session, the
	// sender's other sessions included; clients de-duplicate by id.
	payload := event.MessagePayload{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		Content:        msg.Content,
		Sender:         senderView(senderProfile),
		AttachmentURL:  msg.AttachmentURL,
		CreatedAt:      msg.CreatedAt,
	}
	uc.Hub.Publish(event.ChatGroup(conv.ID), event.Marshal(event.ChatMessage{
		Type:    event.TypeMessage,
		Message: payload,
	}))

	// 6. Durable notifications for participants with no live session in
	// this conversation's group.
	uc.notifyAbsent(ctx, conv, in.SenderID, senderProfile)

	return &SendMessageResult{Message: msg, Payload: payload, Advisory: advisory}, nil
}

func (uc *SendMessageUseCase) moderate(ctx context.Context, content string) (moderation.Verdict, error) {
	mctx, cancel := context.WithTimeout(ctx, uc.ModerationTimeout)
	defer cancel()

	verdict, err := uc.Analyzer.Analyze(mctx, content)
	if err != nil {
		// A timed-out or unavailable analyzer is a transient failure,
		// never a toxic verdict.
		return moderation.Verdict{}, &domain.TransientError{Op: "moderation", Err: err}
	}
	return verdict, nil
}

func (uc *SendMessageUseCase) resolveRelationship(ctx context.Context, conv *domain.Conversation, senderID string, sender domain.UserProfile) (policy.Relationship, error) {
	rel := policy.Relationship{SenderIsCelebrity: sender.IsCelebrity()}

	otherID := conv.OtherParticipant(senderID)
	if otherID == "" {
		// Group conversation: posting rules do not consult the graph.
		return rel, nil
	}

	pref, err := uc.Graph.MessagingPreference(ctx, otherID)
	if err != nil {
		return rel, storeErr("load messaging preference", err)
	}
	rel.OtherPreference = pref

	if pref == domain.PrefMutual && !rel.SenderIsCelebrity {
		if rel.SenderFollowsOther, err = uc.Graph.Follows(ctx, senderID, otherID); err != nil {
			return rel, storeErr("load follow edge", err)
		}
		if rel.OtherFollowsSender, err = uc.Graph.Follows(ctx, otherID, senderID); err != nil {
			return rel, storeErr("load follow edge", err)
		}
	}
	return rel, nil
}

func (uc *SendMessageUseCase) notifyAbsent(ctx context.Context, conv *domain.Conversation, senderID string, sender domain.UserProfile) {
	group := event.ChatGroup(conv.ID)

	text := fmt.Sprintf("%s sent you a message", sender.Username)
	if conv.IsGroup {
		title := conv.Title
		if title == "" {
			title = "a group chat"
		}
		text = fmt.Sprintf("%s sent a message in %s", sender.Username, title)
	}

	for _, participantID := range conv.ParticipantIDs {
		if participantID == senderID || uc.Hub.UserInGroup(group, participantID) {
			continue
		}
		err := uc.Notifier.Notify(ctx, notifications.NotifyInput{
			RecipientID: participantID,
			SenderID:    senderID,
			Category:    notifications.CategoryMessage,
			Message:     text,
			TargetRef:   conv.ID,
		})
		if err != nil {
			// The message is already persisted and broadcast; a lost
			// notification must not fail the send.
			uc.Logger.Warn().Err(err).Str("recipient_id", participantID).Msg("message notification failed")
		}
	}
}

func senderView(p domain.UserProfile) event.Sender {
	return event.Sender{
		ID:         p.ID,
		Username:   p.Username,
		FullName:   p.FullName,
		AvatarURL:  p.AvatarURL,
		IsVerified: p.IsVerified,
		UserType:   p.UserType,
	}
}

// storeErr classifies a store failure: NotFound and policy errors pass
// through unchanged, everything else becomes transient.
func storeErr(op string, err error) error {
	switch err.(type) {
	case *domain.NotFoundError, *domain.ValidationError, *domain.AuthorizationError:
		return err
	default:
		return &domain.TransientError{Op: op, Err: err}
	}
}
