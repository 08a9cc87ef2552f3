package notifications

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/SanjayNepali/MANTRA-sub001/internal/metrics"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/domain"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/event"
	msgport "github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/persistence/repository/port"
)

// Publisher is the hub surface the fanout needs.
type Publisher interface {
	Publish(group string, payload []byte) int
}

// NotifyInput describes one notification to create and push.
type NotifyInput struct {
	RecipientID string
	SenderID    string // empty for system notifications
	Category    string
	Message     string
	TargetRef   string
}

// Fanout implements the create + push + invalidate contract: persist the
// notification row, publish it to the recipient's notify group, and delete
// the recipient's cached unread summary so the next read recomputes.
type Fanout struct {
	store  Store
	graph  msgport.SocialGraph
	hub    Publisher
	cache  *UnreadCache
	logger zerolog.Logger
}

func NewFanout(store Store, graph msgport.SocialGraph, hub Publisher, cache *UnreadCache, logger zerolog.Logger) *Fanout {
	return &Fanout{
		store:  store,
		graph:  graph,
		hub:    hub,
		cache:  cache,
		logger: logger,
	}
}

// Notify persists and pushes one notification. Persistence failure aborts
// before any publish; push and invalidation failures are logged, not
// returned, because the durable record already exists.
func (f *Fanout) Notify(ctx context.Context, in NotifyInput) error {
	n := Notification{
		RecipientID: in.RecipientID,
		Category:    in.Category,
		Message:     in.Message,
		TargetRef:   in.TargetRef,
	}
	if in.SenderID != "" {
		n.SenderID = &in.SenderID
	}

	created, err := f.store.Create(ctx, n)
	if err != nil {
		return &domain.TransientError{Op: "create notification", Err: err}
	}
	metrics.NotificationsCreated.Inc()

	payload := event.NotificationPayload{
		ID:        created.ID,
		Category:  created.Category,
		Message:   created.Message,
		TargetRef: created.TargetRef,
		CreatedAt: created.CreatedAt,
	}
	if in.SenderID != "" {
		if profile, err := f.graph.GetProfile(ctx, in.SenderID); err == nil {
			payload.Sender = &event.Sender{
				ID:         profile.ID,
				Username:   profile.Username,
				FullName:   profile.FullName,
				AvatarURL:  profile.AvatarURL,
				IsVerified: profile.IsVerified,
				UserType:   profile.UserType,
			}
		} else {
			f.logger.Warn().Err(err).Str("sender_id", in.SenderID).Msg("notification sender hydration failed")
		}
	}

	f.hub.Publish(event.NotifyGroup(in.RecipientID), event.Marshal(event.Notification{
		Type:         event.TypeNotification,
		Notification: payload,
	}))

	f.cache.Invalidate(ctx, in.RecipientID)
	return nil
}
