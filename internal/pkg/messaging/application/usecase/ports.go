package usecase

import (
	"context"

	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/notifications"
)

// EventPublisher is the broadcast-hub surface use cases publish through.
// Satisfied by *realtime.Hub; tests substitute recorders.
type EventPublisher interface {
	Publish(group string, payload []byte) int
	PublishExcept(group string, payload []byte, exceptSessionID string) int
	UserInGroup(group string, userID string) bool
}

// Notifier delivers durable notifications. Satisfied by the direct fanout
// and by the queue-backed notifier.
type Notifier interface {
	Notify(ctx context.Context, in notifications.NotifyInput) error
}

// SummaryInvalidator drops a user's cached unread summary. Satisfied by
// *notifications.UnreadCache.
type SummaryInvalidator interface {
	Invalidate(ctx context.Context, userID string)
}
