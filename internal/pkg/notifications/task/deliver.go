package task

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	qport "github.com/SanjayNepali/MANTRA-sub001/internal/infrastructure/queue/port"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/notifications"
)

// DeliverTaskType is the queue task name for notification delivery.
const DeliverTaskType = "notifications:deliver"

// DeliverPayload is the JSON payload transported via the queue. Kept
// decoupled from the fanout input type to avoid tying queue wire format to
// internal structs.
type DeliverPayload struct {
	RecipientID string `json:"recipientId"`
	SenderID    string `json:"senderId,omitempty"`
	Category    string `json:"category"`
	Message     string `json:"message"`
	TargetRef   string `json:"targetRef,omitempty"`
}

// RegisterDeliverTask binds the delivery handler to the worker server.
func RegisterDeliverTask(srv qport.Server, fanout *notifications.Fanout) {
	srv.Register(DeliverTaskType, func(ctx context.Context, t qport.Task) error {
		var p DeliverPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// Malformed payload will never succeed; surface and let the
			// adapter's retry policy give up.
			return err
		}

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		return fanout.Notify(ctx, notifications.NotifyInput{
			RecipientID: p.RecipientID,
			SenderID:    p.SenderID,
			Category:    p.Category,
			Message:     p.Message,
			TargetRef:   p.TargetRef,
		})
	})
}

// QueuedNotifier enqueues notification delivery instead of running it on
// the caller's goroutine. Enqueue failure falls back to direct delivery so
// a flaky queue never drops notifications.
type QueuedNotifier struct {
	client qport.Client
	direct *notifications.Fanout
	logger zerolog.Logger
}

func NewQueuedNotifier(client qport.Client, direct *notifications.Fanout, logger zerolog.Logger) *QueuedNotifier {
	return &QueuedNotifier{client: client, direct: direct, logger: logger}
}

func (q *QueuedNotifier) Notify(ctx context.Context, in notifications.NotifyInput) error {
	payload, err := json.Marshal(DeliverPayload{
		RecipientID: in.RecipientID,
		SenderID:    in.SenderID,
		Category:    in.Category,
		Message:     in.Message,
		TargetRef:   in.TargetRef,
	})
	if err != nil {
		return err
	}

	_, err = q.client.Enqueue(ctx, qport.Task{Type: DeliverTaskType, Payload: payload},
		qport.EnqueueOption{Queue: "realtime", MaxRetry: 3})
	if err != nil {
		q.logger.Warn().Err(err).Msg("notification enqueue failed, delivering inline")
		return q.direct.Notify(ctx, in)
	}
	return nil
}
