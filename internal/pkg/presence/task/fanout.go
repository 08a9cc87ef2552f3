package task

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	qport "github.com/SanjayNepali/MANTRA-sub001/internal/infrastructure/queue/port"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/presence"
)

// StatusFanoutTaskType is the queue task name for presence fan-out.
const StatusFanoutTaskType = "presence:status_fanout"

// StatusFanoutPayload is the JSON payload transported via the queue.
type StatusFanoutPayload struct {
	UserID string `json:"userId"`
	Online bool   `json:"online"`
}

// RegisterStatusFanoutTask binds the fan-out handler to the worker server.
// The worker resolves the friend list at execution time, so a stale
// enqueue still reaches the current graph.
func RegisterStatusFanoutTask(srv qport.Server, inline *presence.InlineFanout) {
	srv.Register(StatusFanoutTaskType, func(ctx context.Context, t qport.Task) error {
		var p StatusFanoutPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()

		return inline.FanOut(ctx, p.UserID, p.Online)
	})
}

// QueuedFanout enqueues the fan-out so the session's accept path never
// waits on a graph-sized publish. The task deadline keeps delivery inside
// the heartbeat window; enqueue failure falls back to inline delivery.
type QueuedFanout struct {
	client qport.Client
	inline *presence.InlineFanout
	window time.Duration
	logger zerolog.Logger
}

func NewQueuedFanout(client qport.Client, inline *presence.InlineFanout, heartbeatWindow time.Duration, logger zerolog.Logger) *QueuedFanout {
	return &QueuedFanout{
		client: client,
		inline: inline,
		window: heartbeatWindow,
		logger: logger,
	}
}

var _ presence.StatusFanout = (*QueuedFanout)(nil)

func (q *QueuedFanout) FanOut(ctx context.Context, userID string, online bool) error {
	payload, err := json.Marshal(StatusFanoutPayload{UserID: userID, Online: online})
	if err != nil {
		return err
	}

	_, err = q.client.Enqueue(ctx, qport.Task{Type: StatusFanoutTaskType, Payload: payload},
		qport.EnqueueOption{
			Queue:    "realtime",
			MaxRetry: 2,
			Deadline: time.Now().Add(q.window),
		})
	if err != nil {
		q.logger.Warn().Err(err).Msg("presence fan-out enqueue failed, running inline")
		return q.inline.FanOut(ctx, userID, online)
	}
	return nil
}
