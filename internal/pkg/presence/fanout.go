package presence

import (
	"context"

	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/event"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/persistence/repository/port"
)

// Publisher is the hub surface the fan-out needs.
type Publisher interface {
	Publish(group string, payload []byte) int
}

// InlineFanout resolves the user's friends and publishes a user_status
// event into each friend's notify group on the calling goroutine. The cost
// is proportional to graph size, so sessions should reach it through the
// queue; it is also the worker-side implementation the queue task calls.
type InlineFanout struct {
	graph port.SocialGraph
	hub   Publisher
}

func NewInlineFanout(graph port.SocialGraph, hub Publisher) *InlineFanout {
	return &InlineFanout{graph: graph, hub: hub}
}

var _ StatusFanout = (*InlineFanout)(nil)

func (f *InlineFanout) FanOut(ctx context.Context, userID string, online bool) error {
	friendIDs, err := f.graph.FriendIDs(ctx, userID)
	if err != nil {
		return err
	}

	status := "offline"
	if online {
		status = "online"
	}
	payload := event.Marshal(event.UserStatus{
		Type:   event.TypeUserStatus,
		UserID: userID,
		Status: status,
	})

	for _, friendID := range friendIDs {
		f.hub.Publish(event.NotifyGroup(friendID), payload)
	}
	return nil
}
