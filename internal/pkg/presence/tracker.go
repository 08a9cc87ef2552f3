// Package presence maintains per-user online state and tells the user's
// social graph about transitions. The tracker owns only ephemeral refcounts
// plus the two persisted fields (is_online, last_seen) it is allowed to
// mutate.
package presence

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/domain"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/persistence/repository/port"
)

// StatusFanout delivers a user's online/offline transition to their social
// graph. Implementations must not block the session's accept path; the
// queue-backed one enqueues, the inline one runs on a fresh goroutine's
// behalf synchronously (used in tests and queue-less deployments).
type StatusFanout interface {
	FanOut(ctx context.Context, userID string, online bool) error
}

// Tracker refcounts live status sessions per user so that multiple open
// tabs collapse into a single online/offline transition. Only the 0→1 and
// 1→0 edges touch the store and fan out; heartbeats refresh last_seen
// without re-running the fan-out.
type Tracker struct {
	mu       sync.Mutex
	sessions map[string]int

	store  port.PresenceStore
	fanout StatusFanout
	now    func() time.Time
	logger zerolog.Logger
}

func NewTracker(store port.PresenceStore, fanout StatusFanout, logger zerolog.Logger) *Tracker {
	return &Tracker{
		sessions: make(map[string]int),
		store:    store,
		fanout:   fanout,
		now:      time.Now,
		logger:   logger,
	}
}

// Connect records a new status session. On the user's first session it
// sets is_online/last_seen and fans the transition out to friends.
func (t *Tracker) Connect(ctx context.Context, userID string) error {
	t.mu.Lock()
	t.sessions[userID]++
	first := t.sessions[userID] == 1
	t.mu.Unlock()

	if !first {
		return nil
	}
	return t.transition(ctx, userID, true)
}

// Disconnect records a closed status session. On the user's last session
// it sets offline and fans out, mirroring Connect.
func (t *Tracker) Disconnect(ctx context.Context, userID string) error {
	t.mu.Lock()
	if t.sessions[userID] == 0 {
		// Disconnect without a matching Connect; session teardown already
		// guards against double-runs, so nothing to do.
		t.mu.Unlock()
		return nil
	}
	t.sessions[userID]--
	last := t.sessions[userID] == 0
	if last {
		delete(t.sessions, userID)
	}
	t.mu.Unlock()

	if !last {
		return nil
	}
	return t.transition(ctx, userID, false)
}

// Heartbeat refreshes last_seen without touching online state or fanning
// out.
func (t *Tracker) Heartbeat(ctx context.Context, userID string) error {
	if err := t.store.TouchLastSeen(ctx, userID, t.now()); err != nil {
		return &domain.TransientError{Op: "touch last_seen", Err: err}
	}
	return nil
}

// Online reports whether the user currently holds at least one status
// session.
func (t *Tracker) Online(userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessions[userID] > 0
}

func (t *Tracker) transition(ctx context.Context, userID string, online bool) error {
	if err := t.store.SetOnline(ctx, userID, online, t.now()); err != nil {
		return &domain.TransientError{Op: "set online state", Err: err}
	}
	if err := t.fanout.FanOut(ctx, userID, online); err != nil {
		// The transition itself is recorded; a lost fan-out only delays
		// friends' badge updates.
		t.logger.Warn().Err(err).Str("user_id", userID).Bool("online", online).Msg("status fan-out failed")
	}
	return nil
}
