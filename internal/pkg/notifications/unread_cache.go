package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	cacheport "github.com/SanjayNepali/MANTRA-sub001/internal/infrastructure/cache/port"
	"github.com/SanjayNepali/MANTRA-sub001/internal/metrics"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/event"
	msgport "github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/persistence/repository/port"
)

// Summary is the cached unread view for one user. It is derived state:
// fast-path reads only, never authoritative. Badge counts may lag by up to
// the cache TTL.
type Summary struct {
	UnreadMessages  int `json:"unread_messages"`
	PendingRequests int `json:"pending_requests"`
	Total           int `json:"total"`
}

// UnreadCache is a read-through cache over the store's unread counts,
// keyed unread_summary:<userId> with a short TTL. Writers that change the
// underlying counts call Invalidate (delete-on-write); the next read
// recomputes from the store.
type UnreadCache struct {
	cache  cacheport.Cache
	store  msgport.ConversationStore
	ttl    time.Duration
	logger zerolog.Logger
}

// NewUnreadCache constructs an UnreadCache. ttl <= 0 falls back to 30s.
func NewUnreadCache(cache cacheport.Cache, store msgport.ConversationStore, ttl time.Duration, logger zerolog.Logger) *UnreadCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &UnreadCache{
		cache:  cache,
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the summary for userID, recomputing from the store on a
// miss. A cache transport failure degrades to a direct store read; the
// summary is always safe to recompute.
func (c *UnreadCache) Get(ctx context.Context, userID string) (Summary, error) {
	key := event.UnreadSummaryKey(userID)

	raw, err := c.cache.Get(ctx, key)
	if err == nil {
		var s Summary
		if jsonErr := json.Unmarshal([]byte(raw), &s); jsonErr == nil {
			metrics.UnreadCacheHits.WithLabelValues("hit").Inc()
			return s, nil
		}
		// Corrupt entry: drop it and recompute.
		_, _ = c.cache.Del(ctx, key)
	} else if !errors.Is(err, cacheport.ErrMiss) {
		c.logger.Warn().Err(err).Str("user_id", userID).Msg("unread cache read failed")
	}
	metrics.UnreadCacheHits.WithLabelValues("miss").Inc()

	s, err := c.compute(ctx, userID)
	if err != nil {
		return Summary{}, err
	}

	if data, err := json.Marshal(s); err == nil {
		if err := c.cache.Set(ctx, key, string(data), c.ttl); err != nil {
			c.logger.Warn().Err(err).Str("user_id", userID).Msg("unread cache write failed")
		}
	}
	return s, nil
}

// Invalidate deletes the user's cached summary. Dropping the entry is
// always safe; the worst case is one extra recompute.
func (c *UnreadCache) Invalidate(ctx context.Context, userID string) {
	if _, err := c.cache.Del(ctx, event.UnreadSummaryKey(userID)); err != nil {
		c.logger.Warn().Err(err).Str("user_id", userID).Msg("unread cache invalidation failed")
	}
}

func (c *UnreadCache) compute(ctx context.Context, userID string) (Summary, error) {
	unread, err := c.store.CountUnreadMessages(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	pending, err := c.store.CountPendingRequests(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		UnreadMessages:  unread,
		PendingRequests: pending,
		Total:           unread + pending,
	}, nil
}
