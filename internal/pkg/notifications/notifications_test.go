package notifications

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cacheadapter "github.com/SanjayNepali/MANTRA-sub001/internal/infrastructure/cache/adapter"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/domain"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/event"
	msgport "github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/persistence/repository/port"
)

// countingStore stubs only the two count reads the unread cache needs;
// everything else is unreachable in these tests.
type countingStore struct {
	msgport.ConversationStore
	mu       sync.Mutex
	unread   int
	pending  int
	computes int
}

func (s *countingStore) CountUnreadMessages(_ context.Context, _ string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.computes++
	return s.unread, nil
}

func (s *countingStore) CountPendingRequests(_ context.Context, _ string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending, nil
}

func (s *countingStore) set(unread, pending int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unread = unread
	s.pending = pending
}

type memNotificationStore struct {
	mu     sync.Mutex
	nextID int
	rows   map[string]*Notification

	createErr error
}

func newMemNotificationStore() *memNotificationStore {
	return &memNotificationStore{rows: map[string]*Notification{}}
}

func (s *memNotificationStore) Create(_ context.Context, n Notification) (*Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.nextID++
	n.ID = fmt.Sprintf("n-%d", s.nextID)
	n.CreatedAt = time.Now()
	s.rows[n.ID] = &n
	cp := n
	return &cp, nil
}

func (s *memNotificationStore) ListRecent(_ context.Context, recipientID string, limit int) ([]Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Notification
	for _, n := range s.rows {
		if n.RecipientID == recipientID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (s *memNotificationStore) CountUnread(_ context.Context, recipientID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, row := range s.rows {
		if row.RecipientID == recipientID && !row.IsRead {
			n++
		}
	}
	return n, nil
}

func (s *memNotificationStore) MarkRead(_ context.Context, id, recipientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok || row.RecipientID != recipientID {
		return &domain.NotFoundError{Resource: "notification"}
	}
	row.IsRead = true
	return nil
}

func (s *memNotificationStore) MarkAllRead(_ context.Context, recipientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if row.RecipientID == recipientID {
			row.IsRead = true
		}
	}
	return nil
}

func (s *memNotificationStore) Delete(_ context.Context, id, recipientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok || row.RecipientID != recipientID {
		return &domain.NotFoundError{Resource: "notification"}
	}
	delete(s.rows, id)
	return nil
}

type stubGraph struct {
	msgport.SocialGraph
}

func (stubGraph) GetProfile(_ context.Context, userID string) (domain.UserProfile, error) {
	return domain.UserProfile{ID: userID, Username: userID}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	groups []string
}

func (p *recordingPublisher) Publish(group string, _ []byte) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.groups = append(p.groups, group)
	return 1
}

func TestUnreadCacheReadThroughAndTTL(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	cache := cacheadapter.NewMemoryCacheWithClock(clock)
	store := &countingStore{}
	store.set(3, 1)

	uc := NewUnreadCache(cache, store, 30*time.Second, zerolog.Nop())

	s, err := uc.Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, Summary{UnreadMessages: 3, PendingRequests: 1, Total: 4}, s)
	assert.Equal(t, 1, store.computes)

	// Within the TTL the store changes but the cached view holds.
	store.set(9, 9)
	s, err = uc.Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, store.computes)

	// Past the TTL the next read recomputes.
	now = now.Add(31 * time.Second)
	s, err = uc.Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 18, s.Total)
	assert.Equal(t, 2, store.computes)
}

func TestUnreadCacheInvalidateForcesRecompute(t *testing.T) {
	cache := cacheadapter.NewMemoryCache()
	store := &countingStore{}
	store.set(2, 0)
	uc := NewUnreadCache(cache, store, time.Minute, zerolog.Nop())

	_, err := uc.Get(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, 1, store.computes)

	store.set(0, 0)
	uc.Invalidate(context.Background(), "alice")

	s, err := uc.Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 2, store.computes)
}

func TestFanoutPersistsPublishesAndInvalidates(t *testing.T) {
	cache := cacheadapter.NewMemoryCache()
	counts := &countingStore{}
	counts.set(1, 0)
	unread := NewUnreadCache(cache, counts, time.Minute, zerolog.Nop())

	// Warm the cache so the invalidation is observable.
	_, err := unread.Get(context.Background(), "bob")
	require.NoError(t, err)
	require.Equal(t, 1, counts.computes)

	nstore := newMemNotificationStore()
	pub := &recordingPublisher{}
	fanout := NewFanout(nstore, stubGraph{}, pub, unread, zerolog.Nop())

	err = fanout.Notify(context.Background(), NotifyInput{
		RecipientID: "bob",
		SenderID:    "alice",
		Category:    CategoryMessage,
		Message:     "alice sent you a message",
		TargetRef:   "conv-1",
	})
	require.NoError(t, err)

	n, err := nstore.CountUnread(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{event.NotifyGroup("bob")}, pub.groups)

	// The cached summary was dropped; the next read recomputes.
	_, err = unread.Get(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, 2, counts.computes)
}

func TestFanoutPersistFailureSuppressesPublish(t *testing.T) {
	cache := cacheadapter.NewMemoryCache()
	counts := &countingStore{}
	unread := NewUnreadCache(cache, counts, time.Minute, zerolog.Nop())

	nstore := newMemNotificationStore()
	nstore.createErr = errors.New("insert failed")
	pub := &recordingPublisher{}
	fanout := NewFanout(nstore, stubGraph{}, pub, unread, zerolog.Nop())

	err := fanout.Notify(context.Background(), NotifyInput{
		RecipientID: "bob",
		Category:    CategoryMessage,
		Message:     "hello",
	})
	var transient *domain.TransientError
	require.ErrorAs(t, err, &transient)
	assert.Empty(t, pub.groups, "nothing published for an unpersisted notification")
}
