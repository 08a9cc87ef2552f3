package realtime

import (
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SanjayNepali/MANTRA-sub001/internal/metrics"
)

// fakeSub records everything delivered to it.
type fakeSub struct {
	id     string
	userID string

	mu       sync.Mutex
	received [][]byte
}

func newFakeSub(id, userID string) *fakeSub {
	return &fakeSub{id: id, userID: userID}
}

func (f *fakeSub) SessionID() string { return f.id }
func (f *fakeSub) UserID() string    { return f.userID }

func (f *fakeSub) Send(payload []byte) error {
	f.mu.Lock()
	f.received = append(f.received, payload)
	f.mu.Unlock()
	return nil
}

func (f *fakeSub) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.received)
}

func TestPublishDeliversToAllMembers(t *testing.T) {
	hub := NewHub()
	a := newFakeSub("s1", "alice")
	b := newFakeSub("s2", "bob")
	outsider := newFakeSub("s3", "carol")

	hub.Join("chat:c1", a)
	hub.Join("chat:c1", b)
	hub.Join("chat:c2", outsider)

	delivered := hub.Publish("chat:c1", []byte("hello"))

	assert.Equal(t, 2, delivered)
	assert.Equal(t, 1, a.count())
	assert.Equal(t, 1, b.count())
	assert.Equal(t, 0, outsider.count())
}

func TestPublishExceptSkipsOriginator(t *testing.T) {
	hub := NewHub()
	origin := newFakeSub("s1", "alice")
	other := newFakeSub("s2", "bob")
	secondTab := newFakeSub("s3", "alice")

	hub.Join("chat:c1", origin)
	hub.Join("chat:c1", other)
	hub.Join("chat:c1", secondTab)

	hub.PublishExcept("chat:c1", []byte("typing"), origin.SessionID())

	// Exclusion is per session, not per user: the originator's other tab
	// still receives the event.
	assert.Equal(t, 0, origin.count())
	assert.Equal(t, 1, other.count())
	assert.Equal(t, 1, secondTab.count())
}

func TestLeaveAllRemovesEveryMembership(t *testing.T) {
	hub := NewHub()
	sub := newFakeSub("s1", "alice")

	hub.Join("chat:c1", sub)
	hub.Join("notify:alice", sub)
	hub.Join("status:alice", sub)

	hub.LeaveAll(sub)

	assert.Equal(t, 0, hub.Members("chat:c1"))
	assert.Equal(t, 0, hub.Members("notify:alice"))
	assert.Equal(t, 0, hub.Members("status:alice"))
	assert.Equal(t, 0, hub.Publish("chat:c1", []byte("x")))
}

func TestUserInGroup(t *testing.T) {
	hub := NewHub()
	tab1 := newFakeSub("s1", "alice")
	tab2 := newFakeSub("s2", "alice")

	hub.Join("chat:c1", tab1)
	hub.Join("chat:c1", tab2)

	require.True(t, hub.UserInGroup("chat:c1", "alice"))
	assert.False(t, hub.UserInGroup("chat:c1", "bob"))

	hub.Leave("chat:c1", tab1)
	assert.True(t, hub.UserInGroup("chat:c1", "alice"), "second tab keeps the user present")

	hub.Leave("chat:c1", tab2)
	assert.False(t, hub.UserInGroup("chat:c1", "alice"))
}

func TestConcurrentJoinLeavePublish(t *testing.T) {
	hub := NewHub()
	const workers = 32

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			sub := newFakeSub(fmt.Sprintf("s%d", n), fmt.Sprintf("u%d", n))
			for j := 0; j < 100; j++ {
				hub.Join("chat:c1", sub)
				hub.Publish("chat:c1", []byte("m"))
				hub.LeaveAll(sub)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, hub.Members("chat:c1"))
}

func TestPublishCountsOnlyDeliveredBroadcasts(t *testing.T) {
	hub := NewHub()
	counter := metrics.BroadcastsPublished.WithLabelValues("chat")
	before := testutil.ToFloat64(counter)

	// Nobody joined: nothing delivered, nothing counted.
	assert.Equal(t, 0, hub.Publish("chat:ghost", []byte("x")))
	assert.Equal(t, before, testutil.ToFloat64(counter))

	// Sole member excluded: same story.
	origin := newFakeSub("s1", "alice")
	hub.Join("chat:ghost", origin)
	assert.Equal(t, 0, hub.PublishExcept("chat:ghost", []byte("typing"), origin.SessionID()))
	assert.Equal(t, before, testutil.ToFloat64(counter))

	assert.Equal(t, 1, hub.Publish("chat:ghost", []byte("x")))
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
