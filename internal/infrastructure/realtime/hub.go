package realtime

import (
	"strings"
	"sync"

	"github.com/SanjayNepali/MANTRA-sub001/internal/metrics"
)

// Subscriber is a live session as the hub sees it: an identity plus a
// non-blocking delivery queue. *Connection satisfies it in production;
// tests use recording fakes.
type Subscriber interface {
	SessionID() string
	UserID() string
	Send(payload []byte) error
}

// Hub is the in-process pub/sub layer. Groups are named ephemeral sets of
// sessions ("chat:<conversation>", "notify:<user>", "status:<user>");
// publishing to a group delivers to every joined session. A Hub is an
// explicit constructed instance so tests get isolated namespaces.
//
// Membership is mutated concurrently by connect/disconnect and read by
// every publish; publishes snapshot members under the read lock and send
// outside it, so a slow subscriber never stalls membership changes.
type Hub struct {
	mu            sync.RWMutex
	groups        map[string]map[string]Subscriber // group -> sessionID -> sub
	sessionGroups map[string]map[string]struct{}   // sessionID -> set of groups
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{
		groups:        make(map[string]map[string]Subscriber),
		sessionGroups: make(map[string]map[string]struct{}),
	}
}

// Join adds sub to the named group.
func (h *Hub) Join(group string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members := h.groups[group]
	if members == nil {
		members = make(map[string]Subscriber)
		h.groups[group] = members
	}
	members[sub.SessionID()] = sub

	joined := h.sessionGroups[sub.SessionID()]
	if joined == nil {
		joined = make(map[string]struct{})
		h.sessionGroups[sub.SessionID()] = joined
	}
	joined[group] = struct{}{}
}

// Leave removes sub from the named group.
func (h *Hub) Leave(group string, sub Subscriber) {
	h.mu.Lock()
	h.leaveLocked(group, sub.SessionID())
	h.mu.Unlock()
}

// LeaveAll removes sub from every group it joined. Teardown calls this
// before closing the session's queue, so a concurrent publish either sees
// the session while its queue still accepts writes, or not at all.
func (h *Hub) LeaveAll(sub Subscriber) {
	h.mu.Lock()
	for group := range h.sessionGroups[sub.SessionID()] {
		h.leaveLocked(group, sub.SessionID())
	}
	delete(h.sessionGroups, sub.SessionID())
	h.mu.Unlock()
}

// Publish delivers payload to every member of the group.
func (h *Hub) Publish(group string, payload []byte) int {
	return h.publish(group, payload, "")
}

// PublishExcept delivers payload to every member except the session with
// the given id. Used for typing indicators, which never echo to their
// originator.
func (h *Hub) PublishExcept(group string, payload []byte, exceptSessionID string) int {
	return h.publish(group, payload, exceptSessionID)
}

func (h *Hub) publish(group string, payload []byte, exceptSessionID string) int {
	h.mu.RLock()
	members := h.groups[group]
	snapshot := make([]Subscriber, 0, len(members))
	for id, sub := range members {
		if exceptSessionID != "" && id == exceptSessionID {
			continue
		}
		snapshot = append(snapshot, sub)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, sub := range snapshot {
		if err := sub.Send(payload); err == nil {
			delivered++
		}
	}
	// An empty or fully-excluded group delivered nothing and is not a
	// published broadcast.
	if delivered > 0 {
		metrics.BroadcastsPublished.WithLabelValues(groupNamespace(group)).Inc()
	}
	return delivered
}

// Members returns the current size of a group.
func (h *Hub) Members(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}

// UserInGroup reports whether any session of the given user is currently
// joined to the group. The message pipeline uses it to decide which
// participants get a durable notification instead of a live event.
func (h *Hub) UserInGroup(group string, userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.groups[group] {
		if sub.UserID() == userID {
			return true
		}
	}
	return false
}

func (h *Hub) leaveLocked(group string, sessionID string) {
	members := h.groups[group]
	if members == nil {
		return
	}
	delete(members, sessionID)
	if len(members) == 0 {
		delete(h.groups, group)
	}
	if joined, ok := h.sessionGroups[sessionID]; ok {
		delete(joined, group)
		if len(joined) == 0 {
			delete(h.sessionGroups, sessionID)
		}
	}
}

func groupNamespace(group string) string {
	if i := strings.IndexByte(group, ':'); i > 0 {
		return group[:i]
	}
	return group
}
