package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/domain"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/moderation"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/notifications"
)

// fakeStore is an in-memory ConversationStore for use case tests.
type fakeStore struct {
	mu            sync.Mutex
	conversations map[string]*domain.Conversation
	messages      map[string]*domain.Message
	requests      map[string]*domain.MessageRequest
	nextID        int

	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		conversations: map[string]*domain.Conversation{},
		messages:      map[string]*domain.Message{},
		requests:      map[string]*domain.MessageRequest{},
	}
}

func (s *fakeStore) id(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func (s *fakeStore) addConversation(c domain.Conversation) *domain.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = s.id("conv")
	}
	c.CreatedAt = time.Now()
	s.conversations[c.ID] = &c
	return &c
}

func (s *fakeStore) CreateConversation(_ context.Context, c domain.Conversation) (string, error) {
	return s.addConversation(c).ID, nil
}

func (s *fakeStore) GetConversation(_ context.Context, id string) (*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "conversation"}
	}
	cp := *c
	return &cp, nil
}

func (s *fakeStore) FindDirectConversation(_ context.Context, a, b string) (*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conversations {
		if c.IsGroup || len(c.ParticipantIDs) != 2 {
			continue
		}
		if c.HasParticipant(a) && c.HasParticipant(b) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, &domain.NotFoundError{Resource: "conversation"}
}

func (s *fakeStore) SaveMessage(_ context.Context, conversationID, senderID, content string, attachmentURL *string) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	now := time.Now()
	m := &domain.Message{
		ID:             s.id("msg"),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		AttachmentURL:  attachmentURL,
		CreatedAt:      now,
	}
	s.messages[m.ID] = m
	if c, ok := s.conversations[conversationID]; ok {
		c.LastActivityAt = &now
	}
	return m, nil
}

func (s *fakeStore) GetMessage(_ context.Context, id string) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "message"}
	}
	cp := *m
	return &cp, nil
}

func (s *fakeStore) ListMessages(_ context.Context, conversationID string, limit, offset int) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Message
	for _, m := range s.messages {
		if m.ConversationID == conversationID && !m.IsDeleted {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *fakeStore) MarkMessagesRead(_ context.Context, conversationID, readerID string, messageIDs []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var affected []string
	now := time.Now()
	for _, id := range messageIDs {
		m, ok := s.messages[id]
		if !ok || m.ConversationID != conversationID || m.SenderID == readerID || m.IsRead || m.IsDeleted {
			continue
		}
		m.IsRead = true
		m.ReadAt = &now
		affected = append(affected, id)
	}
	return affected, nil
}

func (s *fakeStore) EditMessage(_ context.Context, conversationID, messageID, senderID, newContent string) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[messageID]
	if !ok || m.ConversationID != conversationID || m.SenderID != senderID || m.IsDeleted {
		return nil, &domain.NotFoundError{Resource: "message"}
	}
	now := time.Now()
	m.Content = newContent
	m.EditedAt = &now
	cp := *m
	return &cp, nil
}

func (s *fakeStore) DeleteMessage(_ context.Context, conversationID, messageID, senderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[messageID]
	if !ok || m.ConversationID != conversationID || m.SenderID != senderID || m.IsDeleted {
		return &domain.NotFoundError{Resource: "message"}
	}
	now := time.Now()
	m.IsDeleted = true
	m.DeletedAt = &now
	return nil
}

func (s *fakeStore) CountUnreadMessages(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.messages {
		if m.IsRead || m.IsDeleted || m.SenderID == userID {
			continue
		}
		c, ok := s.conversations[m.ConversationID]
		if ok && c.IsActive && c.HasParticipant(userID) {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) CreateMessageRequest(_ context.Context, r domain.MessageRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.id("req")
	r.CreatedAt = time.Now()
	s.requests[r.ID] = &r
	return r.ID, nil
}

func (s *fakeStore) GetMessageRequest(_ context.Context, id string) (*domain.MessageRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "message request"}
	}
	cp := *r
	return &cp, nil
}

func (s *fakeStore) FindRequestBetween(_ context.Context, fromUserID, toUserID string) (*domain.MessageRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.requests {
		if r.FromUserID == fromUserID && r.ToUserID == toUserID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, &domain.NotFoundError{Resource: "message request"}
}

func (s *fakeStore) SetRequestStatus(_ context.Context, id string, status domain.RequestStatus, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return &domain.NotFoundError{Resource: "message request"}
	}
	r.Status = status
	r.RespondedAt = &at
	return nil
}

func (s *fakeStore) CountPendingRequests(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.ToUserID == userID && r.Status == domain.RequestPending {
			n++
		}
	}
	return n, nil
}

// fakeGraph answers social-graph questions from fixed maps.
type fakeGraph struct {
	follows  map[string]bool // "a->b"
	profiles map[string]domain.UserProfile
	prefs    map[string]string
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{
		follows:  map[string]bool{},
		profiles: map[string]domain.UserProfile{},
		prefs:    map[string]string{},
	}
}

func (g *fakeGraph) follow(a, b string) { g.follows[a+"->"+b] = true }

func (g *fakeGraph) user(id, userType, pref string) {
	g.profiles[id] = domain.UserProfile{ID: id, Username: id, UserType: userType}
	g.prefs[id] = pref
}

func (g *fakeGraph) Follows(_ context.Context, followerID, followingID string) (bool, error) {
	return g.follows[followerID+"->"+followingID], nil
}

func (g *fakeGraph) FriendIDs(_ context.Context, userID string) ([]string, error) {
	seen := map[string]struct{}{}
	var out []string
	for edge, ok := range g.follows {
		if !ok {
			continue
		}
		parts := strings.SplitN(edge, "->", 2)
		var friend string
		switch userID {
		case parts[0]:
			friend = parts[1]
		case parts[1]:
			friend = parts[0]
		default:
			continue
		}
		if _, dup := seen[friend]; dup {
			continue
		}
		seen[friend] = struct{}{}
		out = append(out, friend)
	}
	return out, nil
}

func (g *fakeGraph) GetProfile(_ context.Context, userID string) (domain.UserProfile, error) {
	p, ok := g.profiles[userID]
	if !ok {
		return domain.UserProfile{}, &domain.NotFoundError{Resource: "user"}
	}
	return p, nil
}

func (g *fakeGraph) MessagingPreference(_ context.Context, userID string) (string, error) {
	if pref, ok := g.prefs[userID]; ok {
		return pref, nil
	}
	return domain.PrefAnyone, nil
}

// fakeHub records publishes and answers membership queries from a set.
type fakeHub struct {
	mu        sync.Mutex
	published []publishedEvent
	present   map[string]bool // group + "|" + userID
}

type publishedEvent struct {
	group   string
	payload []byte
	except  string
}

func newFakeHub() *fakeHub {
	return &fakeHub{present: map[string]bool{}}
}

func (h *fakeHub) markPresent(group, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.present[group+"|"+userID] = true
}

func (h *fakeHub) Publish(group string, payload []byte) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.published = append(h.published, publishedEvent{group: group, payload: payload})
	return 1
}

func (h *fakeHub) PublishExcept(group string, payload []byte, exceptSessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.published = append(h.published, publishedEvent{group: group, payload: payload, except: exceptSessionID})
	return 1
}

func (h *fakeHub) UserInGroup(group string, userID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.present[group+"|"+userID]
}

func (h *fakeHub) events() []publishedEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]publishedEvent, len(h.published))
	copy(out, h.published)
	return out
}

// fakeNotifier records NotifyInput calls.
type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifications.NotifyInput
}

func (n *fakeNotifier) Notify(_ context.Context, in notifications.NotifyInput) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, in)
	return nil
}

func (n *fakeNotifier) recipients() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, c := range n.calls {
		out = append(out, c.RecipientID)
	}
	return out
}

// fakeInvalidator records invalidated user ids.
type fakeInvalidator struct {
	mu    sync.Mutex
	users []string
}

func (i *fakeInvalidator) Invalidate(_ context.Context, userID string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.users = append(i.users, userID)
}

// stubAnalyzer returns a fixed verdict or error.
type stubAnalyzer struct {
	verdict moderation.Verdict
	err     error
}

func (a stubAnalyzer) Analyze(ctx context.Context, content string) (moderation.Verdict, error) {
	if err := ctx.Err(); err != nil {
		return moderation.Verdict{}, err
	}
	if a.err != nil {
		return moderation.Verdict{}, a.err
	}
	return a.verdict, nil
}
