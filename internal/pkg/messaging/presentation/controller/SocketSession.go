package controller

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/SanjayNepali/MANTRA-sub001/internal/infrastructure/realtime"
	"github.com/SanjayNepali/MANTRA-sub001/internal/metrics"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/domain"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/event"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now; plug a proper checker when auth is added.
		return true
	},
}

const (
	maxFrameSize       = 1 << 20
	malformedThreshold = 5
)

// identity resolves the authenticated user for a request. Auth itself is
// an upstream collaborator; by the time a request lands here the identity
// has been stamped on the X-User-ID header (query fallback for clients
// that cannot set websocket headers).
func identity(c *gin.Context) string {
	if id := c.GetHeader("X-User-ID"); id != "" {
		return id
	}
	return c.Query("user_id")
}

// socketSession owns one upgraded websocket from attach to teardown. The
// read loop runs on the caller's goroutine; writes go through the hub
// connection's write loop. Teardown runs exactly once no matter how many
// triggers race: client close, read error, heartbeat expiry, or a hook
// forcing disconnect.
type socketSession struct {
	conn      *realtime.Connection
	ws        *websocket.Conn
	hub       *realtime.Hub
	logger    zerolog.Logger
	window    time.Duration
	malformed int

	teardownOnce  sync.Once
	teardownHooks []func()
}

func newSocketSession(ws *websocket.Conn, userID string, hub *realtime.Hub, window time.Duration, logger zerolog.Logger) *socketSession {
	if window <= 0 {
		window = 60 * time.Second
	}
	s := &socketSession{
		conn:   realtime.NewConnection(userID, ws),
		ws:     ws,
		hub:    hub,
		logger: logger.With().Str("user_id", userID).Logger(),
		window: window,
	}
	ws.SetReadLimit(maxFrameSize)
	s.refreshDeadline()
	ws.SetPongHandler(func(string) error {
		s.refreshDeadline()
		return nil
	})
	s.conn.Start()
	return s
}

// onTeardown registers a hook to run during teardown, after the session
// has left all hub groups. Hooks run in registration order.
func (s *socketSession) onTeardown(fn func()) {
	s.teardownHooks = append(s.teardownHooks, fn)
}

func (s *socketSession) refreshDeadline() {
	_ = s.ws.SetReadDeadline(time.Now().Add(s.window))
}

func (s *socketSession) send(v any) {
	_ = s.conn.Send(event.Marshal(v))
}

// sendError delivers an error frame to this session only. Errors never go
// through the hub.
func (s *socketSession) sendError(err error) {
	s.send(toErrorFrame(err))
}

// badFrame reports a malformed inbound frame and returns true when the
// session has exhausted its allowance and must close.
func (s *socketSession) badFrame(message string) bool {
	s.malformed++
	frame := event.Error{Type: event.TypeError, Code: "bad_frame", Message: message}
	if s.malformed >= malformedThreshold {
		frame.Message = message + "; closing connection"
		s.send(frame)
		return true
	}
	s.send(frame)
	return false
}

// teardown leaves every hub group, runs the registered hooks, and closes
// the socket. Only the first caller does any of this.
func (s *socketSession) teardown(code int, reason string) {
	s.teardownOnce.Do(func() {
		s.hub.LeaveAll(s.conn)
		for _, fn := range s.teardownHooks {
			fn()
		}
		s.conn.Close(code, reason)
	})
}

// readLoop pulls frames until the connection dies, handing each raw
// payload to handle. A read deadline expiry counts as a reaped session.
func (s *socketSession) readLoop(handle func(data []byte) bool) {
	for {
		_, data, err := s.ws.ReadMessage()
		if err != nil {
			if netTimeout(err) {
				metrics.SessionsReaped.Inc()
				s.logger.Debug().Msg("session reaped after heartbeat window expired")
			} else if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				s.logger.Debug().Err(err).Msg("socket read failed")
			}
			return
		}
		s.refreshDeadline()
		if !handle(data) {
			return
		}
	}
}

func netTimeout(err error) bool {
	t, ok := err.(interface{ Timeout() bool })
	return ok && t.Timeout()
}

// toErrorFrame maps the error taxonomy onto the wire error envelope.
func toErrorFrame(err error) event.Error {
	frame := event.Error{Type: event.TypeError, Message: err.Error()}
	switch e := err.(type) {
	case *domain.ValidationError:
		frame.Code = "invalid"
		frame.Message = e.Reason
	case *domain.AuthorizationError:
		frame.Code = "forbidden"
		frame.Message = e.Reason
	case *domain.ModerationError:
		frame.Code = "moderation_rejected"
		frame.Message = "message contains inappropriate content"
		frame.ToxicTerms = e.ToxicTerms
	case *domain.NotFoundError:
		frame.Code = "not_found"
	case *domain.TransientError:
		frame.Code = "transient"
		frame.Message = "temporary failure, please retry"
		frame.Retryable = true
	default:
		frame.Code = "internal"
		frame.Message = "internal error"
	}
	return frame
}
