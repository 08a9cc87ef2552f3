package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// Connection wraps a websocket and coordinates outbound writes via a
// buffered channel, keeping the hub's publish path non-blocking. One
// Connection exists per live (socket, target) pair.
type Connection struct {
	id     string
	userID string

	ws    *websocket.Conn
	send  chan []byte
	once  sync.Once
	close chan struct{}

	closeCode   int
	closeReason string
}

// NewConnection constructs a Connection for the given user.
func NewConnection(userID string, ws *websocket.Conn) *Connection {
	return &Connection{
		id:     uuid.NewString(),
		userID: userID,
		ws:     ws,
		send:   make(chan []byte, 128),
		close:  make(chan struct{}),
	}
}

var _ Subscriber = (*Connection)(nil)

func (c *Connection) SessionID() string { return c.id }
func (c *Connection) UserID() string    { return c.userID }

// Start launches the write loop. Call exactly once per connection.
func (c *Connection) Start() {
	go c.writeLoop()
}

// Send enqueues payload for delivery. If the client is slow and the buffer
// fills, the connection is closed to keep backpressure bounded.
func (c *Connection) Send(payload []byte) error {
	select {
	case <-c.close:
		return errors.New("connection closed")
	case c.send <- payload:
		return nil
	default:
		c.Close(websocket.CloseGoingAway, "send buffer full")
		return errors.New("connection buffer exceeded")
	}
}

// Close signals shutdown and stops the write loop. The loop flushes frames
// queued before the signal, then emits the websocket close frame, so a final
// error frame enqueued just before Close still reaches the client. Safe to
// call from multiple goroutines; only the first call takes effect.
func (c *Connection) Close(code int, reason string) {
	c.once.Do(func() {
		c.closeCode = code
		c.closeReason = reason
		close(c.close)
	})
}

func (c *Connection) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer func() { _ = c.ws.Close() }()

	for {
		select {
		case <-c.close:
			c.flushAndClose()
			return
		case msg := <-c.send:
			if err := c.writeMessage(msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.writePing(); err != nil {
				return
			}
		}
	}
}

// flushAndClose drains the send buffer, then writes the close frame.
func (c *Connection) flushAndClose() {
	for {
		select {
		case msg := <-c.send:
			if err := c.writeMessage(msg); err != nil {
				return
			}
		default:
			deadline := time.Now().Add(writeWait)
			_ = c.ws.SetWriteDeadline(deadline)
			_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(c.closeCode, c.closeReason), deadline)
			return
		}
	}
}

func (c *Connection) writeMessage(payload []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, payload)
}

func (c *Connection) writePing() error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.PingMessage, nil)
}
