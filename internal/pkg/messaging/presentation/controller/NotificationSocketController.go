package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/SanjayNepali/MANTRA-sub001/internal/infrastructure/realtime"
	"github.com/SanjayNepali/MANTRA-sub001/internal/metrics"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/event"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/notifications"
)

const recentNotificationLimit = 20

type notifyInbound struct {
	Type           string `json:"type"`
	NotificationID string `json:"notification_id,omitempty"`
}

const (
	frameMarkRead    = "mark_read"
	frameMarkAllRead = "mark_all_read"
	frameDelete      = "delete"
)

type notifySnapshot struct {
	Type          string                      `json:"type"`
	UnreadCount   int                         `json:"unread_count"`
	Notifications []event.NotificationPayload `json:"notifications"`
}

// NotificationSocketController serves a user's personal notification feed:
// an initial snapshot on connect, live pushes via the notify group, and
// inbound read/delete actions.
type NotificationSocketController struct {
	hub    *realtime.Hub
	store  notifications.Store
	cache  *notifications.UnreadCache
	logger zerolog.Logger

	heartbeatWindow time.Duration
	inflightTimeout time.Duration
}

func NewNotificationSocketController(
	hub *realtime.Hub,
	store notifications.Store,
	cache *notifications.UnreadCache,
	heartbeatWindow time.Duration,
	logger zerolog.Logger,
) *NotificationSocketController {
	return &NotificationSocketController{
		hub:             hub,
		store:           store,
		cache:           cache,
		logger:          logger,
		heartbeatWindow: heartbeatWindow,
		inflightTimeout: 5 * time.Second,
	}
}

func (ctl *NotificationSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := identity(c)
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user identity is required"})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		session := newSocketSession(ws, userID, ctl.hub, ctl.heartbeatWindow, ctl.logger)
		session.onTeardown(func() {
			metrics.ActiveSessions.WithLabelValues("notify").Dec()
		})
		defer session.teardown(websocket.CloseNormalClosure, "session closed")

		ctl.hub.Join(event.NotifyGroup(userID), session.conn)
		metrics.ActiveSessions.WithLabelValues("notify").Inc()

		ctl.sendSnapshot(c.Request.Context(), session, userID)

		session.readLoop(func(data []byte) bool {
			return ctl.dispatch(c, session, userID, data)
		})
	}
}

// sendSnapshot delivers the opening frame: unread count plus the most
// recent notifications, newest first.
func (ctl *NotificationSocketController) sendSnapshot(ctx context.Context, session *socketSession, userID string) {
	sctx, cancel := context.WithTimeout(ctx, ctl.inflightTimeout)
	defer cancel()

	count, err := ctl.store.CountUnread(sctx, userID)
	if err != nil {
		ctl.logger.Warn().Err(err).Str("user_id", userID).Msg("unread count failed")
	}
	recent, err := ctl.store.ListRecent(sctx, userID, recentNotificationLimit)
	if err != nil {
		ctl.logger.Warn().Err(err).Str("user_id", userID).Msg("recent notifications failed")
	}

	payloads := make([]event.NotificationPayload, 0, len(recent))
	for _, n := range recent {
		p := event.NotificationPayload{
			ID:        n.ID,
			Category:  n.Category,
			Message:   n.Message,
			TargetRef: n.TargetRef,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		}
		if n.SenderID != nil {
			p.Sender = &event.Sender{ID: *n.SenderID}
		}
		payloads = append(payloads, p)
	}

	session.send(notifySnapshot{
		Type:          event.TypeConnectionEstablished,
		UnreadCount:   count,
		Notifications: payloads,
	})
}

func (ctl *NotificationSocketController) dispatch(c *gin.Context, session *socketSession, userID string, data []byte) bool {
	var frame notifyInbound
	if err := json.Unmarshal(data, &frame); err != nil {
		return !session.badFrame("invalid payload")
	}
	metrics.FramesReceived.WithLabelValues(frame.Type).Inc()

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	var err error
	switch frame.Type {
	case frameHeartbeat:
		session.send(struct {
			Type string `json:"type"`
		}{event.TypeHeartbeatAck})
		return true
	case frameMarkRead:
		err = ctl.store.MarkRead(ctx, frame.NotificationID, userID)
	case frameMarkAllRead:
		err = ctl.store.MarkAllRead(ctx, userID)
	case frameDelete:
		err = ctl.store.Delete(ctx, frame.NotificationID, userID)
	default:
		return !session.badFrame("unknown frame type")
	}

	if err != nil {
		session.sendError(err)
		return true
	}
	ctl.cache.Invalidate(ctx, userID)
	return true
}
