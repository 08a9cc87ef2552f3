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
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/presence"
)

type statusInbound struct {
	Type string `json:"type"`
}

// StatusSocketController binds a user's presence lifetime to a websocket:
// connect marks them online (first session only), heartbeats refresh
// last_seen, and teardown marks them offline once their last session is
// gone. Friends observe transitions through their notify groups.
type StatusSocketController struct {
	hub     *realtime.Hub
	tracker *presence.Tracker
	logger  zerolog.Logger

	heartbeatWindow time.Duration
	inflightTimeout time.Duration
}

func NewStatusSocketController(hub *realtime.Hub, tracker *presence.Tracker, heartbeatWindow time.Duration, logger zerolog.Logger) *StatusSocketController {
	return &StatusSocketController{
		hub:             hub,
		tracker:         tracker,
		logger:          logger,
		heartbeatWindow: heartbeatWindow,
		inflightTimeout: 5 * time.Second,
	}
}

func (ctl *StatusSocketController) Handle() gin.HandlerFunc {
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
			// Teardown context: the request context is gone by the time a
			// reaped session gets here.
			ctx, cancel := context.WithTimeout(context.Background(), ctl.inflightTimeout)
			defer cancel()
			if err := ctl.tracker.Disconnect(ctx, userID); err != nil {
				ctl.logger.Warn().Err(err).Str("user_id", userID).Msg("presence disconnect failed")
			}
			metrics.ActiveSessions.WithLabelValues("status").Dec()
		})
		defer session.teardown(websocket.CloseNormalClosure, "session closed")

		ctl.hub.Join(event.StatusGroup(userID), session.conn)
		metrics.ActiveSessions.WithLabelValues("status").Inc()

		ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
		err = ctl.tracker.Connect(ctx, userID)
		cancel()
		if err != nil {
			ctl.logger.Warn().Err(err).Str("user_id", userID).Msg("presence connect failed")
		}

		session.send(struct {
			Type   string `json:"type"`
			UserID string `json:"user_id"`
			Status string `json:"status"`
		}{event.TypeConnectionEstablished, userID, "online"})

		session.readLoop(func(data []byte) bool {
			return ctl.dispatch(c, session, userID, data)
		})
	}
}

func (ctl *StatusSocketController) dispatch(c *gin.Context, session *socketSession, userID string, data []byte) bool {
	var frame statusInbound
	if err := json.Unmarshal(data, &frame); err != nil {
		return !session.badFrame("invalid payload")
	}
	metrics.FramesReceived.WithLabelValues(frame.Type).Inc()

	switch frame.Type {
	case frameHeartbeat:
		ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
		defer cancel()
		if err := ctl.tracker.Heartbeat(ctx, userID); err != nil {
			ctl.logger.Debug().Err(err).Str("user_id", userID).Msg("heartbeat refresh failed")
		}
		session.send(struct {
			Type string `json:"type"`
		}{event.TypeHeartbeatAck})
	default:
		return !session.badFrame("unknown frame type")
	}
	return true
}
