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
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/application/usecase"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/domain"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/event"
	repository "github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/persistence/repository/port"
)

// chatInbound is the closed set of frames a chat session accepts. Unknown
// types produce an error frame to the originator only.
type chatInbound struct {
	Type          string   `json:"type"`
	Content       string   `json:"content,omitempty"`
	AttachmentURL *string  `json:"attachment_url,omitempty"`
	IsTyping      bool     `json:"is_typing,omitempty"`
	MessageIDs    []string `json:"message_ids,omitempty"`
	MessageID     string   `json:"message_id,omitempty"`
	NewContent    string   `json:"new_content,omitempty"`
}

const (
	frameMessage       = "message"
	frameTyping        = "typing"
	frameRead          = "read"
	frameEditMessage   = "edit_message"
	frameDeleteMessage = "delete_message"
	frameHeartbeat     = "heartbeat"
)

type connectionEstablished struct {
	Type           string   `json:"type"`
	ConversationID string   `json:"conversation_id"`
	Participants   []string `json:"participants"`
}

// ChatSocketController handles the websocket endpoint for one
// conversation's realtime traffic.
type ChatSocketController struct {
	hub    *realtime.Hub
	graph  repository.SocialGraph
	logger zerolog.Logger

	joinUC   *usecase.JoinConversationUseCase
	sendUC   *usecase.SendMessageUseCase
	readUC   *usecase.MarkReadUseCase
	editUC   *usecase.EditMessageUseCase
	deleteUC *usecase.DeleteMessageUseCase

	heartbeatWindow time.Duration
	inflightTimeout time.Duration
}

func NewChatSocketController(
	hub *realtime.Hub,
	graph repository.SocialGraph,
	joinUC *usecase.JoinConversationUseCase,
	sendUC *usecase.SendMessageUseCase,
	readUC *usecase.MarkReadUseCase,
	editUC *usecase.EditMessageUseCase,
	deleteUC *usecase.DeleteMessageUseCase,
	heartbeatWindow time.Duration,
	logger zerolog.Logger,
) *ChatSocketController {
	return &ChatSocketController{
		hub:             hub,
		graph:           graph,
		logger:          logger,
		joinUC:          joinUC,
		sendUC:          sendUC,
		readUC:          readUC,
		editUC:          editUC,
		deleteUC:        deleteUC,
		heartbeatWindow: heartbeatWindow,
		inflightTimeout: 5 * time.Second,
	}
}

// Handle upgrades /ws/chat/:conversationID and processes frames until the
// client disconnects or the heartbeat window expires.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := identity(c)
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user identity is required"})
			return
		}
		conversationID := c.Param("conversationID")

		// Authorize before the upgrade so a rejected client gets a plain
		// HTTP status instead of a socket that closes immediately.
		ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
		conv, err := ctl.joinUC.Execute(ctx, conversationID, userID)
		cancel()
		if err != nil {
			status, body := toHTTPError(err)
			c.JSON(status, body)
			return
		}

		profile, err := ctl.graph.GetProfile(c.Request.Context(), userID)
		if err != nil {
			// Display fields only; a missing profile must not block chat.
			profile = domain.UserProfile{ID: userID, Username: userID}
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		group := event.ChatGroup(conv.ID)
		session := newSocketSession(ws, userID, ctl.hub, ctl.heartbeatWindow, ctl.logger)
		session.onTeardown(func() {
			ctl.hub.Publish(group, event.Marshal(event.UserStatus{
				Type:   event.TypeUserStatus,
				UserID: userID,
				Status: "offline",
			}))
			metrics.ActiveSessions.WithLabelValues("chat").Dec()
		})
		defer session.teardown(websocket.CloseNormalClosure, "session closed")

		ctl.hub.Join(group, session.conn)
		metrics.ActiveSessions.WithLabelValues("chat").Inc()

		session.send(connectionEstablished{
			Type:           event.TypeConnectionEstablished,
			ConversationID: conv.ID,
			Participants:   conv.ParticipantIDs,
		})
		ctl.hub.PublishExcept(group, event.Marshal(event.UserStatus{
			Type:   event.TypeUserStatus,
			UserID: userID,
			Status: "online",
		}), session.conn.SessionID())

		session.readLoop(func(data []byte) bool {
			return ctl.dispatch(c, session, conv.ID, profile, data)
		})
	}
}

func (ctl *ChatSocketController) dispatch(c *gin.Context, session *socketSession, conversationID string, profile domain.UserProfile, data []byte) bool {
	var frame chatInbound
	if err := json.Unmarshal(data, &frame); err != nil {
		return !session.badFrame("invalid payload")
	}
	metrics.FramesReceived.WithLabelValues(frame.Type).Inc()

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	switch frame.Type {
	case frameHeartbeat:
		session.send(struct {
			Type string `json:"type"`
		}{event.TypeHeartbeatAck})

	case frameMessage:
		result, err := ctl.sendUC.Execute(ctx, usecase.SendMessageInput{
			ConversationID: conversationID,
			SenderID:       profile.ID,
			Content:        frame.Content,
			AttachmentURL:  frame.AttachmentURL,
		})
		if err != nil {
			session.sendError(err)
			return true
		}
		if result.Advisory != nil {
			// The group broadcast already went out without the advisory;
			// only the author sees the sentiment warning.
			echo := result.Payload
			echo.Advisory = result.Advisory
			session.send(event.ChatMessage{Type: event.TypeMessage, Message: echo})
		}

	case frameTyping:
		ctl.hub.PublishExcept(event.ChatGroup(conversationID), event.Marshal(event.Typing{
			Type:     event.TypeTyping,
			User:     senderOf(profile),
			IsTyping: frame.IsTyping,
		}), session.conn.SessionID())

	case frameRead:
		if _, err := ctl.readUC.Execute(ctx, usecase.MarkReadInput{
			ConversationID: conversationID,
			ReaderID:       profile.ID,
			MessageIDs:     frame.MessageIDs,
		}); err != nil {
			session.sendError(err)
		}

	case frameEditMessage:
		if _, err := ctl.editUC.Execute(ctx, usecase.EditMessageInput{
			ConversationID: conversationID,
			MessageID:      frame.MessageID,
			SenderID:       profile.ID,
			NewContent:     frame.NewContent,
		}); err != nil {
			session.sendError(err)
		}

	case frameDeleteMessage:
		if err := ctl.deleteUC.Execute(ctx, usecase.DeleteMessageInput{
			ConversationID: conversationID,
			MessageID:      frame.MessageID,
			SenderID:       profile.ID,
		}); err != nil {
			session.sendError(err)
		}

	default:
		return !session.badFrame("unknown frame type")
	}
	return true
}

func senderOf(p domain.UserProfile) event.Sender {
	return event.Sender{
		ID:         p.ID,
		Username:   p.Username,
		FullName:   p.FullName,
		AvatarURL:  p.AvatarURL,
		IsVerified: p.IsVerified,
		UserType:   p.UserType,
	}
}
