package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/SanjayNepali/MANTRA-sub001/internal/infrastructure/realtime"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/application/usecase"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/moderation"
	repository "github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/persistence/repository/port"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/presentation/controller"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/notifications"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/presence"
)

// Deps collects the collaborators the messaging surface is wired from.
type Deps struct {
	Hub               *realtime.Hub
	Store             repository.ConversationStore
	Graph             repository.SocialGraph
	Analyzer          moderation.Analyzer
	Notifier          usecase.Notifier
	Tracker           *presence.Tracker
	NotificationStore notifications.Store
	UnreadCache       *notifications.UnreadCache
	HeartbeatWindow   time.Duration
	MaxMessageLength  int
	ModerationTimeout time.Duration
	Logger            zerolog.Logger
}

// RegisterRoutes mounts the messaging REST endpoints under the given group
// and the websocket endpoints under ws. It constructs per-endpoint
// controllers and binds them directly to routes.
func RegisterRoutes(g *gin.RouterGroup, ws *gin.RouterGroup, d Deps) {
	sendUC := usecase.NewSendMessageUseCase(d.Store, d.Graph, d.Analyzer, d.Hub, d.Notifier, d.Logger)
	joinUC := usecase.NewJoinConversationUseCase(d.Store)
	readUC := usecase.NewMarkReadUseCase(d.Store, d.Hub, d.UnreadCache)
	editUC := usecase.NewEditMessageUseCase(d.Store, d.Hub)
	deleteUC := usecase.NewDeleteMessageUseCase(d.Store, d.Hub)
	listUC := usecase.NewListMessagesUseCase(d.Store)
	createUC := usecase.NewCreateConversationUseCase(d.Store, d.Graph)
	requestUC := usecase.NewMessageRequestUseCase(d.Store, d.Graph, d.Notifier, d.UnreadCache, d.Logger)

	// Deployment tuning overrides the use-case defaults.
	if d.MaxMessageLength > 0 {
		sendUC.MaxContentLength = d.MaxMessageLength
		editUC.MaxContentLength = d.MaxMessageLength
	}
	if d.ModerationTimeout > 0 {
		sendUC.ModerationTimeout = d.ModerationTimeout
	}

	createCtl := controller.NewCreateConversationController(createUC)
	sendCtl := controller.NewSendMessageController(sendUC)
	getCtl := controller.NewGetMessagesController(listUC)
	requestCtl := controller.NewMessageRequestController(requestUC)
	summaryCtl := controller.NewUnreadSummaryController(d.UnreadCache)
	notifListCtl := controller.NewListNotificationsController(d.NotificationStore)

	g.POST("/conversations", createCtl.Handle())
	g.POST("/conversations/:conversationID/messages", sendCtl.Handle())
	g.GET("/conversations/:conversationID/messages", getCtl.Handle())
	// Same wildcard name on both: the router rejects mixed param names at
	// one position.
	g.POST("/message-requests/:id", requestCtl.HandleSend())
	g.POST("/message-requests/:id/respond", requestCtl.HandleRespond())
	g.GET("/unread-summary", summaryCtl.Handle())
	g.GET("/notifications", notifListCtl.Handle())

	chatSocketCtl := controller.NewChatSocketController(
		d.Hub, d.Graph, joinUC, sendUC, readUC, editUC, deleteUC, d.HeartbeatWindow, d.Logger)
	notifySocketCtl := controller.NewNotificationSocketController(
		d.Hub, d.NotificationStore, d.UnreadCache, d.HeartbeatWindow, d.Logger)
	statusSocketCtl := controller.NewStatusSocketController(
		d.Hub, d.Tracker, d.HeartbeatWindow, d.Logger)

	ws.GET("/chat/:conversationID", chatSocketCtl.Handle())
	ws.GET("/notifications", notifySocketCtl.Handle())
	ws.GET("/status", statusSocketCtl.Handle())
}
