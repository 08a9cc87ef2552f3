package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Gateway metrics
	ActiveSessions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mantra_active_sessions",
			Help: "Currently open websocket sessions",
		},
		[]string{"channel"}, // "chat", "notify", "status"
	)

	FramesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mantra_frames_received_total",
			Help: "Inbound frames by kind",
		},
		[]string{"kind"},
	)

	SessionsReaped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mantra_sessions_reaped_total",
			Help: "Sessions force-closed by heartbeat timeout",
		},
	)

	// Messaging metrics
	MessagesPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mantra_messages_persisted_total",
			Help: "Messages written to the conversation store",
		},
	)

	ModerationRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mantra_moderation_rejections_total",
			Help: "Sends rejected by the moderation gate",
		},
	)

	// Hub metrics
	BroadcastsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mantra_broadcasts_published_total",
			Help: "Events published to broadcast groups",
		},
		[]string{"namespace"}, // "chat", "notify", "status"
	)

	NotificationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mantra_notifications_created_total",
			Help: "Durable notification records created",
		},
	)

	UnreadCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mantra_unread_cache_lookups_total",
			Help: "Unread summary cache lookups",
		},
		[]string{"result"}, // "hit" or "miss"
	)
)
