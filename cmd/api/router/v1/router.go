package v1

import (
	"github.com/gin-gonic/gin"

	httpHandler "github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/presentation/http"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1 and the
// websocket endpoints under /ws.
func RegisterRoutes(r *gin.Engine, deps httpHandler.Deps) {
	v1 := r.Group("/api/v1")
	ws := r.Group("/ws")
	httpHandler.RegisterRoutes(v1, ws, deps)
}
