package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/notifications"
)

// UnreadSummaryController handles GET /unread-summary, serving the cached
// badge counts.
type UnreadSummaryController struct {
	cache *notifications.UnreadCache
}

func NewUnreadSummaryController(cache *notifications.UnreadCache) *UnreadSummaryController {
	return &UnreadSummaryController{cache: cache}
}

func (ctl *UnreadSummaryController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := identity(c)
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user identity is required"})
			return
		}

		summary, err := ctl.cache.Get(c.Request.Context(), userID)
		if err != nil {
			status, body := toHTTPError(err)
			c.JSON(status, body)
			return
		}

		c.JSON(http.StatusOK, summary)
	}
}
