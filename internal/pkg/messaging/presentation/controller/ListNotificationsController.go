package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/notifications"
)

// ListNotificationsController handles GET /notifications.
type ListNotificationsController struct {
	store notifications.Store
}

func NewListNotificationsController(store notifications.Store) *ListNotificationsController {
	return &ListNotificationsController{store: store}
}

func (ctl *ListNotificationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := identity(c)
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user identity is required"})
			return
		}

		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		if limit <= 0 || limit > 100 {
			limit = 20
		}

		list, err := ctl.store.ListRecent(c.Request.Context(), userID, limit)
		if err != nil {
			status, body := toHTTPError(err)
			c.JSON(status, body)
			return
		}

		c.JSON(http.StatusOK, gin.H{"notifications": list})
	}
}
