package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/application/usecase"
)

// GetMessagesController handles GET /conversations/:conversationID/messages.
type GetMessagesController struct {
	uc *usecase.ListMessagesUseCase
}

func NewGetMessagesController(uc *usecase.ListMessagesUseCase) *GetMessagesController {
	return &GetMessagesController{uc: uc}
}

func (ctl *GetMessagesController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := identity(c)
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user identity is required"})
			return
		}

		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

		msgs, err := ctl.uc.Execute(c.Request.Context(), usecase.ListMessagesInput{
			ConversationID: c.Param("conversationID"),
			UserID:         userID,
			Limit:          limit,
			Offset:         offset,
		})
		if err != nil {
			status, body := toHTTPError(err)
			c.JSON(status, body)
			return
		}

		out := make([]gin.H, 0, len(msgs))
		for i := range msgs {
			m := &msgs[i]
			out = append(out, gin.H{
				"id":              m.ID,
				"conversation_id": m.ConversationID,
				"sender_id":       m.SenderID,
				"content":         m.DisplayContent(),
				"attachment_url":  m.AttachmentURL,
				"is_read":         m.IsRead,
				"edited_at":       m.EditedAt,
				"created_at":      m.CreatedAt,
			})
		}
		c.JSON(http.StatusOK, gin.H{"messages": out})
	}
}
