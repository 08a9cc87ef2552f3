package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/application/usecase"
)

// SendMessageController handles POST /conversations/:conversationID/messages.
// HTTP-originated sends run the same pipeline as socket frames and land in
// the same broadcast groups, so connected sessions see them live.
type SendMessageController struct {
	uc *usecase.SendMessageUseCase
}

func NewSendMessageController(uc *usecase.SendMessageUseCase) *SendMessageController {
	return &SendMessageController{uc: uc}
}

type sendMessageRequest struct {
	Content       string  `json:"content" binding:"required"`
	AttachmentURL *string `json:"attachment_url"`
}

func (ctl *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := identity(c)
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user identity is required"})
			return
		}

		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		result, err := ctl.uc.Execute(c.Request.Context(), usecase.SendMessageInput{
			ConversationID: c.Param("conversationID"),
			SenderID:       userID,
			Content:        req.Content,
			AttachmentURL:  req.AttachmentURL,
		})
		if err != nil {
			status, body := toHTTPError(err)
			c.JSON(status, body)
			return
		}

		// The sender's HTTP response is their echo, so the advisory rides
		// here rather than on the broadcast.
		echo := result.Payload
		echo.Advisory = result.Advisory
		c.JSON(http.StatusCreated, gin.H{"message": echo})
	}
}
