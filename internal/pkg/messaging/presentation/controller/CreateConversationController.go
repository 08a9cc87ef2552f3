package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/application/usecase"
)

// CreateConversationController handles POST /conversations.
type CreateConversationController struct {
	uc *usecase.CreateConversationUseCase
}

func NewCreateConversationController(uc *usecase.CreateConversationUseCase) *CreateConversationController {
	return &CreateConversationController{uc: uc}
}

type createConversationRequest struct {
	ParticipantIDs []string `json:"participant_ids" binding:"required"`
	Title          string   `json:"title"`
	ImageURL       *string  `json:"image_url"`
	IsGroup        bool     `json:"is_group"`
	Fanclub        bool     `json:"fanclub"`
}

func (ctl *CreateConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := identity(c)
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user identity is required"})
			return
		}

		var req createConversationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		conv, err := ctl.uc.Execute(c.Request.Context(), usecase.CreateConversationInput{
			CreatorID:      userID,
			ParticipantIDs: req.ParticipantIDs,
			Title:          req.Title,
			ImageURL:       req.ImageURL,
			IsGroup:        req.IsGroup,
			Fanclub:        req.Fanclub,
		})
		if err != nil {
			status, body := toHTTPError(err)
			c.JSON(status, body)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"conversation": conv})
	}
}
