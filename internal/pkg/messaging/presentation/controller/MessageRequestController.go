package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/application/usecase"
)

// MessageRequestController handles the message-request endpoints: sending
// a request to a user and responding to one.
type MessageRequestController struct {
	uc *usecase.MessageRequestUseCase
}

func NewMessageRequestController(uc *usecase.MessageRequestUseCase) *MessageRequestController {
	return &MessageRequestController{uc: uc}
}

type sendRequestBody struct {
	Body string `json:"body"`
}

// HandleSend handles POST /message-requests/:id, where id is the target
// user.
func (ctl *MessageRequestController) HandleSend() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := identity(c)
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user identity is required"})
			return
		}

		var body sendRequestBody
		// Body text is optional; an empty payload is a bare request.
		_ = c.ShouldBindJSON(&body)

		req, err := ctl.uc.Send(c.Request.Context(), usecase.SendRequestInput{
			FromUserID: userID,
			ToUserID:   c.Param("id"),
			Body:       body.Body,
		})
		if err != nil {
			status, resp := toHTTPError(err)
			c.JSON(status, resp)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"request": req})
	}
}

type respondRequestBody struct {
	Accept bool `json:"accept"`
}

// HandleRespond handles POST /message-requests/:id/respond, where id is
// the request.
func (ctl *MessageRequestController) HandleRespond() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := identity(c)
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user identity is required"})
			return
		}

		var body respondRequestBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		conv, err := ctl.uc.Respond(c.Request.Context(), c.Param("id"), userID, body.Accept)
		if err != nil {
			status, resp := toHTTPError(err)
			c.JSON(status, resp)
			return
		}

		resp := gin.H{"accepted": body.Accept}
		if conv != nil {
			resp["conversation"] = conv
		}
		c.JSON(http.StatusOK, resp)
	}
}
