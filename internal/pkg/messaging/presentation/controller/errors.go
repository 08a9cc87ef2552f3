package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/domain"
)

// toHTTPError maps the error taxonomy onto HTTP responses. Internal detail
// never leaks; transient failures tell the client to retry.
func toHTTPError(err error) (int, gin.H) {
	switch e := err.(type) {
	case *domain.ValidationError:
		return http.StatusBadRequest, gin.H{"error": e.Reason}
	case *domain.AuthorizationError:
		return http.StatusForbidden, gin.H{"error": e.Reason}
	case *domain.ModerationError:
		return http.StatusUnprocessableEntity, gin.H{
			"error":       "message contains inappropriate content",
			"toxic_terms": e.ToxicTerms,
		}
	case *domain.NotFoundError:
		return http.StatusNotFound, gin.H{"error": e.Resource + " not found"}
	case *domain.TransientError:
		return http.StatusServiceUnavailable, gin.H{"error": "temporary failure, please retry"}
	default:
		return http.StatusInternalServerError, gin.H{"error": "internal error"}
	}
}
