package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rongwang/tripdate-server/internal/models"
	"github.com/rongwang/tripdate-server/internal/service"
)

// Error codes returned in models.ErrorResponse
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeNotFound     = "NOT_FOUND"
	CodeRateLimited  = "RATE_LIMITED"
	CodeInternal     = "INTERNAL_ERROR"
	CodeUnavailable  = "UNAVAILABLE"
)

func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Status:  "error",
		Code:    code,
		Message: message,
	})
}

// respondError maps a service error onto the status code convention.
// Storage details are logged, never sent.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch service.KindOf(err) {
	case service.KindValidation:
		writeError(c, http.StatusBadRequest, CodeValidation, service.MessageOf(err))
	case service.KindUnauthorized:
		writeError(c, http.StatusUnauthorized, CodeUnauthorized, service.MessageOf(err))
	case service.KindNotFound:
		writeError(c, http.StatusNotFound, CodeNotFound, service.MessageOf(err))
	default:
		h.logger.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
		writeError(c, http.StatusInternalServerError, CodeInternal, service.MessageOf(err))
	}
}

func badRequest(c *gin.Context, err error) {
	writeError(c, http.StatusBadRequest, CodeValidation, "invalid request: "+err.Error())
}
