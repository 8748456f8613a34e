package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Byte-Craftsman-Alpha/Paranox/access"
	"github.com/Byte-Craftsman-Alpha/Paranox/middleware"
	"github.com/Byte-Craftsman-Alpha/Paranox/models"
	"github.com/Byte-Craftsman-Alpha/Paranox/services"
)

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, models.Response{
		Success: true,
		Data:    data,
	})
}

func respondMessage(c *gin.Context, status int, data any, msg string) {
	c.JSON(status, models.Response{
		Success: true,
		Data:    data,
		Message: msg,
	})
}

func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, models.Response{
		Success: false,
		Error:   msg,
	})
}

// respondServiceError maps service errors onto HTTP statuses. Unexpected
// errors are logged and hidden behind a generic message.
func respondServiceError(c *gin.Context, log *zap.Logger, err error) {
	var verr *services.ValidationError
	var perr *access.PermissionError
	switch {
	case errors.As(err, &verr):
		respondError(c, http.StatusBadRequest, strings.Join(verr.Fields, "; "))
	case errors.Is(err, services.ErrRoleImmutable):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &perr):
		respondError(c, http.StatusForbidden, "Access denied: "+perr.Reason)
	case errors.Is(err, access.ErrPermissionDenied):
		respondError(c, http.StatusForbidden, "Access denied")
	case errors.Is(err, services.ErrNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrInvalidStatusTransition),
		errors.Is(err, services.ErrInvalidLinkTransition),
		errors.Is(err, services.ErrProfileExists):
		respondError(c, http.StatusConflict, err.Error())
	default:
		log.Error("request failed",
			zap.String("request_id", c.GetString(middleware.ContextRequestID)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		respondError(c, http.StatusInternalServerError, "Internal server error")
	}
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}
