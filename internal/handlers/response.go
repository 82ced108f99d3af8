package handlers

import (
	"errors"
	"net/http"

	"github.com/GunarsK-portfolio/workshop-planner/internal/logger"
	"github.com/GunarsK-portfolio/workshop-planner/internal/repository"
	"github.com/GunarsK-portfolio/workshop-planner/internal/service"
	"github.com/gin-gonic/gin"
)

// RespondError writes a JSON error body.
func RespondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// LogAndRespondError logs err with request context and writes message.
func LogAndRespondError(c *gin.Context, status int, err error, message string) {
	logger.FromContext(c).Error(message,
		"error", err,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", status,
	)
	RespondError(c, status, message)
}

// RespondServiceError maps service sentinels onto HTTP statuses. Anything
// unrecognised is logged and reported as a generic 500.
func RespondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		RespondError(c, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrTokenInvalid):
		RespondError(c, http.StatusUnauthorized, "invalid or expired token")
	case errors.Is(err, service.ErrCsrfMismatch):
		RespondError(c, http.StatusForbidden, "CSRF validation failed")
	case errors.Is(err, service.ErrForbidden):
		RespondError(c, http.StatusForbidden, "insufficient permissions")
	case errors.Is(err, service.ErrRateLimited):
		RespondError(c, http.StatusTooManyRequests, "too many login attempts, try again later")
	case errors.Is(err, service.ErrEmailTaken):
		RespondError(c, http.StatusConflict, "email already registered")
	case errors.Is(err, service.ErrWorkshopNotFound), errors.Is(err, repository.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrValidation):
		RespondError(c, http.StatusBadRequest, err.Error())
	default:
		LogAndRespondError(c, http.StatusInternalServerError, err, "internal server error")
	}
}
