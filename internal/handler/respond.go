// Package handler provides the HTTP surface of the API server and the sync
// agent.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shush-app/guarded-blocking-go/internal/service"
	"github.com/shush-app/guarded-blocking-go/pkg/logger"
)

// userIDHeader identifies the acting user's account. The API key authorizes
// the calling app; this header scopes the request.
const userIDHeader = "X-User-ID"

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Timestamp: time.Now(),
		Path:      c.Request.URL.Path,
	})
}

// handleServiceError maps service-layer errors onto HTTP statuses.
func handleServiceError(c *gin.Context, err error) {
	var validationErr *service.ValidationError

	switch {
	case errors.As(err, &validationErr):
		respondError(c, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, service.ErrContactNotFound),
		errors.Is(err, service.ErrSessionNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotPermitted):
		// Deliberately indistinguishable from a missing request.
		respondError(c, http.StatusNotFound, service.ErrNotPermitted.Error())
	case errors.Is(err, service.ErrNoActiveGuardian):
		respondError(c, http.StatusPreconditionFailed, err.Error())
	case errors.Is(err, service.ErrPendingRequestExists),
		errors.Is(err, service.ErrCoolingOffIncomplete),
		errors.Is(err, service.ErrAlreadyResolved),
		errors.Is(err, service.ErrContactNotBlocked),
		errors.Is(err, service.ErrSelfGuardian),
		errors.Is(err, service.ErrSyncInProgress):
		respondError(c, http.StatusConflict, err.Error())
	default:
		logger.Named("handler").Error("Unexpected error",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		respondError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// requestUserID reads and parses the X-User-ID header. A missing or malformed
// header aborts the request with 400.
func requestUserID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetHeader(userIDHeader)
	if raw == "" {
		respondError(c, http.StatusBadRequest, "missing "+userIDHeader+" header")
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid "+userIDHeader+" header")
		return uuid.Nil, false
	}

	return userID, true
}

// pathUUID parses a UUID path parameter, aborting with 400 when malformed.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}

	return id, true
}
