package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shush-app/guarded-blocking-go/internal/db/models"
	"github.com/shush-app/guarded-blocking-go/internal/service"
)

// GuardianHandler handles guardian setup and the guardian dashboard.
type GuardianHandler struct {
	guardians *service.GuardianService
	gateway   *service.DecisionGateway
	stats     *service.StatsService
}

// NewGuardianHandler creates a new GuardianHandler instance.
func NewGuardianHandler(guardians *service.GuardianService, gateway *service.DecisionGateway, stats *service.StatsService) *GuardianHandler {
	return &GuardianHandler{
		guardians: guardians,
		gateway:   gateway,
		stats:     stats,
	}
}

// SetGuardianRequest is the payload for nominating a guardian.
type SetGuardianRequest struct {
	UserEmail        string `json:"user_email"`
	GuardianEmail    string `json:"guardian_email"`
	GuardianName     string `json:"guardian_name"`
	RelationshipType string `json:"relationship_type"`
	PersonalMessage  string `json:"personal_message"`
}

// Set installs the user's guardian, replacing any existing one.
func (h *GuardianHandler) Set(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	var req SetGuardianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	guardian, err := h.guardians.Set(c.Request.Context(), userID, service.SetGuardianInput{
		UserEmail:        req.UserEmail,
		GuardianEmail:    req.GuardianEmail,
		GuardianName:     req.GuardianName,
		RelationshipType: req.RelationshipType,
		PersonalMessage:  req.PersonalMessage,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, guardian)
}

// Get returns the user's active guardian.
func (h *GuardianHandler) Get(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	guardian, err := h.guardians.Get(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, guardian)
}

// Delete removes the user's active guardian.
func (h *GuardianHandler) Delete(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	guardian, err := h.guardians.Get(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if err := h.guardians.Remove(c.Request.Context(), userID, guardian.ID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListRequests is the guardian dashboard feed: the requests addressed to a
// guardian email, optionally filtered by ?status=.
func (h *GuardianHandler) ListRequests(c *gin.Context) {
	email := c.Query("guardian_email")
	if email == "" {
		respondError(c, http.StatusBadRequest, "guardian_email is required")
		return
	}

	requests, err := h.gateway.ListForGuardian(c.Request.Context(), email, models.RequestStatus(c.Query("status")))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
		"count":    len(requests),
	})
}

// DecisionRequest is the payload for a guardian's ruling.
type DecisionRequest struct {
	GuardianEmail string `json:"guardian_email"`
	Decision      string `json:"decision"`
	Message       string `json:"message"`
}

// Decide resolves a pending unblock request.
func (h *GuardianHandler) Decide(c *gin.Context) {
	requestID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	request, err := h.gateway.Decide(c.Request.Context(), requestID, service.DecisionInput{
		GuardianEmail: req.GuardianEmail,
		Decision:      models.RequestStatus(req.Decision),
		Message:       req.Message,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, request)
}

// Stats returns a guardian's decision workload.
func (h *GuardianHandler) Stats(c *gin.Context) {
	email := c.Query("guardian_email")
	if email == "" {
		respondError(c, http.StatusBadRequest, "guardian_email is required")
		return
	}

	stats, err := h.stats.ForGuardian(c.Request.Context(), email)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
