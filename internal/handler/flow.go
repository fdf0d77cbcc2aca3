package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shush-app/guarded-blocking-go/internal/db/models"
	"github.com/shush-app/guarded-blocking-go/internal/service"
)

// FlowHandler handles the guided unblock flow endpoints.
type FlowHandler struct {
	flow    *service.FlowService
	gateway *service.DecisionGateway
}

// NewFlowHandler creates a new FlowHandler instance.
func NewFlowHandler(flow *service.FlowService, gateway *service.DecisionGateway) *FlowHandler {
	return &FlowHandler{
		flow:    flow,
		gateway: gateway,
	}
}

type flowSessionResponse struct {
	*service.FlowSession
	CoolingOffRemaining string `json:"cooling_off_remaining"`
}

func sessionResponse(session *service.FlowSession) flowSessionResponse {
	return flowSessionResponse{
		FlowSession:         session,
		CoolingOffRemaining: session.Remaining(time.Now()).Round(time.Second).String(),
	}
}

// Begin starts an unblock flow session for a blocked contact.
func (h *FlowHandler) Begin(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	contactID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	session, err := h.flow.Begin(c.Request.Context(), userID, contactID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sessionResponse(session))
}

// Get returns the state of an in-progress session, including the remaining
// cooling-off time.
func (h *FlowHandler) Get(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	sessionID, ok := pathUUID(c, "sessionID")
	if !ok {
		return
	}

	session, err := h.flow.Get(userID, sessionID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse(session))
}

// StartReflection advances a session out of cooling-off.
func (h *FlowHandler) StartReflection(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	sessionID, ok := pathUUID(c, "sessionID")
	if !ok {
		return
	}

	session, err := h.flow.StartReflection(userID, sessionID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse(session))
}

// SubmitRequest is the payload completing the reflection step.
type SubmitRequest struct {
	Mood              string `json:"mood"`
	JournalEntry      string `json:"journal_entry"`
	AdditionalContext string `json:"additional_context"`
	Urgency           string `json:"urgency"`
}

// Submit turns a session into a pending unblock request.
func (h *FlowHandler) Submit(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	sessionID, ok := pathUUID(c, "sessionID")
	if !ok {
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	request, err := h.flow.Submit(c.Request.Context(), userID, sessionID, service.SubmitInput{
		Mood:              models.Mood(req.Mood),
		JournalEntry:      req.JournalEntry,
		AdditionalContext: req.AdditionalContext,
		Urgency:           models.Urgency(req.Urgency),
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, request)
}

// Abandon discards a session.
func (h *FlowHandler) Abandon(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	sessionID, ok := pathUUID(c, "sessionID")
	if !ok {
		return
	}

	if err := h.flow.Abandon(userID, sessionID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListRequests returns the user's unblock request history.
func (h *FlowHandler) ListRequests(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	requests, err := h.gateway.ListByUser(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
		"count":    len(requests),
	})
}
