package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shush-app/guarded-blocking-go/internal/localstore"
	"github.com/shush-app/guarded-blocking-go/internal/screening"
	"github.com/shush-app/guarded-blocking-go/internal/service"
)

// AgentHandler is the device-side HTTP surface: on-demand sync, call and
// message screening, and the audit logs of what screening intercepted.
type AgentHandler struct {
	engine   *service.SyncEngine
	screener *screening.Screener
	store    *localstore.Store
}

// NewAgentHandler creates a new AgentHandler instance.
func NewAgentHandler(engine *service.SyncEngine, screener *screening.Screener, store *localstore.Store) *AgentHandler {
	return &AgentHandler{
		engine:   engine,
		screener: screener,
		store:    store,
	}
}

// Sync triggers a reconciliation run, typically on app foreground. A run
// already in flight yields 409 and no queued work.
func (h *AgentHandler) Sync(c *gin.Context) {
	stats, err := h.engine.Run(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ScreenRequest carries an incoming call or message to screen.
type ScreenRequest struct {
	Phone string `json:"phone"`
	Body  string `json:"body"`
}

// ScreenCall screens an incoming call against the local block list.
func (h *AgentHandler) ScreenCall(c *gin.Context) {
	var req ScreenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	if req.Phone == "" {
		respondError(c, http.StatusBadRequest, "phone is required")
		return
	}

	verdict, err := h.screener.ScreenCall(c.Request.Context(), req.Phone)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, verdict)
}

// ScreenMessage screens an incoming message against the local block list.
func (h *AgentHandler) ScreenMessage(c *gin.Context) {
	var req ScreenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	if req.Phone == "" {
		respondError(c, http.StatusBadRequest, "phone is required")
		return
	}

	verdict, err := h.screener.ScreenMessage(c.Request.Context(), req.Phone, req.Body)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, verdict)
}

// BlockedCalls lists the intercepted-call log, oldest first.
func (h *AgentHandler) BlockedCalls(c *gin.Context) {
	calls, err := h.store.ListBlockedCalls(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"calls": calls,
		"count": len(calls),
	})
}

// BlockedMessages lists the withheld-message audit log, oldest first.
func (h *AgentHandler) BlockedMessages(c *gin.Context) {
	messages, err := h.store.ListBlockedMessages(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"count":    len(messages),
	})
}
