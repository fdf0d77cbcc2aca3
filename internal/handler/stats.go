package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shush-app/guarded-blocking-go/internal/service"
)

// StatsHandler serves the user dashboard statistics.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler creates a new StatsHandler instance.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// UserStats returns the acting user's block and request statistics.
func (h *StatsHandler) UserStats(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	stats, err := h.stats.ForUser(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
