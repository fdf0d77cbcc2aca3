package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServerHandlers bundles the handlers mounted on the API server.
type ServerHandlers struct {
	Contacts  *ContactHandler
	Guardians *GuardianHandler
	Flows     *FlowHandler
	Stats     *StatsHandler
	Health    *HealthHandler
}

// NewServerRouter builds the API server's route tree. Everything under
// /api/v1 sits behind the given auth middleware; health and metrics stay
// open for probes and scrapers.
func NewServerRouter(h ServerHandlers, middlewares ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", h.Health.LivenessProbe)
	router.GET("/health/ready", h.Health.ReadinessProbe)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1", middlewares...)
	{
		api.POST("/contacts", h.Contacts.Create)
		api.GET("/contacts", h.Contacts.List)
		api.GET("/contacts/:id", h.Contacts.Get)
		api.PUT("/contacts/:id", h.Contacts.Update)
		api.DELETE("/contacts/:id", h.Contacts.Delete)
		api.POST("/contacts/:id/unblock-flow", h.Flows.Begin)

		api.PUT("/guardian", h.Guardians.Set)
		api.GET("/guardian", h.Guardians.Get)
		api.DELETE("/guardian", h.Guardians.Delete)
		api.GET("/guardian/requests", h.Guardians.ListRequests)
		api.POST("/guardian/requests/:id/decision", h.Guardians.Decide)
		api.GET("/guardian/stats", h.Guardians.Stats)

		api.GET("/unblock-flow/:sessionID", h.Flows.Get)
		api.POST("/unblock-flow/:sessionID", h.Flows.StartReflection)
		api.POST("/unblock-flow/:sessionID/submit", h.Flows.Submit)
		api.DELETE("/unblock-flow/:sessionID", h.Flows.Abandon)
		api.GET("/unblock-requests", h.Flows.ListRequests)

		api.GET("/stats", h.Stats.UserStats)
	}

	return router
}

// NewAgentRouter builds the sync agent's route tree. The agent binds to the
// device loopback interface, so its endpoints carry no API-key auth.
func NewAgentRouter(agent *AgentHandler, health *HealthHandler, middlewares ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middlewares...)

	router.GET("/health", health.LivenessProbe)
	router.GET("/health/ready", health.ReadinessProbe)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/sync", agent.Sync)
	router.POST("/screen/call", agent.ScreenCall)
	router.POST("/screen/message", agent.ScreenMessage)
	router.GET("/blocked-calls", agent.BlockedCalls)
	router.GET("/blocked-messages", agent.BlockedMessages)

	return router
}
