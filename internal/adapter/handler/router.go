package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/meetai-dev/meetai-backend/internal/infrastructure/http/middleware"
	"github.com/meetai-dev/meetai-backend/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg            *config.Config
	webhookHandler *Webhook
	agentHandler   *Agent
	meetingHandler *Meeting
	authHandler    *Auth
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter creates a new router with all handlers
func NewRouter(
	cfg *config.Config,
	webhookHandler *Webhook,
	agentHandler *Agent,
	meetingHandler *Meeting,
	authHandler *Auth,
	authMiddleware *middleware.AuthMiddleware,
) *Router {
	return &Router{
		cfg:            cfg,
		webhookHandler: webhookHandler,
		agentHandler:   agentHandler,
		meetingHandler: meetingHandler,
		authHandler:    authHandler,
		authMiddleware: authMiddleware,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// Provider webhook endpoint. Lives at the root because the delivery URL
	// is registered with the provider, and authenticates with HMAC
	// signatures, not user tokens.
	e.POST("/webhook", rt.webhookHandler.Handle)

	// API v1 group
	v1 := e.Group("/v1")

	rt.setupAuthRoutes(v1)
	rt.setupAgentRoutes(v1)
	rt.setupMeetingRoutes(v1)
}

// setupAuthRoutes configures token routes. Refresh authenticates with the
// refresh token itself, so it sits outside the auth middleware.
func (rt *Router) setupAuthRoutes(g *echo.Group) {
	g.POST("/auth/refresh", rt.authHandler.Refresh)
}

// setupAgentRoutes configures agent management routes
func (rt *Router) setupAgentRoutes(g *echo.Group) {
	agentGroup := g.Group("/agents", rt.authMiddleware.Authenticate)

	agentGroup.POST("", rt.agentHandler.Create)
	agentGroup.GET("", rt.agentHandler.List)
	agentGroup.GET("/:id", rt.agentHandler.Get)
	agentGroup.PATCH("/:id", rt.agentHandler.Update)
	agentGroup.DELETE("/:id", rt.agentHandler.Delete)
}

// setupMeetingRoutes configures meeting management routes
func (rt *Router) setupMeetingRoutes(g *echo.Group) {
	meetingGroup := g.Group("/meetings", rt.authMiddleware.Authenticate)

	meetingGroup.POST("", rt.meetingHandler.Create)
	meetingGroup.GET("", rt.meetingHandler.List)
	meetingGroup.POST("/token", rt.meetingHandler.JoinToken)
	meetingGroup.GET("/:id", rt.meetingHandler.Get)
	meetingGroup.PATCH("/:id", rt.meetingHandler.Update)
	meetingGroup.POST("/:id/cancel", rt.meetingHandler.Cancel)
	meetingGroup.DELETE("/:id", rt.meetingHandler.Delete)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
