package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/interview-coach/internal/infrastructure/metrics"
	"github.com/johnquangdev/interview-coach/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg              *config.Config
	metrics          *metrics.Metrics
	interviewHandler *Interview
	sessionHandler   *Session
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, m *metrics.Metrics, interviewHandler *Interview, sessionHandler *Session) *Router {
	return &Router{
		cfg:              cfg,
		metrics:          m,
		interviewHandler: interviewHandler,
		sessionHandler:   sessionHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)
	if rt.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(rt.metrics.Handler()))
	}

	// API v1 group
	v1 := e.Group("/v1")

	rt.setupInterviewRoutes(v1)
	rt.setupSessionRoutes(v1)
}

// setupInterviewRoutes configures interview routes
func (rt *Router) setupInterviewRoutes(g *echo.Group) {
	interviewGroup := g.Group("/interviews")

	if rt.interviewHandler != nil {
		interviewGroup.POST("/complete", rt.interviewHandler.Complete)
		interviewGroup.GET("/:id", rt.interviewHandler.GetInterview)
		interviewGroup.PUT("/:id/context", rt.interviewHandler.StageContext)
	} else {
		interviewGroup.POST("/complete", rt.notImplemented)
		interviewGroup.GET("/:id", rt.notImplemented)
		interviewGroup.PUT("/:id/context", rt.notImplemented)
	}
}

// setupSessionRoutes configures live session routes
func (rt *Router) setupSessionRoutes(g *echo.Group) {
	sessionGroup := g.Group("/sessions")

	if rt.sessionHandler != nil {
		sessionGroup.GET("/ws", rt.sessionHandler.Connect)
	} else {
		sessionGroup.GET("/ws", rt.notImplemented)
	}
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, map[string]interface{}{
		"error":   "This endpoint is not yet implemented",
		"path":    c.Request().URL.Path,
		"method":  c.Request().Method,
		"message": "Please initialize the required handler in main.go",
	})
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	environment := "development"
	if rt.cfg != nil {
		environment = rt.cfg.Server.Environment
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"time":        time.Now().UTC().Format(time.RFC3339),
		"environment": environment,
	})
}
