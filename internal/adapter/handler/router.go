package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meetingnotes-team/meeting-notes/internal/infrastructure/http/middleware"
	"github.com/meetingnotes-team/meeting-notes/pkg/config"
	"github.com/meetingnotes-team/meeting-notes/pkg/jwt"
)

// Router holds all handlers
type Router struct {
	cfg              *config.Config
	analysisHandler  *Analysis
	recordingHandler *Recording
	jwtManager       *jwt.Manager
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, analysisHandler *Analysis, recordingHandler *Recording, jwtManager *jwt.Manager) *Router {
	return &Router{
		cfg:              cfg,
		analysisHandler:  analysisHandler,
		recordingHandler: recordingHandler,
		jwtManager:       jwtManager,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// Prometheus scrape endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// API v1 group
	v1 := e.Group("/v1")

	rt.setupAnalysisRoutes(v1)
	rt.setupRecordingRoutes(v1)
}

// setupAnalysisRoutes configures analysis routes
func (rt *Router) setupAnalysisRoutes(g *echo.Group) {
	analysisGroup := g.Group("/analyses")
	if rt.jwtManager != nil {
		analysisGroup.Use(middleware.EchoAuth(rt.jwtManager))
	}

	if rt.analysisHandler != nil {
		analysisGroup.POST("", rt.analysisHandler.Submit)
		analysisGroup.GET("/:id", rt.analysisHandler.GetStatus)
		analysisGroup.GET("/:id/report", rt.analysisHandler.GetReport)

		// Section catalog is public
		g.GET("/sections", rt.analysisHandler.ListSections)
	} else {
		analysisGroup.POST("", rt.notImplemented)
		analysisGroup.GET("/:id", rt.notImplemented)
		analysisGroup.GET("/:id/report", rt.notImplemented)
		g.GET("/sections", rt.notImplemented)
	}
}

// setupRecordingRoutes configures recording upload and listing routes
func (rt *Router) setupRecordingRoutes(g *echo.Group) {
	recordingGroup := g.Group("/recordings")
	if rt.jwtManager != nil {
		recordingGroup.Use(middleware.EchoAuth(rt.jwtManager))
	}

	if rt.recordingHandler != nil {
		recordingGroup.POST("", rt.recordingHandler.Upload)
		recordingGroup.GET("", rt.recordingHandler.List)
	} else {
		recordingGroup.POST("", rt.notImplemented)
		recordingGroup.GET("", rt.notImplemented)
	}
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, map[string]interface{}{
		"error":  "This endpoint is not yet implemented",
		"path":   c.Request().URL.Path,
		"method": c.Request().Method,
	})
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	env := "production"
	if rt.cfg != nil {
		env = rt.cfg.Server.Environment
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"time":        time.Now().Format(time.RFC3339),
		"environment": env,
	})
}
