package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/charity-events/backend/internal/activities"
	"github.com/charity-events/backend/internal/analytics"
	"github.com/charity-events/backend/internal/categories"
	"github.com/charity-events/backend/internal/exports"
	"github.com/charity-events/backend/internal/middleware"
	"github.com/charity-events/backend/internal/realtime"
	"github.com/charity-events/backend/internal/registrations"
	"github.com/charity-events/backend/pkg/response"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// routes holds every handler the HTTP API exposes.
type routes struct {
	activities    *activities.Handler
	categories    *categories.Handler
	registrations *registrations.Handler
	analytics     *analytics.Handler
	exports       *exports.Handler
	hub           *realtime.Hub
	db            Pinger
	corsOrigins   string
	tracing       string // service name; empty disables otelgin
}

func newRouter(rt routes, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if rt.tracing != "" {
		router.Use(otelgin.Middleware(rt.tracing))
	}
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(rt.corsOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })
	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := rt.db.Ping(ctx); err != nil {
			logger.Warn("readiness check failed", zap.Error(err))
			response.ServiceUnavailable(c, "database unavailable")
			return
		}
		response.OK(c, gin.H{"status": "ready"})
	})

	api := router.Group("/api")
	{
		api.GET("/activities", rt.activities.List)
		api.POST("/activities", rt.activities.Create)
		api.GET("/activities/:id", rt.activities.Get)
		api.PUT("/activities/:id", rt.activities.Update)
		api.DELETE("/activities/:id", rt.activities.Delete)
		api.POST("/activities/:id/registrations/export", rt.exports.ExportRegistrations)

		api.GET("/categories", rt.categories.List)

		api.GET("/registrations", rt.registrations.List)
		api.POST("/registrations", rt.registrations.Create)
		api.DELETE("/registrations/:id", rt.registrations.Delete)

		api.GET("/stats", rt.analytics.Stats)

		api.GET("/live", realtime.ServeWs(rt.hub, logger))
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, response.Body{Success: false, Error: "route not found"})
	})
	return router
}
