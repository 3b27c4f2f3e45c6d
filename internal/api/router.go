package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RegisterRoutes registers all the routes for the analysis service.
// Metrics are served from gatherer when it is not nil.
func RegisterRoutes(router *gin.Engine, api *API, gatherer prometheus.Gatherer) {
	router.GET("/health", api.HealthHandler)
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/analyze", api.AnalyzeHandler)
		v1.GET("/runs", api.ListRunsHandler)
		v1.GET("/runs/:id/sections", api.RunSectionsHandler)
	}
}

// NewRouter builds a gin engine with recovery, request logging and the analysis routes
func NewRouter(api *API, gatherer prometheus.Gatherer) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(api.log))
	RegisterRoutes(router, api, gatherer)
	return router
}

// RequestLogger logs one line per request
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := log.Info()
		if c.Writer.Status() >= 500 {
			event = log.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
