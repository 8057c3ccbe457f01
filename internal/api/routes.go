package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RouteOptions are the optional pieces of the route table.
type RouteOptions struct {
	// RateLimit guards /search and /api.
	RateLimit gin.HandlerFunc
	// Instrument records request metrics for every route below it.
	Instrument gin.HandlerFunc
	// Metrics serves /metrics.
	Metrics http.Handler
}

// SetupRoutes configures all routes. Health routes are registered by the
// infrastructure gin builder.
func SetupRoutes(router *gin.Engine, h *Handler, opts RouteOptions) {
	router.SetHTMLTemplate(Templates())
	if opts.Instrument != nil {
		router.Use(opts.Instrument)
	}

	router.GET("/", h.Index)
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	limited := router.Group("")
	if opts.RateLimit != nil {
		limited.Use(opts.RateLimit)
	}
	limited.POST("/search", h.Search)

	api := limited.Group("/api")
	api.GET("/search", h.APISearch)
	api.GET("/extract-content", h.ExtractContent)
	if h.queries != nil {
		api.GET("/queries", h.RecentQueries)
	}
}
