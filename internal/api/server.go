package api

import (
	"time"

	"github.com/gin-gonic/gin"

	infragin "github.com/jonesrussell/intelsleuth/infrastructure/gin"
	"github.com/jonesrussell/intelsleuth/infrastructure/logger"
	"github.com/jonesrussell/intelsleuth/internal/config"
)

const (
	defaultReadTimeout = 10 * time.Second
	defaultIdleTimeout = 60 * time.Second
	// writeTimeoutSlack leaves room for delivery after collection ends.
	writeTimeoutSlack = 45 * time.Second
)

// ServerDeps are the collaborators the HTTP server needs.
type ServerDeps struct {
	Handler      *Handler
	Routes       RouteOptions
	HealthChecks map[string]infragin.HealthChecker
}

// NewServer creates a new HTTP server.
func NewServer(cfg *config.Config, deps ServerDeps, log logger.Logger) *infragin.Server {
	b := infragin.NewServerBuilder(cfg.Service.Name, cfg.Service.Port).
		WithLogger(log).
		WithDebug(cfg.Service.Debug).
		WithVersion(cfg.Service.Version).
		WithTimeouts(defaultReadTimeout, cfg.Service.SearchDeadline+writeTimeoutSlack, defaultIdleTimeout).
		WithCORSOrigins(cfg.Service.CORSOrigins).
		WithRoutes(func(router *gin.Engine) {
			SetupRoutes(router, deps.Handler, deps.Routes)
		})
	for name, check := range deps.HealthChecks {
		b = b.WithHealthCheck(name, check)
	}
	return b.Build()
}
