package bootstrap

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	infragin "github.com/jonesrussell/intelsleuth/infrastructure/gin"
	"github.com/jonesrussell/intelsleuth/infrastructure/logger"
	"github.com/jonesrussell/intelsleuth/internal/api"
	"github.com/jonesrussell/intelsleuth/internal/collector"
	"github.com/jonesrussell/intelsleuth/internal/config"
	"github.com/jonesrussell/intelsleuth/internal/delivery"
	"github.com/jonesrussell/intelsleuth/internal/extract"
	"github.com/jonesrussell/intelsleuth/internal/metrics"
	"github.com/jonesrussell/intelsleuth/internal/orchestrator"
	"github.com/jonesrussell/intelsleuth/internal/pipeline"
	"github.com/jonesrussell/intelsleuth/internal/ratelimit"
)

const healthPingTimeout = 2 * time.Second

// Search is a ready-to-use search service and the resources behind it.
type Search struct {
	Service  *pipeline.Service
	Clients  Clients
	QueryLog *QueryLog
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
}

// Close releases the query log.
func (s *Search) Close() {
	if s.QueryLog != nil {
		s.QueryLog.Close()
	}
}

// NewSearch builds the pipeline: collectors, orchestrator, delivery,
// metrics and the optional query log.
func NewSearch(ctx context.Context, cfg *config.Config, log logger.Logger) (*Search, error) {
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(promReg)

	ql, err := SetupQueryLog(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	clients := NewClients(cfg)
	orch := orchestrator.New(NewRegistry(cfg, clients, log), log, orchestrator.WithMetrics(m))
	deliverer := delivery.New(clients.Default, delivery.Config{
		DefaultURL:     cfg.Webhook.DefaultURL,
		Timeout:        cfg.Webhook.Timeout,
		MaxAttempts:    cfg.Webhook.MaxAttempts,
		InitialBackoff: cfg.Webhook.InitialBackoff,
		UserAgent:      cfg.Service.UserAgent,
	}, log, m)

	opts := []pipeline.Option{pipeline.WithMetrics(m)}
	if ql != nil {
		opts = append(opts, pipeline.WithQueryLog(ql.Writer))
	}
	svc := pipeline.New(orch, deliverer, pipeline.Config{
		Deadline:       cfg.Service.SearchDeadline,
		PersistResults: cfg.Database.PersistResults,
	}, log, opts...)

	return &Search{Service: svc, Clients: clients, QueryLog: ql, Metrics: m, Registry: promReg}, nil
}

// HTTP is the assembled web service.
type HTTP struct {
	Search *Search
	Server *infragin.Server
	close  func()
}

// Close releases everything NewHTTP opened.
func (h *HTTP) Close() {
	h.close()
	h.Search.Close()
}

// NewHTTP builds the search service and the HTTP server in front of it.
func NewHTTP(ctx context.Context, cfg *config.Config, log logger.Logger) (*HTTP, error) {
	search, err := NewSearch(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	fetchCfg := collector.FetcherConfig{UserAgent: cfg.Service.UserAgent}
	extractor := extract.New(search.Clients.Default, fetchCfg, log)

	var lister api.QueryLister
	checks := map[string]infragin.HealthChecker{}
	if search.QueryLog != nil {
		lister = search.QueryLog.Repository
		repo := search.QueryLog.Repository
		checks["database"] = infragin.PingChecker(func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), healthPingTimeout)
			defer cancel()
			return repo.Ping(pingCtx)
		}, infragin.HealthStatusDegraded)
	}

	limiter, closeLimiter := SetupRateLimiter(ctx, cfg, log)
	deps := api.ServerDeps{
		Handler: api.NewHandler(search.Service, extractor, lister, log),
		Routes: api.RouteOptions{
			Instrument: search.Metrics.HTTPMiddleware(),
			Metrics:    promhttp.HandlerFor(search.Registry, promhttp.HandlerOpts{}),
		},
		HealthChecks: checks,
	}
	if limiter != nil {
		deps.Routes.RateLimit = ratelimit.Middleware(limiter, log, search.Metrics.RateLimited)
	}

	return &HTTP{
		Search: search,
		Server: api.NewServer(cfg, deps, log),
		close:  closeLimiter,
	}, nil
}
