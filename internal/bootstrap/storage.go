package bootstrap

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jonesrussell/intelsleuth/infrastructure/logger"
	infraredis "github.com/jonesrussell/intelsleuth/infrastructure/redis"
	"github.com/jonesrussell/intelsleuth/internal/config"
	"github.com/jonesrussell/intelsleuth/internal/querylog"
	"github.com/jonesrussell/intelsleuth/internal/ratelimit"
)

// QueryLog is the optional PostgreSQL query log.
type QueryLog struct {
	DB         *sqlx.DB
	Repository *querylog.Repository
	Writer     *querylog.Writer
}

// Close drains pending entries and closes the database.
func (q *QueryLog) Close() {
	q.Writer.Stop()
	_ = q.DB.Close()
}

// SetupQueryLog connects to PostgreSQL and starts the background writer.
// It returns nil when the query log is disabled.
func SetupQueryLog(ctx context.Context, cfg *config.Config, log logger.Logger) (*QueryLog, error) {
	if !cfg.Database.Enabled {
		log.Info("Query log disabled")
		return nil, nil
	}

	db, err := querylog.Open(ctx, cfg.Database.Connection())
	if err != nil {
		return nil, fmt.Errorf("setup query log: %w", err)
	}
	log.Info("Database connected",
		logger.String("host", cfg.Database.Host),
		logger.Int("port", cfg.Database.Port),
		logger.String("database", cfg.Database.Database),
	)

	repo := querylog.NewRepository(db)
	w := querylog.NewWriter(repo, cfg.Database.BufferSize, log)
	w.Start()
	return &QueryLog{DB: db, Repository: repo, Writer: w}, nil
}

// SetupRateLimiter returns the shared Redis limiter when Redis is enabled
// and reachable, the in-process limiter otherwise, and nil when rate
// limiting is off. The returned close func is never nil.
func SetupRateLimiter(ctx context.Context, cfg *config.Config, log logger.Logger) (ratelimit.Limiter, func()) {
	noop := func() {}
	if !cfg.RateLimit.Enabled {
		return nil, noop
	}

	rl := cfg.RateLimit
	if cfg.Redis.Enabled {
		client, err := infraredis.NewClient(ctx, cfg.Redis)
		if err == nil {
			log.Info("Rate limiting via Redis",
				logger.String("address", cfg.Redis.Address),
				logger.Int("requests_per_window", rl.RequestsPerMinute),
			)
			return ratelimit.NewRedisLimiter(client, rl.RequestsPerMinute, rl.Window), closeRedis(client)
		}
		log.Warn("Redis unavailable, rate limiting per process", logger.Error(err))
	}

	log.Info("Rate limiting in memory", logger.Int("requests_per_window", rl.RequestsPerMinute))
	return ratelimit.NewMemoryLimiter(rl.RequestsPerMinute, rl.Window), noop
}

func closeRedis(c *goredis.Client) func() {
	return func() { _ = c.Close() }
}
