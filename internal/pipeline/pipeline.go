// Package pipeline runs one search request through classification,
// collection, aggregation, summary and delivery.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/intelsleuth/infrastructure/logger"
	"github.com/jonesrussell/intelsleuth/internal/categorizer"
	"github.com/jonesrussell/intelsleuth/internal/classifier"
	"github.com/jonesrussell/intelsleuth/internal/delivery"
	"github.com/jonesrussell/intelsleuth/internal/domain"
	"github.com/jonesrussell/intelsleuth/internal/normalizer"
	"github.com/jonesrussell/intelsleuth/internal/orchestrator"
	"github.com/jonesrussell/intelsleuth/internal/querylog"
	"github.com/jonesrussell/intelsleuth/internal/report"
	"github.com/jonesrussell/intelsleuth/internal/summary"
)

// ErrEmptyQuery is the validation failure for blank input.
var ErrEmptyQuery = errors.New("query must not be empty")

// Collector fans a query out to sources.
type Collector interface {
	Run(ctx context.Context, q domain.Query, deadline time.Duration) orchestrator.Collection
}

// Deliverer posts the result body to a webhook.
type Deliverer interface {
	Deliver(ctx context.Context, body any, webhookURL string) delivery.Result
}

// QueryLog accepts entries without blocking.
type QueryLog interface {
	Record(e querylog.Entry) bool
}

// Metrics observes completed searches.
type Metrics interface {
	ObserveSearch(queryType string, discarded int, d time.Duration)
}

// Config tunes the pipeline.
type Config struct {
	// Deadline bounds the collection stage.
	Deadline time.Duration
	// PersistResults stores result records next to the query log entry.
	PersistResults bool
}

// Request is one search.
type Request struct {
	Query      string
	WebhookURL string
}

// Result is what a completed search produces.
type Result struct {
	Set      *domain.ResultSet
	Response report.Response
	Stages   []domain.Stage
}

// Service wires the pipeline stages.
type Service struct {
	collector  Collector
	normalizer *normalizer.Normalizer
	deliverer  Deliverer
	queryLog   QueryLog
	metrics    Metrics
	log        logger.Logger
	cfg        Config
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithQueryLog records every classified search in ql.
func WithQueryLog(ql QueryLog) Option { return func(s *Service) { s.queryLog = ql } }

// WithMetrics reports searches to m.
func WithMetrics(m Metrics) Option { return func(s *Service) { s.metrics = m } }

// WithNormalizer replaces the default dedup strategies.
func WithNormalizer(n *normalizer.Normalizer) Option { return func(s *Service) { s.normalizer = n } }

// New returns a Service.
func New(c Collector, d Deliverer, cfg Config, log logger.Logger, opts ...Option) *Service {
	if cfg.Deadline <= 0 {
		cfg.Deadline = orchestrator.DefaultDeadline
	}
	s := &Service{
		collector:  c,
		normalizer: normalizer.New(nil),
		deliverer:  d,
		log:        log,
		cfg:        cfg,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search runs req to completion. The only error is ErrEmptyQuery, returned
// before anything is dispatched or logged; source, delivery and storage
// failures are reported inside the Result.
func (s *Service) Search(ctx context.Context, req Request) (*Result, error) {
	start := s.now()
	lc := domain.NewLifecycle()
	requestID := uuid.NewString()
	log := s.log.With(logger.String("search_id", requestID))

	text := classifier.Sanitize(req.Query)
	if text == "" {
		s.advance(log, lc, domain.StageFailed)
		return nil, ErrEmptyQuery
	}

	q := classifier.Parse(text)
	s.advance(log, lc, domain.StageClassified)
	log.Info("Search classified",
		logger.String("query_type", string(q.Type)),
	)

	s.advance(log, lc, domain.StageDispatched)
	s.advance(log, lc, domain.StageCollecting)
	coll := s.collector.Run(ctx, q, s.cfg.Deadline)

	s.advance(log, lc, domain.StageAggregating)
	records, discarded := s.normalizer.Normalize(coll.Findings)
	categories := categorizer.Categorize(records)

	s.advance(log, lc, domain.StageSummarizing)
	rs := &domain.ResultSet{
		RequestID:   requestID,
		Query:       q,
		Categories:  categories,
		Summary:     summary.Synthesize(categories),
		GeneratedAt: s.now().UTC(),
		Failures:    coll.Failures,
		Discarded:   discarded,
	}
	body := report.FromResult(rs)

	s.advance(log, lc, domain.StageDelivering)
	// Delivery outlives a disconnected caller; it has its own timeout.
	delivered := s.deliverer.Deliver(context.WithoutCancel(ctx), body, req.WebhookURL)
	rs.Delivery = delivered.Outcome
	body.Delivery = string(delivered.Outcome)

	s.record(log, rs)
	s.advance(log, lc, domain.StageComplete)

	elapsed := s.now().Sub(start)
	if s.metrics != nil {
		s.metrics.ObserveSearch(string(q.Type), discarded, elapsed)
	}
	log.Info("Search complete",
		logger.String("query_type", string(q.Type)),
		logger.Int("records", rs.Count()),
		logger.Int("discarded", discarded),
		logger.Int("failed_sources", len(coll.Failures)),
		logger.String("delivery", string(rs.Delivery)),
		logger.Duration("took", elapsed),
	)

	return &Result{Set: rs, Response: body, Stages: lc.History()}, nil
}

func (s *Service) advance(log logger.Logger, lc *domain.Lifecycle, to domain.Stage) {
	if err := lc.Advance(to); err != nil {
		// Stage order is fixed in Search, so this is a programming error.
		log.Error("Lifecycle violation", logger.Error(err))
		return
	}
	log.Debug("Search stage", logger.String("stage", string(to)))
}

func (s *Service) record(log logger.Logger, rs *domain.ResultSet) {
	if s.queryLog == nil {
		return
	}
	entry := querylog.Entry{
		QueryText: rs.Query.Text,
		QueryType: string(rs.Query.Type),
		Timestamp: rs.GeneratedAt,
	}
	if s.cfg.PersistResults {
		results, err := resultRows(rs)
		if err != nil {
			log.Warn("Result rows not persisted", logger.Error(err))
		} else {
			entry.Results = results
		}
	}
	s.queryLog.Record(entry)
}

func resultRows(rs *domain.ResultSet) ([]querylog.Result, error) {
	rows := make([]querylog.Result, 0, rs.Count())
	for _, c := range domain.Categories {
		for _, r := range rs.Categories[c] {
			item := report.NewItem(r)
			data, err := json.Marshal(item)
			if err != nil {
				return nil, fmt.Errorf("encode %s record: %w", c, err)
			}
			rows = append(rows, querylog.Result{Category: string(c), Source: item.Source, Data: data})
		}
	}
	return rows, nil
}
