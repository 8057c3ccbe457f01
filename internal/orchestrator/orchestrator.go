// Package orchestrator fans a classified query out to the applicable
// collectors and gathers whatever they return before a shared deadline.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonesrussell/intelsleuth/infrastructure/logger"
	"github.com/jonesrussell/intelsleuth/internal/collector"
	"github.com/jonesrussell/intelsleuth/internal/domain"
)

// Collector call outcomes, as reported to Metrics.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
)

// DefaultDeadline bounds collection when the caller passes no deadline.
const DefaultDeadline = 20 * time.Second

// Metrics receives one observation per dispatched collector.
type Metrics interface {
	ObserveCollector(source, outcome string, findings int, d time.Duration)
}

// Collection is the fan-in result.
//
// Findings are ordered by collector registration order, then by each
// collector's own emission order.
type Collection struct {
	Dispatched []string
	Findings   []domain.RawFinding
	Failures   []domain.CollectorFailure
	Elapsed    time.Duration
}

// Orchestrator runs collectors from a registry.
type Orchestrator struct {
	registry *collector.Registry
	log      logger.Logger
	metrics  Metrics
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMetrics reports per-collector observations to m.
func WithMetrics(m Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// New returns an Orchestrator over registry.
func New(registry *collector.Registry, log logger.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{registry: registry, log: log}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// slot is written by exactly one collector goroutine.
type slot struct {
	findings []domain.RawFinding
	err      *collector.Error
	took     time.Duration
}

// Run dispatches q to every applicable collector and waits for all of them
// or for deadline, whichever comes first. Collectors still running at the
// deadline are abandoned and anything they return later is discarded.
// Failures are recorded in the Collection and never returned as an error.
func (o *Orchestrator) Run(ctx context.Context, q domain.Query, deadline time.Duration) Collection {
	if deadline <= 0 {
		deadline = DefaultDeadline
	}
	start := time.Now()

	selected := o.registry.Select(q.Type)
	coll := Collection{Dispatched: make([]string, len(selected))}
	for i, c := range selected {
		i, c := i, c
		coll.Dispatched[i] = c.Name()
	}
	if len(selected) == 0 {
		return coll
	}

	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	// Each collector delivers into its own buffered channel, so an
	// abandoned goroutine can always finish its send and exit.
	results := make([]chan slot, len(selected))
	var g errgroup.Group
	for i, c := range selected {
		i, c := i, c
		results[i] = make(chan slot, 1)
		g.Go(func() error {
			results[i] <- o.invoke(ctx, c, q)
			return nil
		})
	}

	allDone := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(allDone)
	}()

	select {
	case <-allDone:
	case <-ctx.Done():
	}

	for i, c := range selected {
		i, c := i, c
		var s slot
		select {
		case s = <-results[i]:
		default:
			s = slot{err: &collector.Error{
				SourceID: c.Name(),
				Reason:   fmt.Sprintf("abandoned after %v", deadline),
				Err:      collector.ErrTimeout,
			}, took: time.Since(start)}
		}
		o.record(&coll, c.Name(), s)
	}

	coll.Elapsed = time.Since(start)
	return coll
}

// invoke runs one collector, converting panics and post-deadline returns
// into failures.
func (o *Orchestrator) invoke(ctx context.Context, c collector.Collector, q domain.Query) (s slot) {
	start := time.Now()
	defer func() {
		s.took = time.Since(start)
		if rec := recover(); rec != nil {
			s = slot{err: collector.Errorf(c.Name(), "panic: %v", rec), took: s.took}
		}
	}()

	findings, err := c.Collect(ctx, q)
	if ctx.Err() != nil {
		// Finished after the deadline: the result no longer counts.
		return slot{err: &collector.Error{SourceID: c.Name(), Reason: "deadline exceeded", Err: collector.ErrTimeout}}
	}
	if err != nil {
		return slot{err: collector.NewError(c.Name(), err)}
	}
	return slot{findings: findings}
}

func (o *Orchestrator) record(coll *Collection, source string, s slot) {
	outcome := OutcomeSuccess
	switch {
	case s.err != nil && s.err.Timeout():
		outcome = OutcomeTimeout
	case s.err != nil:
		outcome = OutcomeError
	}

	if o.metrics != nil {
		o.metrics.ObserveCollector(source, outcome, len(s.findings), s.took)
	}

	if s.err != nil {
		coll.Failures = append(coll.Failures, domain.CollectorFailure{
			SourceID: source,
			Reason:   s.err.Reason,
			Timeout:  outcome == OutcomeTimeout,
		})
		o.log.Warn("Collector failed",
			logger.String("source", source),
			logger.String("outcome", outcome),
			logger.String("reason", s.err.Reason),
			logger.Duration("took", s.took),
		)
		return
	}

	for _, f := range s.findings {
		if f.SourceID == "" {
			f.SourceID = source
		}
		coll.Findings = append(coll.Findings, f)
	}
	o.log.Debug("Collector finished",
		logger.String("source", source),
		logger.Int("findings", len(s.findings)),
		logger.Duration("took", s.took),
	)
}
