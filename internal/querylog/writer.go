package querylog

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonesrussell/intelsleuth/infrastructure/logger"
)

// Writer defaults.
const (
	DefaultBufferSize   = 256
	DefaultWriteTimeout = 5 * time.Second
)

// Store persists entries.
type Store interface {
	Insert(ctx context.Context, e Entry) (int64, error)
}

// Writer hands entries to a background goroutine so callers never wait on
// the database. Entries that do not fit in the buffer are dropped and
// logged; write failures are logged only.
type Writer struct {
	store        Store
	log          logger.Logger
	entries      chan Entry
	closed       chan struct{}
	once         sync.Once
	wg           sync.WaitGroup
	writeTimeout time.Duration
	dropped      atomic.Int64
	failed       atomic.Int64
}

// NewWriter returns a Writer over store with room for bufferSize pending
// entries. Call Start before Record.
func NewWriter(store Store, bufferSize int, log logger.Logger) *Writer {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Writer{
		store:        store,
		log:          log,
		entries:      make(chan Entry, bufferSize),
		closed:       make(chan struct{}),
		writeTimeout: DefaultWriteTimeout,
	}
}

// Start launches the write loop.
func (w *Writer) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop stops accepting entries, writes those already buffered and waits
// for the loop to finish. It is safe to call more than once.
func (w *Writer) Stop() {
	w.once.Do(func() { close(w.closed) })
	w.wg.Wait()
}

// Record queues e without blocking. It reports false when e was dropped.
func (w *Writer) Record(e Entry) bool {
	select {
	case <-w.closed:
		w.dropped.Add(1)
		return false
	default:
	}
	select {
	case w.entries <- e:
		return true
	default:
		w.dropped.Add(1)
		w.log.Warn("Query log buffer full, dropping entry",
			logger.String("query_type", e.QueryType),
		)
		return false
	}
}

// Dropped returns the number of entries never handed to the store.
func (w *Writer) Dropped() int64 { return w.dropped.Load() }

// Failed returns the number of entries the store rejected.
func (w *Writer) Failed() int64 { return w.failed.Load() }

func (w *Writer) loop() {
	defer w.wg.Done()
	for {
		select {
		case e := <-w.entries:
			w.write(e)
		case <-w.closed:
			for {
				select {
				case e := <-w.entries:
					w.write(e)
				default:
					return
				}
			}
		}
	}
}

func (w *Writer) write(e Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), w.writeTimeout)
	defer cancel()

	id, err := w.store.Insert(ctx, e)
	if err != nil {
		w.failed.Add(1)
		w.log.Error("Failed to write query log",
			logger.String("query_type", e.QueryType),
			logger.Int("results", len(e.Results)),
			logger.Error(err),
		)
		return
	}
	w.log.Debug("Query logged",
		logger.Int64("query_id", id),
		logger.Int("results", len(e.Results)),
	)
}
