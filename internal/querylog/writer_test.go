package querylog_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/intelsleuth/infrastructure/logger"
	"github.com/jonesrussell/intelsleuth/internal/querylog"
)

type memoryStore struct {
	mu      sync.Mutex
	entries []querylog.Entry
	err     error
	block   chan struct{}
}

func (s *memoryStore) Insert(_ context.Context, e querylog.Entry) (int64, error) {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.entries = append(s.entries, e)
	return int64(len(s.entries)), nil
}

func TestWriter_StopFlushesBufferedEntries(t *testing.T) {
	t.Parallel()

	store := &memoryStore{}
	w := querylog.NewWriter(store, 8, logger.NewNop())
	w.Start()

	for _, q := range []string{"a", "b", "c"} {
		assert.True(t, w.Record(querylog.Entry{QueryText: q}))
	}
	w.Stop()

	assert.Len(t, store.entries, 3)
	assert.Equal(t, "a", store.entries[0].QueryText)
	assert.False(t, w.Record(querylog.Entry{QueryText: "late"}))
}

func TestWriter_DropsWhenFull(t *testing.T) {
	t.Parallel()

	store := &memoryStore{block: make(chan struct{})}
	w := querylog.NewWriter(store, 1, logger.NewNop())
	// Not started: the single slot fills and the next entry is dropped.
	assert.True(t, w.Record(querylog.Entry{QueryText: "a"}))
	assert.False(t, w.Record(querylog.Entry{QueryText: "b"}))
	assert.Equal(t, int64(1), w.Dropped())

	close(store.block)
	w.Start()
	w.Stop()
	assert.Len(t, store.entries, 1)
}

func TestWriter_StoreFailureIsCounted(t *testing.T) {
	t.Parallel()

	store := &memoryStore{err: errors.New("connection refused")}
	w := querylog.NewWriter(store, 4, logger.NewNop())
	w.Start()

	w.Record(querylog.Entry{QueryText: "a"})
	w.Stop()

	assert.Equal(t, int64(1), w.Failed())
}
