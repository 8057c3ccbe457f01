package hibp_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/intelsleuth/infrastructure/logger"
	"github.com/jonesrussell/intelsleuth/internal/collector"
	"github.com/jonesrussell/intelsleuth/internal/collector/hibp"
	"github.com/jonesrussell/intelsleuth/internal/domain"
)

var query = domain.Query{Type: domain.QueryTypeEmail, Term: "a@x.com"}

func newCollector(t *testing.T, handler http.HandlerFunc) *hibp.Collector {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	// The default burst lets each test request through immediately.
	return hibp.New("key", srv.URL, srv.Client(), collector.FetcherConfig{RequestsPerSecond: 0.1}, logger.NewNop())
}

func TestCollect_Breaches(t *testing.T) {
	t.Parallel()

	c := newCollector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/breachedaccount/a@x.com", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("hibp-api-key"))
		_, _ = w.Write([]byte(`[{"Name":"Adobe","Title":"Adobe","Domain":"adobe.com","BreachDate":"2013-10-04","PwnCount":152445165,"DataClasses":["Email addresses","Passwords"],"Description":"In October 2013..."}]`))
	})

	findings, err := c.Collect(context.Background(), query)
	require.NoError(t, err)
	require.Len(t, findings, 1)

	f := findings[0]
	assert.Equal(t, domain.CategoryBreachData, f.CategoryHint)
	assert.Equal(t, "Adobe", f.Title)
	assert.Contains(t, f.Content.Items, "Records Exposed: 152445165")
	assert.Contains(t, f.Content.Items, "Data Compromised: Email addresses, Passwords")
}

func TestCollect_NotFoundMeansNoBreaches(t *testing.T) {
	t.Parallel()

	c := newCollector(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	findings, err := c.Collect(context.Background(), query)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestCollect_RateLimitedIsCollectorError(t *testing.T) {
	t.Parallel()

	c := newCollector(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Collect(context.Background(), query)

	var ce *collector.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, hibp.SourceID, ce.SourceID)
}
