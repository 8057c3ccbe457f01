package collector_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infraerrors "github.com/jonesrussell/intelsleuth/infrastructure/errors"
	infrahttp "github.com/jonesrussell/intelsleuth/infrastructure/http"
	"github.com/jonesrussell/intelsleuth/infrastructure/logger"
	"github.com/jonesrussell/intelsleuth/internal/collector"
	"github.com/jonesrussell/intelsleuth/internal/domain"
)

type stubCollector struct {
	name  string
	types collector.TypeSet
}

func (s stubCollector) Name() string                       { return s.name }
func (s stubCollector) Applicable(t domain.QueryType) bool { return s.types.Has(t) }
func (s stubCollector) Collect(context.Context, domain.Query) ([]domain.RawFinding, error) {
	return nil, nil
}

func TestRegistry_SelectKeepsRegistrationOrder(t *testing.T) {
	t.Parallel()

	reg := collector.NewRegistry(
		stubCollector{name: "whois", types: collector.Types(domain.QueryTypeDomain, domain.QueryTypeIP)},
		stubCollector{name: "duckduckgo", types: collector.Types(domain.QueryTypeDomain, domain.QueryTypeUnknown)},
		stubCollector{name: "ipinfo", types: collector.Types(domain.QueryTypeIP)},
	)

	names := func(cs []collector.Collector) []string {
		out := make([]string, len(cs))
		for i, c := range cs {
			out[i] = c.Name()
		}
		return out
	}

	assert.Equal(t, []string{"whois", "duckduckgo"}, names(reg.Select(domain.QueryTypeDomain)))
	assert.Equal(t, []string{"whois", "ipinfo"}, names(reg.Select(domain.QueryTypeIP)))
	assert.Equal(t, []string{"duckduckgo"}, names(reg.Select(domain.QueryTypeUnknown)))
	assert.Empty(t, reg.Select(domain.QueryTypePhone))
	assert.Equal(t, 3, reg.Len())
}

func TestRegistry_RejectsDuplicate(t *testing.T) {
	t.Parallel()

	reg := collector.NewRegistry(stubCollector{name: "bing"})
	assert.Error(t, reg.Register(stubCollector{name: "bing"}))
}

func TestError_WrapsAndUnwraps(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := collector.NewError("hunter", cause)

	assert.Equal(t, "collector hunter: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.False(t, err.Timeout())
	assert.Same(t, err, collector.NewError("other", err))
}

func TestFetcher_GetSetsUserAgentAndMapsErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(r.UserAgent()))
	}))
	t.Cleanup(srv.Close)

	f := collector.NewFetcher("test", infrahttp.NewClient(nil), collector.FetcherConfig{UserAgent: "ua/1", RequestsPerSecond: 100}, logger.NewNop())

	resp, err := f.Get(context.Background(), srv.URL+"/ok", nil)
	require.NoError(t, err)
	assert.Equal(t, "ua/1", string(resp.Body))

	_, err = f.Get(context.Background(), srv.URL+"/missing", nil)
	assert.True(t, infraerrors.IsClientError(err))
}

func TestFetcher_FailReportsTimeout(t *testing.T) {
	t.Parallel()

	f := collector.NewFetcher("slow", infrahttp.NewClient(nil), collector.FetcherConfig{}, logger.NewNop())
	cerr := f.Fail(context.DeadlineExceeded)

	assert.True(t, cerr.Timeout())
	assert.ErrorIs(t, cerr, collector.ErrTimeout)
	assert.Equal(t, "slow", cerr.SourceID)
}

func TestLines(t *testing.T) {
	t.Parallel()

	got := collector.Lines(
		collector.Field{Name: "breach_date", Value: "2013-10-04"},
		collector.Field{Name: "domain", Value: "  "},
		collector.Field{Name: "pwn_count", Value: "152445165"},
	)
	assert.Equal(t, []string{"Breach Date: 2013-10-04", "Pwn Count: 152445165"}, got)
}
