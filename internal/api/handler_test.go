package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/intelsleuth/infrastructure/logger"
	"github.com/jonesrussell/intelsleuth/internal/api"
	"github.com/jonesrussell/intelsleuth/internal/extract"
	"github.com/jonesrussell/intelsleuth/internal/pipeline"
	"github.com/jonesrussell/intelsleuth/internal/querylog"
	"github.com/jonesrussell/intelsleuth/internal/ratelimit"
	"github.com/jonesrussell/intelsleuth/internal/report"
)

type fakeSearcher struct {
	requests []pipeline.Request
	err      error
}

func (f *fakeSearcher) Search(_ context.Context, req pipeline.Request) (*pipeline.Result, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if strings.TrimSpace(req.Query) == "" {
		return nil, pipeline.ErrEmptyQuery
	}
	return &pipeline.Result{Response: report.Response{
		Query:     req.Query,
		QueryType: "domain",
		Results: map[string][]report.Item{
			"domain_info": {{Title: "WHOIS information for example.com", Source: "whois", ContentType: "pre", Content: "Domain Name: EXAMPLE.COM"}},
			"related_links": {
				{Title: "Example Domain", Source: "duckduckgo, bing", ContentType: "text", Content: "https://example.com/"},
			},
			"breach_data": {{Title: "Adobe", Source: "haveibeenpwned", ContentType: "list", Content: []string{"Breach date: 2013-10-04"}}},
		},
		Summary:  "Information was found in 2 categories: domain_info, related_links.",
		Delivery: "skipped",
	}}, nil
}

type fakeExtractor struct {
	maxLength int
	err       error
}

func (f *fakeExtractor) Extract(_ context.Context, rawURL string, maxLength int) (*extract.Page, error) {
	f.maxLength = maxLength
	if f.err != nil {
		return nil, f.err
	}
	return &extract.Page{URL: rawURL, Title: "Example", Text: "Hello"}, nil
}

type fakeLister struct{ limit int }

func (f *fakeLister) Recent(_ context.Context, limit int) ([]querylog.Row, error) {
	f.limit = limit
	return []querylog.Row{{ID: 7, QueryText: "example.com", QueryType: "domain", Timestamp: time.Unix(0, 0).UTC()}}, nil
}

func setupRouter(t *testing.T, s api.Searcher, e api.Extractor, q api.QueryLister, limit gin.HandlerFunc) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := api.NewHandler(s, e, q, logger.NewNop())
	reg := prometheus.NewRegistry()
	api.SetupRoutes(r, h, api.RouteOptions{
		RateLimit: limit,
		Metrics:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIndex_ShowsError(t *testing.T) {
	r := setupRouter(t, &fakeSearcher{}, &fakeExtractor{}, nil, nil)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/?error="+url.QueryEscape("Please provide a valid search query"), nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `action="/search"`)
	assert.Contains(t, w.Body.String(), "Please provide a valid search query")
}

func TestSearch_RendersResults(t *testing.T) {
	s := &fakeSearcher{}
	r := setupRouter(t, s, &fakeExtractor{}, nil, nil)

	form := url.Values{"query": {"example.com"}, "webhook_url": {"https://hooks.example.com"}}
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := serve(r, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Domain Info")
	assert.Contains(t, body, "<pre>Domain Name: EXAMPLE.COM</pre>")
	assert.Contains(t, body, `href="https://example.com/"`)
	assert.Contains(t, body, "<li>Breach date: 2013-10-04</li>")
	assert.Less(t, strings.Index(body, "Domain Info"), strings.Index(body, "Related Links"))

	require.Len(t, s.requests, 1)
	assert.Equal(t, "https://hooks.example.com", s.requests[0].WebhookURL)
}

func TestSearch_EmptyQueryRedirects(t *testing.T) {
	r := setupRouter(t, &fakeSearcher{}, &fakeExtractor{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader("query=+"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := serve(r, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/?error="))
}

func TestAPISearch(t *testing.T) {
	testCases := []struct {
		name       string
		path       string
		searchErr  error
		wantStatus int
		wantError  string
	}{
		{name: "ok", path: "/api/search?query=example.com", wantStatus: http.StatusOK},
		{name: "empty", path: "/api/search?query=", wantStatus: http.StatusBadRequest, wantError: "Please provide a valid search query"},
		{name: "internal", path: "/api/search?query=x", searchErr: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantError: "internal server error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := setupRouter(t, &fakeSearcher{err: tc.searchErr}, &fakeExtractor{}, nil, nil)

			w := serve(r, httptest.NewRequest(http.MethodGet, tc.path, nil))
			require.Equal(t, tc.wantStatus, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tc.wantError != "" {
				assert.Equal(t, tc.wantError, body["error"])
				return
			}
			assert.Equal(t, "example.com", body["query"])
			assert.Equal(t, "domain", body["query_type"])
			assert.Equal(t, "skipped", body["delivery"])
			results := body["results"].(map[string]any)
			link := results["related_links"].([]any)[0].(map[string]any)
			assert.Equal(t, "duckduckgo, bing", link["source"])
			assert.Equal(t, "text", link["content_type"])
		})
	}
}

func TestExtractContent(t *testing.T) {
	testCases := []struct {
		name       string
		query      string
		err        error
		wantStatus int
		wantMax    int
	}{
		{name: "default length", query: "url=https://example.com", wantStatus: http.StatusOK, wantMax: extract.DefaultMaxLength},
		{name: "custom length", query: "url=https://example.com&max_length=10", wantStatus: http.StatusOK, wantMax: 10},
		{name: "bad length", query: "url=https://example.com&max_length=-1", wantStatus: http.StatusBadRequest},
		{name: "bad url", query: "url=ftp://x", err: extract.ErrInvalidURL, wantStatus: http.StatusBadRequest},
		{name: "upstream failure", query: "url=https://example.com", err: errors.New("503"), wantStatus: http.StatusBadGateway},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := &fakeExtractor{err: tc.err}
			r := setupRouter(t, &fakeSearcher{}, e, nil, nil)

			w := serve(r, httptest.NewRequest(http.MethodGet, "/api/extract-content?"+tc.query, nil))

			assert.Equal(t, tc.wantStatus, w.Code)
			if tc.wantMax != 0 {
				assert.Equal(t, tc.wantMax, e.maxLength)
				assert.Contains(t, w.Body.String(), `"title":"Example"`)
			}
		})
	}
}

func TestRecentQueries(t *testing.T) {
	t.Run("disabled without query log", func(t *testing.T) {
		r := setupRouter(t, &fakeSearcher{}, &fakeExtractor{}, nil, nil)
		w := serve(r, httptest.NewRequest(http.MethodGet, "/api/queries", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("limit is capped", func(t *testing.T) {
		l := &fakeLister{}
		r := setupRouter(t, &fakeSearcher{}, &fakeExtractor{}, l, nil)

		w := serve(r, httptest.NewRequest(http.MethodGet, "/api/queries?limit=1000", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 100, l.limit)
		assert.Contains(t, w.Body.String(), `"query_text":"example.com"`)
	})
}

func TestRateLimitAppliesToSearchRoutes(t *testing.T) {
	limiter := ratelimit.Middleware(ratelimit.NewMemoryLimiter(1, time.Minute), logger.NewNop(), nil)
	r := setupRouter(t, &fakeSearcher{}, &fakeExtractor{}, nil, limiter)

	first := serve(r, httptest.NewRequest(http.MethodGet, "/api/search?query=example.com", nil))
	second := serve(r, httptest.NewRequest(http.MethodGet, "/api/search?query=example.com", nil))
	index := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, second.Body.String())
	assert.Equal(t, http.StatusOK, index.Code)
}

func TestMetricsRoute(t *testing.T) {
	r := setupRouter(t, &fakeSearcher{}, &fakeExtractor{}, nil, nil)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}
