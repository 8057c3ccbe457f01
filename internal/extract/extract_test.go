package extract_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/intelsleuth/infrastructure/logger"
	"github.com/jonesrussell/intelsleuth/internal/collector"
	"github.com/jonesrussell/intelsleuth/internal/extract"
)

const page = `<html><head><title> Example
Domain </title><style>body{color:red}</style></head>
<body><div><h1>Example Domain</h1><p>This domain is for use in
illustrative examples.</p><script>alert(1)</script></div></body></html>`

func TestParse(t *testing.T) {
	t.Parallel()

	p, err := extract.Parse([]byte(page))
	require.NoError(t, err)

	assert.Equal(t, "Example Domain", p.Title)
	assert.Equal(t, "Example Domain\nThis domain is for use in illustrative examples.", p.Text)
	assert.NotContains(t, p.Text, "alert")
	assert.NotContains(t, p.Text, "color")
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	got, truncated := extract.Truncate("héllo world", 5)
	assert.True(t, truncated)
	assert.Equal(t, "héllo...", got)

	got, truncated = extract.Truncate("short", 5)
	assert.False(t, truncated)
	assert.Equal(t, "short", got)

	long := strings.Repeat("a", extract.DefaultMaxLength+1)
	got, truncated = extract.Truncate(long, 0)
	assert.True(t, truncated)
	assert.Len(t, got, extract.DefaultMaxLength+3)
}

func TestExtract(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)

	p, err := extract.New(srv.Client(), collector.FetcherConfig{}, logger.NewNop()).
		Extract(context.Background(), srv.URL, 7)
	require.NoError(t, err)

	assert.Equal(t, srv.URL, p.URL)
	assert.Equal(t, "Example...", p.Text)
	assert.True(t, p.Truncated)
}

func TestExtract_RejectsNonHTTP(t *testing.T) {
	t.Parallel()

	_, err := extract.New(http.DefaultClient, collector.FetcherConfig{}, logger.NewNop()).
		Extract(context.Background(), "file:///etc/passwd", 0)
	assert.ErrorIs(t, err, extract.ErrInvalidURL)
}

func TestExtract_UntitledPageKeepsText(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>No title here.</p></body></html>`))
	}))
	t.Cleanup(srv.Close)

	p, err := extract.New(srv.Client(), collector.FetcherConfig{}, logger.NewNop()).
		Extract(context.Background(), srv.URL, 0)
	require.NoError(t, err)

	assert.Equal(t, "No title here.", p.Text)
	assert.False(t, p.Truncated)
}
