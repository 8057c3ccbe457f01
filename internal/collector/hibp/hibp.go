// Package hibp reports known data breaches for an account from Have I
// Been Pwned.
package hibp

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	infraerrors "github.com/jonesrussell/intelsleuth/infrastructure/errors"
	"github.com/jonesrussell/intelsleuth/infrastructure/logger"
	"github.com/jonesrussell/intelsleuth/internal/collector"
	"github.com/jonesrussell/intelsleuth/internal/domain"
)

// SourceID names this collector.
const SourceID = "haveibeenpwned"

// DefaultBaseURL is the public API endpoint.
const DefaultBaseURL = "https://haveibeenpwned.com/api/v3"

// HIBP allows roughly one request every six seconds on the basic plan.
const (
	requestsPerSecond = 1.0 / 6
	burst             = 1
	confidence        = 0.9
)

var applicable = collector.Types(domain.QueryTypeEmail, domain.QueryTypeUsername)

// Breach is one entry of the breachedaccount answer.
type Breach struct {
	Name        string   `json:"Name"`
	Title       string   `json:"Title"`
	Domain      string   `json:"Domain"`
	BreachDate  string   `json:"BreachDate"`
	PwnCount    int64    `json:"PwnCount"`
	DataClasses []string `json:"DataClasses"`
	Description string   `json:"Description"`
}

// Collector queries Have I Been Pwned.
type Collector struct {
	fetcher *collector.Fetcher
	baseURL string
	apiKey  string
}

// New returns a HIBP collector. An empty baseURL uses DefaultBaseURL.
// The configured rate is capped to the API's published limit.
func New(apiKey, baseURL string, client *http.Client, cfg collector.FetcherConfig, log logger.Logger) *Collector {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if cfg.RequestsPerSecond <= 0 || cfg.RequestsPerSecond > requestsPerSecond {
		cfg.RequestsPerSecond = requestsPerSecond
		cfg.Burst = burst
	}
	return &Collector{
		fetcher: collector.NewFetcher(SourceID, client, cfg, log),
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// Name implements collector.Collector.
func (c *Collector) Name() string { return SourceID }

// Applicable implements collector.Collector.
func (c *Collector) Applicable(t domain.QueryType) bool { return applicable.Has(t) }

// Collect implements collector.Collector. An account unknown to HIBP
// (404) has no breaches.
func (c *Collector) Collect(ctx context.Context, q domain.Query) ([]domain.RawFinding, error) {
	endpoint := c.baseURL + "/breachedaccount/" + url.PathEscape(q.Term) + "?truncateResponse=false"
	header := http.Header{
		"hibp-api-key": {c.apiKey},
		"Accept":       {"application/json"},
	}

	var breaches []Breach
	if err := c.fetcher.GetJSON(ctx, endpoint, header, &breaches); err != nil {
		if code, ok := infraerrors.StatusCode(err); ok && code == http.StatusNotFound {
			return nil, nil
		}
		return nil, c.fetcher.Fail(err)
	}

	out := make([]domain.RawFinding, 0, len(breaches))
	for _, b := range breaches {
		title := b.Title
		if title == "" {
			title = b.Name
		}
		out = append(out, domain.RawFinding{
			SourceID: SourceID,
			Title:    title,
			Content: domain.List(collector.Lines(
				collector.Field{Name: "name", Value: b.Name},
				collector.Field{Name: "domain", Value: b.Domain},
				collector.Field{Name: "breach_date", Value: b.BreachDate},
				collector.Field{Name: "records_exposed", Value: strconv.FormatInt(b.PwnCount, 10)},
				collector.Field{Name: "data_compromised", Value: strings.Join(b.DataClasses, ", ")},
				collector.Field{Name: "description", Value: b.Description},
			)...),
			CategoryHint: domain.CategoryBreachData,
			Confidence:   confidence,
		})
	}
	return out, nil
}
