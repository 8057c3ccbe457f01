// Package hunter looks up email deliverability and domain email patterns
// with the Hunter.io API.
package hunter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jonesrussell/intelsleuth/infrastructure/logger"
	"github.com/jonesrussell/intelsleuth/internal/collector"
	"github.com/jonesrussell/intelsleuth/internal/domain"
)

// SourceID names this collector.
const SourceID = "hunter"

// DefaultBaseURL is the public API endpoint.
const DefaultBaseURL = "https://api.hunter.io/v2"

const (
	verifierConfidence = 0.8
	searchConfidence   = 0.7
)

var applicable = collector.Types(domain.QueryTypeEmail, domain.QueryTypeDomain)

// VerifierData is the email-verifier answer.
type VerifierData struct {
	Email      string `json:"email"`
	Status     string `json:"status"`
	Result     string `json:"result"`
	Score      int    `json:"score"`
	Disposable bool   `json:"disposable"`
	Webmail    bool   `json:"webmail"`
	Sources    []struct {
		Domain string `json:"domain"`
		URI    string `json:"uri"`
	} `json:"sources"`
}

// DomainData is the domain-search answer.
type DomainData struct {
	Domain       string  `json:"domain"`
	Disposable   bool    `json:"disposable"`
	Webmail      bool    `json:"webmail"`
	Pattern      string  `json:"pattern"`
	Organization string  `json:"organization"`
	Emails       []Email `json:"emails"`
}

// Email is one address discovered for a domain.
type Email struct {
	Value      string `json:"value"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Position   string `json:"position"`
	Confidence int    `json:"confidence"`
}

type envelope[T any] struct {
	Data T `json:"data"`
}

// Collector queries Hunter.io.
type Collector struct {
	fetcher *collector.Fetcher
	baseURL string
	apiKey  string
}

// New returns a Hunter collector. An empty baseURL uses DefaultBaseURL.
func New(apiKey, baseURL string, client *http.Client, cfg collector.FetcherConfig, log logger.Logger) *Collector {
	if baseURL == "" {
		baseURL = DefaultBaseURL
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

// Collect implements collector.Collector.
func (c *Collector) Collect(ctx context.Context, q domain.Query) ([]domain.RawFinding, error) {
	if q.Type == domain.QueryTypeEmail {
		return c.verify(ctx, q.Term)
	}
	return c.domainSearch(ctx, q.Term)
}

func (c *Collector) verify(ctx context.Context, email string) ([]domain.RawFinding, error) {
	var resp envelope[VerifierData]
	endpoint := c.endpoint("email-verifier", url.Values{"email": {email}})
	if err := c.fetcher.GetJSON(ctx, endpoint, nil, &resp); err != nil {
		return nil, c.fetcher.Fail(err)
	}
	d := resp.Data
	if d.Email == "" {
		return nil, nil
	}

	lines := collector.Lines(
		collector.Field{Name: "email", Value: d.Email},
		collector.Field{Name: "status", Value: d.Status},
		collector.Field{Name: "score", Value: strconv.Itoa(d.Score)},
		collector.Field{Name: "disposable", Value: strconv.FormatBool(d.Disposable)},
		collector.Field{Name: "webmail", Value: strconv.FormatBool(d.Webmail)},
		collector.Field{Name: "sources", Value: strconv.Itoa(len(d.Sources))},
	)
	return []domain.RawFinding{{
		SourceID:     SourceID,
		Title:        "Email information for " + d.Email,
		Content:      domain.Pre(strings.Join(lines, "\n")),
		CategoryHint: domain.CategoryContactInfo,
		Confidence:   verifierConfidence,
	}}, nil
}

func (c *Collector) domainSearch(ctx context.Context, name string) ([]domain.RawFinding, error) {
	var resp envelope[DomainData]
	endpoint := c.endpoint("domain-search", url.Values{"domain": {name}})
	if err := c.fetcher.GetJSON(ctx, endpoint, nil, &resp); err != nil {
		return nil, c.fetcher.Fail(err)
	}
	d := resp.Data
	if d.Domain == "" {
		return nil, nil
	}

	lines := collector.Lines(
		collector.Field{Name: "domain", Value: d.Domain},
		collector.Field{Name: "organization", Value: d.Organization},
		collector.Field{Name: "pattern", Value: d.Pattern},
		collector.Field{Name: "disposable", Value: strconv.FormatBool(d.Disposable)},
		collector.Field{Name: "webmail", Value: strconv.FormatBool(d.Webmail)},
	)
	out := []domain.RawFinding{{
		SourceID:     SourceID,
		Title:        "Domain information for " + d.Domain,
		Content:      domain.Pre(strings.Join(lines, "\n")),
		CategoryHint: domain.CategoryDomainInfo,
		Confidence:   searchConfidence,
	}}
	for _, e := range d.Emails {
		if e.Value == "" {
			continue
		}
		out = append(out, domain.RawFinding{
			SourceID:     SourceID,
			Title:        emailTitle(e),
			Content:      domain.Text(e.Value),
			CategoryHint: domain.CategoryContactInfo,
			Confidence:   float64(e.Confidence) / 100,
		})
	}
	return out, nil
}

func (c *Collector) endpoint(path string, params url.Values) string {
	params.Set("api_key", c.apiKey)
	return fmt.Sprintf("%s/%s?%s", c.baseURL, path, params.Encode())
}

func emailTitle(e Email) string {
	title := strings.TrimSpace(e.FirstName + " " + e.LastName)
	if title == "" {
		title = "Email address"
	}
	if e.Position != "" {
		title += " (" + e.Position + ")"
	}
	return title
}
