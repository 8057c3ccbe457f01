// Package ipinfo geolocates IP addresses with the IPinfo API.
package ipinfo

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jonesrussell/intelsleuth/infrastructure/logger"
	"github.com/jonesrussell/intelsleuth/internal/collector"
	"github.com/jonesrussell/intelsleuth/internal/domain"
)

// SourceID names this collector.
const SourceID = "ipinfo"

// DefaultBaseURL is the public API endpoint.
const DefaultBaseURL = "https://ipinfo.io"

const confidence = 0.8

// Response is the subset of the IPinfo answer that is reported.
type Response struct {
	IP       string `json:"ip"`
	Hostname string `json:"hostname"`
	City     string `json:"city"`
	Region   string `json:"region"`
	Country  string `json:"country"`
	Loc      string `json:"loc"`
	Org      string `json:"org"`
	Postal   string `json:"postal"`
	Timezone string `json:"timezone"`
	Bogon    bool   `json:"bogon"`
}

// Collector queries IPinfo.
type Collector struct {
	fetcher *collector.Fetcher
	baseURL string
	token   string
}

// New returns an IPinfo collector. An empty baseURL uses DefaultBaseURL.
func New(token, baseURL string, client *http.Client, cfg collector.FetcherConfig, log logger.Logger) *Collector {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Collector{
		fetcher: collector.NewFetcher(SourceID, client, cfg, log),
		baseURL: baseURL,
		token:   token,
	}
}

// Name implements collector.Collector.
func (c *Collector) Name() string { return SourceID }

// Applicable implements collector.Collector.
func (c *Collector) Applicable(t domain.QueryType) bool { return t == domain.QueryTypeIP }

// Collect implements collector.Collector.
func (c *Collector) Collect(ctx context.Context, q domain.Query) ([]domain.RawFinding, error) {
	endpoint := c.baseURL + "/" + url.PathEscape(q.Term) + "/json?token=" + url.QueryEscape(c.token)

	var resp Response
	if err := c.fetcher.GetJSON(ctx, endpoint, http.Header{"Accept": {"application/json"}}, &resp); err != nil {
		return nil, c.fetcher.Fail(err)
	}
	if resp.Bogon {
		return nil, nil
	}

	ip := resp.IP
	if ip == "" {
		ip = q.Term
	}

	var out []domain.RawFinding
	location := collector.Lines(
		collector.Field{Name: "ip", Value: resp.IP},
		collector.Field{Name: "city", Value: resp.City},
		collector.Field{Name: "region", Value: resp.Region},
		collector.Field{Name: "country", Value: resp.Country},
		collector.Field{Name: "coordinates", Value: resp.Loc},
		collector.Field{Name: "organization", Value: resp.Org},
		collector.Field{Name: "postal", Value: resp.Postal},
		collector.Field{Name: "timezone", Value: resp.Timezone},
	)
	// A bare echo of the IP carries no location.
	if len(location) > 1 {
		out = append(out, domain.RawFinding{
			SourceID:     SourceID,
			Title:        "IP location information for " + ip,
			Content:      domain.List(location...),
			CategoryHint: domain.CategoryLocationData,
			Confidence:   confidence,
		})
	}
	if resp.Hostname != "" {
		out = append(out, domain.RawFinding{
			SourceID:     SourceID,
			Title:        "Reverse DNS hostname for " + ip,
			Content:      domain.Text(resp.Hostname),
			CategoryHint: domain.CategoryDomainInfo,
			Confidence:   confidence,
		})
	}
	return out, nil
}
