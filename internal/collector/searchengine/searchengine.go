// Package searchengine collects related links, contact hints and social
// profile hints from web search result pages.
package searchengine

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/jonesrussell/intelsleuth/infrastructure/logger"
	"github.com/jonesrussell/intelsleuth/internal/collector"
	"github.com/jonesrussell/intelsleuth/internal/domain"
)

// DefaultMaxResults caps results read from one page.
const DefaultMaxResults = 10

// Finding confidences.
const (
	linkConfidence    = 0.4
	hintConfidence    = 0.3
	emailConfidence   = 0.5
	profileConfidence = 0.6
)

var (
	contactKeywords = []string{"contact"}
	socialKeywords  = []string{"profile", "linkedin", "facebook", "twitter", "social"}

	// SocialDomains are hosts whose result URLs are treated as profiles.
	SocialDomains = []string{
		"facebook.com", "twitter.com", "x.com", "linkedin.com", "instagram.com",
		"github.com", "pinterest.com", "youtube.com", "tiktok.com",
		"reddit.com", "tumblr.com", "snapchat.com", "quora.com",
		"medium.com", "flickr.com", "vimeo.com", "soundcloud.com",
	}

	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

	applicable = collector.Types(
		domain.QueryTypeEmail,
		domain.QueryTypeDomain,
		domain.QueryTypeUsername,
		domain.QueryTypePhone,
		domain.QueryTypeUnknown,
	)
)

// Config configures a Collector.
type Config struct {
	MaxResults int
}

// Collector scrapes one search engine.
type Collector struct {
	engine     Engine
	fetcher    *collector.Fetcher
	maxResults int
	log        logger.Logger

	// The matcher keeps per-call state, so matches are serialized.
	mu      sync.Mutex
	matcher *ahocorasick.Matcher
	hints   []domain.Category
}

// New returns a Collector for engine.
func New(engine Engine, client *http.Client, fetchCfg collector.FetcherConfig, cfg Config, log logger.Logger) *Collector {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}

	keywords := make([]string, 0, len(contactKeywords)+len(socialKeywords))
	hints := make([]domain.Category, 0, cap(keywords))
	for _, k := range contactKeywords {
		keywords = append(keywords, k)
		hints = append(hints, domain.CategoryContactInfo)
	}
	for _, k := range socialKeywords {
		keywords = append(keywords, k)
		hints = append(hints, domain.CategorySocialProfiles)
	}

	return &Collector{
		engine:     engine,
		fetcher:    collector.NewFetcher(engine.Name, client, fetchCfg, log),
		maxResults: cfg.MaxResults,
		log:        log,
		matcher:    ahocorasick.NewStringMatcher(keywords),
		hints:      hints,
	}
}

// Name implements collector.Collector.
func (c *Collector) Name() string { return c.engine.Name }

// Applicable implements collector.Collector. Search engines handle every
// query type except bare IP addresses.
func (c *Collector) Applicable(t domain.QueryType) bool { return applicable.Has(t) }

// Collect implements collector.Collector.
func (c *Collector) Collect(ctx context.Context, q domain.Query) ([]domain.RawFinding, error) {
	term := q.Term
	if term == "" {
		term = q.Text
	}

	resp, err := c.fetcher.Get(ctx, c.engine.SearchURL(term), http.Header{"Accept": {"text/html"}})
	if err != nil {
		return nil, c.fetcher.Fail(err)
	}
	results, err := c.engine.Parse(resp.Body)
	if err != nil {
		return nil, c.fetcher.Fail(err)
	}
	if len(results) > c.maxResults {
		results = results[:c.maxResults]
	}

	findings := make([]domain.RawFinding, 0, len(results))
	for _, r := range results {
		findings = append(findings, c.findingsFor(r)...)
	}
	c.log.Debug("Search results parsed",
		logger.String("source", c.engine.Name),
		logger.Int("results", len(results)),
		logger.Int("findings", len(findings)),
	)
	return findings, nil
}

func (c *Collector) findingsFor(r Result) []domain.RawFinding {
	title := r.Title
	if title == "" {
		title = r.URL
	}
	out := []domain.RawFinding{{
		SourceID:     c.engine.Name,
		Title:        title,
		Content:      domain.Text(r.URL),
		CategoryHint: domain.CategoryRelatedLinks,
		Confidence:   linkConfidence,
	}}

	hinted := c.keywordHints(r.Title + " " + r.Snippet)
	detail := domain.Text(strings.TrimSpace(r.Snippet + "\n\nLink: " + r.URL))
	if hinted[domain.CategoryContactInfo] {
		out = append(out, domain.RawFinding{
			SourceID:     c.engine.Name,
			Title:        title,
			Content:      detail,
			CategoryHint: domain.CategoryContactInfo,
			Confidence:   hintConfidence,
		})
	}

	switch {
	case IsSocialURL(r.URL):
		out = append(out, domain.RawFinding{
			SourceID:     c.engine.Name,
			Title:        title,
			Content:      domain.Text(r.URL),
			CategoryHint: domain.CategorySocialProfiles,
			Confidence:   profileConfidence,
		})
	case hinted[domain.CategorySocialProfiles]:
		out = append(out, domain.RawFinding{
			SourceID:     c.engine.Name,
			Title:        title,
			Content:      detail,
			CategoryHint: domain.CategorySocialProfiles,
			Confidence:   hintConfidence,
		})
	}

	for _, email := range uniqueEmails(r.Snippet) {
		out = append(out, domain.RawFinding{
			SourceID:     c.engine.Name,
			Title:        "Email address",
			Content:      domain.Text(email),
			CategoryHint: domain.CategoryContactInfo,
			Confidence:   emailConfidence,
		})
	}
	return out
}

func (c *Collector) keywordHints(text string) map[domain.Category]bool {
	c.mu.Lock()
	hits := c.matcher.Match([]byte(strings.ToLower(text)))
	c.mu.Unlock()

	found := make(map[domain.Category]bool, len(hits))
	for _, i := range hits {
		found[c.hints[i]] = true
	}
	return found
}

// IsSocialURL reports whether raw points at a known social platform.
func IsSocialURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	for _, d := range SocialDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func uniqueEmails(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, e := range emailPattern.FindAllString(text, -1) {
		key := strings.ToLower(e)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}
