// Package social probes well-known platforms for a public profile matching
// a username.
package social

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	infraerrors "github.com/jonesrussell/intelsleuth/infrastructure/errors"
	"github.com/jonesrussell/intelsleuth/infrastructure/logger"
	"github.com/jonesrussell/intelsleuth/internal/collector"
	"github.com/jonesrussell/intelsleuth/internal/domain"
)

// SourceID names this collector.
const SourceID = "social_search"

const (
	maxConcurrentProbes = 4
	probeConfidence     = 0.5
	requestsPerSecond   = 10
	probeBurst          = 10
)

// Platform is a site whose profile pages live at a predictable URL.
// ProfileURL contains a single %s for the escaped username.
type Platform struct {
	Name       string
	ProfileURL string
}

// DefaultPlatforms are probed when none are configured.
var DefaultPlatforms = []Platform{
	{Name: "GitHub", ProfileURL: "https://github.com/%s"},
	{Name: "GitLab", ProfileURL: "https://gitlab.com/%s"},
	{Name: "Reddit", ProfileURL: "https://www.reddit.com/user/%s/about.json"},
	{Name: "Medium", ProfileURL: "https://medium.com/@%s"},
	{Name: "Instagram", ProfileURL: "https://www.instagram.com/%s/"},
	{Name: "TikTok", ProfileURL: "https://www.tiktok.com/@%s"},
	{Name: "Vimeo", ProfileURL: "https://vimeo.com/%s"},
	{Name: "SoundCloud", ProfileURL: "https://soundcloud.com/%s"},
}

// Collector probes platforms for a username. Its HTTP client should not
// follow redirects, since most platforms redirect unknown profiles to a
// login or search page that answers 200.
type Collector struct {
	fetcher   *collector.Fetcher
	platforms []Platform
	log       logger.Logger
}

// New returns a social profile collector. A nil platforms uses
// DefaultPlatforms.
func New(platforms []Platform, client *http.Client, cfg collector.FetcherConfig, log logger.Logger) *Collector {
	if platforms == nil {
		platforms = DefaultPlatforms
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = requestsPerSecond
		cfg.Burst = probeBurst
	}
	return &Collector{
		fetcher:   collector.NewFetcher(SourceID, client, cfg, log),
		platforms: platforms,
		log:       log,
	}
}

// Name implements collector.Collector.
func (c *Collector) Name() string { return SourceID }

// Applicable implements collector.Collector.
func (c *Collector) Applicable(t domain.QueryType) bool { return t == domain.QueryTypeUsername }

// Collect implements collector.Collector. Findings follow platform order.
// The collector fails only when every probe failed.
func (c *Collector) Collect(ctx context.Context, q domain.Query) ([]domain.RawFinding, error) {
	username := strings.TrimPrefix(q.Term, "@")
	if username == "" {
		return nil, nil
	}

	found := make([]string, len(c.platforms))
	errs := make([]error, len(c.platforms))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentProbes)
	for i, p := range c.platforms {
		i, p := i, p
		g.Go(func() error {
			found[i], errs[i] = c.probe(gctx, p, username)
			return nil
		})
	}
	_ = g.Wait()

	var out []domain.RawFinding
	failed := 0
	for i, p := range c.platforms {
		i, p := i, p
		if errs[i] != nil {
			failed++
			c.log.Debug("Profile probe failed",
				logger.String("platform", p.Name),
				logger.Error(errs[i]),
			)
			continue
		}
		if found[i] == "" {
			continue
		}
		out = append(out, domain.RawFinding{
			SourceID:     SourceID,
			Title:        fmt.Sprintf("%s profile: %s", p.Name, username),
			Content:      domain.Text(found[i]),
			CategoryHint: domain.CategorySocialProfiles,
			Confidence:   probeConfidence,
		})
	}
	if failed > 0 && failed == len(c.platforms) {
		return nil, c.fetcher.Fail(errors.Join(errs...))
	}
	return out, nil
}

// probe returns the profile URL when it answers 200, or "" when the
// platform reports no such profile.
func (c *Collector) probe(ctx context.Context, p Platform, username string) (string, error) {
	profile := fmt.Sprintf(p.ProfileURL, url.PathEscape(username))
	resp, err := c.fetcher.Get(ctx, profile, nil)
	if err != nil {
		if infraerrors.IsClientError(err) {
			return "", nil
		}
		return "", fmt.Errorf("probe %s: %w", p.Name, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", nil
	}
	return profile, nil
}
