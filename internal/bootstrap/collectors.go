package bootstrap

import (
	"net/http"

	infrahttp "github.com/jonesrussell/intelsleuth/infrastructure/http"
	"github.com/jonesrussell/intelsleuth/infrastructure/logger"
	"github.com/jonesrussell/intelsleuth/internal/collector"
	"github.com/jonesrussell/intelsleuth/internal/collector/hibp"
	"github.com/jonesrussell/intelsleuth/internal/collector/hunter"
	"github.com/jonesrussell/intelsleuth/internal/collector/ipinfo"
	"github.com/jonesrussell/intelsleuth/internal/collector/searchengine"
	"github.com/jonesrussell/intelsleuth/internal/collector/social"
	"github.com/jonesrussell/intelsleuth/internal/collector/whois"
	"github.com/jonesrussell/intelsleuth/internal/config"
)

// Clients are the outbound HTTP clients shared by collectors.
type Clients struct {
	// Default follows redirects.
	Default *http.Client
	// NoRedirects returns 3xx responses as-is; profile probes need it.
	NoRedirects *http.Client
}

// NewClients builds the shared outbound clients.
func NewClients(cfg *config.Config) Clients {
	return Clients{
		Default:     infrahttp.NewClient(&infrahttp.ClientConfig{Timeout: cfg.Service.SearchDeadline}),
		NoRedirects: infrahttp.NewClient(&infrahttp.ClientConfig{Timeout: cfg.Service.SearchDeadline, NoRedirects: true}),
	}
}

// NewRegistry registers the collectors enabled by cfg. Registration order
// is the order findings are reported: WHOIS, the search engines, then
// the API sources. Sources that need a key are skipped without one.
func NewRegistry(cfg *config.Config, clients Clients, log logger.Logger) *collector.Registry {
	fetchCfg := collector.FetcherConfig{UserAgent: cfg.Service.UserAgent}
	searchCfg := searchengine.Config{MaxResults: cfg.Service.MaxResultsPerSource}

	reg := collector.NewRegistry(
		whois.New(cfg.Sources.WhoisServer, log),
		searchengine.New(searchengine.NewDuckDuckGo(""), clients.Default, fetchCfg, searchCfg, log),
		searchengine.New(searchengine.NewBing(""), clients.Default, fetchCfg, searchCfg, log),
		ipinfo.New(cfg.Sources.IPInfoToken, "", clients.Default, fetchCfg, log),
	)

	optional := []struct {
		enabled bool
		build   func() collector.Collector
	}{
		{cfg.Sources.HunterAPIKey != "", func() collector.Collector {
			return hunter.New(cfg.Sources.HunterAPIKey, "", clients.Default, fetchCfg, log)
		}},
		{cfg.Sources.HIBPAPIKey != "", func() collector.Collector {
			return hibp.New(cfg.Sources.HIBPAPIKey, "", clients.Default, fetchCfg, log)
		}},
		{cfg.Sources.Social, func() collector.Collector {
			return social.New(nil, clients.NoRedirects, fetchCfg, log)
		}},
	}
	for _, o := range optional {
		if !o.enabled {
			continue
		}
		c := o.build()
		if err := reg.Register(c); err != nil {
			log.Error("Collector not registered", logger.String("source", c.Name()), logger.Error(err))
			continue
		}
	}

	log.Info("Collectors registered", logger.Strings("sources", reg.Names()))
	return reg
}
