// Package http builds the outbound HTTP clients used by collectors and
// webhook delivery.
package http

import (
	"net"
	"net/http"
	"time"
)

// Transport defaults.
const (
	DefaultTimeout               = 30 * time.Second
	DefaultDialTimeout           = 10 * time.Second
	DefaultMaxIdleConns          = 100
	DefaultMaxIdleConnsPerHost   = 10
	DefaultIdleConnTimeout       = 90 * time.Second
	DefaultResponseHeaderTimeout = 30 * time.Second
	DefaultTLSHandshakeTimeout   = 10 * time.Second
	DefaultMaxRedirects          = 5
)

// ClientConfig configures NewClient. Zero values take the defaults above.
type ClientConfig struct {
	Timeout               time.Duration
	MaxIdleConnsPerHost   int
	ResponseHeaderTimeout time.Duration
	// NoRedirects makes the client return 3xx responses as-is.
	NoRedirects bool
	// MaxRedirects caps redirect chains when redirects are followed.
	MaxRedirects int
}

// NewClient returns an *http.Client with pooled keep-alive connections.
// Per-request deadlines come from the request context; Timeout is an
// outer bound.
func NewClient(cfg *ClientConfig) *http.Client {
	if cfg == nil {
		cfg = &ClientConfig{}
	}

	timeout := valueOr(cfg.Timeout, DefaultTimeout)
	perHost := cfg.MaxIdleConnsPerHost
	if perHost == 0 {
		perHost = DefaultMaxIdleConnsPerHost
	}
	maxRedirects := cfg.MaxRedirects
	if maxRedirects == 0 {
		maxRedirects = DefaultMaxRedirects
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: DefaultDialTimeout}).DialContext,
		MaxIdleConns:          DefaultMaxIdleConns,
		MaxIdleConnsPerHost:   perHost,
		IdleConnTimeout:       DefaultIdleConnTimeout,
		ResponseHeaderTimeout: valueOr(cfg.ResponseHeaderTimeout, DefaultResponseHeaderTimeout),
		TLSHandshakeTimeout:   DefaultTLSHandshakeTimeout,
		ForceAttemptHTTP2:     true,
	}

	client := &http.Client{Timeout: timeout, Transport: transport}
	switch {
	case cfg.NoRedirects:
		client.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	default:
		client.CheckRedirect = func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		}
	}
	return client
}

func valueOr(d, def time.Duration) time.Duration {
	if d == 0 {
		return def
	}
	return d
}
