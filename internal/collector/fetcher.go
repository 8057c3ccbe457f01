package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/jonesrussell/intelsleuth/infrastructure/circuitbreaker"
	infraerrors "github.com/jonesrussell/intelsleuth/infrastructure/errors"
	"github.com/jonesrussell/intelsleuth/infrastructure/logger"
)

// Fetcher defaults.
const (
	DefaultUserAgent         = "IntelSleuth/1.0"
	DefaultRequestsPerSecond = 2.0
	DefaultBurst             = 4
	maxBodyBytes             = 5 << 20
	breakerFailureThreshold  = 5
	breakerCooldown          = 30 * time.Second
)

// FetcherConfig configures a Fetcher.
type FetcherConfig struct {
	UserAgent         string
	RequestsPerSecond float64
	Burst             int
}

// Fetcher performs outbound HTTP requests for one source. Requests are
// rate limited per source and guarded by a circuit breaker that opens
// after repeated network or 5xx failures; 4xx answers do not trip it.
type Fetcher struct {
	source    string
	client    *http.Client
	userAgent string
	limiter   *rate.Limiter
	breaker   *circuitbreaker.Breaker
}

// Response is a fully read upstream response.
type Response struct {
	StatusCode int
	Body       []byte
}

// NewFetcher returns a Fetcher for source using client.
func NewFetcher(source string, client *http.Client, cfg FetcherConfig, log logger.Logger) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}

	return &Fetcher{
		source:    source,
		client:    client,
		userAgent: cfg.UserAgent,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		breaker: circuitbreaker.New(circuitbreaker.Config{
			FailureThreshold: breakerFailureThreshold,
			Cooldown:         breakerCooldown,
			IsFailure:        func(err error) bool { return !infraerrors.IsClientError(err) },
			OnStateChange: func(from, to circuitbreaker.State) {
				log.Warn("Source circuit changed state",
					logger.String("source", source),
					logger.String("from", from.String()),
					logger.String("to", to.String()),
				)
			},
		}),
	}
}

// Get fetches url. Responses with status 400 and above are returned as a
// wrapped *errors.HTTPError.
func (f *Fetcher) Get(ctx context.Context, url string, header http.Header) (*Response, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	var resp *Response
	err := f.breaker.Execute(ctx, func() error {
		var doErr error
		resp, doErr = f.do(ctx, url, header)
		return doErr
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (f *Fetcher) do(ctx context.Context, url string, header http.Header) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("User-Agent", f.userAgent)

	res, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", f.source, err)
	}
	defer res.Body.Close()

	if httpErr := infraerrors.ParseHTTPError(res); httpErr != nil {
		return nil, httpErr
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", f.source, err)
	}
	return &Response{StatusCode: res.StatusCode, Body: body}, nil
}

// GetJSON fetches url and decodes the JSON body into v.
func (f *Fetcher) GetJSON(ctx context.Context, url string, header http.Header, v any) error {
	resp, err := f.Get(ctx, url, header)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("decode %s response: %w", f.source, err)
	}
	return nil
}

// Fail converts err into the collector failure for this fetcher's source.
// Deadline expiry is reported as ErrTimeout.
func (f *Fetcher) Fail(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{SourceID: f.source, Reason: "deadline exceeded", Err: errors.Join(ErrTimeout, err)}
	}
	return NewError(f.source, err)
}
