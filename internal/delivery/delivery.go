// Package delivery posts finished result sets to caller-supplied webhooks.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	infraerrors "github.com/jonesrussell/intelsleuth/infrastructure/errors"
	"github.com/jonesrussell/intelsleuth/infrastructure/logger"
	"github.com/jonesrussell/intelsleuth/infrastructure/retry"
	"github.com/jonesrussell/intelsleuth/internal/domain"
)

// Delivery defaults.
const (
	DefaultTimeout        = 15 * time.Second
	DefaultMaxAttempts    = 3
	DefaultInitialBackoff = 500 * time.Millisecond
	DefaultMaxBackoff     = 5 * time.Second
)

// ErrInvalidURL is returned for webhook URLs that are not absolute http(s).
var ErrInvalidURL = errors.New("invalid webhook url")

// Config controls webhook delivery.
type Config struct {
	// DefaultURL is used when the caller supplies no webhook.
	DefaultURL     string
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	UserAgent      string
}

// Metrics receives one observation per delivery.
type Metrics interface {
	ObserveDelivery(outcome string, attempts int)
}

// Result describes what happened to one delivery.
type Result struct {
	Outcome  domain.DeliveryOutcome
	URL      string
	Attempts int
	Err      error
}

// Manager delivers result bodies to webhooks.
type Manager struct {
	client  *http.Client
	cfg     Config
	log     logger.Logger
	metrics Metrics
}

// New returns a Manager. metrics may be nil.
func New(client *http.Client, cfg Config, log logger.Logger, metrics Metrics) *Manager {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = DefaultInitialBackoff
	}
	return &Manager{client: client, cfg: cfg, log: log, metrics: metrics}
}

// Deliver posts body as JSON to webhookURL, falling back to the configured
// default URL. With neither, the outcome is skipped. Network errors and 5xx
// responses are retried with exponential backoff; any other failure ends
// delivery immediately. Deliver is called at most once per result set.
func (m *Manager) Deliver(ctx context.Context, body any, webhookURL string) Result {
	res := Result{URL: webhookURL}
	if res.URL == "" {
		res.URL = m.cfg.DefaultURL
	}
	if res.URL == "" {
		res.Outcome = domain.DeliverySkipped
		m.observe(res)
		return res
	}

	payload, err := json.Marshal(body)
	if err == nil {
		err = validateURL(res.URL)
	}
	if err != nil {
		res.Outcome = domain.DeliveryFailedAfterRetries
		res.Err = err
		m.observe(res)
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	policy := retry.Config{
		MaxAttempts:  m.cfg.MaxAttempts,
		InitialDelay: m.cfg.InitialBackoff,
		MaxDelay:     DefaultMaxBackoff,
		IsRetryable:  isRetryable,
		OnRetry: func(attempt int, delay time.Duration, err error) {
			m.log.Warn("Webhook attempt failed, retrying",
				logger.String("url", res.URL),
				logger.Int("attempt", attempt),
				logger.Duration("backoff", delay),
				logger.Error(err),
			)
		},
	}

	res.Err = retry.Retry(ctx, policy, func() error {
		res.Attempts++
		return m.post(ctx, res.URL, payload)
	})
	if res.Err != nil {
		res.Outcome = domain.DeliveryFailedAfterRetries
	} else {
		res.Outcome = domain.DeliveryDelivered
	}
	m.observe(res)
	return res
}

func (m *Manager) post(ctx context.Context, target string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if m.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", m.cfg.UserAgent)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if err := infraerrors.ParseHTTPError(resp); err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// isRetryable retries transport failures and 5xx responses only.
func isRetryable(err error) bool {
	if _, isHTTP := infraerrors.StatusCode(err); isHTTP {
		return infraerrors.IsServerError(err)
	}
	return retry.IsTransient(err)
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return nil
}

func (m *Manager) observe(res Result) {
	if m.metrics != nil {
		m.metrics.ObserveDelivery(string(res.Outcome), res.Attempts)
	}
	fields := []logger.Field{
		logger.String("outcome", string(res.Outcome)),
		logger.Int("attempts", res.Attempts),
	}
	switch res.Outcome {
	case domain.DeliveryFailedAfterRetries:
		m.log.Error("Webhook delivery failed", append(fields, logger.String("url", res.URL), logger.Error(res.Err))...)
	case domain.DeliveryDelivered:
		m.log.Info("Webhook delivered", append(fields, logger.String("url", res.URL))...)
	default:
		m.log.Debug("Webhook delivery skipped", fields...)
	}
}
