// Package notifier submits single URL notifications to the indexing API on
// behalf of one account.
package notifier

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/samims/indexer/internal/config"
	"github.com/samims/indexer/internal/metrics"
)

// maxResponseBytes bounds how much of a response body is kept for diagnostics.
const maxResponseBytes = 64 * 1024

// ErrRetriesExhausted is carried by a Result whose every attempt failed transiently.
var ErrRetriesExhausted = errors.New("retries exhausted")

// Result is the raw result of one submission. Classification is left to the caller.
type Result struct {
	URL        string
	StatusCode int
	Body       []byte
	Attempts   int
	// Err is set only when no response was obtained.
	Err error
}

// Submitter sends notifications under one account's bearer token.
// Close releases the pooled connections and must be called once all
// submissions have returned.
type Submitter interface {
	Submit(ctx context.Context, rawURL string) Result
	Close()
}

// SleepFunc waits d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

type Client struct {
	cfg       config.NotifierConfig
	transport http.RoundTripper
	sleep     SleepFunc
	logger    *slog.Logger
}

type Option func(*Client)

// WithTransport replaces the default TLS transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.transport = rt }
}

// WithSleep replaces the wait between attempts.
func WithSleep(fn SleepFunc) Option {
	return func(c *Client) { c.sleep = fn }
}

func New(cfg config.NotifierConfig, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		cfg:    cfg,
		sleep:  sleepContext,
		logger: logger.With("layer", "notifier"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = newTransport(cfg.InsecureSkipVerify)
	}
	return c
}

func newTransport(insecureSkipVerify bool) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConnsPerHost = 100
	t.TLSClientConfig = &tls.Config{
		// Certificate verification is off unless INSECURE_SKIP_VERIFY=false.
		InsecureSkipVerify: insecureSkipVerify, //nolint:gosec
	}
	return t
}

// Open starts a session for one account. Every session gets its own
// connection pool so that accounts never share connections.
func (c *Client) Open(token string) Submitter {
	s := &session{
		cfg:    c.cfg,
		token:  token,
		sleep:  c.sleep,
		logger: c.logger,
	}

	rt := c.transport
	if t, ok := rt.(*http.Transport); ok {
		t = t.Clone()
		s.closeIdle = t.CloseIdleConnections
		rt = t
	}
	s.client = &http.Client{Transport: rt, Timeout: c.cfg.RequestTimeout}

	if c.cfg.RequestsPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(c.cfg.RequestsPerSecond), max(c.cfg.Burst, 1))
	}
	return s
}

type notification struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

type session struct {
	cfg       config.NotifierConfig
	token     string
	client    *http.Client
	limiter   *rate.Limiter
	sleep     SleepFunc
	logger    *slog.Logger
	closeIdle func()
}

// Submit posts one notification, retrying transient disconnects up to
// MaxAttempts times with a fixed delay between attempts.
func (s *session) Submit(ctx context.Context, rawURL string) Result {
	body, err := json.Marshal(notification{URL: strings.TrimSpace(rawURL), Type: s.cfg.NotificationType})
	if err != nil {
		return Result{URL: rawURL, Err: fmt.Errorf("encode request: %w", err)}
	}

	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return Result{URL: rawURL, Attempts: attempt - 1, Err: err}
			}
		}

		status, payload, err := s.post(ctx, body)
		if err == nil {
			return Result{URL: rawURL, StatusCode: status, Body: payload, Attempts: attempt}
		}
		if !IsTransient(err) {
			s.logger.Warn("Submission failed",
				slog.String("url", rawURL),
				slog.Int("attempt", attempt),
				slog.Any("error", err))
			return Result{URL: rawURL, Attempts: attempt, Err: err}
		}

		lastErr = err
		if attempt == s.cfg.MaxAttempts {
			break
		}

		metrics.SubmissionRetries.Inc()
		s.logger.Warn("Transient failure, retrying",
			slog.String("url", rawURL),
			slog.Int("attempt", attempt),
			slog.Duration("delay", s.cfg.RetryDelay),
			slog.Any("error", err))
		if err := s.sleep(ctx, s.cfg.RetryDelay); err != nil {
			return Result{URL: rawURL, Attempts: attempt, Err: err}
		}
	}

	return Result{
		URL:      rawURL,
		Attempts: s.cfg.MaxAttempts,
		Err:      fmt.Errorf("%w: %v", ErrRetriesExhausted, lastErr),
	}
}

func (s *session) post(ctx context.Context, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, payload, nil
}

func (s *session) Close() {
	if s.closeIdle != nil {
		s.closeIdle()
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
