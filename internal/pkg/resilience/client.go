package resilience

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Doer is the abstract request primitive. Production uses *http.Client;
// tests substitute stubs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures a resilient client for one provider.
type Options struct {
	Name              string
	RequestsPerMinute int // 0 disables the rate limiter
	DailyLimit        int // 0 means unlimited
	MaxRetries        int
	BaseDelay         time.Duration
	MaxDelay          time.Duration
	FailureThreshold  int
	SuccessThreshold  int
	OpenDuration      time.Duration
	Timeout           time.Duration
	UserAgent         string
	Headers           map[string]string // injected on every request (auth etc.)
}

func (o *Options) applyDefaults() {
	if o.Name == "" {
		o.Name = "provider"
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = time.Second
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = 10 * time.Second
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
}

// Client wraps an abstract HTTP primitive with quota tracking, minimum-interval
// rate limiting, a three-state circuit breaker, jittered exponential retry and
// response sanitization. One instance per provider adapter; all mutable state
// is guarded so overlapping sync runs can share the instance safely.
type Client struct {
	opts    Options
	doer    Doer
	limiter *rate.Limiter
	breaker *circuitBreaker
	quota   *dailyQuota
	metrics *requestMetrics

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewClient builds a client around doer. A nil doer gets a default
// *http.Client with the configured timeout.
func NewClient(opts Options, doer Doer) *Client {
	opts.applyDefaults()
	if doer == nil {
		doer = &http.Client{Timeout: opts.Timeout}
	}

	var limiter *rate.Limiter
	if opts.RequestsPerMinute > 0 {
		// Minimum inter-request interval: 60s / rpm, burst 1.
		interval := time.Minute / time.Duration(opts.RequestsPerMinute)
		limiter = rate.NewLimiter(rate.Every(interval), 1)
	}

	return &Client{
		opts:    opts,
		doer:    doer,
		limiter: limiter,
		breaker: newCircuitBreaker(opts.Name, opts.FailureThreshold, opts.SuccessThreshold, opts.OpenDuration),
		quota:   newDailyQuota(opts.Name, opts.DailyLimit),
		metrics: &requestMetrics{},
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Get issues one resilient GET and returns the sanitized JSON body.
// Order per call: circuit check, quota check, rate-limit wait, attempt loop.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if err := c.breaker.allow(); err != nil {
		return nil, err
	}
	if err := c.quota.check(); err != nil {
		return nil, err
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &Error{Kind: KindTransport, Provider: c.opts.Name, Msg: "rate limit wait cancelled", Err: err}
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		start := time.Now()
		body, err := c.attempt(ctx, url)
		c.metrics.record(err == nil, time.Since(start))

		if err == nil {
			c.breaker.onSuccess()
			return body, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
		if attempt < c.opts.MaxRetries {
			delay := c.backoff(attempt)
			slog.Debug("Request failed, retrying",
				"provider", c.opts.Name, "attempt", attempt+1, "delay", delay, "error", err)
			if !sleepCtx(ctx, delay) {
				break
			}
		}
	}

	c.breaker.onFailure()
	return nil, lastErr
}

// GetJSON issues a resilient GET and decodes the sanitized body into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	body, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &Error{Kind: KindParse, Provider: c.opts.Name, Msg: "failed to decode response", Err: err}
	}
	return nil
}

// attempt performs a single HTTP request and sanitizes the response.
func (c *Client) attempt(ctx context.Context, url string) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Provider: c.opts.Name, Msg: "failed to create request", Err: err}
	}
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}
	for key, value := range c.opts.Headers {
		req.Header.Set(key, value)
	}

	c.quota.increment()
	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Provider: c.opts.Name, Msg: "request failed", Err: err}
	}
	defer resp.Body.Close()

	// Non-2xx is retried up to MaxRetries regardless of status class.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &Error{
			Kind:       KindHTTP,
			Provider:   c.opts.Name,
			StatusCode: resp.StatusCode,
			Msg:        fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Provider: c.opts.Name, Msg: "failed to read body", Err: err}
	}

	return SanitizeBody(c.opts.Name, body)
}

// backoff computes min(base * 2^attempt, max) plus up to 30% random jitter.
func (c *Client) backoff(attempt int) time.Duration {
	delay := c.opts.BaseDelay << uint(attempt)
	if delay > c.opts.MaxDelay {
		delay = c.opts.MaxDelay
	}

	c.rngMu.Lock()
	jitter := time.Duration(c.rng.Float64() * 0.3 * float64(delay))
	c.rngMu.Unlock()

	return delay + jitter
}

// sleepCtx sleeps for d, returning false if ctx was cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// TestConnection issues a single probe request and reports reachability.
func (c *Client) TestConnection(ctx context.Context, url string) bool {
	_, err := c.Get(ctx, url)
	return err == nil
}

// Usage returns the daily quota snapshot.
func (c *Client) Usage() UsageStats { return c.quota.stats() }

// CircuitStatus returns a read-only breaker snapshot.
func (c *Client) CircuitStatus() BreakerStatus { return c.breaker.status() }

// ResetCircuit forces the breaker closed for manual recovery.
func (c *Client) ResetCircuit() {
	slog.Info("Circuit breaker manually reset", "provider", c.opts.Name)
	c.breaker.reset()
}

// Stats returns request metrics (counts, rolling average latency).
func (c *Client) Stats() Metrics { return c.metrics.snapshot() }

// Name returns the provider name this client serves.
func (c *Client) Name() string { return c.opts.Name }
