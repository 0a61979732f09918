// Package feed is the shared fetch boundary for provider scrapes. It owns
// retries, rate-limit cooldowns, circuit breaking, and the staging row shape;
// site-specific parsing lives with each provider's unit definitions.
package feed

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/pitchrank/pitchrank/internal/platform/logging"
	"github.com/pitchrank/pitchrank/internal/platform/resilience"
	"github.com/pitchrank/pitchrank/internal/usecase"
)

const (
	defaultTimeout           = 30 * time.Second
	defaultRateLimitCooldown = 5 * time.Minute
	defaultBackoffBase       = 2 * time.Second
	maxBackoff               = 30 * time.Second
	maxResponseBytes         = 6 << 20
)

var errFeedTransient = crerr.New("feed transient failure")

// IsTransient reports whether a fetch failure is worth retrying on a later
// run, as opposed to a permanently bad unit.
func IsTransient(err error) bool {
	return stderrors.Is(err, errFeedTransient)
}

// fetchState tracks where one request currently sits in its retry lifecycle.
// Logged on every transition so a stalled multi-hour scrape is diagnosable
// from output alone.
type fetchState int

const (
	stateIdle fetchState = iota
	stateFetching
	stateBackoff
	stateRetrying
	stateDone
	stateFailed
)

func (s fetchState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateFetching:
		return "fetching"
	case stateBackoff:
		return "backoff"
	case stateRetrying:
		return "retrying"
	case stateDone:
		return "done"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type ClientConfig struct {
	HTTPClient        *http.Client
	BaseURL           string
	Timeout           time.Duration
	MaxRetries        int
	RateLimitCooldown time.Duration
	BackoffBase       time.Duration
	Logger            *logging.Logger
	CircuitBreaker    resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient        *http.Client
	baseURL           string
	maxRetries        int
	rateLimitCooldown time.Duration
	backoffBase       time.Duration
	logger            *logging.Logger
	breaker           *resilience.CircuitBreaker
	circuitEnabled    bool
	flight            resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	cooldown := cfg.RateLimitCooldown
	if cooldown <= 0 {
		cooldown = defaultRateLimitCooldown
	}
	backoffBase := cfg.BackoffBase
	if backoffBase <= 0 {
		backoffBase = defaultBackoffBase
	}

	return &Client{
		httpClient:        httpClient,
		baseURL:           strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		maxRetries:        maxInt(cfg.MaxRetries, 0),
		rateLimitCooldown: cooldown,
		backoffBase:       backoffBase,
		logger:            logger,
		breaker:           resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		circuitEnabled:    cfg.CircuitBreaker.Enabled,
	}
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "feed circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: feed is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && IsTransient(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode feed payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	state := stateIdle
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		state = stateFetching
		if attempt > 0 {
			state = stateRetrying
		}

		raw, wait, err := c.attempt(ctx, fullURL)
		if err == nil {
			state = stateDone
			c.logger.DebugContext(ctx, "feed request complete", "url", fullURL, "state", state, "attempt", attempt)
			return raw, nil
		}
		lastErr = err
		if !IsTransient(err) {
			state = stateFailed
			c.logger.WarnContext(ctx, "feed request rejected", "url", fullURL, "state", state, "error", err)
			return nil, err
		}
		if attempt == c.maxRetries {
			break
		}

		if wait <= 0 {
			wait = c.backoffBase * time.Duration(attempt+1)
			if wait > maxBackoff {
				wait = maxBackoff
			}
		}
		state = stateBackoff
		c.logger.WarnContext(ctx, "feed request backing off",
			"url", fullURL, "state", state, "attempt", attempt, "wait", wait, "error", err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	state = stateFailed
	if lastErr == nil {
		lastErr = fmt.Errorf("feed request failed")
	}
	c.logger.WarnContext(ctx, "feed request exhausted retries", "url", fullURL, "state", state, "error", lastErr)
	return nil, lastErr
}

// attempt performs one request. A non-zero wait overrides the default
// backoff; rate-limit responses demand a much longer pause than a flaky 5xx.
func (c *Client) attempt(ctx context.Context, fullURL string) ([]byte, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: send request: %v", errFeedTransient, err)
	}

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, 0, fmt.Errorf("%w: read response body: %v", errFeedTransient, readErr)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return raw, 0, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		wait := c.rateLimitCooldown
		if retryAfter := parseRetryAfter(resp.Header.Get("Retry-After")); retryAfter > 0 {
			wait = retryAfter
		}
		return nil, wait, fmt.Errorf("%w: rate limited status=%d", errFeedTransient, resp.StatusCode)
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, 0, fmt.Errorf("%w: feed status=%d body=%s", errFeedTransient, resp.StatusCode, abbreviateBody(raw))
	default:
		return nil, 0, fmt.Errorf("feed status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
	}
}

func parseRetryAfter(header string) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	body := strings.TrimSpace(string(raw))
	if len(body) > limit {
		return body[:limit] + "..."
	}
	return body
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
