package resilience

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// Predefined errors for resilient operations.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrMaxRetriesExceeded is returned when all retry attempts have been exhausted.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// ClientConfig holds configuration for the resilient HTTP client.
type ClientConfig struct {
	// Name identifies this client for circuit breaker naming.
	Name string

	// Timeout is the request timeout for individual HTTP calls.
	// Default: 10 seconds
	Timeout time.Duration

	// MaxRetries is the maximum number of retry attempts.
	// Default: 3
	MaxRetries uint64

	// InitialInterval is the initial retry backoff interval.
	// Default: 1 second
	InitialInterval time.Duration

	// MaxInterval is the maximum retry backoff interval.
	// Default: 30 seconds
	MaxInterval time.Duration

	// CircuitBreaker is the circuit breaker configuration.
	// If nil, uses DefaultCircuitBreakerConfig.
	CircuitBreaker *CircuitBreakerConfig
}

// DefaultClientConfig returns sensible defaults for the resilient client.
func DefaultClientConfig(name string) ClientConfig {
	cbConfig := DefaultCircuitBreakerConfig(name)
	return ClientConfig{
		Name:            name,
		Timeout:         10 * time.Second,
		MaxRetries:      3,
		InitialInterval: 1 * time.Second,
		MaxInterval:     30 * time.Second,
		CircuitBreaker:  &cbConfig,
	}
}

// Client is a resilient HTTP client with circuit breaker and retry logic.
// Transient failures (network errors, 5xx, 429) are retried with exponential
// backoff; a Retry-After header on a 429 response overrides the next backoff
// interval.
type Client struct {
	httpClient     *http.Client
	circuitBreaker *gobreaker.CircuitBreaker[*http.Response]
	config         ClientConfig
}

// NewClient creates a new resilient HTTP client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 1 * time.Second
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 30 * time.Second
	}

	var cb *gobreaker.CircuitBreaker[*http.Response]
	if cfg.CircuitBreaker != nil {
		cb = NewCircuitBreaker[*http.Response](*cfg.CircuitBreaker) //nolint:bodyclose // type param, not response
	} else {
		defaultCB := DefaultCircuitBreakerConfig(cfg.Name)
		cb = NewCircuitBreaker[*http.Response](defaultCB) //nolint:bodyclose // type param, not response
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		circuitBreaker: cb,
		config:         cfg,
	}
}

// Do executes an HTTP request with circuit breaker protection and retry logic.
// Returns immediately with ErrCircuitOpen if the circuit breaker is open.
// When retries are exhausted, the last response (the final 429 or 5xx) is
// returned so the caller can inspect status and body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.DoWithContext(req.Context(), req)
}

// DoWithContext executes an HTTP request with the given context.
func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxInterval = c.config.MaxInterval
	bo.Multiplier = 2
	bo.RandomizationFactor = 0 // deterministic doubling
	bo.MaxElapsedTime = 0      // unlimited, we control retries via WithMaxRetries

	hinted := &hintedBackOff{inner: backoff.WithMaxRetries(bo, c.config.MaxRetries)}
	policy := backoff.WithContext(hinted, ctx)

	var lastResp *http.Response

	operation := func() error {
		// 429 is checked outside the breaker: being rate limited is not an
		// upstream fault and must not open the circuit mid-pagination.
		resp, err := c.circuitBreaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller is responsible for closing
			reqClone := req.Clone(ctx)
			r, err := c.httpClient.Do(reqClone)
			if err != nil {
				return nil, err
			}

			// Treat 5xx as errors for circuit breaker
			if r.StatusCode >= 500 {
				return r, &ServerError{StatusCode: r.StatusCode}
			}

			return r, nil
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			if errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}

			if resp != nil {
				replaceResponse(&lastResp, resp)
			}
			// Network and server errors are retryable
			return err
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			hinted.hint = retryAfterHint(resp.Header)
			replaceResponse(&lastResp, resp)
			return &RateLimitError{RetryAfter: hinted.hint}
		}

		replaceResponse(&lastResp, resp)

		// Success or client error (not retryable)
		return nil
	}

	err := backoff.Retry(operation, policy)
	if err != nil {
		// The last 429/5xx response is handed back so the caller sees the
		// final status and body.
		if lastResp != nil {
			return lastResp, nil
		}
		return nil, err
	}

	return lastResp, nil
}

// replaceResponse closes the previously stored failed response before
// tracking the new one, so intermediate attempt bodies don't leak.
func replaceResponse(last **http.Response, next *http.Response) {
	if *last != nil && *last != next {
		_, _ = io.Copy(io.Discard, (*last).Body)
		_ = (*last).Body.Close()
	}
	*last = next
}

// retryAfterHint parses a Retry-After header into a wait duration.
// Returns 0 when absent or unparseable (exponential backoff applies).
func retryAfterHint(h http.Header) time.Duration {
	value := h.Get("Retry-After")
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

// hintedBackOff wraps a backoff policy and lets the operation substitute the
// next interval with a server-supplied Retry-After hint. The inner policy is
// still consulted so the retry budget keeps counting down.
type hintedBackOff struct {
	inner backoff.BackOff
	hint  time.Duration
}

func (b *hintedBackOff) NextBackOff() time.Duration {
	next := b.inner.NextBackOff()
	if next == backoff.Stop {
		return backoff.Stop
	}
	if b.hint > 0 {
		next = b.hint
		b.hint = 0
	}
	return next
}

func (b *hintedBackOff) Reset() {
	b.hint = 0
	b.inner.Reset()
}

// ServerError represents an HTTP 5xx server error.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return "server error: " + http.StatusText(e.StatusCode)
}

// RateLimitError represents an HTTP 429 response from the upstream table API.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return "rate limited by upstream"
}

// CircuitBreakerState returns the current state of the circuit breaker.
func (c *Client) CircuitBreakerState() gobreaker.State {
	return c.circuitBreaker.State()
}

// CircuitBreakerCounts returns the current counts of the circuit breaker.
func (c *Client) CircuitBreakerCounts() gobreaker.Counts {
	return c.circuitBreaker.Counts()
}
