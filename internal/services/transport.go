package services

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/desertthunder/filmhub/internal/shared"
)

// NewHTTPClient builds the HTTP client used for API calls from cfg.
//
// Requests pass through, in order: request id + logging, the rate limiter (when rate_limit > 0)
// and the circuit breaker (when enabled).
func NewHTTPClient(cfg shared.APIConfig, logger *log.Logger) *http.Client {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	logger = shared.WithLogger(logger, "component", "transport")

	var rt http.RoundTripper = http.DefaultTransport
	if cfg.Breaker.Enabled {
		rt = NewBreakerTransport(rt, cfg.Breaker, logger)
	}
	if cfg.RateLimit > 0 {
		rt = NewLimitedTransport(rt, rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.Burst, 1)))
	}
	rt = NewRequestIDTransport(rt, logger)

	return &http.Client{Transport: rt, Timeout: cfg.Timeout()}
}

// RequestIDHeader carries a per-request UUID.
const RequestIDHeader = "X-Request-ID"

// requestIDTransport tags each request with an id and logs its outcome at debug level.
type requestIDTransport struct {
	next   http.RoundTripper
	logger *log.Logger
}

func NewRequestIDTransport(next http.RoundTripper, logger *log.Logger) http.RoundTripper {
	return &requestIDTransport{next: next, logger: logger}
}

func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	id := req.Header.Get(RequestIDHeader)
	if id == "" {
		id = shared.GenerateID()
		req.Header.Set(RequestIDHeader, id)
	}

	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		t.logger.Debug("request failed", "id", id, "method", req.Method, "path", req.URL.Path, "error", err)
		return nil, err
	}

	t.logger.Debug("request", "id", id, "method", req.Method, "path", req.URL.Path,
		"status", resp.StatusCode, "elapsed", time.Since(start))
	return resp, nil
}

// limitedTransport waits on a token bucket before every request.
type limitedTransport struct {
	next    http.RoundTripper
	limiter *rate.Limiter
}

func NewLimitedTransport(next http.RoundTripper, limiter *rate.Limiter) http.RoundTripper {
	return &limitedTransport{next: next, limiter: limiter}
}

func (t *limitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", shared.ErrServiceUnavailable, err)
	}
	return t.next.RoundTrip(req)
}

// serverFailure marks a 5xx response so the breaker counts it while the caller still receives it.
type serverFailure struct {
	resp *http.Response
}

func (e *serverFailure) Error() string {
	return fmt.Sprintf("server error: status %d", e.resp.StatusCode)
}

// breakerTransport opens after repeated network errors or 5xx responses. 4xx responses are successes.
type breakerTransport struct {
	next http.RoundTripper
	cb   *gobreaker.CircuitBreaker[*http.Response]
}

func NewBreakerTransport(next http.RoundTripper, cfg shared.BreakerConfig, logger *log.Logger) http.RoundTripper {
	threshold := max(cfg.ConsecutiveFailures, 1)

	settings := gobreaker.Settings{
		Name:        "filmhub-api",
		MaxRequests: max(cfg.MaxRequests, 1),
		Interval:    time.Duration(cfg.IntervalSeconds) * time.Second,
		Timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	}

	return &breakerTransport{next: next, cb: gobreaker.NewCircuitBreaker[*http.Response](settings)}
}

func (t *breakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.cb.Execute(func() (*http.Response, error) {
		resp, err := t.next.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, &serverFailure{resp: resp}
		}
		return resp, nil
	})

	var sf *serverFailure
	switch {
	case err == nil:
		return resp, nil
	case errors.As(err, &sf):
		return sf.resp, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, fmt.Errorf("%w: circuit open: %v", shared.ErrServiceUnavailable, err)
	default:
		return nil, err
	}
}
