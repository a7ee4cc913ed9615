// Package external provides adapters for the upstream weather, air-quality and
// geocoding services and for the object cache backends.
package external

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"todayweather.app/internal/ports"
	"todayweather.app/pkg/errors"
)

const maxResponseBytes = 16 << 20

// HTTPClient interface for HTTP requests (for testing)
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ResilientHTTPClientParams holds parameters for creating a ResilientHTTPClient
type ResilientHTTPClientParams struct {
	Name               string
	Client             HTTPClient
	Timeout            time.Duration
	RatePerSecond      float64
	RateBurst          int
	BreakerMaxRequests uint32
	BreakerInterval    time.Duration
	BreakerTimeout     time.Duration
	Metrics            ports.ProviderMetrics
}

// ResilientHTTPClient throttles outbound calls and trips a circuit breaker when an
// upstream keeps failing. One instance is shared by every endpoint of a provider.
type ResilientHTTPClient struct {
	name    string
	client  HTTPClient
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	metrics ports.ProviderMetrics
}

// NewResilientHTTPClient creates a client. A zero RatePerSecond disables throttling.
func NewResilientHTTPClient(params ResilientHTTPClientParams) *ResilientHTTPClient {
	client := params.Client
	if client == nil {
		timeout := params.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if params.RatePerSecond > 0 {
		limit = rate.Limit(params.RatePerSecond)
	}
	burst := params.RateBurst
	if burst <= 0 {
		burst = 1
	}

	return &ResilientHTTPClient{
		name:    params.Name,
		client:  client,
		limiter: rate.NewLimiter(limit, burst),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        params.Name,
			MaxRequests: params.BreakerMaxRequests,
			Interval:    params.BreakerInterval,
			Timeout:     params.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
		metrics: params.Metrics,
	}
}

// Name returns the provider name used for metrics and breaker state.
func (c *ResilientHTTPClient) Name() string {
	return c.name
}

// Get performs a GET and returns the response body of a 2xx answer.
func (c *ResilientHTTPClient) Get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	start := time.Now()
	body, err := c.get(ctx, url, header)
	if c.metrics != nil {
		c.metrics.RecordProviderCall(ctx, c.name, time.Since(start), err)
	}
	return body, err
}

func (c *ResilientHTTPClient) get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.NewExternalAPIError(fmt.Sprintf("%s rate limit wait canceled", c.name), err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		for name, values := range header {
			for _, value := range values {
				req.Header.Add(name, value)
			}
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
		}
		return body, nil
	})
	if err != nil {
		if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, errors.NewProviderUnavailableError(c.name, err)
		}
		return nil, errors.NewExternalAPIError(fmt.Sprintf("%s request failed", c.name), err)
	}

	return result.([]byte), nil
}

// State reports the breaker state, for health checks.
func (c *ResilientHTTPClient) State() string {
	return c.breaker.State().String()
}
