package infrastructure

import (
	"context"

	"todayweather.app/internal/ports"
)

// Pinger is implemented by cache backends that can verify connectivity
type Pinger interface {
	Ping(ctx context.Context) error
}

// CacheHealthChecker implements object cache health checking
type CacheHealthChecker struct {
	cacheType string
	backend   interface{}
	metrics   ports.CacheMetrics
}

// NewCacheHealthChecker creates a cache health checker. Backends without a
// Ping method are reported healthy.
func NewCacheHealthChecker(cacheType string, backend interface{}, metrics ports.CacheMetrics) *CacheHealthChecker {
	return &CacheHealthChecker{cacheType: cacheType, backend: backend, metrics: metrics}
}

// Check verifies cache connectivity
func (c *CacheHealthChecker) Check(ctx context.Context) ports.HealthStatus {
	status := ports.HealthStatus{
		Component: "cache",
		Status:    "healthy",
		Details: map[string]interface{}{
			"type": c.cacheType,
		},
	}

	if c.metrics != nil {
		stats := c.metrics.GetStats()
		status.Details["hits"] = stats.Hits
		status.Details["misses"] = stats.Misses
		status.Details["hit_ratio"] = stats.HitRatio
	}

	if pinger, ok := c.backend.(Pinger); ok {
		if err := pinger.Ping(ctx); err != nil {
			status.Status = "unhealthy"
			status.Error = err.Error()
		}
	}
	return status
}

// BreakerState is implemented by upstream clients that expose a circuit breaker
type BreakerState interface {
	Name() string
	State() string
}

// UpstreamHealthChecker reports the circuit breaker state of every upstream client
type UpstreamHealthChecker struct {
	clients []BreakerState
}

// NewUpstreamHealthChecker creates a new upstream health checker
func NewUpstreamHealthChecker(clients ...BreakerState) *UpstreamHealthChecker {
	return &UpstreamHealthChecker{clients: clients}
}

// Check reports "degraded" while any breaker is open. The service still answers
// with the remaining sources, so an open breaker is never "unhealthy".
func (u *UpstreamHealthChecker) Check(ctx context.Context) ports.HealthStatus {
	status := ports.HealthStatus{
		Component: "upstreams",
		Status:    "healthy",
		Details:   make(map[string]interface{}, len(u.clients)),
	}

	for _, client := range u.clients {
		state := client.State()
		status.Details[client.Name()] = state
		if state != "closed" {
			status.Status = "degraded"
		}
	}
	return status
}
