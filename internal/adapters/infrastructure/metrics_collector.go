package infrastructure

import (
	"context"

	"todayweather.app/internal/ports"
)

// FetchStats is implemented by metrics that count lookups per tier
type FetchStats interface {
	TierCounts() map[string]int64
}

// MetricsCollectorAdapter implements the MetricsCollector interface for HTTPServerAdapter
// by aggregating the cache statistics and fetch tier counts
type MetricsCollectorAdapter struct {
	cacheType    string
	cacheMetrics ports.CacheMetrics
	fetchStats   FetchStats
	upstreams    []BreakerState
}

// MetricsCollectorConfig holds configuration for creating the metrics collector
type MetricsCollectorConfig struct {
	CacheType    string
	CacheMetrics ports.CacheMetrics
	FetchStats   FetchStats
	Upstreams    []BreakerState
}

// NewMetricsCollectorAdapter creates a new metrics collector adapter
func NewMetricsCollectorAdapter(config MetricsCollectorConfig) *MetricsCollectorAdapter {
	return &MetricsCollectorAdapter{
		cacheType:    config.CacheType,
		cacheMetrics: config.CacheMetrics,
		fetchStats:   config.FetchStats,
		upstreams:    config.Upstreams,
	}
}

// GetMetrics returns aggregated metrics from all monitored services
func (m *MetricsCollectorAdapter) GetMetrics(ctx context.Context) (map[string]interface{}, error) {
	metrics := map[string]interface{}{}

	if m.cacheMetrics != nil {
		cacheStats := m.cacheMetrics.GetStats()
		metrics["cache"] = map[string]interface{}{
			"type":      m.cacheType,
			"hits":      cacheStats.Hits,
			"misses":    cacheStats.Misses,
			"total_ops": cacheStats.TotalOps,
			"hit_ratio": cacheStats.HitRatio,
			"updated":   cacheStats.LastUpdated,
		}
	}

	if m.fetchStats != nil {
		metrics["fetch_tiers"] = m.fetchStats.TierCounts()
	}

	if len(m.upstreams) > 0 {
		breakers := make(map[string]string, len(m.upstreams))
		for _, upstream := range m.upstreams {
			breakers[upstream.Name()] = upstream.State()
		}
		metrics["breakers"] = breakers
	}

	return metrics, nil
}
