package infrastructure

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todayweather.app/internal/mocks"
	"todayweather.app/internal/ports"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type fakeBreaker struct{ name, state string }

func (b fakeBreaker) Name() string  { return b.name }
func (b fakeBreaker) State() string { return b.state }

type fakeFetchStats map[string]int64

func (f fakeFetchStats) TierCounts() map[string]int64 { return f }

func TestCacheHealthChecker(t *testing.T) {
	metrics := mocks.NewCacheMetrics()
	metrics.RecordHit()
	metrics.RecordMiss()

	tests := []struct {
		name     string
		backend  interface{}
		expected string
	}{
		{"NoPing", struct{}{}, "healthy"},
		{"PingOK", fakePinger{}, "healthy"},
		{"PingFails", fakePinger{err: fmt.Errorf("connection refused")}, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := NewCacheHealthChecker("redis", tt.backend, metrics).Check(context.Background())

			assert.Equal(t, "cache", status.Component)
			assert.Equal(t, tt.expected, status.Status)
			assert.Equal(t, "redis", status.Details["type"])
			assert.Equal(t, int64(1), status.Details["hits"])
			assert.Equal(t, 0.5, status.Details["hit_ratio"])
			if tt.expected == "unhealthy" {
				assert.Equal(t, "connection refused", status.Error)
			}
		})
	}
}

func TestUpstreamHealthChecker(t *testing.T) {
	healthy := NewUpstreamHealthChecker(fakeBreaker{"kma", "closed"}, fakeBreaker{"keco", "closed"}).Check(context.Background())
	assert.Equal(t, "healthy", healthy.Status)
	assert.Equal(t, "closed", healthy.Details["kma"])

	degraded := NewUpstreamHealthChecker(fakeBreaker{"kma", "closed"}, fakeBreaker{"kakao", "open"}).Check(context.Background())
	assert.Equal(t, "degraded", degraded.Status)
	assert.Equal(t, "open", degraded.Details["kakao"])
}

func TestSystemHealthChecker_CheckAll(t *testing.T) {
	checker := NewSystemHealthChecker(SystemHealthCheckerConfig{
		CacheChecker:    NewCacheHealthChecker("memory", struct{}{}, nil),
		UpstreamChecker: NewUpstreamHealthChecker(fakeBreaker{"kma", "closed"}),
		ConfigProvider:  NewConfigProviderAdapter(loadTestConfig(t)),
	})

	results := checker.CheckAll(context.Background())

	require.Len(t, results, 3)
	assert.Equal(t, "healthy", results["cache"].Status)
	assert.Equal(t, "healthy", results["upstreams"].Status)
	assert.Equal(t, true, results["config"].Details["warmupEnabled"])
	assert.Equal(t, 2, results["config"].Details["warmupLocations"])
}

func TestMetricsCollectorAdapter_GetMetrics(t *testing.T) {
	cacheMetrics := mocks.NewCacheMetrics()
	cacheMetrics.RecordHit()

	collector := NewMetricsCollectorAdapter(MetricsCollectorConfig{
		CacheType:    "s3",
		CacheMetrics: cacheMetrics,
		FetchStats:   fakeFetchStats{"memory": 4, "remote": 2},
		Upstreams:    []BreakerState{fakeBreaker{"kma", "half-open"}},
	})

	metrics, err := collector.GetMetrics(context.Background())
	require.NoError(t, err)

	cache, ok := metrics["cache"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "s3", cache["type"])
	assert.Equal(t, int64(1), cache["hits"])
	assert.Equal(t, map[string]int64{"memory": 4, "remote": 2}, metrics["fetch_tiers"])
	assert.Equal(t, map[string]string{"kma": "half-open"}, metrics["breakers"])
}

func TestMetricsCollectorAdapter_Empty(t *testing.T) {
	metrics, err := NewMetricsCollectorAdapter(MetricsCollectorConfig{}).GetMetrics(context.Background())
	require.NoError(t, err)
	assert.Empty(t, metrics)
}

var _ ports.SystemHealthChecker = (*SystemHealthChecker)(nil)
