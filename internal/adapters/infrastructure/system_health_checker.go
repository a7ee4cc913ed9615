package infrastructure

import (
	"context"

	"todayweather.app/internal/ports"
)

// SystemHealthChecker aggregates all health checks
type SystemHealthChecker struct {
	cacheChecker    ports.HealthChecker
	upstreamChecker ports.HealthChecker
	configProvider  ports.ConfigProvider
}

// SystemHealthCheckerConfig holds the configuration for creating a system health checker
type SystemHealthCheckerConfig struct {
	CacheChecker    ports.HealthChecker
	UpstreamChecker ports.HealthChecker
	ConfigProvider  ports.ConfigProvider
}

// NewSystemHealthChecker creates a new system health checker
func NewSystemHealthChecker(config SystemHealthCheckerConfig) *SystemHealthChecker {
	return &SystemHealthChecker{
		cacheChecker:    config.CacheChecker,
		upstreamChecker: config.UpstreamChecker,
		configProvider:  config.ConfigProvider,
	}
}

// CheckAll performs health checks on all components
func (s *SystemHealthChecker) CheckAll(ctx context.Context) map[string]ports.HealthStatus {
	results := make(map[string]ports.HealthStatus)

	if s.cacheChecker != nil {
		results["cache"] = s.cacheChecker.Check(ctx)
	}

	if s.upstreamChecker != nil {
		results["upstreams"] = s.upstreamChecker.Check(ctx)
	}

	if s.configProvider != nil {
		fusion := s.configProvider.GetFusionConfig()
		warmup := s.configProvider.GetWarmupConfig()
		results["config"] = ports.HealthStatus{
			Component: "config",
			Status:    "healthy",
			Details: map[string]interface{}{
				"cacheTTL":         fusion.CacheTTL.String(),
				"observationHours": fusion.ObservationHours,
				"warmupEnabled":    warmup.Enabled,
				"warmupLocations":  len(warmup.Locations),
			},
		}
	}

	return results
}
