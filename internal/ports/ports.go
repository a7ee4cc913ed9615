// Package ports defines the interfaces for external dependencies in our hexagonal architecture.
// These interfaces are implemented by adapters and faked in tests.
package ports

// ApplicationPorts aggregates all ports for dependency injection
type ApplicationPorts struct {
	// Weather sources
	Geocoder   Geocoder
	Grid       GridForecastProvider
	Region     RegionForecastProvider
	Stations   StationObservationSource
	AirQuality AirQualityProvider
	UV         UVIndexProvider
	History    DailyHistoryProvider

	// Cache
	ObjectCache  CacheProvider
	CacheMetrics CacheMetrics

	// Infrastructure
	ConfigProvider  ConfigProvider
	Logger          Logger
	FetchMetrics    FetchMetrics
	ProviderMetrics ProviderMetrics
}
