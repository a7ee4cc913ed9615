package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"todayweather.app/internal/core/location"
	"todayweather.app/internal/ports"
)

func rawResponse(args mock.Arguments) (*ports.RawResponse, error) {
	resp, _ := args.Get(0).(*ports.RawResponse)
	return resp, args.Error(1)
}

// Geocoder is a testify mock of ports.Geocoder.
type Geocoder struct{ mock.Mock }

func (m *Geocoder) ByCoordinate(ctx context.Context, coord location.Coordinate) ([]location.RegionName, error) {
	args := m.Called(ctx, coord)
	regions, _ := args.Get(0).([]location.RegionName)
	return regions, args.Error(1)
}

func (m *Geocoder) ByAddress(ctx context.Context, query string) (location.Coordinate, []location.RegionName, error) {
	args := m.Called(ctx, query)
	coord, _ := args.Get(0).(location.Coordinate)
	regions, _ := args.Get(1).([]location.RegionName)
	return coord, regions, args.Error(2)
}

// GridForecastProvider is a testify mock of ports.GridForecastProvider.
type GridForecastProvider struct{ mock.Mock }

func (m *GridForecastProvider) ShortRange(ctx context.Context, grid location.GridCoord, cycle time.Time) (*ports.RawResponse, error) {
	return rawResponse(m.Called(ctx, grid, cycle))
}

func (m *GridForecastProvider) UltraShortForecast(ctx context.Context, grid location.GridCoord, cycle time.Time) (*ports.RawResponse, error) {
	return rawResponse(m.Called(ctx, grid, cycle))
}

func (m *GridForecastProvider) Nowcast(ctx context.Context, grid location.GridCoord, cycle time.Time) (*ports.RawResponse, error) {
	return rawResponse(m.Called(ctx, grid, cycle))
}

// RegionForecastProvider is a testify mock of ports.RegionForecastProvider.
type RegionForecastProvider struct{ mock.Mock }

func (m *RegionForecastProvider) Outlook(ctx context.Context, stnID string, cycle time.Time) (*ports.RawResponse, error) {
	return rawResponse(m.Called(ctx, stnID, cycle))
}

func (m *RegionForecastProvider) LandOutlook(ctx context.Context, regID string, cycle time.Time) (*ports.RawResponse, error) {
	return rawResponse(m.Called(ctx, regID, cycle))
}

func (m *RegionForecastProvider) Temperature(ctx context.Context, regID string, cycle time.Time) (*ports.RawResponse, error) {
	return rawResponse(m.Called(ctx, regID, cycle))
}

// StationObservationSource is a testify mock of ports.StationObservationSource.
type StationObservationSource struct{ mock.Mock }

func (m *StationObservationSource) MinuteTable(ctx context.Context, at time.Time) (*ports.RawResponse, error) {
	return rawResponse(m.Called(ctx, at))
}

func (m *StationObservationSource) CityTable(ctx context.Context, at time.Time) (*ports.RawResponse, error) {
	return rawResponse(m.Called(ctx, at))
}

// AirQualityProvider is a testify mock of ports.AirQualityProvider.
type AirQualityProvider struct{ mock.Mock }

func (m *AirQualityProvider) Readings(ctx context.Context, hour time.Time) ([]ports.AirQualityRecord, error) {
	args := m.Called(ctx, hour)
	records, _ := args.Get(0).([]ports.AirQualityRecord)
	return records, args.Error(1)
}

func (m *AirQualityProvider) Stations(ctx context.Context) ([]ports.MeasuringStation, error) {
	args := m.Called(ctx)
	stations, _ := args.Get(0).([]ports.MeasuringStation)
	return stations, args.Error(1)
}

// UVIndexProvider is a testify mock of ports.UVIndexProvider.
type UVIndexProvider struct{ mock.Mock }

func (m *UVIndexProvider) UVIndex(ctx context.Context, areaCode string, cycle time.Time) (*ports.UVIndex, error) {
	args := m.Called(ctx, areaCode, cycle)
	index, _ := args.Get(0).(*ports.UVIndex)
	return index, args.Error(1)
}

// DailyHistoryProvider is a testify mock of ports.DailyHistoryProvider.
type DailyHistoryProvider struct{ mock.Mock }

func (m *DailyHistoryProvider) DailyHistory(ctx context.Context, stnID string, from, to time.Time) ([]ports.DailyObservation, error) {
	args := m.Called(ctx, stnID, from, to)
	days, _ := args.Get(0).([]ports.DailyObservation)
	return days, args.Error(1)
}

// ConfigProvider is a fixed ports.ConfigProvider.
type ConfigProvider struct {
	Fusion   ports.FusionConfig
	Server   ports.ServerConfig
	Database ports.DatabaseConfig
	Upstream ports.UpstreamConfig
	Cache    ports.CacheConfig
	Warmup   ports.WarmupConfig
}

func (c *ConfigProvider) GetFusionConfig() ports.FusionConfig     { return c.Fusion }
func (c *ConfigProvider) GetServerConfig() ports.ServerConfig     { return c.Server }
func (c *ConfigProvider) GetDatabaseConfig() ports.DatabaseConfig { return c.Database }
func (c *ConfigProvider) GetUpstreamConfig() ports.UpstreamConfig { return c.Upstream }
func (c *ConfigProvider) GetCacheConfig() ports.CacheConfig       { return c.Cache }
func (c *ConfigProvider) GetWarmupConfig() ports.WarmupConfig     { return c.Warmup }
