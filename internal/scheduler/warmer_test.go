package scheduler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todayweather.app/internal/core/weather"
	"todayweather.app/internal/mocks"
	"todayweather.app/internal/ports"
)

type recordingFetcher struct {
	mu       sync.Mutex
	requests []weather.Request
	failLat  float64
}

func (f *recordingFetcher) GetWeather(_ context.Context, request weather.Request) (*weather.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, request)
	if request.Coordinate != nil && request.Coordinate.Lat == f.failLat {
		return nil, fmt.Errorf("upstream down")
	}
	return &weather.Report{}, nil
}

func (f *recordingFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func TestWarmer_RunOnce(t *testing.T) {
	fetcher := &recordingFetcher{failLat: 35.1796}
	logger := mocks.NewRecordingLogger()
	warmer := NewWarmer(ports.WarmupConfig{
		Enabled: true,
		Locations: []ports.WarmupLocation{
			{Lat: 37.5665, Lon: 126.9780},
			{Lat: 35.1796, Lon: 129.0756},
			{Lat: 33.4996, Lon: 126.5312},
		},
	}, fetcher, logger)

	succeeded := warmer.RunOnce(context.Background())

	assert.Equal(t, 2, succeeded)
	assert.Equal(t, 3, fetcher.count())
	assert.Equal(t, 1, logger.Count("WARN"))
	assert.True(t, logger.Has("INFO", "cache warm-up completed"))
	for _, request := range fetcher.requests {
		require.NotNil(t, request.Coordinate)
		assert.Empty(t, request.Address)
	}
}

func TestWarmer_StartDisabled(t *testing.T) {
	tests := []struct {
		name   string
		config ports.WarmupConfig
	}{
		{"Disabled", ports.WarmupConfig{Enabled: false, Locations: []ports.WarmupLocation{{Lat: 37.5, Lon: 127}}}},
		{"NoLocations", ports.WarmupConfig{Enabled: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &recordingFetcher{}
			logger := mocks.NewRecordingLogger()
			warmer := NewWarmer(tt.config, fetcher, logger)

			require.NoError(t, warmer.Start())
			defer warmer.Stop()

			assert.True(t, logger.Has("INFO", "cache warm-up disabled"))
			assert.Zero(t, fetcher.count())
		})
	}
}

func TestWarmer_StartRunsImmediately(t *testing.T) {
	fetcher := &recordingFetcher{}
	logger := mocks.NewRecordingLogger()
	warmer := NewWarmer(ports.WarmupConfig{
		Enabled:         true,
		IntervalMinutes: 60,
		Locations:       []ports.WarmupLocation{{Lat: 37.5665, Lon: 126.9780}},
	}, fetcher, logger)

	require.NoError(t, warmer.Start())
	defer warmer.Stop()

	require.Eventually(t, func() bool { return fetcher.count() >= 1 }, 2*time.Second, 10*time.Millisecond)
	assert.True(t, logger.Has("INFO", "cache warm-up scheduled"))
}
