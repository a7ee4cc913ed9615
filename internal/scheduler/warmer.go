// Package scheduler runs the background jobs that keep the object cache warm and tidy.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"todayweather.app/internal/core/location"
	"todayweather.app/internal/core/series"
	"todayweather.app/internal/core/weather"
	"todayweather.app/internal/ports"
)

const (
	defaultIntervalMinutes = 30
	locationTimeout        = 60 * time.Second
)

// WeatherFetcher runs one fusion request.
type WeatherFetcher interface {
	GetWeather(ctx context.Context, request weather.Request) (*weather.Report, error)
}

// Warmer periodically fuses the configured locations so their upstream payloads
// are served from the cache.
type Warmer struct {
	scheduler *gocron.Scheduler
	fetcher   WeatherFetcher
	config    ports.WarmupConfig
	logger    ports.Logger
}

// NewWarmer creates a warmer. Nothing is scheduled until Start.
func NewWarmer(config ports.WarmupConfig, fetcher WeatherFetcher, logger ports.Logger) *Warmer {
	return &Warmer{
		scheduler: gocron.NewScheduler(series.KST),
		fetcher:   fetcher,
		config:    config,
		logger:    logger,
	}
}

// Start schedules the warm-up job; the first run happens immediately.
func (w *Warmer) Start() error {
	if !w.config.Enabled || len(w.config.Locations) == 0 {
		w.logger.Info("cache warm-up disabled")
		return nil
	}

	minutes := w.config.IntervalMinutes
	if minutes <= 0 {
		minutes = defaultIntervalMinutes
	}

	_, err := w.scheduler.Every(minutes).Minutes().SingletonMode().Do(func() {
		w.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	w.scheduler.StartAsync()
	w.logger.Info("cache warm-up scheduled",
		ports.F("interval_minutes", minutes),
		ports.F("locations", len(w.config.Locations)))
	return nil
}

// RunOnce fuses every configured location concurrently and returns how many succeeded.
func (w *Warmer) RunOnce(ctx context.Context) int {
	start := time.Now()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for _, loc := range w.config.Locations {
		loc := loc
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(ctx, locationTimeout)
			defer cancel()

			coord := location.Coordinate{Lat: loc.Lat, Lon: loc.Lon}
			if _, err := w.fetcher.GetWeather(ctx, weather.Request{Coordinate: &coord}); err != nil {
				w.logger.Warn("cache warm-up failed",
					ports.F("lat", loc.Lat),
					ports.F("lon", loc.Lon),
					ports.F("error", err))
				return
			}
			mu.Lock()
			succeeded++
			mu.Unlock()
		}()
	}
	wg.Wait()

	w.logger.Info("cache warm-up completed",
		ports.F("succeeded", succeeded),
		ports.F("locations", len(w.config.Locations)),
		ports.F("duration_ms", time.Since(start).Milliseconds()))
	return succeeded
}

// Stop stops the scheduler and cancels any future runs.
func (w *Warmer) Stop() {
	if w.scheduler != nil {
		w.scheduler.Stop()
	}
}
