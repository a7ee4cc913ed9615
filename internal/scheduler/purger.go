package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"todayweather.app/internal/core/series"
	"todayweather.app/internal/ports"
)

const (
	defaultPurgeInterval = time.Hour
	purgeTimeout         = 30 * time.Second
)

// ExpiredObjectStore is a cache backend that keeps expired entries until they are purged.
type ExpiredObjectStore interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Purger periodically deletes expired rows from a persistent object cache.
type Purger struct {
	scheduler *gocron.Scheduler
	store     ExpiredObjectStore
	interval  time.Duration
	logger    ports.Logger
}

// NewPurger creates a purger for store. A nil store disables it.
func NewPurger(interval time.Duration, store ExpiredObjectStore, logger ports.Logger) *Purger {
	if interval <= 0 {
		interval = defaultPurgeInterval
	}
	return &Purger{
		scheduler: gocron.NewScheduler(series.KST),
		store:     store,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the purge job; the first run happens immediately.
func (p *Purger) Start() error {
	if p.store == nil {
		p.logger.Debug("expired cache purge not needed for this backend")
		return nil
	}

	_, err := p.scheduler.Every(p.interval).SingletonMode().Do(func() {
		p.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	p.scheduler.StartAsync()
	p.logger.Info("expired cache purge scheduled", ports.F("interval", p.interval.String()))
	return nil
}

// RunOnce deletes the expired entries and returns how many were removed.
func (p *Purger) RunOnce(ctx context.Context) int64 {
	if p.store == nil {
		return 0
	}

	ctx, cancel := context.WithTimeout(ctx, purgeTimeout)
	defer cancel()

	removed, err := p.store.PurgeExpired(ctx)
	if err != nil {
		p.logger.Warn("expired cache purge failed", ports.F("error", err))
		return 0
	}
	p.logger.Info("expired cache purge completed", ports.F("removed", removed))
	return removed
}

// Stop stops the scheduler and cancels any future runs.
func (p *Purger) Stop() {
	if p.scheduler != nil {
		p.scheduler.Stop()
	}
}
