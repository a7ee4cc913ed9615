package external

import (
	"context"
	"time"

	"todayweather.app/internal/ports"
	"todayweather.app/pkg/errors"
)

// InstrumentedCacheProvider records hits, misses and operation latency around a CacheProvider.
type InstrumentedCacheProvider struct {
	cache   ports.CacheProvider
	metrics ports.CacheMetrics
	logger  ports.Logger
}

// NewInstrumentedCacheProvider wraps cache. metrics and logger must be non-nil.
func NewInstrumentedCacheProvider(cache ports.CacheProvider, metrics ports.CacheMetrics, logger ports.Logger) *InstrumentedCacheProvider {
	return &InstrumentedCacheProvider{
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

func (c *InstrumentedCacheProvider) measure(operation string, fn func()) {
	start := time.Now()
	fn()
	c.metrics.RecordOperation(operation, time.Since(start))
}

func (c *InstrumentedCacheProvider) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	var err error

	c.measure("get", func() {
		data, err = c.cache.Get(ctx, key)
	})

	switch {
	case err == nil:
		c.metrics.RecordHit()
		c.logger.Debug("cache hit", ports.F("key", key))
	case errors.IsNotFoundError(err):
		c.metrics.RecordMiss()
		c.logger.Debug("cache miss", ports.F("key", key))
	default:
		c.metrics.RecordMiss()
		c.logger.Warn("cache get failed", ports.F("key", key), ports.F("error", err))
	}

	return data, err
}

func (c *InstrumentedCacheProvider) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var err error
	c.measure("set", func() {
		err = c.cache.Set(ctx, key, value, ttl)
	})
	if err != nil {
		c.logger.Warn("cache set failed", ports.F("key", key), ports.F("error", err))
		return err
	}
	c.logger.Debug("cache set", ports.F("key", key), ports.F("bytes", len(value)))
	return nil
}

func (c *InstrumentedCacheProvider) Delete(ctx context.Context, key string) error {
	var err error
	c.measure("delete", func() {
		err = c.cache.Delete(ctx, key)
	})
	return err
}

func (c *InstrumentedCacheProvider) Exists(ctx context.Context, key string) (bool, error) {
	var exists bool
	var err error
	c.measure("exists", func() {
		exists, err = c.cache.Exists(ctx, key)
	})
	return exists, err
}

func (c *InstrumentedCacheProvider) Clear(ctx context.Context) error {
	var err error
	c.measure("clear", func() {
		err = c.cache.Clear(ctx)
	})
	return err
}

// Stats returns the wrapped metrics snapshot.
func (c *InstrumentedCacheProvider) Stats() ports.CacheStats {
	return c.metrics.GetStats()
}
