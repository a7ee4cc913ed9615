package external

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"todayweather.app/internal/adapters/database"
	"todayweather.app/internal/ports"
	"todayweather.app/pkg/errors"
)

// Cache type names accepted by the factory.
const (
	CacheTypeMemory   = "memory"
	CacheTypeRedis    = "redis"
	CacheTypeS3       = "s3"
	CacheTypeDatabase = "database"
)

type CacheProviderFactory struct {
	db *gorm.DB
}

// NewCacheProviderFactory creates a factory. db is only needed for the database cache type.
func NewCacheProviderFactory(db *gorm.DB) *CacheProviderFactory {
	return &CacheProviderFactory{db: db}
}

func (f *CacheProviderFactory) CreateCacheProvider(ctx context.Context, cfg *ports.CacheConfig) (ports.CacheProvider, error) {
	if cfg == nil {
		return nil, errors.NewConfigurationError("cache config cannot be nil", nil)
	}

	switch cfg.Type {
	case CacheTypeMemory:
		return NewMemoryCacheProvider(), nil
	case CacheTypeRedis:
		provider, err := NewRedisCacheProviderAdapter(&cfg.Redis)
		if err != nil {
			return nil, err
		}
		return provider, nil
	case CacheTypeS3:
		provider, err := NewS3CacheProvider(ctx, &cfg.S3)
		if err != nil {
			return nil, err
		}
		return provider, nil
	case CacheTypeDatabase:
		if f.db == nil {
			return nil, errors.NewConfigurationError("database cache requires a database connection", nil)
		}
		return database.NewObjectCacheRepository(f.db), nil
	default:
		return nil, errors.NewConfigurationError(
			fmt.Sprintf("unsupported cache type: %s", cfg.Type), nil)
	}
}
