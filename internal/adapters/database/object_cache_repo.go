package database

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"todayweather.app/pkg/errors"
)

// CachedObjectModel represents one cached upstream payload
type CachedObjectModel struct {
	Key       string    `gorm:"column:cache_key;primaryKey;size:512"`
	Payload   []byte    `gorm:"not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CachedObjectModel) TableName() string {
	return "cached_objects"
}

// ObjectCacheRepository implements the CacheProvider port using GORM
type ObjectCacheRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewObjectCacheRepository creates a new object cache repository
func NewObjectCacheRepository(db *gorm.DB) *ObjectCacheRepository {
	return &ObjectCacheRepository{db: db, now: time.Now}
}

// Get returns the payload stored under key if it has not expired
func (r *ObjectCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.NewValidationError("cache key cannot be empty")
	}

	var model CachedObjectModel
	result := r.db.WithContext(ctx).
		Where("cache_key = ? AND expires_at > ?", key, r.now()).
		First(&model)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("cache miss")
		}
		return nil, errors.NewDatabaseError("failed to read cached object", result.Error)
	}

	return model.Payload, nil
}

// Set inserts or replaces the payload stored under key
func (r *ObjectCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errors.NewValidationError("cache key cannot be empty")
	}
	if value == nil {
		return errors.NewValidationError("cache value cannot be nil")
	}
	if ttl <= 0 {
		return errors.NewValidationError("cache TTL must be positive")
	}

	model := CachedObjectModel{
		Key:       key,
		Payload:   value,
		ExpiresAt: r.now().Add(ttl),
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cache_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "expires_at", "updated_at"}),
	}).Create(&model)
	if result.Error != nil {
		return errors.NewDatabaseError("failed to save cached object", result.Error)
	}

	return nil
}

// Delete removes key; deleting a missing key is not an error
func (r *ObjectCacheRepository) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.NewValidationError("cache key cannot be empty")
	}

	if err := r.db.WithContext(ctx).Where("cache_key = ?", key).Delete(&CachedObjectModel{}).Error; err != nil {
		return errors.NewDatabaseError("failed to delete cached object", err)
	}
	return nil
}

// Exists reports whether an unexpired payload is stored under key
func (r *ObjectCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, errors.NewValidationError("cache key cannot be empty")
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&CachedObjectModel{}).
		Where("cache_key = ? AND expires_at > ?", key, r.now()).
		Count(&count).Error
	if err != nil {
		return false, errors.NewDatabaseError("failed to check cached object", err)
	}
	return count > 0, nil
}

// Clear removes every cached object
func (r *ObjectCacheRepository) Clear(ctx context.Context) error {
	err := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&CachedObjectModel{}).Error
	if err != nil {
		return errors.NewDatabaseError("failed to clear cached objects", err)
	}
	return nil
}

// PurgeExpired deletes expired rows and returns how many were removed
func (r *ObjectCacheRepository) PurgeExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at <= ?", r.now()).Delete(&CachedObjectModel{})
	if result.Error != nil {
		return 0, errors.NewDatabaseError("failed to purge expired objects", result.Error)
	}
	return result.RowsAffected, nil
}

// Ping checks the database connection
func (r *ObjectCacheRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return errors.NewDatabaseError("failed to get sql database", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return errors.NewDatabaseError("database ping failed", err)
	}
	return nil
}
