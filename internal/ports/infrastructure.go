package ports

import (
	"context"
	"time"
)

// FusionConfig represents the fusion use case configuration
type FusionConfig struct {
	CacheTTL              time.Duration
	ObservationHours      int
	StationCount          int
	MeasuringStationCount int
	FetchConcurrency      int
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// UpstreamConfig represents the outbound HTTP settings shared by provider adapters
type UpstreamConfig struct {
	ServiceKey         string
	DataGoKrBaseURL    string
	AirKoreaBaseURL    string
	LivingIndexBaseURL string
	AsosBaseURL        string
	KakaoBaseURL       string
	KakaoRESTKey       string
	ScraperBaseURL     string
	AWSScraperBaseURL  string
	Timeout            time.Duration
	RatePerSecond      float64
	RateBurst          int
	BreakerMaxRequests uint32
	BreakerInterval    time.Duration
	BreakerTimeout     time.Duration
}

// CacheConfig represents object cache configuration
type CacheConfig struct {
	Type          string
	TTL           time.Duration
	PurgeInterval time.Duration
	Redis         RedisConfig
	S3            S3Config
}

// RedisConfig represents Redis configuration
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  int
	ReadTimeout  int
	WriteTimeout int
}

// S3Config represents S3-compatible object storage configuration
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
	UsePathStyle    bool
}

// WarmupConfig represents cache warm-up scheduler configuration
type WarmupConfig struct {
	Enabled         bool
	IntervalMinutes int
	Locations       []WarmupLocation
}

// WarmupLocation is a coordinate kept warm in the object cache
type WarmupLocation struct {
	Lat float64
	Lon float64
}

// ConfigProvider defines the contract for configuration management
type ConfigProvider interface {
	GetFusionConfig() FusionConfig
	GetServerConfig() ServerConfig
	GetDatabaseConfig() DatabaseConfig
	GetUpstreamConfig() UpstreamConfig
	GetCacheConfig() CacheConfig
	GetWarmupConfig() WarmupConfig
}

// Logger defines the contract for structured logging
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field represents a log field
type Field struct {
	Key   string
	Value interface{}
}

// F creates a log field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// FetchMetrics records how upstream payloads were served
type FetchMetrics interface {
	RecordFetch(source, tier string)
}

// ProviderMetrics records outbound provider calls
type ProviderMetrics interface {
	RecordProviderCall(ctx context.Context, provider string, duration time.Duration, err error)
}
