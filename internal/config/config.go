package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"todayweather.app/pkg/errors"
)

const (
	maxRedisDB           = 15
	maxCacheTTLMinutes   = 10080
	maxPortNumber        = 65535
	maxObservationHours  = 48
	maxWarmupIntervalMin = 1440
)

// Config represents the application configuration structure
type Config struct {
	Server   ServerConfig   `split_words:"true"`
	Fusion   FusionConfig   `split_words:"true"`
	DataGoKr DataGoKrConfig `split_words:"true"`
	Kakao    KakaoConfig    `split_words:"true"`
	Scraper  ScraperConfig  `split_words:"true"`
	Cache    CacheConfig    `split_words:"true"`
	Database DatabaseConfig `split_words:"true"`
	Warmup   WarmupConfig   `split_words:"true"`
	Logging  LoggingConfig  `split_words:"true"`
}

type ServerConfig struct {
	Port                int `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeoutSeconds  int `envconfig:"SERVER_READ_TIMEOUT" default:"15"`
	WriteTimeoutSeconds int `envconfig:"SERVER_WRITE_TIMEOUT" default:"30"`
}

type FusionConfig struct {
	ObservationHours      int `envconfig:"FUSION_OBSERVATION_HOURS" default:"25"`
	StationCount          int `envconfig:"FUSION_STATION_COUNT" default:"3"`
	MeasuringStationCount int `envconfig:"FUSION_MEASURING_STATION_COUNT" default:"3"`
	FetchConcurrency      int `envconfig:"FUSION_FETCH_CONCURRENCY" default:"8"`
}

// DataGoKrConfig holds the public data portal settings shared by every KMA and KECO endpoint.
type DataGoKrConfig struct {
	ServiceKey         string  `envconfig:"DATA_GO_KR_SERVICE_KEY"`
	BaseURL            string  `envconfig:"DATA_GO_KR_BASE_URL" default:"https://apis.data.go.kr/1360000"`
	AirKoreaBaseURL    string  `envconfig:"AIRKOREA_BASE_URL" default:"https://apis.data.go.kr/B552584"`
	LivingIndexBaseURL string  `envconfig:"LIVING_INDEX_BASE_URL" default:"https://apis.data.go.kr/1360000/LivingWthrIdxServiceV4"`
	AsosBaseURL        string  `envconfig:"ASOS_BASE_URL" default:"https://apis.data.go.kr/1360000/AsosDalyInfoService"`
	TimeoutSeconds     int     `envconfig:"UPSTREAM_TIMEOUT" default:"10"`
	RatePerSecond      float64 `envconfig:"UPSTREAM_RATE_PER_SECOND" default:"20"`
	RateBurst          int     `envconfig:"UPSTREAM_RATE_BURST" default:"40"`
	BreakerMaxRequests uint32  `envconfig:"UPSTREAM_BREAKER_MAX_REQUESTS" default:"3"`
	BreakerIntervalSec int     `envconfig:"UPSTREAM_BREAKER_INTERVAL" default:"60"`
	BreakerTimeoutSec  int     `envconfig:"UPSTREAM_BREAKER_TIMEOUT" default:"30"`
}

type KakaoConfig struct {
	RESTKey string `envconfig:"KAKAO_REST_KEY"`
	BaseURL string `envconfig:"KAKAO_BASE_URL" default:"https://dapi.kakao.com"`
}

type ScraperConfig struct {
	BaseURL    string `envconfig:"SCRAPER_BASE_URL" default:"https://www.weather.go.kr"`
	AWSBaseURL string `envconfig:"SCRAPER_AWS_BASE_URL" default:"https://www.weather.go.kr"`
}

// CacheType represents the type of object cache to use
type CacheType int

const (
	CacheTypeUnknown CacheType = iota
	CacheTypeMemory
	CacheTypeRedis
	CacheTypeS3
	CacheTypeDatabase
)

// String returns the string representation of cache type
func (c CacheType) String() string {
	switch c {
	case CacheTypeMemory:
		return "memory"
	case CacheTypeRedis:
		return "redis"
	case CacheTypeS3:
		return "s3"
	case CacheTypeDatabase:
		return "database"
	default:
		return "unknown"
	}
}

// IsValid checks if the cache type is valid
func (c CacheType) IsValid() bool {
	return c.String() != "unknown"
}

// CacheTypeFromString converts string to CacheType enum
func CacheTypeFromString(s string) CacheType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "memory":
		return CacheTypeMemory
	case "redis":
		return CacheTypeRedis
	case "s3":
		return CacheTypeS3
	case "database":
		return CacheTypeDatabase
	default:
		return CacheTypeUnknown
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for envconfig
func (c *CacheType) UnmarshalText(text []byte) error {
	*c = CacheTypeFromString(string(text))
	return nil
}

// MarshalText implements encoding.TextMarshaler for envconfig
func (c CacheType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

type CacheConfig struct {
	Type                 CacheType   `envconfig:"CACHE_TYPE" default:"memory"`
	TTLMinutes           int         `envconfig:"CACHE_TTL_MINUTES" default:"1440"`
	PurgeIntervalMinutes int         `envconfig:"CACHE_PURGE_INTERVAL_MINUTES" default:"60"`
	Redis                RedisConfig `split_words:"true"`
	S3                   S3Config    `split_words:"true"`
}

type RedisConfig struct {
	Addr         string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password     string `envconfig:"REDIS_PASSWORD" default:""`
	DB           int    `envconfig:"REDIS_DB" default:"0"`
	DialTimeout  int    `envconfig:"REDIS_DIAL_TIMEOUT" default:"5"`
	ReadTimeout  int    `envconfig:"REDIS_READ_TIMEOUT" default:"3"`
	WriteTimeout int    `envconfig:"REDIS_WRITE_TIMEOUT" default:"3"`
}

type S3Config struct {
	Bucket          string `envconfig:"S3_BUCKET"`
	Region          string `envconfig:"S3_REGION" default:"ap-northeast-2"`
	Endpoint        string `envconfig:"S3_ENDPOINT"`
	AccessKeyID     string `envconfig:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	Prefix          string `envconfig:"S3_PREFIX" default:"todayweather"`
	UsePathStyle    bool   `envconfig:"S3_USE_PATH_STYLE" default:"false"`
}

type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name     string `envconfig:"DB_NAME" default:"todayweather"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

// WarmupConfig controls the scheduled cache warm-up. Locations are "lat:lon" pairs.
type WarmupConfig struct {
	Enabled         bool     `envconfig:"WARMUP_ENABLED" default:"false"`
	IntervalMinutes int      `envconfig:"WARMUP_INTERVAL_MINUTES" default:"30"`
	Locations       []string `envconfig:"WARMUP_LOCATIONS" default:"37.5665:126.9780"`
}

type LoggingConfig struct {
	Level    string `envconfig:"LOG_LEVEL" default:"info"`
	Format   string `envconfig:"LOG_FORMAT" default:"json"`
	FilePath string `envconfig:"LOG_FILE_PATH" default:""`
}

func LoadConfig() (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, errors.NewConfigurationError("error processing config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Fusion.Validate(); err != nil {
		return err
	}
	if err := c.DataGoKr.Validate(); err != nil {
		return err
	}
	if err := c.Kakao.Validate(); err != nil {
		return err
	}
	if err := c.Scraper.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if c.Cache.Type == CacheTypeDatabase {
		if err := c.Database.Validate(); err != nil {
			return err
		}
	}
	if err := c.Warmup.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	return nil
}

func validateURL(name, value string) error {
	if value == "" {
		return errors.NewConfigurationError(name+" cannot be empty", nil)
	}
	if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
		return errors.NewConfigurationError(name+" must start with http:// or https://", nil)
	}
	return nil
}

func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > maxPortNumber {
		return errors.NewConfigurationError("SERVER_PORT must be between 1 and 65535", nil)
	}
	if s.ReadTimeoutSeconds < 1 || s.WriteTimeoutSeconds < 1 {
		return errors.NewConfigurationError("SERVER_READ_TIMEOUT and SERVER_WRITE_TIMEOUT must be at least 1 second", nil)
	}
	return nil
}

func (f *FusionConfig) Validate() error {
	if f.ObservationHours < 1 || f.ObservationHours > maxObservationHours {
		return errors.NewConfigurationError("FUSION_OBSERVATION_HOURS must be between 1 and 48", nil)
	}
	if f.StationCount < 1 {
		return errors.NewConfigurationError("FUSION_STATION_COUNT must be at least 1", nil)
	}
	if f.MeasuringStationCount < 1 {
		return errors.NewConfigurationError("FUSION_MEASURING_STATION_COUNT must be at least 1", nil)
	}
	if f.FetchConcurrency < 1 {
		return errors.NewConfigurationError("FUSION_FETCH_CONCURRENCY must be at least 1", nil)
	}
	return nil
}

func (d *DataGoKrConfig) Validate() error {
	if strings.TrimSpace(d.ServiceKey) == "" {
		return errors.NewConfigurationError("DATA_GO_KR_SERVICE_KEY must be configured", nil)
	}
	for name, value := range map[string]string{
		"DATA_GO_KR_BASE_URL":   d.BaseURL,
		"AIRKOREA_BASE_URL":     d.AirKoreaBaseURL,
		"LIVING_INDEX_BASE_URL": d.LivingIndexBaseURL,
		"ASOS_BASE_URL":         d.AsosBaseURL,
	} {
		if err := validateURL(name, value); err != nil {
			return err
		}
	}
	if d.TimeoutSeconds < 1 {
		return errors.NewConfigurationError("UPSTREAM_TIMEOUT must be at least 1 second", nil)
	}
	if d.RatePerSecond <= 0 || d.RateBurst < 1 {
		return errors.NewConfigurationError("UPSTREAM_RATE_PER_SECOND and UPSTREAM_RATE_BURST must be positive", nil)
	}
	if d.BreakerTimeoutSec < 1 {
		return errors.NewConfigurationError("UPSTREAM_BREAKER_TIMEOUT must be at least 1 second", nil)
	}
	return nil
}

func (k *KakaoConfig) Validate() error {
	if strings.TrimSpace(k.RESTKey) == "" {
		return errors.NewConfigurationError("KAKAO_REST_KEY must be configured", nil)
	}
	return validateURL("KAKAO_BASE_URL", k.BaseURL)
}

func (s *ScraperConfig) Validate() error {
	if err := validateURL("SCRAPER_BASE_URL", s.BaseURL); err != nil {
		return err
	}
	return validateURL("SCRAPER_AWS_BASE_URL", s.AWSBaseURL)
}

func (c *CacheConfig) Validate() error {
	if !c.Type.IsValid() {
		return errors.NewConfigurationError("CACHE_TYPE must be one of: memory, redis, s3, database", nil)
	}
	if c.TTLMinutes < 1 || c.TTLMinutes > maxCacheTTLMinutes {
		return errors.NewConfigurationError("CACHE_TTL_MINUTES must be between 1 and 10080 minutes", nil)
	}

	switch c.Type {
	case CacheTypeRedis:
		return c.Redis.Validate()
	case CacheTypeS3:
		return c.S3.Validate()
	}
	return nil
}

func (r *RedisConfig) Validate() error {
	if r.Addr == "" {
		return errors.NewConfigurationError("REDIS_ADDR cannot be empty when using Redis cache", nil)
	}
	if r.DB < 0 || r.DB > maxRedisDB {
		return errors.NewConfigurationError("REDIS_DB must be between 0 and 15", nil)
	}
	if r.DialTimeout < 1 {
		return errors.NewConfigurationError("REDIS_DIAL_TIMEOUT must be at least 1 second", nil)
	}
	if r.ReadTimeout < 1 {
		return errors.NewConfigurationError("REDIS_READ_TIMEOUT must be at least 1 second", nil)
	}
	if r.WriteTimeout < 1 {
		return errors.NewConfigurationError("REDIS_WRITE_TIMEOUT must be at least 1 second", nil)
	}
	return nil
}

func (s *S3Config) Validate() error {
	if s.Bucket == "" {
		return errors.NewConfigurationError("S3_BUCKET cannot be empty when using S3 cache", nil)
	}
	if s.Region == "" {
		return errors.NewConfigurationError("S3_REGION cannot be empty when using S3 cache", nil)
	}
	if (s.AccessKeyID == "") != (s.SecretAccessKey == "") {
		return errors.NewConfigurationError("S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY must both be provided or both be empty", nil)
	}
	if s.Endpoint != "" {
		return validateURL("S3_ENDPOINT", s.Endpoint)
	}
	return nil
}

func (d *DatabaseConfig) Validate() error {
	if d.Host == "" {
		return errors.NewConfigurationError("DB_HOST cannot be empty", nil)
	}
	if d.Port < 1 || d.Port > maxPortNumber {
		return errors.NewConfigurationError("DB_PORT must be between 1 and 65535", nil)
	}
	if d.User == "" {
		return errors.NewConfigurationError("DB_USER cannot be empty", nil)
	}
	if d.Name == "" {
		return errors.NewConfigurationError("DB_NAME cannot be empty", nil)
	}
	return d.ValidateSSLMode()
}

func (d *DatabaseConfig) ValidateSSLMode() error {
	validSSLModes := []string{"disable", "require", "verify-ca", "verify-full"}
	for _, mode := range validSSLModes {
		if d.SSLMode == mode {
			return nil
		}
	}
	return errors.NewConfigurationError(
		fmt.Sprintf("DB_SSL_MODE must be one of: %s", strings.Join(validSSLModes, ", ")), nil)
}

func (w *WarmupConfig) Validate() error {
	if !w.Enabled {
		return nil
	}
	if w.IntervalMinutes < 1 || w.IntervalMinutes > maxWarmupIntervalMin {
		return errors.NewConfigurationError("WARMUP_INTERVAL_MINUTES must be between 1 and 1440 minutes", nil)
	}
	if len(w.Locations) == 0 {
		return errors.NewConfigurationError("WARMUP_LOCATIONS cannot be empty when warm-up is enabled", nil)
	}
	_, err := w.Coordinates()
	return err
}

// Coordinates parses the configured "lat:lon" pairs.
func (w *WarmupConfig) Coordinates() ([][2]float64, error) {
	out := make([][2]float64, 0, len(w.Locations))
	for _, raw := range w.Locations {
		latText, lonText, found := strings.Cut(strings.TrimSpace(raw), ":")
		if !found {
			return nil, errors.NewConfigurationError(fmt.Sprintf("WARMUP_LOCATIONS entry %q must be lat:lon", raw), nil)
		}
		lat, err := strconv.ParseFloat(latText, 64)
		if err != nil {
			return nil, errors.NewConfigurationError(fmt.Sprintf("WARMUP_LOCATIONS entry %q has an invalid latitude", raw), err)
		}
		lon, err := strconv.ParseFloat(lonText, 64)
		if err != nil {
			return nil, errors.NewConfigurationError(fmt.Sprintf("WARMUP_LOCATIONS entry %q has an invalid longitude", raw), err)
		}
		out = append(out, [2]float64{lat, lon})
	}
	return out, nil
}

func (l *LoggingConfig) Validate() error {
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "error":
	default:
		return errors.NewConfigurationError("LOG_LEVEL must be one of: debug, info, warn, error", nil)
	}
	switch strings.ToLower(l.Format) {
	case "json", "text":
	default:
		return errors.NewConfigurationError("LOG_FORMAT must be one of: json, text", nil)
	}
	return nil
}

// Duration converts a whole number of seconds to a duration.
func Duration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}
