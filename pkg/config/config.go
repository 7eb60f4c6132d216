package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Redis         RedisConfig
	CORS          CORSConfig
	Log           LogConfig
	ViewCache     ViewCacheConfig
	Submit        SubmitConfig
	Pagination    PaginationConfig
	Metrics       MetricsConfig
	Notifications NotificationsConfig
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ViewCacheConfig toggles the Redis cache for stateless list responses.
type ViewCacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// SubmitConfig tunes the simulated save/submit call.
type SubmitConfig struct {
	Delay time.Duration
	// FailureRate is the share of saves, between 0 and 1, that fail on purpose.
	FailureRate float64
}

// PaginationConfig bounds page sizes for list views.
type PaginationConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

type MetricsConfig struct {
	Enabled bool
}

// NotificationsConfig gates the websocket notification channel.
type NotificationsConfig struct {
	WebsocketEnabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.ViewCache = ViewCacheConfig{
		Enabled: v.GetBool("ENABLE_VIEW_CACHE"),
		TTL:     parseDuration(v.GetString("VIEW_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Submit = SubmitConfig{
		Delay:       parseDuration(v.GetString("SUBMIT_DELAY"), time.Second),
		FailureRate: clampRate(v.GetFloat64("SUBMIT_FAILURE_RATE")),
	}

	defaultSize := v.GetInt("DEFAULT_PAGE_SIZE")
	if defaultSize <= 0 {
		defaultSize = 10
	}
	maxSize := v.GetInt("MAX_PAGE_SIZE")
	if maxSize < defaultSize {
		maxSize = defaultSize
	}
	cfg.Pagination = PaginationConfig{DefaultPageSize: defaultSize, MaxPageSize: maxSize}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	cfg.Notifications = NotificationsConfig{
		WebsocketEnabled: v.GetBool("ENABLE_NOTIFICATIONS_WS"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_VIEW_CACHE", false)
	v.SetDefault("VIEW_CACHE_TTL", "5m")
	v.SetDefault("SUBMIT_DELAY", "1s")
	v.SetDefault("SUBMIT_FAILURE_RATE", 0)

	v.SetDefault("DEFAULT_PAGE_SIZE", 10)
	v.SetDefault("MAX_PAGE_SIZE", 100)

	v.SetDefault("ENABLE_METRICS", true)
	v.SetDefault("ENABLE_NOTIFICATIONS_WS", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func clampRate(rate float64) float64 {
	switch {
	case rate < 0:
		return 0
	case rate > 1:
		return 1
	}
	return rate
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
