package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Generation policy defaults. The 3-of-5 threshold and the 50 character
// floor have no derivation beyond "good enough output usually arrives";
// keep them overridable rather than re-tuning them here.
const (
	DefaultMinViableVariants = 3
	DefaultRetryBudget       = 1
	DefaultMinContentLength  = 50
	DefaultProviderTimeout   = 60 * time.Second
	DefaultHistoryLimit      = 50
)

// History backends
const (
	HistoryBackendMemory   = "memory"
	HistoryBackendRedis    = "redis"
	HistoryBackendPostgres = "postgres"
)

// Config holds the application configuration
// Note: LLM credentials are never configured here - every generation request
// carries its own connection settings
type Config struct {
	// Environment
	Environment string
	Port        string
	LogLevel    string

	// Generation policy
	MinViableVariants int           // Minimum successful variants for a result
	RetryBudget       int           // Retries per theme after the first attempt
	MinContentLength  int           // Sanitizer floor, in characters
	Concurrency       int           // 0 means one slot per theme
	ProviderTimeout   time.Duration // Per provider call

	// History
	HistoryBackend string // memory, redis or postgres
	HistoryLimit   int    // Retention cap, oldest entries evicted
	RedisURL       string
	DatabaseURL    string

	// Observability
	SentryDSN         string // Sentry DSN for error tracking
	LangfusePublicKey string // Langfuse public key
	LangfuseSecretKey string // Langfuse secret key
	LangfuseHost      string // Langfuse host URL (cloud or self-hosted)
	LangfuseEnabled   bool   // Feature flag for Langfuse
	CloudWatchEnabled bool

	// Auth mode
	// - "none": No auth (self-hosted, local dev)
	// - "gateway": Trust X-User-* headers from an upstream gateway
	AuthMode string
}

func Load() *Config {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return &Config{
		Environment:       v.GetString("ENVIRONMENT"),
		Port:              v.GetString("PORT"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		MinViableVariants: v.GetInt("MIN_VIABLE_VARIANTS"),
		RetryBudget:       v.GetInt("RETRY_BUDGET"),
		MinContentLength:  v.GetInt("MIN_CONTENT_LENGTH"),
		Concurrency:       v.GetInt("GENERATION_CONCURRENCY"),
		ProviderTimeout:   v.GetDuration("PROVIDER_TIMEOUT"),
		HistoryBackend:    strings.ToLower(v.GetString("HISTORY_BACKEND")),
		HistoryLimit:      v.GetInt("HISTORY_LIMIT"),
		RedisURL:          v.GetString("REDIS_URL"),
		DatabaseURL:       v.GetString("DATABASE_URL"),
		SentryDSN:         v.GetString("SENTRY_DSN"),
		LangfusePublicKey: v.GetString("LANGFUSE_PUBLIC_KEY"),
		LangfuseSecretKey: v.GetString("LANGFUSE_SECRET_KEY"),
		LangfuseHost:      v.GetString("LANGFUSE_HOST"),
		LangfuseEnabled:   v.GetBool("LANGFUSE_ENABLED"),
		CloudWatchEnabled: v.GetBool("CLOUDWATCH_ENABLED"),
		AuthMode:          v.GetString("AUTH_MODE"), // Default to no auth for self-hosted
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MIN_VIABLE_VARIANTS", DefaultMinViableVariants)
	v.SetDefault("RETRY_BUDGET", DefaultRetryBudget)
	v.SetDefault("MIN_CONTENT_LENGTH", DefaultMinContentLength)
	v.SetDefault("GENERATION_CONCURRENCY", 0)
	v.SetDefault("PROVIDER_TIMEOUT", DefaultProviderTimeout)
	v.SetDefault("HISTORY_BACKEND", HistoryBackendMemory)
	v.SetDefault("HISTORY_LIMIT", DefaultHistoryLimit)
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SENTRY_DSN", "")
	v.SetDefault("LANGFUSE_PUBLIC_KEY", "")
	v.SetDefault("LANGFUSE_SECRET_KEY", "")
	v.SetDefault("LANGFUSE_HOST", "https://cloud.langfuse.com")
	v.SetDefault("LANGFUSE_ENABLED", false)
	v.SetDefault("CLOUDWATCH_ENABLED", false)
	v.SetDefault("AUTH_MODE", "none")
}

// IsGatewayMode returns true if running behind an authenticating gateway
func (c *Config) IsGatewayMode() bool {
	return c.AuthMode == "gateway"
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
