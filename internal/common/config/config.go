// internal/common/config/config.go
package config

import (
	"fmt"
	"path/filepath"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Server        ServerConfig            `mapstructure:"server"`
	Storage       StorageConfig           `mapstructure:"storage"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Content       ContentConfig           `mapstructure:"content"`
	RateLimit     RateLimitConfig         `mapstructure:"rate_limit"`
	Cache         CacheConfig             `mapstructure:"cache"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Observability ObservabilityConfig     `mapstructure:"observability"`
}

// UsesRedis reports whether any backend selected in cfg lives in redis.
func (c *Config) UsesRedis() bool {
	return c.Storage.Backend == "redis" ||
		(c.RateLimit.Enabled && c.RateLimit.Backend == "redis") ||
		c.Cache.Backend == "redis"
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment" validate:"omitempty,oneof=development staging production test"`
}

type ServerConfig struct {
	Port         int      `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout  int      `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int      `mapstructure:"write_timeout"` // milliseconds
	IdleTimeout  int      `mapstructure:"idle_timeout"`  // milliseconds
	MaxBodyBytes int64    `mapstructure:"max_body_bytes" validate:"min=1"`
	CORSOrigins  []string `mapstructure:"cors_origins"`
	TrustProxy   bool     `mapstructure:"trust_proxy"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// StorageConfig locates the template asset and rendered documents.
type StorageConfig struct {
	TemplateDir  string `mapstructure:"template_dir" validate:"required"`
	TemplateName string `mapstructure:"template_name" validate:"required"`
	OutputDir    string `mapstructure:"output_dir" validate:"required"`
	Backend      string `mapstructure:"backend" validate:"oneof=memory redis"`
}

func (s StorageConfig) TemplatePath() string {
	return filepath.Join(s.TemplateDir, s.TemplateName)
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address   string `mapstructure:"address"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// ContentConfig configures the slide content generator.
type ContentConfig struct {
	Provider        string        `mapstructure:"provider" validate:"oneof=openai outline"`
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url" validate:"omitempty,url"`
	Model           string        `mapstructure:"model"`
	Timeout         int           `mapstructure:"timeout"` // milliseconds
	FallbackOnError bool          `mapstructure:"fallback_on_error"`
	Breaker         BreakerConfig `mapstructure:"breaker"`
}

type BreakerConfig struct {
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // milliseconds
	Timeout          int     `mapstructure:"timeout"`  // milliseconds
	FailureThreshold float64 `mapstructure:"failure_threshold" validate:"gte=0,lte=1"`
	MinRequests      uint32  `mapstructure:"min_requests"`
}

type RateLimitConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Backend         string `mapstructure:"backend" validate:"oneof=memory redis"`
	CreatePerMinute int    `mapstructure:"create_per_minute" validate:"gte=0"`
	PerHour         int    `mapstructure:"per_hour" validate:"gte=0"`
	PerDay          int    `mapstructure:"per_day" validate:"gte=0"`
}

type CacheConfig struct {
	Backend   string `mapstructure:"backend" validate:"oneof=memory redis"`
	RenderTTL int    `mapstructure:"render_ttl"` // milliseconds
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
	Output string `mapstructure:"output"`
}

type ObservabilityConfig struct {
	MetricsPort    int    `mapstructure:"metrics_port"`
	TracingEnabled bool   `mapstructure:"tracing_enabled"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint" validate:"required_if=TracingEnabled true"`
}
