// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	Environment     string        `yaml:"environment"` // development | production
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	BodyLimitBytes  int64         `yaml:"body_limit_bytes"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	Version         string        `yaml:"version"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type RazorpayConfig struct {
	KeyID       string        `yaml:"key_id"`
	KeySecret   string        `yaml:"key_secret"`
	BaseURL     string        `yaml:"base_url"`
	Environment string        `yaml:"environment"` // LIVE | TEST, informational only
	Timeout     time.Duration `yaml:"timeout"`
}

type OrderConfig struct {
	DefaultDescription string `yaml:"default_description"`
	DefaultCustomerID  string `yaml:"default_customer_id"`
}

type RateLimitConfig struct {
	Window      time.Duration `yaml:"window"`
	MaxRequests int           `yaml:"max_requests"`
}

type RedisConfig struct {
	URL      string `yaml:"url"` // host:port; empty disables rate limiting
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type TracingConfig struct {
	Endpoint    string `yaml:"endpoint"` // OTLP gRPC host:port; empty disables export
	ServiceName string `yaml:"service_name"`
	Insecure    bool   `yaml:"insecure"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Razorpay  RazorpayConfig  `yaml:"razorpay"`
	Order     OrderConfig     `yaml:"order"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Redis     RedisConfig     `yaml:"redis"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Tracing   TracingConfig   `yaml:"tracing"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads an optional .env file, the YAML file at path (may be absent)
// and then applies environment overrides and defaults.
// Missing credentials are a hard error: there are no built-in secrets.
func LoadConfig(path string, dev bool) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	cfg.Metrics.Enabled = true
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

// Validate reports every missing required setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.APIKey == "" {
		errs = append(errs, errors.New("auth.api_key (API_KEY) is required"))
	}
	if c.Razorpay.KeyID == "" {
		errs = append(errs, errors.New("razorpay.key_id (RAZORPAY_KEY_ID) is required"))
	}
	if c.Razorpay.KeySecret == "" {
		errs = append(errs, errors.New("razorpay.key_secret (RAZORPAY_KEY_SECRET) is required"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	return errors.Join(errs...)
}

func applyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("APP_ENV", &cfg.Server.Environment)
	str("API_KEY", &cfg.Auth.APIKey)
	str("RAZORPAY_KEY_ID", &cfg.Razorpay.KeyID)
	str("RAZORPAY_KEY_SECRET", &cfg.Razorpay.KeySecret)
	str("RAZORPAY_BASE_URL", &cfg.Razorpay.BaseURL)
	str("RAZORPAY_ENVIRONMENT", &cfg.Razorpay.Environment)
	str("REDIS_URL", &cfg.Redis.URL)
	str("REDIS_PASSWORD", &cfg.Redis.Password)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	str("OTEL_EXPORTER_OTLP_ENDPOINT", &cfg.Tracing.Endpoint)

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("RATE_LIMIT_WINDOW_MS"); v != "" {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_WINDOW_MS: %w", err)
		}
		cfg.RateLimit.Window = time.Duration(ms) * time.Millisecond
	}
	if v := os.Getenv("RATE_LIMIT_MAX_REQUESTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_MAX_REQUESTS: %w", err)
		}
		cfg.RateLimit.MaxRequests = n
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3001
	}
	if cfg.Server.Environment == "" {
		cfg.Server.Environment = "development"
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if cfg.Server.BodyLimitBytes <= 0 {
		cfg.Server.BodyLimitBytes = 10 << 20
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.Version == "" {
		cfg.Server.Version = "1.0.0"
	}
	if cfg.Razorpay.BaseURL == "" {
		cfg.Razorpay.BaseURL = "https://api.razorpay.com/v1"
	}
	cfg.Razorpay.BaseURL = strings.TrimRight(cfg.Razorpay.BaseURL, "/")
	if cfg.Razorpay.Environment == "" {
		cfg.Razorpay.Environment = "LIVE"
	}
	if cfg.Razorpay.Timeout <= 0 {
		cfg.Razorpay.Timeout = 30 * time.Second
	}
	if cfg.Order.DefaultDescription == "" {
		cfg.Order.DefaultDescription = "Fastag Bajaj wallet topup"
	}
	if cfg.Order.DefaultCustomerID == "" {
		cfg.Order.DefaultCustomerID = "user"
	}
	if cfg.RateLimit.Window <= 0 {
		cfg.RateLimit.Window = 15 * time.Minute
	}
	if cfg.RateLimit.MaxRequests <= 0 {
		cfg.RateLimit.MaxRequests = 100
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = "razorpay-relay"
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
