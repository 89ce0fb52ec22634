package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	BackendCloudWatch = "cloudwatch"
	BackendPrometheus = "prometheus"
)

type OtelOptions struct {
	Host   string `env:"SLO_OTEL_HOST"`
	Secure bool   `env:"SLO_OTEL_SECURE" envDefault:"false"`
}

type Config struct {
	Product          string        `env:"SLO_PRODUCT" envDefault:"dotnet-migration"`
	Region           string        `env:"SLO_REGION" envDefault:"us-west-2"`
	Backend          string        `env:"SLO_BACKEND" envDefault:"cloudwatch"`
	PrometheusURL    string        `env:"SLO_PROMETHEUS_URL" envDefault:"http://localhost:9090"`
	QueryTimeout     time.Duration `env:"SLO_QUERY_TIMEOUT" envDefault:"10s"`
	MaxRetries       int           `env:"SLO_MAX_RETRIES" envDefault:"3"`
	ConcurrentChecks bool          `env:"SLO_CONCURRENT_CHECKS" envDefault:"false"`
	ThresholdsFile   string        `env:"SLO_THRESHOLDS_FILE"`
	ReportFile       string        `env:"SLO_REPORT_FILE"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	Otel             OtelOptions
}

// LoadEnv loads the env files that exist, ignoring missing ones.
func LoadEnv(envFiles []string) (int, error) {
	existingFiles := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, statErr := os.Stat(file); statErr == nil {
			existingFiles = append(existingFiles, file)
		}
	}

	if len(existingFiles) == 0 {
		return 0, nil
	}

	return len(existingFiles), godotenv.Load(existingFiles...)
}

func Load(envFiles ...string) (*Config, error) {
	if _, err := LoadEnv(envFiles); err != nil {
		return nil, fmt.Errorf("loading env files: %w", err)
	}
	return parse(env.Options{})
}

// Parse reads configuration from the given variables instead of the process environment.
func Parse(environment map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environment})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Backend != BackendCloudWatch && c.Backend != BackendPrometheus {
		errs = append(errs, fmt.Errorf("backend must be '%s' or '%s', got '%s'", BackendCloudWatch, BackendPrometheus, c.Backend))
	}
	if c.Backend == BackendPrometheus && c.PrometheusURL == "" {
		errs = append(errs, errors.New("prometheus url is required when backend is 'prometheus'"))
	}
	if c.QueryTimeout <= 0 {
		errs = append(errs, fmt.Errorf("query timeout must be positive, got %s", c.QueryTimeout))
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		errs = append(errs, fmt.Errorf("max retries must be between 0 and 10, got %d", c.MaxRetries))
	}
	if c.Product == "" {
		errs = append(errs, errors.New("product must not be empty"))
	}
	return errors.Join(errs...)
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
