package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `env:"SERVER" yaml:"server" toml:"server"`

	// Project configuration
	Project ProjectConfig `env:"PROJECT" yaml:"project" toml:"project"`

	// Storage configuration
	Storage StorageConfig `env:"STORAGE" yaml:"storage" toml:"storage"`

	// Logging configuration
	Logging LoggingConfig `env:"LOGGING" yaml:"logging" toml:"logging"`

	// Metrics configuration
	Metrics MetricsConfig `env:"METRICS" yaml:"metrics" toml:"metrics"`

	// Configuration file path
	ConfigFile string `env:"CONFIG_FILE" yaml:"-" toml:"-"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	// HTTP server address
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080" yaml:"http_addr" toml:"http_addr"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s" yaml:"shutdown_timeout" toml:"shutdown_timeout"`
}

// ProjectConfig holds the project folder the explorer works on
type ProjectConfig struct {
	// Project root directory. Empty means the persisted project path, if any.
	Root string `env:"PROJECT_ROOT" yaml:"root" toml:"root"`

	// Watch the project root for external changes
	Watch bool `env:"PROJECT_WATCH" envDefault:"true" yaml:"watch" toml:"watch"`

	// Debounce window for watcher-triggered refreshes
	WatchDebounce time.Duration `env:"PROJECT_WATCH_DEBOUNCE" envDefault:"200ms" yaml:"watch_debounce" toml:"watch_debounce"`
}

// StorageConfig holds storage-related configuration
type StorageConfig struct {
	// State directory path (persistent state and recent files)
	DataDir string `env:"DATA_DIR" envDefault:"./data" yaml:"data_dir" toml:"data_dir"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	// Log level: "debug", "info", "warn", "error"
	Level string `env:"LOG_LEVEL" envDefault:"info" yaml:"level" toml:"level"`

	// Log format: "json", "text"
	Format string `env:"LOG_FORMAT" envDefault:"json" yaml:"format" toml:"format"`

	// Log file path (empty for stdout)
	Output string `env:"LOG_OUTPUT" envDefault:"" yaml:"output" toml:"output"`

	// Enable log rotation
	Rotation bool `env:"LOG_ROTATION" envDefault:"true" yaml:"rotation" toml:"rotation"`

	// Max log file size in MB
	MaxSize int `env:"LOG_MAX_SIZE" envDefault:"100" yaml:"max_size" toml:"max_size"`

	// Number of backup files to keep
	MaxBackups int `env:"LOG_MAX_BACKUPS" envDefault:"7" yaml:"max_backups" toml:"max_backups"`

	// Max age in days
	MaxAge int `env:"LOG_MAX_AGE" envDefault:"30" yaml:"max_age" toml:"max_age"`
}

// MetricsConfig holds metrics-related configuration
type MetricsConfig struct {
	// Enable Prometheus metrics
	Enabled bool `env:"METRICS_ENABLED" envDefault:"true" yaml:"enabled" toml:"enabled"`

	// Metrics server address
	Addr string `env:"METRICS_ADDR" envDefault:":9090" yaml:"addr" toml:"addr"`

	// Enable OpenTelemetry tracing
	TracingEnabled bool `env:"TRACING_ENABLED" envDefault:"false" yaml:"tracing_enabled" toml:"tracing_enabled"`

	// OpenTelemetry endpoint
	TracingEndpoint string `env:"TRACING_ENDPOINT" envDefault:"" yaml:"tracing_endpoint" toml:"tracing_endpoint"`

	// Connect to the OpenTelemetry endpoint without TLS
	TracingInsecure bool `env:"TRACING_INSECURE" envDefault:"true" yaml:"tracing_insecure" toml:"tracing_insecure"`

	// OTLP exporter: "grpc" or "http"
	TracingExporter string `env:"TRACING_EXPORTER" envDefault:"grpc" yaml:"tracing_exporter" toml:"tracing_exporter"`
}

// Load loads configuration from multiple sources:
// 1. Default values
// 2. Environment variables
// 3. Configuration file (YAML/TOML)
//
// Command line flags are applied by the caller on top of the result.
func Load(configFile string) (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if configFile != "" {
		cfg.ConfigFile = configFile
	}

	if cfg.ConfigFile != "" {
		if err := loadFromFile(cfg, cfg.ConfigFile); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Normalize cleans up paths
func (c *Config) Normalize() {
	c.Storage.DataDir = filepath.Clean(c.Storage.DataDir)
	if c.Project.Root != "" {
		if abs, err := filepath.Abs(c.Project.Root); err == nil {
			c.Project.Root = filepath.ToSlash(abs)
		}
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("http server address cannot be empty")
	}

	if c.Storage.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.Project.Root != "" {
		info, err := os.Stat(c.Project.Root)
		if err != nil {
			return fmt.Errorf("project root %s: %w", c.Project.Root, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("project root is not a directory: %s", c.Project.Root)
		}
	}

	if c.Project.WatchDebounce < 0 {
		return fmt.Errorf("watch debounce cannot be negative")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validLogFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics address cannot be empty when metrics are enabled")
	}

	if c.Metrics.TracingEnabled {
		if c.Metrics.TracingEndpoint == "" {
			return fmt.Errorf("tracing endpoint is required when tracing is enabled")
		}
		if c.Metrics.TracingExporter != "grpc" && c.Metrics.TracingExporter != "http" {
			return fmt.Errorf("invalid tracing exporter: %s", c.Metrics.TracingExporter)
		}
	}

	return nil
}

// loadFromFile overlays values from a YAML or TOML file, chosen by extension.
// Keys absent from the file keep their current value.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse yaml: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("failed to parse toml: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file format: %s", path)
	}

	return nil
}
