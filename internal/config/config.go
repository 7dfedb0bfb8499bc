// Package config loads portfinder settings.
//
// Settings are layered, later layers winning:
//
//  1. built-in defaults (Default)
//  2. an optional config file, YAML (.yaml/.yml) or JSON with comments
//     (.json/.jsonc)
//  3. a .env file in the working directory, if present
//  4. PORTFINDER_* environment variables
//
// Command-line flags are applied on top by the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/portfinder/internal/model"
	"github.com/shinji-kodama/portfinder/internal/port"
	"github.com/shinji-kodama/portfinder/internal/socket"
)

// Environment variable names.
const (
	EnvHost        = "PORTFINDER_HOST"
	EnvBasePort    = "PORTFINDER_BASE_PORT"
	EnvMaxPort     = "PORTFINDER_MAX_PORT"
	EnvMaxAttempts = "PORTFINDER_MAX_ATTEMPTS"
	EnvSocketPath  = "PORTFINDER_SOCKET_PATH"
	EnvLogLevel    = "PORTFINDER_LOG_LEVEL"
	EnvLogFormat   = "PORTFINDER_LOG_FORMAT"

	EnvSocketMaxAttempts = "PORTFINDER_SOCKET_MAX_ATTEMPTS"
)

// Config holds every setting the CLI needs.
type Config struct {
	// Host to probe ports on. Empty probes the default host set.
	Host string `yaml:"host" json:"host"`

	// BasePort is where port searches start. Zero asks the OS.
	BasePort int `yaml:"basePort" json:"basePort"`

	// MaxPort is the highest port tried.
	MaxPort int `yaml:"maxPort" json:"maxPort"`

	// MaxAttempts caps probes per port search. Zero means range-bound only.
	MaxAttempts int `yaml:"maxAttempts" json:"maxAttempts"`

	// SocketPath is the base path for socket searches.
	SocketPath string `yaml:"socketPath" json:"socketPath"`

	// SocketMaxAttempts caps probes per socket search. Socket candidates
	// have no natural end, so this is never unbounded; zero means
	// socket.DefaultMaxAttempts.
	SocketMaxAttempts int `yaml:"socketMaxAttempts" json:"socketMaxAttempts"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel" json:"logLevel"`

	// LogFormat is pretty or json.
	LogFormat string `yaml:"logFormat" json:"logFormat"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		BasePort:          port.DefaultBasePort,
		MaxPort:           port.DefaultMaxPort,
		SocketPath:        socket.DefaultPath(),
		SocketMaxAttempts: socket.DefaultMaxAttempts,
		LogLevel:          "info",
		LogFormat:         "pretty",
	}
}

// Load builds a Config from defaults, the file at path (skipped when path
// is empty), .env and the environment, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads a config file over the defaults without consulting the
// environment.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if err := cfg.mergeFile(path); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// mergeFile decodes the file at path over c. Fields absent from the file
// keep their current values.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case ".json", ".jsonc":
		// Strip comments and trailing commas before handing the data to
		// encoding/json.
		if err := json.Unmarshal(jsonc.ToJSON(data), c); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config file extension %q (valid: .yaml, .yml, .json, .jsonc)", ext)
	}
	return nil
}

// ApplyEnv loads .env from the working directory if it exists and then
// overrides cfg with any PORTFINDER_* variables that are set.
func ApplyEnv(cfg *Config) error {
	// A missing .env is normal; godotenv never overrides variables that
	// are already set in the real environment.
	_ = godotenv.Load()

	if v, ok := os.LookupEnv(EnvHost); ok {
		cfg.Host = v
	}
	if v, ok := os.LookupEnv(EnvSocketPath); ok && v != "" {
		cfg.SocketPath = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv(EnvLogFormat); ok && v != "" {
		cfg.LogFormat = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{EnvBasePort, &cfg.BasePort},
		{EnvMaxPort, &cfg.MaxPort},
		{EnvMaxAttempts, &cfg.MaxAttempts},
		{EnvSocketMaxAttempts, &cfg.SocketMaxAttempts},
	}
	for _, iv := range ints {
		v, ok := os.LookupEnv(iv.key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s=%q: %w", iv.key, v, err)
		}
		*iv.dst = n
	}
	return nil
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	if err := model.ValidatePort(c.BasePort); err != nil {
		return fmt.Errorf("basePort: %w", err)
	}
	if err := model.ValidatePort(c.MaxPort); err != nil {
		return fmt.Errorf("maxPort: %w", err)
	}
	if c.BasePort > c.MaxPort {
		return fmt.Errorf("basePort %d is above maxPort %d: %w", c.BasePort, c.MaxPort, model.ErrPortOutOfRange)
	}
	if c.MaxAttempts < 0 {
		return fmt.Errorf("maxAttempts must not be negative, got %d", c.MaxAttempts)
	}
	if c.SocketMaxAttempts < 0 {
		return fmt.Errorf("socketMaxAttempts must not be negative, got %d", c.SocketMaxAttempts)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q (valid: debug, info, warn, error)", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "pretty", "json":
	default:
		return fmt.Errorf("invalid log format %q (valid: pretty, json)", c.LogFormat)
	}
	return nil
}

// PortOptions converts the port settings into port.Options.
func (c Config) PortOptions() port.Options {
	return port.Options{
		Host:        c.Host,
		BasePort:    c.BasePort,
		MaxPort:     c.MaxPort,
		MaxAttempts: c.MaxAttempts,
	}
}

// SocketOptions converts the socket settings into socket.Options.
func (c Config) SocketOptions() socket.Options {
	return socket.Options{MaxAttempts: c.SocketMaxAttempts}
}
