// Package config loads the service configuration from defaults, an optional
// YAML file, and environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/dephealth/dha-backend/database"
	"github.com/dephealth/dha-backend/util"
)

// DefaultConfigFile is read when DHA_CONFIG does not name another path.
const DefaultConfigFile = "config.yaml"

// Default values for the service configuration.
const (
	DefaultPort               = 3000
	DefaultBodyLimitMB        = 5
	DefaultReadTimeoutSeconds = 60
	DefaultLogLevel           = "info"
	DefaultRegistryURL        = "https://registry.npmjs.org"
	DefaultDownloadsURL       = "https://api.npmjs.org/downloads"
	DefaultTimeoutSeconds     = 15
	DefaultOSVURL             = "https://api.osv.dev"
	DefaultCORSOrigins        = "http://localhost:3000,http://localhost:4000,http://127.0.0.1:3000,http://127.0.0.1:4000"
)

// Config holds all service settings.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Registry   RegistryConfig   `yaml:"registry"`
	Advisories AdvisoriesConfig `yaml:"advisories"`
	Analyzer   AnalyzerConfig   `yaml:"analyzer"`
	Store      StoreConfig      `yaml:"store"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	// Port is the port the REST API and WebSocket hub listen on (default 3000).
	Port int `yaml:"port"`

	// BodyLimitMB caps the accepted request body size, in megabytes.
	BodyLimitMB int `yaml:"body_limit_mb"`

	// ReadTimeoutSeconds bounds how long a request read may take.
	ReadTimeoutSeconds int `yaml:"read_timeout_seconds"`

	// CORSOrigins is the comma-separated allow list handed to the CORS
	// middleware.
	CORSOrigins string `yaml:"cors_origins"`

	// LogLevel names the zap level (debug|info|warn|error). Reloadable.
	LogLevel string `yaml:"log_level"`
}

// RegistryConfig holds the npm registry client settings.
type RegistryConfig struct {
	// BaseURL is the packument endpoint root.
	BaseURL string `yaml:"base_url"`

	// DownloadsURL is the weekly-downloads endpoint root. Empty disables the
	// fallback lookup.
	DownloadsURL string `yaml:"downloads_url"`

	// TimeoutSeconds bounds every outbound registry call.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Timeout returns the outbound call timeout as a duration.
func (r RegistryConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// AdvisoriesConfig holds the OSV advisory lookup settings.
type AdvisoriesConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
}

// AnalyzerConfig holds the batch analysis settings.
type AnalyzerConfig struct {
	// Concurrency is the scoring worker count. 1 keeps the sequential loop.
	// Reloadable.
	Concurrency int `yaml:"concurrency"`
}

// StoreConfig selects the report store backing.
type StoreConfig struct {
	// Backend is one of: memory | arangodb.
	Backend string `yaml:"backend"`
}

// ConfigPath returns the config file location, honoring the DHA_CONFIG
// override.
func ConfigPath() string {
	return util.GetEnvDefault("DHA_CONFIG", DefaultConfigFile)
}

// Load builds the configuration from defaults, the optional YAML file, and
// environment overrides, in that precedence order. A missing default file is
// fine; a missing file named by DHA_CONFIG is an error.
func Load() (*Config, error) {
	cfg := defaults()

	path, explicit := os.LookupEnv("DHA_CONFIG")
	if !explicit {
		path = DefaultConfigFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %q: %w", path, err)
		}
	case explicit:
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	applyEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               DefaultPort,
			BodyLimitMB:        DefaultBodyLimitMB,
			ReadTimeoutSeconds: DefaultReadTimeoutSeconds,
			CORSOrigins:        DefaultCORSOrigins,
			LogLevel:           DefaultLogLevel,
		},
		Registry: RegistryConfig{
			BaseURL:        DefaultRegistryURL,
			DownloadsURL:   DefaultDownloadsURL,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Advisories: AdvisoriesConfig{
			Enabled: true,
			BaseURL: DefaultOSVURL,
		},
		Analyzer: AnalyzerConfig{
			Concurrency: 1,
		},
		Store: StoreConfig{
			Backend: database.BackendMemory,
		},
	}
}

// applyEnv overrides file and default values from the environment.
func applyEnv(cfg *Config) {
	cfg.Server.Port = envInt("MS_PORT", cfg.Server.Port)
	cfg.Server.LogLevel = util.GetEnvDefault("LOG_LEVEL", cfg.Server.LogLevel)
	cfg.Registry.BaseURL = util.GetEnvDefault("REGISTRY_URL", cfg.Registry.BaseURL)
	cfg.Registry.DownloadsURL = util.GetEnvDefault("DOWNLOADS_URL", cfg.Registry.DownloadsURL)
	cfg.Advisories.Enabled = envBool("OSV_ENABLED", cfg.Advisories.Enabled)
	cfg.Advisories.BaseURL = util.GetEnvDefault("OSV_URL", cfg.Advisories.BaseURL)
	cfg.Analyzer.Concurrency = envInt("ANALYZER_CONCURRENCY", cfg.Analyzer.Concurrency)
	cfg.Store.Backend = util.GetEnvDefault("STORE_BACKEND", cfg.Store.Backend)
}

func envInt(key string, defVal int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defVal
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defVal
	}
	return n
}

func envBool(key string, defVal bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defVal
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return defVal
	}
	return b
}

// validate checks structural constraints on the merged configuration.
func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range [1, 65535]", cfg.Server.Port)
	}
	if cfg.Server.BodyLimitMB < 1 {
		return fmt.Errorf("server.body_limit_mb must be at least 1")
	}
	if cfg.Registry.TimeoutSeconds < 1 {
		return fmt.Errorf("registry.timeout_seconds must be at least 1")
	}
	if cfg.Analyzer.Concurrency < 1 {
		return fmt.Errorf("analyzer.concurrency must be at least 1")
	}
	switch cfg.Store.Backend {
	case database.BackendMemory, database.BackendArango:
	default:
		return fmt.Errorf("store.backend %q unknown: want memory|arangodb", cfg.Store.Backend)
	}
	return nil
}
