// Package config loads the contentpipe YAML configuration.
package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/contentpipe/internal/foundation/errors"
)

// CurrentVersion is the only configuration version this build understands.
const CurrentVersion = "1.0"

// Config is the root configuration document.
type Config struct {
	Version      string             `yaml:"version"`
	Logging      LoggingConfig      `yaml:"logging"`
	Markdown     MarkdownConfig     `yaml:"markdown"`
	Transformers TransformersConfig `yaml:"transformers"`
	Run          RunConfig          `yaml:"run"`
	Output       OutputConfig       `yaml:"output"`
	Sinks        SinksConfig        `yaml:"sinks"`
	Metrics      MetricsConfig      `yaml:"metrics"`
}

// LoggingConfig selects the slog handler and level.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MarkdownConfig controls the Markdown parser. Pointer fields distinguish an
// explicit false from an omitted value.
type MarkdownConfig struct {
	TOCDepth int   `yaml:"toc_depth"`
	Unsafe   *bool `yaml:"unsafe"`
	GFM      *bool `yaml:"gfm"`
}

// TransformersConfig lists built-in transformers to leave out of every chain.
type TransformersConfig struct {
	Disabled []string `yaml:"disabled,omitempty"`
}

// RunConfig controls batch and watch runs.
type RunConfig struct {
	Concurrency   int    `yaml:"concurrency"`
	WatchDebounce string `yaml:"watch_debounce"`
}

// Debounce returns WatchDebounce as a duration. Validate guarantees it parses.
func (r RunConfig) Debounce() time.Duration {
	d, err := time.ParseDuration(r.WatchDebounce)
	if err != nil {
		return defaultWatchDebounce
	}
	return d
}

// OutputConfig controls how results are written to stdout.
type OutputConfig struct {
	Format OutputFormat `yaml:"format"`
}

// SinksConfig enables optional result sinks.
type SinksConfig struct {
	SQLite SQLiteConfig `yaml:"sqlite"`
	NATS   NATSConfig   `yaml:"nats"`
}

// SQLiteConfig enables the SQLite sink when Path is set.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// NATSConfig enables the NATS sink when URL is set.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// MetricsConfig enables the Prometheus endpoint when Address is set.
type MetricsConfig struct {
	Address string `yaml:"address"`
	Path    string `yaml:"path"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{Version: CurrentVersion}
	applyDefaults(cfg)
	return cfg
}

// Load reads, expands, normalizes, defaults and validates a configuration file.
// Environment variables from .env files are loaded first, without overriding
// variables already set in the process.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewError(errors.CategoryNotFound, "configuration file not found").
				WithContext("path", configPath).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithContext("path", configPath).
			Build()
	}
	return Parse(data)
}

// Parse decodes configuration bytes. ${VAR} references are expanded from the
// environment before decoding and unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").Fatal().Build()
	}

	if cfg.Version != CurrentVersion {
		return nil, errors.ConfigError(fmt.Sprintf("unsupported configuration version: %q (expected %s)", cfg.Version, CurrentVersion)).Build()
	}

	res := Normalize(&cfg)
	for _, w := range res.Warnings {
		slog.Warn("config normalization", "detail", w)
	}
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "configuration validation failed").Fatal().Build()
	}
	return &cfg, nil
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	example := Default()

	var buf bytes.Buffer
	buf.WriteString("# contentpipe configuration\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(example); err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to encode example config").Build()
	}
	if err := enc.Close(); err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to encode example config").Build()
	}

	if err := os.WriteFile(configPath, buf.Bytes(), 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}
