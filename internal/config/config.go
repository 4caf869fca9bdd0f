// ShopRank - Storefront Signals, Recommendations, and Search
// Copyright 2026 Duka Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dukalabs/shoprank

// Package config provides layered configuration for ShopRank using Koanf:
// built-in defaults, then an optional YAML file, then SHOPRANK_* environment
// variables, with ENV > file > defaults precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/shoprank/config.yaml",
	"/etc/shoprank/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "SHOPRANK_CONFIG"

// envPrefix namespaces ShopRank environment variables.
const envPrefix = "SHOPRANK_"

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Storage   StorageConfig   `koanf:"storage"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Recommend RecommendConfig `koanf:"recommend"`
	Search    SearchConfig    `koanf:"search"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"gte=1,lte=65535"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimit       int           `koanf:"rate_limit" validate:"gte=1"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// StorageConfig holds the BadgerDB settings for signals and analytics.
type StorageConfig struct {
	// Path is the BadgerDB directory.
	Path string `koanf:"path" validate:"required"`

	// InMemory runs Badger without touching disk. For tests and demos.
	InMemory bool `koanf:"in_memory"`
}

// CatalogConfig holds the catalog snapshot settings.
type CatalogConfig struct {
	// Path is the JSON catalog snapshot to index at startup.
	Path string `koanf:"path" validate:"required"`
}

// RecommendConfig holds recommendation engine settings.
type RecommendConfig struct {
	MaxCandidates int           `koanf:"max_candidates" validate:"gte=1"`
	FillFloor     int           `koanf:"fill_floor" validate:"gte=0"`
	DebounceDelay time.Duration `koanf:"debounce_delay"`
	Seed          int64         `koanf:"seed"`
}

// SearchConfig holds search pipeline settings.
type SearchConfig struct {
	PageSize        int           `koanf:"page_size" validate:"gte=1,lte=100"`
	SuggestionLimit int           `koanf:"suggestion_limit" validate:"gte=1,lte=50"`
	SettleDelay     time.Duration `koanf:"settle_delay"`
}

// defaultConfig returns the built-in defaults, applied before file and
// environment layers.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8573,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimit:       300,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Storage: StorageConfig{
			Path: "/data/shoprank",
		},
		Catalog: CatalogConfig{
			Path: "/data/catalog.json",
		},
		Recommend: RecommendConfig{
			MaxCandidates: 8,
			FillFloor:     4,
			DebounceDelay: 500 * time.Millisecond,
		},
		Search: SearchConfig{
			PageSize:        12,
			SuggestionLimit: 8,
			SettleDelay:     500 * time.Millisecond,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// SHOPRANK_* environment variables, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// SHOPRANK_SERVER_PORT -> server.port, SHOPRANK_RECOMMEND_MAX_CANDIDATES
	// -> recommend.max_candidates. The first underscore separates the
	// section; the rest stay underscores within the key.
	envProvider := env.Provider(envPrefix, ".", envTransform)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration with struct tags plus the cross-field
// rules tags cannot express.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return err
	}

	if c.Recommend.FillFloor > c.Recommend.MaxCandidates {
		return fmt.Errorf("recommend.fill_floor (%d) must not exceed recommend.max_candidates (%d)",
			c.Recommend.FillFloor, c.Recommend.MaxCandidates)
	}
	if c.Recommend.DebounceDelay < 0 || c.Search.SettleDelay < 0 {
		return fmt.Errorf("debounce delays must not be negative")
	}
	return nil
}

// findConfigFile returns the first existing config file path, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransform maps SHOPRANK_SECTION_SOME_KEY to section.some_key.
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	section, rest, found := strings.Cut(key, "_")
	if !found {
		return key
	}
	return section + "." + rest
}

// sliceConfigPaths lists config paths parsed as comma-separated slices
// when they arrive as env var strings.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields splits comma-separated env values into slices for
// the known slice fields. YAML-provided slices are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("set %s: %w", path, err)
			}
		}
	}
	return nil
}
