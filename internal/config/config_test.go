// ShopRank - Storefront Signals, Recommendations, and Search
// Copyright 2026 Duka Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dukalabs/shoprank

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8573 {
		t.Errorf("Server.Port = %d, want 8573", cfg.Server.Port)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want info/json", cfg.Logging)
	}
	if cfg.Recommend.MaxCandidates != 8 || cfg.Recommend.FillFloor != 4 {
		t.Errorf("Recommend = %+v, want 8/4", cfg.Recommend)
	}
	if cfg.Recommend.DebounceDelay != 500*time.Millisecond {
		t.Errorf("DebounceDelay = %s, want 500ms", cfg.Recommend.DebounceDelay)
	}
	if cfg.Search.PageSize != 12 || cfg.Search.SuggestionLimit != 8 {
		t.Errorf("Search = %+v, want 12/8", cfg.Search)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SHOPRANK_SERVER_PORT", "9000")
	t.Setenv("SHOPRANK_LOGGING_LEVEL", "debug")
	t.Setenv("SHOPRANK_RECOMMEND_MAX_CANDIDATES", "10")
	t.Setenv("SHOPRANK_SEARCH_SETTLE_DELAY", "250ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %s, want debug", cfg.Logging.Level)
	}
	if cfg.Recommend.MaxCandidates != 10 {
		t.Errorf("MaxCandidates = %d, want 10", cfg.Recommend.MaxCandidates)
	}
	if cfg.Search.SettleDelay != 250*time.Millisecond {
		t.Errorf("SettleDelay = %s, want 250ms", cfg.Search.SettleDelay)
	}
}

func TestLoadSplitsCommaSeparatedOrigins(t *testing.T) {
	t.Setenv("SHOPRANK_SERVER_CORS_ORIGINS", "https://shop.example.com, https://admin.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []string{"https://shop.example.com", "https://admin.example.com"}
	if !reflect.DeepEqual(cfg.Server.CORSOrigins, want) {
		t.Errorf("CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "server:\n  port: 7777\nrecommend:\n  fill_floor: 2\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 7777 {
		t.Errorf("Server.Port = %d, want 7777", cfg.Server.Port)
	}
	if cfg.Recommend.FillFloor != 2 {
		t.Errorf("FillFloor = %d, want 2", cfg.Recommend.FillFloor)
	}
	// Untouched keys keep their defaults.
	if cfg.Search.PageSize != 12 {
		t.Errorf("PageSize = %d, want 12", cfg.Search.PageSize)
	}
}

func TestLoadEnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 7777\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("SHOPRANK_SERVER_PORT", "8888")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8888 {
		t.Errorf("Server.Port = %d, want environment to win over file", cfg.Server.Port)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port out of range", "SHOPRANK_SERVER_PORT", "99999"},
		{"bad log level", "SHOPRANK_LOGGING_LEVEL", "verbose"},
		{"bad log format", "SHOPRANK_LOGGING_FORMAT", "xml"},
		{"fill floor above max", "SHOPRANK_RECOMMEND_FILL_FLOOR", "20"},
		{"page size above cap", "SHOPRANK_SEARCH_PAGE_SIZE", "500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SHOPRANK_SERVER_PORT", "server.port"},
		{"SHOPRANK_RECOMMEND_MAX_CANDIDATES", "recommend.max_candidates"},
		{"SHOPRANK_SERVER_CORS_ORIGINS", "server.cors_origins"},
		{"SHOPRANK_CATALOG_PATH", "catalog.path"},
	}

	for _, tt := range tests {
		if got := envTransform(tt.in); got != tt.want {
			t.Errorf("envTransform(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
