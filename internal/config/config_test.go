package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9090
  base_url: "https://finder.example.com"

market:
  url: "http://localhost:9001"
  timeout: 10s
  default_distance: 3
  default_size: 12

geocoder:
  url: "http://localhost:9002"
  user_agent: "test-agent/1.0"
  timeout: 5s

sessions:
  idle_ttl: 1h
  prune_schedule: "@every 1m"

log:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Server.BaseURL != "https://finder.example.com" {
		t.Errorf("Server.BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.Market.URL != "http://localhost:9001" {
		t.Errorf("Market.URL = %q", cfg.Market.URL)
	}
	if cfg.Market.Timeout != 10*time.Second {
		t.Errorf("Market.Timeout = %v, want 10s", cfg.Market.Timeout)
	}
	if cfg.Market.DefaultDistance != 3 {
		t.Errorf("Market.DefaultDistance = %v, want 3", cfg.Market.DefaultDistance)
	}
	if cfg.Market.DefaultSize != 12 {
		t.Errorf("Market.DefaultSize = %d, want 12", cfg.Market.DefaultSize)
	}
	if cfg.Geocoder.UserAgent != "test-agent/1.0" {
		t.Errorf("Geocoder.UserAgent = %q", cfg.Geocoder.UserAgent)
	}
	if cfg.Geocoder.Timeout != 5*time.Second {
		t.Errorf("Geocoder.Timeout = %v, want 5s", cfg.Geocoder.Timeout)
	}
	if cfg.Sessions.IdleTTL != time.Hour {
		t.Errorf("Sessions.IdleTTL = %v, want 1h", cfg.Sessions.IdleTTL)
	}
	if cfg.SlogLevel().String() != "DEBUG" {
		t.Errorf("SlogLevel = %v, want DEBUG", cfg.SlogLevel())
	}
}

func TestLoad_PartialYAMLKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  port: 3000\n"))
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want default 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Market.Timeout != 30*time.Second {
		t.Errorf("Market.Timeout = %v, want 30s", cfg.Market.Timeout)
	}
	if cfg.Market.DefaultDistance != 5 || cfg.Market.DefaultPage != 0 || cfg.Market.DefaultSize != 24 {
		t.Errorf("search defaults = %v/%d/%d, want 5/0/24", cfg.Market.DefaultDistance, cfg.Market.DefaultPage, cfg.Market.DefaultSize)
	}
	if cfg.Geocoder.UserAgent != "market-finder/1.0" {
		t.Errorf("Geocoder.UserAgent = %q, want market-finder/1.0", cfg.Geocoder.UserAgent)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unclosed"))
	if err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	_, err := Load(writeConfig(t, "server:\n  port: 70000\nmarket:\n  timeout: 0s\n"))
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoad_RejectsNonPositiveIdleTTL(t *testing.T) {
	for _, ttl := range []string{"0s", "-1m"} {
		_, err := Load(writeConfig(t, "sessions:\n  idle_ttl: "+ttl+"\n"))
		if err == nil {
			t.Errorf("idle_ttl %s: expected validation error", ttl)
		}
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MARKETFINDER_PORT", "7070")
	t.Setenv("MARKETFINDER_MARKET_TIMEOUT", "2s")
	t.Setenv("MARKETFINDER_BASE_URL", "http://env.example.com")

	cfg, err := Load(writeConfig(t, "server:\n  port: 3000\n"))
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Market.Timeout != 2*time.Second {
		t.Errorf("Market.Timeout = %v, want 2s", cfg.Market.Timeout)
	}
	if cfg.Server.BaseURL != "http://env.example.com" {
		t.Errorf("Server.BaseURL = %q", cfg.Server.BaseURL)
	}
}

func TestLoad_BadEnvValue(t *testing.T) {
	t.Setenv("MARKETFINDER_PORT", "eighty")
	_, err := Load(writeConfig(t, "{}"))
	if err == nil {
		t.Fatal("expected error for non-numeric port")
	}
}

func TestLoadDefault_NoFile(t *testing.T) {
	wd, _ := os.Getwd()
	t.Cleanup(func() { os.Chdir(wd) })
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() returned error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
}
