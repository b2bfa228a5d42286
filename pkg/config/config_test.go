package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const minimalConfig = `{
	"feed": {
		"url": "https://data.example.net/v3/feed.json",
		"coverage_url": "https://data.example.net/v3/coverage.json"
	}
}`

func TestLoadMinimal(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Defaults fill everything the file left out.
	if cfg.Feed.IntervalSeconds != 15 {
		t.Errorf("IntervalSeconds = %d, want default 15", cfg.Feed.IntervalSeconds)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want default info", cfg.Log.Level)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins = %v, want [*]", cfg.Server.AllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{
		"feed": {
			"url": "https://data.example.net/feed.json",
			"coverage_url": "https://data.example.net/coverage.json",
			"interval_seconds": 30
		},
		"server": {"port": 9090},
		"log": {"level": "debug"}
	}`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Feed.IntervalSeconds != 30 || cfg.Server.Port != 9090 || cfg.Log.Level != "debug" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"Missing feed URL", func(c *Config) { c.Feed.URL = "" }, "feed.url"},
		{"Missing coverage URL", func(c *Config) { c.Feed.CoverageURL = "" }, "feed.coverage_url"},
		{"Bad port", func(c *Config) { c.Server.Port = 70000 }, "out of range"},
		{"Bad log level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
		{
			"Database enabled without host",
			func(c *Config) {
				c.Database.Enabled = true
				c.Database.Host = ""
			},
			"database.host",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.Feed.URL = "https://example.net/feed.json"
			cfg.Feed.CoverageURL = "https://example.net/coverage.json"
			tc.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestLoadMalformed(t *testing.T) {
	if _, err := Load(writeConfig(t, `{"feed": `)); err == nil {
		t.Fatal("Expected error for malformed JSON")
	}
}

func TestConnString(t *testing.T) {
	d := DatabaseConfig{
		Host: "dbhost", Port: 5432, Database: "atcmap",
		Username: "app", Password: "secret", SSLMode: "disable",
	}
	got := d.ConnString()
	for _, part := range []string{"host=dbhost", "port=5432", "dbname=atcmap", "sslmode=disable"} {
		if !strings.Contains(got, part) {
			t.Errorf("ConnString %q missing %q", got, part)
		}
	}
}
