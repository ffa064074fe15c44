package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsComplete(t *testing.T) {
	t.Parallel()

	cfg := Default()

	if cfg.Output.SnapshotPath == "" || cfg.Output.DataSource == "" {
		t.Fatalf("output defaults missing: %+v", cfg.Output)
	}
	if cfg.Listing.URL == "" || cfg.Listing.SourceName == "" {
		t.Fatalf("listing defaults missing: %+v", cfg.Listing)
	}
	if len(cfg.NewsAPI.SearchTerms) == 0 || len(cfg.NewsAPI.RegionalDomains) == 0 {
		t.Fatalf("newsapi defaults missing")
	}
	if len(cfg.NewsAPI.Fallback) == 0 {
		t.Fatalf("fallback candidates missing")
	}
	if len(cfg.Seeds) == 0 {
		t.Fatalf("seed candidates missing")
	}
	for i, seed := range cfg.Seeds {
		if seed.URL == "" || seed.Title == "" {
			t.Fatalf("seed %d incomplete: %+v", i, seed)
		}
	}
	if cfg.Harvest.Workers <= 0 || cfg.Harvest.RequestDelay <= 0 {
		t.Fatalf("harvest defaults missing: %+v", cfg.Harvest)
	}
}

func TestLoadMissingDefaultFileIsFine(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load with no file must fall back to defaults, got %v", err)
	}
	if cfg.Output.SnapshotPath != Default().Output.SnapshotPath {
		t.Fatalf("defaults not applied: %+v", cfg.Output)
	}
}

func TestLoadMissingExplicitFileErrors(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("explicit missing config must error")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "harvester.yaml")
	content := `
output:
  snapshot_path: /tmp/out.json
http:
  timeout: 30s
harvest:
  workers: 8
newsapi:
  api_key: from-file
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Output.SnapshotPath != "/tmp/out.json" {
		t.Fatalf("snapshot_path not overridden: %q", cfg.Output.SnapshotPath)
	}
	if cfg.HTTP.Timeout != 30*time.Second {
		t.Fatalf("timeout not parsed: %v", cfg.HTTP.Timeout)
	}
	if cfg.Harvest.Workers != 8 {
		t.Fatalf("workers not overridden: %d", cfg.Harvest.Workers)
	}
	if cfg.NewsAPI.APIKey != "from-file" {
		t.Fatalf("api key not read: %q", cfg.NewsAPI.APIKey)
	}

	// Values absent from the file keep their defaults.
	if cfg.Output.DataSource != Default().Output.DataSource {
		t.Fatalf("untouched default lost: %q", cfg.Output.DataSource)
	}
	if len(cfg.Seeds) != len(Default().Seeds) {
		t.Fatalf("seed defaults lost")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("NEWSAPI_KEY", "from-env")
	t.Setenv("HARVESTER_SNAPSHOT_PATH", "/tmp/env.json")
	t.Setenv("HARVESTER_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.NewsAPI.APIKey != "from-env" {
		t.Fatalf("NEWSAPI_KEY not applied: %q", cfg.NewsAPI.APIKey)
	}
	if cfg.Output.SnapshotPath != "/tmp/env.json" {
		t.Fatalf("snapshot path env not applied: %q", cfg.Output.SnapshotPath)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("log level env not applied: %q", cfg.Logging.Level)
	}
}
