package sitebridge

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sitebridge.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
name: "My Site"
url: "https://example.org"
post_cache_ttl: "90s"
authors:
  - login: alice
    name: Alice Field
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "My Site" || cfg.URL != "https://example.org" {
		t.Errorf("cfg = %+v", cfg)
	}
	if time.Duration(cfg.PostCacheTTL) != 90*time.Second {
		t.Errorf("post_cache_ttl = %v, want 90s", time.Duration(cfg.PostCacheTTL))
	}
	if len(cfg.Authors) != 1 || cfg.Authors[0].Login != "alice" {
		t.Errorf("authors = %+v", cfg.Authors)
	}
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, `post_cache_ttl: "five minutes"`)
	if _, err := LoadConfig(path); err == nil {
		t.Error("unparsable duration should fail")
	}
}

func TestConfigDefaults(t *testing.T) {
	var cfg SiteConfig
	cfg.setDefaults()

	if cfg.URL != "http://localhost:3000" || cfg.Addr != ":3000" {
		t.Errorf("defaults = %+v", cfg)
	}
	if time.Duration(cfg.PostCacheTTL) != 5*time.Minute {
		t.Errorf("default TTL = %v, want 5m", time.Duration(cfg.PostCacheTTL))
	}
}
