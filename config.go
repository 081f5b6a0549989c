package sitebridge

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// SiteConfig holds all configuration for a sitebridge site. Values come from
// an optional YAML file with environment-variable overrides applied by the
// command wrapper.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name; a random one is invented when empty
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"` // Site description for the feed

	Addr         string `yaml:"addr"`          // Listen address (default ":3000")
	DatabasePath string `yaml:"database_path"` // SQLite path (default "data/sitebridge.db")

	AdminPassword string `yaml:"admin_password"` // Required: admin login password
	SessionSecret string `yaml:"session_secret"` // Required: session encryption secret
	CookieSecure  bool   `yaml:"cookie_secure"`  // Set true for HTTPS

	PostCacheTTL Duration `yaml:"post_cache_ttl"` // Post cache TTL, e.g. "5m" (default 5m)

	// Authors seeded into the user directory at startup; these are what
	// get_authors can return and what post author ids refer to.
	Authors []AuthorConfig `yaml:"authors"`

	// Extra taxonomies registered beside the built-in category/post_tag.
	Taxonomies []TaxonomyConfig `yaml:"taxonomies"`
}

// AuthorConfig seeds one entry in the author directory.
type AuthorConfig struct {
	Login string `yaml:"login"`
	Name  string `yaml:"name"`
}

// TaxonomyConfig registers one custom taxonomy.
type TaxonomyConfig struct {
	Name         string `yaml:"name"`
	Label        string `yaml:"label"`
	Hierarchical bool   `yaml:"hierarchical"`
}

// Duration decodes YAML duration strings like "5m" or "90s". Bare integers
// are accepted as nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag == "!!int" {
		var n int64
		if err := value.Decode(&n); err != nil {
			return fmt.Errorf("parse duration: %w", err)
		}
		*d = Duration(n)
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("parse duration: %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// LoadConfig reads a YAML config file into a SiteConfig.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c *SiteConfig) setDefaults() {
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/sitebridge.db"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = Duration(5 * time.Minute)
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithStaticDir sets the directory for static assets and sideloaded uploads
// (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithLogger replaces the default stdout logger.
func WithLogger(log zerolog.Logger) Option {
	return func(a *App) {
		a.Log = log
	}
}

// WithCustomRoutes registers additional routes on the Echo instance before
// the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}
