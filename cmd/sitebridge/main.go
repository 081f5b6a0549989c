package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/docswrite/sitebridge"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "serve":
		if err := runServe(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "init":
		if err := runInit(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("sitebridge %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func runServe() error {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	app := sitebridge.New(cfg, sitebridge.WithLogger(log))
	defer app.Close()

	log.Info().Str("addr", cfg.Addr).Str("url", cfg.URL).Msg("starting sitebridge")
	return app.Start()
}

// loadConfig reads the YAML config when present and applies environment
// overrides on top, so containerized deployments can run without a file.
func loadConfig() (sitebridge.SiteConfig, error) {
	var cfg sitebridge.SiteConfig

	path := sitebridge.EnvOr("SITEBRIDGE_CONFIG", "sitebridge.yml")
	if _, err := os.Stat(path); err == nil {
		cfg, err = sitebridge.LoadConfig(path)
		if err != nil {
			return cfg, err
		}
	}

	cfg.Name = sitebridge.EnvOr("SITE_NAME", cfg.Name)
	cfg.URL = sitebridge.EnvOr("SITE_URL", cfg.URL)
	cfg.Description = sitebridge.EnvOr("SITE_DESCRIPTION", cfg.Description)
	cfg.Addr = sitebridge.EnvOr("SITEBRIDGE_ADDR", cfg.Addr)
	cfg.DatabasePath = sitebridge.EnvOr("SITEBRIDGE_DB", cfg.DatabasePath)
	cfg.AdminPassword = sitebridge.EnvOr("ADMIN_PASSWORD", cfg.AdminPassword)
	cfg.SessionSecret = sitebridge.EnvOr("SESSION_SECRET", cfg.SessionSecret)
	return cfg, nil
}

const starterConfig = `# sitebridge configuration
name: ""                    # site name; invented at random when empty
url: "http://localhost:3000"
description: ""
addr: ":3000"
database_path: "data/sitebridge.db"

admin_password: "change-me"
session_secret: "change-me-too"
cookie_secure: false
post_cache_ttl: "5m"

authors:
  - login: admin
    name: Site Admin

# taxonomies:
#   - name: series
#     label: Series
#     hierarchical: false
`

func runInit() error {
	const path = "sitebridge.yml"
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := os.WriteFile(path, []byte(starterConfig), 0o644); err != nil {
		return err
	}
	fmt.Printf("Wrote %s - edit it and run: sitebridge serve\n", path)
	return nil
}

func printUsage() {
	fmt.Println(`sitebridge - self-hosted Docswrite publishing target

Usage:
  sitebridge <command>

Commands:
  serve         Run the server (default)
  init          Write a starter sitebridge.yml
  version       Print the sitebridge version
  help          Show this help message`)
}
