// Package sitebridge is a self-hosted publishing target for the Docswrite
// dashboard. It exposes the dashboard's command endpoint (connect handshake,
// post publish/update/delete, author and taxonomy lookups), owns the content
// in SQLite, and serves published posts, a feed and a sitemap alongside a
// small session-authenticated admin page.
package sitebridge

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// App is the central sitebridge application. It wires together the store,
// cache, command dispatcher, middleware and admin surface.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *postCache
	Log    zerolog.Logger

	commands     map[string]commandFunc
	loginLimiter *loginLimiter
	customRoutes []func(*App)
	staticDir    string
}

// New creates a new sitebridge App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Log:       zerolog.New(os.Stdout).With().Timestamp().Logger(),
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// initialize opens the store, seeds directories, and registers middleware
// and routes. Split out of Start so tests can drive the app through
// httptest without binding a listener.
func (a *App) initialize() error {
	if a.Config.AdminPassword == "" {
		return fmt.Errorf("sitebridge: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("sitebridge: SessionSecret is required")
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("sitebridge: init store: %w", err)
	}
	a.Store = store

	a.Cache = newPostCache(a.Store, time.Duration(a.Config.PostCacheTTL))
	a.loginLimiter = newLoginLimiter(5, time.Minute)
	a.commands = a.commandTable()

	if err := a.ensureWebsiteID(); err != nil {
		return fmt.Errorf("sitebridge: website id: %w", err)
	}
	if err := a.seedDirectories(); err != nil {
		return fmt.Errorf("sitebridge: seed directories: %w", err)
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the application and runs the server.
func (a *App) Start() error {
	if err := a.initialize(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// seedDirectories upserts configured authors and registers custom
// taxonomies.
func (a *App) seedDirectories() error {
	for _, author := range a.Config.Authors {
		if author.Login == "" {
			continue
		}
		name := author.Name
		if name == "" {
			name = author.Login
		}
		if _, err := a.Store.SaveAuthor(author.Login, name); err != nil {
			return err
		}
	}
	for _, tax := range a.Config.Taxonomies {
		if tax.Name == "" {
			continue
		}
		label := tax.Label
		if label == "" {
			label = tax.Name
		}
		if err := a.Store.RegisterTaxonomy(tax.Name, label, tax.Hierarchical); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// The Docswrite command endpoint. Registered for every method so the
	// dispatcher can answer non-POST requests with its own 405 envelope.
	e.Any("/api/docswrite", a.handleCommand)

	// Public read surface
	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/posts/:slug/", a.handlePost)

	// Admin settings surface
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.POST("/admin/disconnect/", a.handleDisconnect)

	// Secondary SEO write surface, gated by the admin session
	e.POST("/admin/api/seo/yoast/:id", a.handleSEOYoast)
	e.POST("/admin/api/seo/rankmath/:id", a.handleSEORankmath)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if
// empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
