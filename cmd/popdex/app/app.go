// Package app provides the application context and dependency management
// for the popdex CLI. It centralizes configuration, logging and the
// lazily created engine instance.
package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/popdex/popdex"
)

// App represents the popdex application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Engine instance (lazy-initialized, singleton)
	mu     sync.RWMutex
	engine popdex.Popdex
}

// New creates a new App instance with the given version information.
func New(version, commit, date string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version string.
func (a *App) Version() string {
	return a.version
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Engine returns the popdex instance, creating it lazily if needed.
// Thread-safe; only one instance is created.
func (a *App) Engine() (popdex.Popdex, error) {
	a.mu.RLock()
	if a.engine != nil {
		engine := a.engine
		a.mu.RUnlock()
		return engine, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.engine != nil {
		return a.engine, nil
	}

	engine, err := popdex.New(a.buildEngineOptions()...)
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}

	a.engine = engine
	return engine, nil
}

// Shutdown performs graceful shutdown of the application.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.RLock()
	engine := a.engine
	a.mu.RUnlock()

	if engine != nil {
		if err := engine.AutoUpdatesOff(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to stop auto-updates during shutdown")
		}
	}
	return nil
}

// buildEngineOptions constructs engine options from the app configuration.
func (a *App) buildEngineOptions() []popdex.Option {
	var opts []popdex.Option

	if a.config.CatalogURL != "" {
		opts = append(opts, popdex.WithCatalogURL(a.config.CatalogURL))
	}
	if a.config.CachePath != "" {
		opts = append(opts, popdex.WithSnapshotCache(a.config.CachePath))
	}
	if a.config.SnapshotTTL > 0 {
		opts = append(opts, popdex.WithTTL(a.config.SnapshotTTL))
	}
	if a.config.AutoUpdatesEnabled {
		opts = append(opts, popdex.WithAutoUpdates(true))
		if a.config.AutoUpdateInterval > 0 {
			opts = append(opts, popdex.WithAutoUpdateInterval(a.config.AutoUpdateInterval))
		}
	}

	return opts
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithEngine sets a custom engine instance (useful for testing).
func WithEngine(engine popdex.Popdex) Option {
	return func(a *App) error {
		a.engine = engine
		return nil
	}
}
