// Package app assembles the runtime pieces behind every command: config,
// logging, registry, engine and the optional history store.
package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ZacheryGlass/scriptdeck/internal/config"
	"github.com/ZacheryGlass/scriptdeck/internal/engine"
	"github.com/ZacheryGlass/scriptdeck/internal/history"
	"github.com/ZacheryGlass/scriptdeck/internal/registry"
)

// App holds the wired components for one command invocation.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Registry *registry.Registry
	Engine   *engine.Engine

	// History is nil when recording is disabled.
	History *history.Store
}

// Load builds an App from the config at cfgPath, or from defaults when
// cfgPath is empty.
func Load(cfgPath string) (*App, error) {
	cfg := config.Defaults()
	if cfgPath != "" {
		loaded, err := config.LoadFromFile(cfgPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	logger := newLogger(cfg.LogLevel)

	reg := registry.New(registry.Options{
		Dir:      cfg.ScriptsDir,
		Disabled: cfg.DisabledScripts,
		Logger:   logger,
	})
	eng := engine.New(engine.Options{
		Python:          cfg.Python,
		DefaultTimeout:  cfg.Execution.DefaultTimeout.Std(),
		CaptureMaxBytes: cfg.Execution.CaptureMaxBytes,
		TermGrace:       cfg.Execution.TermGrace.Std(),
		Logger:          logger,
	})

	a := &App{Config: cfg, Logger: logger, Registry: reg, Engine: eng}
	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("history store: %w", err)
		}
		a.History = store
	}
	return a, nil
}

// Close releases held resources.
func (a *App) Close() error {
	if a.History != nil {
		return a.History.Close()
	}
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
