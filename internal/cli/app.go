// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/jeranaias/ragchat-tui/internal/backend"
	"github.com/jeranaias/ragchat-tui/internal/config"
	"github.com/jeranaias/ragchat-tui/internal/logging"
	"github.com/jeranaias/ragchat-tui/internal/session"
	"github.com/jeranaias/ragchat-tui/internal/storage"
	"github.com/jeranaias/ragchat-tui/internal/turn"
)

// =============================================================================
// APPLICATION WIRING
// =============================================================================

// App bundles the wired components the command handlers share.
type App struct {
	Cfg        *config.Config
	Logger     *slog.Logger
	Client     *backend.Client
	Store      *session.Store
	Controller *turn.Controller
	Archive    *storage.Archive // nil when archiving is disabled

	logLevel *slog.LevelVar
	watcher  *config.Watcher
	closeLog func() error
}

// NewApp loads configuration and builds the backend client, session store
// and turn controller. logToFile routes logs into the config directory
// instead of stderr (the TUI needs the terminal to itself).
func NewApp(args Args, logToFile bool) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logCfg := cfg.Log
	if args.Verbose {
		logCfg.Level = "debug"
	} else if args.Quiet {
		logCfg.Level = "warn"
	}
	if logToFile && logCfg.File == "" {
		dir, err := config.ConfigDir()
		if err != nil {
			return nil, err
		}
		logCfg.File = filepath.Join(dir, "ragchat.log")
	}

	logger, logLevel, closeLog, err := logging.Setup(logCfg)
	if err != nil {
		return nil, err
	}

	client := backend.NewClient(&backend.ClientConfig{
		BaseURL:           cfg.Backend.URL,
		Timeout:           cfg.Timeout(),
		MaxRetries:        cfg.Backend.MaxRetries,
		RequestsPerSecond: cfg.Backend.RequestsPerSecond,
		MaxFileSize:       cfg.MaxFileSize(),
		Logger:            logger,
	})

	store := session.NewStore()
	controller := turn.NewController(store, client, logger)

	app := &App{
		Cfg:        cfg,
		Logger:     logger,
		Client:     client,
		Store:      store,
		Controller: controller,
		logLevel:   logLevel,
		closeLog:   closeLog,
	}

	if cfg.Archive.Enabled {
		path := cfg.Archive.Path
		if path == "" {
			if path, err = storage.DefaultPath(); err != nil {
				closeLog()
				return nil, err
			}
		}
		archive, err := storage.Open(path, cfg.Archive.MaxSessions, logger)
		if err != nil {
			// Archiving is a convenience; chat still works without it.
			logger.Warn("failed to open session archive", "error", err)
		} else {
			app.Archive = archive
		}
	}

	return app, nil
}

// WatchConfig hot-reloads the config file for long-lived commands (TUI,
// REPL). Only the log level is applied live; everything else takes effect
// on the next start.
func (a *App) WatchConfig() {
	path, err := config.ConfigPath()
	if err != nil {
		return
	}

	watcher, err := config.NewWatcher(path, time.Second, func(cfg *config.Config) {
		level, err := logging.ParseLevel(cfg.Log.Level)
		if err != nil {
			a.Logger.Warn("reloaded config has invalid log level", "level", cfg.Log.Level)
			return
		}
		a.logLevel.Set(level)
		a.Logger.Info("configuration reloaded", "log_level", cfg.Log.Level)
	})
	if err != nil {
		a.Logger.Warn("config watcher unavailable", "error", err)
		return
	}
	if err := watcher.Watch(); err != nil {
		a.Logger.Warn("config watcher failed to start", "error", err)
		watcher.Close()
		return
	}
	a.watcher = watcher
}

// OpenArchive returns the archive or an error for commands that require it.
func (a *App) OpenArchive() (*storage.Archive, error) {
	if a.Archive == nil {
		return nil, fmt.Errorf("session archive is disabled (see [archive] in config)")
	}
	return a.Archive, nil
}

// Close releases the watcher, the archive and the log file.
func (a *App) Close() {
	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.Archive != nil {
		a.Archive.Close()
	}
	if a.closeLog != nil {
		a.closeLog()
	}
}
