package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/alipkcode/ClipTray/internal/app"
	"github.com/alipkcode/ClipTray/internal/caret"
	"github.com/alipkcode/ClipTray/internal/clip"
	"github.com/alipkcode/ClipTray/internal/companion"
	"github.com/alipkcode/ClipTray/internal/config"
	"github.com/alipkcode/ClipTray/internal/dispatch"
	"github.com/alipkcode/ClipTray/internal/inject"
	"github.com/alipkcode/ClipTray/internal/listener"
	"github.com/alipkcode/ClipTray/internal/logging"
	"github.com/alipkcode/ClipTray/internal/permissions"
	"github.com/alipkcode/ClipTray/internal/tray"
)

var (
	// Version is set via ldflags at build time
	Version = "dev"
	// Commit is set via ldflags at build time
	Commit = "unknown"
)

// debugView stands in for the caret widget until a UI layer provides one.
type debugView struct {
	log zerolog.Logger
}

func (v debugView) ShowAt(pos caret.Position, anchor string) {
	v.log.Debug().Int("x", pos.X).Int("y", pos.Y).Str("anchor", anchor).Msg("Caret companion position")
}

func (v debugView) Hide() {
	v.log.Debug().Msg("Caret companion hidden")
}

func main() {
	// Load config from XDG/Library/AppData
	cfg, err := config.Load()
	if err != nil {
		// Use default logger if config fails to load
		log := logging.New()
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	// Initialize logger with configured level
	log := logging.NewWithLevel(cfg.LogLevel)

	// macOS requires accessibility approval before hooks or paste synthesis work
	if err := permissions.EnsurePermissions(); err != nil {
		log.Warn().Err(err).Msg("Missing permissions, hooks and paste may not work")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Clip store
	store := clip.NewStore(config.ClipsPath(), log)

	// Caret locator (dedicated COM worker thread on Windows)
	locator := caret.NewSystemLocator(cfg.Delays.LocateTimeout(), log)
	defer locator.Close()

	// Injection engine
	engine := inject.NewEngine(inject.SystemClipboard{}, inject.SystemKeys{}, inject.Delays{
		CopySettle:       cfg.Delays.CopySettle(),
		PasteSettle:      cfg.Delays.PasteSettle(),
		InterStep:        cfg.Delays.InterStep(),
		ClipboardRestore: cfg.Delays.ClipboardRestore(),
	}, log)

	// Global input monitor
	var source listener.Source
	if !cfg.DisableHooks {
		source = listener.NewHookSource()
	}
	monitor := listener.NewMonitor(source, log)

	// Create tray UI first (we'll pass it to app)
	trayUI := tray.New(nil, cfg, Version, Commit) // App reference set below

	// Dispatcher, with the tray reflecting the wait state
	dispatcher := dispatch.New(engine, monitor, trayUI, cfg.Delays.FocusSettle(), log)

	// Caret companion
	comp := companion.New(locator, debugView{log: log}, monitor, cfg.Position(),
		cfg.Delays.PollInterval(), cfg.Delays.IdleTimeout(), log)

	// Create app
	application := app.New(app.Config{
		Store:      store,
		Settings:   cfg,
		Dispatcher: dispatcher,
		Companion:  comp,
		Logger:     log,
	})

	// Set app reference in tray
	trayUI.SetApp(application)

	// Register global hotkey and start the monitor
	if keys, err := listener.ParseHotkey(cfg.Hotkey); err != nil {
		log.Error().Err(err).Str("hotkey", cfg.Hotkey).Msg("Invalid hotkey, continuing without one")
	} else {
		monitor.SetHotkey(keys, application.OnHotkey)
	}
	monitor.Start()
	defer monitor.Stop()

	application.Start()
	log.Info().Msg("ClipTray starting...")

	// Setup shutdown signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Shutting down...")
		application.Shutdown()
		monitor.Stop()
		locator.Close()
		os.Exit(0)
	}()

	// Start tray UI - MUST run on main thread
	if err := trayUI.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Tray error")
	}
}
