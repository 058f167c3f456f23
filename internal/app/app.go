// Package app wires the store, dispatcher, companion and input monitor
// into the operations the tray UI drives.
package app

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/alipkcode/ClipTray/internal/clip"
	"github.com/alipkcode/ClipTray/internal/config"
)

// Dispatcher delivers a clip to the focused window, immediately or on the
// next click. Implemented by dispatch.Dispatcher.
type Dispatcher interface {
	Dispatch(c *clip.Clip, clickToPaste bool)
	Cancel()
}

// Companion is the caret-following widget controller.
type Companion interface {
	SetEnabled(enabled bool)
	Enabled() bool
}

// Opener shows the clip picker window. The window itself is rendered by a
// separate UI layer; the core only asks for it to appear.
type Opener interface {
	Open()
}

type Config struct {
	Store      *clip.Store
	Settings   *config.Config
	Dispatcher Dispatcher
	Companion  Companion
	Opener     Opener // optional, can be nil
	Logger     zerolog.Logger
}

type App struct {
	store      *clip.Store
	settings   *config.Config
	dispatcher Dispatcher
	companion  Companion
	opener     Opener
	log        zerolog.Logger

	mu sync.Mutex
}

func New(cfg Config) *App {
	return &App{
		store:      cfg.Store,
		settings:   cfg.Settings,
		dispatcher: cfg.Dispatcher,
		companion:  cfg.Companion,
		opener:     cfg.Opener,
		log:        cfg.Logger,
	}
}

// Start applies persisted settings to the live components.
func (a *App) Start() {
	if a.settings.CaretCompanion {
		a.companion.SetEnabled(true)
	}
}

// OnHotkey fires on the global hotkey: it opens the picker window.
func (a *App) OnHotkey() {
	a.log.Debug().Msg("Hotkey pressed")
	a.OpenPicker()
}

// OpenPicker asks the UI layer to show the clip picker.
func (a *App) OpenPicker() {
	if a.opener != nil {
		a.opener.Open()
	}
}

// PasteClip dispatches the stored clip with the given id, honoring the
// click-to-paste setting.
func (a *App) PasteClip(id string) error {
	c, ok := a.store.Get(id)
	if !ok {
		return fmt.Errorf("no clip with id %q", id)
	}

	a.mu.Lock()
	clickToPaste := a.settings.ClickToPaste
	a.mu.Unlock()

	a.log.Info().Str("id", id).Str("title", c.Title).Bool("click_to_paste", clickToPaste).Msg("Dispatching clip")
	a.dispatcher.Dispatch(&c, clickToPaste)
	return nil
}

// CancelPending discards an armed click-to-paste payload.
func (a *App) CancelPending() {
	a.dispatcher.Cancel()
}

// Tray actions

func (a *App) SetClickToPaste(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.settings.ClickToPaste = enabled
	if !enabled {
		a.dispatcher.Cancel()
	}
	if err := a.settings.Save(); err != nil {
		a.log.Error().Err(err).Msg("Failed to save settings")
	}
	a.log.Info().Bool("enabled", enabled).Msg("Click-to-paste changed")
}

func (a *App) ClickToPaste() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settings.ClickToPaste
}

func (a *App) SetCaretCompanion(enabled bool) {
	a.mu.Lock()
	a.settings.CaretCompanion = enabled
	if err := a.settings.Save(); err != nil {
		a.log.Error().Err(err).Msg("Failed to save settings")
	}
	a.mu.Unlock()

	a.companion.SetEnabled(enabled)
	a.log.Info().Bool("enabled", enabled).Msg("Caret companion changed")
}

func (a *App) CaretCompanion() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settings.CaretCompanion
}

// Store exposes the clip store to the UI layer.
func (a *App) Store() *clip.Store {
	return a.store
}

// Shutdown discards pending work and stops the companion.
func (a *App) Shutdown() {
	a.dispatcher.Cancel()
	a.companion.SetEnabled(false)
}
