package tray

import (
	"context"
	"fmt"

	"github.com/getlantern/systray"
	"github.com/rs/zerolog"

	"github.com/alipkcode/ClipTray/internal/app"
	"github.com/alipkcode/ClipTray/internal/config"
	"github.com/alipkcode/ClipTray/internal/logging"
)

type UI struct {
	app     *app.App
	cfg     *config.Config
	version string
	commit  string
	log     zerolog.Logger

	// Menu items
	mOpen      *systray.MenuItem
	mClickWait *systray.MenuItem
	mCompanion *systray.MenuItem
}

func New(application *app.App, cfg *config.Config, version, commit string) *UI {
	log := logging.New()
	return &UI{
		app:     application,
		cfg:     cfg,
		version: version,
		commit:  commit,
		log:     log,
	}
}

// SetApp sets the app reference (for circular dependency resolution)
func (u *UI) SetApp(application *app.App) {
	u.app = application
}

// Wait-state updates; these implement the dispatcher's Notifier so the
// tray reflects a parked click-to-paste payload.

func (u *UI) WaitingArmed(title string) {
	u.updateStatus("waiting")
	systray.SetTooltip(fmt.Sprintf("Click where %q should go", title))
}

func (u *UI) WaitingCancelled() {
	u.updateStatus("idle")
	systray.SetTooltip("ClipTray")
}

func (u *UI) Injected(title string) {
	u.updateStatus("idle")
	systray.SetTooltip("ClipTray")
	u.log.Debug().Str("title", title).Msg("Pasted")
}

func (u *UI) Run(ctx context.Context) error {
	systray.Run(u.onReady, u.onExit)
	return nil
}

func (u *UI) onReady() {
	u.updateStatus("idle")
	systray.SetTooltip("ClipTray")

	// Build menu
	u.mOpen = systray.AddMenuItem("Open ClipTray", "Show the clip picker")
	systray.AddSeparator()

	u.mClickWait = systray.AddMenuItemCheckbox("Click-to-Paste", "Paste where you click next", u.cfg.ClickToPaste)
	u.mCompanion = systray.AddMenuItemCheckbox("Caret Companion", "Follow the text caret with a paste button", u.cfg.CaretCompanion)

	systray.AddSeparator()
	mAbout := systray.AddMenuItem("About", "About ClipTray")
	mQuit := systray.AddMenuItem("Quit", "Exit application")

	// Event loop
	go u.handleEvents(mAbout, mQuit)
}

func (u *UI) handleEvents(mAbout, mQuit *systray.MenuItem) {
	for {
		select {
		case <-u.mOpen.ClickedCh:
			u.app.OpenPicker()
		case <-u.mClickWait.ClickedCh:
			u.toggleClickToPaste()
		case <-u.mCompanion.ClickedCh:
			u.toggleCompanion()
		case <-mAbout.ClickedCh:
			u.showAbout()
		case <-mQuit.ClickedCh:
			systray.Quit()
			return
		}
	}
}

func (u *UI) toggleClickToPaste() {
	enabled := !u.app.ClickToPaste()
	u.app.SetClickToPaste(enabled)
	if enabled {
		u.mClickWait.Check()
	} else {
		u.mClickWait.Uncheck()
	}
}

func (u *UI) toggleCompanion() {
	enabled := !u.app.CaretCompanion()
	u.app.SetCaretCompanion(enabled)
	if enabled {
		u.mCompanion.Check()
	} else {
		u.mCompanion.Uncheck()
	}
}

func (u *UI) showAbout() {
	// TODO: Show about dialog with native UI
	fmt.Printf("ClipTray %s (%s)\nClipboard snippets and macros\n", u.version, u.commit)
}

func (u *UI) onExit() {
	// Cleanup
}

// updateStatus sets the tray title with clipboard emoji and status indicator
func (u *UI) updateStatus(status string) {
	emoji := emojiForStatus(status)
	systray.SetTitle(fmt.Sprintf("📋 %s", emoji))
}

// emojiForStatus returns the appropriate status emoji
func emojiForStatus(status string) string {
	switch status {
	case "waiting":
		return "🟡" // Yellow - payload parked on the next click
	case "idle":
		return "🟢" // Green - ready/idle
	default:
		return "🟢" // Green - default to ready
	}
}
