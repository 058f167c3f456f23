package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Config is the persisted user settings record. The overlay and settings
// dialog write these; the injection core only reads them.
type Config struct {
	Hotkey            string      `json:"hotkey"`
	ClickToPaste      bool        `json:"click_to_paste"`
	CaretCompanion    bool        `json:"caret_companion"`
	CompanionPosition string      `json:"caret_companion_position"` // compass token, e.g. "e", "nw"
	DisableHooks      bool        `json:"disable_hooks"`
	LogLevel          string      `json:"log_level"`
	Delays            DelayConfig `json:"delays"`
}

// DelayConfig names the fixed waits the injection pipeline depends on.
// These are load-bearing for reliability against slow foreign applications,
// and deliberately tunable rather than hard-coded.
type DelayConfig struct {
	FocusSettleMS      int `json:"focus_settle_ms"`      // before injecting, let focus return to the target
	CopySettleMS       int `json:"copy_settle_ms"`       // after writing the clipboard, before the paste chord
	PasteSettleMS      int `json:"paste_settle_ms"`      // after the paste chord, before moving on
	InterStepMS        int `json:"inter_step_ms"`        // between macro steps
	ClipboardRestoreMS int `json:"clipboard_restore_ms"` // before restoring the saved clipboard
	PollIntervalMS     int `json:"poll_interval_ms"`     // caret poll cadence while typing
	IdleTimeoutMS      int `json:"idle_timeout_ms"`      // typing inactivity before the companion hides
	LocateTimeoutMS    int `json:"locate_timeout_ms"`    // wall-clock bound on one caret probe chain
}

// compassTokens are the valid companion anchor positions.
var compassTokens = map[string]bool{
	"n": true, "ne": true, "e": true, "se": true,
	"s": true, "sw": true, "w": true, "nw": true,
}

// Load reads the config from disk, filling defaults for missing keys.
func Load() (*Config, error) {
	cfg := &Config{
		Hotkey:            "ctrl+shift+v",
		ClickToPaste:      false,
		CaretCompanion:    false,
		CompanionPosition: "e",
		LogLevel:          "info",
		Delays: DelayConfig{
			FocusSettleMS:      150,
			CopySettleMS:       50,
			PasteSettleMS:      100,
			InterStepMS:        60,
			ClipboardRestoreMS: 1000,
			PollIntervalMS:     300,
			IdleTimeoutMS:      3000,
			LocateTimeoutMS:    500,
		},
	}

	if data, err := os.ReadFile(Path()); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Position returns the companion anchor token, normalized to a valid
// compass direction. Unknown tokens fall back to "e" (right of the caret).
func (c *Config) Position() string {
	if compassTokens[c.CompanionPosition] {
		return c.CompanionPosition
	}
	return "e"
}

// Durations converted from the persisted millisecond fields.

func (d DelayConfig) FocusSettle() time.Duration      { return ms(d.FocusSettleMS) }
func (d DelayConfig) CopySettle() time.Duration       { return ms(d.CopySettleMS) }
func (d DelayConfig) PasteSettle() time.Duration      { return ms(d.PasteSettleMS) }
func (d DelayConfig) InterStep() time.Duration        { return ms(d.InterStepMS) }
func (d DelayConfig) ClipboardRestore() time.Duration { return ms(d.ClipboardRestoreMS) }
func (d DelayConfig) PollInterval() time.Duration     { return ms(d.PollIntervalMS) }
func (d DelayConfig) IdleTimeout() time.Duration      { return ms(d.IdleTimeoutMS) }
func (d DelayConfig) LocateTimeout() time.Duration    { return ms(d.LocateTimeoutMS) }

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

// Path returns the platform-specific settings file path.
func Path() string {
	return filepath.Join(baseDir(), "cliptray", "settings.json")
}

// ClipsPath returns the platform-specific clips file path.
func ClipsPath() string {
	return filepath.Join(baseDir(), "cliptray", "clips.json")
}

func baseDir() string {
	switch runtime.GOOS {
	case "windows":
		return os.Getenv("APPDATA")
	case "darwin":
		return os.Getenv("HOME") + "/Library/Application Support"
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return xdg
		}
		return os.Getenv("HOME") + "/.config"
	}
}
