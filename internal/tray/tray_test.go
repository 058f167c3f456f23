package tray

import (
	"testing"

	"github.com/alipkcode/ClipTray/internal/config"
)

// TestStatusEmoji verifies the title indicator for each wait state. The
// systray integration itself is not exercised here; it needs a desktop
// session.
func TestStatusEmoji(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   string
	}{
		{name: "idle", status: "idle", want: "🟢"},
		{name: "waiting for click", status: "waiting", want: "🟡"},
		{name: "unknown defaults to idle", status: "bogus", want: "🟢"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := emojiForStatus(tt.status); got != tt.want {
				t.Errorf("emojiForStatus(%q) = %q, want %q", tt.status, got, tt.want)
			}
		})
	}
}

// TestCheckboxConfigFields verifies the Config fields backing the menu
// checkboxes can be toggled. The checkbox wiring itself runs inside
// systray's event loop.
func TestCheckboxConfigFields(t *testing.T) {
	cfg := &config.Config{}

	cfg.ClickToPaste = true
	if !cfg.ClickToPaste {
		t.Error("expected ClickToPaste true after mutation")
	}

	cfg.CaretCompanion = true
	cfg.CaretCompanion = false
	if cfg.CaretCompanion {
		t.Error("expected CaretCompanion false after mutation")
	}
}
