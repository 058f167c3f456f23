// Package inject delivers text and key sequences to whatever foreign
// window currently holds input focus, as if the user had typed them.
package inject

import (
	"time"

	"github.com/alipkcode/ClipTray/internal/clip"
)

// Injector is the interface the dispatcher drives.
type Injector interface {
	// TypeText injects literal text into the focus target.
	TypeText(text string) error
	// ExecuteSteps injects a macro: text steps and key-action steps in
	// strict order, with the clipboard saved once and restored once.
	ExecuteSteps(steps []clip.Step) error
}

// Clipboard abstracts the OS clipboard. It is a process-wide resource
// shared with every other running application; see the race note on Engine.
type Clipboard interface {
	Read() (string, error)
	Write(text string) error
}

// Keys abstracts keystroke synthesis into the focused window.
type Keys interface {
	// Paste synthesizes the paste chord (Ctrl+V).
	Paste() error
	// Tap synthesizes a key with optional modifiers held.
	Tap(key string, mods ...string) error
	// TypeRune synthesizes one printable character.
	TypeRune(r rune) error
}

// Delays are the named waits the pipeline depends on. They are reliability
// mechanisms against slow foreign applications, not cosmetic sleeps.
type Delays struct {
	CopySettle       time.Duration // after writing the clipboard, before the paste chord
	PasteSettle      time.Duration // after the paste chord, before the next step
	InterStep        time.Duration // between macro steps
	ClipboardRestore time.Duration // before restoring the saved clipboard
}
