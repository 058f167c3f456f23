// Package dispatch routes a chosen clip to the injection engine, either
// immediately or deferred until the user's next left click.
package dispatch

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/alipkcode/ClipTray/internal/clip"
	"github.com/alipkcode/ClipTray/internal/inject"
)

// Armer holds at most one pending payload and fires it on the next left
// click. It is implemented by listener.Monitor.
type Armer interface {
	ArmClick(fn func())
	CancelClick()
	Armed() bool
}

// Notifier receives wait-state transitions so a badge or tray UI can
// reflect them. All methods may be called from background goroutines.
type Notifier interface {
	// WaitingArmed fires when a payload is parked on the next click.
	WaitingArmed(title string)
	// WaitingCancelled fires when a pending payload is discarded,
	// including when a newer payload replaces it.
	WaitingCancelled()
	// Injected fires after a payload has been delivered.
	Injected(title string)
}

type nopNotifier struct{}

func (nopNotifier) WaitingArmed(string) {}
func (nopNotifier) WaitingCancelled()   {}
func (nopNotifier) Injected(string)     {}

// Dispatcher turns "the user picked this clip" into an injection, now or
// on the next click.
type Dispatcher struct {
	injector    inject.Injector
	armer       Armer
	notifier    Notifier
	focusSettle time.Duration
	log         zerolog.Logger
}

// New builds a Dispatcher. notifier may be nil.
func New(injector inject.Injector, armer Armer, notifier Notifier, focusSettle time.Duration, log zerolog.Logger) *Dispatcher {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Dispatcher{
		injector:    injector,
		armer:       armer,
		notifier:    notifier,
		focusSettle: focusSettle,
		log:         log.With().Str("component", "dispatch").Logger(),
	}
}

// Dispatch delivers c to the focused window. With clickToPaste the payload
// is armed on the next left click instead, replacing any pending payload.
// Both paths wait out the focus-settle delay before injecting: immediately
// so the window the user was working in regains focus, and on the click so
// the clicked field has received focus before keystrokes arrive.
func (d *Dispatcher) Dispatch(c *clip.Clip, clickToPaste bool) {
	title := c.Title
	payload := d.payload(c)

	if clickToPaste {
		if d.armer.Armed() {
			d.notifier.WaitingCancelled()
		}
		d.armer.ArmClick(func() {
			time.Sleep(d.focusSettle)
			payload()
			d.notifier.Injected(title)
		})
		d.notifier.WaitingArmed(title)
		d.log.Debug().Str("title", title).Msg("payload armed for next click")
		return
	}

	go func() {
		time.Sleep(d.focusSettle)
		payload()
		d.notifier.Injected(title)
	}()
}

// Cancel discards the pending click-to-paste payload, if any.
func (d *Dispatcher) Cancel() {
	if !d.armer.Armed() {
		return
	}
	d.armer.CancelClick()
	d.notifier.WaitingCancelled()
	d.log.Debug().Msg("pending payload cancelled")
}

// payload binds the right injection call for the clip. Failures are logged
// and absorbed here: a misbehaving foreign window must never take the
// process down.
func (d *Dispatcher) payload(c *clip.Clip) func() {
	if c.IsMacro {
		steps := c.Steps
		return func() {
			if err := d.injector.ExecuteSteps(steps); err != nil {
				d.log.Error().Err(err).Msg("macro injection failed")
			}
		}
	}
	text := c.Text
	return func() {
		if err := d.injector.TypeText(text); err != nil {
			d.log.Error().Err(err).Msg("text injection failed")
		}
	}
}
