// Package companion drives the small floating widget that shadows the text
// caret while the user types. It owns the poll/idle timing; the widget
// itself lives behind the View interface.
package companion

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/alipkcode/ClipTray/internal/caret"
)

// flickerThreshold is the movement, in pixels on either axis, below which
// the widget stays put. Caret probes jitter by a pixel or two between
// polls and repositioning on every wobble makes the widget shimmer.
const flickerThreshold = 3

// Locator resolves the caret position on demand.
type Locator interface {
	Locate() (caret.Position, bool)
}

// View is the on-screen widget. ShowAt receives the caret position and the
// compass anchor token ("e", "ne", ...) describing which side of the caret
// the widget should sit on. Implementations must tolerate calls from a
// background goroutine.
type View interface {
	ShowAt(pos caret.Position, anchor string)
	Hide()
}

// Activity reports user input liveness. Implemented by listener.Monitor.
type Activity interface {
	// Activity returns a channel that receives a signal when the user
	// presses a key or clicks. Signals are coalesced.
	Activity() <-chan struct{}
	// Available reports whether input events are actually flowing. When
	// false the companion polls continuously instead of waiting for
	// activity.
	Available() bool
}

// Companion polls the caret while the user is active and hides the widget
// after an idle stretch.
type Companion struct {
	locator  Locator
	view     View
	activity Activity
	anchor   string
	poll     time.Duration
	idle     time.Duration
	log      zerolog.Logger

	mu      sync.Mutex
	enabled bool
	stop    chan struct{}

	lastShown caret.Position
	showing   bool
}

// New builds a Companion. anchor is one of the eight compass tokens.
func New(locator Locator, view View, activity Activity, anchor string, poll, idle time.Duration, log zerolog.Logger) *Companion {
	return &Companion{
		locator:  locator,
		view:     view,
		activity: activity,
		anchor:   anchor,
		poll:     poll,
		idle:     idle,
		log:      log.With().Str("component", "companion").Logger(),
	}
}

// SetEnabled starts or stops the companion loop. Disabling hides the
// widget immediately.
func (c *Companion) SetEnabled(enabled bool) {
	c.mu.Lock()
	if enabled == c.enabled {
		c.mu.Unlock()
		return
	}
	c.enabled = enabled
	if enabled {
		c.stop = make(chan struct{})
		go c.run(c.stop)
		c.mu.Unlock()
		c.log.Info().Msg("caret companion enabled")
		return
	}
	close(c.stop)
	c.stop = nil
	c.mu.Unlock()
	c.view.Hide()
	c.log.Info().Msg("caret companion disabled")
}

// Enabled reports whether the companion loop is running.
func (c *Companion) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// run is the companion's only goroutine: it turns activity signals into a
// polling window that closes after the idle timeout.
func (c *Companion) run(stop chan struct{}) {
	degraded := !c.activity.Available()
	if degraded {
		c.log.Warn().Msg("no input events available; polling continuously")
	}

	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()
	if !degraded {
		ticker.Stop()
	}

	idle := time.NewTimer(c.idle)
	defer idle.Stop()
	if degraded {
		idle.Stop()
	}
	polling := degraded

	for {
		select {
		case <-stop:
			c.hide()
			return
		case <-c.activity.Activity():
			if degraded {
				continue
			}
			if !polling {
				polling = true
				ticker.Reset(c.poll)
				c.update()
			}
			resetTimer(idle, c.idle)
		case <-ticker.C:
			c.update()
		case <-idle.C:
			polling = false
			ticker.Stop()
			c.hide()
		}
	}
}

// update asks the locator and repositions the widget, suppressing
// sub-threshold moves. A miss hides the widget right away: a stale anchor
// next to nothing is worse than no widget.
func (c *Companion) update() {
	pos, ok := c.locator.Locate()
	if !ok {
		c.hide()
		return
	}
	c.mu.Lock()
	if c.showing && abs(pos.X-c.lastShown.X) < flickerThreshold && abs(pos.Y-c.lastShown.Y) < flickerThreshold {
		c.mu.Unlock()
		return
	}
	c.lastShown = pos
	c.showing = true
	c.mu.Unlock()
	c.view.ShowAt(pos, c.anchor)
}

func (c *Companion) hide() {
	c.mu.Lock()
	was := c.showing
	c.showing = false
	c.mu.Unlock()
	if was {
		c.view.Hide()
	}
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
