// Package listener owns the process-wide global input hooks and turns raw
// OS callbacks into the two signals the rest of the application consumes:
// "keyboard activity occurred" and "a left click happened while armed".
//
// Hook callbacks fire on a pipeline outside our control and never touch
// consumer state directly; everything crosses into the owning goroutine
// through channels.
package listener

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventKind tags the reduced input events a Source produces.
type EventKind int

const (
	KeyDown EventKind = iota
	KeyUp
	LeftClick
)

// Event is a reduced global input event.
type Event struct {
	Kind    EventKind
	Keycode uint16
}

// Source is the underlying hook capability. The production source wraps
// gohook; tests feed events by hand. Opening may fail: global hooks are
// not available in every deployment environment.
type Source interface {
	Open() (<-chan Event, error)
	Close()
}

// fallbackClickDelay stands in for the next-click signal when no mouse
// hook exists: the armed payload fires after this single timer instead.
const fallbackClickDelay = 3 * time.Second

// Monitor is the long-lived manager of the global hooks. It owns at most
// one armed click consumer at a time; arming replaces rather than layers.
type Monitor struct {
	source Source
	log    zerolog.Logger

	hotkey   []uint16
	onHotkey func()

	activity chan struct{}

	mu        sync.Mutex
	armed     func()
	available bool
	fallback  *time.Timer

	stopOnce sync.Once
	stop     chan struct{}
}

func NewMonitor(source Source, log zerolog.Logger) *Monitor {
	return &Monitor{
		source:   source,
		log:      log,
		activity: make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}
}

// SetHotkey registers the global hotkey combination (as source keycodes)
// and its handler. Must be called before Start.
func (m *Monitor) SetHotkey(keycodes []uint16, fn func()) {
	m.hotkey = keycodes
	m.onHotkey = fn
}

// Start opens the hook source and begins dispatching. A nil or
// unavailable source is logged and degrades the monitor, it is never
// fatal.
func (m *Monitor) Start() {
	if m.source == nil {
		m.log.Warn().Msg("Global input hooks disabled, degrading to timers")
		return
	}
	events, err := m.source.Open()
	if err != nil {
		m.log.Warn().Err(err).Msg("Global input hooks unavailable, degrading to timers")
		return
	}

	m.mu.Lock()
	m.available = true
	m.mu.Unlock()

	go m.run(events)
}

// Stop tears the hooks down and discards any armed payload.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
		if m.source != nil {
			m.source.Close()
		}
	})
	m.CancelClick()
}

// Available reports whether real hooks are running. Consumers use this to
// pick between activity-triggered and fixed-interval polling.
func (m *Monitor) Available() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.available
}

// Activity is a coalesced single-slot channel signalling "the user typed".
// It carries no payload; the consumer interprets it statefully.
func (m *Monitor) Activity() <-chan struct{} {
	return m.activity
}

// ArmClick registers fn to run on the next global left click. Arming while
// already armed replaces the previous consumer: at most one payload is
// ever pending. Without hook capability, a single fallback timer fires the
// consumer instead.
func (m *Monitor) ArmClick(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cancelLocked()
	m.armed = fn

	if !m.available {
		m.log.Warn().Msg("No mouse hook, arming fallback timer instead of click wait")
		m.fallback = time.AfterFunc(fallbackClickDelay, m.consumeArmed)
	}
}

// CancelClick discards the armed consumer, if any.
func (m *Monitor) CancelClick() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelLocked()
}

// Armed reports whether a click consumer is pending.
func (m *Monitor) Armed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.armed != nil
}

func (m *Monitor) cancelLocked() {
	m.armed = nil
	if m.fallback != nil {
		m.fallback.Stop()
		m.fallback = nil
	}
}

// consumeArmed takes the pending consumer and runs it. The payload is
// cleared before the consumer starts, so a reentrant click during the
// resulting injection cannot re-trigger it.
func (m *Monitor) consumeArmed() {
	m.mu.Lock()
	fn := m.armed
	m.cancelLocked()
	m.mu.Unlock()

	if fn != nil {
		fn()
	}
}

func (m *Monitor) run(events <-chan Event) {
	pressed := make(map[uint16]bool)
	chordHeld := false

	for {
		select {
		case <-m.stop:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Kind {
			case KeyDown:
				pressed[ev.Keycode] = true
				m.signalActivity()
				// Edge-triggered: key-repeat events while the chord is
				// held must not re-fire the handler.
				if m.hotkeyPressed(pressed) {
					if !chordHeld {
						chordHeld = true
						m.onHotkey()
					}
				} else {
					chordHeld = false
				}
			case KeyUp:
				pressed[ev.Keycode] = false
				chordHeld = chordHeld && m.hotkeyPressed(pressed)
			case LeftClick:
				// Run the consumer off the hook loop so a slow injection
				// cannot back up event delivery.
				go m.consumeArmed()
			}
		}
	}
}

func (m *Monitor) signalActivity() {
	select {
	case m.activity <- struct{}{}:
	default:
	}
}

func (m *Monitor) hotkeyPressed(pressed map[uint16]bool) bool {
	if len(m.hotkey) == 0 || m.onHotkey == nil {
		return false
	}
	for _, kc := range m.hotkey {
		if !pressed[kc] {
			return false
		}
	}
	return true
}
