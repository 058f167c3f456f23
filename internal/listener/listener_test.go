package listener

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeSource struct {
	events chan Event
	fail   bool
	closed atomic.Bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{events: make(chan Event, 16)}
}

func (f *fakeSource) Open() (<-chan Event, error) {
	if f.fail {
		return nil, fmt.Errorf("no hook capability")
	}
	return f.events, nil
}

func (f *fakeSource) Close() {
	f.closed.Store(true)
}

func startMonitor(t *testing.T) (*Monitor, *fakeSource) {
	t.Helper()
	src := newFakeSource()
	m := NewMonitor(src, zerolog.Nop())
	m.Start()
	t.Cleanup(m.Stop)
	return m, src
}

func TestClickConsumesArmedPayload(t *testing.T) {
	m, src := startMonitor(t)

	fired := make(chan struct{})
	m.ArmClick(func() { close(fired) })

	src.events <- Event{Kind: LeftClick}

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("armed payload did not fire on click")
	}
	if m.Armed() {
		t.Error("payload should be cleared after consumption")
	}
}

func TestArmReplacesPreviousPayload(t *testing.T) {
	m, src := startMonitor(t)

	var got atomic.Int32
	m.ArmClick(func() { got.Store(1) })
	m.ArmClick(func() { got.Store(2) })

	src.events <- Event{Kind: LeftClick}

	deadline := time.After(time.Second)
	for got.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("no payload fired")
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
	if got.Load() != 2 {
		t.Errorf("payload %d fired, want the replacement (2)", got.Load())
	}

	// The replaced payload must not fire on a later click either.
	src.events <- Event{Kind: LeftClick}
	time.Sleep(50 * time.Millisecond)
	if got.Load() != 2 {
		t.Error("consumed arm re-fired")
	}
}

func TestCancelDiscardsPayload(t *testing.T) {
	m, src := startMonitor(t)

	fired := atomic.Bool{}
	m.ArmClick(func() { fired.Store(true) })
	m.CancelClick()

	src.events <- Event{Kind: LeftClick}
	time.Sleep(50 * time.Millisecond)
	if fired.Load() {
		t.Error("cancelled payload fired")
	}
	if m.Armed() {
		t.Error("monitor should be idle after cancel")
	}
}

func TestClickWithoutArmIsIgnored(t *testing.T) {
	_, src := startMonitor(t)
	src.events <- Event{Kind: LeftClick}
	time.Sleep(20 * time.Millisecond)
	// Nothing to assert beyond "no panic": an unarmed click is a no-op.
}

func TestActivityIsCoalesced(t *testing.T) {
	m, src := startMonitor(t)

	for i := 0; i < 10; i++ {
		src.events <- Event{Kind: KeyDown, Keycode: 30}
	}

	select {
	case <-m.Activity():
	case <-time.After(time.Second):
		t.Fatal("no activity signal")
	}

	// Burst of key events collapses into at most one more pending signal.
	time.Sleep(50 * time.Millisecond)
	n := 0
	for {
		select {
		case <-m.Activity():
			n++
			continue
		default:
		}
		break
	}
	if n > 1 {
		t.Errorf("%d pending activity signals, want a single coalesced slot", n)
	}
}

func TestHotkeyFiresWhenAllKeysDown(t *testing.T) {
	src := newFakeSource()
	m := NewMonitor(src, zerolog.Nop())

	fired := make(chan struct{}, 4)
	m.SetHotkey([]uint16{29, 42, 47}, func() { fired <- struct{}{} })
	m.Start()
	defer m.Stop()

	src.events <- Event{Kind: KeyDown, Keycode: 29}
	src.events <- Event{Kind: KeyDown, Keycode: 42}
	select {
	case <-fired:
		t.Fatal("hotkey fired before the full combination was down")
	case <-time.After(50 * time.Millisecond):
	}

	src.events <- Event{Kind: KeyDown, Keycode: 47}
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("hotkey did not fire")
	}

	// Releasing a modifier breaks the combination.
	src.events <- Event{Kind: KeyUp, Keycode: 29}
	src.events <- Event{Kind: KeyDown, Keycode: 47}
	select {
	case <-fired:
		t.Error("hotkey fired with a modifier released")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHotkeyDoesNotRepeatWhileHeld(t *testing.T) {
	src := newFakeSource()
	m := NewMonitor(src, zerolog.Nop())

	fired := make(chan struct{}, 8)
	m.SetHotkey([]uint16{29, 47}, func() { fired <- struct{}{} })
	m.Start()
	defer m.Stop()

	src.events <- Event{Kind: KeyDown, Keycode: 29}
	src.events <- Event{Kind: KeyDown, Keycode: 47}
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("hotkey did not fire")
	}

	// OS key-repeat with the chord held delivers more key-down events;
	// none of them may re-fire the handler.
	for i := 0; i < 5; i++ {
		src.events <- Event{Kind: KeyDown, Keycode: 47}
	}
	select {
	case <-fired:
		t.Fatal("hotkey re-fired on key repeat")
	case <-time.After(50 * time.Millisecond):
	}

	// Full release and a fresh press fires again.
	src.events <- Event{Kind: KeyUp, Keycode: 47}
	src.events <- Event{Kind: KeyUp, Keycode: 29}
	src.events <- Event{Kind: KeyDown, Keycode: 29}
	src.events <- Event{Kind: KeyDown, Keycode: 47}
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("hotkey did not fire after release and re-press")
	}
}

func TestUnavailableSourceDegradesToFallbackTimer(t *testing.T) {
	src := newFakeSource()
	src.fail = true
	m := NewMonitor(src, zerolog.Nop())
	m.Start()
	defer m.Stop()

	if m.Available() {
		t.Fatal("monitor should report unavailable")
	}

	fired := make(chan struct{})
	m.ArmClick(func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(fallbackClickDelay + time.Second):
		t.Fatal("fallback timer never fired the armed payload")
	}
}

func TestStopClosesSource(t *testing.T) {
	src := newFakeSource()
	m := NewMonitor(src, zerolog.Nop())
	m.Start()
	m.Stop()
	if !src.closed.Load() {
		t.Error("stop should close the hook source")
	}
}

func TestParseHotkey(t *testing.T) {
	keys, err := ParseHotkey("ctrl+shift+v")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 3 {
		t.Errorf("parsed %d keys, want 3", len(keys))
	}

	if _, err := ParseHotkey("ctrl+flurb"); err == nil {
		t.Error("unknown key should be rejected")
	}
	if _, err := ParseHotkey(""); err == nil {
		t.Error("empty hotkey should be rejected")
	}
}
