package companion

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/alipkcode/ClipTray/internal/caret"
)

type fakeLocator struct {
	mu  sync.Mutex
	pos caret.Position
	ok  bool
}

func (f *fakeLocator) set(pos caret.Position, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pos, f.ok = pos, ok
}

func (f *fakeLocator) Locate() (caret.Position, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pos, f.ok
}

type shown struct {
	pos    caret.Position
	anchor string
}

type fakeView struct {
	mu    sync.Mutex
	shows []shown
	hides int
}

func (f *fakeView) ShowAt(pos caret.Position, anchor string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shows = append(f.shows, shown{pos, anchor})
}

func (f *fakeView) Hide() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hides++
}

func (f *fakeView) showCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.shows)
}

func (f *fakeView) hideCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hides
}

func (f *fakeView) lastShown() shown {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shows[len(f.shows)-1]
}

type fakeActivity struct {
	ch        chan struct{}
	available bool
}

func newFakeActivity(available bool) *fakeActivity {
	return &fakeActivity{ch: make(chan struct{}, 1), available: available}
}

func (f *fakeActivity) Activity() <-chan struct{} { return f.ch }
func (f *fakeActivity) Available() bool           { return f.available }

func (f *fakeActivity) signal() {
	select {
	case f.ch <- struct{}{}:
	default:
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func newTestCompanion(loc *fakeLocator, view *fakeView, act *fakeActivity, idle time.Duration) *Companion {
	return New(loc, view, act, "e", 10*time.Millisecond, idle, zerolog.Nop())
}

func TestActivityShowsWidgetAtCaret(t *testing.T) {
	loc := &fakeLocator{}
	loc.set(caret.Position{X: 100, Y: 200, CaretHeight: 20}, true)
	view := &fakeView{}
	act := newFakeActivity(true)
	c := newTestCompanion(loc, view, act, time.Second)
	c.SetEnabled(true)
	defer c.SetEnabled(false)

	act.signal()
	waitFor(t, func() bool { return view.showCount() >= 1 })

	got := view.lastShown()
	if got.pos.X != 100 || got.pos.Y != 200 {
		t.Errorf("shown at (%d,%d), want (100,200)", got.pos.X, got.pos.Y)
	}
	if got.anchor != "e" {
		t.Errorf("anchor %q, want %q", got.anchor, "e")
	}
}

func TestSmallMovesAreSuppressed(t *testing.T) {
	loc := &fakeLocator{}
	loc.set(caret.Position{X: 100, Y: 200}, true)
	view := &fakeView{}
	act := newFakeActivity(true)
	c := newTestCompanion(loc, view, act, time.Second)
	c.SetEnabled(true)
	defer c.SetEnabled(false)

	act.signal()
	waitFor(t, func() bool { return view.showCount() >= 1 })

	// A 2px wobble must not reposition.
	loc.set(caret.Position{X: 102, Y: 201}, true)
	time.Sleep(60 * time.Millisecond)
	if view.showCount() != 1 {
		t.Fatalf("widget repositioned %d times on a sub-threshold move", view.showCount()-1)
	}

	// A real move does.
	loc.set(caret.Position{X: 140, Y: 200}, true)
	waitFor(t, func() bool { return view.showCount() >= 2 })
	if got := view.lastShown().pos.X; got != 140 {
		t.Errorf("shown at X=%d, want 140", got)
	}
}

func TestLocateMissHidesWidget(t *testing.T) {
	loc := &fakeLocator{}
	loc.set(caret.Position{X: 100, Y: 200}, true)
	view := &fakeView{}
	act := newFakeActivity(true)
	c := newTestCompanion(loc, view, act, time.Second)
	c.SetEnabled(true)
	defer c.SetEnabled(false)

	act.signal()
	waitFor(t, func() bool { return view.showCount() >= 1 })

	// The caret disappears (focus moved somewhere caretless); the widget
	// must not linger at the stale position.
	loc.set(caret.Position{}, false)
	waitFor(t, func() bool { return view.hideCount() >= 1 })

	// Polling is still live: the caret coming back brings the widget back.
	loc.set(caret.Position{X: 100, Y: 200}, true)
	waitFor(t, func() bool { return view.showCount() >= 2 })
}

func TestLocateFailureShowsNothing(t *testing.T) {
	loc := &fakeLocator{} // ok=false
	view := &fakeView{}
	act := newFakeActivity(true)
	c := newTestCompanion(loc, view, act, time.Second)
	c.SetEnabled(true)
	defer c.SetEnabled(false)

	act.signal()
	time.Sleep(60 * time.Millisecond)
	if view.showCount() != 0 {
		t.Error("widget shown despite locate failure")
	}
}

func TestIdleHidesAndStopsPolling(t *testing.T) {
	loc := &fakeLocator{}
	loc.set(caret.Position{X: 10, Y: 10}, true)
	view := &fakeView{}
	act := newFakeActivity(true)
	c := newTestCompanion(loc, view, act, 50*time.Millisecond)
	c.SetEnabled(true)
	defer c.SetEnabled(false)

	act.signal()
	waitFor(t, func() bool { return view.showCount() >= 1 })
	waitFor(t, func() bool { return view.hideCount() >= 1 })

	// After idle expiry the poll loop is off; a caret move alone does not
	// bring the widget back.
	before := view.showCount()
	loc.set(caret.Position{X: 500, Y: 500}, true)
	time.Sleep(60 * time.Millisecond)
	if view.showCount() != before {
		t.Error("companion kept polling after going idle")
	}

	// Fresh activity wakes it up again.
	act.signal()
	waitFor(t, func() bool { return view.showCount() > before })
}

func TestDegradedModePollsContinuously(t *testing.T) {
	loc := &fakeLocator{}
	loc.set(caret.Position{X: 10, Y: 10}, true)
	view := &fakeView{}
	act := newFakeActivity(false)
	c := newTestCompanion(loc, view, act, time.Second)
	c.SetEnabled(true)
	defer c.SetEnabled(false)

	// No activity signal, yet the widget appears.
	waitFor(t, func() bool { return view.showCount() >= 1 })
}

func TestDisableHidesWidget(t *testing.T) {
	loc := &fakeLocator{}
	loc.set(caret.Position{X: 10, Y: 10}, true)
	view := &fakeView{}
	act := newFakeActivity(true)
	c := newTestCompanion(loc, view, act, time.Second)

	c.SetEnabled(true)
	act.signal()
	waitFor(t, func() bool { return view.showCount() >= 1 })

	c.SetEnabled(false)
	waitFor(t, func() bool { return view.hideCount() >= 1 })
	if c.Enabled() {
		t.Error("companion still reports enabled")
	}
}

func TestEnableTwiceIsIdempotent(t *testing.T) {
	loc := &fakeLocator{}
	view := &fakeView{}
	c := newTestCompanion(loc, view, newFakeActivity(true), time.Second)
	c.SetEnabled(true)
	c.SetEnabled(true)
	c.SetEnabled(false)
	c.SetEnabled(false)
}
