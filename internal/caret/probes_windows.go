//go:build windows

package caret

import (
	"runtime"
	"time"

	ole "github.com/go-ole/go-ole"
	"github.com/rs/zerolog"
	"golang.org/x/sys/windows"
)

func ownPID() uint32 {
	return windows.GetCurrentProcessId()
}

// uiaCaretProbe asks the focused element's advanced text pattern for the
// active caret range. The most precise accessibility method, but only
// frameworks implementing TextPattern2 answer it.
type uiaCaretProbe struct {
	au *automation
}

func (p *uiaCaretProbe) Name() string { return "uia-caret-range" }

func (p *uiaCaretProbe) Locate() (Position, bool) {
	if p.au == nil {
		return Position{}, false
	}
	el, ok := p.au.focusedElement()
	if !ok {
		return Position{}, false
	}
	defer el.release()

	pat, ok := el.textPattern2()
	if !ok {
		return Position{}, false
	}
	defer pat.release()

	active, rng, ok := pat.caretRange()
	if !ok {
		return Position{}, false
	}
	defer rng.release()
	if !active {
		return Position{}, false
	}

	rects, ok := rng.boundingRectangles()
	if !ok {
		return Position{}, false
	}
	r := rects[0]
	return Position{X: int(r.left), Y: int(r.top), CaretHeight: int(r.height)}, true
}

// uiaSelectionProbe falls back to the basic text-selection pattern. Many
// modern frameworks implement only selection, not an explicit caret-range
// API; the end of the selection stands in for the caret.
type uiaSelectionProbe struct {
	au *automation
}

func (p *uiaSelectionProbe) Name() string { return "uia-selection" }

func (p *uiaSelectionProbe) Locate() (Position, bool) {
	if p.au == nil {
		return Position{}, false
	}
	el, ok := p.au.focusedElement()
	if !ok {
		return Position{}, false
	}
	defer el.release()

	pat, ok := el.textPattern()
	if !ok {
		return Position{}, false
	}
	defer pat.release()

	sel, ok := pat.selection()
	if !ok {
		return Position{}, false
	}
	defer sel.release()

	n := sel.length()
	if n == 0 {
		return Position{}, false
	}
	rng, ok := sel.element(n - 1)
	if !ok {
		return Position{}, false
	}
	defer rng.release()

	rects, ok := rng.boundingRectangles()
	if !ok {
		return Position{}, false
	}
	r := rects[len(rects)-1]
	return Position{X: int(r.left + r.width), Y: int(r.top), CaretHeight: int(r.height)}, true
}

// uiaFocusBoxProbe is the last resort: when no text pattern exists at all,
// an editable-looking focused control's bounding box corner serves as an
// approximate anchor.
type uiaFocusBoxProbe struct {
	au *automation
}

func (p *uiaFocusBoxProbe) Name() string { return "uia-focus-box" }

// editableControlTypes whitelists accessibility roles that host a caret.
var editableControlTypes = map[int32]bool{
	controlEdit:     true,
	controlDocument: true,
	controlComboBox: true,
}

func (p *uiaFocusBoxProbe) Locate() (Position, bool) {
	if p.au == nil {
		return Position{}, false
	}
	el, ok := p.au.focusedElement()
	if !ok {
		return Position{}, false
	}
	defer el.release()

	editable := false
	if ct, ok := el.intProp(propControlType); ok && editableControlTypes[ct] {
		editable = true
	}
	if !editable {
		editable = el.boolProp(propIsTextPatternAvailable) || el.boolProp(propIsValuePatternAvailable)
	}
	if !editable {
		return Position{}, false
	}

	r, ok := el.boundingRect()
	if !ok || (r.width == 0 && r.height == 0) {
		return Position{}, false
	}
	// Top-left corner; caret height unknown at this precision.
	return Position{X: int(r.left), Y: int(r.top)}, true
}

// NewSystemLocator builds the production locator: the full probe chain
// running on a dedicated COM-initialized OS thread.
//
// Chain order is deliberate and must not change: the legacy GUI-thread
// caret query is cheapest and exact where it works (native controls); the
// UIA caret range covers frameworks with a real caret API; the UIA
// selection covers frameworks with only selection; the focus bounding box
// is the approximate last resort.
func NewSystemLocator(timeout time.Duration, log zerolog.Logger) *Locator {
	caretP := &uiaCaretProbe{}
	selP := &uiaSelectionProbe{}
	boxP := &uiaFocusBoxProbe{}
	chain := NewChain(log, guiThreadProbe{}, caretP, selP, boxP)

	setup := func() func() {
		runtime.LockOSThread()
		if err := ole.CoInitialize(0); err != nil {
			log.Debug().Err(err).Msg("CoInitialize")
		}
		au, err := newAutomation()
		if err != nil {
			// UIA unavailable: the legacy probe still runs, the three
			// accessibility probes report not-found.
			log.Warn().Err(err).Msg("UI Automation unavailable, caret detection degraded")
		} else {
			caretP.au = au
			selP.au = au
			boxP.au = au
		}
		return func() {
			if au != nil {
				au.release()
			}
			ole.CoUninitialize()
			runtime.UnlockOSThread()
		}
	}

	return NewLocator(chain, timeout, log, setup)
}
