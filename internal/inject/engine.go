package inject

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/alipkcode/ClipTray/internal/clip"
)

// Engine is the clipboard-mediated injector. Pasting is preferred over
// per-character synthesis because it is atomic and encoding-agnostic;
// direct key synthesis is unreliable for non-ASCII text.
//
// Clipboard restoration is a best-effort courtesy, not a transaction:
// the clipboard belongs to the whole OS, and another application writing
// to it during the restore window wins. That race is accepted.
type Engine struct {
	clipboard Clipboard
	keys      Keys
	delays    Delays
	log       zerolog.Logger
}

func NewEngine(clipboard Clipboard, keys Keys, delays Delays, log zerolog.Logger) *Engine {
	return &Engine{clipboard: clipboard, keys: keys, delays: delays, log: log}
}

// TypeText injects literal text via save-clipboard / copy / paste-chord /
// restore-later. When the clipboard cannot be written it degrades to
// per-character key synthesis.
func (e *Engine) TypeText(text string) error {
	if text == "" {
		return nil
	}

	saved, savedOK := e.saveClipboard()

	if err := e.clipboard.Write(text); err != nil {
		e.log.Warn().Err(err).Msg("Clipboard unavailable, typing directly")
		e.typeDirect(text)
		return nil
	}

	time.Sleep(e.delays.CopySettle)
	if err := e.keys.Paste(); err != nil {
		e.log.Warn().Err(err).Msg("Paste chord failed")
	}
	time.Sleep(e.delays.PasteSettle)

	if savedOK {
		e.scheduleRestore(saved)
	}
	return nil
}

// ExecuteSteps runs a macro. The clipboard is saved exactly once up front
// and restored exactly once after the last step; a text step that cannot
// reach the clipboard is skipped and the macro continues.
func (e *Engine) ExecuteSteps(steps []clip.Step) error {
	if len(steps) == 0 {
		return nil
	}

	saved, savedOK := e.saveClipboard()
	clipboardTouched := false

	for i, s := range steps {
		if i > 0 {
			// Give the target application time to process the previous
			// injected event before the next one arrives.
			time.Sleep(e.delays.InterStep)
		}

		switch s.Kind {
		case clip.KindAction:
			e.tapAction(s)
		default:
			if s.Value == "" {
				continue
			}
			if e.pasteText(s.Value) {
				clipboardTouched = true
			}
		}
	}

	if savedOK && clipboardTouched {
		e.scheduleRestore(saved)
	}
	return nil
}

func (e *Engine) pasteText(text string) bool {
	if err := e.clipboard.Write(text); err != nil {
		// Accepted trade-off: the step's text is silently dropped rather
		// than aborting the macro or surfacing an error dialog.
		e.log.Warn().Err(err).Msg("Clipboard write failed, text step skipped")
		return false
	}
	time.Sleep(e.delays.CopySettle)
	if err := e.keys.Paste(); err != nil {
		e.log.Warn().Err(err).Msg("Paste chord failed")
	}
	time.Sleep(e.delays.PasteSettle)
	return true
}

func (e *Engine) tapAction(s clip.Step) {
	if len(s.Keys) == 0 {
		return
	}
	key := s.Keys[len(s.Keys)-1]
	mods := s.Keys[:len(s.Keys)-1]
	if err := e.keys.Tap(key, mods...); err != nil {
		e.log.Warn().Err(err).Str("action", s.Label).Msg("Key action failed")
	}
}

func (e *Engine) typeDirect(text string) {
	for _, r := range text {
		var err error
		switch r {
		case '\n':
			err = e.keys.Tap("enter")
		case '\t':
			err = e.keys.Tap("tab")
		default:
			err = e.keys.TypeRune(r)
		}
		if err != nil {
			e.log.Debug().Err(err).Msg("Direct key synthesis failed")
		}
	}
}

func (e *Engine) saveClipboard() (string, bool) {
	saved, err := e.clipboard.Read()
	if err != nil {
		e.log.Debug().Err(err).Msg("Could not save clipboard contents")
		return "", false
	}
	return saved, true
}

// scheduleRestore puts the saved contents back after the restore delay,
// long enough for the target application to have completed its paste.
// Failures are swallowed: restoration is a courtesy.
func (e *Engine) scheduleRestore(saved string) {
	time.AfterFunc(e.delays.ClipboardRestore, func() {
		if err := e.clipboard.Write(saved); err != nil {
			e.log.Debug().Err(err).Msg("Clipboard restore failed")
		}
	})
}
