package listener

import (
	"fmt"
	"strings"
	"sync"

	hook "github.com/robotn/gohook"
)

// HookSource adapts gohook's process-wide event stream to Source. gohook
// supports a single pipeline per process, which is why the Monitor is the
// sole owner of this object.
type HookSource struct {
	closeOnce sync.Once
}

func NewHookSource() *HookSource {
	return &HookSource{}
}

func (s *HookSource) Open() (<-chan Event, error) {
	raw := hook.Start()
	if raw == nil {
		return nil, fmt.Errorf("listener: hook pipeline failed to start")
	}

	out := make(chan Event, 64)
	go func() {
		defer close(out)
		for ev := range raw {
			var reduced Event
			switch ev.Kind {
			case hook.KeyDown, hook.KeyHold:
				reduced = Event{Kind: KeyDown, Keycode: ev.Keycode}
			case hook.KeyUp:
				reduced = Event{Kind: KeyUp, Keycode: ev.Keycode}
			case hook.MouseDown:
				if ev.Button != hook.MouseMap["left"] {
					continue
				}
				reduced = Event{Kind: LeftClick}
			default:
				continue
			}
			// Never let a slow consumer back up the OS hook callback.
			select {
			case out <- reduced:
			default:
			}
		}
	}()
	return out, nil
}

func (s *HookSource) Close() {
	s.closeOnce.Do(hook.End)
}

// ParseHotkey translates a persisted hotkey string such as "ctrl+shift+v"
// into source keycodes.
func ParseHotkey(accel string) ([]uint16, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(accel)), "+")
	keys := make([]uint16, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "win" {
			p = "cmd"
		}
		kc, ok := hook.Keycode[p]
		if !ok {
			return nil, fmt.Errorf("listener: unknown key %q in hotkey %q", p, accel)
		}
		keys = append(keys, kc)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("listener: empty hotkey")
	}
	return keys, nil
}
