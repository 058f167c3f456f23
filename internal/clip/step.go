package clip

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// StepKind discriminates the two step variants. The step space is closed:
// a macro is text steps and key-action steps, nothing else.
type StepKind int

const (
	KindText StepKind = iota
	KindAction
)

// Step is one element of a macro: either literal text to inject, or a key
// combination to synthesize. Kind selects which fields are meaningful.
type Step struct {
	Kind  StepKind
	Value string   // KindText: literal text, newlines included
	Keys  []string // KindAction: modifiers in ctrl/alt/shift/win order, then the key
	Label string   // KindAction: display label, e.g. "Ctrl + A"
}

// TextStep builds a literal-text step.
func TextStep(value string) Step {
	return Step{Kind: KindText, Value: value}
}

// ActionStep builds a key-action step from an already-labeled combination.
func ActionStep(keys []string, label string) Step {
	return Step{Kind: KindAction, Keys: keys, Label: label}
}

// NewAction builds an action step, deriving the label from the keys.
func NewAction(keys []string) (Step, error) {
	label, err := LabelFor(keys)
	if err != nil {
		return Step{}, err
	}
	return ActionStep(keys, label), nil
}

// Equal reports whether two steps have the same kind and content.
func (s Step) Equal(o Step) bool {
	if s.Kind != o.Kind {
		return false
	}
	if s.Kind == KindText {
		return s.Value == o.Value
	}
	if s.Label != o.Label || len(s.Keys) != len(o.Keys) {
		return false
	}
	for i := range s.Keys {
		if s.Keys[i] != o.Keys[i] {
			return false
		}
	}
	return true
}

// stepRecord is the persisted shape of a step. "type" discriminates the
// variant; unknown types deserialize as an empty text step so that records
// written by a newer version degrade instead of failing to load.
type stepRecord struct {
	Type  string   `json:"type"`
	Value string   `json:"value,omitempty"`
	Keys  []string `json:"keys,omitempty"`
	Label string   `json:"label,omitempty"`
}

func (s Step) MarshalJSON() ([]byte, error) {
	rec := stepRecord{}
	switch s.Kind {
	case KindAction:
		rec.Type = "action"
		rec.Keys = s.Keys
		rec.Label = s.Label
	default:
		rec.Type = "text"
		rec.Value = s.Value
	}
	return json.Marshal(rec)
}

func (s *Step) UnmarshalJSON(data []byte) error {
	var rec stepRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	switch rec.Type {
	case "action":
		*s = ActionStep(rec.Keys, rec.Label)
	case "text":
		*s = TextStep(rec.Value)
	default:
		*s = TextStep("")
	}
	return nil
}

// MergeAdjacentText collapses runs of consecutive text steps into one.
// Action steps are never merged. Idempotent.
func MergeAdjacentText(steps []Step) []Step {
	merged := make([]Step, 0, len(steps))
	for _, s := range steps {
		if s.Kind == KindText && len(merged) > 0 && merged[len(merged)-1].Kind == KindText {
			merged[len(merged)-1].Value += s.Value
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// EnsureNonEmpty guarantees a macro always has at least one step. An empty
// sequence collapses to a single empty text step.
func EnsureNonEmpty(steps []Step) []Step {
	if len(steps) == 0 {
		return []Step{TextStep("")}
	}
	return steps
}

// Normalize applies the step-sequence invariants after an edit: no two
// adjacent text steps, never empty.
func Normalize(steps []Step) []Step {
	return EnsureNonEmpty(MergeAdjacentText(steps))
}

// PlainText renders a step sequence for search and preview: text steps
// verbatim, action steps as their bracketed label.
func PlainText(steps []Step) string {
	var b strings.Builder
	for _, s := range steps {
		switch s.Kind {
		case KindAction:
			b.WriteString("[" + s.Label + "]")
		default:
			b.WriteString(s.Value)
		}
	}
	return b.String()
}

// modifiers that may precede the terminal key, in their fixed order.
var modifierOrder = []string{"ctrl", "alt", "shift", "win"}

var modifierSet = map[string]bool{
	"ctrl": true, "alt": true, "shift": true, "win": true,
}

// symbolicKeys are the non-printable keys a captured action may end with.
var symbolicKeys = map[string]bool{
	"enter": true, "tab": true, "backspace": true, "delete": true,
	"escape": true, "space": true,
	"up": true, "down": true, "left": true, "right": true,
	"home": true, "end": true, "pageup": true, "pagedown": true,
	"f1": true, "f2": true, "f3": true, "f4": true, "f5": true, "f6": true,
	"f7": true, "f8": true, "f9": true, "f10": true, "f11": true, "f12": true,
	"insert": true, "capslock": true, "printscreen": true,
}

// LabelFor formats a key combination for display. Modifiers are capitalized
// and joined with " + "; the terminal key must be a symbolic key name or a
// single printable character, anything else is rejected so the capturing
// code can discard the event and keep listening.
func LabelFor(keys []string) (string, error) {
	if len(keys) == 0 {
		return "", fmt.Errorf("label: empty key combination")
	}

	parts := make([]string, 0, len(keys))
	for _, mod := range keys[:len(keys)-1] {
		if !modifierSet[mod] {
			return "", fmt.Errorf("label: %q is not a modifier", mod)
		}
		parts = append(parts, capitalize(mod))
	}

	key := keys[len(keys)-1]
	switch {
	case symbolicKeys[key]:
		parts = append(parts, capitalize(key))
	case isPrintableChar(key):
		parts = append(parts, strings.ToUpper(key))
	default:
		return "", fmt.Errorf("label: unrecognized key %q", key)
	}

	return strings.Join(parts, " + "), nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

func isPrintableChar(s string) bool {
	r, size := utf8.DecodeRuneInString(s)
	return size == len(s) && r != utf8.RuneError && unicode.IsPrint(r) && !unicode.IsSpace(r)
}
