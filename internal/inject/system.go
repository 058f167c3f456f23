package inject

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/go-vgo/robotgo"
)

// SystemClipboard reads and writes the OS clipboard.
type SystemClipboard struct{}

func (SystemClipboard) Read() (string, error) {
	return clipboard.ReadAll()
}

func (SystemClipboard) Write(text string) error {
	return clipboard.WriteAll(text)
}

// SystemKeys synthesizes keystrokes with robotgo.
type SystemKeys struct{}

// keyNames maps our key tokens onto robotgo's where they differ.
var keyNames = map[string]string{
	"escape":      "esc",
	"win":         "cmd",
	"printscreen": "printscreen",
}

func keyName(token string) string {
	if name, ok := keyNames[token]; ok {
		return name
	}
	return token
}

func (SystemKeys) Paste() error {
	if err := robotgo.KeyTap("v", "ctrl"); err != nil {
		return fmt.Errorf("inject: paste chord: %w", err)
	}
	return nil
}

func (SystemKeys) Tap(key string, mods ...string) error {
	args := make([]interface{}, len(mods))
	for i, m := range mods {
		args[i] = keyName(m)
	}
	if err := robotgo.KeyTap(keyName(key), args...); err != nil {
		return fmt.Errorf("inject: key tap %s: %w", key, err)
	}
	return nil
}

func (SystemKeys) TypeRune(r rune) error {
	robotgo.TypeStr(string(r))
	return nil
}
