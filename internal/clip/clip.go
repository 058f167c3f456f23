// Package clip holds the clip data model: plain text clips, steps-based
// macros, and their JSON persistence.
package clip

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	"strconv"
	"strings"
	"time"
)

// Clip is a single saved piece of reusable content. For macros the
// authoritative content is Steps; Text is a denormalized cache kept for
// search and preview.
type Clip struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Text    string `json:"text"`
	Color   string `json:"color"`
	IsMacro bool   `json:"is_macro,omitempty"`
	Steps   []Step `json:"steps,omitempty"`
}

// SetSteps replaces a macro's steps, normalizing the sequence and refreshing
// the Text cache. The caller hands over ownership of steps.
func (c *Clip) SetSteps(steps []Step) {
	c.IsMacro = true
	c.Steps = Normalize(steps)
	c.Text = textCache(c.Steps)
}

// textCache derives the preview text for a macro: the joined text steps, or
// the full rendered sequence when the macro types nothing literal.
func textCache(steps []Step) string {
	var b strings.Builder
	for _, s := range steps {
		if s.Kind == KindText {
			b.WriteString(s.Value)
		}
	}
	if b.Len() > 0 {
		return b.String()
	}
	if rendered := PlainText(steps); rendered != "" {
		return rendered
	}
	return "(empty macro)"
}

// newID returns a short opaque clip identifier.
func newID() string {
	var b [4]byte
	if _, err := io.ReadFull(rand.Reader, b[:]); err != nil {
		// Entropy failure must not mint colliding IDs.
		return strconv.FormatInt(time.Now().UnixNano(), 16)
	}
	return hex.EncodeToString(b[:])
}
