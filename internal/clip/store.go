package clip

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Colors is the fixed accent palette cycled through for new clips.
var Colors = []string{
	"#6C8EFF", // blue
	"#FF6C8E", // pink
	"#8EFF6C", // green
	"#FFD26C", // gold
	"#6CFFD2", // teal
	"#D26CFF", // purple
	"#FF8E6C", // orange
	"#6CD2FF", // sky blue
}

// Store manages the collection of saved clips with JSON persistence.
type Store struct {
	path string
	log  zerolog.Logger

	mu         sync.Mutex
	clips      []Clip
	colorIndex int
}

type storeFile struct {
	Clips []Clip `json:"clips"`
}

// NewStore opens (or initializes) the clip store at path. A missing or
// corrupt file yields an empty store, not an error.
func NewStore(path string, log zerolog.Logger) *Store {
	s := &Store{path: path, log: log}
	s.load()
	return s
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.clips = nil
		return
	}
	var f storeFile
	if err := json.Unmarshal(data, &f); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("Clip store unreadable, starting empty")
		s.clips = nil
		return
	}
	for i := range f.Clips {
		if f.Clips[i].IsMacro {
			f.Clips[i].SetSteps(f.Clips[i].Steps)
		}
	}
	s.clips = f.Clips
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(storeFile{Clips: s.clips}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}

// Add creates a plain text clip, newest first.
func (s *Store) Add(title, text string) Clip {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := Clip{
		ID:    newID(),
		Title: title,
		Text:  text,
		Color: s.nextColor(),
	}
	s.clips = append([]Clip{c}, s.clips...)
	s.persist()
	return c
}

// AddMacro creates a macro clip from a step sequence, newest first.
func (s *Store) AddMacro(title string, steps []Step) Clip {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := Clip{
		ID:    newID(),
		Title: title,
		Color: s.nextColor(),
	}
	c.SetSteps(steps)
	s.clips = append([]Clip{c}, s.clips...)
	s.persist()
	return c
}

// Update replaces a plain clip's title and text.
func (s *Store) Update(id, title, text string) (Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.clips {
		if s.clips[i].ID == id {
			s.clips[i].Title = title
			s.clips[i].Text = text
			s.clips[i].IsMacro = false
			s.clips[i].Steps = nil
			s.persist()
			return s.clips[i], nil
		}
	}
	return Clip{}, fmt.Errorf("clip %q not found", id)
}

// UpdateSteps replaces a macro clip's steps, refreshing its text cache.
func (s *Store) UpdateSteps(id, title string, steps []Step) (Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.clips {
		if s.clips[i].ID == id {
			s.clips[i].Title = title
			s.clips[i].SetSteps(steps)
			s.persist()
			return s.clips[i], nil
		}
	}
	return Clip{}, fmt.Errorf("clip %q not found", id)
}

// Delete removes a clip by ID.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.clips {
		if s.clips[i].ID == id {
			s.clips = append(s.clips[:i], s.clips[i+1:]...)
			s.persist()
			return true
		}
	}
	return false
}

// Get returns a clip by ID.
func (s *Store) Get(id string) (Clip, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.clips {
		if c.ID == id {
			return c, true
		}
	}
	return Clip{}, false
}

// All returns a snapshot of every clip, newest first.
func (s *Store) All() []Clip {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Clip, len(s.clips))
	copy(out, s.clips)
	return out
}

// Search returns clips whose title or text contains query, case-insensitive.
// An empty query returns everything.
func (s *Store) Search(query string) []Clip {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return s.All()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Clip
	for _, c := range s.clips {
		if strings.Contains(strings.ToLower(c.Title), query) ||
			strings.Contains(strings.ToLower(c.Text), query) {
			out = append(out, c)
		}
	}
	return out
}

func (s *Store) nextColor() string {
	c := Colors[s.colorIndex%len(Colors)]
	s.colorIndex++
	return c
}

func (s *Store) persist() {
	if err := s.save(); err != nil {
		s.log.Error().Err(err).Str("path", s.path).Msg("Failed to save clips")
	}
}
