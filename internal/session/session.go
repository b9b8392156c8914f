package session

import (
	"log/slog"
	"path/filepath"
	"sort"
)

// Session holds the ordered image set, the label map and the cursor.
//
// A Session is not safe for concurrent use. It is driven by one caller
// issuing one operation at a time; callers that share a Session across
// goroutines must serialize access themselves.
type Session struct {
	paths   []string
	labels  map[string]Label
	cursor  int
	onLabel func(index int, label Label)
}

// Option configures a Session.
type Option func(*Session)

// WithLabelListener registers fn to be called after every successful SetLabel.
func WithLabelListener(fn func(index int, label Label)) Option {
	return func(s *Session) {
		s.onLabel = fn
	}
}

// New returns an empty, inactive session.
func New(opts ...Option) *Session {
	s := &Session{labels: make(map[string]Label)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Entry is one image of the set as seen at a given moment.
type Entry struct {
	Index int    `json:"index" yaml:"index"`
	Path  string `json:"path" yaml:"path"`
	Name  string `json:"name" yaml:"name"`
	Label Label  `json:"label" yaml:"label"`
}

// Counts summarizes the label map over the current image set.
type Counts struct {
	Total     int `json:"total" yaml:"total"`
	Yes       int `json:"yes" yaml:"yes"`
	No        int `json:"no" yaml:"no"`
	Unlabeled int `json:"unlabeled" yaml:"unlabeled"`
}

// Load replaces the whole session state. Order of paths is preserved.
func (s *Session) Load(paths []string) {
	s.paths = append([]string(nil), paths...)
	s.cursor = 0
	s.labels = make(map[string]Label, len(paths))
	for _, p := range s.paths {
		s.labels[filepath.Base(p)] = Unlabeled
	}

	// Images sharing a basename share one label entry.
	if dups := s.DuplicateNames(); len(dups) > 0 {
		slog.Warn("Image set contains duplicate file names; their labels are shared", "names", dups)
	}
	slog.Debug("Session loaded", "images", len(s.paths))
}

// Len returns the number of images in the set.
func (s *Session) Len() int {
	return len(s.paths)
}

// Cursor returns the current index. It is meaningless when Len() == 0.
func (s *Session) Cursor() int {
	return s.cursor
}

// Paths returns a copy of the image set in display order.
func (s *Session) Paths() []string {
	return append([]string(nil), s.paths...)
}

// CurrentImage returns the path under the cursor, or false if the set is empty.
func (s *Session) CurrentImage() (string, bool) {
	if len(s.paths) == 0 {
		return "", false
	}
	return s.paths[s.cursor], true
}

// CurrentLabel returns the label of the current image, Unlabeled if the set is empty.
func (s *Session) CurrentLabel() Label {
	path, ok := s.CurrentImage()
	if !ok {
		return Unlabeled
	}
	return s.labels[filepath.Base(path)]
}

// SetLabel labels the current image with Yes or No and notifies the listener.
// It reports false without changing anything if the set is empty or label is
// not Yes or No. It never moves the cursor.
func (s *Session) SetLabel(label Label) bool {
	if label != Yes && label != No {
		return false
	}
	path, ok := s.CurrentImage()
	if !ok {
		return false
	}
	s.labels[filepath.Base(path)] = label
	if s.onLabel != nil {
		s.onLabel(s.cursor, label)
	}
	return true
}

// Advance moves to the next image. It reports false at the last image.
func (s *Session) Advance() bool {
	if len(s.paths) == 0 || s.cursor >= len(s.paths)-1 {
		return false
	}
	s.cursor++
	return true
}

// Retreat moves to the previous image. It reports false at the first image.
func (s *Session) Retreat() bool {
	if len(s.paths) == 0 || s.cursor <= 0 {
		return false
	}
	s.cursor--
	return true
}

// Seek moves the cursor to index if it is within the set.
func (s *Session) Seek(index int) bool {
	if index < 0 || index >= len(s.paths) {
		return false
	}
	s.cursor = index
	return true
}

// LabelOf returns the label stored for an image name and whether the name is known.
func (s *Session) LabelOf(name string) (Label, bool) {
	label, ok := s.labels[name]
	return label, ok
}

// Labels returns a copy of the label map.
func (s *Session) Labels() map[string]Label {
	out := make(map[string]Label, len(s.labels))
	for name, label := range s.labels {
		out[name] = label
	}
	return out
}

// Entries returns every image with its position and label, in set order.
func (s *Session) Entries() []Entry {
	entries := make([]Entry, len(s.paths))
	for i, p := range s.paths {
		name := filepath.Base(p)
		entries[i] = Entry{Index: i, Path: p, Name: name, Label: s.labels[name]}
	}
	return entries
}

// Counts tallies labels per image in the set, so duplicated names count once per image.
func (s *Session) Counts() Counts {
	c := Counts{Total: len(s.paths)}
	for _, p := range s.paths {
		switch s.labels[filepath.Base(p)] {
		case Yes:
			c.Yes++
		case No:
			c.No++
		default:
			c.Unlabeled++
		}
	}
	return c
}

// DuplicateNames returns the basenames that appear more than once in the set.
func (s *Session) DuplicateNames() []string {
	seen := make(map[string]int, len(s.paths))
	for _, p := range s.paths {
		seen[filepath.Base(p)]++
	}
	var dups []string
	for name, n := range seen {
		if n > 1 {
			dups = append(dups, name)
		}
	}
	sort.Strings(dups)
	return dups
}
