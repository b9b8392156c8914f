package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/frameclassifier/internal/models"
	"github.com/lehigh-university-libraries/frameclassifier/internal/session"
)

// Workspace is a stored classification session plus where it came from.
// The session itself is not safe for concurrent use; hold the workspace
// lock (Do) around every call into it.
type Workspace struct {
	ID        string
	Source    string
	CreatedAt time.Time

	mu      sync.Mutex
	session *session.Session
}

// Do runs fn with exclusive access to the workspace's session.
func (w *Workspace) Do(fn func(s *session.Session)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(w.session)
}

// View renders the session state. withImages includes every entry.
func (w *Workspace) View(withImages bool) models.SessionView {
	var view models.SessionView
	w.Do(func(s *session.Session) {
		view = models.SessionView{
			ID:             w.ID,
			Source:         w.Source,
			CreatedAt:      w.CreatedAt,
			Cursor:         s.Cursor(),
			Total:          s.Len(),
			CurrentLabel:   s.CurrentLabel(),
			HasPrev:        s.Len() > 0 && s.Cursor() > 0,
			HasNext:        s.Len() > 0 && s.Cursor() < s.Len()-1,
			Counts:         s.Counts(),
			DuplicateNames: s.DuplicateNames(),
		}
		if path, ok := s.CurrentImage(); ok {
			view.CurrentImage = path
			entries := s.Entries()
			view.CurrentName = entries[s.Cursor()].Name
			if withImages {
				view.Images = entries
			}
		}
	})
	return view
}

// Summary renders the short listing form.
func (w *Workspace) Summary() models.SessionSummary {
	var counts session.Counts
	w.Do(func(s *session.Session) { counts = s.Counts() })
	return models.SessionSummary{ID: w.ID, Source: w.Source, CreatedAt: w.CreatedAt, Counts: counts}
}

// SessionStore keeps workspaces by ID.
type SessionStore struct {
	sessions map[string]*Workspace
	mu       sync.RWMutex
}

func New() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Workspace),
	}
}

// NewWorkspace wraps s. An empty id gets a generated one.
func NewWorkspace(id, source string, s *session.Session) *Workspace {
	if id == "" {
		id = uuid.NewString()
	}
	return &Workspace{
		ID:        id,
		Source:    source,
		CreatedAt: time.Now(),
		session:   s,
	}
}

func (st *SessionStore) Get(id string) (*Workspace, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	w, exists := st.sessions[id]
	return w, exists
}

func (st *SessionStore) Set(w *Workspace) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[w.ID] = w
}

// GetAll returns every workspace, oldest first.
func (st *SessionStore) GetAll() []*Workspace {
	st.mu.RLock()
	defer st.mu.RUnlock()

	result := make([]*Workspace, 0, len(st.sessions))
	for _, w := range st.sessions {
		result = append(result, w)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

func (st *SessionStore) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, exists := st.sessions[id]
	delete(st.sessions, id)
	return exists
}

func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
