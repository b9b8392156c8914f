package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/frameclassifier/internal/events"
	"github.com/lehigh-university-libraries/frameclassifier/internal/extract"
	"github.com/lehigh-university-libraries/frameclassifier/internal/metrics"
	"github.com/lehigh-university-libraries/frameclassifier/internal/session"
	"github.com/lehigh-university-libraries/frameclassifier/internal/storage"
)

type Handler struct {
	sessionStore *storage.SessionStore
	runner       *extract.Runner
	events       events.Publisher

	// job ID -> ID of the session loaded from its frames
	mu          sync.Mutex
	jobSessions map[string]string
}

func New(store *storage.SessionStore, runner *extract.Runner, pub events.Publisher) *Handler {
	if pub == nil {
		pub = events.Discard{}
	}
	return &Handler{
		sessionStore: store,
		runner:       runner,
		events:       pub,
		jobSessions:  make(map[string]string),
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message)
	} else {
		slog.Warn(message, "code", code)
	}
	http.Error(w, message, code)
}

func (h *Handler) readJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, sessionID string) (*storage.Workspace, bool) {
	ws, exists := h.sessionStore.Get(sessionID)
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return ws, true
}

// newSession stores a session loaded with paths. Label changes on it are
// counted and published as events.
func (h *Handler) newSession(source string, paths []string) *storage.Workspace {
	id := uuid.NewString()
	s := session.New(session.WithLabelListener(func(index int, label session.Label) {
		metrics.LabelsAppliedTotal.WithLabelValues(label.String()).Inc()
		h.events.Publish(events.Event{
			Type:      events.TypeLabelChanged,
			SessionID: id,
			Index:     &index,
			Label:     label.String(),
		})
	}))
	s.Load(paths)

	ws := storage.NewWorkspace(id, source, s)
	h.sessionStore.Set(ws)
	metrics.ActiveSessions.Set(float64(h.sessionStore.Len()))

	slog.Info("Session loaded", "session_id", id, "source", source, "images", len(paths))
	h.events.Publish(events.Event{
		Type:      events.TypeSessionLoaded,
		SessionID: id,
		Total:     len(paths),
		Time:      time.Now(),
	})
	return ws
}

func (h *Handler) publishCursor(ws *storage.Workspace, index int) {
	h.events.Publish(events.Event{
		Type:      events.TypeCursorMoved,
		SessionID: ws.ID,
		Index:     &index,
	})
}

// csvErrorStatus maps label file failures to HTTP status codes.
func csvErrorStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrFileNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrMalformedHeader), errors.Is(err, session.ErrUnknownImages):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (h *Handler) HandleHealthcheck(w http.ResponseWriter, r *http.Request) {
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Unable to write healthcheck", "err", err)
	}
}
