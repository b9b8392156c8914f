package events

import "time"

// Event types pushed to presentation clients.
const (
	TypeConnected          = "connected"
	TypeSessionLoaded      = "session_loaded"
	TypeLabelChanged       = "label_changed"
	TypeCursorMoved        = "cursor_moved"
	TypeExtractionProgress = "extraction_progress"
	TypeExtractionComplete = "extraction_complete"
	TypeExtractionFailed   = "extraction_failed"
	TypeExtractionCanceled = "extraction_canceled"
)

// Event is one notification from the core to presentation clients.
// Fields not relevant to a type are omitted from the JSON form.
type Event struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
	JobID     string    `json:"job_id,omitempty"`
	Index     *int      `json:"index,omitempty"`
	Label     string    `json:"label,omitempty"`
	Current   int       `json:"current,omitempty"`
	Total     int       `json:"total,omitempty"`
	Paths     []string  `json:"paths,omitempty"`
	Message   string    `json:"message,omitempty"`
	Time      time.Time `json:"time"`
}

// Publisher accepts events for delivery.
type Publisher interface {
	Publish(Event)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(Event) {}
