package handlers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes registers the API on mux. ws serves the event stream.
func (h *Handler) Routes(mux *http.ServeMux, ws http.Handler) {
	mux.HandleFunc("GET /api/sessions", h.HandleListSessions)
	mux.HandleFunc("POST /api/sessions", h.HandleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", h.HandleGetSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.HandleDeleteSession)
	mux.HandleFunc("POST /api/sessions/{id}/label", h.HandleLabel)
	mux.HandleFunc("POST /api/sessions/{id}/next", h.HandleNext)
	mux.HandleFunc("POST /api/sessions/{id}/prev", h.HandlePrev)
	mux.HandleFunc("POST /api/sessions/{id}/seek", h.HandleSeek)
	mux.HandleFunc("POST /api/sessions/{id}/export", h.HandleExport)
	mux.HandleFunc("POST /api/sessions/{id}/import", h.HandleImport)
	mux.HandleFunc("GET /api/sessions/{id}/image", h.HandleImage)

	mux.HandleFunc("GET /api/extractions", h.HandleListExtractions)
	mux.HandleFunc("POST /api/extractions", h.HandleStartExtraction)
	mux.HandleFunc("GET /api/extractions/{id}", h.HandleGetExtraction)
	mux.HandleFunc("DELETE /api/extractions/{id}", h.HandleCancelExtraction)

	if ws != nil {
		mux.Handle("GET /ws", ws)
	}
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthcheck", h.HandleHealthcheck)
}
