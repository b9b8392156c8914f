package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/frameclassifier/internal/images"
	"github.com/lehigh-university-libraries/frameclassifier/internal/metrics"
	"github.com/lehigh-university-libraries/frameclassifier/internal/models"
	"github.com/lehigh-university-libraries/frameclassifier/internal/session"
	"github.com/lehigh-university-libraries/frameclassifier/internal/storage"
)

type createSessionRequest struct {
	ImagesDir  string   `json:"images_dir"`
	ImagePaths []string `json:"image_paths"`
	WorkDir    string   `json:"work_dir"`
}

type labelRequest struct {
	Label   string `json:"label"`
	Advance *bool  `json:"advance"`
}

type seekRequest struct {
	Index *int `json:"index"`
}

type pathRequest struct {
	Path string `json:"path"`
}

type exportResponse struct {
	Path string `json:"path"`
	Rows int    `json:"rows"`
}

func (h *Handler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	all := h.sessionStore.GetAll()
	list := make([]models.SessionSummary, 0, len(all))
	for _, ws := range all {
		list = append(list, ws.Summary())
	}
	h.writeJSON(w, list)
}

func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if !h.readJSON(w, r, &req) {
		return
	}

	var (
		paths  []string
		source string
		err    error
	)
	switch {
	case len(req.ImagePaths) > 0:
		paths, source = req.ImagePaths, ""
		if req.WorkDir != "" {
			paths, err = images.CopyToWorkDir(req.ImagePaths, req.WorkDir)
			if err != nil {
				h.writeError(w, "Failed to copy images: "+err.Error(), http.StatusInternalServerError)
				return
			}
			source = req.WorkDir
		}
	case req.ImagesDir != "":
		paths, err = images.List(req.ImagesDir)
		if err != nil {
			h.writeError(w, "Failed to list images: "+err.Error(), http.StatusBadRequest)
			return
		}
		source = req.ImagesDir
	default:
		h.writeError(w, "images_dir or image_paths is required", http.StatusBadRequest)
		return
	}

	ws := h.newSession(source, paths)
	h.writeJSONStatus(w, http.StatusCreated, ws.View(true))
}

func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.getSessionOrError(w, r.PathValue("id"))
	if !ok {
		return
	}
	h.writeJSON(w, ws.View(true))
}

func (h *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !h.sessionStore.Delete(r.PathValue("id")) {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return
	}
	metrics.ActiveSessions.Set(float64(h.sessionStore.Len()))
	w.WriteHeader(http.StatusNoContent)
}

// HandleLabel classifies the current image and, unless advance is false,
// moves to the next one.
func (h *Handler) HandleLabel(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.getSessionOrError(w, r.PathValue("id"))
	if !ok {
		return
	}
	var req labelRequest
	if !h.readJSON(w, r, &req) {
		return
	}
	label, valid := session.ParseLabel(req.Label)
	if !valid || label == session.Unlabeled {
		h.writeError(w, fmt.Sprintf("Invalid label %q, expected Yes or No", req.Label), http.StatusBadRequest)
		return
	}
	advance := req.Advance == nil || *req.Advance

	var applied, moved bool
	var cursor int
	ws.Do(func(s *session.Session) {
		applied = s.SetLabel(label)
		if applied && advance {
			moved = s.Advance()
		}
		cursor = s.Cursor()
	})
	if !applied {
		h.writeError(w, "Session has no current image", http.StatusConflict)
		return
	}
	if moved {
		h.publishCursor(ws, cursor)
	}
	h.writeJSON(w, ws.View(false))
}

func (h *Handler) HandleNext(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, (*session.Session).Advance)
}

func (h *Handler) HandlePrev(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, (*session.Session).Retreat)
}

func (h *Handler) move(w http.ResponseWriter, r *http.Request, step func(*session.Session) bool) {
	ws, ok := h.getSessionOrError(w, r.PathValue("id"))
	if !ok {
		return
	}
	var moved bool
	var cursor int
	ws.Do(func(s *session.Session) {
		moved = step(s)
		cursor = s.Cursor()
	})
	if moved {
		h.publishCursor(ws, cursor)
	}
	h.writeJSON(w, ws.View(false))
}

func (h *Handler) HandleSeek(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.getSessionOrError(w, r.PathValue("id"))
	if !ok {
		return
	}
	var req seekRequest
	if !h.readJSON(w, r, &req) {
		return
	}
	if req.Index == nil {
		h.writeError(w, "index is required", http.StatusBadRequest)
		return
	}

	var moved bool
	ws.Do(func(s *session.Session) {
		moved = s.Seek(*req.Index)
	})
	if !moved {
		h.writeError(w, fmt.Sprintf("Index %d is out of range", *req.Index), http.StatusBadRequest)
		return
	}
	h.publishCursor(ws, *req.Index)
	h.writeJSON(w, ws.View(false))
}

func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.getSessionOrError(w, r.PathValue("id"))
	if !ok {
		return
	}
	var req pathRequest
	if !h.readJSON(w, r, &req) {
		return
	}
	if req.Path == "" {
		h.writeError(w, "path is required", http.StatusBadRequest)
		return
	}
	path := session.EnsureCSVExt(req.Path)

	var err error
	var rows int
	ws.Do(func(s *session.Session) {
		err = s.ExportCSV(path)
		rows = s.Len()
	})
	metrics.CSVOperationsTotal.WithLabelValues("export", outcome(err)).Inc()
	if err != nil {
		h.writeError(w, "Failed to export labels: "+err.Error(), csvErrorStatus(err))
		return
	}
	h.writeJSON(w, exportResponse{Path: path, Rows: rows})
}

// HandleImport merges labels from a csv file and returns to the first image.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.getSessionOrError(w, r.PathValue("id"))
	if !ok {
		return
	}
	var req pathRequest
	if !h.readJSON(w, r, &req) {
		return
	}
	if req.Path == "" {
		h.writeError(w, "path is required", http.StatusBadRequest)
		return
	}

	var err error
	var moved bool
	ws.Do(func(s *session.Session) {
		if err = s.ImportCSV(req.Path); err == nil {
			moved = s.Seek(0)
		}
	})
	metrics.CSVOperationsTotal.WithLabelValues("import", outcome(err)).Inc()
	if err != nil {
		var csvErr *session.Error
		if errors.As(err, &csvErr) && len(csvErr.Names) > 0 {
			slog.Warn("Labels reference unknown images", "session_id", ws.ID, "names", csvErr.Names)
		}
		h.writeError(w, "Failed to import labels: "+err.Error(), csvErrorStatus(err))
		return
	}
	if moved {
		h.publishCursor(ws, 0)
	}
	h.writeJSON(w, ws.View(true))
}

// HandleImage serves the file of the current image.
func (h *Handler) HandleImage(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.getSessionOrError(w, r.PathValue("id"))
	if !ok {
		return
	}
	path, found := currentImage(ws)
	if !found {
		h.writeError(w, "Session has no current image", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, path)
}

func currentImage(ws *storage.Workspace) (string, bool) {
	var path string
	var ok bool
	ws.Do(func(s *session.Session) {
		path, ok = s.CurrentImage()
	})
	return path, ok
}
