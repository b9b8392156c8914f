package handlers

import (
	"errors"
	"net/http"

	"github.com/lehigh-university-libraries/frameclassifier/internal/events"
	"github.com/lehigh-university-libraries/frameclassifier/internal/extract"
	"github.com/lehigh-university-libraries/frameclassifier/internal/metrics"
)

type extractionRequest struct {
	VideoPath    string `json:"video_path"`
	OutputParent string `json:"output_parent"`
}

// extractionView is a job's status plus the session its frames were loaded into.
type extractionView struct {
	extract.JobStatus
	SessionID string `json:"session_id,omitempty"`
}

// HandleStartExtraction extracts a video in the background. When the job
// completes its frames are loaded into a new session.
func (h *Handler) HandleStartExtraction(w http.ResponseWriter, r *http.Request) {
	var req extractionRequest
	if !h.readJSON(w, r, &req) {
		return
	}
	if req.VideoPath == "" || req.OutputParent == "" {
		h.writeError(w, "video_path and output_parent are required", http.StatusBadRequest)
		return
	}

	outputDir := extract.OutputDirFor(req.OutputParent, req.VideoPath)
	job := h.runner.Start(req.VideoPath, outputDir, extract.Callbacks{
		OnProgress: func(job *extract.Job, current, total int) {
			h.events.Publish(events.Event{
				Type:    events.TypeExtractionProgress,
				JobID:   job.ID(),
				Current: current,
				Total:   total,
			})
		},
		OnComplete: h.extractionComplete,
		OnFailed:   h.extractionFailed,
	})

	h.writeJSONStatus(w, http.StatusAccepted, h.extractionView(job))
}

func (h *Handler) extractionComplete(job *extract.Job, paths []string) {
	status := job.Status()
	metrics.ExtractionsTotal.WithLabelValues("completed").Inc()
	metrics.FramesExtractedTotal.Add(float64(len(paths)))
	metrics.ExtractionDuration.Observe(status.FinishedAt.Sub(status.StartedAt).Seconds())

	ws := h.newSession(status.OutputDir, paths)
	h.mu.Lock()
	h.jobSessions[job.ID()] = ws.ID
	// drop links to jobs the runner has already forgotten
	for id := range h.jobSessions {
		if _, ok := h.runner.Get(id); !ok {
			delete(h.jobSessions, id)
		}
	}
	h.mu.Unlock()

	h.events.Publish(events.Event{
		Type:      events.TypeExtractionComplete,
		JobID:     job.ID(),
		SessionID: ws.ID,
		Total:     len(paths),
		Paths:     paths,
	})
}

func (h *Handler) extractionFailed(job *extract.Job, err error) {
	status := job.Status()
	metrics.ExtractionDuration.Observe(status.FinishedAt.Sub(status.StartedAt).Seconds())

	ev := events.Event{
		Type:    events.TypeExtractionFailed,
		JobID:   job.ID(),
		Message: err.Error(),
	}
	var exErr *extract.Error
	if errors.As(err, &exErr) {
		metrics.FramesExtractedTotal.Add(float64(exErr.Written))
		ev.Current = exErr.Written
	}
	if errors.Is(err, extract.ErrCanceled) {
		ev.Type = events.TypeExtractionCanceled
		metrics.ExtractionsTotal.WithLabelValues("canceled").Inc()
	} else {
		metrics.ExtractionsTotal.WithLabelValues("failed").Inc()
	}
	h.events.Publish(ev)
}

func (h *Handler) extractionView(job *extract.Job) extractionView {
	h.mu.Lock()
	defer h.mu.Unlock()
	return extractionView{JobStatus: job.Status(), SessionID: h.jobSessions[job.ID()]}
}

func (h *Handler) HandleListExtractions(w http.ResponseWriter, r *http.Request) {
	statuses := h.runner.List()
	list := make([]extractionView, 0, len(statuses))
	h.mu.Lock()
	for _, st := range statuses {
		list = append(list, extractionView{JobStatus: st, SessionID: h.jobSessions[st.ID]})
	}
	h.mu.Unlock()
	h.writeJSON(w, list)
}

func (h *Handler) HandleGetExtraction(w http.ResponseWriter, r *http.Request) {
	job, ok := h.runner.Get(r.PathValue("id"))
	if !ok {
		h.writeError(w, "Extraction not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, h.extractionView(job))
}

// HandleCancelExtraction stops a running job and returns its final status.
// Frames already written stay on disk. A job that had already finished is
// forgotten instead.
func (h *Handler) HandleCancelExtraction(w http.ResponseWriter, r *http.Request) {
	job, ok := h.runner.Get(r.PathValue("id"))
	if !ok {
		h.writeError(w, "Extraction not found", http.StatusNotFound)
		return
	}
	if job.Status().State != extract.JobRunning {
		h.runner.Remove(job.ID())
		h.mu.Lock()
		delete(h.jobSessions, job.ID())
		h.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
		return
	}
	job.Cancel()
	<-job.Done()
	h.writeJSON(w, h.extractionView(job))
}
