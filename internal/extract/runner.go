package extract

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobState is the lifecycle state of an extraction job.
type JobState string

const (
	JobRunning   JobState = "running"
	JobCompleted JobState = "completed"
	JobFailed    JobState = "failed"
	JobCanceled  JobState = "canceled"
)

// Callbacks receive a job's events. Each is optional and runs on the job's goroutine.
type Callbacks struct {
	OnProgress func(job *Job, current, total int)
	// OnComplete is the single handoff of the final frame list. It is never
	// called for failed or canceled jobs.
	OnComplete func(job *Job, paths []string)
	// OnFailed receives the extraction error. Cancellation arrives here with
	// an error matching ErrCanceled.
	OnFailed func(job *Job, err error)
}

// JobStatus is a point-in-time view of a job.
type JobStatus struct {
	ID         string    `json:"id"`
	Video      string    `json:"video"`
	OutputDir  string    `json:"output_dir"`
	State      JobState  `json:"state"`
	Current    int       `json:"current"`
	Total      int       `json:"total"`
	Frames     int       `json:"frames"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// Job is one extraction running in the background.
type Job struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	status JobStatus
	paths  []string
	err    error
}

// ID returns the job identifier.
func (j *Job) ID() string {
	return j.id
}

// Cancel asks the job to stop after the frame in flight.
func (j *Job) Cancel() {
	j.cancel()
}

// Wait blocks until the job finishes and returns its frames or error.
func (j *Job) Wait() ([]string, error) {
	<-j.done
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.paths, j.err
}

// Done is closed when the job finishes.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Status returns a snapshot of the job.
func (j *Job) Status() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// DefaultRetention is how long a finished job stays queryable.
const DefaultRetention = time.Hour

// Runner starts extraction jobs off the caller's goroutine and keeps track of them.
// Finished jobs are forgotten once they are older than Retention.
type Runner struct {
	ctx       context.Context
	extractor *Extractor
	Retention time.Duration

	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewRunner returns a runner whose jobs are canceled when ctx is done.
func NewRunner(ctx context.Context, extractor *Extractor) *Runner {
	return &Runner{
		ctx:       ctx,
		extractor: extractor,
		Retention: DefaultRetention,
		jobs:      make(map[string]*Job),
	}
}

// Start begins extracting videoPath into outputDir and returns immediately.
func (r *Runner) Start(videoPath, outputDir string, cb Callbacks) *Job {
	ctx, cancel := context.WithCancel(r.ctx)
	job := &Job{
		id:     uuid.NewString(),
		cancel: cancel,
		done:   make(chan struct{}),
		status: JobStatus{
			Video:     videoPath,
			OutputDir: outputDir,
			State:     JobRunning,
			StartedAt: time.Now(),
		},
	}
	job.status.ID = job.id

	r.Prune(time.Now())

	r.mu.Lock()
	r.jobs[job.id] = job
	r.mu.Unlock()

	go r.run(ctx, job, cb)
	return job
}

// Get returns a job by ID.
func (r *Runner) Get(id string) (*Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	return job, ok
}

// List returns a snapshot of every known job.
func (r *Runner) List() []JobStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]JobStatus, 0, len(r.jobs))
	for _, job := range r.jobs {
		out = append(out, job.Status())
	}
	return out
}

// Remove forgets a finished job. Running jobs are kept; it reports whether
// the job was removed.
func (r *Runner) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok || job.Status().State == JobRunning {
		return false
	}
	delete(r.jobs, id)
	return true
}

// Prune forgets jobs that finished more than Retention before now and
// returns how many were dropped.
func (r *Runner) Prune(now time.Time) int {
	if r.Retention <= 0 {
		return 0
	}
	cutoff := now.Add(-r.Retention)

	r.mu.Lock()
	defer r.mu.Unlock()
	pruned := 0
	for id, job := range r.jobs {
		st := job.Status()
		if st.State != JobRunning && st.FinishedAt.Before(cutoff) {
			delete(r.jobs, id)
			pruned++
		}
	}
	if pruned > 0 {
		slog.Debug("Pruned finished extraction jobs", "count", pruned)
	}
	return pruned
}

func (r *Runner) run(ctx context.Context, job *Job, cb Callbacks) {
	defer close(job.done)
	defer job.cancel()

	progress := func(current, total int) {
		job.mu.Lock()
		job.status.Current = current
		job.status.Total = total
		job.mu.Unlock()
		if cb.OnProgress != nil {
			cb.OnProgress(job, current, total)
		}
	}

	paths, err := r.extractor.Extract(ctx, job.status.Video, job.status.OutputDir, progress)

	job.mu.Lock()
	job.paths = paths
	job.err = err
	job.status.Frames = len(paths)
	job.status.FinishedAt = time.Now()
	switch {
	case err == nil:
		job.status.State = JobCompleted
	case errors.Is(err, ErrCanceled):
		job.status.State = JobCanceled
		job.status.Error = err.Error()
	default:
		job.status.State = JobFailed
		job.status.Error = err.Error()
	}
	job.mu.Unlock()

	if err != nil {
		slog.Error("Extraction job failed", "job_id", job.id, "err", err)
		if cb.OnFailed != nil {
			cb.OnFailed(job, err)
		}
		return
	}

	slog.Info("Extraction job completed", "job_id", job.id, "frames", len(paths))
	if cb.OnComplete != nil {
		cb.OnComplete(job, paths)
	}
}
