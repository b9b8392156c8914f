package extract

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerCompletesAndHandsOffOnce(t *testing.T) {
	runner := NewRunner(context.Background(), NewExtractor(&fakeDecoder{frames: 4, hint: 4}, DefaultJPEGQuality))

	var mu sync.Mutex
	var progress []int
	var handoffs [][]string
	job := runner.Start("/v/clip.mp4", t.TempDir(), Callbacks{
		OnProgress: func(_ *Job, current, _ int) {
			mu.Lock()
			progress = append(progress, current)
			mu.Unlock()
		},
		OnComplete: func(_ *Job, paths []string) {
			mu.Lock()
			handoffs = append(handoffs, paths)
			mu.Unlock()
		},
		OnFailed: func(_ *Job, err error) {
			t.Errorf("unexpected failure: %v", err)
		},
	})

	paths, err := job.Wait()
	require.NoError(t, err)
	assert.Len(t, paths, 4)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 3, 4}, progress)
	require.Len(t, handoffs, 1)
	assert.Equal(t, paths, handoffs[0])

	status := job.Status()
	assert.Equal(t, JobCompleted, status.State)
	assert.Equal(t, 4, status.Frames)
	assert.Equal(t, 4, status.Current)

	got, ok := runner.Get(job.ID())
	require.True(t, ok)
	assert.Same(t, job, got)
	assert.Len(t, runner.List(), 1)
}

func TestRunnerCancelSkipsHandoff(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	dec := &fakeDecoder{frames: 100, hint: 100, before: func(n int) {
		if n == 3 {
			close(started)
			<-release
		}
	}}
	runner := NewRunner(context.Background(), NewExtractor(dec, DefaultJPEGQuality))

	var failed error
	job := runner.Start("/v/clip.mp4", t.TempDir(), Callbacks{
		OnComplete: func(*Job, []string) {
			t.Error("completion handoff must not run for a canceled job")
		},
		OnFailed: func(_ *Job, err error) {
			failed = err
		},
	})

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("job never reached frame 3")
	}
	job.Cancel()
	close(release)

	_, err := job.Wait()
	assert.True(t, errors.Is(err, ErrCanceled), "got %v", err)
	assert.True(t, errors.Is(failed, ErrCanceled))
	assert.Equal(t, JobCanceled, job.Status().State)
}

func TestRunnerReportsFailure(t *testing.T) {
	runner := NewRunner(context.Background(), NewExtractor(&fakeDecoder{frames: 2, hint: 0}, DefaultJPEGQuality))

	job := runner.Start("/v/clip.mp4", t.TempDir(), Callbacks{})
	_, err := job.Wait()

	assert.True(t, errors.Is(err, ErrFrameCountUnavailable))
	status := job.Status()
	assert.Equal(t, JobFailed, status.State)
	assert.NotEmpty(t, status.Error)
}

func TestRunnerPrunesFinishedJobs(t *testing.T) {
	runner := NewRunner(context.Background(), NewExtractor(&fakeDecoder{frames: 1, hint: 1}, DefaultJPEGQuality))

	job := runner.Start("/v/clip.mp4", t.TempDir(), Callbacks{})
	_, err := job.Wait()
	require.NoError(t, err)

	assert.Equal(t, 0, runner.Prune(time.Now()), "fresh jobs stay queryable")
	assert.Equal(t, 1, runner.Prune(time.Now().Add(2*DefaultRetention)))
	_, ok := runner.Get(job.ID())
	assert.False(t, ok)
}

func TestRunnerRemoveKeepsRunningJobs(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	dec := &fakeDecoder{frames: 2, hint: 2, before: func(n int) {
		if n == 1 {
			close(started)
			<-release
		}
	}}
	runner := NewRunner(context.Background(), NewExtractor(dec, DefaultJPEGQuality))
	job := runner.Start("/v/clip.mp4", t.TempDir(), Callbacks{})

	<-started
	assert.False(t, runner.Remove(job.ID()), "running job must not be removed")
	assert.Equal(t, 0, runner.Prune(time.Now().Add(2*DefaultRetention)))
	close(release)

	_, err := job.Wait()
	require.NoError(t, err)
	assert.True(t, runner.Remove(job.ID()))
	assert.False(t, runner.Remove(job.ID()))
	assert.Empty(t, runner.List())
}
