package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorkit/vectorkit/internal/model"
)

func waitFor(t *testing.T, m *Manager, id string, status model.JobStatus) model.Job {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		j, ok := m.Get(id)
		require.True(t, ok)
		if j.Status == status {
			return j
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reached status %s", id, status)
	return model.Job{}
}

func TestManagerRunsJobToCompletion(t *testing.T) {
	m := NewManager()
	job := m.Start(context.Background(), model.JobKindImport, "tenant-a", func(ctx context.Context, report func(model.JobProgress)) error {
		report(model.JobProgress{Total: 10, Processed: 10, Succeeded: 10})
		return nil
	})
	assert.Equal(t, model.JobStatusRunning, job.Status)

	final := waitFor(t, m, job.ID, model.JobStatusCompleted)
	assert.Equal(t, 10, final.Progress.Succeeded)
}

func TestManagerMarksFailedOnError(t *testing.T) {
	m := NewManager()
	job := m.Start(context.Background(), model.JobKindExport, "t", func(ctx context.Context, report func(model.JobProgress)) error {
		return errors.New("boom")
	})
	final := waitFor(t, m, job.ID, model.JobStatusFailed)
	assert.Contains(t, final.Errors, "boom")
}

func TestManagerMarksCompletedWithErrorsWhenSomeRowsFailed(t *testing.T) {
	m := NewManager()
	job := m.Start(context.Background(), model.JobKindImport, "t", func(ctx context.Context, report func(model.JobProgress)) error {
		report(model.JobProgress{Total: 5, Processed: 5, Succeeded: 4, Failed: 1})
		return nil
	})
	final := waitFor(t, m, job.ID, model.JobStatusCompletedWithErrors)
	assert.Equal(t, 1, final.Progress.Failed)
}

func TestManagerCancelStopsJob(t *testing.T) {
	m := NewManager()
	started := make(chan struct{})
	job := m.Start(context.Background(), model.JobKindBackup, "t", func(ctx context.Context, report func(model.JobProgress)) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	<-started
	assert.True(t, m.Cancel(job.ID))

	final, ok := m.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, model.JobStatusCancelled, final.Status)
}

func TestManagerListFiltersByTenant(t *testing.T) {
	m := NewManager()
	m.Start(context.Background(), model.JobKindImport, "a", func(ctx context.Context, report func(model.JobProgress)) error { return nil })
	m.Start(context.Background(), model.JobKindImport, "b", func(ctx context.Context, report func(model.JobProgress)) error { return nil })

	jobs := m.List("a")
	assert.Len(t, jobs, 1)
	assert.Equal(t, "a", jobs[0].TenantID)
}

func TestManagerSweepRemovesOldTerminalJobs(t *testing.T) {
	m := NewManager()
	job := m.Start(context.Background(), model.JobKindImport, "t", func(ctx context.Context, report func(model.JobProgress)) error { return nil })
	waitFor(t, m, job.ID, model.JobStatusCompleted)

	removed := m.Sweep(-time.Second) // everything terminal looks "old"
	assert.Equal(t, 1, removed)

	_, ok := m.Get(job.ID)
	assert.False(t, ok)
}
