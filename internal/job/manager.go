// Package job tracks long-running asynchronous operations (import,
// export, backup, index build): their lifecycle, progress, and
// cancellation, generalizing a single-purpose background indexer into a
// multi-kind job table.
package job

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vectorkit/vectorkit/internal/model"
)

// Func is the work a Job runs. It must honor ctx cancellation and report
// incremental progress via the supplied reporter.
type Func func(ctx context.Context, report func(model.JobProgress)) error

// record is a Manager's internal bookkeeping for one job, pairing the
// public model.Job with its cancel func and completion channel.
type record struct {
	mu     sync.Mutex
	job    model.Job
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager runs and tracks jobs across all kinds, keyed by UUID.
type Manager struct {
	mu   sync.Mutex
	jobs map[string]*record
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{jobs: make(map[string]*record)}
}

// Start launches fn in a background goroutine under a new job id and
// returns the job's initial state immediately (non-blocking).
func (m *Manager) Start(ctx context.Context, kind model.JobKind, tenantID string, fn Func) model.Job {
	return m.StartWithID(ctx, uuid.NewString(), kind, tenantID, fn)
}

// StartWithID is Start with a caller-chosen job id, for callers (like
// backup creation) whose own record must share its id with the tracked
// job so a single id works across create/get/cancel routes.
func (m *Manager) StartWithID(ctx context.Context, id string, kind model.JobKind, tenantID string, fn Func) model.Job {
	ctx, cancel := context.WithCancel(ctx)

	r := &record{
		job: model.Job{
			ID:        id,
			Kind:      kind,
			Status:    model.JobStatusRunning,
			TenantID:  tenantID,
			StartedAt: time.Now().UTC(),
		},
		cancel: cancel,
		done:   make(chan struct{}),
	}

	m.mu.Lock()
	m.jobs[id] = r
	m.mu.Unlock()

	go m.run(ctx, r, fn)

	return r.snapshot()
}

func (m *Manager) run(ctx context.Context, r *record, fn Func) {
	defer close(r.done)

	err := fn(ctx, func(p model.JobProgress) {
		r.mu.Lock()
		r.job.Progress = p
		if p.OutputURI != "" {
			r.job.OutputURI = p.OutputURI
		}
		r.mu.Unlock()
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	r.job.EndedAt = time.Now().UTC()
	switch {
	case ctx.Err() != nil || r.job.Status == model.JobStatusCancelled:
		r.job.Status = model.JobStatusCancelled
	case err != nil:
		r.job.Status = model.JobStatusFailed
		r.job.Errors = append(r.job.Errors, err.Error())
	case r.job.Progress.Failed > 0:
		r.job.Status = model.JobStatusCompletedWithErrors
	default:
		r.job.Status = model.JobStatusCompleted
	}
}

func (r *record) snapshot() model.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	j := r.job
	j.Errors = append([]string(nil), r.job.Errors...)
	return j
}

// Get returns a job's current snapshot.
func (m *Manager) Get(id string) (model.Job, bool) {
	m.mu.Lock()
	r, ok := m.jobs[id]
	m.mu.Unlock()
	if !ok {
		return model.Job{}, false
	}
	return r.snapshot(), true
}

// Cancel requests that a running job stop. It marks the job Cancelled
// immediately so status polling reflects the request even before the
// job's goroutine observes ctx.Done().
func (m *Manager) Cancel(id string) bool {
	m.mu.Lock()
	r, ok := m.jobs[id]
	m.mu.Unlock()
	if !ok {
		return false
	}

	r.mu.Lock()
	if r.job.Terminal() {
		r.mu.Unlock()
		return false
	}
	r.job.Status = model.JobStatusCancelled
	r.mu.Unlock()

	r.cancel()
	return true
}

// List returns every tracked job for a tenant (or every job if tenantID
// is empty).
func (m *Manager) List(tenantID string) []model.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Job, 0, len(m.jobs))
	for _, r := range m.jobs {
		snap := r.snapshot()
		if tenantID == "" || snap.TenantID == tenantID {
			out = append(out, snap)
		}
	}
	return out
}

// Sweep removes terminal jobs older than maxAge, so the job table
// doesn't grow without bound. Returns the number removed.
func (m *Manager) Sweep(maxAge time.Duration) int {
	cutoff := time.Now().UTC().Add(-maxAge)
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, r := range m.jobs {
		r.mu.Lock()
		terminal := r.job.Terminal()
		endedBefore := !r.job.EndedAt.IsZero() && r.job.EndedAt.Before(cutoff)
		r.mu.Unlock()
		if terminal && endedBefore {
			delete(m.jobs, id)
			removed++
		}
	}
	return removed
}
