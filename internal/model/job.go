package model

import "time"

// JobKind names the async operation a Job tracks.
type JobKind string

const (
	JobKindImport     JobKind = "import"
	JobKindExport     JobKind = "export"
	JobKindBackup     JobKind = "backup"
	JobKindIndexBuild JobKind = "index_build"
)

// JobStatus tracks a Job's lifecycle.
type JobStatus string

const (
	JobStatusPending             JobStatus = "pending"
	JobStatusRunning             JobStatus = "running"
	JobStatusCompleted           JobStatus = "completed"
	JobStatusCompletedWithErrors JobStatus = "completed_with_errors"
	JobStatusFailed              JobStatus = "failed"
	JobStatusCancelled           JobStatus = "cancelled"
)

// JobProgress is a point-in-time snapshot of a job's counters.
type JobProgress struct {
	Total     int    `json:"total"`
	Processed int    `json:"processed"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	OutputURI string `json:"-"`
}

// Job is the status record for an async import/export/backup/index-build
// operation.
type Job struct {
	ID          string      `json:"id"`
	Kind        JobKind     `json:"kind"`
	Status      JobStatus   `json:"status"`
	TenantID    string      `json:"tenant_id,omitempty"`
	Progress    JobProgress `json:"progress"`
	Errors      []string    `json:"errors,omitempty"`
	StartedAt   time.Time   `json:"started_at"`
	EndedAt     time.Time   `json:"ended_at,omitempty"`
	OutputURI   string      `json:"output_uri,omitempty"`
}

// Terminal reports whether the job has reached a terminal status.
func (j *Job) Terminal() bool {
	switch j.Status {
	case JobStatusCompleted, JobStatusCompletedWithErrors, JobStatusFailed, JobStatusCancelled:
		return true
	default:
		return false
	}
}
