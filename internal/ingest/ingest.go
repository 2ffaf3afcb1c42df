// Package ingest implements vector batch insertion: per-row validation,
// a single end-of-batch commit, and the fire-and-forget index rebuild
// trigger once a dataset crosses the auto-build threshold.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vectorkit/vectorkit/internal/apperrors"
	"github.com/vectorkit/vectorkit/internal/index"
	"github.com/vectorkit/vectorkit/internal/model"
	"github.com/vectorkit/vectorkit/internal/storage"
)

// RebuildTrigger schedules an asynchronous index build for a dataset once
// its vector count crosses the auto-build threshold. Implemented in the
// wired service by internal/service, which runs the build as an
// internal/job Manager job; a no-op trigger is used
// where async scheduling isn't needed (e.g. tests).
type RebuildTrigger interface {
	ScheduleRebuild(datasetID string, declared model.IndexType, vectorCount int)
}

// NoopRebuildTrigger discards rebuild requests.
type NoopRebuildTrigger struct{}

func (NoopRebuildTrigger) ScheduleRebuild(string, model.IndexType, int) {}

// Pipeline drives the insert() operation described in the package doc.
type Pipeline struct {
	workers int
	trigger RebuildTrigger
	logger  *slog.Logger
}

// NewPipeline returns a Pipeline that fans row validation out across
// workers goroutines (bounded by the shared worker pool size) and
// schedules rebuilds through trigger.
func NewPipeline(workers int, trigger RebuildTrigger, logger *slog.Logger) *Pipeline {
	if workers <= 0 {
		workers = 4
	}
	if trigger == nil {
		trigger = NoopRebuildTrigger{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{workers: workers, trigger: trigger, logger: logger}
}

// validated is the per-row outcome of validation, before it is either
// appended or counted as skipped/failed.
type validated struct {
	index int
	row   model.Vector
	err   error
}

// Insert runs the full ingest pipeline against an already-open
// read-write handle and returns the batch result.
func (p *Pipeline) Insert(ctx context.Context, h *storage.Handle, ds *model.Dataset, vectors []model.Vector, opts model.InsertOptions) (model.BatchResult, error) {
	start := time.Now()

	existing := make(map[string]bool)
	if opts.SkipExisting {
		for _, id := range h.AllIDs() {
			existing[id] = true
		}
	}

	outcomes := make([]validated, len(vectors))
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, p.workers)

	for i, v := range vectors {
		i, v := i, v
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()

			outcomes[i] = validateRow(i, v, ds, existing, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.BatchResult{}, apperrors.Internal("ingest validation failed", err)
	}

	var toAppend []model.Vector
	var skipped, failed int
	var errorMessages []string
	for _, o := range outcomes {
		switch {
		case o.err != nil:
			failed++
			errorMessages = append(errorMessages, o.err.Error())
		case o.row.ID == "" && opts.SkipExisting:
			skipped++
		default:
			toAppend = append(toAppend, o.row)
		}
	}

	if len(toAppend) > 0 {
		if err := h.Append(toAppend); err != nil {
			return model.BatchResult{}, apperrors.StorageError("append failed", err)
		}
		if err := h.Commit(); err != nil {
			return model.BatchResult{}, apperrors.StorageError("commit failed", err)
		}
	}

	newCount := h.Len()
	if newCount >= index.AutoIVFBuildAt && (ds.IndexType == "" || ds.IndexType == model.IndexTypeDefault || ds.IndexType == model.IndexTypeIVF) {
		p.trigger.ScheduleRebuild(ds.ID, ds.IndexType, newCount)
	}

	return model.BatchResult{
		Inserted:      len(toAppend),
		Skipped:       skipped,
		Failed:        failed,
		ErrorMessages: errorMessages,
		ProcessingMS:  float64(time.Since(start).Microseconds()) / 1000.0,
	}, nil
}

// validateRow assigns a missing id, checks the dimension, and computes
// the content hash. Rows skipped due to skip_existing are returned with
// an empty ID as a sentinel the caller checks for.
func validateRow(i int, v model.Vector, ds *model.Dataset, existing map[string]bool, opts model.InsertOptions) validated {
	if v.ID == "" {
		v.ID = generateID(i)
	}

	if len(v.Values) != ds.Dimensions {
		return validated{index: i, err: fmt.Errorf("row %d: dimension mismatch: got %d, want %d", i, len(v.Values), ds.Dimensions)}
	}

	if opts.SkipExisting && existing[v.ID] && !opts.Overwrite {
		return validated{index: i, row: model.Vector{}}
	}

	v.ContentHash = hashContent(v.Content)
	now := time.Now().UTC()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = now
	}
	v.UpdatedAt = now

	return validated{index: i, row: v}
}

func hashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func generateID(seq int) string {
	return fmt.Sprintf("auto-%d-%d", time.Now().UnixNano(), seq)
}
