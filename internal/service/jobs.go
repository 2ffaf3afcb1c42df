package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/vectorkit/vectorkit/internal/apperrors"
	"github.com/vectorkit/vectorkit/internal/model"
	"github.com/vectorkit/vectorkit/internal/storage"
)

const importBatchSize = 500

// Import starts an asynchronous batch insert of vectors into datasetID,
// reporting progress in importBatchSize chunks.
func (s *Service) Import(ctx context.Context, tenantID, datasetID string, vectors []model.Vector, opts model.InsertOptions) model.Job {
	return s.jobs.Start(ctx, model.JobKindImport, tenantID, func(jobCtx context.Context, report func(model.JobProgress)) error {
		progress := model.JobProgress{Total: len(vectors)}
		err := withWriteHandle(s, datasetID, func(h *storage.Handle) error {
			for start := 0; start < len(vectors); start += importBatchSize {
				end := start + importBatchSize
				if end > len(vectors) {
					end = len(vectors)
				}
				result, err := s.ingest.Insert(jobCtx, h, h.Dataset(), vectors[start:end], opts)
				if err != nil {
					return err
				}
				progress.Processed += end - start
				progress.Succeeded += result.Inserted + result.Skipped
				progress.Failed += result.Failed
				report(progress)
			}
			return nil
		})
		if err == nil {
			s.cache.InvalidateDataset(jobCtx, datasetID)
		}
		return err
	})
}

// Export starts an asynchronous dump of a dataset's rows to the
// configured object store, under "exports/<dataset_id>.json".
func (s *Service) Export(ctx context.Context, tenantID, datasetID string) model.Job {
	return s.jobs.Start(ctx, model.JobKindExport, tenantID, func(jobCtx context.Context, report func(model.JobProgress)) error {
		if s.objects == nil {
			return apperrors.ServiceUnavailable("no object store configured for export", nil)
		}
		h, err := s.openRead(datasetID)
		if err != nil {
			return err
		}
		rows, err := h.Scan(0, 0)
		if err != nil {
			return err
		}
		report(model.JobProgress{Total: len(rows)})

		data, err := json.Marshal(rows)
		if err != nil {
			return err
		}
		uri := "exports/" + datasetID + ".json"
		if err := s.objects.Put(jobCtx, uri, bytes.NewReader(data)); err != nil {
			return err
		}
		report(model.JobProgress{Total: len(rows), Processed: len(rows), Succeeded: len(rows), OutputURI: uri})
		return nil
	})
}

// ExportDownload streams a completed export job's archive from the
// object store.
func (s *Service) ExportDownload(ctx context.Context, jobID string) (io.ReadCloser, error) {
	if s.objects == nil {
		return nil, apperrors.ServiceUnavailable("no object store configured for export", nil)
	}
	j, ok := s.jobs.Get(jobID)
	if !ok {
		return nil, apperrors.NotFound(apperrors.CodeJobNotFound, "job "+jobID+" not found", nil)
	}
	if j.OutputURI == "" {
		return nil, apperrors.Validation("export job has no output yet")
	}
	return s.objects.Get(ctx, j.OutputURI)
}

// GetJob returns a tracked job's current status.
func (s *Service) GetJob(id string) (model.Job, bool) {
	return s.jobs.Get(id)
}

// ListJobs returns every job for a tenant (or all jobs if tenantID is empty).
func (s *Service) ListJobs(tenantID string) []model.Job {
	return s.jobs.List(tenantID)
}

// CancelJob requests cancellation of a running job.
func (s *Service) CancelJob(id string) bool {
	return s.jobs.Cancel(id)
}
