package service

import (
	"context"

	"github.com/vectorkit/vectorkit/internal/index"
	"github.com/vectorkit/vectorkit/internal/model"
)

// CreateIndex (re)builds datasetID's index as a tracked background job.
func (s *Service) CreateIndex(ctx context.Context, tenantID, datasetID string, indexType model.IndexType, cfg index.BuildConfig) model.Job {
	return s.jobs.Start(ctx, model.JobKindIndexBuild, tenantID, func(jobCtx context.Context, report func(model.JobProgress)) error {
		h, err := s.openRead(datasetID)
		if err != nil {
			return err
		}
		rows, err := rowsForIndex(h)
		if err != nil {
			return err
		}
		if cfg.Metric == "" {
			cfg.Metric = h.Dataset().Metric
		}
		report(model.JobProgress{Total: len(rows)})
		_, err = s.indexes.Build(jobCtx, index.BuildRequest{
			DatasetID:    datasetID,
			Declared:     indexType,
			Rows:         rows,
			Config:       cfg,
			ForceRebuild: true,
		})
		if err == nil {
			report(model.JobProgress{Total: len(rows), Processed: len(rows), Succeeded: len(rows)})
		}
		return err
	})
}

// IndexStats returns a dataset's current index build state.
func (s *Service) IndexStats(datasetID string) (index.Stats, bool) {
	return s.indexes.Stats(datasetID)
}

// DropIndex discards datasetID's built index, falling back to a Flat
// scan until the next build.
func (s *Service) DropIndex(datasetID string) {
	s.indexes.Drop(datasetID)
}
