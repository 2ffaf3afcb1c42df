package service

import (
	"context"

	"github.com/vectorkit/vectorkit/internal/apperrors"
	"github.com/vectorkit/vectorkit/internal/model"
	"github.com/vectorkit/vectorkit/internal/storage"
)

// InsertVectors runs a batch insert through the ingest pipeline.
func (s *Service) InsertVectors(ctx context.Context, datasetID string, vectors []model.Vector, opts model.InsertOptions) (model.BatchResult, error) {
	var result model.BatchResult
	err := withWriteHandle(s, datasetID, func(h *storage.Handle) error {
		r, err := s.ingest.Insert(ctx, h, h.Dataset(), vectors, opts)
		result = r
		return err
	})
	if err == nil && result.Inserted > 0 {
		s.cache.InvalidateDataset(ctx, datasetID)
	}
	return result, err
}

// GetVector returns a single row by id.
func (s *Service) GetVector(datasetID, vectorID string) (model.Vector, error) {
	h, err := s.openRead(datasetID)
	if err != nil {
		return model.Vector{}, err
	}
	idx := h.FindByID(vectorID)
	if idx < 0 {
		return model.Vector{}, apperrors.NotFound(apperrors.CodeVectorNotFound, "vector "+vectorID+" not found", nil)
	}
	return h.GetByIndex(idx)
}

// DeleteVector removes a single row by id.
func (s *Service) DeleteVector(ctx context.Context, datasetID, vectorID string) error {
	err := withWriteHandle(s, datasetID, func(h *storage.Handle) error {
		idx := h.FindByID(vectorID)
		if idx < 0 {
			return apperrors.NotFound(apperrors.CodeVectorNotFound, "vector "+vectorID+" not found", nil)
		}
		if err := h.DeleteRow(idx); err != nil {
			return err
		}
		return h.Commit()
	})
	if err != nil {
		return err
	}
	s.indexes.Drop(datasetID)
	s.dropLexical(datasetID)
	s.cache.InvalidateDataset(ctx, datasetID)
	return nil
}

// ListVectors pages through a dataset's live rows.
func (s *Service) ListVectors(datasetID string, limit, offset int) ([]model.Vector, error) {
	h, err := s.openRead(datasetID)
	if err != nil {
		return nil, err
	}
	return h.Scan(limit, offset)
}
