package service

import (
	"github.com/google/uuid"

	"github.com/vectorkit/vectorkit/internal/model"
	"github.com/vectorkit/vectorkit/internal/storage"
)

// CreateDataset provisions a new dataset under datasetID, generating one
// if empty.
func (s *Service) CreateDataset(datasetID string, spec model.DatasetSpec) (*model.Dataset, error) {
	if datasetID == "" {
		datasetID = uuid.NewString()
	}
	return s.storage.Create(datasetID, spec)
}

// GetDataset returns a dataset's attributes.
func (s *Service) GetDataset(datasetID string) (*model.Dataset, error) {
	h, err := s.openRead(datasetID)
	if err != nil {
		return nil, err
	}
	return h.Dataset(), nil
}

// DeleteDataset removes a dataset and evicts every cached state about it.
func (s *Service) DeleteDataset(datasetID string) error {
	if err := s.storage.Delete(datasetID); err != nil {
		return err
	}
	s.invalidateRead(datasetID)
	s.indexes.Drop(datasetID)
	s.dropLexical(datasetID)
	s.cache.InvalidateDataset(bgCtx(), datasetID)
	return nil
}

// ListDatasets returns every dataset, optionally scoped to one tenant.
func (s *Service) ListDatasets(tenantID string) ([]*model.Dataset, error) {
	return s.storage.List(tenantID)
}

// DatasetStats summarizes a dataset's current size and index state.
func (s *Service) DatasetStats(datasetID string) (model.DatasetStats, error) {
	h, err := s.openRead(datasetID)
	if err != nil {
		return model.DatasetStats{}, err
	}
	stats, built := s.indexes.Stats(datasetID)
	indexType := h.Dataset().IndexType
	if built {
		indexType = stats.Type
	}
	return model.DatasetStats{
		DatasetID:    datasetID,
		VectorCount:  h.Len(),
		IndexType:    indexType,
		IndexTrained: built,
	}, nil
}

func withWriteHandle(s *Service, datasetID string, fn func(h *storage.Handle) error) error {
	h, err := s.storage.Open(datasetID, storage.ReadWrite)
	if err != nil {
		return err
	}
	defer h.Close()
	if err := fn(h); err != nil {
		return err
	}
	s.invalidateRead(datasetID)
	return nil
}
