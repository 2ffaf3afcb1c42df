// Package model defines the core domain types shared by every vectorkit
// component: datasets, vectors, tenants, backups, and jobs.
package model

import "time"

// Metric names a distance/similarity kernel. See internal/metric.
type Metric string

const (
	MetricCosine    Metric = "cosine"
	MetricEuclidean Metric = "euclidean"
	MetricManhattan Metric = "manhattan"
	MetricDot       Metric = "dot"
	MetricHamming   Metric = "hamming"
)

// IndexType names a declared or derived index variant.
type IndexType string

const (
	IndexTypeDefault IndexType = "default"
	IndexTypeFlat    IndexType = "flat"
	IndexTypeHNSW    IndexType = "hnsw"
	IndexTypeIVF     IndexType = "ivf"
)

// Dataset is the unit of isolation: a named, dimensioned, metric-fixed
// collection of vectors owned by exactly one tenant.
type Dataset struct {
	ID          string            `json:"id"`
	TenantID    string            `json:"tenant_id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Dimensions  int               `json:"dimensions"`
	Metric      Metric            `json:"metric"`
	IndexType   IndexType         `json:"index_type"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// DatasetSpec is the input to dataset creation.
type DatasetSpec struct {
	TenantID    string
	Name        string
	Description string
	Dimensions  int
	Metric      Metric
	IndexType   IndexType
	Metadata    map[string]string
	Overwrite   bool
}

// DatasetStats summarizes a dataset's current size and index state.
type DatasetStats struct {
	DatasetID    string    `json:"dataset_id"`
	VectorCount  int       `json:"vector_count"`
	IndexType    IndexType `json:"index_type"`
	IndexTrained bool      `json:"index_trained"`
	BytesOnDisk  int64     `json:"bytes_on_disk"`
}

// ValidMetrics lists every metric kernel name accepted at dataset creation.
var ValidMetrics = map[Metric]bool{
	MetricCosine:    true,
	MetricEuclidean: true,
	MetricManhattan: true,
	MetricDot:       true,
	MetricHamming:   true,
}

// ValidIndexTypes lists every declared index type accepted at dataset
// creation.
var ValidIndexTypes = map[IndexType]bool{
	IndexTypeDefault: true,
	IndexTypeFlat:    true,
	IndexTypeHNSW:    true,
	IndexTypeIVF:     true,
}
