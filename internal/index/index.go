// Package index builds and queries the approximate-nearest-neighbor
// structures (Flat, HNSW, IVF) that sit in front of a dataset's storage
// engine.
package index

import (
	"context"

	"github.com/vectorkit/vectorkit/internal/model"
)

// Candidate is one search hit: a row identifier, its row offset (used as
// the ranking tie-break), and the kernel's score/distance pair.
type Candidate struct {
	ID       string
	RowIndex int
	Score    float32
	Distance float32
}

// Stats describes an index's current build state.
type Stats struct {
	Type         model.IndexType `json:"type"`
	VectorCount  int             `json:"vector_count"`
	ApproxBytes  int64           `json:"approx_bytes"`
	BuildSeconds float64         `json:"build_seconds"`
	Trained      bool            `json:"trained"`
	Parameters   map[string]any  `json:"parameters,omitempty"`
}

// BuildConfig parameterizes an index build.
type BuildConfig struct {
	Metric model.Metric

	// HNSW
	M              int
	EfConstruction int

	// IVF
	Nlist int
}

// SearchParams carries per-request engine-specific search knobs.
type SearchParams struct {
	EfSearch int // HNSW, default 50, bounded [1,200]
	Nprobe   int // IVF, default 10, bounded [1,100]
}

// Row is one buildable unit: a stable id, its row offset in storage, and
// its embedding.
type Row struct {
	ID       string
	RowIndex int
	Values   []float32
}

// Index is the common contract for Flat, HNSW, and IVF variants. A fresh
// index is built from a full row set; subsequent changes trigger a
// complete rebuild rather than an incremental mutation, per the "rebuild,
// not mutate" invariant.
type Index interface {
	Build(ctx context.Context, rows []Row, cfg BuildConfig) (Stats, error)
	Search(ctx context.Context, query []float32, k int, params SearchParams) ([]Candidate, error)
	Stats() Stats
}
