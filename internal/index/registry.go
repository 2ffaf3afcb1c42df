package index

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/vectorkit/vectorkit/internal/apperrors"
	"github.com/vectorkit/vectorkit/internal/model"
)

// Policy thresholds below which a declared approximate index falls back
// to a Flat scan, and the trigger point at which a dataset is promoted
// from Flat to an auto-built IVF index.
const (
	HNSWMinVectors       = 100
	IVFMinVectorsPerList = 40
	AutoIVFBuildAt       = 10000
)

// clamp restricts v to [lo, hi].
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// AutoIVFParams derives nlist/nprobe for a dataset crossing the
// auto-build threshold, per the registry's scaling policy.
func AutoIVFParams(vectorCount int) (nlist, nprobe int) {
	nlist = clamp(vectorCount/100, 100, 4096)
	nprobe = clamp(vectorCount/1000, 10, 128)
	return nlist, nprobe
}

// BuildRequest describes a requested index build for one dataset.
type BuildRequest struct {
	DatasetID    string
	Declared     model.IndexType
	Rows         []Row
	Config       BuildConfig
	ForceRebuild bool
}

// entry is the registry's per-dataset bookkeeping: the live index
// (swapped atomically so readers never observe a half-built graph) plus
// whether it has ever been built.
type entry struct {
	live  atomic.Pointer[Index]
	built atomic.Bool
}

// Registry owns one Index per dataset and arbitrates which concrete
// implementation backs a search: the declared type, or a Flat fallback
// when the live vector count is too small to justify it. Concurrent
// build requests for the same dataset are coalesced into one build.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

func (r *Registry) entryFor(datasetID string) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[datasetID]
	if !ok {
		e = &entry{}
		r.entries[datasetID] = e
	}
	return e
}

// EffectiveType resolves which concrete index type should actually back
// a dataset, applying the small-dataset Flat-fallback policy.
func EffectiveType(declared model.IndexType, vectorCount, nlist int) model.IndexType {
	switch declared {
	case model.IndexTypeHNSW:
		if vectorCount < HNSWMinVectors {
			return model.IndexTypeFlat
		}
		return model.IndexTypeHNSW
	case model.IndexTypeIVF:
		if nlist <= 0 {
			nlist, _ = AutoIVFParams(vectorCount)
		}
		if vectorCount < IVFMinVectorsPerList*nlist {
			return model.IndexTypeFlat
		}
		return model.IndexTypeIVF
	case model.IndexTypeFlat:
		return model.IndexTypeFlat
	default:
		if vectorCount >= AutoIVFBuildAt {
			return model.IndexTypeIVF
		}
		if vectorCount >= HNSWMinVectors {
			return model.IndexTypeHNSW
		}
		return model.IndexTypeFlat
	}
}

func newConcreteIndex(t model.IndexType) Index {
	switch t {
	case model.IndexTypeHNSW:
		return NewHNSWIndex()
	case model.IndexTypeIVF:
		return NewIVFIndex()
	default:
		return NewFlatIndex()
	}
}

// Build constructs (or rebuilds) the index for req.DatasetID. It is
// idempotent: a second call with the same dataset and ForceRebuild=false
// while a live index already exists is a no-op that returns the
// existing stats. Concurrent calls for the same dataset are coalesced
// via singleflight so only one build actually runs.
//
// Build failures are logged by the caller and are non-fatal: on error
// the dataset's live index is left untouched (or nil, if this was the
// first build), so callers fall back to Flat at search time via
// EffectiveType.
func (r *Registry) Build(ctx context.Context, req BuildRequest) (Stats, error) {
	e := r.entryFor(req.DatasetID)

	if !req.ForceRebuild && e.built.Load() {
		if live := e.live.Load(); live != nil {
			return (*live).Stats(), nil
		}
	}

	effective := EffectiveType(req.Declared, len(req.Rows), req.Config.Nlist)

	v, err, _ := r.group.Do(req.DatasetID, func() (any, error) {
		idx := newConcreteIndex(effective)
		cfg := req.Config
		cfg.Metric = req.Config.Metric
		stats, buildErr := idx.Build(ctx, req.Rows, cfg)
		if buildErr != nil {
			return Stats{}, apperrors.IndexingError("index build failed", buildErr)
		}
		var asIndex Index = idx
		e.live.Store(&asIndex)
		e.built.Store(true)
		return stats, nil
	})
	if err != nil {
		return Stats{}, err
	}
	return v.(Stats), nil
}

// Search runs a query against a dataset's live index. If no index has
// ever been built, callers should fall back to a fresh Flat scan
// themselves (the registry does not implicitly build on search).
func (r *Registry) Search(ctx context.Context, datasetID string, query []float32, k int, params SearchParams) ([]Candidate, error) {
	e := r.entryFor(datasetID)
	live := e.live.Load()
	if live == nil {
		return nil, apperrors.IndexingError("no index built for dataset "+datasetID, nil)
	}
	return (*live).Search(ctx, query, k, params)
}

// Stats reports the live index's stats, or the zero value if none has
// been built yet.
func (r *Registry) Stats(datasetID string) (Stats, bool) {
	e := r.entryFor(datasetID)
	live := e.live.Load()
	if live == nil {
		return Stats{}, false
	}
	return (*live).Stats(), true
}

// Drop removes a dataset's live index, e.g. after the dataset itself is
// deleted.
func (r *Registry) Drop(datasetID string) {
	r.mu.Lock()
	delete(r.entries, datasetID)
	r.mu.Unlock()
}

// Built reports whether a dataset currently has a live index.
func (r *Registry) Built(datasetID string) bool {
	e := r.entryFor(datasetID)
	return e.built.Load()
}
