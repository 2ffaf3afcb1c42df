// Package storage implements the per-dataset on-disk columnar store: a
// JSON sidecar of Dataset attributes plus a columnar data file, guarded by
// a per-dataset write lock for serialized commits.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/renameio"

	"github.com/vectorkit/vectorkit/internal/apperrors"
	"github.com/vectorkit/vectorkit/internal/model"
)

// Mode selects whether a Handle may mutate its dataset.
type Mode int

const (
	ReadOnly Mode = iota
	ReadWrite
)

// Engine is the root of the storage hierarchy: every dataset lives in its
// own subdirectory of DataDir.
type Engine struct {
	dataDir     string
	lockRetries int
	lockDelay   time.Duration
}

// NewEngine creates an Engine rooted at dataDir, creating it if necessary.
func NewEngine(dataDir string, lockRetries int, lockBaseDelay time.Duration) (*Engine, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create data dir: %w", err)
	}
	return &Engine{dataDir: dataDir, lockRetries: lockRetries, lockDelay: lockBaseDelay}, nil
}

func (e *Engine) datasetRoot(id string) string {
	return filepath.Join(e.dataDir, id)
}

func sidecarPath(root string) string {
	return filepath.Join(root, "dataset.json")
}

func lockPath(root string) string {
	return filepath.Join(root, "index.lock")
}

// Create provisions a new dataset directory from spec. Fails with
// AlreadyExists unless spec.Overwrite is set, in which case any existing
// directory is removed and recreated atomically.
func (e *Engine) Create(id string, spec model.DatasetSpec) (*model.Dataset, error) {
	root := e.datasetRoot(id)

	if _, err := os.Stat(root); err == nil {
		if !spec.Overwrite {
			return nil, apperrors.AlreadyExists(fmt.Sprintf("dataset %s already exists", id), nil)
		}
		if err := os.RemoveAll(root); err != nil {
			return nil, apperrors.StorageError("failed to remove existing dataset directory", err)
		}
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, apperrors.StorageError("failed to create dataset directory", err)
	}

	now := time.Now().UTC()
	ds := &model.Dataset{
		ID:          id,
		TenantID:    spec.TenantID,
		Name:        spec.Name,
		Description: spec.Description,
		Dimensions:  spec.Dimensions,
		Metric:      spec.Metric,
		IndexType:   spec.IndexType,
		Metadata:    spec.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := writeSidecar(root, ds); err != nil {
		return nil, err
	}
	return ds, nil
}

// Open returns a Handle for an existing dataset. Read-write handles get a
// handle on the dataset's lock file; the write lock itself is taken, with
// retry and backoff, by each Commit. Read-only handles never lock.
func (e *Engine) Open(id string, mode Mode) (*Handle, error) {
	root := e.datasetRoot(id)
	if _, err := os.Stat(root); err != nil {
		return nil, apperrors.NotFound(apperrors.CodeDatasetNotFound, fmt.Sprintf("dataset %s not found", id), err)
	}

	ds, err := readSidecar(root)
	if err != nil {
		return nil, err
	}

	cols, err := loadColumnSet(root)
	if err != nil {
		return nil, apperrors.StorageError("failed to load dataset columns", err)
	}

	h := &Handle{
		engine:  e,
		root:    root,
		mode:    mode,
		dataset: ds,
		cols:    cols,
	}

	if mode == ReadWrite {
		h.lock = flock.New(lockPath(root))
	}

	return h, nil
}

// Delete removes a dataset's entire on-disk directory, cascading to its
// vectors and index state.
func (e *Engine) Delete(id string) error {
	root := e.datasetRoot(id)
	if _, err := os.Stat(root); err != nil {
		return apperrors.NotFound(apperrors.CodeDatasetNotFound, fmt.Sprintf("dataset %s not found", id), err)
	}
	if err := os.RemoveAll(root); err != nil {
		return apperrors.StorageError("failed to delete dataset directory", err)
	}
	return nil
}

// List returns the attributes of every dataset under the engine's data
// directory, optionally filtered to one tenant (pass "" for all tenants).
// Used by the backup engine to resolve a scope's target datasets without
// requiring the caller to already know every id.
func (e *Engine) List(tenantID string) ([]*model.Dataset, error) {
	entries, err := os.ReadDir(e.dataDir)
	if err != nil {
		return nil, apperrors.StorageError("failed to list data directory", err)
	}

	var out []*model.Dataset
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		root := e.datasetRoot(entry.Name())
		if _, err := os.Stat(sidecarPath(root)); err != nil {
			continue
		}
		ds, err := readSidecar(root)
		if err != nil {
			return nil, err
		}
		if tenantID != "" && ds.TenantID != tenantID {
			continue
		}
		out = append(out, ds)
	}
	return out, nil
}

// Handle is an open reference to one dataset. Read-write handles serialize
// commits through a per-dataset lock file; concurrent readers are always
// permitted.
type Handle struct {
	engine  *Engine
	root    string
	mode    Mode
	dataset *model.Dataset
	cols    *columnSet
	lock    *flock.Flock

	pending []model.Vector // appended but not yet committed
	closed  bool
	broken  bool // set on a fatal storage error; handle must be reopened
}

// Dataset returns the handle's dataset attributes.
func (h *Handle) Dataset() *model.Dataset {
	return h.dataset
}

// Len returns the number of committed (visible) rows.
func (h *Handle) Len() int {
	return h.cols.len()
}

// Append stages rows for the next Commit. Appends are idempotent only
// with respect to caller-supplied ids; duplicate detection is the
// caller's concern (see internal/ingest).
func (h *Handle) Append(rows []model.Vector) error {
	if h.broken {
		return apperrors.StorageError("dataset handle is broken and must be reopened", nil)
	}
	if h.mode != ReadWrite {
		return apperrors.StorageError("append requires a read-write handle", nil)
	}
	h.pending = append(h.pending, rows...)
	return nil
}

// Commit makes staged appends visible to new readers, retrying lock
// acquisition with exponential backoff (initial 200ms, factor 2) per the
// engine's commit contract.
func (h *Handle) Commit() error {
	if h.broken {
		return apperrors.StorageError("dataset handle is broken and must be reopened", nil)
	}
	if h.mode != ReadWrite {
		return apperrors.StorageError("commit requires a read-write handle", nil)
	}

	delay := h.engine.lockDelay
	var lastErr error
	for attempt := 0; attempt < h.engine.lockRetries; attempt++ {
		locked, err := h.lock.TryLock()
		if err != nil {
			lastErr = err
		} else if locked {
			defer h.lock.Unlock()
			return h.commitLocked()
		}
		time.Sleep(delay)
		delay *= 2
	}
	if lastErr != nil {
		return apperrors.StorageError("failed to acquire dataset write lock", lastErr)
	}
	return apperrors.StorageError("failed to acquire dataset write lock after retries", nil)
}

func (h *Handle) commitLocked() error {
	for _, v := range h.pending {
		if err := h.cols.append(v); err != nil {
			h.broken = true
			return apperrors.StorageError("failed to append row during commit", err)
		}
	}
	h.pending = nil

	if err := saveColumnSet(h.root, h.cols); err != nil {
		h.broken = true
		return apperrors.StorageError("failed to persist columns during commit", err)
	}

	h.dataset.UpdatedAt = time.Now().UTC()
	if err := writeSidecar(h.root, h.dataset); err != nil {
		h.broken = true
		return err
	}
	return nil
}

// Scan materializes rows [offset, offset+limit).
func (h *Handle) Scan(limit, offset int) ([]model.Vector, error) {
	n := h.cols.len()
	if offset >= n {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > n {
		end = n
	}
	rows := make([]model.Vector, 0, end-offset)
	for i := offset; i < end; i++ {
		v, err := h.cols.rowAt(i, h.dataset.ID)
		if err != nil {
			return nil, apperrors.StorageError("failed to materialize row", err)
		}
		rows = append(rows, v)
	}
	return rows, nil
}

// GetByIndex materializes row i.
func (h *Handle) GetByIndex(i int) (model.Vector, error) {
	if i < 0 || i >= h.cols.len() {
		return model.Vector{}, apperrors.NotFound(apperrors.CodeVectorNotFound, "row index out of range", nil)
	}
	return h.cols.rowAt(i, h.dataset.ID)
}

// FindByID returns the row index of the vector with the given id, or -1.
func (h *Handle) FindByID(id string) int {
	for i, existing := range h.cols.ID {
		if existing == id {
			return i
		}
	}
	return -1
}

// DeleteRow removes row i from every column; the caller must Commit to
// make the deletion visible.
func (h *Handle) DeleteRow(i int) error {
	if h.mode != ReadWrite {
		return apperrors.StorageError("delete requires a read-write handle", nil)
	}
	if i < 0 || i >= h.cols.len() {
		return apperrors.NotFound(apperrors.CodeVectorNotFound, "row index out of range", nil)
	}
	h.cols.deleteAt(i)
	return nil
}

// AllEmbeddings returns every live row's embedding, in row order, for
// index builds.
func (h *Handle) AllEmbeddings() [][]float32 {
	return h.cols.Embedding
}

// AllIDs returns every live row's id, in row order.
func (h *Handle) AllIDs() []string {
	return h.cols.ID
}

// Close releases the handle. Uncommitted appends are discarded.
func (h *Handle) Close() error {
	h.closed = true
	h.pending = nil
	return nil
}

// Broken reports whether a fatal storage error has made this handle
// unusable; the caller must evict it and Open a fresh one.
func (h *Handle) Broken() bool {
	return h.broken
}

func writeSidecar(root string, ds *model.Dataset) error {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return apperrors.StorageError("failed to marshal dataset sidecar", err)
	}
	t, err := renameio.TempFile("", sidecarPath(root))
	if err != nil {
		return apperrors.StorageError("failed to open temp sidecar file", err)
	}
	defer t.Cleanup()
	if _, err := t.Write(data); err != nil {
		return apperrors.StorageError("failed to write sidecar", err)
	}
	if err := t.CloseAtomicallyReplace(); err != nil {
		return apperrors.StorageError("failed to commit sidecar", err)
	}
	return nil
}

func readSidecar(root string) (*model.Dataset, error) {
	data, err := os.ReadFile(sidecarPath(root))
	if err != nil {
		return nil, apperrors.StorageError("failed to read dataset sidecar", err)
	}
	var ds model.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, apperrors.StorageError("failed to parse dataset sidecar", err)
	}
	return &ds, nil
}

// ChecksumFile returns the hex SHA-256 checksum of the file at path.
func ChecksumFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
