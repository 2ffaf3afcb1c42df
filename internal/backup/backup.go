// Package backup implements full and incremental dataset backups and
// restores: a gzipped tar archive per backup, one subdirectory per
// dataset, checksummed and optionally shipped to an ObjectStore.
//
// No pack library covers tar/gzip archiving, so the archive itself is
// built with archive/tar and compress/gzip directly (see DESIGN.md);
// everything around it — job tracking, ingest, storage — reuses the
// rest of the stack.
package backup

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vectorkit/vectorkit/internal/apperrors"
	"github.com/vectorkit/vectorkit/internal/ingest"
	"github.com/vectorkit/vectorkit/internal/model"
	"github.com/vectorkit/vectorkit/internal/storage"
)

const restoreBatchSize = 100

// DefaultRetention is how long a completed backup is kept before the
// retention sweeper removes its record.
const DefaultRetention = 30 * 24 * time.Hour

// datasetManifest is the per-dataset payload written inside the archive.
type datasetManifest struct {
	Metadata *model.Dataset `json:"metadata"`
	Schema   datasetSchema  `json:"schema"`
	Rows     []model.Vector `json:"rows"`
}

type datasetSchema struct {
	Dimensions int             `json:"dimensions"`
	Metric     model.Metric    `json:"metric"`
	IndexType  model.IndexType `json:"index_type"`
}

type systemConfig struct {
	BackupID   string           `json:"backup_id"`
	Type       model.BackupType `json:"type"`
	TenantID   string           `json:"tenant_id,omitempty"`
	DatasetIDs []string         `json:"dataset_ids"`
	CreatedAt  time.Time        `json:"created_at"`
}

// Engine creates and restores backups. It owns no persistent catalog
// beyond an in-memory record table: durable state lives in the archives
// themselves, consistent with the records being reconstructible from
// storage URIs alone.
type Engine struct {
	storage  *storage.Engine
	registry RebuildScheduler
	objects  ObjectStore
	logger   *slog.Logger

	mu      sync.Mutex
	records map[string]*model.BackupRecord
}

// RebuildScheduler is the subset of internal/index.Registry a restore
// uses to rebuild indexes for restored datasets.
type RebuildScheduler interface {
	Drop(datasetID string)
}

// New returns an Engine that archives through objects and rebuilds
// indexes (when requested) through registry.
func New(storageEngine *storage.Engine, registry RebuildScheduler, objects ObjectStore, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		storage:  storageEngine,
		registry: registry,
		objects:  objects,
		logger:   logger,
		records:  make(map[string]*model.BackupRecord),
	}
}

// CreateBackup enumerates the datasets in scope (tenantID, or an explicit
// datasetIDs list, or every dataset if both are empty), archives them,
// and retains a BackupRecord under a freshly generated id.
func (e *Engine) CreateBackup(ctx context.Context, backupType model.BackupType, tenantID string, datasetIDs []string, metadata map[string]string) (*model.BackupRecord, error) {
	return e.CreateBackupWithID(ctx, uuid.NewString(), backupType, tenantID, datasetIDs, metadata)
}

// CreateBackupWithID is CreateBackup with a caller-supplied backup id, so a
// job.Manager-tracked backup can return the same id on every follow-up
// route (get/cancel/restore) as the one returned from creation.
func (e *Engine) CreateBackupWithID(ctx context.Context, backupID string, backupType model.BackupType, tenantID string, datasetIDs []string, metadata map[string]string) (*model.BackupRecord, error) {
	start := time.Now()

	if backupType == model.BackupTypeIncremental {
		if _, ok := e.latestFull(tenantID); !ok {
			e.logger.Warn("no prior full backup in scope, degrading to full", "tenant_id", tenantID)
			backupType = model.BackupTypeFull
		}
	}

	datasets, err := e.resolveScope(tenantID, datasetIDs)
	if err != nil {
		return nil, err
	}

	record := &model.BackupRecord{
		ID:         backupID,
		Timestamp:  start.UTC(),
		Type:       backupType,
		Status:     model.BackupStatusRunning,
		TenantID:   tenantID,
		DatasetIDs: idsOf(datasets),
		Metadata:   metadata,
	}
	e.putRecord(record)

	archivePath, rawBytes, err := e.writeArchive(ctx, backupID, backupType, tenantID, datasets, metadata)
	if err != nil {
		record.Duration = time.Since(start)
		if ctx.Err() != nil {
			record.Status = model.BackupStatusCancelled
			record.ErrorMessage = "cancelled"
			return record, ctx.Err()
		}
		record.Status = model.BackupStatusFailed
		record.ErrorMessage = err.Error()
		return record, apperrors.BackupError("failed to build backup archive", err)
	}
	defer os.Remove(archivePath)

	checksum, err := storage.ChecksumFile(archivePath)
	if err != nil {
		record.Status = model.BackupStatusFailed
		record.ErrorMessage = err.Error()
		return record, apperrors.BackupError("failed to checksum backup archive", err)
	}

	info, err := os.Stat(archivePath)
	if err != nil {
		return record, apperrors.BackupError("failed to stat backup archive", err)
	}

	uri := backupID + ".tar.gz"
	if e.objects != nil {
		f, err := os.Open(archivePath)
		if err != nil {
			record.Status = model.BackupStatusFailed
			record.ErrorMessage = err.Error()
			return record, apperrors.BackupError("failed to reopen backup archive for upload", err)
		}
		uploadErr := e.objects.Put(ctx, uri, f)
		f.Close()
		if uploadErr != nil {
			record.Status = model.BackupStatusFailed
			record.ErrorMessage = uploadErr.Error()
			return record, apperrors.BackupError("failed to upload backup archive", uploadErr)
		}
	}

	record.Status = model.BackupStatusCompleted
	record.RawBytes = rawBytes
	record.CompressedBytes = info.Size()
	record.Checksum = checksum
	record.StorageURI = uri
	record.Duration = time.Since(start)
	return record, nil
}

// resolveScope returns the datasets a backup/restore should cover: an
// explicit id list takes precedence, then tenant-wide, then every
// dataset on the engine.
func (e *Engine) resolveScope(tenantID string, datasetIDs []string) ([]*model.Dataset, error) {
	if len(datasetIDs) > 0 {
		out := make([]*model.Dataset, 0, len(datasetIDs))
		for _, id := range datasetIDs {
			h, err := e.storage.Open(id, storage.ReadOnly)
			if err != nil {
				return nil, err
			}
			out = append(out, h.Dataset())
			h.Close()
		}
		return out, nil
	}
	all, err := e.storage.List(tenantID)
	if err != nil {
		return nil, apperrors.BackupError("failed to enumerate datasets", err)
	}
	return all, nil
}

func idsOf(datasets []*model.Dataset) []string {
	ids := make([]string, len(datasets))
	for i, ds := range datasets {
		ids[i] = ds.ID
	}
	return ids
}

func (e *Engine) writeArchive(ctx context.Context, backupID string, backupType model.BackupType, tenantID string, datasets []*model.Dataset, metadata map[string]string) (string, int64, error) {
	tmp, err := os.CreateTemp("", "vectorkit-backup-*.tar.gz")
	if err != nil {
		return "", 0, err
	}
	defer tmp.Close()

	gz := gzip.NewWriter(tmp)
	tw := tar.NewWriter(gz)

	var rawBytes int64
	writeEntry := func(name string, data []byte) error {
		rawBytes += int64(len(data))
		hdr := &tar.Header{
			Name: path.Join(backupID, name),
			Mode: 0o644,
			Size: int64(len(data)),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		_, err := tw.Write(data)
		return err
	}

	for _, ds := range datasets {
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}
		h, err := e.storage.Open(ds.ID, storage.ReadOnly)
		if err != nil {
			return "", 0, err
		}
		rows, err := h.Scan(0, 0)
		h.Close()
		if err != nil {
			return "", 0, err
		}

		metaJSON, err := json.MarshalIndent(ds, "", "  ")
		if err != nil {
			return "", 0, err
		}
		schema := datasetSchema{Dimensions: ds.Dimensions, Metric: ds.Metric, IndexType: ds.IndexType}
		schemaJSON, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return "", 0, err
		}
		dataJSON, err := json.Marshal(rows)
		if err != nil {
			return "", 0, err
		}

		dir := fmt.Sprintf("dataset_%s", ds.ID)
		if err := writeEntry(path.Join(dir, "metadata.json"), metaJSON); err != nil {
			return "", 0, err
		}
		if err := writeEntry(path.Join(dir, "schema.json"), schemaJSON); err != nil {
			return "", 0, err
		}
		if err := writeEntry(path.Join(dir, "data.json"), dataJSON); err != nil {
			return "", 0, err
		}
	}

	sys := systemConfig{
		BackupID:   backupID,
		Type:       backupType,
		TenantID:   tenantID,
		DatasetIDs: idsOf(datasets),
		CreatedAt:  time.Now().UTC(),
	}
	sysJSON, err := json.MarshalIndent(sys, "", "  ")
	if err != nil {
		return "", 0, err
	}
	if err := writeEntry(path.Join("system", "config.json"), sysJSON); err != nil {
		return "", 0, err
	}

	if err := tw.Close(); err != nil {
		return "", 0, err
	}
	if err := gz.Close(); err != nil {
		return "", 0, err
	}
	return tmp.Name(), rawBytes, nil
}

// Restore downloads, verifies, and unpacks the named backup, recreating
// each dataset (optionally under a remapped id/tenant) and batch-inserting
// its rows. When RestoreIndexes is set, each restored dataset's index
// registry entry is dropped so its next build starts fresh; otherwise the
// registry is left untouched.
func (e *Engine) Restore(ctx context.Context, backupID string, opts model.RestoreOptions) (*model.BackupRecord, error) {
	record, ok := e.getRecord(backupID)
	if !ok {
		return nil, apperrors.NotFound(apperrors.CodeBackupNotFound, fmt.Sprintf("backup %s not found", backupID), nil)
	}
	if e.objects == nil {
		return nil, apperrors.BackupError("no object store configured for restore", nil)
	}

	rc, err := e.objects.Get(ctx, record.StorageURI)
	if err != nil {
		return nil, apperrors.BackupError("failed to download backup archive", err)
	}
	defer rc.Close()

	tmp, err := os.CreateTemp("", "vectorkit-restore-*.tar.gz")
	if err != nil {
		return nil, apperrors.BackupError("failed to stage restore archive", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, rc); err != nil {
		tmp.Close()
		return nil, apperrors.BackupError("failed to stage restore archive", err)
	}
	tmp.Close()

	if opts.VerifyIntegrity {
		sum, err := storage.ChecksumFile(tmp.Name())
		if err != nil {
			return nil, apperrors.BackupError("failed to checksum restore archive", err)
		}
		if sum != record.Checksum {
			return nil, apperrors.BackupError("backup archive checksum mismatch", nil)
		}
	}

	manifests, err := readArchive(tmp.Name(), backupID)
	if err != nil {
		return nil, apperrors.BackupError("failed to read restore archive", err)
	}

	pipeline := ingest.NewPipeline(4, ingest.NoopRebuildTrigger{}, e.logger)
	for _, m := range manifests {
		ds := m.Metadata
		targetID := ds.ID
		if remapped, ok := opts.DatasetMapping[ds.ID]; ok {
			targetID = remapped
		}
		tenantID := ds.TenantID
		if opts.TargetTenant != "" {
			tenantID = opts.TargetTenant
		}

		spec := model.DatasetSpec{
			TenantID:    tenantID,
			Name:        ds.Name,
			Description: ds.Description,
			Dimensions:  ds.Dimensions,
			Metric:      ds.Metric,
			IndexType:   ds.IndexType,
			Overwrite:   opts.OverwriteExisting,
		}
		if opts.RestoreMetadata {
			spec.Metadata = ds.Metadata
		}

		created, err := e.storage.Create(targetID, spec)
		if err != nil {
			return nil, err
		}

		h, err := e.storage.Open(targetID, storage.ReadWrite)
		if err != nil {
			return nil, err
		}
		for start := 0; start < len(m.Rows); start += restoreBatchSize {
			end := start + restoreBatchSize
			if end > len(m.Rows) {
				end = len(m.Rows)
			}
			if _, err := pipeline.Insert(ctx, h, created, m.Rows[start:end], model.InsertOptions{Overwrite: true}); err != nil {
				h.Close()
				return nil, err
			}
		}
		h.Close()

		if opts.RestoreIndexes && e.registry != nil {
			e.registry.Drop(targetID)
		}
	}

	return record, nil
}

func readArchive(archivePath, backupID string) ([]*datasetManifest, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	byDataset := make(map[string]*datasetManifest)
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rel, err := filepath.Rel(backupID, hdr.Name)
		if err != nil {
			continue
		}
		parts := splitPath(rel)
		if len(parts) != 2 || parts[0] == "system" {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, err
		}
		m := byDataset[parts[0]]
		if m == nil {
			m = &datasetManifest{}
			byDataset[parts[0]] = m
		}
		switch parts[1] {
		case "metadata.json":
			if err := json.Unmarshal(data, &m.Metadata); err != nil {
				return nil, err
			}
		case "schema.json":
			if err := json.Unmarshal(data, &m.Schema); err != nil {
				return nil, err
			}
		case "data.json":
			if err := json.Unmarshal(data, &m.Rows); err != nil {
				return nil, err
			}
		}
	}

	out := make([]*datasetManifest, 0, len(byDataset))
	for _, m := range byDataset {
		out = append(out, m)
	}
	return out, nil
}

func splitPath(p string) []string {
	var parts []string
	for _, seg := range strings.Split(filepath.ToSlash(p), "/") {
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	return parts
}

func (e *Engine) putRecord(r *model.BackupRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.records[r.ID] = r
}

func (e *Engine) getRecord(id string) (*model.BackupRecord, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.records[id]
	return r, ok
}

// Get returns a single backup record by id.
func (e *Engine) Get(id string) (*model.BackupRecord, bool) {
	return e.getRecord(id)
}

// List returns every known backup record for a tenant (all tenants if
// tenantID is empty), newest first.
func (e *Engine) List(tenantID string) []*model.BackupRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*model.BackupRecord, 0, len(e.records))
	for _, r := range e.records {
		if tenantID == "" || r.TenantID == tenantID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

// Delete removes a backup record from the engine's table. The archive in
// the object store is not removed.
func (e *Engine) Delete(ctx context.Context, id string) error {
	e.mu.Lock()
	_, ok := e.records[id]
	if ok {
		delete(e.records, id)
	}
	e.mu.Unlock()
	if !ok {
		return apperrors.NotFound(apperrors.CodeBackupNotFound, fmt.Sprintf("backup %s not found", id), nil)
	}
	return nil
}

func (e *Engine) latestFull(tenantID string) (*model.BackupRecord, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var latest *model.BackupRecord
	for _, r := range e.records {
		if r.Type != model.BackupTypeFull || r.Status != model.BackupStatusCompleted {
			continue
		}
		if tenantID != "" && r.TenantID != tenantID {
			continue
		}
		if latest == nil || r.Timestamp.After(latest.Timestamp) {
			latest = r
		}
	}
	return latest, latest != nil
}

// Sweep removes completed backup records older than maxAge. Returns the
// number removed.
func (e *Engine) Sweep(maxAge time.Duration) int {
	if maxAge <= 0 {
		maxAge = DefaultRetention
	}
	cutoff := time.Now().UTC().Add(-maxAge)

	e.mu.Lock()
	defer e.mu.Unlock()
	removed := 0
	for id, r := range e.records {
		if r.Status == model.BackupStatusCompleted && r.Timestamp.Before(cutoff) {
			delete(e.records, id)
			removed++
		}
	}
	return removed
}
