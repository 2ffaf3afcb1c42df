package backup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorkit/vectorkit/internal/model"
	"github.com/vectorkit/vectorkit/internal/storage"
)

func newTestEngine(t *testing.T) (*storage.Engine, *Engine) {
	t.Helper()
	se, err := storage.NewEngine(t.TempDir(), 5, 10*time.Millisecond)
	require.NoError(t, err)

	_, err = se.Create("ds1", model.DatasetSpec{TenantID: "tenant-a", Name: "ds1", Dimensions: 3, Metric: model.MetricCosine})
	require.NoError(t, err)
	h, err := se.Open("ds1", storage.ReadWrite)
	require.NoError(t, err)
	require.NoError(t, h.Append([]model.Vector{
		{ID: "v1", Values: []float32{1, 0, 0}, Content: "alpha"},
		{ID: "v2", Values: []float32{0, 1, 0}, Content: "beta"},
	}))
	require.NoError(t, h.Commit())
	h.Close()

	objects := NewLocalObjectStore(t.TempDir())
	be := New(se, nil, objects, nil)
	return se, be
}

func TestCreateFullBackupProducesChecksummedArchive(t *testing.T) {
	_, be := newTestEngine(t)

	record, err := be.CreateBackup(context.Background(), model.BackupTypeFull, "tenant-a", nil, map[string]string{"note": "nightly"})
	require.NoError(t, err)
	assert.Equal(t, model.BackupStatusCompleted, record.Status)
	assert.Equal(t, []string{"ds1"}, record.DatasetIDs)
	assert.NotEmpty(t, record.Checksum)
	assert.Greater(t, record.CompressedBytes, int64(0))
}

func TestIncrementalBackupDegradesToFullWithoutPriorFull(t *testing.T) {
	_, be := newTestEngine(t)

	record, err := be.CreateBackup(context.Background(), model.BackupTypeIncremental, "tenant-a", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, model.BackupTypeFull, record.Type)
}

func TestRestoreRecreatesDatasetAndRows(t *testing.T) {
	se, be := newTestEngine(t)

	record, err := be.CreateBackup(context.Background(), model.BackupTypeFull, "tenant-a", nil, nil)
	require.NoError(t, err)

	require.NoError(t, se.Delete("ds1"))

	restored, err := be.Restore(context.Background(), record.ID, model.RestoreOptions{
		OverwriteExisting: true,
		VerifyIntegrity:   true,
		RestoreMetadata:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, record.ID, restored.ID)

	h, err := se.Open("ds1", storage.ReadOnly)
	require.NoError(t, err)
	defer h.Close()
	assert.Equal(t, 2, h.Len())
}

func TestRestoreRemapsDatasetID(t *testing.T) {
	se, be := newTestEngine(t)

	record, err := be.CreateBackup(context.Background(), model.BackupTypeFull, "tenant-a", nil, nil)
	require.NoError(t, err)

	_, err = be.Restore(context.Background(), record.ID, model.RestoreOptions{
		DatasetMapping:    map[string]string{"ds1": "ds1-clone"},
		OverwriteExisting: true,
	})
	require.NoError(t, err)

	h, err := se.Open("ds1-clone", storage.ReadOnly)
	require.NoError(t, err)
	defer h.Close()
	assert.Equal(t, 2, h.Len())
}

func TestRestoreFailsOnChecksumMismatch(t *testing.T) {
	_, be := newTestEngine(t)

	record, err := be.CreateBackup(context.Background(), model.BackupTypeFull, "tenant-a", nil, nil)
	require.NoError(t, err)
	record.Checksum = "not-the-real-checksum"

	_, err = be.Restore(context.Background(), record.ID, model.RestoreOptions{VerifyIntegrity: true})
	require.Error(t, err)
}

func TestListFiltersByTenant(t *testing.T) {
	_, be := newTestEngine(t)
	_, err := be.CreateBackup(context.Background(), model.BackupTypeFull, "tenant-a", nil, nil)
	require.NoError(t, err)
	_, err = be.CreateBackup(context.Background(), model.BackupTypeFull, "tenant-b", []string{}, nil)
	require.NoError(t, err)

	records := be.List("tenant-a")
	assert.Len(t, records, 1)
	assert.Equal(t, "tenant-a", records[0].TenantID)
}

func TestSweepRemovesOldCompletedBackups(t *testing.T) {
	_, be := newTestEngine(t)
	record, err := be.CreateBackup(context.Background(), model.BackupTypeFull, "tenant-a", nil, nil)
	require.NoError(t, err)
	record.Timestamp = time.Now().UTC().Add(-(DefaultRetention + time.Hour))

	removed := be.Sweep(DefaultRetention)
	assert.Equal(t, 1, removed)

	_, ok := be.getRecord(record.ID)
	assert.False(t, ok)
}

func TestDeleteRemovesRecord(t *testing.T) {
	_, be := newTestEngine(t)
	record, err := be.CreateBackup(context.Background(), model.BackupTypeFull, "tenant-a", nil, nil)
	require.NoError(t, err)

	require.NoError(t, be.Delete(context.Background(), record.ID))
	require.Error(t, be.Delete(context.Background(), record.ID))
}
