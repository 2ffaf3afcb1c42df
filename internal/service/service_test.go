package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorkit/vectorkit/internal/backup"
	"github.com/vectorkit/vectorkit/internal/config"
	"github.com/vectorkit/vectorkit/internal/fusion"
	"github.com/vectorkit/vectorkit/internal/model"
	"github.com/vectorkit/vectorkit/internal/query"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	cfg := config.New()
	cfg.Storage.DataDir = t.TempDir()
	cfg.Backup.Dir = t.TempDir()
	cfg.Lexical.PersistPath = filepath.Join(t.TempDir(), "lexical.db")

	objects := backup.NewLocalObjectStore(t.TempDir())
	svc, err := New(cfg, nil, objects, nil)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

func seedDataset(t *testing.T, svc *Service) string {
	t.Helper()
	ds, err := svc.CreateDataset("ds1", model.DatasetSpec{
		TenantID:   "tenant-a",
		Name:       "ds1",
		Dimensions: 3,
		Metric:     model.MetricCosine,
	})
	require.NoError(t, err)

	_, err = svc.InsertVectors(context.Background(), ds.ID, []model.Vector{
		{ID: "v1", Values: []float32{1, 0, 0}, Content: "the quick brown fox"},
		{ID: "v2", Values: []float32{0, 1, 0}, Content: "lazy dogs and cats"},
	}, model.InsertOptions{})
	require.NoError(t, err)
	return ds.ID
}

func TestCreateDatasetAndInsertVectors(t *testing.T) {
	svc := newTestService(t)
	dsID := seedDataset(t, svc)

	stats, err := svc.DatasetStats(dsID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.VectorCount)
}

func TestSearchReturnsNearestVector(t *testing.T) {
	svc := newTestService(t)
	dsID := seedDataset(t, svc)

	results, _, err := svc.Search(context.Background(), dsID, []float32{1, 0, 0}, query.Options{TopK: 1})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "v1", results[0].ID)
}

func TestSearchTextFindsMatchingDocument(t *testing.T) {
	svc := newTestService(t)
	dsID := seedDataset(t, svc)

	hits, err := svc.SearchText(context.Background(), dsID, "dogs cats", 5)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "v2", hits[0].ID)
}

func TestSearchHybridFusesVectorAndTextRankings(t *testing.T) {
	svc := newTestService(t)
	dsID := seedDataset(t, svc)

	results, err := svc.SearchHybrid(context.Background(), dsID, []float32{0, 1, 0}, HybridOptions{
		Vector:    query.Options{TopK: 5},
		QueryText: "dogs cats",
		Strategy:  fusion.StrategyRRF,
	})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "v2", results[0].ID)
}

func TestDeleteVectorDropsItFromSubsequentSearch(t *testing.T) {
	svc := newTestService(t)
	dsID := seedDataset(t, svc)

	require.NoError(t, svc.DeleteVector(context.Background(), dsID, "v1"))

	_, err := svc.GetVector(dsID, "v1")
	require.Error(t, err)

	stats, err := svc.DatasetStats(dsID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.VectorCount)
}

func TestDeleteDatasetEvictsCachedState(t *testing.T) {
	svc := newTestService(t)
	dsID := seedDataset(t, svc)

	require.NoError(t, svc.DeleteDataset(dsID))
	_, err := svc.GetDataset(dsID)
	require.Error(t, err)
}

func TestCheckRateLimitAllowsWithinQuota(t *testing.T) {
	svc := newTestService(t)
	decision, err := svc.CheckRateLimit(context.Background(), "tenant-a", "search")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestImportJobCompletesAsynchronously(t *testing.T) {
	svc := newTestService(t)
	dsID := seedDataset(t, svc)

	job := svc.Import(context.Background(), "tenant-a", dsID, []model.Vector{
		{ID: "v3", Values: []float32{1, 1, 0}},
	}, model.InsertOptions{})

	deadline := 0
	for {
		j, ok := svc.GetJob(job.ID)
		require.True(t, ok)
		if j.Terminal() {
			assert.Equal(t, model.JobStatusCompleted, j.Status)
			break
		}
		deadline++
		if deadline > 1000 {
			t.Fatal("import job never completed")
		}
	}
}

func TestBackupAndRestoreRoundTrip(t *testing.T) {
	svc := newTestService(t)
	dsID := seedDataset(t, svc)

	job := svc.CreateBackup(context.Background(), model.BackupTypeFull, "tenant-a", nil, nil)

	deadline := 0
	for {
		j, ok := svc.GetJob(job.ID)
		require.True(t, ok)
		if j.Terminal() {
			assert.Equal(t, model.JobStatusCompleted, j.Status)
			break
		}
		deadline++
		if deadline > 1000 {
			t.Fatal("backup job never completed")
		}
	}

	record, ok := svc.GetBackup(job.ID)
	require.True(t, ok)
	require.Equal(t, model.BackupStatusCompleted, record.Status)

	require.NoError(t, svc.DeleteDataset(dsID))

	_, err := svc.RestoreBackup(context.Background(), record.ID, model.RestoreOptions{
		OverwriteExisting: true,
		VerifyIntegrity:   true,
	})
	require.NoError(t, err)

	stats, err := svc.DatasetStats(dsID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.VectorCount)
}
