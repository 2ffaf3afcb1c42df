package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorkit/vectorkit/internal/backup"
	"github.com/vectorkit/vectorkit/internal/config"
	"github.com/vectorkit/vectorkit/internal/model"
	"github.com/vectorkit/vectorkit/internal/service"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.New()
	cfg.Storage.DataDir = t.TempDir()
	cfg.Backup.Dir = t.TempDir()
	cfg.Lexical.PersistPath = t.TempDir() + "/lexical.db"

	objects := backup.NewLocalObjectStore(t.TempDir())
	svc, err := service.New(cfg, nil, objects, nil)
	require.NoError(t, err)
	t.Cleanup(svc.Close)

	auth := StaticAuthenticator{Keys: map[string]string{"test-key": "tenant-a"}}
	return New(cfg, svc, auth, nil)
}

func doRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "ApiKey test-key")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpointsRequireNoAuth(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateDatasetAndSearchRoundTrip(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/datasets", createDatasetRequest{
		Name:       "fixtures",
		Dimensions: 3,
		Metric:     model.MetricCosine,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var ds model.Dataset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ds))
	require.NotEmpty(t, ds.ID)

	rec = doRequest(t, s, http.MethodPost, "/api/v1/datasets/"+ds.ID+"/vectors", vectorPayload{
		ID:      "v1",
		Values:  []float32{1, 0, 0},
		Content: "the quick brown fox",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/api/v1/datasets/"+ds.ID+"/search", searchRequest{
		Values: []float32{1, 0, 0},
		TopK:   5,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	results, ok := payload["results"].([]any)
	require.True(t, ok)
	assert.Len(t, results, 1)
}

func TestMissingAuthIsRejected(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/datasets", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUnknownDatasetReturnsNotFound(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/v1/datasets/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
