//go:build grpc_vectorkit

package rpcapi

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/vectorkit/vectorkit/internal/config"
	"github.com/vectorkit/vectorkit/internal/service"
)

func startTestServer(t *testing.T) (addr string, cleanup func()) {
	t.Helper()

	cfg := config.New()
	cfg.Storage.DataDir = t.TempDir()
	cfg.Lexical.PersistPath = t.TempDir() + "/lexical.db"

	svc, err := service.New(cfg, nil, nil, nil)
	if err != nil {
		t.Fatalf("service.New: %v", err)
	}

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	s := grpc.NewServer()
	New(svc).Register(s)
	go s.Serve(lis)

	return lis.Addr().String(), func() {
		s.GracefulStop()
		lis.Close()
		svc.Close()
	}
}

func dial(t *testing.T, addr string) *grpc.ClientConn {
	t.Helper()
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype("json")),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func TestHealthCheck(t *testing.T) {
	addr, cleanup := startTestServer(t)
	defer cleanup()
	conn := dial(t, addr)
	defer conn.Close()

	client := NewHealthServiceClient(conn)
	resp, err := client.Check(context.Background(), &HealthCheckRequest{})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
}

func TestDatasetCreateGetListDelete(t *testing.T) {
	addr, cleanup := startTestServer(t)
	defer cleanup()
	conn := dial(t, addr)
	defer conn.Close()

	client := NewDatasetServiceClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	created, err := client.Create(ctx, &CreateDatasetRequest{
		TenantID:   "tenant-a",
		Name:       "docs",
		Dimensions: 3,
		Metric:     "cosine",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated dataset id")
	}

	got, err := client.Get(ctx, &GetDatasetRequest{DatasetID: created.ID})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "docs" {
		t.Errorf("Name = %q, want docs", got.Name)
	}

	list, err := client.List(ctx, &ListDatasetsRequest{TenantID: "tenant-a"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list.Datasets) != 1 {
		t.Fatalf("len(Datasets) = %d, want 1", len(list.Datasets))
	}

	if _, err := client.Delete(ctx, &GetDatasetRequest{DatasetID: created.ID}); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := client.Get(ctx, &GetDatasetRequest{DatasetID: created.ID}); err == nil {
		t.Fatal("expected error after delete")
	}
}

func TestVectorInsertSearchRoundTrip(t *testing.T) {
	addr, cleanup := startTestServer(t)
	defer cleanup()
	conn := dial(t, addr)
	defer conn.Close()

	datasets := NewDatasetServiceClient(conn)
	vectors := NewVectorServiceClient(conn)
	search := NewSearchServiceClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ds, err := datasets.Create(ctx, &CreateDatasetRequest{
		TenantID:   "tenant-a",
		Name:       "docs",
		Dimensions: 3,
		Metric:     "cosine",
	})
	if err != nil {
		t.Fatalf("Create dataset: %v", err)
	}

	insertResp, err := vectors.Insert(ctx, &InsertVectorsRequest{
		DatasetID: ds.ID,
		Vectors: []*VectorMessage{
			{ID: "v1", Values: []float32{1, 0, 0}, Content: "alpha"},
		},
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if insertResp.Inserted != 1 {
		t.Fatalf("Inserted = %d, want 1", insertResp.Inserted)
	}

	got, err := vectors.Get(ctx, &GetVectorRequest{DatasetID: ds.ID, VectorID: "v1"})
	if err != nil {
		t.Fatalf("GetVector: %v", err)
	}
	if got.Content != "alpha" {
		t.Errorf("Content = %q, want alpha", got.Content)
	}

	searchResp, err := search.Search(ctx, &SearchRequest{
		DatasetID: ds.ID,
		Values:    []float32{1, 0, 0},
		TopK:      5,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(searchResp.Hits) != 1 || searchResp.Hits[0].ID != "v1" {
		t.Fatalf("Hits = %+v, want a single hit for v1", searchResp.Hits)
	}
}
