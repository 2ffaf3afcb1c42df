//go:build grpc_vectorkit

// Package rpcapi exposes internal/service.Service over gRPC.
//
// The request/response types below are hand-written Go structs with JSON
// serialization instead of protoc-generated code, wired through gRPC's
// pluggable codec (see codec.go). This avoids requiring protoc to build
// while keeping wire compatibility for any client that negotiates the
// "json" content subtype.
//
// To regenerate proper protobuf code from a .proto description of this
// surface:
//
//	protoc --go_out=. --go-grpc_out=. vectorkit.proto
package rpcapi

import "encoding/json"

// CreateDatasetRequest is the request for DatasetService.Create.
type CreateDatasetRequest struct {
	TenantID    string            `json:"tenant_id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Dimensions  int               `json:"dimensions"`
	Metric      string            `json:"metric"`
	IndexType   string            `json:"index_type,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Overwrite   bool              `json:"overwrite,omitempty"`
}

// DatasetResponse carries a dataset's attributes.
type DatasetResponse struct {
	ID          string            `json:"id"`
	TenantID    string            `json:"tenant_id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Dimensions  int               `json:"dimensions"`
	Metric      string            `json:"metric"`
	IndexType   string            `json:"index_type"`
	VectorCount int64             `json:"vector_count"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   string            `json:"created_at"`
	UpdatedAt   string            `json:"updated_at"`
}

// GetDatasetRequest is the request for DatasetService.Get and Delete.
type GetDatasetRequest struct {
	DatasetID string `json:"dataset_id"`
}

// ListDatasetsRequest is the request for DatasetService.List.
type ListDatasetsRequest struct {
	TenantID string `json:"tenant_id,omitempty"`
}

// ListDatasetsResponse carries every matching dataset.
type ListDatasetsResponse struct {
	Datasets []*DatasetResponse `json:"datasets"`
}

// DeleteDatasetResponse acknowledges a dataset deletion.
type DeleteDatasetResponse struct {
	ID string `json:"id"`
}

// VectorMessage is the wire form of one vector, request or response side.
// Metadata is carried as a pre-encoded JSON document rather than a typed
// map: model.Vector.Metadata is map[string]any, and the hand-rolled JSON
// codec round-trips a raw json.RawMessage cleanly without needing a fixed
// schema for every possible metadata shape.
type VectorMessage struct {
	ID         string          `json:"id,omitempty"`
	DocumentID string          `json:"document_id,omitempty"`
	ChunkID    string          `json:"chunk_id,omitempty"`
	ChunkIndex int32           `json:"chunk_index,omitempty"`
	ChunkCount int32           `json:"chunk_count,omitempty"`
	Values     []float32       `json:"values"`
	Content    string          `json:"content,omitempty"`
	Model      string          `json:"model,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}

// InsertVectorsRequest is the request for VectorService.Insert.
type InsertVectorsRequest struct {
	DatasetID    string           `json:"dataset_id"`
	Vectors      []*VectorMessage `json:"vectors"`
	SkipExisting bool             `json:"skip_existing,omitempty"`
	Overwrite    bool             `json:"overwrite,omitempty"`
}

// InsertVectorsResponse reports a batch insert's outcome.
type InsertVectorsResponse struct {
	Inserted int32    `json:"inserted"`
	Skipped  int32    `json:"skipped"`
	Failed   int32    `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// GetVectorRequest is the request for VectorService.Get and Delete.
type GetVectorRequest struct {
	DatasetID string `json:"dataset_id"`
	VectorID  string `json:"vector_id"`
}

// DeleteVectorResponse acknowledges a vector deletion.
type DeleteVectorResponse struct {
	ID string `json:"id"`
}

// SearchRequest is the request for SearchService.Search.
type SearchRequest struct {
	DatasetID string    `json:"dataset_id"`
	Values    []float32 `json:"values"`
	TopK      int32     `json:"top_k"`
	Filter    string    `json:"filter,omitempty"`
}

// SearchHit is one ranked result.
type SearchHit struct {
	ID         string  `json:"id"`
	DocumentID string  `json:"document_id,omitempty"`
	Score      float64 `json:"score"`
	Distance   float64 `json:"distance"`
	Content    string  `json:"content,omitempty"`
}

// SearchResponse carries a search's ranked hits.
type SearchResponse struct {
	Hits          []*SearchHit `json:"hits"`
	CandidatesHit int32        `json:"candidates_hit"`
	IndexType     string       `json:"index_type"`
}

// SearchTextRequest is the request for SearchService.SearchText.
type SearchTextRequest struct {
	DatasetID string `json:"dataset_id"`
	Query     string `json:"query"`
	TopK      int32  `json:"top_k"`
}

// SearchTextResponse carries a lexical search's ranked hits.
type SearchTextResponse struct {
	Hits []*SearchHit `json:"hits"`
}

// HealthCheckRequest is the request for HealthService.Check.
type HealthCheckRequest struct{}

// HealthCheckResponse reports process health.
type HealthCheckResponse struct {
	Status string `json:"status"`
}
