//go:build grpc_vectorkit

package rpcapi

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vectorkit/vectorkit/internal/apperrors"
	"github.com/vectorkit/vectorkit/internal/filter"
	"github.com/vectorkit/vectorkit/internal/model"
	"github.com/vectorkit/vectorkit/internal/query"
	"github.com/vectorkit/vectorkit/internal/service"
)

// Server implements every vectorkit gRPC service over a single
// internal/service.Service instance.
type Server struct {
	UnimplementedDatasetServiceServer
	UnimplementedVectorServiceServer
	UnimplementedSearchServiceServer
	UnimplementedHealthServiceServer

	svc *service.Service
}

// New returns a Server backed by svc.
func New(svc *service.Service) *Server {
	return &Server{svc: svc}
}

// Register wires every service this Server implements onto s.
func (srv *Server) Register(s grpc.ServiceRegistrar) {
	RegisterDatasetServiceServer(s, srv)
	RegisterVectorServiceServer(s, srv)
	RegisterSearchServiceServer(s, srv)
	RegisterHealthServiceServer(s, srv)
}

// asStatus converts a vectorkit apperrors.Error into a gRPC status error,
// per the wire contract's code table. Non-apperrors errors map to INTERNAL.
func asStatus(err error) error {
	if err == nil {
		return nil
	}
	ae, ok := err.(*apperrors.Error)
	if !ok {
		return status.Error(codes.Internal, err.Error())
	}
	code, ok := codes.Code(0), false
	switch ae.GRPCCodeName() {
	case "NOT_FOUND":
		code, ok = codes.NotFound, true
	case "ALREADY_EXISTS":
		code, ok = codes.AlreadyExists, true
	case "INVALID_ARGUMENT":
		code, ok = codes.InvalidArgument, true
	case "UNAUTHENTICATED":
		code, ok = codes.Unauthenticated, true
	case "PERMISSION_DENIED":
		code, ok = codes.PermissionDenied, true
	case "RESOURCE_EXHAUSTED":
		code, ok = codes.ResourceExhausted, true
	case "UNAVAILABLE":
		code, ok = codes.Unavailable, true
	case "INTERNAL":
		code, ok = codes.Internal, true
	}
	if !ok {
		code = codes.Unknown
	}
	return status.Error(code, ae.Message)
}

func toDatasetResponse(ds *model.Dataset) *DatasetResponse {
	return &DatasetResponse{
		ID:          ds.ID,
		TenantID:    ds.TenantID,
		Name:        ds.Name,
		Description: ds.Description,
		Dimensions:  ds.Dimensions,
		Metric:      string(ds.Metric),
		IndexType:   string(ds.IndexType),
		Metadata:    ds.Metadata,
		CreatedAt:   ds.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:   ds.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func toVectorMessage(v model.Vector) *VectorMessage {
	var metadata json.RawMessage
	if v.Metadata != nil {
		if data, err := json.Marshal(v.Metadata); err == nil {
			metadata = data
		}
	}
	return &VectorMessage{
		ID:         v.ID,
		DocumentID: v.DocumentID,
		ChunkID:    v.ChunkID,
		ChunkIndex: int32(v.ChunkIndex),
		ChunkCount: int32(v.ChunkCount),
		Values:     v.Values,
		Content:    v.Content,
		Model:      v.Model,
		Metadata:   metadata,
	}
}

func fromVectorMessage(m *VectorMessage) model.Vector {
	v := model.Vector{
		ID:         m.ID,
		DocumentID: m.DocumentID,
		ChunkID:    m.ChunkID,
		ChunkIndex: int(m.ChunkIndex),
		ChunkCount: int(m.ChunkCount),
		Values:     m.Values,
		Content:    m.Content,
		Model:      m.Model,
	}
	if len(m.Metadata) > 0 {
		var metadata map[string]any
		if err := json.Unmarshal(m.Metadata, &metadata); err == nil {
			v.Metadata = metadata
		}
	}
	return v
}

// --- DatasetService ---

func (s *Server) Create(ctx context.Context, req *CreateDatasetRequest) (*DatasetResponse, error) {
	ds, err := s.svc.CreateDataset("", model.DatasetSpec{
		TenantID:    req.TenantID,
		Name:        req.Name,
		Description: req.Description,
		Dimensions:  req.Dimensions,
		Metric:      model.Metric(req.Metric),
		IndexType:   model.IndexType(req.IndexType),
		Metadata:    req.Metadata,
		Overwrite:   req.Overwrite,
	})
	if err != nil {
		return nil, asStatus(err)
	}
	return toDatasetResponse(ds), nil
}

func (s *Server) Get(ctx context.Context, req *GetDatasetRequest) (*DatasetResponse, error) {
	ds, err := s.svc.GetDataset(req.DatasetID)
	if err != nil {
		return nil, asStatus(err)
	}
	return toDatasetResponse(ds), nil
}

func (s *Server) List(ctx context.Context, req *ListDatasetsRequest) (*ListDatasetsResponse, error) {
	datasets, err := s.svc.ListDatasets(req.TenantID)
	if err != nil {
		return nil, asStatus(err)
	}
	out := make([]*DatasetResponse, len(datasets))
	for i, ds := range datasets {
		out[i] = toDatasetResponse(ds)
	}
	return &ListDatasetsResponse{Datasets: out}, nil
}

func (s *Server) Delete(ctx context.Context, req *GetDatasetRequest) (*DeleteDatasetResponse, error) {
	if err := s.svc.DeleteDataset(req.DatasetID); err != nil {
		return nil, asStatus(err)
	}
	return &DeleteDatasetResponse{ID: req.DatasetID}, nil
}

// --- VectorService ---

func (s *Server) Insert(ctx context.Context, req *InsertVectorsRequest) (*InsertVectorsResponse, error) {
	vectors := make([]model.Vector, len(req.Vectors))
	for i, v := range req.Vectors {
		vectors[i] = fromVectorMessage(v)
	}
	result, err := s.svc.InsertVectors(ctx, req.DatasetID, vectors, model.InsertOptions{
		SkipExisting: req.SkipExisting,
		Overwrite:    req.Overwrite,
	})
	if err != nil {
		return nil, asStatus(err)
	}
	return &InsertVectorsResponse{
		Inserted: int32(result.Inserted),
		Skipped:  int32(result.Skipped),
		Failed:   int32(result.Failed),
		Errors:   result.ErrorMessages,
	}, nil
}

func (s *Server) GetVector(ctx context.Context, req *GetVectorRequest) (*VectorMessage, error) {
	v, err := s.svc.GetVector(req.DatasetID, req.VectorID)
	if err != nil {
		return nil, asStatus(err)
	}
	return toVectorMessage(v), nil
}

func (s *Server) DeleteVector(ctx context.Context, req *GetVectorRequest) (*DeleteVectorResponse, error) {
	if err := s.svc.DeleteVector(ctx, req.DatasetID, req.VectorID); err != nil {
		return nil, asStatus(err)
	}
	return &DeleteVectorResponse{ID: req.VectorID}, nil
}

// --- SearchService ---

func (s *Server) Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error) {
	opts := query.Options{TopK: int(req.TopK)}
	if req.Filter != "" {
		expr, err := filter.ParseSQL(req.Filter)
		if err != nil {
			return nil, asStatus(err)
		}
		opts.Filter = expr
	}

	results, _, err := s.svc.Search(ctx, req.DatasetID, req.Values, opts)
	if err != nil {
		return nil, asStatus(err)
	}
	hits := make([]*SearchHit, len(results))
	for i, r := range results {
		hits[i] = &SearchHit{
			ID:         r.ID,
			DocumentID: r.DocumentID,
			Score:      float64(r.Score),
			Distance:   float64(r.Distance),
			Content:    r.Content,
		}
	}
	return &SearchResponse{Hits: hits}, nil
}

func (s *Server) SearchText(ctx context.Context, req *SearchTextRequest) (*SearchTextResponse, error) {
	hits, err := s.svc.SearchText(ctx, req.DatasetID, req.Query, int(req.TopK))
	if err != nil {
		return nil, asStatus(err)
	}
	out := make([]*SearchHit, len(hits))
	for i, h := range hits {
		out[i] = &SearchHit{ID: h.ID, Score: h.Score, Content: h.Snippet}
	}
	return &SearchTextResponse{Hits: out}, nil
}

// --- HealthService ---

func (s *Server) Check(ctx context.Context, req *HealthCheckRequest) (*HealthCheckResponse, error) {
	return &HealthCheckResponse{Status: "ok"}, nil
}
