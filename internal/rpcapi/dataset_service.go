//go:build grpc_vectorkit

package rpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DatasetServiceClient is the client API for DatasetService.
type DatasetServiceClient interface {
	Create(ctx context.Context, in *CreateDatasetRequest, opts ...grpc.CallOption) (*DatasetResponse, error)
	Get(ctx context.Context, in *GetDatasetRequest, opts ...grpc.CallOption) (*DatasetResponse, error)
	List(ctx context.Context, in *ListDatasetsRequest, opts ...grpc.CallOption) (*ListDatasetsResponse, error)
	Delete(ctx context.Context, in *GetDatasetRequest, opts ...grpc.CallOption) (*DeleteDatasetResponse, error)
}

type datasetServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewDatasetServiceClient creates a new DatasetServiceClient.
func NewDatasetServiceClient(cc grpc.ClientConnInterface) DatasetServiceClient {
	return &datasetServiceClient{cc}
}

func (c *datasetServiceClient) Create(ctx context.Context, in *CreateDatasetRequest, opts ...grpc.CallOption) (*DatasetResponse, error) {
	out := new(DatasetResponse)
	opts = append(opts, grpc.CallContentSubtype("json"))
	if err := c.cc.Invoke(ctx, "/vectorkit.v1.DatasetService/Create", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *datasetServiceClient) Get(ctx context.Context, in *GetDatasetRequest, opts ...grpc.CallOption) (*DatasetResponse, error) {
	out := new(DatasetResponse)
	opts = append(opts, grpc.CallContentSubtype("json"))
	if err := c.cc.Invoke(ctx, "/vectorkit.v1.DatasetService/Get", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *datasetServiceClient) List(ctx context.Context, in *ListDatasetsRequest, opts ...grpc.CallOption) (*ListDatasetsResponse, error) {
	out := new(ListDatasetsResponse)
	opts = append(opts, grpc.CallContentSubtype("json"))
	if err := c.cc.Invoke(ctx, "/vectorkit.v1.DatasetService/List", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *datasetServiceClient) Delete(ctx context.Context, in *GetDatasetRequest, opts ...grpc.CallOption) (*DeleteDatasetResponse, error) {
	out := new(DeleteDatasetResponse)
	opts = append(opts, grpc.CallContentSubtype("json"))
	if err := c.cc.Invoke(ctx, "/vectorkit.v1.DatasetService/Delete", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// DatasetServiceServer is the server API for DatasetService.
type DatasetServiceServer interface {
	Create(context.Context, *CreateDatasetRequest) (*DatasetResponse, error)
	Get(context.Context, *GetDatasetRequest) (*DatasetResponse, error)
	List(context.Context, *ListDatasetsRequest) (*ListDatasetsResponse, error)
	Delete(context.Context, *GetDatasetRequest) (*DeleteDatasetResponse, error)
	mustEmbedUnimplementedDatasetServiceServer()
}

// UnimplementedDatasetServiceServer provides default implementations.
type UnimplementedDatasetServiceServer struct{}

func (UnimplementedDatasetServiceServer) Create(context.Context, *CreateDatasetRequest) (*DatasetResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Create not implemented")
}
func (UnimplementedDatasetServiceServer) Get(context.Context, *GetDatasetRequest) (*DatasetResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Get not implemented")
}
func (UnimplementedDatasetServiceServer) List(context.Context, *ListDatasetsRequest) (*ListDatasetsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method List not implemented")
}
func (UnimplementedDatasetServiceServer) Delete(context.Context, *GetDatasetRequest) (*DeleteDatasetResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Delete not implemented")
}
func (UnimplementedDatasetServiceServer) mustEmbedUnimplementedDatasetServiceServer() {}

// RegisterDatasetServiceServer registers the DatasetService with a gRPC server.
func RegisterDatasetServiceServer(s grpc.ServiceRegistrar, srv DatasetServiceServer) {
	s.RegisterService(&DatasetService_ServiceDesc, srv)
}

func _DatasetService_Create_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CreateDatasetRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DatasetServiceServer).Create(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/vectorkit.v1.DatasetService/Create"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DatasetServiceServer).Create(ctx, req.(*CreateDatasetRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _DatasetService_Get_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetDatasetRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DatasetServiceServer).Get(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/vectorkit.v1.DatasetService/Get"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DatasetServiceServer).Get(ctx, req.(*GetDatasetRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _DatasetService_List_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ListDatasetsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DatasetServiceServer).List(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/vectorkit.v1.DatasetService/List"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DatasetServiceServer).List(ctx, req.(*ListDatasetsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _DatasetService_Delete_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetDatasetRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DatasetServiceServer).Delete(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/vectorkit.v1.DatasetService/Delete"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DatasetServiceServer).Delete(ctx, req.(*GetDatasetRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// DatasetService_ServiceDesc is the grpc.ServiceDesc for DatasetService.
var DatasetService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "vectorkit.v1.DatasetService",
	HandlerType: (*DatasetServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Create", Handler: _DatasetService_Create_Handler},
		{MethodName: "Get", Handler: _DatasetService_Get_Handler},
		{MethodName: "List", Handler: _DatasetService_List_Handler},
		{MethodName: "Delete", Handler: _DatasetService_Delete_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vectorkit.proto",
}
