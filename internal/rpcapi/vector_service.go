//go:build grpc_vectorkit

package rpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// VectorServiceClient is the client API for VectorService.
type VectorServiceClient interface {
	Insert(ctx context.Context, in *InsertVectorsRequest, opts ...grpc.CallOption) (*InsertVectorsResponse, error)
	Get(ctx context.Context, in *GetVectorRequest, opts ...grpc.CallOption) (*VectorMessage, error)
	Delete(ctx context.Context, in *GetVectorRequest, opts ...grpc.CallOption) (*DeleteVectorResponse, error)
}

type vectorServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewVectorServiceClient creates a new VectorServiceClient.
func NewVectorServiceClient(cc grpc.ClientConnInterface) VectorServiceClient {
	return &vectorServiceClient{cc}
}

func (c *vectorServiceClient) Insert(ctx context.Context, in *InsertVectorsRequest, opts ...grpc.CallOption) (*InsertVectorsResponse, error) {
	out := new(InsertVectorsResponse)
	opts = append(opts, grpc.CallContentSubtype("json"))
	if err := c.cc.Invoke(ctx, "/vectorkit.v1.VectorService/Insert", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vectorServiceClient) Get(ctx context.Context, in *GetVectorRequest, opts ...grpc.CallOption) (*VectorMessage, error) {
	out := new(VectorMessage)
	opts = append(opts, grpc.CallContentSubtype("json"))
	if err := c.cc.Invoke(ctx, "/vectorkit.v1.VectorService/Get", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vectorServiceClient) Delete(ctx context.Context, in *GetVectorRequest, opts ...grpc.CallOption) (*DeleteVectorResponse, error) {
	out := new(DeleteVectorResponse)
	opts = append(opts, grpc.CallContentSubtype("json"))
	if err := c.cc.Invoke(ctx, "/vectorkit.v1.VectorService/Delete", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// VectorServiceServer is the server API for VectorService.
type VectorServiceServer interface {
	Insert(context.Context, *InsertVectorsRequest) (*InsertVectorsResponse, error)
	Get(context.Context, *GetVectorRequest) (*VectorMessage, error)
	Delete(context.Context, *GetVectorRequest) (*DeleteVectorResponse, error)
	mustEmbedUnimplementedVectorServiceServer()
}

// UnimplementedVectorServiceServer provides default implementations.
type UnimplementedVectorServiceServer struct{}

func (UnimplementedVectorServiceServer) Insert(context.Context, *InsertVectorsRequest) (*InsertVectorsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Insert not implemented")
}
func (UnimplementedVectorServiceServer) Get(context.Context, *GetVectorRequest) (*VectorMessage, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Get not implemented")
}
func (UnimplementedVectorServiceServer) Delete(context.Context, *GetVectorRequest) (*DeleteVectorResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Delete not implemented")
}
func (UnimplementedVectorServiceServer) mustEmbedUnimplementedVectorServiceServer() {}

// RegisterVectorServiceServer registers the VectorService with a gRPC server.
func RegisterVectorServiceServer(s grpc.ServiceRegistrar, srv VectorServiceServer) {
	s.RegisterService(&VectorService_ServiceDesc, srv)
}

func _VectorService_Insert_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(InsertVectorsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VectorServiceServer).Insert(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/vectorkit.v1.VectorService/Insert"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(VectorServiceServer).Insert(ctx, req.(*InsertVectorsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _VectorService_Get_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetVectorRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VectorServiceServer).Get(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/vectorkit.v1.VectorService/Get"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(VectorServiceServer).Get(ctx, req.(*GetVectorRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _VectorService_Delete_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetVectorRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VectorServiceServer).Delete(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/vectorkit.v1.VectorService/Delete"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(VectorServiceServer).Delete(ctx, req.(*GetVectorRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// VectorService_ServiceDesc is the grpc.ServiceDesc for VectorService.
var VectorService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "vectorkit.v1.VectorService",
	HandlerType: (*VectorServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Insert", Handler: _VectorService_Insert_Handler},
		{MethodName: "Get", Handler: _VectorService_Get_Handler},
		{MethodName: "Delete", Handler: _VectorService_Delete_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vectorkit.proto",
}
