//go:build grpc_vectorkit

package cmd

import (
	"log/slog"
	"net"

	"google.golang.org/grpc"

	"github.com/vectorkit/vectorkit/internal/rpcapi"
	"github.com/vectorkit/vectorkit/internal/service"
)

// startGRPCServer starts the gRPC server in the background and returns a
// function that gracefully stops it.
func startGRPCServer(addr string, svc *service.Service, logger *slog.Logger) (func(), error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	s := grpc.NewServer()
	rpcapi.New(svc).Register(s)

	go func() {
		if err := s.Serve(lis); err != nil {
			logger.Error("grpc server stopped", slog.String("error", err.Error()))
		}
	}()
	logger.Info("grpc server listening", slog.String("addr", addr))

	return s.GracefulStop, nil
}
