//go:build !grpc_vectorkit

package cmd

import (
	"log/slog"

	"github.com/vectorkit/vectorkit/internal/service"
)

// startGRPCServer is a no-op when built without the grpc_vectorkit tag.
func startGRPCServer(addr string, _ *service.Service, logger *slog.Logger) (func(), error) {
	logger.Warn("gRPC support not compiled in; rebuild with -tags grpc_vectorkit to enable",
		slog.String("addr", addr))
	return func() {}, nil
}
