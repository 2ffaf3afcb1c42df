package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vectorkit/vectorkit/internal/backup"
	"github.com/vectorkit/vectorkit/internal/config"
	"github.com/vectorkit/vectorkit/internal/httpapi"
	"github.com/vectorkit/vectorkit/internal/service"
)

func newServeCmd() *cobra.Command {
	var configPath string
	var httpAddr string
	var rpcAddr string
	var apiKeys []string
	var trustedHeader string
	var enableGRPC bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the vectorkit HTTP and gRPC servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath, httpAddr, rpcAddr, apiKeys, trustedHeader, enableGRPC)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	cmd.Flags().StringVar(&httpAddr, "http-addr", "", "Override the HTTP listen address")
	cmd.Flags().StringVar(&rpcAddr, "rpc-addr", "", "Override the gRPC listen address")
	cmd.Flags().StringSliceVar(&apiKeys, "api-key", nil, "API key in key:tenant form, repeatable")
	cmd.Flags().StringVar(&trustedHeader, "trusted-header", "", "Trust a tenant id header instead of API keys (gateway deployments)")
	cmd.Flags().BoolVar(&enableGRPC, "grpc", true, "Also start the gRPC server")

	return cmd
}

func runServe(ctx context.Context, configPath, httpAddr, rpcAddr string, apiKeys []string, trustedHeader string, enableGRPC bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if httpAddr != "" {
		cfg.HTTPServer.Addr = httpAddr
	}
	if rpcAddr != "" {
		cfg.RPCServer.Addr = rpcAddr
	}

	logger := slog.Default()

	objects := backup.NewLocalObjectStore(cfg.ObjectStore.URI)

	svc, err := service.New(cfg, nil, objects, logger)
	if err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Close()

	auth, err := buildAuthenticator(trustedHeader, apiKeys)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         cfg.HTTPServer.Addr,
		Handler:      httpapi.New(cfg, svc, auth, logger),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", cfg.HTTPServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	var stopGRPC func()
	if enableGRPC {
		stopGRPC, err = startGRPCServer(cfg.RPCServer.Addr, svc, logger)
		if err != nil {
			return fmt.Errorf("failed to start gRPC server: %w", err)
		}
	}

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
		defer cancel()

		logger.Info("shutting down")
		if stopGRPC != nil {
			stopGRPC()
		}
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// buildAuthenticator resolves the configured Authenticator from CLI flags:
// a trusted header takes precedence over the API-key map.
func buildAuthenticator(trustedHeader string, apiKeys []string) (httpapi.Authenticator, error) {
	if trustedHeader != "" {
		return httpapi.TrustedHeaderAuthenticator{Header: trustedHeader}, nil
	}

	keys := make(map[string]string, len(apiKeys))
	for _, kv := range apiKeys {
		key, tenant, ok := strings.Cut(kv, ":")
		if !ok || key == "" || tenant == "" {
			return nil, fmt.Errorf("invalid --api-key %q, expected key:tenant", kv)
		}
		keys[key] = tenant
	}
	return httpapi.StaticAuthenticator{Keys: keys}, nil
}
