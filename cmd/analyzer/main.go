// Package main starts the standalone undertone analyzer gRPC service.
package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/example/colormatch/internal/analyzerrpc"
	"github.com/example/colormatch/internal/config"
	"github.com/example/colormatch/internal/imageprocessor"
	"github.com/example/colormatch/internal/logging"
	"github.com/example/colormatch/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(ctx, "colormatch-analyzer", cfg.OTelEndpoint, cfg.OTelEnabled)
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := shutdownTelemetry(shutdownCtx); err != nil {
				logger.Warn("failed to flush traces", zap.Error(err))
			}
		}()
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatal("failed to listen", zap.Error(err), zap.String("addr", cfg.GRPCAddr))
	}

	logger.Info("analyzer listening", zap.String("addr", lis.Addr().String()))
	if err := run(ctx, lis, cfg, logger); err != nil {
		logger.Fatal("failed to serve", zap.Error(err))
	}
}

// run serves the analyzer on lis until ctx is cancelled, then drains in-flight calls
// for at most cfg.ShutdownTimeout.
func run(ctx context.Context, lis net.Listener, cfg config.Config, logger *zap.Logger) error {
	server := grpc.NewServer(
		grpc.MaxRecvMsgSize(int(cfg.MaxUploadBytes)+1024),
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(loggingInterceptor(logger)),
	)
	healthServer := analyzerrpc.Register(server, analyzerrpc.NewServer(imageprocessor.NewLocalClient(cfg.MaxImageDimension)))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(lis)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down analyzer")
	healthServer.Shutdown()

	stopped := make(chan struct{})
	go func() {
		server.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(cfg.ShutdownTimeout):
		logger.Warn("graceful stop timed out, forcing shutdown")
		server.Stop()
	}
	return <-errCh
}

func loggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	logger = logger.Named("grpc")
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.Duration("latency", time.Since(start)),
		}
		if err != nil {
			logger.Warn("rpc failed", append(fields, zap.Error(err))...)
			return resp, err
		}
		logger.Info("rpc served", fields...)
		return resp, nil
	}
}
