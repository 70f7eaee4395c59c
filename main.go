package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/example/colormatch/internal/config"
	"github.com/example/colormatch/internal/grpcclient"
	"github.com/example/colormatch/internal/handlers"
	"github.com/example/colormatch/internal/imageprocessor"
	"github.com/example/colormatch/internal/logging"
	"github.com/example/colormatch/internal/middleware"
	"github.com/example/colormatch/internal/repository"
	"github.com/example/colormatch/internal/telemetry"
	"github.com/example/colormatch/internal/usecase"
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

	shutdownTelemetry, err := telemetry.Setup(context.Background(), "colormatch-api", cfg.OTelEndpoint, cfg.OTelEnabled)
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
	} else {
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := shutdownTelemetry(flushCtx); err != nil {
				logger.Warn("failed to flush traces", zap.Error(err))
			}
		}()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	cache, closeCache := initCache(ctx, cfg, logger)
	defer closeCache()
	repo := repository.NewAnalysisRepository(cache, cfg.CacheTTL, logger)

	analyzer, closeAnalyzer := initAnalyzer(cfg, logger)
	defer closeAnalyzer()

	uc := usecase.NewAnalysisUseCase(repo, analyzer, logger, usecase.Options{
		MaxImageDimension: cfg.MaxImageDimension,
		AnalysisTimeout:   cfg.AnalysisTimeout,
	})

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.AccessLog(logger), gin.Recovery())
	r.MaxMultipartMemory = cfg.MaxUploadBytes
	handlers.RegisterRoutes(r, uc, cfg.MaxUploadBytes)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("colormatch API listening", zap.String("addr", cfg.HTTPAddr), zap.String("env", cfg.Env))
	if err := serveHTTPServer(server, cfg.ShutdownTimeout, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

// initCache connects to Redis when an address is configured and falls back to an
// in-process cache otherwise.
func initCache(ctx context.Context, cfg config.Config, logger *zap.Logger) (repository.Cache, func()) {
	if cfg.RedisAddr == "" {
		logger.Info("no redis address configured, using in-memory cache")
		return repository.NewMemoryCache(), func() {}
	}

	redisCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(redisCtx).Err(); err != nil {
		logger.Fatal("redis connection failed", zap.Error(err), zap.String("addr", cfg.RedisAddr))
	}
	return repository.NewRedisCache(client), func() {
		if err := client.Close(); err != nil {
			logger.Warn("failed to close redis client", zap.Error(err))
		}
	}
}

// initAnalyzer dials the remote analyzer when configured; otherwise photos are
// analysed in-process. The dial is lazy: an analyzer that is down at boot only makes
// individual requests fall back to quick analysis.
func initAnalyzer(cfg config.Config, logger *zap.Logger) (imageprocessor.Client, func()) {
	if cfg.AnalyzerAddr == "" {
		return imageprocessor.NewLocalClient(cfg.MaxImageDimension), func() {}
	}

	client, conn, err := grpcclient.DialAnalyzer(cfg.AnalyzerAddr, logger)
	if err != nil {
		logger.Warn("invalid analyzer address, analysing in-process", zap.Error(err), zap.String("addr", cfg.AnalyzerAddr))
		return imageprocessor.NewLocalClient(cfg.MaxImageDimension), func() {}
	}
	return client, func() {
		if err := conn.Close(); err != nil {
			logger.Warn("failed to close analyzer connection", zap.Error(err))
		}
	}
}

func serveHTTPServer(server *http.Server, shutdownTimeout time.Duration, logger *zap.Logger) error {
	return serveHTTPServerWithOptions(server, shutdownTimeout, logger, nil, nil)
}

func serveHTTPServerWithOptions(server *http.Server, shutdownTimeout time.Duration, logger *zap.Logger, listener net.Listener, signalCh <-chan os.Signal) error {
	errCh := make(chan error, 1)
	go func() {
		var err error
		if listener != nil {
			err = server.Serve(listener)
		} else {
			err = server.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	var (
		sigCh       <-chan os.Signal
		stopSignals func()
	)

	if signalCh != nil {
		sigCh = signalCh
		stopSignals = func() {}
	} else {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		sigCh = ch
		stopSignals = func() {
			signal.Stop(ch)
		}
	}
	defer stopSignals()

	select {
	case err := <-errCh:
		return err
	case sig, ok := <-sigCh:
		if !ok {
			return <-errCh
		}
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return <-errCh
	}
}
