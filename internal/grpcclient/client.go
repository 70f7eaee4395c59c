package grpcclient

import (
	"context"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/example/colormatch/internal/analyzerrpc"
	"github.com/example/colormatch/internal/imageprocessor"
	"github.com/example/colormatch/internal/logging"
	"github.com/example/colormatch/internal/undertone"
)

// DefaultDialOptions returns the dial options used for the analyzer connection. Outbound
// calls carry trace context when a TracerProvider is registered.
func DefaultDialOptions() []grpc.DialOption {
	return []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}
}

// DialAnalyzer returns a client for the remote analyzer service. The connection is
// established lazily, so an unreachable analyzer only fails individual calls.
func DialAnalyzer(addr string, logger *zap.Logger, opts ...grpc.DialOption) (imageprocessor.Client, *grpc.ClientConn, error) {
	conn, err := grpc.NewClient(addr, append(DefaultDialOptions(), opts...)...)
	if err != nil {
		wrapped := logging.NewOperationError("grpcclient.dial_analyzer", "", err)
		logger.Error("failed to dial analyzer", zap.Error(wrapped), zap.String("addr", addr))
		return nil, nil, wrapped
	}
	return NewClient(conn, logger), conn, nil
}

// NewClient builds an analyzer client over an existing connection.
func NewClient(conn grpc.ClientConnInterface, logger *zap.Logger) imageprocessor.Client {
	return &grpcAnalyzer{conn: conn, logger: logger.Named("analyzer_client")}
}

type grpcAnalyzer struct {
	conn   grpc.ClientConnInterface
	logger *zap.Logger
}

func (g *grpcAnalyzer) Analyze(ctx context.Context, imageBytes []byte) (*undertone.Analysis, error) {
	resp := new(structpb.Struct)
	if err := g.conn.Invoke(ctx, analyzerrpc.AnalyzeMethod, wrapperspb.Bytes(imageBytes), resp); err != nil {
		wrapped := logging.NewOperationError("grpcclient.analyze", "", err)
		g.logger.Warn("analyzer call failed", zap.Error(wrapped), zap.Int("image_bytes", len(imageBytes)))
		return nil, wrapped
	}

	analysis, err := analyzerrpc.FromStruct(resp)
	if err != nil {
		return nil, logging.NewOperationError("grpcclient.decode_analysis", "", err)
	}
	analysis.Method = undertone.MethodRemote
	return analysis, nil
}
