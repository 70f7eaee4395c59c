// Package analyzerrpc exposes the undertone analyzer over gRPC. Messages are the
// protobuf well-known types: the request is a BytesValue holding the encoded photo and
// the response is a Struct with the analysis fields.
package analyzerrpc

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/example/colormatch/internal/imageprocessor"
	"github.com/example/colormatch/internal/undertone"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "colormatch.analyzer.v1.Analyzer"
	// AnalyzeMethod is the full method path of the unary Analyze call.
	AnalyzeMethod = "/" + ServiceName + "/Analyze"
)

// AnalyzerServer is the server-side contract of the analyzer service.
type AnalyzerServer interface {
	Analyze(ctx context.Context, req *wrapperspb.BytesValue) (*structpb.Struct, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AnalyzerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Analyze", Handler: analyzeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "colormatch/analyzer/v1/analyzer.proto",
}

func analyzeHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AnalyzerServer).Analyze(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: AnalyzeMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AnalyzerServer).Analyze(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

// Register installs srv and a health service on s and marks both as serving.
func Register(s *grpc.Server, srv AnalyzerServer) *health.Server {
	s.RegisterService(&serviceDesc, srv)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(s, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return healthServer
}

// Server adapts an imageprocessor.Client to the gRPC contract.
type Server struct {
	client imageprocessor.Client
}

// NewServer wraps client.
func NewServer(client imageprocessor.Client) *Server {
	return &Server{client: client}
}

// Analyze classifies the photo carried in req.
func (s *Server) Analyze(ctx context.Context, req *wrapperspb.BytesValue) (*structpb.Struct, error) {
	if len(req.GetValue()) == 0 {
		return nil, status.Error(codes.InvalidArgument, "image payload is empty")
	}
	analysis, err := s.client.Analyze(ctx, req.GetValue())
	switch {
	case errors.Is(err, imageprocessor.ErrInvalidImage), errors.Is(err, imageprocessor.ErrEmptyImage):
		return nil, status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return nil, status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return nil, status.Error(codes.Canceled, err.Error())
	case err != nil:
		return nil, status.Error(codes.Internal, err.Error())
	}
	return ToStruct(analysis)
}

// ToStruct encodes an analysis using the same field names as the HTTP API.
func ToStruct(a *undertone.Analysis) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"r":                a.RGB.R,
		"g":                a.RGB.G,
		"b":                a.RGB.B,
		"tone":             string(a.Tone),
		"confidence":       a.Confidence,
		"color_temp":       a.ColorTemp,
		"analysis_quality": string(a.Quality),
		"samples":          a.Samples,
		"method":           string(a.Method),
	})
}

// FromStruct decodes an analysis produced by ToStruct.
func FromStruct(s *structpb.Struct) (*undertone.Analysis, error) {
	fields := s.GetFields()
	tone, err := undertone.ParseTone(fields["tone"].GetStringValue())
	if err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	return &undertone.Analysis{
		RGB: undertone.RGB{
			R: int(fields["r"].GetNumberValue()),
			G: int(fields["g"].GetNumberValue()),
			B: int(fields["b"].GetNumberValue()),
		},
		Tone:       tone,
		Confidence: fields["confidence"].GetNumberValue(),
		ColorTemp:  fields["color_temp"].GetNumberValue(),
		Quality:    undertone.Quality(fields["analysis_quality"].GetStringValue()),
		Samples:    int(fields["samples"].GetNumberValue()),
		Method:     undertone.Method(fields["method"].GetStringValue()),
	}, nil
}
