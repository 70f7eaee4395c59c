package usecase

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/colormatch/internal/imageprocessor"
	"github.com/example/colormatch/internal/logging"
	"github.com/example/colormatch/internal/repository"
	"github.com/example/colormatch/internal/undertone"
)

// ErrUnknownMethod is returned for an analysis method other than auto or quick.
var ErrUnknownMethod = errors.New("unknown analysis method")

// Method selects the analyzer used for a request.
type Method string

const (
	// MethodAuto runs the primary analyzer and falls back to the quick heuristic.
	MethodAuto Method = "auto"
	// MethodQuick runs only the quick heuristic.
	MethodQuick Method = "quick"
)

// ParseMethod converts a request label into a Method. An empty label means auto.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return MethodAuto, nil
	case MethodAuto, MethodQuick:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Options tunes an AnalysisUseCase.
type Options struct {
	MaxImageDimension int
	AnalysisTimeout   time.Duration
}

// AnalysisUseCase encapsulates the skin tone analysis flow.
type AnalysisUseCase struct {
	store    AnalysisStore
	analyzer imageprocessor.Client
	logger   *zap.Logger
	opts     Options
	metrics  *metrics
	now      func() time.Time
}

// NewAnalysisUseCase constructs a new use case instance.
func NewAnalysisUseCase(store AnalysisStore, analyzer imageprocessor.Client, logger *zap.Logger, opts Options) *AnalysisUseCase {
	return &AnalysisUseCase{
		store:    store,
		analyzer: analyzer,
		logger:   logger.Named("analysis_usecase"),
		opts:     opts,
		metrics:  newMetrics(),
		now:      time.Now,
	}
}

// Analyze classifies the skin undertone of one photo. Photos that cannot be decoded
// produce the fallback analysis rather than an error; only an empty payload fails.
func (uc *AnalysisUseCase) Analyze(ctx context.Context, imageBytes []byte, method Method) (string, *undertone.Analysis, error) {
	requestID := uuid.NewString()
	opLogger := logging.WithOperation(uc.logger, "usecase.analyze", requestID)
	start := uc.now()

	if len(imageBytes) == 0 {
		return "", nil, logging.NewOperationError("usecase.analyze", requestID, imageprocessor.ErrEmptyImage)
	}

	hash := imageHash(imageBytes)
	if method == MethodAuto {
		if record, err := uc.store.FindByHash(ctx, requestID, hash); err == nil {
			analysis := record.Analysis
			uc.save(ctx, opLogger, requestID, "", analysis)
			uc.metrics.record(analysis, uc.now().Sub(start), outcomeCacheHit)
			opLogger.Debug("analysis served from cache", zap.String("source_request_id", record.RequestID))
			return requestID, &analysis, nil
		} else if !errors.Is(err, repository.ErrNotFound) {
			opLogger.Warn("cache lookup failed", zap.Error(err), zap.String("failed_operation", logging.OperationOf(err)))
		}
	}

	img, format, err := imageprocessor.Decode(imageBytes, uc.opts.MaxImageDimension)
	if err != nil {
		analysis := uc.fallback(ctx, opLogger, requestID, start, err)
		return requestID, &analysis, nil
	}
	opLogger.Debug("image decoded", zap.String("format", format), zap.Int("width", img.Bounds().Dx()), zap.Int("height", img.Bounds().Dy()))

	var analysis undertone.Analysis
	outcome := outcomeAnalyzed
	switch method {
	case MethodQuick:
		analysis = undertone.QuickAnalyze(img)
	default:
		analysis, err = uc.runPrimary(ctx, requestID, imageBytes, img)
		if err != nil {
			opLogger.Warn("primary analyzer failed, using quick heuristic", zap.Error(err))
			analysis = undertone.QuickAnalyze(img)
			outcome = outcomePrimaryFailed
		}
	}

	cacheHash := ""
	if method == MethodAuto && outcome == outcomeAnalyzed {
		cacheHash = hash
	}
	uc.save(ctx, opLogger, requestID, cacheHash, analysis)

	elapsed := uc.now().Sub(start)
	uc.metrics.record(analysis, elapsed, outcome)
	opLogger.Info("analysis completed",
		zap.String("tone", string(analysis.Tone)),
		zap.Float64("confidence", analysis.Confidence),
		zap.String("method", string(analysis.Method)),
		zap.Duration("elapsed", elapsed),
	)
	return requestID, &analysis, nil
}

// Fallback records the neutral fallback analysis for a payload that never reached
// image decoding, such as an upload body that is not base64.
func (uc *AnalysisUseCase) Fallback(ctx context.Context, cause error) (string, *undertone.Analysis) {
	requestID := uuid.NewString()
	opLogger := logging.WithOperation(uc.logger, "usecase.fallback", requestID)
	analysis := uc.fallback(ctx, opLogger, requestID, uc.now(), cause)
	return requestID, &analysis
}

func (uc *AnalysisUseCase) fallback(ctx context.Context, opLogger *zap.Logger, requestID string, start time.Time, cause error) undertone.Analysis {
	opLogger.Warn("image could not be decoded, returning fallback analysis", zap.Error(cause))
	analysis := undertone.FallbackAnalysis(cause)
	uc.save(ctx, opLogger, requestID, "", analysis)
	uc.metrics.record(analysis, uc.now().Sub(start), outcomeFallback)
	return analysis
}

// runPrimary hands the already decoded image to analyzers that accept one; remote
// analyzers receive the original bytes.
func (uc *AnalysisUseCase) runPrimary(ctx context.Context, requestID string, imageBytes []byte, img image.Image) (undertone.Analysis, error) {
	if uc.opts.AnalysisTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.opts.AnalysisTimeout)
		defer cancel()
	}
	var (
		result *undertone.Analysis
		err    error
	)
	if local, ok := uc.analyzer.(imageprocessor.ImageAnalyzer); ok {
		result, err = local.AnalyzeImage(ctx, img)
	} else {
		result, err = uc.analyzer.Analyze(ctx, imageBytes)
	}
	if err != nil {
		return undertone.Analysis{}, logging.NewOperationError("usecase.primary_analyze", requestID, err)
	}
	if result == nil {
		return undertone.Analysis{}, logging.NewOperationError("usecase.primary_analyze", requestID, errors.New("analyzer returned no result"))
	}
	return *result, nil
}

// save stores the analysis; cache failures never fail the request.
func (uc *AnalysisUseCase) save(ctx context.Context, opLogger *zap.Logger, requestID, hash string, analysis undertone.Analysis) {
	record := &repository.AnalysisRecord{
		RequestID: requestID,
		ImageHash: hash,
		Analysis:  analysis,
		CreatedAt: uc.now().UTC(),
	}
	if err := uc.store.Save(ctx, record); err != nil {
		opLogger.Warn("failed to cache analysis", zap.Error(err), zap.String("failed_operation", logging.OperationOf(err)))
	}
}

// GetResult retrieves a recent analysis by its request ID.
func (uc *AnalysisUseCase) GetResult(ctx context.Context, requestID string) (*repository.AnalysisRecord, error) {
	record, err := uc.store.FindByRequestID(ctx, requestID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logging.WithOperation(uc.logger, "usecase.get_result", requestID).Error("failed to read cached analysis", zap.Error(err))
		}
		return nil, err
	}
	return record, nil
}
