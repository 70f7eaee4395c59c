package usecase

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/example/colormatch/internal/catalog"
	"github.com/example/colormatch/internal/imageprocessor"
	"github.com/example/colormatch/internal/logging"
	"github.com/example/colormatch/internal/repository"
	"github.com/example/colormatch/internal/undertone"
)

type stubAnalyzer struct {
	result *undertone.Analysis
	err    error
	block  bool
	calls  int
}

func (s *stubAnalyzer) Analyze(ctx context.Context, imageBytes []byte) (*undertone.Analysis, error) {
	s.calls++
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	result := *s.result
	return &result, nil
}

// decodedAnalyzer records the images it receives through AnalyzeImage.
type decodedAnalyzer struct {
	stubAnalyzer
	images []image.Image
}

func (d *decodedAnalyzer) AnalyzeImage(ctx context.Context, img image.Image) (*undertone.Analysis, error) {
	d.images = append(d.images, img)
	result := *d.result
	return &result, nil
}

type stubStore struct {
	saveErr error
	findErr error
	saved   []*repository.AnalysisRecord
}

func (s *stubStore) Save(ctx context.Context, record *repository.AnalysisRecord) error {
	s.saved = append(s.saved, record)
	return s.saveErr
}

func (s *stubStore) FindByRequestID(ctx context.Context, requestID string) (*repository.AnalysisRecord, error) {
	return nil, s.findErr
}

func (s *stubStore) FindByHash(ctx context.Context, requestID, hash string) (*repository.AnalysisRecord, error) {
	return nil, s.findErr
}

func encodePNG(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func skinPhoto(t *testing.T) []byte {
	return encodePNG(t, 40, 40, color.NRGBA{R: 200, G: 150, B: 100, A: 255})
}

func newTestUseCase(store AnalysisStore, analyzer imageprocessor.Client) *AnalysisUseCase {
	return NewAnalysisUseCase(store, analyzer, zap.NewNop(), Options{MaxImageDimension: 1024, AnalysisTimeout: time.Second})
}

func memoryStore() *repository.AnalysisRepository {
	return repository.NewAnalysisRepository(repository.NewMemoryCache(), time.Minute, zap.NewNop())
}

var primaryResult = undertone.Analysis{
	RGB:        undertone.RGB{R: 190, G: 140, B: 105},
	Tone:       undertone.Warm,
	Confidence: 0.82,
	ColorTemp:  3400,
	Quality:    undertone.QualityHigh,
	Samples:    1500,
	Method:     undertone.MethodPrecise,
}

func TestAnalyzeUsesPrimaryAndCachesByHash(t *testing.T) {
	analyzer := &stubAnalyzer{result: &primaryResult}
	uc := newTestUseCase(memoryStore(), analyzer)
	photo := skinPhoto(t)

	firstID, first, err := uc.Analyze(context.Background(), photo, MethodAuto)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if diff := cmp.Diff(primaryResult, *first); diff != "" {
		t.Fatalf("analysis mismatch (-want +got):\n%s", diff)
	}

	secondID, second, err := uc.Analyze(context.Background(), photo, MethodAuto)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if analyzer.calls != 1 {
		t.Fatalf("expected the repeated photo to be served from cache, analyzer called %d times", analyzer.calls)
	}
	if firstID == secondID {
		t.Fatal("expected a fresh request id for the cached answer")
	}
	if diff := cmp.Diff(primaryResult, *second); diff != "" {
		t.Fatalf("cached analysis mismatch (-want +got):\n%s", diff)
	}

	for _, id := range []string{firstID, secondID} {
		record, err := uc.GetResult(context.Background(), id)
		if err != nil {
			t.Fatalf("GetResult(%s): %v", id, err)
		}
		if record.RequestID != id || record.Analysis.Tone != undertone.Warm {
			t.Fatalf("unexpected record: %+v", record)
		}
	}

	summary := uc.MetricsSummary()
	if summary.TotalAnalyses != 2 || summary.CacheHits != 1 || summary.CacheHitRate != 0.5 {
		t.Fatalf("unexpected metrics: %+v", summary)
	}
	if summary.ToneCounts[undertone.Warm] != 2 || summary.ToneCounts[undertone.Cool] != 0 {
		t.Fatalf("unexpected tone counts: %+v", summary.ToneCounts)
	}
}

func TestAnalyzeFallsBackToQuickHeuristic(t *testing.T) {
	analyzer := &stubAnalyzer{err: errors.New("analyzer unavailable")}
	uc := newTestUseCase(memoryStore(), analyzer)
	photo := skinPhoto(t)

	_, analysis, err := uc.Analyze(context.Background(), photo, MethodAuto)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if analysis.Method != undertone.MethodQuick || analysis.Tone != undertone.Warm || analysis.Samples != 100 {
		t.Fatalf("expected quick warm analysis, got %+v", analysis)
	}

	if _, _, err := uc.Analyze(context.Background(), photo, MethodAuto); err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if analyzer.calls != 2 {
		t.Fatalf("fallback answers must not be cached by hash, analyzer called %d times", analyzer.calls)
	}
	if got := uc.MetricsSummary().PrimaryFailures; got != 2 {
		t.Fatalf("expected 2 primary failures, got %d", got)
	}
}

func TestAnalyzeTimesOutPrimary(t *testing.T) {
	analyzer := &stubAnalyzer{block: true}
	uc := NewAnalysisUseCase(memoryStore(), analyzer, zap.NewNop(), Options{MaxImageDimension: 1024, AnalysisTimeout: 10 * time.Millisecond})

	_, analysis, err := uc.Analyze(context.Background(), skinPhoto(t), MethodAuto)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if analysis.Method != undertone.MethodQuick {
		t.Fatalf("expected quick fallback after timeout, got %s", analysis.Method)
	}
}

func TestAnalyzePassesDecodedImageToLocalAnalyzer(t *testing.T) {
	analyzer := &decodedAnalyzer{stubAnalyzer: stubAnalyzer{result: &primaryResult}}
	uc := newTestUseCase(memoryStore(), analyzer)

	_, analysis, err := uc.Analyze(context.Background(), skinPhoto(t), MethodAuto)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if analyzer.calls != 0 {
		t.Fatalf("expected the encoded bytes not to be re-sent, got %d Analyze calls", analyzer.calls)
	}
	if len(analyzer.images) != 1 || analyzer.images[0].Bounds().Dx() != 40 {
		t.Fatalf("expected one decoded 40px image, got %d", len(analyzer.images))
	}
	if analysis.Method != undertone.MethodPrecise {
		t.Fatalf("unexpected analysis: %+v", analysis)
	}
}

func TestAnalyzeTimeoutBoundsInProcessAnalysis(t *testing.T) {
	uc := NewAnalysisUseCase(memoryStore(), imageprocessor.NewLocalClient(1024), zap.NewNop(), Options{MaxImageDimension: 1024, AnalysisTimeout: time.Nanosecond})

	_, analysis, err := uc.Analyze(context.Background(), skinPhoto(t), MethodAuto)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if analysis.Method != undertone.MethodQuick {
		t.Fatalf("expected quick fallback once the deadline passed, got %s", analysis.Method)
	}
	if got := uc.MetricsSummary().PrimaryFailures; got != 1 {
		t.Fatalf("expected 1 primary failure, got %d", got)
	}
}

func TestAnalyzeQuickSkipsPrimary(t *testing.T) {
	analyzer := &stubAnalyzer{result: &primaryResult}
	uc := newTestUseCase(memoryStore(), analyzer)

	_, analysis, err := uc.Analyze(context.Background(), skinPhoto(t), MethodQuick)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if analyzer.calls != 0 {
		t.Fatalf("expected primary analyzer to be skipped, got %d calls", analyzer.calls)
	}
	if analysis.Method != undertone.MethodQuick || math.Abs(analysis.Confidence-0.71) > 1e-9 {
		t.Fatalf("unexpected quick analysis: %+v", analysis)
	}
}

func TestAnalyzeUndecodableImageReturnsFallback(t *testing.T) {
	analyzer := &stubAnalyzer{result: &primaryResult}
	uc := newTestUseCase(memoryStore(), analyzer)

	requestID, analysis, err := uc.Analyze(context.Background(), []byte("definitely not a photo"), MethodAuto)
	if err != nil {
		t.Fatalf("expected fallback analysis, got error: %v", err)
	}
	if requestID == "" {
		t.Fatal("expected a request id")
	}
	if analysis.Quality != undertone.QualityFallback || analysis.Tone != undertone.Neutral || analysis.Error == "" {
		t.Fatalf("unexpected fallback analysis: %+v", analysis)
	}
	if analyzer.calls != 0 {
		t.Fatalf("expected analyzer to be skipped, got %d calls", analyzer.calls)
	}
	if got := uc.MetricsSummary().Fallbacks; got != 1 {
		t.Fatalf("expected 1 fallback, got %d", got)
	}
}

func TestFallbackRecordsAnalysis(t *testing.T) {
	uc := newTestUseCase(memoryStore(), &stubAnalyzer{result: &primaryResult})

	requestID, analysis := uc.Fallback(context.Background(), imageprocessor.ErrInvalidImage)
	if analysis.Quality != undertone.QualityFallback || analysis.Error != imageprocessor.ErrInvalidImage.Error() {
		t.Fatalf("unexpected fallback analysis: %+v", analysis)
	}
	record, err := uc.GetResult(context.Background(), requestID)
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if record.ImageHash != "" || record.Analysis.Tone != undertone.Neutral {
		t.Fatalf("unexpected stored record: %+v", record)
	}
	if got := uc.MetricsSummary().Fallbacks; got != 1 {
		t.Fatalf("expected 1 fallback, got %d", got)
	}
}

func TestAnalyzeEmptyPayload(t *testing.T) {
	uc := newTestUseCase(memoryStore(), &stubAnalyzer{result: &primaryResult})

	_, _, err := uc.Analyze(context.Background(), nil, MethodAuto)
	if !errors.Is(err, imageprocessor.ErrEmptyImage) {
		t.Fatalf("expected ErrEmptyImage, got %v", err)
	}
	var opErr *logging.OperationError
	if !errors.As(err, &opErr) || opErr.Operation != "usecase.analyze" {
		t.Fatalf("expected usecase.analyze OperationError, got %v", err)
	}
}

func TestAnalyzeSurvivesCacheFailures(t *testing.T) {
	store := &stubStore{saveErr: errors.New("redis down"), findErr: errors.New("redis down")}
	uc := newTestUseCase(store, &stubAnalyzer{result: &primaryResult})

	_, analysis, err := uc.Analyze(context.Background(), skinPhoto(t), MethodAuto)
	if err != nil {
		t.Fatalf("cache failures must not fail analysis: %v", err)
	}
	if analysis.Tone != undertone.Warm {
		t.Fatalf("unexpected analysis: %+v", analysis)
	}
	if len(store.saved) != 1 || store.saved[0].ImageHash == "" {
		t.Fatalf("expected one save attempt keyed by hash, got %+v", store.saved)
	}
}

func TestGetResultNotFound(t *testing.T) {
	uc := newTestUseCase(memoryStore(), &stubAnalyzer{result: &primaryResult})

	if _, err := uc.GetResult(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestParseMethod(t *testing.T) {
	tests := map[string]Method{"": MethodAuto, "auto": MethodAuto, " Quick ": MethodQuick}
	for in, want := range tests {
		got, err := ParseMethod(in)
		if err != nil || got != want {
			t.Errorf("ParseMethod(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseMethod("slow"); !errors.Is(err, ErrUnknownMethod) {
		t.Fatalf("expected ErrUnknownMethod, got %v", err)
	}
}

func TestRecommend(t *testing.T) {
	uc := newTestUseCase(memoryStore(), &stubAnalyzer{result: &primaryResult})

	rec, err := uc.Recommend(undertone.Cool)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if rec.Title != "Cool Undertone" || rec.Palette.Primary[0].Name != "Royal Blue" {
		t.Fatalf("unexpected profile: %+v", rec.ToneProfile)
	}
	if len(rec.Products) != 4 || rec.Products[0].ID != 5 {
		t.Fatalf("unexpected products: %+v", rec.Products)
	}

	if _, err := uc.Recommend("olive"); !errors.Is(err, undertone.ErrUnknownTone) {
		t.Fatalf("expected ErrUnknownTone, got %v", err)
	}
}

func TestCategoriesAndOutfits(t *testing.T) {
	uc := newTestUseCase(memoryStore(), &stubAnalyzer{result: &primaryResult})

	if _, err := uc.Categories("other"); !errors.Is(err, catalog.ErrUnknownGender) {
		t.Fatalf("expected ErrUnknownGender, got %v", err)
	}
	outfits, err := uc.Outfits(undertone.Neutral, catalog.Female, []catalog.Category{catalog.Dresses})
	if err != nil {
		t.Fatalf("Outfits: %v", err)
	}
	if len(outfits) != 1 || outfits[0].Items[0].Color != "Forest Green" {
		t.Fatalf("unexpected outfits: %+v", outfits)
	}
}
