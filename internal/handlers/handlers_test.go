package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/colormatch/internal/repository"
	"github.com/example/colormatch/internal/undertone"
	"github.com/example/colormatch/internal/usecase"
)

type stubAnalyzer struct {
	result undertone.Analysis
}

func (s *stubAnalyzer) Analyze(ctx context.Context, imageBytes []byte) (*undertone.Analysis, error) {
	result := s.result
	return &result, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewAnalysisRepository(repository.NewMemoryCache(), time.Minute, zap.NewNop())
	analyzer := &stubAnalyzer{result: undertone.Analysis{
		RGB:        undertone.RGB{R: 200, G: 150, B: 100},
		Tone:       undertone.Warm,
		Confidence: 0.8,
		ColorTemp:  3301,
		Quality:    undertone.QualityMedium,
		Samples:    628,
		Method:     undertone.MethodPrecise,
	}}
	uc := usecase.NewAnalysisUseCase(store, analyzer, zap.NewNop(), usecase.Options{MaxImageDimension: 1024, AnalysisTimeout: time.Second})

	router := gin.New()
	RegisterRoutes(router, uc, MaxUploadSize)
	return router
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func get(router *gin.Engine, target string) *httptest.ResponseRecorder {
	return serve(router, httptest.NewRequest(http.MethodGet, target, nil))
}

func postJSON(t *testing.T, router *gin.Engine, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/analyze-skin-tone", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return serve(router, req)
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.Unmarshal(resp.Body.Bytes(), into); err != nil {
		t.Fatalf("decode body %q: %v", resp.Body.String(), err)
	}
}

func pngDataURL(t *testing.T) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 150, B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestAnalyzeRejectsLargeUpload(t *testing.T) {
	router := newTestRouter(t)
	body, contentType := buildMultipartBody(t, "image/png", bytes.Repeat([]byte("a"), MaxUploadSize+1))

	req := httptest.NewRequest(http.MethodPost, "/api/analyze-skin-tone", body)
	req.Header.Set("Content-Type", contentType)

	if resp := serve(router, req); resp.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status %d, got %d", http.StatusRequestEntityTooLarge, resp.Code)
	}
}

func TestAnalyzeRejectsUnsupportedContentType(t *testing.T) {
	router := newTestRouter(t)
	body, contentType := buildMultipartBody(t, "text/plain", []byte("hello"))

	req := httptest.NewRequest(http.MethodPost, "/api/analyze-skin-tone", body)
	req.Header.Set("Content-Type", contentType)

	if resp := serve(router, req); resp.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected status %d, got %d", http.StatusUnsupportedMediaType, resp.Code)
	}
}

func TestAnalyzeJSONAndFetchResult(t *testing.T) {
	router := newTestRouter(t)

	resp := postJSON(t, router, analyzeRequest{Image: pngDataURL(t)})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var got analyzeResponse
	decodeBody(t, resp, &got)
	if got.Tone != "warm" || got.R != 200 || got.Hex != "#c89664" || got.RequestID == "" {
		t.Fatalf("unexpected response: %+v", got)
	}

	resp = get(router, "/api/analyses/"+got.RequestID)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var stored struct {
		Analysis analyzeResponse `json:"analysis"`
	}
	decodeBody(t, resp, &stored)
	if stored.Analysis.RequestID != got.RequestID || stored.Analysis.Tone != "warm" {
		t.Fatalf("unexpected stored analysis: %+v", stored.Analysis)
	}
}

func TestAnalyzeMultipartQuick(t *testing.T) {
	router := newTestRouter(t)
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(pngDataURL(t), "data:image/png;base64,"))
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="face.png"`)
	header.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	part.Write(raw)
	if err := writer.WriteField("method", "quick"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/analyze-skin-tone", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := serve(router, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var got analyzeResponse
	decodeBody(t, resp, &got)
	if got.Method != "quick" || got.Samples != 100 {
		t.Fatalf("expected quick analysis, got %+v", got)
	}
}

func TestAnalyzeRequiresImage(t *testing.T) {
	router := newTestRouter(t)

	if resp := postJSON(t, router, analyzeRequest{}); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/analyze-skin-tone", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	if resp := serve(router, req); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed JSON, got %d", resp.Code)
	}
}

func TestAnalyzeUndecodableImageReturnsFallback(t *testing.T) {
	router := newTestRouter(t)

	resp := postJSON(t, router, analyzeRequest{Image: base64.StdEncoding.EncodeToString([]byte("not a picture"))})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var got analyzeResponse
	decodeBody(t, resp, &got)
	if got.Quality != "fallback" || got.Tone != "neutral" || got.Error == "" {
		t.Fatalf("unexpected fallback response: %+v", got)
	}
}

func TestAnalyzeNonBase64PayloadReturnsFallback(t *testing.T) {
	router := newTestRouter(t)

	resp := postJSON(t, router, analyzeRequest{Image: "data:image/png;base64,%%% not base64 %%%"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var got analyzeResponse
	decodeBody(t, resp, &got)
	if got.Quality != "fallback" || got.Tone != "neutral" || !strings.Contains(got.Error, "not base64") {
		t.Fatalf("unexpected fallback response: %+v", got)
	}
	if got.RequestID == "" {
		t.Fatal("expected a request id for the fallback analysis")
	}
	if resp := get(router, "/api/analyses/"+got.RequestID); resp.Code != http.StatusOK {
		t.Fatalf("expected the fallback analysis to be retrievable, got %d", resp.Code)
	}

	if resp := postJSON(t, router, analyzeRequest{Image: "data:image/png;base64,"}); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an empty data URL, got %d", resp.Code)
	}
}

func TestAnalyzeRejectsUnknownMethod(t *testing.T) {
	router := newTestRouter(t)

	if resp := postJSON(t, router, analyzeRequest{Image: pngDataURL(t), Method: "slow"}); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestGetAnalysisNotFound(t *testing.T) {
	if resp := get(newTestRouter(t), "/api/analyses/missing"); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestLookupEndpoints(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		target string
		status int
		want   string
	}{
		{"/health", http.StatusOK, `"status":"ok"`},
		{"/api/tones/warm", http.StatusOK, `"title":"Warm Undertone"`},
		{"/api/tones/olive", http.StatusBadRequest, "unknown undertone"},
		{"/api/recommendations?tone=cool", http.StatusOK, `"name":"Royal Blue Blazer"`},
		{"/api/recommendations", http.StatusBadRequest, "unknown undertone"},
		{"/api/categories?gender=female", http.StatusOK, `"id":"kurtas"`},
		{"/api/categories?gender=robot", http.StatusBadRequest, "unknown gender"},
		{"/api/outfits?tone=warm&gender=male&categories=shirts,jeans", http.StatusOK, `"name":"Classic Casual Combo"`},
		{"/api/outfits?tone=warm&gender=male&categories=tshirts", http.StatusOK, `"outfits":[]`},
		{"/api/outfits?tone=warm&gender=male&categories=hats", http.StatusBadRequest, "unknown category"},
		{"/api/metrics", http.StatusOK, `"total_analyses":0`},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			resp := get(router, tt.target)
			if resp.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, resp.Code, resp.Body.String())
			}
			if !strings.Contains(resp.Body.String(), tt.want) {
				t.Fatalf("expected body to contain %s, got %s", tt.want, resp.Body.String())
			}
		})
	}
}

func buildMultipartBody(t *testing.T, contentType string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="upload"`)
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to create multipart part: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("failed to write payload: %v", err)
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	return body, writer.FormDataContentType()
}
