package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/example/colormatch/internal/catalog"
	"github.com/example/colormatch/internal/imageprocessor"
	"github.com/example/colormatch/internal/repository"
	"github.com/example/colormatch/internal/undertone"
	"github.com/example/colormatch/internal/usecase"
)

// MaxUploadSize is the default limit for uploaded photos.
const MaxUploadSize = 5 << 20

// multipartOverhead leaves room for form boundaries and headers around the photo.
const multipartOverhead = 64 << 10

type analyzeRequest struct {
	Image  string `json:"image"`
	Method string `json:"method"`
}

type analyzeResponse struct {
	RequestID  string  `json:"request_id"`
	R          int     `json:"r"`
	G          int     `json:"g"`
	B          int     `json:"b"`
	Hex        string  `json:"hex"`
	Tone       string  `json:"tone"`
	Confidence float64 `json:"confidence"`
	ColorTemp  float64 `json:"color_temp"`
	Quality    string  `json:"analysis_quality"`
	Samples    int     `json:"samples"`
	Method     string  `json:"method"`
	Error      string  `json:"error,omitempty"`
}

func newAnalyzeResponse(requestID string, a *undertone.Analysis) analyzeResponse {
	return analyzeResponse{
		RequestID:  requestID,
		R:          a.RGB.R,
		G:          a.RGB.G,
		B:          a.RGB.B,
		Hex:        a.RGB.Hex(),
		Tone:       string(a.Tone),
		Confidence: a.Confidence,
		ColorTemp:  a.ColorTemp,
		Quality:    string(a.Quality),
		Samples:    a.Samples,
		Method:     string(a.Method),
		Error:      a.Error,
	}
}

// RegisterRoutes wires the HTTP handlers to the Gin router. A non-positive maxUpload
// selects MaxUploadSize.
func RegisterRoutes(router *gin.Engine, uc *usecase.AnalysisUseCase, maxUpload int64) {
	if maxUpload <= 0 {
		maxUpload = MaxUploadSize
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.POST("/analyze-skin-tone", analyzeHandler(uc, maxUpload))

	api.GET("/analyses/:id", func(c *gin.Context) {
		record, err := uc.GetResult(c.Request.Context(), c.Param("id"))
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "analysis not found"})
			return
		}
		if err != nil {
			internalError(c, err)
			return
		}
		resp := newAnalyzeResponse(record.RequestID, &record.Analysis)
		c.JSON(http.StatusOK, gin.H{"analysis": resp, "created_at": record.CreatedAt})
	})

	api.GET("/tones/:tone", func(c *gin.Context) {
		tone, ok := parseTone(c, c.Param("tone"))
		if !ok {
			return
		}
		profile, err := uc.ToneProfile(tone)
		if err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusOK, profile)
	})

	api.GET("/recommendations", func(c *gin.Context) {
		tone, ok := parseTone(c, c.Query("tone"))
		if !ok {
			return
		}
		rec, err := uc.Recommend(tone)
		if err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	})

	api.GET("/categories", func(c *gin.Context) {
		gender, ok := parseGender(c, c.Query("gender"))
		if !ok {
			return
		}
		categories, err := uc.Categories(gender)
		if err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"gender": gender, "categories": categories})
	})

	api.GET("/outfits", func(c *gin.Context) {
		tone, ok := parseTone(c, c.Query("tone"))
		if !ok {
			return
		}
		gender, ok := parseGender(c, c.Query("gender"))
		if !ok {
			return
		}
		var labels []string
		for _, v := range c.QueryArray("categories") {
			labels = append(labels, strings.Split(v, ",")...)
		}
		picked, err := catalog.ParseCategories(labels)
		if err != nil {
			badRequest(c, err)
			return
		}

		outfits, err := uc.Outfits(tone, gender, picked)
		if err != nil {
			badRequest(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"tone": tone, "gender": gender, "categories": picked, "outfits": outfits})
	})

	api.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, uc.MetricsSummary())
	})
}

func analyzeHandler(uc *usecase.AnalysisUseCase, maxUpload int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			data       []byte
			method     string
			payloadErr error
			ok         bool
		)
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			data, ok = readMultipartImage(c, maxUpload)
			method = c.PostForm("method")
		} else {
			data, method, ok, payloadErr = readJSONImage(c, maxUpload)
		}
		if !ok {
			return
		}

		m, err := usecase.ParseMethod(method)
		if err != nil {
			badRequest(c, err)
			return
		}

		if payloadErr != nil {
			requestID, analysis := uc.Fallback(c.Request.Context(), payloadErr)
			c.JSON(http.StatusOK, newAnalyzeResponse(requestID, analysis))
			return
		}

		requestID, analysis, err := uc.Analyze(c.Request.Context(), data, m)
		if errors.Is(err, imageprocessor.ErrEmptyImage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image is required"})
			return
		}
		if err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusOK, newAnalyzeResponse(requestID, analysis))
	}
}

func readMultipartImage(c *gin.Context, maxUpload int64) ([]byte, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUpload+multipartOverhead)

	file, err := c.FormFile("image")
	if err != nil {
		if tooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds upload limit"})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return nil, false
	}
	if file.Size > maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds upload limit"})
		return nil, false
	}
	if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "unsupported image content type"})
		return nil, false
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to open image"})
		return nil, false
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		internalError(c, err)
		return nil, false
	}
	return data, true
}

// readJSONImage reads a base64 or data URL payload. A payload that is present but not
// base64 is reported through the error result so the caller can answer with the
// fallback analysis.
func readJSONImage(c *gin.Context, maxUpload int64) ([]byte, string, bool, error) {
	// base64 inflates the payload by a third.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUpload*4/3+multipartOverhead)

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if tooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds upload limit"})
			return nil, "", false, nil
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return nil, "", false, nil
	}
	if strings.TrimSpace(req.Image) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image is required"})
		return nil, "", false, nil
	}

	data, err := imageprocessor.DecodeDataURL(req.Image)
	if errors.Is(err, imageprocessor.ErrInvalidImage) {
		return nil, req.Method, true, err
	}
	if err != nil {
		badRequest(c, err)
		return nil, "", false, nil
	}
	if int64(len(data)) > maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds upload limit"})
		return nil, "", false, nil
	}
	return data, req.Method, true, nil
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}

func parseTone(c *gin.Context, raw string) (undertone.Tone, bool) {
	tone, err := undertone.ParseTone(raw)
	if err != nil {
		badRequest(c, err)
		return "", false
	}
	return tone, true
}

func parseGender(c *gin.Context, raw string) (catalog.Gender, bool) {
	gender, err := catalog.ParseGender(raw)
	if err != nil {
		badRequest(c, err)
		return "", false
	}
	return gender, true
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
