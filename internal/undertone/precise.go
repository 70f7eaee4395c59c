package undertone

import (
	"context"
	"image"

	"github.com/disintegration/imaging"
)

// DefaultSeed makes clustering reproducible across runs.
const DefaultSeed uint64 = 42

// PreciseAnalyzer performs the full colour analysis: skin masking over several colour
// spaces, sampling of facial regions, outlier trimming, clustering and a weighted
// multi-factor vote. The zero value is ready to use.
type PreciseAnalyzer struct {
	// Seed drives k-means initialisation; zero means DefaultSeed.
	Seed uint64
}

// Analyze classifies img. The central half of the frame stands in for the face.
func (a PreciseAnalyzer) Analyze(img image.Image) Analysis {
	analysis, _ := a.AnalyzeContext(context.Background(), img)
	return analysis
}

// AnalyzeContext is Analyze bounded by ctx. Cancellation is observed between stages and
// between clustering restarts, and is returned as ctx.Err().
func (a PreciseAnalyzer) AnalyzeContext(ctx context.Context, img image.Image) (Analysis, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	region := imaging.Crop(img, image.Rect(b.Min.X+w/4, b.Min.Y+h/4, b.Min.X+3*w/4, b.Min.Y+3*h/4))
	if region.Bounds().Empty() {
		region = imaging.Clone(img)
	}

	mask := buildSkinMask(region)
	pixels := extractSkinPixels(region, mask)
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}

	seed := a.Seed
	if seed == 0 {
		seed = DefaultSeed
	}
	rgb, err := dominantColor(ctx, pixels, seed)
	if err != nil {
		return Analysis{}, err
	}
	tone := ClassifyPrecise(rgb)

	return Analysis{
		RGB:        rgb,
		Tone:       tone,
		Confidence: Confidence(pixels, rgb, tone),
		ColorTemp:  ColorTemperature(rgb),
		Quality:    QualityFor(len(pixels)),
		Samples:    len(pixels),
		Method:     MethodPrecise,
	}, nil
}
