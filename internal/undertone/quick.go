package undertone

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// quickStride visits every 4th pixel of the sampled region.
const quickStride = 4

// Sample is the running average of skin-like pixels found by QuickSample.
type Sample struct {
	R, G, B float64
	Count   int
}

// QuickSample averages the skin-like pixels of the central half of img.
func QuickSample(img image.Image) Sample {
	b := img.Bounds()
	region := imaging.CropCenter(img, b.Dx()/2, b.Dy()/2)

	var sumR, sumG, sumB float64
	var count int
	for i := 0; i+2 < len(region.Pix); i += quickStride * 4 {
		r, g, bl := int(region.Pix[i]), int(region.Pix[i+1]), int(region.Pix[i+2])
		if !skinLike(r, g, bl) {
			continue
		}
		sumR += float64(r)
		sumG += float64(g)
		sumB += float64(bl)
		count++
	}
	if count == 0 {
		return Sample{}
	}
	n := float64(count)
	return Sample{R: sumR / n, G: sumG / n, B: sumB / n, Count: count}
}

func skinLike(r, g, b int) bool {
	return r > 60 && g > 40 && b > 20 && r > b && r > g-20
}

// ClassifyQuick scores averaged channel values on channel ratios, a crude warmth
// measure and brightness. Warm must strictly beat both other scores and cool must
// strictly beat neutral; everything else is neutral.
func ClassifyQuick(r, g, b float64) Tone {
	rg := r / math.Max(g, 1)
	rb := r / math.Max(b, 1)
	gb := g / math.Max(b, 1)

	var warm, cool, neutral int

	switch {
	case rg > 1.08 && rb > 1.12:
		warm += 3
	case rb < 0.92 && gb > 1.05:
		cool += 3
	default:
		neutral += 3
	}

	warmth := (r + g) - 2*b
	switch {
	case warmth > 30:
		warm += 2
	case warmth < -20:
		cool += 2
	default:
		neutral += 2
	}

	if (r+g+b)/3 > 150 {
		if r > g+10 {
			warm++
		} else if b > r+5 {
			cool++
		}
	}

	switch {
	case warm > cool && warm > neutral:
		return Warm
	case cool > neutral:
		return Cool
	default:
		return Neutral
	}
}

// QuickAnalyze runs the sampling heuristic over img. It never fails: a photo without
// skin-like pixels is reported as neutral.
func QuickAnalyze(img image.Image) Analysis {
	s := QuickSample(img)
	if s.Count == 0 {
		return Analysis{
			RGB:        DefaultRGB,
			Tone:       Neutral,
			Confidence: 0.7,
			ColorTemp:  ColorTemperature(DefaultRGB),
			Quality:    QualityLow,
			Method:     MethodQuick,
		}
	}

	rgb := RGB{R: int(math.Round(s.R)), G: int(math.Round(s.G)), B: int(math.Round(s.B))}
	return Analysis{
		RGB:        rgb,
		Tone:       ClassifyQuick(s.R, s.G, s.B),
		Confidence: math.Min(0.95, 0.7+float64(s.Count)/10000),
		ColorTemp:  ColorTemperature(rgb),
		Quality:    QualityFor(s.Count),
		Samples:    s.Count,
		Method:     MethodQuick,
	}
}
