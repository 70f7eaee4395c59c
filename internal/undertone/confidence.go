package undertone

import "math"

// Confidence scores an analysis from the spread of the skin samples, how many there
// were, and how far the representative colour sits from the decision thresholds.
// The result lies in 0.5..1.0; fewer than 100 samples always score 0.6.
func Confidence(pixels []RGB, c RGB, tone Tone) float64 {
	if len(pixels) < minSkinPixels {
		return 0.6
	}

	points := toVecs(pixels)
	avg := mean(points)
	var variance vec3
	for _, p := range points {
		for ch := 0; ch < 3; ch++ {
			d := p[ch] - avg[ch]
			variance[ch] += d * d
		}
	}
	var spread float64
	for ch := 0; ch < 3; ch++ {
		spread += math.Sqrt(variance[ch] / float64(len(points)))
	}
	consistency := 1 - (spread/3)/255

	sampleScore := math.Min(1, float64(len(pixels))/2000)

	rg := float64(c.R) / math.Max(float64(c.G), 1)
	rb := float64(c.R) / math.Max(float64(c.B), 1)
	var certainty float64
	switch tone {
	case Warm:
		certainty = clamp01((rg-1)*2 + (rb-1)*2)
	case Cool:
		certainty = clamp01((1-rb)*2 + (1 - rg))
	default:
		certainty = 1 - math.Abs(rg-1) - math.Abs(rb-1)
	}

	score := 0.4*consistency + 0.3*sampleScore + 0.3*certainty
	return math.Max(0.5, math.Min(1, score))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
