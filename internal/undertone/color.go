package undertone

import "math"

const (
	defaultColorTemp = 5500.0
	minColorTemp     = 2000.0
	maxColorTemp     = 10000.0
)

// ColorTemperature estimates the correlated colour temperature of c in whole Kelvin
// using McCamy's approximation over CIE 1931 chromaticity. The result is clamped to
// 2000..10000; black reports 5500.
func ColorTemperature(c RGB) float64 {
	return math.Round(colorTemperature(c))
}

func colorTemperature(c RGB) float64 {
	x, y, z := c.color().Xyz()
	sum := x + y + z
	if sum == 0 {
		return defaultColorTemp
	}
	cx, cy := x/sum, y/sum
	if cy == 0.1858 {
		return defaultColorTemp
	}

	n := (cx - 0.3320) / (0.1858 - cy)
	cct := 449*n*n*n + 3525*n*n + 6823.3*n + 5520.33
	return math.Max(minColorTemp, math.Min(maxColorTemp, cct))
}

// voteLab is the Lab approximation the chroma vote thresholds are calibrated against:
// the sRGB->XYZ matrix applied to gamma-encoded channels, then the CIE Lab transfer
// against D65. It is not colorimetric Lab.
func voteLab(c RGB) (l, a, b float64) {
	r, g, bl := float64(c.R)/255, float64(c.G)/255, float64(c.B)/255
	x := r*0.4124 + g*0.3576 + bl*0.1805
	y := r*0.2126 + g*0.7152 + bl*0.0722
	z := r*0.0193 + g*0.1192 + bl*0.9505

	f := func(t float64) float64 {
		if t > 0.008856 {
			return math.Cbrt(t)
		}
		return 7.787*t + 16.0/116
	}
	fx, fy, fz := f(x/0.95047), f(y), f(z/1.08883)
	return 116*fy - 16, 500 * (fx - fy), 200 * (fy - fz)
}

// ClassifyPrecise votes on the undertone of a single representative colour. Channel
// ratios carry 40 points, hue 25, colour temperature 20, Lab chroma 15, and a
// brightness-dependent nudge 5. Ties resolve to warm, then cool.
func ClassifyPrecise(c RGB) Tone {
	r, g, b := float64(c.R), float64(c.G), float64(c.B)
	rg := r / math.Max(g, 1)
	rb := r / math.Max(b, 1)
	gb := g / math.Max(b, 1)

	col := c.color()
	hue, _, _ := col.Hsv()
	_, la, lb := voteLab(c)
	temp := colorTemperature(c)

	var warm, cool, neutral int

	switch {
	case rg > 1.08 && rb > 1.12:
		warm += 40
	case rb < 0.92 && gb > 1.05:
		cool += 40
	default:
		neutral += 40
	}

	switch {
	case (hue >= 10 && hue <= 60) || hue >= 300:
		warm += 25
	case hue >= 180 && hue <= 270:
		cool += 25
	default:
		neutral += 25
	}

	switch {
	case temp < 4500:
		warm += 20
	case temp > 6500:
		cool += 20
	default:
		neutral += 20
	}

	switch {
	case la > 5 && lb > 5:
		warm += 15
	case la < -2 && lb < 0:
		cool += 15
	default:
		neutral += 15
	}

	brightness := (r + g + b) / 3
	switch {
	case brightness > 150:
		if r > g+10 && r > b+15 {
			warm += 5
		} else if b > r+5 {
			cool += 5
		}
	case brightness < 100:
		if r-b > 20 {
			warm += 5
		} else if b-r > 10 {
			cool += 5
		}
	}

	best := max(warm, cool, neutral)
	switch best {
	case warm:
		return Warm
	case cool:
		return Cool
	default:
		return Neutral
	}
}
