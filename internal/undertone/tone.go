// Package undertone classifies the apparent skin undertone of a photo as warm, cool or
// neutral from sampled RGB values.
package undertone

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Tone is the undertone label that keys every downstream recommendation lookup.
type Tone string

const (
	Warm    Tone = "warm"
	Cool    Tone = "cool"
	Neutral Tone = "neutral"
)

// ErrUnknownTone is returned when a label is not one of the three undertones.
var ErrUnknownTone = errors.New("unknown undertone")

// Tones lists the undertones in presentation order.
func Tones() []Tone {
	return []Tone{Warm, Cool, Neutral}
}

// ParseTone converts a case-insensitive label into a Tone.
func ParseTone(s string) (Tone, error) {
	switch Tone(strings.ToLower(strings.TrimSpace(s))) {
	case Warm:
		return Warm, nil
	case Cool:
		return Cool, nil
	case Neutral:
		return Neutral, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTone, s)
}

// RGB is an 8-bit colour.
type RGB struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// DefaultRGB is reported when no skin pixels could be sampled.
var DefaultRGB = RGB{R: 120, G: 100, B: 80}

// Hex renders the colour as #rrggbb.
func (c RGB) Hex() string {
	return c.color().Hex()
}

func (c RGB) color() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Quality grades an analysis by how many skin samples backed it.
type Quality string

const (
	QualityHigh     Quality = "high"
	QualityMedium   Quality = "medium"
	QualityLow      Quality = "low"
	QualityFallback Quality = "fallback"
)

// QualityFor grades a sample count.
func QualityFor(samples int) Quality {
	switch {
	case samples > 1000:
		return QualityHigh
	case samples > 500:
		return QualityMedium
	default:
		return QualityLow
	}
}

// Method records which analyzer produced an Analysis.
type Method string

const (
	MethodPrecise  Method = "precise"
	MethodQuick    Method = "quick"
	MethodRemote   Method = "remote"
	MethodFallback Method = "fallback"
)

// Analysis is the outcome of classifying one photo.
type Analysis struct {
	RGB        RGB     `json:"rgb"`
	Tone       Tone    `json:"tone"`
	Confidence float64 `json:"confidence"`
	ColorTemp  float64 `json:"color_temp"`
	Quality    Quality `json:"analysis_quality"`
	Samples    int     `json:"samples"`
	Method     Method  `json:"method"`
	Error      string  `json:"error,omitempty"`
}

// FallbackAnalysis is the fixed answer for photos that could not be analysed at all.
func FallbackAnalysis(err error) Analysis {
	a := Analysis{
		RGB:        DefaultRGB,
		Tone:       Neutral,
		Confidence: 0.5,
		ColorTemp:  defaultColorTemp,
		Quality:    QualityFallback,
		Method:     MethodFallback,
	}
	if err != nil {
		a.Error = err.Error()
	}
	return a
}
