package undertone

import (
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// skinMask marks the pixels of an NRGBA image that pass the colour-space skin tests.
type skinMask struct {
	w, h int
	bits []bool
}

func (m *skinMask) at(x, y int) bool {
	return m.bits[y*m.w+x]
}

// buildSkinMask combines three 8-bit colour-space windows: YCrCb and HSV must agree,
// or the Lab window must match on its own. The result is cleaned with a 3x3 open
// followed by a 3x3 close.
func buildSkinMask(img *image.NRGBA) *skinMask {
	b := img.Bounds()
	m := &skinMask{w: b.Dx(), h: b.Dy(), bits: make([]bool, b.Dx()*b.Dy())}
	for y := 0; y < m.h; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < m.w; x++ {
			p := row[x*4 : x*4+3]
			m.bits[y*m.w+x] = skinPixel(p[0], p[1], p[2])
		}
	}
	m.bits = erode(dilate(dilate(erode(m.bits, m.w, m.h), m.w, m.h), m.w, m.h), m.w, m.h)
	return m
}

func skinPixel(r8, g8, b8 uint8) bool {
	r, g, b := float64(r8), float64(g8), float64(b8)

	y := 0.299*r + 0.587*g + 0.114*b
	cr := clamp8((r-y)*0.713 + 128)
	cb := clamp8((b-y)*0.564 + 128)
	ycrcb := cr >= 133 && cr <= 173 && cb >= 77 && cb <= 127

	col := colorful.Color{R: r / 255, G: g / 255, B: b / 255}
	hd, s, v := col.Hsv()
	h8, s8, v8 := clamp8(hd/2), clamp8(s*255), clamp8(v*255)
	hsv := (h8 <= 20 || (h8 >= 160 && h8 <= 180)) && s8 >= 10 && s8 <= 150 && v8 >= 60

	l, la, lb := col.Lab()
	l8, a8, b8l := clamp8(l*255), clamp8(la*100+128), clamp8(lb*100+128)
	lab := l8 >= 20 && a8 >= 15 && a8 <= 127 && b8l >= 15 && b8l <= 127

	return (ycrcb && hsv) || lab
}

func clamp8(v float64) int {
	return int(math.Max(0, math.Min(255, math.Round(v))))
}

// erode keeps a pixel only when its whole in-bounds 3x3 neighbourhood is set.
func erode(src []bool, w, h int) []bool {
	return morph(src, w, h, true)
}

// dilate sets a pixel when any in-bounds 3x3 neighbour is set.
func dilate(src []bool, w, h int) []bool {
	return morph(src, w, h, false)
}

func morph(src []bool, w, h int, all bool) []bool {
	dst := make([]bool, len(src))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := all
			for dy := -1; dy <= 1 && v == all; dy++ {
				ny := y + dy
				if ny < 0 || ny >= h {
					continue
				}
				for dx := -1; dx <= 1; dx++ {
					nx := x + dx
					if nx < 0 || nx >= w {
						continue
					}
					if src[ny*w+nx] != all {
						v = !all
						break
					}
				}
			}
			dst[y*w+x] = v
		}
	}
	return dst
}

// faceRegion is a rectangle expressed as fractions of the analysed region.
type faceRegion struct {
	name       string
	x, y, w, h float64
}

// Forehead, cheeks and nose carry the most even skin colour in a frontal portrait.
var faceRegions = []faceRegion{
	{name: "forehead", x: 0.30, y: 0.15, w: 0.40, h: 0.25},
	{name: "left_cheek", x: 0.15, y: 0.40, w: 0.25, h: 0.25},
	{name: "right_cheek", x: 0.60, y: 0.40, w: 0.25, h: 0.25},
	{name: "nose", x: 0.40, y: 0.35, w: 0.20, h: 0.20},
}

const (
	minRegionPixels = 10
	minSkinPixels   = 100
)

// extractSkinPixels collects masked pixels from the face regions. A region needs more
// than minRegionPixels to count; when the regions together yield fewer than
// minSkinPixels every masked pixel is used instead, and when nothing is masked the
// default colour stands in.
func extractSkinPixels(img *image.NRGBA, mask *skinMask) []RGB {
	var pixels []RGB
	for _, r := range faceRegions {
		x0, y0 := int(float64(mask.w)*r.x), int(float64(mask.h)*r.y)
		x1 := min(x0+int(float64(mask.w)*r.w), mask.w)
		y1 := min(y0+int(float64(mask.h)*r.h), mask.h)

		var found []RGB
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				if mask.at(x, y) {
					found = append(found, pixelAt(img, x, y))
				}
			}
		}
		if len(found) > minRegionPixels {
			pixels = append(pixels, found...)
		}
	}

	if len(pixels) < minSkinPixels {
		pixels = pixels[:0]
		for y := 0; y < mask.h; y++ {
			for x := 0; x < mask.w; x++ {
				if mask.at(x, y) {
					pixels = append(pixels, pixelAt(img, x, y))
				}
			}
		}
	}
	if len(pixels) == 0 {
		return []RGB{DefaultRGB}
	}
	return pixels
}

func pixelAt(img *image.NRGBA, x, y int) RGB {
	i := y*img.Stride + x*4
	return RGB{R: int(img.Pix[i]), G: int(img.Pix[i+1]), B: int(img.Pix[i+2])}
}
