package imageprocessor

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
)

var (
	// ErrEmptyImage is returned when no image payload was supplied.
	ErrEmptyImage = errors.New("image payload is empty")
	// ErrInvalidImage is returned when the payload cannot be decoded as a picture.
	ErrInvalidImage = errors.New("image payload is not a supported picture")
)

// DecodeDataURL extracts the bytes of a base64 payload, with or without a
// "data:image/...;base64," prefix.
func DecodeDataURL(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 {
			return nil, fmt.Errorf("%w: malformed data URL", ErrInvalidImage)
		}
		payload = payload[comma+1:]
	}
	if payload == "" {
		return nil, ErrEmptyImage
	}

	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if data, err := enc.DecodeString(payload); err == nil {
			return data, nil
		}
	}
	return nil, fmt.Errorf("%w: payload is not base64", ErrInvalidImage)
}

// Decode parses an encoded photo, applies its EXIF orientation and shrinks it so that
// neither side exceeds maxDimension. It returns the detected format name.
func Decode(data []byte, maxDimension int) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", ErrEmptyImage
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, "", fmt.Errorf("%w: zero-sized image", ErrInvalidImage)
	}
	if maxDimension > 0 && (b.Dx() > maxDimension || b.Dy() > maxDimension) {
		img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	}
	return img, format, nil
}
