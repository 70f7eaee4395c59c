// Package imageprocessor turns uploaded photo bytes into images and defines the
// analyzer contract shared by the in-process and remote implementations.
package imageprocessor

import (
	"context"
	"image"

	"github.com/example/colormatch/internal/undertone"
)

// Client analyses one encoded photo.
type Client interface {
	Analyze(ctx context.Context, imageBytes []byte) (*undertone.Analysis, error)
}

// ImageAnalyzer is implemented by analyzers that can classify an already decoded
// photo, which lets callers that decoded it skip a second decode.
type ImageAnalyzer interface {
	AnalyzeImage(ctx context.Context, img image.Image) (*undertone.Analysis, error)
}

// LocalClient runs the precise analyzer in-process.
type LocalClient struct {
	analyzer     undertone.PreciseAnalyzer
	maxDimension int
}

// NewLocalClient returns an in-process analyzer that downsizes photos to maxDimension.
func NewLocalClient(maxDimension int) *LocalClient {
	return &LocalClient{maxDimension: maxDimension}
}

// Analyze decodes imageBytes and classifies the result.
func (c *LocalClient) Analyze(ctx context.Context, imageBytes []byte) (*undertone.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, _, err := Decode(imageBytes, c.maxDimension)
	if err != nil {
		return nil, err
	}
	return c.AnalyzeImage(ctx, img)
}

// AnalyzeImage classifies an image that is already decoded and downsized. The
// analysis stops early with ctx.Err() once ctx is done.
func (c *LocalClient) AnalyzeImage(ctx context.Context, img image.Image) (*undertone.Analysis, error) {
	analysis, err := c.analyzer.AnalyzeContext(ctx, img)
	if err != nil {
		return nil, err
	}
	return &analysis, nil
}
