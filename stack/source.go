package stack

import (
	"context"
	"image"
	"image/color"
)

// Uniform is a Source that fills every region with one color.
type Uniform struct {
	Color color.Color
}

// Request returns a uniform image. Its bounds are unbounded, which covers
// any region.
func (u Uniform) Request(ctx context.Context, _ image.Rectangle) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return image.NewUniform(u.Color), nil
}

// ImageSource serves regions of an image held in memory. The image must be
// laid out in data space: its x axis is the data primary axis.
type ImageSource struct {
	Image image.Image
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// Request returns the part of the image inside region. Pixels of region
// outside the image read as transparent.
func (s ImageSource) Request(ctx context.Context, region image.Rectangle) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if si, ok := s.Image.(subImager); ok {
		return si.SubImage(region), nil
	}
	return s.Image, nil
}
