// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/patchview/geom"
)

// hatchSpacing is the distance between hatch lines in device pixels.
const hatchSpacing = 8

// ImageSurface is a CPU-based Painter that renders to an *image.RGBA.
//
// The surface shows the part of the scene whose top-left corner is Origin,
// so a scrolled view is drawn by moving the origin.
//
// Example:
//
//	s := surface.NewImageSurface(800, 600)
//	s.Clear(color.Black)
//	s.SetOrigin(geom.Pt(0, 256))
//	vp.DrawBackground(s, s.Viewport())
//	img := s.Snapshot()
type ImageSurface struct {
	img    *image.RGBA
	origin geom.Point
	face   font.Face
}

// NewImageSurface creates a new surface with the given dimensions.
// Non-positive dimensions are clamped to 1.
func NewImageSurface(width, height int) *ImageSurface {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	return NewImageSurfaceFromImage(image.NewRGBA(image.Rect(0, 0, width, height)))
}

// NewImageSurfaceFromImage creates a surface backed by an existing image.
// The surface will render into the provided image directly.
func NewImageSurfaceFromImage(img *image.RGBA) *ImageSurface {
	return &ImageSurface{
		img:  img,
		face: basicfont.Face7x13,
	}
}

// Width returns the surface width.
func (s *ImageSurface) Width() int {
	return s.img.Bounds().Dx()
}

// Height returns the surface height.
func (s *ImageSurface) Height() int {
	return s.img.Bounds().Dy()
}

// Origin returns the scene position shown at the top-left device pixel.
func (s *ImageSurface) Origin() geom.Point {
	return s.origin
}

// SetOrigin scrolls the surface so that scene position p is shown at the
// top-left device pixel.
func (s *ImageSurface) SetOrigin(p geom.Point) {
	s.origin = p
}

// Viewport returns the visible scene rectangle.
func (s *ImageSurface) Viewport() geom.Rect {
	return geom.R(s.origin.X, s.origin.Y, float64(s.Width()), float64(s.Height()))
}

// Image returns the backing image. It is not a copy.
func (s *ImageSurface) Image() *image.RGBA {
	return s.img
}

// Clear fills the entire surface with the given color.
func (s *ImageSurface) Clear(c color.Color) {
	xdraw.Draw(s.img, s.img.Bounds(), image.NewUniform(c), image.Point{}, xdraw.Src)
}

// DrawImage composites img with its top-left corner at scene position at.
func (s *ImageSurface) DrawImage(at geom.Point, img image.Image) {
	if img == nil {
		return
	}
	dp := s.toDevice(at)
	sb := img.Bounds()
	dr := image.Rectangle{Min: dp, Max: dp.Add(sb.Size())}
	xdraw.Draw(s.img, dr, img, sb.Min, xdraw.Over)
}

// StrokeRect draws a one pixel outline of r.
func (s *ImageSurface) StrokeRect(r geom.Rect, c color.Color) {
	dr := s.deviceRect(r)
	if dr.Empty() {
		return
	}
	src := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(dr.Min.X, dr.Min.Y, dr.Max.X, dr.Min.Y+1),
		image.Rect(dr.Min.X, dr.Max.Y-1, dr.Max.X, dr.Max.Y),
		image.Rect(dr.Min.X, dr.Min.Y, dr.Min.X+1, dr.Max.Y),
		image.Rect(dr.Max.X-1, dr.Min.Y, dr.Max.X, dr.Max.Y),
	}
	for _, e := range edges {
		xdraw.Draw(s.img, e, src, image.Point{}, xdraw.Over)
	}
}

// HatchRect fills r with a diagonal cross pattern anchored at the device
// origin, so adjacent hatched rectangles line up.
func (s *ImageSurface) HatchRect(r geom.Rect, c color.Color) {
	dr := s.deviceRect(r).Intersect(s.img.Bounds())
	for y := dr.Min.Y; y < dr.Max.Y; y++ {
		for x := dr.Min.X; x < dr.Max.X; x++ {
			if (x+y)%hatchSpacing == 0 || (x-y)%hatchSpacing == 0 {
				s.img.Set(x, y, c)
			}
		}
	}
}

// DrawText draws s with its baseline starting at scene position at.
func (s *ImageSurface) DrawText(at geom.Point, text string, c color.Color) {
	dp := s.toDevice(at)
	d := font.Drawer{
		Dst:  s.img,
		Src:  image.NewUniform(c),
		Face: s.face,
		Dot:  fixed.P(dp.X, dp.Y),
	}
	d.DrawString(text)
}

// Snapshot returns a copy of the surface contents.
func (s *ImageSurface) Snapshot() *image.RGBA {
	out := image.NewRGBA(s.img.Bounds())
	copy(out.Pix, s.img.Pix)
	return out
}

func (s *ImageSurface) toDevice(p geom.Point) image.Point {
	return p.Sub(s.origin).Round()
}

func (s *ImageSurface) deviceRect(r geom.Rect) image.Rectangle {
	r.X -= s.origin.X
	r.Y -= s.origin.Y
	return r.Round()
}
