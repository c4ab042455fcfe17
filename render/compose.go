// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"
	"image/color"
	"sync"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/patchview/geom"
)

// copyToDisplay writes the data-space image src, covering region, into the
// display-space buffer dst. Pixels of region not covered by src become
// transparent.
func copyToDisplay(dst *image.RGBA, src image.Image, region image.Rectangle, toDisplay geom.Matrix) {
	if !toDisplay.IsAxisSwap() {
		clear(dst.Pix)
		xdraw.Draw(dst, dst.Bounds(), src, region.Min, xdraw.Src)
		return
	}

	b := dst.Bounds()
	if rgba, ok := src.(*image.RGBA); ok {
		transposeRGBA(dst, rgba, region)
		return
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			// display (x, y) is data (y, x)
			dst.Set(x, y, src.At(region.Min.X+y-b.Min.Y, region.Min.Y+x-b.Min.X))
		}
	}
}

// transposeRGBA is the fast path of copyToDisplay for RGBA sources.
func transposeRGBA(dst, src *image.RGBA, region image.Rectangle) {
	b := dst.Bounds()
	sb := src.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := dst.Pix[dst.PixOffset(b.Min.X, y):]
		sx := region.Min.X + y - b.Min.Y
		for x := 0; x < b.Dx(); x++ {
			sy := region.Min.Y + x
			d := row[x*4 : x*4+4 : x*4+4]
			if !(image.Point{X: sx, Y: sy}).In(sb) {
				d[0], d[1], d[2], d[3] = 0, 0, 0, 0
				continue
			}
			copy(d, src.Pix[src.PixOffset(sx, sy):])
		}
	}
}

// compositeOver blends src over dst with the given opacity.
func compositeOver(dst *image.RGBA, src image.Image, opacity float64) {
	if opacity <= 0 {
		return
	}
	r := dst.Bounds()
	if opacity >= 1 {
		xdraw.Draw(dst, r, src, src.Bounds().Min, xdraw.Over)
		return
	}
	mask := image.NewUniform(color.Alpha{A: uint8(opacity*255 + 0.5)})
	xdraw.DrawMask(dst, r, src, src.Bounds().Min, mask, image.Point{}, xdraw.Over)
}

// scratchPool reuses composition buffers across fills. Patches of one grid
// share a size, so a size mismatch only happens after a rebuild.
type scratchPool struct {
	pool sync.Pool // *image.RGBA
}

// get returns a transparent buffer of the given size.
func (p *scratchPool) get(size image.Point) *image.RGBA {
	if v := p.pool.Get(); v != nil {
		img := v.(*image.RGBA)
		if img.Bounds().Size() == size {
			clear(img.Pix)
			return img
		}
	}
	return image.NewRGBA(image.Rectangle{Max: size})
}

func (p *scratchPool) put(img *image.RGBA) {
	p.pool.Put(img)
}
