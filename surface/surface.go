// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"image/color"

	"github.com/gogpu/patchview/geom"
)

// Host is implemented by the toolkit hosting a viewport.
type Host interface {
	// Invalidate requests a future repaint of r, in scene (display)
	// coordinates. It is called on the interactive goroutine and must not
	// paint synchronously.
	Invalidate(r geom.Rect)
}

// Painter is the drawing surface handed to paint callbacks. All positions
// are in scene (display) coordinates; the painter maps them to device
// pixels.
//
// Painters are NOT thread-safe. They are used from the interactive
// goroutine only.
type Painter interface {
	// DrawImage composites img with its top-left corner at at.
	DrawImage(at geom.Point, img image.Image)

	// StrokeRect draws a one pixel outline of r.
	StrokeRect(r geom.Rect, c color.Color)

	// HatchRect fills r with a diagonal cross pattern.
	HatchRect(r geom.Rect, c color.Color)

	// DrawText draws s with its baseline starting at at.
	DrawText(at geom.Point, s string, c color.Color)
}
