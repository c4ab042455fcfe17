// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface defines the toolkit boundary of a patch viewport.
//
// The viewport does not own a window. A host toolkit calls the viewport's
// paint callbacks with a [Painter] and a visible rectangle, and the
// viewport asks the toolkit for future repaints through a [Host].
//
// # Implementations
//
//   - ImageSurface: a Painter that draws into an *image.RGBA, with the
//     scene-to-device offset of a scrolled view. Debug labels are drawn with
//     the golang.org/x/image bitmap face.
//   - Damage: a Host that accumulates invalidated rectangles until the next
//     repaint, falling back to a full repaint when too many accumulate.
//
// # Usage
//
//	s := surface.NewImageSurface(800, 600)
//	var damage surface.Damage
//	vp := patchview.New(&damage)
//	...
//	for _, r := range damage.Rects() {
//	    vp.DrawBackground(s, r)
//	}
//	damage.ClearDirty()
package surface
