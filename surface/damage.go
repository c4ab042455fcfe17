// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import "github.com/gogpu/patchview/geom"

// maxDamageRects is the threshold after which Damage switches to a full
// repaint. Past this many rectangles it is cheaper to repaint everything.
const maxDamageRects = 16

// Damage is a Host that records invalidated rectangles for the next
// repaint.
//
// Damage is NOT thread-safe; use it from the interactive goroutine.
type Damage struct {
	rects      []geom.Rect
	fullRedraw bool
}

// Invalidate marks r as needing a repaint. Rectangles without area are
// ignored. If the accumulated rectangles exceed the threshold, Damage
// switches to full repaint mode.
func (d *Damage) Invalidate(r geom.Rect) {
	if d.fullRedraw || r.IsEmpty() {
		return
	}

	d.rects = append(d.rects, r)

	if len(d.rects) > maxDamageRects {
		d.fullRedraw = true
		d.rects = d.rects[:0]
	}
}

// InvalidateAll forces a full repaint.
func (d *Damage) InvalidateAll() {
	d.fullRedraw = true
	d.rects = d.rects[:0]
}

// Rects returns the accumulated rectangles.
// Returns nil in full repaint mode (check NeedsFullRedraw first).
// The returned slice should not be modified by the caller.
func (d *Damage) Rects() []geom.Rect {
	if d.fullRedraw {
		return nil
	}
	return d.rects
}

// NeedsFullRedraw reports whether everything must be repainted.
func (d *Damage) NeedsFullRedraw() bool {
	return d.fullRedraw
}

// HasDirtyRegions reports whether anything must be repainted.
func (d *Damage) HasDirtyRegions() bool {
	return d.fullRedraw || len(d.rects) > 0
}

// ClearDirty resets the damage after a repaint.
func (d *Damage) ClearDirty() {
	d.rects = d.rects[:0]
	d.fullRedraw = false
}
