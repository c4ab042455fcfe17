package patchview

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	"github.com/gogpu/patchview/geom"
	"github.com/gogpu/patchview/patch"
	"github.com/gogpu/patchview/surface"
)

// Debug overlay colors.
var (
	debugDirtyFill = color.RGBA{R: 255, A: 255}
	debugDirtyPen  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	debugCleanPen  = color.RGBA{G: 255, A: 255}
)

// debugMarkerInset shrinks the debug marker inside its patch.
const debugMarkerInset = 5

// debugLabelOffset places the patch id relative to the patch corner.
var debugLabelOffset = geom.Pt(20, 20)

// DrawBackground paints the composite patches intersecting rect.
//
// Dirty patches are requested from the coordinator first; every patch is
// then drawn with whatever its buffer currently holds, so stale pixels stay
// visible until the fill arrives.
func (v *Viewport) DrawBackground(p surface.Painter, rect geom.Rect) {
	if v.grid == nil {
		return
	}
	patches := v.grid.Intersecting(v.grid.CompositeIndex(), rect)

	for _, pt := range patches {
		pt.Lock()
		dirty := pt.Dirty
		pt.Unlock()
		if !dirty {
			continue
		}
		if v.coord.RequestPatch(pt.ID) && v.cfg.ShowDebugPatches {
			Logger().Debug("patchview: requested patch", "id", pt.ID, "rect", pt.Rect)
		}
	}

	for _, pt := range patches {
		pt.Lock()
		p.DrawImage(pt.Rect.TopLeft(), pt.Image)
		dirty := pt.Dirty
		pt.Unlock()

		if v.cfg.ShowDebugPatches {
			drawDebugMarker(p, pt, dirty)
		}
	}
}

// DrawForeground paints the dirty brushing patches intersecting rect. Clean
// brushing patches hold no overlay and are skipped.
func (v *Viewport) DrawForeground(p surface.Painter, rect geom.Rect) {
	if v.grid == nil {
		return
	}
	for _, pt := range v.grid.Intersecting(v.grid.BrushingIndex(), rect) {
		pt.Lock()
		if pt.Dirty {
			p.DrawImage(pt.Rect.TopLeft(), pt.Image)
		}
		pt.Unlock()
	}
}

// drawDebugMarker outlines pt and labels it with its id. Dirty patches are
// hatched.
func drawDebugMarker(p surface.Painter, pt *patch.Patch, dirty bool) {
	r := pt.Rect.Adjusted(debugMarkerInset, debugMarkerInset, -debugMarkerInset, -debugMarkerInset)
	pen := debugCleanPen
	if dirty {
		p.HatchRect(r, debugDirtyFill)
		pen = debugDirtyPen
	}
	p.StrokeRect(r, pen)
	p.DrawText(pt.Rect.TopLeft().Add(debugLabelOffset), strconv.Itoa(pt.ID), pen)
}

// UpdateOverlay lets the brushing pipeline draw into brushing patch id.
// fn runs under the patch lock and must not call back into the viewport.
// The patch is marked dirty, which makes DrawForeground show it, and a
// repaint is scheduled.
func (v *Viewport) UpdateOverlay(id int, fn func(img *image.RGBA)) error {
	pt, err := v.brushingPatch(id)
	if err != nil {
		return err
	}
	pt.Lock()
	fn(pt.Image)
	pt.Dirty = true
	pt.Unlock()
	v.schedule(pt)
	return nil
}

// ClearOverlay empties brushing patch id and hides it from the foreground.
func (v *Viewport) ClearOverlay(id int) error {
	pt, err := v.brushingPatch(id)
	if err != nil {
		return err
	}
	pt.Lock()
	pt.Clear()
	pt.Dirty = false
	pt.Unlock()
	v.schedule(pt)
	return nil
}

func (v *Viewport) brushingPatch(id int) (*patch.Patch, error) {
	if v.grid == nil {
		return nil, ErrNoGrid
	}
	if id < 0 || id >= v.grid.PatchCount() {
		return nil, fmt.Errorf("%w: %d", ErrPatchIndex, id)
	}
	return v.grid.Brushing()[id], nil
}
