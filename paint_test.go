package patchview

import (
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"testing"

	"github.com/gogpu/patchview/geom"
	"github.com/gogpu/patchview/stack"
	"github.com/gogpu/patchview/surface"
)

// =============================================================================
// DrawBackground
// =============================================================================

func TestDrawBackgroundOutsideDrawsNothing(t *testing.T) {
	vp := newViewport(t, 1)
	p := &recordingPainter{}

	vp.DrawBackground(p, geom.R(1000, 1000, 50, 50))

	if len(p.images) != 0 {
		t.Errorf("drew %d images, want 0", len(p.images))
	}
	if got := vp.Stats().Requested; got != 0 {
		t.Errorf("Requested = %d, want 0", got)
	}
}

func TestDrawBackgroundShowsStaleContent(t *testing.T) {
	src := newGatedSource(red)
	host := &recordingHost{}
	vp := newViewportWith(t, host, stack.NewStacked(stack.NewLayer("gated", src)))
	p := &recordingPainter{}

	// Patches 0 and 1 share the first display column.
	vp.DrawBackground(p, geom.R(0, 0, 100, 256))

	if len(p.images) != 2 {
		t.Fatalf("drew %d images, want 2", len(p.images))
	}
	for i, call := range p.images {
		want := vp.CompositePatches()[i].Rect.TopLeft()
		if call.at != want {
			t.Errorf("image %d drawn at %v, want %v", i, call.at, want)
		}
		if call.bounds != image.Rect(0, 0, 128, 128) {
			t.Errorf("image %d bounds = %v, want 128x128", i, call.bounds)
		}
	}
	if got := vp.Stats().Requested; got != 2 {
		t.Errorf("Requested = %d, want 2", got)
	}

	// Still dirty and pending: a second paint draws again but does not
	// request again.
	vp.DrawBackground(p, geom.R(0, 0, 100, 256))
	stats := vp.Stats()
	if stats.Requested != 2 || stats.Deduplicated != 2 {
		t.Errorf("stats = %v, want 2 requested and 2 deduplicated", stats)
	}

	host.reset()
	close(src.gate)
	dispatchUntil(t, vp, 2)

	if got := dirtyIDs(vp.CompositePatches()[:2]); len(got) != 0 {
		t.Errorf("dirty after fill = %v, want none", got)
	}
	if len(host.rects) != 2 {
		t.Errorf("scheduled %d redraws, want 2", len(host.rects))
	}

	// Clean patches are drawn without new requests.
	vp.DrawBackground(&recordingPainter{}, geom.R(0, 0, 100, 256))
	if got := vp.Stats().Requested; got != 2 {
		t.Errorf("Requested = %d after clean paint, want 2", got)
	}
}

func TestDrawBackgroundRendersStack(t *testing.T) {
	// Data plane 256x512: red with a blue pixel at data (10, 300).
	data := image.NewRGBA(image.Rect(0, 0, 256, 512))
	draw.Draw(data, data.Bounds(), image.NewUniform(red), image.Point{}, draw.Src)
	data.SetRGBA(10, 300, blue)

	vp := newViewportWith(t, &recordingHost{}, stack.NewStacked(
		stack.NewLayer("image", stack.ImageSource{Image: data})))

	surf := surface.NewImageSurface(512, 256)
	vp.DrawBackground(surf, surf.Viewport())
	dispatchUntil(t, vp, 8)
	vp.DrawBackground(surf, surf.Viewport())

	img := surf.Image()
	if c := img.RGBAAt(300, 10); c != blue {
		t.Errorf("display (300,10) = %v, want blue", c)
	}
	if c := img.RGBAAt(10, 10); c != red {
		t.Errorf("display (10,10) = %v, want red", c)
	}
	if c := img.RGBAAt(511, 255); c != red {
		t.Errorf("display (511,255) = %v, want red", c)
	}
}

func TestDrawBackgroundDebugOverlay(t *testing.T) {
	src := newGatedSource(red)
	vp := newViewportWith(t, &recordingHost{},
		stack.NewStacked(stack.NewLayer("gated", src)),
		WithDebugPatches(true))

	// Patch 2 is clean, patch 3 is dirty.
	comp := vp.CompositePatches()
	setDirty(comp[2:3], false)

	p := &recordingPainter{}
	vp.DrawBackground(p, geom.R(130, 0, 100, 256))

	if len(p.images) != 2 {
		t.Fatalf("drew %d images, want 2", len(p.images))
	}
	if len(p.hatches) != 1 {
		t.Fatalf("hatched %d rects, want 1", len(p.hatches))
	}
	marker := comp[3].Rect.Adjusted(5, 5, -5, -5)
	if p.hatches[0].r != marker || p.hatches[0].c != debugDirtyFill {
		t.Errorf("hatch = %+v, want %v in red", p.hatches[0], marker)
	}

	wantStrokes := []shapeCall{
		{r: comp[2].Rect.Adjusted(5, 5, -5, -5), c: debugCleanPen},
		{r: marker, c: debugDirtyPen},
	}
	if len(p.strokes) != len(wantStrokes) {
		t.Fatalf("stroked %d rects, want %d", len(p.strokes), len(wantStrokes))
	}
	for i, want := range wantStrokes {
		if p.strokes[i] != want {
			t.Errorf("stroke %d = %+v, want %+v", i, p.strokes[i], want)
		}
	}

	for i, id := range []int{2, 3} {
		want := comp[id].Rect.TopLeft().Add(geom.Pt(20, 20))
		if p.texts[i].s != strconv.Itoa(id) || p.texts[i].at != want {
			t.Errorf("label %d = %+v, want %q at %v", i, p.texts[i], strconv.Itoa(id), want)
		}
	}
}

func TestDrawBackgroundWithoutDebugOverlay(t *testing.T) {
	vp := newViewport(t, 1)
	p := &recordingPainter{}

	vp.DrawBackground(p, vp.SceneRect())

	if len(p.hatches)+len(p.strokes)+len(p.texts) != 0 {
		t.Error("debug markers drawn with the overlay disabled")
	}
}

// =============================================================================
// Cancellation
// =============================================================================

func TestInvalidateWholePlaneCancelsFills(t *testing.T) {
	src := newGatedSource(red)
	vp := newViewportWith(t, &recordingHost{}, stack.NewStacked(stack.NewLayer("gated", src)))

	vp.DrawBackground(&recordingPainter{}, vp.SceneRect())
	if got := vp.Stats().Requested; got != 8 {
		t.Fatalf("Requested = %d, want 8", got)
	}

	vp.InvalidateRegion(geom.Rect{})
	close(src.gate)

	if got := vp.Stats().Cancelled; got == 0 {
		t.Error("whole-plane invalidation should cancel outstanding fills")
	}

	// Requests issued after the cancel are served.
	vp.DrawBackground(&recordingPainter{}, vp.SceneRect())
	dispatchUntil(t, vp, 8)
	if got := dirtyIDs(vp.CompositePatches()); len(got) != 0 {
		t.Errorf("dirty = %v, want none", got)
	}
}

func TestInvalidateDuringFillRefills(t *testing.T) {
	src := newGatedSource(red)
	host := &recordingHost{}
	vp := newViewportWith(t, host, stack.NewStacked(stack.NewLayer("gated", src)))
	comp := vp.CompositePatches()[0]

	vp.DrawBackground(&recordingPainter{}, comp.Rect)
	src.waitEntered(t)

	// The source changes while the fill is reading it.
	vp.InvalidateRegion(comp.Rect)
	host.reset()
	close(src.gate)
	dispatchUntil(t, vp, 1)

	if got := dirtyIDs(vp.CompositePatches()[:1]); len(got) != 1 {
		t.Fatal("patch 0 marked clean by a fill older than its invalidation")
	}
	if s := vp.Stats(); s.Superseded != 1 || s.Filled != 0 {
		t.Errorf("stats = %v, want 1 superseded and 0 filled", s)
	}
	if len(host.rects) != 1 {
		t.Errorf("scheduled %d redraws, want 1", len(host.rects))
	}

	// The scheduled repaint requests the patch again.
	vp.DrawBackground(&recordingPainter{}, comp.Rect)
	if got := vp.Stats().Requested; got != 2 {
		t.Fatalf("Requested = %d, want 2", got)
	}
	dispatchUntil(t, vp, 1)
	if got := dirtyIDs(vp.CompositePatches()[:1]); len(got) != 0 {
		t.Errorf("patch 0 still dirty after refill")
	}
}

func TestCloseDropsNotifications(t *testing.T) {
	src := newGatedSource(red)
	vp := newViewportWith(t, &recordingHost{}, stack.NewStacked(stack.NewLayer("gated", src)))

	vp.DrawBackground(&recordingPainter{}, vp.SceneRect())
	close(src.gate)
	if err := vp.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if n := vp.Dispatch(); n != 0 {
		t.Errorf("Dispatch after Close = %d, want 0", n)
	}
}

// =============================================================================
// DrawForeground and overlay updates
// =============================================================================

func TestDrawForegroundOnlyDirty(t *testing.T) {
	host := &recordingHost{}
	vp := newViewportWith(t, host, stack.NewStacked())
	p := &recordingPainter{}

	vp.DrawForeground(p, vp.SceneRect())
	if len(p.images) != 0 {
		t.Fatalf("drew %d clean overlay patches, want 0", len(p.images))
	}

	host.reset()
	err := vp.UpdateOverlay(1, func(img *image.RGBA) {
		img.SetRGBA(3, 4, blue)
	})
	if err != nil {
		t.Fatalf("UpdateOverlay: %v", err)
	}
	if len(host.rects) != 1 {
		t.Errorf("UpdateOverlay scheduled %d redraws, want 1", len(host.rects))
	}

	vp.DrawForeground(p, vp.SceneRect())
	if len(p.images) != 1 {
		t.Fatalf("drew %d overlay patches, want 1", len(p.images))
	}
	if want := vp.BrushingPatches()[1].Rect.TopLeft(); p.images[0].at != want {
		t.Errorf("overlay drawn at %v, want %v", p.images[0].at, want)
	}

	// Outside the dirty overlay patch nothing is drawn.
	p = &recordingPainter{}
	vp.DrawForeground(p, vp.CompositePatches()[0].Rect)
	if len(p.images) != 0 {
		t.Errorf("drew %d overlay patches outside patch 1, want 0", len(p.images))
	}

	if err := vp.ClearOverlay(1); err != nil {
		t.Fatalf("ClearOverlay: %v", err)
	}
	vp.DrawForeground(p, vp.SceneRect())
	if len(p.images) != 0 {
		t.Errorf("drew %d overlay patches after ClearOverlay, want 0", len(p.images))
	}
	if c := vp.BrushingPatches()[1].Image.RGBAAt(3, 4); c != (color.RGBA{}) {
		t.Errorf("cleared overlay pixel = %v, want transparent", c)
	}
}

func TestOverlayIndexErrors(t *testing.T) {
	vp := newViewport(t, 1)
	noop := func(*image.RGBA) {}
	if err := vp.UpdateOverlay(8, noop); err == nil {
		t.Error("UpdateOverlay(8) should fail")
	}
	if err := vp.ClearOverlay(-1); err == nil {
		t.Error("ClearOverlay(-1) should fail")
	}
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkDrawBackgroundClean(b *testing.B) {
	vp, err := New(&surface.Damage{}, WithWorkers(1))
	if err != nil {
		b.Fatal(err)
	}
	defer func() { _ = vp.Close() }()
	if err := vp.SetSceneShape(2048, 2048); err != nil {
		b.Fatal(err)
	}
	setDirty(vp.CompositePatches(), false)
	surf := surface.NewImageSurface(1024, 768)

	for b.Loop() {
		vp.DrawBackground(surf, surf.Viewport())
	}
}
