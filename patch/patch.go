// Package patch provides the tiles that make up a patch viewport.
//
// The image plane is divided into square patches of a fixed edge length.
// Every patch owns an RGBA pixel buffer that is filled off the interactive
// goroutine and read by paint callbacks, so each patch carries its own
// mutex. A [Grid] holds one row of patches per layer: one layer per source
// layer of the image stack, followed by the composite layer and the
// brushing (overlay) layer.
//
// Thread safety: Patch fields are guarded by the patch lock. Any reader or
// writer of Image or Dirty must hold it for the duration of the access and
// must not call into other components while holding it. The rectangles are
// immutable after construction and may be read without locking.
package patch

import (
	"image"
	"sync"

	"github.com/gogpu/patchview/geom"
)

// Patch is a single tile of the viewport.
type Patch struct {
	// ID is the patch index in the geometry's enumeration order.
	ID int

	// Layer is the grid layer this patch belongs to.
	Layer int

	// Rect is the patch rectangle in display space.
	Rect geom.Rect

	// DataRect is the patch rectangle in data space.
	DataRect geom.Rect

	// Bounds is Rect rounded to the pixel grid.
	Bounds image.Rectangle

	// Image holds the patch pixels. Its bounds start at (0, 0) and have the
	// size of Bounds. The buffer is never reallocated.
	Image *image.RGBA

	// Dirty reports that Image is stale and must be refilled before it can
	// be trusted as final content.
	Dirty bool

	// Seq counts invalidations. A fill that started before the latest
	// invalidation must not write the buffer or clear Dirty.
	Seq uint64

	mu sync.Mutex
}

// New creates a patch covering the display rectangle rect. The buffer is
// sized to the rounded rectangle, fully transparent, and the patch starts
// dirty.
func New(rect geom.Rect, id int) *Patch {
	bounds := rect.Round()
	return &Patch{
		ID:     id,
		Rect:   rect,
		Bounds: bounds,
		Image:  image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy())),
		Dirty:  true,
	}
}

// Lock acquires the patch lock.
func (p *Patch) Lock() { p.mu.Lock() }

// Unlock releases the patch lock.
func (p *Patch) Unlock() { p.mu.Unlock() }

// Invalidate marks the buffer stale and supersedes any fill already
// running for it. The caller must hold the lock.
func (p *Patch) Invalidate() {
	p.Dirty = true
	p.Seq++
}

// Clear zeroes the buffer. The caller must hold the lock.
func (p *Patch) Clear() {
	clear(p.Image.Pix)
}
