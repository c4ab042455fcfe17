package patch

import (
	"fmt"

	"github.com/gogpu/patchview/geom"
)

// Grid manages the patches of every layer of a viewport.
//
// A grid built for n source layers holds n+2 layers: indices 0..n-1 hold
// per-source pixels, index n is the composite layer and index n+1 is the
// brushing layer. All layers share the same per-patch rectangles.
//
// A Grid is never resized. When the geometry or the number of layers
// changes, build a new Grid and replace the old one wholesale.
//
// Thread safety: the layer slices are immutable after NewGrid returns and
// may be read concurrently. Patch contents follow the patch lock discipline.
type Grid struct {
	// layers holds one patch slice per layer, indexed by patch id.
	layers [][]*Patch

	// sources is the number of source layers.
	sources int

	// patchCount is the number of patches per layer.
	patchCount int

	// overlap is the padding each patch was built with.
	overlap int

	// toDisplay maps data-space rectangles into display space.
	toDisplay geom.Matrix
}

// NewGrid creates patches for sources source layers plus the composite and
// brushing layers. Each patch rectangle is taken from g in data space, grown
// by overlap, and mapped into display space with toDisplay.
func NewGrid(g Geometry, overlap, sources int, toDisplay geom.Matrix) (*Grid, error) {
	if g == nil {
		return nil, ErrNilGeometry
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOverlap, overlap)
	}
	if sources < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLayerCount, sources)
	}

	count := g.PatchCount()
	grid := &Grid{
		layers:     make([][]*Patch, sources+2),
		sources:    sources,
		patchCount: count,
		overlap:    overlap,
		toDisplay:  toDisplay,
	}

	// Rectangles are identical across layers, compute them once.
	dataRects := make([]geom.Rect, count)
	for id := range count {
		dataRects[id] = g.PatchRect(id, overlap)
	}

	for layer := range grid.layers {
		patches := make([]*Patch, count)
		for id, dr := range dataRects {
			p := New(toDisplay.MapRect(dr), id)
			p.Layer = layer
			p.DataRect = dr
			patches[id] = p
		}
		grid.layers[layer] = patches
	}
	return grid, nil
}

// Layer returns the patches of layer i, or nil if i is out of range.
// The returned slice should not be modified.
func (g *Grid) Layer(i int) []*Patch {
	if i < 0 || i >= len(g.layers) {
		return nil
	}
	return g.layers[i]
}

// Composite returns the composite layer's patches.
func (g *Grid) Composite() []*Patch {
	return g.layers[g.sources]
}

// Brushing returns the brushing (overlay) layer's patches.
func (g *Grid) Brushing() []*Patch {
	return g.layers[g.sources+1]
}

// Patch returns patch id of layer, or nil if either is out of range.
func (g *Grid) Patch(layer, id int) *Patch {
	patches := g.Layer(layer)
	if id < 0 || id >= len(patches) {
		return nil
	}
	return patches[id]
}

// Intersecting returns the patches of layer whose display rectangle
// intersects r. The returned slice is newly allocated.
func (g *Grid) Intersecting(layer int, r geom.Rect) []*Patch {
	var result []*Patch
	for _, p := range g.Layer(layer) {
		if r.Intersects(p.Rect) {
			result = append(result, p)
		}
	}
	return result
}

// NumLayers returns the total number of layers, including the composite
// and brushing layers.
func (g *Grid) NumLayers() int {
	return len(g.layers)
}

// NumSources returns the number of source layers.
func (g *Grid) NumSources() int {
	return g.sources
}

// CompositeIndex returns the layer index of the composite layer.
func (g *Grid) CompositeIndex() int {
	return g.sources
}

// BrushingIndex returns the layer index of the brushing layer.
func (g *Grid) BrushingIndex() int {
	return g.sources + 1
}

// PatchCount returns the number of patches per layer.
func (g *Grid) PatchCount() int {
	return g.patchCount
}

// Overlap returns the overlap the grid was built with.
func (g *Grid) Overlap() int {
	return g.overlap
}

// ToDisplay returns the data to display transform the grid was built with.
func (g *Grid) ToDisplay() geom.Matrix {
	return g.toDisplay
}
