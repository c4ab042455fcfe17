package patch

import (
	"errors"
	"fmt"

	"github.com/gogpu/patchview/geom"
)

// DefaultBlockSize is the default patch edge length in pixels.
const DefaultBlockSize = 128

// Errors returned when building geometry and grids.
var (
	// ErrInvalidDimensions is returned when a plane size is non-positive.
	ErrInvalidDimensions = errors.New("patch: invalid plane dimensions")

	// ErrInvalidBlockSize is returned when the block size is non-positive.
	ErrInvalidBlockSize = errors.New("patch: invalid block size")

	// ErrInvalidOverlap is returned when the overlap is negative.
	ErrInvalidOverlap = errors.New("patch: negative overlap")

	// ErrInvalidLayerCount is returned when the source layer count is negative.
	ErrInvalidLayerCount = errors.New("patch: negative layer count")

	// ErrNilGeometry is returned when a grid is built without geometry.
	ErrNilGeometry = errors.New("patch: nil geometry")
)

// Geometry enumerates the patches of a data-space plane.
//
// Implementations must be pure: the same index always yields the same
// rectangle, and the rectangles without overlap tile the plane exactly.
type Geometry interface {
	// PatchCount returns the number of patches covering the plane.
	PatchCount() int

	// PatchRect returns the data-space rectangle of patch index, grown by
	// overlap pixels on every side and clipped to the plane.
	PatchRect(index, overlap int) geom.Rect
}

// PatchCount returns the number of blockSize patches needed to cover a
// width x height plane. It returns 0 for invalid arguments.
func PatchCount(width, height, blockSize int) int {
	if width <= 0 || height <= 0 || blockSize <= 0 {
		return 0
	}
	return ceilDiv(width, blockSize) * ceilDiv(height, blockSize)
}

// BlockGeometry divides a plane into square blocks. Patches are numbered
// with the x (primary) axis varying fastest. Blocks on the far edges are
// clipped to the plane.
type BlockGeometry struct {
	width     int
	height    int
	blockSize int
	blocksX   int
	blocksY   int
}

// NewBlockGeometry creates geometry for a width x height data-space plane.
func NewBlockGeometry(width, height, blockSize int) (*BlockGeometry, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if blockSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBlockSize, blockSize)
	}
	return &BlockGeometry{
		width:     width,
		height:    height,
		blockSize: blockSize,
		blocksX:   ceilDiv(width, blockSize),
		blocksY:   ceilDiv(height, blockSize),
	}, nil
}

// PatchCount returns the number of patches covering the plane.
func (g *BlockGeometry) PatchCount() int {
	return g.blocksX * g.blocksY
}

// PatchRect returns the data-space rectangle of patch index.
// Returns the zero Rect for out-of-range indices.
func (g *BlockGeometry) PatchRect(index, overlap int) geom.Rect {
	if index < 0 || index >= g.PatchCount() {
		return geom.Rect{}
	}
	bx := index % g.blocksX
	by := index / g.blocksX

	x0 := max(0, bx*g.blockSize-overlap)
	y0 := max(0, by*g.blockSize-overlap)
	x1 := min(g.width, (bx+1)*g.blockSize+overlap)
	y1 := min(g.height, (by+1)*g.blockSize+overlap)

	return geom.R(float64(x0), float64(y0), float64(x1-x0), float64(y1-y0))
}

// BlocksX returns the number of blocks along the primary axis.
func (g *BlockGeometry) BlocksX() int { return g.blocksX }

// BlocksY returns the number of blocks along the secondary axis.
func (g *BlockGeometry) BlocksY() int { return g.blocksY }

// Width returns the plane extent along the primary axis.
func (g *BlockGeometry) Width() int { return g.width }

// Height returns the plane extent along the secondary axis.
func (g *BlockGeometry) Height() int { return g.height }

// BlockSize returns the patch edge length.
func (g *BlockGeometry) BlockSize() int { return g.blockSize }

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
