package patchview

import (
	"fmt"
	"image"

	"github.com/gogpu/patchview/geom"
	"github.com/gogpu/patchview/patch"
	"github.com/gogpu/patchview/render"
	"github.com/gogpu/patchview/stack"
	"github.com/gogpu/patchview/surface"
)

// Viewport is a tiled scene that renders an image stack patch by patch.
//
// A Viewport owns its patch grid and the coordinator that fills it. The
// host toolkit calls DrawBackground and DrawForeground from its paint
// callbacks, selects on Events and calls Dispatch from its event loop, and
// receives repaint requests through Host.Invalidate.
//
// Viewport is NOT thread-safe. All methods, and the events of an attached
// stack, must run on the same interactive goroutine.
type Viewport struct {
	cfg   Config
	host  surface.Host
	coord *render.Coordinator

	stack       stack.Stack
	unsubscribe func()
	numLayers   int

	shape    image.Point
	geometry *patch.BlockGeometry
	grid     *patch.Grid
}

// New creates a viewport that sends repaint requests to host.
//
// The viewport has no patches until a scene shape is set.
func New(host surface.Host, opts ...Option) (*Viewport, error) {
	if host == nil {
		return nil, ErrNilHost
	}
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Viewport{
		cfg:   cfg,
		host:  host,
		coord: render.NewCoordinator(render.WithWorkers(cfg.Workers)),
	}, nil
}

// Config returns the active configuration.
func (v *Viewport) Config() Config {
	return v.cfg
}

// SetStack attaches s and rebuilds the patches for its layer count. The
// previous stack, if any, is detached. A nil stack renders nothing.
func (v *Viewport) SetStack(s stack.Stack) error {
	// The coordinator only accepts a new stack while stopped.
	v.coord.Stop()
	if v.unsubscribe != nil {
		v.unsubscribe()
		v.unsubscribe = nil
	}

	v.stack = s
	v.numLayers = 0
	if s != nil {
		v.numLayers = s.Len()
		v.unsubscribe = s.Subscribe(v)
	}
	if err := v.coord.SetStack(s); err != nil {
		return err
	}
	return v.initializePatches()
}

// Stack returns the attached stack.
func (v *Viewport) Stack() stack.Stack {
	return v.stack
}

// SetSceneShape sets the scene size in display pixels and rebuilds the
// patches.
func (v *Viewport) SetSceneShape(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidShape, width, height)
	}

	data := geom.DisplayToData.MapRect(geom.R(0, 0, float64(width), float64(height)))
	g, err := patch.NewBlockGeometry(int(data.W), int(data.H), v.cfg.PatchSize)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidShape, err)
	}

	v.shape = image.Pt(width, height)
	v.geometry = g
	return v.initializePatches()
}

// SceneShape returns the scene size in display pixels.
func (v *Viewport) SceneShape() image.Point {
	return v.shape
}

// SceneRect returns the scene rectangle in display coordinates.
func (v *Viewport) SceneRect() geom.Rect {
	return geom.R(0, 0, float64(v.shape.X), float64(v.shape.Y))
}

// initializePatches replaces the grid with a fresh one for the current
// geometry and layer count. The coordinator is stopped before the swap and
// restarted after it.
func (v *Viewport) initializePatches() error {
	v.coord.Stop()
	if v.geometry == nil {
		v.grid = nil
		return v.coord.SetGrid(nil)
	}

	grid, err := patch.NewGrid(v.geometry, v.cfg.Overlap, v.numLayers, geom.DataToDisplay)
	if err != nil {
		return err
	}
	if err := v.coord.SetGrid(grid); err != nil {
		return err
	}
	v.grid = grid
	if err := v.coord.Start(); err != nil {
		return err
	}

	g := v.geometry
	Logger().Info("patchview: patches initialized",
		"shape", v.shape,
		"plane", image.Pt(g.Width(), g.Height()),
		"blocks", image.Pt(g.BlocksX(), g.BlocksY()),
		"patches", grid.PatchCount(),
		"layers", grid.NumLayers(),
		"patch_size", g.BlockSize(),
		"overlap", grid.Overlap())

	v.host.Invalidate(v.SceneRect())
	return nil
}

// Grid returns the current patch grid, or nil before a scene shape is set.
func (v *Viewport) Grid() *patch.Grid {
	return v.grid
}

// NumLayers returns the number of source layers the grid was built for.
func (v *Viewport) NumLayers() int {
	return v.numLayers
}

// CompositePatches returns the patches of the composite layer.
func (v *Viewport) CompositePatches() []*patch.Patch {
	if v.grid == nil {
		return nil
	}
	return v.grid.Composite()
}

// BrushingPatches returns the patches of the brushing (overlay) layer.
func (v *Viewport) BrushingPatches() []*patch.Patch {
	if v.grid == nil {
		return nil
	}
	return v.grid.Brushing()
}

// InvalidateRegion marks stale every composite patch intersecting r, given
// in display coordinates, and requests their repaint.
//
// A fill already running for an invalidated patch is discarded when it
// finishes, and the repaint that follows requests a fresh one.
//
// An empty r denotes the whole plane: outstanding fills are cancelled, the
// brushing layer is cleared, and every composite patch is marked dirty.
func (v *Viewport) InvalidateRegion(r geom.Rect) {
	if v.grid == nil {
		return
	}

	whole := r.IsEmpty()
	if whole {
		v.coord.CancelAll()
		for _, p := range v.grid.Brushing() {
			p.Lock()
			p.Clear()
			p.Dirty = false
			p.Unlock()
		}
	}

	for _, p := range v.grid.Composite() {
		if !whole && !p.Rect.Intersects(r) {
			continue
		}
		p.Lock()
		p.Invalidate()
		p.Unlock()
		v.schedule(p)
	}
}

// SchedulePatchRedraw asks the host to repaint composite patch id.
func (v *Viewport) SchedulePatchRedraw(id int) error {
	if v.grid == nil {
		return ErrNoGrid
	}
	if id < 0 || id >= v.grid.PatchCount() {
		return fmt.Errorf("%w: %d", ErrPatchIndex, id)
	}
	v.schedule(v.grid.Composite()[id])
	return nil
}

// schedule invalidates the rectangle of p, shrunk by the redraw inset so
// the host's outward rounding stays inside the patch.
func (v *Viewport) schedule(p *patch.Patch) {
	in := v.cfg.RedrawInset
	v.host.Invalidate(p.Rect.Adjusted(in, in, -in, -in))
}

// SetShowDebugPatches toggles the debug overlay and repaints the scene.
func (v *Viewport) SetShowDebugPatches(show bool) {
	v.cfg.ShowDebugPatches = show
	v.InvalidateRegion(geom.Rect{})
}

// ShowDebugPatches reports whether the debug overlay is drawn.
func (v *Viewport) ShowDebugPatches() bool {
	return v.cfg.ShowDebugPatches
}

// StackDirty implements stack.Listener. region is in data coordinates.
func (v *Viewport) StackDirty(region geom.Rect) {
	if region.IsEmpty() {
		v.InvalidateRegion(geom.Rect{})
		return
	}
	v.InvalidateRegion(geom.DataToDisplay.MapRect(region))
}

// StackChanged implements stack.Listener.
func (v *Viewport) StackChanged() {
	v.InvalidateRegion(geom.Rect{})
}

// StackAboutToResize implements stack.Listener. The grid is rebuilt for n
// source layers.
func (v *Viewport) StackAboutToResize(n int) {
	v.numLayers = n
	if err := v.initializePatches(); err != nil {
		Logger().Error("patchview: rebuilding patches failed", "layers", n, "err", err)
	}
}

// Events returns a channel that receives a value when filled patches are
// waiting. Call Dispatch after each receive.
func (v *Viewport) Events() <-chan struct{} {
	return v.coord.Notify()
}

// Dispatch schedules a repaint for every patch whose fill finished since
// the last call and returns how many were handled. A superseded fill is
// repainted too, which requests the patch again.
func (v *Viewport) Dispatch() int {
	if v.grid == nil {
		return 0
	}
	avail := v.coord.Drain()
	for _, a := range avail {
		if a.ID < v.grid.PatchCount() {
			v.schedule(v.grid.Composite()[a.ID])
		}
	}
	return len(avail)
}

// Stats returns the coordinator counters.
func (v *Viewport) Stats() render.Stats {
	return v.coord.Stats()
}

// Close detaches the stack and stops background rendering. It blocks until
// no worker is writing a patch.
func (v *Viewport) Close() error {
	if v.unsubscribe != nil {
		v.unsubscribe()
		v.unsubscribe = nil
	}
	v.coord.Stop()
	return nil
}
