package stack

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/patchview/geom"
)

// ErrLayerIndex is returned when a layer index is out of range.
var ErrLayerIndex = errors.New("stack: layer index out of range")

// Stacked is a mutable Stack.
//
// Mutations are serialized, and each one delivers its events before the
// next begins, so the size announced by StackAboutToResize is the size the
// stack then has. Events are delivered without holding the read lock: a
// listener may read the stack but must not mutate it or call MarkDirty.
//
// Thread safety: Stacked is safe for concurrent use.
type Stacked struct {
	// wmu serializes mutations together with their events.
	wmu sync.Mutex

	mu        sync.RWMutex
	layers    []Layer
	listeners map[int]Listener
	nextID    int
}

// NewStacked creates a stack holding layers, bottom first.
func NewStacked(layers ...Layer) *Stacked {
	return &Stacked{
		layers:    slices.Clone(layers),
		listeners: make(map[int]Listener),
	}
}

// Len returns the number of layers.
func (s *Stacked) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.layers)
}

// Layers returns a copy of the layers, bottom first.
func (s *Stacked) Layers() []Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.layers)
}

// Layer returns layer i.
func (s *Stacked) Layer(i int) (Layer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.layers) {
		return Layer{}, fmt.Errorf("%w: %d", ErrLayerIndex, i)
	}
	return s.layers[i], nil
}

// Subscribe registers l for events.
func (s *Stacked) Subscribe(l Listener) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Append adds l on top of the stack.
func (s *Stacked) Append(l Layer) {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	// Insert at Len cannot fail.
	_ = s.insert(s.Len(), l)
}

// Insert places l at index i, shifting the layers above it up.
func (s *Stacked) Insert(i int, l Layer) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	return s.insert(i, l)
}

func (s *Stacked) insert(i int, l Layer) error {
	n := s.Len()
	if i < 0 || i > n {
		return fmt.Errorf("%w: %d", ErrLayerIndex, i)
	}
	s.emit(func(ln Listener) { ln.StackAboutToResize(n + 1) })

	s.mu.Lock()
	s.layers = slices.Insert(s.layers, i, l)
	s.mu.Unlock()

	s.emit(Listener.StackChanged)
	return nil
}

// Remove deletes layer i.
func (s *Stacked) Remove(i int) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	n := s.Len()
	if i < 0 || i >= n {
		return fmt.Errorf("%w: %d", ErrLayerIndex, i)
	}
	s.emit(func(ln Listener) { ln.StackAboutToResize(n - 1) })

	s.mu.Lock()
	s.layers = slices.Delete(s.layers, i, i+1)
	s.mu.Unlock()

	s.emit(Listener.StackChanged)
	return nil
}

// Move moves layer from to index to.
func (s *Stacked) Move(from, to int) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	s.mu.Lock()
	n := len(s.layers)
	if from < 0 || from >= n || to < 0 || to >= n {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d -> %d", ErrLayerIndex, from, to)
	}
	l := s.layers[from]
	s.layers = slices.Delete(s.layers, from, from+1)
	s.layers = slices.Insert(s.layers, to, l)
	s.mu.Unlock()

	if from != to {
		s.emit(Listener.StackChanged)
	}
	return nil
}

// SetOpacity changes the opacity of layer i and marks the plane dirty.
func (s *Stacked) SetOpacity(i int, opacity float64) error {
	return s.update(i, func(l *Layer) { l.Opacity = min(max(opacity, 0), 1) })
}

// SetVisible shows or hides layer i and marks the plane dirty.
func (s *Stacked) SetVisible(i int, visible bool) error {
	return s.update(i, func(l *Layer) { l.Visible = visible })
}

// SetSource replaces the source of layer i and marks the plane dirty.
func (s *Stacked) SetSource(i int, src Source) error {
	return s.update(i, func(l *Layer) { l.Source = src })
}

// MarkDirty notifies listeners that region (data space) changed. The zero
// Rect marks the whole plane.
func (s *Stacked) MarkDirty(region geom.Rect) {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	s.emit(func(ln Listener) { ln.StackDirty(region) })
}

func (s *Stacked) update(i int, fn func(l *Layer)) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	s.mu.Lock()
	if i < 0 || i >= len(s.layers) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrLayerIndex, i)
	}
	fn(&s.layers[i])
	s.mu.Unlock()

	s.emit(func(ln Listener) { ln.StackDirty(geom.Rect{}) })
	return nil
}

// emit calls fn for every listener, in subscription order, without holding
// the read lock. The caller holds wmu.
func (s *Stacked) emit(fn func(Listener)) {
	s.mu.RLock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	listeners := make([]Listener, len(ids))
	for i, id := range ids {
		listeners[i] = s.listeners[id]
	}
	s.mu.RUnlock()

	for _, l := range listeners {
		fn(l)
	}
}
