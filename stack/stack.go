// Package stack defines the layered image sources a patch viewport renders,
// and the events a stack emits when its content or shape changes.
//
// Sources work in data space: a request names a data-space rectangle and
// the returned image covers that rectangle in data coordinates. Layer 0 is
// the bottom of the stack.
package stack

import (
	"context"
	"image"

	"github.com/gogpu/patchview/geom"
)

// Source produces the pixels of one layer.
//
// Request is called from background goroutines, possibly concurrently for
// different regions. It should return promptly once ctx is cancelled.
type Source interface {
	Request(ctx context.Context, region image.Rectangle) (image.Image, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, region image.Rectangle) (image.Image, error)

// Request calls f(ctx, region).
func (f SourceFunc) Request(ctx context.Context, region image.Rectangle) (image.Image, error) {
	return f(ctx, region)
}

// Layer is one entry of a stack.
type Layer struct {
	// Name identifies the layer in logs.
	Name string

	// Source produces the layer's pixels. A nil Source renders nothing.
	Source Source

	// Opacity in [0, 1] scales the layer when compositing.
	Opacity float64

	// Visible excludes the layer from compositing when false.
	Visible bool
}

// NewLayer returns a visible, fully opaque layer.
func NewLayer(name string, src Source) Layer {
	return Layer{Name: name, Source: src, Opacity: 1, Visible: true}
}

// Listener receives stack events. Events are delivered synchronously on the
// goroutine that changed the stack.
type Listener interface {
	// StackDirty reports that region (data space) must be re-rendered.
	// The zero Rect means the whole plane.
	StackDirty(region geom.Rect)

	// StackChanged reports that layers were added, removed or reordered.
	StackChanged()

	// StackAboutToResize is sent before the number of layers changes to n.
	StackAboutToResize(n int)
}

// Stack is an ordered set of layers.
type Stack interface {
	// Len returns the number of layers.
	Len() int

	// Layers returns a snapshot of the layers, bottom first. It is safe to
	// call from any goroutine.
	Layers() []Layer

	// Subscribe registers l for events and returns a function that removes
	// the subscription.
	Subscribe(l Listener) (cancel func())
}
