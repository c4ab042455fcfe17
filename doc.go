// Package patchview provides a tiled, incrementally rendered 2D image
// viewport.
//
// # Overview
//
// The image plane is divided into fixed-size patches. Each patch is rendered
// off the interactive goroutine from a stack of image sources, cached in its
// own pixel buffer, and composited on demand when the host toolkit paints.
// Only patches intersecting the visible rectangle are requested, and stale
// content keeps being shown until a fresh fill arrives, so painting never
// blocks on rendering.
//
// # Quick Start
//
//	var damage surface.Damage
//	vp, err := patchview.New(&damage, patchview.WithPatchSize(128))
//	if err != nil { ... }
//	defer vp.Close()
//
//	vp.SetStack(stack.NewStacked(stack.NewLayer("raw", src)))
//	if err := vp.SetSceneShape(1024, 768); err != nil { ... }
//
//	// host event loop
//	for {
//	    select {
//	    case <-vp.Events():
//	        vp.Dispatch() // schedules repaints of filled patches
//	    case <-frame:
//	        vp.DrawBackground(painter, visible)
//	        vp.DrawForeground(painter, visible)
//	    }
//	}
//
// # Architecture
//
// The library is organized into:
//   - patchview: Viewport, configuration, logging
//   - geom: rectangles and the data/display transform
//   - patch: Patch, Grid and block geometry
//   - stack: layered image sources and their change events
//   - render: background Coordinator, worker pool, compositing
//   - surface: toolkit boundary (Host, Painter) and an image-backed painter
//
// # Coordinate System
//
// Scene (display) coordinates have the origin at the top-left, x increasing
// right and y increasing down. Data coordinates swap the axes: the primary
// axis points down and the secondary axis points right. Scene shapes are
// given in display space; stack dirty regions and source requests are in
// data space.
//
// # Threading
//
// A Viewport belongs to one interactive goroutine. Paint callbacks, stack
// events and Dispatch all run there. Background workers only write patch
// buffers under the patch lock and post completions to a mailbox that
// Dispatch drains.
package patchview

// Version is the current version of the library.
const Version = "0.1.0"
