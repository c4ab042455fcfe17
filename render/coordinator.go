// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/patchview/patch"
	"github.com/gogpu/patchview/stack"
)

// Errors returned by Coordinator.
var (
	// ErrRunning is returned when the grid or stack is replaced while the
	// coordinator is running.
	ErrRunning = errors.New("render: coordinator is running")

	// ErrNoGrid is returned by Start when no grid has been assigned.
	ErrNoGrid = errors.New("render: no patch grid")
)

// Stats contains counters for a coordinator's lifetime.
type Stats struct {
	// Requested counts accepted fill requests.
	Requested int64

	// Deduplicated counts requests ignored because one was already pending.
	Deduplicated int64

	// Filled counts composite patches written and reported available.
	Filled int64

	// Cancelled counts requests dropped by CancelAll or Stop, queued or
	// in flight.
	Cancelled int64

	// Failed counts fills abandoned because a source returned an error.
	Failed int64

	// Superseded counts fills discarded because their patch was
	// invalidated while they ran.
	Superseded int64

	// Pending is the number of patch ids currently awaiting a fill.
	Pending int

	// Queued is the number of fills waiting for a worker.
	Queued int

	// Active is the number of fills executing.
	Active int
}

// String implements fmt.Stringer for debugging.
func (s Stats) String() string {
	return fmt.Sprintf("requested=%d dedup=%d filled=%d cancelled=%d failed=%d superseded=%d pending=%d queued=%d active=%d",
		s.Requested, s.Deduplicated, s.Filled, s.Cancelled, s.Failed, s.Superseded, s.Pending, s.Queued, s.Active)
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithWorkers sets the number of fill workers. Values <= 0 use GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *Coordinator) {
		c.workers = n
	}
}

// Coordinator owns the background rendering of a patch grid.
//
// Start, Stop, SetGrid, SetStack, CancelAll and Drain are meant to be called
// from the interactive goroutine. RequestPatch never blocks.
type Coordinator struct {
	// mu guards the fields below it and orders completions against
	// CancelAll and Stop.
	mu      sync.Mutex
	grid    *patch.Grid
	stack   stack.Stack
	pool    *WorkerPool
	pending *pendingSet
	ctx     context.Context
	cancel  context.CancelFunc
	running bool

	// gen is bumped by CancelAll and Stop. Written under mu.
	gen atomic.Uint64

	workers int
	mail    *mailbox
	scratch scratchPool

	requested    atomic.Int64
	deduplicated atomic.Int64
	filled       atomic.Int64
	cancelled    atomic.Int64
	failed       atomic.Int64
	superseded   atomic.Int64
}

// NewCoordinator creates a stopped coordinator.
func NewCoordinator(opts ...Option) *Coordinator {
	c := &Coordinator{
		mail:    newMailbox(),
		pending: newPendingSet(0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetGrid assigns the grid that fills are written to. The coordinator must
// be stopped.
func (c *Coordinator) SetGrid(g *patch.Grid) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return ErrRunning
	}
	c.grid = g
	return nil
}

// SetStack assigns the source stack. The coordinator must be stopped.
func (c *Coordinator) SetStack(s stack.Stack) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return ErrRunning
	}
	c.stack = s
	return nil
}

// Start begins background rendering. Starting a running coordinator is a
// no-op.
func (c *Coordinator) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil
	}
	if c.grid == nil {
		return ErrNoGrid
	}

	c.pending = newPendingSet(c.grid.PatchCount())
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.gen.Add(1)
	c.pool = NewWorkerPool(c.workers)
	c.running = true

	Logger().Info("render: coordinator started",
		"patches", c.grid.PatchCount(),
		"layers", c.grid.NumLayers(),
		"workers", c.pool.Workers())
	return nil
}

// Stop cancels all outstanding work and blocks until no worker is writing a
// patch buffer. After Stop returns the grid may be replaced and Start called
// again. Stopping a stopped coordinator is a no-op.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	c.gen.Add(1)
	c.cancel()
	pool := c.pool
	c.pool = nil
	dropped := pool.Discard()
	c.cancelled.Add(int64(dropped + pool.ActiveWork()))
	c.pending.Reset()
	c.mail.reset()
	c.mu.Unlock()

	// Workers take mu on completion, so wait without holding it.
	pool.Close()
	Logger().Info("render: coordinator stopped", "dropped", dropped)
}

// RequestPatch asks for composite patch id to be filled. It returns false if
// the request was ignored: a fill for id is already pending, id is out of
// range, or the coordinator is stopped.
func (c *Coordinator) RequestPatch(id int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running || id < 0 || id >= c.grid.PatchCount() {
		return false
	}
	if !c.pending.TrySet(id) {
		c.deduplicated.Add(1)
		return false
	}
	c.requested.Add(1)

	ctx, gen, grid, stk := c.ctx, c.gen.Load(), c.grid, c.stack
	c.pool.Submit(func() {
		c.fill(ctx, gen, grid, stk, id)
	})
	return true
}

// CancelAll drops every queued and in-flight request. No notification for a
// request issued before CancelAll is returned by a later Drain, and no such
// request clears a patch's dirty flag after CancelAll returns. Dirty flags
// are left untouched.
func (c *Coordinator) CancelAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.gen.Add(1)
	c.cancel()
	c.ctx, c.cancel = context.WithCancel(context.Background())
	dropped := c.pool.Discard()
	c.cancelled.Add(int64(dropped + c.pool.ActiveWork()))
	c.pending.Reset()
	c.mail.reset()

	Logger().Debug("render: cancelled all requests", "dropped", dropped)
}

// Notify returns a channel that receives a value whenever notifications may
// be waiting. Receivers should call Drain after each receive.
func (c *Coordinator) Notify() <-chan struct{} {
	return c.mail.notify
}

// Drain returns the patches filled since the last call, in completion order.
// Notifications from before the last CancelAll or Stop are dropped.
func (c *Coordinator) Drain() []Available {
	items := c.mail.take()
	gen := c.gen.Load()
	out := items[:0]
	for _, a := range items {
		if a.Generation == gen {
			out = append(out, a)
		}
	}
	return out
}

// Stats returns a snapshot of the coordinator counters.
func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	pending := c.pending.Count()
	var queued, active int
	if c.pool != nil {
		queued, active = c.pool.QueuedWork(), c.pool.ActiveWork()
	}
	c.mu.Unlock()
	return Stats{
		Requested:    c.requested.Load(),
		Deduplicated: c.deduplicated.Load(),
		Filled:       c.filled.Load(),
		Cancelled:    c.cancelled.Load(),
		Failed:       c.failed.Load(),
		Superseded:   c.superseded.Load(),
		Pending:      pending,
		Queued:       queued,
		Active:       active,
	}
}

// current reports whether gen is still the live generation.
func (c *Coordinator) current(gen uint64) bool {
	return c.gen.Load() == gen
}

// fill renders composite patch id on a worker goroutine.
func (c *Coordinator) fill(ctx context.Context, gen uint64, grid *patch.Grid, stk stack.Stack, id int) {
	if ctx.Err() != nil {
		return
	}
	comp := grid.Composite()[id]
	region := comp.DataRect.Round()

	// Sources are read after this point, so an invalidation that bumps Seq
	// later makes this fill stale.
	comp.Lock()
	seq := comp.Seq
	comp.Unlock()

	var layers []stack.Layer
	if stk != nil {
		layers = stk.Layers()
	}
	layers = layers[:min(len(layers), grid.NumSources())]

	scratch := c.scratch.get(comp.Image.Bounds().Size())
	defer c.scratch.put(scratch)

	for i, layer := range layers {
		if layer.Source == nil {
			continue
		}
		img, err := layer.Source.Request(ctx, region)
		if err != nil {
			if ctx.Err() == nil {
				c.failed.Add(1)
				Logger().Warn("render: layer request failed",
					"layer", i, "name", layer.Name, "patch", id, "err", err)
				c.abandon(gen, id)
			}
			return
		}

		lp := grid.Patch(i, id)
		lp.Lock()
		if !c.current(gen) {
			lp.Unlock()
			return
		}
		copyToDisplay(lp.Image, img, region, grid.ToDisplay())
		lp.Dirty = false
		if layer.Visible {
			compositeOver(scratch, lp.Image, layer.Opacity)
		}
		lp.Unlock()
	}

	comp.Lock()
	if !c.current(gen) {
		comp.Unlock()
		return
	}
	superseded := comp.Seq != seq
	if !superseded {
		copy(comp.Image.Pix, scratch.Pix)
		comp.Dirty = false
	}
	comp.Unlock()

	// Patch lock released before notifying.
	c.mu.Lock()
	if c.current(gen) {
		c.pending.Clear(id)
		c.mail.post(Available{ID: id, Generation: gen, Superseded: superseded})
		if superseded {
			c.superseded.Add(1)
		} else {
			c.filled.Add(1)
		}
	}
	c.mu.Unlock()

	if superseded {
		Logger().Debug("render: fill superseded by invalidation", "patch", id)
	}
}

// abandon releases the pending slot of a failed fill so a later paint can
// retry it.
func (c *Coordinator) abandon(gen uint64, id int) {
	c.mu.Lock()
	if c.current(gen) {
		c.pending.Clear(id)
	}
	c.mu.Unlock()
}
