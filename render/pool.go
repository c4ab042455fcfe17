// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool is a pool of goroutines that execute patch fills.
//
// Work is queued in a single unbounded FIFO, so Submit never blocks the
// interactive goroutine. Queued work that has not started can be dropped
// with Discard.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	// workers is the number of worker goroutines.
	workers int

	// mu guards queue and wakes idle workers through cond.
	mu    sync.Mutex
	cond  *sync.Cond
	queue []func()

	// wg waits for all workers to finish.
	wg sync.WaitGroup

	// running indicates whether the pool is accepting work.
	running atomic.Bool

	// active counts work items currently executing.
	active atomic.Int64
}

// NewWorkerPool creates a new worker pool with the specified number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
// The pool starts immediately and workers begin waiting for work.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := &WorkerPool{workers: workers}
	p.cond = sync.NewCond(&p.mu)
	p.running.Store(true)

	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}

	return p
}

// worker is the main loop for each worker goroutine.
func (p *WorkerPool) worker() {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for len(p.queue) == 0 && p.running.Load() {
			p.cond.Wait()
		}
		if !p.running.Load() {
			p.mu.Unlock()
			return
		}
		work := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.active.Add(1)
		p.mu.Unlock()

		work()
		p.active.Add(-1)
	}
}

// Submit queues a single work item. It never blocks.
// If the pool is closed, this is a no-op.
func (p *WorkerPool) Submit(fn func()) {
	if fn == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running.Load() {
		return
	}
	p.queue = append(p.queue, fn)
	p.cond.Signal()
}

// Discard drops all queued work that has not started and returns how many
// items were dropped. Work already executing is not affected.
func (p *WorkerPool) Discard() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.queue)
	clear(p.queue)
	p.queue = p.queue[:0]
	return n
}

// Close shuts down the pool. Queued work is discarded; Close blocks until
// work already executing has returned.
// Close is safe to call multiple times.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	if !p.running.CompareAndSwap(true, false) {
		// Already closed
		p.mu.Unlock()
		return
	}
	clear(p.queue)
	p.queue = nil
	p.cond.Broadcast()
	p.mu.Unlock()

	// Wait for all workers to finish
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// QueuedWork returns the number of work items waiting for a worker.
func (p *WorkerPool) QueuedWork() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// ActiveWork returns the number of work items currently executing.
func (p *WorkerPool) ActiveWork() int {
	return int(p.active.Load())
}
