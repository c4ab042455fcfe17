// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "sync"

// Available reports that the fill of composite patch ID finished.
type Available struct {
	// ID is the patch id.
	ID int

	// Generation is the coordinator generation the request belonged to.
	Generation uint64

	// Superseded reports that the patch was invalidated while the fill ran.
	// Nothing was written and the patch is still dirty; repainting it
	// requests a fresh fill.
	Superseded bool
}

// mailbox is an unbounded queue of notifications. Workers post without
// blocking; the interactive goroutine takes everything at once.
type mailbox struct {
	mu     sync.Mutex
	items  []Available
	notify chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{notify: make(chan struct{}, 1)}
}

// post appends a and wakes a waiting receiver.
func (m *mailbox) post(a Available) {
	m.mu.Lock()
	m.items = append(m.items, a)
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
		// a wake-up is already pending
	}
}

// take removes and returns all queued notifications.
func (m *mailbox) take() []Available {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.items
	m.items = nil
	return items
}

// reset drops all queued notifications.
func (m *mailbox) reset() {
	m.mu.Lock()
	m.items = nil
	m.mu.Unlock()
}
