// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"math/bits"
	"sync/atomic"
)

// pendingSet tracks which patch ids have a fill request outstanding, using
// an atomic bitmap with one bit per patch packed into uint64 words.
//
// Set and Clear are lock-free; the coordinator additionally serialises them
// with its generation counter so that a reset cannot interleave with a
// stale completion.
type pendingSet struct {
	// words is the bitmap. Bit index = patch id.
	words []atomic.Uint64

	// size is the number of patch ids tracked.
	size int
}

// newPendingSet creates an empty set for ids in [0, size).
func newPendingSet(size int) *pendingSet {
	size = max(size, 0)
	return &pendingSet{
		words: make([]atomic.Uint64, (size+63)/64),
		size:  size,
	}
}

// TrySet marks id pending. It returns false if id was already pending or is
// out of range.
func (s *pendingSet) TrySet(id int) bool {
	if id < 0 || id >= s.size {
		return false
	}
	mask := uint64(1) << (id & 63)
	old := s.words[id/64].Or(mask)
	return old&mask == 0
}

// Clear marks id as no longer pending.
func (s *pendingSet) Clear(id int) {
	if id < 0 || id >= s.size {
		return
	}
	s.words[id/64].And(^(uint64(1) << (id & 63)))
}

// Reset clears every id.
func (s *pendingSet) Reset() {
	for i := range s.words {
		s.words[i].Store(0)
	}
}

// Count returns the number of pending ids.
func (s *pendingSet) Count() int {
	count := 0
	for i := range s.words {
		count += bits.OnesCount64(s.words[i].Load())
	}
	return count
}
