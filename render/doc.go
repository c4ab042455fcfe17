// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render fills viewport patches in the background.
//
// A [Coordinator] accepts fill requests for composite patches, renders the
// corresponding data-space region of every source layer on a worker pool,
// composites the layers into the patch buffer and reports each completed
// patch through a notification mailbox drained by the interactive
// goroutine.
//
// Requests are deduplicated per patch id. [Coordinator.CancelAll] advances
// a generation counter; work and notifications from older generations are
// dropped, and a fill that observes a newer generation never clears the
// patch's dirty flag.
//
// # Threading
//
// Fills run on a [WorkerPool] with an unbounded queue, so RequestPatch never
// blocks the interactive goroutine. Each fill takes the lock of one patch at
// a time and releases it before posting its notification.
//
// # Logging
//
// The package logs through [Logger], silent by default. Failed source
// requests are logged at Warn, lifecycle events at Info.
package render
