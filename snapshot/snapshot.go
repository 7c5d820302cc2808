// Package snapshot holds the latest immutable value published by one writer
// and read by any number of concurrent readers.
//
// Publish swaps a pointer to a fresh copy; Load dereferences whatever pointer
// is current. No lock is held across a read, and a reader never sees a value
// assembled from two publishes.
package snapshot

import (
	"errors"
	"sync/atomic"
)

// ErrUninitialized is returned by Load before the first Publish.
var ErrUninitialized = errors.New("snapshot: not initialized yet")

// Holder is the single-writer, multi-reader cell. The zero value is ready to
// use and uninitialized.
type Holder[T any] struct {
	p atomic.Pointer[T]
}

// Publish installs v. Values reachable from v (slices, maps) must not be
// mutated after publishing.
func (h *Holder[T]) Publish(v T) {
	h.p.Store(&v)
}

// Load returns the most recently published value.
func (h *Holder[T]) Load() (T, error) {
	p := h.p.Load()
	if p == nil {
		var zero T
		return zero, ErrUninitialized
	}
	return *p, nil
}

// Published reports whether Publish has been called at least once.
func (h *Holder[T]) Published() bool {
	return h.p.Load() != nil
}
