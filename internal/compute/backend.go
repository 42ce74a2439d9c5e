// Package compute provides the parallel execution contexts the step kernel is
// dispatched on, and the selector that picks the most capable one.
package compute

import (
	"errors"
	"fmt"
)

var (
	// ErrNoBackend is returned when no registered backend can be opened.
	ErrNoBackend = errors.New("compute: no backend available")

	// ErrUnknownBackend is returned by Open for unregistered names.
	ErrUnknownBackend = errors.New("compute: unknown backend")

	// ErrClosed is returned when dispatching on a closed backend.
	ErrClosed = errors.New("compute: backend closed")
)

// Backend is a data-parallel execution context.
//
// For runs fn once for every index in [0, n) and returns only after every
// unit has finished, so a completed call is a synchronization barrier. Units
// may run concurrently and in any order; callers must not let one unit read
// what another writes.
type Backend interface {
	Name() string
	Capacity() int
	For(n int, fn func(i int)) error
	Close() error
}

// PanicError reports a panic raised inside a dispatched unit of work.
type PanicError struct {
	Index int
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("compute: unit %d panicked: %v", e.Index, e.Value)
}
