package compute

import "sync/atomic"

// BackendSerial is the registry name of the single-threaded backend.
const BackendSerial = "serial"

// Serial executes every unit on the calling goroutine in index order.
type Serial struct {
	closed atomic.Bool
}

// NewSerial returns a ready Serial backend.
func NewSerial() *Serial { return &Serial{} }

// Name returns the backend identifier.
func (s *Serial) Name() string { return BackendSerial }

// Capacity is always one execution lane.
func (s *Serial) Capacity() int { return 1 }

// For runs fn for each index sequentially.
func (s *Serial) For(n int, fn func(i int)) (err error) {
	if s.closed.Load() {
		return ErrClosed
	}
	i := 0
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Index: i, Value: r}
		}
	}()
	for ; i < n; i++ {
		fn(i)
	}
	return nil
}

// Close marks the backend unusable.
func (s *Serial) Close() error {
	s.closed.Store(true)
	return nil
}
