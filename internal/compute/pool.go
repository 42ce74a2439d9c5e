package compute

import (
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// BackendPool is the registry name of the multi-core CPU backend.
const BackendPool = "pool"

// minChunk keeps tiny dispatches from paying goroutine overhead per cell.
const minChunk = 256

// Pool spreads a dispatch over a bounded set of goroutines. The index range
// is cut into contiguous chunks, several per worker so uneven chunks balance
// out, and each chunk runs its units in order.
//
// Pool is safe for concurrent use, although the simulation never issues
// overlapping dispatches.
type Pool struct {
	workers int
	closed  atomic.Bool
}

// NewPool creates a pool with the given worker count. If workers is 0 or
// negative, GOMAXPROCS is used.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{workers: workers}
}

// Name returns the backend identifier.
func (p *Pool) Name() string { return BackendPool }

// Capacity reports the number of workers.
func (p *Pool) Capacity() int { return p.workers }

// For runs fn for each index in [0, n) across the workers and waits for all
// of them.
func (p *Pool) For(n int, fn func(i int)) error {
	if p.closed.Load() {
		return ErrClosed
	}
	if n <= 0 {
		return nil
	}

	chunk := chunkSize(n, p.workers)
	var g errgroup.Group
	g.SetLimit(p.workers)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() (err error) {
			i := start
			defer func() {
				if r := recover(); r != nil {
					err = &PanicError{Index: i, Value: r}
				}
			}()
			for ; i < end; i++ {
				fn(i)
			}
			return nil
		})
	}
	return g.Wait()
}

// Close marks the pool unusable. Workers are per-dispatch so nothing else
// needs releasing.
func (p *Pool) Close() error {
	p.closed.Store(true)
	return nil
}

func chunkSize(n, workers int) int {
	c := n / (workers * 4)
	if c < minChunk {
		c = minChunk
	}
	return c
}
