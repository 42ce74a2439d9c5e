package grayscott

import (
	"errors"
	"fmt"

	"gray-scott/internal/core"
)

// NoiseAmplitude bounds the uniform perturbation applied to V at initialization.
const NoiseAmplitude = 0.2

// MaxCells caps a single field buffer. Four buffers of this many float32 values
// are allocated per session.
const MaxCells = 1 << 28

var (
	// ErrAllocation is returned when the field buffers cannot be allocated.
	ErrAllocation = errors.New("grayscott: buffer allocation failed")

	// ErrDisposed is returned when a disposed state is used.
	ErrDisposed = errors.New("grayscott: state disposed")
)

// State owns the double-buffered U and V fields of one session. Slot cur of
// each pair is the current generation and slot 1-cur the next one; Swap
// flips cur without moving data.
type State struct {
	grid core.Grid
	u    [2][]float32
	v    [2][]float32
	cur  int
}

// NewState allocates and seeds a state. See Initialize.
func NewState(w, h int, seed int64) (*State, error) {
	s := &State{}
	if err := s.Initialize(w, h, seed); err != nil {
		return nil, err
	}
	return s, nil
}

// Initialize allocates all four buffers and seeds the current generation:
// U is 1 everywhere, V is 0 plus uniform noise in [-NoiseAmplitude,
// NoiseAmplitude] drawn in row-major order and clamped to [0,1]. Any previous
// buffers are released first. On failure the state is left disposed.
func (s *State) Initialize(w, h int, seed int64) (err error) {
	s.Dispose()
	if w < core.MinGridSide || h < core.MinGridSide {
		return fmt.Errorf("%w: grid %dx%d below minimum side %d", ErrAllocation, w, h, core.MinGridSide)
	}
	if w > MaxCells/h {
		return fmt.Errorf("%w: grid %dx%d exceeds %d cells", ErrAllocation, w, h, MaxCells)
	}
	size := w * h

	defer func() {
		if r := recover(); r != nil {
			s.Dispose()
			err = fmt.Errorf("%w: %v", ErrAllocation, r)
		}
	}()

	u := make([]float32, size)
	v := make([]float32, size)
	s.u = [2][]float32{u, make([]float32, size)}
	s.v = [2][]float32{v, make([]float32, size)}
	s.cur = 0
	s.grid = core.Grid{W: w, H: h}

	for i := range u {
		u[i] = 1
	}
	rng := core.NewRNG(seed)
	for i := range v {
		noise := float32(rng.Symmetric(NoiseAmplitude))
		v[i] = clamp01(v[i] + noise)
	}
	return nil
}

// Grid returns the lattice shape; zero when disposed.
func (s *State) Grid() core.Grid { return s.grid }

// Size returns the grid dimensions.
func (s *State) Size() core.Size { return s.grid.Size() }

// Disposed reports whether the state holds no buffers.
func (s *State) Disposed() bool { return s.u[0] == nil }

// U returns the current U generation.
func (s *State) U() []float32 { return s.u[s.cur] }

// V returns the current V generation.
func (s *State) V() []float32 { return s.v[s.cur] }

// NextU returns the buffer the next U generation is written to.
func (s *State) NextU() []float32 { return s.u[1-s.cur] }

// NextV returns the buffer the next V generation is written to.
func (s *State) NextV() []float32 { return s.v[1-s.cur] }

// Swap exchanges the current and next roles of both fields.
func (s *State) Swap() { s.cur = 1 - s.cur }

// Dispose releases all buffers. Safe on a disposed or zero State.
func (s *State) Dispose() {
	s.u = [2][]float32{}
	s.v = [2][]float32{}
	s.cur = 0
	s.grid = core.Grid{}
}

func clamp01(x float32) float32 {
	return min(max(x, 0), 1)
}
