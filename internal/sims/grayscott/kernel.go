package grayscott

import (
	"fmt"

	"gray-scott/internal/compute"
	"gray-scott/internal/core"
)

// Stencil weights of the 3x3 diffusion kernel.
const (
	weightCardinal float32 = 0.20
	weightDiagonal float32 = 0.05
	weightCenter   float32 = -1.00
)

// Laplacian applies the weighted 3x3 stencil
//
//	| 0.05  0.20  0.05 |
//	| 0.20 -1.00  0.20 |
//	| 0.05  0.20  0.05 |
//
// to a center value c and its eight neighbours.
func Laplacian(c, n, s, e, w, ne, nw, se, sw float32) float32 {
	return weightCardinal*(n+s+e+w) + weightDiagonal*(ne+nw+se+sw) + weightCenter*c
}

// Kernel computes one generation of the Gray-Scott update. It holds only
// immutable inputs so a single value can be shared by every unit of a
// dispatch.
type Kernel struct {
	grid   core.Grid
	params Params
}

// NewKernel returns a kernel for the given lattice and coefficients.
func NewKernel(grid core.Grid, p Params) Kernel {
	return Kernel{grid: grid, params: p}
}

// Cell updates cell i: it reads the 3x3 neighbourhood of i from uIn/vIn with
// toroidal wrapping and writes the clamped result to uOut[i] and vOut[i].
func (k Kernel) Cell(i int, uIn, vIn, uOut, vOut []float32) {
	w, h := k.grid.W, k.grid.H
	x, y := i%w, i/w

	xw, xe := x-1, x+1
	if xw < 0 {
		xw = w - 1
	}
	if xe == w {
		xe = 0
	}
	yn, ys := y-1, y+1
	if yn < 0 {
		yn = h - 1
	}
	if ys == h {
		ys = 0
	}
	rn, rc, rs := yn*w, y*w, ys*w

	u := uIn[i]
	lapU := Laplacian(u,
		uIn[rn+x], uIn[rs+x], uIn[rc+xe], uIn[rc+xw],
		uIn[rn+xe], uIn[rn+xw], uIn[rs+xe], uIn[rs+xw])

	v := vIn[i]
	lapV := Laplacian(v,
		vIn[rn+x], vIn[rs+x], vIn[rc+xe], vIn[rc+xw],
		vIn[rn+xe], vIn[rn+xw], vIn[rs+xe], vIn[rs+xw])

	p := k.params
	reaction := u * v * v
	du := p.DiffusionU*lapU - reaction + p.Feed*(1-u)
	dv := p.DiffusionV*lapV + reaction - (p.Feed+p.Kill)*v

	uOut[i] = clamp01(u + du*p.DT)
	vOut[i] = clamp01(v + dv*p.DT)
}

// Dispatch runs Cell for every cell of s on the backend, reading the current
// generation and writing the next. It does not swap.
func (k Kernel) Dispatch(b compute.Backend, s *State) error {
	if s.Disposed() {
		return ErrDisposed
	}
	if s.Grid() != k.grid {
		return fmt.Errorf("grayscott: kernel grid %dx%d does not match state %dx%d",
			k.grid.W, k.grid.H, s.Grid().W, s.Grid().H)
	}
	uIn, vIn := s.U(), s.V()
	uOut, vOut := s.NextU(), s.NextV()
	return b.For(k.grid.Len(), func(i int) {
		k.Cell(i, uIn, vIn, uOut, vOut)
	})
}

// Advance dispatches n generations, swapping after each one. It returns the
// number of generations completed.
func (k Kernel) Advance(b compute.Backend, s *State, n int) (int, error) {
	for done := 0; done < n; done++ {
		if err := k.Dispatch(b, s); err != nil {
			return done, err
		}
		s.Swap()
	}
	return n, nil
}
