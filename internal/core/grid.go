package core

// MinGridSide is the smallest width or height a periodic grid may have.
const MinGridSide = 3

// Grid describes the shape of a periodic 2D lattice stored in row-major order.
type Grid struct {
	W, H int
}

// NewGrid returns a grid with both sides raised to MinGridSide when smaller.
func NewGrid(w, h int) Grid {
	if w < MinGridSide {
		w = MinGridSide
	}
	if h < MinGridSide {
		h = MinGridSide
	}
	return Grid{W: w, H: h}
}

// Len returns the number of cells.
func (g Grid) Len() int { return g.W * g.H }

// Size converts the grid to a Size.
func (g Grid) Size() Size { return Size{W: g.W, H: g.H} }

// Index returns the linear slice index for coordinates (x, y).
func (g Grid) Index(x, y int) int { return y*g.W + x }

// Coords is the inverse of Index.
func (g Grid) Coords(i int) (int, int) { return i % g.W, i / g.W }

// Wrap applies toroidal wrapping to the provided coordinates.
func (g Grid) Wrap(x, y int) (int, int) {
	x = (x%g.W + g.W) % g.W
	y = (y%g.H + g.H) % g.H
	return x, y
}

// WrappedIndex wraps (x, y) onto the torus and returns its linear index.
func (g Grid) WrappedIndex(x, y int) int {
	x, y = g.Wrap(x, y)
	return y*g.W + x
}
