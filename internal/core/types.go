package core

// Size describes the dimensions of a simulation grid.
type Size struct {
	W int
	H int
}

// Cells returns W*H.
func (s Size) Cells() int { return s.W * s.H }

// FieldProvider exposes the host-readable concentration fields of a simulation.
type FieldProvider interface {
	FieldSize() Size
	FieldU() []float32
	FieldV() []float32
}
