package grayscott

import (
	"errors"
	"math"
	"slices"
	"testing"
)

func TestInitializeSeedsFields(t *testing.T) {
	s, err := NewState(17, 9, 3)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(s.U()); got != 17*9 {
		t.Fatalf("len(U) = %d, want %d", got, 17*9)
	}
	for _, buf := range [][]float32{s.V(), s.NextU(), s.NextV()} {
		if len(buf) != 17*9 {
			t.Fatalf("buffer length %d, want %d", len(buf), 17*9)
		}
	}
	for i, u := range s.U() {
		if u != 1 {
			t.Fatalf("U[%d] = %v, want 1", i, u)
		}
	}
	zeros, positive := 0, 0
	for i, v := range s.V() {
		if v < 0 || v > NoiseAmplitude {
			t.Fatalf("V[%d] = %v outside [0, %v]", i, v, NoiseAmplitude)
		}
		if v == 0 {
			zeros++
		} else {
			positive++
		}
	}
	if zeros == 0 || positive == 0 {
		t.Fatalf("noise should clamp roughly half the cells to zero: zeros=%d positive=%d", zeros, positive)
	}
}

func TestInitializeDeterministic(t *testing.T) {
	a, err := NewState(32, 24, 99)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewState(32, 24, 99)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(a.V(), b.V()) || !slices.Equal(a.U(), b.U()) {
		t.Fatal("identical seeds must reproduce identical initial fields")
	}
	c, err := NewState(32, 24, 100)
	if err != nil {
		t.Fatal(err)
	}
	if slices.Equal(a.V(), c.V()) {
		t.Fatal("different seeds produced the same noise field")
	}

	// Re-initializing a used state matches a fresh one.
	a.Swap()
	a.NextV()[0] = 0.9
	if err := a.Initialize(32, 24, 99); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(a.V(), b.V()) {
		t.Fatal("Initialize did not rebuild the field from scratch")
	}
}

func TestSwapExchangesBufferIdentity(t *testing.T) {
	s, err := NewState(4, 4, 1)
	if err != nil {
		t.Fatal(err)
	}
	u0, v0 := &s.U()[0], &s.V()[0]
	u1, v1 := &s.NextU()[0], &s.NextV()[0]

	s.Swap()
	if &s.U()[0] != u1 || &s.V()[0] != v1 {
		t.Fatal("after one swap the current buffers must be the former next buffers")
	}
	if &s.NextU()[0] != u0 || &s.NextV()[0] != v0 {
		t.Fatal("after one swap the next buffers must be the former current buffers")
	}
	s.Swap()
	if &s.U()[0] != u0 || &s.V()[0] != v0 {
		t.Fatal("after two swaps the original buffers must be current again")
	}
}

func TestDisposeIsIdempotent(t *testing.T) {
	var zero State
	zero.Dispose()
	if !zero.Disposed() {
		t.Fatal("zero state must report disposed")
	}

	s, err := NewState(5, 5, 1)
	if err != nil {
		t.Fatal(err)
	}
	s.Dispose()
	s.Dispose()
	if !s.Disposed() || s.U() != nil || s.NextV() != nil {
		t.Fatal("Dispose must release every buffer")
	}
}

func TestInitializeRejectsBadSizes(t *testing.T) {
	cases := []struct{ w, h int }{
		{2, 10},
		{10, 0},
		{MaxCells, 2 * MaxCells},
		{1 << 20, 1 << 20},
	}
	for _, c := range cases {
		s := &State{}
		err := s.Initialize(c.w, c.h, 1)
		if !errors.Is(err, ErrAllocation) {
			t.Fatalf("Initialize(%d,%d) = %v, want ErrAllocation", c.w, c.h, err)
		}
		if !s.Disposed() {
			t.Fatalf("Initialize(%d,%d) left buffers behind", c.w, c.h)
		}
	}
}

func TestCheckBoundsReportsUBeforeV(t *testing.T) {
	s, err := NewState(4, 4, 1)
	if err != nil {
		t.Fatal(err)
	}
	s.U()[3] = 2
	s.V()[5] = float32(math.NaN())
	for range 50 {
		err := checkBounds(s)
		if !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("checkBounds = %v, want ErrOutOfBounds", err)
		}
		if got, want := err.Error(), ErrOutOfBounds.Error()+": U[3] = 2"; got != want {
			t.Fatalf("checkBounds = %q, want %q", got, want)
		}
	}
}
