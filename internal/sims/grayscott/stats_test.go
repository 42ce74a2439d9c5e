package grayscott

import (
	"math"
	"testing"
)

func TestSummarize(t *testing.T) {
	st := Summarize([]float32{0, 0.5, 0.5, 1}, CoverageThreshold)
	if math.Abs(st.Mean-0.5) > 1e-9 {
		t.Fatalf("mean = %v, want 0.5", st.Mean)
	}
	if want := math.Sqrt(0.125); math.Abs(st.StdDev-want) > 1e-9 {
		t.Fatalf("stddev = %v, want %v", st.StdDev, want)
	}
	if st.Min != 0 || st.Max != 1 {
		t.Fatalf("range = [%v, %v], want [0, 1]", st.Min, st.Max)
	}
	if st.Coverage != 0.75 {
		t.Fatalf("coverage = %v, want 0.75", st.Coverage)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if st := Summarize(nil, CoverageThreshold); st != (FieldStats{}) {
		t.Fatalf("empty field = %+v, want zero", st)
	}
}

func TestSummarizeUniformField(t *testing.T) {
	st := Summarize([]float32{0.25, 0.25, 0.25}, CoverageThreshold)
	if st.StdDev > 1e-9 {
		t.Fatalf("stddev = %v, want 0", st.StdDev)
	}
	if st.Coverage != 0 {
		t.Fatalf("coverage = %v, threshold is exclusive", st.Coverage)
	}
}
