package grayscott

import "math"

// CoverageThreshold is the V concentration above which a cell counts as
// part of a pattern.
const CoverageThreshold = 0.25

// FieldStats summarizes one concentration field.
type FieldStats struct {
	Mean     float64
	StdDev   float64
	Min      float64
	Max      float64
	Coverage float64 // fraction of cells above the threshold
}

// Summarize computes population statistics of values. Coverage counts cells
// strictly above threshold. An empty field yields the zero value.
func Summarize(values []float32, threshold float32) FieldStats {
	if len(values) == 0 {
		return FieldStats{}
	}
	st := FieldStats{Min: math.Inf(1), Max: math.Inf(-1)}
	var sum, sumSq float64
	covered := 0
	for _, x := range values {
		v := float64(x)
		sum += v
		sumSq += v * v
		st.Min = math.Min(st.Min, v)
		st.Max = math.Max(st.Max, v)
		if x > threshold {
			covered++
		}
	}
	n := float64(len(values))
	st.Mean = sum / n
	st.StdDev = math.Sqrt(math.Max(0, sumSq/n-st.Mean*st.Mean))
	st.Coverage = float64(covered) / n
	return st
}
