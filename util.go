package fem

import "math"

// linspace returns n evenly spaced points from a to b inclusive.  The end
// points are exact.
func linspace(a, b float64, n int) []float64 {
	if n == 1 {
		return []float64{a}
	}
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = a + (b-a)*float64(i)/float64(n-1)
	}
	xs[n-1] = b
	return xs
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
