package sparse

import (
	"errors"
	"math"
	"sort"
)

var (
	// ErrSingular is returned when a factorization meets a zero (or
	// numerically negligible) pivot.
	ErrSingular = errors.New("sparse: matrix is singular")
	// ErrNoConvergence is returned by iterative solvers that do not reach
	// their tolerance within the iteration limit.
	ErrNoConvergence = errors.New("sparse: iterative solver did not converge")
)

// ApplyPivot uses the pivot row piv to eliminate column col from every other
// row for which elim returns true (all other rows if elim is nil).  The same
// row operations are applied to b when it is not nil.  When L is not nil the
// negated multiplier for each row is stored in L at (row, col).
func ApplyPivot(A Matrix, b []float64, col, piv int, elim func(row int) bool, L Matrix) {
	pval := A.At(piv, col)
	for _, nonzero := range A.SweepCol(col) {
		i := nonzero.I
		if i == piv || (elim != nil && !elim(i)) {
			continue
		}
		mult := -nonzero.Val / pval
		if L != nil {
			L.Set(i, col, -mult)
		}
		RowCombination(A, piv, i, mult)
		// the eliminated entry is zero by construction; don't keep rounding
		// residue around as fill
		A.Set(i, col, 0)
		if b != nil {
			b[i] += b[piv] * mult
		}
	}
}

// maxAbs returns the largest absolute entry of A.
func maxAbs(A Matrix) float64 {
	size, _ := A.Dims()
	m := 0.0
	for i := 0; i < size; i++ {
		for _, nonzero := range A.SweepRow(i) {
			m = math.Max(m, math.Abs(nonzero.Val))
		}
	}
	return m
}

// RCM provides an alternate degree-of-freedom reordering in assembled matrix
// that provides better bandwidth properties for solvers.  The returned slice
// maps each original index to its new index.
func RCM(A Matrix) []int {
	size, _ := A.Dims()

	degree := func(i int) int { return len(A.SweepRow(i)) }

	degreemap := make([]int, size)
	for i := range degreemap {
		degreemap[i] = i
	}
	sort.SliceStable(degreemap, func(i, j int) bool {
		return degree(degreemap[i]) < degree(degreemap[j])
	})

	// breadth-first search across adjacency/connections between nodes/dofs
	mapping := make(map[int]int, size)
	var nextlevel []int
	for len(mapping) < size {
		if len(nextlevel) == 0 {
			// Matrix does not represent a fully connected graph (or we are just
			// starting).  Restart from the lowest degree dof not yet mapped.
			for _, k := range degreemap {
				if _, ok := mapping[k]; !ok {
					mapping[k] = len(mapping)
					nextlevel = []int{k}
					break
				}
			}
		}
		nextlevel = nextRCMLevel(A, mapping, nextlevel, degree)
	}

	slice := make([]int, size)
	for from, to := range mapping {
		slice[from] = size - 1 - to
	}
	return slice
}

func nextRCMLevel(A Matrix, mapping map[int]int, ii []int, degree func(int) int) []int {
	var nextlevel []int
	tmp := []int{}
	for _, i := range ii {
		tmp = tmp[:0]
		for _, nonzero := range A.SweepRow(i) {
			j := nonzero.J
			if _, ok := mapping[j]; !ok {
				tmp = append(tmp, j)
			}
		}

		// insert into mapping batched by src row, lowest degree first
		sort.SliceStable(tmp, func(i, j int) bool { return degree(tmp[i]) < degree(tmp[j]) })
		for _, index := range tmp {
			if _, ok := mapping[index]; ok {
				continue
			}
			mapping[index] = len(mapping)
			nextlevel = append(nextlevel, index)
		}
	}
	return nextlevel
}
