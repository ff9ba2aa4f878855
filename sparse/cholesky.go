package sparse

import (
	"fmt"
	"math"
)

type Cholesky struct {
	L Matrix
}

// NewCholesky computes the Cholesky decomposition of the symmetric positive
// definite matrix A and stores it in L.  If L is nil, a new Sparse matrix
// will be created.  Incomplete factorizations can be computed by passing in
// an L that ignores nonzero entries in certain locations (see
// RestrictByPattern).
func NewCholesky(L, A Matrix) (*Cholesky, error) {
	size, _ := A.Dims()
	if L == nil {
		L = NewSparse(size)
	}
	Copy(L, A)

	for k := 0; k < size; k++ {
		akk := L.At(k, k)
		if akk <= 0 || math.IsNaN(akk) {
			return nil, fmt.Errorf("%w: cholesky pivot %v at row %v is not positive", ErrSingular, akk, k)
		}
		akk = math.Sqrt(akk)
		L.Set(k, k, akk)

		// scale the column below the diagonal
		var col []Nonzero
		for _, nonzero := range L.SweepCol(k) {
			if nonzero.I > k {
				nonzero.Val /= akk
				L.Set(nonzero.I, k, nonzero.Val)
				col = append(col, nonzero)
			}
		}

		// rank-1 update of the trailing lower triangle
		for _, nj := range col {
			for _, ni := range col {
				if ni.I < nj.I {
					continue
				}
				L.Set(ni.I, nj.I, L.At(ni.I, nj.I)-ni.Val*nj.Val)
			}
		}
	}

	// zero out above the diagonal
	for i := 0; i < size; i++ {
		for _, nonzero := range L.SweepRow(i) {
			if nonzero.J > i {
				L.Set(i, nonzero.J, 0)
			}
		}
	}
	return &Cholesky{L: L}, nil
}

// Solve solves L*L^T*x = b.
func (c *Cholesky) Solve(b []float64) []float64 {
	// Solve Ly = b via forward substitution
	y := make([]float64, len(b))
	for i := 0; i < len(b); i++ {
		tot := 0.0
		div := 0.0
		for _, nonzero := range c.L.SweepRow(i) {
			if nonzero.J == nonzero.I {
				div = nonzero.Val
			} else {
				tot += y[nonzero.J] * nonzero.Val
			}
		}
		y[i] = (b[i] - tot) / div
	}

	// Solve L^T x = y via backward substitution
	x := make([]float64, len(b))
	for i := len(b) - 1; i >= 0; i-- {
		// SweepCol instead of SweepRow simulates the L->L^T transpose
		tot := 0.0
		div := 0.0
		for _, nonzero := range c.L.SweepCol(i) {
			if nonzero.I == nonzero.J {
				div = nonzero.Val
			} else {
				tot += x[nonzero.I] * nonzero.Val
			}
		}
		x[i] = (y[i] - tot) / div
	}
	return x
}
