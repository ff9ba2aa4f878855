package sparse

import (
	"fmt"
	"math"
)

// LU holds an LU factorization (without pivoting) of a matrix A used for
// solving Ax=b.  L is unit lower triangular.
type LU struct {
	L, U Matrix
}

// Factorize computes the factorization of A into lu.L and lu.U, allocating
// them when nil.  Passing RestrictByPattern matrices yields an incomplete
// factorization.
func (lu *LU) Factorize(A Matrix) error {
	size, _ := A.Dims()
	if lu.L == nil {
		lu.L = NewSparse(size)
	}
	if lu.U == nil {
		lu.U = NewSparse(size)
	}

	Copy(lu.U, A)
	tiny := 1e-14 * maxAbs(A)
	for j := 0; j < size; j++ {
		if piv := lu.U.At(j, j); math.Abs(piv) <= tiny {
			return fmt.Errorf("%w: zero pivot at row %v", ErrSingular, j)
		}
		lu.L.Set(j, j, 1)
		ApplyPivot(lu.U, nil, j, j, func(i int) bool { return i > j }, lu.L)
	}
	return nil
}

// Solve solves L*U*x = b storing the result in x, which is allocated when nil.
func (lu *LU) Solve(b, x []float64) []float64 {
	if x == nil {
		x = make([]float64, len(b))
	}

	// Solve Ly = b via forward substitution
	y := make([]float64, len(b))
	for i := 0; i < len(b); i++ {
		tot := 0.0
		div := 0.0
		for _, nonzero := range lu.L.SweepRow(i) {
			if nonzero.I == nonzero.J {
				div = nonzero.Val
			} else {
				tot += y[nonzero.J] * nonzero.Val
			}
		}
		y[i] = (b[i] - tot) / div
	}

	// Solve Ux = y via backward substitution
	for i := len(b) - 1; i >= 0; i-- {
		tot := 0.0
		div := 0.0
		for _, nonzero := range lu.U.SweepRow(i) {
			if nonzero.I == nonzero.J {
				div = nonzero.Val
			} else {
				tot += x[nonzero.J] * nonzero.Val
			}
		}
		x[i] = (y[i] - tot) / div
	}
	return x
}

// SparseLU solves systems via a sparse LU factorization without pivoting.  It
// is suitable for diagonally dominant systems such as those of coercive
// finite element problems.
type SparseLU struct{}

func (SparseLU) Status() string { return "" }

func (SparseLU) Solve(A Matrix, b []float64) ([]float64, error) {
	lu := &LU{}
	if err := lu.Factorize(A); err != nil {
		return nil, err
	}
	return lu.Solve(b, nil), nil
}
