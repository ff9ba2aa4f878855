package sparse

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// SOR is a symmetric successive over-relaxation (Gauss-Seidel) solver.  Each
// iteration does a forward and a backward sweep over the rows.
type SOR struct {
	MaxIter int
	// Tol is the required change in the solution between iterations relative
	// to the solution norm.
	Tol float64
	// Omega is the relaxation factor, between 1.0 and 2.0 for
	// over-relaxation.  Zero means 1.8.
	Omega float64
	niter int
}

func (s *SOR) Status() string { return fmt.Sprintf("SOR converged in %v iterations", s.niter) }

func (s *SOR) solveRow(A Matrix, i int, b, soln []float64, omega float64) {
	xold := soln[i]
	diag, tot := 0.0, 0.0
	for _, nonzero := range A.SweepRow(i) {
		if nonzero.J == i {
			diag = nonzero.Val
			continue
		}
		tot += nonzero.Val * soln[nonzero.J]
	}
	soln[i] = (1-omega)*xold + omega*(b[i]-tot)/diag
}

func (s *SOR) Solve(A Matrix, b []float64) ([]float64, error) {
	size := len(b)
	for i := 0; i < size; i++ {
		if A.At(i, i) == 0 {
			return nil, fmt.Errorf("%w: zero diagonal at row %v", ErrSingular, i)
		}
	}

	maxiter, tol, omega := s.MaxIter, s.Tol, s.Omega
	if maxiter <= 0 {
		maxiter = 100 * size
	}
	if tol <= 0 {
		tol = 1e-12
	}
	if omega == 0 {
		omega = 1.8
	}

	prev := make([]float64, size)
	soln := append([]float64(nil), b...)
	diff := make([]float64, size)
	for s.niter = 1; s.niter <= maxiter; s.niter++ {
		for i := 0; i < size; i++ {
			s.solveRow(A, i, b, soln, omega)
		}
		for i := size - 1; i >= 0; i-- {
			s.solveRow(A, i, b, soln, omega)
		}

		// check convergence
		floats.SubTo(diff, soln, prev)
		norm := floats.Norm(soln, 2)
		if norm == 0 || floats.Norm(diff, 2)/norm < tol {
			return soln, nil
		}
		copy(prev, soln)
	}
	s.niter--
	return soln, fmt.Errorf("%w: SOR after %v iterations", ErrNoConvergence, s.niter)
}
