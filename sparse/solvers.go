package sparse

import (
	"bytes"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Solver solves the linear system A*x=b.  Implementations do not modify A or
// b.
type Solver interface {
	Solve(A Matrix, b []float64) (soln []float64, err error)
	Status() string
}

// Preconditioner is a function that takes a (e.g. residual) vector r and
// applies a preconditioning matrix to it and stores the result in z.
type Preconditioner func(z, r []float64)

// IncompleteCholesky returns a preconditioner that uses an incomplete
// cholesky factorization (incomplete via maintaining the same sparsity
// pattern as the matrix A).  The factorization is then used to solve for z in
// the system A*z=r for the preconditioner - i.e. for the preconditioning
// M^(-1)*r, M is the incomplete cholesky factorization.
func IncompleteCholesky(A Matrix) (Preconditioner, error) {
	size, _ := A.Dims()
	chol, err := NewCholesky(RestrictByPattern{NewSparse(size), A}, A)
	if err != nil {
		return nil, err
	}
	return func(z, r []float64) {
		copy(z, chol.Solve(r))
	}, nil
}

// CG implements a preconditioned linear conjugate gradient solver (see
// http://wikipedia.org/wiki/Conjugate_gradient_method).  A must be symmetric
// positive definite.
type CG struct {
	MaxIter int
	// Tol is the residual norm relative to the norm of b required for
	// convergence.
	Tol float64
	// Preconditioner is the preconditioning matrix used for each iteration of
	// the CG solver. If it is nil, an incomplete cholesky preconditioner is
	// built from A for each solve.
	Preconditioner Preconditioner
	niter          int
	ndof           int
	nnz            int
	resid          float64
}

func (cg *CG) Status() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "CG Solver Stats:\n")
	fmt.Fprintf(&buf, "    %v dof, %v nonzeros\n", cg.ndof, cg.nnz)
	fmt.Fprintf(&buf, "    %v iterations, relative residual %.3g", cg.niter, cg.resid)
	return buf.String()
}

func (cg *CG) Solve(A Matrix, b []float64) (x []float64, err error) {
	maxiter, tol := cg.MaxIter, cg.Tol
	if maxiter <= 0 {
		maxiter = 10 * len(b)
	}
	if tol <= 0 {
		tol = 1e-12
	}
	precond := cg.Preconditioner
	if precond == nil {
		if precond, err = IncompleteCholesky(A); err != nil {
			return nil, fmt.Errorf("cg preconditioner: %w", err)
		}
	}

	csr := ToCSR(A)
	size := len(b)
	cg.ndof = size
	cg.nnz = len(csr.RawMatrix().Data)

	x = make([]float64, size)
	bnorm := floats.Norm(b, 2)
	if bnorm == 0 {
		cg.niter, cg.resid = 0, 0
		return x, nil
	}

	r := append([]float64(nil), b...)
	z := make([]float64, size)
	p := make([]float64, size)
	ap := make([]float64, size)
	precond(z, r)
	copy(p, z)
	rz := floats.Dot(r, z)

	for cg.niter = 1; cg.niter <= maxiter; cg.niter++ {
		MulCSR(ap, csr, p)
		alpha := rz / floats.Dot(p, ap)
		floats.AddScaled(x, alpha, p)   // xnext = x+alpha*p
		floats.AddScaled(r, -alpha, ap) // rnext = r-alpha*A*p
		cg.resid = floats.Norm(r, 2) / bnorm
		if cg.resid < tol {
			return x, nil
		}
		if math.IsNaN(cg.resid) {
			return x, fmt.Errorf("%w: breakdown at iteration %v", ErrNoConvergence, cg.niter)
		}
		precond(z, r)
		rznext := floats.Dot(r, z)
		beta := rznext / rz
		rz = rznext
		floats.AddScaledTo(p, z, beta, p) // pnext = z + beta*p
	}
	cg.niter--
	return x, fmt.Errorf("%w: relative residual %.3g after %v iterations", ErrNoConvergence, cg.resid, cg.niter)
}

// DefaultMaxCond is the condition number estimate above which DenseLU reports
// a singular system.
const DefaultMaxCond = 1e12

// DenseLU solves the system with a dense partial-pivoting LU factorization.
type DenseLU struct {
	// MaxCond is the largest acceptable condition number estimate.  Zero
	// means DefaultMaxCond.
	MaxCond float64
}

func (DenseLU) Status() string { return "" }

func (s DenseLU) Solve(A Matrix, b []float64) ([]float64, error) {
	maxcond := s.MaxCond
	if maxcond == 0 {
		maxcond = DefaultMaxCond
	}

	var lu mat.LU
	lu.Factorize(mat.DenseCopyOf(A))
	if cond := lu.Cond(); math.IsInf(cond, 0) || math.IsNaN(cond) || cond > maxcond {
		return nil, fmt.Errorf("%w: condition number estimate %.3g exceeds %.3g", ErrSingular, cond, maxcond)
	}

	var x mat.VecDense
	if err := lu.SolveVecTo(&x, false, mat.NewVecDense(len(b), append([]float64(nil), b...))); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	return x.RawVector().Data, nil
}

// GaussJordan performs Gaussian-Jordan elimination on an augmented matrix
// [A|b] to solve the system A*x=b.
type GaussJordan struct{}

func (GaussJordan) Status() string { return "" }

func (gj GaussJordan) Solve(A Matrix, b []float64) ([]float64, error) {
	size, _ := A.Dims()
	AA := NewSparse(size)
	Copy(AA, A)
	bb := append([]float64(nil), b...)
	tiny := 1e-14 * maxAbs(A)

	// Using pivot rows (usually along the diagonal), eliminate all entries
	// in not-yet-pivoted rows - doing this choosing a pivot row to eliminate
	// nonzeros in each column.  We only eliminate in undone rows on the first
	// pass to reduce fill-in.  If we do only one pass total, eliminating
	// entries above the diagonal converts many zero entries into nonzero
	// entries which slows the algorithm down immensely.  The second pass walks
	// the pivot rows in reverse eliminating the remaining nonzeros.

	donerows := make([]bool, size)
	pivots := make([]int, size)

	// first pass
	for j := 0; j < size; j++ {
		// the largest undone entry in column j becomes the pivot
		piv, pval := -1, tiny
		for _, nonzero := range AA.SweepCol(j) {
			if !donerows[nonzero.I] && math.Abs(nonzero.Val) > pval {
				piv, pval = nonzero.I, math.Abs(nonzero.Val)
			}
		}
		if piv < 0 {
			return nil, fmt.Errorf("%w: no pivot for column %v", ErrSingular, j)
		}
		pivots[j] = piv
		donerows[piv] = true

		ApplyPivot(AA, bb, j, piv, func(i int) bool { return !donerows[i] }, nil)
	}

	// second pass
	for j := size - 1; j >= 0; j-- {
		ApplyPivot(AA, bb, j, pivots[j], nil, nil)
	}

	// renormalize each row so that leading nonzeros are ones (row echelon to
	// reduced row echelon) and re-sequence solution based on pivot row
	// indices/order
	x := make([]float64, size)
	for j, i := range pivots {
		x[j] = bb[i] / AA.At(i, j)
	}
	return x, nil
}

// GaussJordanSym uses gaussian elimination with the reverse Cuthill-McKee
// algorithm to permute the matrix indices/DOF to have a smaller bandwidth.
type GaussJordanSym struct{}

func (GaussJordanSym) Status() string { return "" }

func (GaussJordanSym) Solve(A Matrix, b []float64) ([]float64, error) {
	size, _ := A.Dims()

	mapping := RCM(A)
	AA := NewSparse(size)
	Permute(AA, A, mapping)
	bb := make([]float64, size)
	for i, inew := range mapping {
		bb[inew] = b[i]
	}

	x, err := GaussJordan{}.Solve(AA, bb)
	if err != nil {
		return nil, err
	}

	// re-sequence solution based on RCM permutation/reordering
	xx := make([]float64, size)
	for i, inew := range mapping {
		xx[i] = x[inew]
	}
	return xx, nil
}
