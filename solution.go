package fem

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
)

// Solution is a finite element function: DOF values on a mesh.
type Solution struct {
	Mesh  *Mesh
	Basis *Basis
	// U holds the value at every mesh node in global DOF order.
	U []float64
	// Report is set for non-linear solves.
	Report *IterationReport
}

// ValueAt returns the finite element approximation at x.
func (s *Solution) ValueAt(x float64) (float64, error) {
	e, err := s.Mesh.Find(x)
	if err != nil {
		return 0, err
	}
	u, _ := e.interpolate(s.Basis, s.U, x)
	return u, nil
}

// DerivativeAt returns the derivative of the approximation at x.  At an
// interior vertex the one-sided derivative of the element to the left is
// returned.
func (s *Solution) DerivativeAt(x float64) (float64, error) {
	e, err := s.Mesh.Find(x)
	if err != nil {
		return 0, err
	}
	_, dudx := e.interpolate(s.Basis, s.U, x)
	return dudx, nil
}

// Values evaluates the approximation at every point in xs.
func (s *Solution) Values(xs []float64) ([]float64, error) {
	us := make([]float64, len(xs))
	for i, x := range xs {
		u, err := s.ValueAt(x)
		if err != nil {
			return nil, err
		}
		us[i] = u
	}
	return us, nil
}

// Sample evaluates the approximation at n evenly spaced points spanning the
// domain (n is at least 2).
func (s *Solution) Sample(n int) (xs, us []float64) {
	if n < 2 {
		n = 2
	}
	a, b := s.Mesh.Bounds()
	xs = linspace(a, b, n)
	us, err := s.Values(xs)
	if err != nil {
		// every sample point is inside the mesh
		panic(err)
	}
	return xs, us
}

type NormKind int

const (
	// L2Norm is the L2 norm of u - u_h.
	L2Norm NormKind = iota
	// EnergyNorm is the H1 seminorm, the L2 norm of u' - u_h'.
	EnergyNorm
	// H1Norm is the full H1 norm.
	H1Norm
)

func (k NormKind) String() string {
	switch k {
	case L2Norm:
		return "L2"
	case EnergyNorm:
		return "energy"
	case H1Norm:
		return "H1"
	default:
		return fmt.Sprintf("NormKind(%d)", int(k))
	}
}

// Exact is a reference solution.  DU may be nil, in which case it is
// approximated by finite differences of U.
type Exact struct {
	U  func(x float64) float64
	DU func(x float64) float64
}

func (ex Exact) deriv(x float64) float64 {
	if ex.DU != nil {
		return ex.DU(x)
	}
	return fd.Derivative(ex.U, x, derivSettings)
}

// ErrorNorm measures the distance between the approximation and ex using
// order+4 Gauss points per element.
func (s *Solution) ErrorNorm(ex Exact, kind NormKind) (float64, error) {
	if ex.U == nil {
		return 0, fmt.Errorf("fem: exact solution has no value function")
	}
	switch kind {
	case L2Norm, EnergyNorm, H1Norm:
	default:
		return 0, fmt.Errorf("fem: unknown norm %v", kind)
	}

	q := GaussLegendre(int(s.Basis.Order()) + 4)
	tot := 0.0
	for _, e := range s.Mesh.Elems {
		e.sweep(s.Basis, q, s.U, func(qp *quadPoint) {
			x := qp.params.X
			if kind != EnergyNorm {
				d := ex.U(x) - qp.params.Sol
				tot += qp.dx * d * d
			}
			if kind != L2Norm {
				d := ex.deriv(x) - qp.params.GradSol
				tot += qp.dx * d * d
			}
		})
	}
	return math.Sqrt(tot), nil
}

// ConvergenceRates returns the observed orders of convergence
// log(e_i/e_(i+1)) / log(h_i/h_(i+1)) for successive (h, error) pairs.
func ConvergenceRates(hs, errs []float64) []float64 {
	n := len(hs)
	if len(errs) < n {
		n = len(errs)
	}
	if n < 2 {
		return nil
	}
	rates := make([]float64, n-1)
	for i := range rates {
		rates[i] = math.Log(errs[i]/errs[i+1]) / math.Log(hs[i]/hs[i+1])
	}
	return rates
}
