package fem

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// State is the phase of a non-linear iteration.
type State int

const (
	Initializing State = iota
	Iterating
	Converged
	Diverged
	MaxIterationsReached
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Iterating:
		return "iterating"
	case Converged:
		return "converged"
	case Diverged:
		return "diverged"
	case MaxIterationsReached:
		return "max-iterations-reached"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// IterationReport summarizes a non-linear solve.
type IterationReport struct {
	Method     Method
	State      State
	Iterations int
	// UpdateNorms holds max|u_k - u_(k-1)| for every iteration.
	UpdateNorms []float64
}

// SolveNonlinear solves p by fixed-point (Picard) or Newton iteration.  The
// iteration stops when the max-norm of the update drops below s.Tol.  If the
// update exceeds s.DivergenceBound or is not finite a *DivergenceError is
// returned.  If s.MaxIter iterations pass without convergence, the last
// iterate is returned together with a *MaxIterationsError.
func SolveNonlinear(p *Problem, s Settings) (*Solution, *IterationReport, error) {
	report := &IterationReport{Method: s.Method, State: Initializing}
	pl, err := newPipeline(p, s)
	if err != nil {
		return nil, report, err
	}
	s = pl.s

	var step func(prev []float64) ([]float64, error)
	switch s.Method {
	case Picard:
		step = pl.picardStep
	case Newton:
		step = pl.newtonStep
	default:
		return nil, report, fmt.Errorf("fem: unknown non-linear method %v", s.Method)
	}

	u := make([]float64, pl.mesh.NumDOF())
	if s.Initial != nil {
		if len(s.Initial) != len(u) {
			return nil, report, fmt.Errorf("%w: initial iterate has %v entries, mesh has %v DOFs",
				ErrInvalidDiscretization, len(s.Initial), len(u))
		}
		copy(u, s.Initial)
	}

	report.State = Iterating
	diff := make([]float64, len(u))
	for k := 1; k <= s.MaxIter; k++ {
		next, err := step(slices.Clone(u))
		if err != nil {
			return nil, report, fmt.Errorf("%v iteration %v: %w", s.Method, k, err)
		}

		norm := floats.Norm(floats.SubTo(diff, next, u), math.Inf(1))
		report.Iterations = k
		report.UpdateNorms = append(report.UpdateNorms, norm)
		logger.Printf("%v iteration %v: update norm %.6e", s.Method, k, norm)

		if !isFinite(norm) || norm > s.DivergenceBound {
			report.State = Diverged
			return nil, report, &DivergenceError{
				Iteration: k,
				Norm:      norm,
				Last:      next,
				History:   append([]float64(nil), report.UpdateNorms...),
			}
		}
		u = next
		if norm < s.Tol {
			report.State = Converged
			return &Solution{Mesh: pl.mesh, Basis: pl.basis, U: u, Report: report}, report, nil
		}
	}

	report.State = MaxIterationsReached
	sol := &Solution{Mesh: pl.mesh, Basis: pl.basis, U: u, Report: report}
	return sol, report, &MaxIterationsError{
		Iterations: report.Iterations,
		Norm:       report.UpdateNorms[len(report.UpdateNorms)-1],
		History:    append([]float64(nil), report.UpdateNorms...),
	}
}

// picardStep solves the linear problem obtained by freezing prev into the
// coefficients.
func (pl *pipeline) picardStep(prev []float64) ([]float64, error) {
	sys, err := pl.system(prev)
	if err != nil {
		return nil, err
	}
	if err := ApplyBoundaryConditions(sys, pl.mesh, pl.p.Left, pl.p.Right); err != nil {
		return nil, err
	}
	return pl.solve(sys)
}

// newtonStep solves J(u) du = -r(u) with r(u) = K(u) u - F(u) and returns
// u + du.  Dirichlet rows of the update fix u to the boundary value.
func (pl *pipeline) newtonStep(u []float64) ([]float64, error) {
	left, right := pl.p.Left, pl.p.Right
	l, r := pl.mesh.boundaryDOFs()

	sys, err := pl.system(u)
	if err != nil {
		return nil, err
	}
	applyNatural(sys, l, left)
	applyNatural(sys, r, right)
	if err := checkWellPosed(sys.A, left, right); err != nil {
		return nil, err
	}

	jac, err := pl.jacobian(u)
	if err != nil {
		return nil, err
	}
	if left.Kind == Robin {
		jac.A.Add(l, l, left.Alpha)
	}
	if right.Kind == Robin {
		jac.A.Add(r, r, right.Alpha)
	}
	jac.B = sys.Residual(u)
	floats.Scale(-1, jac.B)
	if left.Kind == Dirichlet {
		applyDirichlet(jac, l, left.Value-u[l])
	}
	if right.Kind == Dirichlet {
		applyDirichlet(jac, r, right.Value-u[r])
	}

	du, err := pl.solve(jac)
	if err != nil {
		return nil, err
	}
	return floats.AddTo(du, du, u), nil
}
