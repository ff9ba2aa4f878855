package fem

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/AvanishMeedimale/finite-element/sparse"
)

// LinearSolver solves A*x = b.  All solvers in package sparse implement it.
type LinearSolver interface {
	Solve(A sparse.Matrix, b []float64) ([]float64, error)
}

// Problem is a complete boundary value problem: equation coefficients,
// boundary conditions and discretization parameters.
type Problem struct {
	Coefficients
	// Left and Right are the conditions at a and b.
	Left, Right BoundaryCondition
	// Domain is the interval [a, b].
	Domain [2]float64
	// Elements is the number of uniform elements over Domain.
	Elements int
	Order    Order
	// Vertices, when not empty, defines a non-uniform mesh and overrides
	// Domain and Elements.
	Vertices []float64
}

// Mesh builds the mesh described by the problem.
func (p *Problem) Mesh() (*Mesh, error) {
	if len(p.Vertices) > 0 {
		return NewMeshSimple1D(p.Vertices, p.Order)
	}
	return NewMesh(p.Domain[0], p.Domain[1], p.Elements, p.Order)
}

type Method int

const (
	// Picard re-assembles the system with the previous iterate frozen into
	// the coefficients.
	Picard Method = iota
	// Newton solves for an update using the residual and its Jacobian.
	Newton
)

func (m Method) String() string {
	switch m {
	case Picard:
		return "picard"
	case Newton:
		return "newton"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// Settings configures a solve.  Zero fields take the values of
// DefaultSettings.
type Settings struct {
	// Solver is the linear solver.
	Solver LinearSolver
	// QuadPoints is the number of Gauss points per element (order+2 if zero).
	QuadPoints int
	// Workers is the number of goroutines used for element assembly.
	Workers int

	// Method, Tol, MaxIter and DivergenceBound only apply to non-linear
	// problems.  Tol bounds the max-norm of the update between iterates.
	Method          Method
	Tol             float64
	MaxIter         int
	DivergenceBound float64
	// Initial is the initial iterate (zero if nil).
	Initial []float64
}

func DefaultSettings() Settings {
	return Settings{
		Solver:          sparse.DenseLU{MaxCond: sparse.DefaultMaxCond},
		Method:          Picard,
		Tol:             1e-8,
		MaxIter:         50,
		DivergenceBound: 1e10,
	}
}

func (s Settings) withDefaults() Settings {
	def := DefaultSettings()
	if s.Solver == nil {
		s.Solver = def.Solver
	}
	if s.Tol <= 0 {
		s.Tol = def.Tol
	}
	if s.MaxIter <= 0 {
		s.MaxIter = def.MaxIter
	}
	if s.DivergenceBound <= 0 {
		s.DivergenceBound = def.DivergenceBound
	}
	return s
}

// Solve discretizes and solves p, dispatching to SolveNonlinear when any
// coefficient depends on the solution.
func Solve(p *Problem, s Settings) (*Solution, error) {
	if p.Nonlinear() {
		sol, _, err := SolveNonlinear(p, s)
		return sol, err
	}

	pl, err := newPipeline(p, s)
	if err != nil {
		return nil, err
	}
	sys, err := pl.system(nil)
	if err != nil {
		return nil, err
	}
	if err := ApplyBoundaryConditions(sys, pl.mesh, p.Left, p.Right); err != nil {
		return nil, err
	}
	u, err := pl.solve(sys)
	if err != nil {
		return nil, err
	}
	return &Solution{Mesh: pl.mesh, Basis: pl.basis, U: u}, nil
}

// pipeline holds the discretization shared by every assembly round of a
// solve.
type pipeline struct {
	p     *Problem
	s     Settings
	mesh  *Mesh
	basis *Basis
	quad  QuadRule
}

func newPipeline(p *Problem, s Settings) (*pipeline, error) {
	s = s.withDefaults()
	if err := validateBCs(p.Left, p.Right); err != nil {
		return nil, err
	}
	m, err := p.Mesh()
	if err != nil {
		return nil, err
	}
	b, err := NewBasis(m.Order)
	if err != nil {
		return nil, err
	}
	q := QuadratureFor(m.Order)
	if s.QuadPoints > 0 {
		q = GaussLegendre(s.QuadPoints)
	}
	return &pipeline{p: p, s: s, mesh: m, basis: b, quad: q}, nil
}

// system assembles the stiffness matrix and load vector with the
// coefficients evaluated at sol (nil for linear problems).
func (pl *pipeline) system(sol []float64) (*System, error) {
	return Assembler{Workers: pl.s.Workers}.Assemble(pl.mesh, func(e Element) (*mat.Dense, []float64, error) {
		K, F := e.Assemble(pl.p.Coefficients, pl.basis, pl.quad, sol)
		return K, F, nil
	})
}

// jacobian assembles the Newton Jacobian at sol with an empty load vector.
func (pl *pipeline) jacobian(sol []float64) (*System, error) {
	return Assembler{Workers: pl.s.Workers}.Assemble(pl.mesh, func(e Element) (*mat.Dense, []float64, error) {
		return e.AssembleJacobian(pl.p.Coefficients, pl.basis, pl.quad, sol), nil, nil
	})
}

func (pl *pipeline) solve(sys *System) ([]float64, error) {
	u, err := pl.s.Solver.Solve(sys.A, sys.B)
	if errors.Is(err, sparse.ErrSingular) {
		return nil, fmt.Errorf("%w: %w", ErrSingularSystem, err)
	} else if err != nil {
		return nil, fmt.Errorf("linear solve: %w", err)
	}
	for i, v := range u {
		if !isFinite(v) {
			return nil, fmt.Errorf("%w: solution component %v is %v", ErrSingularSystem, i, v)
		}
	}
	return u, nil
}
