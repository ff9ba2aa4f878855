package fem

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDiscretization is returned for meshes with no elements, an
	// empty or inverted domain, non-finite coordinates or an unsupported basis
	// order.
	ErrInvalidDiscretization = errors.New("fem: invalid discretization")
	// ErrIllPosedBoundaryConditions is returned when no endpoint pins the
	// solution and the operator annihilates constants (pure Neumann without
	// reaction).
	ErrIllPosedBoundaryConditions = errors.New("fem: ill-posed boundary conditions")
	// ErrSingularSystem is returned when the linear solver fails on a
	// singular or numerically singular global system.
	ErrSingularSystem = errors.New("fem: singular system")
	// ErrNonlinearDivergence is returned when the non-linear update norm
	// exceeds the divergence bound or becomes NaN/Inf.
	ErrNonlinearDivergence = errors.New("fem: non-linear iteration diverged")
	// ErrMaxIterationsReached is returned when the non-linear iteration does
	// not converge within the iteration limit.
	ErrMaxIterationsReached     = errors.New("fem: maximum non-linear iterations reached")
	ErrOutOfDomain              = errors.New("fem: point outside mesh domain")
	ErrInvalidBoundaryCondition = errors.New("fem: invalid boundary condition")
)

// DivergenceError reports a diverged non-linear iteration together with the
// last iterate and the update norm history.
type DivergenceError struct {
	Iteration int
	Norm      float64
	Last      []float64
	History   []float64
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("%v: update norm %v at iteration %v", ErrNonlinearDivergence, e.Norm, e.Iteration)
}

func (e *DivergenceError) Unwrap() error { return ErrNonlinearDivergence }

// MaxIterationsError reports a non-linear iteration that ran out of
// iterations.  The solution returned alongside it holds the last iterate.
type MaxIterationsError struct {
	Iterations int
	Norm       float64
	History    []float64
}

func (e *MaxIterationsError) Error() string {
	return fmt.Sprintf("%v: update norm %v after %v iterations", ErrMaxIterationsReached, e.Norm, e.Iterations)
}

func (e *MaxIterationsError) Unwrap() error { return ErrMaxIterationsReached }
