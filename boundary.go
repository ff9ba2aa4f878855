package fem

import (
	"fmt"
	"math"

	"github.com/AvanishMeedimale/finite-element/sparse"
)

type BCKind int

const (
	// Dirichlet prescribes the solution value: u = Value.
	Dirichlet BCKind = iota
	// Neumann prescribes the outward flux: p du/dn = Value.
	Neumann
	// Robin prescribes a flux/value combination: p du/dn + Alpha u = Value.
	Robin
)

func (k BCKind) String() string {
	switch k {
	case Dirichlet:
		return "dirichlet"
	case Neumann:
		return "neumann"
	case Robin:
		return "robin"
	default:
		return fmt.Sprintf("BCKind(%d)", int(k))
	}
}

// BoundaryCondition is the condition imposed at one end of the domain.  The
// normal points out of the domain (n = -1 at a, +1 at b).
type BoundaryCondition struct {
	Kind  BCKind
	Value float64
	// Alpha is the Robin coefficient; it is ignored for other kinds.
	Alpha float64
}

func DirichletBC(g float64) BoundaryCondition { return BoundaryCondition{Kind: Dirichlet, Value: g} }

func NeumannBC(g float64) BoundaryCondition { return BoundaryCondition{Kind: Neumann, Value: g} }

func RobinBC(alpha, g float64) BoundaryCondition {
	return BoundaryCondition{Kind: Robin, Value: g, Alpha: alpha}
}

func (bc BoundaryCondition) String() string {
	if bc.Kind == Robin {
		return fmt.Sprintf("robin(alpha=%v, g=%v)", bc.Alpha, bc.Value)
	}
	return fmt.Sprintf("%v(%v)", bc.Kind, bc.Value)
}

func (bc BoundaryCondition) validate() error {
	switch bc.Kind {
	case Dirichlet, Neumann, Robin:
	default:
		return fmt.Errorf("%w: unknown kind %v", ErrInvalidBoundaryCondition, bc.Kind)
	}
	if !isFinite(bc.Value) || !isFinite(bc.Alpha) {
		return fmt.Errorf("%w: non-finite data in %v", ErrInvalidBoundaryCondition, bc)
	}
	return nil
}

// essential reports whether the condition pins the solution level.
func (bc BoundaryCondition) essential() bool {
	return bc.Kind == Dirichlet || (bc.Kind == Robin && bc.Alpha != 0)
}

// ApplyBoundaryConditions imposes left (at a) and right (at b) on an
// assembled system.  Natural conditions are added first; Dirichlet
// conditions then replace their row and are eliminated from every other row
// so a symmetric operator stays symmetric.
func ApplyBoundaryConditions(sys *System, m *Mesh, left, right BoundaryCondition) error {
	if err := validateBCs(left, right); err != nil {
		return err
	}
	l, r := m.boundaryDOFs()
	applyNatural(sys, l, left)
	applyNatural(sys, r, right)
	if err := checkWellPosed(sys.A, left, right); err != nil {
		return err
	}
	if left.Kind == Dirichlet {
		applyDirichlet(sys, l, left.Value)
	}
	if right.Kind == Dirichlet {
		applyDirichlet(sys, r, right.Value)
	}
	return nil
}

func validateBCs(left, right BoundaryCondition) error {
	if err := left.validate(); err != nil {
		return fmt.Errorf("left boundary: %w", err)
	}
	if err := right.validate(); err != nil {
		return fmt.Errorf("right boundary: %w", err)
	}
	return nil
}

// applyNatural adds the boundary integral terms of a Neumann or Robin
// condition at dof.
func applyNatural(sys *System, dof int, bc BoundaryCondition) {
	switch bc.Kind {
	case Neumann:
		sys.B[dof] += bc.Value
	case Robin:
		sys.A.Add(dof, dof, bc.Alpha)
		sys.B[dof] += bc.Value
	case Dirichlet:
	}
}

// applyDirichlet fixes u[dof] = g.
func applyDirichlet(sys *System, dof int, g float64) {
	for _, nonzero := range sys.A.SweepCol(dof) {
		if nonzero.I != dof {
			sys.B[nonzero.I] -= nonzero.Val * g
		}
	}
	sys.A.ZeroRow(dof)
	sys.A.ZeroCol(dof)
	sys.A.Set(dof, dof, 1)
	sys.B[dof] = g
}

// checkWellPosed fails when neither end pins the solution and A maps
// constants to (numerically) zero.
func checkWellPosed(A *sparse.Sparse, left, right BoundaryCondition) error {
	if left.essential() || right.essential() {
		return nil
	}
	size, _ := A.Dims()
	norm, constNorm := 0.0, 0.0
	for i := 0; i < size; i++ {
		rowsum, rowabs := 0.0, 0.0
		for _, nonzero := range A.SweepRow(i) {
			rowsum += nonzero.Val
			rowabs += math.Abs(nonzero.Val)
		}
		norm = math.Max(norm, rowabs)
		constNorm = math.Max(constNorm, math.Abs(rowsum))
	}
	if constNorm <= 1e-10*norm {
		return fmt.Errorf("%w: %v at a and %v at b leave the solution undetermined up to a constant",
			ErrIllPosedBoundaryConditions, left, right)
	}
	return nil
}
