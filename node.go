package fem

import "fmt"

// Order is the polynomial degree of the element shape functions.
type Order int

const (
	P1 Order = 1 // linear
	P2 Order = 2 // quadratic
)

func (o Order) String() string { return fmt.Sprintf("P%d", int(o)) }

func (o Order) valid() bool { return o == P1 || o == P2 }

// ShapeFunc is a shape function defined on the reference element [-1, 1].
type ShapeFunc interface {
	Value(ref float64) float64
	Deriv(ref float64) float64
}

// Lagrange1D is the Lagrange polynomial of the given order on [-1, 1] that is
// one at reference node Index and zero at the other equally spaced reference
// nodes.
type Lagrange1D struct {
	// Index identifies the interpolation point or (virtual) node where the
	// shape function is equal to 1.0.
	Index int
	// Polynomial order of the shape function.
	Order int
}

func refNode(i, order int) float64 { return -1 + float64(i)*2/float64(order) }

func (fn Lagrange1D) Value(ref float64) float64 {
	u := 1.0
	xindex := refNode(fn.Index, fn.Order)
	for i := 0; i < fn.Order+1; i++ {
		if i == fn.Index {
			continue
		}
		x0 := refNode(i, fn.Order)
		u *= (ref - x0) / (xindex - x0)
	}
	return u
}

func (fn Lagrange1D) Deriv(ref float64) float64 {
	u, dudx := 1.0, 0.0
	xindex := refNode(fn.Index, fn.Order)
	for i := 0; i < fn.Order+1; i++ {
		if i == fn.Index {
			continue
		}
		x0 := refNode(i, fn.Order)
		dudx = 1/(xindex-x0)*u + (ref-x0)/(xindex-x0)*dudx
		u *= (ref - x0) / (xindex - x0)
	}
	return dudx
}

// Basis is the set of shape functions of an element ordered by reference
// node from left to right (left, right for P1; left, mid, right for P2).
type Basis struct {
	order Order
	funcs []ShapeFunc
}

func NewBasis(order Order) (*Basis, error) {
	if !order.valid() {
		return nil, fmt.Errorf("%w: unsupported basis order %v", ErrInvalidDiscretization, int(order))
	}
	b := &Basis{order: order}
	for i := 0; i <= int(order); i++ {
		b.funcs = append(b.funcs, Lagrange1D{Index: i, Order: int(order)})
	}
	return b, nil
}

func (b *Basis) Order() Order { return b.order }

// Len returns the number of shape functions (local DOFs) per element.
func (b *Basis) Len() int { return len(b.funcs) }

// RefNodes returns the reference coordinates of the local DOFs.
func (b *Basis) RefNodes() []float64 {
	nodes := make([]float64, b.Len())
	for i := range nodes {
		nodes[i] = refNode(i, int(b.order))
	}
	return nodes
}

// Eval returns the value of shape function i at ref.
func (b *Basis) Eval(i int, ref float64) float64 { return b.funcs[i].Value(ref) }

// EvalDeriv returns d(shape function i)/d(ref) at ref.
func (b *Basis) EvalDeriv(i int, ref float64) float64 { return b.funcs[i].Deriv(ref) }

// Jacobian returns dx/dref for element e.
func (b *Basis) Jacobian(e Element) float64 { return e.jacobian() }

func (b *Basis) ToRef(e Element, x float64) float64 { return e.ref(x) }

func (b *Basis) ToPhys(e Element, ref float64) float64 { return e.coord(ref) }
