package fem

import (
	"fmt"
	"math"
	"sort"
)

// Element is a single interval of the mesh together with the global indices
// of its degrees of freedom ordered left to right.
type Element struct {
	Index       int
	Left, Right float64
	// DOFs holds the global DOF index for each local shape function.
	DOFs []int
}

// H returns the element width.
func (e Element) H() float64 { return e.Right - e.Left }

// Contains returns true if x is inside the closed element interval.
func (e Element) Contains(x float64) bool { return e.Left <= x && x <= e.Right }

// coord maps a reference coordinate in [-1, 1] to physical space.
func (e Element) coord(ref float64) float64 {
	return (e.Left*(1-ref) + e.Right*(1+ref)) / 2
}

// ref maps a physical coordinate to the reference element, clamped to
// [-1, 1].
func (e Element) ref(x float64) float64 {
	r := (2*x - e.Left - e.Right) / e.H()
	return math.Max(-1, math.Min(1, r))
}

func (e Element) jacobian() float64 { return e.H() / 2 }

// Mesh is an ordered partition of [a, b] into elements.  It is built once
// and must not be modified afterwards.
type Mesh struct {
	// Vertices holds the element end points in strictly increasing order.
	Vertices []float64
	// Nodes holds the coordinate of every degree of freedom in global DOF
	// order (left to right).
	Nodes []float64
	// Elems is the left to right ordered list of elements.
	Elems []Element
	Order Order
}

// NewMesh creates a uniform mesh of n elements over [a, b].
func NewMesh(a, b float64, n int, order Order) (*Mesh, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: need at least one element, got %v", ErrInvalidDiscretization, n)
	}
	if !(a < b) || math.IsInf(a, 0) || math.IsInf(b, 0) {
		return nil, fmt.Errorf("%w: invalid domain [%v, %v]", ErrInvalidDiscretization, a, b)
	}
	return NewMeshSimple1D(linspace(a, b, n+1), order)
}

// NewMeshSimple1D creates a simply-connected mesh with element vertices at
// the specified points and shape functions of the given order.
func NewMeshSimple1D(vertices []float64, order Order) (*Mesh, error) {
	if !order.valid() {
		return nil, fmt.Errorf("%w: unsupported basis order %v", ErrInvalidDiscretization, int(order))
	}
	if len(vertices) < 2 {
		return nil, fmt.Errorf("%w: need at least two vertices, got %v", ErrInvalidDiscretization, len(vertices))
	}
	for i, x := range vertices {
		if !isFinite(x) {
			return nil, fmt.Errorf("%w: vertex %v is %v", ErrInvalidDiscretization, i, x)
		}
		if i > 0 && !(vertices[i-1] < x) {
			return nil, fmt.Errorf("%w: vertices not strictly increasing at %v", ErrInvalidDiscretization, i)
		}
	}

	nElems := len(vertices) - 1
	p := int(order)
	m := &Mesh{
		Vertices: append([]float64(nil), vertices...),
		Nodes:    make([]float64, p*nElems+1),
		Elems:    make([]Element, nElems),
		Order:    order,
	}
	for k := range m.Elems {
		e := Element{Index: k, Left: vertices[k], Right: vertices[k+1], DOFs: make([]int, p+1)}
		for j := range e.DOFs {
			e.DOFs[j] = p*k + j
			m.Nodes[p*k+j] = e.coord(refNode(j, p))
		}
		m.Elems[k] = e
	}
	// use the exact vertex coordinates rather than the mapped ones
	for k, x := range vertices {
		m.Nodes[p*k] = x
	}
	return m, nil
}

// NumDOF returns the size of the global system.
func (m *Mesh) NumDOF() int { return len(m.Nodes) }

func (m *Mesh) NumElems() int { return len(m.Elems) }

// Bounds returns the domain end points a and b.
func (m *Mesh) Bounds() (a, b float64) { return m.Vertices[0], m.Vertices[len(m.Vertices)-1] }

// H returns the largest element width.
func (m *Mesh) H() float64 {
	h := 0.0
	for _, e := range m.Elems {
		h = math.Max(h, e.H())
	}
	return h
}

// Find returns the element containing x.  At interior vertices the element
// to the left wins; x == b belongs to the last element.
func (m *Mesh) Find(x float64) (Element, error) {
	a, b := m.Bounds()
	if !(a <= x && x <= b) {
		return Element{}, fmt.Errorf("%w: %v not in [%v, %v]", ErrOutOfDomain, x, a, b)
	}
	i := sort.SearchFloat64s(m.Vertices, x)
	if i > 0 {
		i--
	}
	return m.Elems[i], nil
}

// boundaryDOFs returns the global DOF indices at a and b.
func (m *Mesh) boundaryDOFs() (left, right int) { return 0, m.NumDOF() - 1 }
