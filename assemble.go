package fem

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/AvanishMeedimale/finite-element/sparse"
)

// System is a global linear system A*u = B.
type System struct {
	A *sparse.Sparse
	B []float64
}

// NewSystem returns an all-zero system of the given size.
func NewSystem(size int) *System {
	return &System{A: sparse.NewSparse(size), B: make([]float64, size)}
}

func (s *System) Size() int { return len(s.B) }

func (s *System) Clone() *System {
	return &System{A: s.A.Clone(), B: append([]float64(nil), s.B...)}
}

// Residual returns A*u - B.
func (s *System) Residual(u []float64) []float64 {
	r := sparse.MulCSR(nil, sparse.ToCSR(s.A), u)
	for i := range r {
		r[i] -= s.B[i]
	}
	return r
}

// LocalFunc computes the local stiffness matrix and load vector of one
// element.  A nil load vector contributes nothing.
type LocalFunc func(e Element) (*mat.Dense, []float64, error)

// Assembler builds global systems from element contributions.
type Assembler struct {
	// Workers is the number of goroutines computing element contributions.
	// Values below 2 compute them on the calling goroutine.
	Workers int
}

type localResult struct {
	K   *mat.Dense
	F   []float64
	err error
}

// Assemble scatter-adds the local contributions of every element of m into
// a zero system of size m.NumDOF().  Local contributions may be computed
// concurrently, but they are always summed in element order so the result
// does not depend on the number of workers.
func (a Assembler) Assemble(m *Mesh, local LocalFunc) (*System, error) {
	results := make([]localResult, m.NumElems())
	if a.Workers < 2 {
		for k, e := range m.Elems {
			K, F, err := local(e)
			results[k] = localResult{K, F, err}
		}
	} else {
		var wg sync.WaitGroup
		next := make(chan int)
		for w := 0; w < a.Workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for k := range next {
					K, F, err := local(m.Elems[k])
					results[k] = localResult{K, F, err}
				}
			}()
		}
		for k := range m.Elems {
			next <- k
		}
		close(next)
		wg.Wait()
	}

	sys := NewSystem(m.NumDOF())
	for k, e := range m.Elems {
		res := results[k]
		if res.err != nil {
			return nil, fmt.Errorf("element %v: %w", k, res.err)
		}
		for i, gi := range e.DOFs {
			if res.F != nil {
				sys.B[gi] += res.F[i]
			}
			if res.K == nil {
				continue
			}
			for j, gj := range e.DOFs {
				if v := res.K.At(i, j); v != 0 {
					sys.A.Add(gi, gj, v)
				}
			}
		}
	}
	return sys, nil
}
