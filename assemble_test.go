package fem

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestAssembler_workers(t *testing.T) {
	m, err := NewMeshSimple1D([]float64{0, .1, .35, .4, .9, 1.3, 2, 2.2, 3}, P2)
	require.NoError(t, err)
	b, _ := NewBasis(P2)
	q := QuadratureFor(P2)
	k := Coefficients{
		Diffusion: XFunc(func(x float64) float64 { return 1 + x*x }),
		Advection: ConstVal(.3),
		Reaction:  XFunc(math.Exp),
		Source:    XFunc(math.Sin),
	}
	local := func(e Element) (*mat.Dense, []float64, error) {
		K, F := e.Assemble(k, b, q, nil)
		return K, F, nil
	}

	want, err := Assembler{}.Assemble(m, local)
	require.NoError(t, err)
	for _, workers := range []int{2, 3, 8} {
		got, err := Assembler{Workers: workers}.Assemble(m, local)
		require.NoError(t, err)
		// summation order is fixed so the results are bit for bit identical
		assert.True(t, mat.Equal(want.A, got.A), "workers=%v", workers)
		assert.Equal(t, want.B, got.B, "workers=%v", workers)
	}
}

func TestAssembler_sums(t *testing.T) {
	// the stiffness matrix of -u'' on a uniform P1 mesh is tridiag(-1, 2, -1)/h
	// with halved corners; the load of f=1 is h at interior nodes
	m, err := NewMesh(0, 1, 4, P1)
	require.NoError(t, err)
	b, _ := NewBasis(P1)
	q := QuadratureFor(P1)
	sys, err := Assembler{Workers: 2}.Assemble(m, func(e Element) (*mat.Dense, []float64, error) {
		K, F := e.Assemble(Coefficients{Diffusion: ConstVal(1), Source: ConstVal(1)}, b, q, nil)
		return K, F, nil
	})
	require.NoError(t, err)

	want := mat.NewDense(5, 5, []float64{
		4, -4, 0, 0, 0,
		-4, 8, -4, 0, 0,
		0, -4, 8, -4, 0,
		0, 0, -4, 8, -4,
		0, 0, 0, -4, 4,
	})
	if !mat.EqualApprox(sys.A, want, 1e-13) {
		t.Errorf("FAIL A=\n%v", mat.Formatted(sys.A))
	}
	assert.InDeltaSlice(t, []float64{.125, .25, .25, .25, .125}, sys.B, 1e-15)
	assert.Equal(t, 13, sys.A.NNZ())

	r := sys.Residual([]float64{1, 1, 1, 1, 1})
	assert.InDeltaSlice(t, []float64{-.125, -.25, -.25, -.25, -.125}, r, 1e-13)

	c := sys.Clone()
	c.A.Set(0, 0, 7)
	c.B[0] = 7
	assert.InDelta(t, 4.0, sys.A.At(0, 0), 1e-13)
	assert.InDelta(t, .125, sys.B[0], 1e-15)
}

func TestAssembler_error(t *testing.T) {
	m, err := NewMesh(0, 1, 6, P1)
	require.NoError(t, err)
	boom := errors.New("boom")
	for _, workers := range []int{0, 4} {
		_, err := Assembler{Workers: workers}.Assemble(m, func(e Element) (*mat.Dense, []float64, error) {
			if e.Index == 3 {
				return nil, nil, boom
			}
			return mat.NewDense(2, 2, nil), nil, nil
		})
		assert.ErrorIs(t, err, boom)
		assert.ErrorContains(t, err, "element 3")
	}
}
