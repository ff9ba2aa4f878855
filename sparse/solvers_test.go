package sparse

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func denseSolve(t *testing.T, A Matrix, b []float64) []float64 {
	size := len(b)
	var x mat.VecDense
	require.NoError(t, x.SolveVec(mat.DenseCopyOf(A), mat.NewVecDense(size, b)))
	return x.RawVector().Data
}

func ones(n int) []float64 {
	f := make([]float64, n)
	for i := range f {
		f[i] = 1
	}
	return f
}

func TestSolvers_random(t *testing.T) {
	var solvers = []struct {
		name string
		new  func() Solver
	}{
		{"DenseLU", func() Solver { return DenseLU{} }},
		{"GaussJordan", func() Solver { return GaussJordan{} }},
		{"GaussJordanSym", func() Solver { return GaussJordanSym{} }},
		{"SparseLU", func() Solver { return SparseLU{} }},
		{"CG", func() Solver { return &CG{Tol: 1e-12} }},
		{"SOR", func() Solver { return &SOR{Tol: 1e-13} }},
	}

	rnd := rand.New(rand.NewSource(1))
	for _, size := range []int{5, 20, 60} {
		A := randSparse(rnd, size, 4, 0)
		b := ones(size)
		want := denseSolve(t, A, b)
		refA := A.Clone()

		for _, s := range solvers {
			t.Run(fmt.Sprintf("%v/size=%v", s.name, size), func(t *testing.T) {
				solver := s.new()
				got, err := solver.Solve(A, b)
				require.NoError(t, err)
				for i := range want {
					assert.InDelta(t, want[i], got[i], 1e-8, "x[%v]", i)
				}
				if status := solver.Status(); status != "" {
					t.Logf("    solver stats:\n%v", status)
				}

				// inputs must be left untouched
				assert.Equal(t, ones(size), b)
				assert.True(t, mat.Equal(refA, A))
			})
		}
	}
}

func TestGaussJordan(t *testing.T) {
	var tests = []struct {
		vals []float64
		b    []float64
	}{
		{
			vals: []float64{
				1, 0, 0, 0,
				0, 2, 0, 0,
				0, 0, 3, 0,
				0, 0, 0, 4,
			},
			b: []float64{1, 2, 3, 4},
		}, {
			vals: []float64{
				0, 2, 0, 0,
				1, 0, 0, 0,
				0, 0, 3, 0,
				0, 0, 0, 4,
			},
			b: []float64{1, 2, 3, 4},
		}, {
			vals: []float64{
				1, 1, 0, 0,
				0, 2, 0, 0,
				0, 0, 3, 0,
				0, 0, 0, 4,
			},
			b: []float64{1, 2, 3, 4},
		}, {
			vals: []float64{
				.5, .5, 0, 0,
				0, 2, 0, 0,
				0, 0, 3, 0,
				0, 0, 0, 4,
			},
			b: []float64{1, 2, 3, 4},
		}, {
			vals: []float64{
				0, 2, 0, 0,
				.5, .5, 0, 0,
				0, 0, 3, 0,
				0, 0, 0, 4,
			},
			b: []float64{1, 2, 3, 4},
		}, {
			vals: []float64{
				1, .5, 1, 1,
				.5, .5, 0, 1,
				1, 0, 3, 0,
				1, 1, 0, 1,
			},
			b: []float64{1, 2, 3, 4},
		},
	}

	for i, test := range tests {
		size := len(test.b)
		A := makeSparse(size, test.vals)
		want := denseSolve(t, A, test.b)

		for _, solver := range []Solver{GaussJordan{}, GaussJordanSym{}} {
			gotx, err := solver.Solve(A, test.b)
			if err != nil {
				t.Errorf("FAIL case %v (%T): %v", i+1, solver, err)
				continue
			}

			failed := false
			for i := range want {
				if diff := math.Abs(gotx[i] - want[i]); diff > 1e-10 {
					failed = true
					break
				}
			}

			if failed {
				t.Errorf("FAIL case %v (%T): A=\n%v\nb=%v", i+1, solver, mat.Formatted(A), test.b)
				t.Errorf("    x: got %v, want %v", gotx, want)
			} else {
				t.Logf("     case %v (%T) passed", i+1, solver)
			}
		}
	}
}

func TestSolvers_singular(t *testing.T) {
	A := makeSparse(3, []float64{
		1, -1, 0,
		-1, 2, -1,
		0, -1, 1,
	})
	b := []float64{1, 0, -1}

	for _, solver := range []Solver{DenseLU{}, GaussJordan{}, GaussJordanSym{}, SparseLU{}} {
		_, err := solver.Solve(A, b)
		assert.True(t, errors.Is(err, ErrSingular), "%T: got err=%v", solver, err)
	}
}

func TestDenseLU_maxCond(t *testing.T) {
	A := makeSparse(2, []float64{
		1, 0,
		0, 1e-9,
	})
	_, err := DenseLU{MaxCond: 1e6}.Solve(A, []float64{1, 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSingular)
	assert.Contains(t, err.Error(), "condition number estimate")

	x, err := DenseLU{}.Solve(A, []float64{1, 1})
	require.NoError(t, err)
	assert.InDelta(t, 1e9, x[1], 1e-3)
}

func TestCG_noConvergence(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	A := randSparse(rnd, 50, 8, 0)
	cg := &CG{MaxIter: 1, Tol: 1e-14}
	_, err := cg.Solve(A, ones(50))
	assert.ErrorIs(t, err, ErrNoConvergence)
	t.Logf("%v", cg.Status())
}

func TestCG_zeroRHS(t *testing.T) {
	cg := &CG{}
	x, err := cg.Solve(tridiag(5), make([]float64, 5))
	require.NoError(t, err)
	assert.Equal(t, make([]float64, 5), x)
}

func TestSOR_noConvergence(t *testing.T) {
	s := &SOR{MaxIter: 2, Tol: 1e-14}
	_, err := s.Solve(tridiag(50), ones(50))
	assert.ErrorIs(t, err, ErrNoConvergence)
}

func benchSolver(s Solver, size, nfill int) func(b *testing.B) {
	return func(b *testing.B) {
		rnd := rand.New(rand.NewSource(1))
		A := randSparse(rnd, size, nfill, 0)
		f := ones(size)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := s.Solve(A, f); err != nil {
				b.Fatal(err)
			}
		}
	}
}

func BenchmarkSolvers(b *testing.B) {
	b.Run("DenseLU/size=500", benchSolver(DenseLU{}, 500, 6))
	b.Run("GaussJordanSym/size=500", benchSolver(GaussJordanSym{}, 500, 6))
	b.Run("SparseLU/size=500", benchSolver(SparseLU{}, 500, 6))
	b.Run("CG/size=500", benchSolver(&CG{Tol: 1e-10}, 500, 6))
	b.Run("CG/size=5000", benchSolver(&CG{Tol: 1e-10}, 5000, 6))
}
