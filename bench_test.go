package fem

import (
	"math/rand"
	"testing"

	"github.com/AvanishMeedimale/finite-element/sparse"
)

func BenchmarkMeshBuild(b *testing.B) {
	b.Run("elems=10", benchMeshBuildN(10))
	b.Run("elems=100", benchMeshBuildN(100))
	b.Run("elems=1000", benchMeshBuildN(1000))
}

func BenchmarkSolve(b *testing.B) {
	b.Run("elems=10", benchSolveN(10, P1))
	b.Run("elems=100", benchSolveN(100, P1))
	b.Run("elems=1000", benchSolveN(1000, P1))
	b.Run("elems=1000,P2", benchSolveN(1000, P2))
	b.Run("elems=10000", benchSolveN(10000, P1))
}

func BenchmarkInterpolate(b *testing.B) {
	b.Run("elems=10", benchInterpolateN(10))
	b.Run("elems=100", benchInterpolateN(100))
	b.Run("elems=1000", benchInterpolateN(1000))
}

func benchMeshBuildN(n int) func(b *testing.B) {
	return func(b *testing.B) {
		xs := linspace(0, 1, n+1)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, err := NewMeshSimple1D(xs, P1)
			if err != nil {
				b.Error(err)
			}
		}
	}
}

func heatProblem(n int, order Order) *Problem {
	return &Problem{
		Coefficients: Coefficients{
			Diffusion: ConstVal(2),  // W/(m*C)
			Source:    ConstVal(50), // W/m^3
		},
		Left:     DirichletBC(0),
		Right:    NeumannBC(5),
		Domain:   [2]float64{0, 1},
		Elements: n,
		Order:    order,
	}
}

func benchSolveN(n int, order Order) func(b *testing.B) {
	return func(b *testing.B) {
		p := heatProblem(n, order)
		s := Settings{Solver: &sparse.CG{}}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := Solve(p, s); err != nil {
				b.Fatal(err)
			}
		}
	}
}

func benchInterpolateN(n int) func(b *testing.B) {
	return func(b *testing.B) {
		sol, err := Solve(heatProblem(n, P1), Settings{Solver: &sparse.CG{}})
		if err != nil {
			b.Fatal(err)
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			sol.ValueAt(rand.Float64())
		}
	}
}
