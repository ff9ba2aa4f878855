package fem

import (
	"bytes"
	"errors"
	"log"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cubicProblem is -u_xx + u^3 = f with exact solution sin(pi x).
func cubicProblem(n int, order Order, reaction Func) (*Problem, Exact) {
	p := &Problem{
		Coefficients: Coefficients{
			Diffusion: ConstVal(1),
			Reaction:  reaction,
			Source: XFunc(func(x float64) float64 {
				s := math.Sin(math.Pi * x)
				return math.Pi*math.Pi*s + s*s*s
			}),
		},
		Left:     DirichletBC(0),
		Right:    DirichletBC(0),
		Domain:   [2]float64{0, 1},
		Elements: n,
		Order:    order,
	}
	return p, Exact{U: func(x float64) float64 { return math.Sin(math.Pi * x) }}
}

func TestSolveNonlinear_cubic(t *testing.T) {
	square := Scaled{Base: ConstVal(1), U: Poly{0, 0, 1}}
	tests := []struct {
		Name     string
		Order    Order
		Method   Method
		Reaction Func
		MaxIter  int
		WantErr  float64
	}{
		{Name: "newton", Order: P1, Method: Newton, Reaction: square, MaxIter: 10, WantErr: 2.1e-3},
		{Name: "newton", Order: P2, Method: Newton, Reaction: square, MaxIter: 10, WantErr: 3.1e-5},
		{Name: "newton/fd", Order: P2, Method: Newton, Reaction: FuncOf(func(x, u float64) float64 { return u * u }), MaxIter: 10, WantErr: 3.1e-5},
		{Name: "picard", Order: P1, Method: Picard, Reaction: square, MaxIter: 20, WantErr: 2.1e-3},
		{Name: "picard", Order: P2, Method: Picard, Reaction: square, MaxIter: 20, WantErr: 3.1e-5},
	}
	for _, test := range tests {
		p, ex := cubicProblem(16, test.Order, test.Reaction)
		require.True(t, p.Nonlinear())
		sol, report, err := SolveNonlinear(p, Settings{Method: test.Method, Tol: 1e-8})
		if err != nil {
			t.Errorf("FAIL %v %v: %v", test.Name, test.Order, err)
			continue
		}
		assert.Equal(t, Converged, report.State)
		assert.Same(t, report, sol.Report)
		assert.Len(t, report.UpdateNorms, report.Iterations)
		if report.Iterations > test.MaxIter {
			t.Errorf("FAIL %v %v: %v iterations, want at most %v", test.Name, test.Order, report.Iterations, test.MaxIter)
		}
		e, err := sol.ErrorNorm(ex, L2Norm)
		require.NoError(t, err)
		t.Logf("     %v %v: %v iterations, L2 error %.3e", test.Name, test.Order, report.Iterations, e)
		assert.InEpsilon(t, test.WantErr, e, .1, "%v %v", test.Name, test.Order)
	}
}

func TestSolveNonlinear_newtonFaster(t *testing.T) {
	// -u'' + u^3 = 2 + (x(1-x))^3 is solved exactly by P2
	p := &Problem{
		Coefficients: Coefficients{
			Diffusion: ConstVal(1),
			Reaction:  Scaled{Base: ConstVal(1), U: Poly{0, 0, 1}},
			Source: XFunc(func(x float64) float64 {
				v := x * (1 - x)
				return 2 + v*v*v
			}),
		},
		Left:     DirichletBC(0),
		Right:    DirichletBC(0),
		Domain:   [2]float64{0, 1},
		Elements: 8,
		Order:    P2,
	}
	ex := Exact{U: func(x float64) float64 { return x * (1 - x) }}

	iters := map[Method]int{}
	for _, method := range []Method{Picard, Newton} {
		sol, report, err := SolveNonlinear(p, Settings{Method: method})
		require.NoError(t, err, method.String())
		e, err := sol.ErrorNorm(ex, L2Norm)
		require.NoError(t, err)
		assert.Less(t, e, 1e-9, method.String())
		iters[method] = report.Iterations
	}
	t.Logf("iterations: %v", iters)
	assert.LessOrEqual(t, iters[Picard], 8)
	assert.LessOrEqual(t, iters[Newton], 6)
	assert.Less(t, iters[Newton], iters[Picard])
}

func TestSolveNonlinear_diffusion(t *testing.T) {
	// -((1+u^2) u')' = -2x has the solution u = x
	tests := []struct {
		Name     string
		Right    BoundaryCondition
		Elements int
	}{
		{Name: "dirichlet", Right: DirichletBC(1), Elements: 8},
		// p(1) u'(1) + u(1) = 2 + 1
		{Name: "robin", Right: RobinBC(1, 3), Elements: 4},
	}
	for _, test := range tests {
		for _, method := range []Method{Picard, Newton} {
			p := &Problem{
				Coefficients: Coefficients{
					Diffusion: Scaled{Base: ConstVal(1), U: Poly{1, 0, 1}},
					Source:    XFunc(func(x float64) float64 { return -2 * x }),
				},
				Left:     DirichletBC(0),
				Right:    test.Right,
				Domain:   [2]float64{0, 1},
				Elements: test.Elements,
				Order:    P2,
			}
			sol, report, err := SolveNonlinear(p, Settings{Method: method, MaxIter: 30})
			if err != nil {
				t.Errorf("FAIL %v/%v: %v", test.Name, method, err)
				continue
			}
			t.Logf("     %v/%v: %v iterations", test.Name, method, report.Iterations)
			for i, x := range sol.Mesh.Nodes {
				assert.InDelta(t, x, sol.U[i], 1e-8, "%v/%v: u(%v)", test.Name, method, x)
			}
		}
	}
}

func divergentProblem() *Problem {
	// -u'' - 50 u^3 = 100 has no solution the fixed point iteration can find
	return &Problem{
		Coefficients: Coefficients{
			Diffusion: ConstVal(1),
			Reaction:  Scaled{Base: ConstVal(-50), U: Poly{0, 0, 1}},
			Source:    ConstVal(100),
		},
		Left:     DirichletBC(0),
		Right:    DirichletBC(0),
		Domain:   [2]float64{0, 1},
		Elements: 8,
		Order:    P1,
	}
}

func TestSolveNonlinear_maxIterations(t *testing.T) {
	sol, report, err := SolveNonlinear(divergentProblem(), Settings{Method: Picard, MaxIter: 20})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMaxIterationsReached)

	var maxErr *MaxIterationsError
	require.True(t, errors.As(err, &maxErr))
	assert.Equal(t, 20, maxErr.Iterations)
	assert.Len(t, maxErr.History, 20)
	assert.Equal(t, MaxIterationsReached, report.State)
	assert.Equal(t, 20, report.Iterations)

	// the last iterate is still returned
	require.NotNil(t, sol)
	assert.Len(t, sol.U, 9)
	assert.InDelta(t, 0.0, sol.U[0], 1e-12)
	assert.Equal(t, maxErr.Norm, report.UpdateNorms[19])
}

func TestSolveNonlinear_divergence(t *testing.T) {
	sol, report, err := SolveNonlinear(divergentProblem(), Settings{Method: Picard, DivergenceBound: 1})
	assert.Nil(t, sol)
	assert.ErrorIs(t, err, ErrNonlinearDivergence)

	var divErr *DivergenceError
	require.True(t, errors.As(err, &divErr))
	assert.Equal(t, 1, divErr.Iteration)
	assert.Greater(t, divErr.Norm, 1.0)
	assert.Len(t, divErr.Last, 9)
	assert.Equal(t, Diverged, report.State)
}

func TestSolveNonlinear_settings(t *testing.T) {
	p, _ := cubicProblem(4, P1, Scaled{Base: ConstVal(1), U: Poly{0, 0, 1}})

	_, _, err := SolveNonlinear(p, Settings{Initial: make([]float64, 3)})
	assert.ErrorIs(t, err, ErrInvalidDiscretization)

	_, _, err = SolveNonlinear(p, Settings{Method: Method(7)})
	assert.Error(t, err)

	// starting from the converged iterate takes a single step
	sol, _, err := SolveNonlinear(p, Settings{Method: Newton, Tol: 1e-12})
	require.NoError(t, err)
	_, report, err := SolveNonlinear(p, Settings{Method: Newton, Tol: 1e-10, Initial: sol.U})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Iterations)

	// Solve dispatches on the coefficients
	sol, err = Solve(p, Settings{})
	require.NoError(t, err)
	require.NotNil(t, sol.Report)
	assert.Equal(t, Picard, sol.Report.Method)
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(log.New(&buf, "", 0))
	defer SetLogger(nil)

	p, _ := cubicProblem(4, P1, Scaled{Base: ConstVal(1), U: Poly{0, 0, 1}})
	_, report, err := SolveNonlinear(p, Settings{Method: Newton})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, report.Iterations)
	assert.True(t, strings.HasPrefix(lines[0], "newton iteration 1: update norm "), lines[0])
}
