package fem

import "gonum.org/v1/gonum/integrate/quad"

// QuadRule is a fixed quadrature rule on the reference element [-1, 1].
type QuadRule struct {
	Points  []float64
	Weights []float64
}

// GaussLegendre returns the n-point Gauss-Legendre rule, exact for
// polynomials up to degree 2n-1.
func GaussLegendre(n int) QuadRule {
	if n <= 0 {
		panic("fem: non-positive number of quadrature points")
	}
	q := QuadRule{Points: make([]float64, n), Weights: make([]float64, n)}
	quad.Legendre{}.FixedLocations(q.Points, q.Weights, -1, 1)
	return q
}

// QuadratureFor returns the default element rule for a basis order: order+2
// points, which integrates mass and stiffness terms with polynomial
// coefficients of moderate degree exactly.
func QuadratureFor(order Order) QuadRule { return GaussLegendre(int(order) + 2) }

// Integrate applies the rule to f over [-1, 1].
func (q QuadRule) Integrate(f func(ref float64) float64) float64 {
	tot := 0.0
	for i, x := range q.Points {
		tot += q.Weights[i] * f(x)
	}
	return tot
}
