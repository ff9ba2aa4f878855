package fem

import (
	"math"
	"testing"
)

func TestGaussLegendre(t *testing.T) {
	for n := 1; n <= 6; n++ {
		q := GaussLegendre(n)
		// exact for monomials up to degree 2n-1
		for deg := 0; deg <= 2*n-1; deg++ {
			got := q.Integrate(func(x float64) float64 { return math.Pow(x, float64(deg)) })
			want := 0.0
			if deg%2 == 0 {
				want = 2 / float64(deg+1)
			}
			if math.Abs(got-want) > 1e-13 {
				t.Errorf("FAIL n=%v: integral of x^%v = %v, want %v", n, deg, got, want)
			}
		}
	}
}

func TestQuadratureFor(t *testing.T) {
	for _, order := range []Order{P1, P2} {
		q := QuadratureFor(order)
		if len(q.Points) != int(order)+2 || len(q.Weights) != int(order)+2 {
			t.Errorf("FAIL %v: got %v points", order, len(q.Points))
		}
		// the product of two derivatives and a degree 2 coefficient must be
		// integrated exactly
		deg := 2*int(order) + 2
		got := q.Integrate(func(x float64) float64 { return math.Pow(x, float64(deg)) })
		if want := 2 / float64(deg+1); math.Abs(got-want) > 1e-13 {
			t.Errorf("FAIL %v: integral of x^%v = %v, want %v", order, deg, got, want)
		}
	}
}
