package fem

import "gonum.org/v1/gonum/mat"

// quadPoint is the basis evaluated at one quadrature point of an element.
type quadPoint struct {
	params KernelParams
	// vals and derivs hold every shape function and its physical derivative.
	vals, derivs []float64
	// dx is the quadrature weight times the jacobian.
	dx float64
}

// sweep calls fn for each quadrature point of q mapped onto the element.
// The chain rule is applied here, once: derivatives are divided by the
// jacobian and the measure is multiplied by it.  When sol (a global DOF
// vector) is not nil, the iterate is interpolated into Sol and GradSol.
func (e Element) sweep(b *Basis, q QuadRule, sol []float64, fn func(qp *quadPoint)) {
	n := b.Len()
	jac := e.jacobian()
	qp := &quadPoint{vals: make([]float64, n), derivs: make([]float64, n)}
	for k, ref := range q.Points {
		qp.params = KernelParams{X: e.coord(ref)}
		qp.dx = q.Weights[k] * jac
		for i := 0; i < n; i++ {
			qp.vals[i] = b.Eval(i, ref)
			qp.derivs[i] = b.EvalDeriv(i, ref) / jac
			if sol != nil {
				qp.params.Sol += sol[e.DOFs[i]] * qp.vals[i]
				qp.params.GradSol += sol[e.DOFs[i]] * qp.derivs[i]
			}
		}
		fn(qp)
	}
}

// Assemble integrates the weak form in k over the element and returns the
// local stiffness matrix (row: test function, column: trial function) and
// local load vector.  sol is the global iterate frozen into the coefficients
// and may be nil.
func (e Element) Assemble(k Kernel, b *Basis, q QuadRule, sol []float64) (*mat.Dense, []float64) {
	n := b.Len()
	K := mat.NewDense(n, n, nil)
	F := make([]float64, n)
	e.sweep(b, q, sol, func(qp *quadPoint) {
		p := &qp.params
		for i := 0; i < n; i++ {
			p.W, p.GradW = qp.vals[i], qp.derivs[i]
			p.U, p.GradU = 0, 0
			F[i] += qp.dx * k.VolInt(p)
			for j := 0; j < n; j++ {
				p.U, p.GradU = qp.vals[j], qp.derivs[j]
				K.Set(i, j, K.At(i, j)+qp.dx*k.VolIntU(p))
			}
		}
	})
	return K, F
}

// AssembleJacobian returns the local Newton Jacobian at sol: the stiffness
// terms plus the linearization of the coefficients' dependence on u.
func (e Element) AssembleJacobian(k JacobianKernel, b *Basis, q QuadRule, sol []float64) *mat.Dense {
	n := b.Len()
	J := mat.NewDense(n, n, nil)
	e.sweep(b, q, sol, func(qp *quadPoint) {
		p := &qp.params
		for i := 0; i < n; i++ {
			p.W, p.GradW = qp.vals[i], qp.derivs[i]
			for j := 0; j < n; j++ {
				p.U, p.GradU = qp.vals[j], qp.derivs[j]
				J.Set(i, j, J.At(i, j)+qp.dx*(k.VolIntU(p)+k.JacIntU(p)))
			}
		}
	})
	return J
}

// interpolate returns the value and derivative at x of the finite element
// function with global DOF values sol restricted to this element.
func (e Element) interpolate(b *Basis, sol []float64, x float64) (u, dudx float64) {
	ref := e.ref(x)
	jac := e.jacobian()
	for i, dof := range e.DOFs {
		u += sol[dof] * b.Eval(i, ref)
		dudx += sol[dof] * b.EvalDeriv(i, ref) / jac
	}
	return u, dudx
}
