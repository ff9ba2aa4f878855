package fem

import (
	"gonum.org/v1/gonum/diff/fd"
)

// KernelParams holds everything a Kernel needs at one quadrature point.
// Derivatives are with respect to the physical coordinate.
type KernelParams struct {
	// X is the position the kernel is being evaluated at.
	X float64
	// U and GradU are the value and derivative of the trial (solution) shape
	// function.
	U, GradU float64
	// W and GradW are the value and derivative of the weight/test function.
	W, GradW float64
	// Sol and GradSol are the current solution iterate interpolated at X.
	// They are zero for linear problems.
	Sol, GradSol float64
}

// Kernel is the weak form integrand of a differential equation.
type Kernel interface {
	// VolIntU returns the integrand of the bilinear form (the terms that
	// include u).
	VolIntU(p *KernelParams) float64
	// VolInt returns the integrand of the linear form (the terms that do
	// *not* depend on the trial function).
	VolInt(p *KernelParams) float64
}

// JacobianKernel is a Kernel that can also provide the extra Jacobian terms
// coming from the dependence of its coefficients on the solution, as needed
// by Newton's method.
type JacobianKernel interface {
	Kernel
	JacIntU(p *KernelParams) float64
}

// Func is a coefficient function of position x and solution value u.
type Func interface {
	Val(x, u float64) float64
}

// DerivFunc is a Func that knows its own derivative with respect to u.
type DerivFunc interface {
	Func
	DerivU(x, u float64) float64
}

type uDepender interface {
	DependsOnU() bool
}

// eval returns f(x, u), treating a nil f as zero.
func eval(f Func, x, u float64) float64 {
	if f == nil {
		return 0
	}
	return f.Val(x, u)
}

// dependsOnU reports whether f may vary with u.  Funcs that don't say are
// assumed to.
func dependsOnU(f Func) bool {
	if f == nil {
		return false
	}
	if d, ok := f.(uDepender); ok {
		return d.DependsOnU()
	}
	return true
}

var derivSettings = &fd.Settings{Formula: fd.Central}

// derivU returns df/du at (x, u), by finite differences unless f provides
// it.
func derivU(f Func, x, u float64) float64 {
	if !dependsOnU(f) {
		return 0
	}
	if d, ok := f.(DerivFunc); ok {
		return d.DerivU(x, u)
	}
	return fd.Derivative(func(v float64) float64 { return f.Val(x, v) }, u, derivSettings)
}

type ConstVal float64

func (c ConstVal) Val(x, u float64) float64 { return float64(c) }
func (c ConstVal) DependsOnU() bool         { return false }

// Poly is a polynomial in x with coefficients in increasing powers.
type Poly []float64

func (p Poly) Val(x, u float64) float64 { return p.At(x) }
func (p Poly) DependsOnU() bool         { return false }

// At evaluates the polynomial at t.
func (p Poly) At(t float64) float64 {
	v := 0.0
	for i := len(p) - 1; i >= 0; i-- {
		v = v*t + p[i]
	}
	return v
}

// Deriv evaluates the derivative of the polynomial at t.
func (p Poly) Deriv(t float64) float64 {
	v := 0.0
	for i := len(p) - 1; i >= 1; i-- {
		v = v*t + float64(i)*p[i]
	}
	return v
}

// LinVals linearly interpolates a table of (X, Y) points.  Outside the table
// the end values are held.
type LinVals struct {
	X []float64
	Y []float64
}

func (p LinVals) Val(x, u float64) float64 {
	for i := 0; i < len(p.X)-1; i++ {
		x1, x2 := p.X[i], p.X[i+1]
		y1, y2 := p.Y[i], p.Y[i+1]
		if x1 <= x && x <= x2 {
			return y1 + (x-x1)/(x2-x1)*(y2-y1)
		}
	}
	if x < p.X[0] {
		return p.Y[0]
	}
	return p.Y[len(p.Y)-1]
}

func (p LinVals) DependsOnU() bool { return false }

// SecVal is piecewise constant: Y[i] on [X[i], X[i+1]].
type SecVal struct {
	X []float64
	Y []float64
}

func (p SecVal) Val(x, u float64) float64 {
	for i := 0; i < len(p.X)-1; i++ {
		if p.X[i] <= x && x <= p.X[i+1] {
			return p.Y[i]
		}
	}
	if x < p.X[0] {
		return p.Y[0]
	}
	return p.Y[len(p.Y)-1]
}

func (p SecVal) DependsOnU() bool { return false }

// XFunc is a coefficient that depends on position only.
type XFunc func(x float64) float64

func (f XFunc) Val(x, u float64) float64 { return f(x) }
func (f XFunc) DependsOnU() bool         { return false }

// FuncOf is a general coefficient of x and u.  Its u-derivative is computed
// by finite differences.
type FuncOf func(x, u float64) float64

func (f FuncOf) Val(x, u float64) float64 { return f(x, u) }

// UFunc is a coefficient of x and u with an analytic u-derivative DU.  A nil
// DU falls back to finite differences.
type UFunc struct {
	F, DU func(x, u float64) float64
}

func (f UFunc) Val(x, u float64) float64 { return f.F(x, u) }

func (f UFunc) DerivU(x, u float64) float64 {
	if f.DU == nil {
		return derivU(FuncOf(f.F), x, u)
	}
	return f.DU(x, u)
}

// Scaled is Base(x, u) times the polynomial U evaluated at u.  An empty U
// is a factor of one.
type Scaled struct {
	Base Func
	U    Poly
}

func (s Scaled) factor(u float64) float64 {
	if len(s.U) == 0 {
		return 1
	}
	return s.U.At(u)
}

func (s Scaled) Val(x, u float64) float64 { return eval(s.Base, x, u) * s.factor(u) }

func (s Scaled) DerivU(x, u float64) float64 {
	return derivU(s.Base, x, u)*s.factor(u) + eval(s.Base, x, u)*s.U.Deriv(u)
}

func (s Scaled) DependsOnU() bool { return len(s.U) > 1 || dependsOnU(s.Base) }

// Coefficients implements the weak form of
//
//	-(p(x,u) u')' + q(x,u) u' + r(x,u) u = f(x,u)
//
// with p=Diffusion, q=Advection, r=Reaction and f=Source.  Nil coefficients
// are zero.
type Coefficients struct {
	Diffusion Func
	Advection Func
	Reaction  Func
	Source    Func
}

// Nonlinear reports whether any coefficient depends on the solution.
func (c Coefficients) Nonlinear() bool {
	return dependsOnU(c.Diffusion) || dependsOnU(c.Advection) || dependsOnU(c.Reaction) || dependsOnU(c.Source)
}

func (c Coefficients) VolIntU(p *KernelParams) float64 {
	return eval(c.Diffusion, p.X, p.Sol)*p.GradU*p.GradW +
		eval(c.Advection, p.X, p.Sol)*p.GradU*p.W +
		eval(c.Reaction, p.X, p.Sol)*p.U*p.W
}

func (c Coefficients) VolInt(p *KernelParams) float64 {
	return eval(c.Source, p.X, p.Sol) * p.W
}

// JacIntU returns the derivative of the residual integrand with respect to
// the coefficients' u argument, in direction U.
func (c Coefficients) JacIntU(p *KernelParams) float64 {
	return derivU(c.Diffusion, p.X, p.Sol)*p.U*p.GradSol*p.GradW +
		derivU(c.Advection, p.X, p.Sol)*p.U*p.GradSol*p.W +
		derivU(c.Reaction, p.X, p.Sol)*p.U*p.Sol*p.W -
		derivU(c.Source, p.X, p.Sol)*p.U*p.W
}

// HeatConduction implements 1D steady state heat conduction physics,
// -(K T')' = S.
type HeatConduction struct {
	// K is thermal conductivity (W/m/K).
	K Func
	// S is heat source strength (W/m^3).
	S Func
}

func (hc HeatConduction) VolIntU(p *KernelParams) float64 {
	return p.GradW * p.GradU * eval(hc.K, p.X, p.Sol)
}

func (hc HeatConduction) VolInt(p *KernelParams) float64 {
	return p.W * eval(hc.S, p.X, p.Sol)
}
