// Package input reads boundary value problems from YAML problem files.
package input

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/ghodss/yaml"

	fem "github.com/AvanishMeedimale/finite-element"
	"github.com/AvanishMeedimale/finite-element/sparse"
)

var ErrInvalidInput = errors.New("input: invalid problem file")

// Table is a list of (x, y) points.
type Table struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

// Wave is Amp*sin(pi*(Freq*x + Phase)).  A Phase of 0.5 gives a cosine.
type Wave struct {
	Amp   float64 `json:"amp"`
	Freq  float64 `json:"freq"`
	Phase float64 `json:"phase,omitempty"`
}

func (w Wave) at(x float64) float64 { return w.Amp * math.Sin(math.Pi*(w.Freq*x+w.Phase)) }

func (w Wave) deriv(x float64) float64 {
	return w.Amp * math.Pi * w.Freq * math.Cos(math.Pi*(w.Freq*x+w.Phase))
}

// FuncSpec describes a coefficient function.  Its value is the sum of every
// part given (Const, Poly, Linear, Sections and Sin) times the polynomial U
// evaluated at the solution value; a U with more than one term makes the
// coefficient non-linear.
type FuncSpec struct {
	Const    *float64  `json:"const,omitempty"`
	Poly     []float64 `json:"poly,omitempty"`
	Linear   *Table    `json:"linear,omitempty"`
	Sections *Table    `json:"sections,omitempty"`
	Sin      []Wave    `json:"sin,omitempty"`
	U        []float64 `json:"u,omitempty"`
}

func (fs *FuncSpec) validate() error {
	if fs.Const == nil && len(fs.Poly) == 0 && fs.Linear == nil && fs.Sections == nil && len(fs.Sin) == 0 {
		return fmt.Errorf("%w: coefficient has no terms", ErrInvalidInput)
	}
	if t := fs.Linear; t != nil && (len(t.X) < 2 || len(t.X) != len(t.Y)) {
		return fmt.Errorf("%w: linear table needs at least two points and as many y as x values", ErrInvalidInput)
	}
	if t := fs.Sections; t != nil && (len(t.X) < 2 || len(t.Y) != len(t.X)-1) {
		return fmt.Errorf("%w: sections need one y value per interval", ErrInvalidInput)
	}
	return nil
}

func (fs *FuncSpec) parts() []fem.Func {
	var parts []fem.Func
	if fs.Const != nil {
		parts = append(parts, fem.ConstVal(*fs.Const))
	}
	if len(fs.Poly) > 0 {
		parts = append(parts, fem.Poly(fs.Poly))
	}
	if fs.Linear != nil {
		parts = append(parts, fem.LinVals{X: fs.Linear.X, Y: fs.Linear.Y})
	}
	if fs.Sections != nil {
		parts = append(parts, fem.SecVal{X: fs.Sections.X, Y: fs.Sections.Y})
	}
	for _, w := range fs.Sin {
		parts = append(parts, fem.XFunc(w.at))
	}
	return parts
}

// Func builds the coefficient.  A nil spec is a zero coefficient.
func (fs *FuncSpec) Func() (fem.Func, error) {
	if fs == nil {
		return nil, nil
	}
	if err := fs.validate(); err != nil {
		return nil, err
	}
	parts := fs.parts()
	var base fem.Func = parts[0]
	if len(parts) > 1 {
		base = fem.XFunc(func(x float64) float64 {
			v := 0.0
			for _, p := range parts {
				v += p.Val(x, 0)
			}
			return v
		})
	}
	if len(fs.U) == 0 {
		return base, nil
	}
	return fem.Scaled{Base: base, U: fem.Poly(fs.U)}, nil
}

// Exact builds a reference solution from the spec.  The derivative is
// analytic unless tables are involved.
func (fs *FuncSpec) Exact() (fem.Exact, error) {
	if err := fs.validate(); err != nil {
		return fem.Exact{}, err
	}
	if len(fs.U) > 0 {
		return fem.Exact{}, fmt.Errorf("%w: exact solution cannot depend on u", ErrInvalidInput)
	}
	f, _ := fs.Func()
	ex := fem.Exact{U: func(x float64) float64 { return f.Val(x, 0) }}
	if fs.Linear == nil && fs.Sections == nil {
		poly := fem.Poly(fs.Poly)
		waves := fs.Sin
		ex.DU = func(x float64) float64 {
			v := poly.Deriv(x)
			for _, w := range waves {
				v += w.deriv(x)
			}
			return v
		}
	}
	return ex, nil
}

func (fs *FuncSpec) String() string {
	if fs == nil {
		return "0"
	}
	var terms []string
	if fs.Const != nil {
		terms = append(terms, fmt.Sprint(*fs.Const))
	}
	if len(fs.Poly) > 0 {
		terms = append(terms, fmt.Sprintf("poly%v", fs.Poly))
	}
	if fs.Linear != nil {
		terms = append(terms, fmt.Sprintf("linear(x=%v, y=%v)", fs.Linear.X, fs.Linear.Y))
	}
	if fs.Sections != nil {
		terms = append(terms, fmt.Sprintf("sections(x=%v, y=%v)", fs.Sections.X, fs.Sections.Y))
	}
	for _, w := range fs.Sin {
		terms = append(terms, fmt.Sprintf("%v*sin(pi*(%v*x+%v))", w.Amp, w.Freq, w.Phase))
	}
	s := strings.Join(terms, " + ")
	if len(fs.U) > 0 {
		s = fmt.Sprintf("(%v) * poly%v(u)", s, fs.U)
	}
	return s
}

// BCSpec is a boundary condition.  Type is one of dirichlet, neumann or
// robin.
type BCSpec struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
	Alpha float64 `json:"alpha,omitempty"`
}

func (bs BCSpec) Condition() (fem.BoundaryCondition, error) {
	switch strings.ToLower(bs.Type) {
	case "dirichlet":
		return fem.DirichletBC(bs.Value), nil
	case "neumann":
		return fem.NeumannBC(bs.Value), nil
	case "robin":
		return fem.RobinBC(bs.Alpha, bs.Value), nil
	default:
		return fem.BoundaryCondition{}, fmt.Errorf("%w: unknown type %q", fem.ErrInvalidBoundaryCondition, bs.Type)
	}
}

// SolverSpec selects the linear solver and the non-linear iteration.
type SolverSpec struct {
	// Linear is one of lu, gaussjordan, gaussjordansym, sparselu, cg or
	// sor.  Empty means lu.
	Linear string `json:"linear,omitempty"`
	// Method is picard or newton.  Empty means picard.
	Method          string  `json:"method,omitempty"`
	Tol             float64 `json:"tol,omitempty"`
	MaxIter         int     `json:"maxIter,omitempty"`
	DivergenceBound float64 `json:"divergenceBound,omitempty"`
	QuadPoints      int     `json:"quadPoints,omitempty"`
	Workers         int     `json:"workers,omitempty"`
}

// NewLinearSolver returns the linear solver with the given name.
func NewLinearSolver(name string) (fem.LinearSolver, error) {
	switch strings.ToLower(name) {
	case "", "lu", "denselu":
		return sparse.DenseLU{MaxCond: sparse.DefaultMaxCond}, nil
	case "gaussjordan":
		return sparse.GaussJordan{}, nil
	case "gaussjordansym":
		return sparse.GaussJordanSym{}, nil
	case "sparselu":
		return sparse.SparseLU{}, nil
	case "cg":
		return &sparse.CG{}, nil
	case "sor":
		return &sparse.SOR{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown linear solver %q", ErrInvalidInput, name)
	}
}

func parseMethod(name string) (fem.Method, error) {
	switch strings.ToLower(name) {
	case "", "picard":
		return fem.Picard, nil
	case "newton":
		return fem.Newton, nil
	default:
		return 0, fmt.Errorf("%w: unknown non-linear method %q", ErrInvalidInput, name)
	}
}

// ProblemFile is the contents of a YAML problem file.
type ProblemFile struct {
	Title string `json:"title"`
	// Domain is [a, b]; it is ignored when Vertices is given.
	Domain   [2]float64 `json:"domain"`
	Elements int        `json:"elements"`
	Vertices []float64  `json:"vertices,omitempty"`
	// Order is the basis order, 1 (default) or 2.
	Order int `json:"order,omitempty"`

	Diffusion *FuncSpec `json:"diffusion,omitempty"`
	Advection *FuncSpec `json:"advection,omitempty"`
	Reaction  *FuncSpec `json:"reaction,omitempty"`
	Source    *FuncSpec `json:"source,omitempty"`

	Left  BCSpec `json:"left"`
	Right BCSpec `json:"right"`

	Solver SolverSpec `json:"solver"`
	// Exact is an optional exact solution used for error norms.
	Exact *FuncSpec `json:"exact,omitempty"`
}

func (pf *ProblemFile) Parse(data []byte) error {
	return yaml.Unmarshal(data, pf)
}

func (pf *ProblemFile) Print(w io.Writer) {
	fmt.Fprintf(w, "\"%s\"\t\t= Title\n", pf.Title)
	if len(pf.Vertices) > 0 {
		fmt.Fprintf(w, "%v\t= Vertices\n", pf.Vertices)
	} else {
		fmt.Fprintf(w, "%v\t\t= Domain\n", pf.Domain)
		fmt.Fprintf(w, "[%d]\t\t\t= Elements\n", pf.Elements)
	}
	fmt.Fprintf(w, "[%d]\t\t\t= Order\n", pf.order())
	fmt.Fprintf(w, "%v\t\t= Diffusion\n", pf.Diffusion)
	fmt.Fprintf(w, "%v\t\t= Advection\n", pf.Advection)
	fmt.Fprintf(w, "%v\t\t= Reaction\n", pf.Reaction)
	fmt.Fprintf(w, "%v\t\t= Source\n", pf.Source)
	fmt.Fprintf(w, "%v %v (alpha=%v)\t= Left BC\n", pf.Left.Type, pf.Left.Value, pf.Left.Alpha)
	fmt.Fprintf(w, "%v %v (alpha=%v)\t= Right BC\n", pf.Right.Type, pf.Right.Value, pf.Right.Alpha)
	if pf.Exact != nil {
		fmt.Fprintf(w, "%v\t\t= Exact\n", pf.Exact)
	}
}

func (pf *ProblemFile) order() int {
	if pf.Order == 0 {
		return 1
	}
	return pf.Order
}

// Problem converts the file into a problem and solve settings.
func (pf *ProblemFile) Problem() (*fem.Problem, fem.Settings, error) {
	p := &fem.Problem{
		Domain:   pf.Domain,
		Elements: pf.Elements,
		Order:    fem.Order(pf.order()),
		Vertices: pf.Vertices,
	}
	coeffs := []struct {
		name string
		spec *FuncSpec
		dst  *fem.Func
	}{
		{"diffusion", pf.Diffusion, &p.Diffusion},
		{"advection", pf.Advection, &p.Advection},
		{"reaction", pf.Reaction, &p.Reaction},
		{"source", pf.Source, &p.Source},
	}
	for _, c := range coeffs {
		f, err := c.spec.Func()
		if err != nil {
			return nil, fem.Settings{}, fmt.Errorf("%v: %w", c.name, err)
		}
		*c.dst = f
	}

	var err error
	if p.Left, err = pf.Left.Condition(); err != nil {
		return nil, fem.Settings{}, fmt.Errorf("left: %w", err)
	}
	if p.Right, err = pf.Right.Condition(); err != nil {
		return nil, fem.Settings{}, fmt.Errorf("right: %w", err)
	}

	s := fem.DefaultSettings()
	if s.Solver, err = NewLinearSolver(pf.Solver.Linear); err != nil {
		return nil, fem.Settings{}, err
	}
	if s.Method, err = parseMethod(pf.Solver.Method); err != nil {
		return nil, fem.Settings{}, err
	}
	if pf.Solver.Tol > 0 {
		s.Tol = pf.Solver.Tol
	}
	if pf.Solver.MaxIter > 0 {
		s.MaxIter = pf.Solver.MaxIter
	}
	if pf.Solver.DivergenceBound > 0 {
		s.DivergenceBound = pf.Solver.DivergenceBound
	}
	s.QuadPoints = pf.Solver.QuadPoints
	s.Workers = pf.Solver.Workers
	return p, s, nil
}

// ExactSolution returns the exact solution, if the file has one.
func (pf *ProblemFile) ExactSolution() (fem.Exact, bool, error) {
	if pf.Exact == nil {
		return fem.Exact{}, false, nil
	}
	ex, err := pf.Exact.Exact()
	if err != nil {
		return fem.Exact{}, false, fmt.Errorf("exact: %w", err)
	}
	return ex, true, nil
}
