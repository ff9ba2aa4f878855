package cmd

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	fem "github.com/AvanishMeedimale/finite-element"
)

// plotSamples is the number of points used to draw each curve.
const plotSamples = 200

// plotSolution writes a PNG (or any format gonum/plot infers from the file
// extension) showing the finite element solution, its nodal values and, if
// ex is not nil, the exact solution.
func plotSolution(file, title string, sol *fem.Solution, ex *fem.Exact) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "u"
	p.Add(plotter.NewGrid())

	xs, us := sol.Sample(plotSamples)
	fe := make(plotter.XYs, len(xs))
	for i := range xs {
		fe[i].X, fe[i].Y = xs[i], us[i]
	}
	line, err := plotter.NewLine(fe)
	if err != nil {
		return err
	}
	line.Color = plotutil.Color(0)
	p.Add(line)
	p.Legend.Add("u_h", line)

	nodes := make(plotter.XYs, len(sol.Mesh.Nodes))
	for i, x := range sol.Mesh.Nodes {
		nodes[i].X, nodes[i].Y = x, sol.U[i]
	}
	scatter, err := plotter.NewScatter(nodes)
	if err != nil {
		return err
	}
	scatter.Color = plotutil.Color(0)
	scatter.Shape = plotutil.Shape(0)
	p.Add(scatter)

	if ex != nil {
		exact := make(plotter.XYs, len(xs))
		for i, x := range xs {
			exact[i].X, exact[i].Y = x, ex.U(x)
		}
		eline, err := plotter.NewLine(exact)
		if err != nil {
			return err
		}
		eline.Color = plotutil.Color(1)
		eline.Dashes = plotutil.Dashes(1)
		p.Add(eline)
		p.Legend.Add("u", eline)
	}
	p.Legend.Top = true

	return p.Save(6*vg.Inch, 4*vg.Inch, file)
}
