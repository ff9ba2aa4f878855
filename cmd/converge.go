package cmd

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	fem "github.com/AvanishMeedimale/finite-element"
)

// ConvergeCmd represents the converge command
var ConvergeCmd = &cobra.Command{
	Use:   "converge",
	Short: "Measure the observed order of convergence under mesh refinement",
	Long: `
Solves a problem file on successively bisected meshes and reports the L2 and
energy norm errors with the observed orders of convergence.  Errors are
measured against the exact solution in the file, or else against a P2
solution on a mesh 2^levels times finer than the finest level.

fem1d converge -f problem.yaml --levels 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pf, p, s, err := loadProblem(cmd)
		if err != nil {
			return err
		}
		levels := viper.GetInt("levels")
		if levels < 2 {
			return fmt.Errorf("need at least 2 levels, got %v", levels)
		}
		pf.Print(cmd.OutOrStdout())

		ex, hasExact, err := pf.ExactSolution()
		if err != nil {
			return err
		}
		if !hasExact {
			ref := *p
			ref.Order = fem.P2
			refine(&ref, 2*levels-1)
			refSol, err := fem.Solve(&ref, s)
			if err != nil {
				return fmt.Errorf("reference solution: %w", err)
			}
			ex = referenceExact(refSol)
		}

		var hs, l2, energy []float64
		for l := 0; l < levels; l++ {
			lp := *p
			refine(&lp, l)
			sol, err := fem.Solve(&lp, s)
			if err != nil {
				return fmt.Errorf("level %v: %w", l, err)
			}
			el2, err := sol.ErrorNorm(ex, fem.L2Norm)
			if err != nil {
				return err
			}
			een, err := sol.ErrorNorm(ex, fem.EnergyNorm)
			if err != nil {
				return err
			}
			hs = append(hs, sol.Mesh.H())
			l2 = append(l2, el2)
			energy = append(energy, een)
		}

		l2Rates := fem.ConvergenceRates(hs, l2)
		energyRates := fem.ConvergenceRates(hs, energy)
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "\n%6s %12s %14s %8s %14s %8s\n", "level", "h", "L2", "rate", "energy", "rate")
		for l := range hs {
			r2, re := math.NaN(), math.NaN()
			if l > 0 {
				r2, re = l2Rates[l-1], energyRates[l-1]
			}
			fmt.Fprintf(w, "%6d %12.4e %14.6e %8.3f %14.6e %8.3f\n", l, hs[l], l2[l], r2, energy[l], re)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ConvergeCmd)
	addProblemFlags(ConvergeCmd)
	ConvergeCmd.Flags().IntP("levels", "l", 4, "number of refinement levels")
	viper.BindPFlag("levels", ConvergeCmd.Flags().Lookup("levels"))
}

// refine bisects every element of p n times.
func refine(p *fem.Problem, n int) {
	if len(p.Vertices) == 0 {
		p.Elements <<= n
		return
	}
	vs := p.Vertices
	for ; n > 0; n-- {
		fine := make([]float64, 0, 2*len(vs)-1)
		for i := 0; i < len(vs)-1; i++ {
			fine = append(fine, vs[i], (vs[i]+vs[i+1])/2)
		}
		vs = append(fine, vs[len(vs)-1])
	}
	p.Vertices = vs
}

// referenceExact wraps a fine solution so it can stand in for the exact one.
func referenceExact(ref *fem.Solution) fem.Exact {
	return fem.Exact{
		U: func(x float64) float64 {
			u, _ := ref.ValueAt(x)
			return u
		},
		DU: func(x float64) float64 {
			du, _ := ref.DerivativeAt(x)
			return du
		},
	}
}
