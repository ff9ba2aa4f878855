package cmd

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	fem "github.com/AvanishMeedimale/finite-element"
	"github.com/AvanishMeedimale/finite-element/input"
)

// SolveCmd represents the solve command
var SolveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve a problem file and print the nodal solution",
	Long: `
Solves the boundary value problem in a YAML problem file and prints the
solution at the mesh nodes.  If the file has an exact solution the error
norms are printed too.

fem1d solve -f problem.yaml -k 32 -o 2 --plot u.png`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pf, p, s, err := loadProblem(cmd)
		if err != nil {
			return err
		}
		pf.Print(cmd.OutOrStdout())

		sol, err := fem.Solve(p, s)
		if err != nil {
			return err
		}
		ex, hasExact, err := pf.ExactSolution()
		if err != nil {
			return err
		}
		if err := printSolution(cmd.OutOrStdout(), sol, ex, hasExact); err != nil {
			return err
		}

		if n := viper.GetInt("samples"); n > 0 {
			xs, us := sol.Sample(n)
			fmt.Fprintf(cmd.OutOrStdout(), "\n%12s %16s\n", "x", "u_h")
			for i := range xs {
				fmt.Fprintf(cmd.OutOrStdout(), "%12.6f %16.8e\n", xs[i], us[i])
			}
		}

		if file, _ := cmd.Flags().GetString("plot"); file != "" {
			var exp *fem.Exact
			if hasExact {
				exp = &ex
			}
			if err := plotSolution(file, pf.Title, sol, exp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %v\n", file)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(SolveCmd)
	addProblemFlags(SolveCmd)
	SolveCmd.Flags().Int("samples", 0, "also print the solution at this many evenly spaced points")
	SolveCmd.Flags().String("plot", "", "write a PNG plot of the solution to this file")
	viper.BindPFlag("samples", SolveCmd.Flags().Lookup("samples"))
}

// addProblemFlags adds the flags shared by every command that reads a
// problem file.
func addProblemFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "YAML problem file")
	cmd.Flags().IntP("elements", "k", 0, "number of elements (overrides the file)")
	cmd.Flags().IntP("order", "o", 0, "basis order, 1 or 2 (overrides the file)")
	cmd.Flags().String("solver", "", "linear solver: lu, gaussjordan, gaussjordansym, sparselu, cg or sor")
	cmd.Flags().String("method", "", "non-linear method: picard or newton")
	cmd.MarkFlagRequired("file")
}

func loadProblem(cmd *cobra.Command) (*input.ProblemFile, *fem.Problem, fem.Settings, error) {
	file, _ := cmd.Flags().GetString("file")
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, nil, fem.Settings{}, err
	}
	pf := &input.ProblemFile{}
	if err := pf.Parse(data); err != nil {
		return nil, nil, fem.Settings{}, fmt.Errorf("%v: %w", file, err)
	}

	if k, _ := cmd.Flags().GetInt("elements"); k > 0 {
		pf.Elements = k
		pf.Vertices = nil
	}
	if o, _ := cmd.Flags().GetInt("order"); o > 0 {
		pf.Order = o
	}
	// the command line wins over the file, the file over the config
	if name, _ := cmd.Flags().GetString("solver"); name != "" {
		pf.Solver.Linear = name
	} else if pf.Solver.Linear == "" {
		pf.Solver.Linear = viper.GetString("solver")
	}
	if name, _ := cmd.Flags().GetString("method"); name != "" {
		pf.Solver.Method = name
	} else if pf.Solver.Method == "" {
		pf.Solver.Method = viper.GetString("method")
	}

	p, s, err := pf.Problem()
	if err != nil {
		return nil, nil, fem.Settings{}, fmt.Errorf("%v: %w", file, err)
	}
	return pf, p, s, nil
}

func printSolution(w io.Writer, sol *fem.Solution, ex fem.Exact, hasExact bool) error {
	if r := sol.Report; r != nil {
		fmt.Fprintf(w, "\n%v: %v after %v iterations, last update %.3e\n",
			r.Method, r.State, r.Iterations, r.UpdateNorms[len(r.UpdateNorms)-1])
	}

	fmt.Fprintln(w)
	if hasExact {
		fmt.Fprintf(w, "%12s %16s %16s %12s\n", "x", "u_h", "u", "|u-u_h|")
	} else {
		fmt.Fprintf(w, "%12s %16s\n", "x", "u_h")
	}
	for i, x := range sol.Mesh.Nodes {
		if hasExact {
			u := ex.U(x)
			fmt.Fprintf(w, "%12.6f %16.8e %16.8e %12.3e\n", x, sol.U[i], u, math.Abs(u-sol.U[i]))
		} else {
			fmt.Fprintf(w, "%12.6f %16.8e\n", x, sol.U[i])
		}
	}
	if !hasExact {
		return nil
	}

	fmt.Fprintln(w)
	for _, kind := range []fem.NormKind{fem.L2Norm, fem.EnergyNorm, fem.H1Norm} {
		e, err := sol.ErrorNorm(ex, kind)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%-8v error = %.6e\n", kind, e)
	}
	return nil
}
