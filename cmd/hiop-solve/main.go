// Copyright ©2024 The Hiop Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command hiop-solve runs the filter-IPM driver against one of a small set
// of built-in demonstration NLPs, wiring command-line flags onto
// hiop.Options and printing the solution.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/vishalbelsare/hiop"
)

func main() {
	scenario := flag.String("scenario", "equality", "demo scenario: unconstrained, equality, bounded, inequality")
	optsPath := flag.String("options", "", "path to a YAML options file (optional)")
	tol := flag.Float64("tol", 0, "override Options.Tolerance if nonzero")
	maxIter := flag.Int("max-iter", 0, "override Options.MaxIter if nonzero")
	verbose := flag.Bool("verbose", false, "log each iteration to stderr")
	flag.Parse()

	opts := hiop.DefaultOptions()
	if *optsPath != "" {
		loaded, err := hiop.LoadOptions(*optsPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "hiop-solve:", err)
			os.Exit(1)
		}
		opts = loaded
	}
	if *tol != 0 {
		opts.Tolerance = *tol
	}
	if *maxIter != 0 {
		opts.MaxIter = *maxIter
	}
	if *verbose {
		opts.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}

	dp, err := buildScenario(*scenario)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hiop-solve:", err)
		os.Exit(1)
	}

	driver, err := hiop.NewDriver(dp.Build(), opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hiop-solve: new driver:", err)
		os.Exit(1)
	}

	status, err := driver.Run(context.Background())
	if err != nil && status != hiop.AcceptableLevel {
		fmt.Fprintln(os.Stderr, "hiop-solve: solve failed:", err)
		os.Exit(1)
	}

	x := driver.GetSolution(nil)
	fmt.Printf("status: %s\n", status)
	fmt.Printf("objective: %.10g\n", driver.GetObjective())
	fmt.Printf("x: %v\n", x)
}

// buildScenario returns one of the end-to-end demonstration problems of
// spec.md §8.
func buildScenario(name string) (*hiop.DenseProblem, error) {
	inf := math.Inf(1)
	switch name {
	case "unconstrained":
		return &hiop.DenseProblem{
			X0:      []float64{2, -3},
			Obj:     func(x []float64) float64 { return x[0]*x[0] + x[1]*x[1] },
			GradObj: func(x, g []float64) { g[0], g[1] = 2*x[0], 2*x[1] },
			XBounds: unbounded(2),
		}, nil
	case "equality":
		return &hiop.DenseProblem{
			X0:      []float64{2, -1},
			Obj:     func(x []float64) float64 { return x[0]*x[0] + x[1]*x[1] },
			GradObj: func(x, g []float64) { g[0], g[1] = 2*x[0], 2*x[1] },
			Ac:      mat.NewDense(1, 2, []float64{1, 1}),
			Bc:      []float64{1},
			XBounds: unbounded(2),
		}, nil
	case "bounded":
		return &hiop.DenseProblem{
			X0:  []float64{2, 2},
			Obj: func(x []float64) float64 { return (x[0]-1)*(x[0]-1) + (x[1]-1)*(x[1]-1) },
			GradObj: func(x, g []float64) {
				g[0], g[1] = 2*(x[0]-1), 2*(x[1]-1)
			},
			XBounds: hiop.Bounds{Lower: []float64{1.5, -inf}, Upper: []float64{inf, inf}},
		}, nil
	case "inequality":
		return &hiop.DenseProblem{
			X0:      []float64{2, 2},
			Obj:     func(x []float64) float64 { return x[0]*x[0] + x[1]*x[1] },
			GradObj: func(x, g []float64) { g[0], g[1] = 2*x[0], 2*x[1] },
			Ad:      mat.NewDense(1, 2, []float64{1, 1}),
			XBounds: unbounded(2),
			DBounds: hiop.Bounds{Lower: []float64{1}, Upper: []float64{inf}},
		}, nil
	default:
		return nil, fmt.Errorf("unknown scenario %q", name)
	}
}

func unbounded(n int) hiop.Bounds {
	lo := make([]float64, n)
	hi := make([]float64, n)
	for i := range lo {
		lo[i] = math.Inf(-1)
		hi[i] = math.Inf(1)
	}
	return hiop.Bounds{Lower: lo, Upper: hi}
}
