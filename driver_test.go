// Copyright ©2024 The Hiop Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hiop

import (
	"context"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func unboundedBounds(n int) Bounds {
	lo := make([]float64, n)
	hi := make([]float64, n)
	for i := range lo {
		lo[i] = math.Inf(-1)
		hi[i] = math.Inf(1)
	}
	return Bounds{Lower: lo, Upper: hi}
}

func testOptions() *Options {
	o := DefaultOptions()
	o.Tolerance = 1e-7
	o.MaxIter = 200
	return o
}

func TestDriverUnconstrainedQuadratic(t *testing.T) {
	dp := &DenseProblem{
		X0:      []float64{2, -3},
		Obj:     func(x []float64) float64 { return x[0]*x[0] + x[1]*x[1] },
		GradObj: func(x, g []float64) { g[0], g[1] = 2*x[0], 2*x[1] },
		XBounds: unboundedBounds(2),
	}
	driver, err := NewDriver(dp.Build(), testOptions())
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	status, err := driver.Run(context.Background())
	if status != Success {
		t.Fatalf("status = %v (err=%v), want Success", status, err)
	}
	x := driver.GetSolution(nil)
	if math.Abs(x[0]) > 1e-4 || math.Abs(x[1]) > 1e-4 {
		t.Errorf("solution = %v, want approximately (0,0)", x)
	}
}

func TestDriverEqualityConstrained(t *testing.T) {
	dp := &DenseProblem{
		X0:      []float64{2, -1},
		Obj:     func(x []float64) float64 { return x[0]*x[0] + x[1]*x[1] },
		GradObj: func(x, g []float64) { g[0], g[1] = 2*x[0], 2*x[1] },
		Ac:      mat.NewDense(1, 2, []float64{1, 1}),
		Bc:      []float64{1},
		XBounds: unboundedBounds(2),
	}
	driver, err := NewDriver(dp.Build(), testOptions())
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	status, err := driver.Run(context.Background())
	if status != Success {
		t.Fatalf("status = %v (err=%v), want Success", status, err)
	}
	x := driver.GetSolution(nil)
	if math.Abs(x[0]-0.5) > 1e-3 || math.Abs(x[1]-0.5) > 1e-3 {
		t.Errorf("solution = %v, want approximately (0.5,0.5)", x)
	}
}

func TestDriverBoundConstrained(t *testing.T) {
	inf := math.Inf(1)
	dp := &DenseProblem{
		X0:  []float64{2, 2},
		Obj: func(x []float64) float64 { return (x[0]-1)*(x[0]-1) + (x[1]-1)*(x[1]-1) },
		GradObj: func(x, g []float64) {
			g[0], g[1] = 2*(x[0]-1), 2*(x[1]-1)
		},
		XBounds: Bounds{Lower: []float64{1.5, -inf}, Upper: []float64{inf, inf}},
	}
	driver, err := NewDriver(dp.Build(), testOptions())
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	status, err := driver.Run(context.Background())
	if status != Success {
		t.Fatalf("status = %v (err=%v), want Success", status, err)
	}
	x := driver.GetSolution(nil)
	if math.Abs(x[0]-1.5) > 1e-3 || math.Abs(x[1]-1) > 1e-3 {
		t.Errorf("solution = %v, want approximately (1.5,1)", x)
	}
}

func TestDriverInequalityConstrained(t *testing.T) {
	inf := math.Inf(1)
	dp := &DenseProblem{
		X0:      []float64{2, 2},
		Obj:     func(x []float64) float64 { return x[0]*x[0] + x[1]*x[1] },
		GradObj: func(x, g []float64) { g[0], g[1] = 2*x[0], 2*x[1] },
		Ad:      mat.NewDense(1, 2, []float64{1, 1}),
		XBounds: unboundedBounds(2),
		DBounds: Bounds{Lower: []float64{1}, Upper: []float64{inf}},
	}
	driver, err := NewDriver(dp.Build(), testOptions())
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	status, err := driver.Run(context.Background())
	if status != Success {
		t.Fatalf("status = %v (err=%v), want Success", status, err)
	}
	x := driver.GetSolution(nil)
	if math.Abs(x[0]-0.5) > 1e-3 || math.Abs(x[1]-0.5) > 1e-3 {
		t.Errorf("solution = %v, want approximately (0.5,0.5)", x)
	}
}

// TestDriverStepTooSmall forces every trial-point objective evaluation
// (newX=true, used only by the line search) to fail, so the backtracking
// loop must exhaust alpha and report StepTooSmall.
func TestDriverStepTooSmall(t *testing.T) {
	p := &Problem{
		NVars:   1,
		XBounds: unboundedBounds(1),
		StartingPoint: func(x0 []float64) bool {
			x0[0] = 5
			return true
		},
		EvalF: func(x []float64, newX bool) (float64, bool) {
			if newX {
				return 0, false
			}
			return x[0] * x[0], true
		},
		EvalGradF: func(x []float64, newX bool, out []float64) bool {
			out[0] = 2 * x[0]
			return true
		},
	}
	driver, err := NewDriver(p, testOptions())
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	status, _ := driver.Run(context.Background())
	if status != StepTooSmall {
		t.Fatalf("status = %v, want StepTooSmall", status)
	}
}

// TestDriverUserStopped confirms an IterateCallback returning false halts
// the outer loop with UserStopped.
func TestDriverUserStopped(t *testing.T) {
	p := &Problem{
		NVars:   2,
		XBounds: unboundedBounds(2),
		StartingPoint: func(x0 []float64) bool {
			x0[0], x0[1] = 2, -3
			return true
		},
		EvalF: func(x []float64, newX bool) (float64, bool) {
			return x[0]*x[0] + x[1]*x[1], true
		},
		EvalGradF: func(x []float64, newX bool, out []float64) bool {
			out[0], out[1] = 2*x[0], 2*x[1]
			return true
		},
		IterateCallback: func(info IterationInfo) bool {
			return false
		},
	}
	driver, err := NewDriver(p, testOptions())
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	status, _ := driver.Run(context.Background())
	if status != UserStopped {
		t.Fatalf("status = %v, want UserStopped", status)
	}
}

func TestDriverContextCancellation(t *testing.T) {
	p := &Problem{
		NVars:   2,
		XBounds: unboundedBounds(2),
		StartingPoint: func(x0 []float64) bool {
			x0[0], x0[1] = 2, -3
			return true
		},
		EvalF: func(x []float64, newX bool) (float64, bool) {
			return x[0]*x[0] + x[1]*x[1], true
		},
		EvalGradF: func(x []float64, newX bool, out []float64) bool {
			out[0], out[1] = 2*x[0], 2*x[1]
			return true
		},
	}
	driver, err := NewDriver(p, testOptions())
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	status, err := driver.Run(ctx)
	if status != UserStopped {
		t.Fatalf("status = %v (err=%v), want UserStopped", status, err)
	}
}
