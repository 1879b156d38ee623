// Copyright ©2024 The Hiop Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hiop

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestDenseProblemBuildDims(t *testing.T) {
	dp := &DenseProblem{
		X0:      []float64{1, 2, 3},
		Obj:     func(x []float64) float64 { return 0 },
		GradObj: func(x, g []float64) {},
		Ac:      mat.NewDense(2, 3, nil),
		Bc:      []float64{0, 0},
		Ad:      mat.NewDense(1, 3, nil),
	}
	p := dp.Build()
	if p.NVars != 3 || p.NEq != 2 || p.NIneq != 1 {
		t.Errorf("dims = (%d,%d,%d), want (3,2,1)", p.NVars, p.NEq, p.NIneq)
	}
	if p.EvalC == nil || p.EvalJacC == nil {
		t.Error("EvalC/EvalJacC should be set when Ac is non-nil")
	}
	if p.EvalD == nil || p.EvalJacD == nil {
		t.Error("EvalD/EvalJacD should be set when Ad is non-nil")
	}
}

func TestDenseProblemBuildNoConstraints(t *testing.T) {
	dp := &DenseProblem{
		X0:      []float64{1},
		Obj:     func(x []float64) float64 { return x[0] },
		GradObj: func(x, g []float64) { g[0] = 1 },
	}
	p := dp.Build()
	if p.NEq != 0 || p.NIneq != 0 {
		t.Errorf("NEq,NIneq = %d,%d, want 0,0", p.NEq, p.NIneq)
	}
	if p.EvalC != nil || p.EvalD != nil {
		t.Error("EvalC/EvalD should be nil with no constraints")
	}
}

func TestDenseProblemEvalCMatchesAffineMap(t *testing.T) {
	dp := &DenseProblem{
		X0:      []float64{0, 0},
		Obj:     func(x []float64) float64 { return 0 },
		GradObj: func(x, g []float64) {},
		Ac:      mat.NewDense(1, 2, []float64{1, 1}),
		Bc:      []float64{1},
	}
	p := dp.Build()
	out := make([]float64, 1)
	if ok := p.EvalC([]float64{2, 3}, true, out); !ok {
		t.Fatal("EvalC returned ok=false")
	}
	if math.Abs(out[0]-4) > 1e-12 { // 2+3-1 = 4
		t.Errorf("c(x) = %g, want 4", out[0])
	}
}

func TestDenseProblemStartingPointCopies(t *testing.T) {
	dp := &DenseProblem{
		X0:      []float64{7, 8},
		Obj:     func(x []float64) float64 { return 0 },
		GradObj: func(x, g []float64) {},
	}
	p := dp.Build()
	buf := make([]float64, 2)
	if ok := p.StartingPoint(buf); !ok {
		t.Fatal("StartingPoint returned ok=false")
	}
	if buf[0] != 7 || buf[1] != 8 {
		t.Errorf("buf = %v, want [7 8]", buf)
	}
}
