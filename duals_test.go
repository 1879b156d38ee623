// Copyright ©2024 The Hiop Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hiop

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestClampBoundDualsWithinRange(t *testing.T) {
	z := mat.NewVecDense(1, []float64{1})
	x := mat.NewVecDense(1, []float64{2})
	b := Bounds{Lower: []float64{0}, Upper: []float64{math.Inf(1)}}
	clampBoundDuals(z, x, b, 1, 1.0, 1e10)
	if z.AtVec(0) != 1 {
		t.Errorf("z = %g, want unchanged 1 (already within range)", z.AtVec(0))
	}
}

func TestClampBoundDualsClampsLow(t *testing.T) {
	// slack = x - lb = 100; lo = mu/(kappaSigma*slack) = 1/(10*100) = 1e-3
	z := mat.NewVecDense(1, []float64{1e-6})
	x := mat.NewVecDense(1, []float64{100})
	b := Bounds{Lower: []float64{0}, Upper: []float64{math.Inf(1)}}
	clampBoundDuals(z, x, b, 1, 1.0, 10)
	want := 1.0 / (10 * 100)
	if math.Abs(z.AtVec(0)-want) > 1e-15 {
		t.Errorf("z = %g, want %g (clamped to lower bound)", z.AtVec(0), want)
	}
}

func TestClampBoundDualsSkipsUnbounded(t *testing.T) {
	z := mat.NewVecDense(1, []float64{42})
	x := mat.NewVecDense(1, []float64{5})
	b := Bounds{Lower: []float64{math.Inf(-1)}, Upper: []float64{math.Inf(1)}}
	clampBoundDuals(z, x, b, 1, 1.0, 10)
	if z.AtVec(0) != 42 {
		t.Errorf("z = %g, want unchanged 42 (unbounded side)", z.AtVec(0))
	}
}

func TestDualsUpdateLinear(t *testing.T) {
	p := &Problem{NVars: 1, NEq: 1, XBounds: Bounds{Lower: []float64{math.Inf(-1)}, Upper: []float64{math.Inf(1)}}}
	du := newDualsUpdate(p, DualsUpdateLinear)

	itCurr := newIterate(p)
	itCurr.Yc.SetVec(0, 1)
	itTrial := newIterate(p)
	itTrial.X.SetVec(0, 1)
	dir := newIterate(p)
	dir.Yc.SetVec(0, 2)

	var Jc, Jd mat.Dense
	gradF := mat.NewVecDense(1, []float64{0})
	if err := du.Apply(itCurr, itTrial, dir, gradF, &Jc, &Jd, 0.5, 1.0, 1e10); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if got := itTrial.Yc.AtVec(0); got != 2 {
		t.Errorf("Yc = %g, want 2 (1 + 0.5*2)", got)
	}
}

func TestDualsUpdateUnknownType(t *testing.T) {
	p := &Problem{NVars: 1}
	du := newDualsUpdate(p, DualsUpdateType("bogus"))
	itCurr, itTrial, dir := newIterate(p), newIterate(p), newIterate(p)
	var Jc, Jd mat.Dense
	gradF := mat.NewVecDense(1, nil)
	err := du.Apply(itCurr, itTrial, dir, gradF, &Jc, &Jd, 1, 1, 1e10)
	if err == nil {
		t.Fatal("Apply returned nil error, want a wrapped ErrBadOption")
	}
}

func TestLsqUpdateNoConstraintsIsNoOp(t *testing.T) {
	p := &Problem{NVars: 2}
	du := newDualsUpdate(p, DualsUpdateLsq)
	it := newIterate(p)
	var Jc, Jd mat.Dense
	gradF := mat.NewVecDense(2, []float64{1, 2})
	if err := du.lsqUpdate(it, gradF, &Jc, &Jd); err != nil {
		t.Fatalf("lsqUpdate returned error: %v", err)
	}
}

func TestLsqUpdateSolvesStationarity(t *testing.T) {
	// 1 var, 1 equality constraint with Jc = [1]; gradF=[5], zl=zu=0
	// stationarity: 1*yc = 5 => yc = 5
	p := &Problem{NVars: 1, NEq: 1}
	du := newDualsUpdate(p, DualsUpdateLsq)
	it := newIterate(p)
	Jc := mat.NewDense(1, 1, []float64{1})
	var Jd mat.Dense
	gradF := mat.NewVecDense(1, []float64{5})
	if err := du.lsqUpdate(it, gradF, Jc, &Jd); err != nil {
		t.Fatalf("lsqUpdate returned error: %v", err)
	}
	if math.Abs(it.Yc.AtVec(0)-5) > 1e-9 {
		t.Errorf("Yc = %g, want 5", it.Yc.AtVec(0))
	}
}
