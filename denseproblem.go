// Copyright ©2024 The Hiop Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hiop

import "gonum.org/v1/gonum/mat"

// DenseProblem is a reference Problem implementation for NLPs with a
// user-supplied objective/gradient and dense linear equality and
// inequality constraints, c(x) = Ac*x - bc and d(x) = Ad*x. It exists so
// that callers (including cmd/hiop-solve) do not need to hand-write the
// Problem closures for the common case of a nonlinear objective over a
// linearly-constrained feasible region.
type DenseProblem struct {
	X0 []float64

	Obj     func(x []float64) float64
	GradObj func(x []float64, g []float64)

	Ac *mat.Dense
	Bc []float64

	Ad *mat.Dense

	XBounds, DBounds Bounds
}

// Build returns the *Problem closures for dp.
func (dp *DenseProblem) Build() *Problem {
	n := len(dp.X0)
	neq := 0
	if dp.Ac != nil {
		neq, _ = dp.Ac.Dims()
	}
	nineq := 0
	if dp.Ad != nil {
		nineq, _ = dp.Ad.Dims()
	}

	p := &Problem{
		NVars: n, NEq: neq, NIneq: nineq,
		XBounds: dp.XBounds, DBounds: dp.DBounds,
		StartingPoint: func(x0 []float64) bool {
			copy(x0, dp.X0)
			return true
		},
		EvalF: func(x []float64, newX bool) (float64, bool) {
			return dp.Obj(x), true
		},
		EvalGradF: func(x []float64, newX bool, out []float64) bool {
			dp.GradObj(x, out)
			return true
		},
	}
	if neq > 0 {
		p.EvalC = func(x []float64, newX bool, out []float64) bool {
			xv := mat.NewVecDense(n, x)
			cv := mat.NewVecDense(neq, out)
			cv.MulVec(dp.Ac, xv)
			cv.SubVec(cv, mat.NewVecDense(neq, dp.Bc))
			return true
		}
		p.EvalJacC = func(x []float64, newX bool, out *mat.Dense) bool {
			out.Copy(dp.Ac)
			return true
		}
	}
	if nineq > 0 {
		p.EvalD = func(x []float64, newX bool, out []float64) bool {
			xv := mat.NewVecDense(n, x)
			dv := mat.NewVecDense(nineq, out)
			dv.MulVec(dp.Ad, xv)
			return true
		}
		p.EvalJacD = func(x []float64, newX bool, out *mat.Dense) bool {
			out.Copy(dp.Ad)
			return true
		}
	}
	return p
}
