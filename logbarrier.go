// Copyright ©2024 The Hiop Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hiop

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// LogBarrierProblem computes the log-barrier objective
//
//	phi(x,s;mu) = f(x) - mu*sum(log(x-xl)) - mu*sum(log(xu-x))
//	                   - mu*sum(log(s-sl)) - mu*sum(log(su-s))
//
// (sums ranging only over finite bounds) and its directional derivative
// along a search direction, per spec.md §4.3.
type LogBarrierProblem struct {
	xBounds, sBounds Bounds

	FLogbar      float64
	FLogbarTrial float64

	gradPhiX *mat.VecDense
	gradPhiS *mat.VecDense
}

func newLogBarrierProblem(p *Problem) *LogBarrierProblem {
	return &LogBarrierProblem{
		xBounds:  p.XBounds,
		sBounds:  p.DBounds,
		gradPhiX: mat.NewVecDense(p.NVars, nil),
		gradPhiS: mat.NewVecDense(p.NIneq, nil),
	}
}

func barrierTerm(v *mat.VecDense, b Bounds, mu float64) float64 {
	var sum float64
	for i := 0; i < v.Len(); i++ {
		x := v.AtVec(i)
		if lb := b.Lower[i]; !math.IsInf(lb, -1) {
			sum += math.Log(x - lb)
		}
		if ub := b.Upper[i]; !math.IsInf(ub, 1) {
			sum += math.Log(ub - x)
		}
	}
	return mu * sum
}

func barrierGrad(dst, v *mat.VecDense, b Bounds, mu float64, addF *mat.VecDense) {
	for i := 0; i < v.Len(); i++ {
		x := v.AtVec(i)
		var g float64
		if addF != nil {
			g = addF.AtVec(i)
		}
		if lb := b.Lower[i]; !math.IsInf(lb, -1) {
			g -= mu / (x - lb)
		}
		if ub := b.Upper[i]; !math.IsInf(ub, 1) {
			g += mu / (ub - x)
		}
		dst.SetVec(i, g)
	}
}

// updateWithNlpInfo caches f_logbar and grad(phi) at it, given the NLP
// function and derivative values already evaluated there.
func (lb *LogBarrierProblem) updateWithNlpInfo(it *Iterate, mu, f float64, gradF *mat.VecDense) {
	lb.FLogbar = f - barrierTerm(it.X, lb.xBounds, mu) - barrierTerm(it.S, lb.sBounds, mu)
	barrierGrad(lb.gradPhiX, it.X, lb.xBounds, mu, gradF)
	barrierGrad(lb.gradPhiS, it.S, lb.sBounds, mu, nil)
}

// updateWithNlpInfoTrialFuncOnly caches f_logbar_trial for line-search
// comparison, without touching the cached gradient.
func (lb *LogBarrierProblem) updateWithNlpInfoTrialFuncOnly(itTrial *Iterate, mu, fTrial float64) {
	lb.FLogbarTrial = fTrial - barrierTerm(itTrial.X, lb.xBounds, mu) - barrierTerm(itTrial.S, lb.sBounds, mu)
}

// directionalDerivative returns grad(phi)^T dir using the cached gradient.
func (lb *LogBarrierProblem) directionalDerivative(dir *Iterate) float64 {
	return mat.Dot(lb.gradPhiX, dir.X) + mat.Dot(lb.gradPhiS, dir.S)
}
