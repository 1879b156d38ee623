// Copyright ©2024 The Hiop Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hiop

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Residual computes the KKT residuals (stationarity, primal feasibility,
// complementarity) of the current iterate, in both the NLP sense (mu=0)
// and the barrier sense (mu>0), per spec.md §3/§2.
//
// Stationarity and primal feasibility do not depend on mu (z, v are
// genuine KKT multipliers, not a function of mu), so the NLP and barrier
// variants of those two sub-norms coincide; only the complementarity
// sub-norm differs, by using 0 versus mu as the target of
// margin*multiplier. This mirrors the original C++'s thetaLogBarrier,
// which reuses the NLP feasibility sub-norm as the line-search theta with
// no barrier-specific recomputation.
type Residual struct {
	xBounds, sBounds Bounds

	statX *mat.VecDense // length nvars
	statS *mat.VecDense // length nineq
	feasC *mat.VecDense // length neq
	feasD *mat.VecDense // length nineq

	optim, feas, complemNLP, complemLog float64
}

func newResidual(p *Problem) *Residual {
	return &Residual{
		xBounds: p.XBounds,
		sBounds: p.DBounds,
		statX:   mat.NewVecDense(p.NVars, nil),
		statS:   mat.NewVecDense(p.NIneq, nil),
		feasC:   mat.NewVecDense(p.NEq, nil),
		feasD:   mat.NewVecDense(p.NIneq, nil),
	}
}

func complementarityNorm(v *mat.VecDense, b Bounds, mult *mat.VecDense, sign float64, target float64) float64 {
	var maxv float64
	for i := 0; i < v.Len(); i++ {
		bnd := b.Lower[i]
		if sign < 0 {
			bnd = b.Upper[i]
		}
		if math.IsInf(bnd, int(-sign)) {
			continue
		}
		margin := sign * (v.AtVec(i) - bnd)
		r := math.Abs(margin*mult.AtVec(i) - target)
		if r > maxv {
			maxv = r
		}
	}
	return maxv
}

// update recomputes the residuals at it given NLP function/derivative
// values and the current barrier parameter mu.
func (r *Residual) update(it *Iterate, c, d, gradF *mat.VecDense, Jc, Jd *mat.Dense, mu float64) {
	// Stationarity: grad f - Jc^T yc - Jd^T yd - zl + zu = 0
	r.statX.CopyVec(gradF)
	if it.neq > 0 {
		r.statX.AddScaledVec(r.statX, -1, colMatVec(Jc, it.Yc))
	}
	if it.nineq > 0 {
		r.statX.AddScaledVec(r.statX, -1, colMatVec(Jd, it.Yd))
	}
	r.statX.AddScaledVec(r.statX, -1, it.Zl)
	r.statX.AddScaledVec(r.statX, 1, it.Zu)

	// Stationarity w.r.t. s: -yd - vl + vu = 0
	for i := 0; i < it.nineq; i++ {
		r.statS.SetVec(i, -it.Yd.AtVec(i)-it.Vl.AtVec(i)+it.Vu.AtVec(i))
	}

	// Feasibility: c(x) = 0, d(x) - s = 0
	r.feasC.CopyVec(c)
	for i := 0; i < it.nineq; i++ {
		r.feasD.SetVec(i, d.AtVec(i)-it.S.AtVec(i))
	}

	r.optim = math.Max(infNorm(r.statX), infNorm(r.statS))
	r.feas = math.Max(infNorm(r.feasC), infNorm(r.feasD))

	r.complemNLP = math.Max(
		math.Max(complementarityNorm(it.X, r.xBounds, it.Zl, 1, 0), complementarityNorm(it.X, r.xBounds, it.Zu, -1, 0)),
		math.Max(complementarityNorm(it.S, r.sBounds, it.Vl, 1, 0), complementarityNorm(it.S, r.sBounds, it.Vu, -1, 0)),
	)
	r.complemLog = math.Max(
		math.Max(complementarityNorm(it.X, r.xBounds, it.Zl, 1, mu), complementarityNorm(it.X, r.xBounds, it.Zu, -1, mu)),
		math.Max(complementarityNorm(it.S, r.sBounds, it.Vl, 1, mu), complementarityNorm(it.S, r.sBounds, it.Vu, -1, mu)),
	)
}

// computeNlpInfeasNorm returns ||(c(x_trial); d(x_trial)-s_trial)||_inf
// without needing bound multipliers, for cheap use by the line search.
func (r *Residual) computeNlpInfeasNorm(it *Iterate, c, d *mat.VecDense) float64 {
	var maxv float64
	for i := 0; i < c.Len(); i++ {
		if v := math.Abs(c.AtVec(i)); v > maxv {
			maxv = v
		}
	}
	for i := 0; i < d.Len(); i++ {
		if v := math.Abs(d.AtVec(i) - it.S.AtVec(i)); v > maxv {
			maxv = v
		}
	}
	return maxv
}

// getInfeasNorm returns the cached primal-infeasibility sub-norm at the
// current iterate (theta in spec.md §4.5).
func (r *Residual) getInfeasNorm() float64 { return r.feas }

// getNlpErrors returns the (optim, feas, complem) triple for the NLP
// sense (mu=0).
func (r *Residual) getNlpErrors() (optim, feas, complem float64) {
	return r.optim, r.feas, r.complemNLP
}

// getBarrierErrors returns the (optim, feas, complem) triple for the
// barrier sense (mu>0).
func (r *Residual) getBarrierErrors() (optim, feas, complem float64) {
	return r.optim, r.feas, r.complemLog
}

// colMatVec returns A^T * v as a fresh VecDense.
func colMatVec(A *mat.Dense, v *mat.VecDense) *mat.VecDense {
	_, c := A.Dims()
	out := mat.NewVecDense(c, nil)
	out.MulVec(A.T(), v)
	return out
}
