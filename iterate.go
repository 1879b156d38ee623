// Copyright ©2024 The Hiop Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hiop

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Iterate holds a primal-dual point (x, s, yc, yd, zl, zu, vl, vu) and the
// operations that mutate it, per spec.md §3/§4.2.
type Iterate struct {
	nvars, neq, nineq int
	xBounds, sBounds  Bounds

	X  *mat.VecDense // primal variables, length nvars
	S  *mat.VecDense // inequality slacks, length nineq
	Yc *mat.VecDense // equality multipliers, length neq
	Yd *mat.VecDense // inequality multipliers, length nineq
	Zl *mat.VecDense // lower-bound multipliers on x, length nvars
	Zu *mat.VecDense // upper-bound multipliers on x, length nvars
	Vl *mat.VecDense // lower-bound multipliers on s, length nineq
	Vu *mat.VecDense // upper-bound multipliers on s, length nineq
}

// newIterate allocates a zeroed Iterate sized for the given Problem.
func newIterate(p *Problem) *Iterate {
	return &Iterate{
		nvars:   p.NVars,
		neq:     p.NEq,
		nineq:   p.NIneq,
		xBounds: p.XBounds,
		sBounds: p.DBounds,
		X:       mat.NewVecDense(p.NVars, nil),
		S:       mat.NewVecDense(p.NIneq, nil),
		Yc:      mat.NewVecDense(p.NEq, nil),
		Yd:      mat.NewVecDense(p.NIneq, nil),
		Zl:      mat.NewVecDense(p.NVars, nil),
		Zu:      mat.NewVecDense(p.NVars, nil),
		Vl:      mat.NewVecDense(p.NIneq, nil),
		Vu:      mat.NewVecDense(p.NIneq, nil),
	}
}

// allocClone returns a new Iterate of the same shape, zero-initialized.
func (it *Iterate) allocClone() *Iterate {
	return &Iterate{
		nvars: it.nvars, neq: it.neq, nineq: it.nineq,
		xBounds: it.xBounds, sBounds: it.sBounds,
		X:  mat.NewVecDense(it.nvars, nil),
		S:  mat.NewVecDense(it.nineq, nil),
		Yc: mat.NewVecDense(it.neq, nil),
		Yd: mat.NewVecDense(it.nineq, nil),
		Zl: mat.NewVecDense(it.nvars, nil),
		Zu: mat.NewVecDense(it.nvars, nil),
		Vl: mat.NewVecDense(it.nineq, nil),
		Vu: mat.NewVecDense(it.nineq, nil),
	}
}

// projectInterior applies the standard Ipopt starting-point perturbation
// p_l = min(kappa1*max(1,|lb|), kappa2*(ub-lb))
// p_u = min(kappa1*max(1,|ub|), kappa2*(ub-lb))
// to v in place, against the two-sided bounds b. One-sided bounds use
// only the relevant side; unbounded components are left untouched.
func projectInterior(v *mat.VecDense, b Bounds, kappa1, kappa2 float64) {
	n := v.Len()
	for i := 0; i < n; i++ {
		lb, ub := b.Lower[i], b.Upper[i]
		x := v.AtVec(i)
		finiteLB, finiteUB := !math.IsInf(lb, -1), !math.IsInf(ub, 1)
		switch {
		case finiteLB && finiteUB:
			width := ub - lb
			pl := math.Min(kappa1*math.Max(1, math.Abs(lb)), kappa2*width)
			pu := math.Min(kappa1*math.Max(1, math.Abs(ub)), kappa2*width)
			lo, hi := lb+pl, ub-pu
			if lo > hi {
				lo, hi = lb+width/2, lb+width/2
			}
			x = math.Max(lo, math.Min(hi, x))
		case finiteLB:
			pl := kappa1 * math.Max(1, math.Abs(lb))
			x = math.Max(lb+pl, x)
		case finiteUB:
			pu := kappa1 * math.Max(1, math.Abs(ub))
			x = math.Min(ub-pu, x)
		}
		v.SetVec(i, x)
	}
}

// projectPrimalsXIntoBounds moves x strictly inside [xl, xu] per spec.md
// §4.2.
func (it *Iterate) projectPrimalsXIntoBounds(kappa1, kappa2 float64) {
	projectInterior(it.X, it.xBounds, kappa1, kappa2)
}

// projectPrimalsDIntoBounds moves s strictly inside [dl, du].
func (it *Iterate) projectPrimalsDIntoBounds(kappa1, kappa2 float64) {
	projectInterior(it.S, it.sBounds, kappa1, kappa2)
}

// determineSlacks sets s = d(x) (already copied into it.S by the caller)
// then projects it into its own bounds with the same perturbation rule.
func (it *Iterate) determineSlacks(kappa1, kappa2 float64) {
	projectInterior(it.S, it.sBounds, kappa1, kappa2)
}

// setBoundsDualsToConstant initializes zl, zu, vl, vu to v.
func (it *Iterate) setBoundsDualsToConstant(v float64) {
	fill(it.Zl, v)
	fill(it.Zu, v)
	fill(it.Vl, v)
	fill(it.Vu, v)
}

// setEqualityDualsToConstant initializes yc, yd to v.
func (it *Iterate) setEqualityDualsToConstant(v float64) {
	fill(it.Yc, v)
	fill(it.Yd, v)
}

func fill(v *mat.VecDense, val float64) {
	for i := 0; i < v.Len(); i++ {
		v.SetVec(i, val)
	}
}

// fractionToBoundaryPrimal returns the largest alpha in (0,1] such that, for every
// finite bound, cur[i] + alpha*dir[i] >= (1-tau)*cur[i] (lower bound
// wording from spec.md §4.2; the analogous test is used for upper bounds
// and for strictly-positive dual vectors moving toward zero).
func fractionToBoundaryPrimal(cur, dir *mat.VecDense, b Bounds, tau, alphaMax float64) float64 {
	alpha := alphaMax
	n := cur.Len()
	for i := 0; i < n; i++ {
		d := dir.AtVec(i)
		x := cur.AtVec(i)
		if lb := b.Lower[i]; !math.IsInf(lb, -1) && d < 0 {
			// x + a*d >= lb + (1-tau)*(x-lb)  <=>  a <= -tau*(x-lb)/d
			a := -tau * (x - lb) / d
			if a < alpha {
				alpha = a
			}
		}
		if ub := b.Upper[i]; !math.IsInf(ub, 1) && d > 0 {
			a := tau * (ub - x) / d
			if a < alpha {
				alpha = a
			}
		}
	}
	return alpha
}

// fractionToBoundaryDual returns the largest alpha in (0,1] such that
// every strictly-positive component of v moving along dir stays at least
// (1-tau) of its current value.
func fractionToBoundaryDual(v, dir *mat.VecDense, tau, alphaMax float64) float64 {
	alpha := alphaMax
	for i := 0; i < v.Len(); i++ {
		d := dir.AtVec(i)
		if d >= 0 {
			continue
		}
		x := v.AtVec(i)
		a := -tau * x / d
		if a < alpha {
			alpha = a
		}
	}
	return alpha
}

// fractionToTheBdry computes alphaPrimal for (x,s) and alphaDual for
// (zl,zu,vl,vu) against dir, per spec.md §4.2.
func (it *Iterate) fractionToTheBdry(dir *Iterate, tau float64) (alphaPrimal, alphaDual float64) {
	alphaPrimal = 1.0
	alphaPrimal = math.Min(alphaPrimal, fractionToBoundaryPrimal(it.X, dir.X, it.xBounds, tau, alphaPrimal))
	alphaPrimal = math.Min(alphaPrimal, fractionToBoundaryPrimal(it.S, dir.S, it.sBounds, tau, alphaPrimal))

	alphaDual = 1.0
	alphaDual = math.Min(alphaDual, fractionToBoundaryDual(it.Zl, dir.Zl, tau, alphaDual))
	alphaDual = math.Min(alphaDual, fractionToBoundaryDual(it.Zu, dir.Zu, tau, alphaDual))
	alphaDual = math.Min(alphaDual, fractionToBoundaryDual(it.Vl, dir.Vl, tau, alphaDual))
	alphaDual = math.Min(alphaDual, fractionToBoundaryDual(it.Vu, dir.Vu, tau, alphaDual))
	return alphaPrimal, alphaDual
}

// takeStepPrimals populates it (the trial iterate) with cur + alphaPrimal*dir
// for x and s, and advances the bound-multiplier duals by alphaDual.
// Equality duals yc, yd are not advanced here: they are copied from cur
// unchanged, and DualsUpdate sets them (spec.md §4.2, §9 Open Questions).
func (it *Iterate) takeStepPrimals(cur, dir *Iterate, alphaPrimal, alphaDual float64) {
	it.X.AddScaledVec(cur.X, alphaPrimal, dir.X)
	it.S.AddScaledVec(cur.S, alphaPrimal, dir.S)
	it.Zl.AddScaledVec(cur.Zl, alphaDual, dir.Zl)
	it.Zu.AddScaledVec(cur.Zu, alphaDual, dir.Zu)
	it.Vl.AddScaledVec(cur.Vl, alphaDual, dir.Vl)
	it.Vu.AddScaledVec(cur.Vu, alphaDual, dir.Vu)
	// Equality duals are copied forward; DualsUpdate overwrites them.
	it.Yc.CopyVec(cur.Yc)
	it.Yd.CopyVec(cur.Yd)
}

func infNorm(v *mat.VecDense) float64 {
	if v.Len() == 0 {
		return 0
	}
	return mat.Norm(v, math.Inf(1))
}

func oneNorm(v *mat.VecDense) float64 {
	if v.Len() == 0 {
		return 0
	}
	return mat.Norm(v, 1)
}

// totalNormOfDuals returns (||yc||_inf + ||yd||_inf, ||zl||_inf + ||zu||_inf
// + ||vl||_inf + ||vu||_inf), the Ipopt-style scaling norms of spec.md §4.2.
func (it *Iterate) totalNormOfDuals() (nrmDualEqu, nrmDualBou float64) {
	nrmDualEqu = infNorm(it.Yc) + infNorm(it.Yd)
	nrmDualBou = infNorm(it.Zl) + infNorm(it.Zu) + infNorm(it.Vl) + infNorm(it.Vu)
	return nrmDualEqu, nrmDualBou
}

// normOneOfDuals is the one-norm analogue used by the finite-dimensional
// error-scaling variant.
func (it *Iterate) normOneOfDuals() (nrmDualEqu, nrmDualBou float64) {
	nrmDualEqu = oneNorm(it.Yc) + oneNorm(it.Yd)
	nrmDualBou = oneNorm(it.Zl) + oneNorm(it.Zu) + oneNorm(it.Vl) + oneNorm(it.Vu)
	return nrmDualEqu, nrmDualBou
}

// interiorMargins returns x-xl, xu-x (or +Inf where unbounded) as slices.
func interiorMargins(v *mat.VecDense, b Bounds) (lowerMargin, upperMargin []float64) {
	n := v.Len()
	lowerMargin = make([]float64, n)
	upperMargin = make([]float64, n)
	for i := 0; i < n; i++ {
		x := v.AtVec(i)
		lowerMargin[i] = x - b.Lower[i]
		upperMargin[i] = b.Upper[i] - x
	}
	return lowerMargin, upperMargin
}
