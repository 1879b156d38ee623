// Copyright ©2024 The Hiop Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hiop

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// DualsUpdate advances the equality and inequality multipliers yc, yd of
// the trial iterate after the line search has fixed the step length, per
// spec.md §4.8/§9. The bound multipliers zl, zu, vl, vu have already been
// advanced by takeStepPrimals using the KKT direction; both policies
// finish by clamping them against the primal log-barrier Hessian.
type DualsUpdate struct {
	typ DualsUpdateType

	n, mc, md int
	xBounds, sBounds Bounds
}

func newDualsUpdate(p *Problem, typ DualsUpdateType) *DualsUpdate {
	return &DualsUpdate{typ: typ, n: p.NVars, mc: p.NEq, md: p.NIneq, xBounds: p.XBounds, sBounds: p.DBounds}
}

// Apply advances itTrial.Yc, itTrial.Yd in place and clamps all four
// bound-multiplier vectors.
func (du *DualsUpdate) Apply(itCurr, itTrial, dir *Iterate, gradFTrial *mat.VecDense, JcTrial, JdTrial *mat.Dense, alphaDual, mu, kappaSigma float64) error {
	switch du.typ {
	case DualsUpdateLinear:
		itTrial.Yc.AddScaledVec(itCurr.Yc, alphaDual, dir.Yc)
		itTrial.Yd.AddScaledVec(itCurr.Yd, alphaDual, dir.Yd)
	case DualsUpdateLsq:
		if err := du.lsqUpdate(itTrial, gradFTrial, JcTrial, JdTrial); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown duals update type %q", ErrBadOption, du.typ)
	}

	clampBoundDuals(itTrial.Zl, itTrial.X, du.xBounds, 1, mu, kappaSigma)
	clampBoundDuals(itTrial.Zu, itTrial.X, du.xBounds, -1, mu, kappaSigma)
	clampBoundDuals(itTrial.Vl, itTrial.S, du.sBounds, 1, mu, kappaSigma)
	clampBoundDuals(itTrial.Vu, itTrial.S, du.sBounds, -1, mu, kappaSigma)
	return nil
}

// lsqUpdate resolves yc, yd at the trial primal point by a least-squares
// projection of the stationarity equation
//
//	Jc^T yc + Jd^T yd = gradF - zl + zu
//
// grounded on the stacked-Jacobian damped-Newton solve pattern in
// optimize/nlls/lmopt.go, here used for an ordinary linear least-squares
// system via mat.Dense's built-in QR-backed SolveVec.
func (du *DualsUpdate) lsqUpdate(itTrial *Iterate, gradF *mat.VecDense, Jc, Jd *mat.Dense) error {
	m := du.mc + du.md
	if m == 0 {
		return nil
	}
	b := mat.NewVecDense(du.n, nil)
	b.CopyVec(gradF)
	b.AddScaledVec(b, -1, itTrial.Zl)
	b.AddScaledVec(b, 1, itTrial.Zu)

	A := mat.NewDense(du.n, m, nil)
	if du.mc > 0 {
		var JcT mat.Dense
		JcT.CloneFrom(Jc.T())
		A.Slice(0, du.n, 0, du.mc).(*mat.Dense).Copy(&JcT)
	}
	if du.md > 0 {
		var JdT mat.Dense
		JdT.CloneFrom(Jd.T())
		A.Slice(0, du.n, du.mc, m).(*mat.Dense).Copy(&JdT)
	}

	y := mat.NewVecDense(m, nil)
	if err := y.SolveVec(A, b); err != nil {
		return fmt.Errorf("%w: lsq duals update: %v", ErrDualsUpdateFailed, err)
	}
	for i := 0; i < du.mc; i++ {
		itTrial.Yc.SetVec(i, y.AtVec(i))
	}
	for i := 0; i < du.md; i++ {
		itTrial.Yd.SetVec(i, y.AtVec(du.mc+i))
	}
	return nil
}

// clampBoundDuals enforces z in [mu/(kappaSigma*slack), kappaSigma*mu/slack]
// componentwise for whichever side (sign=+1 lower, sign=-1 upper) of b is
// finite, per spec.md §4.8.
func clampBoundDuals(z, v *mat.VecDense, b Bounds, sign float64, mu, kappaSigma float64) {
	for i := 0; i < z.Len(); i++ {
		bnd := b.Lower[i]
		if sign < 0 {
			bnd = b.Upper[i]
		}
		if isUnboundedSide(bnd, sign) {
			continue
		}
		slack := sign * (v.AtVec(i) - bnd)
		if slack <= 0 {
			continue
		}
		lo := mu / (kappaSigma * slack)
		hi := kappaSigma * mu / slack
		zi := z.AtVec(i)
		if zi < lo {
			zi = lo
		}
		if zi > hi {
			zi = hi
		}
		z.SetVec(i, zi)
	}
}

func isUnboundedSide(bnd, sign float64) bool {
	if sign > 0 {
		return math.IsInf(bnd, -1)
	}
	return math.IsInf(bnd, 1)
}

// computeInitialDualsEq solves the same least-squares stationarity system
// at the starting point to initialize yc, yd when DualsInitLsq is
// selected, per spec.md §4.2.
func computeInitialDualsEq(it *Iterate, gradF *mat.VecDense, Jc, Jd *mat.Dense, n, mc, md int) error {
	du := &DualsUpdate{n: n, mc: mc, md: md}
	return du.lsqUpdate(it, gradF, Jc, Jd)
}
