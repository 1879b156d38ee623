// Copyright ©2024 The Hiop Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hiop

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// KKTSolver assembles and factors the condensed primal-dual KKT system at
// each iteration and recovers the full-space Newton direction from it, per
// spec.md §4.6. The condensed system eliminates the inequality slacks s and
// all four bound multipliers zl, zu, vl, vu analytically, leaving a
// symmetric (n+neq)x(n+neq) system in (dx, dyc); this mirrors the "dense
// condensed" linear-algebra strategy documented for
// optimize/convex/lp/affine_scaling.go's interior-point solve, generalized
// from an LP's diagonal scaling to a general Hessian W plus a low-rank
// Jd^T*Sigma_s*Jd correction from the inequality block.
type KKTSolver struct {
	n, mc, md int
	xBounds, sBounds Bounds

	mu float64

	sigmaL, sigmaU, sigmaX []float64 // length n
	corrL, corrU           []float64 // length n: z - mu/margin
	sigmaSl, sigmaSu, sigmaS []float64 // length md
	corrSl, corrSu           []float64 // length md: v - mu/margin

	rxBar *mat.VecDense // length n
	rsBar *mat.VecDense // length md

	Jc, Jd *mat.Dense // cached references, not owned

	M *mat.SymDense // length n, condensed Hessian block
}

func newKKTSolver(p *Problem) *KKTSolver {
	return &KKTSolver{
		n: p.NVars, mc: p.NEq, md: p.NIneq,
		xBounds: p.XBounds, sBounds: p.DBounds,
		sigmaL: make([]float64, p.NVars), sigmaU: make([]float64, p.NVars), sigmaX: make([]float64, p.NVars),
		corrL: make([]float64, p.NVars), corrU: make([]float64, p.NVars),
		sigmaSl: make([]float64, p.NIneq), sigmaSu: make([]float64, p.NIneq), sigmaS: make([]float64, p.NIneq),
		corrSl: make([]float64, p.NIneq), corrSu: make([]float64, p.NIneq),
		rxBar: mat.NewVecDense(p.NVars, nil),
		rsBar: mat.NewVecDense(p.NIneq, nil),
	}
}

// Update forms Sigma_x, Sigma_s and the barrier-reduced stationarity
// vectors from the current iterate and caches the Jacobians, Hessian
// approximation and barrier parameter needed by ComputeDirections.
func (k *KKTSolver) Update(it *Iterate, logbar *LogBarrierProblem, Jc, Jd *mat.Dense, hess *QuasiNewtonHessian, mu float64) error {
	k.mu = mu
	k.Jc, k.Jd = Jc, Jd

	for i := 0; i < k.n; i++ {
		k.sigmaL[i], k.corrL[i] = 0, 0
		if lb := k.xBounds.Lower[i]; !math.IsInf(lb, -1) {
			margin := it.X.AtVec(i) - lb
			k.sigmaL[i] = it.Zl.AtVec(i) / margin
			k.corrL[i] = it.Zl.AtVec(i) - mu/margin
		}
		k.sigmaU[i], k.corrU[i] = 0, 0
		if ub := k.xBounds.Upper[i]; !math.IsInf(ub, 1) {
			margin := ub - it.X.AtVec(i)
			k.sigmaU[i] = it.Zu.AtVec(i) / margin
			k.corrU[i] = it.Zu.AtVec(i) - mu/margin
		}
		k.sigmaX[i] = k.sigmaL[i] + k.sigmaU[i]
	}
	for i := 0; i < k.md; i++ {
		k.sigmaSl[i], k.corrSl[i] = 0, 0
		if lb := k.sBounds.Lower[i]; !math.IsInf(lb, -1) {
			margin := it.S.AtVec(i) - lb
			k.sigmaSl[i] = it.Vl.AtVec(i) / margin
			k.corrSl[i] = it.Vl.AtVec(i) - mu/margin
		}
		k.sigmaSu[i], k.corrSu[i] = 0, 0
		if ub := k.sBounds.Upper[i]; !math.IsInf(ub, 1) {
			margin := ub - it.S.AtVec(i)
			k.sigmaSu[i] = it.Vu.AtVec(i) / margin
			k.corrSu[i] = it.Vu.AtVec(i) - mu/margin
		}
		k.sigmaS[i] = k.sigmaSl[i] + k.sigmaSu[i]
	}

	// rxBar = grad(phi)_x - Jc^T yc - Jd^T yd
	k.rxBar.CopyVec(logbar.gradPhiX)
	if k.mc > 0 {
		k.rxBar.AddScaledVec(k.rxBar, -1, colMatVec(Jc, it.Yc))
	}
	if k.md > 0 {
		k.rxBar.AddScaledVec(k.rxBar, -1, colMatVec(Jd, it.Yd))
	}
	// rsBar = grad(phi)_s + yd
	if k.md > 0 {
		k.rsBar.AddVec(logbar.gradPhiS, it.Yd)
	}

	// M = W + Sigma_x + Jd^T diag(Sigma_s) Jd
	M := mat.NewSymDense(k.n, nil)
	W := hess.Dense()
	for i := 0; i < k.n; i++ {
		for j := i; j < k.n; j++ {
			M.SetSym(i, j, W.At(i, j))
		}
		M.SetSym(i, i, M.At(i, i)+k.sigmaX[i])
	}
	if k.md > 0 {
		var scaledJd mat.Dense
		scaledJd.CloneFrom(Jd)
		for i := 0; i < k.md; i++ {
			row := scaledJd.RawRowView(i)
			for j := range row {
				row[j] *= k.sigmaS[i]
			}
		}
		var corr mat.Dense
		corr.Mul(Jd.T(), &scaledJd)
		for i := 0; i < k.n; i++ {
			for j := i; j < k.n; j++ {
				M.SetSym(i, j, M.At(i, j)+corr.At(i, j))
			}
		}
	}
	k.M = M
	return nil
}

// ComputeDirections solves the condensed system for the full Newton
// direction dir, using the cached feasibility residuals in resid for c(x)
// and d(x)-s. When neq=0 the system is simply M: it tries a Cholesky
// factorization of M and falls back to LU if that fails. When neq>0 the
// bordered (indefinite) system is solved by LU directly, without a
// Cholesky attempt. It returns ErrKKTSingular if the solve fails.
func (k *KKTSolver) ComputeDirections(resid *Residual, dir *Iterate) error {
	n, mc, md := k.n, k.mc, k.md

	// RHS_x = -rxBar - Jd^T rsBar - Jd^T diag(Sigma_s) r4
	rhsX := mat.NewVecDense(n, nil)
	rhsX.ScaleVec(-1, k.rxBar)
	if md > 0 {
		sr4 := mat.NewVecDense(md, nil)
		for i := 0; i < md; i++ {
			sr4.SetVec(i, k.sigmaS[i]*resid.feasD.AtVec(i))
		}
		combined := mat.NewVecDense(md, nil)
		combined.AddVec(k.rsBar, sr4)
		rhsX.AddScaledVec(rhsX, -1, colMatVec(k.Jd, combined))
	}

	dx := mat.NewVecDense(n, nil)
	dyc := mat.NewVecDense(mc, nil)

	if mc == 0 {
		var chol mat.Cholesky
		if ok := chol.Factorize(k.M); ok {
			if err := chol.SolveVecTo(dx, rhsX); err != nil {
				return fmt.Errorf("%w: cholesky solve: %v", ErrKKTSingular, err)
			}
		} else {
			if err := solveDenseLU(dx, symToDense(k.M), rhsX); err != nil {
				return fmt.Errorf("%w: %v", ErrKKTSingular, err)
			}
		}
	} else {
		ntot := n + mc
		K := mat.NewDense(ntot, ntot, nil)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				K.Set(i, j, k.M.At(i, j))
			}
		}
		for i := 0; i < mc; i++ {
			for j := 0; j < n; j++ {
				v := k.Jc.At(i, j)
				K.Set(n+i, j, v)
				K.Set(j, n+i, v)
			}
		}
		rhs := mat.NewVecDense(ntot, nil)
		for i := 0; i < n; i++ {
			rhs.SetVec(i, rhsX.AtVec(i))
		}
		for i := 0; i < mc; i++ {
			rhs.SetVec(n+i, -resid.feasC.AtVec(i))
		}
		sol := mat.NewVecDense(ntot, nil)
		if err := solveDenseLU(sol, K, rhs); err != nil {
			return fmt.Errorf("%w: %v", ErrKKTSingular, err)
		}
		for i := 0; i < n; i++ {
			dx.SetVec(i, sol.AtVec(i))
		}
		for i := 0; i < mc; i++ {
			dyc.SetVec(i, sol.AtVec(n+i))
		}
	}

	dir.X.CopyVec(dx)
	dir.Yc.CopyVec(dyc)

	if md > 0 {
		ds := mat.NewVecDense(md, nil)
		ds.MulVec(k.Jd, dx)
		ds.AddVec(ds, resid.feasD)
		dir.S.CopyVec(ds)

		dyd := mat.NewVecDense(md, nil)
		for i := 0; i < md; i++ {
			dyd.SetVec(i, -k.rsBar.AtVec(i)-k.sigmaS[i]*ds.AtVec(i))
		}
		dir.Yd.CopyVec(dyd)

		for i := 0; i < md; i++ {
			dir.Vl.SetVec(i, -k.corrSl[i]-k.sigmaSl[i]*ds.AtVec(i))
			dir.Vu.SetVec(i, -k.corrSu[i]+k.sigmaSu[i]*ds.AtVec(i))
		}
	}

	for i := 0; i < n; i++ {
		dir.Zl.SetVec(i, -k.corrL[i]-k.sigmaL[i]*dx.AtVec(i))
		dir.Zu.SetVec(i, -k.corrU[i]+k.sigmaU[i]*dx.AtVec(i))
	}

	return nil
}

func symToDense(s *mat.SymDense) *mat.Dense {
	n := s.SymmetricDim()
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			d.Set(i, j, s.At(i, j))
		}
	}
	return d
}

func solveDenseLU(dst *mat.VecDense, A *mat.Dense, b *mat.VecDense) error {
	var lu mat.LU
	lu.Factorize(A)
	if c := lu.Cond(); math.IsInf(c, 1) || c > 1e16 {
		return fmt.Errorf("condition number %g exceeds tolerance", c)
	}
	return lu.SolveVecTo(dst, false, b)
}
