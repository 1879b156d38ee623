// Copyright ©2024 The Hiop Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hiop

import "gonum.org/v1/gonum/mat"

// secantPair is one (s, y) curvature pair used by the limited-memory
// damped-BFGS update.
type secantPair struct {
	s, y *mat.VecDense
}

// QuasiNewtonHessian is a limited-memory damped-BFGS approximation to the
// Hessian of the Lagrangian, stored as an explicit low-rank-plus-diagonal
// *mat.SymDense rebuilt from a bounded ring buffer of secant pairs, per
// spec.md §2/§6 and the "secant_memory_len" option. Grounded on the
// damped-Newton / curvature-pair bookkeeping in
// optimize/nlls/lmopt.go's Levenberg-Marquardt update, generalized from a
// scalar damping factor to Powell's vector damping for BFGS.
type QuasiNewtonHessian struct {
	n         int
	memoryLen int

	pairs []secantPair // ring buffer, oldest first, length <= memoryLen

	prevX     *mat.VecDense
	prevGradL *mat.VecDense // grad of Lagrangian at prevX (gradF - Jc^T yc - Jd^T yd)
	haveArgPrev bool

	dense *mat.SymDense // cached explicit Hessian approximation
	dirty bool
}

// newQuasiNewtonHessian allocates a QuasiNewtonHessian for a problem of
// dimension n, keeping at most memoryLen secant pairs.
func newQuasiNewtonHessian(n, memoryLen int) *QuasiNewtonHessian {
	return &QuasiNewtonHessian{
		n:         n,
		memoryLen: memoryLen,
		dense:     identitySym(n),
		dirty:     false,
	}
}

func identitySym(n int) *mat.SymDense {
	m := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		m.SetSym(i, i, 1)
	}
	return m
}

// Update forms the secant pair from the change in primal point and
// Lagrangian gradient since the last call, damps it per Powell's
// procedure when s^T y is too small to preserve positive definiteness,
// and folds it into the ring buffer.
func (h *QuasiNewtonHessian) Update(it *Iterate, gradF *mat.VecDense, Jc, Jd *mat.Dense) {
	gradL := mat.NewVecDense(h.n, nil)
	gradL.CopyVec(gradF)
	if it.neq > 0 {
		gradL.AddScaledVec(gradL, -1, colMatVec(Jc, it.Yc))
	}
	if it.nineq > 0 {
		gradL.AddScaledVec(gradL, -1, colMatVec(Jd, it.Yd))
	}

	if !h.haveArgPrev {
		h.prevX = mat.VecDenseCopyOf(it.X)
		h.prevGradL = gradL
		h.haveArgPrev = true
		return
	}

	s := mat.NewVecDense(h.n, nil)
	s.SubVec(it.X, h.prevX)
	y := mat.NewVecDense(h.n, nil)
	y.SubVec(gradL, h.prevGradL)

	h.prevX = mat.VecDenseCopyOf(it.X)
	h.prevGradL = gradL

	sty := mat.Dot(s, y)
	sts := mat.Dot(s, s)
	if sts == 0 {
		return
	}

	if sty < 0.2*h.bHessianQuadratic(s) {
		// Powell damping: replace y with theta*y + (1-theta)*(B_k s) so
		// that the damped curvature condition s^T y_damped >= 0.2 s^T B s
		// holds, preserving positive definiteness of the BFGS update.
		Bs := h.applyDense(s)
		sBs := mat.Dot(s, Bs)
		theta := 1.0
		if sBs-sty != 0 {
			theta = 0.8 * sBs / (sBs - sty)
		}
		yDamped := mat.NewVecDense(h.n, nil)
		yDamped.ScaleVec(1-theta, Bs)
		yDamped.AddScaledVec(yDamped, theta, y)
		y = yDamped
		sty = mat.Dot(s, y)
	}
	if sty <= 1e-12 {
		// Curvature pair is degenerate even after damping; skip it rather
		// than corrupt positive definiteness.
		return
	}

	if len(h.pairs) == h.memoryLen {
		h.pairs = h.pairs[1:]
	}
	h.pairs = append(h.pairs, secantPair{s: s, y: y})
	h.dirty = true
}

// bHessianQuadratic returns s^T B s using the currently cached dense
// matrix (used only to evaluate Powell's damping test).
func (h *QuasiNewtonHessian) bHessianQuadratic(s *mat.VecDense) float64 {
	Bs := h.applyDense(s)
	return mat.Dot(s, Bs)
}

func (h *QuasiNewtonHessian) applyDense(v *mat.VecDense) *mat.VecDense {
	out := mat.NewVecDense(h.n, nil)
	out.MulVec(h.Dense(), v)
	return out
}

// Dense rebuilds (if stale) and returns the explicit Hessian
// approximation by replaying the stored secant pairs through the dense
// BFGS rank-2 update starting from a scaled identity, the standard
// compact representation of limited-memory BFGS.
func (h *QuasiNewtonHessian) Dense() *mat.SymDense {
	if !h.dirty && h.dense != nil {
		return h.dense
	}
	gamma := 1.0
	if n := len(h.pairs); n > 0 {
		last := h.pairs[n-1]
		yty := mat.Dot(last.y, last.y)
		sty := mat.Dot(last.s, last.y)
		if yty > 0 {
			gamma = sty / yty
		}
	}
	B := identitySym(h.n)
	for i := 0; i < h.n; i++ {
		B.SetSym(i, i, 1/gamma)
	}
	for _, p := range h.pairs {
		bfgsUpdate(B, p.s, p.y)
	}
	h.dense = B
	h.dirty = false
	return B
}

// bfgsUpdate applies the dense BFGS rank-2 update
//
//	B <- B - (B s s^T B)/(s^T B s) + (y y^T)/(y^T s)
//
// to B in place.
func bfgsUpdate(B *mat.SymDense, s, y *mat.VecDense) {
	n := s.Len()
	Bs := mat.NewVecDense(n, nil)
	Bs.MulVec(B, s)
	sBs := mat.Dot(s, Bs)
	sty := mat.Dot(s, y)
	if sBs == 0 || sty == 0 {
		return
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := B.At(i, j) - Bs.AtVec(i)*Bs.AtVec(j)/sBs + y.AtVec(i)*y.AtVec(j)/sty
			B.SetSym(i, j, v)
		}
	}
}

// Apply returns the Hessian-vector product B*v using the cached explicit
// matrix.
func (h *QuasiNewtonHessian) Apply(v *mat.VecDense) *mat.VecDense {
	return h.applyDense(v)
}
