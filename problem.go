// Copyright ©2024 The Hiop Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hiop

import "gonum.org/v1/gonum/mat"

// Bounds holds a lower and upper bound for a vector of variables or
// constraints. Use math.Inf(-1)/math.Inf(1) for a missing (one-sided or
// absent) bound, per spec.md §3's "unbounded variables" boundary case.
type Bounds struct {
	Lower []float64
	Upper []float64
}

// Problem is the user-facing NLP definition that Driver treats as a
// borrowed external collaborator (spec.md §6). Implementations must be
// either single-threaded or internally synchronized: Driver never calls
// Problem methods concurrently.
//
// newX is true the first time a method is called for a given x within one
// evaluation round, and false on subsequent calls for the same x, so an
// implementation may cache x-dependent intermediates across the round.
type Problem struct {
	// NVars is the number of primal variables (n).
	NVars int
	// NEq is the number of equality constraints (m_c).
	NEq int
	// NIneq is the number of inequality constraints (m_d).
	NIneq int

	// XBounds are the two-sided bounds on x (length NVars each).
	XBounds Bounds
	// DBounds are the two-sided bounds on d(x) (length NIneq each).
	DBounds Bounds

	// StartingPoint fills x0 with a starting point and reports success.
	StartingPoint func(x0 []float64) bool

	// EvalF evaluates the objective at x.
	EvalF func(x []float64, newX bool) (f float64, ok bool)
	// EvalGradF evaluates the gradient of the objective at x into out.
	EvalGradF func(x []float64, newX bool, out []float64) bool
	// EvalC evaluates the equality constraints at x into out.
	EvalC func(x []float64, newX bool, out []float64) bool
	// EvalD evaluates the inequality constraints at x into out.
	EvalD func(x []float64, newX bool, out []float64) bool
	// EvalJacC evaluates the Jacobian of c at x into out.
	EvalJacC func(x []float64, newX bool, out *mat.Dense) bool
	// EvalJacD evaluates the Jacobian of d at x into out.
	EvalJacD func(x []float64, newX bool, out *mat.Dense) bool

	// IterateCallback is invoked once per outer iteration; returning
	// false requests that the solve stop with UserStopped. May be nil.
	IterateCallback func(info IterationInfo) bool
	// SolutionCallback is invoked once when Run's outer loop ends with a
	// terminal status (including UserStopped from IterateCallback). It is
	// not invoked when Run returns early because ctx was cancelled or an
	// evaluation, KKT or duals-update step failed. May be nil.
	SolutionCallback func(status Status, x, zl, zu, c, d, yc, yd []float64, f float64)
}

// IterationInfo is the argument passed to Problem.IterateCallback,
// gathering the fields named in spec.md §6.
type IterationInfo struct {
	Iter                  int
	F                     float64
	X, Zl, Zu             []float64
	C, D                  []float64
	Yc, Yd                []float64
	ErrFeas, ErrOptim     float64
	Mu                    float64
	AlphaDual, AlphaPrimal float64
	LSTrials              int
}

func checkBool(ok bool) error {
	if !ok {
		return ErrEvalFailed
	}
	return nil
}
