// Copyright ©2024 The Hiop Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hiop

import "errors"

// Sentinel errors for the configuration/startup and evaluator-failure
// categories of the error taxonomy in spec.md §7. Wrap these with
// fmt.Errorf("%w: ...") to attach context; callers can still match with
// errors.Is.
var (
	// ErrBadStartingPoint is returned by the starting procedure when the
	// Problem cannot supply a usable starting point.
	ErrBadStartingPoint = errors.New("hiop: invalid starting point")

	// ErrBadOption is returned when an Options value is out of its valid
	// range or an enumerated option holds an unrecognized value.
	ErrBadOption = errors.New("hiop: invalid option")

	// ErrEvalFailed is returned when a Problem evaluation (f, grad, c, d,
	// Jac_c, Jac_d) reports failure.
	ErrEvalFailed = errors.New("hiop: problem evaluation failed")

	// ErrKKTSingular is returned when the KKT system cannot be solved: the
	// LU factorization (a fallback after a failed Cholesky when there are
	// no equality constraints, the only factorization otherwise) is
	// singular or too ill-conditioned.
	ErrKKTSingular = errors.New("hiop: KKT system is numerically singular")

	// ErrDualsUpdateFailed is returned when a DualsUpdate policy cannot
	// solve its internal linear system.
	ErrDualsUpdateFailed = errors.New("hiop: equality-duals update failed")
)
