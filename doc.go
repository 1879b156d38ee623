// Copyright ©2024 The Hiop Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hiop implements a primal-dual interior-point method with a
// filter line-search globalization for large-scale nonlinear programs
//
//	min  f(x)
//	s.t. c(x)  = 0
//	     dl <= d(x) <= du
//	     xl <= x    <= xu
//
// The Hessian of the Lagrangian is approximated with a limited-memory
// quasi-Newton update (QuasiNewtonHessian), so the KKT linear system solved
// at every iteration (KKTSolver) has low-rank structure.
//
// The outer loop (FilterIpmDriver) follows Wächter & Biegler's filter line-search
// algorithm: a monotonically decreasing barrier parameter, a backtracking
// line search that accepts steps either through a sufficient-decrease
// filter test or, close to a solution, through an Armijo condition guarded
// by a switching test, and least-squares or linearized-Newton updates of
// the equality multipliers.
package hiop
