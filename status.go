// Copyright ©2024 The Hiop Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hiop

import "fmt"

// Status represents the termination status of a solver run, or the
// internal state of the solve-not-yet-called state machine described in
// spec.md §4.1.
type Status int

const (
	// IncompleteInit is the status before NewDriver has finished wiring
	// all of its collaborators.
	IncompleteInit Status = iota
	// SolveNotCalled is the status after a successful starting procedure
	// but before Run has been invoked.
	SolveNotCalled
	// Pending is the status while Run's outer loop is executing.
	Pending
	// Success indicates the NLP error is within tolerance.
	Success
	// AcceptableLevel indicates the NLP error stayed within the looser
	// acceptable tolerance for the configured number of consecutive
	// iterations.
	AcceptableLevel
	// MaxIterExceeded indicates the iteration cap was reached.
	MaxIterExceeded
	// StepTooSmall indicates the line search could not find an acceptable
	// step of length at least 1e-16.
	StepTooSmall
	// UserStopped indicates the iterate callback returned false.
	UserStopped
	// Failure is a catch-all for fatal evaluator, KKT, or Hessian errors.
	Failure
)

// Terminal reports whether s is one of the sticky terminal states of the
// driver's state machine.
func (s Status) Terminal() bool {
	switch s {
	case Success, AcceptableLevel, MaxIterExceeded, StepTooSmall, UserStopped, Failure:
		return true
	default:
		return false
	}
}

// Err returns nil for Success and AcceptableLevel, and a non-nil error for
// every other status, so that callers can treat Driver.Run uniformly while
// still being able to inspect the specific Status returned alongside it.
func (s Status) Err() error {
	switch s {
	case Success, AcceptableLevel:
		return nil
	default:
		return fmt.Errorf("hiop: solve did not succeed: %v", s)
	}
}

func (s Status) String() string {
	str, ok := statusNames[s]
	if !ok {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return str
}

var statusNames = map[Status]string{
	IncompleteInit:  "IncompleteInit",
	SolveNotCalled:  "SolveNotCalled",
	Pending:         "Pending",
	Success:         "Success",
	AcceptableLevel: "AcceptableLevel",
	MaxIterExceeded: "MaxIterExceeded",
	StepTooSmall:    "StepTooSmall",
	UserStopped:     "UserStopped",
	Failure:         "Failure",
}
