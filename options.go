// Copyright ©2024 The Hiop Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hiop

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// DualsUpdateType selects the policy used to advance the equality duals
// yc, yd at the end of every accepted iteration (spec.md §4.8).
type DualsUpdateType string

const (
	// DualsUpdateLsq solves a least-squares projection for yc, yd at the
	// trial point. This is the default.
	DualsUpdateLsq DualsUpdateType = "lsq"
	// DualsUpdateLinear advances yc, yd linearly along the search
	// direction by alpha_dual.
	DualsUpdateLinear DualsUpdateType = "linear"
)

// DualsInitialization selects how the equality duals are initialized by
// the starting procedure.
type DualsInitialization string

const (
	// DualsInitLsq initializes yc, yd via the least-squares updater.
	DualsInitLsq DualsInitialization = "lsq"
	// DualsInitZero initializes yc, yd to zero.
	DualsInitZero DualsInitialization = "zero"
)

// Fixed design constants from spec.md §4.1. These are not configuration
// options: changing them changes the algorithm, not the problem instance.
const (
	gammaTheta = 1e-5
	gammaPhi   = 1e-5
	sTheta     = 1.1
	sPhi       = 2.3
	delta      = 1.0
	etaPhi     = 1e-4
	kappaSigma = 1e10
)

// Options enumerates the configuration of Driver, per spec.md §4.1 and §6.
type Options struct {
	Mu0      float64 `yaml:"mu0"`
	KappaMu  float64 `yaml:"kappa_mu"`
	ThetaMu  float64 `yaml:"theta_mu"`
	TauMin   float64 `yaml:"tau_min"`
	Tolerance float64 `yaml:"tolerance"`
	KappaEps float64 `yaml:"kappa_eps"`

	Kappa1 float64 `yaml:"kappa1"`
	Kappa2 float64 `yaml:"kappa2"`
	SMax   float64 `yaml:"smax"`

	MaxIter               int     `yaml:"max_iter"`
	AcceptableIterations  int     `yaml:"acceptable_iterations"`
	AcceptableTolerance   float64 `yaml:"acceptable_tolerance"`

	DualsUpdateType     DualsUpdateType     `yaml:"duals_update_type"`
	DualsInitialization DualsInitialization `yaml:"duals_initialization"`

	SecantMemoryLen int `yaml:"secant_memory_len"`

	// FiniteDimScaling selects the finite-dimensional error-scaling
	// variant of spec.md §4.6 in place of the default Ipopt-style one.
	FiniteDimScaling bool `yaml:"finite_dim_scaling"`

	// Logger receives one structured record per outer iteration. The
	// zero value (a disabled logger) silences all output.
	Logger zerolog.Logger `yaml:"-"`
}

// DefaultOptions returns the Options used by the original HiOp solver
// defaults.
func DefaultOptions() *Options {
	return &Options{
		Mu0:                  1.0,
		KappaMu:              0.2,
		ThetaMu:              1.5,
		TauMin:               0.99,
		Tolerance:            1e-8,
		KappaEps:             10,
		Kappa1:               1e-2,
		Kappa2:               1e-2,
		SMax:                 100,
		MaxIter:              3000,
		AcceptableIterations: 10,
		AcceptableTolerance:  1e-6,
		DualsUpdateType:      DualsUpdateLsq,
		DualsInitialization:  DualsInitLsq,
		SecantMemoryLen:      6,
		Logger:               zerolog.Nop(),
	}
}

// Validate checks that every numeric option lies in its admissible range
// and every enumerated option holds a recognized value.
func (o *Options) Validate() error {
	switch {
	case o.Mu0 <= 0:
		return fmt.Errorf("%w: mu0 must be positive, got %g", ErrBadOption, o.Mu0)
	case o.KappaMu <= 0 || o.KappaMu >= 1:
		return fmt.Errorf("%w: kappa_mu must be in (0,1), got %g", ErrBadOption, o.KappaMu)
	case o.ThetaMu <= 1 || o.ThetaMu >= 2:
		return fmt.Errorf("%w: theta_mu must be in (1,2), got %g", ErrBadOption, o.ThetaMu)
	case o.TauMin <= 0 || o.TauMin >= 1:
		return fmt.Errorf("%w: tau_min must be in (0,1), got %g", ErrBadOption, o.TauMin)
	case o.Tolerance <= 0:
		return fmt.Errorf("%w: tolerance must be positive, got %g", ErrBadOption, o.Tolerance)
	case o.KappaEps <= 0:
		return fmt.Errorf("%w: kappa_eps must be positive, got %g", ErrBadOption, o.KappaEps)
	case o.Kappa1 <= 0 || o.Kappa2 <= 0:
		return fmt.Errorf("%w: kappa1 and kappa2 must be positive", ErrBadOption)
	case o.SMax <= 0:
		return fmt.Errorf("%w: smax must be positive, got %g", ErrBadOption, o.SMax)
	case o.MaxIter < 0:
		return fmt.Errorf("%w: max_iter must be non-negative, got %d", ErrBadOption, o.MaxIter)
	case o.AcceptableIterations < 0:
		return fmt.Errorf("%w: acceptable_iterations must be non-negative", ErrBadOption)
	case o.AcceptableTolerance <= 0:
		return fmt.Errorf("%w: acceptable_tolerance must be positive", ErrBadOption)
	case o.SecantMemoryLen <= 0:
		return fmt.Errorf("%w: secant_memory_len must be positive", ErrBadOption)
	}
	switch o.DualsUpdateType {
	case DualsUpdateLsq, DualsUpdateLinear:
	default:
		return fmt.Errorf("%w: unrecognized duals_update_type %q", ErrBadOption, o.DualsUpdateType)
	}
	switch o.DualsInitialization {
	case DualsInitLsq, DualsInitZero:
	default:
		return fmt.Errorf("%w: unrecognized duals_initialization %q", ErrBadOption, o.DualsInitialization)
	}
	return nil
}

// LoadOptions reads YAML-encoded Options from path, starting from
// DefaultOptions so a config file only needs to specify the overrides it
// cares about.
func LoadOptions(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("hiop: reading options file: %w", err)
	}
	opts := DefaultOptions()
	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, fmt.Errorf("hiop: parsing options file %s: %w", path, err)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}
