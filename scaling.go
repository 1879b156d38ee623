// Copyright ©2024 The Hiop Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hiop

import "math"

// errorScaling computes the sd, sc scale factors used to fold the
// dual-variable magnitude into the optim and complementarity sub-norms
// before taking their overall max, per spec.md §4.7. Two implementations
// are provided: the default Ipopt-style scaling (infinity-norm based,
// divides by 4 and 2) and a one-norm finite-dimensional variant, selected
// by Options.FiniteDimScaling, mirroring the hiopAlgFilterIPM vs.
// hiopAlgFilterFiniteDimIPM split in the original C++ driver.
type errorScaling interface {
	scale(nrmDualEqu, nrmDualBou float64, n, m int, sMax float64) (sd, sc float64)
}

type ipoptScaling struct{}

func (ipoptScaling) scale(nrmDualEqu, nrmDualBou float64, n, m int, sMax float64) (sd, sc float64) {
	sd = math.Max(sMax, (nrmDualBou/4+nrmDualEqu/2)/float64(n+m)) / sMax
	if n == 0 {
		sc = 0
	} else {
		sc = math.Max(sMax, nrmDualBou/4) / sMax
	}
	return sd, sc
}

type finiteDimScaling struct{}

func (finiteDimScaling) scale(nrmDualEqu, nrmDualBou float64, n, m int, sMax float64) (sd, sc float64) {
	sd = math.Max(sMax, (nrmDualBou+nrmDualEqu)/float64(n+m)) / sMax
	if n == 0 {
		sc = 0
	} else {
		sc = math.Max(sMax, nrmDualBou/float64(n)) / sMax
	}
	return sd, sc
}

func newErrorScaling(finiteDim bool) errorScaling {
	if finiteDim {
		return finiteDimScaling{}
	}
	return ipoptScaling{}
}

// overallError folds (optim, feas, complem) into the single scaled
// overall error used by checkTermination, per spec.md §4.7:
//
//	overall = max(optim/sd, feas, complem/sc)
func overallError(optim, feas, complem, sd, sc float64) float64 {
	return math.Max(optim/sd, math.Max(feas, complem/sc))
}
