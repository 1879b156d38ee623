// Copyright ©2024 The Hiop Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hiop

import "math"

// filterPair is a single forbidden (theta, phi) point in the Filter.
type filterPair struct {
	theta, phi float64
}

// Filter is a monotone set of forbidden (theta, phi) pairs, per spec.md
// §4.4. A point (theta, phi) is forbidden whenever some stored pair
// dominates it in both coordinates.
type Filter struct {
	pairs []filterPair
}

func newFilter() *Filter {
	return &Filter{}
}

// contains reports whether (theta, phi) is forbidden: there exists a
// stored pair (theta_i, phi_i) with theta >= theta_i and phi >= phi_i.
func (f *Filter) contains(theta, phi float64) bool {
	for _, p := range f.pairs {
		if theta >= p.theta && phi >= p.phi {
			return true
		}
	}
	return false
}

// add inserts (theta, phi) offset by the sufficient-decrease margins, so
// points only weakly improving over an already-accepted pair are
// forbidden.
func (f *Filter) add(phi, theta float64) {
	f.pairs = append(f.pairs, filterPair{
		theta: theta * (1 - gammaTheta),
		phi:   phi - gammaPhi*theta,
	})
}

// reinitialize clears the filter and adds a single guard pair so that any
// theta >= thetaMax is rejected, per spec.md §3/§4.4.
func (f *Filter) reinitialize(thetaMax float64) {
	f.pairs = f.pairs[:0]
	f.pairs = append(f.pairs, filterPair{theta: thetaMax, phi: math.Inf(-1)})
}
