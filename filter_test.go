// Copyright ©2024 The Hiop Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hiop

import (
	"math"
	"testing"
)

func TestFilterReinitialize(t *testing.T) {
	f := newFilter()
	f.reinitialize(10)
	if !f.contains(10, 0) {
		t.Errorf("contains(10,0) = false, want true (thetaMax guard)")
	}
	if f.contains(9.999, -1e9) {
		t.Errorf("contains(9.999,-1e9) = true, want false")
	}
}

func TestFilterAddAndContains(t *testing.T) {
	f := newFilter()
	f.reinitialize(math.Inf(1))
	f.add(5.0, 1.0) // phi=5, theta=1

	if !f.contains(1.0, 5.0) {
		t.Errorf("contains(1.0,5.0) = false, want true (exact pair dominated)")
	}
	if !f.contains(2.0, 6.0) {
		t.Errorf("contains(2.0,6.0) = false, want true (strictly dominated)")
	}
	if f.contains(0.5, 1.0) {
		t.Errorf("contains(0.5,1.0) = true, want false (better theta and phi)")
	}
}

func TestFilterMargins(t *testing.T) {
	f := newFilter()
	f.add(10.0, 2.0)
	if len(f.pairs) != 1 {
		t.Fatalf("len(pairs) = %d, want 1", len(f.pairs))
	}
	p := f.pairs[0]
	wantTheta := 2.0 * (1 - gammaTheta)
	wantPhi := 10.0 - gammaPhi*2.0
	if p.theta != wantTheta || p.phi != wantPhi {
		t.Errorf("stored pair = %+v, want theta=%g phi=%g", p, wantTheta, wantPhi)
	}
}
