// Copyright ©2024 The Hiop Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hiop

import (
	"math"
	"testing"
)

func TestIpoptScaling(t *testing.T) {
	s := ipoptScaling{}
	sd, sc := s.scale(8, 24, 2, 2, 100)
	// sd = max(100, (24/4+8/2)/4)/100 = max(100,2.5)/100 = 1
	// sc = max(100, 24/4)/100 = 1
	if math.Abs(sd-1) > 1e-12 {
		t.Errorf("sd = %g, want 1", sd)
	}
	if math.Abs(sc-1) > 1e-12 {
		t.Errorf("sc = %g, want 1", sc)
	}
}

func TestIpoptScalingZeroN(t *testing.T) {
	s := ipoptScaling{}
	_, sc := s.scale(0, 0, 0, 2, 100)
	if sc != 0 {
		t.Errorf("sc = %g, want 0 when n==0", sc)
	}
}

func TestFiniteDimScaling(t *testing.T) {
	s := finiteDimScaling{}
	sd, sc := s.scale(400, 400, 2, 2, 100)
	// sd = max(100,(400+400)/4)/100 = max(100,200)/100 = 2
	// sc = max(100, 400/2)/100 = max(100,200)/100 = 2
	if math.Abs(sd-2) > 1e-12 {
		t.Errorf("sd = %g, want 2", sd)
	}
	if math.Abs(sc-2) > 1e-12 {
		t.Errorf("sc = %g, want 2", sc)
	}
}

func TestNewErrorScaling(t *testing.T) {
	if _, ok := newErrorScaling(false).(ipoptScaling); !ok {
		t.Errorf("newErrorScaling(false) did not return ipoptScaling")
	}
	if _, ok := newErrorScaling(true).(finiteDimScaling); !ok {
		t.Errorf("newErrorScaling(true) did not return finiteDimScaling")
	}
}

func TestOverallError(t *testing.T) {
	got := overallError(10, 3, 20, 2, 4)
	// max(10/2, max(3, 20/4)) = max(5, max(3,5)) = 5
	if got != 5 {
		t.Errorf("overallError = %g, want 5", got)
	}
}
