// Copyright ©2024 The Hiop Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hiop

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultOptionsValidates(t *testing.T) {
	if err := DefaultOptions().Validate(); err != nil {
		t.Errorf("DefaultOptions().Validate() = %v, want nil", err)
	}
}

func TestValidateRejectsBadMu0(t *testing.T) {
	o := DefaultOptions()
	o.Mu0 = -1
	if err := o.Validate(); !errors.Is(err, ErrBadOption) {
		t.Errorf("Validate() = %v, want ErrBadOption", err)
	}
}

func TestValidateRejectsBadDualsUpdateType(t *testing.T) {
	o := DefaultOptions()
	o.DualsUpdateType = "bogus"
	if err := o.Validate(); !errors.Is(err, ErrBadOption) {
		t.Errorf("Validate() = %v, want ErrBadOption", err)
	}
}

func TestValidateRejectsBadKappaMu(t *testing.T) {
	o := DefaultOptions()
	o.KappaMu = 1.5
	if err := o.Validate(); !errors.Is(err, ErrBadOption) {
		t.Errorf("Validate() = %v, want ErrBadOption", err)
	}
}

func TestLoadOptionsOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "opts.yaml")
	content := "tolerance: 1e-10\nmax_iter: 500\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	o, err := LoadOptions(path)
	if err != nil {
		t.Fatalf("LoadOptions: %v", err)
	}
	if o.Tolerance != 1e-10 {
		t.Errorf("Tolerance = %g, want 1e-10", o.Tolerance)
	}
	if o.MaxIter != 500 {
		t.Errorf("MaxIter = %d, want 500", o.MaxIter)
	}
	// unspecified fields fall back to defaults
	if o.KappaMu != DefaultOptions().KappaMu {
		t.Errorf("KappaMu = %g, want default %g", o.KappaMu, DefaultOptions().KappaMu)
	}
}

func TestLoadOptionsMissingFile(t *testing.T) {
	if _, err := LoadOptions(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadOptions(missing file) = nil error, want non-nil")
	}
}

func TestLoadOptionsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("mu0: -5\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadOptions(path); !errors.Is(err, ErrBadOption) {
		t.Errorf("LoadOptions = %v, want ErrBadOption", err)
	}
}
