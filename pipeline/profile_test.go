// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import "testing"

func TestDefaultProfileBackgroundLabelSkipped(t *testing.T) {
	p := NewDefaultProfile()
	if _, ok := p.GetMaterial(0); ok {
		t.Error("expected label 0 to be skipped")
	}
}

func TestDefaultProfileOverrideTakesPrecedence(t *testing.T) {
	p := NewDefaultProfile()
	p.Overrides[5] = MaterialSpec{E: 123, Nu: 0.1, Rho: 1, Method: MethodPD}
	spec, ok := p.GetMaterial(5)
	if !ok {
		t.Fatal("expected label 5 to resolve")
	}
	if spec.Method != MethodPD || spec.E != 123 {
		t.Errorf("expected override to win, got %+v", spec)
	}
}

func TestDefaultProfileFallsBackToConstants(t *testing.T) {
	p := NewDefaultProfile()
	spec, ok := p.GetMaterial(7)
	if !ok {
		t.Fatal("expected label 7 to resolve")
	}
	if spec.Method != MethodFEM || spec.E != p.E {
		t.Errorf("expected default constants, got %+v", spec)
	}
}
