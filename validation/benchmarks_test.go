// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validation

import (
	"math"
	"testing"
)

func TestConstantStressPatchDisplacement(t *testing.T) {
	p := ConstantStressPatch{QnH: 2.0, QnV: 0.0, E: 1000.0, Nu: 0.3}
	ux, uy := p.Displacement(1.0, []float64{1, 1})
	sz := 0.3 * 2.0 // plane strain: sigma_z = nu*(sx+sy)
	wantEx := (2.0 - 0.3*sz) / 1000.0
	if math.Abs(ux-wantEx) > 1e-12 {
		t.Errorf("ux = %v, want %v", ux, wantEx)
	}
	wantEy := (0 - 0.3*(sz+2.0)) / 1000.0
	if math.Abs(uy-wantEy) > 1e-12 {
		t.Errorf("uy = %v, want %v", uy, wantEy)
	}
}

func TestConstantStressPatchCheckStress(t *testing.T) {
	p := ConstantStressPatch{QnH: 2.0, QnV: -1.0, E: 1000.0, Nu: 0.25}
	sx, sy, sz, _, _ := p.Stress(1.0)
	sigma := []float64{sx, sy, sz, 0}
	if maxErr, ok := p.CheckStress(1.0, sigma, 1e-9); !ok {
		t.Errorf("expected exact match, maxErr=%v", maxErr)
	}
	sigma[0] += 10.0
	if _, ok := p.CheckStress(1.0, sigma, 1e-9); ok {
		t.Error("expected perturbed stress to fail the check")
	}
}

func TestThickCylinderYieldAndLimitPressure(t *testing.T) {
	c := NewThickCylinder(100, 200, 210000.0, 0.3, 240.0)
	py := c.YieldPressure()
	pl := c.LimitPressure()
	if py <= 0 || pl <= py {
		t.Fatalf("expected 0 < Py < Plim, got Py=%v Plim=%v", py, pl)
	}
}

func TestThickCylinderPlasticRadiusAtYieldIsInnerRadius(t *testing.T) {
	c := NewThickCylinder(100, 200, 210000.0, 0.3, 240.0)
	py := c.YieldPressure()
	cr := c.PlasticRadius(py)
	if math.Abs(cr-c.A) > 1e-3 {
		t.Errorf("plastic radius at first yield = %v, want ~= A (%v)", cr, c.A)
	}
}

func TestThickCylinderStressContinuousAtPlasticBoundary(t *testing.T) {
	c := NewThickCylinder(100, 200, 210000.0, 0.3, 240.0)
	cr := 150.0
	srElastic, stElastic := c.Stress(cr+1e-9, cr)
	srPlastic, stPlastic := c.Stress(cr-1e-9, cr)
	if math.Abs(srElastic-srPlastic) > 1e-3 {
		t.Errorf("radial stress discontinuous at boundary: %v vs %v", srElastic, srPlastic)
	}
	if math.Abs(stElastic-stPlastic) > 1e-3 {
		t.Errorf("hoop stress discontinuous at boundary: %v vs %v", stElastic, stPlastic)
	}
}
