// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msolid

import (
	"math"
	"testing"
)

func TestElasticUniaxialStrain(t *testing.T) {
	el, err := NewElastic(6, 3000.0, 0.3, 1.0, false)
	if err != nil {
		t.Fatal(err)
	}
	eps := []float64{0.01, 0, 0, 0, 0, 0}
	sig, err := el.StressSmallStrain(eps)
	if err != nil {
		t.Fatal(err)
	}
	// sigma_xx should be positive and sigma_yy = sigma_zz = lambda * eps_xx
	if sig[0] <= 0 {
		t.Errorf("expected positive sigma_xx, got %v", sig[0])
	}
	if math.Abs(sig[1]-sig[2]) > 1e-9 {
		t.Errorf("transverse stresses should match by symmetry: %v vs %v", sig[1], sig[2])
	}
}

func TestElasticTangentMatchesSecant(t *testing.T) {
	el, err := NewElastic(6, 1000.0, 0.25, 1.0, false)
	if err != nil {
		t.Fatal(err)
	}
	D := make([][]float64, 6)
	for i := range D {
		D[i] = make([]float64, 6)
	}
	if err := el.Tangent(D); err != nil {
		t.Fatal(err)
	}
	eps := []float64{0.002, -0.001, 0.0005, 0.0007, 0, 0}
	sig, _ := el.StressSmallStrain(eps)
	for i := 0; i < 6; i++ {
		acc := 0.0
		for j := 0; j < 6; j++ {
			acc += D[i][j] * eps[j]
		}
		if math.Abs(acc-sig[i]) > 1e-8 {
			t.Errorf("D*eps[%d] = %v, want %v", i, acc, sig[i])
		}
	}
}

func TestNeoHookeanZeroStrainGivesZeroStress(t *testing.T) {
	nh, err := NewNeoHookean(6, 2000.0, 0.3, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	I := [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}
	sig, err := nh.StressLargeStrain(I)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range sig {
		if math.Abs(v) > 1e-9 {
			t.Errorf("sigma[%d] = %v, want 0 at F=I", i, v)
		}
	}
}

func TestOgdenRejectsMismatchedSeries(t *testing.T) {
	_, err := NewOgden(6, []float64{2, -2}, []float64{1.0}, 100.0, 1.0)
	if err == nil {
		t.Fatal("expected error for mismatched alpha/mu series")
	}
}

func TestJ2PlasticityElasticBelowYield(t *testing.T) {
	mat, err := NewJ2Plasticity(2000.0, 0.3, 10.0, 0, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	s := &J2State{}
	sig0 := make([]float64, 6)
	deps := []float64{0.0001, 0, 0, 0, 0, 0}
	sig, err := mat.Update(s, 6, sig0, deps)
	if err != nil {
		t.Fatal(err)
	}
	if s.Loading {
		t.Errorf("expected elastic step below yield")
	}
	if sig[0] <= 0 {
		t.Errorf("expected positive stress, got %v", sig[0])
	}
}

func TestJ2PlasticityYieldsUnderLargeStrain(t *testing.T) {
	mat, err := NewJ2Plasticity(2000.0, 0.3, 5.0, 50.0, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	s := &J2State{}
	sig0 := make([]float64, 6)
	deps := []float64{0.01, -0.005, -0.005, 0, 0, 0}
	_, err = mat.Update(s, 6, sig0, deps)
	if err != nil {
		t.Fatal(err)
	}
	if !s.Loading {
		t.Errorf("expected plastic loading for a large strain increment")
	}
	if s.Alpha <= 0 {
		t.Errorf("expected accumulated plastic strain > 0, got %v", s.Alpha)
	}
}

func TestTransverseIsotropicFibreStiffer(t *testing.T) {
	// fibre along x: E1 >> E2 should give a stiffer response along x than y
	ti, err := NewTransverseIsotropic(6, 5000.0, 500.0, 0.3, 0.4, 200.0, 1.0, []float64{1, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	epsX := []float64{0.001, 0, 0, 0, 0, 0}
	epsY := []float64{0, 0.001, 0, 0, 0, 0}
	sigX, _ := ti.StressSmallStrain(epsX)
	sigY, _ := ti.StressSmallStrain(epsY)
	if sigX[0] <= sigY[1] {
		t.Errorf("fibre-direction stress %v should exceed transverse stress %v", sigX[0], sigY[1])
	}
}
