// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spg

import (
	"math"
	"testing"

	"github.com/dpedroso-lab/spinefem/msolid"
)

func buildGrid(n int, spacing float64) [][]float64 {
	var X [][]float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			X = append(X, []float64{float64(i) * spacing, float64(j) * spacing})
		}
	}
	return X
}

func TestZeroDisplacementGivesZeroForce(t *testing.T) {
	X := buildGrid(4, 1.0)
	vol := make([]float64, len(X))
	density := make([]float64, len(X))
	matID := make([]int, len(X))
	for i := range vol {
		vol[i], density[i] = 1.0, 1.0
	}
	s := NewSystem(2, X, vol, density, matID, 1.8, 0.1, 0.2, 0.0)
	el, err := msolid.NewElastic(3, 1000.0, 0.3, 1.0, true)
	if err != nil {
		t.Fatal(err)
	}
	mats := map[int]msolid.Material{0: el}
	if err := s.ComputeForces(mats); err != nil {
		t.Fatal(err)
	}
	for i, f := range s.Fint {
		for d, v := range f {
			if math.Abs(v) > 1e-6 {
				t.Errorf("particle %d dof %d: expected ~zero force at zero displacement, got %v", i, d, v)
			}
		}
	}
}

func TestFailBondsMarksDuctileTearing(t *testing.T) {
	X := buildGrid(3, 1.0)
	vol := make([]float64, len(X))
	density := make([]float64, len(X))
	matID := make([]int, len(X))
	for i := range vol {
		vol[i], density[i] = 1.0, 1.0
	}
	s := NewSystem(2, X, vol, density, matID, 1.8, 10.0, 0.05, 0.0)
	plastic := make([]float64, len(X))
	plastic[0] = 0.5
	s.FailBonds(plastic)
	brokenAny := false
	for i := 0; i < s.Bonds.N; i++ {
		for k := 0; k < s.Bonds.Counts[i]; k++ {
			if s.Bonds.Broken[s.Bonds.Offsets[i]+k] {
				brokenAny = true
			}
		}
	}
	if !brokenAny {
		t.Fatal("expected at least one bond touching particle 0 to be marked broken by ductile tearing")
	}
}
