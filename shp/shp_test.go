// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shp

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/la"
)

func sumS(s []float64) float64 {
	t := 0.0
	for _, v := range s {
		t += v
	}
	return t
}

func TestPartitionOfUnity(t *testing.T) {
	cases := []string{"tri3", "qua4", "tet4", "tet10", "hex8", "hex20"}
	pts := []GaussPoint{{R: 0.1, S: 0.2, T: 0.05}, {R: 0, S: 0, T: 0}}
	for _, ct := range cases {
		sh := Get(ct)
		if sh == nil {
			t.Fatalf("missing shape %s", ct)
		}
		S := make([]float64, sh.Nverts)
		dSdR := la.MatAlloc(sh.Nverts, sh.Gndim)
		for _, p := range pts {
			sh.CalcAt(S, dSdR, p.R, p.S, p.T)
			if math.Abs(sumS(S)-1.0) > 1e-12 {
				t.Errorf("%s: shape functions do not sum to 1 at (%v,%v,%v): got %v", ct, p.R, p.S, p.T, sumS(S))
			}
		}
	}
}

func TestHex8UnitCubeJacobian(t *testing.T) {
	sh := Get("hex8")
	X := [][]float64{
		{0, 1, 1, 0, 0, 1, 1, 0},
		{0, 0, 1, 1, 0, 0, 1, 1},
		{0, 0, 0, 0, 1, 1, 1, 1},
	}
	dNdX := la.MatAlloc(8, 3)
	total := 0.0
	for _, gp := range sh.Gauss {
		w, err := sh.GradientsAt(dNdX, X, gp)
		if err != nil {
			t.Fatal(err)
		}
		total += w
	}
	if math.Abs(total-1.0) > 1e-12 {
		t.Errorf("expected total weight = volume = 1, got %v", total)
	}
}
