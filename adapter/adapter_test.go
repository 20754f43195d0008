// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package adapter

import (
	"testing"

	"github.com/dpedroso-lab/spinefem/assembly"
	"github.com/dpedroso-lab/spinefem/femrt"
	"github.com/dpedroso-lab/spinefem/mesh"
	"github.com/dpedroso-lab/spinefem/msolid"
	"github.com/dpedroso-lab/spinefem/statics"
)

func buildUnitSquare(t *testing.T) *mesh.Mesh {
	t.Helper()
	X := [][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	elems := [][]int{{0, 1, 2, 3}}
	matID := []int{0}
	m, err := mesh.New("qua4pe", X, elems, matID)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestMeshAdapterContactForceRoundTrip(t *testing.T) {
	m := buildUnitSquare(t)
	el, err := msolid.NewElastic(3, 1000.0, 0.3, 1.0, true)
	if err != nil {
		t.Fatal(err)
	}
	mats := assembly.MaterialSet{0: el}
	a := NewMeshAdapter(m, mats, femrt.NewRuntime(), statics.DefaultOptions())

	a.InjectContactForces(0, []float64{5, 0})
	if m.Fext[0][0] != 5 {
		t.Fatalf("expected contact force applied, got %v", m.Fext[0])
	}
	a.ClearContactForces()
	if m.Fext[0][0] != 0 {
		t.Fatalf("expected contact force cleared back to baseline, got %v", m.Fext[0])
	}
}

func TestTangentForDispatchesElastic(t *testing.T) {
	m := buildUnitSquare(t)
	el, err := msolid.NewElastic(3, 1000.0, 0.3, 1.0, true)
	if err != nil {
		t.Fatal(err)
	}
	mats := assembly.MaterialSet{0: el}
	asm := assembly.New(m, mats)
	tangent := tangentFor(asm)
	D, err := tangent(0, 0, []float64{0, 0, 0}, []float64{0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	if len(D) != 3 || len(D[0]) != 3 {
		t.Fatalf("expected 3x3 tangent, got %dx%d", len(D), len(D[0]))
	}
}
