// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coupling

import (
	"context"
	"math"
	"testing"

	"github.com/dpedroso-lab/spinefem/adapter"
	"github.com/dpedroso-lab/spinefem/assembly"
	"github.com/dpedroso-lab/spinefem/femrt"
	"github.com/dpedroso-lab/spinefem/mesh"
	"github.com/dpedroso-lab/spinefem/msolid"
)

func buildStrip(t *testing.T, nelem int) (*mesh.Mesh, assembly.MaterialSet) {
	var X [][]float64
	for i := 0; i <= nelem; i++ {
		X = append(X, []float64{float64(i), 0})
		X = append(X, []float64{float64(i), 1})
	}
	var elems [][]int
	matID := make([]int, nelem)
	for e := 0; e < nelem; e++ {
		// bottom-left, bottom-right, top-right, top-left
		elems = append(elems, []int{2 * e, 2 * (e + 1), 2*(e+1) + 1, 2*e + 1})
	}
	m, err := mesh.New("qua4pe", X, elems, matID)
	if err != nil {
		t.Fatal(err)
	}
	m.SetFixedNode(0, []float64{0, 0})
	m.SetFixedNode(1, []float64{0, 0})
	el, err := msolid.NewElastic(3, 1000.0, 0.3, 1.0, true)
	if err != nil {
		t.Fatal(err)
	}
	return m, assembly.MaterialSet{0: el}
}

// TestAutoCoupleFemOnlyWhenNothingTrips drives the automatic mode with a
// threshold no stress can reach: the first-pass FEM result must stand,
// with zero switched elements.
func TestAutoCoupleFemOnlyWhenNothingTrips(t *testing.T) {
	m, mats := buildStrip(t, 2)
	m.Fext[m.NNodes-1][1] = -1.0
	m.Fext[m.NNodes-2][1] = -1.0

	opts := DefaultAutoOptions()
	opts.Threshold = 1e30
	res, err := AutoCouple(context.Background(), femrt.NewRuntime(), m, mats, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !res.FemOnly {
		t.Fatalf("expected a FEM-only result, got %+v", res)
	}
	if res.SwitchedElements != 0 {
		t.Errorf("switched elements: got %d, want 0", res.SwitchedElements)
	}
	tip := res.Adapter.Displacements()[m.NNodes-1]
	if !(tip[1] < 0) {
		t.Errorf("tip must deflect downward, got %v", tip[1])
	}
}

// TestBuildCoupledWiring splits a 3-element strip at its last element
// and checks the structural invariants of the build: complementary node
// maps, coordinate-coincident interface pairs, and the PD particle
// volumes recovering the switched elements' volume.
func TestBuildCoupledWiring(t *testing.T) {
	m, mats := buildStrip(t, 3)
	pdMask := []bool{false, false, true}
	split := SplitZones(m, pdMask)

	if len(split.FemElems) != 2 {
		t.Fatalf("FEM sub-mesh: got %d elements, want 2", len(split.FemElems))
	}
	if len(split.InterfaceGlobal) != 2 {
		t.Fatalf("interface: got %d nodes, want 2", len(split.InterfaceGlobal))
	}
	volPd := 0.0
	for _, v := range split.PdVolumes {
		volPd += v
	}
	if math.Abs(volPd-m.RefVol[2]) > 1e-12 {
		t.Errorf("particle volumes: got %v, want %v", volPd, m.RefVol[2])
	}

	opts := DefaultAutoOptions()
	cad, err := BuildCoupled(femrt.NewRuntime(), m, mats, split, opts)
	if err != nil {
		t.Fatal(err)
	}
	for g := 0; g < m.NNodes; g++ {
		onFem := cad.FemOfNode[g] >= 0
		onPd := cad.PdOfNode[g] >= 0
		if !onFem && !onPd {
			t.Errorf("node %d belongs to neither side", g)
		}
	}
	femPos := cad.Fem.ReferencePositions()
	pdPos := cad.Pd.ReferencePositions()
	for k, g := range split.InterfaceGlobal {
		fl, pl := split.InterfaceFemLocal[k], split.InterfacePdLocal[k]
		for d := 0; d < m.Dim; d++ {
			if femPos[fl][d] != pdPos[pl][d] {
				t.Errorf("interface node %d: FEM %v vs PD %v", g, femPos[fl], pdPos[pl])
			}
		}
	}
}

// TestBuildCoupledCarriesBoundaryConditions checks the original mesh's
// essential conditions land on the FEM sub-mesh after renumbering.
func TestBuildCoupledCarriesBoundaryConditions(t *testing.T) {
	m, mats := buildStrip(t, 3)
	split := SplitZones(m, []bool{false, false, true})
	cad, err := BuildCoupled(femrt.NewRuntime(), m, mats, split, DefaultAutoOptions())
	if err != nil {
		t.Fatal(err)
	}
	femAd, ok := cad.Fem.(*adapter.MeshAdapter)
	if !ok {
		t.Fatalf("FEM side is %T, want *adapter.MeshAdapter", cad.Fem)
	}
	fixedCount := 0
	for l := 0; l < femAd.Mesh.NNodes; l++ {
		for d := 0; d < femAd.Mesh.Dim; d++ {
			if femAd.Mesh.Fixed[l][d] {
				fixedCount++
			}
		}
	}
	if fixedCount != 4 {
		t.Errorf("expected the 4 fixed DOFs of the clamped edge inside the FEM zone, found %d", fixedCount)
	}
}
