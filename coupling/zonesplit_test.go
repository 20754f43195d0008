// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coupling

import (
	"testing"

	"github.com/dpedroso-lab/spinefem/mesh"
)

// twoTriMesh builds two tri3 elements sharing an edge: node 1 and node 2
// sit on the shared edge, node 0 is FEM-only, node 3 is PD-only.
func twoTriMesh(t *testing.T) *mesh.Mesh {
	t.Helper()
	X := [][]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	elems := [][]int{{0, 1, 2}, {1, 3, 2}}
	m, err := mesh.New("tri3", X, elems, nil)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestSplitZonesSeparatesFemAndPd(t *testing.T) {
	m := twoTriMesh(t)
	s := SplitZones(m, []bool{false, true})

	if len(s.FemElems) != 1 {
		t.Fatalf("expected 1 fem element, got %d", len(s.FemElems))
	}
	if len(s.FemGlobalNode) != 3 {
		t.Fatalf("expected 3 fem nodes (0,1,2), got %d", len(s.FemGlobalNode))
	}
	if len(s.PdGlobalNode) != 3 {
		t.Fatalf("expected 3 pd particles (1,2,3), got %d", len(s.PdGlobalNode))
	}
	if len(s.InterfaceGlobal) != 2 {
		t.Fatalf("expected 2 shared interface nodes (1,2), got %d", len(s.InterfaceGlobal))
	}
	for _, g := range s.InterfaceGlobal {
		if g != 1 && g != 2 {
			t.Errorf("unexpected interface global node %d", g)
		}
	}
	if _, ok := s.FemLocalOf(3); ok {
		t.Error("node 3 should not be in the fem sub-mesh")
	}
	if _, ok := s.PdLocalOf(0); ok {
		t.Error("node 0 should not be in the pd cloud")
	}
}

func TestElementAdjacencySharesEdge(t *testing.T) {
	m := twoTriMesh(t)
	adj := ElementAdjacency(m)
	if len(adj) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(adj))
	}
	if len(adj[0]) != 1 || adj[0][0] != 1 {
		t.Errorf("expected element 0 adjacent to element 1, got %v", adj[0])
	}
}

func TestAutoSwitchDilatesByBufferLayers(t *testing.T) {
	m := twoTriMesh(t)
	// only element 0 exceeds threshold; with 1 buffer layer, element 1
	// (its neighbour) should also switch.
	field := []float64{10.0, 0.0}
	active := AutoSwitch(m, CriterionVonMises, field, 5.0, 1)
	if !active[0] || !active[1] {
		t.Errorf("expected both elements active after 1 buffer layer, got %v", active)
	}
}

func TestAutoSwitchNoBufferLeavesNeighbourInactive(t *testing.T) {
	m := twoTriMesh(t)
	field := []float64{10.0, 0.0}
	active := AutoSwitch(m, CriterionVonMises, field, 5.0, 0)
	if !active[0] || active[1] {
		t.Errorf("expected only element 0 active with no buffer, got %v", active)
	}
}
