// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ioformats

import (
	"strings"
	"testing"
)

func sampleHex8() *Mesh {
	return &Mesh{
		ElemType: "hex8",
		Nodes: [][]float64{
			{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
			{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
		},
		Elems: [][]int{{0, 1, 2, 3, 4, 5, 6, 7}},
		MatID: []int{0},
		NSets: map[string][]int{"base": {0, 1, 2, 3}},
		ESets: map[string][]int{"all": {0}},
		BCs:   []BoundaryCond{{Node: 0, Dof: 2, Value: 0}},
		Loads: []Load{{Node: 6, Dof: 2, Value: -100}},
	}
}

func TestAbaqusRoundTrip(t *testing.T) {
	m := sampleHex8()
	text, err := WriteAbaqusInp(m)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "*ELEMENT, TYPE=C3D8") {
		t.Fatalf("expected C3D8 element header, got:\n%s", text)
	}
	back, err := ReadAbaqusInp(text)
	if err != nil {
		t.Fatal(err)
	}
	if len(back.Nodes) != len(m.Nodes) {
		t.Fatalf("got %d nodes, want %d", len(back.Nodes), len(m.Nodes))
	}
	if len(back.Elems) != 1 || len(back.Elems[0]) != 8 {
		t.Fatalf("expected one hex8 element, got %v", back.Elems)
	}
	for i, n := range back.Elems[0] {
		if n != m.Elems[0][i] {
			t.Errorf("connectivity[%d] = %d, want %d", i, n, m.Elems[0][i])
		}
	}
	if len(back.NSets["base"]) != 4 {
		t.Errorf("expected 4-node nset 'base', got %v", back.NSets["base"])
	}
	if len(back.BCs) != 1 || back.BCs[0].Node != 0 || back.BCs[0].Dof != 2 {
		t.Errorf("unexpected boundary condition round-trip: %+v", back.BCs)
	}
	if len(back.Loads) != 1 || back.Loads[0].Node != 6 || back.Loads[0].Value != -100 {
		t.Errorf("unexpected load round-trip: %+v", back.Loads)
	}
}

func TestGenericType(t *testing.T) {
	if got := GenericType("C3D8"); got != "hex8" {
		t.Errorf("GenericType(C3D8) = %q, want hex8", got)
	}
	if got := GenericType("cps4"); got != "qua4" {
		t.Errorf("GenericType(cps4) = %q, want qua4", got)
	}
	if got := GenericType("nope"); got != "" {
		t.Errorf("GenericType(nope) = %q, want empty", got)
	}
}

func TestWriteAbaqusInpUnsupportedType(t *testing.T) {
	m := &Mesh{ElemType: "wedge6"}
	if _, err := WriteAbaqusInp(m); err == nil {
		t.Fatal("expected error for unsupported element type")
	}
}
