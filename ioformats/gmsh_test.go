// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ioformats

import "testing"

const sampleGmshTet = `$MeshFormat
4.1 0 8
$EndMeshFormat
$Nodes
1 4 1 4
2 1 0 4
1
2
3
4
0 0 0
1 0 0
0 1 0
0 0 1
$EndNodes
$Elements
1 1 0 1
3 1 4 1
1 1 2 3 4
$EndElements
`

func TestReadGmshMshTet4(t *testing.T) {
	m, err := ReadGmshMsh(sampleGmshTet)
	if err != nil {
		t.Fatal(err)
	}
	if m.ElemType != "tet4" {
		t.Fatalf("ElemType = %q, want tet4", m.ElemType)
	}
	if len(m.Nodes) != 4 {
		t.Fatalf("got %d nodes, want 4", len(m.Nodes))
	}
	if len(m.Nodes[0]) != 3 {
		t.Fatalf("expected 3D node coordinates, got %v", m.Nodes[0])
	}
	if len(m.Elems) != 1 || len(m.Elems[0]) != 4 {
		t.Fatalf("expected one tet4 element, got %v", m.Elems)
	}
}

func TestReadGmshMshRejectsOldVersion(t *testing.T) {
	text := "$MeshFormat\n2.2 0 8\n$EndMeshFormat\n"
	if _, err := ReadGmshMsh(text); err == nil {
		t.Fatal("expected error for gmsh format < 4.0")
	}
}

func TestReadGmshMshRejectsBinary(t *testing.T) {
	text := "$MeshFormat\n4.1 1 8\n$EndMeshFormat\n"
	if _, err := ReadGmshMsh(text); err == nil {
		t.Fatal("expected error for binary gmsh file")
	}
}
