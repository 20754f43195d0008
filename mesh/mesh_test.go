// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

import (
	"math"
	"testing"
)

func unitSquare(t *testing.T) *Mesh {
	X := [][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	m, err := New("qua4pe", X, [][]int{{0, 1, 2, 3}}, []int{0})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func unitCube(t *testing.T) *Mesh {
	X := [][]float64{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
	}
	m, err := New("hex8", X, [][]int{{0, 1, 2, 3, 4, 5, 6, 7}}, []int{0})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestNewComputesReferenceVolumes(t *testing.T) {
	sq := unitSquare(t)
	if math.Abs(sq.RefVol[0]-1.0) > 1e-12 {
		t.Errorf("unit square area: got %v, want 1", sq.RefVol[0])
	}
	cube := unitCube(t)
	if math.Abs(cube.RefVol[0]-1.0) > 1e-12 {
		t.Errorf("unit cube volume: got %v, want 1", cube.RefVol[0])
	}
}

func TestDeformationGradientIdentityAtRest(t *testing.T) {
	m := unitCube(t)
	m.UpdateCurrentConfig()
	m.ComputeDeformationGradient()
	for gp := 0; gp < m.NGauss; gp++ {
		F := m.Fgrad[gp]
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				want := 0.0
				if r == c {
					want = 1.0
				}
				if math.Abs(F[r*3+c]-want) > 1e-12 {
					t.Fatalf("gp %d: F[%d][%d] = %v, want %v", gp, r, c, F[r*3+c], want)
				}
			}
		}
	}
}

func TestApplyBoundaryConditionsWritesPrescribed(t *testing.T) {
	m := unitSquare(t)
	if err := m.SetFixedDOF(2, 1, 0.25); err != nil {
		t.Fatal(err)
	}
	m.U[2][1] = 99.0
	m.ApplyBoundaryConditions()
	if m.U[2][1] != 0.25 {
		t.Errorf("prescribed DOF: got %v, want 0.25", m.U[2][1])
	}
	if m.U[1][0] != 0 {
		t.Errorf("free DOF must stay untouched, got %v", m.U[1][0])
	}
}

func TestSetFixedGlobalDOFEquivalent(t *testing.T) {
	a := unitSquare(t)
	b := unitSquare(t)
	if err := a.SetFixedDOF(3, 1, 0.1); err != nil {
		t.Fatal(err)
	}
	if err := b.SetFixedGlobalDOF(3*b.Dim+1, 0.1); err != nil {
		t.Fatal(err)
	}
	a.ApplyBoundaryConditions()
	b.ApplyBoundaryConditions()
	if a.U[3][1] != b.U[3][1] {
		t.Errorf("per-DOF and global-DOF fixing disagree: %v vs %v", a.U[3][1], b.U[3][1])
	}
}

// TestAddFacePressureResultant2D loads the bottom edge (outward normal
// -y) of a unit square: positive pressure pushes along -n = +y with
// total magnitude p * edge length, split evenly between the two edge
// nodes for a uniform load.
func TestAddFacePressureResultant2D(t *testing.T) {
	m := unitSquare(t)
	p := 40.0
	if err := m.AddFacePressure(0, 0, p); err != nil {
		t.Fatal(err)
	}
	sumX, sumY := 0.0, 0.0
	for i := 0; i < m.NNodes; i++ {
		sumX += m.Fext[i][0]
		sumY += m.Fext[i][1]
	}
	if math.Abs(sumY-p) > 1e-10 {
		t.Errorf("bottom-edge resultant: got %v, want %v", sumY, p)
	}
	if math.Abs(sumX) > 1e-10 {
		t.Errorf("tangential resultant must vanish, got %v", sumX)
	}
	if math.Abs(m.Fext[0][1]-p/2) > 1e-10 || math.Abs(m.Fext[1][1]-p/2) > 1e-10 {
		t.Errorf("uniform edge load must split evenly: %v / %v", m.Fext[0][1], m.Fext[1][1])
	}
}

// TestAddFacePressureResultant3D loads the top face (outward normal +z)
// of a unit cube: the resultant is -p along z.
func TestAddFacePressureResultant3D(t *testing.T) {
	m := unitCube(t)
	p := 7.5
	if err := m.AddFacePressure(0, 5, p); err != nil {
		t.Fatal(err)
	}
	var sum [3]float64
	for i := 0; i < m.NNodes; i++ {
		for d := 0; d < 3; d++ {
			sum[d] += m.Fext[i][d]
		}
	}
	if math.Abs(sum[2]+p) > 1e-10 {
		t.Errorf("top-face resultant: got %v, want %v", sum[2], -p)
	}
	if math.Abs(sum[0]) > 1e-10 || math.Abs(sum[1]) > 1e-10 {
		t.Errorf("in-plane resultants must vanish: %v, %v", sum[0], sum[1])
	}
}

func TestAddFacePressureRejectsBadIndices(t *testing.T) {
	m := unitSquare(t)
	if err := m.AddFacePressure(5, 0, 1.0); err == nil {
		t.Error("expected error for out-of-range element")
	}
	if err := m.AddFacePressure(0, 9, 1.0); err == nil {
		t.Error("expected error for out-of-range face")
	}
}

func TestFacesOnPlaneSelectsBoundary(t *testing.T) {
	X := [][]float64{
		{0, 0}, {1, 0}, {2, 0},
		{0, 1}, {1, 1}, {2, 1},
	}
	elems := [][]int{{0, 1, 4, 3}, {1, 2, 5, 4}}
	m, err := New("qua4pe", X, elems, []int{0, 0})
	if err != nil {
		t.Fatal(err)
	}

	left := m.FacesOnPlane(0, 0.0, 0)
	if len(left) != 1 || left[0][0] != 0 || left[0][1] != 3 {
		t.Errorf("x=0 plane: got %v, want [[0 3]]", left)
	}
	right := m.FacesOnPlane(0, 2.0, 0)
	if len(right) != 1 || right[0][0] != 1 {
		t.Errorf("x=2 plane: got %v", right)
	}
	bottom := m.FacesOnPlane(1, 0.0, 0)
	if len(bottom) != 2 {
		t.Errorf("y=0 plane: got %d faces, want 2", len(bottom))
	}

	nodes := m.NodesOnPlane(0, 0.0, 0)
	if len(nodes) != 2 || nodes[0] != 0 || nodes[1] != 3 {
		t.Errorf("x=0 nodes: got %v, want [0 3]", nodes)
	}
}
