// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package statics

import (
	"math"
	"testing"

	"github.com/dpedroso-lab/spinefem/assembly"
	"github.com/dpedroso-lab/spinefem/femrt"
	"github.com/dpedroso-lab/spinefem/mesh"
	"github.com/dpedroso-lab/spinefem/msolid"
	"github.com/dpedroso-lab/spinefem/validation"
)

func buildBarMesh(t *testing.T) *mesh.Mesh {
	X := [][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	elems := [][]int{{0, 1, 2, 3}}
	m, err := mesh.New("qua4pe", X, elems, []int{0})
	if err != nil {
		t.Fatal(err)
	}
	m.SetFixedNode(0, []float64{0, 0})
	m.SetFixedDOF(3, 0, 0)
	m.Fext[1][0] = 1.0
	m.Fext[2][0] = 1.0
	return m
}

func TestSolveLinearEquilibrates(t *testing.T) {
	m := buildBarMesh(t)
	el, err := msolid.NewElastic(3, 1000.0, 0.3, 1.0, true)
	if err != nil {
		t.Fatal(err)
	}
	D := make([][]float64, 3)
	for i := range D {
		D[i] = make([]float64, 3)
	}
	el.Tangent(D)
	a := assembly.New(m, assembly.MaterialSet{0: el})
	if err := SolveLinear(m, a, func(matID, gpIdx int, eps, sig []float64) ([][]float64, error) {
		return D, nil
	}); err != nil {
		t.Fatal(err)
	}
	if m.U[1][0] <= 0 {
		t.Errorf("expected node 1 to displace in +x under tension, got %v", m.U[1][0])
	}
}

func TestSolveConverges(t *testing.T) {
	m := buildBarMesh(t)
	el, err := msolid.NewElastic(3, 1000.0, 0.3, 1.0, true)
	if err != nil {
		t.Fatal(err)
	}
	D := make([][]float64, 3)
	for i := range D {
		D[i] = make([]float64, 3)
	}
	el.Tangent(D)
	a := assembly.New(m, assembly.MaterialSet{0: el})
	rt := femrt.NewRuntime()
	res, err := Solve(rt, m, a, func(matID, gpIdx int, eps, sig []float64) ([][]float64, error) {
		return D, nil
	}, DefaultOptions(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Converged {
		t.Errorf("expected convergence, got history %v", res.ResidualHistory)
	}
	eb := ComputeEnergyBalance(m)
	if math.Abs(eb.Imbalance()) > 0.5 {
		t.Errorf("energy imbalance too large: %+v", eb)
	}
}

// j2Tangent dispatches the Newton tangent to the J2 material's own
// consistent modulus, mirroring package adapter's tangentFor dispatch for
// the one material kind this test drives.
func j2Tangent(a *assembly.Assembler) func(matID, gpIdx int, eps, sig []float64) ([][]float64, error) {
	return func(matID, gpIdx int, eps, sig []float64) ([][]float64, error) {
		mat := a.Mats[matID].(*msolid.J2Plasticity)
		st, ok := a.J2St[gpIdx]
		if !ok {
			st = &msolid.J2State{}
			a.J2St[gpIdx] = st
		}
		return mat.Tangent(st, len(sig))
	}
}

// TestSolveJ2PlasticityCommitsOnlyOnConvergence drives a single-element J2
// plasticity problem through Newton-Raphson to
// convergence, then re-solves at the same applied load: a second solve
// that starts already at equilibrium must not advance the committed
// hardening variable any further, since no new converged increment has
// occurred.
func TestSolveJ2PlasticityCommitsOnlyOnConvergence(t *testing.T) {
	m := buildBarMesh(t)
	mat, err := msolid.NewJ2Plasticity(1000.0, 0.3, 0.05, 10.0, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	m.Fext[1][0] = 0.5
	m.Fext[2][0] = 0.5
	a := assembly.New(m, assembly.MaterialSet{0: mat})
	rt := femrt.NewRuntime()

	res, err := Solve(rt, m, a, j2Tangent(a), DefaultOptions(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Converged {
		t.Fatalf("expected convergence, got history %v", res.ResidualHistory)
	}

	var yielded *msolid.J2State
	for _, st := range a.J2St {
		if st.AlphaConv > 0 {
			yielded = st
			break
		}
	}
	if yielded == nil {
		t.Fatal("expected at least one Gauss point to have yielded under this load")
	}
	alphaAfterFirstSolve := yielded.AlphaConv

	res2, err := Solve(rt, m, a, j2Tangent(a), DefaultOptions(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !res2.Converged {
		t.Fatalf("expected the second solve to already be at equilibrium, got history %v", res2.ResidualHistory)
	}
	if math.Abs(yielded.AlphaConv-alphaAfterFirstSolve) > 1e-12 {
		t.Errorf("re-solving at an unchanged equilibrium must not advance committed plastic strain: got %v, want %v", yielded.AlphaConv, alphaAfterFirstSolve)
	}
}

// TestSolveLinearMatchesConstantStressPatch checks a single-element patch
// under uniform horizontal traction against the closed-form constant-stress
// solution: a first-order element spanning the whole patch must reproduce
// it exactly, up to solver tolerance.
func TestSolveLinearMatchesConstantStressPatch(t *testing.T) {
	E, nu := 1000.0, 0.3
	m := buildBarMesh(t) // unit square, nodes 1 and 2 on the loaded edge

	el, err := msolid.NewElastic(3, E, nu, 1.0, true)
	if err != nil {
		t.Fatal(err)
	}
	D := make([][]float64, 3)
	for i := range D {
		D[i] = make([]float64, 3)
	}
	el.Tangent(D)
	a := assembly.New(m, assembly.MaterialSet{0: el})
	if err := SolveLinear(m, a, func(matID, gpIdx int, eps, sig []float64) ([][]float64, error) {
		return D, nil
	}); err != nil {
		t.Fatal(err)
	}

	// consistent nodal loads of 1.0 at each end of a unit-length edge sum
	// to a uniform traction qnH = 2.0.
	patch := validation.ConstantStressPatch{QnH: 2.0, QnV: 0.0, E: E, Nu: nu}
	wantUx, wantUy := patch.Displacement(1.0, []float64{1, 0})
	if math.Abs(m.U[1][0]-wantUx) > 1e-6 {
		t.Errorf("node 1 ux = %v, want %v", m.U[1][0], wantUx)
	}
	if math.Abs(m.U[1][1]-wantUy) > 1e-6 {
		t.Errorf("node 1 uy = %v, want %v", m.U[1][1], wantUy)
	}
}
