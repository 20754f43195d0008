// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dynamics

import (
	"math"
	"testing"

	"github.com/dpedroso-lab/spinefem/assembly"
	"github.com/dpedroso-lab/spinefem/linsolver"
	"github.com/dpedroso-lab/spinefem/mesh"
	"github.com/dpedroso-lab/spinefem/msolid"
)

// buildCantileverSquare returns a single QUAD4 clamped along its left edge
// (nodes 0, 3) with node 2 also pinned, leaving node 1's x-displacement as
// the system's only free DOF -- a plain single-degree-of-freedom spring for
// exercising the Newmark corrector against a known static solution.
func buildCantileverSquare(t *testing.T) (*mesh.Mesh, *assembly.Assembler) {
	t.Helper()
	X := [][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	elems := [][]int{{0, 1, 2, 3}}
	m, err := mesh.New("qua4", X, elems, []int{0})
	if err != nil {
		t.Fatal(err)
	}
	if err := m.SetFixedNode(0, []float64{0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := m.SetFixedNode(2, []float64{0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := m.SetFixedNode(3, []float64{0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := m.SetFixedDOF(1, 1, 0); err != nil {
		t.Fatal(err)
	}
	el, err := msolid.NewElastic(3, 1000.0, 0.3, 1.0, true)
	if err != nil {
		t.Fatal(err)
	}
	a := assembly.New(m, assembly.MaterialSet{0: el})
	return m, a
}

func tangentConst(D [][]float64) func(matID, gpIdx int, eps, sig []float64) ([][]float64, error) {
	return func(matID, gpIdx int, eps, sig []float64) ([][]float64, error) {
		return D, nil
	}
}

func meshBCsFor(m *mesh.Mesh) []linsolver.BC {
	var bcs []linsolver.BC
	for i := 0; i < m.NNodes; i++ {
		for d := 0; d < m.Dim; d++ {
			if m.Fixed[i][d] {
				bcs = append(bcs, linsolver.BC{DOF: i*m.Dim + d, Value: m.Prescribed[i][d]})
			}
		}
	}
	return bcs
}

func TestNewmarkStepAtRestWithNoLoadStaysAtRest(t *testing.T) {
	m, a := buildCantileverSquare(t)
	el, err := msolid.NewElastic(3, 1000.0, 0.3, 1.0, true)
	if err != nil {
		t.Fatal(err)
	}
	D := la3(3)
	if err := el.Tangent(D); err != nil {
		t.Fatal(err)
	}
	K, err := a.Stiffness(tangentConst(D))
	if err != nil {
		t.Fatal(err)
	}
	mass := LumpedMass(m, func(matID int) float64 { return 1.0 })
	nm := NewNewmark(m, mass, Rayleigh{AlphaM: 0.1})

	if err := nm.Step(m, 0.01, K, meshBCsFor(m)); err != nil {
		t.Fatal(err)
	}
	for i, row := range m.U {
		for d, v := range row {
			if math.Abs(v) > 1e-9 {
				t.Errorf("node %d dof %d: expected zero displacement at rest with no load, got %v", i, d, v)
			}
		}
	}
}

// TestNewmarkStepConvergesToStaticSolution drives the single free DOF with
// a constant external force through many damped Newmark steps and checks
// the displacement settles to the same value a direct static solve gives,
// confirming Step actually implements an implicit (not per-node explicit)
// corrector tied to the assembled stiffness.
func TestNewmarkStepConvergesToStaticSolution(t *testing.T) {
	m, a := buildCantileverSquare(t)
	el, err := msolid.NewElastic(3, 1000.0, 0.3, 1.0, true)
	if err != nil {
		t.Fatal(err)
	}
	D := la3(3)
	if err := el.Tangent(D); err != nil {
		t.Fatal(err)
	}
	K, err := a.Stiffness(tangentConst(D))
	if err != nil {
		t.Fatal(err)
	}
	bcs := meshBCsFor(m)

	const F0 = 50.0
	freeDOF := 1*m.Dim + 0 // node 1, x
	m.Fext[1][0] = F0

	R := make([]float64, m.NDOF())
	R[freeDOF] = F0
	Kstatic, err := a.Stiffness(tangentConst(D))
	if err != nil {
		t.Fatal(err)
	}
	linsolver.ApplyDirichletPenalty(Kstatic, R, bcs)
	uStatic, err := linsolver.Solve(Kstatic, R)
	if err != nil {
		t.Fatal(err)
	}

	mass := LumpedMass(m, func(matID int) float64 { return 1.0 })
	nm := NewNewmark(m, mass, Rayleigh{AlphaM: 50.0})
	dt := 0.02
	for step := 0; step < 4000; step++ {
		if err := nm.Step(m, dt, K, bcs); err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
	}

	got := m.U[1][0]
	want := uStatic[freeDOF]
	if math.Abs(got-want) > 1e-3*math.Abs(want) {
		t.Errorf("Newmark did not settle to the static solution: got %v, want %v", got, want)
	}
}

func la3(n int) [][]float64 {
	D := make([][]float64, n)
	for i := range D {
		D[i] = make([]float64, n)
	}
	return D
}

// TestEstimateStableDtMatchesWaveSpeed checks the closed-form estimate
// on a unit square: h = 1, so dt = 0.8 / c.
func TestEstimateStableDtMatchesWaveSpeed(t *testing.T) {
	m, _ := buildCantileverSquare(t)
	E, nu, rho := 200.0e9, 0.3, 7800.0
	c := math.Sqrt(E * (1.0 - nu) / (rho * (1.0 + nu) * (1.0 - 2.0*nu)))
	got := EstimateStableDt(m, E, nu, rho)
	want := 0.8 / c
	if math.Abs(got-want)/want > 1e-12 {
		t.Errorf("stable dt: got %v, want %v", got, want)
	}
	if !math.IsInf(EstimateStableDt(m, 0, nu, rho), 1) {
		t.Error("non-physical modulus must disable the estimate")
	}
}

// TestNaturalFrequenciesTridiagonal checks the shift-invert iteration
// against the closed-form spectrum of the n-DOF [2 -1; -1 2 -1; ...]
// chain with unit masses: lambda_k = 2 - 2*cos(k*pi/(n+1)), so the
// iteration must return the two smallest, ascending, as
// f_k = sqrt(lambda_k)/(2*pi).
func TestNaturalFrequenciesTridiagonal(t *testing.T) {
	n := 5
	K := linsolver.NewCOO(n, 3*n)
	for i := 0; i < n; i++ {
		K.Put(i, i, 2)
		if i > 0 {
			K.Put(i, i-1, -1)
		}
		if i < n-1 {
			K.Put(i, i+1, -1)
		}
	}
	mass := make([]float64, n)
	for i := range mass {
		mass[i] = 1.0
	}
	freqs, err := NaturalFrequencies(K, mass, 2)
	if err != nil {
		t.Fatal(err)
	}
	for k := 1; k <= 2; k++ {
		lam := 2.0 - 2.0*math.Cos(float64(k)*math.Pi/float64(n+1))
		want := math.Sqrt(lam) / (2.0 * math.Pi)
		if math.Abs(freqs[k-1]-want)/want > 1e-6 {
			t.Errorf("mode %d: got %v, want %v", k, freqs[k-1], want)
		}
	}
	if freqs[0] >= freqs[1] {
		t.Errorf("frequencies must ascend: %v", freqs)
	}
}

func TestNaturalFrequenciesRejectsTooManyModes(t *testing.T) {
	K := linsolver.NewCOO(2, 4)
	K.Put(0, 0, 1)
	K.Put(1, 1, 1)
	if _, err := NaturalFrequencies(K, []float64{1, 1}, 3); err == nil {
		t.Error("expected an error when nModes exceeds the DOF count")
	}
}
