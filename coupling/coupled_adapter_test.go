// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coupling

import (
	"context"
	"testing"
)

// stubAdapter is a minimal adapter.Adapter test double: every method
// returns a fixed per-node array, sized to whatever the test configures.
type stubAdapter struct {
	disp, vel, stress, pos [][]float64
	damage                 []float64
	injected               map[int][]float64
}

func newStubAdapter(n int) *stubAdapter {
	return &stubAdapter{
		disp: make([][]float64, n), vel: make([][]float64, n),
		stress: make([][]float64, n), pos: make([][]float64, n),
		damage: make([]float64, n), injected: map[int][]float64{},
	}
}

func (s *stubAdapter) Solve(ctx context.Context) error          { return nil }
func (s *stubAdapter) Step(ctx context.Context, dt float64) error { return nil }
func (s *stubAdapter) StableDt() float64                         { return 1.0 }
func (s *stubAdapter) Displacements() [][]float64                { return s.disp }
func (s *stubAdapter) Velocities() [][]float64                   { return s.vel }
func (s *stubAdapter) Stress() [][]float64                       { return s.stress }
func (s *stubAdapter) Damage() []float64                         { return s.damage }
func (s *stubAdapter) CurrentPositions() [][]float64             { return s.pos }
func (s *stubAdapter) ReferencePositions() [][]float64           { return s.pos }
func (s *stubAdapter) InjectContactForces(idx int, force []float64) { s.injected[idx] = force }
func (s *stubAdapter) ClearContactForces()                          { s.injected = map[int][]float64{} }

// buildTestCoupledAdapter wires a 3-node body: node 0 FEM-only, node 1
// shared (FEM wins), node 2 PD-only.
func buildTestCoupledAdapter() (*CoupledAdapter, *stubAdapter, *stubAdapter) {
	fem := newStubAdapter(2) // local nodes 0,1 -> global 0,1
	pd := newStubAdapter(2)  // local nodes 0,1 -> global 1,2
	fem.disp[0] = []float64{1, 0}
	fem.disp[1] = []float64{2, 0}
	pd.disp[0] = []float64{99, 99} // should be shadowed by fem at global node 1
	pd.disp[1] = []float64{3, 0}
	o := NewCoupledAdapter(nil, fem, pd, 3, 2, []int{0, 1, -1}, []int{-1, 0, 1})
	return o, fem, pd
}

func TestCoupledAdapterDisplacementsFemWinsAtInterface(t *testing.T) {
	o, _, _ := buildTestCoupledAdapter()
	d := o.Displacements()
	if len(d) != 3 {
		t.Fatalf("expected 3 combined nodes, got %d", len(d))
	}
	if d[0][0] != 1 {
		t.Errorf("node 0 (fem-only): got %v, want [1 0]", d[0])
	}
	if d[1][0] != 2 {
		t.Errorf("node 1 (shared, fem wins): got %v, want [2 0]", d[1])
	}
	if d[2][0] != 3 {
		t.Errorf("node 2 (pd-only): got %v, want [3 0]", d[2])
	}
}

func TestCoupledAdapterInjectContactForcesRoutesBySide(t *testing.T) {
	o, fem, pd := buildTestCoupledAdapter()
	o.InjectContactForces(0, []float64{5, 0})
	o.InjectContactForces(2, []float64{0, 7})
	if fem.injected[0] == nil {
		t.Error("expected fem-only node 0 to route to fem adapter")
	}
	if pd.injected[1] == nil {
		t.Error("expected pd-only node 2 (pd-local 1) to route to pd adapter")
	}
}

func TestCoupledAdapterStableDtTakesMin(t *testing.T) {
	o, _, _ := buildTestCoupledAdapter()
	if got := o.StableDt(); got != 1.0 {
		t.Errorf("StableDt() = %v, want 1.0 (both stubs return 1.0)", got)
	}
}
