// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package contact

import (
	"math"
	"testing"
)

func TestDetectFindsCrossBodyPairOnly(t *testing.T) {
	bodyA := [][]float64{{0, 0}, {1, 0}}
	bodyB := [][]float64{{0.05, 0}, {5, 5}}
	pairs := Detect([][][]float64{bodyA, bodyB}, 0.5, 2)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 cross-body pair, got %d", len(pairs))
	}
	if pairs[0].BodyA != 0 || pairs[0].BodyB != 1 {
		t.Fatalf("unexpected body indices: %+v", pairs[0])
	}
}

func TestResolvePenaltyPushesApart(t *testing.T) {
	p := &Pair{BodyA: 0, BodyB: 1, NodeA: 0, NodeB: 0}
	params := Params{Kind: KindPenalty, Penalty: 100, GapTolerance: 1.0}
	posA := []float64{0, 0}
	posB := []float64{0.5, 0}
	vel := []float64{0, 0}
	fA, fB := Resolve(p, params, posA, posB, vel, vel, 0.01)
	if fA[0] >= 0 {
		t.Errorf("expected node A pushed in -x, got %v", fA[0])
	}
	if fB[0] <= 0 {
		t.Errorf("expected node B pushed in +x, got %v", fB[0])
	}
	if math.Abs(fA[0]+fB[0]) > 1e-9 {
		t.Errorf("expected action-reaction, got fA=%v fB=%v", fA, fB)
	}
}

func TestResolveTiedBondsAtInitialOffsetThenResistsDrift(t *testing.T) {
	p := &Pair{BodyA: 0, BodyB: 1, NodeA: 0, NodeB: 0}
	params := Params{Kind: KindTied, Penalty: 1000}
	vel := []float64{0, 0}

	// first call bonds the pair at whatever separation it finds -- no
	// restoring force yet, since nothing has drifted from r0.
	bondPosA := []float64{0, 0}
	bondPosB := []float64{0.1, 0}
	fA0, fB0 := Resolve(p, params, bondPosA, bondPosB, vel, vel, 0.01)
	if math.Abs(fA0[0]) > 1e-12 || math.Abs(fB0[0]) > 1e-12 {
		t.Fatalf("expected zero force at the bonding instant, got fA=%v fB=%v", fA0, fB0)
	}
	if !p.bonded {
		t.Fatal("expected pair to be marked bonded after first resolve")
	}

	// the pair then drifts apart beyond r0; the spring must pull A back
	// toward B (+x).
	posA := []float64{0, 0}
	posB := []float64{0.3, 0}
	fA, fB := Resolve(p, params, posA, posB, vel, vel, 0.01)
	if fA[0] <= 0 {
		t.Errorf("expected node A pulled toward B (+x), got %v", fA[0])
	}
	if math.Abs(fA[0]+fB[0]) > 1e-9 {
		t.Errorf("expected action-reaction, got fA=%v fB=%v", fA, fB)
	}
}

func TestResolveNoForceOutsideSearchRadius(t *testing.T) {
	p := &Pair{BodyA: 0, BodyB: 1, NodeA: 0, NodeB: 0}
	params := Params{Kind: KindPenalty, Penalty: 100, GapTolerance: 0.1}
	posA := []float64{0, 0}
	posB := []float64{5, 0}
	vel := []float64{0, 0}
	fA, fB := Resolve(p, params, posA, posB, vel, vel, 0.01)
	for d := range fA {
		if fA[d] != 0 || fB[d] != 0 {
			t.Fatalf("expected zero force beyond search radius, got fA=%v fB=%v", fA, fB)
		}
	}
}

// TestResolveCoulombSticksBelowThreshold checks that a small relative
// tangential velocity (trial tangential force under mu_s*|f_n|) is taken
// up fully rather than capped at the kinetic limit.
func TestResolveCoulombSticksBelowThreshold(t *testing.T) {
	p := &Pair{BodyA: 0, BodyB: 1, NodeA: 0, NodeB: 0}
	params := Params{Kind: KindCoulomb, Penalty: 100, GapTolerance: 1.0, MuS: 0.5, MuD: 0.3}
	posA := []float64{0, 0}
	posB := []float64{0.5, 0}
	dt := 0.01
	velA := []float64{0, 1e-5}
	velB := []float64{0, 0}
	fA, _ := Resolve(p, params, posA, posB, velA, velB, dt)
	vt := velA[1] - velB[1]
	wantFt := params.Penalty * vt * dt
	if math.Abs(-fA[1]-wantFt) > 1e-9 {
		t.Errorf("expected stick regime to take the full trial tangential force, got fA_t=%v want %v", -fA[1], wantFt)
	}
}

// TestResolveCoulombSlipsAboveThreshold checks that a large relative
// tangential velocity is capped at the kinetic (mu_d) friction limit.
func TestResolveCoulombSlipsAboveThreshold(t *testing.T) {
	p := &Pair{BodyA: 0, BodyB: 1, NodeA: 0, NodeB: 0}
	params := Params{Kind: KindCoulomb, Penalty: 100, GapTolerance: 1.0, MuS: 0.5, MuD: 0.3}
	posA := []float64{0, 0}
	posB := []float64{0.5, 0}
	dt := 0.01
	velA := []float64{0, 100}
	velB := []float64{0, 0}
	penetration := params.GapTolerance - dist(posA, posB)
	fn := params.Penalty * penetration
	fA, fB := Resolve(p, params, posA, posB, velA, velB, dt)
	wantFt := params.MuD * fn
	if math.Abs(math.Abs(fA[1])-wantFt) > 1e-6 {
		t.Errorf("expected slip regime capped at mu_d*|f_n|=%v, got %v", wantFt, math.Abs(fA[1]))
	}
	if math.Abs(fA[0]+fB[0]) > 1e-9 || math.Abs(fA[1]+fB[1]) > 1e-9 {
		t.Errorf("expected action-reaction in slip regime, got fA=%v fB=%v", fA, fB)
	}
}

func TestAutoPenaltyUsesStifferBodyAndFinerSpacing(t *testing.T) {
	got := AutoPenalty(2000, 1000, 0.5, 0.2)
	want := 2000.0 / 0.2
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("AutoPenalty = %v, want %v", got, want)
	}
}

func TestAutoGapToleranceUsesCoarserSpacing(t *testing.T) {
	got := AutoGapTolerance(0.2, 0.5)
	want := 1.5 * 0.5
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("AutoGapTolerance = %v, want %v", got, want)
	}
}
