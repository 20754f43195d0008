// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rigidbody

import (
	"context"
	"math"
	"testing"
)

func stillMotion() Motion {
	return Motion{
		Translation: func(t float64) []float64 { return []float64{0, 0, 0} },
		Axis:        func(t float64) []float64 { return []float64{0, 0, 1} },
		Angle:       func(t float64) float64 { return 0 },
		Origin:      []float64{0, 0, 0},
	}
}

func TestTranslationAdvancesWithTime(t *testing.T) {
	motion := stillMotion()
	motion.Translation = func(tm float64) []float64 { return []float64{tm * 2.0, 0, 0} }
	rb := New(3, [][]float64{{0, 0, 0}, {1, 0, 0}}, motion)
	ctx := context.Background()
	if err := rb.Step(ctx, 0.5); err != nil {
		t.Fatal(err)
	}
	for i := range rb.U {
		if math.Abs(rb.U[i][0]-1.0) > 1e-12 {
			t.Errorf("point %d: u_x = %v, want 1.0", i, rb.U[i][0])
		}
	}
	cur := rb.CurrentPositions()
	if math.Abs(cur[1][0]-2.0) > 1e-12 {
		t.Errorf("point 1 current x = %v, want 2.0", cur[1][0])
	}
}

func TestRotationAboutZQuarterTurn(t *testing.T) {
	motion := stillMotion()
	motion.Angle = func(tm float64) float64 { return tm * math.Pi / 2 }
	rb := New(3, [][]float64{{1, 0, 0}}, motion)
	if err := rb.Step(context.Background(), 1.0); err != nil {
		t.Fatal(err)
	}
	cur := rb.CurrentPositions()
	if math.Abs(cur[0][0]) > 1e-12 || math.Abs(cur[0][1]-1.0) > 1e-12 {
		t.Errorf("quarter turn of (1,0,0): got (%v, %v), want (0, 1)", cur[0][0], cur[0][1])
	}
}

func TestRotationPreservesDistanceToOrigin(t *testing.T) {
	motion := stillMotion()
	motion.Origin = []float64{0.5, 0.5, 0}
	motion.Angle = func(tm float64) float64 { return tm * 0.7 }
	rb := New(3, [][]float64{{1, 0, 0}, {0, 1, 0.3}}, motion)
	if err := rb.Step(context.Background(), 1.3); err != nil {
		t.Fatal(err)
	}
	cur := rb.CurrentPositions()
	for i, x := range rb.X {
		r0, r1 := 0.0, 0.0
		for d := 0; d < 3; d++ {
			a := x[d] - motion.Origin[d]
			b := cur[i][d] - motion.Origin[d]
			r0 += a * a
			r1 += b * b
		}
		if math.Abs(math.Sqrt(r0)-math.Sqrt(r1)) > 1e-12 {
			t.Errorf("point %d changed distance to the rotation center: %v vs %v", i, math.Sqrt(r0), math.Sqrt(r1))
		}
	}
}

func TestStableDtNeverThrottles(t *testing.T) {
	rb := New(3, [][]float64{{0, 0, 0}}, stillMotion())
	if !math.IsInf(rb.StableDt(), 1) {
		t.Errorf("rigid body StableDt must be +Inf, got %v", rb.StableDt())
	}
}

func TestStepRejectsNonPositiveDt(t *testing.T) {
	rb := New(3, [][]float64{{0, 0, 0}}, stillMotion())
	if err := rb.Step(context.Background(), 0); err == nil {
		t.Error("expected an error for dt = 0")
	}
}
