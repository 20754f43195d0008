// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linsolver

import (
	"math"
	"testing"
)

// tridiag builds the classic SPD [2 -1; -1 2 -1; ...] stiffness-like
// matrix of size n.
func tridiag(n int) *COO {
	K := NewCOO(n, 3*n)
	for i := 0; i < n; i++ {
		K.Put(i, i, 2)
		if i > 0 {
			K.Put(i, i-1, -1)
		}
		if i < n-1 {
			K.Put(i, i+1, -1)
		}
	}
	return K
}

func TestSolveDirectTridiagonal(t *testing.T) {
	K := tridiag(3)
	b := []float64{1, 0, 1}
	x, err := Solve(K, b)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{1, 1, 1}
	for i := range want {
		if math.Abs(x[i]-want[i]) > 1e-9 {
			t.Errorf("x[%d] = %v, want %v", i, x[i], want[i])
		}
	}
}

func TestPCGMatchesDirect(t *testing.T) {
	n := 20
	K := tridiag(n)
	b := make([]float64, n)
	for i := range b {
		b[i] = float64(i%3) - 1.0
	}
	direct, err := Solve(K, b)
	if err != nil {
		t.Fatal(err)
	}
	iter, nit, err := PCG(K, b, nil, 1e-12, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if nit <= 0 {
		t.Errorf("PCG reported %d iterations", nit)
	}
	for i := range direct {
		if math.Abs(iter[i]-direct[i]) > 1e-8 {
			t.Errorf("x[%d]: PCG %v vs direct %v", i, iter[i], direct[i])
		}
	}
}

func TestDirichletPenaltyPinsDOF(t *testing.T) {
	K := tridiag(4)
	b := []float64{0, 0, 0, 0}
	ApplyDirichletPenalty(K, b, []BC{{DOF: 0, Value: 0.5}, {DOF: 3, Value: -0.5}})
	x, err := Solve(K, b)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(x[0]-0.5) > 1e-6 {
		t.Errorf("pinned DOF 0: got %v, want 0.5", x[0])
	}
	if math.Abs(x[3]+0.5) > 1e-6 {
		t.Errorf("pinned DOF 3: got %v, want -0.5", x[3])
	}
	// interior DOFs interpolate linearly between the pinned ends
	if !(x[1] > x[2]) {
		t.Errorf("expected monotone interpolation, got %v", x)
	}
}
