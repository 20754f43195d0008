// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package linsolver solves the linearised FEM system K*du = R with
// Dirichlet boundary conditions applied by the penalty method, switching
// between gosl's direct sparse solver (la.LinSol, grounded on the
// gofem's fem/solver.go InitR/Fact/SolveR sequence) and a hand-rolled
// preconditioned conjugate-gradient solver for large systems. gosl's
// public la.LinSol surface
// only exposes direct factorisation; no iterative solver is available in
// gosl, so PCG+ILU(0) here is hand-rolled on top of the COO list below,
// not a port of an unseen library API.
package linsolver

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// DirectDOFThreshold is the DOF count below which the direct solver is
// used; at or above it, PCG+ILU(0) takes over.
const DirectDOFThreshold = 50000

// Penalty is the multiplier applied to the diagonal for Dirichlet rows
// (gofem's essenbcs.go penalty-method constant scaled up for FEM
// stiffness magnitudes).
const Penalty = 1e12

// BC is one essential boundary condition: global DOF index and its
// prescribed value.
type BC struct {
	DOF   int
	Value float64
}

// COO is a plain row/col/val coordinate-format matrix. Package assembly
// builds only a COO; ToTriplet converts it for the direct solver, so the
// iterative path below never needs to read entries back out of
// la.Triplet -- gosl's la.Triplet is a write-only accumulator
// (Init/Put) consumed by la.LinSol, with no public entry getter, so
// this solver keeps its own coordinate list.
type COO struct {
	N    int
	Rows []int
	Cols []int
	Vals []float64
}

// NewCOO allocates a COO with room for nnz entries.
func NewCOO(n, nnz int) *COO {
	return &COO{N: n, Rows: make([]int, 0, nnz), Cols: make([]int, 0, nnz), Vals: make([]float64, 0, nnz)}
}

// Put appends one entry (duplicates at the same (i,j) are summed by the
// consumer, matching la.Triplet's accumulation semantics).
func (c *COO) Put(i, j int, v float64) {
	c.Rows = append(c.Rows, i)
	c.Cols = append(c.Cols, j)
	c.Vals = append(c.Vals, v)
}

// ToTriplet builds the la.Triplet gosl's direct solver expects.
func (c *COO) ToTriplet() *la.Triplet {
	T := new(la.Triplet)
	T.Init(c.N, c.N, len(c.Vals))
	for i := range c.Vals {
		T.Put(c.Rows[i], c.Cols[i], c.Vals[i])
	}
	return T
}

// ApplyDirichletPenalty scales the diagonal entry of every fixed DOF by
// Penalty and sets the corresponding residual entry so the system solves
// to (approximately) the prescribed value, following gofem's
// essential-BC penalty technique (fem/essenbcs.go).
func ApplyDirichletPenalty(K *COO, R []float64, bcs []BC) {
	fixed := make(map[int]float64, len(bcs))
	for _, bc := range bcs {
		fixed[bc.DOF] = bc.Value
	}
	diag := make(map[int]float64)
	for i := range K.Vals {
		if K.Rows[i] == K.Cols[i] {
			if math.Abs(K.Vals[i]) > diag[K.Rows[i]] {
				diag[K.Rows[i]] = math.Abs(K.Vals[i])
			}
		}
	}
	for dof, val := range fixed {
		mag := diag[dof]
		if mag == 0 {
			mag = 1.0
		}
		K.Put(dof, dof, mag*Penalty)
		R[dof] = mag * Penalty * val
	}
}

// Solve solves K*x = R, selecting the direct solver for systems below
// DirectDOFThreshold DOFs and PCG+ILU(0) above it.
func Solve(K *COO, R []float64) ([]float64, error) {
	if K.N < DirectDOFThreshold {
		return solveDirect(K, R)
	}
	x, _, err := PCG(K, R, nil, 1e-10, 5000)
	if err != nil {
		return nil, chk.Err("PCG failed on a %d-DOF system: %v", K.N, err)
	}
	return x, nil
}

// solveDirect factorises and solves K*x=R with gosl's direct sparse
// solver, mirroring gofem's fem/solver.go InitR/Fact/SolveR call
// sequence.
func solveDirect(K *COO, R []float64) ([]float64, error) {
	T := K.ToTriplet()
	solver := la.GetSolver("umfpack")
	if solver == nil {
		solver = la.GetSolver("mumps")
	}
	if solver == nil {
		return nil, chk.Err("no direct sparse solver is registered")
	}
	defer solver.Clean()
	symmetric, verbose, timing := false, false, false
	if err := solver.InitR(T, symmetric, verbose, timing); err != nil {
		return nil, chk.Err("direct solver init failed: %v", err)
	}
	if err := solver.Fact(); err != nil {
		return nil, chk.Err("direct solver factorisation failed: %v", err)
	}
	x := make([]float64, K.N)
	if err := solver.SolveR(x, R, false); err != nil {
		return nil, chk.Err("direct solver solve failed: %v", err)
	}
	return x, nil
}

// toCSR converts the coordinate list into compressed sparse row form for
// the matrix-vector products PCG needs, summing duplicate entries.
func toCSR(K *COO) (rowStart []int, colIdx []int, vals []float64, n int) {
	n = K.N
	counts := make([]int, n+1)
	nz := len(K.Vals)
	for i := 0; i < nz; i++ {
		counts[K.Rows[i]+1]++
	}
	for i := 0; i < n; i++ {
		counts[i+1] += counts[i]
	}
	rowStart = make([]int, n+1)
	copy(rowStart, counts)
	colIdx = make([]int, nz)
	vals = make([]float64, nz)
	cursor := make([]int, n)
	copy(cursor, rowStart[:n])
	for i := 0; i < nz; i++ {
		r := K.Rows[i]
		pos := cursor[r]
		colIdx[pos] = K.Cols[i]
		vals[pos] = K.Vals[i]
		cursor[r]++
	}
	return
}

func matVec(rowStart, colIdx []int, vals []float64, x []float64) []float64 {
	n := len(rowStart) - 1
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		acc := 0.0
		for k := rowStart[i]; k < rowStart[i+1]; k++ {
			acc += vals[k] * x[colIdx[k]]
		}
		y[i] = acc
	}
	return y
}

// ilu0 builds an incomplete LU factorisation with zero fill-in of a CSR
// matrix, and returns a preconditioner application function. It takes no
// fill-factor parameter: the same ILU(0) is built at every system size,
// with no size-dependent fill schedule and no Jacobi alternative.
func ilu0(rowStart, colIdx []int, vals []float64, n int) func(r []float64) []float64 {
	lu := make([]float64, len(vals))
	copy(lu, vals)
	colOf := func(row, col int) int {
		for k := rowStart[row]; k < rowStart[row+1]; k++ {
			if colIdx[k] == col {
				return k
			}
		}
		return -1
	}
	for i := 0; i < n; i++ {
		for k := rowStart[i]; k < rowStart[i+1]; k++ {
			j := colIdx[k]
			if j >= i {
				continue
			}
			djj := colOf(j, j)
			if djj < 0 || lu[djj] == 0 {
				continue
			}
			lu[k] /= lu[djj]
			for m := rowStart[i]; m < rowStart[i+1]; m++ {
				col := colIdx[m]
				if col <= j {
					continue
				}
				jm := colOf(j, col)
				if jm >= 0 {
					lu[m] -= lu[k] * lu[jm]
				}
			}
		}
	}
	return func(r []float64) []float64 {
		y := make([]float64, n)
		copy(y, r)
		for i := 0; i < n; i++ {
			for k := rowStart[i]; k < rowStart[i+1]; k++ {
				if colIdx[k] < i {
					y[i] -= lu[k] * y[colIdx[k]]
				}
			}
		}
		z := make([]float64, n)
		for i := n - 1; i >= 0; i-- {
			acc := y[i]
			diag := 1.0
			for k := rowStart[i]; k < rowStart[i+1]; k++ {
				if colIdx[k] > i {
					acc -= lu[k] * z[colIdx[k]]
				} else if colIdx[k] == i {
					diag = lu[k]
				}
			}
			if diag == 0 {
				diag = 1.0
			}
			z[i] = acc / diag
		}
		return z
	}
}

// PCG solves K*x=b with the preconditioned conjugate gradient method,
// using ILU(0) as preconditioner. x0 may be nil for a zero initial
// guess. Returns the solution and the iteration count.
func PCG(K *COO, b []float64, x0 []float64, tol float64, maxIter int) ([]float64, int, error) {
	rowStart, colIdx, vals, n := toCSR(K)
	x := make([]float64, n)
	if x0 != nil {
		copy(x, x0)
	}
	precond := ilu0(rowStart, colIdx, vals, n)

	r := make([]float64, n)
	Ax := matVec(rowStart, colIdx, vals, x)
	for i := range r {
		r[i] = b[i] - Ax[i]
	}
	z := precond(r)
	p := make([]float64, n)
	copy(p, z)
	rz := dot(r, z)
	bnorm := math.Sqrt(dot(b, b))
	if bnorm == 0 {
		bnorm = 1
	}
	for iter := 0; iter < maxIter; iter++ {
		if math.Sqrt(dot(r, r))/bnorm < tol {
			return x, iter, nil
		}
		Ap := matVec(rowStart, colIdx, vals, p)
		alpha := rz / dot(p, Ap)
		for i := 0; i < n; i++ {
			x[i] += alpha * p[i]
			r[i] -= alpha * Ap[i]
		}
		z = precond(r)
		rzNew := dot(r, z)
		beta := rzNew / rz
		for i := 0; i < n; i++ {
			p[i] = z[i] + beta*p[i]
		}
		rz = rzNew
	}
	if math.Sqrt(dot(r, r))/bnorm < tol*10 {
		return x, maxIter, nil
	}
	return x, maxIter, chk.Err("PCG did not converge in %d iterations", maxIter)
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
