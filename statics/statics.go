// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package statics drives quasi-static equilibrium: a plain linear solve
// for small-deformation linear-elastic problems, and Newton-Raphson with
// backtracking line search for everything else; when every line-search
// factor leaves a failed or non-finite stress update, the full Newton
// step is applied anyway (there is no separate fixed-point mode).
// Grounded on the iteration loop in gofem's fem/solver.go Run: a
// residual-norm convergence check on fb, Jacobian reassembly per
// iteration and a linear solve; convergence is judged on the residual
// alone (Options.Rtol is not read).
package statics

import (
	"math"
	"time"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"

	"github.com/dpedroso-lab/spinefem/assembly"
	"github.com/dpedroso-lab/spinefem/femrt"
	"github.com/dpedroso-lab/spinefem/linsolver"
	"github.com/dpedroso-lab/spinefem/mesh"
)

// Options controls the Newton-Raphson loop (gofem's inp.Solver block,
// trimmed to the fields this port actually drives).
type Options struct {
	MaxIter  int
	FbTol    float64 // relative residual tolerance
	FbMin    float64 // absolute residual floor
	Rtol     float64 // relative tolerance on displacement increment
	Verbose  bool
}

// DefaultOptions mirrors gofem's inp defaults (fem/solver.go).
func DefaultOptions() Options {
	return Options{MaxIter: 20, FbTol: 1e-5, FbMin: 1e-10, Rtol: 1e-6}
}

// lineSearchFactors is the backtracking schedule.
var lineSearchFactors = []float64{1.0, 0.5, 0.25, 0.125, 0.0625}

// Result summarizes one Solve call. Residual and RelResidual are the
// last evaluated infinity-norm and its ratio to the first iterate's;
// Cancelled is set when the progress callback asked to stop, which is a
// status, not an error.
type Result struct {
	Converged  bool
	Iterations int
	Residual        float64
	RelResidual     float64
	Elapsed         float64 // seconds
	Cancelled       bool
	ResidualHistory []float64
	EnergyBalance   EnergyBalance
}

// EnergyBalance tracks external work done by applied loads versus
// internal strain energy stored, useful for sanity-checking convergence
// independent of the force-residual norm.
type EnergyBalance struct {
	ExternalWork float64
	InternalEnergy float64
}

// Imbalance returns (external - internal) / max(external, internal, eps),
// a dimensionless check that should trend to zero at a converged,
// conservative equilibrium state.
func (e EnergyBalance) Imbalance() float64 {
	denom := math.Max(math.Abs(e.ExternalWork), math.Abs(e.InternalEnergy))
	if denom < 1e-30 {
		return 0
	}
	return (e.ExternalWork - e.InternalEnergy) / denom
}

// ProgressFunc is called once per iteration; returning false cancels the
// solve; cancellation is reported as a status, never a panic.
type ProgressFunc func(iter int, residual float64) (keepGoing bool)

// SolveLinear performs a single linear-elastic solve: build K, apply
// Dirichlet penalty rows, solve, write u back into the mesh.
func SolveLinear(m *mesh.Mesh, a *assembly.Assembler, tangent func(matID, gpIdx int, eps, sig []float64) ([][]float64, error)) error {
	if err := a.UpdateStresses(); err != nil {
		return err
	}
	a.InternalForce()
	R := make([]float64, m.NDOF())
	for i := 0; i < m.NNodes; i++ {
		for d := 0; d < m.Dim; d++ {
			R[i*m.Dim+d] = m.Fext[i][d] - m.F[i][d]
		}
	}
	K, err := a.Stiffness(tangent)
	if err != nil {
		return err
	}
	bcs := collectBCs(m)
	linsolver.ApplyDirichletPenalty(K, R, bcs)
	du, err := linsolver.Solve(K, R)
	if err != nil {
		return chk.Err("linear solve failed: %v", err)
	}
	applyDu(m, du)
	return nil
}

// Solve runs Newton-Raphson to equilibrium for a (possibly nonlinear)
// material set, with backtracking line search; when every line-search
// factor leaves a failed or non-finite stress update, the full Newton
// step is applied.
func Solve(rt *femrt.Runtime, m *mesh.Mesh, a *assembly.Assembler,
	tangent func(matID, gpIdx int, eps, sig []float64) ([][]float64, error),
	opts Options, progress ProgressFunc) (res Result, err error) {

	bcs := collectBCs(m)
	var largFb0 float64
	start := time.Now()
	defer func() { res.Elapsed = time.Since(start).Seconds() }()

	for it := 0; it < opts.MaxIter; it++ {
		if err := a.UpdateStresses(); err != nil {
			return res, err
		}
		a.InternalForce()
		R := make([]float64, m.NDOF())
		for i := 0; i < m.NNodes; i++ {
			for d := 0; d < m.Dim; d++ {
				R[i*m.Dim+d] = m.Fext[i][d] - m.F[i][d]
			}
		}
		for _, bc := range bcs {
			R[bc.DOF] = 0
		}
		largFb := maxAbs(R)
		res.ResidualHistory = append(res.ResidualHistory, largFb)
		res.Residual = largFb
		if it == 0 {
			largFb0 = largFb
			res.RelResidual = 1
			if largFb0 < opts.FbMin {
				a.CommitJ2()
				res.Converged, res.Iterations = true, 0
				return res, nil
			}
		} else {
			res.RelResidual = largFb / largFb0
			if largFb < opts.FbTol*largFb0 || largFb < opts.FbMin {
				a.CommitJ2()
				res.Converged, res.Iterations = true, it
				return res, nil
			}
		}
		if progress != nil && !progress(it, largFb) {
			res.Cancelled, res.Iterations = true, it
			return res, nil
		}
		if rt.Verbose {
			rt.Infof("it=%d |R|=%.6e\n", it, largFb)
		}

		K, err := a.Stiffness(tangent)
		if err != nil {
			return res, err
		}
		Rbc := make([]float64, len(R))
		copy(Rbc, R)
		linsolver.ApplyDirichletPenalty(K, Rbc, bcs)
		du, err := linsolver.Solve(K, Rbc)
		if err != nil {
			return res, chk.Err("Newton step %d: %v", it, err)
		}

		if !lineSearchAndApply(m, a, du, largFb, opts) {
			// fallback: take the full Newton step anyway (the tangent is
			// reassembled next iteration)
			applyDu(m, du)
			utl.Pfgrey(" . . . line search stalled at it=%d, falling back to full step . . .\n", it)
		}
	}
	res.Iterations = opts.MaxIter
	res.Converged = false
	return res, chk.Err("Newton-Raphson did not converge in %d iterations", opts.MaxIter)
}

// lineSearchAndApply tries the backtracking schedule and applies the
// first factor whose residual norm (free DOFs only) does not exceed
// baseResidual, or the smallest factor if none does; it returns false,
// with U restored, only when every factor leaves a failed or non-finite
// stress update.
func lineSearchAndApply(m *mesh.Mesh, a *assembly.Assembler, du []float64, baseResidual float64, opts Options) bool {
	uBackup := backupU(m)
	for _, f := range lineSearchFactors {
		restoreU(m, uBackup)
		scaled := make([]float64, len(du))
		for i, v := range du {
			scaled[i] = v * f
		}
		applyDu(m, scaled)
		if err := a.UpdateStresses(); err != nil {
			continue
		}
		if hasNaNOrInf(m) {
			continue
		}
		a.InternalForce()
		r := 0.0
		for i := 0; i < m.NNodes; i++ {
			for d := 0; d < m.Dim; d++ {
				if m.Fixed[i][d] {
					continue
				}
				v := m.Fext[i][d] - m.F[i][d]
				if math.Abs(v) > r {
					r = math.Abs(v)
				}
			}
		}
		if r <= baseResidual || f == lineSearchFactors[len(lineSearchFactors)-1] {
			return true
		}
	}
	restoreU(m, uBackup)
	return false
}

func hasNaNOrInf(m *mesh.Mesh) bool {
	for _, row := range m.Sig {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return true
			}
		}
	}
	return false
}

func backupU(m *mesh.Mesh) [][]float64 {
	out := make([][]float64, m.NNodes)
	for i := range m.U {
		out[i] = append([]float64(nil), m.U[i]...)
	}
	return out
}

func restoreU(m *mesh.Mesh, backup [][]float64) {
	for i := range backup {
		copy(m.U[i], backup[i])
	}
	m.UpdateCurrentConfig()
	m.ComputeDeformationGradient()
}

func applyDu(m *mesh.Mesh, du []float64) {
	for i := 0; i < m.NNodes; i++ {
		for d := 0; d < m.Dim; d++ {
			m.U[i][d] += du[i*m.Dim+d]
		}
	}
	m.ApplyBoundaryConditions()
	m.UpdateCurrentConfig()
	m.ComputeDeformationGradient()
}

func maxAbs(v []float64) float64 {
	m := 0.0
	for _, x := range v {
		if a := math.Abs(x); a > m {
			m = a
		}
	}
	return m
}

func collectBCs(m *mesh.Mesh) []linsolver.BC {
	var bcs []linsolver.BC
	for i := 0; i < m.NNodes; i++ {
		for d := 0; d < m.Dim; d++ {
			if m.Fixed[i][d] {
				bcs = append(bcs, linsolver.BC{DOF: i*m.Dim + d, Value: 0})
			}
		}
	}
	return bcs
}

// ComputeEnergyBalance integrates external work (1/2 Fext . U, exact for a
// linear response to loads applied from zero) and internal strain energy
// (1/2 sigma:eps per Gauss point) over the mesh.
func ComputeEnergyBalance(m *mesh.Mesh) EnergyBalance {
	var eb EnergyBalance
	for i := 0; i < m.NNodes; i++ {
		for d := 0; d < m.Dim; d++ {
			eb.ExternalWork += 0.5 * m.Fext[i][d] * m.U[i][d]
		}
	}
	for idx, sig := range m.Sig {
		eps := m.Eps[idx]
		w := m.WdetJ[idx]
		density := 0.0
		for k := range sig {
			density += sig[k] * eps[k]
		}
		eb.InternalEnergy += 0.5 * density * w
	}
	return eb
}
