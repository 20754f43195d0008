// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package arclength implements Crisfield's spherical arc-length method for
// tracing equilibrium paths through snap-through/snap-back instabilities
// that a load-controlled Newton-Raphson solve (package statics) cannot
// pass. The predictor/corrector structure and the Ritto-Correa update
// used to pick the physically consistent root of the arc-length
// constraint's quadratic are grounded on the Newton-Raphson iteration
// loop in gofem's fem/solver.go, extended with the load-factor DOF
// gofem's fixed-load solver does not carry.
package arclength

import (
	"math"

	"github.com/cpmech/gosl/chk"

	"github.com/dpedroso-lab/spinefem/assembly"
	"github.com/dpedroso-lab/spinefem/linsolver"
	"github.com/dpedroso-lab/spinefem/mesh"
)

// Options controls the arc-length predictor/corrector loop.
type Options struct {
	MaxIter       int
	Tol           float64
	InitialDl     float64
	MaxDl, MinDl  float64
	DesiredIters  int     // iteration count the step-length adaptation targets
	MaxLoadFactor float64 // |lambda| is clamped to this; tracing stops there
}

func DefaultOptions() Options {
	return Options{MaxIter: 30, Tol: 1e-6, InitialDl: 0.1, MaxDl: 1.0, MinDl: 1e-4, DesiredIters: 5, MaxLoadFactor: 1.0}
}

// Point is one accepted point on the equilibrium path.
type Point struct {
	LoadFactor float64
	U          [][]float64 // copy of nodal displacements at this point
}

// Path accumulates accepted equilibrium points.
type Path struct {
	Points []Point
}

// Solver drives the arc-length method over a mesh/assembler pair. Qref is
// the reference external load pattern (unit load multiplied by the
// current load factor lambda).
type Solver struct {
	M       *mesh.Mesh
	A       *assembly.Assembler
	Tangent func(matID, gpIdx int, eps, sig []float64) ([][]float64, error)
	Qref    []float64 // reference load vector, length NDOF

	dl     float64
	lambda float64
	Path   Path

	// predictor sign continuation: the previous accepted increment
	prevDu      []float64
	prevDlambda float64
}

func NewSolver(m *mesh.Mesh, a *assembly.Assembler, tangent func(matID, gpIdx int, eps, sig []float64) ([][]float64, error), qref []float64, opts Options) *Solver {
	return &Solver{M: m, A: a, Tangent: tangent, Qref: qref, dl: opts.InitialDl}
}

// Step performs one arc-length increment: predictor + corrector iterations
// under the spherical constraint ||du||^2 + psi^2*dlambda^2*||Qref||^2 = dl^2.
// psi is fixed at 1 (classical Crisfield spherical, not cylindrical).
func (o *Solver) Step(opts Options) error {
	m := o.M
	bcs := freeDOFs(m)
	qn := normSub(o.Qref, bcs)

	// predictor: solve K0 * duBar = Qref for the tangential direction
	K, err := o.A.Stiffness(o.Tangent)
	if err != nil {
		return err
	}
	duBar, err := solveZeroed(K, o.Qref, bcs)
	if err != nil {
		return chk.Err("arc-length predictor solve failed: %v", err)
	}
	dlambda := o.dl / math.Sqrt(dotSub(duBar, duBar, bcs)+qn*qn)
	// continue along the path: the predictor keeps the direction of the
	// previous accepted increment (positive on the first step)
	if o.prevDu != nil {
		if dotSub(duBar, o.prevDu, bcs)+qn*qn*o.prevDlambda < 0 {
			dlambda = -dlambda
		}
	}
	if opts.MaxLoadFactor > 0 {
		if o.lambda+dlambda > opts.MaxLoadFactor {
			dlambda = opts.MaxLoadFactor - o.lambda
		} else if o.lambda+dlambda < -opts.MaxLoadFactor {
			dlambda = -opts.MaxLoadFactor - o.lambda
		}
	}
	du := scale(duBar, dlambda)
	applyIncrement(m, du, dlambda, o.Qref)
	o.lambda += dlambda

	lastDu := du
	stepDlambda := dlambda

	for it := 0; it < opts.MaxIter; it++ {
		if err := o.A.UpdateStresses(); err != nil {
			return err
		}
		o.A.InternalForce()
		R := make([]float64, m.NDOF())
		for i := 0; i < m.NNodes; i++ {
			for d := 0; d < m.Dim; d++ {
				gi := i*m.Dim + d
				R[gi] = o.lambda*o.Qref[gi] - m.F[i][d]
			}
		}
		res := normSub(R, bcs)
		if res < opts.Tol*math.Max(qn, 1e-12) {
			o.prevDu = append([]float64(nil), lastDu...)
			o.prevDlambda = stepDlambda
			o.commit()
			o.adaptStepLength(it, opts)
			return nil
		}

		K, err = o.A.Stiffness(o.Tangent)
		if err != nil {
			return err
		}
		duR, err := solveZeroed(K, R, bcs)
		if err != nil {
			return chk.Err("arc-length corrector solve (residual) failed: %v", err)
		}
		duBar, err = solveZeroed(K, o.Qref, bcs)
		if err != nil {
			return chk.Err("arc-length corrector solve (reference) failed: %v", err)
		}

		// spherical constraint: solve the quadratic for ddlambda, pick the
		// root that keeps the angle with the previous increment acute
		// (Ritto-Correa normal-plane update avoids the spurious root).
		a1 := dotSub(duBar, duBar, bcs) + qn*qn
		trial := addScaled(lastDu, duR, 1)
		a2 := 2.0 * (dotSub(trial, duBar, bcs) + qn*qn*stepDlambda)
		a3 := dotSub(trial, trial, bcs) + qn*qn*stepDlambda*stepDlambda - o.dl*o.dl
		disc := a2*a2 - 4.0*a1*a3
		var ddlambda float64
		if disc < 0 {
			// no real root: contract the step and let the caller retry
			o.dl *= 0.5
			return chk.Err("arc-length: no real root at it=%d, contracting step", it)
		}
		root1 := (-a2 + math.Sqrt(disc)) / (2.0 * a1)
		root2 := (-a2 - math.Sqrt(disc)) / (2.0 * a1)
		dot1 := dotSub(addScaled(duR, duBar, root1), lastDu, bcs)
		dot2 := dotSub(addScaled(duR, duBar, root2), lastDu, bcs)
		if dot1 >= dot2 {
			ddlambda = root1
		} else {
			ddlambda = root2
		}

		ddu := addScaled(duR, duBar, ddlambda)
		applyIncrement(m, ddu, ddlambda, o.Qref)
		o.lambda += ddlambda
		stepDlambda += ddlambda
		lastDu = addScaled(lastDu, ddu, 1)
	}
	return chk.Err("arc-length corrector did not converge in %d iterations", opts.MaxIter)
}

// EquilibriumPath extracts the (displacement, load factor) series for one
// nodal DOF from the accepted equilibrium points, for load-displacement
// curve plotting and limit-point inspection.
func (o *Solver) EquilibriumPath(node, dof int) (u, lambda []float64) {
	for _, p := range o.Path.Points {
		u = append(u, p.U[node][dof])
		lambda = append(lambda, p.LoadFactor)
	}
	return
}

// LoadFactor returns the current committed load factor.
func (o *Solver) LoadFactor() float64 { return o.lambda }

func (o *Solver) commit() {
	u := make([][]float64, o.M.NNodes)
	for i := range o.M.U {
		u[i] = append([]float64(nil), o.M.U[i]...)
	}
	o.Path.Points = append(o.Path.Points, Point{LoadFactor: o.lambda, U: u})
}

// adaptStepLength grows/shrinks dl toward the desired iteration count,
// following the standard arc-length adaptation rule.
func (o *Solver) adaptStepLength(itUsed int, opts Options) {
	if itUsed == 0 {
		itUsed = 1
	}
	factor := math.Sqrt(float64(opts.DesiredIters) / float64(itUsed))
	o.dl *= factor
	if o.dl > opts.MaxDl {
		o.dl = opts.MaxDl
	}
	if o.dl < opts.MinDl {
		o.dl = opts.MinDl
	}
}

func applyIncrement(m *mesh.Mesh, du []float64, dlambda float64, qref []float64) {
	for i := 0; i < m.NNodes; i++ {
		for d := 0; d < m.Dim; d++ {
			m.U[i][d] += du[i*m.Dim+d]
		}
	}
	for i := 0; i < m.NNodes; i++ {
		for d := 0; d < m.Dim; d++ {
			gi := i*m.Dim + d
			m.Fext[i][d] = dlambda*qref[gi] + m.Fext[i][d]
		}
	}
	m.ApplyBoundaryConditions()
	m.UpdateCurrentConfig()
	m.ComputeDeformationGradient()
}

func freeDOFs(m *mesh.Mesh) map[int]bool {
	fixed := map[int]bool{}
	for i := 0; i < m.NNodes; i++ {
		for d := 0; d < m.Dim; d++ {
			if m.Fixed[i][d] {
				fixed[i*m.Dim+d] = true
			}
		}
	}
	return fixed
}

func solveZeroed(K *linsolver.COO, R []float64, fixed map[int]bool) ([]float64, error) {
	Rc := make([]float64, len(R))
	copy(Rc, R)
	var bcs []linsolver.BC
	for dof := range fixed {
		bcs = append(bcs, linsolver.BC{DOF: dof, Value: 0})
	}
	Kc := &linsolver.COO{N: K.N, Rows: append([]int(nil), K.Rows...), Cols: append([]int(nil), K.Cols...), Vals: append([]float64(nil), K.Vals...)}
	linsolver.ApplyDirichletPenalty(Kc, Rc, bcs)
	return linsolver.Solve(Kc, Rc)
}

func dotSub(a, b []float64, fixed map[int]bool) float64 {
	s := 0.0
	for i := range a {
		if fixed[i] {
			continue
		}
		s += a[i] * b[i]
	}
	return s
}

func normSub(a []float64, fixed map[int]bool) float64 {
	return math.Sqrt(dotSub(a, a, fixed))
}

func scale(a []float64, f float64) []float64 {
	out := make([]float64, len(a))
	for i, v := range a {
		out[i] = v * f
	}
	return out
}

func addScaled(a, b []float64, f float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + f*b[i]
	}
	return out
}
