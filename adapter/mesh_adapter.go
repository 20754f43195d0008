// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package adapter

import (
	"context"
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"

	"github.com/dpedroso-lab/spinefem/assembly"
	"github.com/dpedroso-lab/spinefem/dynamics"
	"github.com/dpedroso-lab/spinefem/femrt"
	"github.com/dpedroso-lab/spinefem/linsolver"
	"github.com/dpedroso-lab/spinefem/mesh"
	"github.com/dpedroso-lab/spinefem/msolid"
	"github.com/dpedroso-lab/spinefem/statics"
)

// MeshAdapter wraps a FEM mesh.Mesh + assembly.Assembler so package scene
// can drive it through the same Adapter facade as particle-based bodies.
type MeshAdapter struct {
	Mesh    *mesh.Mesh
	Asm     *assembly.Assembler
	Runtime *femrt.Runtime
	Opts    statics.Options

	// Explicit drives Step with central-difference time integration when
	// set; Implicit drives it with Newmark-beta instead. Solve always uses
	// implicit Newton-Raphson regardless of either (a body can be
	// quasi-statically settled and also own a transient integrator). At
	// most one of Explicit/Implicit should be set on a given adapter.
	Explicit *dynamics.CentralDifference
	Implicit *dynamics.Newmark

	baseExt  [][]float64
	stableDt float64
}

// NewMeshAdapter captures the mesh's currently-applied external load as
// the baseline that ClearContactForces restores (contact forces are
// additive on top of it).
func NewMeshAdapter(m *mesh.Mesh, mats assembly.MaterialSet, rt *femrt.Runtime, opts statics.Options) *MeshAdapter {
	base := make([][]float64, m.NNodes)
	for i := range base {
		base[i] = append([]float64(nil), m.Fext[i]...)
	}
	asm := assembly.New(m, mats)
	for _, mt := range mats {
		if _, large := mt.(msolid.LargeStrain); large {
			asm.IncludeGeometric = true
			break
		}
	}
	return &MeshAdapter{
		Mesh: m, Asm: asm, Runtime: rt, Opts: opts,
		baseExt: base, stableDt: math.Inf(1),
	}
}

// SetStableDt records an externally computed explicit stability bound
// (e.g. dynamics.CriticalTimeStep), since a mesh body with no Explicit
// integrator attached has no stepping-rate opinion of its own.
func (o *MeshAdapter) SetStableDt(dt float64) { o.stableDt = dt }

func (o *MeshAdapter) Solve(ctx context.Context) error {
	progress := func(iter int, residual float64) bool {
		return ctx.Err() == nil
	}
	res, err := statics.Solve(o.Runtime, o.Mesh, o.Asm, tangentFor(o.Asm), o.Opts, progress)
	if err != nil {
		return err
	}
	if res.Cancelled {
		return ctx.Err()
	}
	return nil
}

func (o *MeshAdapter) Step(ctx context.Context, dt float64) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	switch {
	case o.Implicit != nil:
		if err := o.Asm.UpdateStresses(); err != nil {
			return err
		}
		K, err := o.Asm.Stiffness(tangentFor(o.Asm))
		if err != nil {
			return err
		}
		return o.Implicit.Step(o.Mesh, dt, K, meshBCs(o.Mesh))
	case o.Explicit != nil:
		if err := o.Asm.UpdateStresses(); err != nil {
			return err
		}
		o.Asm.InternalForce()
		return o.Explicit.Step(o.Mesh, dt, o.Mesh.F)
	default:
		return o.Solve(ctx)
	}
}

// meshBCs collects the essential (Dirichlet) boundary conditions a
// dynamics integrator needs in linsolver.BC form, mirroring package
// statics' own collectBCs (each driver owns this lookup since neither
// side depends on the other).
func meshBCs(m *mesh.Mesh) []linsolver.BC {
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

func (o *MeshAdapter) StableDt() float64 { return o.stableDt }

func (o *MeshAdapter) Displacements() [][]float64 { return o.Mesh.U }

// Velocities returns whichever time-integrator's tracked velocity is
// attached (Implicit takes precedence over Explicit since a body should
// only carry one), otherwise zeros: a mesh driven only through
// statics.Solve has no velocity state to report.
func (o *MeshAdapter) Velocities() [][]float64 {
	switch {
	case o.Implicit != nil:
		return o.Implicit.Vel
	case o.Explicit != nil:
		return o.Explicit.Vel
	}
	zeros := make([][]float64, o.Mesh.NNodes)
	for i := range zeros {
		zeros[i] = make([]float64, o.Mesh.Dim)
	}
	return zeros
}

// Stress averages each element's Gauss-point stresses to its own nodes,
// then averages contributions from every element sharing a node (no
// gosl extrapolator API covers this, so a plain arithmetic nodal
// average stands in for gofem's shape-function extrapolation matrix).
func (o *MeshAdapter) Stress() [][]float64 {
	m := o.Mesh
	sum := la.MatAlloc(m.NNodes, m.NStress)
	count := make([]int, m.NNodes)
	for e := 0; e < m.NElems; e++ {
		for gp := 0; gp < m.NGauss; gp++ {
			idx := m.GPIndex(e, gp)
			for _, v := range m.Elems[e] {
				for k := 0; k < m.NStress; k++ {
					sum[v][k] += m.Sig[idx][k]
				}
				count[v]++
			}
		}
	}
	for i := 0; i < m.NNodes; i++ {
		if count[i] == 0 {
			continue
		}
		for k := range sum[i] {
			sum[i][k] /= float64(count[i])
		}
	}
	return sum
}

// Damage reports zero for every node: none of the material models wired
// into package msolid expose a scalar damage state yet.
func (o *MeshAdapter) Damage() []float64 { return make([]float64, o.Mesh.NNodes) }

func (o *MeshAdapter) CurrentPositions() [][]float64   { return o.Mesh.CurrentPositions() }
func (o *MeshAdapter) ReferencePositions() [][]float64 { return o.Mesh.X }

func (o *MeshAdapter) InjectContactForces(idx int, force []float64) {
	for d, v := range force {
		o.Mesh.Fext[idx][d] += v
	}
}

func (o *MeshAdapter) ClearContactForces() {
	for i := range o.baseExt {
		copy(o.Mesh.Fext[i], o.baseExt[i])
	}
}

// tangentFor dispatches the Newton tangent callback assembly.Stiffness
// needs to each material's own analytic Tangent where one exists
// (Elastic, J2Plasticity, TransverseIsotropic), falling back to a
// central-difference numerical tangent for hyperelastic models that
// only expose StressLargeStrain (none of NeoHookean/MooneyRivlin/Ogden
// carry a closed-form material tangent in this port).
func tangentFor(a *assembly.Assembler) func(matID, gpIdx int, eps, sig []float64) ([][]float64, error) {
	return func(matID, gpIdx int, eps, sig []float64) ([][]float64, error) {
		mat, ok := a.Mats[matID]
		if !ok {
			return nil, chk.Err("no material registered for matID %d", matID)
		}
		switch mt := mat.(type) {
		case *msolid.Elastic:
			D := la.MatAlloc(len(eps), len(eps))
			if err := mt.Tangent(D); err != nil {
				return nil, err
			}
			return D, nil
		case *msolid.J2Plasticity:
			st, ok := a.J2St[gpIdx]
			if !ok {
				st = &msolid.J2State{}
				a.J2St[gpIdx] = st
			}
			return mt.Tangent(st, len(sig))
		case *msolid.TransverseIsotropic:
			return mt.Tangent(), nil
		case msolid.LargeStrain:
			return numericalTangent(mt, eps)
		default:
			return nil, chk.Err("no tangent available for matID %d", matID)
		}
	}
}

func voigtToF(eps []float64, nsig int) [9]float64 {
	var F [9]float64
	F[0], F[4], F[8] = 1, 1, 1
	if nsig == 3 {
		F[0] += eps[0]
		F[4] += eps[1]
		F[1] += eps[2] / 2
		F[3] += eps[2] / 2
		return F
	}
	F[0] += eps[0]
	F[4] += eps[1]
	F[8] += eps[2]
	F[1] += eps[3] / 2
	F[3] += eps[3] / 2
	F[5] += eps[4] / 2
	F[7] += eps[4] / 2
	F[2] += eps[5] / 2
	F[6] += eps[5] / 2
	return F
}

func numericalTangent(mt msolid.LargeStrain, eps []float64) ([][]float64, error) {
	n := len(eps)
	const h = 1e-6
	D := la.MatAlloc(n, n)
	for j := 0; j < n; j++ {
		epsP := append([]float64(nil), eps...)
		epsM := append([]float64(nil), eps...)
		epsP[j] += h
		epsM[j] -= h
		sigP, err := mt.StressLargeStrain(voigtToF(epsP, n))
		if err != nil {
			return nil, err
		}
		sigM, err := mt.StressLargeStrain(voigtToF(epsM, n))
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			D[i][j] = (sigP[i] - sigM[i]) / (2 * h)
		}
	}
	return D, nil
}
