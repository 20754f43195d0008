// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coupling

import (
	"context"
	"math"

	"github.com/cpmech/gosl/chk"

	"github.com/dpedroso-lab/spinefem/adapter"
	"github.com/dpedroso-lab/spinefem/assembly"
	"github.com/dpedroso-lab/spinefem/femrt"
	"github.com/dpedroso-lab/spinefem/mesh"
	"github.com/dpedroso-lab/spinefem/msolid"
	"github.com/dpedroso-lab/spinefem/peridynamics"
	"github.com/dpedroso-lab/spinefem/spg"
	"github.com/dpedroso-lab/spinefem/statics"
)

// ParticleMethod selects which particle formulation a switched zone uses.
type ParticleMethod string

const (
	ParticlePD  ParticleMethod = "pd"
	ParticleSPG ParticleMethod = "spg"
)

// AutoOptions configures the automatic FEM-to-particle conversion: which
// field triggers a switch, how far the switched region is dilated, and
// the particle-side discretization parameters.
type AutoOptions struct {
	Criterion    Criterion
	Threshold    float64
	BufferLayers int

	Method            ParticleMethod
	Horizon           float64 // 0 infers 3.015x the mean element size
	CritStretch       float64 // <= 0 disables bond failure
	PlasticFailStrain float64 // SPG only, <= 0 disables
	StabG             float64 // zero-energy stabilization factor G_s, sensibly in [0.05, 0.15]
	StabC             float64 // explicit c_bond override; 0 derives it from StabG and the material

	Coupling Options
	Statics  statics.Options
}

// DefaultAutoOptions mirrors the coupling defaults used elsewhere.
func DefaultAutoOptions() AutoOptions {
	return AutoOptions{
		Criterion:    CriterionVonMises,
		BufferLayers: 1,
		Method:       ParticlePD,
		StabG:        0.1,
		Coupling:     DefaultOptions(),
		Statics:      statics.DefaultOptions(),
	}
}

// AutoResult reports what the automatic mode decided and the body that
// came out of it: the original FEM adapter when nothing switched, a pure
// particle adapter when everything did, or a CoupledAdapter otherwise.
type AutoResult struct {
	FemOnly          bool
	PdOnly           bool
	SwitchedElements int
	Iterations       int
	Converged        bool
	Split            *Split          // nil when FemOnly
	Adapter          adapter.Adapter // the body to register with a scene
}

// AutoCouple runs the automatic mode end to end: one full-FEM solve,
// switching-criteria evaluation over the resulting stress/strain field,
// zone split, and the Dirichlet-Neumann loop over the split body. When
// zero elements trip the criterion the FEM result stands as-is; when all
// of them do, the whole body is re-solved as particles.
func AutoCouple(ctx context.Context, rt *femrt.Runtime, m *mesh.Mesh, mats assembly.MaterialSet, opts AutoOptions) (*AutoResult, error) {
	fem := adapter.NewMeshAdapter(m, mats, rt, opts.Statics)
	if err := fem.Solve(ctx); err != nil {
		return nil, chk.Err("auto mode first-pass FEM solve: %v", err)
	}

	var field []float64
	var err error
	switch opts.Criterion {
	case CriterionMaxPrincipalStrain:
		field, err = ElementMaxPrincipalStrain(m)
		if err != nil {
			return nil, err
		}
	default:
		field = ElementMaxVonMises(m)
	}
	pdMask := AutoSwitch(m, opts.Criterion, field, opts.Threshold, opts.BufferLayers)
	switched := 0
	for _, on := range pdMask {
		if on {
			switched++
		}
	}

	if switched == 0 {
		return &AutoResult{FemOnly: true, Converged: true, Adapter: fem}, nil
	}

	split := SplitZones(m, pdMask)
	if switched == m.NElems {
		pb, err := buildParticleBody(m, mats, split, opts)
		if err != nil {
			return nil, err
		}
		if err := pb.body.Solve(ctx); err != nil {
			return &AutoResult{PdOnly: true, SwitchedElements: switched, Split: split, Adapter: pb.body}, err
		}
		return &AutoResult{PdOnly: true, SwitchedElements: switched, Converged: true, Split: split, Adapter: pb.body}, nil
	}

	cad, err := BuildCoupled(rt, m, mats, split, opts)
	if err != nil {
		return nil, err
	}
	iters, converged, err := cad.Driver.Run(ctx)
	res := &AutoResult{
		SwitchedElements: switched,
		Iterations:       iters,
		Converged:        converged,
		Split:            split,
		Adapter:          cad,
	}
	if err != nil {
		return res, err
	}
	return res, nil
}

// particleBody bundles a particle-side adapter with the hooks the
// Dirichlet-Neumann driver needs, hiding whether it is PD or SPG.
type particleBody struct {
	body    adapter.Adapter
	setDisp func(local int, u []float64)
	fix     func(local, dof int, value float64)
	fint    func(local int) []float64
}

// buildParticleBody constructs the particle sub-domain for split:
// particles at the split's node positions with the V_elem/npe volume
// allocation, densities and material ids inherited from the elements
// they came out of, and the original mesh's essential/natural BCs
// carried over (loads only where the FEM side does not already carry
// them).
func buildParticleBody(m *mesh.Mesh, mats assembly.MaterialSet, split *Split, opts AutoOptions) (*particleBody, error) {
	n := len(split.PdPositions)
	if n == 0 {
		return nil, chk.Err("empty particle zone")
	}

	// per-particle material id: inherited from any incident switched
	// element (ties broken by element order, deterministic)
	isFem := make([]bool, m.NElems)
	for _, ge := range split.FemElemGlobal {
		isFem[ge] = true
	}
	pmat := make([]int, n)
	density := make([]float64, n)
	assigned := make([]bool, n)
	for e := 0; e < m.NElems; e++ {
		if isFem[e] {
			continue
		}
		for _, g := range m.Elems[e] {
			if l, ok := split.PdLocalOf(g); ok && !assigned[l] {
				pmat[l] = m.MatID[e]
				assigned[l] = true
			}
		}
	}
	for l := 0; l < n; l++ {
		mat, ok := mats[pmat[l]]
		if !ok {
			return nil, chk.Err("no material registered for matID %d", pmat[l])
		}
		density[l] = mat.Density()
	}

	horizon := opts.Horizon
	if horizon <= 0 {
		horizon = 3.015 * meanElementSize(m)
	}
	stabC := opts.StabC
	if stabC <= 0 {
		if el, ok := mats[pmat[0]].(*msolid.Elastic); ok {
			stabC = peridynamics.StabilizationCoefficient(opts.StabG, el.K, el.Mu, horizon)
		}
	}

	var pb particleBody
	switch opts.Method {
	case ParticleSPG:
		sys := spg.NewSystem(m.Dim, split.PdPositions, split.PdVolumes, density, pmat, horizon, opts.CritStretch, opts.PlasticFailStrain, stabC)
		pb.body = adapter.NewSPGAdapter(sys, map[int]msolid.Material(mats))
		pb.setDisp = func(l int, u []float64) {
			for d := range u {
				sys.U[l][d] = u[d]
				sys.Fixed[l][d] = true
			}
			sys.UpdateCurrent()
		}
		pb.fix = func(l, d int, v float64) {
			sys.Fixed[l][d] = true
			sys.U[l][d] = v
		}
		pb.fint = func(l int) []float64 {
			// Fint is a force density; the interface transfer wants an
			// actual force
			out := make([]float64, len(sys.Fint[l]))
			for d, v := range sys.Fint[l] {
				out[d] = v * sys.Vol[l]
			}
			return out
		}
		applyParticleBCs(m, split, pb.fix, sys.Fext)
	default:
		sys := peridynamics.NewParticleSystem(m.Dim, split.PdPositions, split.PdVolumes, density, pmat, horizon, opts.CritStretch, stabC)
		pb.body = adapter.NewPeridynamicsAdapter(sys, map[int]msolid.Material(mats))
		pb.setDisp = func(l int, u []float64) {
			for d := range u {
				sys.U[l][d] = u[d]
				sys.Fixed[l][d] = true
			}
			sys.UpdateCurrent()
		}
		pb.fix = func(l, d int, v float64) {
			sys.Fixed[l][d] = true
			sys.U[l][d] = v
		}
		pb.fint = func(l int) []float64 {
			// Fint is a force density; the interface transfer wants an
			// actual force
			out := make([]float64, len(sys.Fint[l]))
			for d, v := range sys.Fint[l] {
				out[d] = v * sys.Vol[l]
			}
			return out
		}
		applyParticleBCs(m, split, pb.fix, sys.Fext)
	}
	return &pb, nil
}

// applyParticleBCs carries the original mesh's BCs onto the particle
// cloud: essential conditions always; nodal loads only at nodes the FEM
// side does not also own (shared interface nodes keep their load on the
// FEM side, which injects the reaction).
func applyParticleBCs(m *mesh.Mesh, split *Split, fix func(l, d int, v float64), fext [][]float64) {
	for l, g := range split.PdGlobalNode {
		for d := 0; d < m.Dim; d++ {
			if m.Fixed[g][d] {
				fix(l, d, m.Prescribed[g][d])
			}
		}
		if _, onFem := split.FemLocalOf(g); !onFem {
			copy(fext[l], m.Fext[g])
		}
	}
}

// BuildCoupled materializes a CoupledAdapter over an already-computed
// split: a renumbered FEM sub-mesh with the original BCs and loads
// carried over, a particle cloud per buildParticleBody, and the
// interface manager/driver pairing ghost particles with their FEM twin
// nodes (coordinate-coincident by construction).
func BuildCoupled(rt *femrt.Runtime, m *mesh.Mesh, mats assembly.MaterialSet, split *Split, opts AutoOptions) (*CoupledAdapter, error) {
	if len(split.FemElems) == 0 {
		return nil, chk.Err("coupled build needs a non-empty FEM zone")
	}
	matIDs := make([]int, len(split.FemElems))
	for le, ge := range split.FemElemGlobal {
		matIDs[le] = m.MatID[ge]
	}
	femMesh, err := mesh.New(m.Type, split.FemNodes, split.FemElems, matIDs)
	if err != nil {
		return nil, chk.Err("coupled FEM sub-mesh: %v", err)
	}
	for l, g := range split.FemGlobalNode {
		for d := 0; d < m.Dim; d++ {
			if m.Fixed[g][d] {
				if err := femMesh.SetFixedDOF(l, d, m.Prescribed[g][d]); err != nil {
					return nil, err
				}
			}
			femMesh.Fext[l][d] = m.Fext[g][d]
		}
	}
	femAd := adapter.NewMeshAdapter(femMesh, mats, rt, opts.Statics)

	pb, err := buildParticleBody(m, mats, split, opts)
	if err != nil {
		return nil, err
	}

	pairs := make([]Pair, len(split.InterfaceGlobal))
	for k := range split.InterfaceGlobal {
		pairs[k] = Pair{FemNode: split.InterfaceFemLocal[k], PdNode: split.InterfacePdLocal[k], Weight: 1}
	}
	iface := NewInterfaceManager(femAd, pb.body, pairs)

	reaction := func() map[int][]float64 {
		out := make(map[int][]float64, len(split.InterfacePdLocal))
		for _, l := range split.InterfacePdLocal {
			f := pb.fint(l)
			neg := make([]float64, len(f))
			for d, v := range f {
				neg[d] = -v
			}
			out[l] = neg
		}
		return out
	}
	driver := NewDriver(iface, pb.setDisp, reaction, opts.Coupling)

	femOf := make([]int, m.NNodes)
	pdOf := make([]int, m.NNodes)
	for i := range femOf {
		femOf[i], pdOf[i] = -1, -1
	}
	for l, g := range split.FemGlobalNode {
		femOf[g] = l
	}
	for l, g := range split.PdGlobalNode {
		pdOf[g] = l
	}
	return NewCoupledAdapter(driver, femAd, pb.body, m.NNodes, m.Dim, femOf, pdOf), nil
}

// meanElementSize is the dim-th root of the mean reference element
// volume, the particle-spacing estimate the default horizon builds on.
func meanElementSize(m *mesh.Mesh) float64 {
	if m.NElems == 0 {
		return 0
	}
	tot := 0.0
	for _, v := range m.RefVol {
		tot += v
	}
	return math.Pow(tot/float64(m.NElems), 1.0/float64(m.Dim))
}
