// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"fmt"
	"sort"

	"github.com/cpmech/gosl/chk"

	"github.com/dpedroso-lab/spinefem/adapter"
	"github.com/dpedroso-lab/spinefem/assembly"
	"github.com/dpedroso-lab/spinefem/contact"
	"github.com/dpedroso-lab/spinefem/femrt"
	"github.com/dpedroso-lab/spinefem/mesh"
	"github.com/dpedroso-lab/spinefem/msolid"
	"github.com/dpedroso-lab/spinefem/peridynamics"
	"github.com/dpedroso-lab/spinefem/rigidbody"
	"github.com/dpedroso-lab/spinefem/scene"
	"github.com/dpedroso-lab/spinefem/spg"
	"github.com/dpedroso-lab/spinefem/statics"
)

// BuiltBody is the record the pipeline keeps for one assembled label, so
// a FacetJointDetector can query body geometry after the main build pass.
type BuiltBody struct {
	Name      string
	Label     int
	Method    Method
	Adapter   adapter.Adapter
	Positions [][]float64 // reference positions in Adapter's own node order
}

// Options configures Assemble beyond what the AnatomyProfile supplies.
type Options struct {
	MinVoxels     int // skip labels with fewer voxels than this
	Runtime       *femrt.Runtime
	StaticsOpts   statics.Options
	PDHorizonFactor  float64 // horizon = factor * max(spacing)
	CritStretch      float64
	StabG            float64 // zero-energy stabilization factor G_s, sensibly in [0.05, 0.15]
	StabC            float64 // explicit c_bond override; 0 derives it from StabG and the material
	IgnoreLabels     map[int]bool
	GapToleranceFactor float64 // contact search radius = factor * max(spacing)
}

// DefaultOptions returns conservative defaults for demonstration volumes.
func DefaultOptions() Options {
	return Options{
		MinVoxels: 1, Runtime: femrt.NewRuntime(), StaticsOpts: statics.DefaultOptions(),
		PDHorizonFactor: 3.0, CritStretch: 0.1, StabG: 0.1,
		IgnoreLabels: map[int]bool{0: true}, GapToleranceFactor: 1.5,
	}
}

// Result is everything Assemble produces from one label volume.
type Result struct {
	Scene  *scene.Scene
	Bodies map[int]*BuiltBody // keyed by label
}

// Assemble runs the full assembly pipeline: one Domain
// per non-background label with >= MinVoxels voxels, a Material and
// Method from profile, one adapter per body registered with a Scene,
// contacts derived from 6-connected label adjacency plus any
// profile-supplied facet joints.
func Assemble(vol *LabelVolume, profile AnatomyProfile, mode scene.Mode, opts Options) (*Result, error) {
	sc := scene.New(mode)
	bodies := map[int]*BuiltBody{}

	labels := distinctLabels(vol, opts.IgnoreLabels)
	for _, label := range labels {
		ijk, centers := vol.VoxelsForLabel(label)
		if len(ijk) < opts.MinVoxels {
			continue
		}
		spec, ok := profile.GetMaterial(label)
		if !ok {
			continue
		}
		name := fmt.Sprintf("label_%d", label)
		built, err := buildBody(name, label, spec, centers, vol.Spacing, opts)
		if err != nil {
			return nil, chk.Err("label %d: %v", label, err)
		}
		if err := sc.AddBody(name, built.Adapter, bodyKind(built.Method)); err != nil {
			return nil, err
		}
		bodies[label] = built
	}

	if err := sc.Build(); err != nil {
		return nil, err
	}

	maxSpacing := vol.Spacing[0]
	for _, s := range vol.Spacing {
		if s > maxSpacing {
			maxSpacing = s
		}
	}
	minSpacing := vol.Spacing[0]
	for _, s := range vol.Spacing {
		if s < minSpacing {
			minSpacing = s
		}
	}
	gapTolerance := opts.GapToleranceFactor * maxSpacing
	if gapTolerance <= 0 {
		gapTolerance = contact.AutoGapTolerance(maxSpacing, maxSpacing)
	}

	pairs := FindAdjacentPairs(vol, opts.IgnoreLabels)
	for _, pair := range pairs {
		ba, okA := bodies[pair.LabelA]
		bb, okB := bodies[pair.LabelB]
		if !okA || !okB {
			continue
		}
		cspec, ok := profile.GetContactType(pair.LabelA, pair.LabelB)
		if !ok {
			// a profile returning no contact type produces
			// zero contacts between those labels even if adjacent.
			continue
		}
		penalty := cspec.Penalty
		if penalty == 0 {
			penalty = contact.AutoPenalty(1.0, 1.0, minSpacing, minSpacing)
		}
		params := contact.Params{Kind: cspec.Kind, Penalty: penalty, MuS: cspec.MuS, MuD: cspec.MuD, GapTolerance: gapTolerance}
		if err := sc.AddContact(ba.Name, bb.Name, params); err != nil {
			return nil, err
		}
	}

	if detector, ok := profile.(FacetJointDetector); ok {
		joints := detector.DetectFacetJoints(bodies)
		for _, j := range joints {
			penalty := j.Spec.Penalty
			if penalty == 0 {
				penalty = contact.AutoPenalty(1.0, 1.0, minSpacing, minSpacing)
			}
			params := contact.Params{Kind: j.Spec.Kind, Penalty: penalty, MuS: j.Spec.MuS, MuD: j.Spec.MuD, GapTolerance: gapTolerance}
			if err := sc.AddFacetJoint(j.BodyA, j.BodyB, j.NodeA, j.NodeB, params); err != nil {
				return nil, err
			}
		}
	}

	return &Result{Scene: sc, Bodies: bodies}, nil
}

// bodyKind maps a pipeline assembly Method to the scene package's
// stepping classification: FEM/Coupled bodies re-solve
// on a cadence, PD/SPG bodies step every outer iteration, rigid bodies
// always advance their prescribed motion.
func bodyKind(m Method) scene.BodyKind {
	switch m {
	case MethodRigid:
		return scene.KindRigid
	case MethodPD, MethodSPG:
		return scene.KindExplicit
	default:
		return scene.KindFEM
	}
}

// stabCFor resolves the zero-energy penalty modulus: an explicit StabC
// wins; otherwise it is derived from the material's bulk/shear moduli
// via peridynamics.StabilizationCoefficient with factor StabG.
func stabCFor(opts Options, mat msolid.Material, horizon float64) float64 {
	if opts.StabC > 0 {
		return opts.StabC
	}
	if el, ok := mat.(*msolid.Elastic); ok {
		return peridynamics.StabilizationCoefficient(opts.StabG, el.K, el.Mu, horizon)
	}
	return 0
}

func distinctLabels(vol *LabelVolume, ignore map[int]bool) []int {
	seen := map[int]bool{}
	ni, nj, nk := vol.Shape()
	for i := 0; i < ni; i++ {
		for j := 0; j < nj; j++ {
			for k := 0; k < nk; k++ {
				l := vol.Data[i][j][k]
				if !ignore[l] {
					seen[l] = true
				}
			}
		}
	}
	out := make([]int, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Ints(out)
	return out
}

func buildBody(name string, label int, spec MaterialSpec, centers [][]float64, spacing [3]float64, opts Options) (*BuiltBody, error) {
	switch spec.Method {
	case MethodFEM, MethodCoupled:
		// Coupled bodies are assembled as a plain FEM body: promoting a
		// body to a FEM/PD split requires live stress/strain from a
		// first solve, which the one-pass assembly pipeline does not
		// have. The caller runs coupling.AutoCouple on the returned
		// mesh and replaces the body's adapter with the result before
		// continuing (see DESIGN.md).
		nodes, elems := VoxelsToHexMesh(centers, spacing)
		m, err := mesh.New("hex8", nodes, elems, nil)
		if err != nil {
			return nil, err
		}
		mat, err := msolid.New(msolid.KindElastic, msolid.Params{Nsig: 6, E: spec.E, Nu: spec.Nu, Rho: spec.Rho})
		if err != nil {
			return nil, err
		}
		mats := assembly.MaterialSet{0: mat}
		a := adapter.NewMeshAdapter(m, mats, opts.Runtime, opts.StaticsOpts)
		return &BuiltBody{Name: name, Label: label, Method: spec.Method, Adapter: a, Positions: m.X}, nil

	case MethodPD, MethodSPG:
		vol := spacing[0] * spacing[1] * spacing[2]
		n := len(centers)
		volArr := make([]float64, n)
		density := make([]float64, n)
		matID := make([]int, n)
		for i := range volArr {
			volArr[i] = vol
			density[i] = spec.Rho
		}
		maxSpacing := spacing[0]
		for _, s := range spacing {
			if s > maxSpacing {
				maxSpacing = s
			}
		}
		mat, err := msolid.New(msolid.KindElastic, msolid.Params{Nsig: 6, E: spec.E, Nu: spec.Nu, Rho: spec.Rho})
		if err != nil {
			return nil, err
		}
		mats := map[int]msolid.Material{0: mat}
		if spec.Method == MethodPD {
			horizon := opts.PDHorizonFactor * maxSpacing
			a := adapter.NewPeridynamicsAdapter(peridynamics.NewParticleSystem(
				3, centers, volArr, density, matID, horizon, opts.CritStretch,
				stabCFor(opts, mat, horizon)), mats)
			return &BuiltBody{Name: name, Label: label, Method: spec.Method, Adapter: a, Positions: centers}, nil
		}
		h := opts.PDHorizonFactor * maxSpacing / 2
		a := adapter.NewSPGAdapter(spg.NewSystem(
			3, centers, volArr, density, matID, h, opts.CritStretch, 0,
			stabCFor(opts, mat, h)), mats)
		return &BuiltBody{Name: name, Label: label, Method: spec.Method, Adapter: a, Positions: centers}, nil

	case MethodRigid:
		motion := rigidbody.Motion{
			Translation: func(t float64) []float64 { return []float64{0, 0, 0} },
			Axis:        func(t float64) []float64 { return []float64{0, 0, 1} },
			Angle:       func(t float64) float64 { return 0 },
			Origin:      []float64{0, 0, 0},
		}
		rb := rigidbody.New(3, centers, motion)
		return &BuiltBody{Name: name, Label: label, Method: spec.Method, Adapter: rb, Positions: rb.X}, nil
	}
	return nil, chk.Err("unknown method %q for label %d", spec.Method, label)
}
