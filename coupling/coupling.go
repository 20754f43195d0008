// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package coupling implements FEM/peridynamics (or FEM/SPG) domain
// coupling: a zone splitter that classifies elements/particles as
// continuum or discontinuum by a switching criterion with buffer-layer
// dilation, an interface manager that transfers displacement one way
// and force the other, and a Dirichlet-Neumann fixed-point driver tying
// the two together. Grounded on gofem's e_rjoint.go/e_bjointcomp.go
// family: the one place cpmech/gofem couples two distinct element
// formulations (a rod and a solid) across a shared interface with its
// own displacement-transfer and force-transfer bookkeeping (SslNo/SslIp
// interpolation one way, AddToRhs transfer the other); this package
// generalises that same "transfer across a formulation boundary" idea to
// whole-body coupling via the package adapter.Adapter facade instead of
// per-element shape functions, since there is no element-level mesh
// conformity between a FEM mesh and a particle cloud.
package coupling

import (
	"context"
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/tsr"

	"github.com/dpedroso-lab/spinefem/adapter"
)

// Criterion selects the scalar field a zone switch is triggered by.
type Criterion int

const (
	CriterionVonMises Criterion = iota
	CriterionMaxPrincipalStrain
)

// ZoneMode names the two ways the continuum/discontinuum split can be
// chosen: fixed at construction (Manual) or from the stress/strain field
// (Auto). It is a label only: no function in this package takes a
// ZoneMode, and Classify evaluates the field it is given on every call.
type ZoneMode int

const (
	ZoneManual ZoneMode = iota
	ZoneAuto
)

// vonMises computes the von Mises equivalent stress from a Voigt stress
// vector via gosl/tsr's invariants (q = M_q is already the von Mises
// equivalent by gosl's convention, reusing the same function the J2
// plasticity model's yield surface is built from).
func vonMises(sig []float64) float64 {
	return tsr.M_q(sig)
}

// maxPrincipalStrain returns the largest eigenvalue of a Voigt small
// strain tensor, used as the alternate switching criterion (brittle
// tissues switch to discontinuum earlier under principal strain than
// under a deviatoric-stress measure).
func maxPrincipalStrain(eps []float64, nsig int) (float64, error) {
	t := tsr.Alloc2()
	tsr.M2T(eps, t)
	vals, _, err := tsr.M_EigenValsProjsNum(t, tsr.M_AllocEigenprojs())
	if err != nil {
		return 0, chk.Err("max principal strain: %v", err)
	}
	m := vals[0]
	for _, v := range vals {
		if v > m {
			m = v
		}
	}
	return m, nil
}

// Classify returns one boolean per field entry: true means "switch to
// discontinuum (PD/SPG)". eps is only consulted for
// CriterionMaxPrincipalStrain (nil otherwise).
func Classify(criterion Criterion, sig, eps [][]float64, nsig int, threshold float64) ([]bool, error) {
	n := len(sig)
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		switch criterion {
		case CriterionVonMises:
			out[i] = vonMises(sig[i]) > threshold
		case CriterionMaxPrincipalStrain:
			v, err := maxPrincipalStrain(eps[i], nsig)
			if err != nil {
				return nil, err
			}
			out[i] = v > threshold
		default:
			return nil, chk.Err("unknown switching criterion %d", criterion)
		}
	}
	return out, nil
}

// DilateBuffer grows the active (discontinuum) set by `layers` rounds of
// breadth-first expansion over adjacency, so the continuum/discontinuum
// boundary always has a buffer zone rather than switching element by
// isolated element.
func DilateBuffer(active []bool, adjacency [][]int, layers int) []bool {
	cur := append([]bool(nil), active...)
	for l := 0; l < layers; l++ {
		next := append([]bool(nil), cur...)
		for i, a := range cur {
			if !a {
				continue
			}
			for _, j := range adjacency[i] {
				next[j] = true
			}
		}
		cur = next
	}
	return cur
}

// Pair is one displacement/force transfer correspondence between a node
// of the FEM side and a particle of the PD/SPG side, with an interpolation
// weight (1.0 for a coincident node/particle pair; gofem's rjoint
// uses shape-function weights for its rod-to-solid mapping, but this
// port's domains do not share a mesh, so pairs are expected to already be
// geometrically coincident, e.g. produced by package pipeline at a
// shared voxel boundary).
type Pair struct {
	FemNode int
	PdNode  int
	Weight  float64
}

// InterfaceManager transfers state across a registered set of Pairs
// between a FEM-side adapter.Adapter and a PD/SPG-side adapter.Adapter.
type InterfaceManager struct {
	Fem, Pd adapter.Adapter
	Pairs   []Pair
}

func NewInterfaceManager(fem, pd adapter.Adapter, pairs []Pair) *InterfaceManager {
	return &InterfaceManager{Fem: fem, Pd: pd, Pairs: pairs}
}

// FemToPdDisplacement pushes the FEM side's current displacement at each
// paired node onto the PD side as a Dirichlet condition -- expressed
// here as a direct displacement overwrite on the PD side's own U array,
// since package adapter has no SetPrescribed hook and a particle cloud's
// Dirichlet condition is simply "hold this particle's displacement
// fixed", driven externally by whichever caller owns the PD ParticleSystem's
// Fixed/U arrays.
func (o *InterfaceManager) FemToPdDisplacement(setPdDisplacement func(pdNode int, u []float64)) {
	femU := o.Fem.Displacements()
	for _, p := range o.Pairs {
		u := make([]float64, len(femU[p.FemNode]))
		for d, v := range femU[p.FemNode] {
			u[d] = v * p.Weight
		}
		setPdDisplacement(p.PdNode, u)
	}
}

// PdToFemForce sums each PD-side reaction (injected back via
// adapter.Adapter.InjectContactForces on the FEM side, the same
// mechanism package contact uses) at every paired node, weighted by
// Pair.Weight. netForce must already hold each PD node's force to
// transfer (the caller computes it, e.g. from a particle's internal
// force at the interface).
func (o *InterfaceManager) PdToFemForce(netForce map[int][]float64) {
	for _, p := range o.Pairs {
		f, ok := netForce[p.PdNode]
		if !ok {
			continue
		}
		scaled := make([]float64, len(f))
		for d, v := range f {
			scaled[d] = v * p.Weight
		}
		o.Fem.InjectContactForces(p.FemNode, scaled)
	}
}

// ConvergenceTest reports whether the maximum displacement change at any
// paired FEM node between two outer iterations is below tol -- the
// Dirichlet-Neumann fixed point's stopping criterion.
func ConvergenceTest(prev, cur [][]float64, pairs []Pair, tol float64) bool {
	for _, p := range pairs {
		for d := range cur[p.FemNode] {
			if math.Abs(cur[p.FemNode][d]-prev[p.FemNode][d]) > tol {
				return false
			}
		}
	}
	return true
}

// Options configures the Dirichlet-Neumann driver.
type Options struct {
	MaxOuterIter int
	Tol          float64
}

func DefaultOptions() Options { return Options{MaxOuterIter: 30, Tol: 1e-6} }

// Driver runs the Dirichlet-Neumann fixed-point loop between a FEM body
// and a PD/SPG body: solve FEM, push its interface displacement onto the
// PD side, solve PD, pull its reaction force back onto the FEM side, and
// repeat until the FEM interface displacement stops changing.
type Driver struct {
	Iface             *InterfaceManager
	SetPdDisplacement func(pdNode int, u []float64)
	PdReactionForce   func() map[int][]float64 // reads current PD-side force at each paired node
	Opts              Options
}

func NewDriver(iface *InterfaceManager, setPdDisplacement func(int, []float64), pdReactionForce func() map[int][]float64, opts Options) *Driver {
	return &Driver{Iface: iface, SetPdDisplacement: setPdDisplacement, PdReactionForce: pdReactionForce, Opts: opts}
}

// Run performs outer Dirichlet-Neumann iterations until convergence or
// Opts.MaxOuterIter is reached.
func (d *Driver) Run(ctx context.Context) (iterations int, converged bool, err error) {
	femU := d.Iface.Fem.Displacements()
	prev := make([][]float64, len(femU))
	for i := range femU {
		prev[i] = append([]float64(nil), femU[i]...)
	}
	for it := 0; it < d.Opts.MaxOuterIter; it++ {
		if ctx.Err() != nil {
			return it, false, ctx.Err()
		}
		if err := d.Iface.Fem.Solve(ctx); err != nil {
			return it, false, chk.Err("FEM solve at outer iteration %d: %v", it, err)
		}
		d.Iface.FemToPdDisplacement(d.SetPdDisplacement)
		if err := d.Iface.Pd.Solve(ctx); err != nil {
			return it, false, chk.Err("PD/SPG solve at outer iteration %d: %v", it, err)
		}
		// reactions replace, not accumulate: reset to the FEM side's
		// baseline load before injecting this iteration's transfer
		d.Iface.Fem.ClearContactForces()
		d.Iface.PdToFemForce(d.PdReactionForce())

		cur := d.Iface.Fem.Displacements()
		if ConvergenceTest(prev, cur, d.Iface.Pairs, d.Opts.Tol) {
			return it + 1, true, nil
		}
		for i := range cur {
			prev[i] = append(prev[i][:0], cur[i]...)
		}
	}
	// non-convergence is a status, not an error
	return d.Opts.MaxOuterIter, false, nil
}
