// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package contact implements node-to-node contact detection across
// bodies and penalty/tied/Coulomb force laws. There is no contact
// formulation in gofem (it has no body-to-body
// interaction), so detection reuses the uniform-grid approach already
// written for peridynamics/bond (same role, cross-body instead of
// intra-body) and the force laws follow the standard penalty-method
// formulation used throughout explicit/quasi-static contact mechanics.
package contact

import (
	"math"
)

// Kind selects which force law a Pair is resolved with.
type Kind int

const (
	KindPenalty Kind = iota
	KindTied
	KindCoulomb
)

// Params configures one contact definition between two bodies.
type Params struct {
	Kind         Kind
	Penalty      float64 // normal penalty stiffness
	MuS          float64 // static Coulomb friction coefficient (KindCoulomb only)
	MuD          float64 // dynamic/kinetic Coulomb friction coefficient (KindCoulomb only)
	GapTolerance float64 // detection/penalty reference gap

	// DampingRatio, when > 0, adds normal viscous damping c = 2*xi*sqrt(k*m_eff)
	// on top of the elastic penalty force (KindPenalty and KindCoulomb only).
	// MassA/MassB are the nominal nodal masses used for m_eff; damping is
	// skipped (c = 0) when either is non-positive.
	DampingRatio float64
	MassA, MassB float64
}

// Pair is one detected node-to-node contact between two bodies.
type Pair struct {
	BodyA, BodyB int
	NodeA, NodeB int
	Normal       []float64 // unit vector from A to B at detection time
	Gap          float64   // node-to-node distance at detection time (never negative)
	// RefOffset freezes pos_a - pos_b at detection time, the r0 a KindTied
	// pair's bidirectional spring measures deviation from.
	RefOffset []float64
	refGap    float64
	bonded    bool
}

// gridPoint is one entry in the cross-body detection grid.
type gridPoint struct {
	body, node int
	pos        []float64
}

// Detect finds every node-to-node pair between different bodies whose
// current positions are within radius of each other, using a uniform
// spatial hash exactly analogous to peridynamics/bond.Grid but keyed
// across body boundaries (a pair is only ever formed between *different*
// bodies; self-contact within one body is out of scope).
func Detect(positions [][][]float64, radius float64, dim int) []Pair {
	if radius <= 0 {
		return nil
	}
	inv := 1.0 / radius
	cells := map[[3]int][]gridPoint{}
	cellOf := func(p []float64) [3]int {
		var c [3]int
		for d := 0; d < dim; d++ {
			c[d] = int(math.Floor(p[d] * inv))
		}
		return c
	}
	for b, pts := range positions {
		for n, p := range pts {
			c := cellOf(p)
			cells[c] = append(cells[c], gridPoint{body: b, node: n, pos: p})
		}
	}
	var pairs []Pair
	seen := map[[4]int]bool{}
	var dz, dzEnd int
	if dim == 3 {
		dz, dzEnd = -1, 1
	}
	for b, pts := range positions {
		for n, p := range pts {
			c := cellOf(p)
			for dx := -1; dx <= 1; dx++ {
				for dy := -1; dy <= 1; dy++ {
					for dzk := dz; dzk <= dzEnd; dzk++ {
						key := [3]int{c[0] + dx, c[1] + dy, c[2] + dzk}
						for _, cand := range cells[key] {
							if cand.body == b {
								continue
							}
							a, bb := b, cand.body
							na, nb := n, cand.node
							if a > bb || (a == bb && na > nb) {
								a, bb, na, nb = bb, a, nb, na
							}
							k := [4]int{a, na, bb, nb}
							if seen[k] {
								continue
							}
							r := dist(p, cand.pos)
							if r > radius {
								continue
							}
							seen[k] = true
							normal := make([]float64, dim)
							if r > 1e-14 {
								for d := 0; d < dim; d++ {
									normal[d] = (cand.pos[d] - p[d]) / r
								}
							} else {
								normal[0] = 1
							}
							var posA, posB []float64
							if a == b && na == n {
								posA, posB = p, cand.pos
							} else {
								posA, posB = cand.pos, p
							}
							refOffset := make([]float64, dim)
							for d := 0; d < dim; d++ {
								refOffset[d] = posA[d] - posB[d]
							}
							pairs = append(pairs, Pair{BodyA: a, BodyB: bb, NodeA: na, NodeB: nb, Normal: normal, Gap: r, refGap: r, RefOffset: refOffset})
						}
					}
				}
			}
		}
	}
	return pairs
}

func dist(a, b []float64) float64 {
	s := 0.0
	for d := range a {
		diff := a[d] - b[d]
		s += diff * diff
	}
	return math.Sqrt(s)
}

// Resolve computes the node-A force and node-B force (equal and
// opposite, action-reaction) for one pair under the given params, from
// current positions and velocities. dt is the step size driving the
// regularized Coulomb friction trial and is unused by
// KindTied/KindPenalty.
func Resolve(p *Pair, params Params, posA, posB, velA, velB []float64, dt float64) (forceA, forceB []float64) {
	dim := len(posA)
	forceA = make([]float64, dim)
	forceB = make([]float64, dim)
	gap := dist(posA, posB)
	p.Gap = gap

	switch params.Kind {
	case KindTied:
		// a tied pair is bonded permanently on first contact, and its
		// bidirectional spring measures deviation from the initial offset
		// r0 recorded at bonding time, not from zero separation -- it must
		// resist the pair drifting away from how it started, in either
		// tension or compression.
		if !p.bonded {
			p.bonded = true
			if p.RefOffset == nil {
				p.RefOffset = make([]float64, dim)
				for d := 0; d < dim; d++ {
					p.RefOffset[d] = posA[d] - posB[d]
				}
			}
		}
		for d := 0; d < dim; d++ {
			dev := (posA[d] - posB[d]) - p.RefOffset[d]
			f := -params.Penalty * dev
			forceA[d] += f
			forceB[d] -= f
		}
		return forceA, forceB

	case KindPenalty, KindCoulomb:
		penetration := params.GapTolerance - gap
		if penetration <= 0 {
			return forceA, forceB
		}
		normal := make([]float64, dim)
		if gap > 1e-14 {
			for d := 0; d < dim; d++ {
				normal[d] = (posA[d] - posB[d]) / gap
			}
		} else {
			normal[0] = 1
		}
		fn := params.Penalty * penetration
		if params.DampingRatio > 0 && params.MassA > 0 && params.MassB > 0 {
			mEff := params.MassA * params.MassB / (params.MassA + params.MassB)
			c := 2 * params.DampingRatio * math.Sqrt(params.Penalty*mEff)
			relVel := make([]float64, dim)
			for d := 0; d < dim; d++ {
				relVel[d] = velA[d] - velB[d]
			}
			fn -= c * dotv(relVel, normal)
		}
		for d := 0; d < dim; d++ {
			forceA[d] += fn * normal[d]
			forceB[d] -= fn * normal[d]
		}
		if params.Kind == KindCoulomb && (params.MuS > 0 || params.MuD > 0) {
			relVel := make([]float64, dim)
			for d := 0; d < dim; d++ {
				relVel[d] = velA[d] - velB[d]
			}
			vn := dotv(relVel, normal)
			vt := make([]float64, dim)
			for d := 0; d < dim; d++ {
				vt[d] = relVel[d] - vn*normal[d]
			}
			ftTrial := make([]float64, dim)
			ftTrialMag := 0.0
			for d := 0; d < dim; d++ {
				ftTrial[d] = params.Penalty * vt[d] * dt
				ftTrialMag += ftTrial[d] * ftTrial[d]
			}
			ftTrialMag = math.Sqrt(ftTrialMag)
			absFn := math.Abs(fn)
			var ft []float64
			if ftTrialMag <= params.MuS*absFn || ftTrialMag < 1e-14 {
				ft = ftTrial
			} else {
				ft = make([]float64, dim)
				scale := params.MuD * absFn / ftTrialMag
				for d := range ft {
					ft[d] = scale * ftTrial[d]
				}
			}
			for d := 0; d < dim; d++ {
				forceA[d] -= ft[d]
				forceB[d] += ft[d]
			}
		}
		return forceA, forceB
	}
	return forceA, forceB
}

func dotv(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// AutoPenalty derives a penalty stiffness from the stiffer of the two
// contacting bodies' modulus and the finer of their two characteristic
// spacings: penalty = max(E_a, E_b) / min(spacing_a,
// spacing_b).
func AutoPenalty(eA, eB, spacingA, spacingB float64) float64 {
	spacing := math.Min(spacingA, spacingB)
	if spacing <= 0 {
		spacing = 1.0
	}
	return math.Max(eA, eB) / spacing
}

// AutoGapTolerance derives a default detection/penalty gap from the two
// bodies' characteristic spacings: 1.5 * max(spacing_a,
// spacing_b).
func AutoGapTolerance(spacingA, spacingB float64) float64 {
	return 1.5 * math.Max(spacingA, spacingB)
}
