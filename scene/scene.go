// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scene drives a collection of adapter.Adapter bodies through a
// shared step loop: contact detection and force injection between
// registered body pairs, then each body's own Solve (static/quasi_static
// modes) or Step (explicit mode). There is no multi-body driver in
// gofem; the fixed-enumeration-order bookkeeping below follows the
// same "stable iteration order over a registered set" idiom gofem
// uses for its global equation numbering (fem/domain.go's node/element
// arrays), one level up.
package scene

import (
	"context"
	"math"

	"github.com/cpmech/gosl/chk"

	"github.com/dpedroso-lab/spinefem/adapter"
	"github.com/dpedroso-lab/spinefem/contact"
)

// Mode selects how Scene.Run advances every body each step.
type Mode int

const (
	ModeStatic Mode = iota
	ModeQuasiStatic
	ModeExplicit
)

// BodyKind tells Scene how to drive one registered body: a FEM body is
// re-solved to equilibrium only periodically in quasi_static mode, an
// explicit body (PD, SPG, or a mesh body carrying its own time
// integrator) is stepped every outer iteration, and a rigid body always
// advances its prescribed motion but never solves or contributes
// kinetic energy to a convergence test.
type BodyKind int

const (
	KindFEM BodyKind = iota
	KindExplicit
	KindRigid
)

// body is one registered adapter in Scene's fixed enumeration order.
type body struct {
	name    string
	adapter adapter.Adapter
	kind    BodyKind
}

// contactDef is one registered contact relationship between two bodies,
// by name, resolved to indices at Build().
type contactDef struct {
	bodyA, bodyB string
	idxA, idxB   int
	params       contact.Params
	// tiedPairs freezes the bonded node pairs and their reference offsets
	// for KindTied contacts, found once at Build() rather than
	// re-detected every step.
	tiedPairs []contact.Pair
}

// facetJointDef is one explicit node-to-node contact pair, pre-resolved
// by a geometric rule outside plain label-adjacency detection (an
// anatomy profile's facet-joint hook) rather than found by
// contact.Detect's radius search every step.
type facetJointDef struct {
	idxA, idxB   int
	nodeA, nodeB int
	params       contact.Params
	tied         contact.Pair
}

// Scene owns a fixed-order body list and the contact relationships
// between them, plus the per-mode solve parameters.
type Scene struct {
	Mode Mode

	// Safety scales the explicit stability bound when quasi_static picks
	// its own dt: dt = Safety * min(adapter.StableDt()) across explicit
	// bodies. Defaults to 0.8 when zero.
	Safety float64
	// FemUpdateInterval is how many quasi_static outer steps elapse
	// between FEM-body re-solves. Defaults to 500 when zero.
	FemUpdateInterval int
	// EnergyRef is the reference work scale E_ref the quasi_static
	// convergence test compares total kinetic energy against. Defaults
	// to 1.0 when zero.
	EnergyRef float64
	// Tol is the quasi_static KE/E_ref convergence tolerance. Defaults
	// to 1e-3 when zero.
	Tol float64
	// ContactTol is the static (staggered) relative contact-force-change
	// stopping tolerance. Defaults to 1e-3 when zero.
	ContactTol float64

	bodies      []body
	nameIdx     map[string]int
	contacts    []contactDef
	facetJoints []facetJointDef
	built       bool
	stepCount   int
	lastFContact float64
}

func New(mode Mode) *Scene {
	return &Scene{Mode: mode, nameIdx: map[string]int{}}
}

// AddBody registers a body under name, in call order (the scene's fixed
// enumeration order never depends on map iteration).
func (s *Scene) AddBody(name string, a adapter.Adapter, kind BodyKind) error {
	if _, exists := s.nameIdx[name]; exists {
		return chk.Err("body %q already registered", name)
	}
	s.nameIdx[name] = len(s.bodies)
	s.bodies = append(s.bodies, body{name: name, adapter: a, kind: kind})
	s.built = false
	return nil
}

// AddContact registers a contact relationship between two already-added
// bodies.
func (s *Scene) AddContact(bodyA, bodyB string, params contact.Params) error {
	ia, ok := s.nameIdx[bodyA]
	if !ok {
		return chk.Err("unknown body %q", bodyA)
	}
	ib, ok := s.nameIdx[bodyB]
	if !ok {
		return chk.Err("unknown body %q", bodyB)
	}
	s.contacts = append(s.contacts, contactDef{bodyA: bodyA, bodyB: bodyB, idxA: ia, idxB: ib, params: params})
	s.built = false
	return nil
}

// AddFacetJoint registers an explicit node-to-node contact pair between
// two already-added bodies, bypassing contact.Detect's radius search.
// Unlike AddContact, the pairing here is
// fixed at registration time since the caller already resolved it via a
// profile-specific geometric rule.
func (s *Scene) AddFacetJoint(bodyA, bodyB string, nodeA, nodeB int, params contact.Params) error {
	ia, ok := s.nameIdx[bodyA]
	if !ok {
		return chk.Err("unknown body %q", bodyA)
	}
	ib, ok := s.nameIdx[bodyB]
	if !ok {
		return chk.Err("unknown body %q", bodyB)
	}
	s.facetJoints = append(s.facetJoints, facetJointDef{idxA: ia, idxB: ib, nodeA: nodeA, nodeB: nodeB, params: params})
	s.built = false
	return nil
}

// Build constructs the scene's per-body bookkeeping: for
// every KindTied contact and facet joint, the bonded node pairs and
// their reference offsets r0 are found once here, rather than being
// re-derived by contact.Detect on every later step (a tied contact must
// not let its bond silently reset if the bodies happen to separate
// further than gap_tolerance at some later step).
func (s *Scene) Build() error {
	if len(s.bodies) == 0 {
		return chk.Err("scene has no bodies")
	}
	for i := range s.contacts {
		cd := &s.contacts[i]
		if cd.params.Kind != contact.KindTied {
			continue
		}
		a := s.bodies[cd.idxA].adapter
		bb := s.bodies[cd.idxB].adapter
		positions := [][][]float64{a.CurrentPositions(), bb.CurrentPositions()}
		radius := cd.params.GapTolerance
		if radius <= 0 {
			radius = autoGapTolerance(positions)
			cd.params.GapTolerance = radius
		}
		cd.tiedPairs = contact.Detect(positions, radius, dimOf(positions))
	}
	for i := range s.facetJoints {
		fj := &s.facetJoints[i]
		if fj.params.Kind != contact.KindTied {
			continue
		}
		a := s.bodies[fj.idxA].adapter
		bb := s.bodies[fj.idxB].adapter
		posA, posB := a.CurrentPositions()[fj.nodeA], bb.CurrentPositions()[fj.nodeB]
		offset := make([]float64, len(posA))
		for d := range offset {
			offset[d] = posA[d] - posB[d]
		}
		fj.tied = contact.Pair{RefOffset: offset}
	}
	s.built = true
	s.stepCount = 0
	return nil
}

// autoGapTolerance estimates a characteristic spacing for each body from
// its own nearest-neighbor node distance and derives a default gap
// tolerance via contact.AutoGapTolerance, used when a
// contact definition leaves GapTolerance unset.
func autoGapTolerance(positions [][][]float64) float64 {
	spacings := make([]float64, len(positions))
	for i, pts := range positions {
		spacings[i] = nearestNeighborSpacing(pts)
	}
	if len(spacings) < 2 {
		return contact.AutoGapTolerance(spacings[0], spacings[0])
	}
	return contact.AutoGapTolerance(spacings[0], spacings[1])
}

func nearestNeighborSpacing(pts [][]float64) float64 {
	if len(pts) < 2 {
		return 1.0
	}
	best := math.Inf(1)
	ref := pts[0]
	for _, p := range pts[1:] {
		d := dist(ref, p)
		if d > 1e-14 && d < best {
			best = d
		}
	}
	if math.IsInf(best, 1) {
		return 1.0
	}
	return best
}

// StableDt returns the minimum StableDt across all registered bodies,
// the governing explicit time step for ModeExplicit.
func (s *Scene) StableDt() float64 {
	dt := math.Inf(1)
	for _, b := range s.bodies {
		if d := b.adapter.StableDt(); d < dt {
			dt = d
		}
	}
	return dt
}

// quasiStaticDt implements the quasi_static timestep rule:
// dt = safety * min(adapter.stable_dt()) across explicit bodies only; if
// none is finite, 1e-4.
func (s *Scene) quasiStaticDt() float64 {
	safety := s.Safety
	if safety <= 0 {
		safety = 0.8
	}
	dt := math.Inf(1)
	for _, b := range s.bodies {
		if b.kind != KindExplicit {
			continue
		}
		if d := b.adapter.StableDt(); d < dt {
			dt = d
		}
	}
	if math.IsInf(dt, 1) {
		return 1e-4
	}
	return safety * dt
}

func (s *Scene) femUpdateInterval() int {
	if s.FemUpdateInterval <= 0 {
		return 500
	}
	return s.FemUpdateInterval
}

func (s *Scene) femDue() bool {
	return s.stepCount%s.femUpdateInterval() == 0
}

// totalKineticEnergy sums 0.5*|v|^2 over every non-rigid body's tracked
// velocity, the quasi_static convergence test's KE numerator. Adapter
// exposes no per-node mass, so this is a unit-mass proxy rather than
// true kinetic energy; see DESIGN.md.
func (s *Scene) totalKineticEnergy() float64 {
	ke := 0.0
	for _, b := range s.bodies {
		if b.kind == KindRigid {
			continue
		}
		for _, v := range b.adapter.Velocities() {
			for _, vd := range v {
				ke += 0.5 * vd * vd
			}
		}
	}
	return ke
}

// resolveContacts detects and applies forces for every registered
// contact definition, in Scene's fixed body-then-contact-definition
// order, so results are reproducible across runs. KindTied pairs were
// already found at Build() and are re-resolved (not re-detected) here.
func (s *Scene) resolveContacts(dt float64) {
	for _, b := range s.bodies {
		b.adapter.ClearContactForces()
	}
	var totalF float64
	for _, cd := range s.contacts {
		a := s.bodies[cd.idxA].adapter
		bb := s.bodies[cd.idxB].adapter
		positionsA, positionsB := a.CurrentPositions(), bb.CurrentPositions()
		var pairs []contact.Pair
		if cd.params.Kind == contact.KindTied {
			pairs = cd.tiedPairs
		} else {
			positions := [][][]float64{positionsA, positionsB}
			pairs = contact.Detect(positions, cd.params.GapTolerance, dimOf(positions))
		}
		velA, velB := a.Velocities(), bb.Velocities()
		for i := range pairs {
			p := &pairs[i]
			// Detect always orders (BodyA,BodyB) as (min,max) of the two
			// local indices 0/1 it was given (0 meaning the a-side
			// positions slice); map back to which side is which adapter.
			na, nb := p.NodeA, p.NodeB
			var posA, posB, vA, vB []float64
			if p.BodyA == 0 {
				posA, posB = positionsA[na], positionsB[nb]
				vA, vB = velA[na], velB[nb]
			} else {
				posA, posB = positionsB[na], positionsA[nb]
				vA, vB = velB[na], velA[nb]
			}
			fA, fB := contact.Resolve(p, cd.params, posA, posB, vA, vB, dt)
			if p.BodyA == 0 {
				a.InjectContactForces(na, fA)
				bb.InjectContactForces(nb, fB)
			} else {
				bb.InjectContactForces(na, fA)
				a.InjectContactForces(nb, fB)
			}
			totalF += norm(fA)
		}
	}
	for _, fj := range s.facetJoints {
		a := s.bodies[fj.idxA].adapter
		bb := s.bodies[fj.idxB].adapter
		posA, posB := a.CurrentPositions()[fj.nodeA], bb.CurrentPositions()[fj.nodeB]
		velA, velB := a.Velocities()[fj.nodeA], bb.Velocities()[fj.nodeB]
		gap := dist(posA, posB)
		normal := make([]float64, len(posA))
		if gap > 1e-15 {
			for d := range normal {
				normal[d] = (posA[d] - posB[d]) / gap
			}
		}
		pair := &fj.tied
		pair.Gap = gap
		pair.Normal = normal
		fA, fB := contact.Resolve(pair, fj.params, posA, posB, velA, velB, dt)
		a.InjectContactForces(fj.nodeA, fA)
		bb.InjectContactForces(fj.nodeB, fB)
		totalF += norm(fA)
	}
	s.lastFContact = totalF
}

func norm(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}

func dist(a, b []float64) float64 {
	s := 0.0
	for d := range a {
		diff := a[d] - b[d]
		s += diff * diff
	}
	return math.Sqrt(s)
}

func dimOf(positions [][][]float64) int {
	for _, pts := range positions {
		if len(pts) > 0 {
			return len(pts[0])
		}
	}
	return 3
}

// Step advances every registered body by one outer iteration, dispatched
// per the scene's per-mode rules:
//
//   - quasi_static: contact is recomputed/re-injected every step; explicit
//     and rigid bodies advance by dt every step; FEM bodies re-solve only
//     every FemUpdateInterval steps.
//   - static (staggered): the first outer iteration solves every FEM body
//     independently at its fixed BCs with no contact engaged yet; every
//     later iteration computes contact, injects it, then re-solves.
//   - explicit: every body takes a synchronized step(dt); contact is
//     re-injected every step.
func (s *Scene) Step(ctx context.Context, dt float64) error {
	if !s.built {
		if err := s.Build(); err != nil {
			return err
		}
	}
	switch s.Mode {
	case ModeQuasiStatic, ModeExplicit:
		s.resolveContacts(dt)
	case ModeStatic:
		if s.stepCount > 0 {
			s.resolveContacts(dt)
		}
	}
	for _, b := range s.bodies {
		var err error
		switch s.Mode {
		case ModeQuasiStatic:
			switch b.kind {
			case KindExplicit, KindRigid:
				err = b.adapter.Step(ctx, dt)
			case KindFEM:
				if s.femDue() {
					err = b.adapter.Solve(ctx)
				}
			}
		case ModeStatic:
			err = b.adapter.Solve(ctx)
		case ModeExplicit:
			err = b.adapter.Step(ctx, dt)
		default:
			err = chk.Err("unknown scene mode %d", s.Mode)
		}
		if err != nil {
			return chk.Err("body %q: %v", b.name, err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	s.stepCount++
	return nil
}

// Result summarizes one Run call: the outer iteration count (exact step
// count for ModeExplicit, staggering iterations for ModeStatic), the
// timestep driven (0 in static mode), and the summed magnitude of all
// contact forces at the last resolution.
type Result struct {
	Converged         bool
	NSteps            int
	Dt                float64
	TotalContactForce float64
}

// Run advances the scene per its Mode's convergence rule, up to n outer
// iterations (exactly n for ModeExplicit, which has no convergence
// test; an upper bound on iteration count for the other two modes,
// which can return earlier once converged).
func (s *Scene) Run(ctx context.Context, n int) (Result, error) {
	res := Result{}
	if !s.built {
		if err := s.Build(); err != nil {
			return res, err
		}
	}
	switch s.Mode {
	case ModeExplicit:
		dt := s.StableDt()
		if math.IsInf(dt, 1) {
			return res, chk.Err("explicit scene has no body imposing a finite stable time step")
		}
		res.Dt = dt
		for i := 0; i < n; i++ {
			if err := s.Step(ctx, dt); err != nil {
				return res, err
			}
			res.NSteps++
		}
		res.Converged = true
		res.TotalContactForce = s.lastFContact
		return res, nil

	case ModeQuasiStatic:
		dt := s.quasiStaticDt()
		eRef := s.EnergyRef
		if eRef <= 0 {
			eRef = 1.0
		}
		tol := s.Tol
		if tol <= 0 {
			tol = 1e-3
		}
		res.Dt = dt
		for i := 0; i < n; i++ {
			if err := s.Step(ctx, dt); err != nil {
				return res, err
			}
			res.NSteps++
			if s.totalKineticEnergy()/eRef < tol {
				res.Converged = true
				break
			}
		}
		res.TotalContactForce = s.lastFContact
		return res, nil

	case ModeStatic:
		tol := s.ContactTol
		if tol <= 0 {
			tol = 1e-3
		}
		var prevF float64
		for i := 0; i < n; i++ {
			if err := s.Step(ctx, 0); err != nil {
				return res, err
			}
			res.NSteps++
			if i > 0 {
				denom := math.Max(s.lastFContact, 1e-30)
				if math.Abs(s.lastFContact-prevF)/denom < tol {
					res.Converged = true
					break
				}
			}
			prevF = s.lastFContact
		}
		res.TotalContactForce = s.lastFContact
		return res, nil
	}
	return res, chk.Err("unknown scene mode %d", s.Mode)
}

// Body returns the registered adapter by name.
func (s *Scene) Body(name string) (adapter.Adapter, bool) {
	idx, ok := s.nameIdx[name]
	if !ok {
		return nil, false
	}
	return s.bodies[idx].adapter, true
}
