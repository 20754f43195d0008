// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package adapter defines the uniform facade every simulated body
// exposes to package scene, regardless of whether it is backed by a FEM
// mesh, a correspondence-peridynamics particle cloud, an SPG particle
// cloud, or a rigid body. It plays the same role one level up as the
// gofem's Elem interface (fem/element.go: AddToRhs/AddToKb/Update
// hides whether a cell is a solid, a rod, or a joint from the solver
// loop); here it hides whether a body is mesh-based or particle-based
// from the scene driver.
package adapter

import "context"

// Adapter is implemented by mesh.Mesh-backed bodies, peridynamics and
// SPG particle-system-backed bodies, and rigidbody.RigidBody.
type Adapter interface {
	// Solve advances the body to static/quasi-static equilibrium under
	// its currently applied external/contact forces. Mesh-backed bodies
	// run Newton-Raphson (package statics); particle-backed bodies settle
	// via damped explicit iteration; rigid bodies are a no-op.
	Solve(ctx context.Context) error

	// Step advances the body by one explicit time increment dt under its
	// currently applied forces.
	Step(ctx context.Context, dt float64) error

	// StableDt returns this body's own explicit stability limit, or
	// +Inf if the body imposes no constraint (e.g. rigid bodies, or
	// mesh bodies driven only through implicit statics).
	StableDt() float64

	// Displacements returns the per-node/per-particle displacement
	// vectors in the body's own enumeration order.
	Displacements() [][]float64

	// Velocities returns a best-effort per-node/per-particle velocity,
	// used by package contact's Coulomb friction law; bodies with no
	// tracked velocity state (a mesh solved only through implicit
	// statics, a prescribed rigid body) return all zeros.
	Velocities() [][]float64

	// Stress returns a representative stress measure per node/particle
	// (Gauss-point stresses averaged to nodes for mesh bodies, the
	// per-particle Cauchy stress for particle bodies) in Voigt form.
	Stress() [][]float64

	// Damage returns a scalar damage/failure indicator per node/particle,
	// 0 meaning intact; mesh bodies without a damage model return all
	// zeros.
	Damage() []float64

	// CurrentPositions returns current (reference + displacement) node
	// or particle coordinates.
	CurrentPositions() [][]float64

	// ReferencePositions returns the undeformed node or particle
	// coordinates.
	ReferencePositions() [][]float64

	// InjectContactForces adds an externally computed contact force to
	// node/particle idx, accumulating across multiple contact pairs
	// touching the same point within a step.
	InjectContactForces(idx int, force []float64)

	// ClearContactForces zeroes all previously injected contact forces,
	// called once per step before contact detection recomputes them.
	ClearContactForces()
}
