// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rigidbody implements a prescribed-motion rigid body: a set of
// reference points (e.g. a vertebral body's bounding shell) carried
// along a translation + Rodrigues-rotation cursor driven by time, rather
// than by the force balance every other adapter.Adapter solves. Used for
// loading platens and fixed anatomical anchors in package scene.
package rigidbody

import (
	"context"
	"math"

	"github.com/cpmech/gosl/chk"
)

// Motion is the time-parameterized rigid transform: a translation vector
// and a rotation (axis, angle in radians) about Origin, both evaluated
// at a given time.
type Motion struct {
	Translation func(t float64) []float64
	Axis        func(t float64) []float64 // need not be unit length
	Angle       func(t float64) float64
	Origin      []float64
}

// RigidBody adapts a Motion cursor to the adapter.Adapter facade.
type RigidBody struct {
	X      [][]float64 // reference points
	U      [][]float64 // current displacement, recomputed on Step
	Motion Motion
	Dim    int
	t      float64

	NetForce  []float64 // accumulated reaction force from injected contact forces
	NetTorque []float64 // accumulated reaction torque about Motion.Origin
}

func New(dim int, X [][]float64, motion Motion) *RigidBody {
	u := make([][]float64, len(X))
	for i := range u {
		u[i] = make([]float64, dim)
	}
	return &RigidBody{
		X: X, U: u, Motion: motion, Dim: dim,
		NetForce: make([]float64, dim), NetTorque: make([]float64, 3),
	}
}

// rotate applies Rodrigues' rotation formula: v_rot = v*cos(theta) +
// (k x v)*sin(theta) + k*(k.v)*(1-cos(theta)), k the unit rotation axis.
func rotate(v, axis []float64, angle float64) []float64 {
	var k [3]float64
	norm := 0.0
	for d := 0; d < 3; d++ {
		if d < len(axis) {
			k[d] = axis[d]
		}
		norm += k[d] * k[d]
	}
	norm = math.Sqrt(norm)
	if norm < 1e-14 {
		return append([]float64(nil), v...)
	}
	for d := 0; d < 3; d++ {
		k[d] /= norm
	}
	var vv [3]float64
	for d := 0; d < 3; d++ {
		if d < len(v) {
			vv[d] = v[d]
		}
	}
	cosT, sinT := math.Cos(angle), math.Sin(angle)
	kCrossV := [3]float64{
		k[1]*vv[2] - k[2]*vv[1],
		k[2]*vv[0] - k[0]*vv[2],
		k[0]*vv[1] - k[1]*vv[0],
	}
	kDotV := k[0]*vv[0] + k[1]*vv[1] + k[2]*vv[2]
	var out [3]float64
	for d := 0; d < 3; d++ {
		out[d] = vv[d]*cosT + kCrossV[d]*sinT + k[d]*kDotV*(1-cosT)
	}
	return out[:len(v)]
}

// recompute refreshes U for every reference point at the body's current
// time.
func (o *RigidBody) recompute() {
	trans := o.Motion.Translation(o.t)
	angle := o.Motion.Angle(o.t)
	axis := o.Motion.Axis(o.t)
	origin := o.Motion.Origin
	for i, x := range o.X {
		rel := make([]float64, o.Dim)
		for d := 0; d < o.Dim; d++ {
			rel[d] = x[d] - origin[d]
		}
		rotated := rotate(rel, axis, angle)
		for d := 0; d < o.Dim; d++ {
			o.U[i][d] = rotated[d] - rel[d] + trans[d]
		}
	}
}

func (o *RigidBody) Solve(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	o.recompute()
	return nil
}

func (o *RigidBody) Step(ctx context.Context, dt float64) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if dt <= 0 {
		return chk.Err("rigid body step requires dt > 0, got %v", dt)
	}
	o.t += dt
	o.recompute()
	return nil
}

// StableDt is +Inf: a prescribed rigid motion never limits an explicit
// step, it only ever constrains what touches it.
func (o *RigidBody) StableDt() float64 { return math.Inf(1) }

func (o *RigidBody) Displacements() [][]float64 { return o.U }

// Velocities returns zeros: a prescribed rigid motion's instantaneous
// velocity is not tracked per node, only its net reaction load.
func (o *RigidBody) Velocities() [][]float64 {
	out := make([][]float64, len(o.X))
	for i := range out {
		out[i] = make([]float64, o.Dim)
	}
	return out
}
func (o *RigidBody) Stress() [][]float64        { return make([][]float64, len(o.X)) }
func (o *RigidBody) Damage() []float64          { return make([]float64, len(o.X)) }

func (o *RigidBody) CurrentPositions() [][]float64 {
	out := make([][]float64, len(o.X))
	for i, x := range o.X {
		out[i] = make([]float64, o.Dim)
		for d := 0; d < o.Dim; d++ {
			out[i][d] = x[d] + o.U[i][d]
		}
	}
	return out
}
func (o *RigidBody) ReferencePositions() [][]float64 { return o.X }

// InjectContactForces accumulates the reaction load onto the body as a
// whole (its own motion stays prescribed; only the net reaction is kept,
// for force-controlled loading protocols that read it back).
func (o *RigidBody) InjectContactForces(idx int, force []float64) {
	pos := o.X[idx]
	for d, v := range force {
		o.NetForce[d] += v
	}
	rel := make([]float64, 3)
	for d := 0; d < o.Dim; d++ {
		rel[d] = pos[d] - o.Motion.Origin[d]
	}
	f3 := make([]float64, 3)
	copy(f3, force)
	o.NetTorque[0] += rel[1]*f3[2] - rel[2]*f3[1]
	o.NetTorque[1] += rel[2]*f3[0] - rel[0]*f3[2]
	o.NetTorque[2] += rel[0]*f3[1] - rel[1]*f3[0]
}

func (o *RigidBody) ClearContactForces() {
	for d := range o.NetForce {
		o.NetForce[d] = 0
	}
	for d := range o.NetTorque {
		o.NetTorque[d] = 0
	}
}
