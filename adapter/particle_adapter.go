// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package adapter

import (
	"context"
	"math"

	"github.com/cpmech/gosl/chk"

	"github.com/dpedroso-lab/spinefem/msolid"
	"github.com/dpedroso-lab/spinefem/peridynamics"
	"github.com/dpedroso-lab/spinefem/spg"
)

// settleTolerance and settleMaxSteps bound how long Solve's damped
// explicit iteration runs before giving up; particle bodies have no
// Newton tangent, so equilibrium is approached by letting kinetic-energy
// damping run to rest (a dynamic-relaxation quasi-static driver).
const (
	settleTolerance = 1e-10
	settleMaxSteps  = 20000
	settleDt        = 1e-3
	settleDamping   = 0.02
)

// PeridynamicsAdapter wraps a correspondence-peridynamics particle
// system.
type PeridynamicsAdapter struct {
	System *peridynamics.ParticleSystem
	Mats   map[int]msolid.Material

	baseExt [][]float64
}

func NewPeridynamicsAdapter(p *peridynamics.ParticleSystem, mats map[int]msolid.Material) *PeridynamicsAdapter {
	base := make([][]float64, len(p.Fext))
	for i := range base {
		base[i] = append([]float64(nil), p.Fext[i]...)
	}
	return &PeridynamicsAdapter{System: p, Mats: mats, baseExt: base}
}

func (o *PeridynamicsAdapter) Solve(ctx context.Context) error {
	prevKE := math.Inf(1)
	for step := 0; step < settleMaxSteps; step++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		ke, err := o.System.StepQuasiStatic(settleDt, o.Mats, settleDamping)
		if err != nil {
			return err
		}
		if ke < settleTolerance && ke <= prevKE {
			return nil
		}
		prevKE = ke
	}
	return chk.Err("peridynamics body did not settle within %d explicit steps", settleMaxSteps)
}

func (o *PeridynamicsAdapter) Step(ctx context.Context, dt float64) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	_, err := o.System.StepQuasiStatic(dt, o.Mats, 0.0)
	return err
}

// StableDt delegates to the particle system's effective-stiffness
// spectral estimate, feeding it the P-wave modulus of each registered
// material.
func (o *PeridynamicsAdapter) StableDt() float64 {
	return o.System.StableDt(func(matID int) float64 {
		if mat, ok := o.Mats[matID]; ok {
			return pWaveModulus(mat)
		}
		return 0
	})
}

func (o *PeridynamicsAdapter) Displacements() [][]float64 { return o.System.U }
func (o *PeridynamicsAdapter) Velocities() [][]float64    { return o.System.Vel }

// Stress returns each particle's Voigt stress as of the last force
// computation (ComputeForces is called by every Solve/Step already;
// callers wanting a fresh value at an otherwise-unchanged state can call
// o.System.ComputeForces directly first).
func (o *PeridynamicsAdapter) Stress() [][]float64 { return o.System.Sig }

func (o *PeridynamicsAdapter) Damage() []float64 {
	n := len(o.System.X)
	dmg := make([]float64, n)
	b := o.System.Bonds
	for i := 0; i < b.N; i++ {
		total, broken := b.Counts[i], 0
		for k := 0; k < b.Counts[i]; k++ {
			if b.Broken[b.Offsets[i]+k] {
				broken++
			}
		}
		if total > 0 {
			dmg[i] = float64(broken) / float64(total)
		}
	}
	return dmg
}

func (o *PeridynamicsAdapter) CurrentPositions() [][]float64 {
	o.System.UpdateCurrent()
	return currentPositions(o.System.X, o.System.U)
}
func (o *PeridynamicsAdapter) ReferencePositions() [][]float64 { return o.System.X }

func (o *PeridynamicsAdapter) InjectContactForces(idx int, force []float64) {
	for d, v := range force {
		o.System.Fext[idx][d] += v
	}
}

func (o *PeridynamicsAdapter) ClearContactForces() {
	for i := range o.baseExt {
		copy(o.System.Fext[i], o.baseExt[i])
	}
}

// SPGAdapter wraps a smoothed-particle-Galerkin system.
type SPGAdapter struct {
	System *spg.System
	Mats   map[int]msolid.Material

	baseExt [][]float64
}

func NewSPGAdapter(s *spg.System, mats map[int]msolid.Material) *SPGAdapter {
	base := make([][]float64, len(s.Fext))
	for i := range base {
		base[i] = append([]float64(nil), s.Fext[i]...)
	}
	return &SPGAdapter{System: s, Mats: mats, baseExt: base}
}

func (o *SPGAdapter) Solve(ctx context.Context) error {
	prevKE := math.Inf(1)
	for step := 0; step < settleMaxSteps; step++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		ke, err := o.System.StepQuasiStatic(settleDt, o.Mats, settleDamping)
		if err != nil {
			return err
		}
		if ke < settleTolerance && ke <= prevKE {
			return nil
		}
		prevKE = ke
	}
	return chk.Err("SPG body did not settle within %d explicit steps", settleMaxSteps)
}

func (o *SPGAdapter) Step(ctx context.Context, dt float64) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	_, err := o.System.StepQuasiStatic(dt, o.Mats, 0.0)
	return err
}

func (o *SPGAdapter) StableDt() float64 {
	return o.System.StableDt(func(matID int) float64 {
		if mat, ok := o.Mats[matID]; ok {
			return pWaveModulus(mat)
		}
		return 0
	})
}

func (o *SPGAdapter) Displacements() [][]float64 { return o.System.U }
func (o *SPGAdapter) Velocities() [][]float64    { return o.System.Vel }

func (o *SPGAdapter) Stress() [][]float64 { return o.System.Sig }

func (o *SPGAdapter) Damage() []float64 {
	n := len(o.System.X)
	dmg := make([]float64, n)
	b := o.System.Bonds
	for i := 0; i < b.N; i++ {
		total, broken := b.Counts[i], 0
		for k := 0; k < b.Counts[i]; k++ {
			if b.Broken[b.Offsets[i]+k] {
				broken++
			}
		}
		if total > 0 {
			dmg[i] = float64(broken) / float64(total)
		}
	}
	return dmg
}

func (o *SPGAdapter) CurrentPositions() [][]float64 {
	o.System.UpdateCurrent()
	return currentPositions(o.System.X, o.System.U)
}
func (o *SPGAdapter) ReferencePositions() [][]float64 { return o.System.X }

func (o *SPGAdapter) InjectContactForces(idx int, force []float64) {
	for d, v := range force {
		o.System.Fext[idx][d] += v
	}
}

func (o *SPGAdapter) ClearContactForces() {
	for i := range o.baseExt {
		copy(o.System.Fext[i], o.baseExt[i])
	}
}

func currentPositions(X, U [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i := range X {
		out[i] = make([]float64, len(X[i]))
		for d := range X[i] {
			out[i][d] = X[i][d] + U[i][d]
		}
	}
	return out
}

// pWaveModulus extracts the dilatational modulus lambda + 2*mu from
// material kinds exposing Lamé constants; 0 disables the stable-dt
// estimate (the adapter then reports +Inf and never throttles).
func pWaveModulus(mat msolid.Material) float64 {
	switch mt := mat.(type) {
	case *msolid.Elastic:
		return mt.Lambda + 2.0*mt.Mu
	case *msolid.NeoHookean:
		return mt.Lambda + 2.0*mt.Mu
	default:
		return 0
	}
}
