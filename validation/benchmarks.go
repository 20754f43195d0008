// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validation

import (
	"math"

	"github.com/cpmech/gosl/num"
)

// ConstantStressPatch is the closed-form constant-stress solution for a
// rectangular linear-elastic plane-strain patch loaded by uniform normal
// tractions QnH (horizontal edges) and QnV (vertical edges). A single
// first-order element spanning the patch should reproduce it exactly, so
// it is the baseline patch test for the statics and dynamics solvers.
type ConstantStressPatch struct {
	QnH, QnV float64
	E, Nu    float64
}

// Stress returns the analytical sigma_x, sigma_y, sigma_z and the induced
// in-plane strains at load factor t.
func (p ConstantStressPatch) Stress(t float64) (sx, sy, sz, ex, ey float64) {
	sx = p.QnH * t
	sy = p.QnV * t
	sz = p.Nu * (sx + sy)
	ex = (sx - p.Nu*(sy+sz)) / p.E
	ey = (sy - p.Nu*(sz+sx)) / p.E
	return
}

// Displacement returns the analytical (ux, uy) at point x, measured from
// the fixed corner of the patch.
func (p ConstantStressPatch) Displacement(t float64, x []float64) (ux, uy float64) {
	_, _, _, ex, ey := p.Stress(t)
	return ex * x[0], ey * x[1]
}

// CheckStress compares sigma (Voigt order sx, sy, sz, sxy) against the
// analytical constant-stress solution and returns the largest component
// error alongside whether it is within tol.
func (p ConstantStressPatch) CheckStress(t float64, sigma []float64, tol float64) (maxErr float64, ok bool) {
	sx, sy, sz, _, _ := p.Stress(t)
	want := []float64{sx, sy, sz, 0}
	for i, w := range want {
		if i >= len(sigma) {
			break
		}
		e := math.Abs(sigma[i] - w)
		if e > maxErr {
			maxErr = e
		}
	}
	return maxErr, maxErr <= tol
}

// ThickCylinder is the Lame/Hill closed-form solution for a thick-walled
// cylinder of inner radius A and outer radius B under internal pressure P,
// covering the fully-elastic regime and, once P exceeds the elastic limit,
// the elastic-plastic regime with ideal (non-hardening) J2 plasticity. It
// is used to validate axisymmetric solves against a known radial/hoop
// stress profile -- the spine model's vertebral-body benchmark case.
type ThickCylinder struct {
	A, B, E, Nu, SigmaY float64

	y float64 // uniaxial yield stress converted to shear-yield scale
}

// NewThickCylinder builds a ThickCylinder and computes its derived yield
// scale. SigmaY must be positive.
func NewThickCylinder(a, b, e, nu, sigmaY float64) *ThickCylinder {
	return &ThickCylinder{
		A: a, B: b, E: e, Nu: nu, SigmaY: sigmaY,
		y: 2.0 * sigmaY / math.Sqrt(3.0),
	}
}

// YieldPressure returns the internal pressure at which yielding first
// initiates at the inner wall (r = A).
func (c *ThickCylinder) YieldPressure() float64 {
	coef := c.A * c.A / (c.B * c.B)
	return c.y * (1 - coef) / 2.0
}

// LimitPressure returns the internal pressure at which the plastic zone
// reaches the outer wall (r = B), i.e. full-section yield.
func (c *ThickCylinder) LimitPressure() float64 {
	return c.y * math.Log(c.B/c.A)
}

// PlasticRadius solves for the elastic-plastic boundary c in [A, B] given
// an internal pressure P above YieldPressure(). It is undefined (and
// unused) for a fully elastic pressure.
func (c *ThickCylinder) PlasticRadius(P float64) float64 {
	var nls num.NlSolver
	defer nls.Clean()
	fx := func(fx, x []float64) error {
		r := x[0]
		fx[0] = P/c.y - (math.Log(r/c.A) + (1-r*r/(c.B*c.B))/2)
		return nil
	}
	dfdx := func(j [][]float64, x []float64) error {
		r := x[0]
		j[0][0] = -1.0/r + r/(c.B*c.B)
		return nil
	}
	res := []float64{c.A}
	nls.Init(1, fx, nil, dfdx, true, false, nil)
	nls.Solve(res, false)
	return res[0]
}

// Stress returns the radial and hoop (tangential) stress at radius r,
// given the current elastic-plastic boundary plasticRadius (r <=
// plasticRadius is the plastic zone; passing A gives the elastic
// distribution at the onset of yield, P = YieldPressure).
func (c *ThickCylinder) Stress(r, plasticRadius float64) (sr, st float64) {
	b := c.B
	if r > plasticRadius {
		sr = -c.y * plasticRadius * plasticRadius * (b*b/(r*r) - 1.0) / (2.0 * b * b)
		st = c.y * plasticRadius * plasticRadius * (b*b/(r*r) + 1.0) / (2.0 * b * b)
		return
	}
	sr = c.y * (-0.5 - math.Log(plasticRadius/r) + plasticRadius*plasticRadius/(2.0*b*b))
	st = c.y * (0.5 - math.Log(plasticRadius/r) + plasticRadius*plasticRadius/(2.0*b*b))
	return
}
