// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package spg implements smoothed particle Galerkin: a meshfree method
// close in structure to correspondence peridynamics but weighted by a
// cubic B-spline kernel rather than peridynamics' linear-decay bond
// influence, used here for
// tissues expected to undergo very large shear (nucleus pulposus at
// failure). It shares package peridynamics/bond for neighbor search and
// bond-failure bookkeeping, and package msolid for constitutive response,
// since gofem implements no meshfree method;
// the kernel and deformation-gradient reconstruction follow the
// classical SPG formulation (Wu, Wu & Lu) built from the same
// shape-tensor approach used in package peridynamics.
package spg

import (
	"math"

	"github.com/cpmech/gosl/chk"

	"github.com/dpedroso-lab/spinefem/msolid"
	"github.com/dpedroso-lab/spinefem/peridynamics/bond"
)

// cubicSpline evaluates the cubic B-spline kernel value at distance r for
// smoothing length h: q = r/h, support radius 2h, value 1 at r = 0 (no
// 2D/3D normalization constant is applied; 1D profile, applied
// isotropically).
func cubicSpline(r, h float64) float64 {
	q := r / h
	switch {
	case q < 0:
		return 0
	case q <= 1:
		return 1 - 1.5*q*q + 0.75*q*q*q
	case q <= 2:
		d := 2 - q
		return 0.25 * d * d * d
	default:
		return 0
	}
}

// System is an SPG particle system: geometry and state mirror
// peridynamics.ParticleSystem, but the influence weight on each bond is
// the cubic B-spline kernel value rather than peridynamics' linear
// decay, so the shape tensor and force state are kernel-weighted.
type System struct {
	Dim           int
	X, x, U, Vel  [][]float64
	Fint, Fext    [][]float64
	Vol, Density  []float64
	MatID         []int
	Fixed         [][]bool
	Bonds         *bond.List
	SupportRadius float64
	CritStretch   float64
	PlasticFailStrain float64
	StabC         float64

	Sig [][]float64 // Voigt stress at each particle, from the last ComputeForces call
}

func NewSystem(dim int, X [][]float64, vol, density []float64, matID []int, h, critStretch, plasticFailStrain, stabC float64) *System {
	n := len(X)
	s := &System{
		Dim: dim, X: X, Vol: vol, Density: density, MatID: matID,
		SupportRadius: h, CritStretch: critStretch, PlasticFailStrain: plasticFailStrain, StabC: stabC,
	}
	s.x = make([][]float64, n)
	s.U = make([][]float64, n)
	s.Vel = make([][]float64, n)
	s.Fint = make([][]float64, n)
	s.Fext = make([][]float64, n)
	s.Fixed = make([][]bool, n)
	for i := 0; i < n; i++ {
		s.x[i] = append([]float64(nil), X[i]...)
		s.U[i] = make([]float64, dim)
		s.Vel[i] = make([]float64, dim)
		s.Fint[i] = make([]float64, dim)
		s.Fext[i] = make([]float64, dim)
		s.Fixed[i] = make([]bool, dim)
	}
	s.Bonds = bond.Build(X, 2*h, dim, 60)
	// the bond builder fills Omega with peridynamics' linear decay;
	// SPG's influence is the B-spline kernel over the same storage
	for i := 0; i < n; i++ {
		for k := 0; k < s.Bonds.Counts[i]; k++ {
			r := s.Bonds.RestLen[s.Bonds.Offsets[i]+k]
			s.Bonds.Omega[s.Bonds.Offsets[i]+k] = cubicSpline(r, h)
		}
	}
	return s
}

func (s *System) UpdateCurrent() {
	for i := range s.x {
		for d := 0; d < s.Dim; d++ {
			s.x[i][d] = s.X[i][d] + s.U[i][d]
		}
	}
}

func (s *System) shapeTensorAndN(i int) (K, N [3][3]float64) {
	b := s.Bonds
	for k := 0; k < b.Counts[i]; k++ {
		if b.Broken[b.Offsets[i]+k] {
			continue
		}
		w := b.Omega[b.Offsets[i]+k] * s.Vol[int(b.Neighbor[b.Offsets[i]+k])]
		j := int(b.Neighbor[b.Offsets[i]+k])
		for a := 0; a < s.Dim; a++ {
			for c := 0; c < s.Dim; c++ {
				K[a][c] += w * (s.X[j][a] - s.X[i][a]) * (s.X[j][c] - s.X[i][c])
				N[a][c] += w * (s.x[j][a] - s.x[i][a]) * (s.X[j][c] - s.X[i][c])
			}
		}
	}
	// out-of-plane axes get a unit entry so K stays invertible in 2D
	for a := s.Dim; a < 3; a++ {
		K[a][a] = 1
	}
	return
}

func invert3(K [3][3]float64) ([3][3]float64, error) {
	det := K[0][0]*(K[1][1]*K[2][2]-K[1][2]*K[2][1]) -
		K[0][1]*(K[1][0]*K[2][2]-K[1][2]*K[2][0]) +
		K[0][2]*(K[1][0]*K[2][1]-K[1][1]*K[2][0])
	if math.Abs(det) < 1e-20 {
		return [3][3]float64{}, chk.Err("SPG shape tensor is singular (det=%v)", det)
	}
	var inv [3][3]float64
	inv[0][0] = (K[1][1]*K[2][2] - K[1][2]*K[2][1]) / det
	inv[0][1] = (K[0][2]*K[2][1] - K[0][1]*K[2][2]) / det
	inv[0][2] = (K[0][1]*K[1][2] - K[0][2]*K[1][1]) / det
	inv[1][0] = (K[1][2]*K[2][0] - K[1][0]*K[2][2]) / det
	inv[1][1] = (K[0][0]*K[2][2] - K[0][2]*K[2][0]) / det
	inv[1][2] = (K[0][2]*K[1][0] - K[0][0]*K[1][2]) / det
	inv[2][0] = (K[1][0]*K[2][1] - K[1][1]*K[2][0]) / det
	inv[2][1] = (K[0][1]*K[2][0] - K[0][0]*K[2][1]) / det
	inv[2][2] = (K[0][0]*K[1][1] - K[0][1]*K[1][0]) / det
	return inv, nil
}

// ComputeForces assembles per-particle internal force the same way as
// package peridynamics' correspondence model, weighted by the cubic
// B-spline kernel instead of peridynamics' linear-decay influence.
func (s *System) ComputeForces(mats map[int]msolid.Material) error {
	n := len(s.X)
	for i := range s.Fint {
		for d := range s.Fint[i] {
			s.Fint[i][d] = 0
		}
	}
	sigmas := make([][]float64, n)
	Kinvs := make([][3][3]float64, n)
	Fs := make([][9]float64, n)
	for i := 0; i < n; i++ {
		K, N := s.shapeTensorAndN(i)
		Kinv, err := invert3(K)
		if err != nil {
			return chk.Err("particle %d: %v", i, err)
		}
		Kinvs[i] = Kinv
		var F [9]float64
		for a := 0; a < 3; a++ {
			for c := 0; c < 3; c++ {
				if a >= s.Dim || c >= s.Dim {
					if a == c {
						F[a*3+c] = 1
					}
					continue
				}
				acc := 0.0
				for k := 0; k < 3; k++ {
					acc += N[a][k] * Kinv[k][c]
				}
				F[a*3+c] = acc
			}
		}
		Fs[i] = F
		mat, ok := mats[s.MatID[i]]
		if !ok {
			return chk.Err("no material registered for matID %d (particle %d)", s.MatID[i], i)
		}
		var sig []float64
		var err2 error
		switch mt := mat.(type) {
		case msolid.LargeStrain:
			sig, err2 = mt.StressLargeStrain(F)
		case msolid.SmallStrain:
			eps := smallStrainFromF(F, s.Dim)
			sig, err2 = mt.StressSmallStrain(eps)
		default:
			return chk.Err("material for matID %d cannot be evaluated in SPG", s.MatID[i])
		}
		if err2 != nil {
			return chk.Err("particle %d: %v", i, err2)
		}
		sigmas[i] = sig
	}
	s.Sig = sigmas
	for i := 0; i < n; i++ {
		b := s.Bonds
		sigI := voigtTo3x3(sigmas[i], s.Dim)
		for k := 0; k < b.Counts[i]; k++ {
			if b.Broken[b.Offsets[i]+k] {
				continue
			}
			j := int(b.Neighbor[b.Offsets[i]+k])
			sigJ := voigtTo3x3(sigmas[j], s.Dim)
			w := b.Omega[b.Offsets[i]+k]
			var Ti, Tj [3]float64
			for a := 0; a < s.Dim; a++ {
				for c := 0; c < s.Dim; c++ {
					Ti[a] += w * sigI[a][c] * kinvDelta(Kinvs[i], c, s.X, i, j, s.Dim)
					Tj[a] += w * sigJ[a][c] * kinvDelta(Kinvs[j], c, s.X, j, i, s.Dim)
				}
			}
			// the reverse bond j->i contributes the mirrored term when
			// its own turn comes, so only i accumulates here
			stab := s.stabForce(i, j, Fs[i])
			for d := 0; d < s.Dim; d++ {
				s.Fint[i][d] += (Ti[d] - Tj[d] + stab[d]) * s.Vol[j]
			}
		}
	}
	return nil
}

func kinvDelta(Kinv [3][3]float64, c int, X [][]float64, i, j, dim int) float64 {
	acc := 0.0
	for k := 0; k < dim; k++ {
		acc += Kinv[k][c] * (X[j][k] - X[i][k])
	}
	return acc
}

// stabForce is the zero-energy-mode correction c_bond*(eta - F_i*xi),
// the same hourglass control package peridynamics applies; StabC is the
// c_bond modulus (peridynamics.StabilizationCoefficient).
func (s *System) stabForce(i, j int, F [9]float64) [3]float64 {
	var f [3]float64
	for a := 0; a < s.Dim; a++ {
		eta := s.x[j][a] - s.x[i][a]
		affine := 0.0
		for c := 0; c < s.Dim; c++ {
			affine += F[a*3+c] * (s.X[j][c] - s.X[i][c])
		}
		f[a] = s.StabC * (eta - affine)
	}
	return f
}

// StableDt estimates the explicit stability limit 2/sqrt(lambda_max)
// from the per-particle effective stiffness spectral radius, the same
// estimate peridynamics.ParticleSystem.StableDt uses but with the
// B-spline influence weights.
func (s *System) StableDt(modulus func(matID int) float64) float64 {
	lambdaMax := 0.0
	b := s.Bonds
	for i := range s.X {
		if s.Density[i] <= 0 || s.Vol[i] <= 0 {
			continue
		}
		K, _ := s.shapeTensorAndN(i)
		Kinv, err := invert3(K)
		if err != nil {
			continue
		}
		var dpsiSum [3]float64
		dpsiSq := 0.0
		for k := 0; k < b.Counts[i]; k++ {
			if b.Broken[b.Offsets[i]+k] {
				continue
			}
			om := b.Omega[b.Offsets[i]+k]
			j := int(b.Neighbor[b.Offsets[i]+k])
			var dpsi [3]float64
			for a := 0; a < s.Dim; a++ {
				for c := 0; c < s.Dim; c++ {
					dpsi[a] += om * Kinv[a][c] * (s.X[j][c] - s.X[i][c])
				}
				dpsi[a] *= s.Vol[j]
				dpsiSum[a] += dpsi[a]
				dpsiSq += dpsi[a] * dpsi[a]
			}
		}
		sumSq := 0.0
		for a := 0; a < s.Dim; a++ {
			sumSq += dpsiSum[a] * dpsiSum[a]
		}
		kEff := modulus(s.MatID[i]) * s.Vol[i] * (sumSq + dpsiSq)
		if kEff <= 0 {
			continue
		}
		lam := kEff / (s.Density[i] * s.Vol[i])
		if lam > lambdaMax {
			lambdaMax = lam
		}
	}
	if lambdaMax <= 0 {
		return math.Inf(1)
	}
	return 2.0 / math.Sqrt(lambdaMax)
}

func smallStrainFromF(F [9]float64, dim int) []float64 {
	e := [3][3]float64{}
	for a := 0; a < 3; a++ {
		for c := 0; c < 3; c++ {
			fac := F[a*3+c]
			if a == c {
				fac -= 1
			}
			e[a][c] = fac
		}
	}
	if dim == 2 {
		return []float64{e[0][0], e[1][1], e[0][1] + e[1][0]}
	}
	return []float64{e[0][0], e[1][1], e[2][2], e[0][1] + e[1][0], e[1][2] + e[2][1], e[0][2] + e[2][0]}
}

func voigtTo3x3(sig []float64, dim int) [3][3]float64 {
	var s [3][3]float64
	if dim == 2 {
		s[0][0], s[1][1] = sig[0], sig[1]
		s[0][1], s[1][0] = sig[2], sig[2]
		return s
	}
	s[0][0], s[1][1], s[2][2] = sig[0], sig[1], sig[2]
	s[0][1], s[1][0] = sig[3], sig[3]
	s[1][2], s[2][1] = sig[4], sig[4]
	s[0][2], s[2][0] = sig[5], sig[5]
	return s
}

// FailBonds marks bonds broken by stretch (brittle) or by the associated
// particle's accumulated plastic strain exceeding PlasticFailStrain
// (ductile tearing), matching the dual failure criteria of the original
// SPG tearing model.
func (s *System) FailBonds(plasticStrain []float64) {
	for i := 0; i < s.Bonds.N; i++ {
		for k := 0; k < s.Bonds.Counts[i]; k++ {
			if s.Bonds.Fail(i, k, s.x, s.CritStretch) {
				continue
			}
			j := int(s.Bonds.Neighbor[s.Bonds.Offsets[i]+k])
			if plasticStrain != nil && (plasticStrain[i] > s.PlasticFailStrain || plasticStrain[j] > s.PlasticFailStrain) {
				s.Bonds.Broken[s.Bonds.Offsets[i]+k] = true
			}
		}
	}
}

// StepQuasiStatic mirrors peridynamics.ParticleSystem.StepQuasiStatic
// (viscous damping by (1-dampCoef), returns the kinetic energy) but does
// not call FailBonds.
func (s *System) StepQuasiStatic(dt float64, mats map[int]msolid.Material, dampCoef float64) (float64, error) {
	if err := s.ComputeForces(mats); err != nil {
		return 0, err
	}
	ke := 0.0
	for i := range s.X {
		if s.Vol[i] <= 0 || s.Density[i] <= 0 {
			return 0, chk.Err("particle %d must have positive volume and density", i)
		}
		mass := s.Density[i] * s.Vol[i]
		for d := 0; d < s.Dim; d++ {
			if s.Fixed[i][d] {
				continue
			}
			// Fint is a force density (per unit volume); Fext is an
			// actual nodal force (contact injection, applied loads)
			acc := (s.Fext[i][d]/s.Vol[i] + s.Fint[i][d]) / s.Density[i]
			s.Vel[i][d] = (1.0-dampCoef)*s.Vel[i][d] + dt*acc
			s.U[i][d] += dt * s.Vel[i][d]
			ke += 0.5 * mass * s.Vel[i][d] * s.Vel[i][d]
		}
	}
	s.UpdateCurrent()
	return ke, nil
}
