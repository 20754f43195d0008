// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package peridynamics implements the correspondence (non-ordinary
// state-based, NOSB) formulation: per-particle shape tensor and
// deformation-gradient reconstruction from bond geometry, a
// msolid.Material for the constitutive response, force-state assembly,
// Silling-Bobaru zero-energy-mode (hourglass) stabilization, and explicit
// quasi-static time integration with viscous velocity damping. Stress and
// material evaluation reuse package msolid (gofem's constitutive
// framework, generalised); the particle/bond bookkeeping has no gofem
// analogue (cpmech/gofem is a mesh code) and follows the classical
// correspondence formulation (Silling & Lehoucq; Breitenfeld et al.).
package peridynamics

import (
	"math"

	"github.com/cpmech/gosl/chk"

	"github.com/dpedroso-lab/spinefem/msolid"
	"github.com/dpedroso-lab/spinefem/peridynamics/bond"
)

// ParticleSystem holds positions, volumes, and per-particle material
// assignment for a correspondence peridynamics body.
type ParticleSystem struct {
	Dim     int
	X       [][]float64 // reference positions
	x       [][]float64 // current positions
	U       [][]float64
	Vel     [][]float64
	Fint    [][]float64
	Fext    [][]float64
	Vol     []float64
	Density []float64
	MatID   []int
	Fixed   [][]bool

	Bonds        *bond.List
	Horizon      float64
	CritStretch  float64
	StabC        float64 // stabilization stiffness factor

	Sig [][]float64 // Voigt stress at each particle, from the last ComputeForces call
}

// NewParticleSystem builds bonds for every particle within horizon delta
// and allocates per-particle state.
func NewParticleSystem(dim int, X [][]float64, vol, density []float64, matID []int, delta, critStretch, stabC float64) *ParticleSystem {
	n := len(X)
	p := &ParticleSystem{
		Dim: dim, X: X, Vol: vol, Density: density, MatID: matID,
		Horizon: delta, CritStretch: critStretch, StabC: stabC,
	}
	p.x = make([][]float64, n)
	p.U = make([][]float64, n)
	p.Vel = make([][]float64, n)
	p.Fint = make([][]float64, n)
	p.Fext = make([][]float64, n)
	p.Fixed = make([][]bool, n)
	for i := 0; i < n; i++ {
		p.x[i] = append([]float64(nil), X[i]...)
		p.U[i] = make([]float64, dim)
		p.Vel[i] = make([]float64, dim)
		p.Fint[i] = make([]float64, dim)
		p.Fext[i] = make([]float64, dim)
		p.Fixed[i] = make([]bool, dim)
	}
	p.Bonds = bond.Build(X, delta, dim, 40)
	return p
}

func (p *ParticleSystem) UpdateCurrent() {
	for i := range p.x {
		for d := 0; d < p.Dim; d++ {
			p.x[i][d] = p.X[i][d] + p.U[i][d]
		}
	}
}

// shapeTensor computes the reference shape tensor K_i = sum_j omega_j
// (X_j - X_i) (X_j - X_i)^T Vol_j over intact bonds, with the linear
// influence weight omega = 1 - |xi|/delta stored on each bond; this is
// inverted to recover the deformation gradient via the correspondence
// mapping.
func (p *ParticleSystem) shapeTensor(i int) [3][3]float64 {
	var K [3][3]float64
	b := p.Bonds
	for k := 0; k < b.Counts[i]; k++ {
		if b.Broken[b.Offsets[i]+k] {
			continue
		}
		om := b.Omega[b.Offsets[i]+k]
		j := int(b.Neighbor[b.Offsets[i]+k])
		for a := 0; a < p.Dim; a++ {
			for c := 0; c < p.Dim; c++ {
				K[a][c] += om * (p.X[j][a] - p.X[i][a]) * (p.X[j][c] - p.X[i][c]) * p.Vol[j]
			}
		}
	}
	// unit diagonal in the unused out-of-plane slot keeps a 2D tensor invertible
	for a := p.Dim; a < 3; a++ {
		K[a][a] = 1
	}
	return K
}

// deformationGradient reconstructs F_i = (sum_j omega_j (x_j-x_i)
// (X_j-X_i)^T Vol_j) * K_i^-1, the correspondence model's least-squares
// deformation mapping.
func (p *ParticleSystem) deformationGradient(i int, Kinv [3][3]float64) [9]float64 {
	var N [3][3]float64
	b := p.Bonds
	for k := 0; k < b.Counts[i]; k++ {
		if b.Broken[b.Offsets[i]+k] {
			continue
		}
		om := b.Omega[b.Offsets[i]+k]
		j := int(b.Neighbor[b.Offsets[i]+k])
		for a := 0; a < p.Dim; a++ {
			for c := 0; c < p.Dim; c++ {
				N[a][c] += om * (p.x[j][a] - p.x[i][a]) * (p.X[j][c] - p.X[i][c]) * p.Vol[j]
			}
		}
	}
	var F [9]float64
	for a := 0; a < 3; a++ {
		for c := 0; c < 3; c++ {
			if a >= p.Dim || c >= p.Dim {
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
	return F
}

func invert3(K [3][3]float64) ([3][3]float64, error) {
	det := K[0][0]*(K[1][1]*K[2][2]-K[1][2]*K[2][1]) -
		K[0][1]*(K[1][0]*K[2][2]-K[1][2]*K[2][0]) +
		K[0][2]*(K[1][0]*K[2][1]-K[1][1]*K[2][0])
	if math.Abs(det) < 1e-20 {
		return [3][3]float64{}, chk.Err("shape tensor is singular (det=%v); particle has too few bonds", det)
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

// ComputeForces assembles the per-particle internal force density from
// the correspondence force state T_ij = omega_j * sigma_i * K_i^-1 *
// (X_j-X_i): f_i = sum_j (T_ij - T_ji + c_bond*(eta_j - F_i*xi_j)) *
// Vol_j, the second term being the zero-energy stabilization penalizing
// deviation of the actual bond deformation from the affine motion F_i
// predicts (Silling-Bobaru hourglass control).
func (p *ParticleSystem) ComputeForces(mats map[int]msolid.Material) error {
	n := len(p.X)
	for i := range p.Fint {
		for d := range p.Fint[i] {
			p.Fint[i][d] = 0
		}
	}
	nsig := 3
	if p.Dim == 3 {
		nsig = 6
	}
	sigmas := make([][]float64, n)
	Kinvs := make([][3][3]float64, n)
	Fs := make([][9]float64, n)
	for i := 0; i < n; i++ {
		K := p.shapeTensor(i)
		Kinv, err := invert3(K)
		if err != nil {
			return chk.Err("particle %d: %v", i, err)
		}
		Kinvs[i] = Kinv
		F := p.deformationGradient(i, Kinv)
		Fs[i] = F
		mat, ok := mats[p.MatID[i]]
		if !ok {
			return chk.Err("no material registered for matID %d (particle %d)", p.MatID[i], i)
		}
		var sig []float64
		var err2 error
		switch mt := mat.(type) {
		case msolid.LargeStrain:
			sig, err2 = mt.StressLargeStrain(F)
		case msolid.SmallStrain:
			eps := smallStrainFromF(F, p.Dim)
			sig, err2 = mt.StressSmallStrain(eps)
		default:
			return chk.Err("material for matID %d cannot be evaluated in correspondence peridynamics", p.MatID[i])
		}
		if err2 != nil {
			return chk.Err("particle %d: %v", i, err2)
		}
		sigmas[i] = sig
		_ = nsig
	}
	p.Sig = sigmas
	for i := 0; i < n; i++ {
		b := p.Bonds
		sigMatI := voigtTo3x3(sigmas[i], p.Dim)
		for k := 0; k < b.Counts[i]; k++ {
			if b.Broken[b.Offsets[i]+k] {
				continue
			}
			om := b.Omega[b.Offsets[i]+k]
			j := int(b.Neighbor[b.Offsets[i]+k])
			sigMatJ := voigtTo3x3(sigmas[j], p.Dim)
			var Ti, Tj [3]float64
			for a := 0; a < p.Dim; a++ {
				for c := 0; c < p.Dim; c++ {
					Ti[a] += om * sigMatI[a][c] * transposedKinvCol(Kinvs[i], c, p.X, i, j, p.Dim)
					Tj[a] += om * sigMatJ[a][c] * transposedKinvCol(Kinvs[j], c, p.X, j, i, p.Dim)
				}
			}
			// the reverse bond j->i contributes the mirrored term when
			// its own turn comes, so only i accumulates here
			stab := p.stabForce(i, j, Fs[i])
			for d := 0; d < p.Dim; d++ {
				p.Fint[i][d] += (Ti[d] - Tj[d] + stab[d]) * p.Vol[j]
			}
		}
	}
	return nil
}

func transposedKinvCol(Kinv [3][3]float64, c int, X [][]float64, i, j, dim int) float64 {
	acc := 0.0
	for k := 0; k < dim; k++ {
		acc += Kinv[k][c] * (X[j][k] - X[i][k])
	}
	return acc
}

// stabForce is the zero-energy-mode correction c_bond*(eta - F_i*xi):
// the deviation of the actual bond deformation eta from the affine
// motion the reconstructed deformation gradient predicts. StabC is the
// c_bond modulus, see StabilizationCoefficient.
func (p *ParticleSystem) stabForce(i, j int, F [9]float64) [3]float64 {
	var f [3]float64
	for a := 0; a < p.Dim; a++ {
		eta := p.x[j][a] - p.x[i][a]
		affine := 0.0
		for c := 0; c < p.Dim; c++ {
			affine += F[a*3+c] * (p.X[j][c] - p.X[i][c])
		}
		f[a] = p.StabC * (eta - affine)
	}
	return f
}

// StabilizationCoefficient is the zero-energy-mode penalty modulus
// c_bond = gs*(K + 4mu/3)/(horizon*pi) for bulk modulus K and shear
// modulus mu; gs is the user-chosen stabilization factor, sensibly in
// [0.05, 0.15]. Pass the result as a ParticleSystem's stabC.
func StabilizationCoefficient(gs, bulk, shear, horizon float64) float64 {
	return gs * (bulk + 4.0*shear/3.0) / (horizon * math.Pi)
}

// StableDt estimates the explicit stability limit 2/sqrt(lambda_max)
// from the per-particle effective stiffness spectral radius
// k_eff = modulus * V_i * (|sum dpsi|^2 + sum |dpsi_k|^2), with the
// effective shape-function gradient dpsi_k = omega * K_i^-1 * xi * V_j
// and modulus the P-wave modulus lambda + 2*mu of the particle's
// material.
func (p *ParticleSystem) StableDt(modulus func(matID int) float64) float64 {
	lambdaMax := 0.0
	b := p.Bonds
	for i := range p.X {
		if p.Density[i] <= 0 || p.Vol[i] <= 0 {
			continue
		}
		K := p.shapeTensor(i)
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
			for a := 0; a < p.Dim; a++ {
				for c := 0; c < p.Dim; c++ {
					dpsi[a] += om * Kinv[a][c] * (p.X[j][c] - p.X[i][c])
				}
				dpsi[a] *= p.Vol[j]
				dpsiSum[a] += dpsi[a]
				dpsiSq += dpsi[a] * dpsi[a]
			}
		}
		sumSq := 0.0
		for a := 0; a < p.Dim; a++ {
			sumSq += dpsiSum[a] * dpsiSum[a]
		}
		kEff := modulus(p.MatID[i]) * p.Vol[i] * (sumSq + dpsiSq)
		if kEff <= 0 {
			continue
		}
		lam := kEff / (p.Density[i] * p.Vol[i])
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
	// eps = sym(F - I)
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

// FailBonds applies the critical-stretch criterion to every intact bond
// and returns how many broke this call. Shape tensors need no explicit
// refresh: ComputeForces rebuilds them from intact bonds every time.
func (p *ParticleSystem) FailBonds() int {
	if p.CritStretch <= 0 {
		return 0
	}
	broke := 0
	b := p.Bonds
	for i := range p.X {
		for k := 0; k < b.Counts[i]; k++ {
			if b.Broken[b.Offsets[i]+k] {
				continue
			}
			if b.Fail(i, k, p.x, p.CritStretch) {
				broke++
			}
		}
	}
	return broke
}

// StepQuasiStatic advances the particle system one explicit step with
// viscous damping: every free velocity component is scaled by
// (1 - dampCoef) before the new acceleration is added, on every step;
// there is no kinetic-energy-based velocity reset. It calls
// ComputeForces first and FailBonds last, and returns the kinetic energy
// after the step.
func (p *ParticleSystem) StepQuasiStatic(dt float64, mats map[int]msolid.Material, dampCoef float64) (float64, error) {
	if err := p.ComputeForces(mats); err != nil {
		return 0, err
	}
	ke := 0.0
	for i := range p.X {
		if p.Vol[i] <= 0 || p.Density[i] <= 0 {
			return 0, chk.Err("particle %d must have positive volume and density", i)
		}
		mass := p.Density[i] * p.Vol[i]
		for d := 0; d < p.Dim; d++ {
			if p.Fixed[i][d] {
				continue
			}
			// Fint is a force density (per unit volume); Fext is an
			// actual nodal force (contact injection, applied loads)
			acc := (p.Fext[i][d]/p.Vol[i] + p.Fint[i][d]) / p.Density[i]
			p.Vel[i][d] = (1.0-dampCoef)*p.Vel[i][d] + dt*acc
			p.U[i][d] += dt * p.Vel[i][d]
			ke += 0.5 * mass * p.Vel[i][d] * p.Vel[i][d]
		}
	}
	p.UpdateCurrent()
	p.FailBonds()
	return ke, nil
}
