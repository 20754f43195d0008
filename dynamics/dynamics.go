// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dynamics implements time integration for the FEM domain:
// lumped mass, the implicit Newmark-beta corrector (solved through
// package linsolver) and the explicit central-difference scheme, plus
// Rayleigh proportional damping. The Newmark coefficient bookkeeping is
// grounded on gofem's fem/dyncoefs.go DynCoefs (theta1=gamma,
// theta2=2*beta); this package only needs the constant-average-acceleration
// (gamma=1/2, beta=1/4) and central-difference (beta=0) special cases, so
// the general theta-method/HHT machinery is not carried over.
package dynamics

import (
	"math"
	"sort"

	"github.com/cpmech/gosl/chk"

	"github.com/dpedroso-lab/spinefem/linsolver"
	"github.com/dpedroso-lab/spinefem/mesh"
)

// Rayleigh holds mass- and stiffness-proportional damping coefficients:
// C = alphaM*M + alphaK*K.
type Rayleigh struct {
	AlphaM, AlphaK float64
}

// LumpedMass returns a per-node mass (row-sum lumping) from each
// element's reference volume and material density.
func LumpedMass(m *mesh.Mesh, density func(matID int) float64) []float64 {
	mass := make([]float64, m.NNodes)
	for e := 0; e < m.NElems; e++ {
		rho := density(m.MatID[e])
		share := rho * m.RefVol[e] / float64(len(m.Elems[e]))
		for _, v := range m.Elems[e] {
			mass[v] += share
		}
	}
	return mass
}

// Newmark integrates one step of the Newmark-beta method. gamma=0.5,
// beta=0.25 gives the unconditionally-stable constant-average-
// acceleration scheme (gofem's theta1=0.5, theta2=0.5 in dyncoefs.go
// terms, specialised to Newmark's own gamma/beta naming since this
// package never runs HHT or the generalised theta-method).
type Newmark struct {
	Gamma, Beta float64
	Mass        []float64
	Ray         Rayleigh
	Vel, Acc    [][]float64 // per-node velocity/acceleration, same shape as mesh.U
}

// NewNewmark allocates state for the constant-average-acceleration
// scheme by default.
func NewNewmark(m *mesh.Mesh, mass []float64, ray Rayleigh) *Newmark {
	vel := make([][]float64, m.NNodes)
	acc := make([][]float64, m.NNodes)
	for i := range vel {
		vel[i] = make([]float64, m.Dim)
		acc[i] = make([]float64, m.Dim)
	}
	return &Newmark{Gamma: 0.5, Beta: 0.25, Mass: mass, Ray: ray, Vel: vel, Acc: acc}
}

// Step advances displacements/velocities/accelerations through one
// implicit Newmark-beta step: form the predictors u_p, v_p from the
// last converged state, assemble the effective stiffness K_eff = K +
// (gamma/(beta*dt))*C + (1/(beta*dt^2))*M and effective load f_eff =
// Fext - K*(u_p + alphaK*v_p) - alphaM*M.*v_p with C = alphaM*M +
// alphaK*K, apply the Dirichlet penalty and solve K_eff*da = f_eff
// through package linsolver, then correct u/v/a from da. K is the
// tangent stiffness assembled by the caller at the last converged
// configuration (m.U on entry); for genuinely nonlinear materials the
// caller should re-assemble K once per step, not once per sub-iteration,
// since this method treats K as constant across the predictor-corrector
// pair, matching the single-solve Newmark-beta update.
func (o *Newmark) Step(m *mesh.Mesh, dt float64, K *linsolver.COO, bcs []linsolver.BC) error {
	if dt <= 0 {
		return chk.Err("Newmark step requires dt > 0, got %v", dt)
	}
	ndof := m.NDOF()
	if K.N != ndof {
		return chk.Err("Newmark step: stiffness has %d DOFs, mesh has %d", K.N, ndof)
	}
	beta, gamma := o.Beta, o.Gamma

	up := make([]float64, ndof)
	vp := make([]float64, ndof)
	fext := make([]float64, ndof)
	massDof := make([]float64, ndof)
	for i := 0; i < m.NNodes; i++ {
		if o.Mass[i] <= 0 {
			return chk.Err("node %d has non-positive lumped mass %v", i, o.Mass[i])
		}
		for d := 0; d < m.Dim; d++ {
			dof := i*m.Dim + d
			up[dof] = m.U[i][d] + dt*o.Vel[i][d] + (0.5-beta)*dt*dt*o.Acc[i][d]
			vp[dof] = o.Vel[i][d] + (1-gamma)*dt*o.Acc[i][d]
			fext[dof] = m.Fext[i][d]
			massDof[dof] = o.Mass[i]
		}
	}

	cK := 1.0 + gamma/(beta*dt)*o.Ray.AlphaK
	Keff := linsolver.NewCOO(ndof, len(K.Vals)+ndof)
	for i := range K.Vals {
		Keff.Put(K.Rows[i], K.Cols[i], cK*K.Vals[i])
	}
	for dof := 0; dof < ndof; dof++ {
		cM := massDof[dof] * (gamma/(beta*dt)*o.Ray.AlphaM + 1.0/(beta*dt*dt))
		Keff.Put(dof, dof, cM)
	}

	w := make([]float64, ndof)
	for i := range w {
		w[i] = up[i] + o.Ray.AlphaK*vp[i]
	}
	Kw := cooMatVec(K, w)
	feff := make([]float64, ndof)
	for i := range feff {
		feff[i] = fext[i] - Kw[i] - o.Ray.AlphaM*massDof[i]*vp[i]
	}

	linsolver.ApplyDirichletPenalty(Keff, feff, bcs)
	da, err := linsolver.Solve(Keff, feff)
	if err != nil {
		return chk.Err("Newmark effective-system solve: %v", err)
	}

	fixed := make(map[int]bool, len(bcs))
	for _, bc := range bcs {
		fixed[bc.DOF] = true
	}
	for i := 0; i < m.NNodes; i++ {
		for d := 0; d < m.Dim; d++ {
			dof := i*m.Dim + d
			if fixed[dof] {
				m.U[i][d] = up[dof]
				o.Vel[i][d], o.Acc[i][d] = 0, 0
				continue
			}
			newAcc := da[dof]
			m.U[i][d] = up[dof] + beta*dt*dt*newAcc
			o.Vel[i][d] = vp[dof] + gamma*dt*newAcc
			o.Acc[i][d] = newAcc
		}
	}
	m.ApplyBoundaryConditions()
	m.UpdateCurrentConfig()
	m.ComputeDeformationGradient()
	return nil
}

// cooMatVec computes K*x from a coordinate-format matrix without going
// through linsolver's CSR conversion, since Newmark only ever needs one
// product per step (not repeated products as PCG does).
func cooMatVec(K *linsolver.COO, x []float64) []float64 {
	y := make([]float64, K.N)
	for i := range K.Vals {
		y[K.Rows[i]] += K.Vals[i] * x[K.Cols[i]]
	}
	return y
}

// CentralDifference is the explicit, conditionally-stable scheme used by
// MeshAdapter's explicit mode (beta=0, gamma=1/2 degenerate case of
// Newmark): a_n = M^-1 (Fext - Fint - alphaM*M v_{n-1/2}), v_{n+1/2} =
// v_{n-1/2} + dt*a_n, u_{n+1} = u_n + dt*v_{n+1/2}. Only the
// mass-proportional part of Ray is applied; Ray.AlphaK has no effect.
type CentralDifference struct {
	Mass []float64
	Ray  Rayleigh
	Vel  [][]float64 // half-step velocities
}

func NewCentralDifference(m *mesh.Mesh, mass []float64, ray Rayleigh) *CentralDifference {
	vel := make([][]float64, m.NNodes)
	for i := range vel {
		vel[i] = make([]float64, m.Dim)
	}
	return &CentralDifference{Mass: mass, Ray: ray, Vel: vel}
}

// Step advances one explicit step given the internal force at the
// current configuration.
func (o *CentralDifference) Step(m *mesh.Mesh, dt float64, fint [][]float64) error {
	if dt <= 0 {
		return chk.Err("central-difference step requires dt > 0, got %v", dt)
	}
	for i := 0; i < m.NNodes; i++ {
		if o.Mass[i] <= 0 {
			return chk.Err("node %d has non-positive lumped mass %v", i, o.Mass[i])
		}
		cDamp := o.Ray.AlphaM * o.Mass[i]
		for d := 0; d < m.Dim; d++ {
			acc := (m.Fext[i][d] - fint[i][d] - cDamp*o.Vel[i][d]) / o.Mass[i]
			o.Vel[i][d] += dt * acc
			m.U[i][d] += dt * o.Vel[i][d]
		}
	}
	m.ApplyBoundaryConditions()
	m.UpdateCurrentConfig()
	m.ComputeDeformationGradient()
	return nil
}

// EstimateStableDt is the element-size/wave-speed stability estimate
// dt = 0.8 * h / c, with h the mean element size (dim-th root of the
// mean reference volume) and c the dilatational wave speed
// sqrt(E*(1-nu) / (rho*(1+nu)*(1-2nu))).
func EstimateStableDt(m *mesh.Mesh, E, nu, rho float64) float64 {
	if m.NElems == 0 || E <= 0 || rho <= 0 {
		return math.Inf(1)
	}
	tot := 0.0
	for _, v := range m.RefVol {
		tot += v
	}
	h := math.Pow(tot/float64(m.NElems), 1.0/float64(m.Dim))
	c := math.Sqrt(E * (1.0 - nu) / (rho * (1.0 + nu) * (1.0 - 2.0*nu)))
	return 0.8 * h / c
}

// CriticalTimeStep estimates the explicit stability limit from the
// stiffest element's mass/stiffness ratio, dt_crit = 2/omega_max,
// approximated per-element as sqrt(m_e / k_e) (standard CFL-type bound
// for explicit FEM/peridynamics time stepping).
func CriticalTimeStep(m *mesh.Mesh, elemStiffness func(elem int) float64, mass []float64) float64 {
	dtMin := math.Inf(1)
	for e := 0; e < m.NElems; e++ {
		k := elemStiffness(e)
		if k <= 0 {
			continue
		}
		meMin := math.Inf(1)
		for _, v := range m.Elems[e] {
			if mass[v] < meMin {
				meMin = mass[v]
			}
		}
		dt := 2.0 * math.Sqrt(meMin/k)
		if dt < dtMin {
			dtMin = dt
		}
	}
	return dtMin
}

// NaturalFrequencies returns the nModes lowest natural frequencies
// f_i = sqrt(lambda_i)/(2*pi), ascending, of the undamped generalized
// problem K*phi = lambda*M*phi with diagonal mass M, via shift-invert
// power iteration about zero: each step solves K*y = M*x through
// linsolver.Solve, so the iteration converges to the smallest
// eigenvalues, and converged modes are deflated by M-orthogonalization.
// K must already be restricted to the free DOFs (or carry Dirichlet
// penalty rows). gosl's la package exposes direct sparse solves, not a
// generalized eigensolver, so the iteration itself is hand-rolled on
// top of linsolver.Solve.
func NaturalFrequencies(K *linsolver.COO, massDiag []float64, nModes int) ([]float64, error) {
	n := K.N
	if nModes > n {
		return nil, chk.Err("requested %d modes but system has only %d DOFs", nModes, n)
	}
	freqs := make([]float64, 0, nModes)
	modes := make([][]float64, 0, nModes)
	for mode := 0; mode < nModes; mode++ {
		x := make([]float64, n)
		for i := range x {
			x[i] = 1.0 / float64(i+mode+1)
		}
		var lambda float64
		for iter := 0; iter < 100; iter++ {
			b := make([]float64, n)
			for i := range b {
				b[i] = massDiag[i] * x[i]
			}
			y, err := linsolver.Solve(K, b)
			if err != nil {
				return nil, chk.Err("mode %d: shift-invert solve failed: %v", mode, err)
			}
			for _, m := range modes {
				proj := dotM(y, m, massDiag)
				for i := range y {
					y[i] -= proj * m[i]
				}
			}
			nrm := math.Sqrt(dotM(y, y, massDiag))
			if nrm < 1e-300 {
				return nil, chk.Err("mode %d: deflated vector collapsed to zero", mode)
			}
			for i := range y {
				y[i] /= nrm
			}
			// Rayleigh quotient of the M-normalized iterate
			lambda = dotM(cooMatVec(K, y), y, nil)
			x = y
		}
		freqs = append(freqs, math.Sqrt(math.Max(lambda, 0))/(2.0*math.Pi))
		modes = append(modes, x)
	}
	sort.Float64s(freqs)
	return freqs, nil
}

func dotM(a, b []float64, weight []float64) float64 {
	s := 0.0
	for i := range a {
		w := 1.0
		if weight != nil {
			w = weight[i]
		}
		s += a[i] * b[i] * w
	}
	return s
}
