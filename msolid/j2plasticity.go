// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msolid

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/tsr"

	"github.com/dpedroso-lab/spinefem/validation"
)

// J2Plasticity is a von Mises material with linear isotropic hardening,
// radial-return mapped. The internal state is always kept in full 3D
// Voigt form (xx,yy,zz,xy,yz,zx); 2D plane-strain callers pass a strain
// increment with zero zz/yz/zx components, which yields the standard
// 3D-consistent plane-strain algorithm (sigma_zz comes out non-zero) for
// free, since total strain compatibility -- not elastic strain -- is what
// forces the out-of-plane component to zero. Grounded on the radial-return
// mapping in gofem's msolid/vm.go (cpmech/gofem), generalised from a
// fixed hardening variable to a caller-supplied state struct.
type J2Plasticity struct {
	Lambda, Mu, K float64
	SigmaY0       float64
	Hard          float64 // linear isotropic hardening modulus
	Rho           float64
}

// J2State carries the per-Gauss-point path history. The *Conv fields are
// the committed state at the last converged load step; Update and
// UpdateFromTotalStrain only ever read them, never write them, so calling
// either any number of times per step (Newton iterations, rejected
// line-search trials) is idempotent with respect to the path history.
// Commit is the only thing that advances EpsTotalConv/SigConv/EpsPConv/
// AlphaConv, and must be called exactly once per step, after equilibrium
// has actually converged.
//
// EpsP, EpsTotal, Sig, Alpha, Loading and Dgam hold the trial state
// produced by the most recent Update/UpdateFromTotalStrain call; they are
// overwritten (never accumulated) on every call, so an abandoned trial
// leaves no residue once the next call runs.
type J2State struct {
	EpsTotalConv [6]float64
	SigConv      [6]float64 // full 3D stress, including sigma_33 under plane strain
	EpsPConv     [6]float64
	AlphaConv    float64

	EpsP     [6]float64
	EpsTotal [6]float64
	Sig      [6]float64
	Alpha    float64 // equivalent plastic strain, used by the hardening law
	Loading  bool
	Dgam     float64
}

// Commit advances the committed path history to the state's most recent
// trial values. Callers must invoke this exactly once per load step, after
// the equilibrium iteration has converged -- never from inside a Newton
// iteration or a rejected line-search trial, or plastic strain and
// hardening accumulate spurious increments that have nothing to do with
// the converged equilibrium path.
func (s *J2State) Commit() {
	s.EpsTotalConv = s.EpsTotal
	s.SigConv = s.Sig
	s.EpsPConv = s.EpsP
	s.AlphaConv = s.Alpha
}

func NewJ2Plasticity(E, nu, sigmaY0, hard, rho float64) (*J2Plasticity, error) {
	if err := validation.Elastic(E, nu); err != nil {
		return nil, err
	}
	if err := validation.Yield(sigmaY0, hard); err != nil {
		return nil, err
	}
	if err := validation.Density(rho); err != nil {
		return nil, err
	}
	return &J2Plasticity{
		Lambda: E * nu / ((1.0 + nu) * (1.0 - 2.0*nu)),
		Mu:     E / (2.0 * (1.0 + nu)),
		K:      E / (3.0 * (1.0 - 2.0*nu)),
		SigmaY0: sigmaY0, Hard: hard, Rho: rho,
	}, nil
}

func (o *J2Plasticity) Density() float64 { return o.Rho }

// to6 embeds a plane-strain 3-component engineering strain (e11,e22,g12)
// into the full 6-component Voigt strain (e33=eyz=ezx=0).
func to6(nsig int, v []float64) [6]float64 {
	var out [6]float64
	if nsig == 6 {
		copy(out[:], v)
		return out
	}
	out[0], out[1], out[3] = v[0], v[1], v[2]
	return out
}

func from6(nsig int, v [6]float64) []float64 {
	if nsig == 6 {
		out := make([]float64, 6)
		copy(out, v[:])
		return out
	}
	return []float64{v[0], v[1], v[3]}
}

// Update performs one radial-return step given the strain increment dEps
// (in the caller's Voigt convention, 3 or 6 components) and the stress at
// the start of the step sigOld (same convention). The radial return starts
// from state's committed plastic strain/hardening (EpsPConv/AlphaConv),
// never from a previous call's trial values, so calling Update any number
// of times with the same (sigOld, dEps) -- or discarding the result -- has
// no effect on future calls. It writes the trial EpsP/Alpha/Loading/Dgam
// and the full 6-component trial Sig, and returns the updated stress;
// under plane strain (nsig=3) sigma_33 at the start of the step is taken
// from state.SigConv. Call state.Commit() once the caller's equilibrium
// iteration has actually converged.
func (o *J2Plasticity) Update(state *J2State, nsig int, sigOld, dEps []float64) ([]float64, error) {
	if len(sigOld) != nsig || len(dEps) != nsig {
		return nil, chk.Err("J2Plasticity.Update: expected length-%d vectors, got sig=%d deps=%d", nsig, len(sigOld), len(dEps))
	}
	sig6 := to6(nsig, sigOld)
	if nsig == 3 {
		sig6[2] = state.SigConv[2]
	}
	deps6 := to6(nsig, dEps)

	state.Loading = false
	state.Dgam = 0

	trDeps := deps6[0] + deps6[1] + deps6[2]
	var trial [6]float64
	for i := 0; i < 6; i++ {
		devDeps := deps6[i] - trDeps*tsr.Im[i]/3.0
		trial[i] = sig6[i] + o.K*trDeps*tsr.Im[i] + 2.0*o.Mu*devDeps
	}
	trialSlice := trial[:]
	q := tsr.M_q(trialSlice)
	qy := o.SigmaY0 + o.Hard*state.AlphaConv
	f := q - qy
	if f <= 0 {
		state.EpsP = state.EpsPConv
		state.Alpha = state.AlphaConv
		state.Sig = trial
		return from6(nsig, trial), nil
	}

	hp := 3.0*o.Mu + o.Hard
	dgam := f / hp
	ptr := tsr.M_p(trialSlice)
	m := 1.0 - dgam*3.0*o.Mu/q
	var sigNew [6]float64
	for i := 0; i < 6; i++ {
		dev := trial[i] + ptr*tsr.Im[i]
		sigNew[i] = m*dev - ptr*tsr.Im[i]
	}
	state.Dgam = dgam
	state.Alpha = state.AlphaConv + dgam
	state.Loading = true
	// plastic strain increment, deviatoric + radial-return direction, added
	// onto the *committed* plastic strain (not the previous trial)
	nrm := tsr.SQ2by3 * q
	for i := 0; i < 6; i++ {
		dir := (trial[i] + ptr*tsr.Im[i]) / nrm
		state.EpsP[i] = state.EpsPConv[i] + dgam*tsr.SQ2by3*dir
	}
	state.Sig = sigNew
	return from6(nsig, sigNew), nil
}

// UpdateFromTotalStrain is the convenience entry point for callers (like
// package assembly) that only track total strain/displacement: it derives
// the increment from the committed total strain/stress (EpsTotalConv,
// SigConv), applies Update, and records the new total strain/stress as
// the trial for Commit to pick up. Since the increment is always measured
// against the last *converged* step rather than the previous call's
// result, calling this repeatedly within one load step -- once per Newton
// iteration, once per rejected line-search trial -- recomputes the same
// trial from the same baseline instead of compounding it.
func (o *J2Plasticity) UpdateFromTotalStrain(state *J2State, nsig int, epsTotal []float64) ([]float64, error) {
	eps6 := to6(nsig, epsTotal)
	prevTotal := from6(nsig, state.EpsTotalConv)
	deps := make([]float64, nsig)
	for i := range deps {
		deps[i] = epsTotal[i] - prevTotal[i]
	}
	sigOld := from6(nsig, state.SigConv)
	sig, err := o.Update(state, nsig, sigOld, deps)
	if err != nil {
		return nil, err
	}
	state.EpsTotal = eps6
	return sig, nil
}

// Tangent computes the consistent elastoplastic modulus in the caller's
// Voigt convention (gofem's VonMises.CalcD, generalised to 6
// components and projected down for plane strain). It reads the trial
// stress from state.Sig (set by the preceding UpdateFromTotalStrain call)
// rather than taking a stress argument, so it always sees the full
// 6-component stress -- including sigma_33 -- even under plane strain.
func (o *J2Plasticity) Tangent(state *J2State, nsig int) ([][]float64, error) {
	D6 := make([][]float64, 6)
	for i := range D6 {
		D6[i] = make([]float64, 6)
	}
	if !state.Loading {
		for i := 0; i < 6; i++ {
			for j := 0; j < 6; j++ {
				D6[i][j] = o.K*tsr.Im[i]*tsr.Im[j] + 2.0*o.Mu*tsr.Psd[i][j]
			}
		}
	} else {
		sig6 := state.Sig
		sigSlice := sig6[:]
		p, q := tsr.M_p(sigSlice), tsr.M_q(sigSlice)
		dgam := state.Dgam
		qtr := q + dgam*3.0*o.Mu
		m := 1.0 - dgam*3.0*o.Mu/qtr
		nstr := tsr.SQ2by3 * qtr
		hp := 3.0*o.Mu + o.Hard
		var n [6]float64
		for i := 0; i < 6; i++ {
			n[i] = (sig6[i] + p*tsr.Im[i]) / (m * nstr)
		}
		a1 := o.K
		b2 := 6.0 * o.Mu * o.Mu * (dgam/qtr - 1.0/hp)
		for i := 0; i < 6; i++ {
			for j := 0; j < 6; j++ {
				D6[i][j] = 2.0*o.Mu*m*tsr.Psd[i][j] + a1*tsr.Im[i]*tsr.Im[j] + b2*n[i]*n[j]
			}
		}
	}
	if nsig == 6 {
		return D6, nil
	}
	// project to the 3-component plane-strain subspace (rows/cols 0,1,3)
	idx := []int{0, 1, 3}
	D := make([][]float64, 3)
	for a, i := range idx {
		D[a] = make([]float64, 3)
		for b, j := range idx {
			D[a][b] = D6[i][j]
		}
	}
	return D, nil
}
