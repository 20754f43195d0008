// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msolid

import "github.com/cpmech/gosl/chk"

// Material is implemented by every constitutive model in this package.
type Material interface {
	Density() float64
}

// SmallStrain is implemented by path-independent models driven by the
// small-strain tensor (Elastic, TransverseIsotropic).
type SmallStrain interface {
	Material
	StressSmallStrain(eps []float64) ([]float64, error)
}

// LargeStrain is implemented by hyperelastic models driven by the full
// deformation gradient (NeoHookean, MooneyRivlin, Ogden).
type LargeStrain interface {
	Material
	StressLargeStrain(F [9]float64) ([]float64, error)
}

// Kind identifies the constitutive model a profile label resolves to.
type Kind string

const (
	KindElastic             Kind = "elastic"
	KindNeoHookean          Kind = "neo_hookean"
	KindMooneyRivlin        Kind = "mooney_rivlin"
	KindOgden               Kind = "ogden"
	KindJ2Plasticity        Kind = "j2_plasticity"
	KindTransverseIsotropic Kind = "transverse_isotropic"
)

// Params is the flat set of fields any material constructor may need;
// unused fields are ignored. This plays the role gofem's fun.Prms
// keycode list plays in cpmech/gofem, but as plain struct fields: the
// anatomy profile (pipeline package) looks up concrete numbers per tissue
// label and fills this struct directly, rather than assembling a named
// parameter list consumed by a string-keyed factory.
type Params struct {
	Nsig        int
	E, Nu       float64
	Rho         float64
	PlaneStrain bool

	C1, C2, K float64 // Mooney-Rivlin

	Alpha, Mu []float64 // Ogden series
	OgdenK    float64

	SigmaY0, Hard float64 // J2 plasticity

	E1, E2, Nu12, Nu23, G12 float64 // transverse isotropy
	FibreDir                []float64
}

// New builds a Material of the given kind from p: the SmallStrain and
// LargeStrain models, and J2Plasticity (through NewJ2Plasticity), whose
// path-dependent state the caller keeps per Gauss point in a J2State.
func New(kind Kind, p Params) (Material, error) {
	switch kind {
	case KindElastic:
		return NewElastic(p.Nsig, p.E, p.Nu, p.Rho, p.PlaneStrain)
	case KindNeoHookean:
		return NewNeoHookean(p.Nsig, p.E, p.Nu, p.Rho)
	case KindMooneyRivlin:
		return NewMooneyRivlin(p.Nsig, p.C1, p.C2, p.K, p.Rho)
	case KindOgden:
		return NewOgden(p.Nsig, p.Alpha, p.Mu, p.OgdenK, p.Rho)
	case KindTransverseIsotropic:
		return NewTransverseIsotropic(p.Nsig, p.E1, p.E2, p.Nu12, p.Nu23, p.G12, p.Rho, p.FibreDir)
	case KindJ2Plasticity:
		return NewJ2Plasticity(p.E, p.Nu, p.SigmaY0, p.Hard, p.Rho)
	}
	return nil, chk.Err("msolid: unknown material kind %q", kind)
}
