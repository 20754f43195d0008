// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package msolid implements constitutive models for solids: small-strain
// linear elasticity, finite-strain hyperelasticity (neo-Hookean,
// Mooney-Rivlin, Ogden), J2 (von Mises) plasticity with isotropic
// hardening, and transversely isotropic elasticity for fibre-reinforced
// tissue (annulus fibrosus). Voigt/Mandel bookkeeping and eigenprojection
// helpers are grounded on gofem's msolid/elasticity.go and
// msolid/vm.go (cpmech/gofem), reusing gosl/tsr throughout.
package msolid

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/tsr"

	"github.com/dpedroso-lab/spinefem/validation"
)

// Elastic holds the Lamé parameters derived from (E, nu) and supplies the
// small-strain update and consistent tangent shared by every model in this
// package (gofem's SmallElasticity, simplified to a plain struct since
// materials here are constructed from profile fields, not fun.Prms keycode
// lists; see DESIGN.md).
type Elastic struct {
	Nsig       int
	E, Nu      float64
	Lambda, Mu float64 // Lamé: lambda, mu (mu == G)
	K          float64 // bulk modulus
	Rho        float64 // mass density
	PlaneStrain bool
}

// NewElastic builds the Lamé/bulk constants from Young's modulus and
// Poisson's ratio. nsig is 3 for 2D plane-strain Voigt storage, 6 for 3D.
func NewElastic(nsig int, E, nu, rho float64, planeStrain bool) (*Elastic, error) {
	if err := validation.Elastic(E, nu); err != nil {
		return nil, err
	}
	if err := validation.Density(rho); err != nil {
		return nil, err
	}
	return &Elastic{
		Nsig: nsig, E: E, Nu: nu, Rho: rho, PlaneStrain: planeStrain,
		Lambda: E * nu / ((1.0 + nu) * (1.0 - 2.0*nu)),
		Mu:     E / (2.0 * (1.0 + nu)),
		K:      E / (3.0 * (1.0 - 2.0*nu)),
	}, nil
}

// Density implements Material.
func (o *Elastic) Density() float64 { return o.Rho }

// NSig implements Material.
func (o *Elastic) NSig() int { return o.Nsig }

// StressSmallStrain computes sigma = lambda*tr(eps)*I + 2*mu*eps in Voigt
// notation, with engineering shear strains on input (sigma_ij =
// mu*gamma_ij) as in the plane-strain branch (gofem's
// SmallElasticity.Update, 3D branch).
func (o *Elastic) StressSmallStrain(eps []float64) ([]float64, error) {
	sig := make([]float64, o.Nsig)
	if o.Nsig == 3 && o.PlaneStrain {
		tr := eps[0] + eps[1]
		sig[0] = o.Lambda*tr + 2.0*o.Mu*eps[0]
		sig[1] = o.Lambda*tr + 2.0*o.Mu*eps[1]
		sig[2] = o.Mu * eps[2] // gamma_xy already engineering-doubled on input
		return sig, nil
	}
	tr := eps[0] + eps[1] + eps[2]
	for i := 0; i < o.Nsig; i++ {
		sig[i] = o.Lambda*tr*tsr.Im[i] + 2.0*o.Mu*eps[i]
		if i >= 3 {
			sig[i] = o.Mu * eps[i] // engineering shear strain
		}
	}
	return sig, nil
}

// Tangent fills D = d(sigma)/d(eps), constant for linear elasticity
// (gofem's SmallElasticity.CalcD, 3D branch).
func (o *Elastic) Tangent(D [][]float64) error {
	if len(D) != o.Nsig || len(D[0]) != o.Nsig {
		return chk.Err("tangent matrix must be %dx%d", o.Nsig, o.Nsig)
	}
	if o.Nsig == 3 && o.PlaneStrain {
		c := o.E / ((1.0 + o.Nu) * (1.0 - 2.0*o.Nu))
		D[0][0] = c * (1.0 - o.Nu)
		D[0][1] = c * o.Nu
		D[1][0] = c * o.Nu
		D[1][1] = c * (1.0 - o.Nu)
		D[2][2] = o.Mu
		return nil
	}
	for i := 0; i < o.Nsig; i++ {
		for j := 0; j < o.Nsig; j++ {
			D[i][j] = o.K*tsr.Im[i]*tsr.Im[j] + 2.0*o.Mu*tsr.Psd[i][j]
		}
	}
	for i := 3; i < o.Nsig; i++ {
		D[i][i] = o.Mu // engineering shear strain
	}
	return nil
}

// principalStretchesFromF returns the eigenvalues of the left Cauchy-Green
// tensor b = F F^T as principal stretches (sqrt of b's eigenvalues) along
// with the corresponding eigenprojectors in Mandel/Voigt form, and J =
// det(F). Grounded on gofem's msolid/ogden.go b_and_spectral_decomp.
func principalStretchesFromF(F [][]float64, nsig int) (lambda []float64, P [][]float64, J float64, err error) {
	Fi := tsr.Alloc2()
	J, err = tsr.Inv(Fi, F)
	if err != nil {
		return nil, nil, 0, chk.Err("singular deformation gradient: %v", err)
	}
	if J <= 0 {
		return nil, nil, 0, chk.Err("non-positive Jacobian J=%v (element inverted)", J)
	}
	b := tsr.Alloc2()
	tsr.LeftCauchyGreenDef(b, F)
	bm := make([]float64, nsig)
	tsr.Ten2Man(bm, b)
	P = tsr.M_AllocEigenprojs(nsig)
	lambda = make([]float64, 3)
	err = tsr.M_EigenValsProjsNum(P, lambda, bm)
	if err != nil {
		return nil, nil, 0, chk.Err("eigendecomposition of b failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		lambda[i] = math.Sqrt(math.Max(lambda[i], 0))
	}
	return lambda, P, J, nil
}
