// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package validation implements the range/invariant checks on elastic
// constants, boundary-condition indices and peridynamic horizons that the
// core runs at construction time (§7: validation failures are fatal and
// are never deferred to solve time).
package validation

import "github.com/cpmech/gosl/chk"

// Error is a validation failure. It carries enough context (parameter
// name, offending value, suggestion) for a caller to fix the input without
// consulting the source.
type Error struct {
	Param      string
	Value      float64
	Suggestion string
}

func (e *Error) Error() string {
	return chk.Err("invalid parameter %q = %v: %s", e.Param, e.Value, e.Suggestion).Error()
}

func newErr(param string, value float64, suggestion string) *Error {
	return &Error{Param: param, Value: value, Suggestion: suggestion}
}

// Elastic checks Young's modulus and Poisson's ratio.
func Elastic(E, nu float64) error {
	if E <= 0 {
		return newErr("E", E, "Young's modulus must be positive")
	}
	if nu <= -1.0 || nu >= 0.5 {
		return newErr("nu", nu, "Poisson's ratio must satisfy -1 < nu < 0.5")
	}
	return nil
}

// Density checks mass density.
func Density(rho float64) error {
	if rho <= 0 {
		return newErr("rho", rho, "density must be positive")
	}
	return nil
}

// Yield checks the J2 yield stress and (non-negative) hardening modulus.
func Yield(sigmaY, H float64) error {
	if sigmaY <= 0 {
		return newErr("sigma_y", sigmaY, "yield stress must be positive")
	}
	if H < 0 {
		return newErr("H", H, "hardening modulus must be non-negative")
	}
	return nil
}

// Horizon checks a peridynamic/SPG support radius against the local
// particle spacing. A horizon smaller than the spacing leaves particles
// with zero neighbors and is rejected outright; any horizon at or above
// the spacing is accepted with no further check or hint, however close to
// the spacing it is. The function is pure and side-effect free.
func Horizon(delta, spacing float64) error {
	if delta <= 0 {
		return newErr("horizon", delta, "horizon must be positive")
	}
	if spacing > 0 && delta < spacing {
		return newErr("horizon", delta, "horizon must be >= particle spacing")
	}
	return nil
}

// BCIndex checks that a boundary-condition node index lies in [0, nNodes).
func BCIndex(idx, nNodes int) error {
	if idx < 0 || idx >= nNodes {
		return newErr("bc_index", float64(idx), "index must lie in [0, n_nodes)")
	}
	return nil
}

// TransverseIsotropicCompliance checks the thermodynamic positive-
// definiteness condition on a transverse-isotropic material frame:
// 1 - nu12*nu21 - nu23^2 - 2*nu12*nu21*nu23 > 0.
func TransverseIsotropicCompliance(nu12, nu21, nu23 float64) error {
	d := 1.0 - nu12*nu21 - nu23*nu23 - 2.0*nu12*nu21*nu23
	if d <= 0 {
		return newErr("nu12,nu21,nu23", d, "transverse-isotropic compliance is not positive-definite")
	}
	return nil
}

// HardeningNonNegative checks a generic (non-J2-specific) hardening slope.
func HardeningNonNegative(H float64) error {
	if H < 0 {
		return newErr("H", H, "hardening modulus must be non-negative")
	}
	return nil
}
