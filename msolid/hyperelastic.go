// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msolid

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/tsr"

	"github.com/dpedroso-lab/spinefem/validation"
)

// NeoHookean is a compressible neo-Hookean solid (nucleus pulposus ground
// substance): sigma = (mu/J)(b - I) + (lambda*ln(J)/J) I, the
// Bonet-and-Wood decoupled form. Grounded on the spectral-decomposition
// scaffolding of gofem's msolid/ogden.go, specialised to alpha=2.
type NeoHookean struct {
	Nsig       int
	Mu, Lambda float64
	Rho        float64
}

func NewNeoHookean(nsig int, E, nu, rho float64) (*NeoHookean, error) {
	if err := validation.Elastic(E, nu); err != nil {
		return nil, err
	}
	if err := validation.Density(rho); err != nil {
		return nil, err
	}
	return &NeoHookean{
		Nsig: nsig, Rho: rho,
		Mu:     E / (2.0 * (1.0 + nu)),
		Lambda: E * nu / ((1.0 + nu) * (1.0 - 2.0*nu)),
	}, nil
}

func (o *NeoHookean) Density() float64 { return o.Rho }
func (o *NeoHookean) NSig() int        { return o.Nsig }

// StressLargeStrain returns the Cauchy stress in Voigt notation given the
// full 3x3 deformation gradient (row-major, length 9).
func (o *NeoHookean) StressLargeStrain(F [9]float64) ([]float64, error) {
	Fm := [][]float64{
		{F[0], F[1], F[2]},
		{F[3], F[4], F[5]},
		{F[6], F[7], F[8]},
	}
	J := det3(Fm)
	if J <= 0 {
		return nil, chk.Err("non-positive Jacobian J=%v (element inverted)", J)
	}
	b := matMulT(Fm, Fm) // b = F F^T
	lnJ := math.Log(J)
	sig := make([]float64, o.Nsig)
	// Voigt ordering xx,yy,zz,xy[,yz,zx]
	sig[0] = (o.Mu/J)*(b[0][0]-1.0) + o.Lambda*lnJ/J
	sig[1] = (o.Mu/J)*(b[1][1]-1.0) + o.Lambda*lnJ/J
	if o.Nsig == 3 {
		sig[2] = (o.Mu / J) * b[0][1]
		return sig, nil
	}
	sig[2] = (o.Mu/J)*(b[2][2]-1.0) + o.Lambda*lnJ/J
	sig[3] = (o.Mu / J) * b[0][1]
	sig[4] = (o.Mu / J) * b[1][2]
	sig[5] = (o.Mu / J) * b[0][2]
	return sig, nil
}

// MooneyRivlin is a two-parameter incompressible-leaning hyperelastic model
// (annulus ground substance), sigma = (2/J)[(C1+C2 I1) b - C2 b.b] -
// p I with p enforcing near-incompressibility via the bulk term K*ln(J).
type MooneyRivlin struct {
	Nsig   int
	C1, C2 float64
	K      float64
	Rho    float64
}

func NewMooneyRivlin(nsig int, c1, c2, K, rho float64) (*MooneyRivlin, error) {
	if c1 < 0 || c2 < 0 {
		return nil, chk.Err("Mooney-Rivlin C1, C2 must be non-negative, got C1=%v C2=%v", c1, c2)
	}
	if err := validation.Density(rho); err != nil {
		return nil, err
	}
	return &MooneyRivlin{Nsig: nsig, C1: c1, C2: c2, K: K, Rho: rho}, nil
}

func (o *MooneyRivlin) Density() float64 { return o.Rho }
func (o *MooneyRivlin) NSig() int        { return o.Nsig }

func (o *MooneyRivlin) StressLargeStrain(F [9]float64) ([]float64, error) {
	Fm := [][]float64{
		{F[0], F[1], F[2]},
		{F[3], F[4], F[5]},
		{F[6], F[7], F[8]},
	}
	J := det3(Fm)
	if J <= 0 {
		return nil, chk.Err("non-positive Jacobian J=%v (element inverted)", J)
	}
	b := matMulT(Fm, Fm)
	bb := matMul(b, b)
	I1 := b[0][0] + b[1][1] + b[2][2]
	lnJ := math.Log(J)
	sig := make([]float64, o.Nsig)
	coef := 2.0 / J
	p := o.K * lnJ / J
	idx := [][2]int{{0, 0}, {1, 1}, {2, 2}, {0, 1}, {1, 2}, {0, 2}}
	if o.Nsig == 3 {
		idx = [][2]int{{0, 0}, {1, 1}, {0, 1}}
	}
	for k, ij := range idx {
		i, j := ij[0], ij[1]
		val := coef*((o.C1+o.C2*I1)*b[i][j]-o.C2*bb[i][j]) + p*delta(i, j)
		sig[k] = val
	}
	return sig, nil
}

// Ogden is the Ogden hyperelastic model, principal-stretch based:
//
//	tau_i = sum_p mu_p * J^(-alpha_p/3) * (lambda_i^alpha_p - mean) + K*ln(J)
//
// The gofem's msolid/ogden.go (cpmech/gofem) scaffolds the spectral
// decomposition but leaves Update/CalcA unimplemented ("Ogden model is
// not implemented yet"); this completes the principal-Kirchhoff-stress
// assembly and Cauchy-stress recomposition through the eigenprojectors.
type Ogden struct {
	Nsig int
	Alp  []float64
	Mu   []float64
	K    float64
	Rho  float64
}

func NewOgden(nsig int, alpha, mu []float64, K, rho float64) (*Ogden, error) {
	if len(alpha) != len(mu) || len(alpha) == 0 {
		return nil, chk.Err("Ogden: need matching non-empty alpha/mu slices, got %d/%d", len(alpha), len(mu))
	}
	if err := validation.Density(rho); err != nil {
		return nil, err
	}
	return &Ogden{Nsig: nsig, Alp: alpha, Mu: mu, K: K, Rho: rho}, nil
}

func (o *Ogden) Density() float64 { return o.Rho }
func (o *Ogden) NSig() int        { return o.Nsig }

func (o *Ogden) StressLargeStrain(F [9]float64) ([]float64, error) {
	Fm := [][]float64{
		{F[0], F[1], F[2]},
		{F[3], F[4], F[5]},
		{F[6], F[7], F[8]},
	}
	lambda, P, J, err := principalStretchesFromF(Fm, o.Nsig)
	if err != nil {
		return nil, err
	}
	lnJ := math.Log(J)
	tau := make([]float64, 3)
	for i := 0; i < 3; i++ {
		for p, alpha := range o.Alp {
			mean := (math.Pow(lambda[0], alpha) + math.Pow(lambda[1], alpha) + math.Pow(lambda[2], alpha)) / 3.0
			tau[i] += o.Mu[p] * math.Pow(J, -alpha/3.0) * (math.Pow(lambda[i], alpha) - mean)
		}
		tau[i] += o.K * lnJ
	}
	resolveDegenerateEigenprojectors(lambda, tau, P)
	sig := make([]float64, o.Nsig)
	for k := 0; k < o.Nsig; k++ {
		sig[k] = (tau[0]*P[0][k] + tau[1]*P[1][k] + tau[2]*P[2][k]) / J
	}
	return sig, nil
}

// degenerateStretchTol is the relative tolerance, on principal stretches,
// below which two eigenvalues of b = F F^T are treated as coincident.
const degenerateStretchTol = 1e-6

// resolveDegenerateEigenprojectors guards the principal-stretch Ogden
// recomposition against the case tsr.M_EigenValsProjsNum itself warns
// about: when two eigenvalues of b coincide, the classical spectral
// projectors P_i, P_j are individually ill-conditioned (the textbook
// formula divides by lambda_i - lambda_j), even though their sum never
// is. Because the classical spectral formula is ill-conditioned at
// near-equal eigenvalues, this
// replaces the noisy pair with the exact isotropic identity
// P_i + P_j = I - P_k, and averages the (by isotropy, equal) principal
// stresses of the coincident pair instead of trusting their individually
// noisy values.
func resolveDegenerateEigenprojectors(lambda, tau []float64, P [][]float64) {
	pairs := [3][2]int{{0, 1}, {1, 2}, {0, 2}}
	for _, pr := range pairs {
		i, j := pr[0], pr[1]
		scale := math.Max(math.Abs(lambda[i]), math.Abs(lambda[j]))
		if scale < 1e-14 {
			continue
		}
		if math.Abs(lambda[i]-lambda[j])/scale > degenerateStretchTol {
			continue
		}
		k := 3 - i - j
		avg := 0.5 * (tau[i] + tau[j])
		tau[i], tau[j] = avg, avg
		n := len(P[k])
		for c := 0; c < n; c++ {
			rest := tsr.Im[c] - P[k][c]
			P[i][c] = 0.5 * rest
			P[j][c] = 0.5 * rest
		}
		return
	}
}

// --- small 3x3 helpers, kept local since materials only ever see F as a
// 3x3 block (even for plane-strain elements, F33=1 on the padded array).

func det3(A [][]float64) float64 {
	return A[0][0]*(A[1][1]*A[2][2]-A[1][2]*A[2][1]) -
		A[0][1]*(A[1][0]*A[2][2]-A[1][2]*A[2][0]) +
		A[0][2]*(A[1][0]*A[2][1]-A[1][1]*A[2][0])
}

func matMulT(A, _ [][]float64) [][]float64 {
	// returns A * A^T
	n := 3
	C := make([][]float64, n)
	for i := 0; i < n; i++ {
		C[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			s := 0.0
			for k := 0; k < n; k++ {
				s += A[i][k] * A[j][k]
			}
			C[i][j] = s
		}
	}
	return C
}

func matMul(A, B [][]float64) [][]float64 {
	n := 3
	C := make([][]float64, n)
	for i := 0; i < n; i++ {
		C[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			s := 0.0
			for k := 0; k < n; k++ {
				s += A[i][k] * B[k][j]
			}
			C[i][j] = s
		}
	}
	return C
}

func delta(i, j int) float64 {
	if i == j {
		return 1
	}
	return 0
}
