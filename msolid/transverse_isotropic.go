// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msolid

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"

	"github.com/dpedroso-lab/spinefem/validation"
)

// TransverseIsotropic models a fibre-reinforced linear-elastic solid
// (annulus fibrosus lamella): transversely isotropic about a local fibre
// direction a, built from the five engineering constants (E1 along the
// fibre, E2 in the transverse plane, nu12, nu23, G12) and Bond-rotated
// into the global frame. There is no transversely isotropic model in the
// gofem's msolid package; the Voigt/compliance bookkeeping is grounded
// on gofem's msolid/elasticity.go converter functions, with the
// stiffness built from the compliance matrix (standard composite-mechanics
// construction) and rotated the way gosl/tsr rotates Mandel tensors.
type TransverseIsotropic struct {
	Nsig int
	Rho  float64
	D6   [][]float64 // 6x6 stiffness in the global frame
}

// NewTransverseIsotropic builds the rotated 6x6 stiffness for a fibre
// pointing along unit vector a (length 3, need not be pre-normalised).
func NewTransverseIsotropic(nsig int, E1, E2, nu12, nu23, G12, rho float64, a []float64) (*TransverseIsotropic, error) {
	if err := validation.TransverseIsotropicCompliance(nu12, nu12*E2/E1, nu23); err != nil {
		return nil, err
	}
	if err := validation.Density(rho); err != nil {
		return nil, err
	}
	if len(a) != 3 {
		return nil, chk.Err("fibre direction must have 3 components, got %d", len(a))
	}
	nu21 := nu12 * E2 / E1
	G23 := E2 / (2.0 * (1.0 + nu23))

	// compliance in the material frame, axis 1 = fibre
	S := la.MatAlloc(6, 6)
	S[0][0] = 1.0 / E1
	S[1][1] = 1.0 / E2
	S[2][2] = 1.0 / E2
	S[0][1], S[1][0] = -nu21/E2, -nu21/E2
	S[0][2], S[2][0] = -nu21/E2, -nu21/E2
	S[1][2], S[2][1] = -nu23/E2, -nu23/E2
	S[3][3] = 1.0 / G12 // xy: the 12-shear (Voigt order xy, yz, xz)
	S[4][4] = 1.0 / G23
	S[5][5] = 1.0 / G12

	Cmat, err := invert6(S)
	if err != nil {
		return nil, chk.Err("transverse isotropic compliance is singular: %v", err)
	}

	R := bondMatrix(a)
	Rt := la.MatAlloc(6, 6)
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			Rt[i][j] = R[j][i]
		}
	}
	tmp := matMul6(R, Cmat)
	Dglobal := matMul6(tmp, Rt)

	o := &TransverseIsotropic{Nsig: nsig, Rho: rho, D6: Dglobal}
	return o, nil
}

func (o *TransverseIsotropic) Density() float64 { return o.Rho }
func (o *TransverseIsotropic) NSig() int        { return o.Nsig }

// StressSmallStrain returns sigma = D eps in the caller's Voigt convention.
func (o *TransverseIsotropic) StressSmallStrain(eps []float64) ([]float64, error) {
	e6 := to6(o.Nsig, eps)
	var s6 [6]float64
	for i := 0; i < 6; i++ {
		acc := 0.0
		for j := 0; j < 6; j++ {
			acc += o.D6[i][j] * e6[j]
		}
		s6[i] = acc
	}
	return from6(o.Nsig, s6), nil
}

// Tangent returns the (constant) stiffness matrix in the caller's
// convention.
func (o *TransverseIsotropic) Tangent() [][]float64 {
	if o.Nsig == 6 {
		out := la.MatAlloc(6, 6)
		la.MatCopy(out, 1, o.D6)
		return out
	}
	idx := []int{0, 1, 3}
	D := la.MatAlloc(3, 3)
	for a, i := range idx {
		for b, j := range idx {
			D[a][b] = o.D6[i][j]
		}
	}
	return D
}

// bondMatrix returns the 6x6 Bond stress-transformation matrix that maps
// a Voigt stiffness defined in the material frame (axis-1 along the unit
// fibre direction n) into the global frame.
func bondMatrix(n []float64) [][]float64 {
	nrm := math.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
	e1 := []float64{n[0] / nrm, n[1] / nrm, n[2] / nrm}
	// pick any vector not parallel to e1 to build an orthonormal triad
	ref := []float64{0, 0, 1}
	if math.Abs(e1[2]) > 0.9 {
		ref = []float64{0, 1, 0}
	}
	e2 := cross(ref, e1)
	e2 = normalize(e2)
	e3 := cross(e1, e2)
	l := [3][3]float64{
		{e1[0], e2[0], e3[0]},
		{e1[1], e2[1], e3[1]},
		{e1[2], e2[2], e3[2]},
	}
	R := la.MatAlloc(6, 6)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			R[i][j] = l[i][j] * l[i][j]
		}
	}
	// shear components in this package's Voigt order: xy, yz, xz
	idxPairs := [3][2]int{{0, 1}, {1, 2}, {0, 2}}
	for i := 0; i < 3; i++ {
		for j, p := range idxPairs {
			R[i][3+j] = 2.0 * l[i][p[0]] * l[i][p[1]]
		}
	}
	for i, p := range idxPairs {
		for j := 0; j < 3; j++ {
			R[3+i][j] = l[p[0]][j] * l[p[1]][j]
		}
	}
	for i, pi := range idxPairs {
		for j, pj := range idxPairs {
			R[3+i][3+j] = l[pi[0]][pj[0]]*l[pi[1]][pj[1]] + l[pi[0]][pj[1]]*l[pi[1]][pj[0]]
		}
	}
	return R
}

func cross(a, b []float64) []float64 {
	return []float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func normalize(v []float64) []float64 {
	n := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	return []float64{v[0] / n, v[1] / n, v[2] / n}
}

func matMul6(A, B [][]float64) [][]float64 {
	C := la.MatAlloc(6, 6)
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			s := 0.0
			for k := 0; k < 6; k++ {
				s += A[i][k] * B[k][j]
			}
			C[i][j] = s
		}
	}
	return C
}

// invert6 inverts a 6x6 matrix by Gauss-Jordan elimination with partial
// pivoting. gosl/la's direct solvers target sparse triplets; for this
// small dense material-frame compliance matrix a local dense inverse is
// the straightforward choice.
func invert6(S [][]float64) ([][]float64, error) {
	n := 6
	A := la.MatAlloc(n, 2*n)
	for i := 0; i < n; i++ {
		copy(A[i][:n], S[i])
		A[i][n+i] = 1.0
	}
	for col := 0; col < n; col++ {
		piv := col
		best := math.Abs(A[col][col])
		for r := col + 1; r < n; r++ {
			if math.Abs(A[r][col]) > best {
				piv, best = r, math.Abs(A[r][col])
			}
		}
		if best < 1e-14 {
			return nil, chk.Err("singular matrix at column %d", col)
		}
		A[col], A[piv] = A[piv], A[col]
		pv := A[col][col]
		for j := 0; j < 2*n; j++ {
			A[col][j] /= pv
		}
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			f := A[r][col]
			for j := 0; j < 2*n; j++ {
				A[r][j] -= f * A[col][j]
			}
		}
	}
	out := la.MatAlloc(n, n)
	for i := 0; i < n; i++ {
		copy(out[i], A[i][n:])
	}
	return out, nil
}
