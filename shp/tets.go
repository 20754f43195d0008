// Copyright 2012 Dorival Pedroso & Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shp

// Tet4 calculates the shape functions (S) and derivatives (dSdR) of TET4
// elements at (r,s,t) natural coordinates. Grounded on gofem's
// shp.Tet4 (cpmech/gofem).
func Tet4(S []float64, dSdR [][]float64, r, s, t float64) {
	S[0] = 1.0 - r - s - t
	S[1] = r
	S[2] = s
	S[3] = t

	dSdR[0][0], dSdR[0][1], dSdR[0][2] = -1.0, -1.0, -1.0
	dSdR[1][0], dSdR[1][1], dSdR[1][2] = 1.0, 0.0, 0.0
	dSdR[2][0], dSdR[2][1], dSdR[2][2] = 0.0, 1.0, 0.0
	dSdR[3][0], dSdR[3][1], dSdR[3][2] = 0.0, 0.0, 1.0
}

// Tet10 calculates the shape functions (S) and derivatives (dSdR) of TET10
// (quadratic tetrahedron) elements at (r,s,t) natural coordinates. Grounded
// on gofem's shp.Tet10 (cpmech/gofem).
func Tet10(S []float64, dSdR [][]float64, r, s, t float64) {
	u := 1.0 - r - s - t
	S[0] = u * (2.0*u - 1.0)
	S[1] = r * (2.0*r - 1.0)
	S[2] = s * (2.0*s - 1.0)
	S[3] = t * (2.0*t - 1.0)
	S[4] = 4.0 * u * r
	S[5] = 4.0 * r * s
	S[6] = 4.0 * s * u
	S[7] = 4.0 * u * t
	S[8] = 4.0 * r * t
	S[9] = 4.0 * s * t

	dSdR[0][0] = 4.0*(r+s+t) - 3.0
	dSdR[1][0] = 4.0*r - 1.0
	dSdR[2][0] = 0.0
	dSdR[3][0] = 0.0
	dSdR[4][0] = 4.0 - 8.0*r - 4.0*s - 4.0*t
	dSdR[5][0] = 4.0 * s
	dSdR[6][0] = -4.0 * s
	dSdR[7][0] = -4.0 * t
	dSdR[8][0] = 4.0 * t
	dSdR[9][0] = 0.0

	dSdR[0][1] = 4.0*(r+s+t) - 3.0
	dSdR[1][1] = 0.0
	dSdR[2][1] = 4.0*s - 1.0
	dSdR[3][1] = 0.0
	dSdR[4][1] = -4.0 * r
	dSdR[5][1] = 4.0 * r
	dSdR[6][1] = 4.0 - 4.0*r - 8.0*s - 4.0*t
	dSdR[7][1] = -4.0 * t
	dSdR[8][1] = 0.0
	dSdR[9][1] = 4.0 * t

	dSdR[0][2] = 4.0*(r+s+t) - 3.0
	dSdR[1][2] = 0.0
	dSdR[2][2] = 0.0
	dSdR[3][2] = 4.0*t - 1.0
	dSdR[4][2] = -4.0 * r
	dSdR[5][2] = 0.0
	dSdR[6][2] = -4.0 * s
	dSdR[7][2] = 4.0 - 4.0*r - 4.0*s - 8.0*t
	dSdR[8][2] = 4.0 * r
	dSdR[9][2] = 4.0 * s
}

func init() {
	register(&Shape{
		Type: "tet4", Func: Tet4, FaceFunc: Tri3, FaceType: "tri3",
		Gndim: 3, Nverts: 4, FaceNverts: 3,
		FaceLocalV: [][]int{{0, 1, 2}, {0, 3, 1}, {1, 3, 2}, {2, 3, 0}},
		Gauss:      gaussTet1(),
		FaceGauss:  gaussTri1(),
	})
	register(&Shape{
		Type: "tet10", Func: Tet10, FaceFunc: Tri6Face, FaceType: "tri6",
		Gndim: 3, Nverts: 10, FaceNverts: 6,
		FaceLocalV: [][]int{{0, 1, 2, 4, 5, 6}, {0, 3, 1, 7, 8, 4}, {1, 3, 2, 8, 9, 5}, {2, 3, 0, 9, 7, 6}},
		Gauss:      gaussTet4(),
		FaceGauss:  gaussTri1(),
		Quadratic:  true,
	})
}
