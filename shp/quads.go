// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shp

// Qua4 calculates the shape functions (S) and derivatives (dSdR) of QUAD4
// elements at (r,s) natural coordinates. Grounded on gofem's
// shp.Qua4 (cpmech/gofem).
//
//	3-----------2
//	|     s     |
//	|     |     |
//	|     +--r  |
//	0-----------1
func Qua4(S []float64, dSdR [][]float64, r, s, t float64) {
	S[0] = (1.0 - r - s + r*s) / 4.0
	S[1] = (1.0 + r - s - r*s) / 4.0
	S[2] = (1.0 + r + s + r*s) / 4.0
	S[3] = (1.0 - r + s - r*s) / 4.0

	dSdR[0][0] = (-1.0 + s) / 4.0
	dSdR[0][1] = (-1.0 + r) / 4.0
	dSdR[1][0] = (1.0 - s) / 4.0
	dSdR[1][1] = (-1.0 - r) / 4.0
	dSdR[2][0] = (1.0 + s) / 4.0
	dSdR[2][1] = (1.0 + r) / 4.0
	dSdR[3][0] = (-1.0 - s) / 4.0
	dSdR[3][1] = (1.0 - r) / 4.0
}

func init() {
	register(&Shape{
		Type: "qua4", Func: Qua4, FaceFunc: Lin2, FaceType: "lin2",
		Gndim: 2, Nverts: 4, FaceNverts: 2,
		FaceLocalV: [][]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}},
		Gauss:      gauss2x2(),
		FaceGauss:  gaussLine2(),
	})
	register(&Shape{
		Type: "qua4pe", Func: Qua4, FaceFunc: Lin2, FaceType: "lin2",
		Gndim: 2, Nverts: 4, FaceNverts: 2,
		FaceLocalV:  [][]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}},
		Gauss:       gauss2x2(),
		FaceGauss:   gaussLine2(),
		PlaneStrain: true,
	})
}
