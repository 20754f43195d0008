// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shp

// Tri3 calculates the shape functions (S) and derivatives (dSdR) of TRI3
// elements at (r,s) natural coordinates. Grounded on gofem's
// shp.Tri3 (cpmech/gofem), trimmed to always compute derivatives.
//
//	      s
//	      |
//	      2, (0,1)
//	      | ',
//	      |   ',
//	      |     ',
//	      | (0,0)  ', (1,0)
//	      0-----------1 ---- r
func Tri3(S []float64, dSdR [][]float64, r, s, t float64) {
	S[0] = 1.0 - r - s
	S[1] = r
	S[2] = s

	dSdR[0][0], dSdR[0][1] = -1.0, -1.0
	dSdR[1][0], dSdR[1][1] = 1.0, 0.0
	dSdR[2][0], dSdR[2][1] = 0.0, 1.0
}

func init() {
	register(&Shape{
		Type: "tri3", Func: Tri3, FaceFunc: Lin2, FaceType: "lin2",
		Gndim: 2, Nverts: 3, FaceNverts: 2,
		FaceLocalV: [][]int{{0, 1}, {1, 2}, {2, 0}},
		Gauss:      gaussTri1(),
		FaceGauss:  gaussLine2(),
	})
	register(&Shape{
		Type: "tri3pe", Func: Tri3, FaceFunc: Lin2, FaceType: "lin2",
		Gndim: 2, Nverts: 3, FaceNverts: 2,
		FaceLocalV:  [][]int{{0, 1}, {1, 2}, {2, 0}},
		Gauss:       gaussTri1(),
		FaceGauss:   gaussLine2(),
		PlaneStrain: true,
	})
}
