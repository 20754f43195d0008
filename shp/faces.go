// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shp

// Face shape functions. Faces are lower-dimensional cells evaluated in
// their own natural coordinates: (r) for edges of 2D elements, (r,s) for
// faces of 3D elements. The t argument is unused.

// Lin2 is the 2-node line, the face of TRI3/QUAD4.
func Lin2(S []float64, dSdR [][]float64, r, s, t float64) {
	S[0] = 0.5 * (1.0 - r)
	S[1] = 0.5 * (1.0 + r)
	if dSdR == nil {
		return
	}
	dSdR[0][0] = -0.5
	dSdR[1][0] = 0.5
}

// Qua8Face is the 8-node serendipity quadrilateral, the face of HEX20.
func Qua8Face(S []float64, dSdR [][]float64, r, s, t float64) {
	S[0] = 0.25 * (1.0 - r) * (1.0 - s) * (-r - s - 1.0)
	S[1] = 0.25 * (1.0 + r) * (1.0 - s) * (r - s - 1.0)
	S[2] = 0.25 * (1.0 + r) * (1.0 + s) * (r + s - 1.0)
	S[3] = 0.25 * (1.0 - r) * (1.0 + s) * (-r + s - 1.0)
	S[4] = 0.5 * (1.0 - r*r) * (1.0 - s)
	S[5] = 0.5 * (1.0 + r) * (1.0 - s*s)
	S[6] = 0.5 * (1.0 - r*r) * (1.0 + s)
	S[7] = 0.5 * (1.0 - r) * (1.0 - s*s)
	if dSdR == nil {
		return
	}
	dSdR[0][0] = 0.25 * (1.0 - s) * (2.0*r + s)
	dSdR[0][1] = 0.25 * (1.0 - r) * (r + 2.0*s)
	dSdR[1][0] = 0.25 * (1.0 - s) * (2.0*r - s)
	dSdR[1][1] = 0.25 * (1.0 + r) * (2.0*s - r)
	dSdR[2][0] = 0.25 * (1.0 + s) * (2.0*r + s)
	dSdR[2][1] = 0.25 * (1.0 + r) * (r + 2.0*s)
	dSdR[3][0] = 0.25 * (1.0 + s) * (2.0*r - s)
	dSdR[3][1] = 0.25 * (1.0 - r) * (2.0*s - r)
	dSdR[4][0] = -r * (1.0 - s)
	dSdR[4][1] = -0.5 * (1.0 - r*r)
	dSdR[5][0] = 0.5 * (1.0 - s*s)
	dSdR[5][1] = -s * (1.0 + r)
	dSdR[6][0] = -r * (1.0 + s)
	dSdR[6][1] = 0.5 * (1.0 - r*r)
	dSdR[7][0] = -0.5 * (1.0 - s*s)
	dSdR[7][1] = -s * (1.0 - r)
}

// Tri6Face is the 6-node quadratic triangle, the face of TET10.
func Tri6Face(S []float64, dSdR [][]float64, r, s, t float64) {
	u := 1.0 - r - s
	S[0] = u * (2.0*u - 1.0)
	S[1] = r * (2.0*r - 1.0)
	S[2] = s * (2.0*s - 1.0)
	S[3] = 4.0 * u * r
	S[4] = 4.0 * r * s
	S[5] = 4.0 * s * u
	if dSdR == nil {
		return
	}
	dSdR[0][0] = 1.0 - 4.0*u
	dSdR[0][1] = 1.0 - 4.0*u
	dSdR[1][0] = 4.0*r - 1.0
	dSdR[1][1] = 0.0
	dSdR[2][0] = 0.0
	dSdR[2][1] = 4.0*s - 1.0
	dSdR[3][0] = 4.0 * (u - r)
	dSdR[3][1] = -4.0 * r
	dSdR[4][0] = 4.0 * s
	dSdR[4][1] = 4.0 * r
	dSdR[5][0] = -4.0 * s
	dSdR[5][1] = 4.0 * (u - s)
}
