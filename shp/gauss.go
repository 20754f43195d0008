// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shp

const gp1d = 0.5773502691896257 // 1/sqrt(3)

// gauss2x2 is the standard 2x2 Gauss-Legendre rule on [-1,1]^2.
func gauss2x2() []GaussPoint {
	pts := []float64{-gp1d, gp1d}
	var g []GaussPoint
	for _, r := range pts {
		for _, s := range pts {
			g = append(g, GaussPoint{R: r, S: s, W: 1})
		}
	}
	return g
}

// gauss2x2x2 is the standard 2x2x2 Gauss-Legendre rule on [-1,1]^3 (HEX8).
func gauss2x2x2() []GaussPoint {
	pts := []float64{-gp1d, gp1d}
	var g []GaussPoint
	for _, r := range pts {
		for _, s := range pts {
			for _, t := range pts {
				g = append(g, GaussPoint{R: r, S: s, T: t, W: 1})
			}
		}
	}
	return g
}

// gaussTri1 is the 1-point centroid rule for TRI3 (area = 1/2).
func gaussTri1() []GaussPoint {
	return []GaussPoint{{R: 1.0 / 3.0, S: 1.0 / 3.0, W: 0.5}}
}

// gaussTet1 is the 1-point centroid rule for TET4 (volume = 1/6).
func gaussTet1() []GaussPoint {
	return []GaussPoint{{R: 0.25, S: 0.25, T: 0.25, W: 1.0 / 6.0}}
}

// gaussTet4 is the classical 4-point rule for TET10 (volume = 1/6).
func gaussTet4() []GaussPoint {
	a := 0.5854101966249685
	b := 0.1381966011250105
	w := 1.0 / 24.0
	return []GaussPoint{
		{R: a, S: b, T: b, W: w},
		{R: b, S: a, T: b, W: w},
		{R: b, S: b, T: a, W: w},
		{R: b, S: b, T: b, W: w},
	}
}

// gaussLine2 is the 2-point Gauss-Legendre rule on [-1,1], the face
// (edge) rule of QUAD4 and TRI3; HEX faces use gauss2x2 and TET faces
// gaussTri1.
func gaussLine2() []GaussPoint {
	return []GaussPoint{{R: -gp1d, W: 1}, {R: gp1d, W: 1}}
}
