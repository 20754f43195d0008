// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package shp implements the element-type catalog: shape functions, Gauss
// quadrature rules, face tables and Jacobians. It keeps gofem's
// factory-of-Shape pattern (cpmech/gofem's shp package) trimmed to the
// element types this core needs: TRI3, TRI3_PE, QUAD4, QUAD4_PE, TET4,
// TET10, HEX8, HEX20.
package shp

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// ShpFunc evaluates shape functions S and their natural-coordinate
// derivatives dSdR at (r,s,t). The face-shape functions skip the
// derivatives when dSdR is nil; the cell functions always write dSdR.
type ShpFunc func(S []float64, dSdR [][]float64, r, s, t float64)

// GaussPoint is one quadrature point in natural coordinates with weight.
type GaussPoint struct {
	R, S, T float64
	W       float64
}

// Shape holds the geometry/quadrature data for one element type. This
// mirrors gofem's Shape struct but adds the plane-strain/quadratic
// flags and per-type Gauss tables this core needs.
type Shape struct {
	Type        string // "tri3", "qua4", "tet4", "tet10", "hex8", "hex20"
	Func        ShpFunc
	FaceFunc    ShpFunc
	FaceType    string
	Gndim       int // spatial dimension
	Nverts      int // nodes per element
	FaceNverts  int
	FaceLocalV  [][]int // local vertex indices per face
	Quadratic   bool
	PlaneStrain bool // true only for the _PE tagged variant
	Gauss       []GaussPoint
	FaceGauss   []GaussPoint
}

var factory = make(map[string]*Shape)

// Get returns the registered Shape for a cell type, or nil if unknown.
func Get(cellType string) *Shape {
	return factory[cellType]
}

// register installs a Shape into the catalog. Called from init() in
// quads.go/tris.go/tets.go/hexs.go.
func register(s *Shape) {
	factory[s.Type] = s
}

// NodesPerFace returns the number of nodes on one face of cellType.
func NodesPerFace(cellType string) int {
	if s := Get(cellType); s != nil {
		return s.FaceNverts
	}
	return 0
}

// CalcAt evaluates shape functions and their derivatives w.r.t. natural
// coordinates at (r,s,t), writing into the caller-provided S, dSdR buffers.
func (o *Shape) CalcAt(S []float64, dSdR [][]float64, r, s, t float64) {
	o.Func(S, dSdR, r, s, t)
}

// Jacobian computes dxdR = X * dSdR (X is [gndim][nverts]) and its
// determinant. detJ must be strictly positive for a valid element.
func (o *Shape) Jacobian(dxdR [][]float64, X [][]float64, dSdR [][]float64) (detJ float64, err error) {
	nd := o.Gndim
	for i := 0; i < nd; i++ {
		for j := 0; j < nd; j++ {
			dxdR[i][j] = 0
			for a := 0; a < o.Nverts; a++ {
				dxdR[i][j] += X[i][a] * dSdR[a][j]
			}
		}
	}
	switch nd {
	case 2:
		detJ = dxdR[0][0]*dxdR[1][1] - dxdR[0][1]*dxdR[1][0]
	case 3:
		detJ = dxdR[0][0]*(dxdR[1][1]*dxdR[2][2]-dxdR[1][2]*dxdR[2][1]) -
			dxdR[0][1]*(dxdR[1][0]*dxdR[2][2]-dxdR[1][2]*dxdR[2][0]) +
			dxdR[0][2]*(dxdR[1][0]*dxdR[2][1]-dxdR[1][1]*dxdR[2][0])
	}
	if detJ <= 1e-14 {
		return detJ, chk.Err("non-positive Jacobian determinant: detJ = %v", detJ)
	}
	return detJ, nil
}

// InverseJacobian inverts dxdR (2x2 or 3x3) into dRdx.
func InverseJacobian(dRdx, dxdR [][]float64, detJ float64, ndim int) {
	switch ndim {
	case 2:
		dRdx[0][0] = dxdR[1][1] / detJ
		dRdx[0][1] = -dxdR[0][1] / detJ
		dRdx[1][0] = -dxdR[1][0] / detJ
		dRdx[1][1] = dxdR[0][0] / detJ
	case 3:
		cof := la.MatAlloc(3, 3)
		cof[0][0] = dxdR[1][1]*dxdR[2][2] - dxdR[1][2]*dxdR[2][1]
		cof[0][1] = -(dxdR[1][0]*dxdR[2][2] - dxdR[1][2]*dxdR[2][0])
		cof[0][2] = dxdR[1][0]*dxdR[2][1] - dxdR[1][1]*dxdR[2][0]
		cof[1][0] = -(dxdR[0][1]*dxdR[2][2] - dxdR[0][2]*dxdR[2][1])
		cof[1][1] = dxdR[0][0]*dxdR[2][2] - dxdR[0][2]*dxdR[2][0]
		cof[1][2] = -(dxdR[0][0]*dxdR[2][1] - dxdR[0][1]*dxdR[2][0])
		cof[2][0] = dxdR[0][1]*dxdR[1][2] - dxdR[0][2]*dxdR[1][1]
		cof[2][1] = -(dxdR[0][0]*dxdR[1][2] - dxdR[0][2]*dxdR[1][0])
		cof[2][2] = dxdR[0][0]*dxdR[1][1] - dxdR[0][1]*dxdR[1][0]
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				dRdx[i][j] = cof[j][i] / detJ // adj(A)^T / det = inverse
			}
		}
	}
}

// GradientsAt computes dN/dX [nverts][gndim] at one Gauss point, given the
// element's reference coordinate matrix X [gndim][nverts]. Returns the
// integration weight w*|detJ| alongside.
func (o *Shape) GradientsAt(dNdX [][]float64, X [][]float64, gp GaussPoint) (wdetJ float64, err error) {
	S := make([]float64, o.Nverts)
	dSdR := la.MatAlloc(o.Nverts, o.Gndim)
	o.CalcAt(S, dSdR, gp.R, gp.S, gp.T)
	dxdR := la.MatAlloc(o.Gndim, o.Gndim)
	detJ, err := o.Jacobian(dxdR, X, dSdR)
	if err != nil {
		return 0, err
	}
	dRdx := la.MatAlloc(o.Gndim, o.Gndim)
	InverseJacobian(dRdx, dxdR, detJ, o.Gndim)
	for a := 0; a < o.Nverts; a++ {
		for i := 0; i < o.Gndim; i++ {
			dNdX[a][i] = 0
			for j := 0; j < o.Gndim; j++ {
				dNdX[a][i] += dSdR[a][j] * dRdx[j][i]
			}
		}
	}
	return gp.W * detJ, nil
}
