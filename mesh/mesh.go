// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mesh implements the struct-of-arrays Mesh entity: nodal and Gauss-point fields for HEX8/QUAD4/TET4/TRI3 (and their
// quadratic/plane-strain variants), shape-function gradients computed once
// in the reference configuration, and boundary-condition application.
//
// cpmech/gofem's fem.Domain keeps one *Node object per node
// with its own Dofs slice and walks a graph of *Elem interfaces; this port
// switches to flat arrays because §4.3's vectorized assembly batches every
// Gauss point across the whole mesh in one pass, which wants contiguous
// storage, not a node/element object graph. See DESIGN.md.
package mesh

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"

	"github.com/dpedroso-lab/spinefem/shp"
)

// Mesh owns all nodal and Gauss-point arrays for one body.
type Mesh struct {
	Type    string // "hex8", "qua4", "qua4pe", "tet4", "tet10", "hex20", "tri3", "tri3pe"
	Shape   *shp.Shape
	Dim     int // spatial dimension (2 or 3)
	NNodes  int
	NElems  int
	NGauss  int // Gauss points per element
	NStress int // Voigt components: 3 (2D) or 6 (3D)

	// nodal arrays, row-major [NNodes][Dim]
	X    [][]float64 // reference coordinates
	x    [][]float64 // current coordinates (X + u)
	U    [][]float64 // displacement
	F    [][]float64 // internal force, f = int(B^T sigma dV)
	Fext [][]float64 // external force

	Fixed      [][]bool    // [NNodes][Dim] essential BC flag
	Prescribed [][]float64 // [NNodes][Dim] prescribed value where Fixed

	// connectivity
	Elems [][]int // [NElems][nodesPerElem], global node indices
	MatID []int   // [NElems] material id

	// Gauss-point arrays, flattened index = elem*NGauss + gp
	Fgrad  [][9]float64  // deformation gradient F, row-major 3x3 (padded to 3x3 even in 2D)
	Sig    [][]float64   // Cauchy stress, Voigt [NStress]
	Eps    [][]float64   // small strain, Voigt [NStress]
	WdetJ  []float64     // integration weight * |det J|
	DNdX   [][][]float64 // [elem*NGauss+gp][nodesPerElem][Dim]
	RefVol []float64     // reference volume per element (sum of WdetJ over its Gauss points)
}

// New builds a Mesh from node coordinates and element connectivity. Shape
// function gradients are computed once in the reference configuration.
func New(elemType string, X [][]float64, elems [][]int, matID []int) (*Mesh, error) {
	sh := shp.Get(elemType)
	if sh == nil {
		return nil, chk.Err("unknown element type %q", elemType)
	}
	m := &Mesh{
		Type: elemType, Shape: sh, Dim: sh.Gndim,
		NNodes: len(X), NElems: len(elems), NGauss: len(sh.Gauss),
	}
	if sh.Gndim == 2 {
		m.NStress = 3
	} else {
		m.NStress = 6
	}
	if matID == nil {
		matID = make([]int, m.NElems)
	}
	m.MatID = matID
	m.Elems = elems

	m.X = la.MatAlloc(m.NNodes, m.Dim)
	for i := range X {
		copy(m.X[i], X[i])
	}
	m.x = la.MatAlloc(m.NNodes, m.Dim)
	m.U = la.MatAlloc(m.NNodes, m.Dim)
	m.F = la.MatAlloc(m.NNodes, m.Dim)
	m.Fext = la.MatAlloc(m.NNodes, m.Dim)
	m.Fixed = make([][]bool, m.NNodes)
	m.Prescribed = la.MatAlloc(m.NNodes, m.Dim)
	for i := 0; i < m.NNodes; i++ {
		m.Fixed[i] = make([]bool, m.Dim)
	}

	n := m.NElems * m.NGauss
	m.Fgrad = make([][9]float64, n)
	m.Sig = la.MatAlloc(n, m.NStress)
	m.Eps = la.MatAlloc(n, m.NStress)
	m.WdetJ = make([]float64, n)
	m.DNdX = make([][][]float64, n)
	m.RefVol = make([]float64, m.NElems)

	if err := m.computeReferenceGradients(); err != nil {
		return nil, err
	}
	m.UpdateCurrentConfig()
	for i := range m.Fgrad {
		m.Fgrad[i][0], m.Fgrad[i][4], m.Fgrad[i][8] = 1, 1, 1
	}
	return m, nil
}

// GPIndex flattens (element, local gauss point) into a Gauss-array index.
func (m *Mesh) GPIndex(elem, gp int) int { return elem*m.NGauss + gp }

// elemCoords returns the reference coordinate matrix [Dim][npe] for elem.
func (m *Mesh) elemCoords(elem int) [][]float64 {
	npe := len(m.Elems[elem])
	Xe := la.MatAlloc(m.Dim, npe)
	for a, v := range m.Elems[elem] {
		for d := 0; d < m.Dim; d++ {
			Xe[d][a] = m.X[v][d]
		}
	}
	return Xe
}

func (m *Mesh) computeReferenceGradients() error {
	for e := 0; e < m.NElems; e++ {
		Xe := m.elemCoords(e)
		npe := len(m.Elems[e])
		vol := 0.0
		for gp, g := range m.Shape.Gauss {
			idx := m.GPIndex(e, gp)
			dNdX := la.MatAlloc(npe, m.Dim)
			w, err := m.Shape.GradientsAt(dNdX, Xe, g)
			if err != nil {
				return chk.Err("element %d: %v", e, err)
			}
			m.DNdX[idx] = dNdX
			m.WdetJ[idx] = w
			vol += w
		}
		m.RefVol[e] = vol
	}
	return nil
}

// UpdateCurrentConfig sets x = X + u.
func (m *Mesh) UpdateCurrentConfig() {
	for i := 0; i < m.NNodes; i++ {
		for d := 0; d < m.Dim; d++ {
			m.x[i][d] = m.X[i][d] + m.U[i][d]
		}
	}
}

// CurrentPositions returns x (computed lazily by UpdateCurrentConfig).
func (m *Mesh) CurrentPositions() [][]float64 { return m.x }

// ComputeDeformationGradient evaluates F = I + sum_a u_a (x) dN_a/dX at
// every Gauss point.
func (m *Mesh) ComputeDeformationGradient() {
	for e := 0; e < m.NElems; e++ {
		npe := len(m.Elems[e])
		for gp := range m.Shape.Gauss {
			idx := m.GPIndex(e, gp)
			var F [9]float64
			F[0], F[4], F[8] = 1, 1, 1
			for a := 0; a < npe; a++ {
				v := m.Elems[e][a]
				for i := 0; i < m.Dim; i++ {
					for j := 0; j < m.Dim; j++ {
						F[i*3+j] += m.U[v][i] * m.DNdX[idx][a][j]
					}
				}
			}
			m.Fgrad[idx] = F
		}
	}
}

// ApplyBoundaryConditions overwrites u at every fixed DOF with its
// prescribed value.
func (m *Mesh) ApplyBoundaryConditions() {
	for i := 0; i < m.NNodes; i++ {
		for d := 0; d < m.Dim; d++ {
			if m.Fixed[i][d] {
				m.U[i][d] = m.Prescribed[i][d]
			}
		}
	}
}

// SetFixedNode fixes all DOFs of node i to value v (per DOF).
func (m *Mesh) SetFixedNode(i int, v []float64) error {
	if i < 0 || i >= m.NNodes {
		return chk.Err("node index %d out of range [0,%d)", i, m.NNodes)
	}
	for d := 0; d < m.Dim; d++ {
		m.Fixed[i][d] = true
		if v != nil {
			m.Prescribed[i][d] = v[d]
		}
	}
	return nil
}

// SetFixedDOF fixes a DOF subset of node i (roller/symmetry BCs).
func (m *Mesh) SetFixedDOF(i, dof int, value float64) error {
	if i < 0 || i >= m.NNodes {
		return chk.Err("node index %d out of range [0,%d)", i, m.NNodes)
	}
	if dof < 0 || dof >= m.Dim {
		return chk.Err("dof index %d out of range [0,%d)", dof, m.Dim)
	}
	m.Fixed[i][dof] = true
	m.Prescribed[i][dof] = value
	return nil
}

// SetFixedGlobalDOF fixes by a flattened global DOF index (node*Dim+dof).
func (m *Mesh) SetFixedGlobalDOF(gdof int, value float64) error {
	i, d := gdof/m.Dim, gdof%m.Dim
	return m.SetFixedDOF(i, d, value)
}

// NDOF returns the total number of scalar degrees of freedom.
func (m *Mesh) NDOF() int { return m.NNodes * m.Dim }
