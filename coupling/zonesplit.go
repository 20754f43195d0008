// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coupling

import (
	"github.com/dpedroso-lab/spinefem/mesh"
)

// Split is the result of partitioning one FEM mesh into a continuum
// (FEM) sub-mesh and a discontinuum (PD/SPG) particle cloud across a
// shared interface. Particles
// are placed exactly at the FEM node positions they replace -- there is
// no interpolation, so the interface is coordinate-coincident by
// construction, matching gofem's rjoint coupling where the rod
// node and the solid face node are the same geometric point.
type Split struct {
	// FEM sub-mesh, renumbered 0..len(FemGlobalNode)-1.
	FemNodes      [][]float64 // reference coordinates, local order
	FemElems      [][]int     // connectivity in local node indices
	FemElemGlobal []int       // local -> global element index
	FemGlobalNode []int       // local -> global node index
	femGlobalToLocal map[int]int

	// PD/SPG particle cloud, one particle per node touched by a PD
	// element.
	PdPositions  [][]float64
	PdVolumes    []float64
	PdGlobalNode []int // local particle index -> global node index
	pdGlobalToLocal map[int]int

	// Interface: global node indices present on both sides, plus their
	// local projection into each sub-domain.
	InterfaceGlobal []int
	InterfaceFemLocal []int
	InterfacePdLocal  []int
}

// FemLocalOf returns the FEM-local index of a global node, if present.
func (s *Split) FemLocalOf(global int) (int, bool) { i, ok := s.femGlobalToLocal[global]; return i, ok }

// PdLocalOf returns the PD-local index of a global node, if present.
func (s *Split) PdLocalOf(global int) (int, bool) { i, ok := s.pdGlobalToLocal[global]; return i, ok }

// SplitZones partitions m into an FEM sub-mesh (elements where
// pdMask[e] is false) and a PD/SPG particle cloud (nodes touched by any
// element where pdMask[e] is true).
// Particle volume at a shared node is the sum, over its incident PD
// elements, of that element's reference volume divided evenly among its
// nodes (V_elem/npe).
func SplitZones(m *mesh.Mesh, pdMask []bool) *Split {
	s := &Split{
		femGlobalToLocal: map[int]int{},
		pdGlobalToLocal:  map[int]int{},
	}
	pdVolByNode := map[int]float64{}
	femSeen := map[int]bool{}

	for e := 0; e < m.NElems; e++ {
		if pdMask[e] {
			npe := len(m.Elems[e])
			share := m.RefVol[e] / float64(npe)
			for _, g := range m.Elems[e] {
				pdVolByNode[g] += share
			}
			continue
		}
		var localElem []int
		for _, g := range m.Elems[e] {
			if !femSeen[g] {
				femSeen[g] = true
				local := len(s.FemGlobalNode)
				s.femGlobalToLocal[g] = local
				s.FemGlobalNode = append(s.FemGlobalNode, g)
				s.FemNodes = append(s.FemNodes, append([]float64(nil), m.X[g]...))
			}
			localElem = append(localElem, s.femGlobalToLocal[g])
		}
		s.FemElems = append(s.FemElems, localElem)
		s.FemElemGlobal = append(s.FemElemGlobal, e)
	}

	// stable order for PD particles: ascending global node index.
	pdGlobal := make([]int, 0, len(pdVolByNode))
	for g := range pdVolByNode {
		pdGlobal = append(pdGlobal, g)
	}
	sortInts(pdGlobal)
	for _, g := range pdGlobal {
		s.pdGlobalToLocal[g] = len(s.PdGlobalNode)
		s.PdGlobalNode = append(s.PdGlobalNode, g)
		s.PdPositions = append(s.PdPositions, append([]float64(nil), m.X[g]...))
		s.PdVolumes = append(s.PdVolumes, pdVolByNode[g])
	}

	for _, g := range pdGlobal {
		if femSeen[g] {
			s.InterfaceGlobal = append(s.InterfaceGlobal, g)
			s.InterfaceFemLocal = append(s.InterfaceFemLocal, s.femGlobalToLocal[g])
			s.InterfacePdLocal = append(s.InterfacePdLocal, s.pdGlobalToLocal[g])
		}
	}
	return s
}

func sortInts(a []int) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && a[j-1] > a[j]; j-- {
			a[j-1], a[j] = a[j], a[j-1]
		}
	}
}

// ElementAdjacency returns, for every element of m, the indices of every
// other element sharing at least one node -- the adjacency graph
// DilateBuffer's buffer-layer BFS expands over.
func ElementAdjacency(m *mesh.Mesh) [][]int {
	byNode := map[int][]int{}
	for e, nodes := range m.Elems {
		for _, n := range nodes {
			byNode[n] = append(byNode[n], e)
		}
	}
	seen := make([]map[int]bool, m.NElems)
	adj := make([][]int, m.NElems)
	for e := range seen {
		seen[e] = map[int]bool{}
	}
	for _, elems := range byNode {
		for _, a := range elems {
			for _, b := range elems {
				if a != b && !seen[a][b] {
					seen[a][b] = true
					adj[a] = append(adj[a], b)
				}
			}
		}
	}
	return adj
}

// AutoSwitch implements the auto mode's element-switching
// decision: classify every FEM element's Gauss-point-max field against
// threshold, dilate by bufferLayers, and return the per-element PD mask.
// The caller is expected to have already run one full-FEM solve and
// supplies elemField as the per-element maximum of the chosen criterion
// over its Gauss points (von Mises stress or max principal strain).
func AutoSwitch(m *mesh.Mesh, criterion Criterion, elemField []float64, threshold float64, bufferLayers int) []bool {
	active := make([]bool, len(elemField))
	for e, v := range elemField {
		active[e] = v > threshold
	}
	adj := ElementAdjacency(m)
	return DilateBuffer(active, adj, bufferLayers)
}

// ElementMaxVonMises reduces m's Gauss-point stresses to one von-Mises
// value per element (the max over its Gauss points), the field AutoSwitch
// expects for CriterionVonMises.
func ElementMaxVonMises(m *mesh.Mesh) []float64 {
	out := make([]float64, m.NElems)
	for e := 0; e < m.NElems; e++ {
		max := 0.0
		for gp := 0; gp < m.NGauss; gp++ {
			v := vonMises(m.Sig[m.GPIndex(e, gp)])
			if v > max {
				max = v
			}
		}
		out[e] = max
	}
	return out
}

// ElementMaxPrincipalStrain reduces m's Gauss-point strains to one
// max-principal-strain value per element, the field AutoSwitch expects
// for CriterionMaxPrincipalStrain.
func ElementMaxPrincipalStrain(m *mesh.Mesh) ([]float64, error) {
	out := make([]float64, m.NElems)
	for e := 0; e < m.NElems; e++ {
		max := 0.0
		for gp := 0; gp < m.NGauss; gp++ {
			v, err := maxPrincipalStrain(m.Eps[m.GPIndex(e, gp)], m.NStress)
			if err != nil {
				return nil, err
			}
			if v > max {
				max = v
			}
		}
		out[e] = max
	}
	return out, nil
}
