// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package assembly builds the global internal-force vector and tangent
// stiffness (as a linsolver.COO coordinate list) from a mesh.Mesh and a set
// of per-material-id constitutive models. Grounded on gofem's
// fem/e_u.go AddToKb/Update (B-matrix reduction and triplet accumulation)
// generalised to batch over every element instead of walking one *Elem at
// a time.
package assembly

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"

	"github.com/dpedroso-lab/spinefem/linsolver"
	"github.com/dpedroso-lab/spinefem/mesh"
	"github.com/dpedroso-lab/spinefem/msolid"
)

// dropTol zeroes triplet entries too small to matter numerically, keeping
// the sparse pattern tight (gofem's e_u.go applies a similar filter
// around its Kb assembly).
const dropTol = 1e-20

// chunkSize is how many elements Stiffness processes per batch. The COO
// for the whole mesh is still allocated up front, sized from every
// element, so batching does not lower peak memory.
const chunkSize = 10000

// MaterialSet maps a mesh's per-element MatID to a constitutive model.
type MaterialSet map[int]msolid.Material

// J2States holds path-dependent plasticity state per Gauss point, indexed
// by mesh.Mesh.GPIndex. Only materials of kind msolid.KindJ2Plasticity
// need an entry.
type J2States map[int]*msolid.J2State

// Assembler batches B^T*sigma and B^T*C*B reduction across a mesh.
type Assembler struct {
	M    *mesh.Mesh
	Mats MaterialSet
	J2St J2States

	// IncludeGeometric adds the initial-stress (geometric) stiffness
	// dN_a . sigma . dN_b to every tangent assembly, needed for Newton
	// on finite-deformation materials. Linear small-strain solves leave
	// it off.
	IncludeGeometric bool
}

func New(m *mesh.Mesh, mats MaterialSet) *Assembler {
	return &Assembler{M: m, Mats: mats, J2St: J2States{}}
}

// bMatrix fills B (NStress x nElemDOF) at a Gauss point from dN/dX, small
// strain, standard FEM convention.
func bMatrix(B [][]float64, dNdX [][]float64, dim, npe int) {
	for r := range B {
		for c := range B[r] {
			B[r][c] = 0
		}
	}
	if dim == 2 {
		for a := 0; a < npe; a++ {
			B[0][2*a] = dNdX[a][0]
			B[1][2*a+1] = dNdX[a][1]
			B[2][2*a] = dNdX[a][1]
			B[2][2*a+1] = dNdX[a][0]
		}
		return
	}
	for a := 0; a < npe; a++ {
		B[0][3*a] = dNdX[a][0]
		B[1][3*a+1] = dNdX[a][1]
		B[2][3*a+2] = dNdX[a][2]
		B[3][3*a] = dNdX[a][1]
		B[3][3*a+1] = dNdX[a][0]
		B[4][3*a+1] = dNdX[a][2]
		B[4][3*a+2] = dNdX[a][1]
		B[5][3*a] = dNdX[a][2]
		B[5][3*a+2] = dNdX[a][0]
	}
}

// smallStrain computes eps = B * u_e at a Gauss point.
func smallStrain(eps []float64, B [][]float64, ue []float64) {
	for i := range eps {
		acc := 0.0
		for j := range ue {
			acc += B[i][j] * ue[j]
		}
		eps[i] = acc
	}
}

// UpdateStresses recomputes Eps (and Sig, via the per-element material)
// at every Gauss point of the mesh from the current nodal displacements.
func (o *Assembler) UpdateStresses() error {
	m := o.M
	for e := 0; e < m.NElems; e++ {
		mat, ok := o.Mats[m.MatID[e]]
		if !ok {
			return chk.Err("no material registered for matID %d (element %d)", m.MatID[e], e)
		}
		npe := len(m.Elems[e])
		ue := make([]float64, npe*m.Dim)
		for a, v := range m.Elems[e] {
			for d := 0; d < m.Dim; d++ {
				ue[a*m.Dim+d] = m.U[v][d]
			}
		}
		for gp := 0; gp < m.NGauss; gp++ {
			idx := m.GPIndex(e, gp)
			B := la.MatAlloc(m.NStress, npe*m.Dim)
			bMatrix(B, m.DNdX[idx], m.Dim, npe)
			smallStrain(m.Eps[idx], B, ue)

			switch mt := mat.(type) {
			case msolid.SmallStrain:
				sig, err := mt.StressSmallStrain(m.Eps[idx])
				if err != nil {
					return chk.Err("element %d gp %d: %v", e, gp, err)
				}
				copy(m.Sig[idx], sig)
			case msolid.LargeStrain:
				F := m.Fgrad[idx]
				sig, err := mt.StressLargeStrain(F)
				if err != nil {
					return chk.Err("element %d gp %d: %v", e, gp, err)
				}
				copy(m.Sig[idx], sig)
			case *msolid.J2Plasticity:
				// handled incrementally below, after the full strain field
				// for this load step has been computed.
			default:
				return chk.Err("material for matID %d does not implement a stress update", m.MatID[e])
			}
		}
	}
	if err := o.updateJ2(); err != nil {
		return err
	}
	return nil
}

// CommitJ2 advances every J2 Gauss point's committed path history
// (plastic strain, hardening variable, total strain and stress) to its
// most recent trial state. Callers must invoke this exactly once per load
// step, after the caller's equilibrium iteration has actually converged
// -- never while Newton iterations or line-search trials are still being
// evaluated, or plastic strain accumulates along rejected paths that were
// never part of the converged equilibrium.
func (o *Assembler) CommitJ2() {
	for _, st := range o.J2St {
		st.Commit()
	}
}

// updateJ2 handles path-dependent J2 plasticity separately since it needs
// incremental strain and per-Gauss state (not provided by the stateless
// SmallStrain/LargeStrain interfaces).
func (o *Assembler) updateJ2() error {
	m := o.M
	for e := 0; e < m.NElems; e++ {
		j2, ok := o.Mats[m.MatID[e]].(*msolid.J2Plasticity)
		if !ok {
			continue
		}
		for gp := 0; gp < m.NGauss; gp++ {
			idx := m.GPIndex(e, gp)
			st, ok := o.J2St[idx]
			if !ok {
				st = &msolid.J2State{}
				o.J2St[idx] = st
			}
			sig, err := j2.UpdateFromTotalStrain(st, m.NStress, m.Eps[idx])
			if err != nil {
				return chk.Err("element %d gp %d: %v", e, gp, err)
			}
			copy(m.Sig[idx], sig)
		}
	}
	return nil
}

// InternalForce computes f_int = sum_e int B^T sigma dV and stores it in
// m.F, zeroing it first.
func (o *Assembler) InternalForce() {
	m := o.M
	for i := range m.F {
		for d := range m.F[i] {
			m.F[i][d] = 0
		}
	}
	for e := 0; e < m.NElems; e++ {
		npe := len(m.Elems[e])
		for gp := 0; gp < m.NGauss; gp++ {
			idx := m.GPIndex(e, gp)
			B := la.MatAlloc(m.NStress, npe*m.Dim)
			bMatrix(B, m.DNdX[idx], m.Dim, npe)
			w := m.WdetJ[idx]
			for a := 0; a < npe; a++ {
				v := m.Elems[e][a]
				for d := 0; d < m.Dim; d++ {
					col := a*m.Dim + d
					acc := 0.0
					for r := 0; r < m.NStress; r++ {
						acc += B[r][col] * m.Sig[idx][r]
					}
					m.F[v][d] += acc * w
				}
			}
		}
	}
}

// voigtFull expands a Voigt stress vector (xx,yy,xy in 2D;
// xx,yy,zz,xy,yz,xz in 3D) into the full symmetric matrix.
func voigtFull(sig []float64, dim int) [3][3]float64 {
	var s [3][3]float64
	if dim == 2 {
		s[0][0], s[1][1] = sig[0], sig[1]
		s[0][1], s[1][0] = sig[2], sig[2]
		return s
	}
	s[0][0], s[1][1], s[2][2] = sig[0], sig[1], sig[2]
	s[0][1], s[1][0] = sig[3], sig[3]
	s[1][2], s[2][1] = sig[4], sig[4]
	s[0][2], s[2][0] = sig[5], sig[5]
	return s
}

// Stiffness assembles the tangent K = sum_e int B^T D B dV into a COO
// triplet sized for m.NDOF() x m.NDOF(), processing elements in chunks of
// chunkSize.
func (o *Assembler) Stiffness(tangent func(matID, gpIdx int, eps, sig []float64) ([][]float64, error)) (*linsolver.COO, error) {
	m := o.M
	ndof := m.NDOF()
	maxNNZ := 0
	for e := 0; e < m.NElems; e++ {
		npe := len(m.Elems[e]) * m.Dim
		maxNNZ += npe * npe * m.NGauss
	}
	K := linsolver.NewCOO(ndof, maxNNZ)

	for start := 0; start < m.NElems; start += chunkSize {
		end := start + chunkSize
		if end > m.NElems {
			end = m.NElems
		}
		for e := start; e < end; e++ {
			npe := len(m.Elems[e])
			ned := npe * m.Dim
			Ke := la.MatAlloc(ned, ned)
			for gp := 0; gp < m.NGauss; gp++ {
				idx := m.GPIndex(e, gp)
				B := la.MatAlloc(m.NStress, ned)
				bMatrix(B, m.DNdX[idx], m.Dim, npe)
				D, err := tangent(m.MatID[e], idx, m.Eps[idx], m.Sig[idx])
				if err != nil {
					return nil, chk.Err("element %d gp %d: %v", e, gp, err)
				}
				w := m.WdetJ[idx]
				DB := la.MatAlloc(m.NStress, ned)
				for i := 0; i < m.NStress; i++ {
					for j := 0; j < ned; j++ {
						acc := 0.0
						for k := 0; k < m.NStress; k++ {
							acc += D[i][k] * B[k][j]
						}
						DB[i][j] = acc
					}
				}
				for i := 0; i < ned; i++ {
					for j := 0; j < ned; j++ {
						acc := 0.0
						for k := 0; k < m.NStress; k++ {
							acc += B[k][i] * DB[k][j]
						}
						Ke[i][j] += acc * w
					}
				}
				if o.IncludeGeometric {
					sigM := voigtFull(m.Sig[idx], m.Dim)
					for a := 0; a < npe; a++ {
						for b := 0; b < npe; b++ {
							g := 0.0
							for r := 0; r < m.Dim; r++ {
								for c := 0; c < m.Dim; c++ {
									g += m.DNdX[idx][a][r] * sigM[r][c] * m.DNdX[idx][b][c]
								}
							}
							g *= w
							for d := 0; d < m.Dim; d++ {
								Ke[a*m.Dim+d][b*m.Dim+d] += g
							}
						}
					}
				}
			}
			// scatter into global DOF numbering
			gdof := make([]int, ned)
			for a, v := range m.Elems[e] {
				for d := 0; d < m.Dim; d++ {
					gdof[a*m.Dim+d] = v*m.Dim + d
				}
			}
			for i := 0; i < ned; i++ {
				for j := 0; j < ned; j++ {
					if v := Ke[i][j]; v > dropTol || v < -dropTol {
						K.Put(gdof[i], gdof[j], v)
					}
				}
			}
		}
	}
	return K, nil
}
