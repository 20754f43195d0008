// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mesh

import (
	"math"
	"sort"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// AddFacePressure converts a uniform pressure on one element face into
// equivalent nodal forces, accumulated into Fext. The face integral runs
// over the face's own Gauss rule in the reference configuration; the
// normal vector comes out of the face Jacobian with magnitude equal to
// the surface measure, so no separate area computation is needed.
// Positive pressure pushes along -n (into the body for an outward face).
func (m *Mesh) AddFacePressure(elem, face int, pressure float64) error {
	if elem < 0 || elem >= m.NElems {
		return chk.Err("AddFacePressure: element index %d outside [0,%d)", elem, m.NElems)
	}
	sh := m.Shape
	if face < 0 || face >= len(sh.FaceLocalV) {
		return chk.Err("AddFacePressure: face index %d outside [0,%d) for %q", face, len(sh.FaceLocalV), sh.Type)
	}
	if sh.FaceFunc == nil {
		return chk.Err("AddFacePressure: element type %q has no face interpolation", sh.Type)
	}
	local := sh.FaceLocalV[face]
	nfv := len(local)
	S := make([]float64, nfv)
	dSdR := la.MatAlloc(nfv, m.Dim-1)

	for _, gp := range sh.FaceGauss {
		sh.FaceFunc(S, dSdR, gp.R, gp.S, 0)

		// tangent vectors of the face parametrization
		var t1, t2 [3]float64
		for a := 0; a < nfv; a++ {
			xa := m.X[m.Elems[elem][local[a]]]
			for d := 0; d < m.Dim; d++ {
				t1[d] += dSdR[a][0] * xa[d]
				if m.Dim == 3 {
					t2[d] += dSdR[a][1] * xa[d]
				}
			}
		}

		// outward normal scaled by the surface Jacobian
		var nvec [3]float64
		if m.Dim == 2 {
			nvec[0] = t1[1]
			nvec[1] = -t1[0]
		} else {
			nvec[0] = t1[1]*t2[2] - t1[2]*t2[1]
			nvec[1] = t1[2]*t2[0] - t1[0]*t2[2]
			nvec[2] = t1[0]*t2[1] - t1[1]*t2[0]
		}

		for a := 0; a < nfv; a++ {
			g := m.Elems[elem][local[a]]
			for d := 0; d < m.Dim; d++ {
				m.Fext[g][d] -= pressure * S[a] * nvec[d] * gp.W
			}
		}
	}
	return nil
}

// FacesOnPlane returns every (element, face) pair whose face lies on the
// coordinate plane X[axis] = value, i.e. every node of the face satisfies
// |X[axis] - value| <= tol. Pass tol <= 0 to infer it from the smallest
// nodal spacing along that axis.
func (m *Mesh) FacesOnPlane(axis int, value, tol float64) [][2]int {
	if tol <= 0 {
		tol = m.defaultPlaneTol(axis)
	}
	var out [][2]int
	for e := 0; e < m.NElems; e++ {
		for f, local := range m.Shape.FaceLocalV {
			on := true
			for _, lv := range local {
				if math.Abs(m.X[m.Elems[e][lv]][axis]-value) > tol {
					on = false
					break
				}
			}
			if on {
				out = append(out, [2]int{e, f})
			}
		}
	}
	return out
}

// NodesOnPlane returns every node index with |X[axis] - value| <= tol;
// tol <= 0 infers it the same way FacesOnPlane does.
func (m *Mesh) NodesOnPlane(axis int, value, tol float64) []int {
	if tol <= 0 {
		tol = m.defaultPlaneTol(axis)
	}
	var out []int
	for i := 0; i < m.NNodes; i++ {
		if math.Abs(m.X[i][axis]-value) <= tol {
			out = append(out, i)
		}
	}
	return out
}

// defaultPlaneTol is a small fraction of the smallest distinct nodal
// spacing along axis, loose enough to absorb roundoff in generated
// coordinates and tight enough to never capture the next node layer.
func (m *Mesh) defaultPlaneTol(axis int) float64 {
	coords := make([]float64, m.NNodes)
	for i := 0; i < m.NNodes; i++ {
		coords[i] = m.X[i][axis]
	}
	sort.Float64s(coords)
	minGap := math.Inf(1)
	for i := 1; i < len(coords); i++ {
		if gap := coords[i] - coords[i-1]; gap > 1e-12 && gap < minGap {
			minGap = gap
		}
	}
	if math.IsInf(minGap, 1) {
		return 1e-9
	}
	return 1e-3 * minGap
}
