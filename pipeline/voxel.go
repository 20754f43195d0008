// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pipeline implements the assembly pipeline:
// label volume -> one Domain per anatomical label -> Material + contact
// rules from an AnatomyProfile -> a scene.Scene ready to solve. HEX8
// generation merges duplicate voxel-corner vertices by coordinate
// hashing; label adjacency comes from a 6-connected boundary scan.
// Neither has a gofem analogue, since cpmech/gofem reads meshes from
// .sim/.msh files rather than building them from a segmented volume.
package pipeline

import (
	"math"
	"sort"
)

// LabelVolume is a 3D integer label field with its voxel geometry. Data
// is indexed [i][j][k] matching voxel_to_hex.py / adjacency.py's (I,J,K)
// convention.
type LabelVolume struct {
	Data    [][][]int
	Spacing [3]float64 // dx, dy, dz
	Origin  [3]float64
}

// Shape returns (ni, nj, nk).
func (v *LabelVolume) Shape() (int, int, int) {
	ni := len(v.Data)
	if ni == 0 {
		return 0, 0, 0
	}
	nj := len(v.Data[0])
	if nj == 0 {
		return ni, 0, 0
	}
	return ni, nj, len(v.Data[0][0])
}

// At returns the label at voxel (i,j,k).
func (v *LabelVolume) At(i, j, k int) int { return v.Data[i][j][k] }

// WorldCenter returns the world-space center of voxel (i,j,k).
func (v *LabelVolume) WorldCenter(i, j, k int) [3]float64 {
	return [3]float64{
		v.Origin[0] + float64(i)*v.Spacing[0],
		v.Origin[1] + float64(j)*v.Spacing[1],
		v.Origin[2] + float64(k)*v.Spacing[2],
	}
}

// VoxelsForLabel returns the (i,j,k) indices and world-space centers of
// every voxel carrying the given label.
func (v *LabelVolume) VoxelsForLabel(label int) (ijk [][3]int, centers [][]float64) {
	ni, nj, nk := v.Shape()
	for i := 0; i < ni; i++ {
		for j := 0; j < nj; j++ {
			for k := 0; k < nk; k++ {
				if v.Data[i][j][k] == label {
					ijk = append(ijk, [3]int{i, j, k})
					c := v.WorldCenter(i, j, k)
					centers = append(centers, []float64{c[0], c[1], c[2]})
				}
			}
		}
	}
	return ijk, centers
}

// hexOffsets are the HEX8 vertex offsets in the bottom-CCW/top-CCW order
// each scaled to half the voxel spacing below.
var hexOffsets = [8][3]float64{
	{-1, -1, -1}, {+1, -1, -1}, {+1, +1, -1}, {-1, +1, -1},
	{-1, -1, +1}, {+1, -1, +1}, {+1, +1, +1}, {-1, +1, +1},
}

// VoxelsToHexMesh converts voxel centers into a HEX8 mesh: 8 vertices
// per voxel, merged across adjacent voxels by coordinate hashing at
// precision min(spacing)*1e-4. Returns merged node coordinates and 0-indexed
// HEX8 connectivity.
func VoxelsToHexMesh(centers [][]float64, spacing [3]float64) ([][]float64, [][]int) {
	if len(centers) == 0 {
		return nil, nil
	}
	half := [3]float64{spacing[0] / 2, spacing[1] / 2, spacing[2] / 2}
	minSpacing := spacing[0]
	for _, s := range spacing {
		if s < minSpacing {
			minSpacing = s
		}
	}
	precision := minSpacing * 1e-4

	type key [3]int64
	index := map[key]int{}
	var nodes [][]float64
	elems := make([][]int, len(centers))

	roundKey := func(p []float64) key {
		return key{
			int64(math.Round(p[0] / precision)),
			int64(math.Round(p[1] / precision)),
			int64(math.Round(p[2] / precision)),
		}
	}

	for vi, c := range centers {
		elem := make([]int, 8)
		for corner, off := range hexOffsets {
			p := []float64{
				c[0] + off[0]*half[0],
				c[1] + off[1]*half[1],
				c[2] + off[2]*half[2],
			}
			k := roundKey(p)
			idx, ok := index[k]
			if !ok {
				idx = len(nodes)
				index[k] = idx
				nodes = append(nodes, p)
			}
			elem[corner] = idx
		}
		elems[vi] = elem
	}
	return nodes, elems
}

// AdjacencyPair is one pair of labels sharing a 6-connected face
// boundary, with label_a < label_b.
type AdjacencyPair struct {
	LabelA, LabelB int
	BoundaryA, BoundaryB [][3]int
}

var sixConnectedDirs = [3][3]int{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// FindAdjacentPairs scans label_volume in the three positive axis
// directions (merging duplicates across directions) and returns every
// pair of distinct, non-ignored labels that share a face, with their
// boundary voxel indices on each side.
func FindAdjacentPairs(v *LabelVolume, ignore map[int]bool) []AdjacencyPair {
	if ignore == nil {
		ignore = map[int]bool{0: true}
	}
	ni, nj, nk := v.Shape()
	type pairKey struct{ a, b int }
	boundaries := map[pairKey]*AdjacencyPair{}
	seenA := map[pairKey]map[[3]int]bool{}
	seenB := map[pairKey]map[[3]int]bool{}

	for _, d := range sixConnectedDirs {
		for i := 0; i < ni; i++ {
			if i+d[0] >= ni {
				continue
			}
			for j := 0; j < nj; j++ {
				if j+d[1] >= nj {
					continue
				}
				for k := 0; k < nk; k++ {
					if k+d[2] >= nk {
						continue
					}
					la := v.Data[i][j][k]
					lb := v.Data[i+d[0]][j+d[1]][k+d[2]]
					if la == lb || ignore[la] || ignore[lb] {
						continue
					}
					va, vb := [3]int{i, j, k}, [3]int{i + d[0], j + d[1], k + d[2]}
					if la > lb {
						la, lb, va, vb = lb, la, vb, va
					}
					pk := pairKey{la, lb}
					p, ok := boundaries[pk]
					if !ok {
						p = &AdjacencyPair{LabelA: la, LabelB: lb}
						boundaries[pk] = p
						seenA[pk] = map[[3]int]bool{}
						seenB[pk] = map[[3]int]bool{}
					}
					if !seenA[pk][va] {
						seenA[pk][va] = true
						p.BoundaryA = append(p.BoundaryA, va)
					}
					if !seenB[pk][vb] {
						seenB[pk][vb] = true
						p.BoundaryB = append(p.BoundaryB, vb)
					}
				}
			}
		}
	}

	keys := make([]pairKey, 0, len(boundaries))
	for k := range boundaries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].a != keys[j].a {
			return keys[i].a < keys[j].a
		}
		return keys[i].b < keys[j].b
	})
	out := make([]AdjacencyPair, 0, len(keys))
	for _, k := range keys {
		out = append(out, *boundaries[k])
	}
	return out
}
