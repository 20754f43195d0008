// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ioformats

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/cpmech/gosl/chk"
)

// gmshElemTypeToGeneric maps GMSH v4 element-type codes (the ones
// supported here) to this core's ElementType tags. GMSH numbers nodes
// per face/edge differently per type; only the codes this core's
// element catalog covers are recognised.
var gmshElemTypeToGeneric = map[int]string{
	2: "tri3", 3: "qua4", 4: "tet4", 5: "hex8",
	9: "tri6", 16: "qua8", 11: "tet10", 17: "hex20",
}

var gmshElemDim = map[int]int{
	2: 2, 3: 2, 4: 3, 5: 3, 9: 2, 16: 2, 11: 3, 17: 3,
}

// ReadGmshMsh parses a GMSH v4 ASCII .msh file ($MeshFormat >= 4.0,
// ASCII only) down to nodes and the highest-dimension elements found.
func ReadGmshMsh(text string) (*Mesh, error) {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var section string
	var elemBlocksLeft, elemsInBlock int
	var curElemType, curElemDim int

	type rawElem struct {
		dim  int
		typ  int
		conn []int // gmsh node tags
	}
	var rawElems []rawElem

	expectHeader := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "$") {
			switch line {
			case "$MeshFormat":
				section = "MeshFormat"
			case "$EndMeshFormat":
				section = ""
			case "$Entities":
				section = "Entities"
			case "$EndEntities":
				section = ""
			case "$PhysicalNames":
				section = "PhysicalNames"
			case "$EndPhysicalNames":
				section = ""
			case "$Nodes":
				// node coordinates are parsed by parseGmshNodeBlocks below;
				// this pass only needs to track element blocks.
				section = ""
			case "$EndNodes":
				section = ""
			case "$Elements":
				section = "Elements"
				expectHeader = true
			case "$EndElements":
				section = ""
			default:
				section = ""
			}
			continue
		}
		switch section {
		case "MeshFormat":
			fields := strings.Fields(line)
			ver, err := strconv.ParseFloat(fields[0], 64)
			if err != nil {
				return nil, chk.Err("ioformats: bad $MeshFormat version %q", fields[0])
			}
			if ver < 4.0 {
				return nil, chk.Err("ioformats: gmsh format version %v not supported (need >= 4.0)", ver)
			}
			if len(fields) > 1 && fields[1] != "0" {
				return nil, chk.Err("ioformats: only ASCII gmsh files are supported")
			}
		case "Entities", "PhysicalNames":
			// consumed but not needed for the geometric reduction this
			// reader performs; entity/physical-group tagging is left to
			// a fuller production adapter.
		case "Elements":
			if expectHeader {
				expectHeader = false
				fields := strings.Fields(line)
				if len(fields) > 1 {
					elemBlocksLeft, _ = strconv.Atoi(fields[0])
				}
				continue
			}
			if elemsInBlock == 0 && elemBlocksLeft > 0 {
				fields := strings.Fields(line)
				if len(fields) < 4 {
					continue
				}
				curElemDim, _ = strconv.Atoi(fields[0])
				curElemType, _ = strconv.Atoi(fields[2])
				elemsInBlock, _ = strconv.Atoi(fields[3])
				elemBlocksLeft--
				if elemsInBlock == 0 {
					continue
				}
				continue
			}
			fields := strings.Fields(line)
			conn := make([]int, 0, len(fields)-1)
			for _, f := range fields[1:] {
				tag, _ := strconv.Atoi(f)
				conn = append(conn, tag)
			}
			rawElems = append(rawElems, rawElem{dim: curElemDim, typ: curElemType, conn: conn})
			elemsInBlock--
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, chk.Err("ioformats: scanning gmsh file: %v", err)
	}

	// Node coordinates are parsed in a separate pass because gmsh v4's
	// node block interleaves a list of tags followed by a list of
	// coordinate triples; re-scanning is simplest given this reader only
	// needs the final tag->coords map, not streaming.
	nodeCoords, err := parseGmshNodeBlocks(text)
	if err != nil {
		return nil, err
	}

	maxDim := 0
	for _, e := range rawElems {
		if e.dim > maxDim {
			maxDim = e.dim
		}
	}

	tagOrder := make([]int, 0, len(nodeCoords))
	for tag := range nodeCoords {
		tagOrder = append(tagOrder, tag)
	}
	sortIntsGmsh(tagOrder)
	localOf := map[int]int{}
	m := &Mesh{NSets: map[string][]int{}, ESets: map[string][]int{}}
	for _, tag := range tagOrder {
		localOf[tag] = len(m.Nodes)
		c := nodeCoords[tag]
		if maxDim == 2 {
			m.Nodes = append(m.Nodes, []float64{c[0], c[1]})
		} else {
			m.Nodes = append(m.Nodes, c)
		}
	}

	for _, e := range rawElems {
		if e.dim != maxDim {
			continue
		}
		generic, ok := gmshElemTypeToGeneric[e.typ]
		if !ok || gmshElemDim[e.typ] != maxDim {
			continue
		}
		if m.ElemType == "" {
			m.ElemType = generic
		}
		conn := make([]int, len(e.conn))
		for i, tag := range e.conn {
			conn[i] = localOf[tag]
		}
		m.Elems = append(m.Elems, conn)
		m.MatID = append(m.MatID, 0)
	}
	return m, nil
}

// parseGmshNodeBlocks re-walks the $Nodes section to pair each block's
// tag list with its coordinate list (gmsh v4 ASCII emits all of a
// block's tags, then all of its coordinate triples).
func parseGmshNodeBlocks(text string) (map[int][]float64, error) {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	out := map[int][]float64{}

	inNodes := false
	expectHeader := false
	blocksLeft := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "$Nodes" {
			inNodes, expectHeader = true, true
			continue
		}
		if line == "$EndNodes" {
			inNodes = false
			continue
		}
		if !inNodes {
			continue
		}
		if expectHeader {
			expectHeader = false
			fields := strings.Fields(line)
			blocksLeft, _ = strconv.Atoi(fields[0])
			continue
		}
		if blocksLeft == 0 {
			continue
		}
		fields := strings.Fields(line)
		nTags, _ := strconv.Atoi(fields[len(fields)-1])
		blocksLeft--
		tags := make([]int, nTags)
		for i := 0; i < nTags; i++ {
			if !scanner.Scan() {
				return nil, chk.Err("ioformats: truncated gmsh node block")
			}
			tags[i], _ = strconv.Atoi(strings.TrimSpace(scanner.Text()))
		}
		for i := 0; i < nTags; i++ {
			if !scanner.Scan() {
				return nil, chk.Err("ioformats: truncated gmsh node block")
			}
			fields := strings.Fields(scanner.Text())
			coords := make([]float64, 3)
			for d := 0; d < 3 && d < len(fields); d++ {
				coords[d], _ = strconv.ParseFloat(fields[d], 64)
			}
			out[tags[i]] = coords
		}
	}
	return out, nil
}

func sortIntsGmsh(a []int) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && a[j-1] > a[j]; j-- {
			a[j-1], a[j] = a[j], a[j-1]
		}
	}
}
