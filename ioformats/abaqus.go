// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ioformats implements the file-format collaborator layer named
// by the core's collaborators: an Abaqus .inp reader/writer, a GMSH .msh v4 ASCII
// reader, and a VTK VTU/PVD writer. None of these formats have a
// gofem analogue (gofem reads its own JSON-based .sim format,
// inp/sim.go), so the line-oriented scanning here follows plain Go
// idiom (bufio.Scanner + strings.Fields) while file handling and error
// reporting reuse gosl/io the way gofem's inp/sim.go does
// (io.ReadFile, io.PfRed for non-fatal messages). These are the full
// production VTK/Abaqus/GMSH adapters' minimal ancestors: the
// Non-goals exclude full adapters as upstream collaborators, but the
// round-trip properties in §8 are properties of this core, so a
// reader/writer pair that makes them checkable is implemented here.
package ioformats

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// Mesh is the format-agnostic mesh this package's readers/writers
// populate, kept separate from package mesh.Mesh since file formats
// carry 1-based ids and named sets that the solver-facing Mesh arena
// has no use for.
type Mesh struct {
	Nodes    [][]float64 // 0-indexed, [n][3]
	ElemType string      // "C3D8", "CPE4", "CPS4", "C3D4", "CPE3", "CPS3", ...
	Elems    [][]int     // 0-indexed node ids per element
	MatID    []int       // per element, 0 if unset

	NSets map[string][]int // 0-indexed node ids
	ESets map[string][]int // 0-indexed element ids

	// Boundary conditions: node index (0-based), dof (0-based), value.
	BCs []BoundaryCond
	// Concentrated loads: node index (0-based), dof (0-based), value.
	Loads []Load
}

type BoundaryCond struct {
	Node, Dof int
	Value     float64
}

type Load struct {
	Node, Dof int
	Value     float64
}

// abaqusTypeToGeneric maps the supported element list to Abaqus
// type codes, 3D solids and their plane-strain/plane-stress 2D
// counterparts.
var abaqusTypeToGeneric = map[string]string{
	"C3D8": "hex8", "C3D20": "hex20",
	"C3D4": "tet4", "C3D10": "tet10",
	"CPE4": "qua4pe", "CPS4": "qua4", "CPE8": "qua8pe", "CPS8": "qua8",
	"CPE3": "tri3pe", "CPS3": "tri3", "CPE6": "tri6pe", "CPS6": "tri6",
}

var genericToAbaqusType = map[string]string{
	"hex8": "C3D8", "hex20": "C3D20",
	"tet4": "C3D4", "tet10": "C3D10",
	"qua4pe": "CPE4", "qua4": "CPS4",
	"tri3pe": "CPE3", "tri3": "CPS3",
}

// GenericType returns this core's element-type tag for an Abaqus
// *ELEMENT TYPE= code, or "" if unsupported.
func GenericType(abaqusType string) string { return abaqusTypeToGeneric[strings.ToUpper(abaqusType)] }

// WriteAbaqusInp serialises m as an Abaqus .inp deck: *NODE, *ELEMENT,
// *NSET/*ELSET (one per registered set, no GENERATE compression),
// *BOUNDARY, *CLOAD. IDs are written 1-based (Abaqus convention).
func WriteAbaqusInp(m *Mesh) (string, error) {
	abqType, ok := genericToAbaqusType[m.ElemType]
	if !ok {
		return "", chk.Err("ioformats: no Abaqus element type for %q", m.ElemType)
	}
	var b strings.Builder
	b.WriteString("*NODE\n")
	for i, x := range m.Nodes {
		fmt.Fprintf(&b, "%d", i+1)
		for _, c := range x {
			fmt.Fprintf(&b, ", %g", c)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "*ELEMENT, TYPE=%s\n", abqType)
	for e, conn := range m.Elems {
		fmt.Fprintf(&b, "%d", e+1)
		for _, n := range conn {
			fmt.Fprintf(&b, ", %d", n+1)
		}
		b.WriteString("\n")
	}
	names := sortedKeys(m.NSets)
	for _, name := range names {
		fmt.Fprintf(&b, "*NSET, NSET=%s\n", name)
		writeIDList(&b, m.NSets[name])
	}
	names = sortedKeys(m.ESets)
	for _, name := range names {
		fmt.Fprintf(&b, "*ELSET, ELSET=%s\n", name)
		writeIDList(&b, m.ESets[name])
	}
	if len(m.BCs) > 0 {
		b.WriteString("*BOUNDARY\n")
		for _, bc := range m.BCs {
			fmt.Fprintf(&b, "%d, %d, %d, %g\n", bc.Node+1, bc.Dof+1, bc.Dof+1, bc.Value)
		}
	}
	if len(m.Loads) > 0 {
		b.WriteString("*CLOAD\n")
		for _, l := range m.Loads {
			fmt.Fprintf(&b, "%d, %d, %g\n", l.Node+1, l.Dof+1, l.Value)
		}
	}
	return b.String(), nil
}

func writeIDList(b *strings.Builder, ids []int) {
	const perLine = 10
	for i, id := range ids {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(b, "%d", id+1)
		if (i+1)%perLine == 0 {
			b.WriteString("\n")
		}
	}
	if len(ids)%perLine != 0 || len(ids) == 0 {
		b.WriteString("\n")
	}
}

func sortedKeys(m map[string][]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

// ReadAbaqusInp parses an Abaqus .inp deck back into a Mesh, converting
// 1-based node/element ids and 1-based *BOUNDARY DOF indices to 0-based.
func ReadAbaqusInp(text string) (*Mesh, error) {
	m := &Mesh{NSets: map[string][]int{}, ESets: map[string][]int{}}
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var section string
	var curSetName string
	var curSetIsNode bool
	var elemRenumber map[int]int // abaqus 1-based elem id -> 0-based index

	elemRenumber = map[int]int{}
	nodeRenumber := map[int]int{}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "**") {
			continue
		}
		if strings.HasPrefix(line, "*") {
			upper := strings.ToUpper(line)
			switch {
			case strings.HasPrefix(upper, "*NODE"):
				section = "NODE"
			case strings.HasPrefix(upper, "*ELEMENT"):
				section = "ELEMENT"
				m.ElemType = GenericType(keyword(line, "TYPE"))
			case strings.HasPrefix(upper, "*NSET"):
				section = "SET"
				curSetIsNode = true
				curSetName = keyword(line, "NSET")
			case strings.HasPrefix(upper, "*ELSET"):
				section = "SET"
				curSetIsNode = false
				curSetName = keyword(line, "ELSET")
			case strings.HasPrefix(upper, "*BOUNDARY"):
				section = "BOUNDARY"
			case strings.HasPrefix(upper, "*CLOAD"):
				section = "CLOAD"
			default:
				section = ""
			}
			continue
		}
		fields := splitCSV(line)
		switch section {
		case "NODE":
			id, err := strconv.Atoi(fields[0])
			if err != nil {
				return nil, chk.Err("ioformats: bad node id %q: %v", fields[0], err)
			}
			coords := make([]float64, 0, 3)
			for _, f := range fields[1:] {
				v, err := strconv.ParseFloat(f, 64)
				if err != nil {
					return nil, chk.Err("ioformats: bad node coordinate %q: %v", f, err)
				}
				coords = append(coords, v)
			}
			nodeRenumber[id] = len(m.Nodes)
			m.Nodes = append(m.Nodes, coords)
		case "ELEMENT":
			id, err := strconv.Atoi(fields[0])
			if err != nil {
				return nil, chk.Err("ioformats: bad element id %q: %v", fields[0], err)
			}
			conn := make([]int, 0, len(fields)-1)
			for _, f := range fields[1:] {
				n, err := strconv.Atoi(f)
				if err != nil {
					return nil, chk.Err("ioformats: bad element node id %q: %v", f, err)
				}
				conn = append(conn, nodeRenumber[n])
			}
			elemRenumber[id] = len(m.Elems)
			m.Elems = append(m.Elems, conn)
			m.MatID = append(m.MatID, 0)
		case "SET":
			for _, f := range fields {
				f = strings.TrimSpace(f)
				if f == "" {
					continue
				}
				id, err := strconv.Atoi(f)
				if err != nil {
					continue // set-name references are not resolved here
				}
				if curSetIsNode {
					m.NSets[curSetName] = append(m.NSets[curSetName], nodeRenumber[id])
				} else {
					m.ESets[curSetName] = append(m.ESets[curSetName], elemRenumber[id])
				}
			}
		case "BOUNDARY":
			if len(fields) < 3 {
				continue
			}
			nodeID, _ := strconv.Atoi(fields[0])
			dofFirst, _ := strconv.Atoi(fields[1])
			value := 0.0
			if len(fields) >= 4 {
				value, _ = strconv.ParseFloat(fields[3], 64)
			}
			m.BCs = append(m.BCs, BoundaryCond{Node: nodeRenumber[nodeID], Dof: dofFirst - 1, Value: value})
		case "CLOAD":
			if len(fields) < 3 {
				continue
			}
			nodeID, _ := strconv.Atoi(fields[0])
			dof, _ := strconv.Atoi(fields[1])
			value, _ := strconv.ParseFloat(fields[2], 64)
			m.Loads = append(m.Loads, Load{Node: nodeRenumber[nodeID], Dof: dof - 1, Value: value})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, chk.Err("ioformats: scanning Abaqus deck: %v", err)
	}
	return m, nil
}

// keyword extracts the value of KEY= from an Abaqus option line (e.g.
// "*ELEMENT, TYPE=C3D8" -> keyword(line, "TYPE") == "C3D8").
func keyword(line, key string) string {
	parts := strings.Split(line, ",")
	upperKey := strings.ToUpper(key) + "="
	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		if strings.HasPrefix(strings.ToUpper(p), upperKey) {
			return p[len(upperKey):]
		}
	}
	return ""
}

func splitCSV(line string) []string {
	raw := strings.Split(line, ",")
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// ReadAbaqusInpFile reads and parses an Abaqus deck from disk, mirroring
// gofem's io.ReadFile + chk.Err error-wrapping idiom (inp/sim.go).
func ReadAbaqusInpFile(path string) (*Mesh, error) {
	b, err := io.ReadFile(path)
	if err != nil {
		return nil, chk.Err("ioformats: cannot read %s: %v", path, err)
	}
	return ReadAbaqusInp(string(b))
}
