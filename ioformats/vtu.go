// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ioformats

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// vtkCellType maps this core's ElementType tags to the VTK cell-type
// codes GenVtu.go writes to a *.vtu <DataArray Name="types">. It is keyed
// by element-type name; each plane-strain variant (tri3pe, qua4pe, ...)
// maps to the same code as its plain counterpart, since a VTK cell
// carries only its shape.
var vtkCellType = map[string]int{
	"tri3": 5, "tri3pe": 5, "tri6": 22, "tri6pe": 22,
	"qua4": 9, "qua4pe": 9, "qua8": 23, "qua8pe": 23,
	"tet4": 10, "tet10": 24,
	"hex8": 12, "hex20": 25,
}

// FieldPointVector is a per-node vector field (e.g. displacement,
// velocity), written with 3 components -- a 2D field is zero-padded in
// the z slot.
type FieldPointVector struct {
	Name string
	Data [][]float64
}

// FieldPointTensor is a per-node symmetric tensor field (stress,
// strain), written Voigt-packed as 6 components (xx,yy,zz,xy,yz,zx),
// zero-filled for any component a 2D analysis has no value for.
type FieldPointTensor struct {
	Name string
	Data [][]float64 // each row already in Voigt order, length 4 or 6
}

// FieldPointScalar is a per-node scalar field (damage, von Mises
// stress, ...).
type FieldPointScalar struct {
	Name string
	Data []float64
}

// VtuFrame is everything WriteVtu needs for one time snapshot of one
// mesh: current (deformed) node coordinates, connectivity, and the
// point-data fields to attach.
type VtuFrame struct {
	Points   [][]float64 // [n][2 or 3], current/deformed positions
	ElemType string
	Elems    [][]int
	Vectors  []FieldPointVector
	Tensors  []FieldPointTensor
	Scalars  []FieldPointScalar
}

// WriteVtu serialises one frame as a VTK XML UnstructuredGrid (.vtu,
// ASCII format), following gofem's tools/GenVtu.go layout:
// <Points>, <Cells> with connectivity/offsets/types DataArrays, then
// one <PointData> block per registered field.
func WriteVtu(f *VtuFrame) (string, error) {
	vtkType, ok := vtkCellType[f.ElemType]
	if !ok {
		return "", chk.Err("ioformats: no VTK cell type for %q", f.ElemType)
	}
	var b bytes.Buffer
	io.Ff(&b, "<?xml version=\"1.0\"?>\n<VTKFile type=\"UnstructuredGrid\" version=\"0.1\" byte_order=\"LittleEndian\">\n<UnstructuredGrid>\n")
	io.Ff(&b, "<Piece NumberOfPoints=\"%d\" NumberOfCells=\"%d\">\n", len(f.Points), len(f.Elems))

	io.Ff(&b, "<Points>\n<DataArray type=\"Float64\" NumberOfComponents=\"3\" format=\"ascii\">\n")
	for _, p := range f.Points {
		switch len(p) {
		case 2:
			io.Ff(&b, "%23.15e %23.15e 0 ", p[0], p[1])
		default:
			io.Ff(&b, "%23.15e %23.15e %23.15e ", p[0], p[1], p[2])
		}
	}
	io.Ff(&b, "\n</DataArray>\n</Points>\n")

	io.Ff(&b, "<Cells>\n<DataArray type=\"Int32\" Name=\"connectivity\" format=\"ascii\">\n")
	for _, conn := range f.Elems {
		for _, n := range conn {
			io.Ff(&b, "%d ", n)
		}
	}
	io.Ff(&b, "\n</DataArray>\n<DataArray type=\"Int32\" Name=\"offsets\" format=\"ascii\">\n")
	offset := 0
	for _, conn := range f.Elems {
		offset += len(conn)
		io.Ff(&b, "%d ", offset)
	}
	io.Ff(&b, "\n</DataArray>\n<DataArray type=\"UInt8\" Name=\"types\" format=\"ascii\">\n")
	for range f.Elems {
		io.Ff(&b, "%d ", vtkType)
	}
	io.Ff(&b, "\n</DataArray>\n</Cells>\n")

	if len(f.Vectors) > 0 || len(f.Tensors) > 0 || len(f.Scalars) > 0 {
		io.Ff(&b, "<PointData Scalars=\"TheScalars\">\n")
		for _, fld := range f.Scalars {
			writeScalarArray(&b, fld.Name, fld.Data)
		}
		for _, fld := range f.Vectors {
			writeVectorArray(&b, fld.Name, fld.Data)
		}
		for _, fld := range f.Tensors {
			writeTensorArray(&b, fld.Name, fld.Data)
		}
		io.Ff(&b, "</PointData>\n")
	}

	io.Ff(&b, "</Piece>\n</UnstructuredGrid>\n</VTKFile>\n")
	return b.String(), nil
}

func writeScalarArray(b *bytes.Buffer, name string, data []float64) {
	io.Ff(b, "<DataArray type=\"Float64\" Name=\"%s\" NumberOfComponents=\"1\" format=\"ascii\">\n", name)
	for _, v := range data {
		io.Ff(b, "%23.15e ", v)
	}
	io.Ff(b, "\n</DataArray>\n")
}

func writeVectorArray(b *bytes.Buffer, name string, data [][]float64) {
	io.Ff(b, "<DataArray type=\"Float64\" Name=\"%s\" NumberOfComponents=\"3\" format=\"ascii\">\n", name)
	for _, v := range data {
		switch len(v) {
		case 2:
			io.Ff(b, "%23.15e %23.15e 0  ", v[0], v[1])
		default:
			io.Ff(b, "%23.15e %23.15e %23.15e  ", v[0], v[1], v[2])
		}
	}
	io.Ff(b, "\n</DataArray>\n")
}

// writeTensorArray writes a 6-component Voigt-packed symmetric tensor
// array (xx,yy,zz,xy,yz,zx), zero-filling any trailing component a 2D
// row omits.
func writeTensorArray(b *bytes.Buffer, name string, data [][]float64) {
	io.Ff(b, "<DataArray type=\"Float64\" Name=\"%s\" NumberOfComponents=\"6\" format=\"ascii\">\n", name)
	for _, v := range data {
		row := make([]float64, 6)
		copy(row, v)
		io.Ff(b, "%23.15e %23.15e %23.15e %23.15e %23.15e %23.15e  ", row[0], row[1], row[2], row[3], row[4], row[5])
	}
	io.Ff(b, "\n</DataArray>\n")
}

// PvdEntry is one time-indexed reference in a PVD collection file.
type PvdEntry struct {
	Time     float64
	FileName string
}

// WritePvd serialises a ParaView collection (.pvd) referencing a
// sequence of .vtu files, mirroring GenVtu.go's pvd buffer layout
// (one <DataSet timestep=".." file=".." /> per frame).
func WritePvd(entries []PvdEntry) string {
	var b bytes.Buffer
	io.Ff(&b, "<?xml version=\"1.0\"?>\n<VTKFile type=\"Collection\" version=\"0.1\" byte_order=\"LittleEndian\">\n<Collection>\n")
	for _, e := range entries {
		io.Ff(&b, "<DataSet timestep=\"%23.15e\" part=\"0\" file=\"%s\" />\n", e.Time, e.FileName)
	}
	io.Ff(&b, "</Collection>\n</VTKFile>\n")
	return b.String()
}

// VtuFileName builds the conventional "<key>_<index>.vtu" name GenVtu.go
// uses for a PVD-referenced frame.
func VtuFileName(key string, index int) string {
	return fmt.Sprintf("%s_%06d.vtu", key, index)
}

// vtkCellName is the reverse of vtkCellType, picking the canonical
// (non-plane-strain) tag for each VTK code.
var vtkCellName = map[int]string{
	5: "tri3", 22: "tri6", 9: "qua4", 23: "qua8",
	10: "tet4", 24: "tet10", 12: "hex8", 25: "hex20",
}

// ReadVtu parses an ASCII UnstructuredGrid produced by WriteVtu back
// into a VtuFrame. Points always come back with 3 components (WriteVtu
// zero-pads 2D input); point-data arrays are classified by component
// count: 1 scalar, 3 vector, 6 Voigt tensor.
func ReadVtu(text string) (*VtuFrame, error) {
	type dataArray struct {
		name    string
		ncomp   int
		values  []float64
	}
	var arrays []dataArray
	rest := text
	for {
		start := strings.Index(rest, "<DataArray")
		if start < 0 {
			break
		}
		rest = rest[start:]
		tagEnd := strings.Index(rest, ">")
		if tagEnd < 0 {
			return nil, chk.Err("ioformats: unterminated <DataArray> tag")
		}
		tag := rest[:tagEnd]
		bodyEnd := strings.Index(rest, "</DataArray>")
		if bodyEnd < 0 {
			return nil, chk.Err("ioformats: missing </DataArray>")
		}
		body := rest[tagEnd+1 : bodyEnd]
		rest = rest[bodyEnd+len("</DataArray>"):]

		da := dataArray{ncomp: 1}
		if v, ok := xmlAttr(tag, "Name"); ok {
			da.name = v
		}
		if v, ok := xmlAttr(tag, "NumberOfComponents"); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, chk.Err("ioformats: bad NumberOfComponents %q", v)
			}
			da.ncomp = n
		}
		for _, tok := range strings.Fields(body) {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, chk.Err("ioformats: bad value %q in %q array", tok, da.name)
			}
			da.values = append(da.values, v)
		}
		arrays = append(arrays, da)
	}
	if len(arrays) < 4 {
		return nil, chk.Err("ioformats: expected points + cells arrays, found %d arrays", len(arrays))
	}

	frame := &VtuFrame{}
	var connectivity, offsets []int
	var cellCode int
	for i, da := range arrays {
		switch da.name {
		case "":
			if i != 0 {
				return nil, chk.Err("ioformats: unnamed non-points array")
			}
			for k := 0; k+2 < len(da.values); k += 3 {
				frame.Points = append(frame.Points, []float64{da.values[k], da.values[k+1], da.values[k+2]})
			}
		case "connectivity":
			for _, v := range da.values {
				connectivity = append(connectivity, int(v))
			}
		case "offsets":
			for _, v := range da.values {
				offsets = append(offsets, int(v))
			}
		case "types":
			if len(da.values) == 0 {
				return nil, chk.Err("ioformats: empty cell-types array")
			}
			cellCode = int(da.values[0])
		default:
			switch da.ncomp {
			case 1:
				frame.Scalars = append(frame.Scalars, FieldPointScalar{Name: da.name, Data: da.values})
			case 3:
				var rows [][]float64
				for k := 0; k+2 < len(da.values); k += 3 {
					rows = append(rows, []float64{da.values[k], da.values[k+1], da.values[k+2]})
				}
				frame.Vectors = append(frame.Vectors, FieldPointVector{Name: da.name, Data: rows})
			case 6:
				var rows [][]float64
				for k := 0; k+5 < len(da.values); k += 6 {
					rows = append(rows, append([]float64(nil), da.values[k:k+6]...))
				}
				frame.Tensors = append(frame.Tensors, FieldPointTensor{Name: da.name, Data: rows})
			default:
				return nil, chk.Err("ioformats: unsupported component count %d for array %q", da.ncomp, da.name)
			}
		}
	}

	name, ok := vtkCellName[cellCode]
	if !ok {
		return nil, chk.Err("ioformats: unknown VTK cell code %d", cellCode)
	}
	frame.ElemType = name
	prev := 0
	for _, off := range offsets {
		if off < prev || off > len(connectivity) {
			return nil, chk.Err("ioformats: inconsistent cell offsets")
		}
		frame.Elems = append(frame.Elems, append([]int(nil), connectivity[prev:off]...))
		prev = off
	}
	return frame, nil
}

// xmlAttr extracts attr="value" from a raw tag string.
func xmlAttr(tag, attr string) (string, bool) {
	key := attr + "=\""
	i := strings.Index(tag, key)
	if i < 0 {
		return "", false
	}
	rest := tag[i+len(key):]
	j := strings.Index(rest, "\"")
	if j < 0 {
		return "", false
	}
	return rest[:j], true
}
