// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import "github.com/dpedroso-lab/spinefem/contact"

// Method selects which solver family a label's Domain is built on.
type Method string

const (
	MethodFEM      Method = "fem"
	MethodPD       Method = "pd"
	MethodSPG      Method = "spg"
	MethodCoupled  Method = "coupled"
	MethodRigid    Method = "rigid"
)

// MaterialSpec is what an AnatomyProfile returns for one label: the
// elastic/density constants and which Method to build the body with
// per anatomical label.
type MaterialSpec struct {
	E, Nu, Rho float64
	Method     Method
}

// ContactSpec is what an AnatomyProfile returns for one adjacent label
// pair.
type ContactSpec struct {
	Kind    contact.Kind
	Penalty float64 // 0 means "auto-derive via contact.AutoPenalty"
	MuS     float64 // static Coulomb coefficient (KindCoulomb only)
	MuD     float64 // dynamic/kinetic Coulomb coefficient (KindCoulomb only)
}

// FacetJoint is an additional node-to-node contact pair detected by a
// profile-specific geometric rule rather than plain label adjacency.
type FacetJoint struct {
	BodyA, BodyB string
	NodeA, NodeB int
	Spec         ContactSpec
}

// AnatomyProfile is the external collaborator that
// maps anatomical labels to material and contact rules. The assembly
// pipeline never interprets label values itself; it only calls through
// this interface, so a real anatomy module can be swapped in without
// touching package pipeline.
type AnatomyProfile interface {
	// GetMaterial returns the material/method spec for label, and false
	// if the label should be skipped entirely.
	GetMaterial(label int) (MaterialSpec, bool)

	// GetContactType returns the contact kind for an adjacent label
	// pair, and false if no contact should be created.
	GetContactType(labelA, labelB int) (ContactSpec, bool)
}

// FacetJointDetector is an optional capability an AnatomyProfile may
// additionally implement (optionally
// detect_facet_joints(...)").
type FacetJointDetector interface {
	DetectFacetJoints(bodies map[int]*BuiltBody) []FacetJoint
}

// DefaultProfile is a minimal, constant-rule AnatomyProfile: every label
// maps to the same elastic/FEM material and every adjacent pair gets the
// same tied (or penalty) contact. It exists purely so the pipeline is
// exercisable end-to-end without a real anatomy module: every label
// resolves through one constant lookup before any per-vertebra
// override a richer profile might add.
type DefaultProfile struct {
	E, Nu, Rho float64
	Method     Method
	Contact    ContactSpec
	// Overrides, keyed by label, take precedence over the constant
	// defaults above (auto_material.py's per-label override table).
	Overrides map[int]MaterialSpec
}

// NewDefaultProfile returns a DefaultProfile with reasonable bone-like
// constants and tied contact between every adjacent label pair.
func NewDefaultProfile() *DefaultProfile {
	return &DefaultProfile{
		E: 1e10, Nu: 0.3, Rho: 1800, Method: MethodFEM,
		Contact:   ContactSpec{Kind: contact.KindTied},
		Overrides: map[int]MaterialSpec{},
	}
}

func (p *DefaultProfile) GetMaterial(label int) (MaterialSpec, bool) {
	if label == 0 {
		return MaterialSpec{}, false
	}
	if spec, ok := p.Overrides[label]; ok {
		return spec, true
	}
	return MaterialSpec{E: p.E, Nu: p.Nu, Rho: p.Rho, Method: p.Method}, true
}

func (p *DefaultProfile) GetContactType(labelA, labelB int) (ContactSpec, bool) {
	return p.Contact, true
}
