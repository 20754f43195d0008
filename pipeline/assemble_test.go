// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"testing"

	"github.com/dpedroso-lab/spinefem/contact"
	"github.com/dpedroso-lab/spinefem/scene"
)

// rigidTwoBodyProfile builds two rigid bodies (no msolid/assembly
// machinery needed) joined by a tied contact, exercising Assemble's
// label-to-body and adjacency-to-contact wiring without the FEM/PD
// solver paths.
type rigidTwoBodyProfile struct{}

func (rigidTwoBodyProfile) GetMaterial(label int) (MaterialSpec, bool) {
	return MaterialSpec{E: 1e9, Nu: 0.3, Rho: 1000, Method: MethodRigid}, true
}

func (rigidTwoBodyProfile) GetContactType(labelA, labelB int) (ContactSpec, bool) {
	return ContactSpec{Kind: contact.KindTied}, true
}

func adjacentTwoLabelVolume() *LabelVolume {
	data := make([][][]int, 2)
	for i := range data {
		data[i] = make([][]int, 1)
		data[i][0] = make([]int, 1)
	}
	data[0][0][0] = 1
	data[1][0][0] = 2
	return &LabelVolume{Data: data, Spacing: [3]float64{1, 1, 1}}
}

func TestAssembleBuildsOneBodyPerLabel(t *testing.T) {
	vol := adjacentTwoLabelVolume()
	opts := DefaultOptions()
	result, err := Assemble(vol, rigidTwoBodyProfile{}, scene.ModeExplicit, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Bodies) != 2 {
		t.Fatalf("expected 2 bodies, got %d", len(result.Bodies))
	}
	if _, ok := result.Scene.Body("label_1"); !ok {
		t.Error("expected scene to have body label_1 registered")
	}
	if _, ok := result.Scene.Body("label_2"); !ok {
		t.Error("expected scene to have body label_2 registered")
	}
}

// noContactProfile returns contact_type=None for every pair, exercising
// zero contacts between adjacent labels when the profile declines.
type noContactProfile struct{ rigidTwoBodyProfile }

func (noContactProfile) GetContactType(labelA, labelB int) (ContactSpec, bool) {
	return ContactSpec{}, false
}

func TestAssembleSkipsContactWhenProfileDeclinesIt(t *testing.T) {
	vol := adjacentTwoLabelVolume()
	opts := DefaultOptions()
	result, err := Assemble(vol, noContactProfile{}, scene.ModeExplicit, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Bodies) != 2 {
		t.Fatalf("expected 2 bodies, got %d", len(result.Bodies))
	}
}

func TestAssembleIgnoresBackgroundLabel(t *testing.T) {
	vol := adjacentTwoLabelVolume()
	vol.Data[1][0][0] = 0
	opts := DefaultOptions()
	result, err := Assemble(vol, rigidTwoBodyProfile{}, scene.ModeExplicit, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Bodies) != 1 {
		t.Fatalf("expected 1 body once the second voxel is background, got %d", len(result.Bodies))
	}
}
