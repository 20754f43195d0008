// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coupling

import (
	"context"

	"github.com/cpmech/gosl/chk"

	"github.com/dpedroso-lab/spinefem/adapter"
)

// CoupledAdapter wraps a Dirichlet-Neumann Driver so a FEM/PD (or
// FEM/SPG) coupled body can be registered with package scene like any
// other single-method body.
type CoupledAdapter struct {
	Driver *Driver
	Fem    adapter.Adapter
	Pd     adapter.Adapter

	// FemOfNode/PdOfNode map this coupled body's own node
	// enumeration (the original, unsplit mesh's global node indices) to
	// each side's local index, so Displacements can report one combined
	// array sized to the whole body, FEM values at shared interface
	// nodes winning over the PD/SPG duplicate.
	NNodes    int
	Dim       int
	FemOfNode []int // -1 if this node has no FEM-side counterpart
	PdOfNode  []int // -1 if this node has no PD-side counterpart
}

func NewCoupledAdapter(driver *Driver, fem, pd adapter.Adapter, nNodes, dim int, femOfNode, pdOfNode []int) *CoupledAdapter {
	return &CoupledAdapter{
		Driver: driver, Fem: fem, Pd: pd,
		NNodes: nNodes, Dim: dim, FemOfNode: femOfNode, PdOfNode: pdOfNode,
	}
}

func (o *CoupledAdapter) Solve(ctx context.Context) error {
	_, converged, err := o.Driver.Run(ctx)
	if err != nil {
		return err
	}
	if !converged {
		return chk.Err("coupled body did not converge")
	}
	return nil
}

// Step advances the coupled body by one explicit increment: both sides
// step independently at dt. No interface data is exchanged here; the
// two sides are reconciled across the interface only by Solve
// (Driver.Run).
func (o *CoupledAdapter) Step(ctx context.Context, dt float64) error {
	if err := o.Fem.Step(ctx, dt); err != nil {
		return err
	}
	if err := o.Pd.Step(ctx, dt); err != nil {
		return err
	}
	return nil
}

func (o *CoupledAdapter) StableDt() float64 {
	fd, pd := o.Fem.StableDt(), o.Pd.StableDt()
	if fd < pd {
		return fd
	}
	return pd
}

func (o *CoupledAdapter) combine(femVals, pdVals [][]float64, width int) [][]float64 {
	out := make([][]float64, o.NNodes)
	for i := 0; i < o.NNodes; i++ {
		out[i] = make([]float64, width)
		if fi := o.FemOfNode[i]; fi >= 0 {
			copy(out[i], femVals[fi])
			continue
		}
		if pi := o.PdOfNode[i]; pi >= 0 {
			copy(out[i], pdVals[pi])
		}
	}
	return out
}

func (o *CoupledAdapter) Displacements() [][]float64 {
	return o.combine(o.Fem.Displacements(), o.Pd.Displacements(), o.Dim)
}

func (o *CoupledAdapter) Velocities() [][]float64 {
	return o.combine(o.Fem.Velocities(), o.Pd.Velocities(), o.Dim)
}

func (o *CoupledAdapter) Stress() [][]float64 {
	femS, pdS := o.Fem.Stress(), o.Pd.Stress()
	width := 6
	if o.Dim == 2 {
		width = 3
	}
	return o.combine(femS, pdS, width)
}

func (o *CoupledAdapter) Damage() []float64 {
	femD, pdD := o.Fem.Damage(), o.Pd.Damage()
	out := make([]float64, o.NNodes)
	for i := 0; i < o.NNodes; i++ {
		if fi := o.FemOfNode[i]; fi >= 0 {
			out[i] = femD[fi]
		} else if pi := o.PdOfNode[i]; pi >= 0 {
			out[i] = pdD[pi]
		}
	}
	return out
}

func (o *CoupledAdapter) CurrentPositions() [][]float64 {
	return o.combine(o.Fem.CurrentPositions(), o.Pd.CurrentPositions(), o.Dim)
}

func (o *CoupledAdapter) ReferencePositions() [][]float64 {
	return o.combine(o.Fem.ReferencePositions(), o.Pd.ReferencePositions(), o.Dim)
}

// InjectContactForces routes a contact force at this body's own node
// index to whichever side owns it, preferring the FEM side at shared
// interface nodes (contact is detected against surface nodes, which in
// a coupled body are modeled on the FEM side).
func (o *CoupledAdapter) InjectContactForces(idx int, force []float64) {
	if fi := o.FemOfNode[idx]; fi >= 0 {
		o.Fem.InjectContactForces(fi, force)
		return
	}
	if pi := o.PdOfNode[idx]; pi >= 0 {
		o.Pd.InjectContactForces(pi, force)
	}
}

func (o *CoupledAdapter) ClearContactForces() {
	o.Fem.ClearContactForces()
	o.Pd.ClearContactForces()
}
