// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package femrt replaces gofem's process-wide solver globals
// with an explicit Runtime value threaded through constructors.
package femrt

import "github.com/cpmech/gosl/utl"

// Runtime carries the configuration that used to live in global variables
// (fem.Global in gofem). Every solver, material and adapter is built
// against a Runtime so no package keeps process-wide mutable state.
type Runtime struct {
	Verbose bool   // print WARNING-level messages
	Seed    int64  // RNG seed for particle-cloud jitter in tests
	Label   string // free-form tag prepended to log lines
}

// NewRuntime returns a quiet, deterministic default runtime.
func NewRuntime() *Runtime {
	return &Runtime{Verbose: false, Seed: 0}
}

// Warnf logs a non-fatal WARNING-level message when Verbose is set. No
// package of this module calls it: a horizon below the particle spacing
// is a validation error, and there is no ILU fallback.
// Warnings are never fatal and never printed through fmt directly.
func (o *Runtime) Warnf(format string, args ...interface{}) {
	if o == nil || !o.Verbose {
		return
	}
	if o.Label != "" {
		utl.Pfmag("WARNING ["+o.Label+"] "+format, args...)
		return
	}
	utl.Pfmag("WARNING "+format, args...)
}

// Infof logs an informational message (progress, convergence summaries).
func (o *Runtime) Infof(format string, args ...interface{}) {
	if o == nil || !o.Verbose {
		return
	}
	utl.Pf(format, args...)
}
