// Copyright 2026 The Shadowgrad Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package shadow provides the shadow state store: for every application
// storage location (memory, temporaries, registers) it keeps same-sized
// shadow contents. Forward mode uses one layer holding dot values;
// reverse mode uses two layers jointly holding 64-bit identifiers.
package shadow

import "github.com/shadowgrad/shadowgrad/internal/shadow"

// Mode selects the layer layout.
type Mode = shadow.Mode

const (
	// Forward keeps one shadow layer of dot values.
	Forward = shadow.Forward
	// Reverse keeps two shadow layers jointly holding identifiers.
	Reverse = shadow.Reverse
)

// Store is the shadow state store.
type Store = shadow.Store

// Memory is a sparse paged shadow of the application address space.
type Memory = shadow.Memory

// NewStore creates a store with registerBytes of shadow register file.
func NewStore(mode Mode, registerBytes int) *Store {
	return shadow.NewStore(mode, registerBytes)
}

// NewMemory creates an empty shadow memory.
func NewMemory() *Memory { return shadow.NewMemory() }

// RegisterArrayOffset computes the register file offset of a rotating
// register array access.
func RegisterArrayOffset(base, elemSize, nElems, ix, bias int) int {
	return shadow.RegisterArrayOffset(base, elemSize, nElems, ix, bias)
}

// F80ToF64 converts an x87 80-bit extended float to float64.
func F80ToF64(src [10]byte) float64 { return shadow.F80ToF64(src) }

// F64ToF80 converts a float64 to the x87 80-bit extended format.
func F64ToF80(f float64) [10]byte { return shadow.F64ToF80(f) }
