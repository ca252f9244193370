// Copyright 2026 The Shadowgrad Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package reverse provides the recording mode: primitive operations
// append dependency statements to a tape, and results carry fresh
// identifiers through the shadow store. Derivatives are computed later
// by a backward sweep over the recorded DAG.
//
// Example:
//
//	import (
//	    "github.com/shadowgrad/shadowgrad/reverse"
//	    "github.com/shadowgrad/shadowgrad/shadow"
//	    "github.com/shadowgrad/shadowgrad/tape"
//	)
//
//	func main() {
//	    t := tape.New(tape.Config{Sink: tape.NewRAMSink()})
//	    e := reverse.New(reverse.Config{
//	        Tape:   t,
//	        Shadow: shadow.NewStore(shadow.Reverse, 4096),
//	    })
//
//	    x, _ := e.RecordUnconditional(0, 0, 0, 0, 3.0) // input x = 3
//	    y, _ := e.Record(x, 0, 2*3.0, 0, 9.0)          // y = x²
//	    _ = y
//	}
package reverse

import "github.com/shadowgrad/shadowgrad/internal/reverse"

// Engine owns the reverse-mode state.
type Engine = reverse.Engine

// Config carries engine construction parameters.
type Config = reverse.Config

// SentinelIdentifier marks results of unhandled operations as fully
// active under the typegrind diagnostic mode.
const SentinelIdentifier = reverse.SentinelIdentifier

// New creates a reverse engine. The shadow store must be two-layer.
func New(cfg Config) *Engine { return reverse.New(cfg) }
