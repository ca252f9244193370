// Copyright 2026 The Shadowgrad Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package forward provides the forward-mode differentiation rules.
//
// Forward mode propagates dot values alongside primal values: every
// primitive operation maps the operand derivatives to the result
// derivative. The rule set covers scalar and SIMD float arithmetic,
// x87 transcendentals, conversions, bit transport and bitwise logic.
//
// Example:
//
//	import (
//	    "github.com/shadowgrad/shadowgrad/forward"
//	    "github.com/shadowgrad/shadowgrad/op"
//	)
//
//	func main() {
//	    rules := forward.NewRuleSet(nil)
//
//	    // d(x*y) with x=3, dx=1, y=2, dy=0
//	    res := rules.Differentiate(op.MulF64,
//	        []op.Value{op.FromF64(3), op.FromF64(2)},
//	        []forward.Result{
//	            forward.Derivative(op.FromF64(1)),
//	            forward.Derivative(op.FromF64(0)),
//	        })
//	    _ = res.Value() // 2.0
//	}
package forward

import (
	"log/slog"

	"github.com/shadowgrad/shadowgrad/internal/forward"
	"github.com/shadowgrad/shadowgrad/op"
)

// RuleSet holds one differentiation rule per supported operation.
type RuleSet = forward.RuleSet

// Result is an operand or result derivative, which may be unsupported.
type Result = forward.Result

// NewRuleSet creates the full rule set.
func NewRuleSet(logger *slog.Logger) *RuleSet {
	return forward.NewRuleSet(logger)
}

// Derivative wraps a known derivative value.
func Derivative(v op.Value) Result {
	return forward.Derivative(v)
}

// Unsupported marks a derivative the rules cannot produce.
func Unsupported() Result {
	return forward.Unsupported()
}
