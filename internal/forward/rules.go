// Package forward implements the forward-mode differentiation rule set:
// one pure rule per primitive-operation tag, mapping operand derivatives
// (and the original operand values where the calculus needs them) to the
// result derivative.
//
// Rules assume operand derivatives are already available, memoized in the
// shadow state store; no rule re-derives a sub-expression. Operations
// without a registered rule are unsupported, and unsupported status
// propagates strictly: an expression depending on an unsupported sub-result
// is itself unsupported, unless the sentinel diagnostic mode substitutes an
// all-ones derivative to flag differentiation gaps.
package forward

import (
	"fmt"
	"log/slog"

	"github.com/shadowgrad/shadowgrad/internal/op"
)

// Rule computes the result derivative of one operation from the original
// operand values and the operand derivatives.
type Rule func(args, derivs []op.Value) op.Value

// Result is a computed derivative or the explicit "operation unsupported"
// outcome.
type Result struct {
	value     op.Value
	supported bool
}

// Derivative wraps a computed derivative value.
func Derivative(v op.Value) Result {
	return Result{value: v, supported: true}
}

// Unsupported is the "no derivative" outcome.
func Unsupported() Result {
	return Result{}
}

// Supported reports whether a derivative was computed.
func (r Result) Supported() bool { return r.supported }

// Value returns the derivative. Only meaningful if Supported.
func (r Result) Value() op.Value { return r.value }

// RuleSet dispatches operation tags to their forward rules.
type RuleSet struct {
	rules map[op.Op]Rule

	// Sentinel substitutes an all-ones derivative for unsupported
	// operations instead of propagating Unsupported. Diagnostic only.
	Sentinel bool
	// WarnUnsupported logs every rule miss.
	WarnUnsupported bool

	logger *slog.Logger
}

// NewRuleSet builds the full rule table.
func NewRuleSet(logger *slog.Logger) *RuleSet {
	if logger == nil {
		logger = slog.Default()
	}
	rs := &RuleSet{
		rules:  make(map[op.Op]Rule, 96),
		logger: logger,
	}
	rs.registerArithmetic()
	rs.registerTranscendental()
	rs.registerConversions()
	rs.registerTransport()
	rs.registerSIMD()
	rs.registerLogical()
	return rs
}

func (rs *RuleSet) register(o op.Op, r Rule) {
	if _, dup := rs.rules[o]; dup {
		panic(fmt.Sprintf("forward: duplicate rule for %s", o))
	}
	rs.rules[o] = r
}

// Has reports whether a rule is registered for o.
func (rs *RuleSet) Has(o op.Op) bool {
	_, ok := rs.rules[o]
	return ok
}

// Differentiate applies the rule for o to the operand values and operand
// derivative results. An invalid tag is a schema mismatch with the upstream
// decoder and panics; a merely unregistered valid tag is Unsupported.
func (rs *RuleSet) Differentiate(o op.Op, args []op.Value, derivs []Result) Result {
	if !o.Valid() {
		panic(fmt.Sprintf("forward: malformed operation tag %d", uint16(o)))
	}
	if len(args) != o.Arity() || len(derivs) != o.Arity() {
		panic(fmt.Sprintf("forward: %s expects %d operands, got %d args / %d derivs",
			o, o.Arity(), len(args), len(derivs)))
	}
	for _, d := range derivs {
		if !d.Supported() {
			return rs.unsupported(o, args)
		}
	}
	rule, ok := rs.rules[o]
	if !ok {
		return rs.unsupported(o, args)
	}
	vals := make([]op.Value, len(derivs))
	for i, d := range derivs {
		vals[i] = d.Value()
	}
	return Derivative(rule(args, vals))
}

func (rs *RuleSet) unsupported(o op.Op, args []op.Value) Result {
	if rs.WarnUnsupported {
		rs.logger.Warn("no forward derivative rule", "op", o.String())
	}
	if rs.Sentinel {
		return Derivative(op.AllOnes(resultType(o, args)))
	}
	return Unsupported()
}

// resultType gives the type of an operation's result, used to size zero and
// sentinel derivatives.
func resultType(o op.Op, args []op.Value) op.Type {
	switch o {
	case op.AddF64, op.SubF64, op.MulF64, op.DivF64, op.NegF64, op.AbsF64, op.SqrtF64,
		op.SinF64, op.CosF64, op.TanF64, op.AtanYXF64, op.ScaleF64,
		op.Yl2xF64, op.Yl2xp1F64, op.Exp2m1F64,
		op.F32toF64, op.I32StoF64, op.I64StoF64, op.RoundF64, op.ReinterpI64asF64:
		return op.F64
	case op.AddF32, op.SubF32, op.MulF32, op.DivF32, op.NegF32, op.AbsF32, op.SqrtF32,
		op.F64toF32, op.ReinterpI32asF32:
		return op.F32
	case op.F64toI32S, op.ReinterpF32asI32, op.Lo64to32, op.Hi64to32,
		op.And32, op.Or32, op.Xor32, op.CmpF64, op.CmpF32, op.CmpEQ32:
		return op.I32
	case op.F64toI64S, op.ReinterpF64asI64, op.Concat32HLto64,
		op.Ext8Uto64, op.Ext16Uto64, op.Ext32Uto64, op.Ext8Sto64, op.Ext16Sto64, op.Ext32Sto64,
		op.And64, op.Or64, op.Xor64, op.V128toLo64, op.V128toHi64, op.CmpEQ64:
		return op.I64
	case op.Concat64HLtoV128, op.AndV128, op.OrV128, op.XorV128,
		op.Add64Fx2, op.Sub64Fx2, op.Mul64Fx2, op.Div64Fx2, op.Sqrt64Fx2,
		op.Add32Fx4, op.Sub32Fx4, op.Mul32Fx4, op.Div32Fx4, op.Sqrt32Fx4:
		return op.V128
	case op.AndV256, op.OrV256, op.XorV256,
		op.Add64Fx4, op.Sub64Fx4, op.Mul64Fx4, op.Div64Fx4,
		op.Add32Fx8, op.Sub32Fx8, op.Mul32Fx8, op.Div32Fx8:
		return op.V256
	default:
		// Fall back to the first operand's type for anything uniform.
		if len(args) > 0 {
			return args[0].Type()
		}
		return op.TypeInvalid
	}
}
