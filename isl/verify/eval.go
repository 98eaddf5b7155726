package verify

import (
	"github.com/intentlang/isl/isl/types"
)

// Evaluate resolves an expression to a TriState under the given context.
// Evaluation is total and fail-safe: unsupported node shapes, missing
// variables, and type mismatches all resolve to Unknown, never to an error
// or a panic. Boolean connectives evaluate left to right and short-circuit
// on a dominant left operand, so clause authors can rely on guard patterns
// like "x != null and x.field > 0".
func Evaluate(expr types.Expr, ctx *EvalContext) TriState {
	switch e := expr.(type) {
	case *types.Ident:
		return evalIdent(e.Name, ctx)

	case *types.BoolLit:
		return FromBool(e.Value)

	case *types.Binary:
		return evalBinary(e, ctx)

	case *types.Unary:
		if e.Op == types.OpNot {
			return Evaluate(e.Operand, ctx).Not()
		}
		return TriUnknown

	case *types.Member:
		// Presence check: object resolvable and property present, non-null
		object, ok := extractValue(e.Object, ctx)
		if !ok || object == nil {
			return TriUnknown
		}
		m, isMap := object.(map[string]any)
		if !isMap {
			return TriUnknown
		}
		value, present := m[e.Property]
		return FromBool(present && value != nil)

	case *types.Call:
		return evalCall(e, ctx)

	case *types.Old:
		return Evaluate(e.Inner, ctx.withView(ViewBefore))

	case *types.Result:
		if e.Property == "" {
			return FromBool(ctx.Result != nil)
		}
		m, isMap := ctx.Result.(map[string]any)
		if !isMap {
			return TriUnknown
		}
		value, present := m[e.Property]
		return FromBool(present && value != nil)

	case *types.Input:
		value, present := ctx.Input[e.Property]
		if !present {
			return TriUnknown
		}
		return truthOf(value)

	case *types.Quantifier:
		return evalQuantifier(e, ctx)

	default:
		// NumberLit, StringLit, NullLit, ObjectLit, Opaque: no boolean
		// reading exists
		return TriUnknown
	}
}

// evalIdent resolves a bare name as a truth value: literal names first,
// the result builtin, then the quantifier scope, then input parameters
func evalIdent(name string, ctx *EvalContext) TriState {
	switch name {
	case "true":
		return TriTrue
	case "false":
		return TriFalse
	case "result":
		return FromBool(ctx.Result != nil)
	}
	if value, ok := ctx.vars.Lookup(name); ok {
		return truthOf(value)
	}
	if value, ok := ctx.Input[name]; ok {
		return truthOf(value)
	}
	return TriUnknown
}

// truthOf converts a resolved raw value to a truth value. Only booleans
// carry one; anything else is a type mismatch and resolves to Unknown.
func truthOf(value any) TriState {
	if b, isBool := value.(bool); isBool {
		return FromBool(b)
	}
	return TriUnknown
}

func evalBinary(e *types.Binary, ctx *EvalContext) TriState {
	switch e.Op {
	case types.OpAnd:
		left := Evaluate(e.Left, ctx)
		if left == TriFalse {
			return TriFalse
		}
		return left.And(Evaluate(e.Right, ctx))

	case types.OpOr:
		left := Evaluate(e.Left, ctx)
		if left == TriTrue {
			return TriTrue
		}
		return left.Or(Evaluate(e.Right, ctx))

	case types.OpImplies:
		left := Evaluate(e.Left, ctx)
		if left == TriFalse {
			return TriTrue
		}
		return left.Implies(Evaluate(e.Right, ctx))

	case types.OpEq, types.OpNe, types.OpLt, types.OpLe, types.OpGt, types.OpGe:
		return evalComparison(e, ctx)

	default:
		return TriUnknown
	}
}

// evalComparison resolves both operands through value extraction; either
// side unknown makes the comparison unknown. Equality is deep structural;
// ordering requires numeric operands.
func evalComparison(e *types.Binary, ctx *EvalContext) TriState {
	left, lok := extractValue(e.Left, ctx)
	if !lok {
		return TriUnknown
	}
	right, rok := extractValue(e.Right, ctx)
	if !rok {
		return TriUnknown
	}

	switch e.Op {
	case types.OpEq:
		return FromBool(deepEqual(left, right))
	case types.OpNe:
		return FromBool(!deepEqual(left, right))
	}

	lf, lnum := asNumber(left)
	rf, rnum := asNumber(right)
	if !lnum || !rnum {
		return TriUnknown
	}
	switch e.Op {
	case types.OpLt:
		return FromBool(lf < rf)
	case types.OpLe:
		return FromBool(lf <= rf)
	case types.OpGt:
		return FromBool(lf > rf)
	case types.OpGe:
		return FromBool(lf >= rf)
	}
	return TriUnknown
}

// evalCall gives meaning to the Entity.exists / Entity.lookup member-call
// patterns; any other call shape is unsupported
func evalCall(e *types.Call, ctx *EvalContext) TriState {
	entity, method, ok := entityCallPattern(e)
	if !ok {
		return TriUnknown
	}
	switch method {
	case "exists", "lookup":
		criteria, ok := resolveCriteria(e.Args, ctx)
		if !ok {
			return TriUnknown
		}
		return FromBool(ctx.entityExists(entity, criteria))
	default:
		return TriUnknown
	}
}

// evalQuantifier evaluates the predicate once per collection element under
// a child context holding the element binding. Sibling iterations are
// isolated: each binds on the parent scope.
func evalQuantifier(e *types.Quantifier, ctx *EvalContext) TriState {
	collection, ok := extractValue(e.Collection, ctx)
	if !ok {
		return TriUnknown
	}
	elements, isList := asSlice(collection)
	if !isList {
		return TriUnknown
	}

	universal := e.Kind.Universal()
	if !universal && e.Kind != types.QuantAny && e.Kind != types.QuantExists {
		return TriUnknown
	}

	sawUnknown := false
	for _, element := range elements {
		child := ctx.withBinding(e.Variable, element)
		switch Evaluate(e.Predicate, child) {
		case TriFalse:
			if universal {
				return TriFalse
			}
		case TriTrue:
			if !universal {
				return TriTrue
			}
		case TriUnknown:
			sawUnknown = true
		}
	}

	if sawUnknown {
		return TriUnknown
	}
	// Empty collections land here too: vacuously true for all/forall,
	// false for any/exists
	return FromBool(universal)
}
