package verify

import (
	"encoding/json"

	"github.com/intentlang/isl/isl/types"
)

// extractValue resolves an expression to a concrete raw value instead of a
// truth value. It runs wherever evaluation needs the value itself —
// comparison operands, quantifier collections, lookup criteria. ok=false
// is the unknown sentinel: the value cannot be resolved from the context.
//
// This is deliberately a separate path from Evaluate: the same
// sub-expression ("result.id") must answer both "is it present" (boolean
// evaluation) and "what is it" (value extraction) with different
// contracts.
func extractValue(expr types.Expr, ctx *EvalContext) (any, bool) {
	switch e := expr.(type) {
	case *types.BoolLit:
		return e.Value, true
	case *types.NumberLit:
		return e.Value, true
	case *types.StringLit:
		return e.Value, true
	case *types.NullLit:
		return nil, true

	case *types.Ident:
		return extractIdent(e.Name, ctx)

	case *types.Member:
		object, ok := extractValue(e.Object, ctx)
		if !ok || object == nil {
			return nil, false
		}
		m, ok := object.(map[string]any)
		if !ok {
			return nil, false
		}
		value, present := m[e.Property]
		if !present {
			return nil, false
		}
		return value, true

	case *types.Result:
		if e.Property == "" {
			return ctx.Result, true
		}
		m, ok := ctx.Result.(map[string]any)
		if !ok {
			return nil, false
		}
		value, present := m[e.Property]
		if !present {
			return nil, false
		}
		return value, true

	case *types.Input:
		value, present := ctx.Input[e.Property]
		if !present {
			return nil, false
		}
		return value, true

	case *types.Old:
		return extractValue(e.Inner, ctx.withView(ViewBefore))

	case *types.Call:
		entity, method, ok := entityCallPattern(e)
		if !ok || method != "lookup" {
			return nil, false
		}
		criteria, ok := resolveCriteria(e.Args, ctx)
		if !ok {
			return nil, false
		}
		record, found := ctx.entityLookup(entity, criteria)
		if !found {
			return nil, false
		}
		return record, true

	case *types.Binary, *types.Unary:
		// Boolean sub-expressions in value position resolve through the
		// tri-state evaluator; unknown stays unknown
		if t := Evaluate(expr, ctx); t != TriUnknown {
			return t == TriTrue, true
		}
		return nil, false

	default:
		return nil, false
	}
}

// extractIdent resolves a bare name: literal booleans, the result builtin,
// then the quantifier scope, then input parameters
func extractIdent(name string, ctx *EvalContext) (any, bool) {
	switch name {
	case "true":
		return true, true
	case "false":
		return false, true
	case "result":
		return ctx.Result, true
	}
	if value, ok := ctx.vars.Lookup(name); ok {
		return value, true
	}
	if value, ok := ctx.Input[name]; ok {
		return value, true
	}
	return nil, false
}

// entityCallPattern matches the Entity.method(...) call shape the
// evaluator recognizes
func entityCallPattern(call *types.Call) (entity, method string, ok bool) {
	member, isMember := call.Callee.(*types.Member)
	if !isMember {
		return "", "", false
	}
	ident, isIdent := member.Object.(*types.Ident)
	if !isIdent {
		return "", "", false
	}
	return ident.Name, member.Property, true
}

// resolveCriteria materializes lookup criteria from call arguments: an
// object literal resolved field by field, or a single positional value
// interpreted as {id: value}. Any unresolvable field makes the whole
// criteria unknown.
func resolveCriteria(args []types.Expr, ctx *EvalContext) (map[string]any, bool) {
	if len(args) != 1 {
		return nil, false
	}
	if obj, isObj := args[0].(*types.ObjectLit); isObj {
		criteria := make(map[string]any, len(obj.Fields))
		for _, field := range obj.Fields {
			value, ok := extractValue(field.Value, ctx)
			if !ok {
				return nil, false
			}
			criteria[field.Key] = value
		}
		return criteria, true
	}
	value, ok := extractValue(args[0], ctx)
	if !ok {
		return nil, false
	}
	return map[string]any{"id": value}, true
}

// deepEqual compares decoded JSON values structurally: arrays element-wise,
// objects by key set plus recursive value equality, numbers across Go
// numeric types.
func deepEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if af, aok := asNumber(a); aok {
		bf, bok := asNumber(b)
		return bok && af == bf
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}

	if as, ok := asSlice(a); ok {
		bs, ok := asSlice(b)
		if !ok || len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !deepEqual(as[i], bs[i]) {
				return false
			}
		}
		return true
	}

	if am, ok := asMap(a); ok {
		bm, ok := asMap(b)
		if !ok || len(am) != len(bm) {
			return false
		}
		for key, avVal := range am {
			bvVal, present := bm[key]
			if !present || !deepEqual(avVal, bvVal) {
				return false
			}
		}
		return true
	}

	return a == b
}

// asNumber normalizes Go numeric representations of decoded values
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// asSlice normalizes list shapes, including entity-record collections
func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []map[string]any:
		out := make([]any, len(s))
		for i, record := range s {
			out[i] = record
		}
		return out, true
	default:
		return nil, false
	}
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}
