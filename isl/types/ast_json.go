package types

import (
	"encoding/json"

	"github.com/intentlang/isl/errors"
)

// DecodeExpr decodes one expression node from the kind-tagged JSON form
// emitted by the ISL compiler, e.g.
//
//	{"kind": "BinaryExpr", "op": "and", "left": {...}, "right": {...}}
//
// Node kinds this version does not recognize decode to *Opaque rather than
// failing, so newer compiler output still loads; the evaluator will report
// such nodes as unknown.
func DecodeExpr(data []byte) (Expr, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to decode expression node")
	}
	return DecodeExprMap(raw)
}

// DecodeExprMap decodes one expression node from its generic map form.
// Used directly by the YAML loader, which produces maps rather than raw JSON.
func DecodeExprMap(raw map[string]any) (Expr, error) {
	kind, _ := raw["kind"].(string)

	switch kind {
	case "Identifier":
		name, ok := raw["name"].(string)
		if !ok {
			return nil, errors.New("Identifier node missing name")
		}
		return &Ident{Name: name}, nil

	case "BooleanLiteral":
		value, ok := raw["value"].(bool)
		if !ok {
			return nil, errors.New("BooleanLiteral node missing boolean value")
		}
		return &BoolLit{Value: value}, nil

	case "NumberLiteral":
		value, ok := toNumber(raw["value"])
		if !ok {
			return nil, errors.New("NumberLiteral node missing numeric value")
		}
		return &NumberLit{Value: value}, nil

	case "StringLiteral":
		value, ok := raw["value"].(string)
		if !ok {
			return nil, errors.New("StringLiteral node missing string value")
		}
		return &StringLit{Value: value}, nil

	case "NullLiteral":
		return &NullLit{}, nil

	case "ObjectLiteral":
		return decodeObjectLit(raw)

	case "BinaryExpr":
		op, _ := raw["op"].(string)
		left, err := decodeChild(raw, "left")
		if err != nil {
			return nil, err
		}
		right, err := decodeChild(raw, "right")
		if err != nil {
			return nil, err
		}
		return &Binary{Op: BinaryOp(op), Left: left, Right: right}, nil

	case "UnaryExpr":
		op, _ := raw["op"].(string)
		operand, err := decodeChild(raw, "operand")
		if err != nil {
			return nil, err
		}
		return &Unary{Op: UnaryOp(op), Operand: operand}, nil

	case "MemberExpr":
		object, err := decodeChild(raw, "object")
		if err != nil {
			return nil, err
		}
		property, _ := raw["property"].(string)
		return &Member{Object: object, Property: property}, nil

	case "CallExpr":
		callee, err := decodeChild(raw, "callee")
		if err != nil {
			return nil, err
		}
		var args []Expr
		if rawArgs, ok := raw["arguments"].([]any); ok {
			for _, rawArg := range rawArgs {
				argMap, ok := rawArg.(map[string]any)
				if !ok {
					return nil, errors.New("CallExpr argument is not an expression node")
				}
				arg, err := DecodeExprMap(argMap)
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
			}
		}
		return &Call{Callee: callee, Args: args}, nil

	case "OldExpr":
		inner, err := decodeChild(raw, "expression")
		if err != nil {
			return nil, err
		}
		return &Old{Inner: inner}, nil

	case "ResultExpr":
		property, _ := raw["property"].(string)
		return &Result{Property: property}, nil

	case "InputExpr":
		property, ok := raw["property"].(string)
		if !ok {
			return nil, errors.New("InputExpr node missing property")
		}
		return &Input{Property: property}, nil

	case "QuantifierExpr":
		quant, _ := raw["quantifier"].(string)
		variable, _ := raw["variable"].(string)
		collection, err := decodeChild(raw, "collection")
		if err != nil {
			return nil, err
		}
		predicate, err := decodeChild(raw, "predicate")
		if err != nil {
			return nil, err
		}
		return &Quantifier{
			Kind:       QuantKind(quant),
			Variable:   variable,
			Collection: collection,
			Predicate:  predicate,
		}, nil

	default:
		return &Opaque{Kind: kind, Raw: raw}, nil
	}
}

func decodeChild(raw map[string]any, key string) (Expr, error) {
	childMap, ok := raw[key].(map[string]any)
	if !ok {
		kind, _ := raw["kind"].(string)
		return nil, errors.Newf("%s node missing %s", kind, key)
	}
	return DecodeExprMap(childMap)
}

func decodeObjectLit(raw map[string]any) (Expr, error) {
	rawFields, ok := raw["fields"].([]any)
	if !ok {
		return &ObjectLit{}, nil
	}
	fields := make([]ObjectField, 0, len(rawFields))
	for _, rawField := range rawFields {
		fieldMap, ok := rawField.(map[string]any)
		if !ok {
			return nil, errors.New("ObjectLiteral field is not an object")
		}
		key, _ := fieldMap["key"].(string)
		valueMap, ok := fieldMap["value"].(map[string]any)
		if !ok {
			return nil, errors.Newf("ObjectLiteral field %q missing value", key)
		}
		value, err := DecodeExprMap(valueMap)
		if err != nil {
			return nil, err
		}
		fields = append(fields, ObjectField{Key: key, Value: value})
	}
	return &ObjectLit{Fields: fields}, nil
}

// toNumber normalizes JSON/YAML numeric decodings to float64
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
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
