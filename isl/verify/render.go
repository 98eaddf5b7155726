package verify

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/intentlang/isl/isl/types"
)

// Render converts an expression node to its canonical human-readable form
// for evidence and reports. Pure presentation: rendering has no influence
// on evaluation.
func Render(expr types.Expr) string {
	switch e := expr.(type) {
	case nil:
		return "<nil>"
	case *types.Ident:
		return e.Name
	case *types.BoolLit:
		return strconv.FormatBool(e.Value)
	case *types.NumberLit:
		return strconv.FormatFloat(e.Value, 'f', -1, 64)
	case *types.StringLit:
		return strconv.Quote(e.Value)
	case *types.NullLit:
		return "null"
	case *types.ObjectLit:
		fields := make([]string, len(e.Fields))
		for i, field := range e.Fields {
			fields[i] = fmt.Sprintf("%s: %s", field.Key, Render(field.Value))
		}
		return "{" + strings.Join(fields, ", ") + "}"
	case *types.Binary:
		return fmt.Sprintf("%s %s %s", Render(e.Left), e.Op, Render(e.Right))
	case *types.Unary:
		return fmt.Sprintf("%s %s", e.Op, Render(e.Operand))
	case *types.Member:
		return fmt.Sprintf("%s.%s", Render(e.Object), e.Property)
	case *types.Call:
		args := make([]string, len(e.Args))
		for i, arg := range e.Args {
			args[i] = Render(arg)
		}
		return fmt.Sprintf("%s(%s)", Render(e.Callee), strings.Join(args, ", "))
	case *types.Old:
		return fmt.Sprintf("old(%s)", Render(e.Inner))
	case *types.Result:
		if e.Property == "" {
			return "result"
		}
		return "result." + e.Property
	case *types.Input:
		return "input." + e.Property
	case *types.Quantifier:
		return fmt.Sprintf("%s %s in %s: %s",
			e.Kind, e.Variable, Render(e.Collection), Render(e.Predicate))
	case *types.Opaque:
		return fmt.Sprintf("<%s %v>", e.Kind, e.Raw)
	default:
		return fmt.Sprintf("<%T>", expr)
	}
}
