package verify

import (
	"testing"

	"github.com/intentlang/isl/isl/types"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		expr types.Expr
		want string
	}{
		{name: "identifier", expr: ident("amount"), want: "amount"},
		{name: "bool literal", expr: boolLit(true), want: "true"},
		{name: "integer-valued number", expr: num(42), want: "42"},
		{name: "fractional number", expr: num(1.5), want: "1.5"},
		{name: "string literal", expr: str("ok"), want: `"ok"`},
		{name: "null", expr: &types.NullLit{}, want: "null"},
		{name: "binary", expr: bin(types.OpGe, result("balance"), num(0)), want: "result.balance >= 0"},
		{name: "nested binary", expr: bin(types.OpAnd, bin(types.OpGt, input("amount"), num(0)), result("")), want: "input.amount > 0 and result"},
		{name: "unary", expr: &types.Unary{Op: types.OpNot, Operand: ident("closed")}, want: "not closed"},
		{name: "member", expr: &types.Member{Object: ident("account"), Property: "balance"}, want: "account.balance"},
		{
			name: "entity call with criteria",
			expr: &types.Call{
				Callee: &types.Member{Object: ident("Account"), Property: "exists"},
				Args: []types.Expr{&types.ObjectLit{Fields: []types.ObjectField{
					{Key: "id", Value: str("acc_1")},
				}}},
			},
			want: `Account.exists({id: "acc_1"})`,
		},
		{name: "old", expr: old(&types.Member{Object: ident("account"), Property: "balance"}), want: "old(account.balance)"},
		{name: "bare result", expr: result(""), want: "result"},
		{name: "result property", expr: result("id"), want: "result.id"},
		{name: "input", expr: input("amount"), want: "input.amount"},
		{
			name: "quantifier",
			expr: &types.Quantifier{
				Kind:       types.QuantAll,
				Variable:   "x",
				Collection: input("items"),
				Predicate:  bin(types.OpGt, &types.Member{Object: ident("x"), Property: "qty"}, num(0)),
			},
			want: "all x in input.items: x.qty > 0",
		},
		{name: "nil", expr: nil, want: "<nil>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.expr); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderOpaqueFallback(t *testing.T) {
	got := Render(&types.Opaque{Kind: "FutureExpr", Raw: map[string]any{"kind": "FutureExpr"}})
	if got == "" {
		t.Fatal("opaque nodes must render a structural dump")
	}
}
