package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intentlang/isl/isl/types"
)

func TestExtractClauses(t *testing.T) {
	domain := &types.Domain{
		Name: "Banking",
		Behaviors: []types.Behavior{
			{Name: "NoPost"},
			{
				Name: "Withdraw",
				Postconditions: &types.PostconditionBlock{
					Conditions: []types.ConditionGroup{
						{
							Trigger: types.Trigger{Kind: types.TriggerSuccess},
							Statements: []types.Statement{
								{Expression: result("balance"), Loc: &types.SourceLocation{Start: types.Position{Line: 10}}},
								{Expression: boolLit(true), Loc: &types.SourceLocation{Start: types.Position{Line: 11}}},
							},
						},
						{
							Trigger: types.Trigger{Kind: types.TriggerErrorCode, Code: "INSUFFICIENT_FUNDS"},
							Statements: []types.Statement{
								{Expression: boolLit(true), Loc: &types.SourceLocation{Start: types.Position{Line: 15}}},
							},
						},
						{
							// Group with no statements contributes nothing
							Trigger: types.Trigger{Kind: types.TriggerAnyError},
						},
					},
				},
			},
		},
	}

	clauses := ExtractClauses(domain)
	require.Len(t, clauses, 3)

	assert.Equal(t, "Withdraw_post_success_10", clauses[0].ID)
	assert.Equal(t, "Withdraw_post_success_11", clauses[1].ID)
	assert.Equal(t, "Withdraw_post_INSUFFICIENT_FUNDS_15", clauses[2].ID)
	assert.Equal(t, "Withdraw", clauses[0].Behavior)
	assert.Equal(t, "success", clauses[0].Outcome)
	assert.Equal(t, "INSUFFICIENT_FUNDS", clauses[2].Outcome)
	assert.Equal(t, "result.balance", clauses[0].Expression)
}

func TestExtractClausesDefaultTrigger(t *testing.T) {
	// Absent and unrecognized triggers both default to success
	tests := []struct {
		name    string
		trigger types.Trigger
	}{
		{name: "zero trigger", trigger: types.Trigger{}},
		{name: "unrecognized kind", trigger: types.Trigger{Kind: "on_retry"}},
		{name: "error_code without code", trigger: types.Trigger{Kind: types.TriggerErrorCode}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, "success", tt.trigger.Outcome())
		})
	}
}

func TestExtractClausesNilDomain(t *testing.T) {
	assert.Empty(t, ExtractClauses(nil))
}
