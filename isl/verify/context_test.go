package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intentlang/isl/isl/types"
)

func snapshotFromEvents(slice []types.TraceEvent) (types.StateSnapshot, types.StateSnapshot) {
	var before, after types.StateSnapshot
	for i := range slice {
		if before == nil && slice[i].StateBefore != nil {
			before = slice[i].StateBefore
		}
		if slice[i].StateAfter != nil {
			after = slice[i].StateAfter
		}
	}
	return before, after
}

func TestBuildContext(t *testing.T) {
	slice := []types.TraceEvent{
		{
			Type:   types.EventHandlerCall,
			Inputs: map[string]any{"amount": float64(50)},
			StateBefore: types.StateSnapshot{
				"Account": {{"id": "acc_1", "balance": float64(100)}},
			},
		},
		{
			Type:    types.EventHandlerReturn,
			Outputs: map[string]any{"balance": float64(150)},
			StateAfter: types.StateSnapshot{
				"Account": {{"id": "acc_1", "balance": float64(150)}},
			},
		},
	}

	ctx, ok := BuildContext(slice, snapshotFromEvents)
	require.True(t, ok)
	assert.Equal(t, float64(50), ctx.Input["amount"])
	assert.Equal(t, map[string]any{"balance": float64(150)}, ctx.Result)
	assert.Nil(t, ctx.Err)
	assert.False(t, ctx.Now.IsZero())

	record, found := ctx.entityLookup("Account", map[string]any{"id": "acc_1"})
	require.True(t, found)
	assert.Equal(t, float64(150), record["balance"])

	oldCtx := ctx.withView(ViewBefore)
	record, found = oldCtx.entityLookup("Account", map[string]any{"id": "acc_1"})
	require.True(t, found)
	assert.Equal(t, float64(100), record["balance"])

	// The original context still reads the after state
	assert.Equal(t, ViewAfter, ctx.view)
}

func TestBuildContextNoCallEvent(t *testing.T) {
	slice := []types.TraceEvent{
		{Type: types.EventHandlerReturn, Outputs: map[string]any{"x": float64(1)}},
	}
	_, ok := BuildContext(slice, nil)
	assert.False(t, ok)

	_, ok = BuildContext(nil, nil)
	assert.False(t, ok)
}

func TestBuildContextErrorOutcome(t *testing.T) {
	slice := []types.TraceEvent{
		{Type: types.EventHandlerCall, Inputs: map[string]any{"amount": float64(500)}},
		{Type: types.EventHandlerError, Error: &types.ErrorInfo{Code: "INSUFFICIENT_FUNDS", Message: "no"}},
	}
	ctx, ok := BuildContext(slice, nil)
	require.True(t, ok)
	assert.Nil(t, ctx.Result)
	require.NotNil(t, ctx.Err)
	assert.Equal(t, "INSUFFICIENT_FUNDS", ctx.Err.Code)
}

func TestEntityLookupCriteria(t *testing.T) {
	ctx := &EvalContext{
		NewState: types.StateSnapshot{
			"Account": {
				{"id": "acc_1", "status": "open", "balance": float64(10)},
				{"id": "acc_2", "status": "open", "balance": float64(20)},
			},
		},
	}

	// Every criterion field must match
	assert.True(t, ctx.entityExists("Account", map[string]any{"status": "open", "balance": float64(20)}))
	assert.False(t, ctx.entityExists("Account", map[string]any{"status": "closed"}))
	assert.False(t, ctx.entityExists("Account", map[string]any{"missing_field": "x"}))
	assert.False(t, ctx.entityExists("Orders", map[string]any{"id": "o_1"}))

	// First match wins
	record, found := ctx.entityLookup("Account", map[string]any{"status": "open"})
	require.True(t, found)
	assert.Equal(t, "acc_1", record["id"])

	// Numeric criteria match across numeric representations
	assert.True(t, ctx.entityExists("Account", map[string]any{"balance": 10}))
}

func TestScopeIsolation(t *testing.T) {
	var root *Scope
	a := root.Bind("x", 1)
	b := a.Bind("x", 2)

	got, ok := a.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, 1, got)

	got, ok = b.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, 2, got)

	_, ok = root.Lookup("x")
	assert.False(t, ok)

	// Sibling bindings do not observe each other
	sibling := a.Bind("y", 3)
	_, ok = b.Lookup("y")
	assert.False(t, ok)
	got, ok = sibling.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, 1, got)
}
