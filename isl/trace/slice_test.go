package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intentlang/isl/isl/types"
)

func TestSliceWindow(t *testing.T) {
	tr := &types.ExecutionTrace{
		ID:       "tr_1",
		Behavior: "Withdraw",
		Events: []types.TraceEvent{
			{Type: types.EventStateChange},                           // before the call: excluded
			{Type: types.EventHandlerCall, Behavior: "Withdraw"},     // window start
			{Type: types.EventStateChange, Behavior: "Withdraw"},     // kept
			{Type: types.EventStateChange, Behavior: "Audit"},        // other behavior: excluded
			{Type: types.EventHandlerReturn, Behavior: "Withdraw"},   // window end
			{Type: types.EventStateChange, Behavior: "Withdraw"},     // after the return: excluded
		},
	}

	slice := Slice(tr, "Withdraw")
	require.Len(t, slice, 3)
	assert.Equal(t, types.EventHandlerCall, slice[0].Type)
	assert.Equal(t, types.EventHandlerReturn, slice[2].Type)
}

func TestSliceWrongBehavior(t *testing.T) {
	tr := &types.ExecutionTrace{Behavior: "Deposit", Events: []types.TraceEvent{
		{Type: types.EventHandlerCall},
	}}
	assert.Nil(t, Slice(tr, "Withdraw"))
	assert.Nil(t, Slice(nil, "Withdraw"))
}

func TestSliceNoCallEvent(t *testing.T) {
	tr := &types.ExecutionTrace{Behavior: "Withdraw", Events: []types.TraceEvent{
		{Type: types.EventHandlerReturn},
	}}
	assert.Nil(t, Slice(tr, "Withdraw"))
}

func TestStateSnapshotsEarliestBeforeLatestAfter(t *testing.T) {
	first := types.StateSnapshot{"A": {{"v": float64(1)}}}
	second := types.StateSnapshot{"A": {{"v": float64(2)}}}
	third := types.StateSnapshot{"A": {{"v": float64(3)}}}

	slice := []types.TraceEvent{
		{StateBefore: first},
		{StateBefore: second, StateAfter: second},
		{StateAfter: third},
	}

	before, after := StateSnapshots(slice)
	assert.Equal(t, first, before)
	assert.Equal(t, third, after)
}

func TestStateSnapshotsEmpty(t *testing.T) {
	before, after := StateSnapshots(nil)
	assert.Nil(t, before)
	assert.Nil(t, after)
}
