package trace

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intentlang/isl/isl/types"
)

func TestEmitterRecordsInvocation(t *testing.T) {
	e := NewEmitter("Withdraw")
	e.SnapshotBefore(types.StateSnapshot{
		"Account": {{"id": "acc_1", "balance": float64(100)}},
	})
	e.EmitCall(map[string]any{"amount": float64(50)})
	e.EmitReturn(map[string]any{"balance": float64(50)})
	e.SnapshotAfter(types.StateSnapshot{
		"Account": {{"id": "acc_1", "balance": float64(50)}},
	})

	tr := e.Finalize()
	assert.Equal(t, "Withdraw", tr.Behavior)
	assert.NotEmpty(t, tr.ID)
	assert.GreaterOrEqual(t, tr.EndTime, tr.StartTime)
	require.Len(t, tr.Events, 2) // call (with before snapshot), return (with after)

	slice := Slice(tr, "Withdraw")
	require.Len(t, slice, 2)
	before, after := StateSnapshots(slice)
	require.NotNil(t, before)
	require.NotNil(t, after)
	assert.Equal(t, float64(100), before["Account"][0]["balance"])
	assert.Equal(t, float64(50), after["Account"][0]["balance"])
}

func TestEmitterErrorOutcome(t *testing.T) {
	e := NewEmitter("Withdraw")
	e.EmitCall(map[string]any{"amount": float64(500)})
	e.EmitError("", "something broke")

	tr := e.Finalize()
	require.Len(t, tr.Events, 2)
	errEvent := tr.Events[1]
	assert.Equal(t, types.EventHandlerError, errEvent.Type)
	require.NotNil(t, errEvent.Error)
	assert.Equal(t, "UNKNOWN", errEvent.Error.Code)
}

func TestEmitterRedactsPII(t *testing.T) {
	e := NewEmitter("Register")
	e.EmitCall(map[string]any{
		"email":      "alice@example.com",
		"password":   "hunter2",
		"phone":      "15551234567",
		"ip_address": "192.168.1.42",
		"name":       "alice",
		"nested":     map[string]any{"contact": "bob@example.com"},
	})

	tr := e.Finalize()
	inputs := tr.Events[0].Inputs
	_, hasPassword := inputs["password"]
	assert.False(t, hasPassword, "forbidden keys must be dropped")
	assert.Equal(t, "a***@example.com", inputs["email"])
	assert.Equal(t, "*******4567", inputs["phone"])
	assert.Equal(t, "192.168.xxx.xxx", inputs["ip_address"])
	assert.Equal(t, "alice", inputs["name"])

	nested := inputs["nested"].(map[string]any)
	assert.Equal(t, "b**@example.com", nested["contact"])
}

func TestEmitterSaveToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.json")
	e := NewEmitter("Withdraw")
	e.EmitCall(map[string]any{"amount": float64(1)})
	e.EmitReturn(map[string]any{"balance": float64(9)})
	require.NoError(t, e.SaveToFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var back types.ExecutionTrace
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "Withdraw", back.Behavior)
	assert.Len(t, back.Events, 2)
}
