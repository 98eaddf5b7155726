// Package trace records and slices behavior execution traces. The
// verifier consumes traces read-only; this package owns their creation
// (Emitter) and the default collaborator functions that slice events and
// derive state snapshots.
package trace

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/intentlang/isl/errors"
	"github.com/intentlang/isl/isl/types"
)

// Emitter records trace events during one behavior invocation. All
// recorded inputs and outputs pass through PII redaction before they are
// stored, so traces are safe to persist and share.
type Emitter struct {
	traceID      string
	behavior     string
	startTime    int64
	events       []types.TraceEvent
	eventCounter int

	// Pre-call snapshot taken before any event exists; attached to the
	// call event so it stays inside the invocation window
	pendingBefore types.StateSnapshot
}

// NewEmitter creates an emitter for one invocation of a behavior
func NewEmitter(behavior string) *Emitter {
	return &Emitter{
		traceID:   fmt.Sprintf("trace_%d_%s", time.Now().UnixMilli(), uuid.New().String()),
		behavior:  behavior,
		startTime: time.Now().UnixMilli(),
	}
}

// EmitCall records the handler invocation with its input parameters
func (e *Emitter) EmitCall(inputs map[string]any) {
	e.events = append(e.events, types.TraceEvent{
		ID:          e.nextEventID(),
		Type:        types.EventHandlerCall,
		Behavior:    e.behavior,
		Timestamp:   time.Now().UnixMilli(),
		Inputs:      redactMap(inputs),
		StateBefore: e.pendingBefore,
	})
	e.pendingBefore = nil
}

// EmitReturn records the handler's successful result
func (e *Emitter) EmitReturn(outputs any) {
	e.events = append(e.events, types.TraceEvent{
		ID:        e.nextEventID(),
		Type:      types.EventHandlerReturn,
		Behavior:  e.behavior,
		Timestamp: time.Now().UnixMilli(),
		Outputs:   redactValue(outputs),
	})
}

// EmitError records the handler's error outcome
func (e *Emitter) EmitError(code, message string) {
	if code == "" {
		code = "UNKNOWN"
	}
	e.events = append(e.events, types.TraceEvent{
		ID:        e.nextEventID(),
		Type:      types.EventHandlerError,
		Behavior:  e.behavior,
		Timestamp: time.Now().UnixMilli(),
		Error:     &types.ErrorInfo{Code: code, Message: message},
	})
}

// SnapshotBefore records the pre-call entity state. Taken before EmitCall
// it rides on the call event; afterwards it annotates the latest event.
func (e *Emitter) SnapshotBefore(state types.StateSnapshot) {
	if len(e.events) == 0 {
		e.pendingBefore = redactSnapshot(state)
		return
	}
	e.events[len(e.events)-1].StateBefore = redactSnapshot(state)
}

// SnapshotAfter records the post-call entity state on the latest event,
// or a standalone state event when nothing was emitted yet
func (e *Emitter) SnapshotAfter(state types.StateSnapshot) {
	if len(e.events) == 0 {
		e.events = append(e.events, types.TraceEvent{
			ID:        e.nextEventID(),
			Type:      types.EventStateChange,
			Behavior:  e.behavior,
			Timestamp: time.Now().UnixMilli(),
		})
	}
	e.events[len(e.events)-1].StateAfter = redactSnapshot(state)
}

// Finalize produces the completed trace
func (e *Emitter) Finalize() *types.ExecutionTrace {
	return &types.ExecutionTrace{
		ID:        e.traceID,
		Behavior:  e.behavior,
		StartTime: e.startTime,
		EndTime:   time.Now().UnixMilli(),
		Events:    e.events,
	}
}

// SaveToFile finalizes the trace and writes it as indented JSON
func (e *Emitter) SaveToFile(path string) error {
	data, err := json.MarshalIndent(e.Finalize(), "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal trace")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write trace to %s", path)
	}
	return nil
}

func (e *Emitter) nextEventID() string {
	e.eventCounter++
	return fmt.Sprintf("evt_%d_%d", e.eventCounter, time.Now().UnixMilli())
}
