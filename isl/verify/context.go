package verify

import (
	"time"

	"github.com/intentlang/isl/isl/types"
)

// StateView selects which state snapshot entity lookups read through.
// old(...) expressions evaluate their inner expression under ViewBefore;
// everything else reads ViewAfter.
type StateView int8

const (
	ViewAfter StateView = iota
	ViewBefore
)

// SliceFunc extracts the sub-sequence of events belonging to one
// invocation of the named behavior. Provided by the trace collector.
type SliceFunc func(trace *types.ExecutionTrace, behavior string) []types.TraceEvent

// SnapshotFunc derives the before/after entity-state snapshots from a
// trace slice. Provided by the trace collector.
type SnapshotFunc func(slice []types.TraceEvent) (before, after types.StateSnapshot)

// EvalContext is the evaluation environment for one (clause, trace) pair.
// It is constructed fresh per pair and never shared: derived contexts
// (quantifier bindings, old-state view) are shallow copies, so evaluation
// has no cross-clause or cross-trace mutation.
type EvalContext struct {
	Input    map[string]any
	Result   any
	Err      *types.ErrorInfo
	OldState types.StateSnapshot
	NewState types.StateSnapshot
	Now      time.Time

	vars *Scope
	view StateView
}

// withBinding derives a context with one additional variable binding
func (c *EvalContext) withBinding(name string, value any) *EvalContext {
	derived := *c
	derived.vars = c.vars.Bind(name, value)
	return &derived
}

// withView derives a context reading entity state through the given view
func (c *EvalContext) withView(view StateView) *EvalContext {
	if c.view == view {
		return c
	}
	derived := *c
	derived.view = view
	return &derived
}

// state returns the snapshot selected by the current view
func (c *EvalContext) state() types.StateSnapshot {
	if c.view == ViewBefore {
		return c.OldState
	}
	return c.NewState
}

// entityLookup scans the viewed snapshot's collection for the first record
// where every criterion field matches by deep equality
func (c *EvalContext) entityLookup(entity string, criteria map[string]any) (map[string]any, bool) {
	records := c.state()[entity]
	for _, record := range records {
		if matchesCriteria(record, criteria) {
			return record, true
		}
	}
	return nil, false
}

// entityExists reports whether entityLookup would find a record
func (c *EvalContext) entityExists(entity string, criteria map[string]any) bool {
	_, ok := c.entityLookup(entity, criteria)
	return ok
}

func matchesCriteria(record map[string]any, criteria map[string]any) bool {
	for key, want := range criteria {
		got, ok := record[key]
		if !ok || !deepEqual(got, want) {
			return false
		}
	}
	return true
}

// BuildContext constructs the evaluation context for one trace slice.
// The handler_call event is required; without it there is nothing to
// evaluate against and ok is false, signaling the caller to skip the
// trace. Building never fails otherwise: missing return/error events and
// missing snapshots simply leave the corresponding fields empty, and the
// evaluator resolves anything touching them to unknown.
func BuildContext(slice []types.TraceEvent, snapshots SnapshotFunc) (*EvalContext, bool) {
	var call, ret, errEvent *types.TraceEvent
	for i := range slice {
		event := &slice[i]
		switch event.Type {
		case types.EventHandlerCall:
			if call == nil {
				call = event
			}
		case types.EventHandlerReturn:
			ret = event
		case types.EventHandlerError:
			errEvent = event
		}
	}
	if call == nil {
		return nil, false
	}

	ctx := &EvalContext{
		Input: call.Inputs,
		Now:   time.Now(),
		view:  ViewAfter,
	}
	if ret != nil {
		ctx.Result = ret.Outputs
	}
	if errEvent != nil {
		ctx.Err = errEvent.Error
	}
	if snapshots != nil {
		ctx.OldState, ctx.NewState = snapshots(slice)
	}
	return ctx, true
}
