package trace

import "github.com/intentlang/isl/isl/types"

// Slice extracts the sub-sequence of events belonging to one invocation
// of the named behavior: the window from the first handler_call through
// the matching handler_return or handler_error, inclusive, keeping the
// state events in between. Events tagged with a different behavior are
// excluded. Returns nil when the trace is for another behavior or holds
// no call event.
//
// This is the reference implementation of verify.SliceFunc; collectors
// with richer event streams can substitute their own.
func Slice(tr *types.ExecutionTrace, behavior string) []types.TraceEvent {
	if tr == nil || tr.Behavior != behavior {
		return nil
	}

	var window []types.TraceEvent
	started := false
	for _, event := range tr.Events {
		if event.Behavior != "" && event.Behavior != behavior {
			continue
		}
		if !started {
			if event.Type != types.EventHandlerCall {
				continue
			}
			started = true
		}
		window = append(window, event)
		if event.Type == types.EventHandlerReturn || event.Type == types.EventHandlerError {
			break
		}
	}
	if !started {
		return nil
	}
	return window
}

// StateSnapshots derives the before/after entity snapshots from a trace
// slice: before is the earliest state_before annotation, after the latest
// state_after. Either may be nil when the collector recorded none; the
// evaluator then resolves entity lookups to unknown.
//
// This is the reference implementation of verify.SnapshotFunc.
func StateSnapshots(slice []types.TraceEvent) (before, after types.StateSnapshot) {
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
