package types

// TraceEventType tags the variant of a trace event
type TraceEventType string

const (
	EventHandlerCall   TraceEventType = "handler_call"
	EventHandlerReturn TraceEventType = "handler_return"
	EventHandlerError  TraceEventType = "handler_error"
	EventStateChange   TraceEventType = "state_change"
)

// ErrorInfo carries the code and message of a recorded error outcome
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StateSnapshot maps an entity-collection name to its records at one
// point in time
type StateSnapshot map[string][]map[string]any

// TraceEvent is one recorded event inside an execution trace. Payload
// fields are populated per event type: Inputs on handler_call, Outputs on
// handler_return, Error on handler_error. State snapshots may ride on any
// event the collector chose to annotate.
type TraceEvent struct {
	ID          string         `json:"id"`
	Type        TraceEventType `json:"type"`
	Behavior    string         `json:"behavior,omitempty"`
	Timestamp   int64          `json:"timestamp"` // unix milliseconds
	Inputs      map[string]any `json:"inputs,omitempty"`
	Outputs     any            `json:"outputs,omitempty"`
	Error       *ErrorInfo     `json:"error,omitempty"`
	StateBefore StateSnapshot  `json:"state_before,omitempty"`
	StateAfter  StateSnapshot  `json:"state_after,omitempty"`
}

// ExecutionTrace is the ordered event sequence recorded for one invocation
// of one behavior. Owned by the trace collector; the verifier only reads it.
type ExecutionTrace struct {
	ID        string       `json:"id"`
	Behavior  string       `json:"behavior"`
	StartTime int64        `json:"start_time"`
	EndTime   int64        `json:"end_time,omitempty"`
	Events    []TraceEvent `json:"events"`
}
