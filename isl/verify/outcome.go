package verify

import "github.com/intentlang/isl/isl/types"

// Outcome strings clauses are tagged with. Any other value is interpreted
// as a specific error code.
const (
	OutcomeSuccess  = "success"
	OutcomeAnyError = "any_error"
)

// MatchesOutcome decides whether a trace slice's recorded outcome matches
// a clause's expected outcome. A clause is only evaluated against traces
// that match.
//
//   - "success": a handler_return event exists and no handler_error does
//   - "any_error": a handler_error event exists
//   - anything else: a handler_error event exists whose code equals the
//     expected outcome exactly (case-sensitive, no fallback)
func MatchesOutcome(slice []types.TraceEvent, expected string) bool {
	var hasReturn bool
	var errInfo *types.ErrorInfo
	for i := range slice {
		switch slice[i].Type {
		case types.EventHandlerReturn:
			hasReturn = true
		case types.EventHandlerError:
			errInfo = slice[i].Error
			if errInfo == nil {
				errInfo = &types.ErrorInfo{}
			}
		}
	}

	switch expected {
	case OutcomeSuccess:
		return hasReturn && errInfo == nil
	case OutcomeAnyError:
		return errInfo != nil
	default:
		return errInfo != nil && errInfo.Code == expected
	}
}
