// Package verify implements the ISL postcondition verification engine:
// clause extraction from domain declarations, Kleene three-valued
// evaluation of clause expressions against recorded execution traces, and
// aggregation of per-trace results into auditable evidence.
package verify

import "encoding/json"

// TriState is a Kleene three-valued truth value. Unknown means "cannot be
// determined from available evidence" and must never be conflated with
// False: a False verdict reports a real specification breach, Unknown
// reports missing or ill-typed evidence.
type TriState int8

const (
	TriUnknown TriState = iota
	TriFalse
	TriTrue
)

// FromBool lifts a Go bool into a TriState
func FromBool(b bool) TriState {
	if b {
		return TriTrue
	}
	return TriFalse
}

// Not negates; Unknown stays Unknown
func (t TriState) Not() TriState {
	switch t {
	case TriTrue:
		return TriFalse
	case TriFalse:
		return TriTrue
	default:
		return TriUnknown
	}
}

// And combines two already-evaluated operands under Kleene conjunction.
// False dominates, then Unknown; callers short-circuit on a False left
// operand before evaluating the right one.
func (t TriState) And(other TriState) TriState {
	if t == TriFalse || other == TriFalse {
		return TriFalse
	}
	if t == TriUnknown || other == TriUnknown {
		return TriUnknown
	}
	return TriTrue
}

// Or combines two already-evaluated operands under Kleene disjunction.
// True dominates, then Unknown.
func (t TriState) Or(other TriState) TriState {
	if t == TriTrue || other == TriTrue {
		return TriTrue
	}
	if t == TriUnknown || other == TriUnknown {
		return TriUnknown
	}
	return TriFalse
}

// Implies is Kleene implication: a False antecedent is vacuously True, an
// Unknown antecedent is Unknown, otherwise the consequent decides.
func (t TriState) Implies(consequent TriState) TriState {
	switch t {
	case TriFalse:
		return TriTrue
	case TriUnknown:
		return TriUnknown
	default:
		return consequent
	}
}

func (t TriState) String() string {
	switch t {
	case TriTrue:
		return "true"
	case TriFalse:
		return "false"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the tri-state as its string form so evidence
// documents stay readable
func (t TriState) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes the string form; anything unrecognized is Unknown
func (t *TriState) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "true":
		*t = TriTrue
	case "false":
		*t = TriFalse
	default:
		*t = TriUnknown
	}
	return nil
}
