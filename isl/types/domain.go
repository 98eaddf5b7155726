package types

// TriggerKind classifies what outcome activates a condition group
type TriggerKind string

const (
	TriggerSuccess   TriggerKind = "success"
	TriggerAnyError  TriggerKind = "any_error"
	TriggerErrorCode TriggerKind = "error_code"
)

// Trigger is the activating outcome of a postcondition group.
// For TriggerErrorCode, Code carries the specific error code.
type Trigger struct {
	Kind TriggerKind `json:"kind"`
	Code string      `json:"code,omitempty"`
}

// Outcome renders the trigger as the outcome string clauses are tagged with:
// "success", "any_error", or the specific error code itself.
func (t Trigger) Outcome() string {
	switch t.Kind {
	case TriggerAnyError:
		return "any_error"
	case TriggerErrorCode:
		if t.Code != "" {
			return t.Code
		}
		return "success"
	default:
		// Absent or unrecognized triggers activate on success
		return "success"
	}
}

// Statement is one postcondition statement inside a condition group
type Statement struct {
	Expression Expr
	Loc        *SourceLocation
}

// ConditionGroup is a trigger plus the statements it activates
type ConditionGroup struct {
	Trigger    Trigger
	Statements []Statement
}

// PostconditionBlock holds a behavior's postcondition groups
type PostconditionBlock struct {
	Conditions []ConditionGroup
}

// Behavior is one declared behavior of a domain
type Behavior struct {
	Name           string
	Postconditions *PostconditionBlock
	Loc            *SourceLocation
}

// Domain is a compiled ISL domain declaration, as emitted by the external
// parser. The verifier treats it as an immutable read-only tree.
type Domain struct {
	Name      string
	Behaviors []Behavior
}
