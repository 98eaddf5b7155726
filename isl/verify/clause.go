package verify

import (
	"fmt"

	"github.com/intentlang/isl/isl/types"
)

// ExtractedClause is one postcondition statement lifted out of a behavior
// declaration, tagged with the outcome that activates it. Immutable once
// created.
type ExtractedClause struct {
	ID         string
	Behavior   string
	Outcome    string
	Expression string // rendered form, for evidence readability
	Expr       types.Expr
	Loc        *types.SourceLocation
}

// ExtractClauses walks every behavior's postcondition blocks and returns
// the flat clause list. Behaviors without postconditions, and condition
// groups without statements, contribute nothing. Clause IDs follow
// "{behavior}_post_{outcome}_{line}".
func ExtractClauses(domain *types.Domain) []ExtractedClause {
	var clauses []ExtractedClause
	if domain == nil {
		return clauses
	}

	for _, behavior := range domain.Behaviors {
		if behavior.Postconditions == nil {
			continue
		}
		for _, group := range behavior.Postconditions.Conditions {
			outcome := group.Trigger.Outcome()
			for _, stmt := range group.Statements {
				line := 0
				var loc *types.SourceLocation
				if stmt.Loc != nil {
					loc = stmt.Loc
					line = stmt.Loc.Start.Line
				}
				clauses = append(clauses, ExtractedClause{
					ID:         fmt.Sprintf("%s_post_%s_%d", behavior.Name, outcome, line),
					Behavior:   behavior.Name,
					Outcome:    outcome,
					Expression: Render(stmt.Expression),
					Expr:       stmt.Expression,
					Loc:        loc,
				})
			}
		}
	}
	return clauses
}
