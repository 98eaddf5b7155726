package verify

import (
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/intentlang/isl/isl/types"
	"github.com/intentlang/isl/logger"
)

// ClauseStatus is the final verdict for one clause across all its
// matching traces
type ClauseStatus string

const (
	StatusProven    ClauseStatus = "proven"
	StatusViolated  ClauseStatus = "violated"
	StatusNotProven ClauseStatus = "not_proven"
	StatusSkipped   ClauseStatus = "skipped"
)

// Clause-level reason strings surfaced in evidence
const (
	ReasonNoTraces     = "No traces available for behavior"
	ReasonEvalFalse    = "Postcondition evaluated to false"
	ReasonUndetermined = "Postcondition could not be determined from available traces"
)

// TraceSliceSummary records which traces backed a verdict, detailed enough
// to reconstruct why it was reached without re-running evaluation
type TraceSliceSummary struct {
	MatchedTraces   int    `json:"matchedTraces"`
	EvaluatedTraces int    `json:"evaluatedTraces"`
	DecidingTraceID string `json:"decidingTraceId,omitempty"`
}

// ClauseEvidence is the per-clause output record. Produced once per clause
// and never mutated after creation.
type ClauseEvidence struct {
	ClauseID       string                `json:"clauseId"`
	Type           string                `json:"type"` // always "postcondition"
	Behavior       string                `json:"behavior"`
	Outcome        string                `json:"outcome,omitempty"`
	Expression     string                `json:"expression"`
	SourceLocation *types.SourceLocation `json:"sourceLocation,omitempty"`
	Status         ClauseStatus          `json:"status"`
	TriStateResult TriState              `json:"triStateResult"`
	Reason         string                `json:"reason,omitempty"`
	TraceSlice     *TraceSliceSummary    `json:"traceSlice,omitempty"`
}

// Counters accumulate clause verdicts per grouping key
type Counters struct {
	TotalClauses int `json:"totalClauses"`
	Proven       int `json:"proven"`
	Violated     int `json:"violated"`
	NotProven    int `json:"notProven"`
}

// Summary is the top-level roll-up over all evidence
type Summary struct {
	TotalClauses     int `json:"totalClauses"`
	ProvenClauses    int `json:"provenClauses"`
	ViolatedClauses  int `json:"violatedClauses"`
	NotProvenClauses int `json:"notProvenClauses"`
	SkippedClauses   int `json:"skippedClauses"`
	CoveragePercent  int `json:"coveragePercent"`
}

// Output is the complete verifier result: deterministic given identical
// domain and traces, and JSON-serializable for downstream report
// formatters and scoring.
type Output struct {
	Evidence   []ClauseEvidence    `json:"evidence"`
	Summary    Summary             `json:"summary"`
	ByBehavior map[string]Counters `json:"byBehavior"`
	ByOutcome  map[string]Counters `json:"byOutcome"`
}

// Verifier evaluates extracted clauses against recorded traces. Slice and
// Snapshots are the trace-collector collaborators; Workers > 1 evaluates
// independent clauses concurrently (traces within one clause stay strictly
// sequential so the first counterexample wins).
type Verifier struct {
	Slice     SliceFunc
	Snapshots SnapshotFunc
	Workers   int

	log *zap.SugaredLogger
}

// NewVerifier constructs a verifier with the given collaborators
func NewVerifier(slice SliceFunc, snapshots SnapshotFunc) *Verifier {
	return &Verifier{
		Slice:     slice,
		Snapshots: snapshots,
		Workers:   1,
		log:       logger.Named("verify"),
	}
}

// Verify extracts every postcondition clause from the domain and evaluates
// each against the supplied traces, producing evidence and summary
// statistics. It never returns an error: all failure modes are represented
// in the output data model.
func (v *Verifier) Verify(domain *types.Domain, traces []*types.ExecutionTrace) *Output {
	clauses := ExtractClauses(domain)
	v.log.Debugw("extracted clauses",
		logger.FieldDomain, domain.Name,
		logger.FieldCount, len(clauses))

	byBehavior := make(map[string][]*types.ExecutionTrace)
	for _, trace := range traces {
		byBehavior[trace.Behavior] = append(byBehavior[trace.Behavior], trace)
	}

	evidence := make([]ClauseEvidence, len(clauses))
	workers := v.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(clauses) {
		workers = len(clauses)
	}

	if workers <= 1 {
		for i, clause := range clauses {
			evidence[i] = v.evaluateClause(clause, byBehavior[clause.Behavior])
		}
	} else {
		// Clauses are independent; fan out, reassemble in extraction order
		indices := make(chan int)
		var wg sync.WaitGroup
		wg.Add(workers)
		for w := 0; w < workers; w++ {
			go func() {
				defer wg.Done()
				for i := range indices {
					evidence[i] = v.evaluateClause(clauses[i], byBehavior[clauses[i].Behavior])
				}
			}()
		}
		for i := range clauses {
			indices <- i
		}
		close(indices)
		wg.Wait()
	}

	return aggregate(evidence)
}

// evaluateClause folds one clause's matching traces into a verdict.
// Traces are considered in the order supplied; the first trace evaluating
// to false decides the clause (violated) and later traces are not
// consulted. Otherwise the last evaluated result stands.
func (v *Verifier) evaluateClause(clause ExtractedClause, traces []*types.ExecutionTrace) ClauseEvidence {
	evidence := ClauseEvidence{
		ClauseID:       clause.ID,
		Type:           "postcondition",
		Behavior:       clause.Behavior,
		Outcome:        clause.Outcome,
		Expression:     clause.Expression,
		SourceLocation: clause.Loc,
	}

	if len(traces) == 0 {
		evidence.Status = StatusNotProven
		evidence.TriStateResult = TriUnknown
		evidence.Reason = ReasonNoTraces
		return evidence
	}

	summary := &TraceSliceSummary{}
	result := TriUnknown
	evaluated := false

	for _, trace := range traces {
		slice := trace.Events
		if v.Slice != nil {
			slice = v.Slice(trace, clause.Behavior)
		}
		if !MatchesOutcome(slice, clause.Outcome) {
			continue
		}
		summary.MatchedTraces++

		ctx, ok := BuildContext(slice, v.Snapshots)
		if !ok {
			// No call event; nothing to evaluate against
			continue
		}

		result = Evaluate(clause.Expr, ctx)
		evaluated = true
		summary.EvaluatedTraces++
		summary.DecidingTraceID = trace.ID

		v.log.Debugw("evaluated clause against trace",
			logger.FieldClause, clause.ID,
			logger.FieldTrace, trace.ID,
			logger.FieldTriState, result.String())

		if result == TriFalse {
			// First counterexample wins
			break
		}
	}

	evidence.TraceSlice = summary

	if !evaluated {
		evidence.Status = StatusSkipped
		evidence.TriStateResult = TriUnknown
		evidence.Reason = "No traces matched outcome: " + clause.Outcome
		return evidence
	}

	evidence.TriStateResult = result
	switch result {
	case TriTrue:
		evidence.Status = StatusProven
	case TriFalse:
		evidence.Status = StatusViolated
		evidence.Reason = ReasonEvalFalse
	default:
		evidence.Status = StatusNotProven
		evidence.Reason = ReasonUndetermined
	}
	return evidence
}

// aggregate folds the evidence list into summary counts grouped overall,
// by behavior, and by outcome
func aggregate(evidence []ClauseEvidence) *Output {
	out := &Output{
		Evidence:   evidence,
		ByBehavior: make(map[string]Counters),
		ByOutcome:  make(map[string]Counters),
	}

	for _, ev := range evidence {
		out.Summary.TotalClauses++
		behavior := out.ByBehavior[ev.Behavior]
		outcome := out.ByOutcome[ev.Outcome]
		behavior.TotalClauses++
		outcome.TotalClauses++

		switch ev.Status {
		case StatusProven:
			out.Summary.ProvenClauses++
			behavior.Proven++
			outcome.Proven++
		case StatusViolated:
			out.Summary.ViolatedClauses++
			behavior.Violated++
			outcome.Violated++
		case StatusSkipped:
			out.Summary.SkippedClauses++
		default:
			out.Summary.NotProvenClauses++
			behavior.NotProven++
			outcome.NotProven++
		}

		out.ByBehavior[ev.Behavior] = behavior
		out.ByOutcome[ev.Outcome] = outcome
	}

	if out.Summary.TotalClauses > 0 {
		ratio := float64(out.Summary.ProvenClauses) / float64(out.Summary.TotalClauses)
		out.Summary.CoveragePercent = int(math.Round(ratio * 100))
	}
	return out
}
