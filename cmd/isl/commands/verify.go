package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/intentlang/isl/config"
	"github.com/intentlang/isl/db"
	"github.com/intentlang/isl/errors"
	"github.com/intentlang/isl/isl/loader"
	"github.com/intentlang/isl/isl/storage"
	"github.com/intentlang/isl/isl/trace"
	"github.com/intentlang/isl/isl/types"
	"github.com/intentlang/isl/isl/verify"
	"github.com/intentlang/isl/isl/watcher"
	"github.com/intentlang/isl/logger"
)

var (
	verifyDomainPath string
	verifyTracesPath string
	verifyBehavior   string
	verifyOutcome    string
	verifyWorkers    int
	verifyWatch      bool
	verifySave       bool
)

// VerifyCmd verifies execution traces against a domain's postconditions
var VerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify execution traces against a domain's postconditions",
	Long: `Verify recorded execution traces against a compiled domain declaration.

Each postcondition clause is evaluated per trace with three-valued logic:
  proven      - evaluated true on the deciding trace
  violated    - evaluated false on some trace (first counterexample wins)
  not_proven  - could not be determined from the available data
  skipped     - no trace matched the clause's outcome condition

The command exits non-zero when any clause is violated.

Examples:
  isl verify --domain banking.json --traces ./traces
  isl verify --domain banking.json --traces run1.json --workers 8
  isl verify --domain banking.json --traces ./traces --json
  isl verify --domain banking.json --traces ./traces --watch`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		jsonOutput, _ := cmd.Flags().GetBool("json")

		if verifyWatch {
			return runVerifyWatch(jsonOutput)
		}
		return runVerify(jsonOutput)
	},
}

func init() {
	VerifyCmd.Flags().StringVar(&verifyDomainPath, "domain", "", "Path to compiled domain declaration (.json, .yaml)")
	VerifyCmd.Flags().StringVar(&verifyTracesPath, "traces", "", "Path to a trace file or directory of trace files")
	VerifyCmd.Flags().StringVar(&verifyBehavior, "behavior", "", "Verify only this behavior's postconditions")
	VerifyCmd.Flags().StringVar(&verifyOutcome, "outcome", "", "Verify only clauses for this outcome (success, any_error, or an error code)")
	VerifyCmd.Flags().IntVar(&verifyWorkers, "workers", 0, "Clause evaluation concurrency (0 = use configured default)")
	VerifyCmd.Flags().BoolVar(&verifyWatch, "watch", false, "Re-verify whenever the domain or trace files change")
	VerifyCmd.Flags().BoolVar(&verifySave, "save", false, "Persist traces and evidence to the database")
	VerifyCmd.MarkFlagRequired("domain")
	VerifyCmd.MarkFlagRequired("traces")
}

func runVerify(jsonOutput bool) error {
	output, err := verifyOnce(jsonOutput)
	if err != nil {
		return err
	}
	if output.Summary.ViolatedClauses > 0 {
		return errors.Newf("%d postcondition(s) violated", output.Summary.ViolatedClauses)
	}
	return nil
}

// verifyOnce loads the domain and traces, runs the verifier, and renders
// the result
func verifyOnce(jsonOutput bool) (*verify.Output, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}

	domain, err := loader.LoadDomain(verifyDomainPath)
	if err != nil {
		return nil, err
	}
	domain = filterDomain(domain, verifyBehavior, verifyOutcome)

	traces, err := loader.LoadTraces(verifyTracesPath)
	if err != nil {
		return nil, err
	}

	verifier := verify.NewVerifier(trace.Slice, trace.StateSnapshots)
	verifier.Workers = verifyWorkers
	if verifier.Workers <= 0 {
		verifier.Workers = cfg.Verify.Workers
	}

	start := time.Now()
	output := verifier.Verify(domain, traces)
	logger.Infow("Verification complete",
		logger.FieldDomain, domain.Name,
		"traces", len(traces),
		"clauses", output.Summary.TotalClauses,
		"duration", time.Since(start).String())

	if verifySave {
		if err := saveRun(cfg, traces, output); err != nil {
			return nil, err
		}
	}

	if jsonOutput {
		encoded, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode output")
		}
		fmt.Println(string(encoded))
	} else {
		renderOutput(output)
	}
	return output, nil
}

// filterDomain narrows a domain to one behavior and/or outcome. Empty
// filters pass everything through.
func filterDomain(domain *types.Domain, behavior, outcome string) *types.Domain {
	if behavior == "" && outcome == "" {
		return domain
	}

	filtered := &types.Domain{Name: domain.Name}
	for _, b := range domain.Behaviors {
		if behavior != "" && b.Name != behavior {
			continue
		}
		kept := b
		if outcome != "" && b.Postconditions != nil {
			block := &types.PostconditionBlock{}
			for _, group := range b.Postconditions.Conditions {
				if group.Trigger.Outcome() == outcome {
					block.Conditions = append(block.Conditions, group)
				}
			}
			kept.Postconditions = block
		}
		filtered.Behaviors = append(filtered.Behaviors, kept)
	}
	return filtered
}

// saveRun persists the traces and the run's evidence under a fresh run ID
func saveRun(cfg *config.Config, traces []*types.ExecutionTrace, output *verify.Output) error {
	database, err := db.Open(cfg.Database.Path, logger.Logger)
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	defer database.Close()

	store := storage.NewTraceStore(database, logger.Logger)
	if err := store.InitSchema(); err != nil {
		return err
	}
	for _, tr := range traces {
		if err := store.SaveTrace(tr); err != nil {
			return err
		}
	}

	runID := "run_" + uuid.NewString()
	if err := store.SaveEvidence(runID, time.Now().UnixMilli(), output.Evidence); err != nil {
		return err
	}
	fmt.Printf("Saved run %s\n", runID)
	return nil
}

// runVerifyWatch re-runs verification whenever the domain or trace files
// change, until interrupted
func runVerifyWatch(jsonOutput bool) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	run := func(ctx context.Context) error {
		output, err := verifyOnce(jsonOutput)
		if err != nil {
			// Keep watching through transient load errors (partial writes)
			logger.Warnw("Verification pass failed", "error", err)
			return nil
		}
		if output.Summary.ViolatedClauses > 0 {
			logger.Warnw("Violations present",
				"violated", output.Summary.ViolatedClauses)
		}
		return nil
	}

	engine, err := watcher.NewEngine(
		[]string{verifyDomainPath, verifyTracesPath},
		run,
		watcher.Options{
			Debounce:      time.Duration(cfg.Watch.DebounceMs) * time.Millisecond,
			RatePerSecond: cfg.Watch.RatePerSecond,
		},
		logger.Named("watch"),
	)
	if err != nil {
		return err
	}

	// Initial pass before waiting for changes
	run(context.Background())

	if err := engine.Start(); err != nil {
		return err
	}
	defer engine.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	return nil
}

// renderOutput prints the human-readable verdict table and summary
func renderOutput(output *verify.Output) {
	rows := pterm.TableData{{"Clause", "Behavior", "Outcome", "Status", "Result"}}
	for _, ev := range output.Evidence {
		rows = append(rows, []string{
			ev.ClauseID,
			ev.Behavior,
			ev.Outcome,
			colorStatus(ev.Status),
			ev.TriStateResult.String(),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(rows).Render()

	s := output.Summary
	fmt.Println()
	fmt.Printf("%s %d proven, %d violated, %d not proven, %d skipped (%d clauses, %d%% coverage)\n",
		summaryGlyph(s), s.ProvenClauses, s.ViolatedClauses, s.NotProvenClauses,
		s.SkippedClauses, s.TotalClauses, s.CoveragePercent)

	for _, ev := range output.Evidence {
		if ev.Status == verify.StatusViolated {
			fmt.Printf("  %s %s: %s\n", pterm.Red("✗"), ev.ClauseID, ev.Expression)
			if ev.TraceSlice != nil && ev.TraceSlice.DecidingTraceID != "" {
				fmt.Printf("    deciding trace: %s\n", ev.TraceSlice.DecidingTraceID)
			}
		}
	}
}

func colorStatus(status verify.ClauseStatus) string {
	switch status {
	case verify.StatusProven:
		return pterm.Green(string(status))
	case verify.StatusViolated:
		return pterm.Red(string(status))
	case verify.StatusNotProven:
		return pterm.Yellow(string(status))
	default:
		return pterm.Gray(string(status))
	}
}

func summaryGlyph(s verify.Summary) string {
	if s.ViolatedClauses > 0 {
		return pterm.Red("✗")
	}
	if s.NotProvenClauses > 0 {
		return pterm.Yellow("~")
	}
	return pterm.Green("✓")
}
