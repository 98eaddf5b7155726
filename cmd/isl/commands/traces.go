package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/intentlang/isl/config"
	"github.com/intentlang/isl/db"
	"github.com/intentlang/isl/errors"
	"github.com/intentlang/isl/isl/loader"
	"github.com/intentlang/isl/isl/storage"
	"github.com/intentlang/isl/logger"
)

// TracesCmd groups trace inspection operations
var TracesCmd = &cobra.Command{
	Use:   "traces",
	Short: "Inspect and import recorded execution traces",
	Long: `Inspect and import recorded execution traces.

Trace management commands:
  isl traces import <path>   # Load trace files into the database
  isl traces ls              # List stored traces
  isl traces show <id>       # Show one trace's events

Examples:
  isl traces import ./traces
  isl traces ls --behavior Withdraw
  isl traces show trace_1700000000000_abc`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// TracesImportCmd loads trace files into the database
var TracesImportCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Import trace files into the database",
	Long: `Load execution traces from a JSON file or a directory of JSON files
and persist them to the configured database. Re-importing a trace with
the same ID replaces it.

Example:
  isl traces import ./traces`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runTracesImport(args[0])
	},
}

// TracesLsCmd lists stored traces
var TracesLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored execution traces",
	Long: `List execution traces stored in the database, optionally filtered
by behavior.

Examples:
  isl traces ls
  isl traces ls --behavior Withdraw`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		behavior, _ := cmd.Flags().GetString("behavior")
		return runTracesLs(behavior)
	},
}

// TracesShowCmd shows one trace's events
var TracesShowCmd = &cobra.Command{
	Use:   "show <trace-id>",
	Short: "Show a stored trace's events",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runTracesShow(args[0])
	},
}

func init() {
	TracesLsCmd.Flags().String("behavior", "", "Filter traces by behavior name")

	TracesCmd.AddCommand(TracesImportCmd)
	TracesCmd.AddCommand(TracesLsCmd)
	TracesCmd.AddCommand(TracesShowCmd)
}

// openStore opens the configured database and a store over it
func openStore() (*storage.TraceStore, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load config")
	}
	database, err := db.Open(cfg.Database.Path, logger.Logger)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to open database")
	}
	store := storage.NewTraceStore(database, logger.Logger)
	if err := store.InitSchema(); err != nil {
		database.Close()
		return nil, nil, err
	}
	return store, func() { database.Close() }, nil
}

func runTracesImport(path string) error {
	traces, err := loader.LoadTraces(path)
	if err != nil {
		return err
	}

	store, closeDB, err := openStore()
	if err != nil {
		return err
	}
	defer closeDB()

	for _, tr := range traces {
		if err := store.SaveTrace(tr); err != nil {
			return err
		}
	}
	fmt.Printf("Imported %d trace(s)\n", len(traces))
	return nil
}

func runTracesLs(behavior string) error {
	store, closeDB, err := openStore()
	if err != nil {
		return err
	}
	defer closeDB()

	traces, err := store.ListTraces(behavior)
	if err != nil {
		return err
	}
	if len(traces) == 0 {
		fmt.Println("No traces stored")
		return nil
	}

	rows := pterm.TableData{{"ID", "Behavior", "Events", "Started"}}
	for _, tr := range traces {
		started := ""
		if tr.StartTime > 0 {
			started = time.UnixMilli(tr.StartTime).UTC().Format(time.RFC3339)
		}
		rows = append(rows, []string{
			tr.ID,
			tr.Behavior,
			fmt.Sprintf("%d", len(tr.Events)),
			started,
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	return nil
}

func runTracesShow(id string) error {
	store, closeDB, err := openStore()
	if err != nil {
		return err
	}
	defer closeDB()

	tr, err := store.GetTrace(id)
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(tr, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode trace")
	}
	fmt.Println(string(encoded))
	return nil
}
