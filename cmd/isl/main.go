package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/intentlang/isl/cmd/isl/commands"
	"github.com/intentlang/isl/logger"
)

var rootCmd = &cobra.Command{
	Use:   "isl",
	Short: "ISL - Postcondition verification for intent specifications",
	Long: `ISL - Verify recorded execution traces against intent specifications.

The verifier loads a compiled domain declaration, extracts its postcondition
clauses, and checks each one against execution traces using three-valued
logic: a clause is proven, violated, or not proven. Missing data never
counts as a violation.

Available commands:
  verify - Verify execution traces against a domain's postconditions
  traces - Inspect and import recorded execution traces
  version - Show version information

Examples:
  isl verify --domain banking.json --traces ./traces    # One-shot verification
  isl verify --domain banking.json --traces ./traces --watch
  isl traces import ./traces                            # Persist traces to the database
  isl traces ls                                         # List stored traces`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonOutput, _ := cmd.Flags().GetBool("json")
		if err := logger.Initialize(jsonOutput, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().Bool("json", false, "Emit machine-readable JSON output")

	rootCmd.AddCommand(commands.VerifyCmd)
	rootCmd.AddCommand(commands.TracesCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
