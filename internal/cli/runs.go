package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/vanilla/internal/ir"
	"github.com/roach88/vanilla/internal/store"
)

// RunsResult lists recorded query runs.
type RunsResult struct {
	Runs  []store.QueryRun `json:"runs"`
	Total int              `json:"total"`
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs [args-id]",
		Short: "List recorded query runs",
		Long: `List the argument objects the store has executed, one entry per distinct
args ID, in the order they were last run.

With an args ID, show that run including its full argument object.

Examples:
  vanilla runs
  vanilla runs --verbose
  vanilla runs 3f1c0e...  --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runShowRun(rootOpts, args[0], cmd)
			}
			return runListRuns(rootOpts, cmd)
		},
	}

	return cmd
}

func runListRuns(opts *RootOptions, cmd *cobra.Command) error {
	st, err := openStore(opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer closeStore(st, opts.Logger)

	runs, err := st.Runs(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read query runs", err)
	}

	result := RunsResult{Runs: runs, Total: len(runs)}
	if opts.Format == "json" {
		return opts.formatter(cmd).Success(result)
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No query runs recorded.")
		return nil
	}

	fmt.Fprintf(w, "Query runs: %d\n\n", result.Total)
	for _, run := range runs {
		formatRun(w, run, opts.Verbose)
	}
	return nil
}

func runShowRun(opts *RootOptions, argsID string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := openStore(opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer closeStore(st, opts.Logger)

	run, err := st.Run(cmd.Context(), argsID)
	if errors.Is(err, sql.ErrNoRows) {
		return outputCommandError(formatter, ErrCodeNotFound, fmt.Sprintf("no run recorded for args ID %s", argsID))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read query run", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(run)
	}

	w := cmd.OutOrStdout()
	formatRun(w, run, false)
	data, err := ir.MarshalIndent(run.Args)
	if err != nil {
		return err
	}
	fmt.Fprint(w, string(data))
	return nil
}

// formatRun formats a single run for text output.
func formatRun(w io.Writer, run store.QueryRun, verbose bool) {
	fmt.Fprintf(w, "  [%d] %s  hits=%d found=%d\n", run.LastSeq, truncateID(run.ArgsID), run.Hits, run.LastFound)
	if verbose {
		fmt.Fprintf(w, "       ID: %s\n", run.ArgsID)
		if data, err := ir.Marshal(run.Args); err == nil {
			fmt.Fprintf(w, "       Args: %s\n", data)
		}
	}
}

// truncateID truncates a long ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}
