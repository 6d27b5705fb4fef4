package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/vanilla/internal/ir"
	"github.com/roach88/vanilla/internal/store"
)

// ReplayRunResult holds the replay result for a single recorded run.
type ReplayRunResult struct {
	ArgsID     string `json:"args_id"`
	Recorded   int64  `json:"recorded_found"`
	Replayed   int64  `json:"replayed_found"`
	Consistent bool   `json:"consistent"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs          []ReplayRunResult `json:"runs"`
	TotalRuns     int               `json:"total_runs"`
	AllConsistent bool              `json:"all_consistent"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay [args-id]",
		Short: "Re-execute recorded runs and detect drift",
		Long: `Re-execute the argument objects recorded in the store's query runs and
compare each found_posts with the value recorded by its last run.

A difference means the content changed since the run was recorded, or
the arguments no longer compile the way they did. Replaying records the
runs again, so the next replay compares against today's counts.

Exit codes:
  0 - Every run found the same number of posts
  1 - At least one run drifted
  2 - Command error (database not found, unknown args ID, etc.)

Examples:
  vanilla replay
  vanilla replay 3f1c0e...
  vanilla replay --db ./site.db --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			argsID := ""
			if len(args) == 1 {
				argsID = args[0]
			}
			return runReplay(rootOpts, argsID, cmd)
		},
	}

	return cmd
}

func runReplay(opts *RootOptions, argsID string, cmd *cobra.Command) error {
	ctx := cmd.Context()

	st, err := openStore(opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer closeStore(st, opts.Logger)

	var runs []store.QueryRun
	if argsID != "" {
		run, err := st.Run(ctx, argsID)
		if errors.Is(err, sql.ErrNoRows) {
			return NewExitError(ExitCommandError, fmt.Sprintf("no run recorded for args ID %s", argsID))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read query run", err)
		}
		runs = []store.QueryRun{run}
	} else {
		runs, err = st.Runs(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read query runs", err)
		}
	}

	formatter := opts.formatter(cmd)
	if len(runs) == 0 {
		if opts.Format == "json" {
			return outputReplayJSON(formatter, ReplayResult{
				Runs:          []ReplayRunResult{},
				AllConsistent: true,
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No query runs recorded.")
		return nil
	}

	result := ReplayResult{
		Runs:          make([]ReplayRunResult, 0, len(runs)),
		TotalRuns:     len(runs),
		AllConsistent: true,
	}

	for _, run := range runs {
		runResult, err := replayRun(ctx, st, run)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", run.ArgsID), err)
		}
		opts.Logger.Debug("run replayed",
			"args_id", run.ArgsID,
			"recorded", runResult.Recorded,
			"replayed", runResult.Replayed,
		)

		result.Runs = append(result.Runs, runResult)
		if !runResult.Consistent {
			result.AllConsistent = false
		}
	}

	if opts.Format == "json" {
		return outputReplayJSON(formatter, result)
	}

	return outputReplayText(cmd, result, opts.Verbose)
}

// replayRun executes a recorded run's args again.
func replayRun(ctx context.Context, st *store.Store, run store.QueryRun) (ReplayRunResult, error) {
	args := run.Args
	if args == nil {
		args = ir.NewObject()
	}

	res, err := st.Execute(ctx, args)
	if err != nil {
		return ReplayRunResult{}, err
	}

	return ReplayRunResult{
		ArgsID:     run.ArgsID,
		Recorded:   run.LastFound,
		Replayed:   res.FoundPosts,
		Consistent: res.FoundPosts == run.LastFound,
	}, nil
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(formatter *OutputFormatter, result ReplayResult) error {
	if result.AllConsistent {
		return formatter.Success(result)
	}

	if err := formatter.Failure("E_DRIFT", "replayed runs found a different number of posts", result); err != nil {
		return err
	}
	return NewExitError(ExitFailure, "replay drift detected")
}

// outputReplayText outputs the replay result as text.
func outputReplayText(cmd *cobra.Command, result ReplayResult, verbose bool) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Replay Summary: %d run(s)\n", result.TotalRuns)
	fmt.Fprintln(w)

	for _, run := range result.Runs {
		status := "✓"
		if !run.Consistent {
			status = "✗"
		}

		id := truncateID(run.ArgsID)
		if verbose {
			id = run.ArgsID
		}
		fmt.Fprintf(w, "%s Run: %s\n", status, id)
		fmt.Fprintf(w, "  Found: %d recorded, %d replayed\n", run.Recorded, run.Replayed)
		fmt.Fprintln(w)
	}

	if result.AllConsistent {
		fmt.Fprintln(w, "✓ All runs consistent")
		return nil
	}

	fmt.Fprintln(w, "✗ Replay drift detected")
	return NewExitError(ExitFailure, "replay drift detected")
}
