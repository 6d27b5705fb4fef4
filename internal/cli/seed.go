package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// SeedResult reports what a fixture file added to the store.
type SeedResult struct {
	Database string `json:"database"`
	Fixtures string `json:"fixtures"`
	Users    int    `json:"users"`
	Posts    int    `json:"posts"`
	Meta     int    `json:"meta"`
	Terms    int    `json:"terms"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <fixtures.yaml>",
		Short: "Load fixture content into the store",
		Long: `Insert the users, posts, post meta and terms of a YAML fixture file into
the SQLite store, creating the database if it doesn't exist.

The whole file is applied in one transaction.

Examples:
  vanilla seed ./fixtures/books.yaml
  vanilla seed ./fixtures/books.yaml --db ./site.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runSeed(opts *RootOptions, fixturesPath string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	st, err := openStore(opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer closeStore(st, opts.Logger)

	stats, err := st.LoadFixtures(cmd.Context(), fixturesPath)
	if err != nil {
		return outputCommandError(formatter, ErrCodeWriteFailed, err.Error())
	}

	result := SeedResult{
		Database: opts.Config.Database,
		Fixtures: fixturesPath,
		Users:    stats.Users,
		Posts:    stats.Posts,
		Meta:     stats.Meta,
		Terms:    stats.Terms,
	}
	opts.Logger.Info("fixtures seeded",
		"fixtures", fixturesPath,
		"posts", stats.Posts,
		"meta", stats.Meta,
	)

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Seeded %s: %d user(s), %d post(s), %d meta, %d term(s)\n",
		result.Database, result.Users, result.Posts, result.Meta, result.Terms)
	return nil
}
