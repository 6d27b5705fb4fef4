package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/vanilla/internal/clause"
	"github.com/roach88/vanilla/internal/config"
	"github.com/roach88/vanilla/internal/ir"
	"github.com/roach88/vanilla/internal/query"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string

	// Config is resolved before any subcommand runs.
	Config *config.Config
	Logger *slog.Logger
}

// NewRootCommand creates the root command for the vanilla CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "vanilla",
		Short: "Vanilla - WordPress query builder",
		Long: `Build WP_Query arguments from declarative CUE definitions and run them
against a local WordPress-shaped SQLite store.

Configuration is read from vanilla.yaml, VANILLA_* environment variables
and flags, in increasing priority.`,
		Version:       ir.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.ConfigFile, cmd.Flags())
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid configuration", err)
			}
			opts.Config = cfg
			opts.Verbose = cfg.Verbose
			opts.Format = cfg.Format
			opts.Logger = newLogger(cmd.ErrOrStderr(), cfg.Verbose)
			slog.SetDefault(opts.Logger)

			if cfg.File != "" {
				opts.Logger.Debug("config loaded", "file", cfg.File)
			}
			return nil
		},
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", config.DefaultFormat, "output format (json|text)")
	flags.StringVar(&opts.ConfigFile, "config", "", "config file (default: vanilla.yaml in the working directory)")
	flags.String("specs", config.DefaultSpecsDir, "directory of CUE definitions")
	flags.String("db", config.DefaultDatabase, "path to SQLite database")
	flags.String("site-url", "", "base URL for pagination links")
	flags.Int64("per-page", config.DefaultPostsPerPage, "default posts per page")

	// Add subcommands
	cmd.AddCommand(NewBuildCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewRunsCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// newLogger writes text logs to w, at Debug level when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	}))
}

// formatter returns an OutputFormatter for cmd's writers.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// builderOptions applies the configured site URL and page size.
// Fixed tokens make meta key suffixes reproducible across runs.
func (o *RootOptions) builderOptions(fixedTokens bool) []query.Option {
	opts := []query.Option{
		query.WithSiteURL(o.Config.SiteURL),
		query.WithDefaultPerPage(o.Config.PostsPerPage),
	}
	if fixedTokens {
		opts = append(opts, query.WithTokens(clause.NewSequenceTokens()))
	}
	return opts
}
