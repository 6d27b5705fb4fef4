package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/vanilla/internal/query"
	"github.com/roach88/vanilla/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	PostType    string
	Request     string
	Paginate    bool
	FixedTokens bool
}

// RunResult is one executed page of a query.
type RunResult struct {
	Query       string       `json:"query"`
	ArgsID      string       `json:"args_id"`
	Found       int64        `json:"found"`
	Pages       int64        `json:"pages"`
	CurrentPage int64        `json:"current_page"`
	NextURL     string       `json:"next_url,omitempty"`
	PreviousURL string       `json:"previous_url,omitempty"`
	Posts       []query.Post `json:"posts"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run [query]",
		Short: "Execute a query against the store",
		Long: `Build a query from the CUE definitions, execute it against the SQLite
store and print the resulting page.

Without --paginate the query's own paging applies; a query that sets no
page size returns every match. With --paginate the configured
posts_per_page is used when the query sets none.

Every execution is recorded in the store's query runs.

Examples:
  vanilla run recent_books
  vanilla run recent_books --request "/books/?page_num=2" --paginate
  vanilla run --post-type book --db ./site.db --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.PostType, "post-type", "", "run an empty query for a post type")
	cmd.Flags().StringVar(&opts.Request, "request", "/", "request URI the query reads page_num from")
	cmd.Flags().BoolVar(&opts.Paginate, "paginate", false, "paginate with the default page size")
	cmd.Flags().BoolVar(&opts.FixedTokens, "fixed-tokens", false, "use reproducible meta key suffixes")

	return cmd
}

func runQuery(opts *RunOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	name, err := queryName(args, opts.PostType)
	if err != nil {
		return outputCommandError(formatter, ErrCodeGeneric, err.Error())
	}

	reg, err := LoadRegistry(opts.Config.SpecsDir, opts.builderOptions(opts.FixedTokens)...)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	b, err := selectBuilder(reg, name, opts.PostType)
	if err != nil {
		return outputCommandError(formatter, ErrCodeQueryFailed, err.Error())
	}

	req, err := query.NewRequest(opts.Request)
	if err != nil {
		return outputCommandError(formatter, ErrCodeGeneric, err.Error())
	}

	st, err := openStore(opts.RootOptions)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer closeStore(st, opts.Logger)

	ctx := cmd.Context()
	var page *query.Paginator
	if opts.Paginate {
		page, err = b.Paginate(ctx, st, req, 0)
	} else {
		page, err = b.Paginator(ctx, st, req)
	}
	if err != nil {
		return outputCommandError(formatter, ErrCodeQueryFailed, err.Error())
	}

	argsID, err := query.ArgsID(page.Args())
	if err != nil {
		return outputCommandError(formatter, ErrCodeQueryFailed, err.Error())
	}

	result := RunResult{
		Query:       queryLabel(name, opts.PostType),
		ArgsID:      argsID,
		Found:       page.Found(),
		Pages:       page.Pages(),
		CurrentPage: page.CurrentPage(),
		Posts:       page.Items(),
	}
	if result.Posts == nil {
		result.Posts = []query.Post{}
	}
	result.NextURL, _ = page.NextPageURL()
	result.PreviousURL, _ = page.PreviousPageURL()

	opts.Logger.Info("query executed",
		"query", result.Query,
		"args_id", argsID,
		"found", result.Found,
		"page", result.CurrentPage,
	)

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return outputRunText(cmd, result)
}

// outputRunText prints one line per post and a paging footer.
func outputRunText(cmd *cobra.Command, result RunResult) error {
	w := cmd.OutOrStdout()

	for _, p := range result.Posts {
		fmt.Fprintf(w, "%6d  %-30s  %s\n", p.ID, p.Name, p.Title)
	}
	if len(result.Posts) > 0 {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Page %d of %d (%d found)\n", result.CurrentPage, result.Pages, result.Found)
	if result.PreviousURL != "" {
		fmt.Fprintf(w, "  previous: %s\n", result.PreviousURL)
	}
	if result.NextURL != "" {
		fmt.Fprintf(w, "  next: %s\n", result.NextURL)
	}
	return nil
}

// openStore opens the configured database.
func openStore(opts *RootOptions) (*store.Store, error) {
	opts.Logger.Debug("opening database", "path", opts.Config.Database)
	return store.Open(opts.Config.Database, opts.Logger,
		store.WithDefaultPerPage(opts.Config.PostsPerPage),
	)
}

func closeStore(st *store.Store, logger *slog.Logger) {
	if err := st.Close(); err != nil {
		logger.Error("error closing database", "error", err)
	}
}
