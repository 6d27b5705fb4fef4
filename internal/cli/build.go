package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/vanilla/internal/clause"
	"github.com/roach88/vanilla/internal/ir"
	"github.com/roach88/vanilla/internal/query"
	"github.com/roach88/vanilla/internal/registry"
)

// BuildOptions holds flags for the build command.
type BuildOptions struct {
	*RootOptions
	PostType    string
	Request     string
	FixedTokens bool
}

// BuildResult is the built argument object for one query.
type BuildResult struct {
	Query    string     `json:"query"`
	ArgsID   string     `json:"args_id"`
	Args     *ir.Object `json:"args"`
	Warnings []string   `json:"warnings,omitempty"`
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "build [query]",
		Short: "Print the WP_Query arguments a query builds",
		Long: `Compile the CUE definitions and print the argument object built for a
named query, or for an empty query on a post type with --post-type.

Clause lint warnings are reported alongside the arguments; they never
fail the command.

Examples:
  vanilla build recent_books
  vanilla build recent_books --request "/books/?page_num=2"
  vanilla build --post-type book --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.PostType, "post-type", "", "build an empty query for a post type")
	cmd.Flags().StringVar(&opts.Request, "request", "/", "request URI the query reads page_num from")
	cmd.Flags().BoolVar(&opts.FixedTokens, "fixed-tokens", false, "use reproducible meta key suffixes")

	return cmd
}

func runBuild(opts *BuildOptions, args []string, cmd *cobra.Command) error {
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

	built := b.BuildArgs(req)
	argsID, err := query.ArgsID(built)
	if err != nil {
		return outputCommandError(formatter, ErrCodeQueryFailed, err.Error())
	}

	result := BuildResult{
		Query:    queryLabel(name, opts.PostType),
		ArgsID:   argsID,
		Args:     built,
		Warnings: lintArgs(built),
	}
	opts.Logger.Debug("query built", "query", result.Query, "args_id", argsID)

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	data, err := ir.MarshalIndent(built)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprint(w, string(data))
	for _, warning := range result.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", warning)
	}
	return nil
}

// queryName checks that exactly one of a query name or post type was given.
func queryName(args []string, postType string) (string, error) {
	switch {
	case len(args) == 1 && postType != "":
		return "", errors.New("give a query name or --post-type, not both")
	case len(args) == 1:
		return args[0], nil
	case postType != "":
		return "", nil
	default:
		return "", errors.New("a query name or --post-type is required")
	}
}

// selectBuilder returns a fresh Builder for the named query, or for
// postType when name is empty.
func selectBuilder(reg *registry.Registry, name, postType string) (*query.Builder, error) {
	if name != "" {
		return reg.Query(name)
	}
	return reg.NewQuery(postType)
}

func queryLabel(name, postType string) string {
	if name != "" {
		return name
	}
	return "post_type:" + postType
}

// lintArgs lints the meta_query and tax_query of built args.
func lintArgs(args *ir.Object) []string {
	var warnings []string
	groups := []struct {
		key  string
		kind clause.Kind
	}{
		{"meta_query", clause.KindMeta},
		{"tax_query", clause.KindTax},
	}
	for _, g := range groups {
		v, ok := args.Get(g.key)
		if !ok {
			continue
		}
		obj, ok := v.(*ir.Object)
		if !ok {
			continue
		}
		warnings = append(warnings, clause.Lint(g.kind, obj).Warnings...)
	}
	return warnings
}

// outputCommandError reports a command error (exit code 2).
func outputCommandError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputLoadError reports a spec loading error with its LoadError code.
func outputLoadError(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		message := loadErr.Message
		if loadErr.Pos.IsValid() {
			message = fmt.Sprintf("%s:%d: %s", loadErr.Pos.Filename(), loadErr.Pos.Line(), message)
		}
		return outputCommandError(formatter, loadErr.Code, message)
	}
	return outputCommandError(formatter, ErrCodeGeneric, err.Error())
}
