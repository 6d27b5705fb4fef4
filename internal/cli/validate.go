package cli

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"
	"github.com/spf13/cobra"

	"github.com/roach88/vanilla/internal/clause"
	"github.com/roach88/vanilla/internal/compiler"
	"github.com/roach88/vanilla/internal/query"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
	Warnings []string                   `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [specs-dir]",
		Short: "Validate CUE definitions",
		Long: `Validate the post type, taxonomy and query definitions in a specs
directory (default: the configured specs_dir).

Reports compile errors, schema violations and references to undeclared
post types or taxonomies. Clause lint warnings are listed but don't fail
validation.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			specsDir := rootOpts.Config.SpecsDir
			if len(args) == 1 {
				specsDir = args[0]
			}
			return runValidate(rootOpts, specsDir, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, specsDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	loadResult, loadErrors := LoadSpecs(specsDir, LoadModeCollectAll)

	// Handle load errors (directory not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputValidateError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return outputValidateError(formatter, ErrCodeGeneric, loadErrors[0].Error(), nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)

	validationErrors := loadValidationErrors(loadErrors)
	defErrors, warnings := validateAll(loadResult.Specs, formatter)
	validationErrors = append(validationErrors, defErrors...)

	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, validationErrors, warnings)
	}

	return outputValidateSuccess(formatter, warnings)
}

// validateAll runs schema validation on every compiled definition,
// cross-reference validation across them, and lints the clauses each
// query builds.
func validateAll(set *compiler.SpecSet, formatter *OutputFormatter) ([]compiler.ValidationError, []string) {
	var allErrors []compiler.ValidationError
	var warnings []string

	for i := range set.PostTypes {
		formatter.VerboseLog("Validating post type: %s", set.PostTypes[i].Name)
		allErrors = append(allErrors, inDefinition("post_type."+set.PostTypes[i].Name, compiler.Validate(&set.PostTypes[i]))...)
	}
	for i := range set.Taxonomies {
		formatter.VerboseLog("Validating taxonomy: %s", set.Taxonomies[i].Name)
		allErrors = append(allErrors, inDefinition("taxonomy."+set.Taxonomies[i].Name, compiler.Validate(&set.Taxonomies[i]))...)
	}
	for i := range set.Queries {
		def := set.Queries[i]
		formatter.VerboseLog("Validating query: %s", def.Name)

		errs := inDefinition("query."+def.Name, compiler.Validate(&def))
		allErrors = append(allErrors, errs...)
		if len(errs) > 0 {
			continue
		}

		b, err := query.FromDef(def, query.WithTokens(clause.NewSequenceTokens()))
		if err != nil {
			allErrors = append(allErrors, compiler.ValidationError{
				Field:   "query." + def.Name,
				Message: err.Error(),
				Code:    ErrCodeQueryFailed,
			})
			continue
		}
		for _, w := range lintArgs(b.BuildArgs(query.Request{})) {
			warnings = append(warnings, fmt.Sprintf("query.%s: %s", def.Name, w))
		}
	}

	allErrors = append(allErrors, compiler.ValidateRefs(set.PostTypes, set.Taxonomies, set.Queries)...)
	return allErrors, warnings
}

// inDefinition prefixes each error's field with the definition path, the
// way compile errors carry it.
func inDefinition(path string, errs []compiler.ValidationError) []compiler.ValidationError {
	for i := range errs {
		errs[i].Field = path + ": " + errs[i].Field
	}
	return errs
}

// getLineFromCuePos extracts line number from a token.Pos.
func getLineFromCuePos(pos token.Pos) int {
	if pos.IsValid() {
		return pos.Line()
	}
	return 0
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, warnings []string) error {
	if formatter.Format == "json" {
		result := ValidationResult{Valid: true, Warnings: warnings}
		return formatter.Success(result)
	}

	printWarnings(formatter, warnings)
	fmt.Fprintln(formatter.Writer, "✓ All specs valid")
	return nil
}

// outputValidateError outputs a single validation error.
func outputValidateError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	// Validation errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError, warnings []string) error {
	message := fmt.Sprintf("validation failed with %d error(s)", len(errs))
	if formatter.Format == "json" {
		result := ValidationResult{Valid: false, Errors: errs, Warnings: warnings}
		if err := formatter.Failure(errs[0].Code, errs[0].Message, result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, message)
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}
	printWarnings(formatter, warnings)
	return NewExitError(ExitFailure, message)
}

func printWarnings(formatter *OutputFormatter, warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(formatter.Writer, "⚠ %s\n", w)
	}
}

// ValidateSpecsDir validates all specs in a directory.
// This is a helper function for external callers.
func ValidateSpecsDir(specsDir string) ([]compiler.ValidationError, error) {
	loadResult, loadErrors := LoadSpecs(specsDir, LoadModeCollectAll)
	if loadResult == nil {
		return nil, loadErrors[0]
	}

	errs := loadValidationErrors(loadErrors)
	defErrs, _ := validateAll(loadResult.Specs, &OutputFormatter{Format: "text"})
	return append(errs, defErrs...), nil
}

// loadValidationErrors converts compile errors from LoadSpecs.
func loadValidationErrors(loadErrors []error) []compiler.ValidationError {
	var errs []compiler.ValidationError
	for _, err := range loadErrors {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			errs = append(errs, compiler.ValidationError{
				Field:   "specs",
				Message: loadErr.Message,
				Code:    loadErr.Code,
				Line:    getLineFromCuePos(loadErr.Pos),
			})
			continue
		}
		errs = append(errs, compiler.ValidationError{Field: "specs", Message: err.Error(), Code: ErrCodeGeneric})
	}
	return errs
}
