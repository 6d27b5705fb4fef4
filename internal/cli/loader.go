package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/vanilla/internal/compiler"
	"github.com/roach88/vanilla/internal/query"
	"github.com/roach88/vanilla/internal/registry"
)

// LoadMode selects how compile errors are reported.
type LoadMode int

const (
	// LoadModeFailFast stops at the first definition that fails to compile.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll compiles every definition and reports all errors.
	LoadModeCollectAll
)

// LoadResult is a compiled specs directory.
type LoadResult struct {
	Specs     *compiler.SpecSet
	CUEValue  cue.Value
	FileCount int
}

// LoadError is a specs loading error with a CLI error code.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // zero when the error has no source position
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func loadErr(code, format string, args ...any) []error {
	return []error{&LoadError{Code: code, Message: fmt.Sprintf(format, args...)}}
}

// LoadSpecs loads the CUE package in dir and compiles its post types,
// taxonomies and queries.
//
// A nil result means the directory could not be loaded at all. Otherwise
// the result holds every definition that compiled and errs the ones that
// didn't.
func LoadSpecs(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		return nil, loadErr(ErrCodeNotFound, "specs directory not found: %s", dir)
	case err != nil:
		return nil, loadErr(ErrCodeNotFound, "error accessing specs directory: %v", err)
	case !info.IsDir():
		return nil, loadErr(ErrCodeNotFound, "not a directory: %s", dir)
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, loadErr(ErrCodeScanError, "error scanning directory: %v", err)
	}
	if len(cueFiles) == 0 {
		return nil, loadErr(ErrCodeNoFiles, "no CUE files found in %s", dir)
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, loadErr(ErrCodeLoadFailed, "no CUE instances loaded")
	}
	if err := instances[0].Err; err != nil {
		return nil, loadErr(ErrCodeLoadFailed, "loading CUE files: %v", err)
	}

	value := cuecontext.New().BuildInstance(instances[0])
	if err := value.Err(); err != nil {
		return nil, loadErr(ErrCodeBuildFailed, "building CUE value: %v", err)
	}

	set, compileErrs := compiler.CompileSpecs(value, mode == LoadModeFailFast)
	errs := make([]error, 0, len(compileErrs))
	for _, err := range compileErrs {
		errs = append(errs, convertCompileError(err))
	}
	if set.Empty() && len(errs) == 0 {
		errs = loadErr(ErrCodeGeneric, "no post types, taxonomies or queries found in specs")
	}

	return &LoadResult{Specs: set, CUEValue: value, FileCount: len(cueFiles)}, errs
}

// LoadRegistry loads specs fail-fast and registers every definition.
// Cross-reference problems are returned as the first LoadError.
func LoadRegistry(dir string, opts ...query.Option) (*registry.Registry, error) {
	result, errs := LoadSpecs(dir, LoadModeFailFast)
	if len(errs) > 0 {
		return nil, errs[0]
	}

	reg, err := registry.FromSpecs(result.Specs, opts...)
	if err != nil {
		return nil, &LoadError{Code: compiler.ErrDuplicateName, Message: err.Error()}
	}
	if verrs := reg.Validate(); len(verrs) > 0 {
		return nil, &LoadError{Code: verrs[0].Code, Message: verrs[0].Field + ": " + verrs[0].Message}
	}
	return reg, nil
}

// FindCUEFiles returns the .cue files under dir.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: compileErr.Field + ": " + compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: err.Error(),
	}
}

// Error code constants - unified across all CLI commands.
// Definition errors reuse the compiler's E1xx codes.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // Store write error
	ErrCodeQueryFailed = "E008" // Query build or execution failed
)

// MapFieldToErrorCode maps a compiler error field to an error code.
// Fields carry their definition path, as in "query.recent: meta[0].relation";
// only the last segment decides the code.
func MapFieldToErrorCode(field string) string {
	if i := strings.LastIndex(field, ": "); i >= 0 {
		field = field[i+2:]
	}
	if i := strings.LastIndex(field, "."); i >= 0 {
		field = field[i+1:]
	}
	if i := strings.Index(field, "["); i >= 0 {
		field = field[:i]
	}

	switch field {
	case "cue":
		return ErrCodeBuildFailed
	case "name":
		return compiler.ErrQueryNameEmpty
	case "order":
		return compiler.ErrInvalidOrder
	case "per_page", "page", "offset":
		return compiler.ErrInvalidPaging
	case "relation":
		return compiler.ErrInvalidRelation
	case "raw", "group":
		return compiler.ErrClauseNoTarget
	case "order_by":
		return compiler.ErrInvalidOrderBy
	default:
		return ErrCodeGeneric
	}
}
