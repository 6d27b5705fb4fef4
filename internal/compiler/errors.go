package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileError is a definition error. Field names the offending field
// relative to its definition, or carries the definition path prefix
// ("query.recent: order") once the error leaves CompileSpecs.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError converts the first CUE error in err. Inside a definition
// the field is the path below the definition, so a conflict on
// query.a.order reads "order" and maps to the order error code.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := cueErrors(err)
	if len(errs) == 0 {
		return err
	}
	ce := errs[0]
	if _, rest, ok := splitDefinition(ce.path); ok {
		ce.Field = rest
	}
	return &ce.CompileError
}

// specErrors converts every CUE error in err, each keyed by the
// definition it falls in ("query.a"), or "" outside any definition.
func specErrors(err error) []specError {
	errs := cueErrors(err)
	for i := range errs {
		def, rest, _ := splitDefinition(errs[i].path)
		errs[i].def = def
		if def != "" {
			errs[i].Field = def + ": " + rest
		}
	}
	return errs
}

type specError struct {
	CompileError
	path []string
	def  string
}

// cueErrors flattens err into one entry per CUE error, positioned at the
// first source location CUE reports for it.
func cueErrors(err error) []specError {
	var out []specError
	for _, e := range errors.Errors(err) {
		format, args := e.Msg()
		se := specError{
			CompileError: CompileError{Field: "cue", Message: fmt.Sprintf(format, args...)},
			path:         e.Path(),
		}
		if len(se.path) > 0 {
			se.Field = fieldPath(se.path)
		}
		if positions := errors.Positions(e); len(positions) > 0 {
			se.Pos = positions[0]
		}
		out = append(out, se)
	}
	return out
}

// splitDefinition splits a CUE path into its definition ("query.a") and
// the field below it ("meta[0].value"). A path that stops at the
// definition itself reports "cue" as the field.
func splitDefinition(path []string) (def, rest string, ok bool) {
	if len(path) < 2 {
		return "", "", false
	}
	switch path[0] {
	case SectionPostType, SectionTaxonomy, SectionQuery:
	default:
		return "", "", false
	}
	def = path[0] + "." + path[1]
	rest = "cue"
	if len(path) > 2 {
		rest = fieldPath(path[2:])
	}
	return def, rest, true
}

// fieldPath joins CUE path selectors the way compile errors name fields:
// list indexes in brackets, struct labels dotted.
func fieldPath(path []string) string {
	var b strings.Builder
	for _, sel := range path {
		if _, err := strconv.Atoi(sel); err == nil {
			b.WriteString("[" + sel + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(sel)
	}
	return b.String()
}
