package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/vanilla/internal/ir"
)

// Top-level sections of a spec value.
const (
	SectionPostType = "post_type"
	SectionTaxonomy = "taxonomy"
	SectionQuery    = "query"
)

// SpecSet holds every definition compiled from one CUE value, each kind
// in declaration order.
type SpecSet struct {
	PostTypes  []ir.PostTypeDef
	Taxonomies []ir.TaxonomyDef
	Queries    []ir.QueryDef
}

// Empty reports whether no definitions were found.
func (s *SpecSet) Empty() bool {
	return len(s.PostTypes) == 0 && len(s.Taxonomies) == 0 && len(s.Queries) == 0
}

// CompileSpecs compiles the post_type, taxonomy and query sections of v.
// With failFast set it stops at the first error; otherwise it compiles
// everything it can and returns all errors.
func CompileSpecs(v cue.Value, failFast bool) (*SpecSet, []error) {
	set := &SpecSet{}
	var errs []error

	// CUE errors come first. Fail-fast stops at the first one; otherwise
	// every one is reported and the definitions holding one are skipped.
	cueErr := v.Validate()
	broken := map[string]bool{}
	if cueErr != nil {
		specErrs := specErrors(cueErr)
		if len(specErrs) == 0 {
			return set, []error{cueErr}
		}
		whole := false
		seen := map[string]bool{}
		for _, se := range specErrs {
			if key := se.Error(); !seen[key] {
				seen[key] = true
				errs = append(errs, &se.CompileError)
			}
			if failFast {
				return set, errs
			}
			if se.def == "" {
				whole = true
			}
			broken[se.def] = true
		}
		if whole {
			return set, errs
		}
	}

	sections := []struct {
		name    string
		compile func(cue.Value) error
	}{
		{SectionPostType, func(f cue.Value) error {
			def, err := CompilePostType(f)
			if err == nil {
				set.PostTypes = append(set.PostTypes, *def)
			}
			return err
		}},
		{SectionTaxonomy, func(f cue.Value) error {
			def, err := CompileTaxonomy(f)
			if err == nil {
				set.Taxonomies = append(set.Taxonomies, *def)
			}
			return err
		}},
		{SectionQuery, func(f cue.Value) error {
			def, err := CompileQuery(f)
			if err == nil {
				set.Queries = append(set.Queries, *def)
			}
			return err
		}},
	}

	for _, section := range sections {
		sv, ok := lookup(v, section.name)
		if !ok {
			continue
		}
		iter, err := sv.Fields()
		if err != nil {
			errs = append(errs, &CompileError{Field: section.name, Message: "must be a struct", Pos: sv.Pos()})
			if failFast {
				return set, errs
			}
			continue
		}
		for iter.Next() {
			path := section.name + "." + iter.Selector().Unquoted()
			if broken[path] {
				continue
			}
			if err := section.compile(iter.Value()); err != nil {
				errs = append(errs, withContext(err, path))
				if failFast {
					return set, errs
				}
			}
		}
	}

	return set, errs
}

// withContext prefixes the definition path onto a CompileError's field.
func withContext(err error, path string) error {
	if ce, ok := err.(*CompileError); ok {
		return &CompileError{Field: path + ": " + ce.Field, Message: ce.Message, Pos: ce.Pos}
	}
	return fmt.Errorf("%s: %w", path, err)
}
