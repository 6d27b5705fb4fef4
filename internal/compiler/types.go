package compiler

import (
	"strings"

	"cuelang.org/go/cue"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/vanilla/internal/ir"
)

var typeFields = map[string]bool{
	"singular": true, "plural": true, "slug": true,
	"per_page": true, "taxonomies": true,
}

var taxonomyFields = map[string]bool{
	"singular": true, "plural": true, "slug": true,
	"post_types": true,
}

var titleCaser = cases.Title(language.English)

// CompilePostType parses a CUE value into a PostTypeDef. The type name
// is the struct label; display names default from it:
//
//	book_review → singular "Book Review", plural "Book Reviews", slug "book-reviews"
func CompilePostType(v cue.Value) (*ir.PostTypeDef, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := checkFields(v, "post_type", typeFields); err != nil {
		return nil, err
	}

	def := &ir.PostTypeDef{Name: label(v)}
	var err error
	if def.Singular, def.Plural, def.Slug, err = names(v, def.Name); err != nil {
		return nil, err
	}

	perPage, err := optionalInt(v, "per_page")
	if err != nil {
		return nil, err
	}
	if perPage != nil {
		def.PerPage = *perPage
	}

	if def.Taxonomies, err = optionalStrings(v, "taxonomies"); err != nil {
		return nil, err
	}
	return def, nil
}

// CompileTaxonomy parses a CUE value into a TaxonomyDef, with display
// names defaulted as for post types.
func CompileTaxonomy(v cue.Value) (*ir.TaxonomyDef, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := checkFields(v, "taxonomy", taxonomyFields); err != nil {
		return nil, err
	}

	def := &ir.TaxonomyDef{Name: label(v)}
	var err error
	if def.Singular, def.Plural, def.Slug, err = names(v, def.Name); err != nil {
		return nil, err
	}
	if def.PostTypes, err = optionalStrings(v, "post_types"); err != nil {
		return nil, err
	}
	return def, nil
}

func names(v cue.Value, name string) (singular, plural, slug string, err error) {
	if singular, err = optionalString(v, "singular"); err != nil {
		return "", "", "", err
	}
	if plural, err = optionalString(v, "plural"); err != nil {
		return "", "", "", err
	}
	if slug, err = optionalString(v, "slug"); err != nil {
		return "", "", "", err
	}

	if singular == "" {
		singular = DisplayName(name)
	}
	if plural == "" {
		plural = singular + "s"
	}
	if slug == "" {
		slug = ir.Slug(plural)
	}
	return singular, plural, slug, nil
}

// DisplayName title-cases a type name, treating "_" and "-" as spaces.
func DisplayName(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	return titleCaser.String(strings.Join(words, " "))
}
