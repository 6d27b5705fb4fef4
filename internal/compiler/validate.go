package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/vanilla/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedDefType = "E100" // unsupported definition type for validation

	// QueryDef errors (E101-E109)
	ErrQueryNameEmpty  = "E101" // name is required
	ErrInvalidOrder    = "E102" // order must be ASC or DESC
	ErrInvalidPaging   = "E103" // per_page, page or offset out of range
	ErrInvalidRelation = "E104" // relation must be AND or OR
	ErrClauseNoTarget  = "E105" // clause has no field, raw or group
	ErrInvalidOrderBy  = "E106" // order_by must be a string or a struct

	// PostTypeDef / TaxonomyDef errors (E110-E119)
	ErrInvalidTypeName     = "E110" // post type name format
	ErrInvalidTaxonomyName = "E111" // taxonomy name format

	// Cross-reference errors (E120-E129)
	ErrDuplicateName   = "E120" // duplicate definition name
	ErrUnknownPostType = "E121" // reference to an undeclared post type
	ErrUnknownTaxonomy = "E122" // reference to an undeclared taxonomy
)

// Built-in WordPress names that need no declaration.
var (
	builtinPostTypes  = map[string]bool{"post": true, "page": true, "attachment": true, "any": true}
	builtinTaxonomies = map[string]bool{"category": true, "post_tag": true, "post_format": true}
)

// WordPress limits post type keys to 20 characters and taxonomy keys
// to 32, lowercase alphanumerics, dashes and underscores.
var (
	postTypeNamePattern = regexp.MustCompile(`^[a-z0-9_-]{1,20}$`)
	taxonomyNamePattern = regexp.MustCompile(`^[a-z0-9_-]{1,32}$`)
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate validates a compiled definition against schema rules.
// Returns all errors found (does not fail-fast).
// Supports QueryDef, PostTypeDef and TaxonomyDef.
func Validate(v any) []ValidationError {
	switch def := v.(type) {
	case *ir.QueryDef:
		return validateQuery(def)
	case ir.QueryDef:
		return validateQuery(&def)
	case *ir.PostTypeDef:
		return validatePostType(def)
	case ir.PostTypeDef:
		return validatePostType(&def)
	case *ir.TaxonomyDef:
		return validateTaxonomy(def)
	case ir.TaxonomyDef:
		return validateTaxonomy(&def)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported definition type: %T", v),
			Code:    ErrUnsupportedDefType,
		}}
	}
}

func validateQuery(def *ir.QueryDef) []ValidationError {
	var errs []ValidationError

	// E101: name is required
	if strings.TrimSpace(def.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "query name is required",
			Code:    ErrQueryNameEmpty,
		})
	}

	// E102: order
	if def.Order != "" {
		if o := strings.ToUpper(def.Order); o != "ASC" && o != "DESC" {
			errs = append(errs, ValidationError{
				Field:   "order",
				Message: fmt.Sprintf("invalid order %q, must be \"ASC\" or \"DESC\"", def.Order),
				Code:    ErrInvalidOrder,
			})
		}
	}

	// E106: order_by shape
	switch def.OrderBy.(type) {
	case nil, ir.String, *ir.Object:
	default:
		errs = append(errs, ValidationError{
			Field:   "order_by",
			Message: fmt.Sprintf("order_by must be a string or a struct, got %T", def.OrderBy),
			Code:    ErrInvalidOrderBy,
		})
	}

	// E103: paging ranges
	if def.PerPage != nil && *def.PerPage < -1 {
		errs = append(errs, ValidationError{
			Field:   "per_page",
			Message: fmt.Sprintf("per_page %d is below -1 (unlimited)", *def.PerPage),
			Code:    ErrInvalidPaging,
		})
	}
	if def.Page != nil && *def.Page < 1 {
		errs = append(errs, ValidationError{
			Field:   "page",
			Message: fmt.Sprintf("page %d is below 1", *def.Page),
			Code:    ErrInvalidPaging,
		})
	}
	if def.Offset != nil && *def.Offset < 0 {
		errs = append(errs, ValidationError{
			Field:   "offset",
			Message: fmt.Sprintf("offset %d is negative", *def.Offset),
			Code:    ErrInvalidPaging,
		})
	}

	errs = append(errs, validateClauses("meta", def.Meta)...)
	errs = append(errs, validateClauses("tax", def.Tax)...)
	return errs
}

func validateClauses(path string, clauses []ir.ClauseDef) []ValidationError {
	var errs []ValidationError
	for i, c := range clauses {
		field := fmt.Sprintf("%s[%d]", path, i)

		// E104: relation
		if r := strings.ToUpper(c.Relation); r != "" && r != "AND" && r != "OR" {
			errs = append(errs, ValidationError{
				Field:   field + ".relation",
				Message: fmt.Sprintf("invalid relation %q, must be \"AND\" or \"OR\"", c.Relation),
				Code:    ErrInvalidRelation,
			})
		}

		// E105: target
		if len(c.Group) == 0 && c.Raw == nil && c.Field == "" {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "clause needs a field, a raw clause or a group",
				Code:    ErrClauseNoTarget,
			})
		}

		errs = append(errs, validateClauses(field+".group", c.Group)...)
	}
	return errs
}

func validatePostType(def *ir.PostTypeDef) []ValidationError {
	var errs []ValidationError

	// E110: name format
	if !postTypeNamePattern.MatchString(def.Name) {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("invalid post type name %q: 1-20 lowercase letters, digits, '-' or '_'", def.Name),
			Code:    ErrInvalidTypeName,
		})
	}

	// E103: per_page
	if def.PerPage < -1 {
		errs = append(errs, ValidationError{
			Field:   "per_page",
			Message: fmt.Sprintf("per_page %d is below -1 (unlimited)", def.PerPage),
			Code:    ErrInvalidPaging,
		})
	}
	return errs
}

func validateTaxonomy(def *ir.TaxonomyDef) []ValidationError {
	var errs []ValidationError

	// E111: name format
	if !taxonomyNamePattern.MatchString(def.Name) {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("invalid taxonomy name %q: 1-32 lowercase letters, digits, '-' or '_'", def.Name),
			Code:    ErrInvalidTaxonomyName,
		})
	}
	return errs
}

// ValidateRefs checks names across a whole spec set: duplicates, and
// references from queries and taxonomies to declared post types and
// taxonomies. WordPress built-ins (post, page, category, post_tag, ...)
// need no declaration.
func ValidateRefs(types []ir.PostTypeDef, taxonomies []ir.TaxonomyDef, queries []ir.QueryDef) []ValidationError {
	var errs []ValidationError

	typeNames := make(map[string]bool, len(types))
	for i, t := range types {
		if typeNames[t.Name] {
			errs = append(errs, duplicate(fmt.Sprintf("post_type[%d]", i), "post type", t.Name))
		}
		typeNames[t.Name] = true
	}
	taxNames := make(map[string]bool, len(taxonomies))
	for i, t := range taxonomies {
		if taxNames[t.Name] {
			errs = append(errs, duplicate(fmt.Sprintf("taxonomy[%d]", i), "taxonomy", t.Name))
		}
		taxNames[t.Name] = true
	}

	knownType := func(name string) bool { return typeNames[name] || builtinPostTypes[name] }
	knownTax := func(name string) bool { return taxNames[name] || builtinTaxonomies[name] }

	for _, t := range types {
		for _, tax := range t.Taxonomies {
			if !knownTax(tax) {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("post_type.%s.taxonomies", t.Name),
					Message: fmt.Sprintf("unknown taxonomy %q", tax),
					Code:    ErrUnknownTaxonomy,
				})
			}
		}
	}
	for _, t := range taxonomies {
		for _, pt := range t.PostTypes {
			if !knownType(pt) {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("taxonomy.%s.post_types", t.Name),
					Message: fmt.Sprintf("unknown post type %q", pt),
					Code:    ErrUnknownPostType,
				})
			}
		}
	}

	queryNames := make(map[string]bool, len(queries))
	for _, q := range queries {
		if queryNames[q.Name] {
			errs = append(errs, duplicate("query."+q.Name, "query", q.Name))
		}
		queryNames[q.Name] = true

		for _, pt := range ir.AsList(q.PostType) {
			name, ok := pt.(ir.String)
			if ok && !knownType(string(name)) {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("query.%s.post_type", q.Name),
					Message: fmt.Sprintf("unknown post type %q", name),
					Code:    ErrUnknownPostType,
				})
			}
		}
		for _, tax := range taxonomyRefs(q.Tax) {
			if !knownTax(tax) {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("query.%s.tax", q.Name),
					Message: fmt.Sprintf("unknown taxonomy %q", tax),
					Code:    ErrUnknownTaxonomy,
				})
			}
		}
	}
	return errs
}

func duplicate(field, kind, name string) ValidationError {
	return ValidationError{
		Field:   field,
		Message: fmt.Sprintf("duplicate %s name: %q", kind, name),
		Code:    ErrDuplicateName,
	}
}

// taxonomyRefs lists the taxonomies named by tax clauses, recursing into
// groups. Raw clauses are not inspected.
func taxonomyRefs(clauses []ir.ClauseDef) []string {
	var out []string
	for _, c := range clauses {
		if c.Field != "" {
			out = append(out, c.Field)
		}
		out = append(out, taxonomyRefs(c.Group)...)
	}
	return out
}
