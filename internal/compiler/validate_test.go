package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vanilla/internal/ir"
)

func int64Ptr(n int64) *int64 { return &n }

func codes(errs []ValidationError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Code)
	}
	return out
}

// =============================================================================
// QueryDef Validation Tests
// =============================================================================

func TestValidateQueryValid(t *testing.T) {
	def := &ir.QueryDef{
		Name:     "cheap_books",
		PostType: ir.String("book"),
		OrderBy:  ir.String("title"),
		Order:    "desc",
		PerPage:  int64Ptr(-1),
		Page:     int64Ptr(1),
		Offset:   int64Ptr(0),
		Meta: []ir.ClauseDef{
			{Field: "price", Compare: "<", Value: ir.Int(10)},
			{Relation: "OR", Group: []ir.ClauseDef{
				{Field: "format", Value: ir.String("ebook")},
				{Raw: ir.NewObject(ir.P("key", ir.String("rating")))},
			}},
		},
	}

	errs := Validate(def)
	assert.Empty(t, errs, "valid query should have no errors")
}

func TestValidateQueryByValue(t *testing.T) {
	errs := Validate(ir.QueryDef{Name: "q"})
	assert.Empty(t, errs)
}

func TestValidateQueryMissingName(t *testing.T) {
	errs := Validate(&ir.QueryDef{Name: "  "})
	require.Len(t, errs, 1)
	assert.Equal(t, ErrQueryNameEmpty, errs[0].Code)
	assert.Equal(t, "name", errs[0].Field)
}

func TestValidateQueryInvalidOrder(t *testing.T) {
	errs := Validate(&ir.QueryDef{Name: "q", Order: "sideways"})
	require.Len(t, errs, 1)
	assert.Equal(t, ErrInvalidOrder, errs[0].Code)
	assert.Contains(t, errs[0].Message, "sideways")
}

func TestValidateQueryInvalidOrderBy(t *testing.T) {
	errs := Validate(&ir.QueryDef{Name: "q", OrderBy: ir.Int(3)})
	require.Len(t, errs, 1)
	assert.Equal(t, ErrInvalidOrderBy, errs[0].Code)
}

func TestValidateQueryPagingRanges(t *testing.T) {
	errs := Validate(&ir.QueryDef{
		Name:    "q",
		PerPage: int64Ptr(-2),
		Page:    int64Ptr(0),
		Offset:  int64Ptr(-5),
	})
	assert.Equal(t, []string{ErrInvalidPaging, ErrInvalidPaging, ErrInvalidPaging}, codes(errs))
	assert.Equal(t, "per_page", errs[0].Field)
	assert.Equal(t, "page", errs[1].Field)
	assert.Equal(t, "offset", errs[2].Field)
}

func TestValidateQueryClauseErrors(t *testing.T) {
	errs := Validate(&ir.QueryDef{
		Name: "q",
		Tax: []ir.ClauseDef{
			{Relation: "XOR", Field: "genre"},
			{Group: []ir.ClauseDef{{Compare: "IN"}}},
		},
	})
	require.Len(t, errs, 2)
	assert.Equal(t, ErrInvalidRelation, errs[0].Code)
	assert.Equal(t, "tax[0].relation", errs[0].Field)
	assert.Equal(t, ErrClauseNoTarget, errs[1].Code)
	assert.Equal(t, "tax[1].group[0]", errs[1].Field)
}

func TestValidateQueryCollectsAllErrors(t *testing.T) {
	errs := Validate(&ir.QueryDef{Order: "up", PerPage: int64Ptr(-3)})
	assert.ElementsMatch(t, []string{ErrQueryNameEmpty, ErrInvalidOrder, ErrInvalidPaging}, codes(errs))
}

// =============================================================================
// PostTypeDef / TaxonomyDef Validation Tests
// =============================================================================

func TestValidatePostTypeNames(t *testing.T) {
	valid := []string{"book", "book_review", "event-venue", "a1"}
	for _, name := range valid {
		assert.Empty(t, Validate(&ir.PostTypeDef{Name: name}), name)
	}

	invalid := []string{"", "Book", "book review", "a_post_type_name_too_long"}
	for _, name := range invalid {
		errs := Validate(&ir.PostTypeDef{Name: name})
		require.Len(t, errs, 1, name)
		assert.Equal(t, ErrInvalidTypeName, errs[0].Code, name)
	}
}

func TestValidatePostTypePerPage(t *testing.T) {
	assert.Empty(t, Validate(ir.PostTypeDef{Name: "book", PerPage: -1}))

	errs := Validate(&ir.PostTypeDef{Name: "book", PerPage: -4})
	require.Len(t, errs, 1)
	assert.Equal(t, ErrInvalidPaging, errs[0].Code)
}

func TestValidateTaxonomyNames(t *testing.T) {
	assert.Empty(t, Validate(&ir.TaxonomyDef{Name: "a_taxonomy_name_that_is_32_chars"}))

	errs := Validate(ir.TaxonomyDef{Name: "a_taxonomy_name_that_is_33_chars_"})
	require.Len(t, errs, 1)
	assert.Equal(t, ErrInvalidTaxonomyName, errs[0].Code)
}

func TestValidateUnsupportedType(t *testing.T) {
	errs := Validate("not a def")
	require.Len(t, errs, 1)
	assert.Equal(t, ErrUnsupportedDefType, errs[0].Code)
	assert.Contains(t, errs[0].Message, "string")
}

// =============================================================================
// Cross-reference Validation Tests
// =============================================================================

func TestValidateRefsValid(t *testing.T) {
	types := []ir.PostTypeDef{{Name: "book", Taxonomies: []string{"genre", "category"}}}
	taxonomies := []ir.TaxonomyDef{{Name: "genre", PostTypes: []string{"book", "post"}}}
	queries := []ir.QueryDef{
		{
			Name:     "books",
			PostType: ir.Strings("book", "page"),
			Tax: []ir.ClauseDef{
				{Field: "genre", Value: ir.String("romance")},
				{Group: []ir.ClauseDef{{Field: "post_tag", Value: ir.String("new")}}},
				{Raw: ir.NewObject(ir.P("taxonomy", ir.String("anything")))},
			},
		},
		{Name: "everything", PostType: ir.String("any")},
	}

	assert.Empty(t, ValidateRefs(types, taxonomies, queries))
}

func TestValidateRefsDuplicates(t *testing.T) {
	errs := ValidateRefs(
		[]ir.PostTypeDef{{Name: "book"}, {Name: "book"}},
		[]ir.TaxonomyDef{{Name: "genre"}, {Name: "genre"}},
		[]ir.QueryDef{{Name: "q"}, {Name: "q"}},
	)
	assert.Equal(t, []string{ErrDuplicateName, ErrDuplicateName, ErrDuplicateName}, codes(errs))
	assert.Equal(t, "post_type[1]", errs[0].Field)
	assert.Equal(t, "taxonomy[1]", errs[1].Field)
	assert.Equal(t, "query.q", errs[2].Field)
}

func TestValidateRefsUnknownNames(t *testing.T) {
	errs := ValidateRefs(
		[]ir.PostTypeDef{{Name: "book", Taxonomies: []string{"shelf"}}},
		[]ir.TaxonomyDef{{Name: "genre", PostTypes: []string{"movie"}}},
		[]ir.QueryDef{{
			Name:     "q",
			PostType: ir.String("album"),
			Tax:      []ir.ClauseDef{{Group: []ir.ClauseDef{{Field: "mood"}}}},
		}},
	)

	require.Len(t, errs, 4)
	assert.Equal(t, ErrUnknownTaxonomy, errs[0].Code)
	assert.Equal(t, "post_type.book.taxonomies", errs[0].Field)
	assert.Equal(t, ErrUnknownPostType, errs[1].Code)
	assert.Equal(t, "taxonomy.genre.post_types", errs[1].Field)
	assert.Equal(t, ErrUnknownPostType, errs[2].Code)
	assert.Contains(t, errs[2].Message, "album")
	assert.Equal(t, ErrUnknownTaxonomy, errs[3].Code)
	assert.Contains(t, errs[3].Message, "mood")
}

func TestValidationErrorString(t *testing.T) {
	err := ValidationError{Field: "order", Message: "bad", Code: ErrInvalidOrder}
	assert.Equal(t, "[E102] order: bad", err.Error())

	err.Line = 4
	assert.Equal(t, "[E102] line 4: order: bad", err.Error())
}
