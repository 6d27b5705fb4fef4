package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vanilla/internal/clause"
	"github.com/roach88/vanilla/internal/compiler"
	"github.com/roach88/vanilla/internal/ir"
	"github.com/roach88/vanilla/internal/query"
)

func bookshop(t *testing.T) *Registry {
	t.Helper()
	r := New(query.WithTokens(clause.NewSequenceTokens()))

	require.NoError(t, r.RegisterPostType(ir.PostTypeDef{Name: "book", Singular: "Book", Plural: "Books", Slug: "books", PerPage: 12, Taxonomies: []string{"category"}}))
	require.NoError(t, r.RegisterPostType(ir.PostTypeDef{Name: "author", Singular: "Author", Plural: "Authors", Slug: "authors"}))
	require.NoError(t, r.RegisterTaxonomy(ir.TaxonomyDef{Name: "genre", PostTypes: []string{"book"}}))

	perPage := int64(5)
	require.NoError(t, r.RegisterQuery(ir.QueryDef{
		Name:     "cheap_books",
		PostType: ir.String("book"),
		PerPage:  &perPage,
		Meta:     []ir.ClauseDef{{Field: "price", Compare: "<", Value: ir.Int(10), Type: "NUMERIC"}},
	}))
	return r
}

func TestRegistryLookups(t *testing.T) {
	r := bookshop(t)

	book, ok := r.PostType("book")
	require.True(t, ok)
	assert.Equal(t, "Books", book.Plural)

	_, ok = r.PostType("movie")
	assert.False(t, ok)

	genre, ok := r.Taxonomy("genre")
	require.True(t, ok)
	assert.Equal(t, []string{"book"}, genre.PostTypes)

	def, ok := r.QueryDef("cheap_books")
	require.True(t, ok)
	assert.Equal(t, ir.String("book"), def.PostType)
}

func TestRegistryRegistrationOrder(t *testing.T) {
	r := New()
	for _, name := range []string{"zine", "book", "magazine"} {
		require.NoError(t, r.RegisterPostType(ir.PostTypeDef{Name: name}))
	}

	var names []string
	for _, def := range r.PostTypes() {
		names = append(names, def.Name)
	}
	assert.Equal(t, []string{"zine", "book", "magazine"}, names)
}

func TestRegistryDuplicates(t *testing.T) {
	r := bookshop(t)

	err := r.RegisterPostType(ir.PostTypeDef{Name: "book"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate post type: book")

	err = r.RegisterTaxonomy(ir.TaxonomyDef{Name: "genre"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate taxonomy: genre")

	err = r.RegisterQuery(ir.QueryDef{Name: "cheap_books"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate query: cheap_books")

	// the first registration survives
	book, _ := r.PostType("book")
	assert.Equal(t, int64(12), book.PerPage)
	assert.Len(t, r.PostTypes(), 2)
}

func TestRegistryEmptyNames(t *testing.T) {
	r := New()
	assert.Error(t, r.RegisterPostType(ir.PostTypeDef{}))
	assert.Error(t, r.RegisterTaxonomy(ir.TaxonomyDef{}))
	assert.Error(t, r.RegisterQuery(ir.QueryDef{}))
}

func TestRegistryNewQuery(t *testing.T) {
	r := bookshop(t)

	b, err := r.NewQuery("book")
	require.NoError(t, err)
	args := b.Args()
	assert.Equal(t, []string{"post_type", "posts_per_page"}, args.Keys())
	postType, _ := args.GetString("post_type")
	assert.Equal(t, "book", postType)
	perPage, _ := args.Get("posts_per_page")
	assert.Equal(t, ir.Int(12), perPage)

	// no per_page declared: only the type is set
	b, err = r.NewQuery("author")
	require.NoError(t, err)
	assert.Equal(t, []string{"post_type"}, b.Args().Keys())

	_, err = r.NewQuery("movie")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown post type: movie")
}

func TestRegistryQuery(t *testing.T) {
	r := bookshop(t)

	b, err := r.Query("cheap_books")
	require.NoError(t, err)
	args := b.BuildArgs(query.Request{})
	assert.True(t, args.Has("meta_query"))
	perPage, _ := args.Get("posts_per_page")
	assert.Equal(t, ir.Int(5), perPage)

	// each call returns an independent builder
	b.Search("dune")
	again, err := r.Query("cheap_books")
	require.NoError(t, err)
	assert.False(t, again.Args().Has("s"))

	_, err = r.Query("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown query: missing")
}

func TestRegistryTaxonomiesFor(t *testing.T) {
	r := bookshop(t)
	assert.Equal(t, []string{"genre", "category"}, r.TaxonomiesFor("book"))
	assert.Empty(t, r.TaxonomiesFor("author"))
}

func TestRegistryValidate(t *testing.T) {
	r := bookshop(t)
	assert.Empty(t, r.Validate())

	require.NoError(t, r.RegisterQuery(ir.QueryDef{Name: "movies", PostType: ir.String("movie")}))
	errs := r.Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, compiler.ErrUnknownPostType, errs[0].Code)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = r.RegisterPostType(ir.PostTypeDef{Name: string(rune('a' + i))})
			_ = r.PostTypes()
		}(i)
	}
	wg.Wait()
	assert.Len(t, r.PostTypes(), 20)
}

func TestFromSpecs(t *testing.T) {
	set := &compiler.SpecSet{
		PostTypes:  []ir.PostTypeDef{{Name: "book"}},
		Taxonomies: []ir.TaxonomyDef{{Name: "genre"}},
		Queries:    []ir.QueryDef{{Name: "all_books", PostType: ir.String("book")}},
	}

	r, err := FromSpecs(set)
	require.NoError(t, err)
	assert.Len(t, r.PostTypes(), 1)
	assert.Len(t, r.Taxonomies(), 1)
	assert.Len(t, r.Queries(), 1)

	set.Queries = append(set.Queries, ir.QueryDef{Name: "all_books"})
	_, err = FromSpecs(set)
	require.Error(t, err)
}
