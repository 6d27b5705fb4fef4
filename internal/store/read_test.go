package store

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vanilla/internal/clause"
	"github.com/roach88/vanilla/internal/ir"
	"github.com/roach88/vanilla/internal/query"
	"github.com/roach88/vanilla/internal/querysql"
)

func slugs(posts []query.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Name
	}
	return out
}

func metaLeaf(key string, value ir.Value, compare, typ string) *ir.Object {
	leaf := ir.NewObject(ir.P("key", ir.String(key)), ir.P("value", value), ir.P("compare", ir.String(compare)))
	if typ != "" {
		leaf.Set("type", ir.String(typ))
	}
	return leaf
}

func taxLeaf(taxonomy string, terms ir.Value, operator string) *ir.Object {
	return ir.NewObject(
		ir.P("taxonomy", ir.String(taxonomy)),
		ir.P("field", ir.String("slug")),
		ir.P("terms", terms),
		ir.P("operator", ir.String(operator)),
	)
}

func group(relation string, members ...*ir.Object) *ir.Object {
	g := ir.NewObject(ir.P("relation", ir.String(relation)))
	for _, m := range members {
		g.Push(m)
	}
	return g
}

func TestExecute_Filters(t *testing.T) {
	s := createTestStore(t)
	seedBookshop(t, s)

	books := func(entries ...ir.Entry) *ir.Object {
		return ir.NewObject(append([]ir.Entry{ir.P("post_type", ir.String("book"))}, entries...)...)
	}

	tests := []struct {
		name  string
		args  *ir.Object
		want  []string
		found int64
	}{
		{
			name:  "defaults to published posts",
			args:  ir.NewObject(),
			want:  []string{"hello-world"},
			found: 1,
		},
		{
			name:  "post type ordered by title",
			args:  books(ir.P("orderby", ir.String("title")), ir.P("order", ir.String("ASC"))),
			want:  []string{"dune", "emma", "neuromancer"},
			found: 3,
		},
		{
			name:  "any status",
			args:  books(ir.P("post_status", ir.String("any")), ir.P("orderby", ir.String("title")), ir.P("order", ir.String("ASC"))),
			want:  []string{"draft-notes", "dune", "emma", "neuromancer"},
			found: 4,
		},
		{
			name:  "numeric meta compare",
			args:  books(ir.P("meta_query", group("AND", metaLeaf("price", ir.Int(10), ">", "NUMERIC")))),
			want:  []string{"neuromancer", "dune"},
			found: 2,
		},
		{
			name:  "meta IN over multi-valued key",
			args:  books(ir.P("meta_query", group("AND", metaLeaf("format", ir.Strings("ebook", "hardcover"), "IN", "CHAR")))),
			want:  []string{"dune", "emma"},
			found: 2,
		},
		{
			name: "meta OR group",
			args: books(ir.P("meta_query", group("OR",
				metaLeaf("price", ir.Int(9), "<", "NUMERIC"),
				metaLeaf("format", ir.String("paperback"), "=", "CHAR"),
			))),
			want:  []string{"dune", "emma"},
			found: 2,
		},
		{
			name:  "meta not exists",
			args:  books(ir.P("meta_query", group("AND", metaLeaf("format", ir.String("x"), "NOT EXISTS", "")))),
			want:  []string{"neuromancer"},
			found: 1,
		},
		{
			name:  "tax AND",
			args:  books(ir.P("tax_query", group("AND", taxLeaf("genre", ir.Strings("science-fiction", "cyberpunk"), "AND")))),
			want:  []string{"neuromancer"},
			found: 1,
		},
		{
			name:  "tax NOT IN",
			args:  books(ir.P("tax_query", group("AND", taxLeaf("genre", ir.Strings("science-fiction"), "NOT IN")))),
			want:  []string{"emma"},
			found: 1,
		},
		{
			name:  "author name",
			args:  books(ir.P("author_name", ir.String("grace-hopper"))),
			want:  []string{"emma"},
			found: 1,
		},
		{
			name:  "search",
			args:  books(ir.P("s", ir.String("NEURO"))),
			want:  []string{"neuromancer"},
			found: 1,
		},
		{
			name:  "date query",
			args:  books(ir.P("date_query", ir.NewObject(ir.P("year", ir.Int(1965))))),
			want:  []string{"dune"},
			found: 1,
		},
		{
			name:  "order by numeric meta value",
			args:  books(ir.P("meta_key", ir.String("price")), ir.P("orderby", ir.String("meta_value_num")), ir.P("order", ir.String("ASC"))),
			want:  []string{"emma", "dune", "neuromancer"},
			found: 3,
		},
		{
			name:  "post__in order",
			args:  books(ir.P("post__in", ir.Ints(3, 1)), ir.P("orderby", ir.String("post__in"))),
			want:  []string{"neuromancer", "dune"},
			found: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.Execute(context.Background(), tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, slugs(result.Posts))
			assert.Equal(t, tt.found, result.FoundPosts)
		})
	}
}

func TestExecute_Paging(t *testing.T) {
	s := createTestStore(t)
	seedBookshop(t, s)

	args := ir.NewObject(
		ir.P("post_type", ir.String("book")),
		ir.P("orderby", ir.String("title")),
		ir.P("order", ir.String("ASC")),
		ir.P("posts_per_page", ir.Int(2)),
		ir.P("paged", ir.Int(2)),
	)
	result, err := s.Execute(context.Background(), args)
	require.NoError(t, err)
	assert.Equal(t, []string{"neuromancer"}, slugs(result.Posts))
	assert.Equal(t, int64(3), result.FoundPosts)
	assert.Equal(t, int64(2), result.MaxNumPages)

	args.Set("posts_per_page", ir.Int(-1))
	result, err = s.Execute(context.Background(), args)
	require.NoError(t, err)
	assert.Len(t, result.Posts, 3)
	assert.Equal(t, int64(0), result.MaxNumPages)
}

func TestExecute_CustomOffsetPaging(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	fx := &Fixtures{}
	for i := 1; i <= 10; i++ {
		fx.Posts = append(fx.Posts, PostFixture{Title: fmt.Sprintf("p%02d", i), Type: "book"})
	}
	_, err := s.Seed(ctx, fx)
	require.NoError(t, err)

	pages := map[int64][]string{
		1: {"p03", "p04", "p05"},
		2: {"p06", "p07", "p08"},
		3: {"p09", "p10"},
	}
	for page, want := range pages {
		pager, err := query.New().Type("book").OrderBy("title", "ASC").
			Offset(2).PerPage(3).Page(page).
			Paginator(ctx, s, query.Request{})
		require.NoError(t, err)
		assert.Equal(t, want, slugs(pager.Items()), "page %d", page)
	}
}

func TestExecute_RepeatedMetaKeyKeepsArgsID(t *testing.T) {
	s := createTestStore(t)
	seedBookshop(t, s)
	ctx := context.Background()

	// random key suffixes differ between the two builds
	b := query.New(query.WithTokens(clause.UUIDTokens{})).
		Type("book").
		Meta("price", ">", 10).
		Meta("price", "<", 20)

	var ids []string
	for i := 0; i < 2; i++ {
		pager, err := b.Paginator(ctx, s, query.Request{})
		require.NoError(t, err)
		assert.Len(t, pager.Items(), 2)

		id, err := query.ArgsID(pager.Args())
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.Equal(t, ids[0], ids[1])

	run, err := s.Run(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, int64(2), run.Hits)
}

func TestExecute_EmptyResultIsNotNil(t *testing.T) {
	s := createTestStore(t)

	result, err := s.Execute(context.Background(), ir.NewObject(ir.P("post_type", ir.String("book"))))
	require.NoError(t, err)
	assert.NotNil(t, result.Posts)
	assert.Empty(t, result.Posts)
	assert.Equal(t, int64(0), result.MaxNumPages)
}

func TestExecute_Unsupported(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Execute(context.Background(), ir.NewObject(
		ir.P("meta_query", group("AND", metaLeaf("price", ir.Int(1), "REGEXP", ""))),
	))
	var unsupportedErr *querysql.UnsupportedError
	require.ErrorAs(t, err, &unsupportedErr)
	assert.Equal(t, "meta_query.0", unsupportedErr.Arg)
}

func TestExecute_RecordsRuns(t *testing.T) {
	s := createTestStore(t)
	seedBookshop(t, s)
	ctx := context.Background()

	first := ir.NewObject(ir.P("post_type", ir.String("book")), ir.P("paged", ir.Int(1)))
	// Same content, different insertion order: same args ID.
	again := ir.NewObject(ir.P("paged", ir.Int(1)), ir.P("post_type", ir.String("book")))
	other := ir.NewObject(ir.P("post_type", ir.String("post")))

	for _, args := range []*ir.Object{first, other, again} {
		_, err := s.Execute(ctx, args)
		require.NoError(t, err)
	}

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	id, err := ir.ArgsID(first)
	require.NoError(t, err)

	assert.Equal(t, int64(1), runs[0].Hits)
	assert.Equal(t, int64(2), runs[0].LastSeq)

	assert.Equal(t, id, runs[1].ArgsID)
	assert.Equal(t, int64(2), runs[1].Hits)
	assert.Equal(t, int64(1), runs[1].FirstSeq)
	assert.Equal(t, int64(3), runs[1].LastSeq)
	assert.Equal(t, int64(3), runs[1].LastFound)
	assert.Equal(t, []string{"paged", "post_type"}, runs[1].Args.Keys())

	run, err := s.Run(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, runs[1], run)

	_, err = s.Run(ctx, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestExecute_ThroughBuilder(t *testing.T) {
	s := createTestStore(t)
	seedBookshop(t, s)

	b := query.New(query.WithTokens(clause.NewSequenceTokens())).
		Type("book").
		Meta("price", ">", 10).
		OrMetaIn("format", []string{"hardcover"}).
		OrderBy("title", "ASC")

	posts, err := b.Get(context.Background(), s, query.Request{})
	require.NoError(t, err)
	assert.Equal(t, []string{"dune", "emma", "neuromancer"}, slugs(posts))

	req, err := query.NewRequest("/books?page_num=2")
	require.NoError(t, err)
	pager, err := query.New().Type("book").OrderBy("title", "ASC").Paginate(context.Background(), s, req, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"neuromancer"}, slugs(pager.Items()))
	assert.Equal(t, int64(2), pager.CurrentPage())
	assert.Equal(t, int64(2), pager.Pages())
	assert.False(t, pager.HasNextPage())
	assert.True(t, pager.HasPreviousPage())
}

func TestPost_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.Post(context.Background(), 42)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestMeta_NoRows(t *testing.T) {
	s := createTestStore(t)
	meta, err := s.Meta(context.Background(), 42)
	require.NoError(t, err)
	assert.Empty(t, meta)
}
