package query

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vanilla/internal/clause"
	"github.com/roach88/vanilla/internal/ir"
)

func int64p(n int64) *int64 { return &n }

func TestFromDef_Empty(t *testing.T) {
	b, err := FromDef(ir.QueryDef{Name: "all"})
	require.NoError(t, err)

	assert.Equal(t, `{"_paged":1,"paged":1,"posts_per_page":9999}`, compact(t, b.BuildArgs(Request{})))
}

func TestFromDef_TopLevelFields(t *testing.T) {
	def := ir.QueryDef{
		Name:         "recent_books",
		PostType:     ir.String("book"),
		Status:       []string{"publish", "private"},
		Author:       ir.String("ada"),
		AuthorNot:    ir.Ints(9),
		Post:         ir.Ints(1, 2),
		PostNot:      ir.Int(3),
		Parent:       ir.Int(0),
		Slug:         "dune",
		Search:       "spice",
		OrderBy:      ir.String("date title"),
		Order:        "ASC",
		PerPage:      int64p(5),
		Page:         int64p(2),
		Offset:       int64p(1),
		IgnoreSticky: true,
		Date:         ir.NewObject(ir.P("year", ir.Int(1965))),
		Set:          ir.NewObject(ir.P("cat", ir.Int(4))),
	}

	b, err := FromDef(def)
	require.NoError(t, err)

	assert.Equal(t,
		`{"post_type":"book","post_status":["publish","private"],"author_name":"ada","author__not_in":[9],`+
			`"post__in":[1,2],"post__not_in":[3],"post_parent":0,"name":"dune","s":"spice",`+
			`"orderby":{"date":"ASC","title":"ASC"},"posts_per_page":5,"_paged":2,"paged":2,`+
			`"offset":1,"_offset":1,"ignore_sticky_posts":true,"date_query":{"year":1965},"cat":4}`,
		compact(t, b.BuildArgs(Request{})))
}

func TestFromDef_OrderByObject(t *testing.T) {
	b, err := FromDef(ir.QueryDef{OrderBy: ir.NewObject(ir.P("menu_order", ir.String("ASC")))})
	require.NoError(t, err)

	v, _ := b.Args().Get("orderby")
	assert.Equal(t, `{"menu_order":"ASC"}`, compact(t, v))
}

func TestFromDef_OrderByInvalid(t *testing.T) {
	_, err := FromDef(ir.QueryDef{Name: "bad", OrderBy: ir.Int(3)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `query "bad": order_by must be a string or an object`)
}

func TestFromDef_MetaClauses(t *testing.T) {
	def := ir.QueryDef{
		Name: "shop",
		Meta: []ir.ClauseDef{
			{Field: "color", Value: ir.Strings("red", "blue")},
			{Field: "price", Compare: "<=", Value: ir.Int(50), Type: "numeric"},
			{Field: "featured", Compare: "exists", Relation: "or"},
			{Field: "hidden", Compare: "NOT EXISTS"},
			{Raw: ir.NewObject(ir.P("key", ir.String("raw")), ir.P("compare", ir.String("EXISTS")))},
			{Relation: "OR", Group: []ir.ClauseDef{
				{Field: "size", Value: ir.String("S")},
				{Field: "size", Value: ir.String("M")},
			}},
		},
	}

	b, err := FromDef(def, WithTokens(clause.NewSequenceTokens()))
	require.NoError(t, err)

	meta, _ := b.BuildArgs(Request{}).Get("meta_query")
	assert.Equal(t,
		`{"relation":"OR",`+
			`"featured":{"key":"featured","compare":"EXISTS"},`+
			`"0":{"relation":"AND",`+
			`"size":{"key":"size","type":"CHAR","value":"S","compare":"="},`+
			`"size.00001":{"key":"size","type":"CHAR","value":"M","compare":"="}},`+
			`"1":{"relation":"AND",`+
			`"color":{"key":"color","type":"CHAR","value":["red","blue"],"compare":"IN"},`+
			`"price":{"key":"price","type":"NUMERIC","value":50,"compare":"<="},`+
			`"hidden":{"key":"hidden","compare":"NOT EXISTS","value":"https://core.trac.wordpress.org/ticket/23268"},`+
			`"raw":{"key":"raw","compare":"EXISTS"}}}`,
		compact(t, meta))
}

func TestFromDef_TaxClauses(t *testing.T) {
	def := ir.QueryDef{
		Tax: []ir.ClauseDef{
			{Field: "genre", Value: ir.Strings("fiction")},
			{Field: "award", Compare: "not in", Value: ir.Ints(3)},
			{Field: "series", Compare: "EXISTS", Relation: "OR"},
			{Field: "imprint", Compare: "NOT EXISTS", Relation: "OR"},
		},
	}

	b, err := FromDef(def)
	require.NoError(t, err)

	tax, _ := b.BuildArgs(Request{}).Get("tax_query")
	assert.Equal(t,
		`{"relation":"OR",`+
			`"0":{"taxonomy":"series","operator":"EXISTS"},`+
			`"1":{"taxonomy":"imprint","operator":"NOT EXISTS"},`+
			`"2":{"relation":"AND",`+
			`"0":{"taxonomy":"genre","field":"slug","terms":["fiction"],"operator":"IN"},`+
			`"1":{"taxonomy":"award","field":"term_id","terms":[3],"operator":"NOT IN"}}}`,
		compact(t, tax))
}

func TestFromDef_ClauseErrors(t *testing.T) {
	tests := []struct {
		name string
		def  ir.QueryDef
		want string
	}{
		{"bad relation", ir.QueryDef{Name: "q", Meta: []ir.ClauseDef{{Field: "a", Relation: "xor"}}}, `query "q": meta[0]: unknown relation "xor"`},
		{"missing field", ir.QueryDef{Name: "q", Meta: []ir.ClauseDef{{Compare: "="}}}, `query "q": meta[0]: clause needs a field`},
		{"missing taxonomy", ir.QueryDef{Name: "q", Tax: []ir.ClauseDef{{}}}, `query "q": tax[0]: clause needs a taxonomy`},
		{"nested error", ir.QueryDef{Name: "q", Tax: []ir.ClauseDef{{Group: []ir.ClauseDef{{Field: "a"}, {Relation: "nand", Field: "b"}}}}}, `query "q": tax[0]: group[1]: unknown relation "nand"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromDef(tt.def)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFromDef_GoldenArgs(t *testing.T) {
	def := ir.QueryDef{
		Name:     "bookshop",
		PostType: ir.String("book"),
		OrderBy:  ir.String("title"),
		Order:    "ASC",
		PerPage:  int64p(2),
		Meta: []ir.ClauseDef{
			{Field: "price", Compare: "between", Value: ir.Ints(10, 20)},
			{Field: "stock", Compare: ">", Value: ir.Int(0), Relation: "OR"},
		},
		Tax: []ir.ClauseDef{
			{Field: "genre", Value: ir.Strings("poetry")},
		},
	}

	b, err := FromDef(def, WithTokens(clause.NewSequenceTokens()))
	require.NoError(t, err)
	req, err := NewRequest("/books/?page_num=2")
	require.NoError(t, err)

	data, err := ir.MarshalIndent(b.BuildArgs(req))
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "bookshop_args", data)
}
