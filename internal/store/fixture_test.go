package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFixtures_UnknownField(t *testing.T) {
	_, err := ParseFixtures([]byte("posts:\n  - title: Dune\n    colour: red\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "colour")
}

func TestParseFixtures_Empty(t *testing.T) {
	fx, err := ParseFixtures(nil)
	require.NoError(t, err)
	assert.Empty(t, fx.Posts)
}

func TestSeed_Bookshop(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	fx, err := ParseFixtures([]byte(bookshopFixtures))
	require.NoError(t, err)
	stats, err := s.Seed(ctx, fx)
	require.NoError(t, err)
	assert.Equal(t, SeedStats{Users: 2, Posts: 5, Meta: 6, Terms: 5}, stats)

	dune, err := s.Post(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "dune", dune.Name)
	assert.Equal(t, "book", dune.Type)
	assert.Equal(t, int64(1), dune.Author)
	assert.Equal(t, time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC), dune.Date)

	meta, err := s.Meta(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"format": {"paperback", "ebook"},
		"price":  {"12.5"},
	}, meta)

	terms, err := s.Terms(ctx, 3, "genre")
	require.NoError(t, err)
	assert.Equal(t, []string{"science-fiction", "cyberpunk"}, terms)

	hello, err := s.Post(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC), hello.Date)

	// Posts without a date count up from the fixture epoch.
	draft, err := s.Post(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, fixtureEpoch.AddDate(0, 0, 4), draft.Date)
	assert.Equal(t, "draft", draft.Status)
}

func TestSeed_ParentByName(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	fx, err := ParseFixtures([]byte(`
posts:
  - title: Guides
    type: page
  - title: Install
    type: page
    parent: guides
    menu_order: 2
`))
	require.NoError(t, err)
	_, err = s.Seed(ctx, fx)
	require.NoError(t, err)

	child, err := s.Post(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), child.Parent)
	assert.Equal(t, int64(2), child.MenuOrder)
}

func TestSeed_RollsBackOnError(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		doc  string
		msg  string
	}{
		{"unknown author", "posts:\n  - title: A\n  - title: B\n    author: nobody\n", `unknown author "nobody"`},
		{"unknown parent", "posts:\n  - title: A\n    parent: missing\n", `unknown parent "missing"`},
		{"bad date", "posts:\n  - title: A\n    date: yesterday\n", `parse date "yesterday"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx, err := ParseFixtures([]byte(tt.doc))
			require.NoError(t, err)

			_, err = s.Seed(ctx, fx)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)

			var count int
			require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM wp_posts").Scan(&count))
			assert.Zero(t, count)
		})
	}
}

func TestLoadFixtures(t *testing.T) {
	s := createTestStore(t)
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte(bookshopFixtures), 0o644))

	stats, err := s.LoadFixtures(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Posts)

	_, err = s.LoadFixtures(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestMetaStrings(t *testing.T) {
	assert.Equal(t, []string{"red"}, metaStrings("red"))
	assert.Equal(t, []string{"9.99"}, metaStrings(9.99))
	assert.Equal(t, []string{"1"}, metaStrings(true))
	assert.Equal(t, []string{"a", "2"}, metaStrings([]any{"a", 2}))
}
