package store

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/vanilla/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createTestStore creates a new store in a temporary directory with a
// deterministic clock.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	opts = append([]Option{WithClock(testutil.NewRunClock(0))}, opts...)
	s, err := Open(path, discardLogger(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

const bookshopFixtures = `
users:
  - login: ada
    display_name: Ada Lovelace
  - login: Grace Hopper
posts:
  - title: Dune
    type: book
    author: ada
    date: "1965-08-01"
    meta:
      price: 12.5
      format: [paperback, ebook]
    terms:
      genre: [science-fiction]
  - title: Emma
    type: book
    author: Grace Hopper
    date: "1815-12-23"
    meta:
      price: 8
      format: hardcover
    terms:
      genre: [romance, classic]
  - title: Neuromancer
    type: book
    author: ada
    date: "1984-07-01"
    meta:
      price: 15
    terms:
      genre: [science-fiction, cyberpunk]
  - title: Hello World
    date: "2024-01-01 09:30:00"
  - title: Draft Notes
    type: book
    status: draft
`

// seedBookshop loads bookshopFixtures.
func seedBookshop(t *testing.T, s *Store) {
	t.Helper()
	fx, err := ParseFixtures([]byte(bookshopFixtures))
	require.NoError(t, err)
	_, err = s.Seed(context.Background(), fx)
	require.NoError(t, err)
}
