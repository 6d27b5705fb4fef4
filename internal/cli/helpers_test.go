package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const librarySpec = `
package test

post_type: book: {
	per_page: 2
	taxonomies: ["genre"]
}

taxonomy: genre: post_types: ["book"]

query: books_by_title: {
	post_type: "book"
	order_by:  "title"
	order:     "ASC"
}

query: cheap_books: {
	post_type: "book"
	order_by: { meta_value_num: "ASC" }
	meta: [
		{field: "price", compare: "<", value: 10, type: "NUMERIC"},
	]
	set: meta_key: "price"
}
`

const libraryFixtures = `
users:
  - login: ada
posts:
  - title: Dune
    type: book
    author: ada
    meta: {price: 12.5}
    terms: {genre: [science-fiction]}
  - title: Emma
    type: book
    author: ada
    meta: {price: 8}
    terms: {genre: [romance]}
  - title: Persuasion
    type: book
    author: ada
    meta: {price: 6}
    terms: {genre: [romance]}
`

// executeCommand runs the root command with args and returns stdout and
// stderr.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// setupLibrary writes the library specs and fixtures into a temp dir and
// returns the specs dir, fixtures file and database path.
func setupLibrary(t *testing.T) (specsDir, fixtures, dbPath string) {
	t.Helper()
	tmpDir := t.TempDir()
	specsDir = filepath.Join(tmpDir, "specs")
	fixtures = filepath.Join(tmpDir, "fixtures.yaml")
	dbPath = filepath.Join(tmpDir, "site.db")

	writeFile(t, filepath.Join(specsDir, "library.cue"), librarySpec)
	writeFile(t, fixtures, libraryFixtures)
	return specsDir, fixtures, dbPath
}

// seedLibrary sets up the library and seeds its fixtures.
func seedLibrary(t *testing.T) (specsDir, dbPath string) {
	t.Helper()
	specsDir, fixtures, dbPath := setupLibrary(t)
	_, _, err := executeCommand(t, "seed", fixtures, "--db", dbPath)
	require.NoError(t, err)
	return specsDir, dbPath
}
