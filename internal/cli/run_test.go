package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRun(t *testing.T, stdout string) RunResult {
	t.Helper()
	var resp struct {
		Status string    `json:"status"`
		Data   RunResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Equal(t, "ok", resp.Status)
	return resp.Data
}

func slugs(result RunResult) []string {
	out := make([]string, len(result.Posts))
	for i, p := range result.Posts {
		out[i] = p.Name
	}
	return out
}

func TestRunNamedQuery(t *testing.T) {
	specsDir, dbPath := seedLibrary(t)

	stdout, _, err := executeCommand(t, "run", "books_by_title", "--specs", specsDir, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "dune")
	assert.Contains(t, stdout, "Persuasion")
	assert.Contains(t, stdout, "Page 1 of 1 (3 found)")
}

func TestRunMetaQueryJSON(t *testing.T) {
	specsDir, dbPath := seedLibrary(t)

	stdout, _, err := executeCommand(t, "run", "cheap_books", "--specs", specsDir, "--db", dbPath, "--format", "json")
	require.NoError(t, err)

	result := decodeRun(t, stdout)
	assert.Equal(t, "cheap_books", result.Query)
	assert.Equal(t, []string{"persuasion", "emma"}, slugs(result))
	assert.Equal(t, int64(2), result.Found)
	assert.Len(t, result.ArgsID, 64)
}

func TestRunPostTypeUsesItsPageSize(t *testing.T) {
	specsDir, dbPath := seedLibrary(t)

	stdout, _, err := executeCommand(t, "run", "--post-type", "book", "--specs", specsDir, "--db", dbPath,
		"--site-url", "https://lib.example", "--request", "/books/", "--format", "json")
	require.NoError(t, err)

	result := decodeRun(t, stdout)
	assert.Len(t, result.Posts, 2)
	assert.Equal(t, int64(3), result.Found)
	assert.Equal(t, int64(2), result.Pages)
	assert.Equal(t, int64(1), result.CurrentPage)
	assert.Equal(t, "https://lib.example/books/?page_num=2", result.NextURL)
	assert.Empty(t, result.PreviousURL)
}

func TestRunPaginateWithConfiguredPageSize(t *testing.T) {
	specsDir, dbPath := seedLibrary(t)

	stdout, _, err := executeCommand(t, "run", "books_by_title", "--specs", specsDir, "--db", dbPath,
		"--paginate", "--per-page", "2", "--request", "/books/?page_num=2", "--format", "json")
	require.NoError(t, err)

	result := decodeRun(t, stdout)
	assert.Equal(t, []string{"persuasion"}, slugs(result))
	assert.Equal(t, int64(2), result.CurrentPage)
	assert.Equal(t, "/books/", result.PreviousURL)
	assert.Empty(t, result.NextURL)
}

func TestRunEmptyStore(t *testing.T) {
	specsDir, _, _ := setupLibrary(t)
	dbPath := filepath.Join(t.TempDir(), "empty.db")

	stdout, _, err := executeCommand(t, "run", "books_by_title", "--specs", specsDir, "--db", dbPath, "--format", "json")
	require.NoError(t, err)

	result := decodeRun(t, stdout)
	assert.Empty(t, result.Posts)
	assert.NotNil(t, result.Posts)
	assert.Equal(t, int64(0), result.Found)
}

func TestRunUnsupportedClause(t *testing.T) {
	specsDir := filepath.Join(t.TempDir(), "specs")
	writeFile(t, filepath.Join(specsDir, "odd.cue"), `
package test

query: odd: {
	post_type: "post"
	meta: [{field: "color", compare: "~=", value: "red"}]
}
`)
	dbPath := filepath.Join(t.TempDir(), "site.db")

	_, _, err := executeCommand(t, "run", "odd", "--specs", specsDir, "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeQueryFailed)
}

func TestRunUnknownQuery(t *testing.T) {
	specsDir, dbPath := seedLibrary(t)

	_, _, err := executeCommand(t, "run", "missing", "--specs", specsDir, "--db", dbPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown query: missing")
}
