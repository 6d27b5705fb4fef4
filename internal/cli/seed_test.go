package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedText(t *testing.T) {
	_, fixtures, dbPath := setupLibrary(t)

	stdout, _, err := executeCommand(t, "seed", fixtures, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ Seeded")
	assert.Contains(t, stdout, "1 user(s), 3 post(s), 3 meta, 3 term(s)")
}

func TestSeedJSON(t *testing.T) {
	_, fixtures, dbPath := setupLibrary(t)

	stdout, _, err := executeCommand(t, "seed", fixtures, "--db", dbPath, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   SeedResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, SeedResult{
		Database: dbPath,
		Fixtures: fixtures,
		Users:    1,
		Posts:    3,
		Meta:     3,
		Terms:    3,
	}, resp.Data)
}

func TestSeedMissingArgs(t *testing.T) {
	_, _, err := executeCommand(t, "seed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestSeedErrors(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "site.db")
	badFixtures := filepath.Join(tmpDir, "bad.yaml")
	writeFile(t, badFixtures, "posts:\n  - title: Dune\n    colour: red\n")

	tests := []struct {
		name     string
		fixtures string
		contains string
	}{
		{"missing file", filepath.Join(tmpDir, "missing.yaml"), "read fixtures"},
		{"unknown field", badFixtures, "colour"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := executeCommand(t, "seed", tt.fixtures, "--db", dbPath)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), ErrCodeWriteFailed)
			assert.Contains(t, stdout, tt.contains)
		})
	}
}
