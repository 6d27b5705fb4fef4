package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vanilla/internal/ir"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "vanilla", cmd.Use)
	assert.Contains(t, cmd.Long, "WP_Query")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"build", "validate", "seed", "run", "replay", "runs", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"config", "specs", "db", "site-url", "per-page"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestInvalidFormat(t *testing.T) {
	specsDir, _, _ := setupLibrary(t)

	_, _, err := executeCommand(t, "validate", specsDir, "--format", "xml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid format")
}

func TestConfigFileSuppliesDefaults(t *testing.T) {
	specsDir, _, _ := setupLibrary(t)
	cfgFile := filepath.Join(filepath.Dir(specsDir), "vanilla.yaml")
	writeFile(t, cfgFile, "specs_dir: specs\nformat: json\nsite_url: https://lib.example\n")

	stdout, _, err := executeCommand(t, "build", "books_by_title", "--config", cfgFile)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	specsDir, _, _ := setupLibrary(t)
	cfgFile := filepath.Join(filepath.Dir(specsDir), "vanilla.yaml")
	writeFile(t, cfgFile, "specs_dir: specs\nformat: json\n")

	stdout, _, err := executeCommand(t, "build", "books_by_title", "--config", cfgFile, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"post_type": "book"`)
}

func TestEnvironmentSelectsSpecsDir(t *testing.T) {
	specsDir, _, _ := setupLibrary(t)
	t.Setenv("VANILLA_SPECS_DIR", specsDir)

	stdout, _, err := executeCommand(t, "build", "books_by_title")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"title": "ASC"`)
}

func TestVersionFlag(t *testing.T) {
	stdout, _, err := executeCommand(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "vanilla version "+ir.Version)
}
