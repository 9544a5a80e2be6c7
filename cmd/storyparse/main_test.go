package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STORYPARSE_CONFIG", filepath.Join(t.TempDir(), "config.toml"))
	root := newRootCmd()
	var out bytes.Buffer
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.Execute()
	return out.String(), err
}

type jsonResult struct {
	Input   string   `json:"input"`
	Objects []string `json:"objects"`
	Command *struct {
		Action string `json:"action"`
	} `json:"command"`
	Failure *struct {
		Kind string `json:"kind"`
	} `json:"failure"`
	Message string `json:"message"`
}

func decodeLines(t *testing.T, out string) []jsonResult {
	t.Helper()
	var results []jsonResult
	dec := json.NewDecoder(strings.NewReader(out))
	for dec.More() {
		var r jsonResult
		require.NoError(t, dec.Decode(&r))
		results = append(results, r)
	}
	return results
}

func TestVersionFlag(t *testing.T) {
	out, err := run(t, "", "--version")
	require.NoError(t, err)
	assert.Equal(t, "storyparse dev (none) unknown\n", out)
}

func TestParseCommand(t *testing.T) {
	out, err := run(t, "", "parse", "take", "lamp")
	require.NoError(t, err)
	results := decodeLines(t, out)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Command)
	assert.Equal(t, "take", results[0].Command.Action)
	assert.Equal(t, []string{"lamp"}, results[0].Objects)

	out, err = run(t, "", "parse", "take key")
	require.NoError(t, err)
	results = decodeLines(t, out)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Failure)
	assert.Equal(t, "ambiguous_choice", results[0].Failure.Kind)
	assert.Equal(t, "Which key do you mean, the brass key or the iron key?", results[0].Message)
}

func TestParseReadsStdin(t *testing.T) {
	out, err := run(t, "take lamp. drop coin\nxyzzy\n", "parse")
	require.NoError(t, err)
	results := decodeLines(t, out)
	require.Len(t, results, 3)
	assert.Equal(t, "take", results[0].Command.Action)
	assert.Equal(t, "drop", results[1].Command.Action)
	assert.Equal(t, []string{"coin"}, results[1].Objects)
	assert.Equal(t, "unknown_word", results[2].Failure.Kind)
}

func TestParseIgnoresTrailingTerminators(t *testing.T) {
	out, err := run(t, "look..\n.\n", "parse")
	require.NoError(t, err)
	results := decodeLines(t, out)
	require.Len(t, results, 2)
	assert.Equal(t, "look", results[0].Command.Action)
	assert.Equal(t, "empty", results[1].Failure.Kind)
}

func TestCheckCommand(t *testing.T) {
	out, err := run(t, "", "check")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "The Cellar: 12 objects, 14 verbs"), out)

	_, err = run(t, "", "check", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestConfigSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	out, err := run(t, "", "config", "--save", "--config", path, "--story", "cellar.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "# saved to "+path)
	assert.Contains(t, out, `story = "cellar.yaml"`)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `log_level = "warn"`)
}

func TestPlayCommand(t *testing.T) {
	out, err := run(t, "take lamp\nquit\n", "play", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "Taken.")
	assert.Contains(t, out, "Goodbye.")
}
