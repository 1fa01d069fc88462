package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/looplang/internal/cli/commands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runRoot executes the root command in a fresh working directory.
func runRoot(t *testing.T, dir, stdin string, args ...string) (string, string, error) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err = root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRoot_Subcommands(t *testing.T) {
	root := NewRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"run", "check", "tokens", "ast", "fmt", "repl", "history", "lint", "rules", "lsp", "version", "completion"} {
		assert.Contains(t, names, want)
	}
	for _, flag := range []string{"config", "arithmetic", "output", "verbose", "state", "history", "history-file", "trace"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestRoot_Run(t *testing.T) {
	dir := t.TempDir()
	stdout, _, err := runRoot(t, dir, "loop x do y := y + 2 end", "run", "--set", "x=3", "-o", "text")
	require.NoError(t, err)
	assert.Equal(t, "x = 3\ny = 6\n", stdout)
	// History goes to the default location under the working directory.
	assert.FileExists(t, filepath.Join(dir, ".looplang", "state.db"))
}

func TestRoot_RunNoHistory(t *testing.T) {
	dir := t.TempDir()
	_, _, err := runRoot(t, dir, "x := 1", "run", "--history=false")
	require.NoError(t, err)
	assert.NoDirExists(t, filepath.Join(dir, ".looplang"))
}

func TestRoot_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := "arithmetic: uint256\noutput: json\nstate_path: runs/history.db\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "looplang.yaml"), []byte(cfg), 0o644))

	maxWord := "115792089237316195423570985008687907853269984665640564039457584007913129639935"
	stdout, stderr, err := runRoot(t, dir, "y := x + 1", "run", "--set", "x="+maxWord)
	require.ErrorIs(t, err, commands.ErrReported)
	assert.Contains(t, stdout, `"message"`)
	assert.Contains(t, stdout, "overflow")
	assert.Empty(t, stderr)
	assert.FileExists(t, filepath.Join(dir, "runs", "history.db"))
}

func TestRoot_FlagOverridesConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "looplang.yaml"), []byte("output: json\n"), 0o644))

	stdout, _, err := runRoot(t, dir, "x := 1", "run", "-o", "text", "--history=false")
	require.NoError(t, err)
	assert.Equal(t, "x = 1\n", stdout)
}

func TestRoot_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	_, _, err := runRoot(t, dir, "x := 1", "run", "--arithmetic", "float")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "arithmetic")
}

func TestRoot_CheckJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.loop"), []byte("x := 1\n"), 0o644))

	stdout, _, err := runRoot(t, dir, "", "check", "-o", "json", "a.loop")
	require.NoError(t, err)
	var results []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "a.loop", results[0]["file"])
}

func TestRoot_Completion(t *testing.T) {
	stdout, _, err := runRoot(t, t.TempDir(), "", "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, stdout, "looplang")
}

func TestRoot_Version(t *testing.T) {
	stdout, _, err := runRoot(t, t.TempDir(), "", "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "looplang v"+Version)
}
