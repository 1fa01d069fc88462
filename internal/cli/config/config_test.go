package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/looplang/pkg/lint"
)

// newFlagSet mirrors the root command's persistent flags.
func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("arithmetic", "", "")
	fs.StringP("output", "o", "", "")
	fs.BoolP("verbose", "v", false, "")
	fs.String("state", "", "")
	fs.Bool("history", true, "")
	fs.String("history-file", "", "")
	fs.Bool("trace", false, "")
	return fs
}

// chdir switches to dir for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadConfig_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultArithmetic, cfg.Arithmetic)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, DefaultStateFile, cfg.StatePath)
	assert.Equal(t, DefaultHistoryFile, cfg.HistoryFile)
	assert.True(t, cfg.History)
	assert.False(t, cfg.Verbose)
	assert.False(t, cfg.Trace)
	assert.Empty(t, cfg.ConfigFile)
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "looplang.yaml"), []byte(`
arithmetic: uint256
output: json
state_path: data/runs.db
trace: true
`), 0o600))

	t.Run("file overrides defaults", func(t *testing.T) {
		cfg, err := LoadConfig("", newFlagSet())
		require.NoError(t, err)
		assert.Equal(t, "uint256", cfg.Arithmetic)
		assert.Equal(t, "json", cfg.OutputFormat)
		assert.True(t, cfg.Trace)
		assert.Equal(t, "looplang.yaml", cfg.ConfigFile)
		assert.Equal(t, filepath.Join(dir, "data", "runs.db"), cfg.StatePath, "resolved against the config file")
	})

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("LOOPLANG_OUTPUT", "text")
		t.Setenv("LOOPLANG_HISTORY", "false")

		cfg, err := LoadConfig("", newFlagSet())
		require.NoError(t, err)
		assert.Equal(t, "text", cfg.OutputFormat)
		assert.False(t, cfg.History)
		assert.Equal(t, "uint256", cfg.Arithmetic)
	})

	t.Run("flags override env", func(t *testing.T) {
		t.Setenv("LOOPLANG_OUTPUT", "text")

		fs := newFlagSet()
		require.NoError(t, fs.Parse([]string{"--output", "table", "--arithmetic=big", "--state", "other.db"}))

		cfg, err := LoadConfig("", fs)
		require.NoError(t, err)
		assert.Equal(t, "table", cfg.OutputFormat)
		assert.Equal(t, "big", cfg.Arithmetic)
		assert.Equal(t, "other.db", cfg.StatePath, "flag paths are left relative to the working directory")
	})

	t.Run("unset flags do not override", func(t *testing.T) {
		cfg, err := LoadConfig("", newFlagSet())
		require.NoError(t, err)
		assert.Equal(t, "json", cfg.OutputFormat)
	})
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	chdir(t, t.TempDir())
	other := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(other, []byte("verbose: true\nhistory_file: hist\n"), 0o600))

	cfg, err := LoadConfig(other, nil)
	require.NoError(t, err)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, other, cfg.ConfigFile)
	assert.Equal(t, filepath.Join(filepath.Dir(other), "hist"), cfg.HistoryFile)
}

func TestLoadConfig_LintSection(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "looplang.yaml"), []byte(`
lint:
  disable: [LL05]
  severity:
    LL01: error
`), 0o600))

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"LL05"}, cfg.Lint.Disable)

	rules, err := cfg.LintRules()
	require.NoError(t, err)
	assert.True(t, rules.IsDisabled("LL05"))
	assert.Equal(t, lint.SeverityError, rules.GetSeverity("LL01", lint.SeverityWarning))
}

func TestLoadConfig_Errors(t *testing.T) {
	chdir(t, t.TempDir())

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := LoadConfig("does-not-exist.yaml", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error reading config file")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("output: [unclosed"), 0o600))
		_, err := LoadConfig(path, nil)
		assert.Error(t, err)
	})

	t.Run("invalid arithmetic", func(t *testing.T) {
		t.Setenv("LOOPLANG_ARITHMETIC", "float")
		_, err := LoadConfig("", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `invalid arithmetic "float"`)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		errSubstr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"uint256", func(c *Config) { c.Arithmetic = "uint256" }, ""},
		{"bad arithmetic", func(c *Config) { c.Arithmetic = "int64" }, "invalid arithmetic"},
		{"bad output", func(c *Config) { c.OutputFormat = "markdown" }, "invalid output"},
		{"history without state", func(c *Config) { c.StatePath = "" }, "state_path is required"},
		{"no history, no state", func(c *Config) { c.StatePath = ""; c.History = false }, ""},
		{"lint overrides", func(c *Config) { c.Lint.Disable = []string{"LL05"} }, ""},
		{"unknown lint rule", func(c *Config) { c.Lint.Disable = []string{"ZZ01"} }, `unknown lint rule "ZZ01"`},
		{"bad lint severity", func(c *Config) { c.Lint.Severity = map[string]string{"LL01": "fatal"} }, "invalid severity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestContextAccessors(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, Default(), GetConfig(ctx))
	assert.NotNil(t, GetLogger(ctx))

	cfg := &Config{Arithmetic: "uint256"}
	ctx = WithConfig(ctx, cfg)
	assert.Same(t, cfg, GetConfig(ctx))

	var buf bytes.Buffer
	logger := NewLogger(&buf, true)
	ctx = WithLogger(ctx, logger)
	GetLogger(ctx).Debug("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestNewLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, false).Info("quiet")
	assert.Empty(t, buf.String())

	NewLogger(&buf, false).Warn("loud")
	assert.Contains(t, buf.String(), "loud")
}
