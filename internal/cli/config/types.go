// Package config provides configuration management for the looplang CLI.
//
// Values are layered with koanf, highest precedence first: explicitly set
// flags, LOOPLANG_* environment variables, looplang.yaml, defaults.
package config

// Config holds all CLI configuration options.
type Config struct {
	Arithmetic   string `koanf:"arithmetic"`   // big | uint256
	OutputFormat string `koanf:"output"`       // auto | text | table | json
	Verbose      bool   `koanf:"verbose"`      // debug logging
	StatePath    string `koanf:"state_path"`   // run history database
	History      bool   `koanf:"history"`      // record runs in StatePath
	HistoryFile  string `koanf:"history_file"` // REPL line history
	Trace        bool   `koanf:"trace"`        // trace execution to stderr

	Lint LintConfig `koanf:"lint"`

	// ConfigFile is the file the configuration was read from, if any.
	ConfigFile string `koanf:"-"`
}

// LintConfig selects lint rules and their severities.
type LintConfig struct {
	// Disable lists rule IDs to skip, e.g. ["LL05"]
	Disable []string `koanf:"disable"`
	// Severity maps rule ID to severity override (error, warning, info, hint)
	Severity map[string]string `koanf:"severity"`
}

// Default configuration values.
const (
	DefaultArithmetic  = "big"
	DefaultOutput      = "auto" // Auto-detect: TTY=table, non-TTY=text
	DefaultStateFile   = ".looplang/state.db"
	DefaultHistoryFile = ".looplang/repl_history"
	DefaultHistory     = true
)

// Output modes accepted by the output key.
var OutputModes = []string{"auto", "text", "table", "json"}

// ArithmeticModes accepted by the arithmetic key.
var ArithmeticModes = []string{"big", "uint256"}
