package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/looplang/pkg/lint"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !slices.Contains(ArithmeticModes, c.Arithmetic) {
		return fmt.Errorf("invalid arithmetic %q: must be one of %s", c.Arithmetic, strings.Join(ArithmeticModes, ", "))
	}
	if !slices.Contains(OutputModes, c.OutputFormat) {
		return fmt.Errorf("invalid output %q: must be one of %s", c.OutputFormat, strings.Join(OutputModes, ", "))
	}
	if c.History && c.StatePath == "" {
		return fmt.Errorf("state_path is required when history is enabled")
	}
	if _, err := c.LintRules(); err != nil {
		return fmt.Errorf("invalid lint config: %w", err)
	}
	return nil
}

// LintRules builds the analyzer configuration from the lint section.
func (c *Config) LintRules() (*lint.Config, error) {
	return lint.NewConfigFrom(c.Lint.Disable, c.Lint.Severity)
}
