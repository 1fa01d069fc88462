package commands

import (
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/leapstack-labs/looplang/pkg/token"
	"gopkg.in/yaml.v3"
)

// StdinName is the display name of programs read from standard input.
const StdinName = "<stdin>"

// readSource reads the program named by args, or standard input when args is
// empty or "-".
func readSource(in io.Reader, args []string) (name, src string, err error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(in)
		if err != nil {
			return "", "", fmt.Errorf("failed to read standard input: %w", err)
		}
		return StdinName, string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("failed to read program: %w", err)
	}
	return args[0], string(data), nil
}

// parseValue parses a decimal natural number.
func parseValue(name, s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return nil, fmt.Errorf("binding %q: %q is not an integer", name, s)
	}
	return v, nil
}

// parseSetFlags parses repeated --set name=value flags.
func parseSetFlags(sets []string) (map[string]*big.Int, error) {
	out := make(map[string]*big.Int, len(sets))
	for _, s := range sets {
		name, value, ok := strings.Cut(s, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q: expected name=value", s)
		}
		v, err := parseValue(name, value)
		if err != nil {
			return nil, err
		}
		// Names are case-insensitive; a later --set of X overrides x.
		out[token.CanonicalName(name)] = v
	}
	return out, nil
}

// loadBindingsFile reads a YAML mapping of variable names to integers.
// Values are read as raw scalars so numbers wider than 64 bits survive.
func loadBindingsFile(path string) (map[string]*big.Int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bindings: %w", err)
	}
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse bindings %s: %w", path, err)
	}
	out := make(map[string]*big.Int, len(raw))
	for name, node := range raw {
		if node.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("binding %q in %s: expected a number", name, path)
		}
		v, err := parseValue(name, node.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		key := token.CanonicalName(name)
		if _, dup := out[key]; dup {
			return nil, fmt.Errorf("binding %q in %s: defined more than once (names are case-insensitive)", name, path)
		}
		out[key] = v
	}
	return out, nil
}

// collectBindings merges the bindings file with --set flags; flags win.
func collectBindings(file string, sets []string) (map[string]*big.Int, error) {
	bindings := map[string]*big.Int{}
	if file != "" {
		fromFile, err := loadBindingsFile(file)
		if err != nil {
			return nil, err
		}
		for k, v := range fromFile {
			bindings[k] = v
		}
	}
	fromFlags, err := parseSetFlags(sets)
	if err != nil {
		return nil, err
	}
	for k, v := range fromFlags {
		bindings[k] = v
	}
	return bindings, nil
}

// decimals renders bindings as decimal strings.
func decimals(vars map[string]*big.Int) map[string]string {
	out := make(map[string]string, len(vars))
	for k, v := range vars {
		out[k] = v.String()
	}
	return out
}

// completionNames returns keywords followed by names, for REPL completion.
func completionNames(names []string) []string {
	out := append([]string{}, token.Keywords()...)
	return append(out, names...)
}
