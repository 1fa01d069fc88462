package lint

import (
	"sort"

	"github.com/leapstack-labs/looplang/pkg/ast"
)

// Analyzer runs lint rules against parsed programs.
type Analyzer struct {
	config *Config
}

// NewAnalyzer creates a new analyzer with optional configuration.
func NewAnalyzer(config *Config) *Analyzer {
	if config == nil {
		config = NewConfig()
	}
	return &Analyzer{config: config}
}

// Analyze runs every enabled rule against the program. Diagnostics are
// ordered by position, then by rule ID.
func (a *Analyzer) Analyze(prog *ast.Program) []Diagnostic {
	if prog == nil {
		return nil
	}

	var diagnostics []Diagnostic
	for _, rule := range GetAll() {
		if a.config.IsDisabled(rule.ID) {
			continue
		}

		diags := rule.Check(prog)
		for i := range diags {
			diags[i].RuleID = rule.ID
			diags[i].Severity = a.config.GetSeverity(rule.ID, rule.Severity)
		}
		diagnostics = append(diagnostics, diags...)
	}

	sort.SliceStable(diagnostics, func(i, j int) bool {
		pi, pj := diagnostics[i].Pos, diagnostics[j].Pos
		if pi.Offset != pj.Offset {
			return pi.Offset < pj.Offset
		}
		return diagnostics[i].RuleID < diagnostics[j].RuleID
	})
	return diagnostics
}
