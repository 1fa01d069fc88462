// Package lint provides static checks for LoopLang programs.
//
// # Rules
//
// Rules are data-driven RuleDef values registered from init():
//
//   - LL01 loop.bound-reassigned: the loop bound variable is assigned in the body
//   - LL02 loop.zero-bound: the bound is the literal 0
//   - LL03 loop.empty-body: the body has no statements
//   - LL04 assign.self: the assignment leaves its target unchanged
//   - LL05 vars.never-assigned: a variable is read but never assigned
//
// # Using the Analyzer
//
//	config := lint.NewConfig()
//	config.Disable("LL05")
//	config.SetSeverity("LL01", lint.SeverityError)
//	diags := lint.NewAnalyzer(config).Analyze(prog)
//
// Diagnostics may carry Fixes, which editors surface as quick fixes and
// ApplyFixes applies to source text.
package lint
