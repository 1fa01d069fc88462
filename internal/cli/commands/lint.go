package commands

import (
	"fmt"
	"os"
	"runtime"

	"github.com/leapstack-labs/looplang/internal/cli/output"
	"github.com/leapstack-labs/looplang/pkg/lint"
	"github.com/leapstack-labs/looplang/pkg/parser"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// LintOptions holds options for the lint command.
type LintOptions struct {
	Fix bool
}

// lintResult is the outcome of linting one file.
type lintResult struct {
	file     string
	src      string
	err      error // read or parse error
	diags    []lint.Diagnostic
	fixed    int
	writeErr error
}

// NewLintCommand creates the lint command.
func NewLintCommand() *cobra.Command {
	opts := &LintOptions{}

	cmd := &cobra.Command{
		Use:   "lint <file>...",
		Short: "Report suspicious constructs in programs",
		Long: `Run the lint rules over one or more LoopLang programs.

Rules:
  LL01  loop bound variable reassigned inside the loop
  LL02  loop bound is the literal 0
  LL03  empty loop body
  LL04  assignment leaves the variable unchanged
  LL05  variable read but never assigned

Rules can be disabled or re-graded in looplang.yaml under lint.disable and
lint.severity. With --fix, available fixes are applied in place. The command
fails if any error or warning remains.`,
		Example: `  # Lint every program in a directory
  looplang lint examples/*.loop

  # Remove dead loops and no-op assignments
  looplang lint --fix prog.loop`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Fix, "fix", false, "Apply available fixes in place")
	return cmd
}

func runLint(cmd *cobra.Command, files []string, opts *LintOptions) error {
	cc := NewCommandContext(cmd)
	rules, err := cc.Cfg.LintRules()
	if err != nil {
		return err
	}
	analyzer := lint.NewAnalyzer(rules)

	results := make([]*lintResult, len(files))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		g.Go(func() error {
			results[i] = lintFile(analyzer, file, opts.Fix)
			return nil
		})
	}
	_ = g.Wait()

	r := cc.Renderer
	jsonMode := r.EffectiveMode() == output.ModeJSON
	var findings []output.Finding
	failed := false
	for _, res := range results {
		if res.writeErr != nil {
			return fmt.Errorf("failed to write %s: %w", res.file, res.writeErr)
		}
		if res.err != nil {
			failed = true
			if jsonMode {
				d := output.NewDiagnostic(res.file, res.err)
				findings = append(findings, output.Finding{
					File: d.File, Line: d.Line, Column: d.Column,
					Rule: "syntax", Severity: lint.SeverityError.String(), Message: d.Message,
				})
			} else {
				r.Diagnostic(res.file, res.src, res.err)
			}
			continue
		}
		if res.fixed > 0 && !jsonMode {
			r.Muted(fmt.Sprintf("%s: applied %d fixes", res.file, res.fixed))
		}
		for _, d := range res.diags {
			if d.Severity <= lint.SeverityWarning {
				failed = true
			}
			findings = append(findings, output.Finding{
				File:     res.file,
				Line:     d.Pos.Line,
				Column:   d.Pos.Column,
				Rule:     d.RuleID,
				Severity: d.Severity.String(),
				Message:  d.Message,
			})
		}
	}

	if err := r.Findings(findings); err != nil {
		return err
	}
	cc.Logger.Debug("lint finished", "files", len(files), "findings", len(findings))
	if failed {
		return ErrReported
	}
	return nil
}

// lintFile analyzes one file, applying and re-analyzing when fix is set.
func lintFile(analyzer *lint.Analyzer, file string, fix bool) *lintResult {
	res := &lintResult{file: file}
	data, err := os.ReadFile(file)
	if err != nil {
		res.err = err
		return res
	}
	res.src = string(data)

	prog, err := parser.Parse(res.src)
	if err != nil {
		res.err = err
		return res
	}
	res.diags = analyzer.Analyze(prog)
	if !fix {
		return res
	}

	for {
		fixed, n := lint.ApplyFixes(res.src, res.diags)
		if n == 0 {
			break
		}
		prog, err := parser.Parse(fixed)
		if err != nil {
			// A fix that breaks the program is not applied
			break
		}
		res.src = fixed
		res.fixed += n
		res.diags = analyzer.Analyze(prog)
	}
	if res.fixed > 0 {
		info, err := os.Stat(file)
		if err != nil {
			res.writeErr = err
			return res
		}
		res.writeErr = os.WriteFile(file, []byte(res.src), info.Mode().Perm())
	}
	return res
}
