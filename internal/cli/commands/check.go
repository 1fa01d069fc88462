package commands

import (
	"fmt"
	"os"
	"runtime"

	"github.com/leapstack-labs/looplang/internal/cli/output"
	"github.com/leapstack-labs/looplang/pkg/ast"
	"github.com/leapstack-labs/looplang/pkg/parser"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// checkResult is the outcome of checking one file.
type checkResult struct {
	File       string             `json:"file"`
	OK         bool               `json:"ok"`
	Statements int                `json:"statements,omitempty"`
	LoopDepth  int                `json:"loop_depth,omitempty"`
	Variables  []string           `json:"variables,omitempty"`
	Diagnostic *output.Diagnostic `json:"diagnostic,omitempty"`
	src        string
	err        error
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Check programs for syntax errors",
		Long: `Parse one or more LoopLang programs without running them.

Files are checked concurrently. Every error is reported with its position and
the command fails if any file does not parse.`,
		Example: `  # Check every program in a directory
  looplang check examples/*.loop`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args)
		},
	}
	return cmd
}

func runCheck(cmd *cobra.Command, files []string) error {
	cc := NewCommandContext(cmd)
	results := checkFiles(files)

	failed := 0
	for _, res := range results {
		if !res.OK {
			failed++
		}
	}

	r := cc.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		if err := r.JSON(results); err != nil {
			return err
		}
	} else {
		for _, res := range results {
			if res.OK {
				r.Printf("%s: ok (%d statements, loop depth %d)\n", res.File, res.Statements, res.LoopDepth)
				continue
			}
			r.Diagnostic(res.File, res.src, res.err)
		}
		if len(files) > 1 {
			if failed == 0 {
				r.Success(fmt.Sprintf("%d files ok", len(files)))
			} else {
				r.Muted(fmt.Sprintf("%d of %d files failed", failed, len(files)))
			}
		}
	}

	cc.Logger.Debug("check finished", "files", len(files), "failed", failed)
	if failed > 0 {
		return ErrReported
	}
	return nil
}

// checkFiles parses files concurrently. Results are in argument order.
func checkFiles(files []string) []*checkResult {
	results := make([]*checkResult, len(files))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		g.Go(func() error {
			results[i] = checkFile(file)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func checkFile(file string) *checkResult {
	res := &checkResult{File: file}
	data, err := os.ReadFile(file)
	if err != nil {
		res.err = err
		d := output.NewDiagnostic(file, err)
		res.Diagnostic = &d
		return res
	}
	res.src = string(data)

	prog, err := parser.Parse(res.src)
	if err != nil {
		res.err = err
		d := output.NewDiagnostic(file, err)
		res.Diagnostic = &d
		return res
	}
	res.OK = true
	res.Statements = len(prog.Stmts)
	res.LoopDepth = ast.MaxLoopDepth(prog)
	res.Variables = ast.Variables(prog)
	return res
}
