package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/leapstack-labs/looplang/internal/cli/output"
	"github.com/leapstack-labs/looplang/internal/state"
	"github.com/leapstack-labs/looplang/pkg/interp"
	"github.com/leapstack-labs/looplang/pkg/parser"
	"github.com/spf13/cobra"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	Sets     []string
	Bindings string
	Watch    bool
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Run a LoopLang program",
		Long: `Parse and execute a LoopLang program, then print the final variable values.

The program is read from the file argument, or from standard input when the
argument is omitted or "-". Initial values come from a YAML bindings file and
from --set flags; flags take precedence. Unassigned variables read as 0.

Each run is recorded in the run history unless history is disabled.`,
		Example: `  # Run a program with x = 3
  looplang run double.loop --set x=3

  # Read initial values from a file
  looplang run double.loop --bindings vars.yaml

  # Run from standard input with JSON output
  echo 'loop 3 do y := y + 2 end' | looplang run -o json

  # Re-run every time the file is saved
  looplang run double.loop --set x=3 --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args, opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Sets, "set", nil, "Initial value as name=value (repeatable)")
	cmd.Flags().StringVarP(&opts.Bindings, "bindings", "b", "", "YAML file of initial values")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-run when the program file changes")

	return cmd
}

func runRun(cmd *cobra.Command, args []string, opts *RunOptions) error {
	cc := NewCommandContext(cmd)

	if opts.Watch && (len(args) == 0 || args[0] == "-") {
		return errors.New("--watch requires a program file")
	}

	bindings, err := collectBindings(opts.Bindings, opts.Sets)
	if err != nil {
		return err
	}

	runOnce := func() error {
		name, src, err := readSource(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}
		return executeSource(cmd.Context(), cc, name, src, bindings)
	}

	err = runOnce()
	if !opts.Watch {
		return err
	}
	if err != nil && !errors.Is(err, ErrReported) {
		cc.Renderer.Error(err.Error())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	return watchAndRun(ctx, cc, args[0], runOnce)
}

type statsView struct {
	Statements int64 `json:"statements"`
	Iterations int64 `json:"iterations"`
	Prints     int64 `json:"prints"`
	MaxDepth   int   `json:"max_depth"`
}

type runResult struct {
	RunID    string              `json:"run_id,omitempty"`
	Output   []string            `json:"output"`
	Bindings map[string]*big.Int `json:"bindings"`
	Stats    statsView           `json:"stats"`
}

// executeSource parses and runs src, renders the outcome and records it in
// the run history.
func executeSource(ctx context.Context, cc *CommandContext, name, src string, bindings map[string]*big.Int) error {
	r := cc.Renderer
	run := &state.Run{
		Source:     name,
		SourceHash: state.HashSource(src),
		Program:    src,
		Arithmetic: cc.Cfg.Arithmetic,
		Inputs:     decimals(bindings),
		StartedAt:  time.Now(),
	}

	prog, err := parser.Parse(src)
	if err != nil {
		run.Status = state.RunStatusFailed
		run.Error = err.Error()
		recordRun(ctx, cc, run)
		r.Diagnostic(name, src, err)
		return ErrReported
	}

	opts, err := cc.InterpOptions()
	if err != nil {
		return err
	}
	jsonMode := r.EffectiveMode() == output.ModeJSON
	var printed bytes.Buffer
	if jsonMode {
		opts = append(opts, interp.WithOutput(&printed))
	}

	store, err := interp.NewStoreFrom(bindings)
	if err != nil {
		run.Status = state.RunStatusFailed
		run.Error = err.Error()
		recordRun(ctx, cc, run)
		r.Diagnostic(name, src, err)
		return ErrReported
	}
	in := interp.New(opts...)
	err = in.Execute(prog, store)
	stats := in.Stats()

	run.Duration = time.Since(run.StartedAt)
	run.Statements = stats.Statements
	run.Iterations = stats.Iterations
	if err != nil {
		run.Status = state.RunStatusFailed
		run.Error = err.Error()
	} else {
		run.Status = state.RunStatusSuccess
		run.Outputs = decimals(store.Snapshot())
	}
	recordRun(ctx, cc, run)

	cc.Logger.Debug("program finished",
		"source", name,
		"statements", stats.Statements,
		"iterations", stats.Iterations,
		"duration", run.Duration)

	if err != nil {
		r.Diagnostic(name, src, err)
		return ErrReported
	}

	if jsonMode {
		return r.JSON(runResult{
			RunID:    run.ID,
			Output:   splitLines(printed.String()),
			Bindings: store.Snapshot(),
			Stats: statsView{
				Statements: stats.Statements,
				Iterations: stats.Iterations,
				Prints:     stats.Prints,
				MaxDepth:   stats.MaxDepth,
			},
		})
	}
	if err := r.Bindings(store.Snapshot()); err != nil {
		return err
	}
	if r.EffectiveMode() == output.ModeTable {
		r.Muted(fmt.Sprintf("%d statements, %d iterations in %s",
			stats.Statements, stats.Iterations, run.Duration.Round(time.Microsecond)))
	}
	return nil
}

// recordRun stores run in the history when enabled. Failures are logged and
// never fail the command.
func recordRun(ctx context.Context, cc *CommandContext, run *state.Run) {
	if !cc.Cfg.History {
		return
	}
	store, cleanup, err := cc.OpenHistory()
	if err != nil {
		cc.Logger.Warn("run history unavailable", "error", err)
		return
	}
	defer cleanup()
	if err := store.RecordRun(ctx, run); err != nil {
		cc.Logger.Warn("failed to record run", "error", err)
		return
	}
	cc.Logger.Debug("run recorded", "id", run.ID)
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}
