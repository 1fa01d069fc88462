// Package commands implements the looplang subcommands.
package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/looplang/internal/cli/config"
	"github.com/leapstack-labs/looplang/internal/cli/output"
	"github.com/leapstack-labs/looplang/internal/state"
	"github.com/leapstack-labs/looplang/pkg/interp"
	"github.com/spf13/cobra"
)

// ErrReported is returned by commands that already printed their errors as
// diagnostics; the caller should exit non-zero without printing again.
var ErrReported = errors.New("errors reported")

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext builds a CommandContext from the command's context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := config.GetConfig(cmd.Context())
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// OpenHistory opens and migrates the run history database.
// Returns the store and a cleanup function that must be called (typically via defer).
func (cc *CommandContext) OpenHistory() (state.Store, func(), error) {
	store, err := state.OpenAndMigrate(cc.Cfg.StatePath, cc.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open run history: %w", err)
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			cc.Logger.Warn("failed to close run history", "error", err)
		}
	}
	return store, cleanup, nil
}

// Arithmetic returns the configured arithmetic mode.
func (cc *CommandContext) Arithmetic() (interp.Arithmetic, error) {
	return interp.ParseArithmetic(cc.Cfg.Arithmetic)
}

// InterpOptions returns the evaluator options implied by the configuration.
// Print output goes to the renderer's writer and traces to its error writer.
func (cc *CommandContext) InterpOptions() ([]interp.Option, error) {
	arith, err := cc.Arithmetic()
	if err != nil {
		return nil, err
	}
	opts := []interp.Option{
		interp.WithLogger(cc.Logger),
		interp.WithArithmetic(arith),
		interp.WithOutput(cc.Renderer.Writer()),
	}
	if cc.Cfg.Trace {
		opts = append(opts, interp.WithTracer(interp.NewWriterTracer(cc.Renderer.ErrWriter())))
	}
	return opts, nil
}
