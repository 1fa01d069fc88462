package commands

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/looplang/internal/state"
	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command and its subcommands.
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded runs",
		Long: `Inspect the runs recorded by "looplang run".

Runs are stored in the SQLite database at state_path (--state). Recording can
be turned off with --history=false or history: false in looplang.yaml.`,
	}

	cmd.AddCommand(newHistoryListCommand())
	cmd.AddCommand(newHistoryShowCommand())
	cmd.AddCommand(newHistoryPruneCommand())

	return cmd
}

func newHistoryListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List recent runs",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			store, cleanup, err := cc.OpenHistory()
			if err != nil {
				return err
			}
			defer cleanup()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}
			return cc.Renderer.Runs(runs)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")
	return cmd
}

func newHistoryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one run",
		Long: `Show a recorded run: its program, initial values and final values.

The ID may be abbreviated to any unique prefix, such as the eight characters
shown by "history list".`,
		Example: `  looplang history show 0a1b2c3d`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			store, cleanup, err := cc.OpenHistory()
			if err != nil {
				return err
			}
			defer cleanup()

			run, err := store.GetRun(cmd.Context(), args[0])
			switch {
			case errors.Is(err, state.ErrRunNotFound):
				return fmt.Errorf("no run matches %q", args[0])
			case errors.Is(err, state.ErrAmbiguousID):
				return fmt.Errorf("run id %q is ambiguous, use more characters", args[0])
			case err != nil:
				return fmt.Errorf("failed to load run: %w", err)
			}
			return cc.Renderer.Run(run)
		},
	}
}

func newHistoryPruneCommand() *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if keep < 0 {
				return errors.New("--keep must not be negative")
			}
			cc := NewCommandContext(cmd)
			store, cleanup, err := cc.OpenHistory()
			if err != nil {
				return err
			}
			defer cleanup()

			n, err := store.PruneRuns(cmd.Context(), keep)
			if err != nil {
				return fmt.Errorf("failed to prune runs: %w", err)
			}
			cc.Renderer.Success(fmt.Sprintf("Deleted %d runs", n))
			return nil
		},
	}

	cmd.Flags().IntVar(&keep, "keep", 100, "Number of most recent runs to keep")
	return cmd
}
