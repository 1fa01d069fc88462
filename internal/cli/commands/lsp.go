package commands

import (
	"github.com/leapstack-labs/looplang/internal/lsp"
	"github.com/spf13/cobra"
)

// NewLSPCommand creates the lsp command.
func NewLSPCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start the LSP server for editor integration.

The server communicates over stdin/stdout using JSON-RPC. It publishes syntax
errors and lint findings, and answers completion, hover, go to definition,
formatting and quick fix requests. Lint rules follow the lint section of
looplang.yaml.`,
		Example: `  # Start LSP server (usually called by an editor)
  looplang lsp`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLSP(cmd, version)
		},
	}

	return cmd
}

func runLSP(cmd *cobra.Command, version string) error {
	cc := NewCommandContext(cmd)
	rules, err := cc.Cfg.LintRules()
	if err != nil {
		return err
	}
	server := lsp.NewServer(cmd.InOrStdin(), cmd.OutOrStdout(),
		lsp.WithLogger(cc.Logger),
		lsp.WithLintConfig(rules),
		lsp.WithVersion(version),
	)
	return server.Run()
}
