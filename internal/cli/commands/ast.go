package commands

import (
	"github.com/leapstack-labs/looplang/pkg/ast"
	"github.com/leapstack-labs/looplang/pkg/parser"
	"github.com/spf13/cobra"
)

// NewASTCommand creates the ast command.
func NewASTCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ast [file]",
		Short: "Print the syntax tree of a program",
		Long: `Parse a program and print its syntax tree, one node per line with the
node's source position.

Reads standard input when the file is omitted or "-".`,
		Example: `  looplang ast double.loop`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			name, src, err := readSource(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			prog, err := parser.Parse(src)
			if err != nil {
				cc.Renderer.Diagnostic(name, src, err)
				return ErrReported
			}
			return ast.Dump(cc.Renderer.Writer(), prog)
		},
	}
	return cmd
}
