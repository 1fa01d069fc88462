package commands

import (
	"github.com/leapstack-labs/looplang/pkg/parser"
	"github.com/spf13/cobra"
)

// NewTokensCommand creates the tokens command.
func NewTokensCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "Print the tokens of a program",
		Long: `Run the lexer over a program and list every token with its position.

Reads standard input when the file is omitted or "-".`,
		Example: `  looplang tokens double.loop
  echo 'x := 1' | looplang tokens -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			name, src, err := readSource(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			toks, err := parser.Tokenize(src)
			if err != nil {
				cc.Renderer.Diagnostic(name, src, err)
				return ErrReported
			}
			return cc.Renderer.Tokens(toks)
		},
	}
	return cmd
}
