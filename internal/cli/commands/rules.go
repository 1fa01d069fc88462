package commands

import (
	"fmt"

	"github.com/leapstack-labs/looplang/pkg/lint"
	"github.com/spf13/cobra"
)

// RulesOptions holds options for the rules command.
type RulesOptions struct {
	Group string // Filter by group
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	opts := &RulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [rule-id]",
		Short: "List available lint rules",
		Long: `List the lint rules with their default severities.

Pass a rule ID to see its rationale and examples.`,
		Example: `  # List all rules
  looplang rules

  # Show details for a specific rule
  looplang rules LL01

  # List rules in the loop group
  looplang rules --group loop`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			if len(args) > 0 {
				rule, ok := lint.GetByID(args[0])
				if !ok {
					return fmt.Errorf("unknown rule %q", args[0])
				}
				return cc.Renderer.Rule(rule)
			}
			rules := lint.GetAll()
			if opts.Group != "" {
				rules = lint.GetByGroup(opts.Group)
			}
			return cc.Renderer.Rules(rules)
		},
	}

	cmd.Flags().StringVarP(&opts.Group, "group", "g", "", "Filter by group")
	return cmd
}
