package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/leapstack-labs/looplang/pkg/format"
	"github.com/spf13/cobra"
)

// FmtOptions holds options for the fmt command.
type FmtOptions struct {
	Write bool
	Check bool
}

// NewFmtCommand creates the fmt command.
func NewFmtCommand() *cobra.Command {
	opts := &FmtOptions{}

	cmd := &cobra.Command{
		Use:   "fmt [file]...",
		Short: "Format programs in canonical style",
		Long: `Reformat LoopLang programs: lowercase keywords, ":=" assignments, two-space
indentation, one statement per line. Comments are kept.

Without flags the formatted program is printed. With --write files are
rewritten in place; with --check the names of files that are not formatted are
listed and the command fails.`,
		Example: `  # Print the formatted program
  looplang fmt double.loop

  # Rewrite files in place
  looplang fmt -w examples/*.loop

  # Fail in CI when a file is not formatted
  looplang fmt --check examples/*.loop`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Write, "write", "w", false, "Write the result to the source file")
	cmd.Flags().BoolVarP(&opts.Check, "check", "c", false, "List files whose formatting differs and fail")
	cmd.MarkFlagsMutuallyExclusive("write", "check")

	return cmd
}

func runFmt(cmd *cobra.Command, args []string, opts *FmtOptions) error {
	cc := NewCommandContext(cmd)
	r := cc.Renderer

	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		if opts.Write {
			return errors.New("--write requires file arguments")
		}
		args = nil
	}
	if args == nil {
		name, src, err := readSource(cmd.InOrStdin(), nil)
		if err != nil {
			return err
		}
		return fmtOne(cc, name, src, opts)
	}

	var failed bool
	for _, file := range args {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read program: %w", err)
		}
		if err := fmtOne(cc, file, string(data), opts); err != nil {
			if !errors.Is(err, ErrReported) {
				return err
			}
			failed = true
		}
	}
	if failed {
		return ErrReported
	}
	if opts.Write {
		r.Muted(fmt.Sprintf("%d files processed", len(args)))
	}
	return nil
}

func fmtOne(cc *CommandContext, name, src string, opts *FmtOptions) error {
	r := cc.Renderer
	formatted, err := format.Source(src)
	if err != nil {
		r.Diagnostic(name, src, err)
		return ErrReported
	}

	switch {
	case opts.Check:
		if formatted != src {
			r.Println(name)
			return ErrReported
		}
	case opts.Write:
		if formatted == src {
			return nil
		}
		info, err := os.Stat(name)
		if err != nil {
			return err
		}
		if err := os.WriteFile(name, []byte(formatted), info.Mode().Perm()); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		cc.Logger.Debug("formatted", "file", name)
	default:
		r.Printf("%s", formatted)
	}
	return nil
}
