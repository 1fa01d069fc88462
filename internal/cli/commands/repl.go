package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/looplang/pkg/interp"
	"github.com/leapstack-labs/looplang/pkg/parser"
	"github.com/leapstack-labs/looplang/pkg/token"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	replName         = "<repl>"
	replPrompt       = "looplang> "
	replContinuation = "     ...> "
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Long: `Start an interactive LoopLang session.

Variables persist between inputs. A loop may span several lines; the prompt
changes until its "end" is entered. Changed variables are shown after each
input.

When standard input is not a terminal, lines are read without prompts.`,
		Example: `  looplang repl --set x=3`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd, opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Sets, "set", nil, "Initial value as name=value (repeatable)")
	cmd.Flags().StringVarP(&opts.Bindings, "bindings", "b", "", "YAML file of initial values")

	return cmd
}

func runREPL(cmd *cobra.Command, opts *RunOptions) error {
	cc := NewCommandContext(cmd)
	bindings, err := collectBindings(opts.Bindings, opts.Sets)
	if err != nil {
		return err
	}
	session, err := newREPLSession(cc, bindings)
	if err != nil {
		return err
	}

	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return session.interactive()
	}
	return session.scan(cmd.InOrStdin())
}

// replSession holds the state shared by successive REPL inputs.
type replSession struct {
	cc      *CommandContext
	store   *interp.Store
	interp  *interp.Interpreter
	pending strings.Builder
}

func newREPLSession(cc *CommandContext, bindings map[string]*big.Int) (*replSession, error) {
	opts, err := cc.InterpOptions()
	if err != nil {
		return nil, err
	}
	store, err := interp.NewStoreFrom(bindings)
	if err != nil {
		return nil, err
	}
	return &replSession{
		cc:     cc,
		store:  store,
		interp: interp.New(opts...),
	}, nil
}

func (s *replSession) interactive() error {
	historyFile := s.cc.Cfg.HistoryFile
	if historyFile != "" {
		if err := os.MkdirAll(filepath.Dir(historyFile), 0750); err != nil {
			s.cc.Logger.Warn("REPL history disabled", "error", err)
			historyFile = ""
		}
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    s.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	r := s.cc.Renderer
	r.Println("LoopLang REPL (arithmetic: " + string(s.interp.Arithmetic()) + ")")
	r.Println("Type .help for commands, .quit to exit")
	r.Println()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			s.pending.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		more, quit := s.feed(line)
		if quit {
			return nil
		}
		if more {
			rl.SetPrompt(replContinuation)
		} else {
			rl.SetPrompt(replPrompt)
		}
	}
}

func (s *replSession) scan(in io.Reader) error {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if _, quit := s.feed(sc.Text()); quit {
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	if s.pending.Len() > 0 {
		// Report the incomplete program.
		s.eval(true)
	}
	return nil
}

// feed handles one input line. more reports that the input so far is an
// incomplete program awaiting further lines.
func (s *replSession) feed(line string) (more, quit bool) {
	trimmed := strings.TrimSpace(line)
	if s.pending.Len() == 0 {
		if trimmed == "" {
			return false, false
		}
		if strings.HasPrefix(trimmed, ".") {
			return false, s.dotCommand(trimmed)
		}
	}
	s.pending.WriteString(line)
	s.pending.WriteByte('\n')
	return s.eval(false), false
}

// eval parses and runs the pending input. Unless final, an input that ends
// too early is kept pending and eval returns true.
func (s *replSession) eval(final bool) bool {
	src := s.pending.String()
	prog, err := parser.Parse(src)
	if err != nil {
		var perr *parser.ParseError
		if !final && errors.As(err, &perr) && perr.Found.Type == token.EOF {
			return true
		}
		s.pending.Reset()
		s.cc.Renderer.Diagnostic(replName, src, err)
		return false
	}
	s.pending.Reset()

	before := s.store.Snapshot()
	if err := s.interp.Execute(prog, s.store); err != nil {
		s.cc.Renderer.Diagnostic(replName, src, err)
	}
	s.showChanges(before)
	return false
}

// showChanges prints every variable whose value differs from before.
func (s *replSession) showChanges(before map[string]*big.Int) {
	for _, name := range s.store.Names() {
		v := s.store.Get(name)
		if old, ok := before[name]; ok && old.Cmp(v) == 0 {
			continue
		}
		s.cc.Renderer.Printf("%s = %s\n", name, v)
	}
}

// dotCommand runs a REPL command and reports whether the session should end.
func (s *replSession) dotCommand(line string) bool {
	r := s.cc.Renderer
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(r.Writer())

	case ".vars":
		if err := r.Bindings(s.store.Snapshot()); err != nil {
			r.Error(err.Error())
		}

	case ".reset":
		s.store.Reset()
		r.Muted("All variables cleared.")

	case ".set":
		if len(parts) != 3 {
			r.Error("usage: .set <name> <value>")
			return false
		}
		v, err := parseValue(parts[1], parts[2])
		if err == nil {
			err = s.store.Bind(parts[1], v)
		}
		if err != nil {
			r.Error(err.Error())
			return false
		}
		r.Printf("%s = %s\n", parts[1], v)

	default:
		r.Error(fmt.Sprintf("unknown command: %s (type .help for commands)", command))
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `Commands:
  .help                Show this help message
  .vars                Show all variables
  .set <name> <value>  Assign a variable
  .reset               Clear all variables
  .quit / .exit        Exit the REPL

Tips:
  - A loop continues over several lines until its "end"
  - Use arrow keys to navigate history
  - Tab completion works for keywords and variable names`
	_, _ = fmt.Fprintln(w, help)
}

// completer completes dot-commands, keywords and the current variables.
func (s *replSession) completer() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".vars"),
		readline.PcItem(".set", readline.PcItemDynamic(func(string) []string {
			return s.store.Names()
		})),
		readline.PcItem(".reset"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
		readline.PcItemDynamic(func(string) []string {
			return completionNames(s.store.Names())
		}),
	)
}
