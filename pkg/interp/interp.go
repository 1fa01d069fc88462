// Package interp evaluates LoopLang programs.
//
// The evaluator walks the AST with exhaustive type switches and mutates a
// Store. Every program terminates: a loop's iteration count is fixed when
// the loop is entered, so later assignments to the bound variable have no
// effect on the remaining iterations.
//
//	prog, _ := parser.Parse("x := 3; loop x do y := y + 2 end")
//	out, stats, err := interp.Run(prog, nil)
//	// out["y"] == 6, stats.Iterations == 3
package interp

import (
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"strings"

	"github.com/leapstack-labs/looplang/pkg/ast"
)

// Stats counts the work done by one execution.
type Stats struct {
	Statements int64 // statements executed, loops included
	Iterations int64 // loop body executions
	Prints     int64 // lines written by print
	MaxDepth   int   // deepest loop nesting reached
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger sets the logger. Loop entry and exit are logged at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(in *Interpreter) {
		if logger != nil {
			in.logger = logger
		}
	}
}

// WithOutput sets the writer print statements write to. The default
// discards output.
func WithOutput(w io.Writer) Option {
	return func(in *Interpreter) {
		if w != nil {
			in.out = w
		}
	}
}

// WithArithmetic selects the number representation.
func WithArithmetic(a Arithmetic) Option {
	return func(in *Interpreter) {
		in.mode = a
		in.arith = newArith(a)
	}
}

// WithTracer installs a tracer that observes every executed step.
func WithTracer(t Tracer) Option {
	return func(in *Interpreter) {
		in.tracer = t
	}
}

// Interpreter executes programs. An Interpreter carries configuration and
// the statistics of its most recent execution; it may be reused
// sequentially but not concurrently.
type Interpreter struct {
	logger *slog.Logger
	out    io.Writer
	mode   Arithmetic
	arith  arith
	tracer Tracer

	store *Store
	stats Stats
	depth int
}

// New returns an Interpreter configured by opts.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{
		logger: slog.New(slog.DiscardHandler),
		out:    io.Discard,
		mode:   ArithBig,
		arith:  bigArith{},
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Arithmetic returns the configured number representation.
func (in *Interpreter) Arithmetic() Arithmetic { return in.mode }

// Stats returns the statistics of the most recent execution.
func (in *Interpreter) Stats() Stats { return in.stats }

// Execute runs prog against store. On error the store holds the bindings
// made before the failing statement.
func (in *Interpreter) Execute(prog *ast.Program, store *Store) error {
	in.store = store
	in.stats = Stats{}
	in.depth = 0
	defer func() { in.store = nil }()

	if bits := in.arith.bits(); bits > 0 {
		for _, name := range store.Names() {
			if v := store.lookup(name); !in.arith.fits(v) {
				return &EvalError{Kind: Overflow, Name: name, Message: fmt.Sprintf(ErrTooWide, v, bits)}
			}
		}
	}
	return in.execStmts(prog.Stmts)
}

// Execute runs prog against store with a new Interpreter.
func Execute(prog *ast.Program, store *Store, opts ...Option) error {
	return New(opts...).Execute(prog, store)
}

// Run executes prog on a fresh store seeded with a copy of bindings and
// returns the final bindings. The caller's map is never modified.
func Run(prog *ast.Program, bindings map[string]*big.Int, opts ...Option) (map[string]*big.Int, Stats, error) {
	store, err := NewStoreFrom(bindings)
	if err != nil {
		return nil, Stats{}, err
	}
	in := New(opts...)
	if err := in.Execute(prog, store); err != nil {
		return nil, in.Stats(), err
	}
	return store.Snapshot(), in.Stats(), nil
}

func (in *Interpreter) execStmts(stmts []ast.Stmt) error {
	for _, stmt := range stmts {
		if err := in.execStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) execStmt(stmt ast.Stmt) error {
	in.stats.Statements++

	switch s := stmt.(type) {
	case *ast.AssignStmt:
		v, err := in.eval(s.Value)
		if err != nil {
			return err
		}
		in.store.set(s.Name, v)
		in.trace(Event{Kind: EventAssign, Pos: s.NamePos, Name: s.Name, Value: v})
		return nil

	case *ast.LoopStmt:
		return in.execLoop(s)

	case *ast.Block:
		return in.execStmts(s.Stmts)

	case *ast.PrintStmt:
		line, err := in.render(s)
		if err != nil {
			return err
		}
		in.stats.Prints++
		in.trace(Event{Kind: EventPrint, Pos: s.PrintPos, Text: line})
		if _, err := io.WriteString(in.out, line+"\n"); err != nil {
			return fmt.Errorf("print at %s: %w", s.PrintPos, err)
		}
		return nil

	default:
		panic(fmt.Sprintf("interp: unexpected statement type %T", stmt))
	}
}

func (in *Interpreter) execLoop(s *ast.LoopStmt) error {
	// The bound is captured once; the body may reassign the bound variable.
	bound, err := in.eval(s.Bound)
	if err != nil {
		return err
	}

	in.depth++
	defer func() { in.depth-- }()
	if in.depth > in.stats.MaxDepth {
		in.stats.MaxDepth = in.depth
	}

	in.logger.Debug("loop enter", "pos", s.LoopPos.String(), "count", bound.String(), "depth", in.depth)
	in.trace(Event{Kind: EventLoopEnter, Pos: s.LoopPos, Value: bound})

	i := new(big.Int)
	one := big.NewInt(1)
	for i.Cmp(bound) < 0 {
		i.Add(i, one)
		in.stats.Iterations++
		in.trace(Event{Kind: EventIteration, Pos: s.LoopPos, Value: i})
		if err := in.execStmts(s.Body.Stmts); err != nil {
			return err
		}
	}

	in.trace(Event{Kind: EventLoopExit, Pos: s.LoopPos})
	in.logger.Debug("loop exit", "pos", s.LoopPos.String(), "depth", in.depth)
	return nil
}

// eval returns a fresh value for expr.
func (in *Interpreter) eval(expr ast.Expr) (*big.Int, error) {
	switch e := expr.(type) {
	case *ast.Ident:
		return new(big.Int).Set(in.store.lookup(e.Name)), nil

	case *ast.Number:
		if !in.arith.fits(e.Value) {
			return nil, &EvalError{Kind: Overflow, Pos: e.ValuePos, Message: fmt.Sprintf(ErrTooWide, e.Literal, in.arith.bits())}
		}
		return new(big.Int).Set(e.Value), nil

	case *ast.BinaryExpr:
		left, err := in.eval(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := in.eval(e.Right)
		if err != nil {
			return nil, err
		}
		switch e.Op {
		case ast.OpAdd:
			sum, ok := in.arith.add(left, right)
			if !ok {
				return nil, &EvalError{
					Kind:    Overflow,
					Pos:     e.OpPos,
					Message: fmt.Sprintf("%s + %s exceeds %d bits", left, right, in.arith.bits()),
				}
			}
			return sum, nil
		case ast.OpSub:
			return in.arith.sub(left, right), nil
		default:
			panic(fmt.Sprintf("interp: unexpected operator %v", e.Op))
		}

	default:
		panic(fmt.Sprintf("interp: unexpected expression type %T", expr))
	}
}

// render formats a print statement. Adjacent non-string items are separated
// by a single space; string items are written as-is.
func (in *Interpreter) render(s *ast.PrintStmt) (string, error) {
	var b strings.Builder
	lastWasString := true
	for _, it := range s.Items {
		if it.IsString {
			b.WriteString(it.Text)
			lastWasString = true
			continue
		}
		v, err := in.eval(it.Expr)
		if err != nil {
			return "", err
		}
		if !lastWasString {
			b.WriteByte(' ')
		}
		b.WriteString(v.String())
		lastWasString = false
	}
	return b.String(), nil
}

func (in *Interpreter) trace(ev Event) {
	if in.tracer == nil {
		return
	}
	ev.Depth = in.depth
	if ev.Kind == EventLoopEnter || ev.Kind == EventIteration || ev.Kind == EventLoopExit {
		ev.Depth--
	}
	in.tracer.Trace(ev)
}
