// Package looplang is the entry point for embedding LoopLang: parse source
// into a program, then run it against a set of initial bindings.
//
//	prog, err := looplang.ParseProgram("loop x do y := y + 2 end")
//	if err != nil {
//	    return err
//	}
//	out, err := looplang.RunProgram(prog, map[string]*big.Int{"x": big.NewInt(3)})
//	// out["y"] == 6
//
// Errors are *parser.LexError, *parser.ParseError or *interp.EvalError; each
// has a Position method for diagnostics.
package looplang

import (
	"math/big"

	"github.com/leapstack-labs/looplang/pkg/ast"
	"github.com/leapstack-labs/looplang/pkg/interp"
	"github.com/leapstack-labs/looplang/pkg/parser"
	"github.com/leapstack-labs/looplang/pkg/token"
)

// ParseProgram parses src. On error no program is returned.
func ParseProgram(src string) (*ast.Program, error) {
	return parser.Parse(src)
}

// RunProgram executes prog on a fresh store seeded with a copy of bindings
// and returns the final bindings. bindings may be nil and is never modified.
func RunProgram(prog *ast.Program, bindings map[string]*big.Int, opts ...interp.Option) (map[string]*big.Int, error) {
	out, _, err := interp.Run(prog, bindings, opts...)
	return out, err
}

// Eval parses and runs src in one step.
func Eval(src string, bindings map[string]*big.Int, opts ...interp.Option) (map[string]*big.Int, error) {
	prog, err := ParseProgram(src)
	if err != nil {
		return nil, err
	}
	return RunProgram(prog, bindings, opts...)
}

// Positioner is implemented by every error the pipeline returns.
type Positioner interface {
	Position() token.Position
}
