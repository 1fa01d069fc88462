package format

import (
	"github.com/leapstack-labs/looplang/pkg/ast"
	"github.com/leapstack-labs/looplang/pkg/parser"
	"github.com/leapstack-labs/looplang/pkg/token"
)

// Format formats a parsed program.
func Format(prog *ast.Program) string {
	return WithComments(prog, nil)
}

// WithComments formats a program and re-attaches comments by line: a comment
// on the same line as a statement (or a loop header or `end`) stays at the
// end of that line, any other comment is printed on its own line before
// the next statement.
func WithComments(prog *ast.Program, comments []*token.Comment) string {
	p := newPrinter(comments)
	p.formatProgram(prog)
	return p.String()
}

// Source parses src and returns its canonical form with comments preserved.
func Source(src string) (string, error) {
	prog, comments, err := parser.ParseWithComments(src)
	if err != nil {
		return "", err
	}
	return WithComments(prog, comments), nil
}

// Expr formats a single expression.
func Expr(e ast.Expr) string {
	p := newPrinter(nil)
	p.formatExpr(e)
	return p.output.String()
}
