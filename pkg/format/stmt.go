package format

import (
	"github.com/leapstack-labs/looplang/pkg/ast"
	"github.com/leapstack-labs/looplang/pkg/token"
)

func (p *Printer) formatProgram(prog *ast.Program) {
	p.formatStmts(prog.Stmts)
	p.remainingComments()
}

func (p *Printer) formatStmts(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		p.leadingComments(stmt.Pos().Line)
		p.formatStmt(stmt)
	}
}

func (p *Printer) formatStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.AssignStmt:
		p.write(s.Name)
		p.write(" := ")
		p.formatExpr(s.Value)
		p.trailingComments(s.NamePos.Line)
		p.writeln()

	case *ast.LoopStmt:
		p.kw(token.LOOP)
		p.space()
		p.formatExpr(s.Bound)
		p.space()
		p.kw(token.DO)
		p.trailingComments(s.LoopPos.Line)
		p.writeln()

		p.indent()
		p.formatStmts(s.Body.Stmts)
		if s.EndPos.IsValid() {
			p.leadingComments(s.EndPos.Line)
		}
		p.dedent()

		p.kw(token.END)
		p.trailingComments(s.EndPos.Line)
		p.writeln()

	case *ast.Block:
		p.formatStmts(s.Stmts)

	case *ast.PrintStmt:
		p.kw(token.PRINT)
		p.space()
		p.formatList(len(s.Items), func(i int) {
			it := s.Items[i]
			if it.IsString {
				p.write(token.Quote(it.Text))
				return
			}
			p.formatExpr(it.Expr)
		}, ", ")
		p.trailingComments(s.PrintPos.Line)
		p.writeln()
	}
}
