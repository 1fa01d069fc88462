package format

import "github.com/leapstack-labs/looplang/pkg/ast"

func (p *Printer) formatExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Ident:
		p.write(e.Name)
	case *ast.Number:
		p.write(e.Value.String())
	case *ast.BinaryExpr:
		p.formatExpr(e.Left)
		p.space()
		p.write(e.Op.String())
		p.space()
		p.formatExpr(e.Right)
	}
}
