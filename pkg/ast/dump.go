package ast

import (
	"fmt"
	"io"
	"strings"

	"github.com/leapstack-labs/looplang/pkg/token"
)

// Dump writes an indented tree view of node to w, one node per line with its
// source position.
func Dump(w io.Writer, node Node) error {
	d := &dumper{w: w}
	d.node(node, 0)
	return d.err
}

type dumper struct {
	w   io.Writer
	err error
}

func (d *dumper) line(depth int, pos token.Position, format string, args ...any) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, "%s%s @%s\n", strings.Repeat("  ", depth), fmt.Sprintf(format, args...), pos)
}

func (d *dumper) node(node Node, depth int) {
	switch n := node.(type) {
	case *Program:
		d.line(depth, n.Pos(), "Program (%d statements)", len(n.Stmts))
		for _, s := range n.Stmts {
			d.node(s, depth+1)
		}
	case *AssignStmt:
		d.line(depth, n.NamePos, "Assign %s", n.Name)
		d.node(n.Value, depth+1)
	case *LoopStmt:
		d.line(depth, n.LoopPos, "Loop")
		d.node(n.Bound, depth+1)
		d.node(n.Body, depth+1)
	case *Block:
		d.line(depth, n.Start, "Block (%d statements)", len(n.Stmts))
		for _, s := range n.Stmts {
			d.node(s, depth+1)
		}
	case *PrintStmt:
		d.line(depth, n.PrintPos, "Print")
		for _, it := range n.Items {
			if it.IsString {
				d.line(depth+1, it.ItemPos, "String %s", token.Quote(it.Text))
				continue
			}
			d.node(it.Expr, depth+1)
		}
	case *Ident:
		d.line(depth, n.NamePos, "Ident %s", n.Name)
	case *Number:
		d.line(depth, n.ValuePos, "Number %s", n.Value)
	case *BinaryExpr:
		d.line(depth, n.OpPos, "Binary %s", n.Op)
		d.node(n.Left, depth+1)
		d.node(n.Right, depth+1)
	default:
		d.line(depth, token.Position{}, "<unknown %T>", node)
	}
}
