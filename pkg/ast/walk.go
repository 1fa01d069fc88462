package ast

import (
	"fmt"
	"sort"
)

// Inspect traverses the tree rooted at node in depth-first order, calling f
// for each node. If f returns false, the children of that node are skipped.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}

	switch n := node.(type) {
	case *Program:
		for _, s := range n.Stmts {
			Inspect(s, f)
		}
	case *AssignStmt:
		Inspect(n.Value, f)
	case *LoopStmt:
		Inspect(n.Bound, f)
		Inspect(n.Body, f)
	case *Block:
		for _, s := range n.Stmts {
			Inspect(s, f)
		}
	case *PrintStmt:
		for _, it := range n.Items {
			if !it.IsString {
				Inspect(it.Expr, f)
			}
		}
	case *BinaryExpr:
		Inspect(n.Left, f)
		Inspect(n.Right, f)
	case *Ident, *Number:
		// leaves
	default:
		panic(fmt.Sprintf("ast: unexpected node type %T", node))
	}
}

// Variables returns the sorted, de-duplicated names of every variable the
// program reads or writes.
func Variables(prog *Program) []string {
	seen := make(map[string]struct{})
	Inspect(prog, func(n Node) bool {
		switch n := n.(type) {
		case *AssignStmt:
			seen[n.Name] = struct{}{}
		case *Ident:
			seen[n.Name] = struct{}{}
		}
		return true
	})

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MaxLoopDepth returns the deepest loop nesting level in the program.
func MaxLoopDepth(prog *Program) int {
	var depthOf func(stmts []Stmt) int
	depthOf = func(stmts []Stmt) int {
		maxDepth := 0
		for _, s := range stmts {
			if l, ok := s.(*LoopStmt); ok {
				if d := 1 + depthOf(l.Body.Stmts); d > maxDepth {
					maxDepth = d
				}
			}
			if b, ok := s.(*Block); ok {
				if d := depthOf(b.Stmts); d > maxDepth {
					maxDepth = d
				}
			}
		}
		return maxDepth
	}
	return depthOf(prog.Stmts)
}
