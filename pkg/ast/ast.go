// Package ast defines the abstract syntax tree of LoopLang programs.
//
// Statements and expressions are sealed interfaces: only the node types in
// this package implement them, so consumers dispatch with an exhaustive type
// switch. Nodes are never mutated after the parser returns them.
package ast

import (
	"math/big"

	"github.com/leapstack-labs/looplang/pkg/token"
)

// Node is the base interface for all AST nodes.
type Node interface {
	// Pos returns the position of the first character of the node.
	Pos() token.Position
}

// Stmt is a marker interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is a marker interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Program is the root of the AST.
type Program struct {
	Stmts []Stmt
}

// Pos returns the position of the first statement, or an invalid position
// for an empty program.
func (p *Program) Pos() token.Position {
	if len(p.Stmts) == 0 {
		return token.Position{}
	}
	return p.Stmts[0].Pos()
}

// ---------- Statements ----------

// AssignStmt binds the value of an expression to a variable: `x := y + 1`.
type AssignStmt struct {
	NamePos token.Position
	Name    string
	Value   Expr
}

// LoopStmt repeats Body a number of times fixed when the loop is entered:
// `loop n do ... end`.
type LoopStmt struct {
	LoopPos token.Position
	Bound   Expr
	Body    *Block
	EndPos  token.Position // position of the closing `end`
}

// Block is an ordered sequence of statements.
type Block struct {
	Start token.Position
	Stmts []Stmt
}

// PrintStmt writes its items on one line: `print "x is", x`.
type PrintStmt struct {
	PrintPos token.Position
	Items    []PrintItem
}

// PrintItem is either a string literal or an Ident/Number expression.
type PrintItem struct {
	ItemPos  token.Position
	IsString bool
	Text     string // string literal contents, when IsString
	Expr     Expr   // Ident or Number, when !IsString
}

func (s *AssignStmt) Pos() token.Position { return s.NamePos }
func (s *LoopStmt) Pos() token.Position   { return s.LoopPos }
func (s *Block) Pos() token.Position      { return s.Start }
func (s *PrintStmt) Pos() token.Position  { return s.PrintPos }

func (*AssignStmt) stmtNode() {}
func (*LoopStmt) stmtNode()   {}
func (*Block) stmtNode()      {}
func (*PrintStmt) stmtNode()  {}

// ---------- Expressions ----------

// Ident is a variable reference.
type Ident struct {
	NamePos token.Position
	Name    string
}

// Number is a natural-number literal. Value must not be mutated.
type Number struct {
	ValuePos token.Position
	Literal  string
	Value    *big.Int
}

// Operator is a binary arithmetic operator.
type Operator int

// Operators.
const (
	OpAdd Operator = iota // +
	OpSub                 // - (truncated at zero)
)

func (o Operator) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	default:
		return "?"
	}
}

// BinaryExpr is `left op right`. LoopLang expressions contain at most one
// binary operation and both operands are Ident or Number.
type BinaryExpr struct {
	Left  Expr
	OpPos token.Position
	Op    Operator
	Right Expr
}

func (e *Ident) Pos() token.Position      { return e.NamePos }
func (e *Number) Pos() token.Position     { return e.ValuePos }
func (e *BinaryExpr) Pos() token.Position { return e.Left.Pos() }

func (*Ident) exprNode()      {}
func (*Number) exprNode()     {}
func (*BinaryExpr) exprNode() {}

// NewNumber returns a literal node for v. Intended for tests and tools that
// build trees by hand.
func NewNumber(v int64) *Number {
	n := big.NewInt(v)
	return &Number{Literal: n.String(), Value: n}
}
