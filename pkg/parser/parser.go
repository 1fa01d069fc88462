// Package parser turns LoopLang source into an AST.
//
// # Usage
//
//	prog, err := parser.Parse("x := 3; loop x do y := y + 2 end")
//	if err != nil {
//	    // *LexError or *ParseError
//	}
//
// # Grammar Overview
//
// The parser implements a recursive descent parser with one token of
// lookahead and no backtracking:
//
//	program    → statement*
//	statement  → assignment | loop | print | ';'
//	assignment → IDENT (':=' | '=') expression
//	expression → term [('+' | '-') term]
//	term       → IDENT | NUMBER
//	loop       → LOOP expression [DO] statement* END
//	print      → PRINT item (',' item)*
//	item       → STRING | NUMBER | IDENT
package parser

import (
	"fmt"
	"math/big"

	"github.com/leapstack-labs/looplang/pkg/ast"
	"github.com/leapstack-labs/looplang/pkg/token"
)

// Parser parses LoopLang into an AST.
type Parser struct {
	lexer *Lexer
	token token.Token // current token
	err   error       // first error; parsing stops once set
}

// NewParser creates a new parser for the given input.
func NewParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input)}
	p.nextToken()
	return p
}

// Parse parses the input and returns the program. On error no partial AST is
// returned.
func Parse(input string) (*ast.Program, error) {
	return NewParser(input).ParseProgram()
}

// ParseWithComments parses the input and also returns its `#` comments in
// source order.
func ParseWithComments(input string) (*ast.Program, []*token.Comment, error) {
	p := NewParser(input)
	prog, err := p.ParseProgram()
	if err != nil {
		return nil, nil, err
	}
	return prog, p.lexer.Comments(), nil
}

// ParseProgram parses a complete program up to end of input.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	stmts := p.parseStatements(token.EOF)
	if p.err != nil {
		return nil, p.err
	}
	return &ast.Program{Stmts: stmts}, nil
}

// ---------- Token Helpers ----------

// nextToken advances to the next token. Lexer errors are recorded as-is.
func (p *Parser) nextToken() {
	if p.err != nil {
		return
	}
	tok, err := p.lexer.NextToken()
	p.token = tok
	if err != nil {
		p.err = err
	}
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t token.TokenType) bool {
	return p.err == nil && p.token.Type == t
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t token.TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes the current token if it matches, otherwise records an error.
func (p *Parser) expect(t token.TokenType, context string) (token.Token, bool) {
	tok := p.token
	if p.check(t) {
		p.nextToken()
		return tok, true
	}
	p.fail(context, t)
	return tok, false
}

// fail records a parse error at the current token unless an error is already
// pending.
func (p *Parser) fail(context string, expected ...token.TokenType) {
	if p.err != nil {
		return
	}
	p.err = &ParseError{
		Pos:      p.token.Pos,
		Expected: expected,
		Found:    p.token,
		Context:  context,
	}
}

// ---------- Statements ----------

// parseStatements parses statements until the end token (not consumed).
//
//	statements → (statement | ';')*
func (p *Parser) parseStatements(end token.TokenType) []ast.Stmt {
	var stmts []ast.Stmt
	for p.err == nil && !p.check(end) {
		switch p.token.Type {
		case token.SEMICOLON:
			p.nextToken()
		case token.IDENT:
			if s := p.parseAssign(); s != nil {
				stmts = append(stmts, s)
			}
		case token.LOOP:
			if s := p.parseLoop(); s != nil {
				stmts = append(stmts, s)
			}
		case token.PRINT:
			if s := p.parsePrint(); s != nil {
				stmts = append(stmts, s)
			}
		default:
			context := ""
			if end == token.END {
				context = "in loop body"
			}
			p.fail(context, token.IDENT, token.LOOP, token.PRINT, end)
		}
	}
	return stmts
}

// parseAssign parses an assignment.
//
//	assignment → IDENT (':=' | '=') expression
func (p *Parser) parseAssign() *ast.AssignStmt {
	name := p.token
	p.nextToken()
	if _, ok := p.expect(token.ASSIGN, "after "+name.Literal); !ok {
		return nil
	}
	value := p.parseExpr("in assignment to " + name.Literal)
	if value == nil {
		return nil
	}
	return &ast.AssignStmt{NamePos: name.Pos, Name: name.Literal, Value: value}
}

// parseLoop parses a loop block.
//
//	loop → LOOP expression [DO] statement* END
func (p *Parser) parseLoop() *ast.LoopStmt {
	loopPos := p.token.Pos
	p.nextToken()

	bound := p.parseExpr("in loop bound")
	if bound == nil {
		return nil
	}
	p.match(token.DO)

	body := &ast.Block{Start: p.token.Pos}
	body.Stmts = p.parseStatements(token.END)
	end, ok := p.expect(token.END, "")
	if !ok {
		return nil
	}
	return &ast.LoopStmt{LoopPos: loopPos, Bound: bound, Body: body, EndPos: end.Pos}
}

// parsePrint parses a print statement.
//
//	print → PRINT item (',' item)*
func (p *Parser) parsePrint() *ast.PrintStmt {
	stmt := &ast.PrintStmt{PrintPos: p.token.Pos}
	p.nextToken()
	for {
		item, ok := p.parsePrintItem()
		if !ok {
			return nil
		}
		stmt.Items = append(stmt.Items, item)
		if !p.match(token.COMMA) {
			return stmt
		}
	}
}

// parsePrintItem parses a single print item.
//
//	item → STRING | NUMBER | IDENT
func (p *Parser) parsePrintItem() (ast.PrintItem, bool) {
	tok := p.token
	if p.check(token.STRING) {
		p.nextToken()
		return ast.PrintItem{ItemPos: tok.Pos, IsString: true, Text: tok.Literal}, true
	}
	if !p.check(token.IDENT) && !p.check(token.NUMBER) {
		p.fail("in print", token.STRING, token.NUMBER, token.IDENT)
		return ast.PrintItem{}, false
	}
	expr := p.parseTerm("in print")
	if expr == nil {
		return ast.PrintItem{}, false
	}
	return ast.PrintItem{ItemPos: tok.Pos, Expr: expr}, true
}

// ---------- Expressions ----------

// parseExpr parses an expression.
//
//	expression → term [('+' | '-') term]
func (p *Parser) parseExpr(context string) ast.Expr {
	left := p.parseTerm(context)
	if left == nil {
		return nil
	}

	var op ast.Operator
	switch {
	case p.check(token.PLUS):
		op = ast.OpAdd
	case p.check(token.MINUS):
		op = ast.OpSub
	default:
		return left
	}
	opPos := p.token.Pos
	p.nextToken()

	right := p.parseTerm(context)
	if right == nil {
		return nil
	}
	return &ast.BinaryExpr{Left: left, OpPos: opPos, Op: op, Right: right}
}

// parseTerm parses an identifier or number literal.
//
//	term → IDENT | NUMBER
func (p *Parser) parseTerm(context string) ast.Expr {
	tok := p.token
	switch {
	case p.check(token.IDENT):
		p.nextToken()
		return &ast.Ident{NamePos: tok.Pos, Name: tok.Literal}
	case p.check(token.NUMBER):
		value, ok := new(big.Int).SetString(tok.Literal, 10)
		if !ok {
			p.err = &LexError{Pos: tok.Pos, Message: fmt.Sprintf(ErrInvalidNumber, tok.Literal)}
			return nil
		}
		p.nextToken()
		return &ast.Number{ValuePos: tok.Pos, Literal: tok.Literal, Value: value}
	default:
		p.fail(context, token.IDENT, token.NUMBER)
		return nil
	}
}
