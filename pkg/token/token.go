// Package token defines the lexical tokens of LoopLang.
package token

import (
	"fmt"
	"strings"
)

// TokenType represents the type of a lexical token.
//
//nolint:revive // Accept stutter as token.TokenType reads clearly at call sites
type TokenType int32

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Literals
	IDENT  // x, count, x1
	NUMBER // 0, 42, 123456789012345678901234567890
	STRING // "hello\n"

	// Operators and punctuation
	ASSIGN    // := or =
	PLUS      // +
	MINUS     // -
	COMMA     // ,
	SEMICOLON // ;

	// Keywords
	LOOP
	DO
	END
	PRINT
)

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",

	IDENT:  "IDENT",
	NUMBER: "NUMBER",
	STRING: "STRING",

	ASSIGN:    ":=",
	PLUS:      "+",
	MINUS:     "-",
	COMMA:     ",",
	SEMICOLON: ";",

	LOOP:  "LOOP",
	DO:    "DO",
	END:   "END",
	PRINT: "PRINT",
}

// keywords maps lowercase keyword strings to their token types.
var keywords = map[string]TokenType{
	"loop":  LOOP,
	"do":    DO,
	"end":   END,
	"print": PRINT,
}

// LookupIdent returns the keyword token type for ident, or IDENT.
// Keywords are matched case-insensitively.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[strings.ToLower(ident)]; ok {
		return tok
	}
	return IDENT
}

// CanonicalName folds a variable name to its canonical spelling. Names are
// case-insensitive: X and x denote the same variable.
func CanonicalName(name string) string {
	return strings.ToLower(name)
}

// IsIdentifier reports whether s is a valid variable name: an ASCII letter
// followed by letters, digits or underscores, and not a keyword.
func IsIdentifier(s string) bool {
	if s == "" || LookupIdent(s) != IDENT {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '_'):
		default:
			return false
		}
	}
	return true
}

// Keywords returns the keyword spellings in canonical (lowercase) form.
func Keywords() []string {
	return []string{"loop", "do", "end", "print"}
}

// IsKeyword returns true if the token type is a keyword.
func IsKeyword(t TokenType) bool {
	return t >= LOOP && t <= PRINT
}

// IsOperator returns true if the token type is an operator or punctuation.
func IsOperator(t TokenType) bool {
	return t >= ASSIGN && t <= SEMICOLON
}

// Token represents a lexical token with position information.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// String renders the token for diagnostics, e.g. `IDENT "x"` or `EOF`.
func (t Token) String() string {
	switch t.Type {
	case EOF:
		return "end of input"
	case IDENT, NUMBER:
		return fmt.Sprintf("%s %q", t.Type, t.Literal)
	case STRING:
		return fmt.Sprintf("STRING %s", Quote(t.Literal))
	case ILLEGAL:
		return fmt.Sprintf("illegal %q", t.Literal)
	default:
		return fmt.Sprintf("%q", t.Literal)
	}
}

// Quote renders s as a LoopLang string literal.
func Quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
