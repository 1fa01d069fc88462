package parser

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/looplang/pkg/token"
)

// ParseError represents a parsing error with position information.
type ParseError struct {
	Pos      token.Position
	Expected []token.TokenType
	Found    token.Token
	Context  string // optional, e.g. "in loop bound"
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Detail())
}

// Detail returns the message without position information.
func (e *ParseError) Detail() string {
	msg := fmt.Sprintf(ErrUnexpectedToken, e.Found, formatExpected(e.Expected))
	if e.Context != "" {
		msg += " " + e.Context
	}
	return msg
}

// Position returns the location of the offending token.
func (e *ParseError) Position() token.Position { return e.Pos }

// LexError represents a lexical analysis error.
type LexError struct {
	Pos     token.Position
	Char    rune // offending character, 0 at end of input
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lexer error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Detail returns the message without position information.
func (e *LexError) Detail() string { return e.Message }

// Position returns the location of the offending character.
func (e *LexError) Position() token.Position { return e.Pos }

// Common error messages
const (
	ErrUnexpectedToken    = "unexpected %s, expected %s"
	ErrUnexpectedChar     = "unexpected character %q"
	ErrUnterminatedString = "unterminated string literal"
	ErrUnknownEscape      = "unknown escape sequence \\%c in string literal"
	ErrColonWithoutEquals = "expected '=' after ':'"
	ErrInvalidNumber      = "invalid number literal %q"
	ErrStandaloneCR       = "carriage return not followed by line feed"
)

func formatExpected(types []token.TokenType) string {
	names := make([]string, len(types))
	for i, t := range types {
		switch t {
		case token.IDENT:
			names[i] = "identifier"
		case token.NUMBER:
			names[i] = "number"
		case token.STRING:
			names[i] = "string"
		case token.EOF:
			names[i] = "end of input"
		default:
			names[i] = fmt.Sprintf("%q", strings.ToLower(t.String()))
		}
	}
	switch len(names) {
	case 0:
		return "nothing"
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
	}
}
