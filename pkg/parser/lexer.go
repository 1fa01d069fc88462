package parser

import (
	"fmt"
	"iter"
	"strings"
	"unicode/utf8"

	"github.com/leapstack-labs/looplang/pkg/token"
)

// Lexer tokenizes LoopLang source.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // line of ch (1-based)
	col     int  // column of ch (1-based)

	err      error // sticky: once set, every NextToken call returns it
	comments []*token.Comment
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos > 0 && l.ch == '\n' && l.pos < len(l.input) {
		l.line++
		l.col = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	if l.readPos <= len(l.input) {
		l.readPos++
		l.col++
	}
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

// currentPos returns the current position.
func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

// NextToken returns the next token. After the first error every call returns
// that error again; after EOF every call returns EOF.
func (l *Lexer) NextToken() (token.Token, error) {
	if l.err != nil {
		return token.Token{Type: token.EOF, Pos: l.currentPos()}, l.err
	}
	if err := l.skipWhitespaceAndComments(); err != nil {
		return l.fail(err)
	}

	pos := l.currentPos()
	if l.atEOF() {
		return token.Token{Type: token.EOF, Pos: pos}, nil
	}

	var tok token.Token
	switch l.ch {
	case '+':
		tok = l.newToken(token.PLUS, "+")
	case '-':
		tok = l.newToken(token.MINUS, "-")
	case ',':
		tok = l.newToken(token.COMMA, ",")
	case ';':
		tok = l.newToken(token.SEMICOLON, ";")
	case '=':
		tok = l.newToken(token.ASSIGN, "=")
	case ':':
		if l.peekChar() != '=' {
			return l.fail(&LexError{Pos: pos, Char: ':', Message: ErrColonWithoutEquals})
		}
		l.readChar()
		tok = token.Token{Type: token.ASSIGN, Literal: ":=", Pos: pos}
	case '"':
		text, err := l.readString()
		if err != nil {
			return l.fail(err)
		}
		return token.Token{Type: token.STRING, Literal: text, Pos: pos}, nil
	default:
		switch {
		case isLetter(l.ch):
			lit := l.readIdentifier()
			typ := token.LookupIdent(lit)
			if typ == token.IDENT {
				lit = token.CanonicalName(lit)
			}
			return token.Token{Type: typ, Literal: lit, Pos: pos}, nil
		case isDigit(l.ch):
			return token.Token{Type: token.NUMBER, Literal: l.readNumber(), Pos: pos}, nil
		default:
			r := l.currentRune()
			return l.fail(&LexError{Pos: pos, Char: r, Message: fmt.Sprintf(ErrUnexpectedChar, r)})
		}
	}

	l.readChar()
	return tok, nil
}

func (l *Lexer) fail(err error) (token.Token, error) {
	l.err = err
	return token.Token{Type: token.EOF, Pos: l.currentPos()}, err
}

// Comments returns the comments scanned so far, in source order.
func (l *Lexer) Comments() []*token.Comment {
	return l.comments
}

// currentRune decodes the (possibly multi-byte) character at the current
// position, for diagnostics.
func (l *Lexer) currentRune() rune {
	if l.atEOF() {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return r
}

// newToken creates a token at the current position.
func (l *Lexer) newToken(tokenType token.TokenType, literal string) token.Token {
	return token.Token{Type: tokenType, Literal: literal, Pos: l.currentPos()}
}

// skipWhitespaceAndComments skips whitespace and `#` line comments.
func (l *Lexer) skipWhitespaceAndComments() error {
	for !l.atEOF() {
		switch l.ch {
		case ' ', '\t', '\n':
			l.readChar()
		case '\r':
			if l.peekChar() != '\n' {
				return &LexError{Pos: l.currentPos(), Char: '\r', Message: ErrStandaloneCR}
			}
			l.readChar()
		case '#':
			pos := l.currentPos()
			for !l.atEOF() && l.ch != '\n' {
				l.readChar()
			}
			text := strings.TrimSuffix(l.input[pos.Offset:l.pos], "\r")
			l.comments = append(l.comments, &token.Comment{Text: text, Pos: pos})
		default:
			return nil
		}
	}
	return nil
}

// readString reads a double-quoted string literal with \t \n \r \" \\ escapes.
func (l *Lexer) readString() (string, error) {
	start := l.currentPos()
	l.readChar() // skip opening quote

	var result strings.Builder
	for {
		switch {
		case l.atEOF(), l.ch == '\n':
			return "", &LexError{Pos: start, Char: '"', Message: ErrUnterminatedString}
		case l.ch == '"':
			l.readChar() // skip closing quote
			return result.String(), nil
		case l.ch == '\\':
			l.readChar()
			switch l.ch {
			case 't':
				result.WriteByte('\t')
			case 'n':
				result.WriteByte('\n')
			case 'r':
				result.WriteByte('\r')
			case '"', '\\':
				result.WriteByte(l.ch)
			default:
				if l.atEOF() {
					return "", &LexError{Pos: start, Char: '"', Message: ErrUnterminatedString}
				}
				r := l.currentRune()
				return "", &LexError{Pos: l.currentPos(), Char: r, Message: fmt.Sprintf(ErrUnknownEscape, r)}
			}
			l.readChar()
		default:
			result.WriteByte(l.ch)
			l.readChar()
		}
	}
}

// readIdentifier reads a letter followed by letters, digits or underscores.
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for !l.atEOF() && (isLetter(l.ch) || isDigit(l.ch) || l.ch == '_') {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readNumber reads an unsigned decimal integer literal of any length.
func (l *Lexer) readNumber() string {
	start := l.pos
	for !l.atEOF() && isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// isLetter returns true if ch is an ASCII letter.
func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// isDigit returns true if ch is a digit.
func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// Tokens returns the token sequence of input. The sequence is lazy: input is
// scanned only as far as the consumer ranges. It ends after the EOF token or
// after the first error, and every new range re-scans from the start.
func Tokens(input string) iter.Seq2[token.Token, error] {
	return func(yield func(token.Token, error) bool) {
		l := NewLexer(input)
		for {
			tok, err := l.NextToken()
			if err != nil {
				yield(tok, err)
				return
			}
			if !yield(tok, nil) || tok.Type == token.EOF {
				return
			}
		}
	}
}

// Tokenize returns all tokens from the input, ending with EOF.
func Tokenize(input string) ([]token.Token, error) {
	var tokens []token.Token
	for tok, err := range Tokens(input) {
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}
