// Package format prints LoopLang programs in canonical form: one statement
// per line, two-space indentation inside loops, lowercase keywords and `:=`
// for assignment. Comments are preserved when supplied.
package format

import (
	"bytes"
	"strings"

	"github.com/leapstack-labs/looplang/pkg/token"
)

const indentSize = 2

// Printer handles formatting with proper indentation.
type Printer struct {
	output      *bytes.Buffer
	depth       int
	atLineStart bool

	comments []*token.Comment // pending comments, in source order
}

func newPrinter(comments []*token.Comment) *Printer {
	return &Printer{
		output:      &bytes.Buffer{},
		atLineStart: true,
		comments:    comments,
	}
}

// String returns the formatted output. An empty program formats to "".
func (p *Printer) String() string {
	out := strings.TrimRight(p.output.String(), "\n")
	if out == "" {
		return ""
	}
	return out + "\n"
}

func (p *Printer) write(s string) {
	if p.atLineStart && len(s) > 0 && s[0] != '\n' {
		p.writeIndent()
	}
	p.output.WriteString(s)
	p.atLineStart = false
}

func (p *Printer) writeln() {
	p.output.WriteByte('\n')
	p.atLineStart = true
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.depth*indentSize; i++ {
		p.output.WriteByte(' ')
	}
	p.atLineStart = false
}

func (p *Printer) indent() {
	p.depth++
}

func (p *Printer) dedent() {
	if p.depth > 0 {
		p.depth--
	}
}

func (p *Printer) space() {
	p.output.WriteByte(' ')
}

// kw prints keywords in their canonical lowercase spelling.
func (p *Printer) kw(tokens ...token.TokenType) {
	for i, t := range tokens {
		if i > 0 {
			p.space()
		}
		p.write(strings.ToLower(t.String()))
	}
}

// leadingComments prints, each on its own line, the pending comments that
// start before line.
func (p *Printer) leadingComments(line int) {
	for len(p.comments) > 0 && p.comments[0].Pos.Line < line {
		p.write(p.comments[0].Text)
		p.writeln()
		p.comments = p.comments[1:]
	}
}

// trailingComments appends the pending comments on line to the current
// output line.
func (p *Printer) trailingComments(line int) {
	for len(p.comments) > 0 && p.comments[0].Pos.Line == line {
		p.space()
		p.write(p.comments[0].Text)
		p.comments = p.comments[1:]
	}
}

// remainingComments flushes every pending comment.
func (p *Printer) remainingComments() {
	for _, c := range p.comments {
		p.write(c.Text)
		p.writeln()
	}
	p.comments = nil
}

// formatList prints a list of items with separators.
// count is the number of items, format is called for each index,
// sep is the separator string.
func (p *Printer) formatList(count int, format func(i int), sep string) {
	for i := 0; i < count; i++ {
		format(i)
		if i < count-1 {
			p.write(sep)
		}
	}
}
