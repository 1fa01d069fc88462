package output

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/looplang/pkg/token"
)

type positioner interface {
	Position() token.Position
}

type detailer interface {
	Detail() string
}

// Diagnostic is a positioned error message tied to a source file.
type Diagnostic struct {
	File    string `json:"file"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Message string `json:"message"`
}

// NewDiagnostic extracts the position and message from err. Errors without a
// position yield a diagnostic with Line 0.
func NewDiagnostic(file string, err error) Diagnostic {
	d := Diagnostic{File: file, Message: err.Error()}
	var p positioner
	if !errors.As(err, &p) || !p.Position().IsValid() {
		return d
	}
	d.Line = p.Position().Line
	d.Column = p.Position().Column
	var det detailer
	if errors.As(err, &det) {
		d.Message = det.Detail()
	}
	return d
}

// String renders "file:line:col: message", or "file: message" without a
// position.
func (d Diagnostic) String() string {
	if d.Line == 0 {
		return d.File + ": " + d.Message
	}
	return fmt.Sprintf("%s:%d:%d: %s", d.File, d.Line, d.Column, d.Message)
}

// FormatDiagnostic renders d followed by the offending source line and a
// caret under the reported column:
//
//	prog.loop:2:7: unexpected end of input, expected "end"
//	  2 | loop x do
//	    |       ^
func FormatDiagnostic(d Diagnostic, src string, styles *Styles) string {
	if styles == nil {
		styles = NewStyles(false)
	}
	var b strings.Builder
	b.WriteString(styles.Error.Render(d.String()))
	if d.Line == 0 {
		return b.String()
	}
	lines := strings.Split(src, "\n")
	if d.Line > len(lines) {
		return b.String()
	}
	line := strings.TrimSuffix(lines[d.Line-1], "\r")
	num := strconv.Itoa(d.Line)
	pad := strings.Repeat(" ", len(num))

	b.WriteByte('\n')
	b.WriteString(styles.Gutter.Render("  " + num + " | "))
	b.WriteString(line)
	b.WriteByte('\n')
	b.WriteString(styles.Gutter.Render("  " + pad + " | "))
	b.WriteString(caretIndent(line, d.Column))
	b.WriteString(styles.Caret.Render("^"))
	return b.String()
}

// caretIndent keeps tabs from line so the caret lines up under column col.
func caretIndent(line string, col int) string {
	var b strings.Builder
	for i := 0; i < col-1; i++ {
		if i < len(line) && line[i] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// Diagnostic writes err for file to error output. In JSON mode the
// diagnostic is written to standard output as an object.
func (r *Renderer) Diagnostic(file, src string, err error) {
	d := NewDiagnostic(file, err)
	if r.EffectiveMode() == ModeJSON {
		_ = r.JSON(d)
		return
	}
	_, _ = fmt.Fprintln(r.errOut, FormatDiagnostic(d, src, r.Styles))
}
