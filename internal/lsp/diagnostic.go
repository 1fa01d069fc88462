package lsp

import (
	"errors"

	"github.com/leapstack-labs/looplang/pkg/lint"
	"github.com/leapstack-labs/looplang/pkg/parser"
	"github.com/leapstack-labs/looplang/pkg/token"
)

// diagnosticSource is reported as the Source of every diagnostic.
const diagnosticSource = "looplang"

// positioned is implemented by LexError and ParseError.
type positioned interface {
	Position() token.Position
	Detail() string
}

// publishDiagnostics publishes parse errors, or lint findings when the
// document parses.
func (s *Server) publishDiagnostics(doc *Document) {
	diagnostics := s.diagnose(doc)
	s.sendNotification("textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         doc.URI,
		Version:     doc.Version,
		Diagnostics: diagnostics,
	})
}

// diagnose computes the diagnostics for doc and refreshes its cached fixes.
func (s *Server) diagnose(doc *Document) []Diagnostic {
	s.fixes.clearURI(doc.URI)

	if doc.ParseErr != nil {
		return []Diagnostic{parseErrorToDiagnostic(doc, doc.ParseErr)}
	}

	findings := s.analyzer.Analyze(doc.Program)
	s.cacheDiagnosticFixes(doc, findings)

	diagnostics := make([]Diagnostic, 0, len(findings))
	for _, f := range findings {
		diagnostics = append(diagnostics, Diagnostic{
			Range:    doc.toRange(f.Pos, f.EndPos),
			Severity: toSeverity(f.Severity),
			Code:     f.RuleID,
			Source:   diagnosticSource,
			Message:  f.Message,
		})
	}
	return diagnostics
}

// parseErrorToDiagnostic converts a lex or parse error to a diagnostic. At end
// of input the range collapses onto the last character.
func parseErrorToDiagnostic(doc *Document, err error) Diagnostic {
	d := Diagnostic{
		Severity: DiagnosticSeverityError,
		Source:   diagnosticSource,
		Message:  err.Error(),
	}

	var perr positioned
	if !errors.As(err, &perr) || !perr.Position().IsValid() {
		return d
	}
	d.Message = perr.Detail()

	pos := perr.Position()
	if pos.Offset >= len(doc.Content) && pos.Offset > 0 {
		d.Range = Range{Start: doc.OffsetToPosition(len(doc.Content) - 1), End: doc.EndPosition()}
		return d
	}
	end := pos
	var parseErr *parser.ParseError
	if errors.As(err, &parseErr) && parseErr.Found.Literal != "" {
		end.Offset += len(parseErr.Found.Literal)
	} else {
		end = token.Position{}
	}
	d.Range = doc.toRange(pos, end)
	return d
}

func toSeverity(s lint.Severity) DiagnosticSeverity {
	switch s {
	case lint.SeverityError:
		return DiagnosticSeverityError
	case lint.SeverityWarning:
		return DiagnosticSeverityWarning
	case lint.SeverityInfo:
		return DiagnosticSeverityInformation
	default:
		return DiagnosticSeverityHint
	}
}
