package lsp

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/looplang/pkg/ast"
	"github.com/leapstack-labs/looplang/pkg/format"
	"github.com/leapstack-labs/looplang/pkg/token"
)

// variableUse summarizes how a program uses one variable.
type variableUse struct {
	assigns []*ast.AssignStmt
	reads   int
	bounds  int
}

func collectUse(prog *ast.Program, name string) variableUse {
	var use variableUse
	ast.Inspect(prog, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.AssignStmt:
			if n.Name == name {
				use.assigns = append(use.assigns, n)
			}
		case *ast.LoopStmt:
			if boundReads(n.Bound, name) {
				use.bounds++
			}
		case *ast.Ident:
			if n.Name == name {
				use.reads++
			}
		}
		return true
	})
	return use
}

func boundReads(e ast.Expr, name string) bool {
	found := false
	ast.Inspect(e, func(n ast.Node) bool {
		if id, ok := n.(*ast.Ident); ok && id.Name == name {
			found = true
		}
		return !found
	})
	return found
}

// getHover describes the keyword or variable under pos.
func getHover(doc *Document, pos Position) *Hover {
	if doc == nil {
		return nil
	}
	word, rng := doc.GetWordAtPosition(pos)
	if word == "" {
		return nil
	}

	if kw := token.LookupIdent(word); kw != token.IDENT {
		return &Hover{
			Contents: MarkupContent{Kind: MarkupKindMarkdown, Value: keywordDocs[strings.ToLower(word)]},
			Range:    &rng,
		}
	}
	if !token.IsIdentifier(word) || doc.Program == nil {
		return nil
	}
	word = token.CanonicalName(word)

	use := collectUse(doc.Program, word)
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** (variable)\n\n", word)
	if len(use.assigns) == 0 {
		b.WriteString("Never assigned: reads as 0 unless supplied as a binding.")
	} else {
		fmt.Fprintf(&b, "Assigned %d time(s), first at line %d.", len(use.assigns), use.assigns[0].NamePos.Line)
	}
	fmt.Fprintf(&b, " Read %d time(s).", use.reads)
	if use.bounds > 0 {
		fmt.Fprintf(&b, " Bounds %d loop(s).", use.bounds)
	}

	return &Hover{
		Contents: MarkupContent{Kind: MarkupKindMarkdown, Value: b.String()},
		Range:    &rng,
	}
}

// getDefinition returns the first assignment to the variable under pos.
func getDefinition(doc *Document, pos Position) *Location {
	if doc == nil || doc.Program == nil {
		return nil
	}
	word, _ := doc.GetWordAtPosition(pos)
	if !token.IsIdentifier(word) {
		return nil
	}
	word = token.CanonicalName(word)

	use := collectUse(doc.Program, word)
	if len(use.assigns) == 0 {
		return nil
	}
	first := use.assigns[0].NamePos
	end := token.Position{Line: first.Line, Column: first.Column + len(word), Offset: first.Offset + len(word)}
	return &Location{URI: doc.URI, Range: doc.toRange(first, end)}
}

// getFormatting returns an edit replacing the document with its canonical
// form. Documents that do not parse are left alone.
func getFormatting(doc *Document) []TextEdit {
	if doc == nil || doc.ParseErr != nil {
		return nil
	}
	formatted, err := format.Source(doc.Content)
	if err != nil || formatted == doc.Content {
		return []TextEdit{}
	}
	return []TextEdit{{
		Range:   Range{Start: Position{}, End: doc.EndPosition()},
		NewText: formatted,
	}}
}
