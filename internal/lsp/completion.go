package lsp

import (
	"sort"
	"strings"

	"github.com/leapstack-labs/looplang/pkg/ast"
	"github.com/leapstack-labs/looplang/pkg/parser"
	"github.com/leapstack-labs/looplang/pkg/token"
)

// keywordDocs documents each keyword for completion and hover.
var keywordDocs = map[string]string{
	"loop":  "`loop <bound> do ... end` runs the body a number of times fixed when the loop is entered. Changing the bound inside the body does not change the count.",
	"do":    "Optional separator between a loop bound and its body.",
	"end":   "Closes a loop body.",
	"print": "`print item, ...` writes strings, numbers and variable values on one line.",
}

// loopSnippet is offered alongside the loop keyword.
var loopSnippet = CompletionItem{
	Label:            "loop … end",
	Kind:             CompletionItemKindSnippet,
	Detail:           "bounded loop",
	InsertText:       "loop ${1:n} do\n\t$0\nend",
	InsertTextFormat: InsertTextFormatSnippet,
	SortText:         "2loop",
}

// getCompletions returns keywords and the document's variables matching the
// word being typed at pos.
func getCompletions(doc *Document, pos Position) []CompletionItem {
	items := []CompletionItem{}
	if doc == nil {
		return items
	}

	prefix := wordBefore(doc.GetTextBefore(pos))
	lower := strings.ToLower(prefix)

	for _, name := range documentVariables(doc) {
		if name == lower || !strings.HasPrefix(strings.ToLower(name), lower) {
			continue
		}
		items = append(items, CompletionItem{
			Label:    name,
			Kind:     CompletionItemKindVariable,
			Detail:   "variable",
			SortText: "0" + name,
		})
	}

	for _, kw := range token.Keywords() {
		if !strings.HasPrefix(kw, lower) {
			continue
		}
		items = append(items, CompletionItem{
			Label:         kw,
			Kind:          CompletionItemKindKeyword,
			Documentation: keywordDocs[kw],
			SortText:      "1" + kw,
		})
		if kw == "loop" {
			items = append(items, loopSnippet)
		}
	}

	return items
}

// documentVariables returns the variable names in doc. Documents that do
// not parse are scanned up to the first lex error.
func documentVariables(doc *Document) []string {
	if doc.Program != nil {
		return ast.Variables(doc.Program)
	}

	seen := make(map[string]bool)
	for tok, err := range parser.Tokens(doc.Content) {
		if err != nil {
			break
		}
		if tok.Type == token.IDENT {
			seen[tok.Literal] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// wordBefore returns the identifier characters immediately preceding the
// end of s.
func wordBefore(s string) string {
	i := len(s)
	for i > 0 && isWordChar(s[i-1]) {
		i--
	}
	return s[i:]
}
