package lsp

import (
	"slices"
	"sync"

	"github.com/leapstack-labs/looplang/pkg/lint"
)

// fixCache stores lint fixes for published diagnostics, keyed by URI and
// diagnostic range.
type fixCache struct {
	mu    sync.RWMutex
	fixes map[string]map[fixKey][]lint.Fix
}

type fixKey struct {
	ruleID string
	start  Position
}

func newFixCache() *fixCache {
	return &fixCache{fixes: make(map[string]map[fixKey][]lint.Fix)}
}

func (c *fixCache) cacheFixes(uri string, key fixKey, fixes []lint.Fix) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fixes[uri] == nil {
		c.fixes[uri] = make(map[fixKey][]lint.Fix)
	}
	c.fixes[uri][key] = fixes
}

func (c *fixCache) getFixes(uri string, key fixKey) []lint.Fix {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fixes[uri][key]
}

func (c *fixCache) clearURI(uri string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.fixes, uri)
}

// cacheDiagnosticFixes stores fixes from lint diagnostics for later code
// action requests.
func (s *Server) cacheDiagnosticFixes(doc *Document, diagnostics []lint.Diagnostic) {
	for _, d := range diagnostics {
		if len(d.Fixes) > 0 {
			s.fixes.cacheFixes(doc.URI, fixKey{ruleID: d.RuleID, start: doc.toPosition(d.Pos)}, d.Fixes)
		}
	}
}

// handleCodeAction handles the textDocument/codeAction request.
func (s *Server) handleCodeAction(msg *JSONRPCMessage) error {
	var params CodeActionParams
	if err := s.decodeParams(msg, &params); err != nil {
		return err
	}

	s.sendResponse(msg.ID, s.getCodeActions(params), nil)
	return nil
}

// getCodeActions returns quick fixes for the diagnostics in the request.
func (s *Server) getCodeActions(params CodeActionParams) []CodeAction {
	actions := []CodeAction{}
	if len(params.Context.Only) > 0 && !slices.Contains(params.Context.Only, CodeActionKindQuickFix) {
		return actions
	}

	uri := params.TextDocument.URI
	doc := s.documents.Get(uri)
	if doc == nil {
		return actions
	}
	for _, diag := range params.Context.Diagnostics {
		fixes := s.fixes.getFixes(uri, fixKey{ruleID: diag.Code, start: diag.Range.Start})
		for _, fix := range fixes {
			actions = append(actions, CodeAction{
				Title:       fix.Description,
				Kind:        CodeActionKindQuickFix,
				Diagnostics: []Diagnostic{diag},
				IsPreferred: len(fixes) == 1,
				Edit: &WorkspaceEdit{
					Changes: map[string][]TextEdit{uri: convertTextEdits(doc, fix.TextEdits)},
				},
			})
		}
	}
	return actions
}

// convertTextEdits converts lint text edits to LSP text edits.
func convertTextEdits(doc *Document, edits []lint.TextEdit) []TextEdit {
	result := make([]TextEdit, len(edits))
	for i, edit := range edits {
		result[i] = TextEdit{
			Range:   Range{Start: doc.toPosition(edit.Pos), End: doc.toPosition(edit.EndPos)},
			NewText: edit.NewText,
		}
	}
	return result
}
