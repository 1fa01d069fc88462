package lsp

import (
	"strings"
	"sync"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/leapstack-labs/looplang/pkg/ast"
	"github.com/leapstack-labs/looplang/pkg/parser"
	"github.com/leapstack-labs/looplang/pkg/token"
)

// Document represents an open text document in the editor.
type Document struct {
	URI     string // Document URI (file:///path/to/prog.loop)
	Content string // Full document content
	Version int    // Version number, incremented on each change
	Lines   []int  // Byte offsets of line starts for fast position lookups

	Program  *ast.Program // nil when ParseErr is set
	ParseErr error
}

// DocumentStore manages open documents in memory. Every stored document is
// parsed once per version.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]*Document
}

// NewDocumentStore creates a new document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]*Document),
	}
}

func newDocument(uri, content string, version int) *Document {
	doc := &Document{
		URI:     uri,
		Content: content,
		Version: version,
		Lines:   computeLineOffsets(content),
	}
	doc.Program, doc.ParseErr = parser.Parse(content)
	return doc
}

// Open adds or replaces a document in the store.
func (s *DocumentStore) Open(uri string, content string, version int) *Document {
	doc := newDocument(uri, content, version)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[uri] = doc
	return doc
}

// Close removes a document from the store.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.documents, uri)
}

// Get retrieves a document by URI.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.documents[uri]
}

// Update replaces an open document's content. Documents are immutable once
// stored, so readers holding the previous version are unaffected. Returns
// nil if the document is not open.
func (s *DocumentStore) Update(uri string, content string, version int) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[uri]; !ok {
		return nil
	}
	doc := newDocument(uri, content, version)
	s.documents[uri] = doc
	return doc
}

// List returns all open document URIs.
func (s *DocumentStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uris := make([]string, 0, len(s.documents))
	for uri := range s.documents {
		uris = append(uris, uri)
	}
	return uris
}

// computeLineOffsets calculates byte offsets for each line start.
func computeLineOffsets(content string) []int {
	offsets := []int{0} // First line starts at offset 0

	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}

	return offsets
}

// PositionToOffset converts a Position to a byte offset in the document.
// Characters count UTF-16 code units; positions past the end of a line clamp
// to the line end.
func (d *Document) PositionToOffset(pos Position) int {
	if d == nil || len(d.Lines) == 0 {
		return 0
	}

	line := int(pos.Line)
	if line >= len(d.Lines) {
		return len(d.Content)
	}

	lineEnd := len(d.Content)
	if line+1 < len(d.Lines) {
		lineEnd = d.Lines[line+1] - 1
	}

	offset := d.Lines[line]
	for units := 0; offset < lineEnd && units < int(pos.Character); {
		r, size := utf8.DecodeRuneInString(d.Content[offset:])
		units += utf16Len(r)
		offset += size
	}
	return offset
}

// OffsetToPosition converts a byte offset to a Position.
func (d *Document) OffsetToPosition(offset int) Position {
	if d == nil || len(d.Lines) == 0 {
		return Position{}
	}

	offset = max(0, min(offset, len(d.Content)))

	line := 0
	for i, lineOffset := range d.Lines {
		if lineOffset > offset {
			break
		}
		line = i
	}

	units := 0
	for _, r := range d.Content[d.Lines[line]:offset] {
		units += utf16Len(r)
	}
	return Position{
		Line:      uint32(line),  //nolint:gosec // G115: line index is non-negative
		Character: uint32(units), //nolint:gosec // G115: unit count is non-negative
	}
}

func utf16Len(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}

// EndPosition returns the position just past the last character.
func (d *Document) EndPosition() Position {
	return d.OffsetToPosition(len(d.Content))
}

// GetTextBefore returns the text before the given position.
func (d *Document) GetTextBefore(pos Position) string {
	offset := d.PositionToOffset(pos)
	if offset <= 0 {
		return ""
	}
	return d.Content[:offset]
}

// GetWordAtPosition returns the word under or immediately before the given
// position and its range.
func (d *Document) GetWordAtPosition(pos Position) (string, Range) {
	offset := d.PositionToOffset(pos)

	start := offset
	for start > 0 && isWordChar(d.Content[start-1]) {
		start--
	}

	end := offset
	for end < len(d.Content) && isWordChar(d.Content[end]) {
		end++
	}

	if start == end {
		return "", Range{Start: pos, End: pos}
	}

	return d.Content[start:end], Range{
		Start: d.OffsetToPosition(start),
		End:   d.OffsetToPosition(end),
	}
}

// isWordChar returns true if the character is part of an identifier or
// number.
func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '_'
}

// toPosition converts a source position to an LSP position.
func (d *Document) toPosition(p token.Position) Position {
	return d.OffsetToPosition(p.Offset)
}

// toRange converts a source span to an LSP range. An invalid end yields a
// one-character range.
func (d *Document) toRange(start, end token.Position) Range {
	if !end.IsValid() || end.Offset <= start.Offset {
		_, size := utf8.DecodeRuneInString(d.Content[min(start.Offset, len(d.Content)):])
		end = token.Position{Offset: start.Offset + max(size, 1)}
	}
	return Range{Start: d.toPosition(start), End: d.toPosition(end)}
}

// URIToPath converts a file:// URI to a file system path.
func URIToPath(uri string) string {
	const prefix = "file://"
	if strings.HasPrefix(uri, prefix) {
		return uri[len(prefix):]
	}
	return uri
}
