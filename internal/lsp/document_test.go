package lsp

import (
	"strings"
	"testing"
)

func TestDocumentStore_OpenGetClose(t *testing.T) {
	store := NewDocumentStore()

	uri := "file:///test/prog.loop"
	content := "x := 1"

	store.Open(uri, content, 1)

	doc := store.Get(uri)
	if doc == nil {
		t.Fatal("expected document to exist")
	}
	if doc.URI != uri {
		t.Errorf("expected URI %s, got %s", uri, doc.URI)
	}
	if doc.Content != content {
		t.Errorf("expected content %q, got %q", content, doc.Content)
	}
	if doc.Version != 1 {
		t.Errorf("expected version 1, got %d", doc.Version)
	}
	if doc.Program == nil || doc.ParseErr != nil {
		t.Errorf("expected parsed program, got err %v", doc.ParseErr)
	}

	store.Close(uri)
	if store.Get(uri) != nil {
		t.Error("expected document to be nil after close")
	}
}

func TestDocumentStore_Update(t *testing.T) {
	store := NewDocumentStore()

	uri := "file:///test/prog.loop"
	first := store.Open(uri, "x := 1", 1)

	updated := store.Update(uri, "loop x do", 2)
	if updated == nil {
		t.Fatal("expected updated document")
	}
	if updated.Content != "loop x do" || updated.Version != 2 {
		t.Errorf("unexpected document %q v%d", updated.Content, updated.Version)
	}
	if updated.ParseErr == nil || updated.Program != nil {
		t.Error("expected parse error for incomplete loop")
	}
	if first.Content != "x := 1" {
		t.Error("previous version must not change")
	}

	if store.Update("file:///other.loop", "x := 1", 1) != nil {
		t.Error("expected nil when updating an unopened document")
	}
}

func TestDocumentStore_List(t *testing.T) {
	store := NewDocumentStore()

	store.Open("file:///a.loop", "a := 1", 1)
	store.Open("file:///b.loop", "b := 1", 1)
	store.Open("file:///c.loop", "c := 1", 1)

	if uris := store.List(); len(uris) != 3 {
		t.Errorf("expected 3 URIs, got %d", len(uris))
	}
}

func TestComputeLineOffsets(t *testing.T) {
	tests := []struct {
		content  string
		expected []int
	}{
		{"", []int{0}},
		{"abc", []int{0}},
		{"a\nb", []int{0, 2}},
		{"a\nb\nc", []int{0, 2, 4}},
		{"\n\n\n", []int{0, 1, 2, 3}},
		{"line1\nline2\nline3", []int{0, 6, 12}},
	}

	for _, tt := range tests {
		offsets := computeLineOffsets(tt.content)
		if len(offsets) != len(tt.expected) {
			t.Errorf("content %q: expected %d offsets, got %d", tt.content, len(tt.expected), len(offsets))
			continue
		}
		for i, exp := range tt.expected {
			if offsets[i] != exp {
				t.Errorf("content %q: offset[%d] expected %d, got %d", tt.content, i, exp, offsets[i])
			}
		}
	}
}

func TestDocument_PositionToOffset(t *testing.T) {
	content := "line0\nline1\nline2"
	doc := &Document{
		Content: content,
		Lines:   computeLineOffsets(content),
	}

	tests := []struct {
		pos      Position
		expected int
	}{
		{Position{Line: 0, Character: 0}, 0},
		{Position{Line: 0, Character: 3}, 3},
		{Position{Line: 1, Character: 0}, 6},
		{Position{Line: 1, Character: 4}, 10},
		{Position{Line: 2, Character: 5}, 17},
		// Edge cases
		{Position{Line: 100, Character: 0}, len(content)},
		{Position{Line: 0, Character: 100}, 5}, // clamps to the line end
		{Position{Line: 2, Character: 100}, len(content)},
	}

	for _, tt := range tests {
		if offset := doc.PositionToOffset(tt.pos); offset != tt.expected {
			t.Errorf("PositionToOffset(%v): expected %d, got %d", tt.pos, tt.expected, offset)
		}
	}
}

func TestDocument_OffsetToPosition(t *testing.T) {
	content := "line0\nline1\nline2"
	doc := &Document{
		Content: content,
		Lines:   computeLineOffsets(content),
	}

	tests := []struct {
		offset   int
		expected Position
	}{
		{0, Position{Line: 0, Character: 0}},
		{5, Position{Line: 0, Character: 5}},
		{6, Position{Line: 1, Character: 0}},
		{17, Position{Line: 2, Character: 5}},
		// Edge cases
		{-1, Position{Line: 0, Character: 0}},
		{100, Position{Line: 2, Character: 5}},
	}

	for _, tt := range tests {
		if pos := doc.OffsetToPosition(tt.offset); pos != tt.expected {
			t.Errorf("OffsetToPosition(%d): expected %v, got %v", tt.offset, tt.expected, pos)
		}
	}
}

func TestDocument_UTF16Positions(t *testing.T) {
	content := "print \"é😀\"; y := y\nz := 1"
	doc := &Document{
		Content: content,
		Lines:   computeLineOffsets(content),
	}

	// "é" is one UTF-16 unit in two bytes, "😀" two units in four bytes.
	yOffset := strings.Index(content, "y")
	if pos := doc.OffsetToPosition(yOffset); pos != (Position{Line: 0, Character: 13}) {
		t.Errorf("OffsetToPosition(%d): got %v", yOffset, pos)
	}
	if offset := doc.PositionToOffset(Position{Line: 0, Character: 13}); offset != yOffset {
		t.Errorf("PositionToOffset: expected %d, got %d", yOffset, offset)
	}
	if offset := doc.PositionToOffset(Position{Line: 1, Character: 2}); offset != strings.Index(content, ":= 1") {
		t.Errorf("PositionToOffset on second line: got %d", offset)
	}
	if word, _ := doc.GetWordAtPosition(Position{Line: 0, Character: 18}); word != "y" {
		t.Errorf("GetWordAtPosition: got %q", word)
	}
}

func TestDocument_GetWordAtPosition(t *testing.T) {
	content := "total := count + 12"
	doc := &Document{
		Content: content,
		Lines:   computeLineOffsets(content),
	}

	tests := []struct {
		pos          Position
		expectedWord string
	}{
		{Position{Line: 0, Character: 0}, "total"},
		{Position{Line: 0, Character: 3}, "total"},
		{Position{Line: 0, Character: 5}, "total"}, // just past the word
		{Position{Line: 0, Character: 7}, ""},
		{Position{Line: 0, Character: 9}, "count"},
		{Position{Line: 0, Character: 18}, "12"},
		{Position{Line: 0, Character: 19}, "12"},
	}

	for _, tt := range tests {
		if word, _ := doc.GetWordAtPosition(tt.pos); word != tt.expectedWord {
			t.Errorf("GetWordAtPosition(%v): expected %q, got %q", tt.pos, tt.expectedWord, word)
		}
	}
}

func TestURIToPath(t *testing.T) {
	if got := URIToPath("file:///tmp/prog.loop"); got != "/tmp/prog.loop" {
		t.Errorf("unexpected path %q", got)
	}
	if got := URIToPath("/tmp/prog.loop"); got != "/tmp/prog.loop" {
		t.Errorf("unexpected path %q", got)
	}
}
