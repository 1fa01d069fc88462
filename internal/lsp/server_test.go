package lsp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/looplang/internal/testutil"
	"github.com/leapstack-labs/looplang/pkg/lint"
)

const testURI = "file:///work/prog.loop"

// frame encodes a JSON-RPC message with its Content-Length header. A zero id
// makes a notification.
func frame(t *testing.T, id int, method string, params any) string {
	t.Helper()
	msg := map[string]any{"jsonrpc": "2.0", "method": method}
	if id != 0 {
		msg["id"] = id
	}
	if params != nil {
		msg["params"] = params
	}
	body, err := json.Marshal(msg)
	require.NoError(t, err)
	return fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(body), body)
}

// readFrames decodes every message the server wrote.
func readFrames(t *testing.T, out []byte) []JSONRPCMessage {
	t.Helper()
	r := bufio.NewReader(bytes.NewReader(out))
	var msgs []JSONRPCMessage
	for {
		line, err := r.ReadString('\n')
		if err == io.EOF {
			return msgs
		}
		require.NoError(t, err)
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Content-Length: ")))
		require.NoError(t, err)
		_, err = r.ReadString('\n') // blank separator
		require.NoError(t, err)

		body := make([]byte, n)
		_, err = io.ReadFull(r, body)
		require.NoError(t, err)

		var msg JSONRPCMessage
		require.NoError(t, json.Unmarshal(body, &msg))
		msgs = append(msgs, msg)
	}
}

func runSession(t *testing.T, frames ...string) []JSONRPCMessage {
	t.Helper()
	var out bytes.Buffer
	s := NewServer(strings.NewReader(strings.Join(frames, "")), &out,
		WithLogger(testutil.NewTestLogger(t)), WithVersion("1.2.3"))
	require.NoError(t, s.Run())
	return readFrames(t, out.Bytes())
}

func openParams(text string) map[string]any {
	return map[string]any{"textDocument": map[string]any{
		"uri": testURI, "languageId": "looplang", "version": 1, "text": text,
	}}
}

func decodeDiagnostics(t *testing.T, msg JSONRPCMessage) PublishDiagnosticsParams {
	t.Helper()
	require.Equal(t, "textDocument/publishDiagnostics", msg.Method)
	var p PublishDiagnosticsParams
	require.NoError(t, json.Unmarshal(msg.Params, &p))
	return p
}

func TestServer_Session(t *testing.T) {
	msgs := runSession(t,
		frame(t, 1, "initialize", map[string]any{"processId": 1, "rootUri": "file:///work"}),
		frame(t, 0, "initialized", map[string]any{}),
		frame(t, 0, "textDocument/didOpen", openParams("n := 3\nloop n do\n  n := n - 1\nend\n")),
		frame(t, 2, "workspace/symbol", map[string]any{}),
		frame(t, 3, "shutdown", nil),
		frame(t, 4, "textDocument/hover", map[string]any{}),
		frame(t, 0, "exit", nil),
	)
	require.Len(t, msgs, 5)

	var init InitializeResult
	require.NoError(t, json.Unmarshal(msgs[0].Result, &init))
	assert.True(t, init.Capabilities.HoverProvider)
	assert.True(t, init.Capabilities.DocumentFormattingProvider)
	assert.Equal(t, TextDocumentSyncKindFull, init.Capabilities.TextDocumentSync.Change)
	require.NotNil(t, init.ServerInfo)
	assert.Equal(t, "looplang", init.ServerInfo.Name)
	assert.Equal(t, "1.2.3", init.ServerInfo.Version)

	diags := decodeDiagnostics(t, msgs[1])
	assert.Equal(t, testURI, diags.URI)
	require.Len(t, diags.Diagnostics, 1)
	assert.Equal(t, "LL01", diags.Diagnostics[0].Code)
	assert.Equal(t, DiagnosticSeverityWarning, diags.Diagnostics[0].Severity)
	assert.Equal(t, Range{Start: Position{Line: 2, Character: 2}, End: Position{Line: 2, Character: 3}}, diags.Diagnostics[0].Range)

	require.NotNil(t, msgs[2].Error)
	assert.Equal(t, codeMethodNotFound, msgs[2].Error.Code)

	assert.Nil(t, msgs[3].Error)
	assert.Contains(t, []string{"", "null"}, string(msgs[3].Result))

	require.NotNil(t, msgs[4].Error, "requests after shutdown are rejected")
	assert.Equal(t, codeInvalidRequest, msgs[4].Error.Code)
}

func TestServer_DisconnectWithoutExit(t *testing.T) {
	msgs := runSession(t, frame(t, 1, "initialize", map[string]any{}))
	assert.Len(t, msgs, 1)
}

func TestServer_ChangeAndClose(t *testing.T) {
	msgs := runSession(t,
		frame(t, 0, "textDocument/didOpen", openParams("x := 1\n")),
		frame(t, 0, "textDocument/didChange", map[string]any{
			"textDocument":   map[string]any{"uri": testURI, "version": 2},
			"contentChanges": []map[string]any{{"text": "loop x do"}},
		}),
		frame(t, 0, "textDocument/didClose", map[string]any{"textDocument": map[string]any{"uri": testURI}}),
	)
	require.Len(t, msgs, 3)

	assert.Empty(t, decodeDiagnostics(t, msgs[0]).Diagnostics)

	changed := decodeDiagnostics(t, msgs[1])
	assert.Equal(t, 2, changed.Version)
	require.Len(t, changed.Diagnostics, 1)
	d := changed.Diagnostics[0]
	assert.Equal(t, DiagnosticSeverityError, d.Severity)
	assert.Equal(t, `unexpected end of input, expected identifier, "loop", "print" or "end" in loop body`, d.Message)
	assert.Equal(t, Range{Start: Position{Line: 0, Character: 8}, End: Position{Line: 0, Character: 9}}, d.Range)

	assert.Empty(t, decodeDiagnostics(t, msgs[2]).Diagnostics)
}

func TestDiagnose_NonASCIIColumns(t *testing.T) {
	s := NewServer(strings.NewReader(""), io.Discard)

	doc := s.documents.Open(testURI, "print \"é😀\"; y := y\n", 1)
	diags := s.diagnose(doc)
	require.Len(t, diags, 1)
	assert.Equal(t, "LL04", diags[0].Code)
	assert.Equal(t, Range{Start: Position{Line: 0, Character: 13}, End: Position{Line: 0, Character: 19}}, diags[0].Range)

	actions := s.getCodeActions(CodeActionParams{
		TextDocument: TextDocumentIdentifier{URI: testURI},
		Context:      CodeActionContext{Diagnostics: diags},
	})
	require.Len(t, actions, 1)
	assert.Equal(t, diags[0].Range, actions[0].Edit.Changes[testURI][0].Range)

	bad := s.documents.Update(testURI, "print \"é\" @", 2)
	parseDiags := s.diagnose(bad)
	require.Len(t, parseDiags, 1)
	assert.Equal(t, Range{Start: Position{Line: 0, Character: 10}, End: Position{Line: 0, Character: 11}}, parseDiags[0].Range)
}

func TestServer_LintConfig(t *testing.T) {
	var out bytes.Buffer
	s := NewServer(strings.NewReader(""), &out, WithLintConfig(lint.NewConfig().Disable("LL01")))
	doc := s.documents.Open(testURI, "n := 3\nloop n do\n  n := n - 1\nend\n", 1)
	assert.Empty(t, s.diagnose(doc))
}

func TestGetCompletions(t *testing.T) {
	tests := []struct {
		name    string
		content string
		pos     Position
		want    []string
	}{
		{
			name:    "variables by prefix",
			content: "count := 1\ncopy := 2\nprint co",
			pos:     Position{Line: 2, Character: 8},
			want:    []string{"copy", "count"},
		},
		{
			name:    "keyword with snippet in unparsable document",
			content: "x := 1\nlo",
			pos:     Position{Line: 1, Character: 2},
			want:    []string{"loop", "loop … end"},
		},
		{
			name:    "keywords are case-insensitive",
			content: "PR",
			pos:     Position{Line: 0, Character: 2},
			want:    []string{"print"},
		},
		{
			name:    "empty prefix offers everything",
			content: "a := 1\n",
			pos:     Position{Line: 1, Character: 0},
			want:    []string{"a", "loop", "loop … end", "do", "end", "print"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := newDocument(testURI, tt.content, 1)
			items := getCompletions(doc, tt.pos)
			labels := make([]string, 0, len(items))
			for _, it := range items {
				labels = append(labels, it.Label)
			}
			assert.Equal(t, tt.want, labels)
		})
	}

	assert.Empty(t, getCompletions(nil, Position{}))
}

func TestGetHover(t *testing.T) {
	doc := newDocument(testURI, "n := 3\nloop n do\n  n := n - 1\nend\n", 1)

	kw := getHover(doc, Position{Line: 1, Character: 1})
	require.NotNil(t, kw)
	assert.Equal(t, keywordDocs["loop"], kw.Contents.Value)

	v := getHover(doc, Position{Line: 0, Character: 0})
	require.NotNil(t, v)
	assert.Equal(t, "**n** (variable)\n\nAssigned 2 time(s), first at line 1. Read 2 time(s). Bounds 1 loop(s).", v.Contents.Value)
	assert.Equal(t, Range{Start: Position{Line: 0, Character: 0}, End: Position{Line: 0, Character: 1}}, *v.Range)

	assert.Nil(t, getHover(doc, Position{Line: 0, Character: 5}), "numbers have no hover")

	input := newDocument(testURI, "y := x\n", 1)
	h := getHover(input, Position{Line: 0, Character: 5})
	require.NotNil(t, h)
	assert.Contains(t, h.Contents.Value, "Never assigned")
}

func TestGetDefinition(t *testing.T) {
	doc := newDocument(testURI, "n := 3\nloop n do\n  n := n - 1\nend\n", 1)

	loc := getDefinition(doc, Position{Line: 2, Character: 7})
	require.NotNil(t, loc)
	assert.Equal(t, testURI, loc.URI)
	assert.Equal(t, Range{Start: Position{Line: 0, Character: 0}, End: Position{Line: 0, Character: 1}}, loc.Range)

	assert.Nil(t, getDefinition(doc, Position{Line: 1, Character: 1}), "keywords have no definition")

	mixed := newDocument(testURI, "Count := 1\nprint COUNT\n", 1)
	loc = getDefinition(mixed, Position{Line: 1, Character: 7})
	require.NotNil(t, loc)
	assert.Equal(t, Range{Start: Position{Line: 0, Character: 0}, End: Position{Line: 0, Character: 5}}, loc.Range)
	assert.Nil(t, getDefinition(newDocument(testURI, "y := x", 1), Position{Line: 0, Character: 5}))
}

func TestGetFormatting(t *testing.T) {
	doc := newDocument(testURI, "x:=1\nloop x do y:=y+x end\n", 1)
	edits := getFormatting(doc)
	require.Len(t, edits, 1)
	assert.Equal(t, "x := 1\nloop x do\n  y := y + x\nend\n", edits[0].NewText)
	assert.Equal(t, Range{Start: Position{}, End: Position{Line: 2, Character: 0}}, edits[0].Range)

	tidy := newDocument(testURI, "x := 1\n", 1)
	assert.Empty(t, getFormatting(tidy))
	assert.NotNil(t, getFormatting(tidy))

	assert.Nil(t, getFormatting(newDocument(testURI, "loop", 1)))
}

func TestGetCodeActions(t *testing.T) {
	s := NewServer(strings.NewReader(""), io.Discard)
	doc := s.documents.Open(testURI, "loop 0 do\n  x := 1\nend\nprint x\n", 1)
	diags := s.diagnose(doc)
	require.Len(t, diags, 1)
	assert.Equal(t, "LL02", diags[0].Code)

	actions := s.getCodeActions(CodeActionParams{
		TextDocument: TextDocumentIdentifier{URI: testURI},
		Context:      CodeActionContext{Diagnostics: diags},
	})
	require.Len(t, actions, 1)
	assert.Equal(t, "Remove loop", actions[0].Title)
	assert.True(t, actions[0].IsPreferred)
	edits := actions[0].Edit.Changes[testURI]
	require.Len(t, edits, 1)
	assert.Equal(t, Range{Start: Position{Line: 0, Character: 0}, End: Position{Line: 2, Character: 3}}, edits[0].Range)
	assert.Empty(t, edits[0].NewText)

	none := s.getCodeActions(CodeActionParams{
		TextDocument: TextDocumentIdentifier{URI: testURI},
		Context:      CodeActionContext{Diagnostics: diags, Only: []CodeActionKind{"refactor"}},
	})
	assert.Empty(t, none)

	s.fixes.clearURI(testURI)
	assert.Empty(t, s.getCodeActions(CodeActionParams{
		TextDocument: TextDocumentIdentifier{URI: testURI},
		Context:      CodeActionContext{Diagnostics: diags},
	}))
}
