package lint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/looplang/pkg/ast"
	"github.com/leapstack-labs/looplang/pkg/token"
)

// BoundReassigned flags assignments inside a loop body to a variable the
// loop bound reads.
var BoundReassigned = RuleDef{
	ID:          "LL01",
	Name:        "loop.bound-reassigned",
	Group:       "loop",
	Description: "Loop bound variable is reassigned inside the loop body",
	Severity:    SeverityWarning,
	Check:       checkBoundReassigned,
	Rationale: "The iteration count is captured when the loop starts. Changing the " +
		"bound variable inside the body does not shorten or extend the loop, " +
		"which readers often expect it to.",
	BadExample:  "loop n do\n  n := n - 1\nend",
	GoodExample: "k := n\nloop n do\n  k := k - 1\nend",
}

// ZeroBound flags loops whose bound is the literal 0.
var ZeroBound = RuleDef{
	ID:          "LL02",
	Name:        "loop.zero-bound",
	Group:       "loop",
	Description: "Loop bound is the literal 0 so the body never runs",
	Severity:    SeverityWarning,
	Check:       checkZeroBound,
	Rationale:   "A loop that runs zero times is dead code.",
	BadExample:  "loop 0 do\n  x := x + 1\nend",
}

// EmptyBody flags loops with no statements in their body.
var EmptyBody = RuleDef{
	ID:          "LL03",
	Name:        "loop.empty-body",
	Group:       "loop",
	Description: "Loop body is empty",
	Severity:    SeverityInfo,
	Check:       checkEmptyBody,
	Rationale:   "An empty loop has no effect regardless of its bound.",
	BadExample:  "loop x do end",
}

// SelfAssign flags assignments that leave the target unchanged.
var SelfAssign = RuleDef{
	ID:          "LL04",
	Name:        "assign.self",
	Group:       "assign",
	Description: "Assignment leaves the variable unchanged",
	Severity:    SeverityWarning,
	Check:       checkSelfAssign,
	Rationale:   "Assigning a variable to itself, or adding or subtracting 0, is a no-op.",
	BadExample:  "x := x + 0",
}

// NeverAssigned flags variables that are read but never assigned.
var NeverAssigned = RuleDef{
	ID:          "LL05",
	Name:        "vars.never-assigned",
	Group:       "vars",
	Description: "Variable is read but never assigned",
	Severity:    SeverityHint,
	Check:       checkNeverAssigned,
	Rationale: "Unassigned variables read as 0. That is intended for program " +
		"inputs supplied as bindings, and a typo otherwise.",
	BadExample:  "total := totl + 1",
	GoodExample: "total := total + 1",
}

func init() {
	Register(BoundReassigned)
	Register(ZeroBound)
	Register(EmptyBody)
	Register(SelfAssign)
	Register(NeverAssigned)
}

func checkBoundReassigned(prog *ast.Program) []Diagnostic {
	var diags []Diagnostic
	reported := make(map[*ast.AssignStmt]bool)

	ast.Inspect(prog, func(n ast.Node) bool {
		loop, ok := n.(*ast.LoopStmt)
		if !ok {
			return true
		}
		bound := identNames(loop.Bound)
		if len(bound) == 0 {
			return true
		}
		ast.Inspect(loop.Body, func(n ast.Node) bool {
			assign, ok := n.(*ast.AssignStmt)
			if !ok || !bound[assign.Name] || reported[assign] {
				return true
			}
			reported[assign] = true
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("%s is the bound of the loop at %s; reassigning it does not change the iteration count",
					assign.Name, loop.LoopPos),
				Pos:    assign.NamePos,
				EndPos: advance(assign.NamePos, len(assign.Name)),
			})
			return true
		})
		return true
	})
	return diags
}

func checkZeroBound(prog *ast.Program) []Diagnostic {
	var diags []Diagnostic
	ast.Inspect(prog, func(n ast.Node) bool {
		loop, ok := n.(*ast.LoopStmt)
		if !ok {
			return true
		}
		num, ok := loop.Bound.(*ast.Number)
		if !ok || num.Value.Sign() != 0 {
			return true
		}
		diags = append(diags, Diagnostic{
			Message: "loop bound is 0; the body never runs",
			Pos:     loop.LoopPos,
			EndPos:  exprEnd(loop.Bound),
			Fixes:   []Fix{removeLoop(loop)},
		})
		return true
	})
	return diags
}

func checkEmptyBody(prog *ast.Program) []Diagnostic {
	var diags []Diagnostic
	ast.Inspect(prog, func(n ast.Node) bool {
		loop, ok := n.(*ast.LoopStmt)
		if !ok || len(loop.Body.Stmts) > 0 {
			return true
		}
		diags = append(diags, Diagnostic{
			Message: "loop body is empty",
			Pos:     loop.LoopPos,
			EndPos:  loopEnd(loop),
			Fixes:   []Fix{removeLoop(loop)},
		})
		return true
	})
	return diags
}

func checkSelfAssign(prog *ast.Program) []Diagnostic {
	var diags []Diagnostic
	ast.Inspect(prog, func(n ast.Node) bool {
		assign, ok := n.(*ast.AssignStmt)
		if !ok || !isIdentity(assign.Name, assign.Value) {
			return true
		}
		end := exprEnd(assign.Value)
		diags = append(diags, Diagnostic{
			Message: fmt.Sprintf("assignment leaves %s unchanged", assign.Name),
			Pos:     assign.NamePos,
			EndPos:  end,
			Fixes: []Fix{{
				Description: "Remove assignment",
				TextEdits:   []TextEdit{{Pos: assign.NamePos, EndPos: end}},
			}},
		})
		return true
	})
	return diags
}

func checkNeverAssigned(prog *ast.Program) []Diagnostic {
	assigned := make(map[string]bool)
	ast.Inspect(prog, func(n ast.Node) bool {
		if a, ok := n.(*ast.AssignStmt); ok {
			assigned[a.Name] = true
		}
		return true
	})

	var diags []Diagnostic
	reported := make(map[string]bool)
	ast.Inspect(prog, func(n ast.Node) bool {
		id, ok := n.(*ast.Ident)
		if !ok || assigned[id.Name] || reported[id.Name] {
			return true
		}
		reported[id.Name] = true
		diags = append(diags, Diagnostic{
			Message: fmt.Sprintf("%s is never assigned; it reads as 0 unless supplied as a binding", id.Name),
			Pos:     id.NamePos,
			EndPos:  advance(id.NamePos, len(id.Name)),
		})
		return true
	})
	return diags
}

// isIdentity reports whether assigning value to name leaves name unchanged.
func isIdentity(name string, value ast.Expr) bool {
	switch v := value.(type) {
	case *ast.Ident:
		return v.Name == name
	case *ast.BinaryExpr:
		if isIdent(v.Left, name) && isZero(v.Right) {
			return true
		}
		return v.Op == ast.OpAdd && isZero(v.Left) && isIdent(v.Right, name)
	default:
		return false
	}
}

func isIdent(e ast.Expr, name string) bool {
	id, ok := e.(*ast.Ident)
	return ok && id.Name == name
}

func isZero(e ast.Expr) bool {
	num, ok := e.(*ast.Number)
	return ok && num.Value.Sign() == 0
}

func identNames(e ast.Expr) map[string]bool {
	names := make(map[string]bool)
	ast.Inspect(e, func(n ast.Node) bool {
		if id, ok := n.(*ast.Ident); ok {
			names[id.Name] = true
		}
		return true
	})
	return names
}

func removeLoop(loop *ast.LoopStmt) Fix {
	return Fix{
		Description: "Remove loop",
		TextEdits:   []TextEdit{{Pos: loop.LoopPos, EndPos: loopEnd(loop)}},
	}
}

// loopEnd returns the position just past the loop's closing keyword.
func loopEnd(loop *ast.LoopStmt) token.Position {
	return advance(loop.EndPos, len("end"))
}

// exprEnd returns the position just past the last character of e. Terms
// never span lines.
func exprEnd(e ast.Expr) token.Position {
	switch e := e.(type) {
	case *ast.Ident:
		return advance(e.NamePos, len(e.Name))
	case *ast.Number:
		return advance(e.ValuePos, len(e.Literal))
	case *ast.BinaryExpr:
		return exprEnd(e.Right)
	default:
		return e.Pos()
	}
}

func advance(pos token.Position, n int) token.Position {
	return token.Position{Line: pos.Line, Column: pos.Column + n, Offset: pos.Offset + n}
}

// ApplyFixes applies the first fix of each diagnostic to src. Edits that
// overlap an edit already applied are skipped. A removed statement takes its
// ";" separator with it, and a removal that leaves its line blank takes the
// whole line. It returns the new source and the number of fixes applied.
func ApplyFixes(src string, diags []Diagnostic) (string, int) {
	var edits []TextEdit
	applied := 0
	for _, d := range diags {
		if len(d.Fixes) == 0 {
			continue
		}
		fix := d.Fixes[0]
		if overlapsAny(edits, fix.TextEdits) {
			continue
		}
		edits = append(edits, fix.TextEdits...)
		applied++
	}
	if applied == 0 {
		return src, 0
	}

	sort.Slice(edits, func(i, j int) bool { return edits[i].Pos.Offset > edits[j].Pos.Offset })
	out := src
	for _, e := range edits {
		start, end := e.Pos.Offset, e.EndPos.Offset
		if e.NewText == "" {
			start, end = widenRemoval(out, start, end)
		}
		out = out[:start] + e.NewText + out[end:]
	}
	return out, applied
}

// widenRemoval extends the removal of src[start:end] over the separator and
// blanks that belonged to the removed statement.
func widenRemoval(src string, start, end int) (int, int) {
	lineStart := strings.LastIndexByte(src[:start], '\n') + 1
	before := strings.TrimRight(src[lineStart:start], " \t")

	if j := skipBlanks(src, end); j < len(src) && src[j] == ';' {
		end = skipBlanks(src, j+1)
	} else if before == "" {
		end = j
	}
	if end < len(src) && src[end] != '\n' {
		return start, end
	}

	if before == "" {
		if end < len(src) {
			end++
		}
		return lineStart, end
	}
	// The statement ended the line: drop the separator joining it to the
	// previous one.
	before = strings.TrimRight(strings.TrimSuffix(before, ";"), " \t")
	return lineStart + len(before), end
}

func skipBlanks(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

func overlapsAny(existing, candidate []TextEdit) bool {
	for _, c := range candidate {
		for _, e := range existing {
			if c.Pos.Offset < e.EndPos.Offset && e.Pos.Offset < c.EndPos.Offset {
				return true
			}
		}
	}
	return false
}
