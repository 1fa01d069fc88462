package lint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/looplang/internal/testutil"
	"github.com/leapstack-labs/looplang/pkg/lint"
)

func ruleIDs(diags []lint.Diagnostic) []string {
	ids := make([]string, 0, len(diags))
	for _, d := range diags {
		ids = append(ids, d.RuleID)
	}
	return ids
}

func TestAnalyzer_Rules(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "clean program",
			src:  "x := 3\ny := 0\nloop x do\n  y := y + 2\nend\n",
			want: []string{},
		},
		{
			name: "bound reassigned",
			src:  "n := 3\nloop n do\n  n := n - 1\nend\n",
			want: []string{"LL01"},
		},
		{
			name: "bound reassigned in nested loop reported once",
			src:  "n := 2\nloop n do\n  loop n do\n    n := 0\n  end\nend\n",
			want: []string{"LL01"},
		},
		{
			name: "zero bound",
			src:  "x := 1\nloop 0 do\n  x := 2\nend\n",
			want: []string{"LL02"},
		},
		{
			name: "zero bound with empty body",
			src:  "loop 0 do end",
			want: []string{"LL02", "LL03"},
		},
		{
			name: "empty body",
			src:  "x := 4\nloop x do end\n",
			want: []string{"LL03"},
		},
		{
			name: "self assignment",
			src:  "x := 1\nx := x\n",
			want: []string{"LL04"},
		},
		{
			name: "add zero",
			src:  "x := 1\nx := 0 + x\n",
			want: []string{"LL04"},
		},
		{
			name: "subtract zero",
			src:  "x := 1\nx := x - 0\n",
			want: []string{"LL04"},
		},
		{
			name: "zero minus self is not identity",
			src:  "x := 1\nx := 0 - x\n",
			want: []string{},
		},
		{
			name: "never assigned reported once",
			src:  "y := x + 1\nz := x\n",
			want: []string{"LL05"},
		},
		{
			name: "print reads count",
			src:  "print total",
			want: []string{"LL05"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := testutil.MustParse(t, tt.src)
			diags := lint.NewAnalyzer(nil).Analyze(prog)
			assert.Equal(t, tt.want, ruleIDs(diags))
		})
	}
}

func TestAnalyzer_Positions(t *testing.T) {
	prog := testutil.MustParse(t, "n := 3\nloop n do\n  n := n - 1\nend\n")
	diags := lint.NewAnalyzer(nil).Analyze(prog)
	require.Len(t, diags, 1)

	d := diags[0]
	assert.Equal(t, lint.SeverityWarning, d.Severity)
	assert.Equal(t, 3, d.Pos.Line)
	assert.Equal(t, 3, d.Pos.Column)
	assert.Equal(t, 4, d.EndPos.Column)
	assert.Equal(t, "n is the bound of the loop at 2:1; reassigning it does not change the iteration count", d.Message)
}

func TestAnalyzer_Config(t *testing.T) {
	prog := testutil.MustParse(t, "x := x\nloop 0 do end\n")

	cfg := lint.NewConfig().Disable("LL03").SetSeverity("LL04", lint.SeverityError)
	diags := lint.NewAnalyzer(cfg).Analyze(prog)

	require.Equal(t, []string{"LL04", "LL02"}, ruleIDs(diags))
	assert.Equal(t, lint.SeverityError, diags[0].Severity)
	assert.Equal(t, lint.SeverityWarning, diags[1].Severity)
}

func TestAnalyzer_NilProgram(t *testing.T) {
	assert.Nil(t, lint.NewAnalyzer(nil).Analyze(nil))
}

func TestNewConfigFrom(t *testing.T) {
	cfg, err := lint.NewConfigFrom([]string{"LL05"}, map[string]string{"LL01": "error"})
	require.NoError(t, err)
	assert.True(t, cfg.IsDisabled("LL05"))
	assert.Equal(t, lint.SeverityError, cfg.GetSeverity("LL01", lint.SeverityWarning))
	assert.Equal(t, lint.SeverityHint, cfg.GetSeverity("LL02", lint.SeverityHint))

	_, err = lint.NewConfigFrom([]string{"XX99"}, nil)
	assert.ErrorContains(t, err, `unknown lint rule "XX99"`)

	_, err = lint.NewConfigFrom(nil, map[string]string{"LL01": "loud"})
	assert.ErrorContains(t, err, `invalid severity "loud" for rule LL01`)
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want lint.Severity
		ok   bool
	}{
		{"error", lint.SeverityError, true},
		{"WARNING", lint.SeverityWarning, true},
		{"info", lint.SeverityInfo, true},
		{"hint", lint.SeverityHint, true},
		{"bogus", lint.SeverityWarning, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := lint.ParseSeverity(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, 5, lint.Count())

	rule, ok := lint.GetByID("LL02")
	require.True(t, ok)
	assert.Equal(t, "loop.zero-bound", rule.Name)
	assert.Equal(t, "warning", rule.Info().DefaultSeverity)

	loopRules := lint.GetByGroup("loop")
	assert.Equal(t, []string{"LL01", "LL02", "LL03"}, []string{loopRules[0].ID, loopRules[1].ID, loopRules[2].ID})

	_, ok = lint.GetByID("LL99")
	assert.False(t, ok)
}

func TestApplyFixes(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		want    string
		applied int
	}{
		{
			name:    "remove zero-bound loop",
			src:     "x := 1\nloop 0 do\n  x := 2\nend\nprint x\n",
			want:    "x := 1\nprint x\n",
			applied: 1,
		},
		{
			name:    "remove indented self assignment",
			src:     "x := 1\n  x := x + 0\nprint x\n",
			want:    "x := 1\nprint x\n",
			applied: 1,
		},
		{
			name:    "overlapping fixes applied once",
			src:     "loop 0 do end\nx := 1\n",
			want:    "x := 1\n",
			applied: 1,
		},
		{
			name:    "removal at end of line drops the joining separator",
			src:     "x := 1; x := x\n",
			want:    "x := 1\n",
			applied: 1,
		},
		{
			name:    "removal takes its trailing separator",
			src:     "loop 0 do\n  x := x\nend\ny := y + 0; z := 1\n",
			want:    "z := 1\n",
			applied: 2,
		},
		{
			name:    "removal between statements",
			src:     "a := 1; b := b - 0; c := 2\n",
			want:    "a := 1; c := 2\n",
			applied: 1,
		},
		{
			name:    "removal before a line comment",
			src:     "x := 1\ny := y + 0 # no-op\n",
			want:    "x := 1\n# no-op\n",
			applied: 1,
		},
		{
			name:    "nothing to fix",
			src:     "x := 1\n",
			want:    "x := 1\n",
			applied: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := testutil.MustParse(t, tt.src)
			diags := lint.NewAnalyzer(nil).Analyze(prog)
			got, n := lint.ApplyFixes(tt.src, diags)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.applied, n)
		})
	}
}
