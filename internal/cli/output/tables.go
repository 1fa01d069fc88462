package output

import (
	"encoding/json"
	"fmt"
	"math/big"
	"slices"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/looplang/internal/state"
	"github.com/leapstack-labs/looplang/pkg/lint"
	"github.com/leapstack-labs/looplang/pkg/token"
)

// ShortIDLen is the run ID prefix length shown in listings.
const ShortIDLen = 8

func (r *Renderer) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	return t
}

// Bindings renders final variable values, sorted by name.
func (r *Renderer) Bindings(vars map[string]*big.Int) error {
	values := make(map[string]string, len(vars))
	for name, v := range vars {
		values[name] = v.String()
	}
	return r.values(values)
}

func (r *Renderer) values(values map[string]string) error {
	names := sortedKeys(values)
	switch r.EffectiveMode() {
	case ModeJSON:
		return r.JSON(numbers(values))
	case ModeTable:
		if len(names) == 0 {
			r.Muted("(no variables)")
			return nil
		}
		t := r.newTable()
		t.AppendHeader(table.Row{"Variable", "Value"})
		for _, name := range names {
			t.AppendRow(table.Row{name, values[name]})
		}
		t.Render()
	default:
		for _, name := range names {
			r.Printf("%s = %s\n", name, values[name])
		}
	}
	return nil
}

type tokenView struct {
	Type    string `json:"type"`
	Literal string `json:"literal,omitempty"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Offset  int    `json:"offset"`
}

// Tokens renders a token listing.
func (r *Renderer) Tokens(toks []token.Token) error {
	switch r.EffectiveMode() {
	case ModeJSON:
		views := make([]tokenView, 0, len(toks))
		for _, tok := range toks {
			views = append(views, tokenView{
				Type:    tok.Type.String(),
				Literal: tok.Literal,
				Line:    tok.Pos.Line,
				Column:  tok.Pos.Column,
				Offset:  tok.Pos.Offset,
			})
		}
		return r.JSON(views)
	case ModeTable:
		t := r.newTable()
		t.AppendHeader(table.Row{"Pos", "Type", "Literal"})
		for _, tok := range toks {
			t.AppendRow(table.Row{tok.Pos.String(), tok.Type.String(), tok.Literal})
		}
		t.Render()
	default:
		for _, tok := range toks {
			r.Printf("%s\t%s\n", tok.Pos, tok)
		}
	}
	return nil
}

type runView struct {
	ID         string                 `json:"id"`
	Source     string                 `json:"source"`
	SourceHash string                 `json:"source_hash"`
	Arithmetic string                 `json:"arithmetic"`
	Status     string                 `json:"status"`
	Error      string                 `json:"error,omitempty"`
	Statements int64                  `json:"statements"`
	Iterations int64                  `json:"iterations"`
	StartedAt  time.Time              `json:"started_at"`
	DurationUS int64                  `json:"duration_us"`
	Program    string                 `json:"program,omitempty"`
	Inputs     map[string]json.Number `json:"inputs,omitempty"`
	Outputs    map[string]json.Number `json:"outputs,omitempty"`
}

func newRunView(run *state.Run, detail bool) runView {
	v := runView{
		ID:         run.ID,
		Source:     run.Source,
		SourceHash: run.SourceHash,
		Arithmetic: run.Arithmetic,
		Status:     string(run.Status),
		Error:      run.Error,
		Statements: run.Statements,
		Iterations: run.Iterations,
		StartedAt:  run.StartedAt,
		DurationUS: run.Duration.Microseconds(),
	}
	if detail {
		v.Program = run.Program
		v.Inputs = numbers(run.Inputs)
		v.Outputs = numbers(run.Outputs)
	}
	return v
}

// Runs renders a run history listing.
func (r *Renderer) Runs(runs []*state.Run) error {
	switch r.EffectiveMode() {
	case ModeJSON:
		views := make([]runView, 0, len(runs))
		for _, run := range runs {
			views = append(views, newRunView(run, false))
		}
		return r.JSON(views)
	case ModeTable:
		if len(runs) == 0 {
			r.Muted("No runs recorded.")
			return nil
		}
		t := r.newTable()
		t.AppendHeader(table.Row{"ID", "Started", "Source", "Status", "Iterations", "Duration"})
		for _, run := range runs {
			t.AppendRow(table.Row{
				shortID(run.ID),
				run.StartedAt.Local().Format(time.DateTime),
				run.Source,
				string(run.Status),
				run.Iterations,
				run.Duration.Round(time.Microsecond).String(),
			})
		}
		t.Render()
	default:
		for _, run := range runs {
			r.Printf("%s %s %s %s\n", shortID(run.ID), run.StartedAt.UTC().Format(time.RFC3339), run.Status, run.Source)
		}
	}
	return nil
}

// Run renders one run in detail.
func (r *Renderer) Run(run *state.Run) error {
	if r.EffectiveMode() == ModeJSON {
		return r.JSON(newRunView(run, true))
	}
	r.Header(1, "Run "+run.ID)
	r.Println(FormatKeyValue("source", run.Source))
	r.Println(FormatKeyValue("status", string(run.Status)))
	if run.Error != "" {
		r.Println(FormatKeyValue("error", run.Error))
	}
	r.Println(FormatKeyValue("arithmetic", run.Arithmetic))
	r.Println(FormatKeyValue("started", run.StartedAt.UTC().Format(time.RFC3339)))
	r.Println(FormatKeyValue("duration", run.Duration.String()))
	r.Println(FormatKeyValue("statements", fmt.Sprint(run.Statements)))
	r.Println(FormatKeyValue("iterations", fmt.Sprint(run.Iterations)))
	r.Println()
	r.Header(2, "Program")
	r.Println(strings.TrimRight(run.Program, "\n"))
	if len(run.Inputs) > 0 {
		r.Header(2, "Inputs")
		if err := r.values(run.Inputs); err != nil {
			return err
		}
	}
	if run.Status == state.RunStatusSuccess {
		r.Header(2, "Outputs")
		return r.values(run.Outputs)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > ShortIDLen {
		return id[:ShortIDLen]
	}
	return id
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func numbers(m map[string]string) map[string]json.Number {
	out := make(map[string]json.Number, len(m))
	for k, v := range m {
		out[k] = json.Number(v)
	}
	return out
}

// Finding is one lint result in a file.
type Finding struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s (%s)", f.File, f.Line, f.Column, f.Severity, f.Message, f.Rule)
}

// Findings renders lint results. Text mode prints one line per finding.
func (r *Renderer) Findings(findings []Finding) error {
	switch r.EffectiveMode() {
	case ModeJSON:
		if findings == nil {
			findings = []Finding{}
		}
		return r.JSON(findings)
	case ModeTable:
		if len(findings) == 0 {
			return nil
		}
		t := r.newTable()
		t.AppendHeader(table.Row{"File", "Pos", "Rule", "Severity", "Message"})
		for _, f := range findings {
			t.AppendRow(table.Row{f.File, fmt.Sprintf("%d:%d", f.Line, f.Column), f.Rule, f.Severity, f.Message})
		}
		t.Render()
	default:
		for _, f := range findings {
			r.Println(f.String())
		}
	}
	return nil
}

// Rules renders a lint rule listing.
func (r *Renderer) Rules(rules []lint.RuleDef) error {
	switch r.EffectiveMode() {
	case ModeJSON:
		infos := make([]lint.RuleInfo, 0, len(rules))
		for _, rule := range rules {
			infos = append(infos, rule.Info())
		}
		return r.JSON(infos)
	case ModeTable:
		t := r.newTable()
		t.AppendHeader(table.Row{"ID", "Name", "Severity", "Description"})
		for _, rule := range rules {
			t.AppendRow(table.Row{rule.ID, rule.Name, rule.Severity.String(), rule.Description})
		}
		t.Render()
	default:
		for _, rule := range rules {
			r.Printf("%s  %-22s %-8s %s\n", rule.ID, rule.Name, rule.Severity, rule.Description)
		}
	}
	return nil
}

// Rule renders one lint rule with its documentation.
func (r *Renderer) Rule(rule lint.RuleDef) error {
	if r.EffectiveMode() == ModeJSON {
		return r.JSON(rule.Info())
	}

	r.Header(1, rule.ID+" "+rule.Name)
	r.Println(FormatKeyValue("Group", rule.Group))
	r.Println(FormatKeyValue("Severity", rule.Severity.String()))
	r.Println(FormatKeyValue("Summary", rule.Description))
	if rule.Rationale != "" {
		r.Println()
		r.Println(rule.Rationale)
	}
	if rule.BadExample != "" {
		r.Println()
		r.Header(2, "Flagged")
		r.Println(rule.BadExample)
	}
	if rule.GoodExample != "" {
		r.Println()
		r.Header(2, "Preferred")
		r.Println(rule.GoodExample)
	}
	return nil
}
