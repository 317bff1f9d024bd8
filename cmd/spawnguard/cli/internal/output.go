package internal

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gookit/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

const noShortName = "(none)"

// WriteJSON writes v as indented JSON
func WriteJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// WriteCheckTable writes one row per evaluated identity
func WriteCheckTable(w io.Writer, results []CheckResult) {
	t := newTable(w)
	t.AppendHeader(table.Row{"NAME", "TYPE", "DECISION", "KEYWORD", "REASON"})
	for _, r := range results {
		t.AppendRow(table.Row{shortName(r.ShortName), r.TypeName, formatDecision(r.Decision), r.Keyword, r.Reason})
	}
	t.Render()
}

// WriteSimulationTable writes a summary followed by the destroyed and kept entities
func WriteSimulationTable(w io.Writer, r SimulationReport) {
	fmt.Fprintf(w, " %s Policy %s\n", color.Green.Sprint("✔"), r.Rules)
	sweep := "disabled"
	if r.Sweep {
		sweep = "enabled"
	}
	fmt.Fprintf(w, "   %s %-20s %s\n", "├──", "Startup sweep", sweep)
	fmt.Fprintf(w, "   %s %-20s %s\n", "├──", "Destroyed", fmt.Sprintf("[%d entities]", len(r.Destroyed)))
	fmt.Fprintf(w, "   %s %-20s %s\n", "└──", "Kept", fmt.Sprintf("[%d entities]", len(r.Kept)))
	fmt.Fprintln(w)

	if len(r.Destroyed) == 0 && len(r.Kept) == 0 {
		fmt.Fprintln(w, "No entities in the world.")
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"HANDLE", "NAME", "TYPE", "RESULT", "KEYWORD", "ORIGIN"})
	for _, e := range r.Destroyed {
		t.AppendRow(table.Row{e.Handle, shortName(e.ShortName), e.TypeName, color.Red.Sprint("destroyed"), e.Keyword, e.Origin})
	}
	for _, e := range r.Kept {
		t.AppendRow(table.Row{e.Handle, shortName(e.ShortName), e.TypeName, color.Green.Sprint("kept"), "", ""})
	}
	t.Render()
}

// newTable creates a borderless table in the grype/syft style
func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)

	t.Style().Options.SeparateHeader = false
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Options.SeparateFooter = false
	t.Style().Options.SeparateRows = false
	return t
}

func formatDecision(decision string) string {
	if decision == decisionReject {
		return color.Red.Sprint(decision)
	}
	return color.Green.Sprint(decision)
}

func shortName(s string) string {
	if s == "" {
		return noShortName
	}
	return s
}
