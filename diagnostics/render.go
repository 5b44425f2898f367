// Package diagnostics renders chase progress — per-step summaries, GRD
// strata, and proof trees — as colored tables for the debug treatment
// (spec.md §4.10), grounded on the janus-datalog example's table/color
// formatters.
package diagnostics

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// StepSummary is one chase step's outcome, independent of package chase's
// own types so this package stays import-free of it.
type StepSummary struct {
	Step         int
	ScheduledRules int
	Triggers     int
	Created      []string
	FiredRules   []string
	TotalFacts   int
	Halted       string
}

func newTable(w io.Writer, headers []string) *tablewriter.Table {
	alignment := make([]tw.Align, len(headers))
	for i := range alignment {
		alignment[i] = tw.AlignLeft
	}
	table := tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header(headers)
	return table
}

// RenderStep prints one step's summary as a markdown table to w.
func RenderStep(w io.Writer, s StepSummary) {
	title := fmt.Sprintf("step %d", s.Step)
	if color.NoColor {
		fmt.Fprintln(w, title)
	} else {
		fmt.Fprintln(w, color.CyanString(title))
	}
	table := newTable(w, []string{"scheduled", "triggers", "created", "fired rules", "total facts", "halt"})
	table.Append([]string{
		fmt.Sprintf("%d", s.ScheduledRules),
		fmt.Sprintf("%d", s.Triggers),
		fmt.Sprintf("%d", len(s.Created)),
		fmt.Sprintf("%d", len(s.FiredRules)),
		fmt.Sprintf("%d", s.TotalFacts),
		s.Halted,
	})
	table.Render()
	if len(s.Created) > 0 {
		label := "created: "
		if !color.NoColor {
			label = color.GreenString(label)
		}
		fmt.Fprintln(w, label+strings.Join(s.Created, ", "))
	}
}

// StratumSummary is one GRD stratum's rule ids, for RenderStrata.
type StratumSummary struct {
	Index int
	Rules []string
}

// RenderStrata prints each stratum's rule set in evaluation order.
func RenderStrata(w io.Writer, strata []StratumSummary) {
	table := newTable(w, []string{"stratum", "rules"})
	for _, s := range strata {
		table.Append([]string{fmt.Sprintf("%d", s.Index), strings.Join(s.Rules, ", ")})
	}
	table.Render()
}

// ProofStep is one derivation hop: atom was derived by rule under a
// printable substitution.
type ProofStep struct {
	Atom  string
	Rule  string
	Sub   string
	Depth int
}

// RenderProof prints a derivation chain as an indented tree, one line per
// step in the order given, each indented by its Depth, grounded on the
// pattern of annotations/output.go's
// latency-then-arrow event lines.
func RenderProof(w io.Writer, steps []ProofStep) {
	arrow := " -> "
	if !color.NoColor {
		arrow = color.YellowString(" -> ")
	}
	for _, s := range steps {
		indent := strings.Repeat("  ", s.Depth)
		atom := s.Atom
		if !color.NoColor {
			atom = color.CyanString(atom)
		}
		fmt.Fprintf(w, "%s%s%s%s(%s)\n", indent, atom, arrow, s.Rule, s.Sub)
	}
}
