package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"qengine/engine"
)

// newTable returns a table in the workbench palette.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		}).
		Headers(headers...)
}

// countsTable renders the histogram of a counts report, one row per outcome
// in ascending bitstring order.
func countsTable(counts engine.Counts) string {
	total := counts.Total()
	t := newTable("STATE", "COUNT", "FREQ", "")
	for _, k := range counts.Keys() {
		frac := 0.0
		if total > 0 {
			frac = float64(counts[k]) / float64(total)
		}
		t.Row(k, strconv.Itoa(counts[k]), fmt.Sprintf("%.4f", frac), bar(frac, barW))
	}
	return t.String() + "\n"
}

// statesTable renders the non-negligible basis states of a finished run.
func statesTable(states []engine.BasisState) string {
	t := newTable("STATE", "AMPLITUDE", "PROB", "PHASE")
	for _, s := range states {
		t.Row("|"+s.Bits+"⟩", formatComplex(s.Amplitude), fmt.Sprintf("%.4f", s.Probability), fmt.Sprintf("%+.4f", s.Phase))
	}
	return t.String() + "\n"
}

// renderTable is the tabular counterpart of engine.Report. The memory format
// has no tabular form and falls back to the plain report.
func renderTable(e *engine.Engine, f engine.Format, shots int) (string, error) {
	switch f {
	case engine.CountsFormat:
		counts, err := e.Counts(shots)
		if err != nil {
			return "", err
		}
		return countsTable(counts), nil
	case engine.StateVectorFormat:
		states, err := e.BasisStates(1e-10)
		if err != nil {
			return "", err
		}
		return statesTable(states), nil
	default:
		return e.Report(f, shots)
	}
}
