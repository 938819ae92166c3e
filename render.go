package main

import (
	"fmt"
	"math"
	"strings"

	"qengine/circuit"
	"qengine/engine"
)

// ──────────────────────────── Rendering helpers ────────────────────────────

// padCenter centres a string within the given width.
func padCenter(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	total := width - len(s)
	left := total / 2
	right := total - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

// bar draws a proportional block bar of the given width.
func bar(frac float64, width int) string {
	frac = math.Max(0, math.Min(1, frac))
	n := int(math.Round(frac * float64(width)))
	return strings.Repeat("█", n) + strings.Repeat("░", width-n)
}

// ──────────────────────────── Cell rendering ────────────────────────────

// renderCell returns 3 lines (top, mid, bot) for a single cell.
// Each line is exactly cellW visual characters wide.
func renderCell(info cellInfo) (top, mid, bot string) {
	emptyRow := strings.Repeat(" ", cellW)
	halfW := cellW / 2
	vertRow := strings.Repeat(" ", halfW) + "│" + strings.Repeat(" ", cellW-halfW-1)
	dashL := (cellW - 1) / 2
	dashR := cellW - dashL - 1

	connector := func(sym string) {
		top = emptyRow
		if info.vertAbove {
			top = vertRow
		}
		mid = strings.Repeat("─", dashL) + gateStyle.Render(sym) + strings.Repeat("─", dashR)
		bot = emptyRow
		if info.vertBelow {
			bot = vertRow
		}
	}

	switch {
	case info.isControl:
		connector("●")
	case info.isTarget:
		connector("⊕")
	case info.gate != nil:
		margin := (cellW - gateBoxW) / 2
		rightMargin := cellW - margin - gateBoxW
		name := padCenter(gateDisplayName(*info.gate), gateNameW)

		top = strings.Repeat(" ", margin) + gateStyle.Render("┌"+strings.Repeat("─", gateNameW)+"┐") + strings.Repeat(" ", rightMargin)
		mid = strings.Repeat("─", margin) + gateStyle.Render("┤"+name+"├") + strings.Repeat("─", rightMargin)
		bot = strings.Repeat(" ", margin) + gateStyle.Render("└"+strings.Repeat("─", gateNameW)+"┘") + strings.Repeat(" ", rightMargin)
		if info.gate.Kind == circuit.Rotation {
			angle := padCenter(circuit.FormatParam(info.gate.Theta), cellW)
			bot = dimStyle.Render(angle)
		}
	case info.passThrough:
		top = vertRow
		mid = strings.Repeat("─", dashL) + "┼" + strings.Repeat("─", dashR)
		bot = vertRow
	default:
		top = emptyRow
		mid = strings.Repeat("─", cellW)
		bot = emptyRow
	}
	return
}

// ──────────────────────────── Panel rendering ────────────────────────────

// renderCircuitPanel renders the circuit grid panel.
func (m Model) renderCircuitPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Quantum Circuit"))
	fmt.Fprintf(&sb, "  %s\n\n", dimStyle.Render(fmt.Sprintf("%d qubits · %d gates · depth %d",
		m.circ.NumQubits(), m.circ.Len(), m.circ.Depth())))

	g := buildGrid(m.circ)
	cols := m.gridColumns()
	start := m.viewStart

	if start > 0 {
		fmt.Fprintf(&sb, "  ◀ showing columns %d–%d\n", start, start+cols-1)
	}

	// Column header
	header := strings.Repeat(" ", labelVisualW)
	for col := start; col < start+cols; col++ {
		header += dimStyle.Render(padCenter(fmt.Sprintf("%d", col), cellW))
	}
	sb.WriteString(header + "\n")

	for qubit := range m.circ.NumQubits() {
		topLine := strings.Repeat(" ", labelVisualW)
		label := fmt.Sprintf("q[%d]", qubit)
		var midLine string
		switch {
		case qubit == m.cursorQubit:
			midLine = cursorStyle.Render(fmt.Sprintf("▸%-4s", label)) + "──"
		case m.focus == focusSelectTarget && qubit == m.targetQubit:
			midLine = targetSelectStyle.Render(fmt.Sprintf("⊕%-4s", label)) + "──"
		default:
			midLine = qubitLabelStyle.Render(fmt.Sprintf(" %-4s", label)) + "──"
		}
		botLine := strings.Repeat(" ", labelVisualW)

		for col := start; col < start+cols; col++ {
			top, mid, bot := renderCell(g.cell(col, qubit))
			topLine += top
			midLine += mid
			botLine += bot
		}

		sb.WriteString(topLine + "\n")
		sb.WriteString(midLine + "\n")
		sb.WriteString(botLine + "\n")
	}

	// Status line
	if m.focus == focusSelectTarget {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "  %s", activeGateStyle.Render(m.pendingGate))
		sb.WriteString("  Select target qubit: ")
		sb.WriteString(targetSelectStyle.Render(fmt.Sprintf("q[%d]", m.targetQubit)))
		sb.WriteString(dimStyle.Render("   ↑↓ Move  Enter Confirm  Esc Cancel"))
	} else {
		fmt.Fprintf(&sb, "\n  Qubit %d", m.cursorQubit)
		if m.statusMsg != "" {
			fmt.Fprintf(&sb, "  │  %s", activeGateStyle.Render(m.statusMsg))
		}
	}

	return circuitStyle.Width(width).Height(height).Render(sb.String())
}

// renderQASMPanel renders the QASM editor panel.
func (m Model) renderQASMPanel(width, height int) string {
	var sb strings.Builder

	title := "QASM Editor"
	if m.focus == focusQASM {
		title += " [ACTIVE]"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n")
	if m.parseErr != nil {
		sb.WriteString(errorStyle.Render(m.parseErr.Error()))
	}
	sb.WriteString("\n")
	sb.WriteString(m.qasmEditor.View())

	return qasmStyle.Width(width).Height(height).Render(sb.String())
}

// renderResultsPanel renders the outcome of the last run in the selected format.
func (m Model) renderResultsPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Results"))
	fmt.Fprintf(&sb, "  %s\n", dimStyle.Render(fmt.Sprintf("%s · %d shots · seed %d", m.format, m.shots, m.seed)))

	lines := height - 1
	switch {
	case m.results.err != nil:
		sb.WriteString(errorStyle.Render(m.results.err.Error()))
	case m.format == engine.CountsFormat:
		sb.WriteString(renderCountsHistogram(m.results.counts, lines))
	case m.format == engine.MemoryFormat:
		sb.WriteString(renderMemory(m.results.memory, width-4, lines))
	default:
		sb.WriteString(renderStates(m.results.states, m.results.marginals, lines))
	}

	return resultsStyle.Width(width).Height(height).Render(sb.String())
}

// renderStates lists the non-negligible basis states followed by the
// probability of reading 1 on each qubit.
func renderStates(states []engine.BasisState, marginals []engine.QubitProbability, lines int) string {
	var sb strings.Builder
	shown := 0
	for _, s := range states {
		if shown >= lines-1 {
			fmt.Fprintf(&sb, "%s\n", dimStyle.Render(fmt.Sprintf("… %d more", len(states)-shown)))
			break
		}
		fmt.Fprintf(&sb, "|%s⟩  %-24s p=%.4f  %s\n",
			s.Bits, formatComplex(s.Amplitude), s.Probability, barStyle.Render(bar(s.Probability, barW)))
		shown++
	}
	if len(marginals) > 0 {
		sb.WriteString(dimStyle.Render("P(1):"))
		for q, p := range marginals {
			fmt.Fprintf(&sb, " q%d=%.3f", q, p.P1)
		}
	}
	return sb.String()
}

// renderCountsHistogram draws one bar per observed outcome, scaled to the
// most frequent one.
func renderCountsHistogram(counts engine.Counts, lines int) string {
	var sb strings.Builder
	peak := 0
	for _, n := range counts {
		peak = max(peak, n)
	}
	for i, k := range counts.Keys() {
		if i >= lines {
			fmt.Fprintf(&sb, "%s\n", dimStyle.Render(fmt.Sprintf("… %d more", len(counts)-i)))
			break
		}
		frac := 0.0
		if peak > 0 {
			frac = float64(counts[k]) / float64(peak)
		}
		fmt.Fprintf(&sb, "%s  %6d  %s\n", k, counts[k], barStyle.Render(bar(frac, barW)))
	}
	return sb.String()
}

// renderMemory packs the shot record into as many columns as fit.
func renderMemory(memory []string, width, lines int) string {
	if len(memory) == 0 {
		return ""
	}
	per := max(width/(len(memory[0])+1), 1)
	var sb strings.Builder
	for row := 0; row < lines && row*per < len(memory); row++ {
		end := min((row+1)*per, len(memory))
		sb.WriteString(strings.Join(memory[row*per:end], " "))
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatComplex prints an amplitude with fixed precision for tabular display.
func formatComplex(a complex128) string {
	return fmt.Sprintf("%+.4f%+.4fi", real(a), imag(a))
}

// renderControlsPanel renders the bottom help/controls bar.
func (m Model) renderControlsPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(activeGateStyle.Render("Navigate: "))
	sb.WriteString("↑↓/jk Qubit  ←→/hl Scroll  +/- Qubits")
	sb.WriteString("    ")
	sb.WriteString(activeGateStyle.Render("a"))
	sb.WriteString(" Add gate\n")

	sb.WriteString(activeGateStyle.Render("Actions:  "))
	sb.WriteString("Tab Switch focus  Bksp Undo  ^R Reseed  f Format  ^S Save  q/^C Quit")

	return controlsStyle.Width(width).Height(height).Render(sb.String())
}

// ──────────────────────────── Overlay helpers ────────────────────────────

// overlayAt composites the overlay string on top of the background at position (x, y).
// It handles ANSI escape sequences by tracking visible column positions.
func overlayAt(bg, overlay string, x, y int) string {
	bgLines := strings.Split(bg, "\n")
	ovLines := strings.Split(overlay, "\n")

	for i, ovLine := range ovLines {
		bgIdx := y + i
		if bgIdx < 0 || bgIdx >= len(bgLines) {
			continue
		}
		bgLines[bgIdx] = spliceLineAt(bgLines[bgIdx], ovLine, x)
	}
	return strings.Join(bgLines, "\n")
}

// isEscapeEnd reports whether r terminates an ANSI escape sequence.
func isEscapeEnd(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

// spliceLineAt replaces visible columns starting at position x in bgLine with overlay content.
func spliceLineAt(bgLine, overlay string, x int) string {
	runes := []rune(bgLine)
	ovWidth := visibleLen(overlay)

	var prefix, suffix strings.Builder
	col, i := 0, 0

	// Everything up to visible column x, escapes included.
	for i < len(runes) && col < x {
		if runes[i] == '\x1b' {
			for i < len(runes) {
				r := runes[i]
				prefix.WriteRune(r)
				i++
				if r != '\x1b' && r != '[' && isEscapeEnd(r) {
					break
				}
			}
			continue
		}
		prefix.WriteRune(runes[i])
		col++
		i++
	}
	for col < x {
		prefix.WriteRune(' ')
		col++
	}

	// Drop the background columns the overlay covers.
	skipped := 0
	for i < len(runes) && skipped < ovWidth {
		if runes[i] == '\x1b' {
			for i < len(runes) {
				r := runes[i]
				i++
				if r != '\x1b' && r != '[' && isEscapeEnd(r) {
					break
				}
			}
			continue
		}
		skipped++
		i++
	}

	for ; i < len(runes); i++ {
		suffix.WriteRune(runes[i])
	}
	return prefix.String() + overlay + suffix.String()
}

// visibleLen returns the number of visible (non-ANSI-escape) characters in a string.
func visibleLen(s string) int {
	n := 0
	inEsc := false
	for _, r := range s {
		if r == '\x1b' {
			inEsc = true
			continue
		}
		if inEsc {
			if isEscapeEnd(r) {
				inEsc = false
			}
			continue
		}
		n++
	}
	return n
}
