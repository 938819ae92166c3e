package main

import (
	"strings"

	"qengine/circuit"
)

// cellInfo describes what occupies a single cell in the circuit grid.
type cellInfo struct {
	gate        *circuit.Gate
	isControl   bool
	isTarget    bool
	vertAbove   bool
	vertBelow   bool
	passThrough bool
}

// grid is the circuit laid out as moment columns, indexed [column][qubit].
type grid [][]cellInfo

// buildGrid places every primitive of c in its display column. A cx also
// marks the wires it crosses so the connector can be drawn through them.
func buildGrid(c *circuit.Circuit) grid {
	gates := c.Gates()
	moments := c.Moments()
	g := make(grid, len(moments))

	for col, idxs := range moments {
		cells := make([]cellInfo, c.NumQubits())
		for _, gi := range idxs {
			gate := gates[gi]
			if gate.Kind != circuit.ControlledBitFlip {
				cells[gate.Qubit].gate = &gate
				continue
			}

			lo, hi := min(gate.Qubit, gate.Target), max(gate.Qubit, gate.Target)
			for q := lo; q <= hi; q++ {
				cell := &cells[q]
				cell.vertAbove = q > lo
				cell.vertBelow = q < hi
				switch q {
				case gate.Qubit:
					cell.gate = &gate
					cell.isControl = true
				case gate.Target:
					cell.gate = &gate
					cell.isTarget = true
				default:
					cell.passThrough = true
				}
			}
		}
		g[col] = cells
	}
	return g
}

// cell returns the contents at (col, qubit); columns past the end are empty wire.
func (g grid) cell(col, qubit int) cellInfo {
	if col < 0 || col >= len(g) || qubit < 0 || qubit >= len(g[col]) {
		return cellInfo{}
	}
	return g[col][qubit]
}

// gateDisplayName returns the short label drawn inside a gate box.
func gateDisplayName(g circuit.Gate) string {
	return strings.ToUpper(g.Kind.String())
}
