package circuit

// Moments groups the recorded gates into display columns. Each gate lands in
// the column after the last one that touched any of its qubits, so gates on
// disjoint qubits share a column. Controlled gates also block the qubits
// strictly between control and target, since their connector is drawn across
// them. The result holds gate indices; execution order is unaffected.
func (c *Circuit) Moments() [][]int {
	var moments [][]int
	// nextFree[q] is the first column where qubit q is unoccupied.
	nextFree := make([]int, c.numQubits)

	for i, g := range c.gates {
		lo, hi := g.span()
		step := 0
		for q := lo; q <= hi; q++ {
			step = max(step, nextFree[q])
		}
		for len(moments) <= step {
			moments = append(moments, nil)
		}
		moments[step] = append(moments[step], i)
		for q := lo; q <= hi; q++ {
			nextFree[q] = step + 1
		}
	}
	return moments
}

// Depth returns the number of display columns.
func (c *Circuit) Depth() int {
	return len(c.Moments())
}

// span returns the lowest and highest qubit the gate occupies on a drawing.
func (g Gate) span() (lo, hi int) {
	if g.Kind == ControlledBitFlip {
		return min(g.Qubit, g.Target), max(g.Qubit, g.Target)
	}
	return g.Qubit, g.Qubit
}
