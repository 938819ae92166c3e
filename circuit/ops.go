package circuit

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// Op records one builder call and the run of primitives it appended.
type Op struct {
	Name   string  // x, h, rx, cx, y, z, ry or rz
	Qubit  int     // control for cx
	Target int     // -1 unless Name is cx
	Theta  float64 // rx, ry and rz only
	First  int     // index of the first primitive in Gates
	Count  int
}

// Qubits returns the qubits the op touches.
func (o Op) Qubits() []int {
	if o.Name == "cx" {
		return []int{o.Qubit, o.Target}
	}
	return []int{o.Qubit}
}

// String renders the op in QASM form without the trailing semicolon.
func (o Op) String() string {
	switch o.Name {
	case "rx", "ry", "rz":
		return fmt.Sprintf("%s(%s) q[%d]", o.Name, FormatParam(o.Theta), o.Qubit)
	case "cx":
		return fmt.Sprintf("cx q[%d], q[%d]", o.Qubit, o.Target)
	default:
		return fmt.Sprintf("%s q[%d]", o.Name, o.Qubit)
	}
}

// Ops returns the builder calls in the order they were made.
func (c *Circuit) Ops() []Op {
	return slices.Clone(c.ops)
}

// Apply replays a builder call by name. First and Count are ignored.
func (c *Circuit) Apply(o Op) error {
	switch strings.ToLower(o.Name) {
	case "x":
		return c.X(o.Qubit)
	case "h":
		return c.H(o.Qubit)
	case "rx":
		return c.RX(o.Qubit, o.Theta)
	case "cx":
		return c.CX(o.Qubit, o.Target)
	case "y":
		return c.Y(o.Qubit)
	case "z":
		return c.Z(o.Qubit)
	case "ry":
		return c.RY(o.Qubit, o.Theta)
	case "rz":
		return c.RZ(o.Qubit, o.Theta)
	default:
		return errors.Wrapf(ErrUnsupportedGate, "%q", o.Name)
	}
}

// RemoveLast drops the most recent builder call together with every
// primitive it appended. It exists for the interactive editor's undo and is
// the only way a sequence shrinks; engines built from c earlier hold their
// own copy of the gates and are unaffected.
func (c *Circuit) RemoveLast() (Op, bool) {
	if len(c.ops) == 0 {
		return Op{}, false
	}
	last := c.ops[len(c.ops)-1]
	c.ops = c.ops[:len(c.ops)-1]
	c.gates = c.gates[:last.First]
	return last, true
}

// Resize returns a circuit over numQubits qubits holding the ops of c that
// still fit. Ops touching a removed qubit are dropped.
func (c *Circuit) Resize(numQubits int) (*Circuit, error) {
	out, err := New(numQubits)
	if err != nil {
		return nil, err
	}
	for _, o := range c.ops {
		if slices.ContainsFunc(o.Qubits(), func(q int) bool { return q >= numQubits }) {
			continue
		}
		if err := out.Apply(o); err != nil {
			return nil, err
		}
	}
	return out, nil
}
