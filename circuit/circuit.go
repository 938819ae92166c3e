// Package circuit records the ordered gate sequence of a quantum circuit.
//
// Only four primitive kinds are ever stored. The composite gates Y, Z, RY and
// RZ are macros that append a fixed run of primitives, and those expansions
// are the definition of the composites in this package.
package circuit

import (
	"fmt"
	"math"
	"slices"

	"github.com/pkg/errors"
)

// MaxQubits is the largest register the index space can address.
const MaxQubits = 32

// Kind identifies a primitive gate.
type Kind int

const (
	BitFlip Kind = iota
	Hadamard
	Rotation
	ControlledBitFlip
)

// String returns the QASM mnemonic of the kind.
func (k Kind) String() string {
	switch k {
	case BitFlip:
		return "x"
	case Hadamard:
		return "h"
	case Rotation:
		return "rx"
	case ControlledBitFlip:
		return "cx"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Valid reports whether k is one of the four primitives.
func (k Kind) Valid() bool {
	return k >= BitFlip && k <= ControlledBitFlip
}

// Gate is a single primitive descriptor.
type Gate struct {
	Kind   Kind
	Qubit  int     // primary qubit; the control for ControlledBitFlip
	Target int     // -1 unless Kind is ControlledBitFlip
	Theta  float64 // radians, only meaningful for Rotation
}

// Qubits returns the qubit indices the gate acts on.
func (g Gate) Qubits() []int {
	if g.Kind == ControlledBitFlip {
		return []int{g.Qubit, g.Target}
	}
	return []int{g.Qubit}
}

// String renders the gate in QASM form without the trailing semicolon.
func (g Gate) String() string {
	switch g.Kind {
	case Rotation:
		return fmt.Sprintf("rx(%s) q[%d]", FormatParam(g.Theta), g.Qubit)
	case ControlledBitFlip:
		return fmt.Sprintf("cx q[%d], q[%d]", g.Qubit, g.Target)
	default:
		return fmt.Sprintf("%s q[%d]", g.Kind, g.Qubit)
	}
}

// Circuit is an append-only gate sequence over a fixed number of qubits.
type Circuit struct {
	numQubits int
	gates     []Gate
	ops       []Op
}

// New returns an empty circuit over numQubits qubits.
func New(numQubits int) (*Circuit, error) {
	if numQubits <= 0 || numQubits > MaxQubits {
		return nil, &ConfigurationError{NumQubits: numQubits}
	}
	return &Circuit{numQubits: numQubits}, nil
}

// NumQubits returns the register width.
func (c *Circuit) NumQubits() int { return c.numQubits }

// Len returns the number of primitive descriptors recorded so far.
func (c *Circuit) Len() int { return len(c.gates) }

// Gates returns a copy of the recorded descriptors in append order.
func (c *Circuit) Gates() []Gate {
	return slices.Clone(c.gates)
}

// Validate checks a descriptor against the register. Every append runs it
// before recording anything.
func (c *Circuit) Validate(g Gate) error {
	return CheckGate(g, c.numQubits)
}

// CheckGate reports whether g is a well-formed primitive on a register of
// numQubits qubits.
func CheckGate(g Gate, numQubits int) error {
	if !g.Kind.Valid() {
		return errors.Wrapf(ErrUnsupportedGate, "kind %d", int(g.Kind))
	}
	op := g.Kind.String()
	if err := checkQubit(op, g.Qubit, numQubits); err != nil {
		return err
	}
	if g.Kind != ControlledBitFlip {
		return nil
	}
	if err := checkQubit(op, g.Target, numQubits); err != nil {
		return err
	}
	if g.Qubit == g.Target {
		return &IndexError{Op: op, Qubit: g.Target, NumQubits: numQubits, Reason: "control and target must differ"}
	}
	return nil
}

func checkQubit(op string, q, numQubits int) error {
	if q < 0 || q >= numQubits {
		return &IndexError{Op: op, Qubit: q, NumQubits: numQubits}
	}
	return nil
}

// Append validates g and records it.
func (c *Circuit) Append(g Gate) error {
	if g.Kind != ControlledBitFlip {
		g.Target = -1
	}
	if g.Kind != Rotation {
		g.Theta = 0
	}
	if err := c.Validate(g); err != nil {
		return err
	}
	c.ops = append(c.ops, Op{
		Name:   g.Kind.String(),
		Qubit:  g.Qubit,
		Target: g.Target,
		Theta:  g.Theta,
		First:  len(c.gates),
		Count:  1,
	})
	c.gates = append(c.gates, g)
	return nil
}

// X appends a bit-flip on qubit.
func (c *Circuit) X(qubit int) error {
	return c.Append(Gate{Kind: BitFlip, Qubit: qubit})
}

// H appends a Hadamard on qubit.
func (c *Circuit) H(qubit int) error {
	return c.Append(Gate{Kind: Hadamard, Qubit: qubit})
}

// RX appends a rotation by theta radians about the X axis.
func (c *Circuit) RX(qubit int, theta float64) error {
	return c.Append(Gate{Kind: Rotation, Qubit: qubit, Theta: theta})
}

// CX appends a controlled bit-flip of target conditioned on control.
func (c *Circuit) CX(control, target int) error {
	return c.Append(Gate{Kind: ControlledBitFlip, Qubit: control, Target: target})
}

// RZ appends h, rx(theta), h.
func (c *Circuit) RZ(qubit int, theta float64) error {
	return c.appendComposite("rz", qubit, theta, rzSequence(qubit, theta))
}

// Z appends RZ(qubit, pi).
func (c *Circuit) Z(qubit int) error {
	return c.appendComposite("z", qubit, 0, rzSequence(qubit, math.Pi))
}

// Y appends RZ(qubit, pi) followed by a bit-flip. The result matches Pauli-Y
// only up to a global phase.
func (c *Circuit) Y(qubit int) error {
	seq := append(rzSequence(qubit, math.Pi), Gate{Kind: BitFlip, Qubit: qubit})
	return c.appendComposite("y", qubit, 0, seq)
}

// RY appends rx(pi/2), h, rx(theta), h, rx(-pi/2).
func (c *Circuit) RY(qubit int, theta float64) error {
	seq := []Gate{{Kind: Rotation, Qubit: qubit, Theta: math.Pi / 2}}
	seq = append(seq, rzSequence(qubit, theta)...)
	seq = append(seq, Gate{Kind: Rotation, Qubit: qubit, Theta: -math.Pi / 2})
	return c.appendComposite("ry", qubit, theta, seq)
}

func rzSequence(qubit int, theta float64) []Gate {
	return []Gate{
		{Kind: Hadamard, Qubit: qubit},
		{Kind: Rotation, Qubit: qubit, Theta: theta},
		{Kind: Hadamard, Qubit: qubit},
	}
}

// appendComposite records the expansion of a single-qubit composite gate. The
// qubit is checked once up front so a failed composite appends nothing.
func (c *Circuit) appendComposite(op string, qubit int, theta float64, seq []Gate) error {
	if err := checkQubit(op, qubit, c.numQubits); err != nil {
		return err
	}
	for i := range seq {
		seq[i].Target = -1
	}
	c.ops = append(c.ops, Op{
		Name:   op,
		Qubit:  qubit,
		Target: -1,
		Theta:  theta,
		First:  len(c.gates),
		Count:  len(seq),
	})
	c.gates = append(c.gates, seq...)
	return nil
}
