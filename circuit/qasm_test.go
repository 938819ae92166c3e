package circuit

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBellQASM(t *testing.T) {
	qasm := `OPENQASM 2.0;
include "qelib1.inc";

qreg q[2];
creg c[2];

// entangle
h q[0];
cx q[0], q[1];
barrier q[0], q[1];
measure q[0] -> c[0];
measure q[1] -> c[1];`

	c, err := ParseQASM(qasm)
	require.NoError(t, err)
	assert.Equal(t, 2, c.NumQubits())
	assert.Equal(t, []Gate{
		{Kind: Hadamard, Qubit: 0, Target: -1},
		{Kind: ControlledBitFlip, Qubit: 0, Target: 1},
	}, c.Gates())
}

func TestParseCompositeGates(t *testing.T) {
	qasm := `qreg q[1];
y q[0];
z q[0];
ry(pi/2) q[0];
rz(-pi/4) q[0];
rx(0.25) q[0];`

	c, err := ParseQASM(qasm)
	require.NoError(t, err)

	want, err := New(1)
	require.NoError(t, err)
	require.NoError(t, want.Y(0))
	require.NoError(t, want.Z(0))
	require.NoError(t, want.RY(0, math.Pi/2))
	require.NoError(t, want.RZ(0, -math.Pi/4))
	require.NoError(t, want.RX(0, 0.25))

	require.Equal(t, want.Len(), c.Len())
	for i, g := range c.Gates() {
		w := want.Gates()[i]
		assert.Equal(t, w.Kind, g.Kind, "gate %d", i)
		assert.Equal(t, w.Qubit, g.Qubit, "gate %d", i)
		assert.InDelta(t, w.Theta, g.Theta, 1e-12, "gate %d", i)
	}
}

func TestParseInlineCommentsAndCase(t *testing.T) {
	c, err := ParseQASM("qreg q[3];\nH q[2]; // superpose\nCX q[2], q[0];\n")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, ControlledBitFlip, c.Gates()[1].Kind)
	assert.Equal(t, 0, c.Gates()[1].Target)
}

func TestParseQASMErrors(t *testing.T) {
	tests := []struct {
		name  string
		qasm  string
		check func(t *testing.T, err error)
	}{
		{
			name: "unsupported gate",
			qasm: "qreg q[2];\nswap q[0], q[1];",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnsupportedGate)
				assert.Contains(t, err.Error(), "line 2")
			},
		},
		{
			name: "unsupported single gate",
			qasm: "qreg q[1];\nt q[0];",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnsupportedGate)
			},
		},
		{
			name: "unsupported angle gate",
			qasm: "qreg q[1];\nu1(pi) q[0];",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnsupportedGate)
			},
		},
		{
			name: "gate before qreg",
			qasm: "h q[0];\nqreg q[1];",
			check: func(t *testing.T, err error) {
				var cfgErr *ConfigurationError
				assert.True(t, errors.As(err, &cfgErr), "%v", err)
			},
		},
		{
			name: "missing qreg",
			qasm: "OPENQASM 2.0;\n",
			check: func(t *testing.T, err error) {
				var cfgErr *ConfigurationError
				assert.True(t, errors.As(err, &cfgErr), "%v", err)
			},
		},
		{
			name: "oversized register",
			qasm: "qreg q[40];",
			check: func(t *testing.T, err error) {
				var cfgErr *ConfigurationError
				require.True(t, errors.As(err, &cfgErr), "%v", err)
				assert.Equal(t, 40, cfgErr.NumQubits)
			},
		},
		{
			name: "index out of range",
			qasm: "qreg q[2];\nx q[2];",
			check: func(t *testing.T, err error) {
				var idxErr *IndexError
				require.True(t, errors.As(err, &idxErr), "%v", err)
				assert.Equal(t, 2, idxErr.Qubit)
			},
		},
		{
			name: "overflowing index",
			qasm: "qreg q[2];\nx q[99999999999999999999];",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, strconv.ErrRange)
				assert.Contains(t, err.Error(), "line 2")
				assert.Contains(t, err.Error(), "qubit index")
				var idxErr *IndexError
				assert.False(t, errors.As(err, &idxErr))
			},
		},
		{
			name: "overflowing cx target",
			qasm: "qreg q[2];\ncx q[0], q[99999999999999999999];",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, strconv.ErrRange)
			},
		},
		{
			name: "second qreg",
			qasm: "qreg q[2];\nqreg r[2];",
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "only one qreg")
			},
		},
		{
			name: "garbage",
			qasm: "qreg q[2];\nthis is not qasm",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnsupportedGate)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseQASM(tt.qasm)
			assert.Nil(t, c)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestToQASM(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)
	require.NoError(t, c.H(0))
	require.NoError(t, c.CX(0, 1))
	require.NoError(t, c.RX(1, math.Pi/2))
	require.NoError(t, c.X(1))

	want := `OPENQASM 2.0;
include "qelib1.inc";

qreg q[2];
creg c[2];

h q[0];
cx q[0], q[1];
rx(pi/2) q[1];
x q[1];
`
	assert.Equal(t, want, c.ToQASM())
}

func TestQASMRoundTripExpandsComposites(t *testing.T) {
	c, err := New(3)
	require.NoError(t, err)
	require.NoError(t, c.RY(1, 3*math.Pi/4))
	require.NoError(t, c.Y(2))
	require.NoError(t, c.CX(2, 0))
	require.NoError(t, c.RX(0, 0.125))

	qasm := c.ToQASM()
	assert.True(t, strings.Contains(qasm, "rx(3*pi/4) q[1];"), qasm)
	assert.False(t, strings.Contains(qasm, "ry"), qasm)

	back, err := ParseQASM(qasm)
	require.NoError(t, err)
	require.Equal(t, c.Len(), back.Len())
	for i, g := range back.Gates() {
		w := c.Gates()[i]
		assert.Equal(t, w.Kind, g.Kind, "gate %d", i)
		assert.Equal(t, w.Qubit, g.Qubit, "gate %d", i)
		assert.Equal(t, w.Target, g.Target, "gate %d", i)
		assert.InDelta(t, w.Theta, g.Theta, 1e-10, "gate %d", i)
	}
}
