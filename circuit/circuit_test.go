package circuit

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsInvalidQubitCounts(t *testing.T) {
	for _, n := range []int{0, -1, 33, 1000} {
		c, err := New(n)
		assert.Nil(t, c)
		var cfgErr *ConfigurationError
		require.ErrorAs(t, err, &cfgErr, "n=%d", n)
		assert.Equal(t, n, cfgErr.NumQubits)
	}
}

func TestNewAcceptsBounds(t *testing.T) {
	for _, n := range []int{1, 2, MaxQubits} {
		c, err := New(n)
		require.NoError(t, err)
		assert.Equal(t, n, c.NumQubits())
		assert.Zero(t, c.Len())
	}
}

func TestPrimitiveAppends(t *testing.T) {
	c, err := New(3)
	require.NoError(t, err)

	require.NoError(t, c.X(0))
	require.NoError(t, c.H(1))
	require.NoError(t, c.RX(2, 0.5))
	require.NoError(t, c.CX(2, 0))

	want := []Gate{
		{Kind: BitFlip, Qubit: 0, Target: -1},
		{Kind: Hadamard, Qubit: 1, Target: -1},
		{Kind: Rotation, Qubit: 2, Target: -1, Theta: 0.5},
		{Kind: ControlledBitFlip, Qubit: 2, Target: 0},
	}
	assert.Equal(t, want, c.Gates())
}

func TestIndexValidation(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	tests := []struct {
		name string
		fn   func() error
	}{
		{"x negative", func() error { return c.X(-1) }},
		{"h too high", func() error { return c.H(2) }},
		{"rx too high", func() error { return c.RX(5, math.Pi) }},
		{"cx control", func() error { return c.CX(2, 0) }},
		{"cx target", func() error { return c.CX(0, 2) }},
		{"cx same", func() error { return c.CX(1, 1) }},
		{"y", func() error { return c.Y(2) }},
		{"z", func() error { return c.Z(-3) }},
		{"ry", func() error { return c.RY(2, 1) }},
		{"rz", func() error { return c.RZ(9, 1) }},
	}

	for _, tt := range tests {
		err := tt.fn()
		var idxErr *IndexError
		assert.True(t, errors.As(err, &idxErr), "%s: got %v", tt.name, err)
	}
	assert.Zero(t, c.Len(), "failed appends must not record anything")
}

func TestIndexErrorMessages(t *testing.T) {
	err := (&IndexError{Op: "x", Qubit: 4, NumQubits: 2}).Error()
	assert.Equal(t, "x: qubit 4 out of range [0, 2)", err)

	err = (&IndexError{Op: "cx", Qubit: 1, NumQubits: 2, Reason: "control and target must differ"}).Error()
	assert.Equal(t, "cx: qubit 1: control and target must differ", err)
}

func TestCompositeDecompositions(t *testing.T) {
	h := Gate{Kind: Hadamard, Qubit: 1, Target: -1}
	rx := func(theta float64) Gate { return Gate{Kind: Rotation, Qubit: 1, Target: -1, Theta: theta} }
	x := Gate{Kind: BitFlip, Qubit: 1, Target: -1}

	tests := []struct {
		name string
		fn   func(c *Circuit) error
		want []Gate
	}{
		{"rz", func(c *Circuit) error { return c.RZ(1, 0.3) }, []Gate{h, rx(0.3), h}},
		{"z", func(c *Circuit) error { return c.Z(1) }, []Gate{h, rx(math.Pi), h}},
		{"y", func(c *Circuit) error { return c.Y(1) }, []Gate{h, rx(math.Pi), h, x}},
		{"ry", func(c *Circuit) error { return c.RY(1, 0.3) }, []Gate{rx(math.Pi / 2), h, rx(0.3), h, rx(-math.Pi / 2)}},
	}

	for _, tt := range tests {
		c, err := New(2)
		require.NoError(t, err)
		require.NoError(t, tt.fn(c), tt.name)
		assert.Equal(t, tt.want, c.Gates(), tt.name)
	}
}

func TestGatesReturnsCopy(t *testing.T) {
	c, err := New(1)
	require.NoError(t, err)
	require.NoError(t, c.X(0))

	gates := c.Gates()
	gates[0].Qubit = 7
	assert.Equal(t, 0, c.Gates()[0].Qubit)
}

func TestAppendRejectsUnknownKind(t *testing.T) {
	c, err := New(1)
	require.NoError(t, err)
	err = c.Append(Gate{Kind: Kind(12), Qubit: 0})
	assert.ErrorIs(t, err, ErrUnsupportedGate)
	assert.Equal(t, "Kind(12)", Kind(12).String())
}

func TestAppendNormalisesUnusedFields(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)
	require.NoError(t, c.Append(Gate{Kind: Hadamard, Qubit: 1, Target: 0, Theta: 3}))
	assert.Equal(t, Gate{Kind: Hadamard, Qubit: 1, Target: -1}, c.Gates()[0])
}

func TestGateString(t *testing.T) {
	assert.Equal(t, "x q[0]", Gate{Kind: BitFlip, Qubit: 0}.String())
	assert.Equal(t, "h q[3]", Gate{Kind: Hadamard, Qubit: 3}.String())
	assert.Equal(t, "rx(-pi/2) q[1]", Gate{Kind: Rotation, Qubit: 1, Theta: -math.Pi / 2}.String())
	assert.Equal(t, "cx q[0], q[2]", Gate{Kind: ControlledBitFlip, Qubit: 0, Target: 2}.String())
}

func TestMoments(t *testing.T) {
	c, err := New(4)
	require.NoError(t, err)
	require.NoError(t, c.H(0))     // 0
	require.NoError(t, c.H(1))     // 1
	require.NoError(t, c.CX(0, 1)) // 2
	require.NoError(t, c.X(2))     // 3
	require.NoError(t, c.CX(3, 0)) // 4 spans 0..3
	require.NoError(t, c.H(1))     // 5

	assert.Equal(t, [][]int{{0, 1, 3}, {2}, {4}, {5}}, c.Moments())
	assert.Equal(t, 4, c.Depth())
}

func TestMomentsEmpty(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)
	assert.Empty(t, c.Moments())
	assert.Zero(t, c.Depth())
}
