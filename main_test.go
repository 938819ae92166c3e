package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qengine/circuit"
	"qengine/engine"
)

const bellQASM = `OPENQASM 2.0;
include "qelib1.inc";
qreg q[2];
creg c[2];
h q[0];
cx q[0], q[1];
measure q[0] -> c[0];
measure q[1] -> c[1];
`

func runApp(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp(strings.NewReader(stdin), &out, &errOut)
	err = app.Run(append([]string{"qengine"}, args...))
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRunStateVectorFromStdin(t *testing.T) {
	out, stderr, err := runApp(t, bellQASM, "run", "-")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "00 0.7071067811865476+0j", lines[0])
	assert.Equal(t, "01 0+0j", lines[1])
	assert.Equal(t, "10 0+0j", lines[2])
	assert.Equal(t, "11 0.7071067811865476+0j", lines[3])
	assert.Contains(t, stderr, "circuit loaded")
}

func TestRunCountsFromFile(t *testing.T) {
	path := writeFile(t, "bell.qasm", bellQASM)
	out, _, err := runApp(t, "", "run", "--format", "counts", "--shots", "500", "--seed", "3", path)
	require.NoError(t, err)

	total := 0
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		bits, n, ok := strings.Cut(line, ": ")
		require.True(t, ok, line)
		assert.Contains(t, []string{"00", "11"}, bits)
		v, err := strconv.Atoi(n)
		require.NoError(t, err)
		total += v
	}
	assert.Equal(t, 500, total)
}

func TestRunSeededMemoryIsReproducible(t *testing.T) {
	path := writeFile(t, "bell.qasm", bellQASM)
	a, _, err := runApp(t, "", "run", "-f", "memory", "-n", "32", "--seed", "11", path)
	require.NoError(t, err)
	b, _, err := runApp(t, "", "run", "-f", "memory", "-n", "32", "--seed", "11", path)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, strings.Split(strings.TrimSpace(a), "\n"), 32)
}

func TestRunReadsEnvironment(t *testing.T) {
	t.Setenv("QENGINE_FORMAT", "memory")
	t.Setenv("QENGINE_SHOTS", "5")
	t.Setenv("QENGINE_SEED", "1")

	out, _, err := runApp(t, bellQASM, "run")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 5)
}

func TestRunFlagsOverrideConfigFile(t *testing.T) {
	cfgPath := writeFile(t, "job.yaml", "shots: 8\nseed: 4\nformat: memory\nlog_level: error\n")

	out, stderr, err := runApp(t, bellQASM, "run", "--config", cfgPath)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 8)
	assert.NotContains(t, stderr, "circuit loaded")

	out, _, err = runApp(t, bellQASM, "run", "--config", cfgPath, "--format", "counts")
	require.NoError(t, err)
	assert.Regexp(t, `^(00|11): \d+\n`, out)
}

func TestRunDebugLogging(t *testing.T) {
	_, stderr, err := runApp(t, bellQASM, "run", "--log-level", "debug")
	require.NoError(t, err)
	assert.Contains(t, stderr, "run finished")
}

func TestRunDumpGates(t *testing.T) {
	_, stderr, err := runApp(t, bellQASM, "run", "--dump-gates")
	require.NoError(t, err)
	assert.Contains(t, stderr, "circuit.Gate")
	assert.Contains(t, stderr, "ControlledBitFlip")
}

func TestRunTable(t *testing.T) {
	out, _, err := runApp(t, bellQASM, "run", "--table", "--format", "counts", "--seed", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "STATE")
	assert.Contains(t, out, "FREQ")
	assert.Contains(t, out, "00")

	out, _, err = runApp(t, bellQASM, "run", "-t")
	require.NoError(t, err)
	assert.Contains(t, out, "|11⟩")
	assert.NotContains(t, out, "|01⟩")
}

func TestRunErrors(t *testing.T) {
	_, _, err := runApp(t, "qreg q[1];\nt q[0];\n", "run")
	assert.ErrorIs(t, err, circuit.ErrUnsupportedGate)
	assert.Contains(t, err.Error(), "parse <stdin>")

	_, _, err = runApp(t, bellQASM, "run", "--format", "histogram")
	assert.ErrorIs(t, err, engine.ErrUnknownFormat)

	_, _, err = runApp(t, bellQASM, "run", "--shots", "-2")
	assert.ErrorIs(t, err, engine.ErrInvalidShots)

	_, _, err = runApp(t, "", "run", filepath.Join(t.TempDir(), "missing.qasm"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, _, err = runApp(t, "", "run", "a.qasm", "b.qasm")
	assert.Error(t, err)

	_, _, err = runApp(t, "h q[0];\n", "run")
	var cfgErr *circuit.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestTUIRejectsWideCircuit(t *testing.T) {
	path := writeFile(t, "wide.qasm", "qreg q[20];\nh q[19];\n")
	_, _, err := runApp(t, "", "tui", path)
	assert.ErrorIs(t, err, errWorkbenchTooWide)
}
