package circuit

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Pre-compiled regexps for the OpenQASM subset the builder understands.
var (
	qregRegex       = regexp.MustCompile(`^qreg\s+\w+\[(\d+)\];?$`)
	singleGateRegex = regexp.MustCompile(`^(\w+)\s+\w+\[(\d+)\];?$`)
	angleGateRegex  = regexp.MustCompile(`^(\w+)\s*\(\s*(` + anglePattern + `)\s*\)\s+\w+\[(\d+)\];?$`)
	twoQubitRegex   = regexp.MustCompile(`^(\w+)\s+\w+\[(\d+)\],\s*\w+\[(\d+)\];?$`)
)

// ToQASM renders the primitive sequence as OpenQASM 2.0. Composite gates
// appear in their expanded form since only primitives are recorded.
func (c *Circuit) ToQASM() string {
	var sb strings.Builder
	writeHeader(&sb, c.numQubits)
	for _, g := range c.gates {
		sb.WriteString(g.String())
		sb.WriteString(";\n")
	}
	return sb.String()
}

// ToQASMOps renders one line per builder call, keeping the composite names
// y, z, ry and rz. ParseQASM reads it back to the same primitive sequence.
func (c *Circuit) ToQASMOps() string {
	var sb strings.Builder
	writeHeader(&sb, c.numQubits)
	for _, o := range c.ops {
		sb.WriteString(o.String())
		sb.WriteString(";\n")
	}
	return sb.String()
}

func writeHeader(sb *strings.Builder, numQubits int) {
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")
	fmt.Fprintf(sb, "qreg q[%d];\n", numQubits)
	fmt.Fprintf(sb, "creg c[%d];\n\n", numQubits)
}

// ParseQASM builds a circuit from OpenQASM text. The register width comes
// from the first qreg declaration, which must precede every gate. Headers,
// comments, creg, barrier and measure lines are accepted and skipped; the
// gates x, h, rx, cx, y, z, ry and rz are appended through the builder.
func ParseQASM(src string) (*Circuit, error) {
	var c *Circuit

	for i, raw := range strings.Split(src, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		if line == "" ||
			strings.HasPrefix(line, "OPENQASM") ||
			strings.HasPrefix(line, "include") ||
			strings.HasPrefix(line, "creg") ||
			strings.HasPrefix(line, "barrier") ||
			strings.HasPrefix(line, "measure") {
			continue
		}

		if strings.HasPrefix(line, "qreg") {
			if c != nil {
				return nil, errors.Errorf("line %d: only one qreg is supported", lineNo)
			}
			m := qregRegex.FindStringSubmatch(line)
			if m == nil {
				return nil, errors.Errorf("line %d: malformed qreg %q", lineNo, line)
			}
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", lineNo)
			}
			if c, err = New(n); err != nil {
				return nil, errors.Wrapf(err, "line %d", lineNo)
			}
			continue
		}

		if c == nil {
			return nil, errors.Wrapf(&ConfigurationError{}, "line %d: gate before qreg", lineNo)
		}
		if err := c.applyLine(line); err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}
	}

	if c == nil {
		return nil, errors.Wrap(&ConfigurationError{}, "no qreg declaration")
	}
	return c, nil
}

// applyLine appends the gate described by a single instruction.
func (c *Circuit) applyLine(line string) error {
	o, err := parseOp(line)
	if err != nil {
		return err
	}
	return c.Apply(o)
}

// parseOp reads one gate instruction into the builder call it names.
func parseOp(line string) (Op, error) {
	if m := twoQubitRegex.FindStringSubmatch(line); m != nil {
		name := strings.ToLower(m[1])
		if name != "cx" {
			return Op{}, errors.Wrapf(ErrUnsupportedGate, "%q", m[1])
		}
		control, err := parseIndex(m[2])
		if err != nil {
			return Op{}, err
		}
		target, err := parseIndex(m[3])
		if err != nil {
			return Op{}, err
		}
		return Op{Name: name, Qubit: control, Target: target}, nil
	}

	if m := angleGateRegex.FindStringSubmatch(line); m != nil {
		name := strings.ToLower(m[1])
		switch name {
		case "rx", "ry", "rz":
		default:
			return Op{}, errors.Wrapf(ErrUnsupportedGate, "%q", m[1])
		}
		theta, err := ParseParam(m[2])
		if err != nil {
			return Op{}, err
		}
		q, err := parseIndex(m[3])
		if err != nil {
			return Op{}, err
		}
		return Op{Name: name, Qubit: q, Target: -1, Theta: theta}, nil
	}

	if m := singleGateRegex.FindStringSubmatch(line); m != nil {
		name := strings.ToLower(m[1])
		switch name {
		case "x", "h", "y", "z":
		default:
			return Op{}, errors.Wrapf(ErrUnsupportedGate, "%q", m[1])
		}
		q, err := parseIndex(m[2])
		if err != nil {
			return Op{}, err
		}
		return Op{Name: name, Qubit: q, Target: -1}, nil
	}

	return Op{}, errors.Wrapf(ErrUnsupportedGate, "%q", line)
}

func parseIndex(s string) (int, error) {
	q, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(err, "qubit index %q", s)
	}
	return q, nil
}
