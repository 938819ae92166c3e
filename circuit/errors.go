package circuit

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrUnsupportedGate is returned for instructions or descriptor kinds outside
// the four primitives and their composites.
var ErrUnsupportedGate = errors.New("unsupported gate")

// ConfigurationError reports a qubit count outside [1, MaxQubits].
type ConfigurationError struct {
	NumQubits int
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid qubit count %d: must be between 1 and %d", e.NumQubits, MaxQubits)
}

// IndexError reports a gate that references a qubit the register does not have,
// or a controlled gate whose control and target coincide.
type IndexError struct {
	Op        string
	Qubit     int
	NumQubits int
	Reason    string
}

func (e *IndexError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: qubit %d: %s", e.Op, e.Qubit, e.Reason)
	}
	return fmt.Sprintf("%s: qubit %d out of range [0, %d)", e.Op, e.Qubit, e.NumQubits)
}
