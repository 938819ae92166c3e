package engine

import (
	"fmt"
	"math/cmplx"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownFormat is returned by ParseFormat for an unrecognised name.
var ErrUnknownFormat = errors.New("unknown output format")

// Format selects what Report renders.
type Format int

const (
	StateVectorFormat Format = iota
	MemoryFormat
	CountsFormat
)

var formatNames = map[Format]string{
	StateVectorFormat: "statevector",
	MemoryFormat:      "memory",
	CountsFormat:      "counts",
}

func (f Format) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Formats lists every format in declaration order.
func Formats() []Format {
	return []Format{StateVectorFormat, MemoryFormat, CountsFormat}
}

// ParseFormat maps "statevector", "memory" or "counts" to a Format. An empty
// name selects StateVectorFormat.
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return StateVectorFormat, nil
	}
	for f, s := range formatNames {
		if s == name {
			return f, nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownFormat, "%q (want statevector, memory or counts)", name)
}

// Amplitudes returns a copy of the amplitude vector.
func (e *Engine) Amplitudes() ([]complex128, error) {
	if !e.ran {
		return nil, ErrNotRun
	}
	return slices.Clone(e.amps), nil
}

// StateVector renders one line per basis index: the zero-padded bitstring
// followed by the amplitude as re+imj, e.g. "01 0.7071067811865476+0j".
func (e *Engine) StateVector() (string, error) {
	if !e.ran {
		return "", ErrNotRun
	}
	var sb strings.Builder
	for i, a := range e.amps {
		sb.WriteString(e.bitstring(i))
		sb.WriteByte(' ')
		sb.WriteString(formatAmplitude(a))
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// formatAmplitude prints a as "re+imj". Negative zero prints as 0.
func formatAmplitude(a complex128) string {
	re, im := real(a), imag(a)
	if re == 0 {
		re = 0
	}
	if im == 0 {
		im = 0
	}
	ims := strconv.FormatFloat(im, 'g', -1, 64)
	if !strings.HasPrefix(ims, "-") {
		ims = "+" + ims
	}
	return strconv.FormatFloat(re, 'g', -1, 64) + ims + "j"
}

// QubitProbability is the marginal distribution of one qubit.
type QubitProbability struct {
	P0 float64
	P1 float64
}

// QubitProbabilities returns the marginal distribution of every qubit,
// indexed by qubit.
func (e *Engine) QubitProbabilities() ([]QubitProbability, error) {
	probs, err := e.Probabilities()
	if err != nil {
		return nil, err
	}
	out := make([]QubitProbability, e.numQubits)
	for i, p := range probs {
		for q := range e.numQubits {
			if i&(1<<q) != 0 {
				out[q].P1 += p
			} else {
				out[q].P0 += p
			}
		}
	}
	return out, nil
}

// BasisState describes one basis state with non-negligible amplitude.
type BasisState struct {
	Index       int
	Bits        string
	Amplitude   complex128
	Probability float64
	Phase       float64
}

// BasisStates returns the basis states whose probability exceeds eps, in
// index order.
func (e *Engine) BasisStates(eps float64) ([]BasisState, error) {
	if !e.ran {
		return nil, ErrNotRun
	}
	var out []BasisState
	for i, a := range e.amps {
		p := real(a)*real(a) + imag(a)*imag(a)
		if p <= eps {
			continue
		}
		out = append(out, BasisState{
			Index:       i,
			Bits:        e.bitstring(i),
			Amplitude:   a,
			Probability: p,
			Phase:       cmplx.Phase(a),
		})
	}
	return out, nil
}

// Norm returns the sum of squared magnitudes, 1 for a valid state.
func (e *Engine) Norm() float64 {
	sum := 0.0
	for _, a := range e.amps {
		sum += real(a)*real(a) + imag(a)*imag(a)
	}
	return sum
}

// Report renders the result of the last Run in the given format. Memory
// prints one bitstring per line in trial order; counts prints "bits: n" lines
// in lexicographic order.
func (e *Engine) Report(f Format, shots int) (string, error) {
	switch f {
	case StateVectorFormat:
		return e.StateVector()
	case MemoryFormat:
		mem, err := e.Memory(shots)
		if err != nil {
			return "", err
		}
		return strings.Join(mem, "\n") + "\n", nil
	case CountsFormat:
		counts, err := e.Counts(shots)
		if err != nil {
			return "", err
		}
		var sb strings.Builder
		for _, k := range counts.Keys() {
			fmt.Fprintf(&sb, "%s: %d\n", k, counts[k])
		}
		return sb.String(), nil
	default:
		return "", errors.Wrapf(ErrUnknownFormat, "%v", f)
	}
}
