package engine

import (
	"math"

	"qengine/circuit"
)

// apply mutates the vector for one validated gate.
func (e *Engine) apply(g circuit.Gate) {
	switch g.Kind {
	case circuit.BitFlip:
		e.forEachPair(g.Qubit, func(b0, b1 int) {
			e.amps[b0], e.amps[b1] = e.amps[b1], e.amps[b0]
		})
	case circuit.Hadamard:
		e.forEachPair(g.Qubit, func(b0, b1 int) {
			x, y := e.amps[b0], e.amps[b1]
			e.amps[b0] = complex(math.Sqrt2/2, 0) * (x + y)
			e.amps[b1] = complex(math.Sqrt2/2, 0) * (x - y)
		})
	case circuit.Rotation:
		c, s := math.Cos(g.Theta/2), math.Sin(g.Theta/2)
		e.forEachPair(g.Qubit, func(b0, b1 int) {
			x, y := e.amps[b0], e.amps[b1]
			e.amps[b0] = complex(real(x)*c+imag(y)*s, imag(x)*c-real(y)*s)
			e.amps[b1] = complex(real(y)*c+imag(x)*s, imag(y)*c-real(x)*s)
		})
	case circuit.ControlledBitFlip:
		e.applyControlled(g.Qubit, g.Target)
	default:
		// Unreachable: Run validates kinds before replaying.
		panic("engine: unsupported gate kind " + g.Kind.String())
	}
}

// forEachPair visits the 2^(n-1) index pairs that differ only in bit q.
// The low bits below q and the high bits above q are the free parameters:
// b0 = inner + 2^(q+1)*outer has bit q clear and b1 = b0 + 2^q has it set.
func (e *Engine) forEachPair(q int, fn func(b0, b1 int)) {
	stride := 1 << q
	blocks := 1 << (e.numQubits - q - 1)
	for inner := range stride {
		for outer := range blocks {
			b0 := inner + (stride<<1)*outer
			fn(b0, b0+stride)
		}
	}
}

// applyControlled swaps the target-bit pairs of the subspace where the control
// bit is 1. The free bits are split into three ranges around lo and hi; the
// base index has the control bit forced on and the target bit off.
func (e *Engine) applyControlled(control, target int) {
	lo, hi := min(control, target), max(control, target)
	controlBit, targetBit := 1<<control, 1<<target

	for low := range 1 << lo {
		for mid := range 1 << (hi - lo - 1) {
			for high := range 1 << (e.numQubits - hi - 1) {
				b0 := low + mid<<(lo+1) + high<<(hi+1) + controlBit
				b1 := b0 + targetBit
				e.amps[b0], e.amps[b1] = e.amps[b1], e.amps[b0]
			}
		}
	}
}
