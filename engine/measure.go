package engine

import (
	"fmt"
	"slices"
	"sort"
)

// Counts maps a sampled bitstring to the number of shots that produced it.
type Counts map[string]int

// Keys returns the observed bitstrings in lexicographic order.
func (c Counts) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Total returns the number of shots aggregated.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Probabilities returns |amplitude|^2 for every basis index.
func (e *Engine) Probabilities() ([]float64, error) {
	if !e.ran {
		return nil, ErrNotRun
	}
	return e.probabilities(), nil
}

func (e *Engine) probabilities() []float64 {
	probs := make([]float64, len(e.amps))
	for i, a := range e.amps {
		probs[i] = real(a)*real(a) + imag(a)*imag(a)
	}
	return probs
}

// Memory draws shots independent samples and returns their bitstrings in
// trial order. A shot count of 0 uses the configured default.
func (e *Engine) Memory(shots int) ([]string, error) {
	if !e.ran {
		return nil, ErrNotRun
	}
	k, err := e.shots(shots)
	if err != nil {
		return nil, err
	}

	idx := e.sample(k)
	out := make([]string, k)
	for i, v := range idx {
		out[i] = e.bitstring(v)
	}
	return out, nil
}

// Counts draws shots samples and aggregates them by bitstring.
func (e *Engine) Counts(shots int) (Counts, error) {
	mem, err := e.Memory(shots)
	if err != nil {
		return nil, err
	}
	counts := make(Counts)
	for _, b := range mem {
		counts[b]++
	}
	return counts, nil
}

// sample performs k rounds of inverse-CDF sampling over the current
// distribution. Each draw picks the smallest index whose cumulative
// probability exceeds a uniform r in [0, 1). The distribution is not
// renormalised; a draw that lands beyond the accumulated total resolves to
// the highest index with nonzero probability.
func (e *Engine) sample(k int) []int {
	probs := e.probabilities()
	cdf := make([]float64, len(probs))
	sum := 0.0
	last := 0
	for i, p := range probs {
		sum += p
		cdf[i] = sum
		if p > 0 {
			last = i
		}
	}

	e.log.Debug("sampling", "shots", k, "total", sum)

	out := make([]int, k)
	for shot := range k {
		r := e.rng.Float64()
		i := sort.Search(len(cdf), func(i int) bool { return cdf[i] > r })
		if i == len(cdf) {
			i = last
		}
		out[shot] = i
	}
	return out
}

// bitstring formats a basis index as n binary digits, highest qubit first.
func (e *Engine) bitstring(i int) string {
	return fmt.Sprintf("%0*b", e.numQubits, i)
}
