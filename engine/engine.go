// Package engine simulates a circuit by tracking the full amplitude vector of
// its register.
//
// An Engine snapshots a circuit's gate sequence at construction. Run resets
// the vector to |0...0> and replays every gate in order; the measurement and
// report methods read the vector left by the last Run.
package engine

import (
	"io"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"qengine/circuit"
)

// DefaultShots is the shot count used when none is configured.
const DefaultShots = 1024

var (
	// ErrNotRun is returned when results are requested before the first Run.
	ErrNotRun = errors.New("engine has not been run")
	// ErrInvalidShots is returned for a negative shot count.
	ErrInvalidShots = errors.New("shot count must not be negative")
)

// Source supplies uniform values in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// Config holds the tunables of an Engine.
type Config struct {
	// Shots is used by Memory, Counts and Report when they are passed 0.
	// Zero means DefaultShots.
	Shots int
}

// DefaultConfig returns the configuration used when no option overrides it.
func DefaultConfig() Config {
	return Config{Shots: DefaultShots}
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig replaces the engine configuration.
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithShots sets the default shot count.
func WithShots(shots int) Option {
	return func(e *Engine) { e.cfg.Shots = shots }
}

// WithSource sets the randomness used for sampling.
func WithSource(src Source) Option {
	return func(e *Engine) { e.rng = src }
}

// WithSeed seeds a private PCG source, making sampling reproducible.
func WithSeed(seed uint64) Option {
	return WithSource(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// WithLogger sets the logger. Engines log nothing unless given one.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// Engine owns the amplitude vector of one circuit.
type Engine struct {
	numQubits int
	gates     []circuit.Gate
	amps      []complex128
	ran       bool

	cfg Config
	rng Source
	log *log.Logger
}

// New snapshots c and allocates its 2^n amplitudes in the ground state.
// Gates appended to c afterwards are not seen by the engine.
func New(c *circuit.Circuit, opts ...Option) (*Engine, error) {
	if c == nil {
		return nil, errors.New("nil circuit")
	}
	n := c.NumQubits()
	if n <= 0 || n > circuit.MaxQubits {
		return nil, &circuit.ConfigurationError{NumQubits: n}
	}

	e := &Engine{
		numQubits: n,
		gates:     c.Gates(),
		amps:      make([]complex128, 1<<n),
		cfg:       DefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if e.log == nil {
		e.log = log.New(io.Discard)
	}
	if e.cfg.Shots < 0 {
		return nil, errors.Wrapf(ErrInvalidShots, "configured shots %d", e.cfg.Shots)
	}
	e.reset()
	return e, nil
}

// NumQubits returns the register width.
func (e *Engine) NumQubits() int { return e.numQubits }

// Gates returns a copy of the gate sequence the engine replays.
func (e *Engine) Gates() []circuit.Gate {
	return slices.Clone(e.gates)
}

// Run resets the vector to the ground state and applies every gate in order.
// The whole sequence is validated first, so a failing Run leaves the vector
// untouched.
func (e *Engine) Run() error {
	if err := e.validate(); err != nil {
		return err
	}

	start := time.Now()
	e.log.Debug("run started", "qubits", e.numQubits, "gates", len(e.gates))

	e.reset()
	for _, g := range e.gates {
		e.apply(g)
	}
	e.ran = true

	e.log.Debug("run finished", "elapsed", time.Since(start))
	return nil
}

// validate checks every descriptor before any amplitude is mutated.
func (e *Engine) validate() error {
	for i, g := range e.gates {
		if err := circuit.CheckGate(g, e.numQubits); err != nil {
			return errors.Wrapf(err, "gate %d", i)
		}
	}
	return nil
}

func (e *Engine) reset() {
	clear(e.amps)
	e.amps[0] = 1
}

// shots resolves a per-call shot count against the configured default.
func (e *Engine) shots(n int) (int, error) {
	if n < 0 {
		return 0, errors.Wrapf(ErrInvalidShots, "shots %d", n)
	}
	if n == 0 {
		n = e.cfg.Shots
	}
	if n == 0 {
		n = DefaultShots
	}
	return n, nil
}
