// Package config holds the job settings shared by the qengine commands.
package config

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"qengine/engine"
)

// Config is the on-disk job description. Every field is optional; flags
// given on the command line take precedence.
type Config struct {
	Shots    int     `yaml:"shots"`
	Seed     *uint64 `yaml:"seed,omitempty"`
	Format   string  `yaml:"format"`
	LogLevel string  `yaml:"log_level"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Shots:    engine.DefaultShots,
		Format:   engine.StateVectorFormat.String(),
		LogLevel: "info",
	}
}

// Load reads a YAML job file. Missing keys keep their defaults.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "load config")
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a job description from r. Unknown keys are rejected.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the shot count, output format and log level.
func (c Config) Validate() error {
	if c.Shots < 0 {
		return errors.Wrapf(engine.ErrInvalidShots, "shots %d", c.Shots)
	}
	if _, err := c.OutputFormat(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// OutputFormat resolves the configured report format.
func (c Config) OutputFormat() (engine.Format, error) {
	return engine.ParseFormat(c.Format)
}

// Level resolves the configured log level; empty means info.
func (c Config) Level() (log.Level, error) {
	if strings.TrimSpace(c.LogLevel) == "" {
		return log.InfoLevel, nil
	}
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(c.LogLevel)))
	if err != nil {
		return 0, errors.Wrapf(err, "log level %q", c.LogLevel)
	}
	return lvl, nil
}

// EngineOptions translates the job settings into engine options.
func (c Config) EngineOptions() []engine.Option {
	opts := []engine.Option{engine.WithShots(c.Shots)}
	if c.Seed != nil {
		opts = append(opts, engine.WithSeed(*c.Seed))
	}
	return opts
}
