// Command qengine simulates small quantum circuits written in an OpenQASM 2.0
// subset, either as a one-shot report or in an interactive workbench.
package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"qengine/circuit"
	"qengine/engine"
	"qengine/internal/config"
)

// defaultWorkbenchQubits is the register width of an empty workbench.
const defaultWorkbenchQubits = 2

func main() {
	if err := newApp(os.Stdin, os.Stdout, os.Stderr).Run(os.Args); err != nil {
		log.New(os.Stderr).Fatal("qengine", "err", err)
	}
}

// jobFlags are shared by every command that runs a circuit.
func jobFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML job file with shots, seed, format and log_level",
		},
		&cli.IntFlag{
			Name:    "shots",
			Aliases: []string{"n"},
			Usage:   "number of measurement samples",
			EnvVars: []string{"QENGINE_SHOTS"},
		},
		&cli.Uint64Flag{
			Name:    "seed",
			Usage:   "seed for reproducible sampling",
			EnvVars: []string{"QENGINE_SEED"},
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "report format: statevector, memory or counts",
			EnvVars: []string{"QENGINE_FORMAT"},
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "debug, info, warn or error",
			EnvVars: []string{"QENGINE_LOG_LEVEL"},
		},
	}
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "qengine",
		Usage:     "state-vector quantum circuit simulator",
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "simulate a QASM circuit and print a report",
				ArgsUsage: "[file.qasm|-]",
				Flags: append(jobFlags(),
					&cli.BoolFlag{
						Name:  "dump-gates",
						Usage: "dump the primitive gate descriptors to stderr",
					},
					&cli.BoolFlag{
						Name:    "table",
						Aliases: []string{"t"},
						Usage:   "render statevector and counts reports as tables",
					},
				),
				Action: runAction,
			},
			{
				Name:      "tui",
				Usage:     "open the interactive circuit workbench",
				ArgsUsage: "[file.qasm]",
				Flags: append(jobFlags(),
					&cli.StringFlag{
						Name:  "log-file",
						Usage: "write engine logs to this file while the workbench runs",
					},
					&cli.StringFlag{
						Name:  "save",
						Value: "circuit.qasm",
						Usage: "file written by ctrl+s",
					},
				),
				Action: tuiAction,
			},
		},
	}
}

// loadJob merges the job file, environment and flags, in that order.
func loadJob(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}
	if c.IsSet("shots") {
		cfg.Shots = c.Int("shots")
	}
	if c.IsSet("seed") {
		seed := c.Uint64("seed")
		cfg.Seed = &seed
	}
	if c.IsSet("format") {
		cfg.Format = c.String("format")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	return cfg, cfg.Validate()
}

func newLogger(w io.Writer, cfg config.Config) *log.Logger {
	lvl, _ := cfg.Level()
	return log.NewWithOptions(w, log.Options{
		Prefix:          "qengine",
		ReportTimestamp: true,
		Level:           lvl,
	})
}

// readCircuit parses the circuit named by the first argument. An empty
// argument or "-" reads stdin.
func readCircuit(c *cli.Context) (*circuit.Circuit, string, error) {
	name := c.Args().First()
	var (
		src []byte
		err error
	)
	if name == "" || name == "-" {
		name = "<stdin>"
		src, err = io.ReadAll(c.App.Reader)
	} else {
		src, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, name, errors.Wrapf(err, "read %s", name)
	}
	circ, err := circuit.ParseQASM(string(src))
	if err != nil {
		return nil, name, errors.Wrapf(err, "parse %s", name)
	}
	return circ, name, nil
}

func runAction(c *cli.Context) error {
	if c.NArg() > 1 {
		return errors.Errorf("unexpected command line arguments: %q", c.Args().Tail())
	}
	cfg, err := loadJob(c)
	if err != nil {
		return err
	}
	logger := newLogger(c.App.ErrWriter, cfg)

	circ, name, err := readCircuit(c)
	if err != nil {
		return err
	}
	logger.Info("circuit loaded", "source", name, "qubits", circ.NumQubits(), "gates", circ.Len(), "depth", circ.Depth())
	if c.Bool("dump-gates") {
		fmt.Fprint(c.App.ErrWriter, spew.Sdump(circ.Gates()))
	}

	e, err := engine.New(circ, append(cfg.EngineOptions(), engine.WithLogger(logger))...)
	if err != nil {
		return err
	}
	if err := e.Run(); err != nil {
		return errors.Wrap(err, "run")
	}

	format, err := cfg.OutputFormat()
	if err != nil {
		return err
	}
	var out string
	if c.Bool("table") {
		out, err = renderTable(e, format, 0)
	} else {
		out, err = e.Report(format, 0)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(c.App.Writer, out)
	return err
}

func tuiAction(c *cli.Context) error {
	cfg, err := loadJob(c)
	if err != nil {
		return err
	}

	logger := log.New(io.Discard)
	if path := c.String("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return errors.Wrap(err, "open log file")
		}
		defer f.Close()
		logger = newLogger(f, cfg)
	}

	var circ *circuit.Circuit
	if c.NArg() > 0 {
		if circ, _, err = readCircuit(c); err != nil {
			return err
		}
		if err := checkWorkbenchWidth(circ); err != nil {
			return err
		}
	} else if circ, err = circuit.New(defaultWorkbenchQubits); err != nil {
		return err
	}

	format, err := cfg.OutputFormat()
	if err != nil {
		return err
	}
	m := newModel(circ, modelOptions{
		shots:    cfg.Shots,
		seed:     cfg.Seed,
		format:   format,
		savePath: c.String("save"),
		logger:   logger,
	})
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
