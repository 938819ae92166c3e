package main

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"qengine/circuit"
	"qengine/engine"
)

const (
	// memoryPreview caps how many shots the memory view samples.
	memoryPreview = 256
	// maxWorkbenchQubits bounds the register the workbench will grow to.
	maxWorkbenchQubits = 12
)

// errWorkbenchTooWide is returned for circuits the workbench will not
// simulate live.
var errWorkbenchTooWide = errors.Errorf("the workbench is limited to %d qubits", maxWorkbenchQubits)

// checkWorkbenchWidth rejects circuits wider than maxWorkbenchQubits.
func checkWorkbenchWidth(c *circuit.Circuit) error {
	if c.NumQubits() > maxWorkbenchQubits {
		return errors.Wrapf(errWorkbenchTooWide, "circuit has %d", c.NumQubits())
	}
	return nil
}

// focus represents which panel/mode has keyboard input.
type focus int

const (
	focusCircuit focus = iota
	focusQASM
	focusMenu
	focusSelectTarget
	focusInputParam
)

// results holds the output of the last simulation in every format the
// results panel can show.
type results struct {
	states    []engine.BasisState
	marginals []engine.QubitProbability
	counts    engine.Counts
	memory    []string
	err       error
}

// Model represents the workbench state. The circuit is the single source of
// truth; the grid, the QASM text and the results are derived from it.
type Model struct {
	circ        *circuit.Circuit
	cursorQubit int
	viewStart   int // first moment column currently visible
	width       int
	height      int
	qasmEditor  textarea.Model
	focus       focus
	lastQASM    string
	parseErr    error
	statusMsg   string // transient status message (e.g. save confirmation)

	// Menu state
	menuCat  int
	menuItem int

	// Pending gate state
	pendingGate string
	targetQubit int
	paramInput  string
	theta       float64

	// Simulation
	shots    int
	seed     uint64
	format   engine.Format
	results  results
	nextSeed func() uint64
	savePath string
	log      *log.Logger
}

// modelOptions configures a new workbench.
type modelOptions struct {
	shots    int
	seed     *uint64
	format   engine.Format
	savePath string
	logger   *log.Logger
}

func newModel(c *circuit.Circuit, opts modelOptions) Model {
	ta := textarea.New()
	ta.Placeholder = "Edit QASM here..."
	ta.SetWidth(40)
	ta.SetHeight(20)
	ta.ShowLineNumbers = true
	ta.KeyMap.InsertNewline.SetEnabled(true)

	m := Model{
		circ:       c,
		qasmEditor: ta,
		focus:      focusCircuit,
		shots:      opts.shots,
		format:     opts.format,
		nextSeed:   rand.Uint64,
		savePath:   opts.savePath,
		log:        opts.logger,
	}
	if m.shots <= 0 {
		m.shots = engine.DefaultShots
	}
	if m.savePath == "" {
		m.savePath = "circuit.qasm"
	}
	if m.log == nil {
		m.log = log.New(io.Discard)
	}
	if opts.seed != nil {
		m.seed = *opts.seed
	} else {
		m.seed = m.nextSeed()
	}

	m.syncFromCircuit()
	return m
}

// syncFromCircuit rewrites the editor from the circuit and re-runs it.
func (m *Model) syncFromCircuit() {
	qasm := m.circ.ToQASMOps()
	m.qasmEditor.SetValue(qasm)
	m.lastQASM = qasm
	m.parseErr = nil
	m.followTail()
	m.simulate()
}

// parseQASMInput re-parses the editor after a keystroke. A text that does
// not parse leaves the current circuit in place.
func (m *Model) parseQASMInput() {
	qasm := m.qasmEditor.Value()
	if qasm == m.lastQASM {
		return
	}
	m.lastQASM = qasm

	c, err := circuit.ParseQASM(qasm)
	if err == nil {
		err = checkWorkbenchWidth(c)
	}
	if err != nil {
		m.parseErr = err
		return
	}
	m.parseErr = nil
	m.circ = c
	m.cursorQubit = min(m.cursorQubit, c.NumQubits()-1)
	m.followTail()
	m.simulate()
}

// simulate runs the circuit and samples what the selected format needs.
func (m *Model) simulate() {
	m.results = results{}

	e, err := engine.New(m.circ,
		engine.WithShots(m.shots),
		engine.WithSeed(m.seed),
		engine.WithLogger(m.log),
	)
	if err == nil {
		err = e.Run()
	}
	if err != nil {
		m.results.err = err
		return
	}

	switch m.format {
	case engine.CountsFormat:
		m.results.counts, m.results.err = e.Counts(0)
	case engine.MemoryFormat:
		m.results.memory, m.results.err = e.Memory(min(m.shots, memoryPreview))
	default:
		if m.results.states, err = e.BasisStates(1e-10); err != nil {
			m.results.err = err
			return
		}
		m.results.marginals, m.results.err = e.QubitProbabilities()
	}
}

// gridColumns returns how many moment columns fit in the circuit panel.
func (m Model) gridColumns() int {
	if m.width == 0 {
		return 4
	}
	circuitWidth := m.width - m.width/3 - 4
	return max((circuitWidth-labelVisualW-4)/cellW, 1)
}

// followTail scrolls so the last column is visible.
func (m *Model) followTail() {
	m.viewStart = max(m.circ.Depth()-m.gridColumns(), 0)
}

// resize changes the register width, dropping ops on removed qubits.
func (m *Model) resize(n int) {
	c, err := m.circ.Resize(n)
	if err != nil {
		m.statusMsg = err.Error()
		return
	}
	m.circ = c
	m.cursorQubit = min(m.cursorQubit, n-1)
	m.syncFromCircuit()
}

// placeGate appends the pending gate at the cursor qubit. targetQ is the
// target for cx and -1 otherwise. Returns false when the builder rejects it.
func (m *Model) placeGate(gateType string, targetQ int) bool {
	op := circuit.Op{
		Name:   gateType,
		Qubit:  m.cursorQubit,
		Target: targetQ,
		Theta:  m.theta,
	}
	err := m.circ.Apply(op)

	m.paramInput = ""
	m.pendingGate = ""
	m.theta = 0

	if err != nil {
		m.statusMsg = fmt.Sprintf("Cannot place: %v", err)
		return false
	}
	m.syncFromCircuit()
	return true
}

// startTargetSelect picks the nearest other qubit as the initial target.
func (m *Model) startTargetSelect() {
	if m.circ.NumQubits() < 2 {
		m.statusMsg = "cx needs at least two qubits"
		m.focus = focusCircuit
		m.pendingGate = ""
		return
	}
	m.focus = focusSelectTarget
	m.targetQubit = m.cursorQubit + 1
	if m.targetQubit >= m.circ.NumQubits() {
		m.targetQubit = m.cursorQubit - 1
	}
}

// isParamChar reports whether ch may appear in an angle expression.
func isParamChar(ch byte) bool {
	return (ch >= '0' && ch <= '9') || strings.IndexByte(".-+eEpiPI*/", ch) >= 0
}

// ──────────────────────────── Init / Update ────────────────────────────

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		qasmW := max(msg.Width/3-6, 20)
		m.qasmEditor.SetWidth(qasmW)
		_, _, circH := m.panelHeights()
		m.qasmEditor.SetHeight(max(circH-6, 4))
		m.followTail()

	case tea.KeyMsg:
		key := msg.String()
		m.statusMsg = ""

		if key == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.focus {
		case focusCircuit:
			switch key {
			case "q":
				return m, tea.Quit
			case "tab":
				m.focus = focusQASM
				m.qasmEditor.Focus()
			case "ctrl+r":
				m.seed = m.nextSeed()
				m.simulate()
				m.statusMsg = fmt.Sprintf("Re-ran with seed %d", m.seed)
			case "f":
				formats := engine.Formats()
				m.format = formats[(int(m.format)+1)%len(formats)]
				m.simulate()
			case "ctrl+s":
				if err := os.WriteFile(m.savePath, []byte(m.circ.ToQASMOps()), 0644); err != nil {
					m.statusMsg = fmt.Sprintf("Save error: %v", err)
				} else {
					m.statusMsg = "Saved " + m.savePath
				}
			case "up", "k":
				if m.cursorQubit > 0 {
					m.cursorQubit--
				}
			case "down", "j":
				if m.cursorQubit < m.circ.NumQubits()-1 {
					m.cursorQubit++
				}
			case "left", "h":
				if m.viewStart > 0 {
					m.viewStart--
				}
			case "right", "l":
				if m.viewStart < max(m.circ.Depth()-m.gridColumns(), 0) {
					m.viewStart++
				}
			case "+", "=":
				if m.circ.NumQubits() >= maxWorkbenchQubits {
					m.statusMsg = fmt.Sprintf("The workbench is limited to %d qubits", maxWorkbenchQubits)
					break
				}
				m.resize(m.circ.NumQubits() + 1)
			case "-":
				if m.circ.NumQubits() > 1 {
					m.resize(m.circ.NumQubits() - 1)
				}
			case "a":
				m.focus = focusMenu
				m.menuCat = 0
				m.menuItem = 0
			case "backspace", "delete":
				if op, ok := m.circ.RemoveLast(); ok {
					m.statusMsg = "Removed " + op.String()
					m.syncFromCircuit()
				}
			}

		case focusMenu:
			switch key {
			case "esc":
				m.focus = focusCircuit
			case "up", "k":
				if m.menuItem > 0 {
					m.menuItem--
				}
			case "down", "j":
				if m.menuItem < len(gateMenu[m.menuCat].items)-1 {
					m.menuItem++
				}
			case "left", "h":
				if m.menuCat > 0 {
					m.menuCat--
					m.menuItem = 0
				}
			case "right", "l":
				if m.menuCat < len(gateMenu)-1 {
					m.menuCat++
					m.menuItem = 0
				}
			case "enter":
				item := m.selectedItem()
				m.pendingGate = item.gateType
				m.theta = 0

				switch {
				case item.needsParams:
					m.paramInput = ""
					m.focus = focusInputParam
				case item.needsTarget:
					m.startTargetSelect()
				default:
					m.placeGate(item.gateType, -1)
					m.focus = focusCircuit
				}
			}

		case focusSelectTarget:
			switch key {
			case "esc":
				m.focus = focusCircuit
				m.pendingGate = ""
			case "up", "k":
				for next := m.targetQubit - 1; next >= 0; next-- {
					if next != m.cursorQubit {
						m.targetQubit = next
						break
					}
				}
			case "down", "j":
				for next := m.targetQubit + 1; next < m.circ.NumQubits(); next++ {
					if next != m.cursorQubit {
						m.targetQubit = next
						break
					}
				}
			case "enter":
				m.placeGate(m.pendingGate, m.targetQubit)
				m.focus = focusCircuit
			}

		case focusInputParam:
			switch key {
			case "esc":
				m.focus = focusCircuit
				m.paramInput = ""
				m.pendingGate = ""
			case "backspace":
				if len(m.paramInput) > 0 {
					m.paramInput = m.paramInput[:len(m.paramInput)-1]
				}
			case "enter":
				theta := 0.0
				if strings.TrimSpace(m.paramInput) != "" {
					v, err := circuit.ParseParam(m.paramInput)
					if err != nil {
						m.statusMsg = "Invalid angle: use numbers or pi expressions (e.g. pi/2, 3*pi/4)"
						break
					}
					theta = v
				}
				m.theta = theta
				m.placeGate(m.pendingGate, -1)
				m.focus = focusCircuit
			default:
				if len(key) == 1 && isParamChar(key[0]) {
					m.paramInput += key
				}
			}

		case focusQASM:
			switch key {
			case "tab":
				m.focus = focusCircuit
				m.qasmEditor.Blur()
			default:
				var cmd tea.Cmd
				m.qasmEditor, cmd = m.qasmEditor.Update(msg)
				cmds = append(cmds, cmd)
				m.parseQASMInput()
			}
		}
	}

	return m, tea.Batch(cmds...)
}

// panelHeights splits the window between controls, results and the top row.
func (m Model) panelHeights() (controls, res, top int) {
	controls = 4
	res = max(m.height/3, 8)
	top = max(m.height-controls-res-4, 6)
	return
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	qasmWidth := m.width / 3
	circuitWidth := m.width - qasmWidth - 4
	controlsHeight, resultsHeight, topHeight := m.panelHeights()

	circuitPanel := m.renderCircuitPanel(circuitWidth, topHeight)
	qasmPanel := m.renderQASMPanel(qasmWidth, topHeight)
	resultsPanel := m.renderResultsPanel(m.width-4, resultsHeight)
	controlsPanel := m.renderControlsPanel(m.width-4, controlsHeight-2)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, circuitPanel, qasmPanel)
	frame := lipgloss.JoinVertical(lipgloss.Left, topRow, resultsPanel, controlsPanel)

	switch m.focus {
	case focusMenu:
		frame = overlayAt(frame, m.renderMenu(), 2, 2)
	case focusInputParam:
		frame = overlayAt(frame, m.renderParamInput(), 2, 2)
	}

	return frame
}

// renderParamInput renders the angle input overlay.
func (m Model) renderParamInput() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Enter Angle for " + strings.ToUpper(m.pendingGate)))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "θ = %s_", m.paramInput)
	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render("Examples: pi/2, 3*pi/4, 1.57"))
	return menuBorderStyle.Render(sb.String())
}
