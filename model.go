package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// focus represents which panel has keyboard input.
type focus int

const (
	focusGrid focus = iota
	focusCode
	focusMenu
)

// resultView selects what the results panel shows.
type resultView int

const (
	viewHistogram resultView = iota
	viewSphere
	viewHeatmap
)

// simResultMsg carries the answer to simulation request seq.
type simResultMsg struct {
	seq       int
	counts    Counts
	numQubits int
	err       error
}

// heatmapResultMsg carries the answer to comparison request seq.
type heatmapResultMsg struct {
	seq     int
	heatmap *Heatmap
	err     error
}

// Model represents the TUI application state.
type Model struct {
	cfg    Config
	sim    Simulator
	log    *zap.Logger
	path   string // program file saved with ctrl+s
	editor *Editor
	doc    *Document

	codeEditor textarea.Model
	lastText   string // last program text written into the editor by the grid

	cursorQubit int
	cursorCol   int
	width       int
	height      int
	focus       focus
	statusMsg   string
	statusErr   bool

	// Toolbox state
	menuCat  int
	menuItem int

	paramInput string

	// Simulation state
	noisy      bool
	running    bool
	runSeq     int
	spinner    spinner.Model
	results    Counts
	resultBits int
	heatmap    *Heatmap
	view       resultView
}

func initialModel(cfg Config, sim Simulator, log *zap.Logger, path, code string) Model {
	if log == nil {
		log = zap.NewNop()
	}

	ta := textarea.New()
	ta.Placeholder = "H 0\nCNOT 0 1"
	ta.SetWidth(30)
	ta.SetHeight(12)
	ta.ShowLineNumbers = true
	ta.KeyMap.InsertNewline.SetEnabled(true)
	ta.CharLimit = 0 // no limit
	ta.MaxHeight = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	doc := NewDocument(cfg.Editor.Qubits)
	m := Model{
		cfg:        cfg,
		sim:        sim,
		log:        log,
		path:       path,
		doc:        doc,
		editor:     NewEditor(doc),
		codeEditor: ta,
		focus:      focusGrid,
		noisy:      cfg.Simulation.Noisy,
		spinner:    sp,
	}

	if code == "" {
		code = cfg.Editor.InitialCode
	}
	doc.ApplyText(code)
	m.syncFromDocument()
	return m
}

// syncFromDocument regenerates the program text after a grid edit. The
// editor buffer is only rewritten when the program actually changed, and
// lastText remembers it so the rewrite is not parsed back in.
func (m *Model) syncFromDocument() {
	text := m.doc.Text()
	if text == m.lastText && text == m.codeEditor.Value() {
		return
	}
	m.codeEditor.SetValue(text)
	m.lastText = text
}

// applyCodeEdit reparses the buffer after the user typed into it. The grid
// follows the text; the text itself is left exactly as typed.
func (m *Model) applyCodeEdit() {
	text := m.codeEditor.Value()
	if text == m.lastText {
		return
	}
	m.lastText = text
	if n := m.doc.ApplyText(text); n > 0 {
		m.cursorQubit = min(m.cursorQubit, m.doc.NumQubits()-1)
		m.log.Debug("program reparsed", zap.Int("gates", n))
	}
}

func (m *Model) setStatus(msg string) {
	m.statusMsg = msg
	m.statusErr = false
}

func (m *Model) setError(err error) {
	m.statusMsg = capitalize(err.Error())
	m.statusErr = true
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ──────────────────────────── Commands ────────────────────────────

// simulate starts a run of the current circuit. Empty circuits are
// rejected before anything is sent.
func (m *Model) simulate() tea.Cmd {
	gates := m.doc.Gates()
	req, err := BuildRequest(gates, m.cfg.Simulation.RunOptions(m.noisy))
	if errors.Is(err, ErrNoGates) {
		m.setStatus("No valid gates found. Please check your input.")
		m.statusErr = true
		return nil
	}
	if err != nil {
		m.setError(err)
		return nil
	}
	if m.sim == nil {
		m.setError(errors.New("no simulation backend configured"))
		return nil
	}

	m.runSeq++
	m.running = true
	seq, sim := m.runSeq, m.sim
	m.log.Info("simulating", zap.Int("seq", seq), zap.Int("gates", len(gates)), zap.Int("qubits", req.NumQubits), zap.Bool("noisy", req.Noisy()))
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		counts, err := sim.Simulate(context.Background(), req)
		return simResultMsg{seq: seq, counts: counts, numQubits: req.NumQubits, err: err}
	})
}

// compare runs the noise-channel comparison.
func (m *Model) compare() tea.Cmd {
	gates := m.doc.Gates()
	if len(gates) == 0 {
		m.setStatus("No gates in the circuit to compare.")
		m.statusErr = true
		return nil
	}
	if m.sim == nil {
		m.setError(errors.New("no simulation backend configured"))
		return nil
	}

	m.runSeq++
	m.running = true
	seq, sim := m.runSeq, m.sim
	channels := NoiseChannels(m.cfg.Simulation.GateErrorProb, m.cfg.Simulation.MeasurementErrorProb)
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		hm, err := CompareNoise(context.Background(), sim, gates, channels)
		return heatmapResultMsg{seq: seq, heatmap: hm, err: err}
	})
}

// ──────────────────────────── Init / Update ────────────────────────────

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.codeEditor.SetWidth(max(msg.Width/3-6, 20))
		m.codeEditor.SetHeight(max(msg.Height/2-6, 4))

	case spinner.TickMsg:
		if m.running {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case simResultMsg:
		if msg.seq != m.runSeq {
			// a newer request superseded this one
			m.log.Debug("dropping stale result", zap.Int("seq", msg.seq))
			break
		}
		m.running = false
		if msg.err != nil {
			m.log.Warn("simulation failed", zap.Error(msg.err))
			m.setError(msg.err)
			break
		}
		m.results = msg.counts
		m.resultBits = msg.numQubits
		if m.view == viewHeatmap {
			m.view = viewHistogram
		}
		m.setStatus(fmt.Sprintf("Simulation finished: %d shots", msg.counts.Total()))

	case heatmapResultMsg:
		if msg.seq != m.runSeq {
			break
		}
		m.running = false
		if msg.err != nil {
			m.log.Warn("comparison failed", zap.Error(msg.err))
			m.setError(msg.err)
			break
		}
		m.heatmap = msg.heatmap
		m.view = viewHeatmap
		m.setStatus("Noise comparison finished")

	case tea.KeyMsg:
		key := msg.String()
		m.statusMsg = ""

		if key == "ctrl+c" {
			return m, tea.Quit
		}

		switch {
		case m.focus == focusCode:
			switch key {
			case "tab", "esc":
				m.focus = focusGrid
				m.codeEditor.Blur()
			default:
				var cmd tea.Cmd
				m.codeEditor, cmd = m.codeEditor.Update(msg)
				cmds = append(cmds, cmd)
				m.applyCodeEdit()
			}

		case m.focus == focusMenu:
			cmds = append(cmds, m.updateMenu(key))

		case m.editor.State() == AwaitingParam:
			m.updateParamInput(key)

		default:
			cmds = append(cmds, m.updateGrid(key))
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) updateGrid(key string) tea.Cmd {
	switch key {
	case "q":
		return tea.Quit
	case "tab":
		m.editor.Cancel()
		m.focus = focusCode
		m.codeEditor.Focus()
	case "esc":
		m.editor.Cancel()
	case "up", "k":
		if m.cursorQubit > 0 {
			m.cursorQubit--
		}
	case "down", "j":
		if m.cursorQubit < m.doc.NumQubits()-1 {
			m.cursorQubit++
		}
	case "left", "h":
		if m.cursorCol > 0 {
			m.cursorCol--
		}
	case "right", "l":
		m.cursorCol++
	case "a":
		if m.editor.State() != Idle {
			m.setError(ErrInvalidTransition)
			break
		}
		m.focus = focusMenu
	case "enter", " ":
		if m.editor.State() == Idle {
			m.focus = focusMenu
			break
		}
		if err := m.editor.Click(m.cursorQubit, m.editorColumn()); err != nil {
			m.setError(err)
		}
		m.syncFromDocument()
	case "x":
		if err := m.editor.ToggleRemove(); err != nil {
			m.setError(err)
		}
	case "backspace", "delete":
		if m.doc.RemoveAt(m.cursorQubit, m.cursorCol) {
			m.syncFromDocument()
		}
	case "+", "=":
		m.doc.AddQubit()
		m.syncFromDocument()
	case "-":
		if m.doc.RemoveQubit() {
			m.cursorQubit = min(m.cursorQubit, m.doc.NumQubits()-1)
			m.syncFromDocument()
		}
	case "c":
		m.doc.Compact()
		m.syncFromDocument()
	case "ctrl+r":
		m.editor.Cancel()
		m.doc.Clear()
		m.cursorCol = 0
		m.syncFromDocument()
	case "n":
		m.noisy = !m.noisy
	case "v":
		m.view = (m.view + 1) % 3
	case "s":
		return m.simulate()
	case "m":
		return m.compare()
	case "ctrl+s":
		if err := os.WriteFile(m.path, []byte(m.doc.Text()), 0o644); err != nil {
			m.setError(fmt.Errorf("save error: %w", err))
		} else {
			m.setStatus("Saved " + m.path)
		}
	case "ctrl+e":
		out := qasmPath(m.path)
		qasm := ToQASM(m.doc.Gates(), m.doc.NumQubits())
		if err := os.WriteFile(out, []byte(qasm), 0o644); err != nil {
			m.setError(fmt.Errorf("export error: %w", err))
		} else {
			m.setStatus("Exported " + out)
		}
	}
	return nil
}

// qasmPath is the export file next to the program: "bell.txt" exports to
// "bell.qasm".
func qasmPath(program string) string {
	return strings.TrimSuffix(program, filepath.Ext(program)) + ".qasm"
}

// editorColumn is the column a click applies to: the pending gate's column
// while picking qubits, the cursor column otherwise.
func (m *Model) editorColumn() int {
	if col := m.editor.PendingColumn(); col >= 0 {
		return col
	}
	return m.cursorCol
}

func (m *Model) updateMenu(key string) tea.Cmd {
	switch key {
	case "esc":
		m.focus = focusGrid
	case "up", "k":
		if m.menuItem > 0 {
			m.menuItem--
		}
	case "down", "j":
		if m.menuItem < len(toolbox[m.menuCat].kinds)-1 {
			m.menuItem++
		}
	case "left", "h":
		if m.menuCat > 0 {
			m.menuCat--
			m.menuItem = 0
		}
	case "right", "l":
		if m.menuCat < len(toolbox)-1 {
			m.menuCat++
			m.menuItem = 0
		}
	case "enter":
		kind := toolbox[m.menuCat].kinds[m.menuItem]
		m.focus = focusGrid
		if kind.twoQubit && m.doc.NumQubits() < 2 {
			m.setStatus("Add a second qubit first (+)")
			m.statusErr = true
			break
		}
		if err := m.editor.Drop(kind.name, m.cursorQubit, m.cursorCol); err != nil {
			m.setError(err)
			break
		}
		m.paramInput = ""
		switch m.editor.State() {
		case AwaitingControlQubit:
			m.setStatus(fmt.Sprintf("%s: select the control qubit", kind.name))
		case Idle:
			m.cursorCol++
		}
		m.syncFromDocument()
	}
	return nil
}

func (m *Model) updateParamInput(key string) {
	switch key {
	case "esc":
		m.editor.Cancel()
		m.paramInput = ""
	case "backspace":
		if len(m.paramInput) > 0 {
			m.paramInput = m.paramInput[:len(m.paramInput)-1]
		}
	case "enter":
		if err := m.editor.SubmitParam(m.paramInput); err != nil {
			m.setError(err)
			break
		}
		m.paramInput = ""
		m.cursorCol++
		m.syncFromDocument()
	default:
		if len(key) == 1 && strings.ContainsAny(key, "0123456789.-+eEpi*/") {
			m.paramInput += key
		}
	}
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	sideWidth := m.width / 3
	circuitWidth := m.width - sideWidth - 4
	controlsHeight := 4
	topHeight := max(m.height/2, 8)
	bottomHeight := max(m.height-topHeight-controlsHeight-4, 6)

	circuitPanel := m.renderCircuitPanel(circuitWidth, topHeight)
	codePanel := m.renderCodePanel(sideWidth, topHeight)
	resultsPanel := m.renderResultsPanel(m.width-2, bottomHeight)
	controlsPanel := m.renderControlsPanel(m.width-2, controlsHeight)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, circuitPanel, codePanel)
	frame := lipgloss.JoinVertical(lipgloss.Left, topRow, resultsPanel, controlsPanel)

	if m.focus == focusMenu {
		frame = overlayAt(frame, m.renderMenu(), 2, 2)
	}
	if m.editor.State() == AwaitingParam {
		frame = overlayAt(frame, m.renderParamInput(), 2, 2)
	}

	return frame
}

// renderParamInput renders the parameter prompt overlay.
func (m Model) renderParamInput() string {
	var sb strings.Builder
	name := m.editor.PendingGate()
	kind, _ := lookupKind(name)
	sb.WriteString(titleStyle.Render(fmt.Sprintf("Enter %s for %s", kind.paramName, name)))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "Value: %s_", m.paramInput)
	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render("Examples: 1.57, pi/2, 3*pi/4"))
	return menuBorderStyle.Render(sb.String())
}
