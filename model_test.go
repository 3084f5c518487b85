package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestModel(t *testing.T, sim Simulator) Model {
	t.Helper()
	path := filepath.Join(t.TempDir(), "circuit.txt")
	return initialModel(DefaultConfig(), sim, nil, path, "")
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+e":
		return tea.KeyMsg{Type: tea.KeyCtrlE}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

// press feeds keys to the model and returns it with the last command.
func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m, cmd
}

// collect runs cmd, expanding batches, and returns every message produced.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, collect(c)...)
	}
	return out
}

func findMsg[T tea.Msg](t *testing.T, msgs []tea.Msg) T {
	t.Helper()
	for _, msg := range msgs {
		if m, ok := msg.(T); ok {
			return m
		}
	}
	var zero T
	t.Fatalf("no %T among %v", zero, msgs)
	return zero
}

func TestInitialModelShowsProgram(t *testing.T) {
	m := newTestModel(t, nil)

	assert.Equal(t, "H 0\nCNOT 0 1\n", m.doc.Text())
	assert.Equal(t, m.doc.Text(), m.codeEditor.Value())
	assert.Equal(t, m.doc.Text(), m.lastText)
	assert.Equal(t, 2, m.doc.NumQubits())
}

func TestGridPlacementUpdatesProgram(t *testing.T) {
	m := newTestModel(t, nil)

	m, _ = press(t, m, "l", "l", "a")
	require.Equal(t, focusMenu, m.focus)

	m, _ = press(t, m, "enter")
	assert.Equal(t, focusGrid, m.focus)
	assert.Equal(t, "H 0\nCNOT 0 1\nH 0\n", m.doc.Text())
	assert.Equal(t, m.doc.Text(), m.codeEditor.Value())
	assert.Equal(t, 3, m.cursorCol, "cursor advances past the new gate")
}

func TestParameterPrompt(t *testing.T) {
	m := newTestModel(t, nil)
	m, _ = press(t, m, "ctrl+r", "a", "l", "j", "enter")
	require.Equal(t, AwaitingParam, m.editor.State())
	require.Equal(t, "RX", m.editor.PendingGate())

	m, _ = press(t, m, "x", "y", "enter")
	assert.Equal(t, AwaitingParam, m.editor.State(), "letters other than pi are ignored")
	assert.Empty(t, m.doc.Text())

	m, _ = press(t, m, "p", "i", "/", "2", "enter")
	assert.Equal(t, Idle, m.editor.State())
	assert.Equal(t, "RX 1.5707963267948966 0\n", m.doc.Text())
	assert.Equal(t, m.doc.Text(), m.codeEditor.Value())
}

func TestInvalidParameterKeepsPrompt(t *testing.T) {
	m := newTestModel(t, nil)
	m, _ = press(t, m, "a", "l", "enter", "p", "p", "enter")

	assert.Equal(t, AwaitingParam, m.editor.State())
	assert.True(t, m.statusErr)
	assert.Equal(t, "Please enter a valid number for the parameter", m.statusMsg)

	m, _ = press(t, m, "esc")
	assert.Equal(t, Idle, m.editor.State())
	assert.Equal(t, "H 0\nCNOT 0 1\n", m.doc.Text())
}

func TestTwoQubitPlacement(t *testing.T) {
	m := newTestModel(t, nil)
	m, _ = press(t, m, "l", "l", "l", "j", "a", "l", "l", "enter")
	require.Equal(t, AwaitingControlQubit, m.editor.State())

	m, _ = press(t, m, "enter")
	require.Equal(t, AwaitingTargetQubit, m.editor.State())
	assert.Equal(t, 1, m.editor.PendingControl())

	m, _ = press(t, m, "enter")
	assert.Equal(t, AwaitingTargetQubit, m.editor.State())
	assert.Equal(t, "Control and target qubits must be different", m.statusMsg)

	m, _ = press(t, m, "k", "enter")
	assert.Equal(t, Idle, m.editor.State())
	assert.Equal(t, "H 0\nCNOT 0 1\nCNOT 1 0\n", m.doc.Text())
	assert.NotNil(t, m.doc.GateAt(0, 3))
}

func TestRemoveMode(t *testing.T) {
	m := newTestModel(t, nil)
	m, _ = press(t, m, "x")
	require.Equal(t, RemoveMode, m.editor.State())

	m, _ = press(t, m, "l", "j", "enter")
	assert.Equal(t, "H 0\n", m.doc.Text())
	assert.Equal(t, "H 0\n", m.codeEditor.Value())

	m, _ = press(t, m, "x")
	assert.Equal(t, Idle, m.editor.State())
}

func TestQubitAndLayoutKeys(t *testing.T) {
	m := newTestModel(t, nil)

	m, _ = press(t, m, "+")
	assert.Equal(t, 3, m.doc.NumQubits())

	m, _ = press(t, m, "-", "-")
	assert.Equal(t, 1, m.doc.NumQubits())
	assert.Equal(t, "H 0\n", m.doc.Text(), "gates on removed wires go away")

	m.doc.ApplyText("H 0\nX 0\n")
	m.doc.Place(Gate{Name: "Z", Qubits: []int{0}}, 6)
	m, _ = press(t, m, "c")
	assert.Equal(t, 3, m.doc.Columns())
	assert.Equal(t, m.doc.Text(), m.codeEditor.Value())
}

func TestCodeEditDrivesGrid(t *testing.T) {
	m := newTestModel(t, nil)

	m.codeEditor.SetValue("x  1\nrz 0.5 0\n")
	m.applyCodeEdit()

	assert.Equal(t, "X 1\nRZ 0.5 0\n", m.doc.Text())
	assert.Equal(t, "x  1\nrz 0.5 0\n", m.codeEditor.Value(), "typed text is not rewritten")

	m.codeEditor.SetValue("// nothing yet\n")
	m.applyCodeEdit()
	assert.Equal(t, "X 1\nRZ 0.5 0\n", m.doc.Text(), "an empty program keeps the grid")
}

func TestTypingLargeOperandDoesNotKeepWires(t *testing.T) {
	m := newTestModel(t, nil)
	m, _ = press(t, m, "ctrl+r", "tab")
	require.Equal(t, focusCode, m.focus)

	m, _ = press(t, m, "H", " ", "1", "2", "3")
	assert.Equal(t, 124, m.doc.NumQubits())

	m, _ = press(t, m, "backspace", "backspace")
	assert.Equal(t, "H 1", m.codeEditor.Value())
	assert.Equal(t, "H 1\n", m.doc.Text())
	assert.Equal(t, 2, m.doc.NumQubits())
	assert.Equal(t, 0, m.cursorQubit)
}

func TestViewShowsWindowOfWires(t *testing.T) {
	m := newTestModel(t, nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 45})
	m = next.(Model)

	m.doc.ApplyText("H 200000")
	view := m.View()
	assert.Less(t, strings.Count(view, "\n"), 200)
	assert.Contains(t, view, "showing qubits 0–")
	assert.Contains(t, view, "of 200001")

	m.cursorQubit = 199999
	view = m.View()
	assert.Contains(t, view, "q199999")
	assert.NotContains(t, view, "q0 ")
}

func TestVisibleColumnsUsesConfiguredExtent(t *testing.T) {
	m := newTestModel(t, nil)
	m.cfg.Editor.Columns = 4
	m.doc.Clear()

	start, count := m.visibleColumns(200)
	assert.Equal(t, 0, start)
	assert.Equal(t, 4, count)

	m.doc.Place(Gate{Name: "H", Qubits: []int{0}}, 6)
	_, count = m.visibleColumns(200)
	assert.Equal(t, 8, count, "one free column after the last gate")

	_, count = m.visibleColumns(labelVisualW + 4 + 2*cellW)
	assert.Equal(t, 2, count, "limited to what fits")
}

func TestSimulate(t *testing.T) {
	ctrl := gomock.NewController(t)
	sim := NewMockSimulator(ctrl)
	sim.EXPECT().Simulate(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req SimulationRequest) (Counts, error) {
			assert.Equal(t, 2, req.NumQubits)
			assert.Equal(t, 1000, req.NumSimulations)
			assert.False(t, req.Noisy())
			return Counts{"00": 520, "11": 480}, nil
		})

	m := newTestModel(t, sim)
	m, cmd := press(t, m, "s")
	require.True(t, m.running)
	require.NotNil(t, cmd)

	res := findMsg[simResultMsg](t, collect(cmd))
	next, _ := m.Update(res)
	m = next.(Model)

	assert.False(t, m.running)
	assert.Equal(t, Counts{"00": 520, "11": 480}, m.results)
	assert.Equal(t, 2, m.resultBits)
	assert.Contains(t, m.renderHistogram(), "52.0%")
}

func TestSimulateNoisy(t *testing.T) {
	ctrl := gomock.NewController(t)
	sim := NewMockSimulator(ctrl)
	sim.EXPECT().Simulate(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req SimulationRequest) (Counts, error) {
			require.True(t, req.Noisy())
			assert.Equal(t, 0.05, *req.GateErrorProb)
			return nil, errors.New("simulation failed: backend returned HTTP 500")
		})

	m := newTestModel(t, sim)
	m, cmd := press(t, m, "n", "s")
	res := findMsg[simResultMsg](t, collect(cmd))
	next, _ := m.Update(res)
	m = next.(Model)

	assert.False(t, m.running)
	assert.True(t, m.statusErr)
	assert.Equal(t, "Simulation failed: backend returned HTTP 500", m.statusMsg)
	assert.Nil(t, m.results)
}

func TestSimulateEmptyCircuit(t *testing.T) {
	ctrl := gomock.NewController(t)
	sim := NewMockSimulator(ctrl)

	m := newTestModel(t, sim)
	m, cmd := press(t, m, "ctrl+r", "s")

	assert.Nil(t, cmd)
	assert.False(t, m.running)
	assert.Equal(t, "No valid gates found. Please check your input.", m.statusMsg)
}

func TestStaleResultIsDropped(t *testing.T) {
	m := newTestModel(t, nil)
	m.runSeq = 2
	m.running = true

	next, _ := m.Update(simResultMsg{seq: 1, counts: Counts{"1": 1}, numQubits: 1})
	m = next.(Model)
	assert.Nil(t, m.results)
	assert.True(t, m.running)

	next, _ = m.Update(simResultMsg{seq: 2, counts: Counts{"0": 1}, numQubits: 1})
	m = next.(Model)
	assert.Equal(t, Counts{"0": 1}, m.results)
}

func TestCompareShowsHeatmap(t *testing.T) {
	ctrl := gomock.NewController(t)
	sim := NewMockSimulator(ctrl)
	sim.EXPECT().Simulate(gomock.Any(), gomock.Any()).Return(Counts{"00": 1}, nil).Times(5)

	m := newTestModel(t, sim)
	m, cmd := press(t, m, "m")
	res := findMsg[heatmapResultMsg](t, collect(cmd))
	next, _ := m.Update(res)
	m = next.(Model)

	require.NotNil(t, m.heatmap)
	assert.Equal(t, viewHeatmap, m.view)
	assert.Contains(t, m.renderHeatmap(), "IBM Kyiv")
}

func TestSaveProgram(t *testing.T) {
	m := newTestModel(t, nil)
	m, _ = press(t, m, "ctrl+s")

	assert.False(t, m.statusErr, m.statusMsg)
	assert.True(t, strings.HasPrefix(m.statusMsg, "Saved "))
}

func TestExportQASMNextToProgram(t *testing.T) {
	m := newTestModel(t, nil)
	m, _ = press(t, m, "ctrl+e")
	require.False(t, m.statusErr, m.statusMsg)

	want := filepath.Join(filepath.Dir(m.path), "circuit.qasm")
	assert.Equal(t, "Exported "+want, m.statusMsg)
	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "OPENQASM 2.0;"))

	assert.Equal(t, "bell.qasm", qasmPath("bell.txt"))
	assert.Equal(t, "dir/prog.qasm", qasmPath("dir/prog"))
}

func TestViewRenders(t *testing.T) {
	m := newTestModel(t, nil)
	assert.Equal(t, "Loading...", m.View())

	next, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 45})
	m = next.(Model)
	view := m.View()
	assert.Contains(t, view, "Quantum Circuit")
	assert.Contains(t, view, "Program")
	assert.Contains(t, view, "No results yet")

	m, _ = press(t, m, "a")
	assert.Contains(t, m.View(), "Quantum Gates")
}
