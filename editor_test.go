package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEditor(qubits int) *Editor {
	return NewEditor(NewDocument(qubits))
}

func TestEditorDropSingleQubitGate(t *testing.T) {
	e := newTestEditor(2)

	require.NoError(t, e.Drop("h", 1, 4))
	assert.Equal(t, Idle, e.State())
	assert.Equal(t, "", e.PendingGate())

	g := e.Document().GateAt(1, 4)
	require.NotNil(t, g)
	assert.Equal(t, "H", g.Name)
	assert.Equal(t, []int{1}, g.Qubits)
}

func TestEditorParameterizedDrop(t *testing.T) {
	e := newTestEditor(2)

	require.NoError(t, e.Drop("RX", 0, 2))
	assert.Equal(t, AwaitingParam, e.State())
	assert.Equal(t, "RX", e.PendingGate())
	assert.Equal(t, 2, e.PendingColumn())
	assert.Equal(t, 0, e.Document().Len(), "nothing placed until the parameter is known")

	err := e.SubmitParam("ninety degrees")
	assert.ErrorIs(t, err, ErrInvalidParam)
	assert.Equal(t, AwaitingParam, e.State(), "invalid input keeps the prompt open")

	require.NoError(t, e.SubmitParam("pi/2"))
	assert.Equal(t, Idle, e.State())

	g := e.Document().GateAt(0, 2)
	require.NotNil(t, g)
	assert.True(t, g.HasParam)
	assert.InDelta(t, math.Pi/2, g.Param, 1e-12)
	assert.Equal(t, "RX 1.5707963267948966 0\n", e.Document().Text())
}

func TestEditorTwoQubitDrop(t *testing.T) {
	e := newTestEditor(3)

	require.NoError(t, e.Drop("CNOT", 0, 5))
	assert.Equal(t, AwaitingControlQubit, e.State())
	assert.Equal(t, -1, e.PendingControl())

	require.NoError(t, e.Click(2, 5))
	assert.Equal(t, AwaitingTargetQubit, e.State())
	assert.Equal(t, 2, e.PendingControl())

	assert.ErrorIs(t, e.Click(2, 5), ErrSameQubit)
	assert.Equal(t, AwaitingTargetQubit, e.State())

	require.NoError(t, e.Click(1, 9), "the column of the drop wins")
	assert.Equal(t, Idle, e.State())
	assert.Equal(t, "CNOT 2 1\n", e.Document().Text())
	assert.NotNil(t, e.Document().GateAt(1, 5))
}

func TestEditorRejectsInvalidTransitions(t *testing.T) {
	e := newTestEditor(2)

	assert.ErrorIs(t, e.Click(0, 0), ErrInvalidTransition)
	assert.ErrorIs(t, e.SubmitParam("1"), ErrInvalidTransition)

	require.NoError(t, e.Drop("RY", 0, 0))
	assert.ErrorIs(t, e.Drop("H", 1, 1), ErrInvalidTransition)
	assert.ErrorIs(t, e.ToggleRemove(), ErrInvalidTransition)
	assert.ErrorIs(t, e.Click(0, 0), ErrInvalidTransition)

	e.Cancel()
	assert.Equal(t, Idle, e.State())
	assert.Equal(t, 0, e.Document().Len())
}

func TestEditorDropValidation(t *testing.T) {
	e := newTestEditor(2)

	assert.ErrorIs(t, e.Drop("TELEPORT", 0, 0), ErrUnknownGate)
	assert.ErrorIs(t, e.Drop("H", 2, 0), ErrQubitOutOfRange)
	assert.ErrorIs(t, e.Drop("H", -1, 0), ErrQubitOutOfRange)
	assert.Equal(t, Idle, e.State())

	require.NoError(t, e.Drop("SWAP", 0, 0))
	assert.ErrorIs(t, e.Click(7, 0), ErrQubitOutOfRange)
	assert.Equal(t, AwaitingControlQubit, e.State())
}

func TestEditorRemoveMode(t *testing.T) {
	e := newTestEditor(2)
	e.Document().ApplyText("H 0\nCNOT 0 1\n")

	require.NoError(t, e.ToggleRemove())
	assert.Equal(t, RemoveMode, e.State())

	require.NoError(t, e.Click(1, 0), "empty cell is a no-op")
	require.NoError(t, e.Click(1, 1))
	assert.Equal(t, "H 0\n", e.Document().Text())
	assert.Equal(t, RemoveMode, e.State(), "stays in remove mode")

	require.NoError(t, e.ToggleRemove())
	assert.Equal(t, Idle, e.State())
}

func TestEditorStateString(t *testing.T) {
	assert.Equal(t, "AwaitingTargetQubit", AwaitingTargetQubit.String())
	assert.Equal(t, "EditorState(42)", EditorState(42).String())
}
