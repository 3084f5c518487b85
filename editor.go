package main

import (
	"errors"
	"fmt"
)

// EditorState is the mode of the grid editor.
type EditorState int

const (
	Idle EditorState = iota
	AwaitingParam
	AwaitingControlQubit
	AwaitingTargetQubit
	RemoveMode
)

func (s EditorState) String() string {
	switch s {
	case Idle:
		return "Idle"
	case AwaitingParam:
		return "AwaitingParam"
	case AwaitingControlQubit:
		return "AwaitingControlQubit"
	case AwaitingTargetQubit:
		return "AwaitingTargetQubit"
	case RemoveMode:
		return "RemoveMode"
	default:
		return fmt.Sprintf("EditorState(%d)", int(s))
	}
}

var (
	ErrInvalidTransition = errors.New("action not available in the current mode")
	ErrUnknownGate       = errors.New("unknown gate")
	ErrInvalidParam      = errors.New("please enter a valid number for the parameter")
	ErrSameQubit         = errors.New("control and target qubits must be different")
	ErrQubitOutOfRange   = errors.New("qubit out of range")
)

// pendingDrop is a gate dropped on the grid that still needs input.
type pendingDrop struct {
	kind    gateKind
	qubit   int
	column  int
	control int
}

// Editor applies grid interactions to a Document. It replaces a set of
// independent prompt/remove/edit flags with one explicit state.
type Editor struct {
	doc     *Document
	state   EditorState
	pending pendingDrop
}

// NewEditor returns an idle editor operating on doc.
func NewEditor(doc *Document) *Editor {
	return &Editor{doc: doc, state: Idle}
}

// State returns the current mode.
func (e *Editor) State() EditorState {
	return e.state
}

// Document returns the circuit being edited.
func (e *Editor) Document() *Document {
	return e.doc
}

// PendingGate names the gate waiting for input, or "" when idle.
func (e *Editor) PendingGate() string {
	switch e.state {
	case AwaitingParam, AwaitingControlQubit, AwaitingTargetQubit:
		return e.pending.kind.name
	}
	return ""
}

// PendingControl is the control qubit chosen so far, or -1.
func (e *Editor) PendingControl() int {
	if e.state != AwaitingTargetQubit {
		return -1
	}
	return e.pending.control
}

// PendingColumn is the column a pending gate will land in, or -1.
func (e *Editor) PendingColumn() int {
	if e.PendingGate() == "" {
		return -1
	}
	return e.pending.column
}

// Drop starts placing the named gate at (qubit, column). Single-qubit gates
// without a parameter are placed at once; the others move the editor into
// the state that collects the missing input.
func (e *Editor) Drop(name string, qubit, column int) error {
	if e.state != Idle {
		return fmt.Errorf("drop %s: %w", name, ErrInvalidTransition)
	}
	kind, ok := lookupKind(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownGate, name)
	}
	if err := e.checkQubit(qubit); err != nil {
		return err
	}

	e.pending = pendingDrop{kind: kind, qubit: qubit, column: column, control: -1}
	switch {
	case kind.hasParam():
		e.state = AwaitingParam
	case kind.twoQubit:
		e.state = AwaitingControlQubit
	default:
		e.doc.Place(Gate{Name: kind.name, Qubits: []int{qubit}}, column)
		e.pending = pendingDrop{}
	}
	return nil
}

// SubmitParam completes a parameterized drop. An unparsable value keeps the
// editor waiting so the user can retry.
func (e *Editor) SubmitParam(text string) error {
	if e.state != AwaitingParam {
		return fmt.Errorf("submit parameter: %w", ErrInvalidTransition)
	}
	param, ok := parseParamExpr(text)
	if !ok {
		return ErrInvalidParam
	}
	p := e.pending
	e.doc.Place(Gate{Name: p.kind.name, Qubits: []int{p.qubit}, Param: param, HasParam: true}, p.column)
	e.reset()
	return nil
}

// Click handles a cell selection. It picks the control and then the target
// of a two-qubit gate, or removes a gate in remove mode.
func (e *Editor) Click(qubit, column int) error {
	if err := e.checkQubit(qubit); err != nil {
		return err
	}
	switch e.state {
	case AwaitingControlQubit:
		e.pending.control = qubit
		e.state = AwaitingTargetQubit
		return nil
	case AwaitingTargetQubit:
		if qubit == e.pending.control {
			return ErrSameQubit
		}
		p := e.pending
		e.doc.Place(Gate{Name: p.kind.name, Qubits: []int{p.control, qubit}}, p.column)
		e.reset()
		return nil
	case RemoveMode:
		e.doc.RemoveAt(qubit, column)
		return nil
	default:
		return fmt.Errorf("select cell: %w", ErrInvalidTransition)
	}
}

// ToggleRemove switches between Idle and RemoveMode.
func (e *Editor) ToggleRemove() error {
	switch e.state {
	case Idle:
		e.state = RemoveMode
	case RemoveMode:
		e.state = Idle
	default:
		return fmt.Errorf("toggle remove: %w", ErrInvalidTransition)
	}
	return nil
}

// Cancel abandons any pending input and returns to Idle.
func (e *Editor) Cancel() {
	e.reset()
}

func (e *Editor) reset() {
	e.state = Idle
	e.pending = pendingDrop{}
}

func (e *Editor) checkQubit(qubit int) error {
	if qubit < 0 || qubit >= e.doc.NumQubits() {
		return fmt.Errorf("%w: %d", ErrQubitOutOfRange, qubit)
	}
	return nil
}
