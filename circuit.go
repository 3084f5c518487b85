package main

import (
	"slices"
	"strings"
)

// Gate is a single instruction of a circuit.
type Gate struct {
	Name     string  // upper-case canonical name: "H", "CNOT", "RX", ...
	Qubits   []int   // operands in input order; for two-qubit gates control first
	Param    float64 // rotation angle, meaningful only when HasParam
	HasParam bool
	Column   int // time step on the grid, assigned by the Document
}

// parameterizedGates take an angle before their operands.
var parameterizedGates = map[string]bool{
	"PH": true, "RX": true, "RY": true, "RZ": true,
}

// IsParameterized reports whether a gate name takes a parameter. The test is
// case-insensitive so "Rx", "rx" and "RX" all qualify.
func IsParameterized(name string) bool {
	return parameterizedGates[strings.ToUpper(name)]
}

// references reports whether the gate acts on the given qubit.
func (g Gate) references(qubit int) bool {
	return slices.Contains(g.Qubits, qubit)
}

// overlaps reports whether two gates would collide in one column. A
// multi-qubit gate occupies every wire between its lowest and highest
// operand, since its connector is drawn across them.
func (g Gate) overlaps(other Gate) bool {
	lo, hi := g.span()
	otherLo, otherHi := other.span()
	if lo < 0 || otherLo < 0 {
		return false
	}
	return lo <= otherHi && otherLo <= hi
}

// span returns the lowest and highest qubit the gate touches.
func (g Gate) span() (lo, hi int) {
	if len(g.Qubits) == 0 {
		return -1, -1
	}
	return slices.Min(g.Qubits), slices.Max(g.Qubits)
}

func (g Gate) clone() Gate {
	g.Qubits = slices.Clone(g.Qubits)
	return g
}

// NumQubits infers the register size a circuit needs: one past the highest
// operand, or 1 for a circuit without operands.
func NumQubits(gates []Gate) int {
	maxQubit := -1
	for _, g := range gates {
		for _, q := range g.Qubits {
			maxQubit = max(maxQubit, q)
		}
	}
	return max(maxQubit+1, 1)
}

// Document is the canonical circuit model. The gate-list text and the grid
// are both projections of it; every edit goes through the Document, so
// neither view has to react to the other.
type Document struct {
	numQubits  int
	baseQubits int    // wires chosen by the user, kept even when no gate uses them
	gates      []Gate // ordered by Column, stable for equal columns
}

// NewDocument returns an empty circuit on numQubits wires (at least one).
func NewDocument(numQubits int) *Document {
	n := max(numQubits, 1)
	return &Document{numQubits: n, baseQubits: n}
}

// NumQubits is the number of wires shown on the grid.
func (d *Document) NumQubits() int {
	return d.numQubits
}

// Gates returns a copy of the gate sequence.
func (d *Document) Gates() []Gate {
	out := make([]Gate, len(d.gates))
	for i, g := range d.gates {
		out[i] = g.clone()
	}
	return out
}

// Len is the number of gates in the circuit.
func (d *Document) Len() int {
	return len(d.gates)
}

// Text renders the circuit in the gate-list language.
func (d *Document) Text() string {
	return GenerateCode(d.gates)
}

// Columns is one past the last occupied column.
func (d *Document) Columns() int {
	cols := 0
	for _, g := range d.gates {
		cols = max(cols, g.Column+1)
	}
	return cols
}

// ApplyText replaces the circuit with the gates parsed from text, placing
// the i-th gate in column i. A program without any valid gate leaves the
// circuit untouched so that half-typed input does not wipe the grid. The
// register is resized to what the program needs, never below the wires the
// user asked for. It returns the number of gates parsed.
func (d *Document) ApplyText(text string) int {
	gates := ParseGates(text)
	if len(gates) == 0 {
		return 0
	}
	for i := range gates {
		gates[i].Column = i
	}
	d.gates = gates
	d.numQubits = max(d.baseQubits, NumQubits(gates))
	return len(gates)
}

// Place puts g in the given column. Any gate in that column whose wires
// overlap g's is replaced, which keeps at most one gate per cell.
func (d *Document) Place(g Gate, column int) {
	g = g.clone()
	g.Column = column
	d.gates = slices.DeleteFunc(d.gates, func(existing Gate) bool {
		return existing.Column == column && existing.overlaps(g)
	})

	// Insert after the last gate at or before this column to keep the
	// sequence ordered by time.
	idx := len(d.gates)
	for i, existing := range d.gates {
		if existing.Column > column {
			idx = i
			break
		}
	}
	d.gates = slices.Insert(d.gates, idx, g)

	for _, q := range g.Qubits {
		d.numQubits = max(d.numQubits, q+1)
	}
}

// RemoveAt removes the gate covering (qubit, column). It reports whether a
// gate was removed.
func (d *Document) RemoveAt(qubit, column int) bool {
	before := len(d.gates)
	d.gates = slices.DeleteFunc(d.gates, func(g Gate) bool {
		return g.Column == column && g.references(qubit)
	})
	return len(d.gates) != before
}

// GateAt returns the gate covering (qubit, column), or nil.
func (d *Document) GateAt(qubit, column int) *Gate {
	for i := range d.gates {
		g := &d.gates[i]
		if g.Column == column && g.references(qubit) {
			return g
		}
	}
	return nil
}

// AddQubit appends a wire.
func (d *Document) AddQubit() {
	d.numQubits++
	d.baseQubits = d.numQubits
}

// RemoveQubit drops the last wire together with every gate touching it.
// The last remaining wire cannot be removed.
func (d *Document) RemoveQubit() bool {
	if d.numQubits <= 1 {
		return false
	}
	d.numQubits--
	d.baseQubits = d.numQubits
	removed := d.numQubits
	d.gates = slices.DeleteFunc(d.gates, func(g Gate) bool {
		return slices.ContainsFunc(g.Qubits, func(q int) bool { return q >= removed })
	})
	return true
}

// Clear removes every gate but keeps the wires.
func (d *Document) Clear() {
	d.gates = nil
}

// Compact moves every gate to the earliest column after the gates it
// depends on, i.e. the last gate that touched any of its qubits. Gates on
// disjoint qubits end up sharing a column.
func (d *Document) Compact() {
	nextFree := make(map[int]int) // qubit -> first column free on that wire
	for i := range d.gates {
		g := &d.gates[i]
		col := 0
		// Multi-qubit gates draw a connector across the wires in between,
		// so the whole span has to be free.
		lo, hi := g.span()
		for q := lo; q <= hi && lo >= 0; q++ {
			col = max(col, nextFree[q])
		}
		g.Column = col
		for q := lo; q <= hi && lo >= 0; q++ {
			nextFree[q] = col + 1
		}
	}
	slices.SortStableFunc(d.gates, func(a, b Gate) int {
		return a.Column - b.Column
	})
}

// cellInfo describes what occupies a single cell of the grid.
type cellInfo struct {
	gate        *Gate
	isControl   bool
	isTarget    bool
	vertAbove   bool
	vertBelow   bool
	passThrough bool
}

// getCellInfo returns rendering information for the cell at (qubit, column).
func (d *Document) getCellInfo(qubit, column int) cellInfo {
	var info cellInfo

	if g := d.GateAt(qubit, column); g != nil {
		info.gate = g
		if isControlled(g.Name) && len(g.Qubits) >= 2 {
			info.isControl = slices.Contains(g.Qubits[:len(g.Qubits)-1], qubit)
			info.isTarget = g.Qubits[len(g.Qubits)-1] == qubit
		}
	}

	// Vertical connections for multi-qubit gates
	for _, g := range d.gates {
		if g.Column != column || len(g.Qubits) < 2 {
			continue
		}
		lo, hi := g.span()
		if qubit < lo || qubit > hi {
			continue
		}
		if qubit > lo {
			info.vertAbove = true
		}
		if qubit < hi {
			info.vertBelow = true
		}
		if qubit > lo && qubit < hi && info.gate == nil {
			info.passThrough = true
		}
	}

	return info
}
