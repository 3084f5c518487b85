package main

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToQASMBell(t *testing.T) {
	doc := NewDocument(2)
	doc.ApplyText("H 0\nCNOT 0 1\n")

	want := `OPENQASM 2.0;
include "qelib1.inc";

qreg q[2];
creg c[2];

h q[0];
cx q[0], q[1];

// Add measurements if needed
// measure q[0] -> c[0];
// measure q[1] -> c[1];
`
	assert.Equal(t, want, ToQASM(doc.Gates(), doc.NumQubits()))
}

func TestToQASMGates(t *testing.T) {
	gates := []Gate{
		{Name: "RX", Qubits: []int{1}, Param: math.Pi / 2, HasParam: true, Column: 0},
		{Name: "Ph", Qubits: []int{0}, Param: 0.25, HasParam: true, Column: 1},
		{Name: "IDENTITY", Qubits: []int{2}, Column: 1},
		{Name: "RZ", Qubits: []int{0}, Column: 2},
		{Name: "FOO", Qubits: []int{3}, Column: 2},
		{Name: "CNOT", Qubits: []int{0}, Column: 3},
		{Name: "TOFFOLI", Qubits: []int{0, 1, 2}, Column: 4},
	}

	out := ToQASM(gates, 2)

	assert.Contains(t, out, "qreg q[4];", "register covers every operand")
	for _, line := range []string{
		"rx(pi/2) q[1];",
		"p(0.25) q[0];",
		"id q[2];",
		"// Missing parameter: RZ 0",
		"// Unsupported gate: FOO 3",
		"// Unsupported gate: CNOT 0",
		"ccx q[0], q[1], q[2];",
	} {
		assert.Contains(t, out, line+"\n")
	}
}

func TestToQASMOrdersByColumn(t *testing.T) {
	gates := []Gate{
		{Name: "X", Qubits: []int{0}, Column: 2},
		{Name: "H", Qubits: []int{0}, Column: 0},
		{Name: "Z", Qubits: []int{1}, Column: 0},
	}
	out := ToQASM(gates, 2)

	h := strings.Index(out, "h q[0];")
	z := strings.Index(out, "z q[1];")
	x := strings.Index(out, "x q[0];")
	assert.True(t, h >= 0 && h < z && z < x, "unexpected order:\n%s", out)
}
