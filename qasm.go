package main

import (
	"fmt"
	"slices"
	"strings"
)

// qasmOperands formats operands as "q[0], q[1]".
func qasmOperands(qubits []int) string {
	parts := make([]string, len(qubits))
	for i, q := range qubits {
		parts[i] = fmt.Sprintf("q[%d]", q)
	}
	return strings.Join(parts, ", ")
}

// ToQASM exports a circuit as OpenQASM 2.0. Gates are emitted in column
// order; gates the target language has no spelling for, or whose operand
// count does not fit, become comments.
func ToQASM(gates []Gate, numQubits int) string {
	numQubits = max(numQubits, NumQubits(gates))

	sorted := slices.Clone(gates)
	slices.SortStableFunc(sorted, func(a, b Gate) int {
		return a.Column - b.Column
	})

	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")
	fmt.Fprintf(&sb, "qreg q[%d];\n", numQubits)
	fmt.Fprintf(&sb, "creg c[%d];\n\n", numQubits)

	for _, g := range sorted {
		writeGateQASM(&sb, g)
	}

	sb.WriteString("\n// Add measurements if needed\n")
	for q := 0; q < numQubits; q++ {
		fmt.Fprintf(&sb, "// measure q[%d] -> c[%d];\n", q, q)
	}
	return sb.String()
}

// qasmArity is the operand count each exported gate needs.
var qasmArity = map[string]struct {
	op    string
	arity int
}{
	"H": {"h", 1}, "X": {"x", 1}, "Y": {"y", 1}, "Z": {"z", 1},
	"S": {"s", 1}, "SDAG": {"sdg", 1}, "T": {"t", 1}, "TDAG": {"tdg", 1},
	"I": {"id", 1}, "IDENTITY": {"id", 1},
	"CNOT": {"cx", 2}, "CZ": {"cz", 2}, "SWAP": {"swap", 2},
	"CSWAP": {"cswap", 3}, "CCNOT": {"ccx", 3}, "TOFFOLI": {"ccx", 3},
	"RX": {"rx", 1}, "RY": {"ry", 1}, "RZ": {"rz", 1},
	"PH": {"p", 1}, "PHASE": {"p", 1},
}

func writeGateQASM(sb *strings.Builder, g Gate) {
	name := strings.ToUpper(g.Name)
	entry, ok := qasmArity[name]
	if !ok || len(g.Qubits) < entry.arity {
		fmt.Fprintf(sb, "// Unsupported gate: %s %s\n", g.Name, joinInts(g.Qubits))
		return
	}
	operands := qasmOperands(g.Qubits[:entry.arity])

	switch name {
	case "RX", "RY", "RZ", "PH", "PHASE":
		if !g.HasParam {
			fmt.Fprintf(sb, "// Missing parameter: %s %s\n", g.Name, joinInts(g.Qubits))
			return
		}
		fmt.Fprintf(sb, "%s(%s) %s;\n", entry.op, formatParam(g.Param), operands)
	default:
		fmt.Fprintf(sb, "%s %s;\n", entry.op, operands)
	}
}

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, " ")
}
