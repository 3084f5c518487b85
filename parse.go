package main

import (
	"io"
	"strconv"
	"strings"
)

// commentPrefix starts a line the parser ignores.
const commentPrefix = "//"

// ParseGates converts a gate-list program, one instruction per line, into
// gates in program order. Lines that are blank, commented out or malformed
// are dropped; the function never fails and has no side effects.
//
// Grammar per line:
//
//	NAME OPERAND+         e.g. "H 0", "CNOT 0 1"
//	NAME PARAM OPERAND+   for PH, RX, RY, RZ, e.g. "Rx 1.57 0", "RZ pi/2 1"
//
// Names are case-insensitive and stored upper-case. Operands must be
// non-negative whole numbers; other operand tokens are filtered out.
// Column is left at zero; the grid assigns it.
func ParseGates(text string) []Gate {
	gates := []Gate{}
	for _, line := range strings.Split(text, "\n") {
		if g, ok := parseLine(line); ok {
			gates = append(gates, g)
		}
	}
	return gates
}

// ParseGatesFrom reads a whole program from r. A nil reader or a read error
// yields an empty circuit, the same outcome as an empty buffer.
func ParseGatesFrom(r io.Reader) []Gate {
	if r == nil {
		return []Gate{}
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return []Gate{}
	}
	return ParseGates(string(b))
}

func parseLine(line string) (Gate, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, commentPrefix) {
		return Gate{}, false
	}

	parts := splitTokens(line)
	if len(parts) == 0 {
		return Gate{}, false
	}

	name := strings.ToUpper(parts[0])
	if name == "" {
		return Gate{}, false
	}

	if IsParameterized(name) {
		if len(parts) < 3 {
			return Gate{}, false
		}
		param, ok := parseParamExpr(parts[1])
		if !ok {
			return Gate{}, false
		}
		qubits := parseOperands(parts[2:])
		if len(qubits) == 0 {
			return Gate{}, false
		}
		return Gate{Name: name, Qubits: qubits, Param: param, HasParam: true}, true
	}

	if len(parts) < 2 {
		return Gate{}, false
	}
	qubits := parseOperands(parts[1:])
	if len(qubits) == 0 {
		return Gate{}, false
	}
	return Gate{Name: name, Qubits: qubits}, true
}

// splitTokens splits on single spaces and discards empty tokens, so runs of
// spaces behave like one separator.
func splitTokens(line string) []string {
	var parts []string
	for _, p := range strings.Split(line, " ") {
		if strings.TrimSpace(p) == "" {
			continue
		}
		parts = append(parts, p)
	}
	return parts
}

func parseOperands(tokens []string) []int {
	var qubits []int
	for _, tok := range tokens {
		if q, ok := parseQubitIndex(tok); ok {
			qubits = append(qubits, q)
		}
	}
	return qubits
}

// GenerateCode renders gates back into the gate-list language, one
// newline-terminated line per gate in sequence order.
func GenerateCode(gates []Gate) string {
	var sb strings.Builder
	for _, g := range gates {
		sb.WriteString(g.Name)
		if g.HasParam {
			sb.WriteByte(' ')
			sb.WriteString(formatNumber(g.Param))
		}
		for _, q := range g.Qubits {
			sb.WriteByte(' ')
			sb.WriteString(strconv.Itoa(q))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
