package main

import (
	"slices"
	"strings"
)

// Example is a ready-made program.
type Example struct {
	Name        string
	Description string
	Code        string
}

// circuitExamples are written in the gate-list language.
var circuitExamples = []Example{
	{
		Name:        "bell",
		Description: "Bell state (|00⟩ + |11⟩)/√2",
		Code:        "H 0\nCNOT 0 1\n",
	},
	{
		Name:        "grover",
		Description: "Grover's Search (Find 11)",
		Code: `H 0
H 1
CZ 0 1
H 0
H 1
X 0
X 1
CZ 0 1
X 0
X 1
H 0
H 1
`,
	},
	{
		Name:        "teleportation",
		Description: "Quantum Teleportation",
		Code: `X 0
H 1
CNOT 1 2
CNOT 0 1
H 0
X 2
Z 2
`,
	},
	{
		Name:        "bernstein-vazirani",
		Description: "Bernstein-Vazirani for the hidden string 101",
		Code: `// ancilla in |->
X 3
H 3
H 0
H 1
H 2
// oracle for s = 101
CNOT 0 3
CNOT 2 3
H 0
H 1
H 2
`,
	},
}

// qrispExamples are Python programs for the /simulate-qrisp endpoint.
var qrispExamples = []Example{
	{
		Name:        "bell",
		Description: "Create a 2-qubit Bell state (|00⟩ + |11⟩)/√2",
		Code: `import qrisp

qv = qrisp.QuantumVariable(2)
qrisp.h(qv[0])
qrisp.cx(qv[0], qv[1])
result = qv`,
	},
	{
		Name:        "ghz",
		Description: "3-qubit GHZ entangled state",
		Code: `import qrisp

qv = qrisp.QuantumVariable(3)
qrisp.h(qv[0])
qrisp.cx(qv[0], qv[1])
qrisp.cx(qv[0], qv[2])
result = qv`,
	},
	{
		Name:        "superposition",
		Description: "Equal superposition of all 3-qubit states",
		Code: `import qrisp

qv = qrisp.QuantumVariable(3)
for i in range(3):
    qrisp.h(qv[i])
result = qv`,
	},
	{
		Name:        "phase-kickback",
		Description: "Demonstrate phase kickback with X and H gates",
		Code: `import qrisp

qv = qrisp.QuantumVariable(2)
qrisp.x(qv[1])
qrisp.h(qv[0])
qrisp.h(qv[1])
qrisp.cx(qv[0], qv[1])
qrisp.h(qv[0])
result = qv`,
	},
}

// findExample looks an example up by name, case-insensitively.
func findExample(examples []Example, name string) (Example, bool) {
	i := slices.IndexFunc(examples, func(e Example) bool {
		return strings.EqualFold(e.Name, name)
	})
	if i < 0 {
		return Example{}, false
	}
	return examples[i], true
}
