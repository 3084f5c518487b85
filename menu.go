package main

import (
	"fmt"
	"strings"
)

// gateKind is one entry of the gate toolbox.
type gateKind struct {
	name        string // canonical gate name written to the program
	description string
	symbol      string
	twoQubit    bool // placed by picking a control and then a target
	paramName   string
}

func (k gateKind) hasParam() bool {
	return k.paramName != ""
}

// toolboxCategory groups related gates under a tab.
type toolboxCategory struct {
	name  string
	kinds []gateKind
}

// toolbox lists the gates the simulation backend understands.
var toolbox = []toolboxCategory{
	{
		name: "Single Qubit",
		kinds: []gateKind{
			{name: "H", description: "Hadamard Gate", symbol: "H"},
			{name: "X", description: "Pauli-X Gate (NOT)", symbol: "X"},
			{name: "Y", description: "Pauli-Y Gate", symbol: "Y"},
			{name: "Z", description: "Pauli-Z Gate", symbol: "Z"},
			{name: "S", description: "Phase Gate (π/2)", symbol: "S"},
			{name: "T", description: "T Gate (π/4)", symbol: "T"},
			{name: "IDENTITY", description: "Identity Gate (I)", symbol: "I"},
		},
	},
	{
		name: "Rotation",
		kinds: []gateKind{
			{name: "PH", description: "Phase Gate", symbol: "Ph", paramName: "angle"},
			{name: "RX", description: "X-Rotation", symbol: "Rx", paramName: "angle"},
			{name: "RY", description: "Y-Rotation", symbol: "Ry", paramName: "angle"},
			{name: "RZ", description: "Z-Rotation", symbol: "Rz", paramName: "angle"},
		},
	},
	{
		name: "Multi Qubit",
		kinds: []gateKind{
			{name: "CNOT", description: "Controlled NOT Gate", symbol: "●─⊕", twoQubit: true},
			{name: "CZ", description: "Controlled Z Gate", symbol: "●─●", twoQubit: true},
			{name: "SWAP", description: "Swap Gate", symbol: "×─×", twoQubit: true},
		},
	},
}

// lookupKind finds a toolbox entry by gate name, case-insensitively.
func lookupKind(name string) (gateKind, bool) {
	name = strings.ToUpper(name)
	for _, cat := range toolbox {
		for _, k := range cat.kinds {
			if k.name == name {
				return k, true
			}
		}
	}
	return gateKind{}, false
}

// isControlled reports whether the leading operands of a gate are controls.
func isControlled(name string) bool {
	switch name {
	case "CNOT", "CX", "CZ", "CCNOT", "CCX", "TOFFOLI":
		return true
	}
	return false
}

// renderMenu renders the floating gate toolbox.
func (m Model) renderMenu() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Quantum Gates"))
	sb.WriteString("\n")

	for i, cat := range toolbox {
		name := " " + cat.name + " "
		if i == m.menuCat {
			sb.WriteString(activeGateStyle.Render(name))
		} else {
			sb.WriteString(dimStyle.Render(name))
		}
		if i < len(toolbox)-1 {
			sb.WriteString(dimStyle.Render("│"))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(strings.Repeat("─", 42)))
	sb.WriteString("\n")

	cat := toolbox[m.menuCat]
	for i, k := range cat.kinds {
		if i == m.menuItem {
			sb.WriteString(menuSelectedStyle.Render(" ▸ "))
			sb.WriteString(menuSelectedStyle.Render(fmt.Sprintf("%-20s", k.description)))
			sb.WriteString(gateStyle.Render(k.symbol))
		} else {
			sb.WriteString("   ")
			sb.WriteString(menuNormalStyle.Render(fmt.Sprintf("%-20s", k.description)))
			sb.WriteString(dimStyle.Render(k.symbol))
		}
		if k.twoQubit {
			sb.WriteString(dimStyle.Render(" →ctrl,target"))
		}
		if k.hasParam() {
			sb.WriteString(dimStyle.Render(fmt.Sprintf(" (%s)", k.paramName)))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(dimStyle.Render(" ↑↓ Select  ←→ Cat  ⏎ Drop  Esc ✕"))

	return menuBorderStyle.Render(sb.String())
}
