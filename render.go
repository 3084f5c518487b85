package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// ──────────────────────────── Rendering helpers ────────────────────────────

// padCenter centres a string within the given width.
func padCenter(s string, width int) string {
	w := ansi.StringWidth(s)
	if w >= width {
		return ansi.Truncate(s, width, "")
	}
	left := (width - w) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-w-left)
}

// gateDisplayName returns the short label drawn inside a gate box.
func gateDisplayName(name string) string {
	if k, ok := lookupKind(name); ok && !k.twoQubit {
		return k.symbol
	}
	if len(name) > gateNameW {
		return name[:gateNameW]
	}
	return name
}

// wireSymbol returns the symbol drawn on the wire for a cell that belongs to
// a multi-qubit gate, or "" when the cell is drawn as a box.
func wireSymbol(info cellInfo) string {
	switch {
	case info.gate == nil:
		return ""
	case info.gate.Name == "SWAP" && len(info.gate.Qubits) >= 2:
		return "×"
	case info.isControl:
		return "●"
	case info.isTarget && info.gate.Name == "CZ":
		return "●"
	case info.isTarget:
		return "⊕"
	}
	return ""
}

// ──────────────────────────── Cell rendering ────────────────────────────

type cellHighlight int

const (
	hlNone cellHighlight = iota
	hlCursor
	hlRemove
	hlControl // control qubit already picked for a pending gate
)

func (h cellHighlight) style() lipgloss.Style {
	switch h {
	case hlRemove:
		return removeCursorStyle
	case hlControl:
		return targetSelectStyle
	default:
		return cursorBoxStyle
	}
}

// renderCell returns 3 lines (top, mid, bot) for a single cell, each cellW
// visual characters wide.
func renderCell(info cellInfo, hl cellHighlight) (top, mid, bot string) {
	halfW := cellW / 2
	emptyRow := strings.Repeat(" ", cellW)
	vertRow := strings.Repeat(" ", halfW) + "│" + strings.Repeat(" ", cellW-halfW-1)

	above := func() string {
		if info.vertAbove {
			return vertRow
		}
		return emptyRow
	}
	below := func() string {
		if info.vertBelow {
			return vertRow
		}
		return emptyRow
	}

	// Everything on the wire, without the frame.
	innerW := cellW
	if hl != hlNone {
		innerW = cellW - 2
	}
	dashL := (innerW - 1) / 2
	dashR := innerW - dashL - 1

	var boxed bool
	switch sym := wireSymbol(info); {
	case sym != "":
		mid = strings.Repeat("─", dashL) + gateStyle.Render(sym) + strings.Repeat("─", dashR)
	case info.gate != nil:
		boxed = true
		name := padCenter(gateDisplayName(info.gate.Name), gateNameW)
		margin := (innerW - gateBoxW) / 2
		rightMargin := innerW - margin - gateBoxW
		mid = strings.Repeat("─", margin) + gateStyle.Render("┤"+name+"├") + strings.Repeat("─", rightMargin)
		if hl == hlNone {
			top = strings.Repeat(" ", margin) + gateStyle.Render("┌"+strings.Repeat("─", gateNameW)+"┐") + strings.Repeat(" ", rightMargin)
			bot = strings.Repeat(" ", margin) + gateStyle.Render("└"+strings.Repeat("─", gateNameW)+"┘") + strings.Repeat(" ", rightMargin)
		}
	case info.passThrough:
		mid = strings.Repeat("─", dashL) + "┼" + strings.Repeat("─", dashR)
	default:
		mid = strings.Repeat("─", innerW)
	}

	if hl != hlNone {
		bdr := hl.style()
		top = bdr.Render("╔" + strings.Repeat("═", cellW-2) + "╗")
		mid = bdr.Render("║") + mid + bdr.Render("║")
		bot = bdr.Render("╚" + strings.Repeat("═", cellW-2) + "╝")
		return
	}
	if !boxed {
		top, bot = above(), below()
	}
	return
}

// ──────────────────────────── Panel rendering ────────────────────────────

// visibleColumns returns the first grid column shown and how many. The grid
// spans the configured columns or one past the last gate, whichever is
// wider, limited to what fits.
func (m Model) visibleColumns(width int) (start, count int) {
	extent := max(m.cfg.Editor.Columns, m.doc.Columns()+1)
	count = min(max((width-labelVisualW-4)/cellW, 1), extent)
	if m.cursorCol >= count {
		start = m.cursorCol - count + 1
	}
	return start, count
}

// visibleQubits returns the first wire shown and how many, keeping the
// cursor in view. Each wire takes three lines; the rest of the panel holds
// the title, headers and status.
func (m Model) visibleQubits(height int) (start, count int) {
	count = min(max((height-8)/3, 1), m.doc.NumQubits())
	if m.cursorQubit >= count {
		start = m.cursorQubit - count + 1
	}
	return start, count
}

// cellHighlightAt decides how the cell at (qubit, column) is framed.
func (m Model) cellHighlightAt(qubit, column int) cellHighlight {
	if m.focus == focusCode {
		return hlNone
	}
	if ctrl := m.editor.PendingControl(); ctrl == qubit && column == m.editor.PendingColumn() {
		return hlControl
	}
	if qubit != m.cursorQubit || column != m.cursorCol {
		return hlNone
	}
	if m.editor.State() == RemoveMode {
		return hlRemove
	}
	return hlCursor
}

// renderCircuitPanel renders the circuit grid panel.
func (m Model) renderCircuitPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Quantum Circuit"))
	if m.editor.State() == RemoveMode {
		sb.WriteString(errorStyle.Render("  [REMOVE]"))
	}
	sb.WriteString("\n\n")

	start, count := m.visibleColumns(width)
	if start > 0 {
		fmt.Fprintf(&sb, "  ◀ showing columns %d–%d\n", start, start+count-1)
	}
	firstQubit, rows := m.visibleQubits(height)
	if rows < m.doc.NumQubits() {
		fmt.Fprintf(&sb, "  ▲ showing qubits %d–%d of %d\n", firstQubit, firstQubit+rows-1, m.doc.NumQubits())
	}

	header := strings.Repeat(" ", labelVisualW)
	for col := start; col < start+count; col++ {
		header += dimStyle.Render(padCenter(fmt.Sprint(col), cellW))
	}
	sb.WriteString(header + "\n")

	for qubit := firstQubit; qubit < firstQubit+rows; qubit++ {
		topLine := strings.Repeat(" ", labelVisualW)
		midLine := qubitLabelStyle.Render(fmt.Sprintf("%-5s", fmt.Sprintf("q%d", qubit))) + "──"
		botLine := strings.Repeat(" ", labelVisualW)

		for col := start; col < start+count; col++ {
			top, mid, bot := renderCell(m.doc.getCellInfo(qubit, col), m.cellHighlightAt(qubit, col))
			topLine += top
			midLine += mid
			botLine += bot
		}

		sb.WriteString(topLine + "\n")
		sb.WriteString(midLine + "\n")
		sb.WriteString(botLine + "\n")
	}

	sb.WriteString("\n  ")
	sb.WriteString(m.statusLine())

	return circuitStyle.Width(width).Height(height).Render(sb.String())
}

// statusLine describes the pending action, the last message, or the cell
// under the cursor.
func (m Model) statusLine() string {
	switch m.editor.State() {
	case AwaitingControlQubit:
		return activeGateStyle.Render(m.editor.PendingGate()) + "  Select control qubit" +
			dimStyle.Render("   ↑↓ Move  Enter Confirm  Esc Cancel")
	case AwaitingTargetQubit:
		return activeGateStyle.Render(m.editor.PendingGate()) +
			fmt.Sprintf("  Control q%d, select target qubit", m.editor.PendingControl()) +
			dimStyle.Render("   ↑↓ Move  Enter Confirm  Esc Cancel")
	}

	if m.statusMsg != "" {
		if m.statusErr {
			return errorStyle.Render(m.statusMsg)
		}
		return activeGateStyle.Render(m.statusMsg)
	}

	pos := fmt.Sprintf("Column %d, Qubit %d", m.cursorCol, m.cursorQubit)
	if g := m.doc.GateAt(m.cursorQubit, m.cursorCol); g != nil {
		pos += "  │  " + gateStyle.Render(strings.TrimSpace(GenerateCode([]Gate{*g})))
	}
	return pos
}

// renderCodePanel renders the program editor panel.
func (m Model) renderCodePanel(width, height int) string {
	var sb strings.Builder

	title := "Program"
	if m.focus == focusCode {
		title += " [ACTIVE]"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")
	sb.WriteString(m.codeEditor.View())

	return codeStyle.Width(width).Height(height).Render(sb.String())
}

// renderResultsPanel renders the last simulation in the selected view.
func (m Model) renderResultsPanel(width, height int) string {
	var sb strings.Builder

	mode := "[noiseless]"
	if m.noisy {
		mode = fmt.Sprintf("[noisy: gate %g, measurement %g]",
			m.cfg.Simulation.GateErrorProb, m.cfg.Simulation.MeasurementErrorProb)
	}
	sb.WriteString(titleStyle.Render("Results"))
	sb.WriteString(" " + dimStyle.Render(mode))
	if m.running {
		sb.WriteString("  " + m.spinner.View() + " running")
	}
	sb.WriteString("\n\n")

	switch m.view {
	case viewHistogram:
		sb.WriteString(m.renderHistogram())
	case viewSphere:
		sb.WriteString(m.renderSphere())
	case viewHeatmap:
		sb.WriteString(m.renderHeatmap())
	}

	return resultsStyle.Width(width).Height(height).Render(sb.String())
}

func (m Model) renderHistogram() string {
	entries := Histogram(m.results)
	if len(entries) == 0 {
		return dimStyle.Render("No results yet. Press s to simulate.")
	}
	var sb strings.Builder
	for _, e := range entries {
		bar := int(math.Round(e.Prob * histBarW))
		fmt.Fprintf(&sb, "|%s⟩ %s%s %5.1f%% (%d)\n",
			padLeft(cleanState(e.State), m.resultBits, '0'),
			barStyle.Render(strings.Repeat("█", bar)),
			strings.Repeat(" ", histBarW-bar),
			e.Prob*100, e.Count)
	}
	return sb.String()
}

func (m Model) renderSphere() string {
	if m.results.Total() == 0 {
		return dimStyle.Render("No results yet. Press s to simulate.")
	}
	var sb strings.Builder
	sb.WriteString(activeGateStyle.Render("Bloch angles"))
	sb.WriteString("\n")
	for q, a := range AllBlochAngles(m.results, m.resultBits) {
		fmt.Fprintf(&sb, "  q%-2d θ=%-8s φ=%s\n", q, formatParam(a.Theta), formatParam(a.Phi))
	}

	sb.WriteString(activeGateStyle.Render("Q-sphere"))
	sb.WriteString("\n")
	for _, p := range QSphereVectors(m.results, m.resultBits) {
		fmt.Fprintf(&sb, "  |%s⟩ p=%.3f  (x=%+.2f y=%+.2f z=%+.2f)\n", p.State, p.Prob, p.X, p.Y, p.Z)
	}

	sb.WriteString(activeGateStyle.Render("Poles"))
	sb.WriteString("\n")
	sb.WriteString(renderPoles(BasisVectors(m.results, m.resultBits), m.resultBits))
	return sb.String()
}

// renderPoles sums the basis vectors of each qubit into the weight on its
// +z (|0⟩) and -z (|1⟩) poles.
func renderPoles(vecs []BasisVector, n int) string {
	up := make([]float64, n)
	down := make([]float64, n)
	for _, v := range vecs {
		if v.Qubit >= n {
			continue
		}
		if v.Z > 0 {
			up[v.Qubit] += v.Prob
		} else {
			down[v.Qubit] += v.Prob
		}
	}
	var sb strings.Builder
	for q := 0; q < n; q++ {
		fmt.Fprintf(&sb, "  q%-2d +z %.3f  -z %.3f\n", q, up[q], down[q])
	}
	return sb.String()
}

func (m Model) renderHeatmap() string {
	hm := m.heatmap
	if hm == nil || len(hm.States) == 0 {
		return dimStyle.Render("No comparison yet. Press m to compare noise channels.")
	}

	const labelW = 18
	const colW = 7

	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", labelW))
	for _, s := range hm.States {
		sb.WriteString(dimStyle.Render(padCenter("|"+s+"⟩", colW)))
	}
	sb.WriteString("\n")

	for i, ch := range hm.Channels {
		fmt.Fprintf(&sb, "%-*s", labelW, ansi.Truncate(ch.Label, labelW-1, "…"))
		for j := range hm.States {
			p := hm.Matrix[i][j]
			cell := lipgloss.NewStyle().
				Background(probColor(p)).
				Foreground(textColorFor(p)).
				Render(padCenter(fmt.Sprintf("%.2f", p), colW))
			sb.WriteString(cell)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// renderControlsPanel renders the bottom help/controls bar.
func (m Model) renderControlsPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(activeGateStyle.Render("Edit:  "))
	sb.WriteString("↑↓←→/hjkl Move  a Add gate  ⏎ Select  x Remove mode  Bksp Delete  +/- Qubits  c Compact  ^R Clear\n")

	sb.WriteString(activeGateStyle.Render("Run:   "))
	sb.WriteString("s Simulate  n Noise on/off  m Compare noise  v Switch view  Tab Program  ^S Save  ^E QASM  q Quit")

	return controlsStyle.Width(width).Height(height).Render(sb.String())
}

// ──────────────────────────── Overlay helpers ────────────────────────────

// overlayAt composites the overlay string on top of the background at
// position (x, y).
func overlayAt(bg, overlay string, x, y int) string {
	bgLines := strings.Split(bg, "\n")
	for i, ovLine := range strings.Split(overlay, "\n") {
		idx := y + i
		if idx < 0 || idx >= len(bgLines) {
			continue
		}
		bgLines[idx] = spliceLineAt(bgLines[idx], ovLine, x)
	}
	return strings.Join(bgLines, "\n")
}

// spliceLineAt replaces the visible columns of bgLine starting at x with
// overlay. Escape sequences in the background are preserved on both sides.
func spliceLineAt(bgLine, overlay string, x int) string {
	prefix := ansi.Truncate(bgLine, x, "")
	if w := ansi.StringWidth(prefix); w < x {
		prefix += strings.Repeat(" ", x-w)
	}
	suffix := ansi.TruncateLeft(bgLine, x+ansi.StringWidth(overlay), "")
	return prefix + "\x1b[0m" + overlay + suffix
}
