package main

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// HistogramEntry is one bar of the measurement histogram.
type HistogramEntry struct {
	State string
	Count int
	Prob  float64
}

// Histogram orders the outcomes by bitstring and attaches probabilities.
func Histogram(c Counts) []HistogramEntry {
	total := c.Total()
	entries := make([]HistogramEntry, 0, len(c))
	for state, n := range c {
		e := HistogramEntry{State: state, Count: n}
		if total > 0 {
			e.Prob = float64(n) / float64(total)
		}
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(a, b HistogramEntry) int {
		return strings.Compare(a.State, b.State)
	})
	return entries
}

// BlochAngles are the polar and azimuthal angles of a qubit on the
// orientation sphere.
type BlochAngles struct {
	Theta float64
	Phi   float64
}

// defaultBlochAngles is shown before any measurement is available.
var defaultBlochAngles = BlochAngles{Theta: math.Pi / 4, Phi: 0}

// cleanState strips ket decoration such as "|01>" from a bitstring.
func cleanState(state string) string {
	return strings.NewReplacer("|", "", ">", "", "⟩", "").Replace(state)
}

// bitOf returns the character for qubit q; bitstrings are little-endian with
// qubit 0 as the last character.
func bitOf(state string, q int) (byte, bool) {
	i := len(state) - 1 - q
	if q < 0 || i < 0 {
		return 0, false
	}
	return state[i], true
}

// BlochAnglesFor estimates a qubit's polar angle from its measured
// probability of reading 0: theta = acos(2*p0 - 1). Phase is not observable
// from counts, so phi is always 0.
func BlochAnglesFor(c Counts, qubit int) BlochAngles {
	shots0, total := 0, 0
	for state, n := range c {
		if bit, ok := bitOf(cleanState(state), qubit); ok && bit == '0' {
			shots0 += n
		}
		total += n
	}
	if total == 0 {
		return defaultBlochAngles
	}
	p0 := float64(shots0) / float64(total)
	return BlochAngles{Theta: math.Acos(clamp(2*p0-1, -1, 1)), Phi: 0}
}

// AllBlochAngles returns BlochAnglesFor every qubit of an n-qubit register.
func AllBlochAngles(c Counts, n int) []BlochAngles {
	if len(c) == 0 {
		return nil
	}
	out := make([]BlochAngles, n)
	for q := 0; q < n; q++ {
		out[q] = BlochAnglesFor(c, q)
	}
	return out
}

// QSpherePoint places a basis state on the Q-sphere: latitude by Hamming
// weight, longitude by the state's value.
type QSpherePoint struct {
	State   string
	Prob    float64
	Hamming int
	Theta   float64
	Phi     float64
	X, Y, Z float64
}

// twoQubitPlacement spreads the four 2-qubit states over the sphere.
var twoQubitPlacement = map[string][2]float64{
	"00": {0, 0},
	"01": {math.Pi / 2, math.Pi / 2},
	"10": {math.Pi / 2, 3 * math.Pi / 2},
	"11": {math.Pi, 0},
}

// QSphereVectors maps measured outcomes of an n-qubit register to points on
// the Q-sphere. Outcomes that are not binary strings are skipped.
func QSphereVectors(c Counts, n int) []QSpherePoint {
	total := c.Total()
	if total == 0 || n < 1 {
		return nil
	}
	points := make([]QSpherePoint, 0, len(c))
	for state, count := range c {
		padded := padLeft(cleanState(state), n, '0')
		value, err := strconv.ParseUint(padded, 2, 64)
		if err != nil {
			continue
		}
		hamming := strings.Count(padded, "1")

		var theta, phi float64
		if pos, ok := twoQubitPlacement[padded]; ok && n == 2 {
			theta, phi = pos[0], pos[1]
		} else {
			theta = math.Pi * float64(hamming) / float64(n)
			phi = 2 * math.Pi * float64(value) / math.Pow(2, float64(n))
		}

		points = append(points, QSpherePoint{
			State:   padded,
			Prob:    float64(count) / float64(total),
			Hamming: hamming,
			Theta:   theta,
			Phi:     phi,
			X:       math.Sin(theta) * math.Cos(phi),
			Y:       math.Sin(theta) * math.Sin(phi),
			Z:       math.Cos(theta),
		})
	}
	slices.SortFunc(points, func(a, b QSpherePoint) int {
		return strings.Compare(a.State, b.State)
	})
	return points
}

// BasisVector is the per-qubit pole a measured outcome points to.
type BasisVector struct {
	Qubit int
	Value byte
	Z     float64
	Prob  float64
}

// BasisVectors lists, for each qubit, every outcome's pole (+z for 0, -z
// for 1) with its probability.
func BasisVectors(c Counts, n int) []BasisVector {
	total := c.Total()
	if total == 0 {
		return nil
	}
	states := make([]string, 0, len(c))
	for s := range c {
		states = append(states, s)
	}
	slices.Sort(states)

	var out []BasisVector
	for q := 0; q < n; q++ {
		for _, s := range states {
			bit, ok := bitOf(cleanState(s), q)
			if !ok {
				continue
			}
			z := -1.0
			if bit == '0' {
				z = 1
			}
			out = append(out, BasisVector{
				Qubit: q,
				Value: bit,
				Z:     z,
				Prob:  float64(c[s]) / float64(total),
			})
		}
	}
	return out
}

func padLeft(s string, width int, pad byte) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(string(pad), width-len(s)) + s
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
