package main

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"
)

// comparisonShots is the shot count used for every noise channel.
const comparisonShots = 1000

// NoiseChannel is one noise configuration in a comparison.
type NoiseChannel struct {
	Label    string
	Key      string
	GateProb float64
	MeasProb float64
}

// noisy reports whether the channel needs the noisy endpoint.
func (ch NoiseChannel) noisy() bool {
	return ch.GateProb > 0 || ch.MeasProb > 0
}

// NoiseChannels returns the preset channels plus a custom one using the
// given error probabilities.
func NoiseChannels(customGate, customMeas float64) []NoiseChannel {
	return []NoiseChannel{
		{Label: "Ideal (no noise)", Key: "ideal"},
		{Label: "Custom", Key: "custom", GateProb: customGate, MeasProb: customMeas},
		{Label: "IBM Kyiv", Key: "ibm_kyiv", GateProb: 0.008, MeasProb: 0.01},
		{Label: "IBM Brisbane", Key: "ibm_brisbane", GateProb: 0.012, MeasProb: 0.02},
		{Label: "Heavy Noise", Key: "heavy", GateProb: 0.15, MeasProb: 0.20},
	}
}

// Heatmap holds final-state probabilities per channel. Matrix[i][j] is the
// probability of States[j] under Channels[i].
type Heatmap struct {
	Channels []NoiseChannel
	States   []string
	Matrix   [][]float64
}

// CompareNoise runs the circuit once per channel, concurrently, and builds
// the probability matrix. Any failed run fails the whole comparison.
func CompareNoise(ctx context.Context, sim Simulator, gates []Gate, channels []NoiseChannel) (*Heatmap, error) {
	if len(gates) == 0 {
		return nil, fmt.Errorf("no gates in the circuit to compare: %w", ErrNoGates)
	}

	results := make([]Counts, len(channels))
	g, ctx := errgroup.WithContext(ctx)
	for i, ch := range channels {
		i, ch := i, ch
		req, err := BuildRequest(gates, RunOptions{
			Shots:                comparisonShots,
			GateErrorProb:        ch.GateProb,
			MeasurementErrorProb: ch.MeasProb,
		})
		if err != nil {
			return nil, err
		}
		if !ch.noisy() {
			req.GateErrorProb, req.MeasurementErrorProb = nil, nil
		}
		g.Go(func() error {
			counts, err := sim.Simulate(ctx, req)
			if err != nil {
				return fmt.Errorf("%s: %w", ch.Label, err)
			}
			results[i] = counts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("comparison failed: %w", err)
	}

	return buildHeatmap(channels, results), nil
}

func buildHeatmap(channels []NoiseChannel, results []Counts) *Heatmap {
	seen := make(map[string]bool)
	var states []string
	for _, r := range results {
		for s := range r {
			if !seen[s] {
				seen[s] = true
				states = append(states, s)
			}
		}
	}
	slices.Sort(states)

	matrix := make([][]float64, len(results))
	for i, r := range results {
		total := r.Total()
		if total == 0 {
			total = 1
		}
		row := make([]float64, len(states))
		for j, s := range states {
			row[j] = float64(r[s]) / float64(total)
		}
		matrix[i] = row
	}
	return &Heatmap{Channels: channels, States: states, Matrix: matrix}
}

// colorStop is a point on the colour scale.
type colorStop struct {
	at      float64
	r, g, b float64
}

// viridis-like scale from deep blue (0) to bright yellow (1)
var probScale = []colorStop{
	{0.0, 13, 8, 135},
	{0.15, 68, 1, 170},
	{0.3, 122, 4, 167},
	{0.45, 164, 44, 130},
	{0.6, 207, 85, 83},
	{0.75, 237, 131, 36},
	{0.9, 251, 192, 11},
	{1.0, 252, 253, 75},
}

// probColor interpolates the colour for a probability, clamped to [0, 1].
func probColor(p float64) lipgloss.Color {
	v := clamp(p, 0, 1)
	lo, hi := probScale[0], probScale[len(probScale)-1]
	for i := 0; i < len(probScale)-1; i++ {
		if v >= probScale[i].at && v <= probScale[i+1].at {
			lo, hi = probScale[i], probScale[i+1]
			break
		}
	}
	t := 0.0
	if hi.at != lo.at {
		t = (v - lo.at) / (hi.at - lo.at)
	}
	mix := func(a, b float64) int { return int(math.Round(a + t*(b-a))) }
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", mix(lo.r, hi.r), mix(lo.g, hi.g), mix(lo.b, hi.b)))
}

// textColorFor keeps labels readable on light cells.
func textColorFor(p float64) lipgloss.Color {
	if p > 0.55 {
		return lipgloss.Color("#000000")
	}
	return lipgloss.Color("#ffffff")
}
