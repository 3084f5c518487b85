package main

//go:generate mockgen -source client.go -destination client_mocks.go -package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrNoGates is returned when a circuit has nothing to simulate.
var ErrNoGates = errors.New("no valid gates found")

// Counts maps a measured bitstring to the number of shots that produced it.
type Counts map[string]int

// Total is the number of shots represented.
func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// GateOp is a gate as the simulation backend expects it.
type GateOp struct {
	Name   string   `json:"name"`
	Qubits []int    `json:"qubits"`
	Param  *float64 `json:"param,omitempty"`
}

// SimulationRequest is the body of /simulate and /simulate-noisy.
type SimulationRequest struct {
	NumQubits            int      `json:"num_qubits"`
	Gates                []GateOp `json:"gates"`
	NumSimulations       int      `json:"num_simulations"`
	GateErrorProb        *float64 `json:"gate_error_prob,omitempty"`
	MeasurementErrorProb *float64 `json:"measurement_error_prob,omitempty"`
}

// Noisy reports whether the request carries a noise model.
func (r SimulationRequest) Noisy() bool {
	return r.GateErrorProb != nil || r.MeasurementErrorProb != nil
}

// RunOptions controls how a circuit is turned into a request.
type RunOptions struct {
	Shots                int
	Noisy                bool
	GateErrorProb        float64
	MeasurementErrorProb float64
}

// backendGateNames maps canonical names to the spelling the backend uses.
var backendGateNames = map[string]string{
	"RX": "Rx", "RY": "Ry", "RZ": "Rz",
	"PH": "Ph", "PHASE": "Ph",
	"I": "Identity", "IDENTITY": "Identity",
}

func backendGateName(name string) string {
	if mapped, ok := backendGateNames[strings.ToUpper(name)]; ok {
		return mapped
	}
	return name
}

// BuildRequest turns a circuit into a simulation request. The register size
// is inferred from the highest operand. A circuit without gates yields
// ErrNoGates.
func BuildRequest(gates []Gate, opts RunOptions) (SimulationRequest, error) {
	if len(gates) == 0 {
		return SimulationRequest{}, ErrNoGates
	}
	req := SimulationRequest{
		NumQubits:      NumQubits(gates),
		Gates:          make([]GateOp, 0, len(gates)),
		NumSimulations: opts.Shots,
	}
	for _, g := range gates {
		op := GateOp{Name: backendGateName(g.Name), Qubits: append([]int(nil), g.Qubits...)}
		if g.HasParam {
			p := g.Param
			op.Param = &p
		}
		req.Gates = append(req.Gates, op)
	}
	if opts.Noisy || opts.GateErrorProb > 0 || opts.MeasurementErrorProb > 0 {
		gateErr, measErr := opts.GateErrorProb, opts.MeasurementErrorProb
		req.GateErrorProb = &gateErr
		req.MeasurementErrorProb = &measErr
	}
	return req, nil
}

// Report is a user note attached to a circuit.
type Report struct {
	ID      any    `json:"id,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Simulator runs circuits on the remote service.
type Simulator interface {
	Simulate(ctx context.Context, req SimulationRequest) (Counts, error)
	SimulateQrisp(ctx context.Context, code string, shots int) (Counts, error)
}

// ReportStore is the remote report collection.
type ReportStore interface {
	CreateReport(ctx context.Context, r Report) (Report, error)
	ListReports(ctx context.Context) ([]Report, error)
}

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend returned HTTP %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("backend returned HTTP %d", e.Status)
}

// Client talks to the simulation service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// NewClient returns a client for the service at baseURL. A zero timeout
// leaves requests bounded only by their context.
func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Simulate posts a circuit to /simulate, or /simulate-noisy when the request
// carries error probabilities.
func (c *Client) Simulate(ctx context.Context, req SimulationRequest) (Counts, error) {
	endpoint := "/simulate"
	if req.Noisy() {
		endpoint = "/simulate-noisy"
	}
	var counts Counts
	if err := c.do(ctx, http.MethodPost, endpoint, req, &counts); err != nil {
		return nil, fmt.Errorf("simulation failed: %w", err)
	}
	return counts, nil
}

// SimulateQrisp runs a Qrisp program on the backend.
func (c *Client) SimulateQrisp(ctx context.Context, code string, shots int) (Counts, error) {
	if strings.TrimSpace(code) == "" {
		return nil, errors.New("qrisp program is empty")
	}
	body := struct {
		Code  string `json:"code"`
		Shots int    `json:"shots"`
	}{code, shots}
	var counts Counts
	if err := c.do(ctx, http.MethodPost, "/simulate-qrisp", body, &counts); err != nil {
		return nil, fmt.Errorf("qrisp simulation failed: %w", err)
	}
	return counts, nil
}

// CreateReport stores a report and returns the stored record.
func (c *Client) CreateReport(ctx context.Context, r Report) (Report, error) {
	var out Report
	if err := c.do(ctx, http.MethodPost, "/reports", r, &out); err != nil {
		return Report{}, fmt.Errorf("failed to create report: %w", err)
	}
	return out, nil
}

// ListReports fetches every stored report.
func (c *Client) ListReports(ctx context.Context) ([]Report, error) {
	var out []Report
	if err := c.do(ctx, http.MethodGet, "/reports", nil, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch reports: %w", err)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("backend request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	c.log.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var detail struct {
			Detail any `json:"detail"`
		}
		if b, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<16)); readErr == nil && json.Unmarshal(b, &detail) == nil {
			apiErr.Detail = detailString(detail.Detail)
		}
		c.log.Warn("backend rejected request", zap.String("path", path), zap.Int("status", resp.StatusCode), zap.String("detail", apiErr.Detail))
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// detailString flattens a FastAPI-style "detail" which may be a string or a
// structured validation error.
func detailString(v any) string {
	switch d := v.(type) {
	case nil:
		return ""
	case string:
		return d
	default:
		b, err := json.Marshal(d)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
