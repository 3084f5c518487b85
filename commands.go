package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var (
	noisyFlag = cli.BoolFlag{
		Name:  "noisy",
		Usage: "simulate with gate and measurement errors",
	}
	shotsFlag = cli.IntFlag{
		Name:  "shots",
		Usage: "number of simulations, 0 uses the configured value",
	}
	gateErrorFlag = cli.Float64Flag{
		Name:  "gate-error",
		Usage: "gate error probability, implies --noisy",
	}
	measErrorFlag = cli.Float64Flag{
		Name:  "measurement-error",
		Usage: "measurement error probability, implies --noisy",
	}
	exampleFlag = cli.StringFlag{
		Name:  "example",
		Usage: "use a built-in example instead of a file",
	}
	qrispFlag = cli.BoolFlag{
		Name:  "qrisp",
		Usage: "list Qrisp examples instead of gate-list examples",
	}
	messageFlag = cli.StringFlag{
		Name:     "message",
		Aliases:  []string{"m"},
		Usage:    "report text",
		Required: true,
	}
)

// defaultProgramPath is where the editor saves when no file is given.
const defaultProgramPath = "circuit.txt"

var EditCmd = cli.Command{
	Name:      "edit",
	Usage:     "open the interactive circuit editor",
	ArgsUsage: "[program]",
	Action:    runEditor,
}

var ParseCmd = cli.Command{
	Name:      "parse",
	Usage:     "parse a gate-list program and print it in canonical form",
	ArgsUsage: "[program|-]",
	Action:    doParse,
}

var QASMCmd = cli.Command{
	Name:      "qasm",
	Usage:     "export a gate-list program as OpenQASM 2.0",
	ArgsUsage: "[program|-]",
	Action:    doQASM,
}

var SimulateCmd = cli.Command{
	Name:      "simulate",
	Usage:     "run a gate-list program on the simulation service",
	ArgsUsage: "[program|-]",
	Flags: []cli.Flag{
		&noisyFlag,
		&shotsFlag,
		&gateErrorFlag,
		&measErrorFlag,
		&exampleFlag,
	},
	Action: doSimulate,
}

var CompareCmd = cli.Command{
	Name:      "compare",
	Usage:     "compare final-state probabilities across noise channels",
	ArgsUsage: "[program|-]",
	Flags: []cli.Flag{
		&gateErrorFlag,
		&measErrorFlag,
		&exampleFlag,
	},
	Action: doCompare,
}

var QrispCmd = cli.Command{
	Name:      "qrisp",
	Usage:     "run a Qrisp program on the simulation service",
	ArgsUsage: "[file|-]",
	Flags: []cli.Flag{
		&shotsFlag,
		&exampleFlag,
	},
	Action: doQrisp,
}

var ExamplesCmd = cli.Command{
	Name:      "examples",
	Usage:     "list the built-in examples or print one",
	ArgsUsage: "[name]",
	Flags: []cli.Flag{
		&qrispFlag,
	},
	Action: doExamples,
}

var ReportsCmd = cli.Command{
	Name:  "reports",
	Usage: "manage circuit reports stored by the service",
	Subcommands: []*cli.Command{
		{
			Name:   "list",
			Usage:  "list stored reports",
			Action: doListReports,
		},
		{
			Name:      "create",
			Usage:     "store a report for a program",
			ArgsUsage: "[program|-]",
			Flags: []cli.Flag{
				&messageFlag,
			},
			Action: doCreateReport,
		},
	},
}

// env is what every command needs from the global flags.
type env struct {
	cfg    Config
	log    *zap.Logger
	client *Client
}

func openEnv(ctx *cli.Context) (*env, error) {
	cfg, err := LoadConfig(ctx.String(configFlag.Name))
	if err != nil {
		return nil, err
	}
	if url := ctx.String(backendFlag.Name); url != "" {
		cfg.Backend.URL = url
	}
	log, err := NewLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	return &env{
		cfg:    cfg,
		log:    log,
		client: NewClient(cfg.Backend.URL, cfg.Backend.Timeout(), log),
	}, nil
}

func (e *env) close() {
	_ = e.log.Sync()
}

// openSource opens the named file, or stdin for "" and "-".
func openSource(ctx *cli.Context) (io.ReadCloser, error) {
	path := ctx.Args().First()
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// readSource returns the text of the program named on the command line.
func readSource(ctx *cli.Context) (string, error) {
	r, err := openSource(ctx)
	if err != nil {
		return "", err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading program: %w", err)
	}
	return string(data), nil
}

// readProgram parses the program named on the command line, or the example
// chosen with --example.
func readProgram(ctx *cli.Context) ([]Gate, error) {
	if name := ctx.String(exampleFlag.Name); name != "" {
		ex, ok := findExample(circuitExamples, name)
		if !ok {
			return nil, fmt.Errorf("unknown example %q", name)
		}
		return ParseGates(ex.Code), nil
	}
	text, err := readSource(ctx)
	if err != nil {
		return nil, err
	}
	return ParseGates(text), nil
}

func runEditor(ctx *cli.Context) error {
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	path := ctx.Args().First()
	var code string
	if path == "" {
		path = defaultProgramPath
	} else if data, err := os.ReadFile(path); err == nil {
		code = string(data)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	e.log.Info("starting editor", zap.String("program", path), zap.String("backend", e.cfg.Backend.URL))
	p := tea.NewProgram(initialModel(e.cfg, e.client, e.log, path, code), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func doParse(ctx *cli.Context) error {
	r, err := openSource(ctx)
	if err != nil {
		return err
	}
	defer r.Close()
	gates := ParseGatesFrom(r)
	if len(gates) == 0 {
		return ErrNoGates
	}
	fmt.Fprintf(ctx.App.ErrWriter, "%d gates on %d qubits\n", len(gates), NumQubits(gates))
	fmt.Fprint(ctx.App.Writer, GenerateCode(gates))
	return nil
}

func doQASM(ctx *cli.Context) error {
	gates, err := readProgram(ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(ctx.App.Writer, ToQASM(gates, NumQubits(gates)))
	return nil
}

func doSimulate(ctx *cli.Context) error {
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	gates, err := readProgram(ctx)
	if err != nil {
		return err
	}

	opts := e.cfg.Simulation.RunOptions(ctx.Bool(noisyFlag.Name))
	if n := ctx.Int(shotsFlag.Name); n > 0 {
		opts.Shots = n
	}
	if ctx.IsSet(gateErrorFlag.Name) {
		opts.Noisy = true
		opts.GateErrorProb = ctx.Float64(gateErrorFlag.Name)
	}
	if ctx.IsSet(measErrorFlag.Name) {
		opts.Noisy = true
		opts.MeasurementErrorProb = ctx.Float64(measErrorFlag.Name)
	}

	req, err := BuildRequest(gates, opts)
	if err != nil {
		return err
	}
	counts, err := e.client.Simulate(ctx.Context, req)
	if err != nil {
		return err
	}
	writeHistogram(ctx.App.Writer, counts, req.NumQubits)
	return nil
}

func doCompare(ctx *cli.Context) error {
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	gates, err := readProgram(ctx)
	if err != nil {
		return err
	}
	gateProb, measProb := e.cfg.Simulation.GateErrorProb, e.cfg.Simulation.MeasurementErrorProb
	if ctx.IsSet(gateErrorFlag.Name) {
		gateProb = ctx.Float64(gateErrorFlag.Name)
	}
	if ctx.IsSet(measErrorFlag.Name) {
		measProb = ctx.Float64(measErrorFlag.Name)
	}

	hm, err := CompareNoise(ctx.Context, e.client, gates, NoiseChannels(gateProb, measProb))
	if err != nil {
		return err
	}
	writeHeatmap(ctx.App.Writer, hm)
	return nil
}

func doQrisp(ctx *cli.Context) error {
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	var code string
	if name := ctx.String(exampleFlag.Name); name != "" {
		ex, ok := findExample(qrispExamples, name)
		if !ok {
			return fmt.Errorf("unknown qrisp example %q", name)
		}
		code = ex.Code
	} else if code, err = readSource(ctx); err != nil {
		return err
	}

	shots := e.cfg.Simulation.QrispShots
	if n := ctx.Int(shotsFlag.Name); n > 0 {
		shots = n
	}
	counts, err := e.client.SimulateQrisp(ctx.Context, code, shots)
	if err != nil {
		return err
	}
	writeHistogram(ctx.App.Writer, counts, 0)
	return nil
}

func doExamples(ctx *cli.Context) error {
	examples := circuitExamples
	if ctx.Bool(qrispFlag.Name) {
		examples = qrispExamples
	}
	if name := ctx.Args().First(); name != "" {
		ex, ok := findExample(examples, name)
		if !ok {
			return fmt.Errorf("unknown example %q", name)
		}
		fmt.Fprintln(ctx.App.Writer, strings.TrimRight(ex.Code, "\n"))
		return nil
	}
	for _, ex := range examples {
		fmt.Fprintf(ctx.App.Writer, "%-20s %s\n", ex.Name, ex.Description)
	}
	return nil
}

func doListReports(ctx *cli.Context) error {
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	return printReports(ctx.Context, e.client, ctx.App.Writer)
}

func printReports(ctx context.Context, store ReportStore, w io.Writer) error {
	reports, err := store.ListReports(ctx)
	if err != nil {
		return err
	}
	for _, r := range reports {
		fmt.Fprintf(w, "[%v] %s\n", r.ID, r.Message)
		for _, line := range strings.Split(strings.TrimRight(r.Code, "\n"), "\n") {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}
	return nil
}

func doCreateReport(ctx *cli.Context) error {
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	code, err := readSource(ctx)
	if err != nil {
		return err
	}
	return createReport(ctx.Context, e.client, ctx.App.Writer, Report{Code: code, Message: ctx.String(messageFlag.Name)})
}

func createReport(ctx context.Context, store ReportStore, w io.Writer, r Report) error {
	if strings.TrimSpace(r.Code) == "" {
		return ErrNoGates
	}
	created, err := store.CreateReport(ctx, r)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "created report %v\n", created.ID)
	return nil
}

// writeHistogram prints counts as a text bar chart. States are padded to
// numQubits digits when numQubits > 0.
func writeHistogram(w io.Writer, counts Counts, numQubits int) {
	for _, entry := range Histogram(counts) {
		bar := int(entry.Prob*histBarW + 0.5)
		fmt.Fprintf(w, "|%s⟩ %-*s %5.1f%% (%d)\n",
			padLeft(cleanState(entry.State), numQubits, '0'),
			histBarW, strings.Repeat("#", bar),
			entry.Prob*100, entry.Count)
	}
}

// writeHeatmap prints the comparison matrix as a table.
func writeHeatmap(w io.Writer, hm *Heatmap) {
	fmt.Fprintf(w, "%-18s", "")
	for _, s := range hm.States {
		fmt.Fprintf(w, " %7s", "|"+s+">")
	}
	fmt.Fprintln(w)
	for i, ch := range hm.Channels {
		fmt.Fprintf(w, "%-18s", ch.Label)
		for j := range hm.States {
			fmt.Fprintf(w, " %7.3f", hm.Matrix[i][j])
		}
		fmt.Fprintln(w)
	}
}
