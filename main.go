package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Run using
//  go run . <command> <flags>

var (
	configFlag = cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "YAML configuration file; defaults are used if empty",
		EnvVars: []string{"QSIMDECK_CONFIG"},
	}
	backendFlag = cli.StringFlag{
		Name:  "backend",
		Usage: "simulation service URL, overrides the configuration",
	}
)

func newApp() *cli.App {
	return &cli.App{
		Name:      "qsimdeck",
		Usage:     "terminal quantum circuit editor backed by a remote simulator",
		ArgsUsage: "[program]",
		Flags: []cli.Flag{
			&configFlag,
			&backendFlag,
		},
		Action: runEditor,
		Commands: []*cli.Command{
			&EditCmd,
			&ParseCmd,
			&QASMCmd,
			&SimulateCmd,
			&CompareCmd,
			&QrispCmd,
			&ExamplesCmd,
			&ReportsCmd,
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
