package main

import (
	"fmt"
	"io"
	"os"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"
)

var log = logging.Logger("hhw")

var subsystems = []string{"hhw", "fd", "solver", "mesher", "report", "pgsql", "mc"}

// FlagConfig points at a scenario file.
var FlagConfig = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "scenario TOML file; defaults to the built-in Zanette scenario",
	EnvVars: []string{"HHW_CONFIG"},
}

// FlagVerbose lowers every subsystem log level to DEBUG.
var FlagVerbose = &cli.BoolFlag{
	Name:  "vv",
	Usage: "enables very verbose mode, useful for debugging",
}

func before(cctx *cli.Context) error {
	level := "WARN"
	if cctx.Bool(FlagVerbose.Name) {
		level = "DEBUG"
	}
	for _, s := range subsystems {
		_ = logging.SetLogLevel(s, level)
	}
	return nil
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:                 "hhw",
		Usage:                "Heston/Hull-White finite-difference option pricer",
		EnableBashCompletion: true,
		Before:               before,
		Writer:               stdout,
		ErrWriter:            stderr,
		Flags:                []cli.Flag{FlagConfig, FlagVerbose},
		Commands: []*cli.Command{
			tableCmd,
			priceCmd,
			mcCmd,
			configCmd,
		},
	}
}

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if err := newApp(stdout, stderr).Run(args); err != nil {
		fmt.Fprintf(stderr, "hhw: %v\n", err)
		return 1
	}
	return 0
}
