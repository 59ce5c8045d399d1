package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/meenmo/hhwlib/config"
	"github.com/meenmo/hhwlib/pricing/mc"
	"github.com/meenmo/hhwlib/report"
)

var mcCmd = &cli.Command{
	Name:  "mc",
	Usage: "Monte Carlo cross-check of the scenario option",
	Flags: []cli.Flag{
		FlagRho,
		&cli.IntFlag{
			Name:  "paths",
			Value: mc.DefaultConfig.Paths,
		},
		&cli.IntFlag{
			Name:  "steps",
			Value: mc.DefaultConfig.Steps,
		},
		&cli.Uint64Flag{
			Name:  "seed",
			Value: mc.DefaultConfig.Seed,
		},
	},
	Action: func(cctx *cli.Context) error {
		s, err := config.FromFile(cctx.String(FlagConfig.Name))
		if err != nil {
			return err
		}
		setup, err := report.Prepare(s)
		if err != nil {
			return err
		}
		cfg := mc.Config{
			Paths:   cctx.Int("paths"),
			Steps:   cctx.Int("steps"),
			Seed:    cctx.Uint64("seed"),
			Workers: s.Report.Parallel,
		}
		res, err := mc.HestonHullWhite(cctx.Context, setup.Heston, setup.HullWhite,
			cctx.Float64(FlagRho.Name), setup.Option.Payoff, setup.Maturity, cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(cctx.App.Writer, "price %.4f +/- %.4f (%d paths)\n", res.Price, res.StdErr, res.Paths)
		return nil
	},
}
